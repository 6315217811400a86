package database

import (
	"fmt"
	"strings"
)

// Dialect names a supported SQL engine.
type Dialect string

const (
	SQLite Dialect = "sqlite"
	MySQL  Dialect = "mysql"
)

// ParseDialect accepts the driver names used in configuration.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sqlite", "sqlite3":
		return SQLite, nil
	case "mysql":
		return MySQL, nil
	}
	return "", fmt.Errorf("unknown store driver %q (want sqlite or mysql)", s)
}

// TransactionalDDL reports whether CREATE/DROP TABLE participate in
// transactions. MySQL commits implicitly around DDL.
func (d Dialect) TransactionalDDL() bool {
	return d != MySQL
}

func (d Dialect) String() string { return string(d) }
