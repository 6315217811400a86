package schema

import (
	"fmt"
	"strings"

	"github.com/iliyamo/mufant-museum/internal/database"
)

func columnType(d database.Dialect, c Column) string {
	if d == database.MySQL {
		switch c.kind {
		case kindID:
			return "BIGINT AUTO_INCREMENT PRIMARY KEY"
		case kindRef:
			return "BIGINT"
		case kindKey:
			return "VARCHAR(255)"
		case kindText:
			// MySQL rejects literal defaults on TEXT columns.
			if c.Default != "" {
				return "VARCHAR(255)"
			}
			return "TEXT"
		case kindTimestamp:
			return "DATETIME"
		case kindReal:
			return "DOUBLE"
		case kindInteger:
			return "INT"
		case kindBool:
			return "BOOLEAN"
		}
	}
	switch c.kind {
	case kindID:
		return "INTEGER PRIMARY KEY AUTOINCREMENT"
	case kindRef, kindInteger:
		return "INTEGER"
	case kindKey, kindText:
		return "TEXT"
	case kindTimestamp:
		return "TIMESTAMP"
	case kindReal:
		return "REAL"
	case kindBool:
		return "BOOLEAN"
	}
	return "TEXT"
}

func columnDef(d database.Dialect, c Column) string {
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteByte(' ')
	b.WriteString(columnType(d, c))
	if c.Unique {
		b.WriteString(" UNIQUE")
	}
	if c.NotNull {
		b.WriteString(" NOT NULL")
	}
	if c.Default != "" {
		b.WriteString(" DEFAULT ")
		b.WriteString(c.Default)
	}
	return b.String()
}

// CreateStatement renders the idempotent CREATE TABLE for t.
func CreateStatement(d database.Dialect, t Table) string {
	lines := make([]string, 0, len(t.Columns)+len(t.ForeignKeys))
	for _, c := range t.Columns {
		lines = append(lines, "    "+columnDef(d, c))
	}
	for _, fk := range t.ForeignKeys {
		lines = append(lines, fmt.Sprintf("    FOREIGN KEY (%s) REFERENCES %s(%s)", fk.Column, fk.RefTable, fk.RefColumn))
	}
	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n%s\n)", t.Name, strings.Join(lines, ",\n"))
	if d == database.MySQL {
		stmt += " ENGINE=InnoDB DEFAULT CHARSET=utf8mb4"
	}
	return stmt
}

// DropStatement renders the idempotent DROP TABLE for name.
func DropStatement(name string) string {
	return "DROP TABLE IF EXISTS " + name
}
