package database

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/go-sql-driver/mysql"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Sentinels for the store error taxonomy. Every typed error below matches
// exactly one of them through errors.Is.
var (
	ErrStructural   = errors.New("structural error")
	ErrConstraint   = errors.New("constraint violation")
	ErrNotFound     = errors.New("not found")
	ErrConnectivity = errors.New("connectivity error")
)

// StructuralError reports a DDL failure or a table that an operation needs
// but the store does not have.
type StructuralError struct {
	Op  string
	Err error
}

func (e *StructuralError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("structural error: %s", e.Op)
	}
	return fmt.Sprintf("structural error: %s: %v", e.Op, e.Err)
}

func (e *StructuralError) Unwrap() error        { return e.Err }
func (e *StructuralError) Is(target error) bool { return target == ErrStructural }

// ConstraintKind identifies which constraint a write violated.
type ConstraintKind string

const (
	ConstraintUnique     ConstraintKind = "unique"
	ConstraintForeignKey ConstraintKind = "foreign_key"
	ConstraintNotNull    ConstraintKind = "not_null"
	ConstraintCheck      ConstraintKind = "check"
	ConstraintPrimaryKey ConstraintKind = "primary_key"
	// ConstraintValidation is raised before the row reaches the store.
	ConstraintValidation ConstraintKind = "validation"
)

// ConstraintViolation wraps a rejected insert or update.
type ConstraintViolation struct {
	Kind   ConstraintKind
	Detail string
	Err    error
}

func (e *ConstraintViolation) Error() string {
	return fmt.Sprintf("constraint violation (%s): %s", e.Kind, e.Detail)
}

func (e *ConstraintViolation) Unwrap() error        { return e.Err }
func (e *ConstraintViolation) Is(target error) bool { return target == ErrConstraint }

// NotFoundError reports an absent table or row.
type NotFoundError struct {
	Kind string // "table", "activity", "cart", ...
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ConnectivityError reports an unreachable, busy or locked store. It is
// never retried inside this module.
type ConnectivityError struct {
	Op  string
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("connectivity error: %s: %v", e.Op, e.Err)
}

func (e *ConnectivityError) Unwrap() error        { return e.Err }
func (e *ConnectivityError) Is(target error) bool { return target == ErrConnectivity }

// Classify maps driver errors from SQLite and MySQL onto the taxonomy.
// Errors that already belong to it, and errors it does not recognise, are
// returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStructural) || errors.Is(err, ErrConstraint) ||
		errors.Is(err, ErrNotFound) || errors.Is(err, ErrConnectivity) {
		return err
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) {
		return &ConnectivityError{Op: "query", Err: err}
	}

	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		if classified := classifySQLite(sqliteErr.Code(), err); classified != nil {
			return classified
		}
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		if classified := classifyMySQL(mysqlErr, err); classified != nil {
			return classified
		}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return &ConnectivityError{Op: "query", Err: err}
	}
	return classifyMessage(err)
}

func classifySQLite(code int, err error) error {
	switch code {
	case sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
		return &ConstraintViolation{Kind: ConstraintUnique, Detail: err.Error(), Err: err}
	case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY:
		return &ConstraintViolation{Kind: ConstraintPrimaryKey, Detail: err.Error(), Err: err}
	case sqlite3lib.SQLITE_CONSTRAINT_FOREIGNKEY:
		return &ConstraintViolation{Kind: ConstraintForeignKey, Detail: err.Error(), Err: err}
	case sqlite3lib.SQLITE_CONSTRAINT_NOTNULL:
		return &ConstraintViolation{Kind: ConstraintNotNull, Detail: err.Error(), Err: err}
	case sqlite3lib.SQLITE_CONSTRAINT_CHECK:
		return &ConstraintViolation{Kind: ConstraintCheck, Detail: err.Error(), Err: err}
	}
	switch code & 0xff {
	case sqlite3lib.SQLITE_BUSY, sqlite3lib.SQLITE_LOCKED, sqlite3lib.SQLITE_CANTOPEN:
		return &ConnectivityError{Op: "query", Err: err}
	case sqlite3lib.SQLITE_CONSTRAINT:
		return classifyMessage(err)
	}
	return nil
}

func classifyMySQL(me *mysql.MySQLError, err error) error {
	switch me.Number {
	case 1062:
		return &ConstraintViolation{Kind: ConstraintUnique, Detail: me.Message, Err: err}
	case 1451, 1452:
		return &ConstraintViolation{Kind: ConstraintForeignKey, Detail: me.Message, Err: err}
	case 1048, 1364:
		return &ConstraintViolation{Kind: ConstraintNotNull, Detail: me.Message, Err: err}
	case 3819:
		return &ConstraintViolation{Kind: ConstraintCheck, Detail: me.Message, Err: err}
	case 1146:
		return &StructuralError{Op: "missing table", Err: err}
	case 1205, 1213, 1040:
		return &ConnectivityError{Op: "query", Err: err}
	}
	return nil
}

// classifyMessage is the fallback for wrapped errors that lost their driver
// type on the way up.
func classifyMessage(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unique constraint failed"):
		return &ConstraintViolation{Kind: ConstraintUnique, Detail: err.Error(), Err: err}
	case strings.Contains(msg, "foreign key constraint failed"):
		return &ConstraintViolation{Kind: ConstraintForeignKey, Detail: err.Error(), Err: err}
	case strings.Contains(msg, "not null constraint failed"):
		return &ConstraintViolation{Kind: ConstraintNotNull, Detail: err.Error(), Err: err}
	case strings.Contains(msg, "check constraint failed"):
		return &ConstraintViolation{Kind: ConstraintCheck, Detail: err.Error(), Err: err}
	case strings.Contains(msg, "no such table"):
		return &StructuralError{Op: "missing table", Err: err}
	case strings.Contains(msg, "database is locked"), strings.Contains(msg, "database table is locked"):
		return &ConnectivityError{Op: "query", Err: err}
	}
	return err
}

// Invalid wraps a validation failure for subject as a ConstraintViolation.
func Invalid(subject string, err error) error {
	if err == nil {
		return nil
	}
	return &ConstraintViolation{
		Kind:   ConstraintValidation,
		Detail: fmt.Sprintf("%s: %v", subject, err),
		Err:    err,
	}
}
