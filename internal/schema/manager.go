package schema

import (
	"context"
	"database/sql"

	"github.com/iliyamo/mufant-museum/internal/database"
)

// Manager creates and drops the managed tables for one dialect.
type Manager struct {
	dialect database.Dialect
}

// NewManager returns a Manager rendering DDL for d.
func NewManager(d database.Dialect) *Manager {
	return &Manager{dialect: d}
}

// Dialect returns the dialect the manager renders for.
func (m *Manager) Dialect() database.Dialect { return m.dialect }

// Statements returns the CREATE statements in execution order.
func (m *Manager) Statements() []string {
	out := make([]string, len(tables))
	for i, t := range tables {
		out[i] = CreateStatement(m.dialect, t)
	}
	return out
}

// EnsureSchema creates every table that does not exist yet. It is safe to
// call on a provisioned store. When the engine supports transactional DDL
// all statements run in one transaction, so a failure leaves the store as it
// was; otherwise each statement is an IF NOT EXISTS no-op on re-run.
func (m *Manager) EnsureSchema(ctx context.Context, db *sql.DB) error {
	if m.dialect.TransactionalDDL() {
		return database.WithTx(ctx, db, func(tx *sql.Tx) error {
			return m.EnsureTx(ctx, tx)
		})
	}
	return m.EnsureTx(ctx, db)
}

// EnsureTx runs the CREATE statements against q, which is usually the
// caller's transaction.
func (m *Manager) EnsureTx(ctx context.Context, q database.Querier) error {
	for _, t := range tables {
		if _, err := q.ExecContext(ctx, CreateStatement(m.dialect, t)); err != nil {
			return &database.StructuralError{Op: "create table " + t.Name, Err: database.Classify(err)}
		}
	}
	return nil
}

// DropAll removes every managed table. It is only used by full resets.
func (m *Manager) DropAll(ctx context.Context, db *sql.DB) error {
	if m.dialect.TransactionalDDL() {
		return database.WithTx(ctx, db, func(tx *sql.Tx) error {
			return m.DropTx(ctx, tx)
		})
	}
	return m.DropTx(ctx, db)
}

// DropTx drops the managed tables children first.
func (m *Manager) DropTx(ctx context.Context, q database.Querier) error {
	for i := len(tables) - 1; i >= 0; i-- {
		name := tables[i].Name
		if _, err := q.ExecContext(ctx, DropStatement(name)); err != nil {
			return &database.StructuralError{Op: "drop table " + name, Err: database.Classify(err)}
		}
	}
	return nil
}

// WipeTx deletes every row from the managed tables, children first, keeping
// the tables themselves.
func (m *Manager) WipeTx(ctx context.Context, q database.Querier) error {
	for i := len(tables) - 1; i >= 0; i-- {
		name := tables[i].Name
		if _, err := q.ExecContext(ctx, "DELETE FROM "+name); err != nil {
			return &database.StructuralError{Op: "wipe table " + name, Err: database.Classify(err)}
		}
	}
	return nil
}
