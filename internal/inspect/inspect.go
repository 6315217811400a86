// Package inspect reports on what a store contains without modifying it.
package inspect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/iliyamo/mufant-museum/internal/database"
	"github.com/iliyamo/mufant-museum/internal/model"
	"github.com/iliyamo/mufant-museum/internal/schema"
)

// Column is one column as the engine reports it.
type Column struct {
	Name         string `json:"name"`
	DeclaredType string `json:"declared_type"`
	NotNull      bool   `json:"not_null"`
	PrimaryKey   bool   `json:"primary_key"`
}

// ActivitySample is the short form of an activity used in reports.
type ActivitySample struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Reporter runs read-only queries against one store.
type Reporter struct {
	db      *sql.DB
	dialect database.Dialect
}

// NewReporter returns a Reporter for db using dialect d.
func NewReporter(db *sql.DB, d database.Dialect) *Reporter {
	return &Reporter{db: db, dialect: d}
}

// TableExists reports whether the store has a table called name.
func (r *Reporter) TableExists(ctx context.Context, name string) (bool, error) {
	q := `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`
	if r.dialect == database.MySQL {
		q = `SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?`
	}
	var n int
	if err := r.db.QueryRowContext(ctx, q, name).Scan(&n); err != nil {
		return false, fmt.Errorf("table exists: %w", database.Classify(err))
	}
	return n > 0, nil
}

// ListTables returns the user tables ordered by name.
func (r *Reporter) ListTables(ctx context.Context) ([]string, error) {
	q := `SELECT name FROM sqlite_master
	      WHERE type = 'table' AND name NOT LIKE 'sqlite\_%' ESCAPE '\'
	      ORDER BY name`
	if r.dialect == database.MySQL {
		q = `SELECT table_name FROM information_schema.tables
		     WHERE table_schema = DATABASE() AND table_type = 'BASE TABLE'
		     ORDER BY table_name`
	}
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", database.Classify(err))
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, database.Classify(err)
		}
		out = append(out, name)
	}
	if err := rows.Err(); err != nil {
		return nil, database.Classify(err)
	}
	return out, nil
}

// DescribeTable lists the columns of name in declaration order. An absent
// table is a *database.NotFoundError.
func (r *Reporter) DescribeTable(ctx context.Context, name string) ([]Column, error) {
	if err := r.requireTable(ctx, name); err != nil {
		return nil, err
	}
	if r.dialect == database.MySQL {
		return r.describeMySQL(ctx, name)
	}

	const q = `SELECT name, type, "notnull", pk FROM pragma_table_info(?) ORDER BY cid`
	rows, err := r.db.QueryContext(ctx, q, name)
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", name, database.Classify(err))
	}
	defer rows.Close()

	var out []Column
	for rows.Next() {
		var (
			c       Column
			notNull int
			pk      int
		)
		if err := rows.Scan(&c.Name, &c.DeclaredType, &notNull, &pk); err != nil {
			return nil, database.Classify(err)
		}
		// SQLite reports an INTEGER PRIMARY KEY as nullable; the rowid never is.
		c.NotNull, c.PrimaryKey = notNull != 0 || pk != 0, pk != 0
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, database.Classify(err)
	}
	return out, nil
}

func (r *Reporter) describeMySQL(ctx context.Context, name string) ([]Column, error) {
	const q = `SELECT column_name, column_type, is_nullable, column_key
	           FROM information_schema.columns
	           WHERE table_schema = DATABASE() AND table_name = ?
	           ORDER BY ordinal_position`
	rows, err := r.db.QueryContext(ctx, q, name)
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", name, database.Classify(err))
	}
	defer rows.Close()

	var out []Column
	for rows.Next() {
		var (
			c             Column
			nullable, key string
		)
		if err := rows.Scan(&c.Name, &c.DeclaredType, &nullable, &key); err != nil {
			return nil, database.Classify(err)
		}
		c.DeclaredType = strings.ToUpper(c.DeclaredType)
		c.NotNull, c.PrimaryKey = nullable == "NO", key == "PRI"
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, database.Classify(err)
	}
	return out, nil
}

// CountActivities counts activities of one type, or all of them when typ is
// empty. The filter is matched against the lowercase stored type.
func (r *Reporter) CountActivities(ctx context.Context, typ string) (int, error) {
	if err := r.requireTable(ctx, schema.TableActivities); err != nil {
		return 0, err
	}
	q := "SELECT COUNT(*) FROM " + schema.TableActivities
	var args []any
	if t := model.NormalizeActivityType(typ); t != "" {
		q += " WHERE type = ?"
		args = append(args, t)
	}
	var n int
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count activities: %w", database.Classify(err))
	}
	return n, nil
}

// SampleActivities returns up to limit activities ordered by id.
func (r *Reporter) SampleActivities(ctx context.Context, limit int) ([]ActivitySample, error) {
	if limit <= 0 {
		return nil, nil
	}
	if err := r.requireTable(ctx, schema.TableActivities); err != nil {
		return nil, err
	}
	q := "SELECT id, name, type FROM " + schema.TableActivities + " ORDER BY id LIMIT ?"
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("sample activities: %w", database.Classify(err))
	}
	defer rows.Close()

	var out []ActivitySample
	for rows.Next() {
		var s ActivitySample
		if err := rows.Scan(&s.ID, &s.Name, &s.Type); err != nil {
			return nil, database.Classify(err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, database.Classify(err)
	}
	return out, nil
}

func (r *Reporter) requireTable(ctx context.Context, name string) error {
	ok, err := r.TableExists(ctx, name)
	if err != nil {
		return err
	}
	if !ok {
		return &database.NotFoundError{Kind: "table", Name: name}
	}
	return nil
}
