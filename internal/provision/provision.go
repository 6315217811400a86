// Package provision loads a catalog into the store in a single atomic run.
//
// A run either commits every row of the catalog or leaves the store exactly
// as it found it. In fresh mode the managed tables are rebuilt (or emptied,
// on engines without transactional DDL) before the catalog is inserted; in
// merge mode rows are added next to whatever is already there. Merge does
// not deduplicate by name, so running it twice doubles the catalog.
package provision

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/mufant-museum/internal/catalog"
	"github.com/iliyamo/mufant-museum/internal/database"
	"github.com/iliyamo/mufant-museum/internal/repository"
	"github.com/iliyamo/mufant-museum/internal/schema"
)

// Mode selects how a run treats existing rows.
type Mode string

const (
	Fresh Mode = "fresh"
	Merge Mode = "merge"
)

// ParseMode accepts "fresh" or "merge" in any case.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case Fresh, Merge:
		return m, nil
	}
	return "", fmt.Errorf("unknown provisioning mode %q (want fresh or merge)", s)
}

// RowError names the catalog row a run stopped at. Err carries the
// classified store or validation error.
type RowError = catalog.RecordError

// Summary describes a committed run.
type Summary struct {
	RunID            string         `json:"run_id"`
	Mode             Mode           `json:"mode"`
	Catalog          string         `json:"catalog"`
	ActivitiesByType map[string]int `json:"activities_by_type"`
	Activities       int            `json:"activities"`
	Coupons          int            `json:"coupons"`
	StartedAt        time.Time      `json:"started_at"`
	Duration         time.Duration  `json:"duration_ns"`
}

// Notifier is told about every committed run.
type Notifier interface {
	Provisioned(ctx context.Context, s Summary) error
}

// Pipeline provisions catalogs into one store.
type Pipeline struct {
	db         *sql.DB
	dialect    database.Dialect
	schema     *schema.Manager
	activities *repository.ActivityRepo
	coupons    *repository.CouponRepo
	notifier   Notifier
	now        func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithNotifier publishes a message after every committed run.
func WithNotifier(n Notifier) Option {
	return func(p *Pipeline) { p.notifier = n }
}

// WithClock replaces time.Now for StartedAt and Duration.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New returns a Pipeline writing to db using dialect d.
func New(db *sql.DB, d database.Dialect, opts ...Option) *Pipeline {
	p := &Pipeline{
		db:         db,
		dialect:    d,
		schema:     schema.NewManager(d),
		activities: repository.NewActivityRepo(db),
		coupons:    repository.NewCouponRepo(db),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Provision loads c into the store. On error nothing is committed and the
// error is a *RowError for row-level failures or a typed store error from
// package database otherwise.
func (p *Pipeline) Provision(ctx context.Context, mode Mode, c catalog.Catalog) (*Summary, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	started := p.now()
	log.Printf("provision: run %s starting (mode=%s catalog=%s dialect=%s)", runID, mode, c.Name, p.dialect)

	// MySQL commits implicitly around DDL, so the schema is settled before
	// the data transaction opens.
	if !p.dialect.TransactionalDDL() {
		if err := p.schema.EnsureSchema(ctx, p.db); err != nil {
			log.Printf("provision: run %s failed: %v", runID, err)
			return nil, err
		}
	}

	err := database.WithTx(ctx, p.db, func(tx *sql.Tx) error {
		if err := p.prepare(ctx, tx, mode); err != nil {
			return err
		}
		return p.load(ctx, tx, c)
	})
	if err != nil {
		log.Printf("provision: run %s failed, rolled back: %v", runID, err)
		return nil, err
	}

	s := Summary{
		RunID:            runID,
		Mode:             mode,
		Catalog:          c.Name,
		ActivitiesByType: c.ActivitiesByType(),
		Activities:       len(c.Activities),
		Coupons:          len(c.Coupons),
		StartedAt:        started,
		Duration:         p.now().Sub(started),
	}
	log.Printf("provision: run %s committed %d activities %v and %d coupons in %s",
		runID, s.Activities, s.ActivitiesByType, s.Coupons, s.Duration)

	if p.notifier != nil {
		if err := p.notifier.Provisioned(ctx, s); err != nil {
			log.Printf("provision: run %s notify failed: %v", runID, err)
		}
	}
	return &s, nil
}

// prepare brings the schema into shape for mode inside the run's transaction.
func (p *Pipeline) prepare(ctx context.Context, tx *sql.Tx, mode Mode) error {
	switch {
	case mode == Fresh && p.dialect.TransactionalDDL():
		if err := p.schema.DropTx(ctx, tx); err != nil {
			return err
		}
		return p.schema.EnsureTx(ctx, tx)
	case mode == Fresh:
		return p.schema.WipeTx(ctx, tx)
	case p.dialect.TransactionalDDL():
		return p.schema.EnsureTx(ctx, tx)
	}
	return nil
}

// load inserts every row of c and checks the row counts moved by exactly
// the catalog's size.
func (p *Pipeline) load(ctx context.Context, tx *sql.Tx, c catalog.Catalog) error {
	activitiesBefore, err := countRows(ctx, tx, schema.TableActivities)
	if err != nil {
		return err
	}
	couponsBefore, err := countRows(ctx, tx, schema.TableCoupons)
	if err != nil {
		return err
	}

	for _, a := range c.Activities {
		row := a
		if err := p.activities.CreateTx(ctx, tx, &row); err != nil {
			return &RowError{Table: schema.TableActivities, Name: row.Name, Err: err}
		}
	}
	for _, cp := range c.Coupons {
		row := cp
		if err := p.coupons.CreateTx(ctx, tx, &row); err != nil {
			return &RowError{Table: schema.TableCoupons, Name: row.Code, Err: err}
		}
	}

	if err := verify(ctx, tx, schema.TableActivities, activitiesBefore, len(c.Activities)); err != nil {
		return err
	}
	return verify(ctx, tx, schema.TableCoupons, couponsBefore, len(c.Coupons))
}

func verify(ctx context.Context, tx *sql.Tx, table string, before, want int) error {
	after, err := countRows(ctx, tx, table)
	if err != nil {
		return err
	}
	if got := after - before; got != want {
		return &database.StructuralError{
			Op:  "verify " + table,
			Err: fmt.Errorf("expected %d new rows, found %d", want, got),
		}
	}
	return nil
}

func countRows(ctx context.Context, q database.Querier, table string) (int, error) {
	var n int
	if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, database.Classify(err))
	}
	return n, nil
}
