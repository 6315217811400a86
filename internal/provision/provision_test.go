package provision

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/mufant-museum/internal/catalog"
	"github.com/iliyamo/mufant-museum/internal/database"
	"github.com/iliyamo/mufant-museum/internal/model"
	"github.com/iliyamo/mufant-museum/internal/schema"
)

var now = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func count(t *testing.T, db *sql.DB, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(query, args...).Scan(&n))
	return n
}

type recordingNotifier struct {
	got []Summary
	err error
}

func (n *recordingNotifier) Provisioned(_ context.Context, s Summary) error {
	n.got = append(n.got, s)
	return n.err
}

func TestFreshDefaultCatalog(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)
	notifier := &recordingNotifier{}
	ticks := []time.Time{now, now.Add(1500 * time.Millisecond)}
	clock := func() time.Time {
		next := ticks[0]
		if len(ticks) > 1 {
			ticks = ticks[1:]
		}
		return next
	}
	p := New(db, database.SQLite, WithNotifier(notifier), WithClock(clock))

	s, err := p.Provision(ctx, Fresh, catalog.Default(now))
	require.NoError(t, err)

	assert.Equal(t, Fresh, s.Mode)
	assert.Equal(t, "default", s.Catalog)
	assert.Equal(t, 5, s.Activities)
	assert.Equal(t, 3, s.Coupons)
	assert.Equal(t, map[string]int{"event": 3, "room": 2}, s.ActivitiesByType)
	assert.Equal(t, now, s.StartedAt)
	assert.Equal(t, 1500*time.Millisecond, s.Duration)
	assert.Len(t, s.RunID, 36)

	assert.Equal(t, 5, count(t, db, `SELECT COUNT(*) FROM museum_activities`))
	assert.Equal(t, 3, count(t, db, `SELECT COUNT(*) FROM museum_activities WHERE type = 'event'`))
	assert.Equal(t, 2, count(t, db, `SELECT COUNT(*) FROM museum_activities WHERE type = 'room'`))
	assert.Equal(t, 3, count(t, db, `SELECT COUNT(*) FROM coupons`))
	assert.Equal(t, 1, count(t, db, `SELECT COUNT(*) FROM coupons WHERE code = 'WELCOME10'`))

	require.Len(t, notifier.got, 1)
	assert.Equal(t, s.RunID, notifier.got[0].RunID)
}

func TestFreshReplacesExistingRows(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)
	p := New(db, database.SQLite)

	_, err := p.Provision(ctx, Fresh, catalog.Default(now))
	require.NoError(t, err)
	_, err = p.Provision(ctx, Fresh, catalog.Admissions(now))
	require.NoError(t, err)

	assert.Equal(t, 8, count(t, db, `SELECT COUNT(*) FROM museum_activities`))
	assert.Equal(t, 5, count(t, db, `SELECT COUNT(*) FROM museum_activities WHERE type = 'museum'`))
	assert.Equal(t, 3, count(t, db, `SELECT COUNT(*) FROM coupons`))
	assert.Equal(t, 1, count(t, db, `SELECT MIN(id) FROM museum_activities`))
}

func TestMergeAccumulates(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)
	p := New(db, database.SQLite)

	activities := catalog.Default(now)
	activities.Coupons = nil

	_, err := p.Provision(ctx, Merge, activities)
	require.NoError(t, err)
	_, err = p.Provision(ctx, Merge, activities)
	require.NoError(t, err)

	assert.Equal(t, 10, count(t, db, `SELECT COUNT(*) FROM museum_activities`))
	assert.Equal(t, 2, count(t, db, `SELECT COUNT(*) FROM museum_activities WHERE name = 'MAIN LIBRARY'`))
}

func TestMergeKeepsRowsAndStopsOnDuplicateCoupon(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)
	p := New(db, database.SQLite)

	_, err := p.Provision(ctx, Fresh, catalog.Default(now))
	require.NoError(t, err)

	// The default coupons are already present, so merging them again
	// violates the unique code and the whole run is discarded.
	_, err = p.Provision(ctx, Merge, catalog.Default(now))
	require.Error(t, err)
	var rowErr *RowError
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, schema.TableCoupons, rowErr.Table)
	assert.Equal(t, "WELCOME10", rowErr.Name)

	assert.Equal(t, 5, count(t, db, `SELECT COUNT(*) FROM museum_activities`))
}

func TestFreshIsAtomic(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)
	p := New(db, database.SQLite)

	_, err := p.Provision(ctx, Fresh, catalog.Default(now))
	require.NoError(t, err)

	broken := catalog.Default(now)
	broken.Coupons = append(broken.Coupons, model.Coupon{Code: "welcome10", DiscountPercentage: 5, IsActive: true})

	_, err = p.Provision(ctx, Fresh, broken)
	require.Error(t, err)
	assert.ErrorIs(t, err, database.ErrConstraint)

	var cv *database.ConstraintViolation
	require.True(t, errors.As(err, &cv))
	assert.Equal(t, database.ConstraintUnique, cv.Kind)

	var rowErr *RowError
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, "WELCOME10", rowErr.Name)

	// Pre-call state: the first run's rows, not an empty or half-loaded store.
	assert.Equal(t, 5, count(t, db, `SELECT COUNT(*) FROM museum_activities`))
	assert.Equal(t, 3, count(t, db, `SELECT COUNT(*) FROM coupons`))
}

func TestInvalidCatalogNeverTouchesStore(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)
	notifier := &recordingNotifier{}
	p := New(db, database.SQLite, WithNotifier(notifier))

	_, err := p.Provision(ctx, Fresh, catalog.Default(now))
	require.NoError(t, err)

	bad := catalog.Default(now)
	bad.Activities[2].Price = -12
	_, err = p.Provision(ctx, Fresh, bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, database.ErrConstraint)

	var rowErr *RowError
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, "SUPERHERO EXHIBITION", rowErr.Name)

	assert.Equal(t, 5, count(t, db, `SELECT COUNT(*) FROM museum_activities`))
	assert.Len(t, notifier.got, 1)

	_, err = p.Provision(ctx, Mode("upsert"), catalog.Default(now))
	assert.Error(t, err)
}

func TestNotifierFailureKeepsCommit(t *testing.T) {
	db := openMemory(t)
	notifier := &recordingNotifier{err: errors.New("broker down")}

	s, err := New(db, database.SQLite, WithNotifier(notifier)).Provision(context.Background(), Fresh, catalog.Default(now))
	require.NoError(t, err)
	assert.Equal(t, 5, s.Activities)
	assert.Equal(t, 5, count(t, db, `SELECT COUNT(*) FROM museum_activities`))
	assert.Len(t, notifier.got, 1)
}

func TestMySQLFreshWipesInsideTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for _, name := range schema.TableNames() {
		mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS " + name + " (")).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM payments")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM coupons")).WillReturnError(errors.New("Lock wait timeout exceeded"))
	mock.ExpectRollback()

	_, err = New(db, database.MySQL).Provision(context.Background(), Fresh, catalog.Default(now))
	require.Error(t, err)
	assert.ErrorIs(t, err, database.ErrStructural)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode(" FRESH ")
	require.NoError(t, err)
	assert.Equal(t, Fresh, m)
	m, err = ParseMode("merge")
	require.NoError(t, err)
	assert.Equal(t, Merge, m)
	_, err = ParseMode("append")
	assert.Error(t, err)
}
