package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestClassifySQLiteConstraints(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)

	_, err := db.ExecContext(ctx, `CREATE TABLE parent (id INTEGER PRIMARY KEY, code TEXT UNIQUE NOT NULL)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `CREATE TABLE child (id INTEGER PRIMARY KEY, parent_id INTEGER NOT NULL, FOREIGN KEY (parent_id) REFERENCES parent(id))`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO parent (id, code) VALUES (1, 'A')`)
	require.NoError(t, err)

	tests := []struct {
		name string
		stmt string
		kind ConstraintKind
	}{
		{"unique", `INSERT INTO parent (id, code) VALUES (2, 'A')`, ConstraintUnique},
		{"primary key", `INSERT INTO parent (id, code) VALUES (1, 'B')`, ConstraintPrimaryKey},
		{"not null", `INSERT INTO parent (id, code) VALUES (3, NULL)`, ConstraintNotNull},
		{"foreign key", `INSERT INTO child (parent_id) VALUES (42)`, ConstraintForeignKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.ExecContext(ctx, tt.stmt)
			require.Error(t, err)

			classified := Classify(err)
			assert.ErrorIs(t, classified, ErrConstraint)
			var cv *ConstraintViolation
			require.True(t, errors.As(classified, &cv))
			assert.Equal(t, tt.kind, cv.Kind)
		})
	}
}

func TestClassifyMissingTable(t *testing.T) {
	db := openMemory(t)
	_, err := db.ExecContext(context.Background(), `SELECT COUNT(*) FROM museum_activities`)
	require.Error(t, err)
	assert.ErrorIs(t, Classify(err), ErrStructural)
}

func TestClassifyMySQL(t *testing.T) {
	tests := []struct {
		number uint16
		target error
	}{
		{1062, ErrConstraint},
		{1452, ErrConstraint},
		{1048, ErrConstraint},
		{1146, ErrStructural},
		{1213, ErrConnectivity},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.number), func(t *testing.T) {
			err := fmt.Errorf("insert: %w", &mysql.MySQLError{Number: tt.number, Message: "boom"})
			assert.ErrorIs(t, Classify(err), tt.target)
		})
	}
}

func TestClassifyPassThrough(t *testing.T) {
	assert.NoError(t, Classify(nil))

	plain := errors.New("something else")
	assert.Same(t, plain, Classify(plain))

	nf := &NotFoundError{Kind: "table", Name: "nonexistent_table"}
	assert.Same(t, error(nf), Classify(nf))

	assert.ErrorIs(t, Classify(driver.ErrBadConn), ErrConnectivity)
	assert.ErrorIs(t, Classify(errors.New("database is locked")), ErrConnectivity)
}

func TestInvalid(t *testing.T) {
	assert.NoError(t, Invalid("activity", nil))

	err := Invalid("activity", errors.New("Price must satisfy gte=0"))
	assert.ErrorIs(t, err, ErrConstraint)
	assert.Contains(t, err.Error(), "activity: Price must satisfy gte=0")
}

func TestPingFailureIsConnectivity(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing().WillReturnError(errors.New("dial tcp 127.0.0.1:3306: connect: connection refused"))

	err = Ping(context.Background(), db)
	assert.ErrorIs(t, err, ErrConnectivity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx(t *testing.T) {
	t.Run("commit", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM coupons").WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectCommit()

		err = WithTx(context.Background(), db, func(tx *sql.Tx) error {
			_, err := tx.Exec("DELETE FROM coupons")
			return err
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback on error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		boom := errors.New("boom")
		err = WithTx(context.Background(), db, func(*sql.Tx) error { return boom })
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback on panic", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		assert.Panics(t, func() {
			_ = WithTx(context.Background(), db, func(*sql.Tx) error { panic("boom") })
		})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestParseDialect(t *testing.T) {
	for in, want := range map[string]Dialect{"": SQLite, "sqlite3": SQLite, "SQLite": SQLite, "mysql": MySQL} {
		got, err := ParseDialect(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseDialect("postgres")
	assert.Error(t, err)

	assert.True(t, SQLite.TransactionalDDL())
	assert.False(t, MySQL.TransactionalDDL())
}

func TestNullTime(t *testing.T) {
	want := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)

	for _, in := range []any{"2025-06-01 10:30:00", []byte("2025-06-01T10:30:00Z"), want.In(time.FixedZone("CEST", 7200))} {
		var n NullTime
		require.NoError(t, n.Scan(in))
		assert.True(t, n.Valid)
		assert.True(t, want.Equal(n.Time), "%v", in)
	}

	var n NullTime
	require.NoError(t, n.Scan(nil))
	assert.Nil(t, n.Ptr())
	v, err := n.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	assert.Error(t, n.Scan(42))
	assert.Error(t, n.Scan("yesterday"))

	assert.Nil(t, TimeArg(nil))
	assert.Equal(t, "2025-06-01 10:30:00", TimeArg(&want))
}
