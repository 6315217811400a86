package seed

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/mufant-museum/internal/database"
	"github.com/iliyamo/mufant-museum/internal/provision"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func parse(t *testing.T, args ...string) (Config, error) {
	t.Helper()
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return ParseConfig(fs, args)
}

func TestParseConfig(t *testing.T) {
	cfg, err := parse(t)
	require.NoError(t, err)
	assert.Equal(t, Config{Mode: provision.Merge, Catalog: "default"}, cfg)

	cfg, err = parse(t, "-mode", "FRESH", "-catalog", "admissions", "-json")
	require.NoError(t, err)
	assert.Equal(t, Config{Mode: provision.Fresh, Catalog: "admissions", JSON: true}, cfg)

	_, err = parse(t, "-mode", "upsert")
	assert.Error(t, err)
}

func TestRunList(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), nil, database.SQLite, Config{List: true}, &out))
	assert.Equal(t, "Available catalogs:\n  admissions\n  default\n", out.String())
}

func TestRunFreshPrintsSummary(t *testing.T) {
	db := openMemory(t)
	var out bytes.Buffer
	err := Run(context.Background(), db, database.SQLite, Config{Mode: provision.Fresh, Catalog: "default"}, &out)
	require.NoError(t, err)

	got := out.String()
	assert.Contains(t, got, `✓ Provisioned catalog "default" (fresh)`)
	assert.Contains(t, got, "- Museum activities: 5\n  event: 3\n  room: 2\n")
	assert.Contains(t, got, "- Coupons: 3\n")
}

func TestRunJSON(t *testing.T) {
	db := openMemory(t)
	var out bytes.Buffer
	err := Run(context.Background(), db, database.SQLite, Config{Mode: provision.Merge, Catalog: "admissions", JSON: true}, &out)
	require.NoError(t, err)

	var sum provision.Summary
	require.NoError(t, json.Unmarshal(out.Bytes(), &sum))
	assert.Equal(t, "admissions", sum.Catalog)
	assert.Equal(t, provision.Merge, sum.Mode)
	assert.Equal(t, 5, sum.ActivitiesByType["museum"])
	assert.NotEmpty(t, sum.RunID)
}

func TestRunUnknownCatalog(t *testing.T) {
	db := openMemory(t)
	err := Run(context.Background(), db, database.SQLite, Config{Mode: provision.Merge, Catalog: "nope"}, io.Discard)
	assert.ErrorContains(t, err, "unknown catalog")
}
