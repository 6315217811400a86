// Package seed implements the provisioning command: it loads a named
// catalog into the configured store in fresh or merge mode.
package seed

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/iliyamo/mufant-museum/internal/catalog"
	"github.com/iliyamo/mufant-museum/internal/database"
	"github.com/iliyamo/mufant-museum/internal/provision"
)

// Config holds seed command configuration.
type Config struct {
	Mode    provision.Mode
	Catalog string
	List    bool
	JSON    bool
}

// ParseConfig parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var (
		cfg  Config
		mode string
	)
	fs.StringVar(&mode, "mode", string(provision.Merge), "provisioning mode (fresh, merge)")
	fs.StringVar(&cfg.Catalog, "catalog", "default", "catalog to load")
	fs.BoolVar(&cfg.List, "list", false, "list available catalogs")
	fs.BoolVar(&cfg.JSON, "json", false, "print the summary as JSON")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	m, err := provision.ParseMode(mode)
	if err != nil {
		return Config{}, err
	}
	cfg.Mode = m
	return cfg, nil
}

// Run executes the seed command against db.
func Run(ctx context.Context, db *sql.DB, d database.Dialect, cfg Config, out io.Writer, opts ...provision.Option) error {
	if out == nil {
		out = io.Discard
	}
	if cfg.List {
		fmt.Fprintln(out, "Available catalogs:")
		for _, name := range catalog.Names() {
			fmt.Fprintf(out, "  %s\n", name)
		}
		return nil
	}

	cat, err := catalog.Lookup(cfg.Catalog, time.Now())
	if err != nil {
		return err
	}
	sum, err := provision.New(db, d, opts...).Provision(ctx, cfg.Mode, cat)
	if err != nil {
		return fmt.Errorf("provision %s: %w", cat.Name, err)
	}
	if cfg.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	}
	return printSummary(out, sum)
}

func printSummary(w io.Writer, s *provision.Summary) error {
	types := make([]string, 0, len(s.ActivitiesByType))
	for t := range s.ActivitiesByType {
		types = append(types, t)
	}
	sort.Strings(types)

	var err error
	p := func(format string, args ...any) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, args...)
		}
	}
	p("✓ Provisioned catalog %q (%s) in %s\n", s.Catalog, s.Mode, s.Duration.Round(time.Millisecond))
	p("- Run: %s\n", s.RunID)
	p("- Museum activities: %d\n", s.Activities)
	for _, t := range types {
		p("  %s: %d\n", t, s.ActivitiesByType[t])
	}
	p("- Coupons: %d\n", s.Coupons)
	return err
}
