// Package inspect implements the read-only store report command.
package inspect

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"io"
	"strings"

	"github.com/iliyamo/mufant-museum/internal/database"
	"github.com/iliyamo/mufant-museum/internal/inspect"
)

// Config holds inspect command configuration.
type Config struct {
	Limit  int
	Tables []string
	JSON   bool
	// Strict makes Run fail when any report section failed.
	Strict bool
}

// ParseConfig parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var (
		cfg    Config
		tables string
	)
	fs.IntVar(&cfg.Limit, "limit", inspect.DefaultSampleLimit, "number of sample activities")
	fs.StringVar(&tables, "tables", "", "comma separated tables to describe (default: managed tables)")
	fs.BoolVar(&cfg.JSON, "json", false, "print the report as JSON")
	fs.BoolVar(&cfg.Strict, "strict", false, "exit non-zero when a section failed")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	for _, t := range strings.Split(tables, ",") {
		if t = strings.TrimSpace(t); t != "" {
			cfg.Tables = append(cfg.Tables, t)
		}
	}
	return cfg, nil
}

// Run builds a report of db and writes it to out.
func Run(ctx context.Context, db *sql.DB, d database.Dialect, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	rep := inspect.NewReporter(db, d).Report(ctx, cfg.Limit, cfg.Tables...)
	if cfg.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			return err
		}
	} else if err := inspect.Render(out, rep); err != nil {
		return err
	}
	if cfg.Strict {
		return firstFailure(rep)
	}
	return nil
}

func firstFailure(rep *inspect.Report) error {
	if rep.Status.Err != nil {
		return rep.Status.Err
	}
	if rep.Tables.Err != nil {
		return rep.Tables.Err
	}
	for _, s := range rep.Schemas {
		if s.Err != nil {
			return s.Err
		}
	}
	return rep.Sample.Err
}
