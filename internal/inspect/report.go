package inspect

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iliyamo/mufant-museum/internal/database"
	"github.com/iliyamo/mufant-museum/internal/model"
	"github.com/iliyamo/mufant-museum/internal/schema"
)

// DefaultSampleLimit is the number of activities shown when none is asked for.
const DefaultSampleLimit = 10

// Section carries the outcome of one part of a report. Err is kept for
// callers; Error is its text for JSON consumers.
type Section struct {
	Err   error  `json:"-"`
	Error string `json:"error,omitempty"`
}

func (s *Section) fail(err error) {
	s.Err = err
	if err != nil {
		s.Error = err.Error()
	}
}

// Missing reports whether the section failed because a table is absent.
func (s Section) Missing() bool { return errors.Is(s.Err, database.ErrNotFound) }

// StatusSection counts activities in total and per known type.
type StatusSection struct {
	Section
	Total  int            `json:"total"`
	ByType map[string]int `json:"by_type"`
}

// TablesSection lists the tables present in the store.
type TablesSection struct {
	Section
	Names []string `json:"names"`
}

// TableSchema describes one table or why it could not be described.
type TableSchema struct {
	Section
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// SampleSection lists the first activities by id.
type SampleSection struct {
	Section
	Limit      int              `json:"limit"`
	Activities []ActivitySample `json:"activities"`
}

// Report is a point-in-time snapshot. Every section is evaluated on its own
// so a missing table only marks the sections that need it.
type Report struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Status      StatusSection `json:"status"`
	Tables      TablesSection `json:"tables"`
	Schemas     []TableSchema `json:"schemas"`
	Sample      SampleSection `json:"sample"`
}

// Report builds a snapshot. Tables to describe default to the managed
// tables; limit <= 0 uses DefaultSampleLimit.
func (r *Reporter) Report(ctx context.Context, limit int, tables ...string) *Report {
	if limit <= 0 {
		limit = DefaultSampleLimit
	}
	if len(tables) == 0 {
		tables = schema.TableNames()
	}
	rep := &Report{GeneratedAt: time.Now().UTC()}

	rep.Status.ByType = make(map[string]int, len(model.ActivityTypes))
	if total, err := r.CountActivities(ctx, ""); err != nil {
		rep.Status.fail(err)
	} else {
		rep.Status.Total = total
		for _, typ := range model.ActivityTypes {
			n, err := r.CountActivities(ctx, typ)
			if err != nil {
				rep.Status.fail(err)
				break
			}
			rep.Status.ByType[typ] = n
		}
	}

	names, err := r.ListTables(ctx)
	rep.Tables.Names = names
	rep.Tables.fail(err)

	for _, name := range tables {
		ts := TableSchema{Name: name}
		cols, err := r.DescribeTable(ctx, name)
		ts.Columns = cols
		ts.fail(err)
		rep.Schemas = append(rep.Schemas, ts)
	}

	rep.Sample.Limit = limit
	sample, err := r.SampleActivities(ctx, limit)
	rep.Sample.Activities = sample
	rep.Sample.fail(err)

	return rep
}

const (
	okMark   = "✓"
	failMark = "✗"
)

// Render writes rep in the plain-text layout of the status scripts.
func Render(w io.Writer, rep *Report) error {
	var b strings.Builder

	switch {
	case rep.Status.Missing():
		fmt.Fprintf(&b, "%s %s table does not exist\n", failMark, schema.TableActivities)
	case rep.Status.Err != nil:
		fmt.Fprintf(&b, "%s Error reading activities: %v\n", failMark, rep.Status.Err)
	default:
		fmt.Fprintf(&b, "%s %s table exists\n", okMark, schema.TableActivities)
		fmt.Fprintf(&b, "%s Total activities in database: %d\n", okMark, rep.Status.Total)
		for _, typ := range model.ActivityTypes {
			fmt.Fprintf(&b, "%s %s count: %d\n", okMark, typeLabel(typ), rep.Status.ByType[typ])
		}
	}

	b.WriteString("\nTables in the database:\n")
	if rep.Tables.Err != nil {
		fmt.Fprintf(&b, "%s %v\n", failMark, rep.Tables.Err)
	}
	for _, name := range rep.Tables.Names {
		fmt.Fprintf(&b, "- %s\n", name)
	}

	b.WriteString("\nTable schemas:\n")
	for _, ts := range rep.Schemas {
		if ts.Err != nil {
			fmt.Fprintf(&b, "\n%s %s: %v\n", failMark, ts.Name, ts.Err)
			continue
		}
		fmt.Fprintf(&b, "\n%s:\n", ts.Name)
		for _, c := range ts.Columns {
			line := "  " + c.Name + " " + c.DeclaredType
			if c.NotNull {
				line += " NOT NULL"
			}
			if c.PrimaryKey {
				line += " PRIMARY KEY"
			}
			b.WriteString(line + "\n")
		}
	}

	b.WriteString("\nSample activities:\n")
	if rep.Sample.Err != nil {
		fmt.Fprintf(&b, "%s %v\n", failMark, rep.Sample.Err)
	}
	for _, a := range rep.Sample.Activities {
		fmt.Fprintf(&b, "  %d: %s (%s)\n", a.ID, a.Name, a.Type)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func typeLabel(typ string) string {
	if typ == "" {
		return typ
	}
	return strings.ToUpper(typ[:1]) + typ[1:]
}
