package database

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// TimeLayout is the text layout written to timestamp columns. It matches
// CURRENT_TIMESTAMP on both engines.
const TimeLayout = "2006-01-02 15:04:05"

// FormatTime renders t in UTC using TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// TimeArg returns a bind argument for a nullable timestamp column.
func TimeArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return FormatTime(*t)
}

// NullTime scans timestamp columns regardless of whether the driver hands
// back time.Time (mysql parseTime, sqlite typed columns) or raw text.
type NullTime struct {
	Time  time.Time
	Valid bool
}

var timeLayouts = []string{
	TimeLayout,
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Scan implements sql.Scanner.
func (n *NullTime) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		n.Time, n.Valid = time.Time{}, false
		return nil
	case time.Time:
		n.Time, n.Valid = v.UTC(), true
		return nil
	case string:
		return n.parse(v)
	case []byte:
		return n.parse(string(v))
	}
	return fmt.Errorf("scan timestamp: unsupported type %T", value)
}

func (n *NullTime) parse(s string) error {
	if s == "" {
		n.Time, n.Valid = time.Time{}, false
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			n.Time, n.Valid = t.UTC(), true
			return nil
		}
	}
	return fmt.Errorf("scan timestamp: unrecognised value %q", s)
}

// Value implements driver.Valuer.
func (n NullTime) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return FormatTime(n.Time), nil
}

// Ptr returns nil for NULL and a pointer to the time otherwise.
func (n NullTime) Ptr() *time.Time {
	if !n.Valid {
		return nil
	}
	t := n.Time
	return &t
}
