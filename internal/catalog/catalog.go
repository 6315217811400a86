// Package catalog describes the activities and coupons loaded into a new
// store. Catalogs are plain data built from a reference time; they never
// touch the store, so two runs can be compared before either is applied.
package catalog

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/iliyamo/mufant-museum/internal/database"
	"github.com/iliyamo/mufant-museum/internal/model"
	"github.com/iliyamo/mufant-museum/internal/schema"
)

// Catalog is an ordered set of activities and coupons.
type Catalog struct {
	Name       string
	Activities []model.Activity
	Coupons    []model.Coupon
}

// Builder produces a catalog relative to now.
type Builder func(now time.Time) Catalog

var builders = map[string]Builder{
	"default":    Default,
	"admissions": Admissions,
}

// Names lists the registered catalogs in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup builds the catalog registered under name.
func Lookup(name string, now time.Time) (Catalog, error) {
	b, ok := builders[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Catalog{}, fmt.Errorf("unknown catalog %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return b(now), nil
}

// ActivitiesByType counts the catalog's activities per normalized type.
func (c Catalog) ActivitiesByType() map[string]int {
	out := make(map[string]int)
	for _, a := range c.Activities {
		out[model.NormalizeActivityType(a.Type)]++
	}
	return out
}

// Normalized returns a copy with activity types lowercased, default venues
// filled in and coupon codes uppercased.
func (c Catalog) Normalized() Catalog {
	out := Catalog{
		Name:       c.Name,
		Activities: make([]model.Activity, len(c.Activities)),
		Coupons:    make([]model.Coupon, len(c.Coupons)),
	}
	for i, a := range c.Activities {
		a.Normalize()
		out.Activities[i] = a
	}
	for i, cp := range c.Coupons {
		cp.Code = model.NormalizeCouponCode(cp.Code)
		out.Coupons[i] = cp
	}
	return out
}

// RecordError names the catalog record that failed validation or insertion.
type RecordError struct {
	Table string
	Name  string
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Table, e.Name, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// Validate checks every record after normalization and stops at the first
// invalid one. Duplicate coupon codes are left to the store's unique
// constraint.
func (c Catalog) Validate() error {
	n := c.Normalized()
	for _, a := range n.Activities {
		if err := model.Validate(a); err != nil {
			return &RecordError{Table: schema.TableActivities, Name: a.Name, Err: database.Invalid("activity", err)}
		}
	}
	for _, cp := range n.Coupons {
		if err := model.Validate(cp); err != nil {
			return &RecordError{Table: schema.TableCoupons, Name: cp.Code, Err: database.Invalid("coupon", err)}
		}
	}
	return nil
}

func days(now time.Time, n int) *time.Time {
	t := now.AddDate(0, 0, n)
	return &t
}

func at(now time.Time) *time.Time {
	t := now
	return &t
}

// reference truncates now so the values written match what reads back.
func reference(now time.Time) time.Time {
	return now.UTC().Truncate(time.Second)
}
