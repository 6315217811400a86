package model

import (
	"strings"
	"time"
)

// DefaultVenue is stored in museum_activities.location when none is given.
const DefaultVenue = "Mufant"

// ActivityType is the lowercase category of a museum activity.
type ActivityType = string

const (
	TypeMuseum ActivityType = "museum"
	TypeEvent  ActivityType = "event"
	TypeRoom   ActivityType = "room"
	TypeTour   ActivityType = "tour"
)

// ActivityTypes lists every known type in display order.
var ActivityTypes = []ActivityType{TypeMuseum, TypeEvent, TypeRoom, TypeTour}

// NormalizeActivityType folds the mixed casing found in older seed data
// ("Museum", "Event") onto the canonical lowercase form.
func NormalizeActivityType(t string) ActivityType {
	return strings.ToLower(strings.TrimSpace(t))
}

// Activity is a bookable museum offering: an exhibition, a room, a tour or
// a general admission tier. It corresponds to a row in the
// `museum_activities` table.
//
// StartDate and EndDate are nil for permanent activities. Price is the
// current list price; tickets capture their own copy when added to a cart.
type Activity struct {
	ID          uint64     // museum_activities.id
	Name        string     `validate:"required"`                              // museum_activities.name
	Type        string     `validate:"required,oneof=museum event room tour"` // museum_activities.type
	Description string     // museum_activities.description (nullable)
	StartDate   *time.Time // museum_activities.start_date (nullable)
	EndDate     *time.Time // museum_activities.end_date (nullable)
	Location    string     // museum_activities.location
	Notes       string     // museum_activities.notes (nullable)
	Price       float64    `validate:"gte=0"` // museum_activities.price
	ImagePath   string     // museum_activities.image_path (nullable)
	CreatedAt   time.Time  // museum_activities.created_at
	UpdatedAt   time.Time  // museum_activities.updated_at
}

// Permanent reports whether the activity has no end date.
func (a Activity) Permanent() bool { return a.EndDate == nil }

// Normalize lowercases the type and fills in the default venue.
func (a *Activity) Normalize() {
	a.Name = strings.TrimSpace(a.Name)
	a.Type = NormalizeActivityType(a.Type)
	if strings.TrimSpace(a.Location) == "" {
		a.Location = DefaultVenue
	}
}
