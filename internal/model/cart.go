package model

import "time"

// Cart groups the tickets a user is about to pay for. It exists until the
// payment completes or the cart is discarded.
type Cart struct {
	ID        uint64    // carts.id
	Username  string    // carts.username
	CreatedAt time.Time // carts.created_at
	UpdatedAt time.Time // carts.updated_at
}

// Ticket is one line of a cart. ChargingRate is the unit price captured
// when the ticket was added and is never recomputed from the activity.
type Ticket struct {
	ID               uint64    // tickets.id
	CartID           uint64    `validate:"required"` // tickets.cart_id
	MuseumActivityID uint64    `validate:"required"` // tickets.museum_activity_id
	Quantity         int       `validate:"gt=0"`     // tickets.quantity
	ChargingRate     float64   `validate:"gte=0"`    // tickets.charging_rate
	CreatedAt        time.Time // tickets.created_at
	UpdatedAt        time.Time // tickets.updated_at
}

// Subtotal is quantity times the captured rate.
func (t Ticket) Subtotal() float64 {
	return float64(t.Quantity) * t.ChargingRate
}
