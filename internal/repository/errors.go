// Package repository defines error types that are reused across multiple
// repositories. Row lookups that miss return a *database.NotFoundError so
// handlers and CLIs can use errors.Is(err, database.ErrNotFound) regardless
// of which table was queried; the sentinels below cover the business rules
// that sit on top of the store's own constraints.
package repository

import (
	"errors"
	"fmt"

	"github.com/iliyamo/mufant-museum/internal/database"
)

// ErrUserExists is returned when a username or email is already taken.
var ErrUserExists = errors.New("user already exists")

// ErrInvalidCredentials is returned by Authenticate for an unknown user or
// a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrCouponUnusable is returned when a coupon exists but is inactive or
// expired.
var ErrCouponUnusable = errors.New("coupon is inactive or expired")

// ErrInvalidTransition is returned when a payment is moved to a status that
// its current status does not allow.
var ErrInvalidTransition = errors.New("invalid payment status transition")

func notFound(kind string, key any) error {
	return &database.NotFoundError{Kind: kind, Name: fmt.Sprint(key)}
}
