package model

import "time"

// User represents an account as stored in the `users` table. Carts and
// payments reference users by username rather than by id.
type User struct {
	ID           uint64    // users.id
	Username     string    `validate:"required,max=255"`       // users.username
	Email        string    `validate:"required,email,max=255"` // users.email
	PasswordHash string    // users.password_hash (bcrypt)
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
