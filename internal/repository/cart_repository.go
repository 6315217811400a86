package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/mufant-museum/internal/database"
	"github.com/iliyamo/mufant-museum/internal/model"
)

// CartRepo provides access to carts. Tickets live in their own repository
// but are removed together with their cart by Discard.
type CartRepo struct {
	db *sql.DB
}

// NewCartRepo returns a CartRepo bound to the given database.
func NewCartRepo(db *sql.DB) *CartRepo { return &CartRepo{db: db} }

// Create opens an empty cart for username. The user must exist.
func (r *CartRepo) Create(ctx context.Context, username string) (*model.Cart, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, database.Invalid("cart", errors.New("Username must satisfy required"))
	}
	res, err := r.db.ExecContext(ctx, `INSERT INTO carts (username) VALUES (?)`, username)
	if err != nil {
		return nil, fmt.Errorf("insert cart: %w", database.Classify(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a cart by id.
func (r *CartRepo) GetByID(ctx context.Context, id uint64) (*model.Cart, error) {
	const q = `SELECT id, username, created_at, updated_at FROM carts WHERE id = ?`
	var (
		c                    model.Cart
		createdAt, updatedAt database.NullTime
	)
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&c.ID, &c.Username, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("cart", id)
		}
		return nil, database.Classify(err)
	}
	c.CreatedAt, c.UpdatedAt = createdAt.Time, updatedAt.Time
	return &c, nil
}

// Total sums quantity times the captured charging rate over the cart's
// tickets. An empty cart totals zero.
func (r *CartRepo) Total(ctx context.Context, id uint64) (float64, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return 0, err
	}
	const q = `SELECT COALESCE(SUM(quantity * charging_rate), 0) FROM tickets WHERE cart_id = ?`
	var total float64
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&total); err != nil {
		return 0, fmt.Errorf("cart total: %w", database.Classify(err))
	}
	return total, nil
}

// Discard deletes the cart and its tickets in one transaction.
func (r *CartRepo) Discard(ctx context.Context, id uint64) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM tickets WHERE cart_id = ?`, id); err != nil {
			return fmt.Errorf("delete tickets: %w", database.Classify(err))
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM carts WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete cart: %w", database.Classify(err))
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return notFound("cart", id)
		}
		return nil
	})
}
