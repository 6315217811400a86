package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/mufant-museum/internal/database"
	"github.com/iliyamo/mufant-museum/internal/model"
)

// TicketRepo manages the lines of a cart. Cart and activity references are
// enforced by the store's foreign keys, not checked here.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

const ticketColumns = `id, cart_id, museum_activity_id, quantity, charging_rate, created_at, updated_at`

// Create inserts t as given, including its charging rate. Use AddToCart to
// capture the activity's current price instead.
func (r *TicketRepo) Create(ctx context.Context, t *model.Ticket) error {
	return r.createTx(ctx, r.db, t)
}

func (r *TicketRepo) createTx(ctx context.Context, q database.Querier, t *model.Ticket) error {
	if err := model.Validate(t); err != nil {
		return database.Invalid("ticket", err)
	}
	const qInsert = `INSERT INTO tickets (cart_id, museum_activity_id, quantity, charging_rate) VALUES (?, ?, ?, ?)`
	res, err := q.ExecContext(ctx, qInsert, t.CartID, t.MuseumActivityID, t.Quantity, t.ChargingRate)
	if err != nil {
		return fmt.Errorf("insert ticket: %w", database.Classify(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	stored, err := getTicket(ctx, q, uint64(id))
	if err != nil {
		return err
	}
	*t = *stored
	return nil
}

// AddToCart adds qty tickets for an activity, charging the activity's price
// at the moment of the call. Later price changes do not affect the ticket.
func (r *TicketRepo) AddToCart(ctx context.Context, cartID, activityID uint64, qty int) (*model.Ticket, error) {
	t := &model.Ticket{CartID: cartID, MuseumActivityID: activityID, Quantity: qty}
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var price sql.NullFloat64
		err := tx.QueryRowContext(ctx, `SELECT price FROM museum_activities WHERE id = ?`, activityID).Scan(&price)
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("activity", activityID)
		}
		if err != nil {
			return database.Classify(err)
		}
		t.ChargingRate = price.Float64
		return r.createTx(ctx, tx, t)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Remove deletes one ticket.
func (r *TicketRepo) Remove(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tickets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete ticket: %w", database.Classify(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("ticket", id)
	}
	return nil
}

// ListByCart returns the cart's tickets in insertion order.
func (r *TicketRepo) ListByCart(ctx context.Context, cartID uint64) ([]*model.Ticket, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+ticketColumns+" FROM tickets WHERE cart_id = ? ORDER BY id", cartID)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", database.Classify(err))
	}
	defer rows.Close()

	var out []*model.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, database.Classify(err)
	}
	return out, nil
}

func getTicket(ctx context.Context, q database.Querier, id uint64) (*model.Ticket, error) {
	t, err := scanTicket(q.QueryRowContext(ctx, "SELECT "+ticketColumns+" FROM tickets WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("ticket", id)
	}
	return t, err
}

func scanTicket(s rowScanner) (*model.Ticket, error) {
	var (
		t                    model.Ticket
		qty                  sql.NullInt64
		rate                 sql.NullFloat64
		createdAt, updatedAt database.NullTime
	)
	if err := s.Scan(&t.ID, &t.CartID, &t.MuseumActivityID, &qty, &rate, &createdAt, &updatedAt); err != nil {
		return nil, database.Classify(err)
	}
	t.Quantity = int(qty.Int64)
	t.ChargingRate = rate.Float64
	t.CreatedAt, t.UpdatedAt = createdAt.Time, updatedAt.Time
	return &t, nil
}
