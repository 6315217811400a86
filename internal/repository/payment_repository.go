package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/mufant-museum/internal/database"
	"github.com/iliyamo/mufant-museum/internal/model"
)

// PaymentRepo records payments and moves them through their lifecycle:
// pending -> completed -> refunded, or pending -> failed.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo returns a PaymentRepo bound to the given database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

const paymentColumns = `id, username, amount, currency, status, transaction_id, payment_method, created_at, updated_at`

// Create records a pending payment. An empty currency defaults to EUR.
func (r *PaymentRepo) Create(ctx context.Context, p *model.Payment) error {
	p.Username = strings.TrimSpace(p.Username)
	p.Currency = strings.ToUpper(strings.TrimSpace(p.Currency))
	if p.Currency == "" {
		p.Currency = model.DefaultCurrency
	}
	p.Status = model.PaymentPending
	if err := model.Validate(p); err != nil {
		return database.Invalid("payment", err)
	}
	const q = `INSERT INTO payments (username, amount, currency, status, payment_method) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, p.Username, p.Amount, p.Currency, p.Status, nullStringPtr(p.PaymentMethod))
	if err != nil {
		return fmt.Errorf("insert payment: %w", database.Classify(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	stored, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*p = *stored
	return nil
}

// GetByID fetches a payment by id.
func (r *PaymentRepo) GetByID(ctx context.Context, id uint64) (*model.Payment, error) {
	return getPayment(ctx, r.db, id)
}

// Complete marks a pending payment as paid. When txID is empty a random
// transaction id is generated.
func (r *PaymentRepo) Complete(ctx context.Context, id uint64, method, txID string) (*model.Payment, error) {
	if txID == "" {
		txID = uuid.NewString()
	}
	return r.transition(ctx, id, model.PaymentCompleted,
		`transaction_id = ?, payment_method = COALESCE(?, payment_method)`, txID, nullString(method))
}

// Fail marks a pending payment as failed.
func (r *PaymentRepo) Fail(ctx context.Context, id uint64) (*model.Payment, error) {
	return r.transition(ctx, id, model.PaymentFailed, "")
}

// Refund marks a completed payment as refunded.
func (r *PaymentRepo) Refund(ctx context.Context, id uint64) (*model.Payment, error) {
	return r.transition(ctx, id, model.PaymentRefunded, "")
}

// transition moves payment id to target when it is in the allowed source
// status. The status check and update are a single conditional UPDATE.
func (r *PaymentRepo) transition(ctx context.Context, id uint64, target model.PaymentStatus, set string, setArgs ...any) (*model.Payment, error) {
	from, ok := model.PaymentSource(target)
	if !ok {
		return nil, fmt.Errorf("%w: unknown target %q", ErrInvalidTransition, target)
	}
	var out *model.Payment
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		q := `UPDATE payments SET status = ?, updated_at = CURRENT_TIMESTAMP`
		if set != "" {
			q += ", " + set
		}
		q += ` WHERE id = ? AND status = ?`
		args := append([]any{target}, setArgs...)
		args = append(args, id, from)

		res, err := tx.ExecContext(ctx, q, args...)
		if err != nil {
			return fmt.Errorf("update payment: %w", database.Classify(err))
		}
		current, err := getPayment(ctx, tx, id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, target)
		}
		out = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func getPayment(ctx context.Context, q database.Querier, id uint64) (*model.Payment, error) {
	var (
		p                    model.Payment
		currency, status     sql.NullString
		txID, method         sql.NullString
		createdAt, updatedAt database.NullTime
	)
	err := q.QueryRowContext(ctx, "SELECT "+paymentColumns+" FROM payments WHERE id = ?", id).
		Scan(&p.ID, &p.Username, &p.Amount, &currency, &status, &txID, &method, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("payment", id)
	}
	if err != nil {
		return nil, database.Classify(err)
	}
	p.Currency, p.Status = currency.String, status.String
	p.TransactionID, p.PaymentMethod = stringPtr(txID), stringPtr(method)
	p.CreatedAt, p.UpdatedAt = createdAt.Time, updatedAt.Time
	return &p, nil
}
