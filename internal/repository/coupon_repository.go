package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/mufant-museum/internal/database"
	"github.com/iliyamo/mufant-museum/internal/model"
)

// CouponRepo reads and writes discount codes. Codes are stored uppercase
// and looked up case-insensitively by normalizing the input.
type CouponRepo struct {
	db *sql.DB
}

// NewCouponRepo returns a CouponRepo bound to the given database.
func NewCouponRepo(db *sql.DB) *CouponRepo { return &CouponRepo{db: db} }

const couponColumns = `id, code, discount_percentage, is_active, expires_at, created_at, updated_at`

// Create inserts a coupon. A duplicate code is a unique ConstraintViolation.
func (r *CouponRepo) Create(ctx context.Context, c *model.Coupon) error {
	return r.CreateTx(ctx, r.db, c)
}

// CreateTx inserts a coupon using q, normally the caller's transaction.
func (r *CouponRepo) CreateTx(ctx context.Context, q database.Querier, c *model.Coupon) error {
	c.Code = model.NormalizeCouponCode(c.Code)
	if err := model.Validate(c); err != nil {
		return database.Invalid("coupon", err)
	}
	const qInsert = `INSERT INTO coupons (code, discount_percentage, is_active, expires_at) VALUES (?, ?, ?, ?)`
	res, err := q.ExecContext(ctx, qInsert, c.Code, c.DiscountPercentage, c.IsActive, database.TimeArg(c.ExpiresAt))
	if err != nil {
		return fmt.Errorf("insert coupon: %w", database.Classify(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	stored, err := scanCoupon(q.QueryRowContext(ctx, "SELECT "+couponColumns+" FROM coupons WHERE id = ?", id))
	if err != nil {
		return err
	}
	*c = *stored
	return nil
}

// GetByCode fetches a coupon regardless of whether it is usable.
func (r *CouponRepo) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	code = model.NormalizeCouponCode(code)
	c, err := scanCoupon(r.db.QueryRowContext(ctx, "SELECT "+couponColumns+" FROM coupons WHERE code = ?", code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("coupon", code)
	}
	return c, err
}

// Redeemable returns the coupon when it is active and unexpired at now, and
// ErrCouponUnusable otherwise. Discount size plays no part.
func (r *CouponRepo) Redeemable(ctx context.Context, code string, now time.Time) (*model.Coupon, error) {
	c, err := r.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !c.UsableAt(now) {
		return nil, fmt.Errorf("%w: %s", ErrCouponUnusable, c.Code)
	}
	return c, nil
}

func scanCoupon(s rowScanner) (*model.Coupon, error) {
	var (
		c                    model.Coupon
		discount             sql.NullFloat64
		active               sql.NullBool
		expires              database.NullTime
		createdAt, updatedAt database.NullTime
	)
	if err := s.Scan(&c.ID, &c.Code, &discount, &active, &expires, &createdAt, &updatedAt); err != nil {
		return nil, database.Classify(err)
	}
	c.DiscountPercentage = discount.Float64
	c.IsActive = active.Bool
	c.ExpiresAt = expires.Ptr()
	c.CreatedAt, c.UpdatedAt = createdAt.Time, updatedAt.Time
	return &c, nil
}
