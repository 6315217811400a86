package model

import (
	"math"
	"strings"
	"time"
)

// Coupon is a percentage discount code. A coupon without an expiry never
// expires; otherwise it is usable strictly before ExpiresAt.
type Coupon struct {
	ID                 uint64     // coupons.id
	Code               string     `validate:"required,max=255"` // coupons.code
	DiscountPercentage float64    `validate:"gte=0,lte=100"`    // coupons.discount_percentage
	IsActive           bool       // coupons.is_active
	ExpiresAt          *time.Time // coupons.expires_at (nullable)
	CreatedAt          time.Time  // coupons.created_at
	UpdatedAt          time.Time  // coupons.updated_at
}

// NormalizeCouponCode trims and uppercases a code as typed by a user.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// UsableAt reports whether the coupon can be applied at now.
func (c Coupon) UsableAt(now time.Time) bool {
	if !c.IsActive {
		return false
	}
	if c.ExpiresAt == nil {
		return true
	}
	return now.Before(*c.ExpiresAt)
}

// Apply returns amount reduced by the discount, rounded to cents.
func (c Coupon) Apply(amount float64) float64 {
	pct := math.Max(0, math.Min(100, c.DiscountPercentage))
	discounted := amount * (100 - pct) / 100
	return math.Round(discounted*100) / 100
}
