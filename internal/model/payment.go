package model

import "time"

// DefaultCurrency is the ISO code used when a payment does not name one.
const DefaultCurrency = "EUR"

// PaymentStatus is the lifecycle state of a payment.
type PaymentStatus = string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// paymentTransitions lists the allowed source status for each target.
var paymentTransitions = map[PaymentStatus]PaymentStatus{
	PaymentCompleted: PaymentPending,
	PaymentFailed:    PaymentPending,
	PaymentRefunded:  PaymentCompleted,
}

// PaymentSource returns the status a payment must be in to move to target.
func PaymentSource(target PaymentStatus) (PaymentStatus, bool) {
	from, ok := paymentTransitions[target]
	return from, ok
}

// Payment records money owed or paid by a user.
//
// TransactionID stays nil until the payment provider has processed it.
type Payment struct {
	ID            uint64        // payments.id
	Username      string        `validate:"required"` // payments.username
	Amount        float64       `validate:"gte=0"`    // payments.amount
	Currency      string        // payments.currency
	Status        PaymentStatus // payments.status
	TransactionID *string       // payments.transaction_id (nullable)
	PaymentMethod *string       // payments.payment_method (nullable)
	CreatedAt     time.Time     // payments.created_at
	UpdatedAt     time.Time     // payments.updated_at
}
