package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus represents payment status
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// PaymentMethod represents how a subscription is paid for
type PaymentMethod string

const (
	PaymentMethodGCash        PaymentMethod = "gcash"
	PaymentMethodPayMaya      PaymentMethod = "paymaya"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

// CurrencyPHP is the only currency the marketplace bills in
const CurrencyPHP = "PHP"

// Payment is a subscription payment. Gateway settlement happens outside the
// system; an admin confirms the payment once funds are received.
type Payment struct {
	ID             uuid.UUID     `json:"id" db:"id"`
	UserID         uuid.UUID     `json:"user_id" db:"user_id"`
	SubscriptionID uuid.UUID     `json:"subscription_id" db:"subscription_id"`
	Amount         float64       `json:"amount" db:"amount"`
	Currency       string        `json:"currency" db:"currency"`
	Method         PaymentMethod `json:"method" db:"method"`
	Status         PaymentStatus `json:"status" db:"status"`
	Reference      *string       `json:"reference,omitempty" db:"reference"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
	CompletedAt    *time.Time    `json:"completed_at,omitempty" db:"completed_at"`
}
