package subscriptions

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/carmarket/pkg/models"
)

// ErrNotFound is returned by the repository when a row does not exist
var ErrNotFound = errors.New("subscriptions: not found")

// FreePlanSlug identifies the plan applied to users without a paid subscription
const FreePlanSlug = "free"

// SubscriptionPeriod is the length of one paid period
const SubscriptionPeriod = 30 * 24 * time.Hour

// BillingPeriod represents the billing cycle
type BillingPeriod string

const (
	BillingMonthly BillingPeriod = "monthly"
	BillingYearly  BillingPeriod = "yearly"
)

// SubscriptionStatus represents a user's subscription status
type SubscriptionStatus string

const (
	SubStatusPending   SubscriptionStatus = "pending"
	SubStatusActive    SubscriptionStatus = "active"
	SubStatusCancelled SubscriptionStatus = "cancelled"
	SubStatusExpired   SubscriptionStatus = "expired"
)

// Plan is a seller plan with listing limits
type Plan struct {
	ID                  uuid.UUID     `json:"id"`
	Slug                string        `json:"slug"`
	Name                string        `json:"name"`
	Description         string        `json:"description"`
	Price               float64       `json:"price"`
	Currency            string        `json:"currency"`
	BillingPeriod       BillingPeriod `json:"billing_period"`
	MaxListings         int           `json:"max_listings"`
	MaxImagesPerListing int           `json:"max_images_per_listing"`
	MaxFeaturedListings int           `json:"max_featured_listings"`
	BoostsPerMonth      int           `json:"boosts_per_month"`
	PrioritySupport     bool          `json:"priority_support"`
	DealerBadge         bool          `json:"dealer_badge"`
	IsActive            bool          `json:"is_active"`
	DisplayOrder        int           `json:"display_order"`
	CreatedAt           time.Time     `json:"created_at"`
}

// Subscription is a user's subscription to a plan
type Subscription struct {
	ID          uuid.UUID          `json:"id"`
	UserID      uuid.UUID          `json:"user_id"`
	PlanID      uuid.UUID          `json:"plan_id"`
	Status      SubscriptionStatus `json:"status"`
	StartsAt    *time.Time         `json:"starts_at,omitempty"`
	EndsAt      *time.Time         `json:"ends_at,omitempty"`
	BoostsUsed  int                `json:"boosts_used"`
	CancelledAt *time.Time         `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// PlanLimits are the effective limits for a user, consulted on listing
// creation, boosting and image upload
type PlanLimits struct {
	PlanSlug            string     `json:"plan_slug"`
	SubscriptionID      *uuid.UUID `json:"subscription_id,omitempty"`
	MaxListings         int        `json:"max_listings"`
	MaxImagesPerListing int        `json:"max_images_per_listing"`
	MaxFeaturedListings int        `json:"max_featured_listings"`
	BoostsPerMonth      int        `json:"boosts_per_month"`
	BoostsUsed          int        `json:"boosts_used"`
}

// BoostsRemaining returns the boosts left in the current period
func (l *PlanLimits) BoostsRemaining() int {
	if remaining := l.BoostsPerMonth - l.BoostsUsed; remaining > 0 {
		return remaining
	}
	return 0
}

// DefaultFreeLimits is used when the free plan row is missing
func DefaultFreeLimits() *PlanLimits {
	return &PlanLimits{
		PlanSlug:            FreePlanSlug,
		MaxListings:         2,
		MaxImagesPerListing: 5,
	}
}

// LimitsFromPlan builds limits from a plan and the optional subscription
func LimitsFromPlan(plan *Plan, sub *Subscription) *PlanLimits {
	limits := &PlanLimits{
		PlanSlug:            plan.Slug,
		MaxListings:         plan.MaxListings,
		MaxImagesPerListing: plan.MaxImagesPerListing,
		MaxFeaturedListings: plan.MaxFeaturedListings,
		BoostsPerMonth:      plan.BoostsPerMonth,
	}
	if sub != nil {
		id := sub.ID
		limits.SubscriptionID = &id
		limits.BoostsUsed = sub.BoostsUsed
	}
	return limits
}

// ========================================
// REQUEST/RESPONSE TYPES
// ========================================

// SubscribeRequest represents a request to subscribe to a plan
type SubscribeRequest struct {
	PlanSlug      string               `json:"plan_slug" binding:"required"`
	PaymentMethod models.PaymentMethod `json:"payment_method" binding:"required,oneof=gcash paymaya card bank_transfer"`
}

// SubscribeResponse is the pending subscription and the payment awaiting settlement
type SubscribeResponse struct {
	Subscription *Subscription   `json:"subscription"`
	Plan         *Plan           `json:"plan"`
	Payment      *models.Payment `json:"payment"`
}

// ConfirmPaymentRequest is sent by an admin once funds are received
type ConfirmPaymentRequest struct {
	Reference string `json:"reference" binding:"required,max=100"`
}

// SubscriptionResponse returns subscription details with plan info
type SubscriptionResponse struct {
	Subscription  *Subscription `json:"subscription"`
	Plan          *Plan         `json:"plan"`
	Limits        *PlanLimits   `json:"limits"`
	DaysRemaining int           `json:"days_remaining"`
}
