package fraud

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by the repository when a row does not exist
var ErrNotFound = errors.New("fraud: not found")

// IndicatorType identifies the rule that raised an indicator
type IndicatorType string

const (
	IndicatorDuplicateVIN     IndicatorType = "duplicate_vin"
	IndicatorSimilarListing   IndicatorType = "similar_listing"
	IndicatorPriceOutlierLow  IndicatorType = "price_outlier_low"
	IndicatorPriceOutlierHigh IndicatorType = "price_outlier_high"
	IndicatorRapidListing     IndicatorType = "rapid_listing"
	IndicatorReviewSpam       IndicatorType = "review_spam"
)

// IsValid reports whether t is a known indicator type
func (t IndicatorType) IsValid() bool {
	switch t {
	case IndicatorDuplicateVIN, IndicatorSimilarListing, IndicatorPriceOutlierLow,
		IndicatorPriceOutlierHigh, IndicatorRapidListing, IndicatorReviewSpam:
		return true
	}
	return false
}

// Severity of an indicator
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// IsValid reports whether s is a known severity
func (s Severity) IsValid() bool {
	return s == SeverityLow || s == SeverityMedium || s == SeverityHigh
}

// Rapid listing windows, stored in details.window
const (
	WindowDaily  = "24h"
	WindowWeekly = "7d"
)

// FraudIndicator is an append-only flag raised by a rule. Indicators are
// informational and never block the action that raised them.
type FraudIndicator struct {
	ID          uuid.UUID              `json:"id"`
	UserID      uuid.UUID              `json:"user_id"`
	CarID       *uuid.UUID             `json:"car_id,omitempty"`
	ReviewID    *uuid.UUID             `json:"review_id,omitempty"`
	Type        IndicatorType          `json:"indicator_type"`
	Severity    Severity               `json:"severity"`
	Description string                 `json:"description"`
	Details     map[string]interface{} `json:"details,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}

// ListingSubmission is the listing data the listing rules look at
type ListingSubmission struct {
	CarID    uuid.UUID
	SellerID uuid.UUID
	BrandID  uuid.UUID
	ModelID  uuid.UUID
	Year     int
	Price    float64
	VIN      *string
	// IsUpdate skips the listing-rate rules, which only apply to new listings
	IsUpdate bool
}

// ReviewSubmission is a review about to be stored
type ReviewSubmission struct {
	ReviewID   uuid.UUID
	ReviewerID uuid.UUID
	SellerID   uuid.UUID
}

// MarketStats is the trailing market price for a brand/model/year window
type MarketStats struct {
	Average float64
	Samples int
}

// IndicatorFilters narrows admin indicator listings
type IndicatorFilters struct {
	Type     *IndicatorType
	Severity *Severity
	UserID   *uuid.UUID
}

// ========================================
// REPUTATION
// ========================================

// ReputationLevel is the categorical reputation of a seller
type ReputationLevel string

const (
	LevelExcellent ReputationLevel = "excellent"
	LevelGood      ReputationLevel = "good"
	LevelAverage   ReputationLevel = "average"
	LevelPoor      ReputationLevel = "poor"
	LevelVeryPoor  ReputationLevel = "very_poor"
)

// ReputationInputs are the account facts the reputation score is built from
type ReputationInputs struct {
	EmailVerified    bool
	IdentityVerified bool
	BusinessVerified bool
	AverageRating    float64
	ReviewCount      int
	ActiveListings   int
	ResponseRate     float64
	AccountCreatedAt time.Time
	IndicatorCount   int
}

// ReputationBreakdown shows each component's contribution
type ReputationBreakdown struct {
	Base         float64 `json:"base"`
	Verification float64 `json:"verification"`
	Rating       float64 `json:"rating"`
	Reviews      float64 `json:"reviews"`
	Listings     float64 `json:"listings"`
	ResponseRate float64 `json:"response_rate"`
	AccountAge   float64 `json:"account_age"`
	FraudPenalty float64 `json:"fraud_penalty"`
}

// Reputation is a seller's trust summary
type Reputation struct {
	UserID     uuid.UUID           `json:"user_id"`
	Score      float64             `json:"score"`
	TrustScore float64             `json:"trust_score"`
	Level      ReputationLevel     `json:"level"`
	Breakdown  ReputationBreakdown `json:"breakdown"`
}
