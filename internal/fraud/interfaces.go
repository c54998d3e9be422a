package fraud

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RepositoryInterface defines the queries the fraud rules run
type RepositoryInterface interface {
	CountVINDuplicates(ctx context.Context, sellerID uuid.UUID, vin string, excludeCarID uuid.UUID) (int, error)
	CountSimilarListings(ctx context.Context, sub ListingSubmission, minPrice, maxPrice float64) (int, error)
	GetMarketStats(ctx context.Context, sub ListingSubmission, yearWindow int, since time.Time) (*MarketStats, error)
	CountListingsSince(ctx context.Context, sellerID uuid.UUID, since time.Time) (int, error)
	HasIndicatorSince(ctx context.Context, userID uuid.UUID, indicatorType IndicatorType, window string, since time.Time) (bool, error)
	CountReviewsOfSeller(ctx context.Context, reviewerID, sellerID uuid.UUID) (int, error)
	CountReviewsSince(ctx context.Context, reviewerID uuid.UUID, since time.Time) (int, error)

	CreateIndicator(ctx context.Context, ind *FraudIndicator) error
	ListIndicators(ctx context.Context, filters IndicatorFilters, limit, offset int) ([]*FraudIndicator, int64, error)
	GetReputationInputs(ctx context.Context, userID uuid.UUID) (*ReputationInputs, error)
}

// AdminNotifier alerts staff about high-risk activity
type AdminNotifier interface {
	NotifyAdmins(ctx context.Context, title, message string)
}

// ResponseRater reports how often a seller answers inquiries
type ResponseRater interface {
	ResponseRate(ctx context.Context, sellerID uuid.UUID) (float64, error)
}
