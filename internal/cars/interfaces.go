package cars

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/carmarket/internal/fraud"
	"github.com/richxcame/carmarket/internal/geo"
	"github.com/richxcame/carmarket/internal/subscriptions"
)

// RepositoryInterface defines the listing data access
type RepositoryInterface interface {
	// Listings
	CreateCar(ctx context.Context, car *Car) error
	GetCar(ctx context.Context, id uuid.UUID) (*Car, error)
	UpdateCar(ctx context.Context, car *Car) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status, at time.Time) error
	SetApproval(ctx context.Context, car *Car) error
	SetFeatured(ctx context.Context, id uuid.UUID, until time.Time, ranking float64) error
	RestoreFeatured(ctx context.Context, id uuid.UUID, featured bool, until *time.Time, ranking float64) error
	UpdateScores(ctx context.Context, car *Car) error
	IncrementViews(ctx context.Context, id uuid.UUID) error
	CountOpenListings(ctx context.Context, sellerID uuid.UUID) (int, error)
	CountFeatured(ctx context.Context, sellerID uuid.UUID, now time.Time) (int, error)
	ListSellerCars(ctx context.Context, sellerID uuid.UUID, status *Status, limit, offset int) ([]*Car, int64, error)
	ExpireListings(ctx context.Context, now time.Time) (int64, error)

	// Search
	SearchCars(ctx context.Context, filters *SearchFilters, now time.Time) ([]*Car, int64, error)
	SearchCandidates(ctx context.Context, filters *SearchFilters, box geo.Box, now time.Time, limit int) ([]*Car, error)

	// Favorites
	AddFavorite(ctx context.Context, userID, carID uuid.UUID) (bool, error)
	RemoveFavorite(ctx context.Context, userID, carID uuid.UUID) (bool, error)
	ListFavorites(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Car, int64, error)

	// Images
	AddImage(ctx context.Context, img *CarImage) (int, error)
	DeleteImage(ctx context.Context, carID, imageID uuid.UUID) (*CarImage, int, error)

	// Reference data
	ListBrands(ctx context.Context) ([]*Brand, error)
	ListModels(ctx context.Context, brandID uuid.UUID) ([]*CarModel, error)
	GetModel(ctx context.Context, id uuid.UUID) (*CarModel, error)
	ListCategories(ctx context.Context) ([]*Category, error)
	ListCities(ctx context.Context) ([]*City, error)
	GetCity(ctx context.Context, id uuid.UUID) (*City, error)
}

// FraudChecker evaluates listings for fraud; it never fails the caller
type FraudChecker interface {
	CheckListing(ctx context.Context, sub fraud.ListingSubmission) []uuid.UUID
}

// PlanLimiter exposes the seller's subscription allowances
type PlanLimiter interface {
	Limits(ctx context.Context, userID uuid.UUID) (*subscriptions.PlanLimits, error)
	ConsumeBoost(ctx context.Context, userID uuid.UUID) error
}

// Notifier delivers in-app notifications
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, title, message string)
}
