package reviews

import (
	"context"

	"github.com/google/uuid"
	"github.com/richxcame/carmarket/internal/fraud"
)

// RepositoryInterface defines review persistence
type RepositoryInterface interface {
	GetReviewee(ctx context.Context, userID uuid.UUID) (*Reviewee, error)
	GetCarSeller(ctx context.Context, carID uuid.UUID) (uuid.UUID, error)
	CreateReview(ctx context.Context, review *Review) error
	GetReview(ctx context.Context, id uuid.UUID) (*Review, error)
	ListSellerReviews(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]*Review, error)
	GetSummary(ctx context.Context, sellerID uuid.UUID) (*Summary, error)
	SetStatus(ctx context.Context, id uuid.UUID, status Status) error
}

// SpamChecker screens a review before it is stored
type SpamChecker interface {
	CheckReview(ctx context.Context, sub fraud.ReviewSubmission) []uuid.UUID
}

// Notifier delivers in-app notifications
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, title, message string)
}
