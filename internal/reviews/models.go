package reviews

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a review, seller or listing does not exist
	ErrNotFound = errors.New("review not found")
)

// Status controls whether a review is shown publicly
type Status string

const (
	StatusPublished Status = "published"
	StatusHidden    Status = "hidden"
)

// Review is a buyer's rating of a seller
type Review struct {
	ID         uuid.UUID  `json:"id"`
	ReviewerID uuid.UUID  `json:"reviewer_id"`
	SellerID   uuid.UUID  `json:"seller_id"`
	CarID      *uuid.UUID `json:"car_id,omitempty"`
	Rating     int        `json:"rating"`
	Title      *string    `json:"title,omitempty"`
	Comment    string     `json:"comment"`
	Status     Status     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`

	ReviewerName string `json:"reviewer_name,omitempty"`
}

// Summary aggregates a seller's published reviews
type Summary struct {
	Average      float64     `json:"average_rating"`
	Total        int         `json:"total_reviews"`
	Distribution map[int]int `json:"distribution"`
}

// SellerReviews is one page of a seller's reviews plus the overall summary
type SellerReviews struct {
	Summary *Summary  `json:"summary"`
	Reviews []*Review `json:"reviews"`
}

// Reviewee is the account a review is written about
type Reviewee struct {
	ID       uuid.UUID
	IsActive bool
}

// CreateReviewRequest rates a seller, optionally about one listing
type CreateReviewRequest struct {
	SellerID uuid.UUID  `json:"seller_id" binding:"required"`
	CarID    *uuid.UUID `json:"car_id,omitempty"`
	Rating   int        `json:"rating" binding:"required,min=1,max=5"`
	Title    *string    `json:"title,omitempty" binding:"omitempty,max=200"`
	Comment  string     `json:"comment" binding:"max=5000"`
}

func newSummary() *Summary {
	return &Summary{Distribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}
}
