package notifications

import (
	"time"

	"github.com/google/uuid"
)

// Notification types
const (
	TypeGeneral      = "general"
	TypeListing      = "listing"
	TypeInquiry      = "inquiry"
	TypeReview       = "review"
	TypeFraud        = "fraud"
	TypeSubscription = "subscription"
)

// Notification is an in-app message for a user
type Notification struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
