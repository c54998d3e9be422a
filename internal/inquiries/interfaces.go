package inquiries

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/carmarket/pkg/models"
)

// RepositoryInterface defines inquiry persistence
type RepositoryInterface interface {
	GetCarSummary(ctx context.Context, carID uuid.UUID) (*CarSummary, error)
	CreateInquiry(ctx context.Context, inq *Inquiry) error
	GetInquiry(ctx context.Context, id uuid.UUID) (*Inquiry, error)
	ListResponses(ctx context.Context, inquiryID uuid.UUID) ([]*Response, error)
	ListInquiries(ctx context.Context, userID uuid.UUID, box Box, status *Status, limit, offset int) ([]*Inquiry, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status, at time.Time) error
	AddResponse(ctx context.Context, resp *Response, status Status, sellerReply bool) error
	GetResponseStats(ctx context.Context, sellerID uuid.UUID) (*ResponseStats, error)
}

// UserDirectory looks up the people on a thread
type UserDirectory interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Notifier delivers in-app notifications
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, title, message string)
}
