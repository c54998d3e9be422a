package subscriptions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/carmarket/pkg/models"
)

// RepositoryInterface defines the persistence operations used by the service
type RepositoryInterface interface {
	ListActivePlans(ctx context.Context) ([]*Plan, error)
	GetPlanBySlug(ctx context.Context, slug string) (*Plan, error)
	GetPlanByID(ctx context.Context, id uuid.UUID) (*Plan, error)

	GetActiveSubscription(ctx context.Context, userID uuid.UUID, now time.Time) (*Subscription, error)
	GetOpenSubscription(ctx context.Context, userID uuid.UUID, now time.Time) (*Subscription, error)
	CreateSubscriptionWithPayment(ctx context.Context, sub *Subscription, payment *models.Payment) error
	CancelSubscription(ctx context.Context, subID uuid.UUID, at time.Time) error
	IncrementBoostsUsed(ctx context.Context, subID uuid.UUID, limit int) (bool, error)

	GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	CompletePayment(ctx context.Context, paymentID uuid.UUID, reference string, startsAt, endsAt time.Time) error
	ListPayments(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Payment, int64, error)
}

// Notifier delivers in-app notifications
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, title, message string)
}
