package notifications

import (
	"context"

	"github.com/google/uuid"
)

// RepositoryInterface defines notification persistence
type RepositoryInterface interface {
	CreateNotification(ctx context.Context, n *Notification) error
	ListNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*Notification, int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) (bool, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

// AdminDirectory lists staff accounts that receive fraud alerts
type AdminDirectory interface {
	AdminIDs(ctx context.Context) ([]uuid.UUID, error)
}
