package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/carmarket/pkg/common"
	"github.com/richxcame/carmarket/pkg/eventbus"
	"github.com/richxcame/carmarket/pkg/logger"
	"github.com/richxcame/carmarket/pkg/metrics"
	"go.uber.org/zap"
)

// Service is the notification sink used by the other domains. Delivery is
// fire-and-forget: failures are logged and never returned to the caller.
type Service struct {
	repo      RepositoryInterface
	admins    AdminDirectory
	publisher eventbus.Publisher
}

// NewService creates a new notification service
func NewService(repo RepositoryInterface, admins AdminDirectory, publisher eventbus.Publisher) *Service {
	return &Service{repo: repo, admins: admins, publisher: publisher}
}

// Notify stores a general notification for userID
func (s *Service) Notify(ctx context.Context, userID uuid.UUID, title, message string) {
	s.NotifyWithType(ctx, userID, TypeGeneral, title, message)
}

// NotifyWithType stores a notification of the given type for userID
func (s *Service) NotifyWithType(ctx context.Context, userID uuid.UUID, notifType, title, message string) {
	n := &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      notifType,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now(),
	}

	if err := s.repo.CreateNotification(ctx, n); err != nil {
		metrics.SideEffectFailures.WithLabelValues("notification").Inc()
		logger.WithContext(ctx).Warn("Failed to store notification",
			zap.String("user_id", userID.String()),
			zap.String("title", title),
			zap.Error(err),
		)
		return
	}

	eventbus.PublishBestEffort(ctx, s.publisher, eventbus.SubjectNotification, n)
}

// NotifyAdmins sends a fraud notification to every admin and moderator
func (s *Service) NotifyAdmins(ctx context.Context, title, message string) {
	ids, err := s.admins.AdminIDs(ctx)
	if err != nil {
		metrics.SideEffectFailures.WithLabelValues("notification").Inc()
		logger.WithContext(ctx).Warn("Failed to load admin recipients", zap.Error(err))
		return
	}
	for _, id := range ids {
		s.NotifyWithType(ctx, id, TypeFraud, title, message)
	}
}

// List returns the user's notifications and their unread count
func (s *Service) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*Notification, int64, int64, error) {
	items, total, err := s.repo.ListNotifications(ctx, userID, unreadOnly, limit, offset)
	if err != nil {
		return nil, 0, 0, err
	}
	if items == nil {
		items = []*Notification{}
	}

	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, 0, 0, err
	}
	return items, total, unread, nil
}

// MarkRead marks one notification as read
func (s *Service) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	ok, err := s.repo.MarkRead(ctx, notificationID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return common.NewNotFoundError("notification not found", nil)
	}
	return nil
}

// MarkAllRead marks all of the user's notifications as read
func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}
