package subscriptions

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/carmarket/pkg/common"
	"github.com/richxcame/carmarket/pkg/eventbus"
	"github.com/richxcame/carmarket/pkg/logger"
	"github.com/richxcame/carmarket/pkg/models"
	"go.uber.org/zap"
)

// Service handles plans, subscriptions and payments
type Service struct {
	repo      RepositoryInterface
	notifier  Notifier
	publisher eventbus.Publisher
	now       func() time.Time
}

// NewService creates a new subscription service
func NewService(repo RepositoryInterface, notifier Notifier, publisher eventbus.Publisher) *Service {
	return &Service{
		repo:      repo,
		notifier:  notifier,
		publisher: publisher,
		now:       time.Now,
	}
}

// ========================================
// PLANS
// ========================================

// ListPlans returns all active plans
func (s *Service) ListPlans(ctx context.Context) ([]*Plan, error) {
	plans, err := s.repo.ListActivePlans(ctx)
	if err != nil {
		return nil, err
	}
	if plans == nil {
		plans = []*Plan{}
	}
	return plans, nil
}

// GetPlan returns an active plan by slug
func (s *Service) GetPlan(ctx context.Context, slug string) (*Plan, error) {
	plan, err := s.repo.GetPlanBySlug(ctx, slug)
	if errors.Is(err, ErrNotFound) || (err == nil && !plan.IsActive) {
		return nil, common.NewNotFoundError("plan not found", err)
	}
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// ========================================
// SUBSCRIPTIONS
// ========================================

// Subscribe creates a pending subscription and a pending payment. The
// subscription becomes active when an admin confirms the payment.
func (s *Service) Subscribe(ctx context.Context, userID uuid.UUID, req *SubscribeRequest) (*SubscribeResponse, error) {
	plan, err := s.GetPlan(ctx, req.PlanSlug)
	if err != nil {
		return nil, err
	}
	if plan.Slug == FreePlanSlug {
		return nil, common.NewBadRequestError("the free plan is applied automatically", nil)
	}

	now := s.now()
	existing, err := s.repo.GetOpenSubscription(ctx, userID, now)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		if existing.Status == SubStatusPending {
			return nil, common.NewConflictError("a subscription is already awaiting payment")
		}
		return nil, common.NewConflictError("you already have an active subscription")
	}

	sub := &Subscription{
		ID:        uuid.New(),
		UserID:    userID,
		PlanID:    plan.ID,
		Status:    SubStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	payment := &models.Payment{
		ID:             uuid.New(),
		UserID:         userID,
		SubscriptionID: sub.ID,
		Amount:         plan.Price,
		Currency:       models.CurrencyPHP,
		Method:         req.PaymentMethod,
		Status:         models.PaymentStatusPending,
		CreatedAt:      now,
	}

	if err := s.repo.CreateSubscriptionWithPayment(ctx, sub, payment); err != nil {
		return nil, common.NewInternalError("failed to create subscription", err)
	}

	logger.WithContext(ctx).Info("Subscription created",
		zap.String("user_id", userID.String()),
		zap.String("plan", plan.Slug),
		zap.String("payment_id", payment.ID.String()),
	)

	return &SubscribeResponse{Subscription: sub, Plan: plan, Payment: payment}, nil
}

// ConfirmPayment settles a pending payment and activates the subscription for one period
func (s *Service) ConfirmPayment(ctx context.Context, adminID, paymentID uuid.UUID, reference string) (*models.Payment, error) {
	payment, err := s.repo.GetPayment(ctx, paymentID)
	if errors.Is(err, ErrNotFound) {
		return nil, common.NewNotFoundError("payment not found", err)
	}
	if err != nil {
		return nil, err
	}
	if payment.Status != models.PaymentStatusPending {
		return nil, common.NewConflictError(fmt.Sprintf("payment is already %s", payment.Status))
	}

	startsAt := s.now()
	endsAt := startsAt.Add(SubscriptionPeriod)
	if err := s.repo.CompletePayment(ctx, paymentID, reference, startsAt, endsAt); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, common.NewConflictError("payment is no longer pending")
		}
		return nil, common.NewInternalError("failed to confirm payment", err)
	}

	payment.Status = models.PaymentStatusCompleted
	payment.Reference = &reference
	payment.CompletedAt = &startsAt

	logger.WithContext(ctx).Info("Payment confirmed",
		zap.String("payment_id", paymentID.String()),
		zap.String("admin_id", adminID.String()),
	)

	s.notifier.Notify(ctx, payment.UserID, "Subscription activated",
		fmt.Sprintf("Your payment of ₱%.2f was received. Your plan is active until %s.", payment.Amount, endsAt.Format("January 2, 2006")))
	eventbus.PublishBestEffort(ctx, s.publisher, eventbus.SubjectPaymentDone, payment)

	return payment, nil
}

// Cancel cancels the user's active or pending subscription. Plan limits
// fall back to the free plan immediately.
func (s *Service) Cancel(ctx context.Context, userID uuid.UUID) error {
	now := s.now()
	sub, err := s.repo.GetOpenSubscription(ctx, userID, now)
	if errors.Is(err, ErrNotFound) {
		return common.NewNotFoundError("no subscription to cancel", err)
	}
	if err != nil {
		return err
	}

	if err := s.repo.CancelSubscription(ctx, sub.ID, now); err != nil {
		if errors.Is(err, ErrNotFound) {
			return common.NewNotFoundError("no subscription to cancel", err)
		}
		return common.NewInternalError("failed to cancel subscription", err)
	}

	logger.WithContext(ctx).Info("Subscription cancelled",
		zap.String("user_id", userID.String()),
		zap.String("subscription_id", sub.ID.String()),
	)
	return nil
}

// GetActiveSubscription returns the user's active subscription with plan and limits
func (s *Service) GetActiveSubscription(ctx context.Context, userID uuid.UUID) (*SubscriptionResponse, error) {
	now := s.now()
	sub, err := s.repo.GetActiveSubscription(ctx, userID, now)
	if errors.Is(err, ErrNotFound) {
		return nil, common.NewNotFoundError("no active subscription", err)
	}
	if err != nil {
		return nil, err
	}

	plan, err := s.repo.GetPlanByID(ctx, sub.PlanID)
	if err != nil {
		return nil, err
	}

	days := 0
	if sub.EndsAt != nil {
		days = int(math.Ceil(sub.EndsAt.Sub(now).Hours() / 24))
	}

	return &SubscriptionResponse{
		Subscription:  sub,
		Plan:          plan,
		Limits:        LimitsFromPlan(plan, sub),
		DaysRemaining: days,
	}, nil
}

// Limits returns the effective plan limits for a user, falling back to the
// free plan when there is no active subscription
func (s *Service) Limits(ctx context.Context, userID uuid.UUID) (*PlanLimits, error) {
	sub, err := s.repo.GetActiveSubscription(ctx, userID, s.now())
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if sub != nil {
		plan, err := s.repo.GetPlanByID(ctx, sub.PlanID)
		if err != nil {
			return nil, err
		}
		return LimitsFromPlan(plan, sub), nil
	}

	free, err := s.repo.GetPlanBySlug(ctx, FreePlanSlug)
	if errors.Is(err, ErrNotFound) {
		return DefaultFreeLimits(), nil
	}
	if err != nil {
		return nil, err
	}
	return LimitsFromPlan(free, nil), nil
}

// ConsumeBoost uses one boost from the user's current period
func (s *Service) ConsumeBoost(ctx context.Context, userID uuid.UUID) error {
	limits, err := s.Limits(ctx, userID)
	if err != nil {
		return err
	}
	if limits.SubscriptionID == nil || limits.BoostsRemaining() == 0 {
		return common.NewForbiddenError("no boosts remaining on your plan")
	}

	ok, err := s.repo.IncrementBoostsUsed(ctx, *limits.SubscriptionID, limits.BoostsPerMonth)
	if err != nil {
		return common.NewInternalError("failed to consume boost", err)
	}
	if !ok {
		return common.NewForbiddenError("no boosts remaining on your plan")
	}
	return nil
}

// ListPayments returns the user's payment history
func (s *Service) ListPayments(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Payment, int64, error) {
	payments, total, err := s.repo.ListPayments(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if payments == nil {
		payments = []*models.Payment{}
	}
	return payments, total, nil
}
