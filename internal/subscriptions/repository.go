package subscriptions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/richxcame/carmarket/pkg/models"
)

const planColumns = `
	id, slug, name, description, price, currency, billing_period,
	max_listings, max_images_per_listing, max_featured_listings, boosts_per_month,
	priority_support, dealer_badge, is_active, display_order, created_at`

const subscriptionColumns = `
	id, user_id, plan_id, status, starts_at, ends_at, boosts_used,
	cancelled_at, created_at, updated_at`

const paymentColumns = `
	id, user_id, subscription_id, amount, currency, method, status,
	reference, created_at, completed_at`

// Repository handles subscription data access
type Repository struct {
	db *pgxpool.Pool
}

var _ RepositoryInterface = (*Repository)(nil)

// NewRepository creates a new subscription repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func scanPlan(scan func(dest ...interface{}) error) (*Plan, error) {
	p := &Plan{}
	err := scan(
		&p.ID, &p.Slug, &p.Name, &p.Description, &p.Price, &p.Currency, &p.BillingPeriod,
		&p.MaxListings, &p.MaxImagesPerListing, &p.MaxFeaturedListings, &p.BoostsPerMonth,
		&p.PrioritySupport, &p.DealerBadge, &p.IsActive, &p.DisplayOrder, &p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func scanSubscription(scan func(dest ...interface{}) error) (*Subscription, error) {
	s := &Subscription{}
	err := scan(
		&s.ID, &s.UserID, &s.PlanID, &s.Status, &s.StartsAt, &s.EndsAt, &s.BoostsUsed,
		&s.CancelledAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}

func scanPayment(scan func(dest ...interface{}) error) (*models.Payment, error) {
	p := &models.Payment{}
	err := scan(
		&p.ID, &p.UserID, &p.SubscriptionID, &p.Amount, &p.Currency, &p.Method, &p.Status,
		&p.Reference, &p.CreatedAt, &p.CompletedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

// ========================================
// PLANS
// ========================================

// ListActivePlans lists all active plans for display
func (r *Repository) ListActivePlans(ctx context.Context) ([]*Plan, error) {
	rows, err := r.db.Query(ctx, `SELECT `+planColumns+`
		FROM subscription_plans
		WHERE is_active = TRUE
		ORDER BY display_order ASC, price ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []*Plan
	for rows.Next() {
		p, err := scanPlan(rows.Scan)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

// GetPlanBySlug retrieves a plan by slug
func (r *Repository) GetPlanBySlug(ctx context.Context, slug string) (*Plan, error) {
	return scanPlan(r.db.QueryRow(ctx, `SELECT `+planColumns+` FROM subscription_plans WHERE slug = $1`, slug).Scan)
}

// GetPlanByID retrieves a plan by ID
func (r *Repository) GetPlanByID(ctx context.Context, id uuid.UUID) (*Plan, error) {
	return scanPlan(r.db.QueryRow(ctx, `SELECT `+planColumns+` FROM subscription_plans WHERE id = $1`, id).Scan)
}

// ========================================
// SUBSCRIPTIONS
// ========================================

// GetActiveSubscription returns the user's subscription that is active at now
func (r *Repository) GetActiveSubscription(ctx context.Context, userID uuid.UUID, now time.Time) (*Subscription, error) {
	return scanSubscription(r.db.QueryRow(ctx, `SELECT `+subscriptionColumns+`
		FROM user_subscriptions
		WHERE user_id = $1 AND status = 'active' AND ends_at > $2
		ORDER BY ends_at DESC
		LIMIT 1`, userID, now).Scan)
}

// GetOpenSubscription returns an active or pending subscription, if any
func (r *Repository) GetOpenSubscription(ctx context.Context, userID uuid.UUID, now time.Time) (*Subscription, error) {
	return scanSubscription(r.db.QueryRow(ctx, `SELECT `+subscriptionColumns+`
		FROM user_subscriptions
		WHERE user_id = $1
		  AND (status = 'pending' OR (status = 'active' AND ends_at > $2))
		ORDER BY created_at DESC
		LIMIT 1`, userID, now).Scan)
}

// CreateSubscriptionWithPayment inserts a pending subscription and its payment atomically
func (r *Repository) CreateSubscriptionWithPayment(ctx context.Context, sub *Subscription, payment *models.Payment) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO user_subscriptions (id, user_id, plan_id, status, boosts_used, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 0, $5, $6)`,
		sub.ID, sub.UserID, sub.PlanID, sub.Status, sub.CreatedAt, sub.UpdatedAt,
	)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO payments (id, user_id, subscription_id, amount, currency, method, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		payment.ID, payment.UserID, payment.SubscriptionID, payment.Amount, payment.Currency,
		payment.Method, payment.Status, payment.CreatedAt,
	)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// CancelSubscription cancels a subscription and fails its unsettled payments
func (r *Repository) CancelSubscription(ctx context.Context, subID uuid.UUID, at time.Time) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE user_subscriptions
		SET status = 'cancelled', cancelled_at = $2, updated_at = $2
		WHERE id = $1 AND status IN ('pending', 'active')`, subID, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if _, err := tx.Exec(ctx, `
		UPDATE payments SET status = 'failed'
		WHERE subscription_id = $1 AND status = 'pending'`, subID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// IncrementBoostsUsed consumes one boost when fewer than limit were used
func (r *Repository) IncrementBoostsUsed(ctx context.Context, subID uuid.UUID, limit int) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE user_subscriptions
		SET boosts_used = boosts_used + 1, updated_at = NOW()
		WHERE id = $1 AND boosts_used < $2`, subID, limit)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ========================================
// PAYMENTS
// ========================================

// GetPayment retrieves a payment by ID
func (r *Repository) GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	return scanPayment(r.db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id).Scan)
}

// CompletePayment settles a pending payment and activates its subscription
func (r *Repository) CompletePayment(ctx context.Context, paymentID uuid.UUID, reference string, startsAt, endsAt time.Time) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var subID uuid.UUID
	err = tx.QueryRow(ctx, `
		UPDATE payments
		SET status = 'completed', reference = $2, completed_at = $3
		WHERE id = $1 AND status = 'pending'
		RETURNING subscription_id`, paymentID, reference, startsAt).Scan(&subID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		UPDATE user_subscriptions
		SET status = 'active', starts_at = $2, ends_at = $3, boosts_used = 0, updated_at = $2
		WHERE id = $1`, subID, startsAt, endsAt)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ListPayments returns a user's payments, newest first
func (r *Repository) ListPayments(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Payment, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM payments WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, `SELECT `+paymentColumns+`
		FROM payments
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		p, err := scanPayment(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		payments = append(payments, p)
	}
	return payments, total, rows.Err()
}
