package fraud

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/carmarket/pkg/common"
	"github.com/richxcame/carmarket/pkg/config"
	"github.com/richxcame/carmarket/pkg/eventbus"
	"github.com/richxcame/carmarket/pkg/logger"
	"github.com/richxcame/carmarket/pkg/metrics"
	"github.com/richxcame/carmarket/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// finding is a triggered rule awaiting persistence
type finding struct {
	indicator *FraudIndicator
	notify    bool
}

type check struct {
	name string
	run  func(ctx context.Context) ([]finding, error)
}

// Service runs the fraud heuristics. Every rule is independent: a rule that
// errors is logged and treated as clean, and no rule blocks the caller.
type Service struct {
	repo      RepositoryInterface
	notifier  AdminNotifier
	rater     ResponseRater
	publisher eventbus.Publisher
	cfg       config.FraudConfig
	now       func() time.Time
}

// NewService creates a new fraud service
func NewService(repo RepositoryInterface, notifier AdminNotifier, rater ResponseRater, publisher eventbus.Publisher, cfg config.FraudConfig) *Service {
	return &Service{
		repo:      repo,
		notifier:  notifier,
		rater:     rater,
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
	}
}

// SetResponseRater wires the inquiry response rate source after construction
func (s *Service) SetResponseRater(rater ResponseRater) {
	s.rater = rater
}

// ========================================
// LISTINGS
// ========================================

// CheckListing evaluates a new or changed listing and returns the IDs of the
// indicators it raised
func (s *Service) CheckListing(ctx context.Context, sub ListingSubmission) []uuid.UUID {
	ctx, span := tracing.StartSpan(ctx, "fraud.check_listing",
		attribute.String("car_id", sub.CarID.String()),
		attribute.Bool("update", sub.IsUpdate),
	)
	defer span.End()

	checks := []check{
		{"duplicate_vin", func(ctx context.Context) ([]finding, error) { return s.checkDuplicateVIN(ctx, sub) }},
		{"similar_listing", func(ctx context.Context) ([]finding, error) { return s.checkSimilarListing(ctx, sub) }},
		{"price_outlier", func(ctx context.Context) ([]finding, error) { return s.checkPriceOutlier(ctx, sub) }},
	}
	if !sub.IsUpdate {
		checks = append(checks, check{"rapid_listing", func(ctx context.Context) ([]finding, error) { return s.checkRapidListing(ctx, sub) }})
	}

	ids := s.runChecks(ctx, checks)
	span.SetAttributes(attribute.Int("indicators", len(ids)))
	return ids
}

func (s *Service) checkDuplicateVIN(ctx context.Context, sub ListingSubmission) ([]finding, error) {
	if sub.VIN == nil || strings.TrimSpace(*sub.VIN) == "" {
		return nil, nil
	}
	vin := strings.ToUpper(strings.TrimSpace(*sub.VIN))

	count, err := s.repo.CountVINDuplicates(ctx, sub.SellerID, vin, sub.CarID)
	if err != nil || count == 0 {
		return nil, err
	}

	return []finding{{
		indicator: s.newListingIndicator(sub, IndicatorDuplicateVIN, SeverityHigh,
			fmt.Sprintf("VIN %s is already used by %d open listing(s) of this seller", vin, count),
			map[string]interface{}{"vin": vin, "existing_listings": count},
		),
		notify: true,
	}}, nil
}

func (s *Service) checkSimilarListing(ctx context.Context, sub ListingSubmission) ([]finding, error) {
	minPrice, maxPrice := PriceRange(sub.Price, s.cfg.SimilarPriceTolerance)

	count, err := s.repo.CountSimilarListings(ctx, sub, minPrice, maxPrice)
	if err != nil || count == 0 {
		return nil, err
	}

	return []finding{{
		indicator: s.newListingIndicator(sub, IndicatorSimilarListing, SeverityMedium,
			fmt.Sprintf("Seller has %d open listing(s) of the same %d model priced within %.0f%%", count, sub.Year, s.cfg.SimilarPriceTolerance*100),
			map[string]interface{}{"similar_listings": count, "min_price": minPrice, "max_price": maxPrice},
		),
		notify: true,
	}}, nil
}

func (s *Service) checkPriceOutlier(ctx context.Context, sub ListingSubmission) ([]finding, error) {
	since := s.now().AddDate(0, 0, -s.cfg.MarketLookbackDays)

	stats, err := s.repo.GetMarketStats(ctx, sub, s.cfg.MarketYearWindow, since)
	if err != nil {
		return nil, err
	}

	indicatorType, severity, ok := EvaluatePrice(sub.Price, stats, s.cfg)
	if !ok {
		return nil, nil
	}

	ratio := sub.Price / stats.Average
	description := fmt.Sprintf("Price ₱%.0f is %.0f%% of the market average ₱%.0f", sub.Price, ratio*100, stats.Average)
	return []finding{{
		indicator: s.newListingIndicator(sub, indicatorType, severity, description,
			map[string]interface{}{
				"price":          sub.Price,
				"market_average": stats.Average,
				"samples":        stats.Samples,
				"ratio":          ratio,
			},
		),
		notify: indicatorType == IndicatorPriceOutlierLow,
	}}, nil
}

func (s *Service) checkRapidListing(ctx context.Context, sub ListingSubmission) ([]finding, error) {
	now := s.now()
	var findings []finding

	windows := []struct {
		name     string
		duration time.Duration
		limit    int
		severity Severity
		notify   bool
	}{
		{WindowDaily, 24 * time.Hour, s.cfg.RapidListingDaily, SeverityHigh, true},
		{WindowWeekly, 7 * 24 * time.Hour, s.cfg.RapidListingWeekly, SeverityMedium, false},
	}

	for _, w := range windows {
		since := now.Add(-w.duration)
		count, err := s.repo.CountListingsSince(ctx, sub.SellerID, since)
		if err != nil {
			return findings, err
		}
		if count <= w.limit {
			continue
		}

		// one indicator per rolling window
		raised, err := s.repo.HasIndicatorSince(ctx, sub.SellerID, IndicatorRapidListing, w.name, since)
		if err != nil {
			return findings, err
		}
		if raised {
			continue
		}

		findings = append(findings, finding{
			indicator: s.newListingIndicator(sub, IndicatorRapidListing, w.severity,
				fmt.Sprintf("Seller created %d listings in the last %s", count, w.name),
				map[string]interface{}{"window": w.name, "count": count, "limit": w.limit},
			),
			notify: w.notify,
		})
	}
	return findings, nil
}

func (s *Service) newListingIndicator(sub ListingSubmission, t IndicatorType, sev Severity, description string, details map[string]interface{}) *FraudIndicator {
	carID := sub.CarID
	return &FraudIndicator{
		ID:          uuid.New(),
		UserID:      sub.SellerID,
		CarID:       &carID,
		Type:        t,
		Severity:    sev,
		Description: description,
		Details:     details,
		CreatedAt:   s.now(),
	}
}

// ========================================
// REVIEWS
// ========================================

// CheckReview evaluates a review before it is stored and returns the IDs of
// the indicators it raised
func (s *Service) CheckReview(ctx context.Context, sub ReviewSubmission) []uuid.UUID {
	ctx, span := tracing.StartSpan(ctx, "fraud.check_review",
		attribute.String("reviewer_id", sub.ReviewerID.String()),
	)
	defer span.End()

	return s.runChecks(ctx, []check{
		{"review_spam", func(ctx context.Context) ([]finding, error) { return s.checkReviewSpam(ctx, sub) }},
	})
}

func (s *Service) checkReviewSpam(ctx context.Context, sub ReviewSubmission) ([]finding, error) {
	sameSeller, err := s.repo.CountReviewsOfSeller(ctx, sub.ReviewerID, sub.SellerID)
	if err != nil {
		return nil, err
	}
	lastDay, err := s.repo.CountReviewsSince(ctx, sub.ReviewerID, s.now().Add(-24*time.Hour))
	if err != nil {
		return nil, err
	}

	// lastDay counts stored reviews; the one being submitted is added here
	var reasons []string
	if sameSeller >= s.cfg.ReviewsPerSellerLimit {
		reasons = append(reasons, fmt.Sprintf("%d earlier reviews of the same seller", sameSeller))
	}
	if lastDay+1 > s.cfg.ReviewsPerDayLimit {
		reasons = append(reasons, fmt.Sprintf("%d reviews in 24 hours", lastDay+1))
	}
	if len(reasons) == 0 {
		return nil, nil
	}

	reviewID := sub.ReviewID
	return []finding{{
		indicator: &FraudIndicator{
			ID:          uuid.New(),
			UserID:      sub.ReviewerID,
			ReviewID:    &reviewID,
			Type:        IndicatorReviewSpam,
			Severity:    SeverityMedium,
			Description: "Possible review spam: " + strings.Join(reasons, ", "),
			Details: map[string]interface{}{
				"seller_id":           sub.SellerID.String(),
				"reviews_of_seller":   sameSeller,
				"reviews_last_24h":    lastDay + 1,
				"seller_review_limit": s.cfg.ReviewsPerSellerLimit,
				"daily_review_limit":  s.cfg.ReviewsPerDayLimit,
			},
			CreatedAt: s.now(),
		},
		notify: true,
	}}, nil
}

// ========================================
// SHARED
// ========================================

func (s *Service) runChecks(ctx context.Context, checks []check) []uuid.UUID {
	ids := []uuid.UUID{}
	for _, c := range checks {
		findings, err := c.run(ctx)
		if err != nil {
			metrics.FraudCheckErrors.WithLabelValues(c.name).Inc()
			logger.WithContext(ctx).Warn("Fraud check failed, treating as clean",
				zap.String("check", c.name),
				zap.Error(err),
			)
		}
		for _, f := range findings {
			if id, ok := s.raise(ctx, f); ok {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

func (s *Service) raise(ctx context.Context, f finding) (uuid.UUID, bool) {
	ind := f.indicator
	if err := s.repo.CreateIndicator(ctx, ind); err != nil {
		metrics.FraudCheckErrors.WithLabelValues(string(ind.Type)).Inc()
		logger.WithContext(ctx).Error("Failed to store fraud indicator",
			zap.String("type", string(ind.Type)),
			zap.String("user_id", ind.UserID.String()),
			zap.Error(err),
		)
		return uuid.Nil, false
	}

	metrics.FraudIndicators.WithLabelValues(string(ind.Type), string(ind.Severity)).Inc()
	logger.WithContext(ctx).Warn("Fraud indicator raised",
		zap.String("indicator_id", ind.ID.String()),
		zap.String("type", string(ind.Type)),
		zap.String("severity", string(ind.Severity)),
		zap.String("user_id", ind.UserID.String()),
	)

	eventbus.PublishBestEffort(ctx, s.publisher, eventbus.SubjectFraudIndicator, ind)
	if f.notify && s.notifier != nil {
		s.notifier.NotifyAdmins(ctx,
			fmt.Sprintf("Fraud alert: %s (%s)", ind.Type, ind.Severity),
			ind.Description,
		)
	}
	return ind.ID, true
}

// ========================================
// REPUTATION
// ========================================

// CalculateReputation computes a user's reputation score
func (s *Service) CalculateReputation(ctx context.Context, userID uuid.UUID) (*Reputation, error) {
	in, err := s.repo.GetReputationInputs(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return nil, common.NewNotFoundError("user not found", err)
	}
	if err != nil {
		return nil, err
	}

	if s.rater != nil {
		rate, err := s.rater.ResponseRate(ctx, userID)
		if err != nil {
			logger.WithContext(ctx).Warn("Failed to load response rate", zap.String("user_id", userID.String()), zap.Error(err))
		} else {
			in.ResponseRate = rate
		}
	}

	score, breakdown := ComputeReputation(*in, s.now(), s.cfg)
	return &Reputation{
		UserID:     userID,
		Score:      score,
		TrustScore: TrustScore(score),
		Level:      LevelForScore(score),
		Breakdown:  breakdown,
	}, nil
}

// ========================================
// ADMIN READS
// ========================================

// ListIndicators returns indicators for admin review
func (s *Service) ListIndicators(ctx context.Context, filters IndicatorFilters, limit, offset int) ([]*FraudIndicator, int64, error) {
	indicators, total, err := s.repo.ListIndicators(ctx, filters, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if indicators == nil {
		indicators = []*FraudIndicator{}
	}
	return indicators, total, nil
}

// GetUserIndicators returns the indicators raised against one user
func (s *Service) GetUserIndicators(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*FraudIndicator, int64, error) {
	return s.ListIndicators(ctx, IndicatorFilters{UserID: &userID}, limit, offset)
}
