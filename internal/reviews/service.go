package reviews

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/carmarket/internal/fraud"
	"github.com/richxcame/carmarket/pkg/common"
	"github.com/richxcame/carmarket/pkg/eventbus"
	"github.com/richxcame/carmarket/pkg/logger"
	"github.com/richxcame/carmarket/pkg/metrics"
	"go.uber.org/zap"
)

// Service handles seller reviews
type Service struct {
	repo      RepositoryInterface
	spam      SpamChecker
	notifier  Notifier
	publisher eventbus.Publisher
	now       func() time.Time
}

// NewService creates a new review service
func NewService(repo RepositoryInterface, spam SpamChecker, notifier Notifier, publisher eventbus.Publisher) *Service {
	return &Service{
		repo:      repo,
		spam:      spam,
		notifier:  notifier,
		publisher: publisher,
		now:       time.Now,
	}
}

// CreateReview stores a buyer's rating of a seller
func (s *Service) CreateReview(ctx context.Context, reviewerID uuid.UUID, req *CreateReviewRequest) (*Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, common.NewBadRequestError("rating must be between 1 and 5", nil)
	}
	if req.SellerID == reviewerID {
		return nil, common.NewBadRequestError("you cannot review yourself", nil)
	}

	seller, err := s.repo.GetReviewee(ctx, req.SellerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, common.NewNotFoundError("seller not found", err)
		}
		return nil, common.NewInternalError("failed to load seller", err)
	}
	if !seller.IsActive {
		return nil, common.NewNotFoundError("seller not found", nil)
	}

	if req.CarID != nil {
		owner, err := s.repo.GetCarSeller(ctx, *req.CarID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, common.NewNotFoundError("listing not found", err)
			}
			return nil, common.NewInternalError("failed to load listing", err)
		}
		if owner != req.SellerID {
			return nil, common.NewBadRequestError("listing does not belong to this seller", nil)
		}
	}

	review := &Review{
		ID:         uuid.New(),
		ReviewerID: reviewerID,
		SellerID:   req.SellerID,
		CarID:      req.CarID,
		Rating:     req.Rating,
		Title:      trimmed(req.Title),
		Comment:    strings.TrimSpace(req.Comment),
		Status:     StatusPublished,
		CreatedAt:  s.now(),
	}

	// spam findings are recorded against the review id but never block it
	if s.spam != nil {
		if flags := s.spam.CheckReview(ctx, fraud.ReviewSubmission{
			ReviewID:   review.ID,
			ReviewerID: reviewerID,
			SellerID:   req.SellerID,
		}); len(flags) > 0 {
			logger.WithContext(ctx).Warn("Review flagged as possible spam",
				zap.String("review_id", review.ID.String()),
				zap.Int("indicators", len(flags)),
			)
		}
	}

	if err := s.repo.CreateReview(ctx, review); err != nil {
		return nil, common.NewInternalError("failed to create review", err)
	}
	metrics.ReviewsCreated.WithLabelValues(strconv.Itoa(review.Rating)).Inc()

	logger.WithContext(ctx).Info("Review created",
		zap.String("review_id", review.ID.String()),
		zap.String("seller_id", review.SellerID.String()),
		zap.Int("rating", review.Rating),
	)

	s.notifier.Notify(ctx, review.SellerID, "New review", fmt.Sprintf("You received a %d-star review", review.Rating))
	eventbus.PublishBestEffort(ctx, s.publisher, eventbus.SubjectReviewCreated, review)

	return review, nil
}

// ListSellerReviews returns a page of published reviews and the seller's
// rating summary
func (s *Service) ListSellerReviews(ctx context.Context, sellerID uuid.UUID, limit, offset int) (*SellerReviews, error) {
	summary, err := s.repo.GetSummary(ctx, sellerID)
	if err != nil {
		return nil, common.NewInternalError("failed to summarize reviews", err)
	}

	reviews, err := s.repo.ListSellerReviews(ctx, sellerID, limit, offset)
	if err != nil {
		return nil, common.NewInternalError("failed to list reviews", err)
	}
	if reviews == nil {
		reviews = []*Review{}
	}

	return &SellerReviews{Summary: summary, Reviews: reviews}, nil
}

// HideReview removes a review from public view and from the seller's rating
func (s *Service) HideReview(ctx context.Context, adminID, reviewID uuid.UUID) (*Review, error) {
	review, err := s.repo.GetReview(ctx, reviewID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, common.NewNotFoundError("review not found", err)
		}
		return nil, common.NewInternalError("failed to get review", err)
	}
	if review.Status == StatusHidden {
		return review, nil
	}

	if err := s.repo.SetStatus(ctx, reviewID, StatusHidden); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, common.NewNotFoundError("review not found", err)
		}
		return nil, common.NewInternalError("failed to hide review", err)
	}
	review.Status = StatusHidden

	logger.WithContext(ctx).Info("Review hidden",
		zap.String("review_id", reviewID.String()),
		zap.String("admin_id", adminID.String()),
	)
	return review, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
