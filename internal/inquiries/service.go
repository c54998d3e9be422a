package inquiries

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/carmarket/pkg/common"
	"github.com/richxcame/carmarket/pkg/email"
	"github.com/richxcame/carmarket/pkg/eventbus"
	"github.com/richxcame/carmarket/pkg/logger"
	"github.com/richxcame/carmarket/pkg/metrics"
	"go.uber.org/zap"
)

// Service handles buyer/seller messaging
type Service struct {
	repo      RepositoryInterface
	users     UserDirectory
	notifier  Notifier
	mailer    email.Sender
	publisher eventbus.Publisher
	now       func() time.Time
}

// NewService creates a new inquiry service
func NewService(repo RepositoryInterface, users UserDirectory, notifier Notifier, mailer email.Sender, publisher eventbus.Publisher) *Service {
	return &Service{
		repo:      repo,
		users:     users,
		notifier:  notifier,
		mailer:    mailer,
		publisher: publisher,
		now:       time.Now,
	}
}

// CreateInquiry sends a buyer's message to the seller of a live listing
func (s *Service) CreateInquiry(ctx context.Context, buyerID uuid.UUID, req *CreateInquiryRequest) (*Inquiry, error) {
	car, err := s.repo.GetCarSummary(ctx, req.CarID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, common.NewNotFoundError("listing not found", err)
		}
		return nil, common.NewInternalError("failed to load listing", err)
	}

	now := s.now()
	if !car.Available(now) {
		return nil, common.NewBadRequestError("listing is not available", nil)
	}
	if car.SellerID == buyerID {
		return nil, common.NewBadRequestError("you cannot inquire about your own listing", nil)
	}

	inq := &Inquiry{
		ID:           uuid.New(),
		CarID:        car.ID,
		BuyerID:      buyerID,
		SellerID:     car.SellerID,
		Subject:      strings.TrimSpace(req.Subject),
		Message:      strings.TrimSpace(req.Message),
		BuyerPhone:   req.BuyerPhone,
		OfferedPrice: req.OfferedPrice,
		Status:       StatusNew,
		CreatedAt:    now,
		UpdatedAt:    now,
		CarTitle:     car.Title,
	}
	if err := s.repo.CreateInquiry(ctx, inq); err != nil {
		return nil, common.NewInternalError("failed to create inquiry", err)
	}
	metrics.InquiriesCreated.Inc()

	logger.WithContext(ctx).Info("Inquiry created",
		zap.String("inquiry_id", inq.ID.String()),
		zap.String("car_id", car.ID.String()),
	)

	s.notifier.Notify(ctx, car.SellerID, "New inquiry", fmt.Sprintf("A buyer asked about %q: %s", car.Title, inq.Subject))
	s.emailSeller(ctx, inq)
	eventbus.PublishBestEffort(ctx, s.publisher, eventbus.SubjectInquiryCreated, inq)

	return inq, nil
}

// GetInquiry returns a thread with its replies. A seller opening a new
// inquiry marks it read.
func (s *Service) GetInquiry(ctx context.Context, userID, inquiryID uuid.UUID) (*Inquiry, error) {
	inq, err := s.participantInquiry(ctx, userID, inquiryID)
	if err != nil {
		return nil, err
	}

	if inq.SellerID == userID && inq.Status == StatusNew {
		now := s.now()
		if err := s.repo.UpdateStatus(ctx, inq.ID, StatusRead, now); err != nil {
			logger.WithContext(ctx).Warn("Failed to mark inquiry read", zap.String("inquiry_id", inq.ID.String()), zap.Error(err))
		} else {
			inq.Status = StatusRead
			inq.UpdatedAt = now
		}
	}

	responses, err := s.repo.ListResponses(ctx, inq.ID)
	if err != nil {
		return nil, common.NewInternalError("failed to load replies", err)
	}
	inq.Responses = responses
	return inq, nil
}

// ListInquiries lists the caller's received or sent inquiries
func (s *Service) ListInquiries(ctx context.Context, userID uuid.UUID, box Box, status *Status, limit, offset int) ([]*Inquiry, int64, error) {
	items, total, err := s.repo.ListInquiries(ctx, userID, box, status, limit, offset)
	if err != nil {
		return nil, 0, common.NewInternalError("failed to list inquiries", err)
	}
	if items == nil {
		items = []*Inquiry{}
	}
	return items, total, nil
}

// Respond adds a reply to an open thread and tells the other side
func (s *Service) Respond(ctx context.Context, userID, inquiryID uuid.UUID, message string) (*Response, error) {
	inq, err := s.participantInquiry(ctx, userID, inquiryID)
	if err != nil {
		return nil, err
	}
	if !inq.Status.Open() {
		return nil, common.NewBadRequestError("inquiry is closed", nil)
	}

	resp := &Response{
		ID:          uuid.New(),
		InquiryID:   inq.ID,
		ResponderID: userID,
		Message:     strings.TrimSpace(message),
		CreatedAt:   s.now(),
	}

	sellerReply := userID == inq.SellerID
	status := inq.Status
	recipient := inq.SellerID
	if sellerReply {
		status = StatusReplied
		recipient = inq.BuyerID
	}

	if err := s.repo.AddResponse(ctx, resp, status, sellerReply); err != nil {
		return nil, common.NewInternalError("failed to send reply", err)
	}

	s.notifier.Notify(ctx, recipient, "New reply", fmt.Sprintf("New reply about %q", inq.CarTitle))
	return resp, nil
}

// Close ends a thread. Closing twice is a no-op.
func (s *Service) Close(ctx context.Context, userID, inquiryID uuid.UUID) (*Inquiry, error) {
	return s.transition(ctx, userID, inquiryID, StatusClosed)
}

// Archive files a thread away. Archiving twice is a no-op.
func (s *Service) Archive(ctx context.Context, userID, inquiryID uuid.UUID) (*Inquiry, error) {
	return s.transition(ctx, userID, inquiryID, StatusArchived)
}

// ResponseRate is the share of a seller's inquiries that got a reply.
// Sellers with no inquiries have a rate of zero.
func (s *Service) ResponseRate(ctx context.Context, sellerID uuid.UUID) (float64, error) {
	stats, err := s.repo.GetResponseStats(ctx, sellerID)
	if err != nil {
		return 0, err
	}
	if stats.Received == 0 {
		return 0, nil
	}
	return float64(stats.Answered) / float64(stats.Received), nil
}

func (s *Service) transition(ctx context.Context, userID, inquiryID uuid.UUID, status Status) (*Inquiry, error) {
	inq, err := s.participantInquiry(ctx, userID, inquiryID)
	if err != nil {
		return nil, err
	}
	if inq.Status == status {
		return inq, nil
	}
	if inq.Status == StatusArchived {
		return nil, common.NewBadRequestError("inquiry is archived", nil)
	}

	now := s.now()
	if err := s.repo.UpdateStatus(ctx, inq.ID, status, now); err != nil {
		return nil, common.NewInternalError("failed to update inquiry", err)
	}
	inq.Status = status
	inq.UpdatedAt = now
	return inq, nil
}

func (s *Service) participantInquiry(ctx context.Context, userID, inquiryID uuid.UUID) (*Inquiry, error) {
	inq, err := s.repo.GetInquiry(ctx, inquiryID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, common.NewNotFoundError("inquiry not found", err)
		}
		return nil, common.NewInternalError("failed to get inquiry", err)
	}
	if !inq.IsParticipant(userID) {
		return nil, common.NewForbiddenError("not a participant in this inquiry")
	}
	return inq, nil
}

func (s *Service) emailSeller(ctx context.Context, inq *Inquiry) {
	if s.mailer == nil || s.users == nil {
		return
	}

	seller, err := s.users.GetUserByID(ctx, inq.SellerID)
	if err != nil {
		logger.WithContext(ctx).Warn("Failed to load seller for inquiry email", zap.String("seller_id", inq.SellerID.String()), zap.Error(err))
		return
	}
	buyerName := "A buyer"
	if buyer, err := s.users.GetUserByID(ctx, inq.BuyerID); err == nil {
		buyerName = buyer.FullName()
	}

	msg := email.InquiryReceived(seller.Email, seller.FirstName, inq.CarTitle, buyerName, inq.Message)
	if err := s.mailer.Send(ctx, msg); err != nil {
		metrics.SideEffectFailures.WithLabelValues("email").Inc()
		logger.WithContext(ctx).Warn("Failed to email seller", zap.String("inquiry_id", inq.ID.String()), zap.Error(err))
	}
}
