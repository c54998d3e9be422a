package inquiries

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/carmarket/pkg/common"
	"github.com/richxcame/carmarket/pkg/email"
	"github.com/richxcame/carmarket/pkg/eventbus"
	"github.com/richxcame/carmarket/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetCarSummary(ctx context.Context, carID uuid.UUID) (*CarSummary, error) {
	args := m.Called(ctx, carID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CarSummary), args.Error(1)
}

func (m *MockRepository) CreateInquiry(ctx context.Context, inq *Inquiry) error {
	return m.Called(ctx, inq).Error(0)
}

func (m *MockRepository) GetInquiry(ctx context.Context, id uuid.UUID) (*Inquiry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Inquiry), args.Error(1)
}

func (m *MockRepository) ListResponses(ctx context.Context, inquiryID uuid.UUID) ([]*Response, error) {
	args := m.Called(ctx, inquiryID)
	responses, _ := args.Get(0).([]*Response)
	return responses, args.Error(1)
}

func (m *MockRepository) ListInquiries(ctx context.Context, userID uuid.UUID, box Box, status *Status, limit, offset int) ([]*Inquiry, int64, error) {
	args := m.Called(ctx, userID, box, status, limit, offset)
	items, _ := args.Get(0).([]*Inquiry)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status, at time.Time) error {
	return m.Called(ctx, id, status, at).Error(0)
}

func (m *MockRepository) AddResponse(ctx context.Context, resp *Response, status Status, sellerReply bool) error {
	return m.Called(ctx, resp, status, sellerReply).Error(0)
}

func (m *MockRepository) GetResponseStats(ctx context.Context, sellerID uuid.UUID) (*ResponseStats, error) {
	args := m.Called(ctx, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ResponseStats), args.Error(1)
}

type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, userID uuid.UUID, title, message string) {
	m.Called(ctx, userID, title, message)
}

// recordingMailer keeps every message it is asked to send
type recordingMailer struct {
	sent []email.Message
	err  error
}

func (r *recordingMailer) Send(ctx context.Context, msg email.Message) error {
	r.sent = append(r.sent, msg)
	return r.err
}

type recordingPublisher struct {
	subjects []string
}

func (p *recordingPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	p.subjects = append(p.subjects, subject)
	return nil
}

var fixedNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

type testDeps struct {
	repo      *MockRepository
	users     *MockUsers
	notifier  *MockNotifier
	mailer    *recordingMailer
	publisher *recordingPublisher
}

func newTestService() (*Service, *testDeps) {
	d := &testDeps{
		repo:      new(MockRepository),
		users:     new(MockUsers),
		notifier:  new(MockNotifier),
		mailer:    &recordingMailer{},
		publisher: &recordingPublisher{},
	}
	svc := NewService(d.repo, d.users, d.notifier, d.mailer, d.publisher)
	svc.now = func() time.Time { return fixedNow }
	return svc, d
}

func assertAppErrorCode(t *testing.T, err error, code int) {
	t.Helper()
	appErr, ok := common.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

func liveCar(sellerID uuid.UUID) *CarSummary {
	expires := fixedNow.Add(24 * time.Hour)
	return &CarSummary{
		ID:             uuid.New(),
		SellerID:       sellerID,
		Title:          "2018 Honda City VX",
		Status:         "active",
		ApprovalStatus: "approved",
		ExpiresAt:      &expires,
	}
}

func newInquiry(buyerID, sellerID uuid.UUID, status Status) *Inquiry {
	return &Inquiry{
		ID:       uuid.New(),
		CarID:    uuid.New(),
		BuyerID:  buyerID,
		SellerID: sellerID,
		Subject:  "Still available?",
		Message:  "Is the unit still available for viewing this weekend?",
		Status:   status,
		CarTitle: "2018 Honda City VX",
	}
}

// ========================================
// CreateInquiry
// ========================================

func TestCreateInquiry_Success(t *testing.T) {
	svc, d := newTestService()
	ctx := context.Background()
	buyerID, sellerID := uuid.New(), uuid.New()
	car := liveCar(sellerID)

	d.repo.On("GetCarSummary", ctx, car.ID).Return(car, nil)
	d.repo.On("CreateInquiry", ctx, mock.AnythingOfType("*inquiries.Inquiry")).Return(nil)
	d.notifier.On("Notify", ctx, sellerID, "New inquiry", mock.Anything).Return().Once()
	d.users.On("GetUserByID", ctx, sellerID).Return(&models.User{ID: sellerID, Email: "seller@example.ph", FirstName: "Rico"}, nil)
	d.users.On("GetUserByID", ctx, buyerID).Return(&models.User{ID: buyerID, FirstName: "Liza", LastName: "Cruz"}, nil)

	inq, err := svc.CreateInquiry(ctx, buyerID, &CreateInquiryRequest{
		CarID:        car.ID,
		Subject:      " Price negotiable? ",
		Message:      "Would you accept 480k cash?",
		OfferedPrice: ptr(480000.0),
	})
	require.NoError(t, err)

	assert.Equal(t, StatusNew, inq.Status)
	assert.Equal(t, sellerID, inq.SellerID)
	assert.Equal(t, "Price negotiable?", inq.Subject)
	assert.Equal(t, fixedNow, inq.CreatedAt)

	require.Len(t, d.mailer.sent, 1)
	assert.Equal(t, "seller@example.ph", d.mailer.sent[0].To)
	assert.True(t, strings.Contains(d.mailer.sent[0].TextBody, "Liza Cruz"))
	assert.Equal(t, []string{eventbus.SubjectInquiryCreated}, d.publisher.subjects)
	d.notifier.AssertExpectations(t)
}

func TestCreateInquiry_EmailFailureDoesNotFail(t *testing.T) {
	svc, d := newTestService()
	d.mailer.err = errors.New("smtp down")
	buyerID, sellerID := uuid.New(), uuid.New()
	car := liveCar(sellerID)

	d.repo.On("GetCarSummary", mock.Anything, car.ID).Return(car, nil)
	d.repo.On("CreateInquiry", mock.Anything, mock.Anything).Return(nil)
	d.notifier.On("Notify", mock.Anything, sellerID, mock.Anything, mock.Anything).Return()
	d.users.On("GetUserByID", mock.Anything, sellerID).Return(&models.User{Email: "s@example.ph"}, nil)
	d.users.On("GetUserByID", mock.Anything, buyerID).Return(nil, errors.New("gone"))

	inq, err := svc.CreateInquiry(context.Background(), buyerID, &CreateInquiryRequest{CarID: car.ID, Subject: "Hello", Message: "Is this available?"})
	require.NoError(t, err)
	assert.NotNil(t, inq)
	require.Len(t, d.mailer.sent, 1)
	assert.Contains(t, d.mailer.sent[0].TextBody, "A buyer")
}

func TestCreateInquiry_Rejections(t *testing.T) {
	ctx := context.Background()
	sellerID := uuid.New()

	t.Run("unknown listing", func(t *testing.T) {
		svc, d := newTestService()
		carID := uuid.New()
		d.repo.On("GetCarSummary", ctx, carID).Return(nil, ErrNotFound)

		_, err := svc.CreateInquiry(ctx, uuid.New(), &CreateInquiryRequest{CarID: carID})
		assertAppErrorCode(t, err, http.StatusNotFound)
	})

	t.Run("sold listing", func(t *testing.T) {
		svc, d := newTestService()
		car := liveCar(sellerID)
		car.Status = "sold"
		d.repo.On("GetCarSummary", ctx, car.ID).Return(car, nil)

		_, err := svc.CreateInquiry(ctx, uuid.New(), &CreateInquiryRequest{CarID: car.ID})
		assertAppErrorCode(t, err, http.StatusBadRequest)
	})

	t.Run("expired listing", func(t *testing.T) {
		svc, d := newTestService()
		car := liveCar(sellerID)
		car.ExpiresAt = ptr(fixedNow.Add(-time.Hour))
		d.repo.On("GetCarSummary", ctx, car.ID).Return(car, nil)

		_, err := svc.CreateInquiry(ctx, uuid.New(), &CreateInquiryRequest{CarID: car.ID})
		assertAppErrorCode(t, err, http.StatusBadRequest)
	})

	t.Run("own listing", func(t *testing.T) {
		svc, d := newTestService()
		car := liveCar(sellerID)
		d.repo.On("GetCarSummary", ctx, car.ID).Return(car, nil)

		_, err := svc.CreateInquiry(ctx, sellerID, &CreateInquiryRequest{CarID: car.ID})
		assertAppErrorCode(t, err, http.StatusBadRequest)
		d.repo.AssertNotCalled(t, "CreateInquiry", mock.Anything, mock.Anything)
	})
}

// ========================================
// GetInquiry
// ========================================

func TestGetInquiry_SellerMarksRead(t *testing.T) {
	svc, d := newTestService()
	ctx := context.Background()
	buyerID, sellerID := uuid.New(), uuid.New()
	inq := newInquiry(buyerID, sellerID, StatusNew)

	d.repo.On("GetInquiry", ctx, inq.ID).Return(inq, nil)
	d.repo.On("UpdateStatus", ctx, inq.ID, StatusRead, fixedNow).Return(nil).Once()
	d.repo.On("ListResponses", ctx, inq.ID).Return([]*Response{{ID: uuid.New()}}, nil)

	got, err := svc.GetInquiry(ctx, sellerID, inq.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRead, got.Status)
	assert.Len(t, got.Responses, 1)
}

func TestGetInquiry_BuyerDoesNotMarkRead(t *testing.T) {
	svc, d := newTestService()
	ctx := context.Background()
	buyerID, sellerID := uuid.New(), uuid.New()
	inq := newInquiry(buyerID, sellerID, StatusNew)

	d.repo.On("GetInquiry", ctx, inq.ID).Return(inq, nil)
	d.repo.On("ListResponses", ctx, inq.ID).Return(nil, nil)

	got, err := svc.GetInquiry(ctx, buyerID, inq.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusNew, got.Status)
	d.repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetInquiry_Outsider(t *testing.T) {
	svc, d := newTestService()
	inq := newInquiry(uuid.New(), uuid.New(), StatusNew)
	d.repo.On("GetInquiry", mock.Anything, inq.ID).Return(inq, nil)

	_, err := svc.GetInquiry(context.Background(), uuid.New(), inq.ID)
	assertAppErrorCode(t, err, http.StatusForbidden)
}

// ========================================
// Respond
// ========================================

func TestRespond_SellerReplyMarksReplied(t *testing.T) {
	svc, d := newTestService()
	ctx := context.Background()
	buyerID, sellerID := uuid.New(), uuid.New()
	inq := newInquiry(buyerID, sellerID, StatusRead)

	d.repo.On("GetInquiry", ctx, inq.ID).Return(inq, nil)
	d.repo.On("AddResponse", ctx, mock.AnythingOfType("*inquiries.Response"), StatusReplied, true).Return(nil).Once()
	d.notifier.On("Notify", ctx, buyerID, "New reply", mock.Anything).Return().Once()

	resp, err := svc.Respond(ctx, sellerID, inq.ID, " Yes, available Saturday. ")
	require.NoError(t, err)
	assert.Equal(t, "Yes, available Saturday.", resp.Message)
	assert.Equal(t, sellerID, resp.ResponderID)
	d.repo.AssertExpectations(t)
	d.notifier.AssertExpectations(t)
}

func TestRespond_BuyerFollowUpKeepsStatus(t *testing.T) {
	svc, d := newTestService()
	ctx := context.Background()
	buyerID, sellerID := uuid.New(), uuid.New()
	inq := newInquiry(buyerID, sellerID, StatusReplied)

	d.repo.On("GetInquiry", ctx, inq.ID).Return(inq, nil)
	d.repo.On("AddResponse", ctx, mock.Anything, StatusReplied, false).Return(nil).Once()
	d.notifier.On("Notify", ctx, sellerID, "New reply", mock.Anything).Return().Once()

	_, err := svc.Respond(ctx, buyerID, inq.ID, "See you then")
	require.NoError(t, err)
	d.repo.AssertExpectations(t)
}

func TestRespond_ClosedThread(t *testing.T) {
	svc, d := newTestService()
	buyerID, sellerID := uuid.New(), uuid.New()
	inq := newInquiry(buyerID, sellerID, StatusClosed)
	d.repo.On("GetInquiry", mock.Anything, inq.ID).Return(inq, nil)

	_, err := svc.Respond(context.Background(), sellerID, inq.ID, "hello")
	assertAppErrorCode(t, err, http.StatusBadRequest)
}

// ========================================
// Close / Archive
// ========================================

func TestCloseAndArchive(t *testing.T) {
	ctx := context.Background()
	buyerID, sellerID := uuid.New(), uuid.New()

	t.Run("close", func(t *testing.T) {
		svc, d := newTestService()
		inq := newInquiry(buyerID, sellerID, StatusReplied)
		d.repo.On("GetInquiry", ctx, inq.ID).Return(inq, nil)
		d.repo.On("UpdateStatus", ctx, inq.ID, StatusClosed, fixedNow).Return(nil)

		got, err := svc.Close(ctx, buyerID, inq.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusClosed, got.Status)
	})

	t.Run("close twice", func(t *testing.T) {
		svc, d := newTestService()
		inq := newInquiry(buyerID, sellerID, StatusClosed)
		d.repo.On("GetInquiry", ctx, inq.ID).Return(inq, nil)

		_, err := svc.Close(ctx, sellerID, inq.ID)
		require.NoError(t, err)
		d.repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("archive closed", func(t *testing.T) {
		svc, d := newTestService()
		inq := newInquiry(buyerID, sellerID, StatusClosed)
		d.repo.On("GetInquiry", ctx, inq.ID).Return(inq, nil)
		d.repo.On("UpdateStatus", ctx, inq.ID, StatusArchived, fixedNow).Return(nil)

		got, err := svc.Archive(ctx, sellerID, inq.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusArchived, got.Status)
	})

	t.Run("archived cannot be closed", func(t *testing.T) {
		svc, d := newTestService()
		inq := newInquiry(buyerID, sellerID, StatusArchived)
		d.repo.On("GetInquiry", ctx, inq.ID).Return(inq, nil)

		_, err := svc.Close(ctx, sellerID, inq.ID)
		assertAppErrorCode(t, err, http.StatusBadRequest)
	})
}

// ========================================
// ResponseRate
// ========================================

func TestResponseRate(t *testing.T) {
	tests := []struct {
		name     string
		stats    *ResponseStats
		expected float64
	}{
		{"no inquiries", &ResponseStats{}, 0},
		{"all answered", &ResponseStats{Received: 4, Answered: 4}, 1},
		{"three of four", &ResponseStats{Received: 4, Answered: 3}, 0.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, d := newTestService()
			sellerID := uuid.New()
			d.repo.On("GetResponseStats", mock.Anything, sellerID).Return(tt.stats, nil)

			rate, err := svc.ResponseRate(context.Background(), sellerID)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, rate, 1e-9)
		})
	}
}

func TestResponseRate_Error(t *testing.T) {
	svc, d := newTestService()
	sellerID := uuid.New()
	d.repo.On("GetResponseStats", mock.Anything, sellerID).Return(nil, errors.New("db"))

	_, err := svc.ResponseRate(context.Background(), sellerID)
	assert.Error(t, err)
}

func TestListInquiries_NeverNil(t *testing.T) {
	svc, d := newTestService()
	userID := uuid.New()
	d.repo.On("ListInquiries", mock.Anything, userID, BoxSent, (*Status)(nil), 20, 0).Return(nil, int64(0), nil)

	items, total, err := svc.ListInquiries(context.Background(), userID, BoxSent, nil, 20, 0)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Zero(t, total)
}

func ptr[T any](v T) *T {
	return &v
}
