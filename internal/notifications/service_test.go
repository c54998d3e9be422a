package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/carmarket/pkg/common"
	"github.com/richxcame/carmarket/pkg/eventbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateNotification(ctx context.Context, n *Notification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *MockRepository) ListNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*Notification, int64, error) {
	args := m.Called(ctx, userID, unreadOnly, limit, offset)
	items, _ := args.Get(0).([]*Notification)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) MarkRead(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, id, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type MockAdminDirectory struct {
	mock.Mock
}

func (m *MockAdminDirectory) AdminIDs(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	ids, _ := args.Get(0).([]uuid.UUID)
	return ids, args.Error(1)
}

type recordingPublisher struct {
	subjects []string
}

func (p *recordingPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	p.subjects = append(p.subjects, subject)
	return nil
}

func TestNotify_PersistsAndPublishes(t *testing.T) {
	repo := new(MockRepository)
	pub := &recordingPublisher{}
	svc := NewService(repo, new(MockAdminDirectory), pub)
	ctx := context.Background()
	userID := uuid.New()

	repo.On("CreateNotification", ctx, mock.MatchedBy(func(n *Notification) bool {
		return n.UserID == userID && n.Type == TypeGeneral && n.Title == "Listing approved" && !n.IsRead
	})).Return(nil)

	svc.Notify(ctx, userID, "Listing approved", "Your 2019 Honda City is now live.")

	repo.AssertExpectations(t)
	assert.Equal(t, []string{eventbus.SubjectNotification}, pub.subjects)
}

func TestNotify_SwallowsErrors(t *testing.T) {
	repo := new(MockRepository)
	pub := &recordingPublisher{}
	svc := NewService(repo, new(MockAdminDirectory), pub)
	ctx := context.Background()

	repo.On("CreateNotification", ctx, mock.Anything).Return(errors.New("insert failed"))

	assert.NotPanics(t, func() { svc.Notify(ctx, uuid.New(), "t", "m") })
	assert.Empty(t, pub.subjects)
}

func TestNotifyAdmins_FansOut(t *testing.T) {
	repo := new(MockRepository)
	admins := new(MockAdminDirectory)
	svc := NewService(repo, admins, eventbus.NoopPublisher{})
	ctx := context.Background()
	ids := []uuid.UUID{uuid.New(), uuid.New()}

	admins.On("AdminIDs", ctx).Return(ids, nil)
	repo.On("CreateNotification", ctx, mock.MatchedBy(func(n *Notification) bool { return n.Type == TypeFraud })).Return(nil).Twice()

	svc.NotifyAdmins(ctx, "Fraud alert", "Rapid listing detected")

	repo.AssertNumberOfCalls(t, "CreateNotification", 2)
}

func TestNotifyAdmins_DirectoryError(t *testing.T) {
	repo := new(MockRepository)
	admins := new(MockAdminDirectory)
	svc := NewService(repo, admins, eventbus.NoopPublisher{})
	ctx := context.Background()

	admins.On("AdminIDs", ctx).Return(nil, errors.New("db down"))

	svc.NotifyAdmins(ctx, "Fraud alert", "x")
	repo.AssertNotCalled(t, "CreateNotification", mock.Anything, mock.Anything)
}

func TestMarkRead_NotFound(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, new(MockAdminDirectory), eventbus.NoopPublisher{})
	ctx := context.Background()
	userID, id := uuid.New(), uuid.New()

	repo.On("MarkRead", ctx, id, userID).Return(false, nil)

	err := svc.MarkRead(ctx, userID, id)
	appErr, ok := common.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, appErr.Code)
}

func TestHandler_List(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := new(MockRepository)
	handler := NewHandler(NewService(repo, new(MockAdminDirectory), eventbus.NoopPublisher{}))
	userID := uuid.New()

	items := []*Notification{{ID: uuid.New(), UserID: userID, Type: TypeInquiry, Title: "New inquiry"}}
	repo.On("ListNotifications", mock.Anything, userID, true, 20, 0).Return(items, int64(1), nil)
	repo.On("CountUnread", mock.Anything, userID).Return(int64(1), nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/notifications?unread=true", nil)
	c.Set("user_id", userID.String())

	handler.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["unread_count"])
	assert.Len(t, data["notifications"], 1)
	assert.NotNil(t, response["meta"])
}

func TestHandler_MarkRead_InvalidID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewHandler(NewService(new(MockRepository), new(MockAdminDirectory), eventbus.NoopPublisher{}))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/notifications/bad/read", bytes.NewReader(nil))
	c.Params = gin.Params{{Key: "id", Value: "bad"}}
	c.Set("user_id", uuid.New().String())

	handler.MarkRead(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
