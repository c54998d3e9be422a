package subscriptions

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/carmarket/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupTestContext(method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var req *http.Request
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(bodyBytes))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	c.Request = req

	return c, w
}

func parseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	return response
}

func TestHandler_Subscribe_Unauthorized(t *testing.T) {
	svc, _, _ := newTestService()
	handler := NewHandler(svc)

	c, w := setupTestContext(http.MethodPost, "/api/v1/subscriptions", SubscribeRequest{PlanSlug: "basic", PaymentMethod: models.PaymentMethodGCash})
	handler.Subscribe(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_Subscribe_InvalidMethod(t *testing.T) {
	svc, _, _ := newTestService()
	handler := NewHandler(svc)

	c, w := setupTestContext(http.MethodPost, "/api/v1/subscriptions", map[string]string{"plan_slug": "basic", "payment_method": "bitcoin"})
	c.Set("user_id", uuid.New().String())
	handler.Subscribe(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, parseResponse(w)["success"])
}

func TestHandler_Subscribe_Created(t *testing.T) {
	svc, repo, _ := newTestService()
	handler := NewHandler(svc)
	userID := uuid.New()

	repo.On("GetPlanBySlug", mock.Anything, "premium").Return(premiumPlan(), nil)
	repo.On("GetOpenSubscription", mock.Anything, userID, fixedNow).Return(nil, ErrNotFound)
	repo.On("CreateSubscriptionWithPayment", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	c, w := setupTestContext(http.MethodPost, "/api/v1/subscriptions", SubscribeRequest{PlanSlug: "premium", PaymentMethod: models.PaymentMethodPayMaya})
	c.Set("user_id", userID.String())
	handler.Subscribe(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := parseResponse(w)["data"].(map[string]interface{})
	payment := data["payment"].(map[string]interface{})
	assert.Equal(t, "paymaya", payment["method"])
	assert.Equal(t, "pending", payment["status"])
}

func TestHandler_GetSubscription_NoneShowsFreeLimits(t *testing.T) {
	svc, repo, _ := newTestService()
	handler := NewHandler(svc)
	userID := uuid.New()

	repo.On("GetActiveSubscription", mock.Anything, userID, fixedNow).Return(nil, ErrNotFound)
	repo.On("GetPlanBySlug", mock.Anything, FreePlanSlug).Return(nil, ErrNotFound)

	c, w := setupTestContext(http.MethodGet, "/api/v1/subscriptions/me", nil)
	c.Set("user_id", userID.String())
	handler.GetSubscription(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := parseResponse(w)["data"].(map[string]interface{})
	assert.Equal(t, false, data["has_subscription"])
	limits := data["limits"].(map[string]interface{})
	assert.Equal(t, float64(2), limits["max_listings"])
}

func TestHandler_ConfirmPayment_InvalidID(t *testing.T) {
	svc, _, _ := newTestService()
	handler := NewHandler(svc)

	c, w := setupTestContext(http.MethodPost, "/api/v1/admin/payments/not-a-uuid/confirm", ConfirmPaymentRequest{Reference: "x"})
	c.Set("user_id", uuid.New().String())
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}
	handler.ConfirmPayment(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
