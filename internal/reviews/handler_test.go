package reviews

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
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

func TestHandler_CreateReview_InvalidRating(t *testing.T) {
	svc, d := newTestService()
	handler := NewHandler(svc)

	c, w := setupTestContext(http.MethodPost, "/api/v1/reviews", map[string]interface{}{
		"seller_id": uuid.New(),
		"rating":    0,
	})
	c.Set("user_id", uuid.New().String())
	handler.CreateReview(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	d.repo.AssertNotCalled(t, "GetReviewee", mock.Anything, mock.Anything)
}

func TestHandler_CreateReview_Unauthorized(t *testing.T) {
	svc, _ := newTestService()
	handler := NewHandler(svc)

	c, w := setupTestContext(http.MethodPost, "/api/v1/reviews", map[string]interface{}{"rating": 5})
	handler.CreateReview(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_ListSellerReviews(t *testing.T) {
	svc, d := newTestService()
	handler := NewHandler(svc)
	sellerID := uuid.New()
	summary := newSummary()
	summary.Total = 1
	summary.Average = 5
	summary.Distribution[5] = 1

	d.repo.On("GetSummary", mock.Anything, sellerID).Return(summary, nil)
	d.repo.On("ListSellerReviews", mock.Anything, sellerID, 20, 0).Return([]*Review{{ID: uuid.New(), Rating: 5}}, nil)

	c, w := setupTestContext(http.MethodGet, "/api/v1/sellers/"+sellerID.String()+"/reviews", nil)
	c.Params = gin.Params{{Key: "id", Value: sellerID.String()}}
	handler.ListSellerReviews(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := parseResponse(w)["data"].(map[string]interface{})
	s := data["summary"].(map[string]interface{})
	assert.Equal(t, float64(5), s["average_rating"])
	assert.Len(t, data["reviews"], 1)
}

func TestHandler_HideReview_InvalidID(t *testing.T) {
	svc, _ := newTestService()
	handler := NewHandler(svc)

	c, w := setupTestContext(http.MethodPost, "/api/v1/admin/reviews/abc/hide", nil)
	c.Set("user_id", uuid.New().String())
	c.Params = gin.Params{{Key: "id", Value: "abc"}}
	handler.HideReview(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
