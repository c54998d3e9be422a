package inquiries

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/carmarket/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := validation.RegisterGinValidators(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func setupTestContext(method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
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

func TestHandler_CreateInquiry_Unauthorized(t *testing.T) {
	svc, _ := newTestService()
	handler := NewHandler(svc)

	c, w := setupTestContext(http.MethodPost, "/api/v1/inquiries", map[string]string{})
	handler.CreateInquiry(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_CreateInquiry_Validation(t *testing.T) {
	svc, d := newTestService()
	handler := NewHandler(svc)

	c, w := setupTestContext(http.MethodPost, "/api/v1/inquiries", map[string]interface{}{
		"car_id":  uuid.New(),
		"subject": "Hi",
		"message": "too short",
	})
	c.Set("user_id", uuid.New().String())
	handler.CreateInquiry(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	d.repo.AssertNotCalled(t, "GetCarSummary", mock.Anything, mock.Anything)
}

func TestHandler_ListInquiries_InvalidBox(t *testing.T) {
	svc, _ := newTestService()
	handler := NewHandler(svc)

	c, w := setupTestContext(http.MethodGet, "/api/v1/inquiries?box=trash", nil)
	c.Set("user_id", uuid.New().String())
	handler.ListInquiries(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_ListInquiries_DefaultsToReceived(t *testing.T) {
	svc, d := newTestService()
	handler := NewHandler(svc)
	userID := uuid.New()
	d.repo.On("ListInquiries", mock.Anything, userID, BoxReceived, mock.Anything, 20, 0).Return([]*Inquiry{}, int64(0), nil)

	c, w := setupTestContext(http.MethodGet, "/api/v1/inquiries?status=new", nil)
	c.Set("user_id", userID.String())
	handler.ListInquiries(c)

	assert.Equal(t, http.StatusOK, w.Code)
	d.repo.AssertExpectations(t)
}

func TestHandler_Respond_Forbidden(t *testing.T) {
	svc, d := newTestService()
	handler := NewHandler(svc)
	inq := newInquiry(uuid.New(), uuid.New(), StatusNew)
	d.repo.On("GetInquiry", mock.Anything, inq.ID).Return(inq, nil)

	c, w := setupTestContext(http.MethodPost, "/api/v1/inquiries/"+inq.ID.String()+"/responses", RespondRequest{Message: "hello"})
	c.Set("user_id", uuid.New().String())
	c.Params = gin.Params{{Key: "id", Value: inq.ID.String()}}
	handler.Respond(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHandler_Close_InvalidID(t *testing.T) {
	svc, _ := newTestService()
	handler := NewHandler(svc)

	c, w := setupTestContext(http.MethodPost, "/api/v1/inquiries/nope/close", nil)
	c.Set("user_id", uuid.New().String())
	c.Params = gin.Params{{Key: "id", Value: "nope"}}
	handler.Close(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
