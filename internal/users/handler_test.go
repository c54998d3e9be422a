package users

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
	"github.com/stretchr/testify/require"
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

func parseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	return response
}

func TestHandler_Register_Success(t *testing.T) {
	svc, repo, _ := newTestService()
	handler := NewHandler(svc)
	repo.On("CreateUser", mock.Anything, mock.Anything).Return(nil)

	c, w := setupTestContext(http.MethodPost, "/api/v1/auth/register", map[string]interface{}{
		"email":      "seller@example.ph",
		"password":   "SecurePassword123!",
		"first_name": "Ana",
		"last_name":  "Reyes",
		"phone":      "09171234567",
		"role":       "seller",
	})
	handler.Register(c)

	require.Equal(t, http.StatusCreated, w.Code)
	data := parseResponse(w)["data"].(map[string]interface{})
	assert.Equal(t, "seller", data["role"])
	assert.NotContains(t, data, "password_hash")
}

func TestHandler_Register_Validation(t *testing.T) {
	base := func() map[string]interface{} {
		return map[string]interface{}{
			"email":      "buyer@example.ph",
			"password":   "SecurePassword123!",
			"first_name": "Ana",
			"last_name":  "Reyes",
		}
	}

	tests := []struct {
		name   string
		mutate func(map[string]interface{})
	}{
		{"missing email", func(b map[string]interface{}) { delete(b, "email") }},
		{"invalid email", func(b map[string]interface{}) { b["email"] = "not-an-email" }},
		{"short password", func(b map[string]interface{}) { b["password"] = "short" }},
		{"missing first name", func(b map[string]interface{}) { delete(b, "first_name") }},
		{"foreign phone", func(b map[string]interface{}) { b["phone"] = "+15551234567" }},
		{"admin role", func(b map[string]interface{}) { b["role"] = "admin" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newTestService()
			handler := NewHandler(svc)

			body := base()
			tt.mutate(body)
			c, w := setupTestContext(http.MethodPost, "/api/v1/auth/register", body)
			handler.Register(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, false, parseResponse(w)["success"])
			repo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
		})
	}
}

func TestHandler_Login_InvalidCredentials(t *testing.T) {
	svc, repo, _ := newTestService()
	handler := NewHandler(svc)
	repo.On("GetUserByEmail", mock.Anything, "ghost@example.ph").Return(nil, ErrNotFound)

	c, w := setupTestContext(http.MethodPost, "/api/v1/auth/login", LoginRequest{Email: "ghost@example.ph", Password: "whatever"})
	handler.Login(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_Login_ResponseContainsToken(t *testing.T) {
	svc, repo, _ := newTestService()
	handler := NewHandler(svc)
	user := createTestUser("correct-horse")
	repo.On("GetUserByEmail", mock.Anything, user.Email).Return(user, nil)
	repo.On("UpdateLastLogin", mock.Anything, user.ID, fixedNow).Return(nil)

	c, w := setupTestContext(http.MethodPost, "/api/v1/auth/login", LoginRequest{Email: user.Email, Password: "correct-horse"})
	handler.Login(c)

	require.Equal(t, http.StatusOK, w.Code)
	data := parseResponse(w)["data"].(map[string]interface{})
	assert.NotEmpty(t, data["token"])
	assert.NotNil(t, data["expires_at"])
}

func TestHandler_GetProfile_Unauthorized(t *testing.T) {
	svc, _, _ := newTestService()
	handler := NewHandler(svc)

	c, w := setupTestContext(http.MethodGet, "/api/v1/me", nil)
	handler.GetProfile(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_GetPublicProfile_InvalidID(t *testing.T) {
	svc, _, _ := newTestService()
	handler := NewHandler(svc)

	c, w := setupTestContext(http.MethodGet, "/api/v1/sellers/abc", nil)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}
	handler.GetPublicProfile(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_SetActive_RequiresFlag(t *testing.T) {
	svc, _, _ := newTestService()
	handler := NewHandler(svc)
	userID := uuid.New()

	c, w := setupTestContext(http.MethodPut, "/api/v1/admin/users/"+userID.String()+"/active", map[string]interface{}{})
	c.Set("user_id", uuid.New().String())
	c.Params = gin.Params{{Key: "id", Value: userID.String()}}
	handler.SetActive(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_SetActive_Success(t *testing.T) {
	svc, repo, _ := newTestService()
	handler := NewHandler(svc)
	userID := uuid.New()
	repo.On("SetActive", mock.Anything, userID, false, fixedNow).Return(nil)

	c, w := setupTestContext(http.MethodPut, "/api/v1/admin/users/"+userID.String()+"/active", map[string]interface{}{"is_active": false})
	c.Set("user_id", uuid.New().String())
	c.Params = gin.Params{{Key: "id", Value: userID.String()}}
	handler.SetActive(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := parseResponse(w)["data"].(map[string]interface{})
	assert.Equal(t, false, data["is_active"])
}
