package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("no rows")
	err := NewNotFoundError("car not found", cause)

	assert.Equal(t, http.StatusNotFound, err.Code)
	assert.Equal(t, "car not found: no rows", err.Error())
	assert.ErrorIs(t, err, cause)

	assert.Equal(t, "forbidden", NewForbiddenError("forbidden").Error())
}

func TestAppError_Constructors(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		code int
	}{
		{"bad request", NewBadRequestError("bad", nil), http.StatusBadRequest},
		{"unauthorized", NewUnauthorizedError("who"), http.StatusUnauthorized},
		{"forbidden", NewForbiddenError("no"), http.StatusForbidden},
		{"not found", NewNotFoundError("gone", nil), http.StatusNotFound},
		{"conflict", NewConflictError("dup"), http.StatusConflict},
		{"internal", NewInternalServerError("boom"), http.StatusInternalServerError},
		{"internal wrapped", NewInternalError("boom", errors.New("x")), http.StatusInternalServerError},
		{"unavailable", NewServiceUnavailableError("down"), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
		})
	}
}

func TestAsAppError_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("service: %w", NewConflictError("already favorited"))

	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, appErr.Code)

	_, ok = AsAppError(errors.New("plain"))
	assert.False(t, ok)
}

func TestSuccessResponseWithMeta(t *testing.T) {
	c, w := newTestContext()

	SuccessResponseWithMeta(c, []string{"a"}, &Meta{Limit: 20, Offset: 0, Total: 1, TotalPages: 1})

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.NotNil(t, body["data"])
	meta := body["meta"].(map[string]interface{})
	assert.Equal(t, float64(1), meta["total"])
}

func TestCreatedResponse(t *testing.T) {
	c, w := newTestContext()

	CreatedResponse(c, gin.H{"id": "1"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, true, decode(t, w)["success"])
}

func TestHandleServiceError(t *testing.T) {
	c, w := newTestContext()
	HandleServiceError(c, NewNotFoundError("car not found", nil), "failed")
	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "car not found", body["error"].(map[string]interface{})["message"])

	c, w = newTestContext()
	HandleServiceError(c, errors.New("db down"), "failed to load car")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "failed to load car", decode(t, w)["error"].(map[string]interface{})["message"])
}

func TestHealthCheckWithDeps(t *testing.T) {
	c, w := newTestContext()
	HealthCheckWithDeps("carmarket", "1.0.0", map[string]func() error{
		"database": func() error { return nil },
		"redis":    func() error { return errors.New("connection refused") },
	})(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decode(t, w)
	assert.Equal(t, "not ready", body["status"])
	checks := body["checks"].(map[string]interface{})
	assert.Equal(t, "ok", checks["database"])
	assert.Equal(t, "connection refused", checks["redis"])

	c, w = newTestContext()
	HealthCheckWithDeps("carmarket", "1.0.0", nil)(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ready", decode(t, w)["status"])

	c, w = newTestContext()
	HealthCheck("carmarket", "1.0.0")(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode(t, w)["status"])
}
