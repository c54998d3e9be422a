package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/richxcame/carmarket/pkg/common"
	"github.com/richxcame/carmarket/pkg/validation"
)

// BindJSON decodes the request body into req and runs its binding rules.
// On failure it writes the 400 response and returns false.
func BindJSON(c *gin.Context, req interface{}) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		common.ValidationErrorResponse(c, validation.NewValidationError(verrs).Errors)
		return false
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		common.ErrorResponse(c, http.StatusRequestEntityTooLarge, "request body too large")
		return false
	}

	common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
	return false
}

// MaxBodySize caps how many body bytes a handler may read
func MaxBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
