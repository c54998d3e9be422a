package fraud

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/carmarket/pkg/common"
	"github.com/richxcame/carmarket/pkg/pagination"
)

// Handler handles admin HTTP requests for fraud review
type Handler struct {
	service *Service
}

// NewHandler creates a new fraud handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ListIndicators lists fraud indicators, newest first
// GET /api/v1/admin/fraud/indicators?type=&severity=&user_id=
func (h *Handler) ListIndicators(c *gin.Context) {
	var filters IndicatorFilters

	if v := c.Query("type"); v != "" {
		t := IndicatorType(v)
		if !t.IsValid() {
			common.ErrorResponse(c, http.StatusBadRequest, "invalid indicator type")
			return
		}
		filters.Type = &t
	}
	if v := c.Query("severity"); v != "" {
		s := Severity(v)
		if !s.IsValid() {
			common.ErrorResponse(c, http.StatusBadRequest, "invalid severity")
			return
		}
		filters.Severity = &s
	}
	if v := c.Query("user_id"); v != "" {
		userID, err := uuid.Parse(v)
		if err != nil {
			common.ErrorResponse(c, http.StatusBadRequest, "invalid user id")
			return
		}
		filters.UserID = &userID
	}

	params := pagination.ParseParams(c)
	indicators, total, err := h.service.ListIndicators(c.Request.Context(), filters, params.Limit, params.Offset)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to list fraud indicators")
		return
	}

	common.SuccessResponseWithMeta(c, indicators, pagination.BuildMeta(params.Limit, params.Offset, total))
}

// GetUserRisk returns a user's indicators together with their reputation
// GET /api/v1/admin/users/:id/fraud
func (h *Handler) GetUserRisk(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid user id")
		return
	}

	reputation, err := h.service.CalculateReputation(c.Request.Context(), userID)
	if err != nil {
		common.HandleServiceError(c, err, "failed to calculate reputation")
		return
	}

	params := pagination.ParseParams(c)
	indicators, total, err := h.service.GetUserIndicators(c.Request.Context(), userID, params.Limit, params.Offset)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to list fraud indicators")
		return
	}

	common.SuccessResponseWithMeta(c, gin.H{
		"reputation": reputation,
		"indicators": indicators,
	}, pagination.BuildMeta(params.Limit, params.Offset, total))
}
