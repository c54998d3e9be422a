package subscriptions

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/carmarket/pkg/common"
	"github.com/richxcame/carmarket/pkg/middleware"
	"github.com/richxcame/carmarket/pkg/pagination"
)

// Handler handles HTTP requests for subscriptions
type Handler struct {
	service *Service
}

// NewHandler creates a new subscription handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ========================================
// PLAN ENDPOINTS (Public)
// ========================================

// ListPlans lists available plans
// GET /api/v1/plans
func (h *Handler) ListPlans(c *gin.Context) {
	plans, err := h.service.ListPlans(c.Request.Context())
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to list plans")
		return
	}

	common.SuccessResponse(c, plans)
}

// ========================================
// SUBSCRIPTION ENDPOINTS
// ========================================

// Subscribe subscribes the user to a plan
// POST /api/v1/subscriptions
func (h *Handler) Subscribe(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req SubscribeRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	response, err := h.service.Subscribe(c.Request.Context(), userID, &req)
	if err != nil {
		common.HandleServiceError(c, err, "failed to subscribe")
		return
	}

	common.CreatedResponse(c, response)
}

// GetSubscription gets the user's active subscription
// GET /api/v1/subscriptions/me
func (h *Handler) GetSubscription(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	response, err := h.service.GetActiveSubscription(c.Request.Context(), userID)
	if err != nil {
		if appErr, ok := common.AsAppError(err); ok && appErr.Code == http.StatusNotFound {
			limits, limErr := h.service.Limits(c.Request.Context(), userID)
			if limErr != nil {
				common.ErrorResponse(c, http.StatusInternalServerError, "failed to get subscription")
				return
			}
			common.SuccessResponse(c, gin.H{
				"has_subscription": false,
				"limits":           limits,
			})
			return
		}
		common.HandleServiceError(c, err, "failed to get subscription")
		return
	}

	common.SuccessResponse(c, gin.H{
		"has_subscription": true,
		"subscription":     response,
	})
}

// CancelSubscription cancels the user's subscription
// POST /api/v1/subscriptions/me/cancel
func (h *Handler) CancelSubscription(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.service.Cancel(c.Request.Context(), userID); err != nil {
		common.HandleServiceError(c, err, "failed to cancel subscription")
		return
	}

	common.SuccessResponse(c, gin.H{"message": "Subscription cancelled"})
}

// ListPayments returns the user's payment history
// GET /api/v1/subscriptions/payments
func (h *Handler) ListPayments(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	params := pagination.ParseParams(c)
	payments, total, err := h.service.ListPayments(c.Request.Context(), userID, params.Limit, params.Offset)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to list payments")
		return
	}

	common.SuccessResponseWithMeta(c, payments, pagination.BuildMeta(params.Limit, params.Offset, total))
}

// ========================================
// ADMIN ENDPOINTS
// ========================================

// ConfirmPayment marks a payment as received
// POST /api/v1/admin/payments/:id/confirm
func (h *Handler) ConfirmPayment(c *gin.Context) {
	adminID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid payment id")
		return
	}

	var req ConfirmPaymentRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	payment, err := h.service.ConfirmPayment(c.Request.Context(), adminID, paymentID, req.Reference)
	if err != nil {
		common.HandleServiceError(c, err, "failed to confirm payment")
		return
	}

	common.SuccessResponse(c, payment)
}
