package reviews

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/carmarket/pkg/common"
	"github.com/richxcame/carmarket/pkg/middleware"
	"github.com/richxcame/carmarket/pkg/pagination"
)

// Handler handles HTTP requests for reviews
type Handler struct {
	service *Service
}

// NewHandler creates a new review handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CreateReview rates a seller
// POST /api/v1/reviews
func (h *Handler) CreateReview(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateReviewRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	review, err := h.service.CreateReview(c.Request.Context(), userID, &req)
	if err != nil {
		common.HandleServiceError(c, err, "failed to create review")
		return
	}

	common.CreatedResponse(c, review)
}

// ListSellerReviews lists a seller's published reviews
// GET /api/v1/sellers/:id/reviews
func (h *Handler) ListSellerReviews(c *gin.Context) {
	sellerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid seller id")
		return
	}

	params := pagination.ParseParams(c)
	result, err := h.service.ListSellerReviews(c.Request.Context(), sellerID, params.Limit, params.Offset)
	if err != nil {
		common.HandleServiceError(c, err, "failed to list reviews")
		return
	}

	common.SuccessResponseWithMeta(c, result, pagination.BuildMeta(params.Limit, params.Offset, int64(result.Summary.Total)))
}

// HideReview hides a review (admin)
// POST /api/v1/admin/reviews/:id/hide
func (h *Handler) HideReview(c *gin.Context) {
	adminID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid review id")
		return
	}

	review, err := h.service.HideReview(c.Request.Context(), adminID, reviewID)
	if err != nil {
		common.HandleServiceError(c, err, "failed to hide review")
		return
	}

	common.SuccessResponse(c, review)
}
