package inquiries

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/carmarket/pkg/common"
	"github.com/richxcame/carmarket/pkg/middleware"
	"github.com/richxcame/carmarket/pkg/pagination"
)

// Handler handles HTTP requests for inquiries
type Handler struct {
	service *Service
}

// NewHandler creates a new inquiry handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CreateInquiry sends an inquiry about a listing
// POST /api/v1/inquiries
func (h *Handler) CreateInquiry(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateInquiryRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	inq, err := h.service.CreateInquiry(c.Request.Context(), userID, &req)
	if err != nil {
		common.HandleServiceError(c, err, "failed to send inquiry")
		return
	}

	common.CreatedResponse(c, inq)
}

// ListInquiries lists the caller's inquiries
// GET /api/v1/inquiries?box=received|sent&status=
func (h *Handler) ListInquiries(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	box := Box(c.DefaultQuery("box", string(BoxReceived)))
	if box != BoxReceived && box != BoxSent {
		common.ErrorResponse(c, http.StatusBadRequest, "box must be received or sent")
		return
	}

	var status *Status
	if v := c.Query("status"); v != "" {
		st := Status(v)
		if !st.IsValid() {
			common.ErrorResponse(c, http.StatusBadRequest, "invalid status")
			return
		}
		status = &st
	}

	params := pagination.ParseParams(c)
	items, total, err := h.service.ListInquiries(c.Request.Context(), userID, box, status, params.Limit, params.Offset)
	if err != nil {
		common.HandleServiceError(c, err, "failed to list inquiries")
		return
	}

	common.SuccessResponseWithMeta(c, items, pagination.BuildMeta(params.Limit, params.Offset, total))
}

// GetInquiry returns a thread
// GET /api/v1/inquiries/:id
func (h *Handler) GetInquiry(c *gin.Context) {
	h.threadAction(c, h.service.GetInquiry, "failed to get inquiry")
}

// Respond replies to a thread
// POST /api/v1/inquiries/:id/responses
func (h *Handler) Respond(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	inquiryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid inquiry id")
		return
	}

	var req RespondRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.Respond(c.Request.Context(), userID, inquiryID, req.Message)
	if err != nil {
		common.HandleServiceError(c, err, "failed to send reply")
		return
	}

	common.CreatedResponse(c, resp)
}

// Close closes a thread
// POST /api/v1/inquiries/:id/close
func (h *Handler) Close(c *gin.Context) {
	h.threadAction(c, h.service.Close, "failed to close inquiry")
}

// Archive archives a thread
// POST /api/v1/inquiries/:id/archive
func (h *Handler) Archive(c *gin.Context) {
	h.threadAction(c, h.service.Archive, "failed to archive inquiry")
}

func (h *Handler) threadAction(c *gin.Context, action func(ctx context.Context, userID, inquiryID uuid.UUID) (*Inquiry, error), fallback string) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	inquiryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid inquiry id")
		return
	}

	inq, err := action(c.Request.Context(), userID, inquiryID)
	if err != nil {
		common.HandleServiceError(c, err, fallback)
		return
	}

	common.SuccessResponse(c, inq)
}
