package users

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/carmarket/pkg/common"
	"github.com/richxcame/carmarket/pkg/middleware"
)

// Handler handles HTTP requests for accounts
type Handler struct {
	service *Service
}

// NewHandler creates a new user handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register handles user registration
// POST /api/v1/auth/register
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	user, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		common.HandleServiceError(c, err, "registration failed")
		return
	}

	common.CreatedResponse(c, user)
}

// Login handles user login
// POST /api/v1/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	response, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		common.HandleServiceError(c, err, "login failed")
		return
	}

	common.SuccessResponse(c, response)
}

// GetProfile returns the caller's profile
// GET /api/v1/me
func (h *Handler) GetProfile(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		common.HandleServiceError(c, err, "failed to get profile")
		return
	}

	common.SuccessResponse(c, user)
}

// UpdateProfile updates the caller's profile
// PUT /api/v1/me
func (h *Handler) UpdateProfile(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req UpdateProfileRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		common.HandleServiceError(c, err, "failed to update profile")
		return
	}

	common.SuccessResponse(c, user)
}

// GetPublicProfile returns a seller's public profile
// GET /api/v1/sellers/:id
func (h *Handler) GetPublicProfile(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid user id")
		return
	}

	profile, err := h.service.GetPublicProfile(c.Request.Context(), userID)
	if err != nil {
		common.HandleServiceError(c, err, "failed to get profile")
		return
	}

	common.SuccessResponse(c, profile)
}

// SetVerification updates a user's verification flags
// PUT /api/v1/admin/users/:id/verification
func (h *Handler) SetVerification(c *gin.Context) {
	adminID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid user id")
		return
	}

	var req VerificationRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	user, err := h.service.SetVerification(c.Request.Context(), adminID, userID, &req)
	if err != nil {
		common.HandleServiceError(c, err, "failed to update verification")
		return
	}

	common.SuccessResponse(c, user)
}

// SetActive enables or disables a user
// PUT /api/v1/admin/users/:id/active
func (h *Handler) SetActive(c *gin.Context) {
	adminID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid user id")
		return
	}

	var req SetActiveRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	if err := h.service.SetActive(c.Request.Context(), adminID, userID, *req.IsActive); err != nil {
		common.HandleServiceError(c, err, "failed to update account status")
		return
	}

	common.SuccessResponse(c, gin.H{"id": userID, "is_active": *req.IsActive})
}
