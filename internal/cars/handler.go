package cars

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/carmarket/pkg/common"
	"github.com/richxcame/carmarket/pkg/middleware"
	"github.com/richxcame/carmarket/pkg/pagination"
)

// Handler handles HTTP requests for listings
type Handler struct {
	service *Service
}

// NewHandler creates a new listing handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func actorFrom(c *gin.Context) (Actor, bool) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return Actor{}, false
	}
	role, _ := middleware.GetUserRole(c)
	return Actor{UserID: userID, Role: role}, true
}

func parseID(c *gin.Context, param, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid "+name+" id")
		return uuid.Nil, false
	}
	return id, true
}

// ========================================
// PUBLIC ENDPOINTS
// ========================================

// Search searches public listings
// GET /api/v1/cars
func (h *Handler) Search(c *gin.Context) {
	filters := parseSearchFilters(c)

	result, err := h.service.Search(c.Request.Context(), filters)
	if err != nil {
		common.HandleServiceError(c, err, "failed to search listings")
		return
	}

	common.SuccessResponse(c, result)
}

// GetCar gets a listing
// GET /api/v1/cars/:id
func (h *Handler) GetCar(c *gin.Context) {
	carID, ok := parseID(c, "id", "car")
	if !ok {
		return
	}

	var viewer *Actor
	if actor, ok := actorFrom(c); ok {
		viewer = &actor
	}

	car, err := h.service.GetCar(c.Request.Context(), carID, viewer)
	if err != nil {
		common.HandleServiceError(c, err, "failed to get listing")
		return
	}

	common.SuccessResponse(c, car)
}

// ListBrands lists brands
// GET /api/v1/brands
func (h *Handler) ListBrands(c *gin.Context) {
	brands, err := h.service.ListBrands(c.Request.Context())
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to list brands")
		return
	}
	common.SuccessResponse(c, brands)
}

// ListModels lists a brand's models
// GET /api/v1/brands/:id/models
func (h *Handler) ListModels(c *gin.Context) {
	brandID, ok := parseID(c, "id", "brand")
	if !ok {
		return
	}

	models, err := h.service.ListModels(c.Request.Context(), brandID)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to list models")
		return
	}
	common.SuccessResponse(c, models)
}

// ListCategories lists categories
// GET /api/v1/categories
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.service.ListCategories(c.Request.Context())
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to list categories")
		return
	}
	common.SuccessResponse(c, categories)
}

// ListCities lists cities
// GET /api/v1/cities
func (h *Handler) ListCities(c *gin.Context) {
	cities, err := h.service.ListCities(c.Request.Context())
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to list cities")
		return
	}
	common.SuccessResponse(c, cities)
}

// ========================================
// SELLER ENDPOINTS
// ========================================

// CreateCar creates a listing
// POST /api/v1/cars
func (h *Handler) CreateCar(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateCarRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	response, err := h.service.CreateCar(c.Request.Context(), actor, &req)
	if err != nil {
		common.HandleServiceError(c, err, "failed to create listing")
		return
	}

	common.CreatedResponse(c, response)
}

// UpdateCar updates a listing
// PUT /api/v1/cars/:id
func (h *Handler) UpdateCar(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	carID, ok := parseID(c, "id", "car")
	if !ok {
		return
	}

	var req UpdateCarRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	car, err := h.service.UpdateCar(c.Request.Context(), userID, carID, &req)
	if err != nil {
		common.HandleServiceError(c, err, "failed to update listing")
		return
	}

	common.SuccessResponse(c, car)
}

// DeleteCar removes a listing
// DELETE /api/v1/cars/:id
func (h *Handler) DeleteCar(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	carID, ok := parseID(c, "id", "car")
	if !ok {
		return
	}

	if err := h.service.DeleteCar(c.Request.Context(), actor, carID); err != nil {
		common.HandleServiceError(c, err, "failed to remove listing")
		return
	}

	common.SuccessResponse(c, gin.H{"message": "Listing removed"})
}

// MarkSold marks a listing as sold
// POST /api/v1/cars/:id/sold
func (h *Handler) MarkSold(c *gin.Context) {
	h.sellerAction(c, h.service.MarkSold, "failed to mark listing as sold")
}

// SubmitForReview sends a draft or rejected listing to moderation
// POST /api/v1/cars/:id/submit
func (h *Handler) SubmitForReview(c *gin.Context) {
	h.sellerAction(c, h.service.SubmitForReview, "failed to submit listing")
}

// BoostCar features a listing
// POST /api/v1/cars/:id/boost
func (h *Handler) BoostCar(c *gin.Context) {
	h.sellerAction(c, h.service.BoostCar, "failed to boost listing")
}

func (h *Handler) sellerAction(c *gin.Context, action func(ctx context.Context, sellerID, carID uuid.UUID) (*Car, error), fallback string) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	carID, ok := parseID(c, "id", "car")
	if !ok {
		return
	}

	car, err := action(c.Request.Context(), userID, carID)
	if err != nil {
		common.HandleServiceError(c, err, fallback)
		return
	}

	common.SuccessResponse(c, car)
}

// ListMyCars lists the caller's listings
// GET /api/v1/me/cars?status=
func (h *Handler) ListMyCars(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var status *Status
	if v := c.Query("status"); v != "" {
		s := Status(v)
		if !s.IsValid() {
			common.ErrorResponse(c, http.StatusBadRequest, "invalid status")
			return
		}
		status = &s
	}

	params := pagination.ParseParams(c)
	cars, total, err := h.service.ListSellerCars(c.Request.Context(), userID, status, params.Limit, params.Offset)
	if err != nil {
		common.HandleServiceError(c, err, "failed to list listings")
		return
	}

	common.SuccessResponseWithMeta(c, cars, pagination.BuildMeta(params.Limit, params.Offset, total))
}

// ========================================
// IMAGE ENDPOINTS
// ========================================

// RequestImageUpload returns a presigned upload URL
// POST /api/v1/cars/:id/images/upload-url
func (h *Handler) RequestImageUpload(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	carID, ok := parseID(c, "id", "car")
	if !ok {
		return
	}

	var req ImageUploadRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	response, err := h.service.RequestImageUpload(c.Request.Context(), userID, carID, &req)
	if err != nil {
		common.HandleServiceError(c, err, "failed to create upload url")
		return
	}

	common.SuccessResponse(c, response)
}

// ConfirmImage records an uploaded photo
// POST /api/v1/cars/:id/images
func (h *Handler) ConfirmImage(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	carID, ok := parseID(c, "id", "car")
	if !ok {
		return
	}

	var req ConfirmImageRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	img, err := h.service.ConfirmImage(c.Request.Context(), userID, carID, &req)
	if err != nil {
		common.HandleServiceError(c, err, "failed to save image")
		return
	}

	common.CreatedResponse(c, img)
}

// RemoveImage deletes a photo
// DELETE /api/v1/cars/:id/images/:imageId
func (h *Handler) RemoveImage(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	carID, ok := parseID(c, "id", "car")
	if !ok {
		return
	}
	imageID, ok := parseID(c, "imageId", "image")
	if !ok {
		return
	}

	if err := h.service.RemoveImage(c.Request.Context(), userID, carID, imageID); err != nil {
		common.HandleServiceError(c, err, "failed to delete image")
		return
	}

	common.SuccessResponse(c, gin.H{"message": "Image removed"})
}

// ========================================
// FAVORITE ENDPOINTS
// ========================================

// AddFavorite saves a listing
// POST /api/v1/cars/:id/favorite
func (h *Handler) AddFavorite(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	carID, ok := parseID(c, "id", "car")
	if !ok {
		return
	}

	if err := h.service.AddFavorite(c.Request.Context(), userID, carID); err != nil {
		common.HandleServiceError(c, err, "failed to save favorite")
		return
	}

	common.SuccessResponse(c, gin.H{"message": "Saved to favorites"})
}

// RemoveFavorite unsaves a listing
// DELETE /api/v1/cars/:id/favorite
func (h *Handler) RemoveFavorite(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	carID, ok := parseID(c, "id", "car")
	if !ok {
		return
	}

	if err := h.service.RemoveFavorite(c.Request.Context(), userID, carID); err != nil {
		common.HandleServiceError(c, err, "failed to remove favorite")
		return
	}

	common.SuccessResponse(c, gin.H{"message": "Removed from favorites"})
}

// ListFavorites lists saved listings
// GET /api/v1/me/favorites
func (h *Handler) ListFavorites(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	params := pagination.ParseParams(c)
	cars, total, err := h.service.ListFavorites(c.Request.Context(), userID, params.Limit, params.Offset)
	if err != nil {
		common.HandleServiceError(c, err, "failed to list favorites")
		return
	}

	common.SuccessResponseWithMeta(c, cars, pagination.BuildMeta(params.Limit, params.Offset, total))
}

// ========================================
// ADMIN ENDPOINTS
// ========================================

// ApproveCar approves a listing
// POST /api/v1/admin/cars/:id/approve
func (h *Handler) ApproveCar(c *gin.Context) {
	adminID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	carID, ok := parseID(c, "id", "car")
	if !ok {
		return
	}

	car, err := h.service.ApproveCar(c.Request.Context(), adminID, carID)
	if err != nil {
		common.HandleServiceError(c, err, "failed to approve listing")
		return
	}

	common.SuccessResponse(c, car)
}

// RejectCar rejects a listing
// POST /api/v1/admin/cars/:id/reject
func (h *Handler) RejectCar(c *gin.Context) {
	adminID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	carID, ok := parseID(c, "id", "car")
	if !ok {
		return
	}

	var req RejectCarRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	car, err := h.service.RejectCar(c.Request.Context(), adminID, carID, req.Reason)
	if err != nil {
		common.HandleServiceError(c, err, "failed to reject listing")
		return
	}

	common.SuccessResponse(c, car)
}

// ExpireListings closes listings past their expiry date
// POST /api/v1/admin/cars/expire
func (h *Handler) ExpireListings(c *gin.Context) {
	n, err := h.service.ExpireListings(c.Request.Context())
	if err != nil {
		common.HandleServiceError(c, err, "failed to expire listings")
		return
	}

	common.SuccessResponse(c, gin.H{"expired": n})
}

// ========================================
// QUERY PARSING
// ========================================

// parseSearchFilters reads search query parameters. Values that do not
// parse are skipped rather than rejected.
func parseSearchFilters(c *gin.Context) *SearchFilters {
	f := &SearchFilters{
		BrandID:    queryUUID(c, "brand_id"),
		ModelID:    queryUUID(c, "model_id"),
		CategoryID: queryUUID(c, "category_id"),
		CityID:     queryUUID(c, "city_id"),
		MinPrice:   queryFloat(c, "min_price"),
		MaxPrice:   queryFloat(c, "max_price"),
		MinYear:    queryInt(c, "min_year"),
		MaxYear:    queryInt(c, "max_year"),
		MinMileage: queryInt(c, "min_mileage"),
		MaxMileage: queryInt(c, "max_mileage"),
		Latitude:   queryFloat(c, "lat"),
		Longitude:  queryFloat(c, "lng"),
		RadiusKm:   queryFloat(c, "radius_km"),

		Negotiable:         queryBool(c, "negotiable"),
		FinancingAvailable: queryBool(c, "financing_available"),
		TradeInAccepted:    queryBool(c, "trade_in_accepted"),

		SortBy:   SortKey(c.Query("sort_by")),
		SortDesc: !strings.EqualFold(c.Query("sort_order"), "asc"),
	}

	if q := strings.TrimSpace(c.Query("q")); q != "" {
		f.Query = &q
	}
	if v := c.Query("fuel_type"); v != "" {
		ft := FuelType(v)
		f.FuelType = &ft
	}
	if v := c.Query("transmission"); v != "" {
		t := Transmission(v)
		f.Transmission = &t
	}
	if v := c.Query("condition"); v != "" {
		cond := Condition(v)
		f.Condition = &cond
	}
	if featured := queryBool(c, "featured"); featured != nil {
		f.FeaturedOnly = *featured
	}
	if page := queryInt(c, "page"); page != nil {
		f.Page = *page
	}
	if size := queryInt(c, "page_size"); size != nil {
		f.PageSize = *size
	}
	return f
}

func queryUUID(c *gin.Context, key string) *uuid.UUID {
	id, err := uuid.Parse(c.Query(key))
	if err != nil {
		return nil
	}
	return &id
}

func queryFloat(c *gin.Context, key string) *float64 {
	v, err := strconv.ParseFloat(c.Query(key), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func queryInt(c *gin.Context, key string) *int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return nil
	}
	return &v
}

func queryBool(c *gin.Context, key string) *bool {
	v, err := strconv.ParseBool(c.Query(key))
	if err != nil {
		return nil
	}
	return &v
}
