package cars

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/carmarket/internal/fraud"
	"github.com/richxcame/carmarket/internal/geo"
	"github.com/richxcame/carmarket/pkg/common"
	"github.com/richxcame/carmarket/pkg/config"
	"github.com/richxcame/carmarket/pkg/eventbus"
	"github.com/richxcame/carmarket/pkg/logger"
	"github.com/richxcame/carmarket/pkg/metrics"
	"github.com/richxcame/carmarket/pkg/models"
	redisClient "github.com/richxcame/carmarket/pkg/redis"
	"github.com/richxcame/carmarket/pkg/storage"
	"github.com/richxcame/carmarket/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Service handles listing business logic
type Service struct {
	repo         RepositoryInterface
	fraud        FraudChecker
	plans        PlanLimiter
	notifier     Notifier
	publisher    eventbus.Publisher
	store        storage.Storage
	uploadExpiry time.Duration
	cache        *carCache
	cfg          config.SearchConfig
	now          func() time.Time
}

// NewService creates a new listing service
func NewService(repo RepositoryInterface, fraudChecker FraudChecker, plans PlanLimiter, notifier Notifier, publisher eventbus.Publisher, cfg config.SearchConfig) *Service {
	return &Service{
		repo:      repo,
		fraud:     fraudChecker,
		plans:     plans,
		notifier:  notifier,
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
	}
}

// SetStorage enables photo uploads
func (s *Service) SetStorage(store storage.Storage, uploadExpiry time.Duration) {
	s.store = store
	s.uploadExpiry = uploadExpiry
}

// SetCache enables the listing detail cache
func (s *Service) SetCache(client *redisClient.Client, ttl time.Duration) {
	s.cache = newCarCache(client, ttl)
}

// ========================================
// LISTINGS
// ========================================

// CreateCar creates a listing for moderation, or a draft
func (s *Service) CreateCar(ctx context.Context, actor Actor, req *CreateCarRequest) (*CreateCarResponse, error) {
	if !actor.Role.CanSell() {
		return nil, common.NewForbiddenError("only sellers and dealers can create listings")
	}

	if err := s.checkModel(ctx, req.BrandID, req.ModelID); err != nil {
		return nil, err
	}
	if err := s.checkListingLimit(ctx, actor); err != nil {
		return nil, err
	}

	now := s.now()
	car := &Car{
		ID:                 uuid.New(),
		SellerID:           actor.UserID,
		BrandID:            req.BrandID,
		ModelID:            req.ModelID,
		CategoryID:         req.CategoryID,
		CityID:             req.CityID,
		Title:              strings.TrimSpace(req.Title),
		Description:        strings.TrimSpace(req.Description),
		Year:               req.Year,
		Price:              req.Price,
		Negotiable:         req.Negotiable == nil || *req.Negotiable,
		Mileage:            req.Mileage,
		Condition:          req.Condition,
		ConditionRating:    req.ConditionRating,
		FuelType:           req.FuelType,
		Transmission:       req.Transmission,
		BodyType:           req.BodyType,
		Drivetrain:         req.Drivetrain,
		EngineSize:         req.EngineSize,
		Horsepower:         req.Horsepower,
		ExteriorColor:      req.ExteriorColor,
		InteriorColor:      req.InteriorColor,
		VIN:                normalizeVIN(req.VIN),
		PlateNumber:        req.PlateNumber,
		NumberOfOwners:     req.NumberOfOwners,
		AccidentHistory:    req.AccidentHistory,
		FloodDamage:        req.FloodDamage,
		ServiceRecords:     req.ServiceRecords,
		RegistrationPapers: req.RegistrationPapers,
		Warranty:           req.Warranty,
		FinancingAvailable: req.FinancingAvailable,
		TradeInAccepted:    req.TradeInAccepted,
		Features:           cleanFeatures(req.Features),
		Latitude:           req.Latitude,
		Longitude:          req.Longitude,
		Status:             StatusPending,
		ApprovalStatus:     ApprovalPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if req.SaveAsDraft {
		car.Status = StatusDraft
	}
	if err := s.locate(ctx, car); err != nil {
		return nil, err
	}
	ApplyScores(car, now)

	if err := s.repo.CreateCar(ctx, car); err != nil {
		return nil, common.NewInternalError("failed to create listing", err)
	}
	metrics.ListingsCreated.WithLabelValues(string(car.Status)).Inc()

	logger.WithContext(ctx).Info("Listing created",
		zap.String("car_id", car.ID.String()),
		zap.String("seller_id", actor.UserID.String()),
		zap.String("status", string(car.Status)),
		zap.Int("completeness", car.CompletenessScore),
	)

	flags := s.fraud.CheckListing(ctx, submissionFor(car, false))
	eventbus.PublishBestEffort(ctx, s.publisher, eventbus.SubjectCarCreated, car)

	return &CreateCarResponse{Car: car, FraudFlags: flags}, nil
}

// UpdateCar applies a partial update and recomputes every score
func (s *Service) UpdateCar(ctx context.Context, sellerID, carID uuid.UUID, req *UpdateCarRequest) (*Car, error) {
	car, err := s.ownedCar(ctx, sellerID, carID)
	if err != nil {
		return nil, err
	}
	if car.Status == StatusSold || car.Status == StatusRemoved {
		return nil, common.NewBadRequestError("sold or removed listings cannot be edited", nil)
	}

	oldPrice := car.Price
	oldVIN := derefString(car.VIN)
	relocate := applyUpdate(car, req)

	if relocate {
		if err := s.locate(ctx, car); err != nil {
			return nil, err
		}
	}

	now := s.now()
	car.UpdatedAt = now
	ApplyScores(car, now)

	if err := s.repo.UpdateCar(ctx, car); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, common.NewNotFoundError("listing not found", err)
		}
		return nil, common.NewInternalError("failed to update listing", err)
	}
	s.cache.invalidate(ctx, car.ID)

	if car.Price != oldPrice || derefString(car.VIN) != oldVIN {
		s.fraud.CheckListing(ctx, submissionFor(car, true))
	}
	return car, nil
}

// GetCar returns a listing. Listings that are not public are only visible
// to their seller and to staff. Other viewers count as a view.
func (s *Service) GetCar(ctx context.Context, carID uuid.UUID, viewer *Actor) (*Car, error) {
	car, cached := s.cache.get(ctx, carID)
	if !cached {
		var err error
		car, err = s.repo.GetCar(ctx, carID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, common.NewNotFoundError("listing not found", err)
			}
			return nil, common.NewInternalError("failed to get listing", err)
		}
	}

	now := s.now()
	if !car.IsPublic(now) {
		if viewer == nil || !viewer.CanManage(car) {
			return nil, common.NewNotFoundError("listing not found", nil)
		}
		return car, nil
	}

	if !cached {
		s.cache.set(ctx, car)
	}
	if viewer == nil || !viewer.Owns(car) {
		if err := s.repo.IncrementViews(ctx, car.ID); err != nil {
			logger.WithContext(ctx).Warn("Failed to count listing view", zap.String("car_id", car.ID.String()), zap.Error(err))
		}
	}
	return car, nil
}

// DeleteCar removes a listing from the marketplace. The row is kept.
func (s *Service) DeleteCar(ctx context.Context, actor Actor, carID uuid.UUID) error {
	car, err := s.loadCar(ctx, carID)
	if err != nil {
		return err
	}
	if !actor.CanManage(car) {
		return common.NewForbiddenError("not authorized to remove this listing")
	}
	if car.Status == StatusRemoved {
		return nil
	}

	if err := s.repo.UpdateStatus(ctx, carID, StatusRemoved, s.now()); err != nil {
		return common.NewInternalError("failed to remove listing", err)
	}
	s.cache.invalidate(ctx, carID)
	return nil
}

// MarkSold closes an active listing as sold
func (s *Service) MarkSold(ctx context.Context, sellerID, carID uuid.UUID) (*Car, error) {
	car, err := s.ownedCar(ctx, sellerID, carID)
	if err != nil {
		return nil, err
	}
	if car.Status != StatusActive {
		return nil, common.NewBadRequestError("only active listings can be marked as sold", nil)
	}

	now := s.now()
	if err := s.repo.UpdateStatus(ctx, carID, StatusSold, now); err != nil {
		return nil, common.NewInternalError("failed to mark listing as sold", err)
	}
	car.Status = StatusSold
	car.SoldAt = &now
	s.cache.invalidate(ctx, carID)

	eventbus.PublishBestEffort(ctx, s.publisher, eventbus.SubjectCarSold, car)
	return car, nil
}

// SubmitForReview sends a draft or a rejected listing to moderation
func (s *Service) SubmitForReview(ctx context.Context, sellerID, carID uuid.UUID) (*Car, error) {
	car, err := s.ownedCar(ctx, sellerID, carID)
	if err != nil {
		return nil, err
	}
	if car.Status != StatusDraft && car.ApprovalStatus != ApprovalRejected {
		return nil, common.NewBadRequestError("only drafts and rejected listings can be submitted", nil)
	}

	car.Status = StatusPending
	car.ApprovalStatus = ApprovalPending
	car.RejectionReason = nil
	car.UpdatedAt = s.now()
	if err := s.repo.SetApproval(ctx, car); err != nil {
		return nil, common.NewInternalError("failed to submit listing", err)
	}
	s.cache.invalidate(ctx, carID)
	return car, nil
}

// ListSellerCars lists a seller's own listings
func (s *Service) ListSellerCars(ctx context.Context, sellerID uuid.UUID, status *Status, limit, offset int) ([]*Car, int64, error) {
	cars, total, err := s.repo.ListSellerCars(ctx, sellerID, status, limit, offset)
	if err != nil {
		return nil, 0, common.NewInternalError("failed to list listings", err)
	}
	if cars == nil {
		cars = []*Car{}
	}
	return cars, total, nil
}

// ========================================
// SEARCH
// ========================================

// Search returns one page of public listings matching every filter
func (s *Service) Search(ctx context.Context, filters *SearchFilters) (*SearchResult, error) {
	filters.Normalize(s.cfg)

	mode := "standard"
	if filters.IsGeo() {
		mode = "geo"
	}
	ctx, span := tracing.StartSpan(ctx, "cars.search", attribute.String("mode", mode))
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.SearchDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	}()
	metrics.CarSearches.WithLabelValues(mode).Inc()

	now := s.now()
	if !filters.IsGeo() {
		cars, total, err := s.repo.SearchCars(ctx, filters, now)
		if err != nil {
			tracing.RecordError(span, err)
			return nil, common.NewInternalError("failed to search listings", err)
		}
		span.SetAttributes(attribute.Int64("total", total))
		return newSearchResult(cars, total, filters), nil
	}

	box := geo.BoundingBox(*filters.Latitude, *filters.Longitude, *filters.RadiusKm)
	candidates, err := s.repo.SearchCandidates(ctx, filters, box, now, s.cfg.MaxGeoCandidates)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, common.NewInternalError("failed to search listings", err)
	}
	if len(candidates) >= s.cfg.MaxGeoCandidates {
		logger.WithContext(ctx).Debug("Geo search hit the candidate cap", zap.Int("cap", s.cfg.MaxGeoCandidates))
	}

	within := filterByRadius(candidates, filters)
	span.SetAttributes(attribute.Int("candidates", len(candidates)), attribute.Int("total", len(within)))
	return newSearchResult(pageOf(within, filters), int64(len(within)), filters), nil
}

// ========================================
// MODERATION
// ========================================

// ApproveCar publishes a pending listing for ListingLifetime
func (s *Service) ApproveCar(ctx context.Context, adminID, carID uuid.UUID) (*Car, error) {
	car, err := s.loadCar(ctx, carID)
	if err != nil {
		return nil, err
	}
	if car.ApprovalStatus == ApprovalApproved {
		return nil, common.NewConflictError("listing is already approved")
	}
	if car.Status != StatusPending {
		return nil, common.NewBadRequestError("only pending listings can be approved", nil)
	}

	now := s.now()
	expires := now.Add(ListingLifetime)
	car.ApprovalStatus = ApprovalApproved
	car.Status = StatusActive
	car.RejectionReason = nil
	car.PublishedAt = &now
	car.ExpiresAt = &expires
	car.UpdatedAt = now

	if err := s.repo.SetApproval(ctx, car); err != nil {
		return nil, common.NewInternalError("failed to approve listing", err)
	}
	s.cache.invalidate(ctx, carID)

	logger.WithContext(ctx).Info("Listing approved",
		zap.String("car_id", carID.String()),
		zap.String("admin_id", adminID.String()),
	)
	s.notifier.Notify(ctx, car.SellerID, "Listing approved",
		fmt.Sprintf("Your listing %q is now live until %s.", car.Title, expires.Format("Jan 2, 2006")))
	eventbus.PublishBestEffort(ctx, s.publisher, eventbus.SubjectCarApproved, car)
	return car, nil
}

// RejectCar rejects a listing and takes it off the marketplace
func (s *Service) RejectCar(ctx context.Context, adminID, carID uuid.UUID, reason string) (*Car, error) {
	car, err := s.loadCar(ctx, carID)
	if err != nil {
		return nil, err
	}
	if car.Status != StatusPending && car.Status != StatusActive {
		return nil, common.NewBadRequestError("only pending or active listings can be rejected", nil)
	}

	reason = strings.TrimSpace(reason)
	car.ApprovalStatus = ApprovalRejected
	car.Status = StatusPending
	car.RejectionReason = &reason
	car.UpdatedAt = s.now()

	if err := s.repo.SetApproval(ctx, car); err != nil {
		return nil, common.NewInternalError("failed to reject listing", err)
	}
	s.cache.invalidate(ctx, carID)

	logger.WithContext(ctx).Info("Listing rejected",
		zap.String("car_id", carID.String()),
		zap.String("admin_id", adminID.String()),
	)
	s.notifier.Notify(ctx, car.SellerID, "Listing rejected",
		fmt.Sprintf("Your listing %q was not approved: %s", car.Title, reason))
	eventbus.PublishBestEffort(ctx, s.publisher, eventbus.SubjectCarRejected, car)
	return car, nil
}

// ExpireListings closes every listing past its expiry date
func (s *Service) ExpireListings(ctx context.Context) (int64, error) {
	n, err := s.repo.ExpireListings(ctx, s.now())
	if err != nil {
		return 0, common.NewInternalError("failed to expire listings", err)
	}
	if n > 0 {
		logger.WithContext(ctx).Info("Expired listings", zap.Int64("count", n))
	}
	return n, nil
}

// ========================================
// BOOSTS
// ========================================

// BoostCar features an active listing for BoostDuration using one of the
// seller's plan boosts
func (s *Service) BoostCar(ctx context.Context, sellerID, carID uuid.UUID) (*Car, error) {
	car, err := s.ownedCar(ctx, sellerID, carID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if !car.IsPublic(now) {
		return nil, common.NewBadRequestError("only live listings can be boosted", nil)
	}

	limits, err := s.plans.Limits(ctx, sellerID)
	if err != nil {
		return nil, common.NewInternalError("failed to load plan limits", err)
	}
	if !car.FeaturedAt(now) {
		featured, err := s.repo.CountFeatured(ctx, sellerID, now)
		if err != nil {
			return nil, common.NewInternalError("failed to count featured listings", err)
		}
		if featured >= limits.MaxFeaturedListings {
			return nil, common.NewForbiddenError("featured listing limit reached for your plan")
		}
	}

	if limits.SubscriptionID == nil || limits.BoostsRemaining() == 0 {
		return nil, common.NewForbiddenError("no boosts remaining on your plan")
	}

	wasFeatured, prevUntil, prevRanking := car.IsFeatured, car.FeaturedUntil, car.RankingScore

	until := now.Add(BoostDuration)
	car.IsFeatured = true
	car.FeaturedUntil = &until
	car.BoostCount++
	car.RankingScore = CalculateRanking(car, now)

	// feature first so a failed write never costs the seller a boost
	if err := s.repo.SetFeatured(ctx, carID, until, car.RankingScore); err != nil {
		return nil, common.NewInternalError("failed to boost listing", err)
	}
	s.cache.invalidate(ctx, carID)

	if err := s.plans.ConsumeBoost(ctx, sellerID); err != nil {
		if rerr := s.repo.RestoreFeatured(ctx, carID, wasFeatured, prevUntil, prevRanking); rerr != nil {
			logger.WithContext(ctx).Error("Failed to undo boost",
				zap.String("car_id", carID.String()),
				zap.Error(rerr),
			)
		}
		s.cache.invalidate(ctx, carID)
		return nil, err
	}
	return car, nil
}

// ========================================
// FAVORITES
// ========================================

// AddFavorite saves a public listing for the user. Saving twice is a no-op.
func (s *Service) AddFavorite(ctx context.Context, userID, carID uuid.UUID) error {
	car, err := s.loadCar(ctx, carID)
	if err != nil {
		return err
	}
	if !car.IsPublic(s.now()) {
		return common.NewNotFoundError("listing not found", nil)
	}

	added, err := s.repo.AddFavorite(ctx, userID, carID)
	if err != nil {
		return common.NewInternalError("failed to save favorite", err)
	}
	if added {
		s.cache.invalidate(ctx, carID)
	}
	return nil
}

// RemoveFavorite unsaves a listing
func (s *Service) RemoveFavorite(ctx context.Context, userID, carID uuid.UUID) error {
	removed, err := s.repo.RemoveFavorite(ctx, userID, carID)
	if err != nil {
		return common.NewInternalError("failed to remove favorite", err)
	}
	if !removed {
		return common.NewNotFoundError("favorite not found", nil)
	}
	s.cache.invalidate(ctx, carID)
	return nil
}

// ListFavorites lists the user's saved listings
func (s *Service) ListFavorites(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Car, int64, error) {
	cars, total, err := s.repo.ListFavorites(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, common.NewInternalError("failed to list favorites", err)
	}
	if cars == nil {
		cars = []*Car{}
	}
	return cars, total, nil
}

// ========================================
// IMAGES
// ========================================

// RequestImageUpload issues a presigned URL for uploading one listing photo
func (s *Service) RequestImageUpload(ctx context.Context, sellerID, carID uuid.UUID, req *ImageUploadRequest) (*ImageUploadResponse, error) {
	if s.store == nil {
		return nil, common.NewServiceUnavailableError("image uploads are disabled")
	}
	if !storage.ValidateMimeType(req.ContentType, storage.DefaultAllowedImageTypes) {
		return nil, common.NewBadRequestError("unsupported image type", nil)
	}

	car, err := s.ownedCar(ctx, sellerID, carID)
	if err != nil {
		return nil, err
	}
	if err := s.checkImageLimit(ctx, car); err != nil {
		return nil, err
	}

	key := storage.GenerateCarImageKey(carID, req.Filename)
	presigned, err := s.store.GetPresignedUploadURL(ctx, key, req.ContentType, s.uploadExpiry)
	if err != nil {
		return nil, common.NewInternalError("failed to create upload url", err)
	}

	return &ImageUploadResponse{
		Key:       key,
		UploadURL: presigned.URL,
		Method:    presigned.Method,
		Headers:   presigned.Headers,
		ExpiresAt: presigned.ExpiresAt,
	}, nil
}

// ConfirmImage records a photo the client has uploaded
func (s *Service) ConfirmImage(ctx context.Context, sellerID, carID uuid.UUID, req *ConfirmImageRequest) (*CarImage, error) {
	if s.store == nil {
		return nil, common.NewServiceUnavailableError("image uploads are disabled")
	}
	if !storage.KeyBelongsToCar(carID, req.Key) {
		return nil, common.NewBadRequestError("image key does not belong to this listing", nil)
	}

	car, err := s.ownedCar(ctx, sellerID, carID)
	if err != nil {
		return nil, err
	}
	if err := s.checkImageLimit(ctx, car); err != nil {
		return nil, err
	}

	exists, err := s.store.Exists(ctx, req.Key)
	if err != nil {
		return nil, common.NewInternalError("failed to verify upload", err)
	}
	if !exists {
		return nil, common.NewBadRequestError("image has not been uploaded", nil)
	}

	img := &CarImage{
		ID:         uuid.New(),
		CarID:      carID,
		StorageKey: req.Key,
		URL:        s.store.GetURL(req.Key),
		IsPrimary:  req.IsPrimary || car.ImagesCount == 0,
		CreatedAt:  s.now(),
	}
	count, err := s.repo.AddImage(ctx, img)
	if err != nil {
		return nil, common.NewInternalError("failed to save image", err)
	}

	car.ImagesCount = count
	s.rescore(ctx, car)
	return img, nil
}

// RemoveImage deletes a listing photo
func (s *Service) RemoveImage(ctx context.Context, sellerID, carID, imageID uuid.UUID) error {
	car, err := s.ownedCar(ctx, sellerID, carID)
	if err != nil {
		return err
	}

	img, count, err := s.repo.DeleteImage(ctx, carID, imageID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return common.NewNotFoundError("image not found", err)
		}
		return common.NewInternalError("failed to delete image", err)
	}

	if s.store != nil {
		if err := s.store.Delete(ctx, img.StorageKey); err != nil {
			logger.WithContext(ctx).Warn("Failed to delete image object", zap.String("key", img.StorageKey), zap.Error(err))
		}
	}

	car.ImagesCount = count
	s.rescore(ctx, car)
	return nil
}

// ========================================
// REFERENCE DATA
// ========================================

// ListBrands lists car brands
func (s *Service) ListBrands(ctx context.Context) ([]*Brand, error) {
	return s.repo.ListBrands(ctx)
}

// ListModels lists a brand's models
func (s *Service) ListModels(ctx context.Context, brandID uuid.UUID) ([]*CarModel, error) {
	return s.repo.ListModels(ctx, brandID)
}

// ListCategories lists listing categories
func (s *Service) ListCategories(ctx context.Context) ([]*Category, error) {
	return s.repo.ListCategories(ctx)
}

// ListCities lists cities
func (s *Service) ListCities(ctx context.Context) ([]*City, error) {
	return s.repo.ListCities(ctx)
}

// ========================================
// HELPERS
// ========================================

func (s *Service) loadCar(ctx context.Context, carID uuid.UUID) (*Car, error) {
	car, err := s.repo.GetCar(ctx, carID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, common.NewNotFoundError("listing not found", err)
		}
		return nil, common.NewInternalError("failed to get listing", err)
	}
	return car, nil
}

func (s *Service) ownedCar(ctx context.Context, sellerID, carID uuid.UUID) (*Car, error) {
	car, err := s.loadCar(ctx, carID)
	if err != nil {
		return nil, err
	}
	if car.SellerID != sellerID {
		return nil, common.NewForbiddenError("not authorized to modify this listing")
	}
	return car, nil
}

func (s *Service) checkModel(ctx context.Context, brandID, modelID uuid.UUID) error {
	model, err := s.repo.GetModel(ctx, modelID)
	if errors.Is(err, ErrNotFound) {
		return common.NewBadRequestError("unknown model", err)
	}
	if err != nil {
		return common.NewInternalError("failed to load model", err)
	}
	if model.BrandID != brandID {
		return common.NewBadRequestError("model does not belong to brand", nil)
	}
	return nil
}

func (s *Service) checkListingLimit(ctx context.Context, actor Actor) error {
	if actor.Role == models.RoleAdmin {
		return nil
	}
	limits, err := s.plans.Limits(ctx, actor.UserID)
	if err != nil {
		return common.NewInternalError("failed to load plan limits", err)
	}
	open, err := s.repo.CountOpenListings(ctx, actor.UserID)
	if err != nil {
		return common.NewInternalError("failed to count listings", err)
	}
	if open >= limits.MaxListings {
		return common.NewForbiddenError(fmt.Sprintf("your %s plan allows %d listings", limits.PlanSlug, limits.MaxListings))
	}
	return nil
}

func (s *Service) checkImageLimit(ctx context.Context, car *Car) error {
	limits, err := s.plans.Limits(ctx, car.SellerID)
	if err != nil {
		return common.NewInternalError("failed to load plan limits", err)
	}
	if car.ImagesCount >= limits.MaxImagesPerListing {
		return common.NewForbiddenError(fmt.Sprintf("your %s plan allows %d photos per listing", limits.PlanSlug, limits.MaxImagesPerListing))
	}
	return nil
}

// locate fills in coordinates from the listing's city when none were given
func (s *Service) locate(ctx context.Context, car *Car) error {
	if car.Latitude != nil && car.Longitude != nil {
		return nil
	}
	car.Latitude, car.Longitude = nil, nil
	if car.CityID == nil {
		return nil
	}

	city, err := s.repo.GetCity(ctx, *car.CityID)
	if errors.Is(err, ErrNotFound) {
		return common.NewBadRequestError("unknown city", err)
	}
	if err != nil {
		return common.NewInternalError("failed to load city", err)
	}
	lat, lon := city.Latitude, city.Longitude
	car.Latitude, car.Longitude = &lat, &lon
	return nil
}

// rescore recomputes and stores scores after an image change
func (s *Service) rescore(ctx context.Context, car *Car) {
	ApplyScores(car, s.now())
	if err := s.repo.UpdateScores(ctx, car); err != nil {
		logger.WithContext(ctx).Warn("Failed to update listing scores", zap.String("car_id", car.ID.String()), zap.Error(err))
	}
	s.cache.invalidate(ctx, car.ID)
}

func submissionFor(car *Car, isUpdate bool) fraud.ListingSubmission {
	return fraud.ListingSubmission{
		CarID:    car.ID,
		SellerID: car.SellerID,
		BrandID:  car.BrandID,
		ModelID:  car.ModelID,
		Year:     car.Year,
		Price:    car.Price,
		VIN:      car.VIN,
		IsUpdate: isUpdate,
	}
}

// applyUpdate copies the set fields of req onto car and reports whether the
// location changed
func applyUpdate(car *Car, req *UpdateCarRequest) bool {
	relocate := false
	if req.CategoryID != nil {
		car.CategoryID = req.CategoryID
	}
	if req.CityID != nil {
		car.CityID = req.CityID
		relocate = true
	}
	if req.Title != nil {
		car.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		car.Description = strings.TrimSpace(*req.Description)
	}
	if req.Year != nil {
		car.Year = *req.Year
	}
	if req.Price != nil {
		car.Price = *req.Price
	}
	if req.Negotiable != nil {
		car.Negotiable = *req.Negotiable
	}
	if req.Mileage != nil {
		car.Mileage = *req.Mileage
	}
	if req.Condition != nil {
		car.Condition = *req.Condition
	}
	if req.ConditionRating != nil {
		car.ConditionRating = req.ConditionRating
	}
	if req.FuelType != nil {
		car.FuelType = *req.FuelType
	}
	if req.Transmission != nil {
		car.Transmission = *req.Transmission
	}
	if req.BodyType != nil {
		car.BodyType = req.BodyType
	}
	if req.Drivetrain != nil {
		car.Drivetrain = req.Drivetrain
	}
	if req.EngineSize != nil {
		car.EngineSize = req.EngineSize
	}
	if req.Horsepower != nil {
		car.Horsepower = req.Horsepower
	}
	if req.ExteriorColor != nil {
		car.ExteriorColor = req.ExteriorColor
	}
	if req.InteriorColor != nil {
		car.InteriorColor = req.InteriorColor
	}
	if req.VIN != nil {
		car.VIN = normalizeVIN(req.VIN)
	}
	if req.PlateNumber != nil {
		car.PlateNumber = req.PlateNumber
	}
	if req.NumberOfOwners != nil {
		car.NumberOfOwners = req.NumberOfOwners
	}
	if req.AccidentHistory != nil {
		car.AccidentHistory = req.AccidentHistory
	}
	if req.FloodDamage != nil {
		car.FloodDamage = *req.FloodDamage
	}
	if req.ServiceRecords != nil {
		car.ServiceRecords = *req.ServiceRecords
	}
	if req.RegistrationPapers != nil {
		car.RegistrationPapers = *req.RegistrationPapers
	}
	if req.Warranty != nil {
		car.Warranty = *req.Warranty
	}
	if req.FinancingAvailable != nil {
		car.FinancingAvailable = *req.FinancingAvailable
	}
	if req.TradeInAccepted != nil {
		car.TradeInAccepted = *req.TradeInAccepted
	}
	if req.Features != nil {
		car.Features = cleanFeatures(req.Features)
	}
	if req.Latitude != nil && req.Longitude != nil {
		car.Latitude, car.Longitude = req.Latitude, req.Longitude
	} else if relocate {
		car.Latitude, car.Longitude = nil, nil
	}
	return relocate
}

func normalizeVIN(vin *string) *string {
	if vin == nil {
		return nil
	}
	v := strings.ToUpper(strings.TrimSpace(*vin))
	if v == "" {
		return nil
	}
	return &v
}

// cleanFeatures trims features and drops blanks and duplicates
func cleanFeatures(features []string) []string {
	out := make([]string, 0, len(features))
	seen := make(map[string]struct{}, len(features))
	for _, f := range features {
		f = strings.TrimSpace(f)
		key := strings.ToLower(f)
		if f == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, f)
	}
	return out
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
