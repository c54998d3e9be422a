package cars

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/carmarket/pkg/models"
)

// ErrNotFound is returned by the repository when a row does not exist
var ErrNotFound = errors.New("cars: not found")

const (
	// ListingLifetime is how long an approved listing stays public
	ListingLifetime = 60 * 24 * time.Hour
	// BoostDuration is how long a boost keeps a listing featured
	BoostDuration = 7 * 24 * time.Hour
	// MaxRadiusKm bounds geographic searches
	MaxRadiusKm = 500.0
)

// Status is the lifecycle state of a listing
type Status string

const (
	StatusDraft   Status = "draft"
	StatusPending Status = "pending"
	StatusActive  Status = "active"
	StatusSold    Status = "sold"
	StatusExpired Status = "expired"
	StatusRemoved Status = "removed"
)

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusActive, StatusSold, StatusExpired, StatusRemoved:
		return true
	}
	return false
}

// Open reports whether the listing still counts against the seller's plan
func (s Status) Open() bool {
	return s == StatusDraft || s == StatusPending || s == StatusActive
}

// ApprovalStatus is the moderation state of a listing
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Condition describes whether the car is new or used
type Condition string

const (
	ConditionNew       Condition = "new"
	ConditionUsed      Condition = "used"
	ConditionCertified Condition = "certified_pre_owned"
)

// IsValid reports whether c is a known condition
func (c Condition) IsValid() bool {
	return c == ConditionNew || c == ConditionUsed || c == ConditionCertified
}

// ConditionRating is the seller-declared condition grade
type ConditionRating string

const (
	RatingExcellent ConditionRating = "excellent"
	RatingVeryGood  ConditionRating = "very_good"
	RatingGood      ConditionRating = "good"
	RatingFair      ConditionRating = "fair"
	RatingPoor      ConditionRating = "poor"
)

// FuelType of the engine
type FuelType string

const (
	FuelGasoline FuelType = "gasoline"
	FuelDiesel   FuelType = "diesel"
	FuelHybrid   FuelType = "hybrid"
	FuelElectric FuelType = "electric"
	FuelLPG      FuelType = "lpg"
)

// IsValid reports whether f is a known fuel type
func (f FuelType) IsValid() bool {
	switch f {
	case FuelGasoline, FuelDiesel, FuelHybrid, FuelElectric, FuelLPG:
		return true
	}
	return false
}

// Transmission type
type Transmission string

const (
	TransmissionManual    Transmission = "manual"
	TransmissionAutomatic Transmission = "automatic"
	TransmissionCVT       Transmission = "cvt"
	TransmissionDCT       Transmission = "dct"
)

// IsValid reports whether t is a known transmission
func (t Transmission) IsValid() bool {
	switch t {
	case TransmissionManual, TransmissionAutomatic, TransmissionCVT, TransmissionDCT:
		return true
	}
	return false
}

// Car is a listing
type Car struct {
	ID         uuid.UUID  `json:"id"`
	SellerID   uuid.UUID  `json:"seller_id"`
	BrandID    uuid.UUID  `json:"brand_id"`
	BrandName  string     `json:"brand_name"`
	ModelID    uuid.UUID  `json:"model_id"`
	ModelName  string     `json:"model_name"`
	CategoryID *uuid.UUID `json:"category_id,omitempty"`
	CityID     *uuid.UUID `json:"city_id,omitempty"`
	CityName   *string    `json:"city_name,omitempty"`

	Title       string  `json:"title"`
	Description string  `json:"description"`
	Year        int     `json:"year"`
	Price       float64 `json:"price"`
	Negotiable  bool    `json:"negotiable"`
	Mileage     int     `json:"mileage"`

	Condition       Condition        `json:"condition"`
	ConditionRating *ConditionRating `json:"condition_rating,omitempty"`
	FuelType        FuelType         `json:"fuel_type"`
	Transmission    Transmission     `json:"transmission"`
	BodyType        *string          `json:"body_type,omitempty"`
	Drivetrain      *string          `json:"drivetrain,omitempty"`
	EngineSize      *float64         `json:"engine_size,omitempty"`
	Horsepower      *int             `json:"horsepower,omitempty"`
	ExteriorColor   *string          `json:"exterior_color,omitempty"`
	InteriorColor   *string          `json:"interior_color,omitempty"`
	VIN             *string          `json:"vin,omitempty"`
	PlateNumber     *string          `json:"plate_number,omitempty"`

	NumberOfOwners     *int  `json:"number_of_owners,omitempty"`
	AccidentHistory    *bool `json:"accident_history,omitempty"`
	FloodDamage        bool  `json:"flood_damage"`
	ServiceRecords     bool  `json:"service_records"`
	RegistrationPapers bool  `json:"registration_papers"`
	Warranty           bool  `json:"warranty"`
	FinancingAvailable bool  `json:"financing_available"`
	TradeInAccepted    bool  `json:"trade_in_accepted"`

	Features    []string   `json:"features"`
	ImagesCount int        `json:"images_count"`
	Images      []CarImage `json:"images,omitempty"`
	Latitude    *float64   `json:"latitude,omitempty"`
	Longitude   *float64   `json:"longitude,omitempty"`
	DistanceKm  *float64   `json:"distance_km,omitempty"`

	Status          Status         `json:"status"`
	ApprovalStatus  ApprovalStatus `json:"approval_status"`
	RejectionReason *string        `json:"rejection_reason,omitempty"`
	IsFeatured      bool           `json:"is_featured"`
	FeaturedUntil   *time.Time     `json:"featured_until,omitempty"`
	BoostCount      int            `json:"boost_count"`

	CompletenessScore int     `json:"completeness_score"`
	QualityScore      int     `json:"quality_score"`
	RankingScore      float64 `json:"ranking_score"`
	ViewsCount        int     `json:"views_count"`
	FavoritesCount    int     `json:"favorites_count"`
	ContactsCount     int     `json:"contacts_count"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	SoldAt      *time.Time `json:"sold_at,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// IsPublic reports whether anyone may see the listing at now
func (c *Car) IsPublic(now time.Time) bool {
	return c.Status == StatusActive &&
		c.ApprovalStatus == ApprovalApproved &&
		(c.ExpiresAt == nil || c.ExpiresAt.After(now))
}

// FeaturedAt reports whether the boost is still running at now
func (c *Car) FeaturedAt(now time.Time) bool {
	return c.IsFeatured && (c.FeaturedUntil == nil || c.FeaturedUntil.After(now))
}

// CarImage is an uploaded listing photo
type CarImage struct {
	ID         uuid.UUID `json:"id"`
	CarID      uuid.UUID `json:"car_id"`
	StorageKey string    `json:"storage_key"`
	URL        string    `json:"url"`
	IsPrimary  bool      `json:"is_primary"`
	Position   int       `json:"position"`
	CreatedAt  time.Time `json:"created_at"`
}

// Brand is a car manufacturer
type Brand struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Country   *string   `json:"country,omitempty"`
	IsPopular bool      `json:"is_popular"`
}

// CarModel is a model line of a brand
type CarModel struct {
	ID       uuid.UUID `json:"id"`
	BrandID  uuid.UUID `json:"brand_id"`
	Name     string    `json:"name"`
	Slug     string    `json:"slug"`
	BodyType *string   `json:"body_type,omitempty"`
}

// Category groups listings (sedan, SUV, pickup...)
type Category struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// City is a Philippine city with a reference coordinate
type City struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Province  string    `json:"province"`
	Region    string    `json:"region"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
}

// ========================================
// REQUESTS / RESPONSES
// ========================================

// CreateCarRequest represents a new listing
type CreateCarRequest struct {
	BrandID     uuid.UUID  `json:"brand_id" binding:"required"`
	ModelID     uuid.UUID  `json:"model_id" binding:"required"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	CityID      *uuid.UUID `json:"city_id,omitempty"`
	Title       string     `json:"title" binding:"required,min=5,max=200"`
	Description string     `json:"description" binding:"max=5000"`
	Year        int        `json:"year" binding:"required,car_year"`
	Price       float64    `json:"price" binding:"required,gt=0"`
	Negotiable  *bool      `json:"negotiable,omitempty"`
	Mileage     int        `json:"mileage" binding:"gte=0"`

	Condition       Condition        `json:"condition" binding:"required,oneof=new used certified_pre_owned"`
	ConditionRating *ConditionRating `json:"condition_rating,omitempty" binding:"omitempty,oneof=excellent very_good good fair poor"`
	FuelType        FuelType         `json:"fuel_type" binding:"required,fuel_type"`
	Transmission    Transmission     `json:"transmission" binding:"required,transmission"`
	BodyType        *string          `json:"body_type,omitempty" binding:"omitempty,max=30"`
	Drivetrain      *string          `json:"drivetrain,omitempty" binding:"omitempty,oneof=fwd rwd awd 4wd"`
	EngineSize      *float64         `json:"engine_size,omitempty" binding:"omitempty,gt=0,lt=20"`
	Horsepower      *int             `json:"horsepower,omitempty" binding:"omitempty,gt=0"`
	ExteriorColor   *string          `json:"exterior_color,omitempty" binding:"omitempty,max=50"`
	InteriorColor   *string          `json:"interior_color,omitempty" binding:"omitempty,max=50"`
	VIN             *string          `json:"vin,omitempty" binding:"omitempty,vin"`
	PlateNumber     *string          `json:"plate_number,omitempty" binding:"omitempty,max=20"`

	NumberOfOwners     *int  `json:"number_of_owners,omitempty" binding:"omitempty,gte=0"`
	AccidentHistory    *bool `json:"accident_history,omitempty"`
	FloodDamage        bool  `json:"flood_damage"`
	ServiceRecords     bool  `json:"service_records"`
	RegistrationPapers bool  `json:"registration_papers"`
	Warranty           bool  `json:"warranty"`
	FinancingAvailable bool  `json:"financing_available"`
	TradeInAccepted    bool  `json:"trade_in_accepted"`

	Features  []string `json:"features,omitempty" binding:"omitempty,max=50,dive,max=100"`
	Latitude  *float64 `json:"latitude,omitempty" binding:"omitempty,latitude"`
	Longitude *float64 `json:"longitude,omitempty" binding:"omitempty,longitude"`

	SaveAsDraft bool `json:"save_as_draft"`
}

// UpdateCarRequest is a partial listing update; nil fields are left unchanged
type UpdateCarRequest struct {
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	CityID      *uuid.UUID `json:"city_id,omitempty"`
	Title       *string    `json:"title,omitempty" binding:"omitempty,min=5,max=200"`
	Description *string    `json:"description,omitempty" binding:"omitempty,max=5000"`
	Year        *int       `json:"year,omitempty" binding:"omitempty,car_year"`
	Price       *float64   `json:"price,omitempty" binding:"omitempty,gt=0"`
	Negotiable  *bool      `json:"negotiable,omitempty"`
	Mileage     *int       `json:"mileage,omitempty" binding:"omitempty,gte=0"`

	Condition       *Condition       `json:"condition,omitempty" binding:"omitempty,oneof=new used certified_pre_owned"`
	ConditionRating *ConditionRating `json:"condition_rating,omitempty" binding:"omitempty,oneof=excellent very_good good fair poor"`
	FuelType        *FuelType        `json:"fuel_type,omitempty" binding:"omitempty,fuel_type"`
	Transmission    *Transmission    `json:"transmission,omitempty" binding:"omitempty,transmission"`
	BodyType        *string          `json:"body_type,omitempty" binding:"omitempty,max=30"`
	Drivetrain      *string          `json:"drivetrain,omitempty" binding:"omitempty,oneof=fwd rwd awd 4wd"`
	EngineSize      *float64         `json:"engine_size,omitempty" binding:"omitempty,gt=0,lt=20"`
	Horsepower      *int             `json:"horsepower,omitempty" binding:"omitempty,gt=0"`
	ExteriorColor   *string          `json:"exterior_color,omitempty" binding:"omitempty,max=50"`
	InteriorColor   *string          `json:"interior_color,omitempty" binding:"omitempty,max=50"`
	VIN             *string          `json:"vin,omitempty" binding:"omitempty,vin"`
	PlateNumber     *string          `json:"plate_number,omitempty" binding:"omitempty,max=20"`

	NumberOfOwners     *int  `json:"number_of_owners,omitempty" binding:"omitempty,gte=0"`
	AccidentHistory    *bool `json:"accident_history,omitempty"`
	FloodDamage        *bool `json:"flood_damage,omitempty"`
	ServiceRecords     *bool `json:"service_records,omitempty"`
	RegistrationPapers *bool `json:"registration_papers,omitempty"`
	Warranty           *bool `json:"warranty,omitempty"`
	FinancingAvailable *bool `json:"financing_available,omitempty"`
	TradeInAccepted    *bool `json:"trade_in_accepted,omitempty"`

	Features  []string `json:"features,omitempty" binding:"omitempty,max=50,dive,max=100"`
	Latitude  *float64 `json:"latitude,omitempty" binding:"omitempty,latitude"`
	Longitude *float64 `json:"longitude,omitempty" binding:"omitempty,longitude"`
}

// CreateCarResponse is the created listing plus any fraud flags it raised
type CreateCarResponse struct {
	Car        *Car        `json:"car"`
	FraudFlags []uuid.UUID `json:"fraud_flags"`
}

// RejectCarRequest carries the moderator's reason
type RejectCarRequest struct {
	Reason string `json:"reason" binding:"required,min=3,max=1000"`
}

// ImageUploadRequest asks for a presigned upload URL
type ImageUploadRequest struct {
	Filename    string `json:"filename" binding:"required,max=255"`
	ContentType string `json:"content_type" binding:"required"`
}

// ImageUploadResponse is where and how the client uploads the photo
type ImageUploadResponse struct {
	Key       string            `json:"key"`
	UploadURL string            `json:"upload_url"`
	Method    string            `json:"method"`
	Headers   map[string]string `json:"headers,omitempty"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// ConfirmImageRequest records an uploaded photo
type ConfirmImageRequest struct {
	Key       string `json:"key" binding:"required,max=500"`
	IsPrimary bool   `json:"is_primary"`
}

// Actor is the authenticated caller of a listing operation
type Actor struct {
	UserID uuid.UUID
	Role   models.UserRole
}

// Owns reports whether the actor is the listing's seller
func (a Actor) Owns(c *Car) bool {
	return a.UserID == c.SellerID
}

// CanManage reports whether the actor may act on the listing as its owner or as staff
func (a Actor) CanManage(c *Car) bool {
	return a.Owns(c) || a.Role.IsStaff()
}
