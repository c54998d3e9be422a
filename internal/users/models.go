package users

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/carmarket/internal/fraud"
	"github.com/richxcame/carmarket/pkg/models"
)

var (
	// ErrNotFound is returned when a user does not exist
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when an email is already registered
	ErrEmailTaken = errors.New("email already registered")
)

// RegisterRequest creates an account
type RegisterRequest struct {
	Email        string          `json:"email" binding:"required,email,max=255"`
	Password     string          `json:"password" binding:"required,min=8,max=72"`
	FirstName    string          `json:"first_name" binding:"required,max=100"`
	LastName     string          `json:"last_name" binding:"required,max=100"`
	Phone        *string         `json:"phone,omitempty" binding:"omitempty,ph_phone"`
	Role         models.UserRole `json:"role,omitempty" binding:"omitempty,user_role"`
	BusinessName *string         `json:"business_name,omitempty" binding:"omitempty,max=200"`
	CityID       *uuid.UUID      `json:"city_id,omitempty"`
}

// LoginRequest authenticates with email and password
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued access token
type LoginResponse struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// UpdateProfileRequest is a partial profile update
type UpdateProfileRequest struct {
	FirstName    *string    `json:"first_name,omitempty" binding:"omitempty,min=1,max=100"`
	LastName     *string    `json:"last_name,omitempty" binding:"omitempty,min=1,max=100"`
	Phone        *string    `json:"phone,omitempty" binding:"omitempty,ph_phone"`
	BusinessName *string    `json:"business_name,omitempty" binding:"omitempty,max=200"`
	CityID       *uuid.UUID `json:"city_id,omitempty"`
}

// VerificationRequest sets account verification flags; nil flags are unchanged
type VerificationRequest struct {
	EmailVerified    *bool `json:"email_verified,omitempty"`
	PhoneVerified    *bool `json:"phone_verified,omitempty"`
	IdentityVerified *bool `json:"identity_verified,omitempty"`
	BusinessVerified *bool `json:"business_verified,omitempty"`
}

// SetActiveRequest enables or disables an account
type SetActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// PublicProfile is what buyers see about a seller
type PublicProfile struct {
	ID               uuid.UUID         `json:"id"`
	DisplayName      string            `json:"display_name"`
	Role             models.UserRole   `json:"role"`
	BusinessName     *string           `json:"business_name,omitempty"`
	CityID           *uuid.UUID        `json:"city_id,omitempty"`
	EmailVerified    bool              `json:"email_verified"`
	PhoneVerified    bool              `json:"phone_verified"`
	IdentityVerified bool              `json:"identity_verified"`
	BusinessVerified bool              `json:"business_verified"`
	AverageRating    float64           `json:"average_rating"`
	TotalReviews     int               `json:"total_reviews"`
	MemberSince      time.Time         `json:"member_since"`
	Reputation       *fraud.Reputation `json:"reputation,omitempty"`
}

// newPublicProfile hides the surname behind an initial
func newPublicProfile(u *models.User) *PublicProfile {
	name := u.FirstName
	if r := []rune(u.LastName); len(r) > 0 {
		name += " " + string(r[0]) + "."
	}
	return &PublicProfile{
		ID:               u.ID,
		DisplayName:      name,
		Role:             u.Role,
		BusinessName:     u.BusinessName,
		CityID:           u.CityID,
		EmailVerified:    u.EmailVerified,
		PhoneVerified:    u.PhoneVerified,
		IdentityVerified: u.IdentityVerified,
		BusinessVerified: u.BusinessVerified,
		AverageRating:    u.AverageRating,
		TotalReviews:     u.TotalReviews,
		MemberSince:      u.CreatedAt,
	}
}
