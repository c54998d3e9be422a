package models

import (
	"time"

	"github.com/google/uuid"
)

// UserRole represents a marketplace account role
type UserRole string

const (
	RoleBuyer     UserRole = "buyer"
	RoleSeller    UserRole = "seller"
	RoleDealer    UserRole = "dealer"
	RoleAdmin     UserRole = "admin"
	RoleModerator UserRole = "moderator"
)

// IsValid reports whether r is a known role
func (r UserRole) IsValid() bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleDealer, RoleAdmin, RoleModerator:
		return true
	}
	return false
}

// CanSell reports whether the role may create listings
func (r UserRole) CanSell() bool {
	return r == RoleSeller || r == RoleDealer || r == RoleAdmin
}

// IsStaff reports whether the role may moderate the marketplace
func (r UserRole) IsStaff() bool {
	return r == RoleAdmin || r == RoleModerator
}

// User is a marketplace account
type User struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	Email            string     `json:"email" db:"email"`
	PasswordHash     string     `json:"-" db:"password_hash"`
	FirstName        string     `json:"first_name" db:"first_name"`
	LastName         string     `json:"last_name" db:"last_name"`
	Phone            *string    `json:"phone,omitempty" db:"phone"`
	Role             UserRole   `json:"role" db:"role"`
	EmailVerified    bool       `json:"email_verified" db:"email_verified"`
	PhoneVerified    bool       `json:"phone_verified" db:"phone_verified"`
	IdentityVerified bool       `json:"identity_verified" db:"identity_verified"`
	BusinessVerified bool       `json:"business_verified" db:"business_verified"`
	BusinessName     *string    `json:"business_name,omitempty" db:"business_name"`
	CityID           *uuid.UUID `json:"city_id,omitempty" db:"city_id"`
	AverageRating    float64    `json:"average_rating" db:"average_rating"`
	TotalReviews     int        `json:"total_reviews" db:"total_reviews"`
	IsActive         bool       `json:"is_active" db:"is_active"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
}

// FullName returns "First Last"
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
