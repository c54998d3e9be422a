package users

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/carmarket/internal/fraud"
	"github.com/richxcame/carmarket/pkg/models"
)

// RepositoryInterface defines account persistence
type RepositoryInterface interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	SetVerification(ctx context.Context, user *models.User) error
	SetActive(ctx context.Context, id uuid.UUID, active bool, at time.Time) error
	AdminIDs(ctx context.Context) ([]uuid.UUID, error)
}

// ReputationSource scores sellers for their public profile
type ReputationSource interface {
	CalculateReputation(ctx context.Context, userID uuid.UUID) (*fraud.Reputation, error)
}
