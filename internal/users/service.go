package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/carmarket/pkg/common"
	"github.com/richxcame/carmarket/pkg/logger"
	"github.com/richxcame/carmarket/pkg/metrics"
	"github.com/richxcame/carmarket/pkg/middleware"
	"github.com/richxcame/carmarket/pkg/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Service handles account business logic
type Service struct {
	repo       RepositoryInterface
	reputation ReputationSource
	jwtSecret  string
	tokenTTL   time.Duration
	hashCost   int
	now        func() time.Time
}

// NewService creates a new user service
func NewService(repo RepositoryInterface, reputation ReputationSource, jwtSecret string, tokenTTL time.Duration) *Service {
	return &Service{
		repo:       repo,
		reputation: reputation,
		jwtSecret:  jwtSecret,
		tokenTTL:   tokenTTL,
		hashCost:   bcrypt.DefaultCost,
		now:        time.Now,
	}
}

// Register creates an account. Only buyer, seller and dealer can self-register.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	role := req.Role
	if role == "" {
		role = models.RoleBuyer
	}
	if role != models.RoleBuyer && role != models.RoleSeller && role != models.RoleDealer {
		return nil, common.NewBadRequestError("invalid role", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, common.NewInternalError("failed to hash password", err)
	}

	now := s.now()
	user := &models.User{
		ID:           uuid.New(),
		Email:        normalizeEmail(req.Email),
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Phone:        req.Phone,
		Role:         role,
		BusinessName: req.BusinessName,
		CityID:       req.CityID,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, common.NewConflictError("email already registered")
		}
		return nil, common.NewInternalError("failed to create user", err)
	}

	logger.WithContext(ctx).Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
	)
	return user, nil
}

// Login checks credentials and issues a token
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			metrics.LoginAttempts.WithLabelValues("invalid").Inc()
			return nil, common.NewUnauthorizedError("invalid email or password")
		}
		return nil, common.NewInternalError("failed to load user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		metrics.LoginAttempts.WithLabelValues("invalid").Inc()
		return nil, common.NewUnauthorizedError("invalid email or password")
	}
	if !user.IsActive {
		metrics.LoginAttempts.WithLabelValues("inactive").Inc()
		return nil, common.NewForbiddenError("account is deactivated")
	}

	token, expiresAt, err := middleware.GenerateToken(s.jwtSecret, user.ID, user.Email, user.Role, s.tokenTTL)
	if err != nil {
		return nil, common.NewInternalError("failed to issue token", err)
	}

	now := s.now()
	if err := s.repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		logger.WithContext(ctx).Warn("Failed to record login", zap.String("user_id", user.ID.String()), zap.Error(err))
	} else {
		user.LastLoginAt = &now
	}
	metrics.LoginAttempts.WithLabelValues("success").Inc()

	return &LoginResponse{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// GetProfile returns the caller's own account
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.loadUser(ctx, userID)
}

// UpdateProfile applies a partial profile update
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, req *UpdateProfileRequest) (*models.User, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	phoneChanged := req.Phone != nil && (user.Phone == nil || *user.Phone != *req.Phone)
	if phoneChanged {
		// a new number has to be verified again
		user.Phone = req.Phone
		user.PhoneVerified = false
	}
	if req.BusinessName != nil {
		user.BusinessName = req.BusinessName
	}
	if req.CityID != nil {
		user.CityID = req.CityID
	}
	user.UpdatedAt = s.now()

	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		return nil, common.NewInternalError("failed to update profile", err)
	}
	if phoneChanged {
		if err := s.repo.SetVerification(ctx, user); err != nil {
			logger.WithContext(ctx).Warn("Failed to reset phone verification", zap.String("user_id", userID.String()), zap.Error(err))
		}
	}
	return user, nil
}

// GetPublicProfile returns a seller's public profile with their reputation
func (s *Service) GetPublicProfile(ctx context.Context, userID uuid.UUID) (*PublicProfile, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, common.NewNotFoundError("user not found", nil)
	}

	profile := newPublicProfile(user)
	if s.reputation != nil {
		rep, err := s.reputation.CalculateReputation(ctx, userID)
		if err != nil {
			logger.WithContext(ctx).Warn("Failed to calculate reputation", zap.String("user_id", userID.String()), zap.Error(err))
		} else {
			profile.Reputation = rep
		}
	}
	return profile, nil
}

// SetVerification updates verification flags on an account
func (s *Service) SetVerification(ctx context.Context, adminID, userID uuid.UUID, req *VerificationRequest) (*models.User, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.EmailVerified != nil {
		user.EmailVerified = *req.EmailVerified
	}
	if req.PhoneVerified != nil {
		user.PhoneVerified = *req.PhoneVerified
	}
	if req.IdentityVerified != nil {
		user.IdentityVerified = *req.IdentityVerified
	}
	if req.BusinessVerified != nil {
		if *req.BusinessVerified && user.Role != models.RoleDealer {
			return nil, common.NewBadRequestError("only dealers can be business verified", nil)
		}
		user.BusinessVerified = *req.BusinessVerified
	}
	user.UpdatedAt = s.now()

	if err := s.repo.SetVerification(ctx, user); err != nil {
		return nil, common.NewInternalError("failed to update verification", err)
	}

	logger.WithContext(ctx).Info("Verification updated",
		zap.String("user_id", userID.String()),
		zap.String("admin_id", adminID.String()),
	)
	return user, nil
}

// SetActive enables or disables an account
func (s *Service) SetActive(ctx context.Context, adminID, userID uuid.UUID, active bool) error {
	if adminID == userID && !active {
		return common.NewBadRequestError("you cannot deactivate your own account", nil)
	}

	if err := s.repo.SetActive(ctx, userID, active, s.now()); err != nil {
		if errors.Is(err, ErrNotFound) {
			return common.NewNotFoundError("user not found", err)
		}
		return common.NewInternalError("failed to update account status", err)
	}

	logger.WithContext(ctx).Info("Account status changed",
		zap.String("user_id", userID.String()),
		zap.String("admin_id", adminID.String()),
		zap.Bool("active", active),
	)
	return nil
}

func (s *Service) loadUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, common.NewNotFoundError("user not found", err)
		}
		return nil, common.NewInternalError("failed to get user", err)
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
