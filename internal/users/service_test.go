package users

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/carmarket/internal/fraud"
	"github.com/richxcame/carmarket/pkg/common"
	"github.com/richxcame/carmarket/pkg/middleware"
	"github.com/richxcame/carmarket/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// ============================================================================
// Mocks
// ============================================================================

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateUser(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *MockRepository) SetVerification(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockRepository) SetActive(ctx context.Context, id uuid.UUID, active bool, at time.Time) error {
	return m.Called(ctx, id, active, at).Error(0)
}

func (m *MockRepository) AdminIDs(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	ids, _ := args.Get(0).([]uuid.UUID)
	return ids, args.Error(1)
}

type MockReputation struct {
	mock.Mock
}

func (m *MockReputation) CalculateReputation(ctx context.Context, userID uuid.UUID) (*fraud.Reputation, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fraud.Reputation), args.Error(1)
}

const testSecret = "test-secret"

var fixedNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestService() (*Service, *MockRepository, *MockReputation) {
	repo := new(MockRepository)
	rep := new(MockReputation)
	svc := NewService(repo, rep, testSecret, 24*time.Hour)
	svc.hashCost = bcrypt.MinCost
	svc.now = func() time.Time { return fixedNow }
	return svc, repo, rep
}

func assertAppErrorCode(t *testing.T, err error, code int) {
	t.Helper()
	appErr, ok := common.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

func createTestUser(password string) *models.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return &models.User{
		ID:           uuid.New(),
		Email:        "juan@example.ph",
		PasswordHash: string(hash),
		FirstName:    "Juan",
		LastName:     "Dela Cruz",
		Role:         models.RoleSeller,
		IsActive:     true,
		CreatedAt:    fixedNow.AddDate(-1, 0, 0),
	}
}

// ============================================================================
// Register
// ============================================================================

func TestRegister_DefaultsToBuyer(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	repo.On("CreateUser", ctx, mock.AnythingOfType("*models.User")).Return(nil)

	user, err := svc.Register(ctx, &RegisterRequest{
		Email:     "  Maria.Santos@Example.PH ",
		Password:  "s3cure-passw0rd",
		FirstName: " Maria ",
		LastName:  "Santos",
	})
	require.NoError(t, err)

	assert.Equal(t, "maria.santos@example.ph", user.Email)
	assert.Equal(t, "Maria", user.FirstName)
	assert.Equal(t, models.RoleBuyer, user.Role)
	assert.True(t, user.IsActive)
	assert.Equal(t, fixedNow, user.CreatedAt)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cure-passw0rd")))
}

func TestRegister_Roles(t *testing.T) {
	tests := []struct {
		role models.UserRole
		ok   bool
	}{
		{models.RoleSeller, true},
		{models.RoleDealer, true},
		{models.RoleAdmin, false},
		{models.RoleModerator, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			svc, repo, _ := newTestService()
			repo.On("CreateUser", mock.Anything, mock.Anything).Return(nil).Maybe()

			user, err := svc.Register(context.Background(), &RegisterRequest{
				Email: "a@b.ph", Password: "password1", FirstName: "A", LastName: "B", Role: tt.role,
			})
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.role, user.Role)
			} else {
				assertAppErrorCode(t, err, http.StatusBadRequest)
			}
		})
	}
}

func TestRegister_EmailTaken(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.On("CreateUser", mock.Anything, mock.Anything).Return(ErrEmailTaken)

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Email: "taken@example.ph", Password: "password1", FirstName: "A", LastName: "B",
	})
	assertAppErrorCode(t, err, http.StatusConflict)
}

// ============================================================================
// Login
// ============================================================================

func TestLogin_Success(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	user := createTestUser("correct-horse")

	repo.On("GetUserByEmail", ctx, "juan@example.ph").Return(user, nil)
	repo.On("UpdateLastLogin", ctx, user.ID, fixedNow).Return(nil)

	resp, err := svc.Login(ctx, &LoginRequest{Email: "JUAN@example.ph", Password: "correct-horse"})
	require.NoError(t, err)

	claims, err := middleware.ParseToken(testSecret, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, models.RoleSeller, claims.Role)
	require.NotNil(t, resp.User.LastLoginAt)
	assert.Equal(t, fixedNow, *resp.User.LastLoginAt)
}

func TestLogin_LastLoginFailureIsIgnored(t *testing.T) {
	svc, repo, _ := newTestService()
	user := createTestUser("correct-horse")

	repo.On("GetUserByEmail", mock.Anything, user.Email).Return(user, nil)
	repo.On("UpdateLastLogin", mock.Anything, user.ID, fixedNow).Return(errors.New("db down"))

	resp, err := svc.Login(context.Background(), &LoginRequest{Email: user.Email, Password: "correct-horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Nil(t, resp.User.LastLoginAt)
}

func TestLogin_Failures(t *testing.T) {
	t.Run("unknown email", func(t *testing.T) {
		svc, repo, _ := newTestService()
		repo.On("GetUserByEmail", mock.Anything, "ghost@example.ph").Return(nil, ErrNotFound)

		_, err := svc.Login(context.Background(), &LoginRequest{Email: "ghost@example.ph", Password: "x"})
		assertAppErrorCode(t, err, http.StatusUnauthorized)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, repo, _ := newTestService()
		user := createTestUser("correct-horse")
		repo.On("GetUserByEmail", mock.Anything, user.Email).Return(user, nil)

		_, err := svc.Login(context.Background(), &LoginRequest{Email: user.Email, Password: "battery-staple"})
		assertAppErrorCode(t, err, http.StatusUnauthorized)
		repo.AssertNotCalled(t, "UpdateLastLogin", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("deactivated", func(t *testing.T) {
		svc, repo, _ := newTestService()
		user := createTestUser("correct-horse")
		user.IsActive = false
		repo.On("GetUserByEmail", mock.Anything, user.Email).Return(user, nil)

		_, err := svc.Login(context.Background(), &LoginRequest{Email: user.Email, Password: "correct-horse"})
		assertAppErrorCode(t, err, http.StatusForbidden)
	})

	t.Run("database error", func(t *testing.T) {
		svc, repo, _ := newTestService()
		repo.On("GetUserByEmail", mock.Anything, "a@b.ph").Return(nil, errors.New("timeout"))

		_, err := svc.Login(context.Background(), &LoginRequest{Email: "a@b.ph", Password: "x"})
		assertAppErrorCode(t, err, http.StatusInternalServerError)
	})
}

// ============================================================================
// Profile
// ============================================================================

func TestUpdateProfile_PhoneChangeResetsVerification(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	user := createTestUser("pw")
	user.Phone = ptr("09171234567")
	user.PhoneVerified = true

	repo.On("GetUserByID", ctx, user.ID).Return(user, nil)
	repo.On("UpdateProfile", ctx, user).Return(nil)
	repo.On("SetVerification", ctx, user).Return(nil).Once()

	updated, err := svc.UpdateProfile(ctx, user.ID, &UpdateProfileRequest{Phone: ptr("09181234567")})
	require.NoError(t, err)
	assert.Equal(t, "09181234567", *updated.Phone)
	assert.False(t, updated.PhoneVerified)
	repo.AssertExpectations(t)
}

func TestUpdateProfile_SamePhoneKeepsVerification(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	user := createTestUser("pw")
	user.Phone = ptr("09171234567")
	user.PhoneVerified = true

	repo.On("GetUserByID", ctx, user.ID).Return(user, nil)
	repo.On("UpdateProfile", ctx, user).Return(nil)

	updated, err := svc.UpdateProfile(ctx, user.ID, &UpdateProfileRequest{Phone: ptr("09171234567"), FirstName: ptr(" Jun ")})
	require.NoError(t, err)
	assert.True(t, updated.PhoneVerified)
	assert.Equal(t, "Jun", updated.FirstName)
	assert.Equal(t, fixedNow, updated.UpdatedAt)
	repo.AssertNotCalled(t, "SetVerification", mock.Anything, mock.Anything)
}

func TestGetProfile_NotFound(t *testing.T) {
	svc, repo, _ := newTestService()
	id := uuid.New()
	repo.On("GetUserByID", mock.Anything, id).Return(nil, ErrNotFound)

	_, err := svc.GetProfile(context.Background(), id)
	assertAppErrorCode(t, err, http.StatusNotFound)
}

func TestGetPublicProfile(t *testing.T) {
	svc, repo, rep := newTestService()
	ctx := context.Background()
	user := createTestUser("pw")
	user.AverageRating = 4.5
	user.TotalReviews = 12

	reputation := &fraud.Reputation{UserID: user.ID, Score: 82, TrustScore: 4.1, Level: fraud.LevelExcellent}
	repo.On("GetUserByID", ctx, user.ID).Return(user, nil)
	rep.On("CalculateReputation", ctx, user.ID).Return(reputation, nil)

	profile, err := svc.GetPublicProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Juan D.", profile.DisplayName)
	assert.Equal(t, 4.5, profile.AverageRating)
	assert.Equal(t, user.CreatedAt, profile.MemberSince)
	assert.Same(t, reputation, profile.Reputation)
}

func TestGetPublicProfile_ReputationFailureOmitsScore(t *testing.T) {
	svc, repo, rep := newTestService()
	user := createTestUser("pw")
	repo.On("GetUserByID", mock.Anything, user.ID).Return(user, nil)
	rep.On("CalculateReputation", mock.Anything, user.ID).Return(nil, errors.New("boom"))

	profile, err := svc.GetPublicProfile(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Nil(t, profile.Reputation)
}

func TestGetPublicProfile_DeactivatedIsHidden(t *testing.T) {
	svc, repo, _ := newTestService()
	user := createTestUser("pw")
	user.IsActive = false
	repo.On("GetUserByID", mock.Anything, user.ID).Return(user, nil)

	_, err := svc.GetPublicProfile(context.Background(), user.ID)
	assertAppErrorCode(t, err, http.StatusNotFound)
}

// ============================================================================
// Admin
// ============================================================================

func TestSetVerification(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	user := createTestUser("pw")

	repo.On("GetUserByID", ctx, user.ID).Return(user, nil)
	repo.On("SetVerification", ctx, user).Return(nil)

	updated, err := svc.SetVerification(ctx, uuid.New(), user.ID, &VerificationRequest{
		EmailVerified:    ptr(true),
		IdentityVerified: ptr(true),
	})
	require.NoError(t, err)
	assert.True(t, updated.EmailVerified)
	assert.True(t, updated.IdentityVerified)
	assert.False(t, updated.PhoneVerified)
}

func TestSetVerification_BusinessRequiresDealer(t *testing.T) {
	svc, repo, _ := newTestService()
	user := createTestUser("pw")
	repo.On("GetUserByID", mock.Anything, user.ID).Return(user, nil)

	_, err := svc.SetVerification(context.Background(), uuid.New(), user.ID, &VerificationRequest{BusinessVerified: ptr(true)})
	assertAppErrorCode(t, err, http.StatusBadRequest)
	repo.AssertNotCalled(t, "SetVerification", mock.Anything, mock.Anything)
}

func TestSetActive(t *testing.T) {
	ctx := context.Background()
	adminID := uuid.New()

	t.Run("deactivates", func(t *testing.T) {
		svc, repo, _ := newTestService()
		userID := uuid.New()
		repo.On("SetActive", ctx, userID, false, fixedNow).Return(nil).Once()

		require.NoError(t, svc.SetActive(ctx, adminID, userID, false))
		repo.AssertExpectations(t)
	})

	t.Run("not self", func(t *testing.T) {
		svc, _, _ := newTestService()
		assertAppErrorCode(t, svc.SetActive(ctx, adminID, adminID, false), http.StatusBadRequest)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, repo, _ := newTestService()
		userID := uuid.New()
		repo.On("SetActive", ctx, userID, true, fixedNow).Return(ErrNotFound)

		assertAppErrorCode(t, svc.SetActive(ctx, adminID, userID, true), http.StatusNotFound)
	})
}

func ptr[T any](v T) *T {
	return &v
}
