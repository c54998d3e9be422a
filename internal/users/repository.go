package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/richxcame/carmarket/pkg/models"
)

const uniqueViolation = "23505"

const userColumns = `
	id, email, password_hash, first_name, last_name, phone, role,
	email_verified, phone_verified, identity_verified, business_verified,
	business_name, city_id, average_rating, total_reviews, is_active,
	created_at, updated_at, last_login_at`

// Repository handles database operations for accounts
type Repository struct {
	db *pgxpool.Pool
}

var _ RepositoryInterface = (*Repository)(nil)

// NewRepository creates a new user repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateUser creates a new user
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, first_name, last_name, phone, role,
			business_name, city_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
	`

	_, err := r.db.Exec(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Phone,
		user.Role,
		user.BusinessName,
		user.CityID,
		user.IsActive,
		user.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByEmail retrieves a user by email
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRow(ctx, query, email).Scan)
}

// GetUserByID retrieves a user by ID
func (r *Repository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, id).Scan)
}

// UpdateProfile updates the editable profile fields
func (r *Repository) UpdateProfile(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET first_name = $1, last_name = $2, phone = $3, business_name = $4, city_id = $5, updated_at = $6
		WHERE id = $7
	`

	tag, err := r.db.Exec(ctx, query,
		user.FirstName,
		user.LastName,
		user.Phone,
		user.BusinessName,
		user.CityID,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateLastLogin records a successful login
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET last_login_at = $1 WHERE id = $2`, at, id)
	return err
}

// SetVerification stores the verification flags
func (r *Repository) SetVerification(ctx context.Context, user *models.User) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET email_verified = $1, phone_verified = $2, identity_verified = $3,
			business_verified = $4, updated_at = $5
		WHERE id = $6`,
		user.EmailVerified, user.PhoneVerified, user.IdentityVerified,
		user.BusinessVerified, user.UpdatedAt, user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update verification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetActive enables or disables an account
func (r *Repository) SetActive(ctx context.Context, id uuid.UUID, active bool, at time.Time) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET is_active = $1, updated_at = $2 WHERE id = $3`, active, at, id)
	if err != nil {
		return fmt.Errorf("failed to update account status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AdminIDs lists active staff accounts
func (r *Repository) AdminIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id FROM users
		WHERE role IN ($1, $2) AND is_active = TRUE
		ORDER BY created_at`,
		models.RoleAdmin, models.RoleModerator,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanUser(scan func(dest ...interface{}) error) (*models.User, error) {
	user := &models.User{}
	err := scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Phone,
		&user.Role,
		&user.EmailVerified,
		&user.PhoneVerified,
		&user.IdentityVerified,
		&user.BusinessVerified,
		&user.BusinessName,
		&user.CityID,
		&user.AverageRating,
		&user.TotalReviews,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.LastLoginAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
