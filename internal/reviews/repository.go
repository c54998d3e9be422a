package reviews

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const reviewColumns = `
	r.id, r.reviewer_id, r.seller_id, r.car_id, r.rating, r.title, r.comment, r.status, r.created_at,
	u.first_name, u.last_name`

// Repository handles review data access
type Repository struct {
	db *pgxpool.Pool
}

var _ RepositoryInterface = (*Repository)(nil)

// NewRepository creates a new review repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// GetReviewee loads the account being reviewed
func (r *Repository) GetReviewee(ctx context.Context, userID uuid.UUID) (*Reviewee, error) {
	rv := &Reviewee{}
	err := r.db.QueryRow(ctx, `SELECT id, is_active FROM users WHERE id = $1`, userID).Scan(&rv.ID, &rv.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return rv, nil
}

// GetCarSeller returns the owner of a listing
func (r *Repository) GetCarSeller(ctx context.Context, carID uuid.UUID) (uuid.UUID, error) {
	var sellerID uuid.UUID
	err := r.db.QueryRow(ctx, `SELECT seller_id FROM cars WHERE id = $1`, carID).Scan(&sellerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, ErrNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to get car: %w", err)
	}
	return sellerID, nil
}

// CreateReview stores a review and refreshes the seller's rating columns
// in the same transaction
func (r *Repository) CreateReview(ctx context.Context, review *Review) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO reviews (id, reviewer_id, seller_id, car_id, rating, title, comment, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		review.ID, review.ReviewerID, review.SellerID, review.CarID, review.Rating,
		review.Title, review.Comment, review.Status, review.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}

	if err := refreshSellerRating(ctx, tx, review.SellerID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetReview loads a single review
func (r *Repository) GetReview(ctx context.Context, id uuid.UUID) (*Review, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+reviewColumns+`
		FROM reviews r
		JOIN users u ON u.id = r.reviewer_id
		WHERE r.id = $1`, id)

	review, err := scanReview(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return review, nil
}

// ListSellerReviews returns a seller's published reviews, newest first
func (r *Repository) ListSellerReviews(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]*Review, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+reviewColumns+`
		FROM reviews r
		JOIN users u ON u.id = r.reviewer_id
		WHERE r.seller_id = $1 AND r.status = 'published'
		ORDER BY r.created_at DESC
		LIMIT $2 OFFSET $3`, sellerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []*Review
	for rows.Next() {
		review, err := scanReview(rows.Scan)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}

// GetSummary computes the rating distribution of a seller's published reviews
func (r *Repository) GetSummary(ctx context.Context, sellerID uuid.UUID) (*Summary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT rating, COUNT(*)
		FROM reviews
		WHERE seller_id = $1 AND status = 'published'
		GROUP BY rating`, sellerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summary := newSummary()
	var sum int
	for rows.Next() {
		var rating, count int
		if err := rows.Scan(&rating, &count); err != nil {
			return nil, err
		}
		summary.Distribution[rating] = count
		summary.Total += count
		sum += rating * count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if summary.Total > 0 {
		summary.Average = float64(sum) / float64(summary.Total)
	}
	return summary, nil
}

// SetStatus publishes or hides a review and refreshes the seller's rating
func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, status Status) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var sellerID uuid.UUID
	err = tx.QueryRow(ctx, `UPDATE reviews SET status = $2 WHERE id = $1 RETURNING seller_id`, id, status).Scan(&sellerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}

	if err := refreshSellerRating(ctx, tx, sellerID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func refreshSellerRating(ctx context.Context, tx pgx.Tx, sellerID uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		UPDATE users SET
			average_rating = COALESCE((SELECT ROUND(AVG(rating)::numeric, 2) FROM reviews
				WHERE seller_id = $1 AND status = 'published'), 0),
			total_reviews = (SELECT COUNT(*) FROM reviews WHERE seller_id = $1 AND status = 'published'),
			updated_at = NOW()
		WHERE id = $1`, sellerID)
	if err != nil {
		return fmt.Errorf("failed to refresh seller rating: %w", err)
	}
	return nil
}

func scanReview(scan func(dest ...interface{}) error) (*Review, error) {
	review := &Review{}
	var firstName, lastName string
	err := scan(
		&review.ID, &review.ReviewerID, &review.SellerID, &review.CarID, &review.Rating,
		&review.Title, &review.Comment, &review.Status, &review.CreatedAt,
		&firstName, &lastName,
	)
	if err != nil {
		return nil, err
	}
	review.ReviewerName = displayName(firstName, lastName)
	return review, nil
}

// displayName shortens "Juan dela Cruz" to "Juan d."
func displayName(first, last string) string {
	if last == "" {
		return first
	}
	return first + " " + string([]rune(last)[:1]) + "."
}
