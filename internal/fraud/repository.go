package fraud

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles fraud detection data operations
type Repository struct {
	db *pgxpool.Pool
}

// Ensure the concrete repository satisfies the service's requirements.
var _ RepositoryInterface = (*Repository)(nil)

// NewRepository creates a new fraud repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// ========================================
// LISTING RULES
// ========================================

// CountVINDuplicates counts the seller's other open listings with the same VIN
func (r *Repository) CountVINDuplicates(ctx context.Context, sellerID uuid.UUID, vin string, excludeCarID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM cars
		WHERE seller_id = $1
		  AND UPPER(vin) = UPPER($2)
		  AND id <> $3
		  AND status IN ('active', 'pending')`,
		sellerID, vin, excludeCarID,
	).Scan(&count)
	return count, err
}

// CountSimilarListings counts the seller's other open listings of the same
// brand, model and year priced within [minPrice, maxPrice]
func (r *Repository) CountSimilarListings(ctx context.Context, sub ListingSubmission, minPrice, maxPrice float64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM cars
		WHERE seller_id = $1
		  AND brand_id = $2
		  AND model_id = $3
		  AND year = $4
		  AND price BETWEEN $5 AND $6
		  AND id <> $7
		  AND status IN ('active', 'pending')`,
		sub.SellerID, sub.BrandID, sub.ModelID, sub.Year, minPrice, maxPrice, sub.CarID,
	).Scan(&count)
	return count, err
}

// GetMarketStats averages active and sold listings of the same brand/model
// within ±yearWindow model years created since the given time
func (r *Repository) GetMarketStats(ctx context.Context, sub ListingSubmission, yearWindow int, since time.Time) (*MarketStats, error) {
	stats := &MarketStats{}
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(AVG(price), 0)::float8, COUNT(*)
		FROM cars
		WHERE brand_id = $1
		  AND model_id = $2
		  AND year BETWEEN $3 AND $4
		  AND status IN ('active', 'sold')
		  AND created_at >= $5
		  AND id <> $6`,
		sub.BrandID, sub.ModelID, sub.Year-yearWindow, sub.Year+yearWindow, since, sub.CarID,
	).Scan(&stats.Average, &stats.Samples)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// CountListingsSince counts listings the seller created since the given time
func (r *Repository) CountListingsSince(ctx context.Context, sellerID uuid.UUID, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM cars WHERE seller_id = $1 AND created_at >= $2`,
		sellerID, since,
	).Scan(&count)
	return count, err
}

// HasIndicatorSince reports whether an indicator of the type and window was raised since the given time
func (r *Repository) HasIndicatorSince(ctx context.Context, userID uuid.UUID, indicatorType IndicatorType, window string, since time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM fraud_indicators
			WHERE user_id = $1
			  AND indicator_type = $2
			  AND details->>'window' = $3
			  AND created_at >= $4
		)`,
		userID, indicatorType, window, since,
	).Scan(&exists)
	return exists, err
}

// ========================================
// REVIEW RULES
// ========================================

// CountReviewsOfSeller counts the reviewer's existing reviews of a seller
func (r *Repository) CountReviewsOfSeller(ctx context.Context, reviewerID, sellerID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM reviews WHERE reviewer_id = $1 AND seller_id = $2`,
		reviewerID, sellerID,
	).Scan(&count)
	return count, err
}

// CountReviewsSince counts the reviewer's reviews written since the given time
func (r *Repository) CountReviewsSince(ctx context.Context, reviewerID uuid.UUID, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM reviews WHERE reviewer_id = $1 AND created_at >= $2`,
		reviewerID, since,
	).Scan(&count)
	return count, err
}

// ========================================
// INDICATORS
// ========================================

// CreateIndicator appends a fraud indicator
func (r *Repository) CreateIndicator(ctx context.Context, ind *FraudIndicator) error {
	detailsJSON, err := json.Marshal(ind.Details)
	if err != nil {
		return err
	}
	if ind.Details == nil {
		detailsJSON = []byte("{}")
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO fraud_indicators (
			id, user_id, car_id, review_id, indicator_type, severity,
			description, details, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		ind.ID, ind.UserID, ind.CarID, ind.ReviewID, ind.Type, ind.Severity,
		ind.Description, detailsJSON, ind.CreatedAt,
	)
	return err
}

// buildIndicatorFilters constructs WHERE clauses and args from filters
func buildIndicatorFilters(filters IndicatorFilters) (string, []interface{}, int) {
	where := []string{"TRUE"}
	var args []interface{}
	argIdx := 1

	if filters.Type != nil {
		where = append(where, fmt.Sprintf("indicator_type = $%d", argIdx))
		args = append(args, *filters.Type)
		argIdx++
	}
	if filters.Severity != nil {
		where = append(where, fmt.Sprintf("severity = $%d", argIdx))
		args = append(args, *filters.Severity)
		argIdx++
	}
	if filters.UserID != nil {
		where = append(where, fmt.Sprintf("user_id = $%d", argIdx))
		args = append(args, *filters.UserID)
		argIdx++
	}

	return strings.Join(where, " AND "), args, argIdx
}

// ListIndicators returns indicators matching filters, newest first
func (r *Repository) ListIndicators(ctx context.Context, filters IndicatorFilters, limit, offset int) ([]*FraudIndicator, int64, error) {
	whereClause, args, argIdx := buildIndicatorFilters(filters)

	var total int64
	if err := r.db.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM fraud_indicators WHERE %s`, whereClause), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, car_id, review_id, indicator_type, severity,
		       description, details, created_at
		FROM fraud_indicators
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, whereClause, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var indicators []*FraudIndicator
	for rows.Next() {
		ind := &FraudIndicator{}
		var detailsJSON []byte
		if err := rows.Scan(
			&ind.ID, &ind.UserID, &ind.CarID, &ind.ReviewID, &ind.Type, &ind.Severity,
			&ind.Description, &detailsJSON, &ind.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		if err := json.Unmarshal(detailsJSON, &ind.Details); err != nil {
			ind.Details = make(map[string]interface{})
		}
		indicators = append(indicators, ind)
	}
	return indicators, total, rows.Err()
}

// ========================================
// REPUTATION
// ========================================

// GetReputationInputs loads the account facts used by the reputation score
func (r *Repository) GetReputationInputs(ctx context.Context, userID uuid.UUID) (*ReputationInputs, error) {
	in := &ReputationInputs{}
	err := r.db.QueryRow(ctx, `
		SELECT u.email_verified, u.identity_verified, u.business_verified,
		       u.average_rating::float8, u.total_reviews, u.created_at,
		       (SELECT COUNT(*) FROM cars c
		         WHERE c.seller_id = u.id AND c.status = 'active' AND c.approval_status = 'approved'),
		       (SELECT COUNT(*) FROM fraud_indicators f WHERE f.user_id = u.id)
		FROM users u
		WHERE u.id = $1`,
		userID,
	).Scan(
		&in.EmailVerified, &in.IdentityVerified, &in.BusinessVerified,
		&in.AverageRating, &in.ReviewCount, &in.AccountCreatedAt,
		&in.ActiveListings, &in.IndicatorCount,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return in, nil
}
