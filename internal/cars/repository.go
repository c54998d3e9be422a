package cars

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/richxcame/carmarket/internal/geo"
)

const carSelect = `
	SELECT c.id, c.seller_id, c.brand_id, b.name, c.model_id, m.name,
		c.category_id, c.city_id, ci.name,
		c.title, c.description, c.year, c.price, c.negotiable, c.mileage,
		c.condition, c.condition_rating, c.fuel_type, c.transmission, c.body_type,
		c.drivetrain, c.engine_size, c.horsepower, c.exterior_color, c.interior_color,
		c.vin, c.plate_number, c.number_of_owners, c.accident_history, c.flood_damage,
		c.service_records, c.registration_papers, c.warranty, c.financing_available,
		c.trade_in_accepted, c.features, c.images_count, c.latitude, c.longitude,
		c.status, c.approval_status, c.rejection_reason, c.is_featured, c.featured_until,
		c.boost_count, c.completeness_score, c.quality_score, c.ranking_score,
		c.views_count, c.favorites_count, c.contacts_count,
		c.created_at, c.updated_at, c.published_at, c.sold_at, c.expires_at
	FROM cars c
	JOIN brands b ON b.id = c.brand_id
	JOIN car_models m ON m.id = c.model_id
	LEFT JOIN cities ci ON ci.id = c.city_id`

// publicClause restricts a query to listings anyone may see; $1 is now
const publicClause = `c.status = 'active' AND c.approval_status = 'approved' AND (c.expires_at IS NULL OR c.expires_at > $1)`

// Repository handles listing data access
type Repository struct {
	db *pgxpool.Pool
}

var _ RepositoryInterface = (*Repository)(nil)

// NewRepository creates a new listing repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func scanCar(scan func(dest ...interface{}) error) (*Car, error) {
	c := &Car{}
	err := scan(
		&c.ID, &c.SellerID, &c.BrandID, &c.BrandName, &c.ModelID, &c.ModelName,
		&c.CategoryID, &c.CityID, &c.CityName,
		&c.Title, &c.Description, &c.Year, &c.Price, &c.Negotiable, &c.Mileage,
		&c.Condition, &c.ConditionRating, &c.FuelType, &c.Transmission, &c.BodyType,
		&c.Drivetrain, &c.EngineSize, &c.Horsepower, &c.ExteriorColor, &c.InteriorColor,
		&c.VIN, &c.PlateNumber, &c.NumberOfOwners, &c.AccidentHistory, &c.FloodDamage,
		&c.ServiceRecords, &c.RegistrationPapers, &c.Warranty, &c.FinancingAvailable,
		&c.TradeInAccepted, &c.Features, &c.ImagesCount, &c.Latitude, &c.Longitude,
		&c.Status, &c.ApprovalStatus, &c.RejectionReason, &c.IsFeatured, &c.FeaturedUntil,
		&c.BoostCount, &c.CompletenessScore, &c.QualityScore, &c.RankingScore,
		&c.ViewsCount, &c.FavoritesCount, &c.ContactsCount,
		&c.CreatedAt, &c.UpdatedAt, &c.PublishedAt, &c.SoldAt, &c.ExpiresAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if c.Features == nil {
		c.Features = []string{}
	}
	return c, nil
}

func collectCars(rows pgx.Rows) ([]*Car, error) {
	defer rows.Close()

	var cars []*Car
	for rows.Next() {
		c, err := scanCar(rows.Scan)
		if err != nil {
			return nil, err
		}
		cars = append(cars, c)
	}
	return cars, rows.Err()
}

// ========================================
// LISTINGS
// ========================================

// CreateCar inserts a listing
func (r *Repository) CreateCar(ctx context.Context, c *Car) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO cars (
			id, seller_id, brand_id, model_id, category_id, city_id,
			title, description, year, price, negotiable, mileage,
			condition, condition_rating, fuel_type, transmission, body_type,
			drivetrain, engine_size, horsepower, exterior_color, interior_color,
			vin, plate_number, number_of_owners, accident_history, flood_damage,
			service_records, registration_papers, warranty, financing_available,
			trade_in_accepted, features, latitude, longitude,
			status, approval_status, completeness_score, quality_score, ranking_score,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
			$18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32,
			$33, $34, $35, $36, $37, $38, $39, $40, $41, $42
		)`,
		c.ID, c.SellerID, c.BrandID, c.ModelID, c.CategoryID, c.CityID,
		c.Title, c.Description, c.Year, c.Price, c.Negotiable, c.Mileage,
		c.Condition, c.ConditionRating, c.FuelType, c.Transmission, c.BodyType,
		c.Drivetrain, c.EngineSize, c.Horsepower, c.ExteriorColor, c.InteriorColor,
		c.VIN, c.PlateNumber, c.NumberOfOwners, c.AccidentHistory, c.FloodDamage,
		c.ServiceRecords, c.RegistrationPapers, c.Warranty, c.FinancingAvailable,
		c.TradeInAccepted, c.Features, c.Latitude, c.Longitude,
		c.Status, c.ApprovalStatus, c.CompletenessScore, c.QualityScore, c.RankingScore,
		c.CreatedAt, c.UpdatedAt,
	)
	return err
}

// GetCar retrieves a listing with its images
func (r *Repository) GetCar(ctx context.Context, id uuid.UUID) (*Car, error) {
	c, err := scanCar(func(dest ...interface{}) error {
		return r.db.QueryRow(ctx, carSelect+` WHERE c.id = $1`, id).Scan(dest...)
	})
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, car_id, storage_key, url, is_primary, position, created_at
		FROM car_images
		WHERE car_id = $1
		ORDER BY is_primary DESC, position, created_at`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	c.Images = []CarImage{}
	for rows.Next() {
		var img CarImage
		if err := rows.Scan(&img.ID, &img.CarID, &img.StorageKey, &img.URL, &img.IsPrimary, &img.Position, &img.CreatedAt); err != nil {
			return nil, err
		}
		c.Images = append(c.Images, img)
	}
	return c, rows.Err()
}

// UpdateCar writes every seller-editable field and the recomputed scores
func (r *Repository) UpdateCar(ctx context.Context, c *Car) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE cars SET
			category_id = $2, city_id = $3, title = $4, description = $5, year = $6,
			price = $7, negotiable = $8, mileage = $9, condition = $10,
			condition_rating = $11, fuel_type = $12, transmission = $13, body_type = $14,
			drivetrain = $15, engine_size = $16, horsepower = $17, exterior_color = $18,
			interior_color = $19, vin = $20, plate_number = $21, number_of_owners = $22,
			accident_history = $23, flood_damage = $24, service_records = $25,
			registration_papers = $26, warranty = $27, financing_available = $28,
			trade_in_accepted = $29, features = $30, latitude = $31, longitude = $32,
			completeness_score = $33, quality_score = $34, ranking_score = $35,
			updated_at = $36
		WHERE id = $1`,
		c.ID, c.CategoryID, c.CityID, c.Title, c.Description, c.Year,
		c.Price, c.Negotiable, c.Mileage, c.Condition,
		c.ConditionRating, c.FuelType, c.Transmission, c.BodyType,
		c.Drivetrain, c.EngineSize, c.Horsepower, c.ExteriorColor,
		c.InteriorColor, c.VIN, c.PlateNumber, c.NumberOfOwners,
		c.AccidentHistory, c.FloodDamage, c.ServiceRecords,
		c.RegistrationPapers, c.Warranty, c.FinancingAvailable,
		c.TradeInAccepted, c.Features, c.Latitude, c.Longitude,
		c.CompletenessScore, c.QualityScore, c.RankingScore,
		c.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStatus moves a listing to status. Selling also stamps sold_at.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status, at time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE cars
		SET status = $2,
			sold_at = CASE WHEN $2 = 'sold' THEN $3 ELSE sold_at END,
			updated_at = $3
		WHERE id = $1`,
		id, status, at,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetApproval stores a moderation decision
func (r *Repository) SetApproval(ctx context.Context, c *Car) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE cars
		SET approval_status = $2, status = $3, rejection_reason = $4,
			published_at = $5, expires_at = $6, updated_at = $7
		WHERE id = $1`,
		c.ID, c.ApprovalStatus, c.Status, c.RejectionReason,
		c.PublishedAt, c.ExpiresAt, c.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetFeatured features a listing until the given time
func (r *Repository) SetFeatured(ctx context.Context, id uuid.UUID, until time.Time, ranking float64) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE cars
		SET is_featured = TRUE, featured_until = $2, boost_count = boost_count + 1,
			ranking_score = $3, updated_at = NOW()
		WHERE id = $1`,
		id, until, ranking,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RestoreFeatured puts back the featured state a listing had before a boost
func (r *Repository) RestoreFeatured(ctx context.Context, id uuid.UUID, featured bool, until *time.Time, ranking float64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE cars
		SET is_featured = $2, featured_until = $3, boost_count = GREATEST(boost_count - 1, 0),
			ranking_score = $4, updated_at = NOW()
		WHERE id = $1`,
		id, featured, until, ranking,
	)
	return err
}

// UpdateScores stores recomputed scores
func (r *Repository) UpdateScores(ctx context.Context, c *Car) error {
	_, err := r.db.Exec(ctx, `
		UPDATE cars
		SET completeness_score = $2, quality_score = $3, ranking_score = $4
		WHERE id = $1`,
		c.ID, c.CompletenessScore, c.QualityScore, c.RankingScore,
	)
	return err
}

// IncrementViews bumps the view counter
func (r *Repository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `UPDATE cars SET views_count = views_count + 1 WHERE id = $1`, id)
	return err
}

// CountOpenListings counts the seller's listings that use a plan slot
func (r *Repository) CountOpenListings(ctx context.Context, sellerID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM cars
		WHERE seller_id = $1 AND status IN ('draft', 'pending', 'active')`,
		sellerID,
	).Scan(&count)
	return count, err
}

// CountFeatured counts the seller's listings with a running boost
func (r *Repository) CountFeatured(ctx context.Context, sellerID uuid.UUID, now time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM cars
		WHERE seller_id = $1 AND is_featured
			AND (featured_until IS NULL OR featured_until > $2)
			AND status = 'active'`,
		sellerID, now,
	).Scan(&count)
	return count, err
}

// ListSellerCars lists a seller's own listings, newest first
func (r *Repository) ListSellerCars(ctx context.Context, sellerID uuid.UUID, status *Status, limit, offset int) ([]*Car, int64, error) {
	where := "c.seller_id = $1"
	args := []interface{}{sellerID}
	if status != nil {
		where += " AND c.status = $2"
		args = append(args, *status)
	} else {
		where += " AND c.status <> 'removed'"
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM cars c WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY c.created_at DESC LIMIT $%d OFFSET $%d`,
		carSelect, where, len(args)+1, len(args)+2)
	rows, err := r.db.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	cars, err := collectCars(rows)
	return cars, total, err
}

// ExpireListings closes approved listings whose expiry has passed
func (r *Repository) ExpireListings(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE cars SET status = 'expired', updated_at = $1
		WHERE status = 'active' AND expires_at IS NOT NULL AND expires_at <= $1`,
		now,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ========================================
// SEARCH
// ========================================

// buildSearchFilters constructs the WHERE clause for a public search.
// $1 is always the current time.
func buildSearchFilters(f *SearchFilters, now time.Time) (string, []interface{}, int) {
	where := []string{publicClause}
	args := []interface{}{now}
	argIdx := 2

	add := func(clause string, value interface{}) {
		where = append(where, fmt.Sprintf(clause, argIdx))
		args = append(args, value)
		argIdx++
	}

	if f.Query != nil {
		pattern := "%" + escapeLike(*f.Query) + "%"
		where = append(where, fmt.Sprintf("(c.title ILIKE $%d OR c.description ILIKE $%d)", argIdx, argIdx))
		args = append(args, pattern)
		argIdx++
	}
	if f.BrandID != nil {
		add("c.brand_id = $%d", *f.BrandID)
	}
	if f.ModelID != nil {
		add("c.model_id = $%d", *f.ModelID)
	}
	if f.CategoryID != nil {
		add("c.category_id = $%d", *f.CategoryID)
	}
	if f.CityID != nil {
		add("c.city_id = $%d", *f.CityID)
	}
	if f.MinPrice != nil {
		add("c.price >= $%d", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add("c.price <= $%d", *f.MaxPrice)
	}
	if f.MinYear != nil {
		add("c.year >= $%d", *f.MinYear)
	}
	if f.MaxYear != nil {
		add("c.year <= $%d", *f.MaxYear)
	}
	if f.MinMileage != nil {
		add("c.mileage >= $%d", *f.MinMileage)
	}
	if f.MaxMileage != nil {
		add("c.mileage <= $%d", *f.MaxMileage)
	}
	if f.FuelType != nil {
		add("c.fuel_type = $%d", *f.FuelType)
	}
	if f.Transmission != nil {
		add("c.transmission = $%d", *f.Transmission)
	}
	if f.Condition != nil {
		add("c.condition = $%d", *f.Condition)
	}
	if f.Negotiable != nil {
		add("c.negotiable = $%d", *f.Negotiable)
	}
	if f.FinancingAvailable != nil {
		add("c.financing_available = $%d", *f.FinancingAvailable)
	}
	if f.TradeInAccepted != nil {
		add("c.trade_in_accepted = $%d", *f.TradeInAccepted)
	}
	if f.FeaturedOnly {
		where = append(where, "c.is_featured AND (c.featured_until IS NULL OR c.featured_until > $1)")
	}

	return strings.Join(where, " AND "), args, argIdx
}

// orderClause maps a validated sort key to SQL. Distance sorts happen in
// memory, so the candidates come back newest first.
func orderClause(f *SearchFilters) string {
	column := "c.created_at"
	if f.SortBy.IsValid() {
		column = "c." + string(f.SortBy)
	}
	dir := "ASC"
	if f.SortDesc || f.SortBy == SortDistance {
		dir = "DESC"
	}
	return fmt.Sprintf("ORDER BY %s %s, c.id", column, dir)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// SearchCars runs a non-geographic search with SQL paging
func (r *Repository) SearchCars(ctx context.Context, f *SearchFilters, now time.Time) ([]*Car, int64, error) {
	where, args, argIdx := buildSearchFilters(f, now)

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM cars c WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []*Car{}, 0, nil
	}

	query := fmt.Sprintf(`%s WHERE %s %s LIMIT $%d OFFSET $%d`,
		carSelect, where, orderClause(f), argIdx, argIdx+1)
	rows, err := r.db.Query(ctx, query, append(args, f.PageSize, f.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	cars, err := collectCars(rows)
	return cars, total, err
}

// SearchCandidates returns public listings inside the bounding box, capped at limit
func (r *Repository) SearchCandidates(ctx context.Context, f *SearchFilters, box geo.Box, now time.Time, limit int) ([]*Car, error) {
	where, args, argIdx := buildSearchFilters(f, now)
	where += fmt.Sprintf(" AND c.latitude BETWEEN $%d AND $%d AND c.longitude BETWEEN $%d AND $%d",
		argIdx, argIdx+1, argIdx+2, argIdx+3)
	args = append(args, box.MinLat, box.MaxLat, box.MinLon, box.MaxLon)
	argIdx += 4

	query := fmt.Sprintf(`%s WHERE %s %s LIMIT $%d`, carSelect, where, orderClause(f), argIdx)
	rows, err := r.db.Query(ctx, query, append(args, limit)...)
	if err != nil {
		return nil, err
	}
	return collectCars(rows)
}

// ========================================
// FAVORITES
// ========================================

// AddFavorite saves a listing for the user. It reports false when the
// listing was already saved.
func (r *Repository) AddFavorite(ctx context.Context, userID, carID uuid.UUID) (bool, error) {
	var added bool
	err := r.db.QueryRow(ctx, `
		WITH ins AS (
			INSERT INTO favorites (user_id, car_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
			RETURNING car_id
		), upd AS (
			UPDATE cars SET favorites_count = favorites_count + 1
			WHERE id IN (SELECT car_id FROM ins)
			RETURNING id
		)
		SELECT EXISTS (SELECT 1 FROM upd)`,
		userID, carID,
	).Scan(&added)
	return added, err
}

// RemoveFavorite unsaves a listing. It reports false when nothing was saved.
func (r *Repository) RemoveFavorite(ctx context.Context, userID, carID uuid.UUID) (bool, error) {
	var removed bool
	err := r.db.QueryRow(ctx, `
		WITH del AS (
			DELETE FROM favorites WHERE user_id = $1 AND car_id = $2
			RETURNING car_id
		), upd AS (
			UPDATE cars SET favorites_count = GREATEST(favorites_count - 1, 0)
			WHERE id IN (SELECT car_id FROM del)
			RETURNING id
		)
		SELECT EXISTS (SELECT 1 FROM upd)`,
		userID, carID,
	).Scan(&removed)
	return removed, err
}

// ListFavorites lists the user's saved listings, most recently saved first
func (r *Repository) ListFavorites(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Car, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM favorites WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, carSelect+`
		JOIN favorites f ON f.car_id = c.id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC
		LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	cars, err := collectCars(rows)
	return cars, total, err
}

// ========================================
// IMAGES
// ========================================

// AddImage records an uploaded photo and returns the new image count
func (r *Repository) AddImage(ctx context.Context, img *CarImage) (int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var count int
	err = tx.QueryRow(ctx, `
		UPDATE cars SET images_count = images_count + 1, updated_at = $2
		WHERE id = $1
		RETURNING images_count`,
		img.CarID, img.CreatedAt,
	).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}

	if img.IsPrimary {
		if _, err := tx.Exec(ctx, `UPDATE car_images SET is_primary = FALSE WHERE car_id = $1`, img.CarID); err != nil {
			return 0, err
		}
	}

	img.Position = count - 1
	_, err = tx.Exec(ctx, `
		INSERT INTO car_images (id, car_id, storage_key, url, is_primary, position, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		img.ID, img.CarID, img.StorageKey, img.URL, img.IsPrimary, img.Position, img.CreatedAt,
	)
	if err != nil {
		return 0, err
	}

	return count, tx.Commit(ctx)
}

// DeleteImage removes a photo and returns it with the new image count
func (r *Repository) DeleteImage(ctx context.Context, carID, imageID uuid.UUID) (*CarImage, int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback(ctx)

	img := &CarImage{}
	err = tx.QueryRow(ctx, `
		DELETE FROM car_images WHERE id = $1 AND car_id = $2
		RETURNING id, car_id, storage_key, url, is_primary, position, created_at`,
		imageID, carID,
	).Scan(&img.ID, &img.CarID, &img.StorageKey, &img.URL, &img.IsPrimary, &img.Position, &img.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, err
	}

	var count int
	err = tx.QueryRow(ctx, `
		UPDATE cars SET images_count = GREATEST(images_count - 1, 0), updated_at = NOW()
		WHERE id = $1
		RETURNING images_count`,
		carID,
	).Scan(&count)
	if err != nil {
		return nil, 0, err
	}

	return img, count, tx.Commit(ctx)
}

// ========================================
// REFERENCE DATA
// ========================================

// ListBrands lists brands, popular ones first
func (r *Repository) ListBrands(ctx context.Context) ([]*Brand, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, slug, country, is_popular FROM brands ORDER BY is_popular DESC, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	brands := []*Brand{}
	for rows.Next() {
		b := &Brand{}
		if err := rows.Scan(&b.ID, &b.Name, &b.Slug, &b.Country, &b.IsPopular); err != nil {
			return nil, err
		}
		brands = append(brands, b)
	}
	return brands, rows.Err()
}

// ListModels lists a brand's models
func (r *Repository) ListModels(ctx context.Context, brandID uuid.UUID) ([]*CarModel, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, brand_id, name, slug, body_type FROM car_models
		WHERE brand_id = $1 ORDER BY name`, brandID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	models := []*CarModel{}
	for rows.Next() {
		m := &CarModel{}
		if err := rows.Scan(&m.ID, &m.BrandID, &m.Name, &m.Slug, &m.BodyType); err != nil {
			return nil, err
		}
		models = append(models, m)
	}
	return models, rows.Err()
}

// GetModel retrieves one model
func (r *Repository) GetModel(ctx context.Context, id uuid.UUID) (*CarModel, error) {
	m := &CarModel{}
	err := r.db.QueryRow(ctx, `SELECT id, brand_id, name, slug, body_type FROM car_models WHERE id = $1`, id).
		Scan(&m.ID, &m.BrandID, &m.Name, &m.Slug, &m.BodyType)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return m, err
}

// ListCategories lists listing categories
func (r *Repository) ListCategories(ctx context.Context) ([]*Category, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, slug FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []*Category{}
	for rows.Next() {
		c := &Category{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

const cityColumns = `id, name, province, region, latitude, longitude`

// ListCities lists cities by region
func (r *Repository) ListCities(ctx context.Context) ([]*City, error) {
	rows, err := r.db.Query(ctx, `SELECT `+cityColumns+` FROM cities ORDER BY region, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cities := []*City{}
	for rows.Next() {
		c := &City{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Province, &c.Region, &c.Latitude, &c.Longitude); err != nil {
			return nil, err
		}
		cities = append(cities, c)
	}
	return cities, rows.Err()
}

// GetCity retrieves one city
func (r *Repository) GetCity(ctx context.Context, id uuid.UUID) (*City, error) {
	c := &City{}
	err := r.db.QueryRow(ctx, `SELECT `+cityColumns+` FROM cities WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Province, &c.Region, &c.Latitude, &c.Longitude)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}
