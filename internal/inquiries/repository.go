package inquiries

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const inquiryColumns = `
	i.id, i.car_id, i.buyer_id, i.seller_id, i.subject, i.message, i.buyer_phone,
	i.offered_price, i.status, i.created_at, i.updated_at, i.last_response_at, c.title`

// Repository handles inquiry data access
type Repository struct {
	db *pgxpool.Pool
}

var _ RepositoryInterface = (*Repository)(nil)

// NewRepository creates a new inquiry repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// GetCarSummary loads the listing fields an inquiry checks
func (r *Repository) GetCarSummary(ctx context.Context, carID uuid.UUID) (*CarSummary, error) {
	car := &CarSummary{}
	err := r.db.QueryRow(ctx, `
		SELECT id, seller_id, title, status, approval_status, expires_at
		FROM cars WHERE id = $1`, carID,
	).Scan(&car.ID, &car.SellerID, &car.Title, &car.Status, &car.ApprovalStatus, &car.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get car: %w", err)
	}
	return car, nil
}

// CreateInquiry stores an inquiry and bumps the listing's contact counter
func (r *Repository) CreateInquiry(ctx context.Context, inq *Inquiry) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO inquiries (id, car_id, buyer_id, seller_id, subject, message, buyer_phone,
			offered_price, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)`,
		inq.ID, inq.CarID, inq.BuyerID, inq.SellerID, inq.Subject, inq.Message, inq.BuyerPhone,
		inq.OfferedPrice, inq.Status, inq.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create inquiry: %w", err)
	}

	if _, err := tx.Exec(ctx, `UPDATE cars SET contacts_count = contacts_count + 1 WHERE id = $1`, inq.CarID); err != nil {
		return fmt.Errorf("failed to count contact: %w", err)
	}

	return tx.Commit(ctx)
}

// GetInquiry loads an inquiry without its responses
func (r *Repository) GetInquiry(ctx context.Context, id uuid.UUID) (*Inquiry, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+inquiryColumns+`
		FROM inquiries i
		JOIN cars c ON c.id = i.car_id
		WHERE i.id = $1`, id)

	inq, err := scanInquiry(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get inquiry: %w", err)
	}
	return inq, nil
}

// ListResponses returns a thread's replies, oldest first
func (r *Repository) ListResponses(ctx context.Context, inquiryID uuid.UUID) ([]*Response, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, inquiry_id, responder_id, message, created_at
		FROM inquiry_responses
		WHERE inquiry_id = $1
		ORDER BY created_at`, inquiryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var responses []*Response
	for rows.Next() {
		resp := &Response{}
		if err := rows.Scan(&resp.ID, &resp.InquiryID, &resp.ResponderID, &resp.Message, &resp.CreatedAt); err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	return responses, rows.Err()
}

// ListInquiries lists the inquiries a user received as seller or sent as buyer
func (r *Repository) ListInquiries(ctx context.Context, userID uuid.UUID, box Box, status *Status, limit, offset int) ([]*Inquiry, int64, error) {
	where := "i.buyer_id = $1"
	if box == BoxReceived {
		where = "i.seller_id = $1"
	}
	args := []interface{}{userID}
	if status != nil {
		where += " AND i.status = $2"
		args = append(args, *status)
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM inquiries i WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count inquiries: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM inquiries i
		JOIN cars c ON c.id = i.car_id
		WHERE %s
		ORDER BY i.updated_at DESC, i.id
		LIMIT $%d OFFSET $%d`, inquiryColumns, where, len(args)+1, len(args)+2)
	rows, err := r.db.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list inquiries: %w", err)
	}
	defer rows.Close()

	var items []*Inquiry
	for rows.Next() {
		inq, err := scanInquiry(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, inq)
	}
	return items, total, rows.Err()
}

// UpdateStatus moves an inquiry to status
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status, at time.Time) error {
	tag, err := r.db.Exec(ctx, `UPDATE inquiries SET status = $1, updated_at = $2 WHERE id = $3`, status, at, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddResponse stores a reply and updates the thread. Seller replies also
// stamp last_response_at, which the response rate is computed from.
func (r *Repository) AddResponse(ctx context.Context, resp *Response, status Status, sellerReply bool) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO inquiry_responses (id, inquiry_id, responder_id, message, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		resp.ID, resp.InquiryID, resp.ResponderID, resp.Message, resp.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add response: %w", err)
	}

	update := `UPDATE inquiries SET status = $1, updated_at = $2 WHERE id = $3`
	if sellerReply {
		update = `UPDATE inquiries SET status = $1, updated_at = $2, last_response_at = $2 WHERE id = $3`
	}
	if _, err := tx.Exec(ctx, update, status, resp.CreatedAt, resp.InquiryID); err != nil {
		return fmt.Errorf("failed to update inquiry: %w", err)
	}

	return tx.Commit(ctx)
}

// GetResponseStats counts the inquiries a seller received and answered
func (r *Repository) GetResponseStats(ctx context.Context, sellerID uuid.UUID) (*ResponseStats, error) {
	stats := &ResponseStats{}
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(last_response_at)
		FROM inquiries
		WHERE seller_id = $1`, sellerID,
	).Scan(&stats.Received, &stats.Answered)
	if err != nil {
		return nil, fmt.Errorf("failed to get response stats: %w", err)
	}
	return stats, nil
}

func scanInquiry(scan func(dest ...interface{}) error) (*Inquiry, error) {
	inq := &Inquiry{}
	err := scan(
		&inq.ID,
		&inq.CarID,
		&inq.BuyerID,
		&inq.SellerID,
		&inq.Subject,
		&inq.Message,
		&inq.BuyerPhone,
		&inq.OfferedPrice,
		&inq.Status,
		&inq.CreatedAt,
		&inq.UpdatedAt,
		&inq.LastResponseAt,
		&inq.CarTitle,
	)
	if err != nil {
		return nil, err
	}
	return inq, nil
}
