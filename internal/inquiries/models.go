package inquiries

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an inquiry or its listing does not exist
var ErrNotFound = errors.New("inquiry not found")

// Status is where an inquiry thread stands
type Status string

const (
	StatusNew      Status = "new"
	StatusRead     Status = "read"
	StatusReplied  Status = "replied"
	StatusClosed   Status = "closed"
	StatusArchived Status = "archived"
)

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	switch s {
	case StatusNew, StatusRead, StatusReplied, StatusClosed, StatusArchived:
		return true
	}
	return false
}

// Open reports whether the thread still accepts replies
func (s Status) Open() bool {
	return s != StatusClosed && s != StatusArchived
}

// Box selects which side of the inbox to list
type Box string

const (
	BoxReceived Box = "received"
	BoxSent     Box = "sent"
)

// Inquiry is a buyer's message thread about a listing
type Inquiry struct {
	ID             uuid.UUID   `json:"id"`
	CarID          uuid.UUID   `json:"car_id"`
	BuyerID        uuid.UUID   `json:"buyer_id"`
	SellerID       uuid.UUID   `json:"seller_id"`
	Subject        string      `json:"subject"`
	Message        string      `json:"message"`
	BuyerPhone     *string     `json:"buyer_phone,omitempty"`
	OfferedPrice   *float64    `json:"offered_price,omitempty"`
	Status         Status      `json:"status"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
	LastResponseAt *time.Time  `json:"last_response_at,omitempty"`
	CarTitle       string      `json:"car_title,omitempty"`
	Responses      []*Response `json:"responses,omitempty"`
}

// IsParticipant reports whether userID is the buyer or the seller
func (i *Inquiry) IsParticipant(userID uuid.UUID) bool {
	return i.BuyerID == userID || i.SellerID == userID
}

// Response is one reply in an inquiry thread
type Response struct {
	ID          uuid.UUID `json:"id"`
	InquiryID   uuid.UUID `json:"inquiry_id"`
	ResponderID uuid.UUID `json:"responder_id"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"created_at"`
}

// CarSummary is the slice of a listing an inquiry needs
type CarSummary struct {
	ID             uuid.UUID
	SellerID       uuid.UUID
	Title          string
	Status         string
	ApprovalStatus string
	ExpiresAt      *time.Time
}

// Available reports whether buyers may contact the seller at now
func (c *CarSummary) Available(now time.Time) bool {
	return c.Status == "active" && c.ApprovalStatus == "approved" &&
		(c.ExpiresAt == nil || c.ExpiresAt.After(now))
}

// ResponseStats counts a seller's inquiries and how many got a reply
type ResponseStats struct {
	Received int
	Answered int
}

// CreateInquiryRequest starts a thread
type CreateInquiryRequest struct {
	CarID        uuid.UUID `json:"car_id" binding:"required"`
	Subject      string    `json:"subject" binding:"required,min=3,max=200"`
	Message      string    `json:"message" binding:"required,min=10,max=5000"`
	BuyerPhone   *string   `json:"buyer_phone,omitempty" binding:"omitempty,ph_phone"`
	OfferedPrice *float64  `json:"offered_price,omitempty" binding:"omitempty,gt=0"`
}

// RespondRequest adds a reply to a thread
type RespondRequest struct {
	Message string `json:"message" binding:"required,min=1,max=5000"`
}
