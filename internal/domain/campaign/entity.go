package campaign

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents campaign lifecycle state (matches campaign_status enum)
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Campaign represents a crowdfunding campaign
type Campaign struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	CreatorID   uuid.UUID       `db:"creator_id" json:"creator_id"`
	Name        string          `db:"name" json:"name"`
	Description string          `db:"description" json:"description"`
	Category    string          `db:"category" json:"category"`
	Goal        decimal.Decimal `db:"goal" json:"goal"`
	// ImageData holds the campaign image as base64, stored inline.
	ImageData     sql.NullString  `db:"image_data" json:"image_data,omitempty"`
	EndDate       sql.NullTime    `db:"end_date" json:"end_date,omitempty"`
	Status        Status          `db:"status" json:"status"`
	CurrentAmount decimal.Decimal `db:"current_amount" json:"current_amount"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// IsPreApproval returns true while compliance checks are still meaningful
func (c *Campaign) IsPreApproval() bool {
	return c.Status == StatusDraft || c.Status == StatusSubmitted
}

// AllowedCategories lists the categories campaigns may use.
// The category compliance rule warns on anything else.
func AllowedCategories() []string {
	return []string{
		"technology",
		"art",
		"music",
		"film",
		"games",
		"publishing",
		"food",
		"fashion",
		"health",
		"education",
		"community",
		"environment",
	}
}
