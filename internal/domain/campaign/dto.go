package campaign

import "time"

// CreateRequest represents a new campaign payload
type CreateRequest struct {
	Name        string     `json:"name" validate:"required,max=200"`
	Description string     `json:"description" validate:"required"`
	Category    string     `json:"category" validate:"required,max=50"`
	Goal        string     `json:"goal" validate:"required,money"`
	ImageData   string     `json:"image_data,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
}

// UpdateRequest represents a draft campaign update; nil fields are left unchanged
type UpdateRequest struct {
	Name        *string    `json:"name,omitempty" validate:"omitempty,max=200"`
	Description *string    `json:"description,omitempty"`
	Category    *string    `json:"category,omitempty" validate:"omitempty,max=50"`
	Goal        *string    `json:"goal,omitempty" validate:"omitempty,money"`
	ImageData   *string    `json:"image_data,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
}

// RejectRequest carries the moderator's rejection reason
type RejectRequest struct {
	Reason string `json:"reason" validate:"required,min=10,max=1000"`
}

// CancelRequest carries the cancellation reason propagated to refunds
type CancelRequest struct {
	Reason string `json:"reason" validate:"required,min=10,max=1000"`
}

// ListFilter filters campaign listings
type ListFilter struct {
	Status    Status `json:"status,omitempty"`
	CreatorID string `json:"creator_id,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Offset    int    `json:"offset,omitempty"`
}
