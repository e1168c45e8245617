package notification

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Level represents notification severity shown to the user
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

// Notification represents a user notification
type Notification struct {
	ID        uuid.UUID      `db:"id" json:"id"`
	UserID    uuid.UUID      `db:"user_id" json:"user_id"`
	Level     Level          `db:"level" json:"level"`
	Title     string         `db:"title" json:"title"`
	Message   string         `db:"message" json:"message"`
	ActionURL sql.NullString `db:"action_url" json:"action_url,omitempty"`
	IsRead    bool           `db:"is_read" json:"is_read"`
	ReadAt    sql.NullTime   `db:"read_at" json:"read_at,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}
