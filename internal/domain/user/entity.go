package user

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Role represents user role in the system (matches user_role enum)
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// User represents a user account (matches users table)
type User struct {
	ID            uuid.UUID       `db:"id"`
	Email         string          `db:"email"`
	PasswordHash  string          `db:"password_hash"`
	DisplayName   string          `db:"display_name"`
	Role          Role            `db:"role"`
	WalletBalance decimal.Decimal `db:"wallet_balance"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// IsModerator returns true if user can review compliance runs
func (u *User) IsModerator() bool {
	return u.Role == RoleModerator || u.Role == RoleAdmin
}

// IsAdmin returns true if user is an admin
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
