package campaign

import "errors"

var (
	ErrNotFound      = errors.New("campaign not found")
	ErrInvalidStatus = errors.New("operation not allowed in current campaign status")
	ErrNotOwner      = errors.New("campaign belongs to another user")
	ErrNotApprovable = errors.New("campaign cannot be approved")
)
