package wallet

import "errors"

var (
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrInsufficientFunds    = errors.New("insufficient wallet balance")
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrContributionNotFound = errors.New("contribution not found")
	ErrAlreadyRefunded      = errors.New("contribution already refunded")
	ErrNotPending           = errors.New("transaction is not pending")
	ErrDuplicateReference   = errors.New("external reference already used")
	ErrUserNotFound         = errors.New("user not found")
)
