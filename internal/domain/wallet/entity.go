package wallet

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the kind of ledger movement (matches wallet_tx_type enum)
type TransactionType string

const (
	TypeDeposit              TransactionType = "deposit"
	TypeWithdrawal           TransactionType = "withdrawal"
	TypeCampaignContribution TransactionType = "campaign_contribution"
	TypeRefund               TransactionType = "refund"
	TypeBankWithdrawal       TransactionType = "bank_withdrawal"
)

// TransactionStatus represents a ledger entry's lifecycle state
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
	StatusCancelled TransactionStatus = "cancelled"
)

// Transaction represents a wallet ledger entry. Rows are never deleted;
// once completed the only permitted mutation is a status transition
// through CompleteTransaction or FailTransaction.
type Transaction struct {
	ID                uuid.UUID         `db:"id" json:"id"`
	UserID            uuid.UUID         `db:"user_id" json:"user_id"`
	Type              TransactionType   `db:"type" json:"type"`
	Amount            decimal.Decimal   `db:"amount" json:"amount"`
	Status            TransactionStatus `db:"status" json:"status"`
	CampaignID        uuid.NullUUID     `db:"campaign_id" json:"campaign_id,omitempty"`
	Description       sql.NullString    `db:"description" json:"description,omitempty"`
	ExternalReference sql.NullString    `db:"external_reference" json:"external_reference,omitempty"`
	CreatedAt         time.Time         `db:"created_at" json:"created_at"`
}

// IsCredit reports whether a completed transaction of this type adds funds
func (t *Transaction) IsCredit() bool {
	return t.Type == TypeDeposit || t.Type == TypeRefund
}

// Contribution links a completed campaign_contribution transaction to a
// campaign. is_refunded flips exactly once, from false to true.
type Contribution struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	CampaignID    uuid.UUID       `db:"campaign_id" json:"campaign_id"`
	ContributorID uuid.UUID       `db:"contributor_id" json:"contributor_id"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	WalletTxID    uuid.UUID       `db:"wallet_tx_id" json:"wallet_tx_id"`
	Message       sql.NullString  `db:"message" json:"message,omitempty"`
	IsRefunded    bool            `db:"is_refunded" json:"is_refunded"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}
