package wallet

// DepositRequest represents a wallet top-up payload.
// Amount positivity is enforced here, before the service is reached.
type DepositRequest struct {
	Amount            string `json:"amount" validate:"required,money"`
	ExternalReference string `json:"external_reference,omitempty" validate:"max=255"`
}

// ContributeRequest represents a campaign contribution payload
type ContributeRequest struct {
	CampaignID string `json:"campaign_id" validate:"required,uuid"`
	Amount     string `json:"amount" validate:"required,money"`
	Message    string `json:"message,omitempty" validate:"max=500"`
}

// WithdrawRequest represents a bank withdrawal payload
type WithdrawRequest struct {
	Amount      string `json:"amount" validate:"required,money"`
	BankAccount string `json:"bank_account" validate:"required,min=8,max=34"`
	Description string `json:"description,omitempty" validate:"max=255"`
}

// RefundRequest carries the refund reason shown to the contributor
type RefundRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

// BalanceResponse represents the wallet balance view
type BalanceResponse struct {
	Balance string `json:"balance"`
}
