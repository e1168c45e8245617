package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Action identifies a state-changing operation in the audit trail
type Action string

const (
	ActionCampaignCreated   Action = "campaign.created"
	ActionCampaignSubmitted Action = "campaign.submitted"
	ActionCampaignApproved  Action = "campaign.approved"
	ActionCampaignRejected  Action = "campaign.rejected"
	ActionCampaignActivated Action = "campaign.activated"
	ActionCampaignCancelled Action = "campaign.cancelled"

	ActionWalletDeposit        Action = "wallet.deposit"
	ActionWalletContribution   Action = "wallet.contribution"
	ActionWalletWithdrawal     Action = "wallet.withdrawal_requested"
	ActionWalletRefund         Action = "wallet.refund"
	ActionTransactionCompleted Action = "wallet.transaction_completed"
	ActionTransactionFailed    Action = "wallet.transaction_failed"

	ActionComplianceRun      Action = "compliance.run_completed"
	ActionComplianceOverride Action = "compliance.blockers_overridden"
	ActionComplianceNote     Action = "compliance.note_added"
)

// Entity type tags for audit entries
const (
	EntityCampaign       = "campaign"
	EntityTransaction    = "wallet_transaction"
	EntityContribution   = "contribution"
	EntityComplianceRun  = "compliance_run"
	EntityCheckResult    = "compliance_check_result"
)

// Log represents an immutable audit trail entry
type Log struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	Action        Action          `db:"action" json:"action"`
	EntityType    string          `db:"entity_type" json:"entity_type"`
	EntityID      uuid.UUID       `db:"entity_id" json:"entity_id"`
	Description   string          `db:"description" json:"description"`
	ActorID       uuid.NullUUID   `db:"actor_id" json:"actor_id,omitempty"`
	EntityOwnerID uuid.NullUUID   `db:"entity_owner_id" json:"entity_owner_id,omitempty"`
	OldValues     json.RawMessage `db:"old_values" json:"old_values,omitempty"`
	NewValues     json.RawMessage `db:"new_values" json:"new_values,omitempty"`
	Metadata      json.RawMessage `db:"metadata" json:"metadata,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

// Options carries optional context for an audit entry
type Options struct {
	ActorID       *uuid.UUID
	EntityOwnerID *uuid.UUID
	OldValues     interface{}
	NewValues     interface{}
	Metadata      map[string]interface{}
}
