package compliance

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Category groups rules by the concern they inspect
type Category string

const (
	CategoryContent   Category = "content"
	CategoryFinancial Category = "financial"
	CategoryMedia     Category = "media"
	CategoryLegal     Category = "legal"
	CategoryIdentity  Category = "identity"
)

// Severity ranks how serious a failing rule is. Only FAIL results from
// blocker-severity rules count toward a run's blocker count.
type Severity string

const (
	SeverityBlocker Severity = "blocker"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// CheckStatus is the outcome of a single rule evaluation
type CheckStatus string

const (
	StatusPass    CheckStatus = "pass"
	StatusFail    CheckStatus = "fail"
	StatusWarn    CheckStatus = "warn"
	StatusSkipped CheckStatus = "skipped"
)

// Run represents one full evaluation of the rule set against a campaign.
// Totals are immutable after creation; the only permitted transition is
// the one-way override flip (can_approve false→true, is_overridden
// false→true). Runs are never deleted or re-evaluated in place.
type Run struct {
	ID             uuid.UUID      `db:"id" json:"id"`
	CampaignID     uuid.UUID      `db:"campaign_id" json:"campaign_id"`
	TotalChecks    int            `db:"total_checks" json:"total_checks"`
	PassedChecks   int            `db:"passed_checks" json:"passed_checks"`
	FailedChecks   int            `db:"failed_checks" json:"failed_checks"`
	WarningChecks  int            `db:"warning_checks" json:"warning_checks"`
	BlockerCount   int            `db:"blocker_count" json:"blocker_count"`
	CanApprove     bool           `db:"can_approve" json:"can_approve"`
	IsOverridden   bool           `db:"is_overridden" json:"is_overridden"`
	OverrideReason sql.NullString `db:"override_reason" json:"override_reason,omitempty"`
	OverriddenByID uuid.NullUUID  `db:"overridden_by_id" json:"overridden_by_id,omitempty"`
	RunByID        uuid.NullUUID  `db:"run_by_id" json:"run_by_id,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`

	// Results are the check rows sharing this run's id, attached in-memory
	Results []*CheckResult `db:"-" json:"results,omitempty"`
}

// CheckResult represents a single rule's outcome within a run. Immutable
// except for the moderator-note mutation, which is last-write-wins.
type CheckResult struct {
	ID            uuid.UUID      `db:"id" json:"id"`
	CampaignID    uuid.UUID      `db:"campaign_id" json:"campaign_id"`
	RunID         uuid.UUID      `db:"run_id" json:"run_id"`
	RuleID        string         `db:"rule_id" json:"rule_id"`
	RuleName      string         `db:"rule_name" json:"rule_name"`
	RuleCategory  Category       `db:"rule_category" json:"rule_category"`
	RuleSeverity  Severity       `db:"rule_severity" json:"rule_severity"`
	Status        CheckStatus    `db:"status" json:"status"`
	Message       string         `db:"message" json:"message"`
	Evidence      sql.NullString `db:"evidence" json:"evidence,omitempty"`
	ModeratorNote sql.NullString `db:"moderator_note" json:"moderator_note,omitempty"`
	CheckedByID   uuid.NullUUID  `db:"checked_by_id" json:"checked_by_id,omitempty"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
}
