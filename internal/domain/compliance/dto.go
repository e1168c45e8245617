package compliance

// OverrideRequest is the admin payload for overriding a run's blockers
type OverrideRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// NoteRequest attaches a moderator note to a single check result
type NoteRequest struct {
	Note string `json:"note" validate:"required,max=1000"`
}

// ApprovalStatusResponse reports whether a campaign can currently be approved
type ApprovalStatusResponse struct {
	CampaignID string `json:"campaign_id"`
	CanApprove bool   `json:"can_approve"`
	Reason     string `json:"reason"`
}

// RuleInfo describes one rule of the fixed rule set
type RuleInfo struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	Severity    Severity `json:"severity"`
}
