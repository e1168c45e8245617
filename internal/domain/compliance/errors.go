package compliance

import "errors"

var (
	ErrCampaignNotFound     = errors.New("campaign not found")
	ErrRunNotFound          = errors.New("compliance run not found")
	ErrResultNotFound       = errors.New("check result not found")
	ErrNoRuns               = errors.New("no compliance runs for campaign")
	ErrInvalidCampaignState = errors.New("campaign is not awaiting approval")
	ErrNothingToOverride    = errors.New("run has no blockers to override")
	ErrReasonTooShort       = errors.New("override reason must be at least 10 characters")
)
