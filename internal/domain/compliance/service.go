package compliance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fundflow/fundflow-api/internal/domain/audit"
	"github.com/fundflow/fundflow-api/internal/domain/campaign"
)

// AuditLogger records state-changing actions after they commit.
type AuditLogger interface {
	LogSuccess(ctx context.Context, action audit.Action, entityType string, entityID uuid.UUID, description string, opts audit.Options)
}

// Service evaluates the rule set against campaign snapshots and persists
// immutable runs. A run's verdict is fixed at evaluation time; the only
// later change is the admin override flip.
type Service struct {
	repo      Repository
	campaigns campaign.Repository
	auditLog  AuditLogger
	now       func() time.Time
}

// NewService creates compliance service
func NewService(repo Repository, campaigns campaign.Repository, auditLog AuditLogger) *Service {
	return &Service{
		repo:      repo,
		campaigns: campaigns,
		auditLog:  auditLog,
		now:       time.Now,
	}
}

// RunChecks evaluates the full rule set against the campaign's current
// snapshot and persists a new run with its results. Campaigns past the
// approval gate are not re-checked.
func (s *Service) RunChecks(ctx context.Context, campaignID uuid.UUID, runBy *uuid.UUID) (*Run, error) {
	c, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		if errors.Is(err, campaign.ErrNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, err
	}
	if !c.IsPreApproval() {
		return nil, ErrInvalidCampaignState
	}

	now := s.now()
	run := buildRun(c, now, runBy)

	if err := s.repo.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("persist compliance run: %w", err)
	}

	s.auditLog.LogSuccess(ctx, audit.ActionComplianceRun, audit.EntityComplianceRun, run.ID,
		fmt.Sprintf("compliance run completed with %d blocker(s)", run.BlockerCount),
		audit.Options{
			ActorID:       runBy,
			EntityOwnerID: &c.CreatorID,
			Metadata: map[string]interface{}{
				"campaign_id":    c.ID.String(),
				"total_checks":   run.TotalChecks,
				"failed_checks":  run.FailedChecks,
				"warning_checks": run.WarningChecks,
				"blocker_count":  run.BlockerCount,
				"can_approve":    run.CanApprove,
			},
		})

	return run, nil
}

// buildRun evaluates the rule set and assembles the aggregate. Skipped
// checks count toward the total but not toward pass/fail/warn tallies.
func buildRun(c *campaign.Campaign, now time.Time, runBy *uuid.UUID) *Run {
	rules := RuleSet()
	run := &Run{
		ID:          uuid.New(),
		CampaignID:  c.ID,
		TotalChecks: len(rules),
		CreatedAt:   now,
	}
	if runBy != nil {
		run.RunByID = uuid.NullUUID{UUID: *runBy, Valid: true}
	}

	for _, rule := range rules {
		outcome := rule.Check(c, now)

		res := &CheckResult{
			ID:           uuid.New(),
			CampaignID:   c.ID,
			RunID:        run.ID,
			RuleID:       rule.ID,
			RuleName:     rule.Name,
			RuleCategory: rule.Category,
			RuleSeverity: rule.Severity,
			Status:       outcome.Status,
			Message:      outcome.Message,
			CreatedAt:    now,
		}
		if outcome.Evidence != "" {
			res.Evidence = sql.NullString{String: outcome.Evidence, Valid: true}
		}
		if runBy != nil {
			res.CheckedByID = uuid.NullUUID{UUID: *runBy, Valid: true}
		}
		run.Results = append(run.Results, res)

		switch outcome.Status {
		case StatusPass:
			run.PassedChecks++
		case StatusFail:
			run.FailedChecks++
			if rule.Severity == SeverityBlocker {
				run.BlockerCount++
			}
		case StatusWarn:
			run.WarningChecks++
		}
	}

	run.CanApprove = run.BlockerCount == 0
	return run
}

// GetLatestRun returns the most recent run for a campaign with its results
func (s *Service) GetLatestRun(ctx context.Context, campaignID uuid.UUID) (*Run, error) {
	run, err := s.repo.GetLatestRun(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	return s.attachResults(ctx, run)
}

// GetRun returns a single run by id with its results
func (s *Service) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	run, err := s.repo.GetRunByID(ctx, runID)
	if err != nil {
		return nil, err
	}
	return s.attachResults(ctx, run)
}

// GetRunHistory returns all runs for a campaign, newest first, without results
func (s *Service) GetRunHistory(ctx context.Context, campaignID uuid.UUID) ([]*Run, error) {
	return s.repo.ListRunsByCampaign(ctx, campaignID)
}

func (s *Service) attachResults(ctx context.Context, run *Run) (*Run, error) {
	results, err := s.repo.ListResultsByRun(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	run.Results = results
	return run, nil
}

// CanCampaignBeApproved answers the approval gate from the latest run. A
// campaign with no runs cannot be approved.
func (s *Service) CanCampaignBeApproved(ctx context.Context, campaignID uuid.UUID) (bool, string, error) {
	run, err := s.repo.GetLatestRun(ctx, campaignID)
	if errors.Is(err, ErrNoRuns) {
		return false, "no compliance checks have been run", nil
	}
	if err != nil {
		return false, "", err
	}

	switch {
	case run.CanApprove && run.IsOverridden:
		return true, "blockers overridden by admin", nil
	case run.CanApprove:
		return true, "all blocker checks passed", nil
	default:
		return false, fmt.Sprintf("%d blocker issue(s) outstanding", run.BlockerCount), nil
	}
}

// OverrideBlockers flips a failing run to approvable. One-way: an
// overridden run cannot be un-overridden, only superseded by a new run.
func (s *Service) OverrideBlockers(ctx context.Context, runID uuid.UUID, reason string, adminID uuid.UUID) (*Run, error) {
	run, err := s.repo.GetRunByID(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run.CanApprove {
		return nil, ErrNothingToOverride
	}
	if len(strings.TrimSpace(reason)) < 10 {
		return nil, ErrReasonTooShort
	}

	if err := s.repo.OverrideRun(ctx, runID, strings.TrimSpace(reason), adminID); err != nil {
		return nil, err
	}

	s.auditLog.LogSuccess(ctx, audit.ActionComplianceOverride, audit.EntityComplianceRun, runID,
		fmt.Sprintf("%d blocker(s) overridden", run.BlockerCount),
		audit.Options{
			ActorID: &adminID,
			OldValues: map[string]interface{}{
				"can_approve":   false,
				"blocker_count": run.BlockerCount,
			},
			NewValues: map[string]interface{}{
				"can_approve":   true,
				"is_overridden": true,
			},
			Metadata: map[string]interface{}{
				"campaign_id": run.CampaignID.String(),
				"reason":      strings.TrimSpace(reason),
			},
		})

	return s.GetRun(ctx, runID)
}

// AddModeratorNote attaches a free-form note to a check result.
// Last write wins.
func (s *Service) AddModeratorNote(ctx context.Context, resultID uuid.UUID, note string, moderatorID uuid.UUID) (*CheckResult, error) {
	if err := s.repo.UpdateModeratorNote(ctx, resultID, note, moderatorID); err != nil {
		return nil, err
	}

	res, err := s.repo.GetResult(ctx, resultID)
	if err != nil {
		return nil, err
	}

	s.auditLog.LogSuccess(ctx, audit.ActionComplianceNote, audit.EntityCheckResult, resultID,
		fmt.Sprintf("moderator note added to %s", res.RuleID),
		audit.Options{
			ActorID: &moderatorID,
			Metadata: map[string]interface{}{
				"campaign_id": res.CampaignID.String(),
				"run_id":      res.RunID.String(),
			},
		})

	return res, nil
}
