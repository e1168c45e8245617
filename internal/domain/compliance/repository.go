package compliance

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines compliance run persistence. Runs and their results
// are append-only; the only updates are the one-way override flip on a run
// and the moderator note on a result.
type Repository interface {
	// CreateRun persists the individual results and the aggregate run in a
	// single database transaction so a run can never exist without its rows.
	CreateRun(ctx context.Context, run *Run) error
	GetRunByID(ctx context.Context, id uuid.UUID) (*Run, error)
	GetLatestRun(ctx context.Context, campaignID uuid.UUID) (*Run, error)
	ListRunsByCampaign(ctx context.Context, campaignID uuid.UUID) ([]*Run, error)
	// OverrideRun flips can_approve and is_overridden; a run whose blockers
	// were already cleared or overridden is not touched.
	OverrideRun(ctx context.Context, runID uuid.UUID, reason string, adminID uuid.UUID) error

	ListResultsByRun(ctx context.Context, runID uuid.UUID) ([]*CheckResult, error)
	GetResult(ctx context.Context, id uuid.UUID) (*CheckResult, error)
	UpdateModeratorNote(ctx context.Context, resultID uuid.UUID, note string, moderatorID uuid.UUID) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates compliance repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateRun(ctx context.Context, run *Run) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, res := range run.Results {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO compliance_check_results
				(id, campaign_id, run_id, rule_id, rule_name, rule_category,
				 rule_severity, status, message, evidence, checked_by_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			res.ID, res.CampaignID, res.RunID, res.RuleID, res.RuleName,
			res.RuleCategory, res.RuleSeverity, res.Status, res.Message,
			res.Evidence, res.CheckedByID, res.CreatedAt)
		if err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO compliance_runs
			(id, campaign_id, total_checks, passed_checks, failed_checks,
			 warning_checks, blocker_count, can_approve, is_overridden,
			 run_by_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		run.ID, run.CampaignID, run.TotalChecks, run.PassedChecks,
		run.FailedChecks, run.WarningChecks, run.BlockerCount,
		run.CanApprove, run.IsOverridden, run.RunByID, run.CreatedAt)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *repository) GetRunByID(ctx context.Context, id uuid.UUID) (*Run, error) {
	var run Run
	err := r.db.GetContext(ctx, &run,
		`SELECT * FROM compliance_runs WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *repository) GetLatestRun(ctx context.Context, campaignID uuid.UUID) (*Run, error) {
	var run Run
	err := r.db.GetContext(ctx, &run, `
		SELECT * FROM compliance_runs
		WHERE campaign_id = $1
		ORDER BY created_at DESC
		LIMIT 1`, campaignID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoRuns
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *repository) ListRunsByCampaign(ctx context.Context, campaignID uuid.UUID) ([]*Run, error) {
	runs := []*Run{}
	err := r.db.SelectContext(ctx, &runs, `
		SELECT * FROM compliance_runs
		WHERE campaign_id = $1
		ORDER BY created_at DESC`, campaignID)
	return runs, err
}

func (r *repository) OverrideRun(ctx context.Context, runID uuid.UUID, reason string, adminID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE compliance_runs
		SET can_approve = TRUE,
		    is_overridden = TRUE,
		    override_reason = $1,
		    overridden_by_id = $2
		WHERE id = $3 AND can_approve = FALSE`,
		reason, adminID, runID)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNothingToOverride
	}
	return nil
}

func (r *repository) ListResultsByRun(ctx context.Context, runID uuid.UUID) ([]*CheckResult, error) {
	results := []*CheckResult{}
	err := r.db.SelectContext(ctx, &results, `
		SELECT * FROM compliance_check_results
		WHERE run_id = $1
		ORDER BY rule_category, rule_severity, rule_id`, runID)
	return results, err
}

func (r *repository) GetResult(ctx context.Context, id uuid.UUID) (*CheckResult, error) {
	var res CheckResult
	err := r.db.GetContext(ctx, &res,
		`SELECT * FROM compliance_check_results WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrResultNotFound
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *repository) UpdateModeratorNote(ctx context.Context, resultID uuid.UUID, note string, moderatorID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE compliance_check_results
		SET moderator_note = $1, checked_by_id = $2
		WHERE id = $3`,
		note, moderatorID, resultID)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrResultNotFound
	}
	return nil
}
