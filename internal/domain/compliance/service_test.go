package compliance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fundflow/fundflow-api/internal/domain/audit"
	"github.com/fundflow/fundflow-api/internal/domain/campaign"
)

type repoStub struct {
	runs    map[uuid.UUID]*Run
	byTime  []*Run
	results map[uuid.UUID]*CheckResult
}

func newRepoStub() *repoStub {
	return &repoStub{
		runs:    map[uuid.UUID]*Run{},
		results: map[uuid.UUID]*CheckResult{},
	}
}

func (r *repoStub) CreateRun(_ context.Context, run *Run) error {
	r.runs[run.ID] = run
	r.byTime = append(r.byTime, run)
	for _, res := range run.Results {
		r.results[res.ID] = res
	}
	return nil
}

func (r *repoStub) GetRunByID(_ context.Context, id uuid.UUID) (*Run, error) {
	run, ok := r.runs[id]
	if !ok {
		return nil, ErrRunNotFound
	}
	return run, nil
}

func (r *repoStub) GetLatestRun(_ context.Context, campaignID uuid.UUID) (*Run, error) {
	for i := len(r.byTime) - 1; i >= 0; i-- {
		if r.byTime[i].CampaignID == campaignID {
			return r.byTime[i], nil
		}
	}
	return nil, ErrNoRuns
}

func (r *repoStub) ListRunsByCampaign(_ context.Context, campaignID uuid.UUID) ([]*Run, error) {
	var runs []*Run
	for i := len(r.byTime) - 1; i >= 0; i-- {
		if r.byTime[i].CampaignID == campaignID {
			runs = append(runs, r.byTime[i])
		}
	}
	return runs, nil
}

func (r *repoStub) OverrideRun(_ context.Context, runID uuid.UUID, reason string, adminID uuid.UUID) error {
	run, ok := r.runs[runID]
	if !ok || run.CanApprove {
		return ErrNothingToOverride
	}
	run.CanApprove = true
	run.IsOverridden = true
	return nil
}

func (r *repoStub) ListResultsByRun(_ context.Context, runID uuid.UUID) ([]*CheckResult, error) {
	run, ok := r.runs[runID]
	if !ok {
		return nil, ErrRunNotFound
	}
	return run.Results, nil
}

func (r *repoStub) GetResult(_ context.Context, id uuid.UUID) (*CheckResult, error) {
	res, ok := r.results[id]
	if !ok {
		return nil, ErrResultNotFound
	}
	return res, nil
}

func (r *repoStub) UpdateModeratorNote(_ context.Context, resultID uuid.UUID, note string, _ uuid.UUID) error {
	res, ok := r.results[resultID]
	if !ok {
		return ErrResultNotFound
	}
	res.ModeratorNote.String = note
	res.ModeratorNote.Valid = true
	return nil
}

type campaignRepoStub struct {
	campaigns map[uuid.UUID]*campaign.Campaign
}

func (s *campaignRepoStub) Create(context.Context, *campaign.Campaign) error { return nil }
func (s *campaignRepoStub) GetByID(_ context.Context, id uuid.UUID) (*campaign.Campaign, error) {
	c, ok := s.campaigns[id]
	if !ok {
		return nil, campaign.ErrNotFound
	}
	return c, nil
}
func (s *campaignRepoStub) Update(context.Context, *campaign.Campaign) error { return nil }
func (s *campaignRepoStub) UpdateStatus(context.Context, uuid.UUID, campaign.Status) error {
	return nil
}
func (s *campaignRepoStub) List(context.Context, *campaign.ListFilter) ([]*campaign.Campaign, error) {
	return nil, nil
}
func (s *campaignRepoStub) AddContribution(context.Context, uuid.UUID, decimal.Decimal) error {
	return nil
}

type auditStub struct {
	actions []audit.Action
}

func (a *auditStub) LogSuccess(_ context.Context, action audit.Action, _ string, _ uuid.UUID, _ string, _ audit.Options) {
	a.actions = append(a.actions, action)
}

func newTestService(campaigns ...*campaign.Campaign) (*Service, *repoStub, *auditStub) {
	byID := map[uuid.UUID]*campaign.Campaign{}
	for _, c := range campaigns {
		byID[c.ID] = c
	}
	repo := newRepoStub()
	auditLog := &auditStub{}
	svc := NewService(repo, &campaignRepoStub{campaigns: byID}, auditLog)
	svc.now = func() time.Time { return testNow }
	return svc, repo, auditLog
}

func TestRunChecksCleanCampaignCanApprove(t *testing.T) {
	c := cleanCampaign()
	svc, _, auditLog := newTestService(c)

	run, err := svc.RunChecks(context.Background(), c.ID, nil)
	if err != nil {
		t.Fatalf("RunChecks: %v", err)
	}
	if run.BlockerCount != 0 {
		t.Errorf("expected 0 blockers, got %d", run.BlockerCount)
	}
	if !run.CanApprove {
		t.Error("expected can_approve on a clean campaign")
	}
	if run.TotalChecks != len(RuleSet()) {
		t.Errorf("expected %d total checks, got %d", len(RuleSet()), run.TotalChecks)
	}
	if len(run.Results) != run.TotalChecks {
		t.Errorf("expected %d results, got %d", run.TotalChecks, len(run.Results))
	}
	if got := run.PassedChecks + run.FailedChecks + run.WarningChecks; got > run.TotalChecks {
		t.Errorf("tallies %d exceed total %d", got, run.TotalChecks)
	}
	if len(auditLog.actions) != 1 || auditLog.actions[0] != audit.ActionComplianceRun {
		t.Errorf("expected one compliance.run_completed audit entry, got %v", auditLog.actions)
	}
}

func TestRunChecksFailingCampaignBlocksApproval(t *testing.T) {
	c := cleanCampaign()
	c.Name = "Test1"
	svc, _, _ := newTestService(c)

	run, err := svc.RunChecks(context.Background(), c.ID, nil)
	if err != nil {
		t.Fatalf("RunChecks: %v", err)
	}
	if run.CanApprove {
		t.Error("expected approval blocked")
	}
	if run.BlockerCount == 0 {
		t.Error("expected a nonzero blocker count")
	}

	ok, reason, err := svc.CanCampaignBeApproved(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("CanCampaignBeApproved: %v", err)
	}
	if ok {
		t.Error("approval gate should reject")
	}
	if reason == "" {
		t.Error("expected a reason")
	}
}

func TestRunChecksDeterministic(t *testing.T) {
	c := cleanCampaign()
	c.Description = "Short pitch only."
	svc, _, _ := newTestService(c)

	first, err := svc.RunChecks(context.Background(), c.ID, nil)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := svc.RunChecks(context.Background(), c.ID, nil)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if first.PassedChecks != second.PassedChecks ||
		first.FailedChecks != second.FailedChecks ||
		first.WarningChecks != second.WarningChecks ||
		first.BlockerCount != second.BlockerCount {
		t.Errorf("runs diverged: %+v vs %+v", first, second)
	}
}

func TestRunChecksRejectsWrongState(t *testing.T) {
	for _, status := range []campaign.Status{
		campaign.StatusApproved, campaign.StatusActive,
		campaign.StatusRejected, campaign.StatusCompleted, campaign.StatusCancelled,
	} {
		c := cleanCampaign()
		c.Status = status
		svc, _, _ := newTestService(c)

		if _, err := svc.RunChecks(context.Background(), c.ID, nil); !errors.Is(err, ErrInvalidCampaignState) {
			t.Errorf("status %s: expected ErrInvalidCampaignState, got %v", status, err)
		}
	}
}

func TestRunChecksUnknownCampaign(t *testing.T) {
	svc, _, _ := newTestService()
	if _, err := svc.RunChecks(context.Background(), uuid.New(), nil); !errors.Is(err, ErrCampaignNotFound) {
		t.Errorf("expected ErrCampaignNotFound, got %v", err)
	}
}

func TestApprovalGateWithoutRuns(t *testing.T) {
	svc, _, _ := newTestService()
	ok, reason, err := svc.CanCampaignBeApproved(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("CanCampaignBeApproved: %v", err)
	}
	if ok {
		t.Error("campaign with no runs must not be approvable")
	}
	if reason != "no compliance checks have been run" {
		t.Errorf("unexpected reason %q", reason)
	}
}

func TestApprovalGateUsesLatestRun(t *testing.T) {
	c := cleanCampaign()
	c.Name = "Test1"
	svc, _, _ := newTestService(c)

	if _, err := svc.RunChecks(context.Background(), c.ID, nil); err != nil {
		t.Fatalf("failing run: %v", err)
	}

	// the fix lands, a fresh run supersedes the failing one
	c.Name = "Community Garden Revival"
	if _, err := svc.RunChecks(context.Background(), c.ID, nil); err != nil {
		t.Fatalf("clean run: %v", err)
	}

	ok, _, err := svc.CanCampaignBeApproved(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("CanCampaignBeApproved: %v", err)
	}
	if !ok {
		t.Error("latest clean run should unblock approval")
	}
}

func TestOverrideBlockers(t *testing.T) {
	c := cleanCampaign()
	c.Name = "Test1"
	svc, _, auditLog := newTestService(c)

	run, err := svc.RunChecks(context.Background(), c.ID, nil)
	if err != nil {
		t.Fatalf("RunChecks: %v", err)
	}

	adminID := uuid.New()
	if _, err := svc.OverrideBlockers(context.Background(), run.ID, "short", adminID); !errors.Is(err, ErrReasonTooShort) {
		t.Errorf("expected ErrReasonTooShort, got %v", err)
	}

	overridden, err := svc.OverrideBlockers(context.Background(), run.ID, "verified offline with the creator", adminID)
	if err != nil {
		t.Fatalf("OverrideBlockers: %v", err)
	}
	if !overridden.CanApprove || !overridden.IsOverridden {
		t.Errorf("expected overridden approvable run, got %+v", overridden)
	}

	ok, reason, err := svc.CanCampaignBeApproved(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("CanCampaignBeApproved: %v", err)
	}
	if !ok || reason != "blockers overridden by admin" {
		t.Errorf("expected override to open the gate, got ok=%v reason=%q", ok, reason)
	}

	found := false
	for _, a := range auditLog.actions {
		if a == audit.ActionComplianceOverride {
			found = true
		}
	}
	if !found {
		t.Error("expected compliance.blockers_overridden audit entry")
	}
}

func TestOverrideCleanRunRejected(t *testing.T) {
	c := cleanCampaign()
	svc, _, _ := newTestService(c)

	run, err := svc.RunChecks(context.Background(), c.ID, nil)
	if err != nil {
		t.Fatalf("RunChecks: %v", err)
	}

	if _, err := svc.OverrideBlockers(context.Background(), run.ID, "nothing to override here", uuid.New()); !errors.Is(err, ErrNothingToOverride) {
		t.Errorf("expected ErrNothingToOverride, got %v", err)
	}
}

// Guard order is lookup, state, then reason: callers learn about a missing
// or clean run before any complaint about the reason text.
func TestOverrideGuardOrder(t *testing.T) {
	c := cleanCampaign()
	svc, _, _ := newTestService(c)

	if _, err := svc.OverrideBlockers(context.Background(), uuid.New(), "short", uuid.New()); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("unknown run with short reason: expected ErrRunNotFound, got %v", err)
	}

	run, err := svc.RunChecks(context.Background(), c.ID, nil)
	if err != nil {
		t.Fatalf("RunChecks: %v", err)
	}
	if _, err := svc.OverrideBlockers(context.Background(), run.ID, "short", uuid.New()); !errors.Is(err, ErrNothingToOverride) {
		t.Errorf("clean run with short reason: expected ErrNothingToOverride, got %v", err)
	}
}

func TestAddModeratorNoteLastWriteWins(t *testing.T) {
	c := cleanCampaign()
	svc, _, _ := newTestService(c)

	run, err := svc.RunChecks(context.Background(), c.ID, nil)
	if err != nil {
		t.Fatalf("RunChecks: %v", err)
	}
	resultID := run.Results[0].ID
	moderatorID := uuid.New()

	if _, err := svc.AddModeratorNote(context.Background(), resultID, "first note", moderatorID); err != nil {
		t.Fatalf("AddModeratorNote: %v", err)
	}
	res, err := svc.AddModeratorNote(context.Background(), resultID, "second note", moderatorID)
	if err != nil {
		t.Fatalf("AddModeratorNote: %v", err)
	}
	if res.ModeratorNote.String != "second note" {
		t.Errorf("expected last write to win, got %q", res.ModeratorNote.String)
	}

	if _, err := svc.AddModeratorNote(context.Background(), uuid.New(), "note", moderatorID); !errors.Is(err, ErrResultNotFound) {
		t.Errorf("expected ErrResultNotFound, got %v", err)
	}
}
