package compliance

import (
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fundflow/fundflow-api/internal/domain/campaign"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// cleanCampaign passes every blocker rule
func cleanCampaign() *campaign.Campaign {
	return &campaign.Campaign{
		ID:        uuid.New(),
		CreatorID: uuid.New(),
		Name:      "Community Garden Revival",
		Description: strings.Repeat("We are rebuilding the neighborhood garden. ", 4) +
			"Funds buy soil and tools! Every dollar goes to the plot.",
		Category:  "community",
		Goal:      decimal.NewFromInt(5000),
		ImageData: sql.NullString{String: strings.Repeat("A", 400), Valid: true},
		EndDate:   sql.NullTime{Time: testNow.Add(60 * 24 * time.Hour), Valid: true},
		Status:    campaign.StatusSubmitted,
		CreatedAt: testNow.Add(-24 * time.Hour),
	}
}

func outcomeFor(t *testing.T, c *campaign.Campaign, ruleID string) Outcome {
	t.Helper()
	for _, r := range RuleSet() {
		if r.ID == ruleID {
			return r.Check(c, testNow)
		}
	}
	t.Fatalf("no rule %q in rule set", ruleID)
	return Outcome{}
}

func TestCleanCampaignPassesAllBlockers(t *testing.T) {
	c := cleanCampaign()
	for _, r := range RuleSet() {
		out := r.Check(c, testNow)
		if r.Severity == SeverityBlocker && out.Status == StatusFail {
			t.Errorf("rule %s failed on a clean campaign: %s", r.ID, out.Message)
		}
	}
}

func TestTitleLengthBounds(t *testing.T) {
	c := cleanCampaign()

	c.Name = strings.Repeat("a", 9)
	if out := outcomeFor(t, c, "title-length"); out.Status != StatusFail {
		t.Errorf("9 chars: expected fail, got %s", out.Status)
	}
	c.Name = strings.Repeat("a", 10)
	if out := outcomeFor(t, c, "title-length"); out.Status != StatusPass {
		t.Errorf("10 chars: expected pass, got %s", out.Status)
	}
	c.Name = strings.Repeat("a", 100)
	if out := outcomeFor(t, c, "title-length"); out.Status != StatusPass {
		t.Errorf("100 chars: expected pass, got %s", out.Status)
	}
	c.Name = strings.Repeat("a", 101)
	if out := outcomeFor(t, c, "title-length"); out.Status != StatusFail {
		t.Errorf("101 chars: expected fail, got %s", out.Status)
	}
	// surrounding whitespace does not count
	c.Name = "  " + strings.Repeat("a", 9) + "  "
	if out := outcomeFor(t, c, "title-length"); out.Status != StatusFail {
		t.Errorf("padded 9 chars: expected fail, got %s", out.Status)
	}
}

func TestDescriptionLengthBound(t *testing.T) {
	c := cleanCampaign()

	c.Description = strings.Repeat("a", 99)
	if out := outcomeFor(t, c, "description-length"); out.Status != StatusFail {
		t.Errorf("99 chars: expected fail, got %s", out.Status)
	}
	c.Description = strings.Repeat("a", 100)
	if out := outcomeFor(t, c, "description-length"); out.Status != StatusPass {
		t.Errorf("100 chars: expected pass, got %s", out.Status)
	}
}

func TestDescriptionQualitySentenceCount(t *testing.T) {
	c := cleanCampaign()

	c.Description = "One sentence. Two sentences."
	if out := outcomeFor(t, c, "description-quality"); out.Status != StatusWarn {
		t.Errorf("2 sentences: expected warn, got %s", out.Status)
	}
	c.Description = "One! Two? Three."
	if out := outcomeFor(t, c, "description-quality"); out.Status != StatusPass {
		t.Errorf("3 sentences: expected pass, got %s", out.Status)
	}
	// repeated terminators count as one boundary
	c.Description = "Wait... what?! Really."
	if out := outcomeFor(t, c, "description-quality"); out.Status != StatusPass {
		t.Errorf("ellipsis split: expected pass, got %s", out.Status)
	}
}

func TestProhibitedContent(t *testing.T) {
	c := cleanCampaign()
	c.Description += " This project offers Guaranteed Returns for everyone."

	out := outcomeFor(t, c, "prohibited-content")
	if out.Status != StatusFail {
		t.Fatalf("expected fail, got %s", out.Status)
	}
	if !strings.Contains(out.Evidence, "guaranteed returns") {
		t.Errorf("evidence missing matched phrase: %q", out.Evidence)
	}
}

func TestProhibitedContentChecksTitle(t *testing.T) {
	c := cleanCampaign()
	c.Name = "Ponzi-free honest fund"

	if out := outcomeFor(t, c, "prohibited-content"); out.Status != StatusFail {
		t.Errorf("expected fail on title match, got %s", out.Status)
	}
}

func TestCategoryRules(t *testing.T) {
	c := cleanCampaign()

	c.Category = ""
	if out := outcomeFor(t, c, "category-present"); out.Status != StatusFail {
		t.Errorf("empty category: expected fail, got %s", out.Status)
	}
	if out := outcomeFor(t, c, "category-allowed"); out.Status != StatusSkipped {
		t.Errorf("empty category: expected skipped allowed-check, got %s", out.Status)
	}

	c.Category = "underwater-basket-weaving"
	if out := outcomeFor(t, c, "category-allowed"); out.Status != StatusWarn {
		t.Errorf("unknown category: expected warn, got %s", out.Status)
	}

	c.Category = "Technology"
	if out := outcomeFor(t, c, "category-allowed"); out.Status != StatusPass {
		t.Errorf("case-insensitive match: expected pass, got %s", out.Status)
	}
}

func TestGoalRules(t *testing.T) {
	c := cleanCampaign()

	c.Goal = decimal.RequireFromString("99.99")
	if out := outcomeFor(t, c, "goal-minimum"); out.Status != StatusFail {
		t.Errorf("99.99: expected fail, got %s", out.Status)
	}
	c.Goal = decimal.NewFromInt(100)
	if out := outcomeFor(t, c, "goal-minimum"); out.Status != StatusPass {
		t.Errorf("100: expected pass, got %s", out.Status)
	}

	c.Goal = decimal.NewFromInt(10_000_001)
	if out := outcomeFor(t, c, "goal-maximum"); out.Status != StatusWarn {
		t.Errorf("10000001: expected warn, got %s", out.Status)
	}
	c.Goal = decimal.NewFromInt(10_000_000)
	if out := outcomeFor(t, c, "goal-maximum"); out.Status != StatusPass {
		t.Errorf("10000000: expected pass, got %s", out.Status)
	}
}

func TestGoalReasonability(t *testing.T) {
	c := cleanCampaign()
	c.Goal = decimal.NewFromInt(60_000)
	c.Description = strings.Repeat("a", 120)
	if out := outcomeFor(t, c, "goal-reasonability"); out.Status != StatusWarn {
		t.Errorf("large goal, short pitch: expected warn, got %s", out.Status)
	}

	c.Description = strings.Repeat("a", 500)
	if out := outcomeFor(t, c, "goal-reasonability"); out.Status != StatusPass {
		t.Errorf("large goal, long pitch: expected pass, got %s", out.Status)
	}
}

func TestImageRules(t *testing.T) {
	c := cleanCampaign()

	c.ImageData = sql.NullString{}
	if out := outcomeFor(t, c, "image-present"); out.Status != StatusWarn {
		t.Errorf("missing image: expected warn, got %s", out.Status)
	}
	if out := outcomeFor(t, c, "image-size"); out.Status != StatusSkipped {
		t.Errorf("missing image: expected skipped size check, got %s", out.Status)
	}

	// just over 5MB once the base64 overhead comes off
	c.ImageData = sql.NullString{String: strings.Repeat("A", (5*1024*1024*4/3)+8), Valid: true}
	if out := outcomeFor(t, c, "image-size"); out.Status != StatusWarn {
		t.Errorf("oversized image: expected warn, got %s", out.Status)
	}
}

func TestEndDateRule(t *testing.T) {
	c := cleanCampaign()

	c.EndDate = sql.NullTime{}
	if out := outcomeFor(t, c, "end-date"); out.Status != StatusWarn {
		t.Errorf("unset end date: expected warn, got %s", out.Status)
	}

	c.EndDate = sql.NullTime{Time: testNow.Add(-time.Hour), Valid: true}
	if out := outcomeFor(t, c, "end-date"); out.Status != StatusFail {
		t.Errorf("past end date: expected fail, got %s", out.Status)
	}

	c.EndDate = sql.NullTime{Time: testNow.Add(3 * 24 * time.Hour), Valid: true}
	if out := outcomeFor(t, c, "end-date"); out.Status != StatusWarn {
		t.Errorf("3 days out: expected warn, got %s", out.Status)
	}

	c.EndDate = sql.NullTime{Time: testNow.Add(30 * 24 * time.Hour), Valid: true}
	if out := outcomeFor(t, c, "end-date"); out.Status != StatusPass {
		t.Errorf("30 days out: expected pass, got %s", out.Status)
	}
}

func TestDurationRule(t *testing.T) {
	c := cleanCampaign()

	c.EndDate = sql.NullTime{Time: c.CreatedAt.Add(400 * 24 * time.Hour), Valid: true}
	if out := outcomeFor(t, c, "duration-reasonability"); out.Status != StatusWarn {
		t.Errorf("400 days: expected warn, got %s", out.Status)
	}

	c.EndDate = sql.NullTime{Time: c.CreatedAt.Add(90 * 24 * time.Hour), Valid: true}
	if out := outcomeFor(t, c, "duration-reasonability"); out.Status != StatusPass {
		t.Errorf("90 days: expected pass, got %s", out.Status)
	}

	c.EndDate = sql.NullTime{}
	if out := outcomeFor(t, c, "duration-reasonability"); out.Status != StatusSkipped {
		t.Errorf("unset end date: expected skipped, got %s", out.Status)
	}
}

func TestCreatorRule(t *testing.T) {
	c := cleanCampaign()
	c.CreatorID = uuid.Nil
	if out := outcomeFor(t, c, "creator-exists"); out.Status != StatusFail {
		t.Errorf("nil creator: expected fail, got %s", out.Status)
	}
}

func TestShortTitleAndDescriptionYieldTwoBlockers(t *testing.T) {
	c := cleanCampaign()
	c.Name = "Test1"
	c.Description = strings.Repeat("x", 50)

	blockers := 0
	for _, r := range RuleSet() {
		if r.Severity == SeverityBlocker && r.Check(c, testNow).Status == StatusFail {
			blockers++
		}
	}
	if blockers < 2 {
		t.Errorf("expected at least 2 blocker failures, got %d", blockers)
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	c := cleanCampaign()
	first := Evaluate(c, testNow)
	second := Evaluate(c, testNow)

	if len(first) != len(second) {
		t.Fatalf("result counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("rule %d diverged: %+v vs %+v", i, first[i], second[i])
		}
	}
}
