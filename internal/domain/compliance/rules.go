package compliance

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fundflow/fundflow-api/internal/domain/campaign"
)

// Outcome is the result of evaluating one rule against a campaign snapshot
type Outcome struct {
	Status   CheckStatus
	Message  string
	Evidence string
}

// Rule is a single pure check over a campaign snapshot. Check must not
// touch the database or depend on anything but the snapshot and the clock
// passed to Evaluate.
type Rule struct {
	ID          string
	Name        string
	Description string
	Category    Category
	Severity    Severity
	Check       func(c *campaign.Campaign, now time.Time) Outcome
}

const (
	minTitleLen       = 10
	maxTitleLen       = 100
	minDescriptionLen = 100
	minSentences      = 3
	minGoal           = 100
	maxGoal           = 10_000_000
	largeGoal         = 50_000
	largeGoalDescLen  = 500
	maxImageBytes     = 5 * 1024 * 1024
	minCampaignDays   = 7
	maxCampaignDays   = 365
)

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

// prohibitedPhrases are matched case-insensitively against title and
// description combined
var prohibitedPhrases = []string{
	"guaranteed returns",
	"pyramid",
	"ponzi",
	"mlm",
	"get rich quick",
	"double your money",
	"risk-free investment",
	"insider",
}

func pass(msg string) Outcome    { return Outcome{Status: StatusPass, Message: msg} }
func fail(msg string) Outcome    { return Outcome{Status: StatusFail, Message: msg} }
func warn(msg string) Outcome    { return Outcome{Status: StatusWarn, Message: msg} }
func skipped(msg string) Outcome { return Outcome{Status: StatusSkipped, Message: msg} }

// RuleSet returns the fixed ordered set of compliance rules
func RuleSet() []Rule {
	return []Rule{
		{
			ID:          "title-length",
			Name:        "Title length",
			Description: "campaign titles must be between 10 and 100 characters",
			Category:    CategoryContent,
			Severity:    SeverityBlocker,
			Check: func(c *campaign.Campaign, _ time.Time) Outcome {
				n := len(strings.TrimSpace(c.Name))
				if n < minTitleLen {
					return fail(fmt.Sprintf("title is %d characters, minimum is %d", n, minTitleLen))
				}
				if n > maxTitleLen {
					return fail(fmt.Sprintf("title is %d characters, maximum is %d", n, maxTitleLen))
				}
				return pass("title length is acceptable")
			},
		},
		{
			ID:          "description-length",
			Name:        "Description length",
			Description: "campaign descriptions must be at least 100 characters",
			Category:    CategoryContent,
			Severity:    SeverityBlocker,
			Check: func(c *campaign.Campaign, _ time.Time) Outcome {
				n := len(strings.TrimSpace(c.Description))
				if n < minDescriptionLen {
					return fail(fmt.Sprintf("description is %d characters, minimum is %d", n, minDescriptionLen))
				}
				return pass("description length is acceptable")
			},
		},
		{
			ID:          "description-quality",
			Name:        "Description quality",
			Description: "descriptions should contain at least 3 sentences",
			Category:    CategoryContent,
			Severity:    SeverityWarning,
			Check: func(c *campaign.Campaign, _ time.Time) Outcome {
				count := countSentences(c.Description)
				if count < minSentences {
					return warn(fmt.Sprintf("description has %d sentence(s), expected at least %d", count, minSentences))
				}
				return pass("description reads as a complete pitch")
			},
		},
		{
			ID:          "prohibited-content",
			Name:        "Prohibited content",
			Description: "titles and descriptions must not contain scam or scheme language",
			Category:    CategoryLegal,
			Severity:    SeverityBlocker,
			Check: func(c *campaign.Campaign, _ time.Time) Outcome {
				text := strings.ToLower(c.Name + " " + c.Description)
				var found []string
				for _, phrase := range prohibitedPhrases {
					if strings.Contains(text, phrase) {
						found = append(found, phrase)
					}
				}
				if len(found) > 0 {
					out := fail(fmt.Sprintf("found %d prohibited phrase(s)", len(found)))
					out.Evidence = strings.Join(found, ", ")
					return out
				}
				return pass("no prohibited phrases found")
			},
		},
		{
			ID:          "category-present",
			Name:        "Category present",
			Description: "every campaign must declare a category",
			Category:    CategoryContent,
			Severity:    SeverityBlocker,
			Check: func(c *campaign.Campaign, _ time.Time) Outcome {
				if strings.TrimSpace(c.Category) == "" {
					return fail("campaign has no category")
				}
				return pass("category is set")
			},
		},
		{
			ID:          "category-allowed",
			Name:        "Category allowed",
			Description: "categories should come from the published list",
			Category:    CategoryContent,
			Severity:    SeverityWarning,
			Check: func(c *campaign.Campaign, _ time.Time) Outcome {
				cat := strings.TrimSpace(c.Category)
				if cat == "" {
					return skipped("no category to validate")
				}
				for _, allowed := range campaign.AllowedCategories() {
					if strings.EqualFold(cat, allowed) {
						return pass("category is in the allowed list")
					}
				}
				out := warn(fmt.Sprintf("category %q is not in the allowed list", cat))
				out.Evidence = strings.Join(campaign.AllowedCategories(), ", ")
				return out
			},
		},
		{
			ID:          "goal-minimum",
			Name:        "Goal minimum",
			Description: "funding goals must be at least 100",
			Category:    CategoryFinancial,
			Severity:    SeverityBlocker,
			Check: func(c *campaign.Campaign, _ time.Time) Outcome {
				if c.Goal.LessThan(decimal.NewFromInt(minGoal)) {
					return fail(fmt.Sprintf("goal %s is below the minimum of %d", c.Goal.StringFixed(2), minGoal))
				}
				return pass("goal meets the minimum")
			},
		},
		{
			ID:          "goal-maximum",
			Name:        "Goal maximum",
			Description: "funding goals above 10,000,000 need manual review",
			Category:    CategoryFinancial,
			Severity:    SeverityWarning,
			Check: func(c *campaign.Campaign, _ time.Time) Outcome {
				if c.Goal.GreaterThan(decimal.NewFromInt(maxGoal)) {
					return warn(fmt.Sprintf("goal %s exceeds %d and needs manual review", c.Goal.StringFixed(2), maxGoal))
				}
				return pass("goal is within the standard range")
			},
		},
		{
			ID:          "goal-reasonability",
			Name:        "Goal reasonability",
			Description: "large goals deserve a proportionate pitch",
			Category:    CategoryFinancial,
			Severity:    SeverityInfo,
			Check: func(c *campaign.Campaign, _ time.Time) Outcome {
				descLen := len(strings.TrimSpace(c.Description))
				if c.Goal.GreaterThan(decimal.NewFromInt(largeGoal)) && descLen < largeGoalDescLen {
					return warn(fmt.Sprintf("goal above %d but description is only %d characters", largeGoal, descLen))
				}
				return pass("goal is proportionate to the pitch")
			},
		},
		{
			ID:          "image-present",
			Name:        "Image present",
			Description: "campaigns should carry an image",
			Category:    CategoryMedia,
			Severity:    SeverityWarning,
			Check: func(c *campaign.Campaign, _ time.Time) Outcome {
				if !c.ImageData.Valid || strings.TrimSpace(c.ImageData.String) == "" {
					return warn("campaign has no image")
				}
				return pass("campaign has an image")
			},
		},
		{
			ID:          "image-size",
			Name:        "Image size",
			Description: "inline images should stay under 5MB",
			Category:    CategoryMedia,
			Severity:    SeverityInfo,
			Check: func(c *campaign.Campaign, _ time.Time) Outcome {
				if !c.ImageData.Valid || strings.TrimSpace(c.ImageData.String) == "" {
					return skipped("no image to measure")
				}
				// base64 expands payloads by 4/3
				bytes := len(c.ImageData.String) * 3 / 4
				if bytes > maxImageBytes {
					return warn(fmt.Sprintf("image is roughly %d bytes, above the %d byte guideline", bytes, maxImageBytes))
				}
				return pass("image size is within guidelines")
			},
		},
		{
			ID:          "end-date",
			Name:        "End date",
			Description: "campaigns need a future end date with adequate runway",
			Category:    CategoryContent,
			Severity:    SeverityBlocker,
			Check: func(c *campaign.Campaign, now time.Time) Outcome {
				if !c.EndDate.Valid {
					return warn("campaign has no end date")
				}
				end := c.EndDate.Time
				if end.Before(now) {
					return fail(fmt.Sprintf("end date %s is in the past", end.Format(time.RFC3339)))
				}
				if end.Before(now.Add(minCampaignDays * 24 * time.Hour)) {
					return warn(fmt.Sprintf("end date is less than %d days away", minCampaignDays))
				}
				return pass("end date is acceptable")
			},
		},
		{
			ID:          "duration-reasonability",
			Name:        "Duration reasonability",
			Description: "campaigns should not run longer than a year",
			Category:    CategoryContent,
			Severity:    SeverityInfo,
			Check: func(c *campaign.Campaign, _ time.Time) Outcome {
				if !c.EndDate.Valid {
					return skipped("no end date to measure")
				}
				days := int(c.EndDate.Time.Sub(c.CreatedAt).Hours() / 24)
				if days > maxCampaignDays {
					return warn(fmt.Sprintf("campaign runs %d days, above the %d day guideline", days, maxCampaignDays))
				}
				return pass("campaign duration is reasonable")
			},
		},
		{
			ID:          "creator-exists",
			Name:        "Creator existence",
			Description: "every campaign must belong to a registered creator",
			Category:    CategoryIdentity,
			Severity:    SeverityBlocker,
			Check: func(c *campaign.Campaign, _ time.Time) Outcome {
				if c.CreatorID == uuid.Nil {
					return fail("campaign has no creator")
				}
				return pass("creator is recorded")
			},
		},
	}
}

func countSentences(s string) int {
	count := 0
	for _, part := range sentenceSplit.Split(s, -1) {
		if strings.TrimSpace(part) != "" {
			count++
		}
	}
	return count
}

// Evaluate runs the full rule set against a campaign snapshot and returns
// the results in rule-set order. It is deterministic for a fixed snapshot
// and a fixed now.
func Evaluate(c *campaign.Campaign, now time.Time) []Outcome {
	rules := RuleSet()
	outcomes := make([]Outcome, 0, len(rules))
	for _, r := range rules {
		outcomes = append(outcomes, r.Check(c, now))
	}
	return outcomes
}
