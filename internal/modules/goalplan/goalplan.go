// Package goalplan generates the AI half of a goal plan and decides whether
// the result is worth writing.
package goalplan

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/nutribridge-backend/internal/domain"
	"github.com/yungbote/nutribridge-backend/internal/domain/health"
	"github.com/yungbote/nutribridge-backend/internal/pkg/jsonx"
	"github.com/yungbote/nutribridge-backend/internal/platform/openai"
)

const (
	unspecified = "unspecified"

	fallbackPlan   = "No plan generated."
	fallbackReason = "No justification provided."
)

// Result is the generator output before defaults are applied. Nil means the
// model omitted the field.
type Result struct {
	Weekly         *string
	Monthly        *string
	Priority       *string
	PriorityReason *string
	TargetDate     *time.Time
}

type wireResult struct {
	Weekly         *string `json:"weekly"`
	Monthly        *string `json:"monthly"`
	Priority       *string `json:"priority"`
	PriorityReason *string `json:"priority_reason"`
	TargetDate     *string `json:"target_date"`
}

type Generator struct {
	llm openai.Client
	now func() time.Time
}

func New(llm openai.Client) *Generator {
	return &Generator{llm: llm, now: time.Now}
}

// Prompt renders the user prompt for plan as of today.
func Prompt(plan *health.GoalPlan, today time.Time) string {
	goal, weight, activity := unspecified, unspecified, unspecified
	if plan != nil {
		if s := strings.TrimSpace(plan.GoalDescription); s != "" {
			goal = s
		}
		if plan.TargetWeight != nil && *plan.TargetWeight != 0 {
			weight = formatWeight(*plan.TargetWeight)
		}
		if plan.WeeklyActivityTarget != nil && *plan.WeeklyActivityTarget != 0 {
			activity = strconv.Itoa(*plan.WeeklyActivityTarget)
		}
	}
	r := strings.NewReplacer(
		"{today}", domain.DateKey(today),
		"{goal}", goal,
		"{weight}", weight,
		"{activity}", activity,
	)
	return r.Replace(userPromptTemplate)
}

func formatWeight(w float64) string {
	s := strconv.FormatFloat(w, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Generate calls the model once. Transport failures are returned; a reply
// that is not JSON yields the fallback plan.
func (g *Generator) Generate(ctx context.Context, plan *health.GoalPlan) (Result, error) {
	reply, err := g.llm.Chat(ctx, systemPrompt, Prompt(plan, g.now()), openai.ChatOptions{
		Temperature: openai.Temp(0.7),
		MaxTokens:   300,
	})
	if err != nil {
		return Result{}, fmt.Errorf("goal plan generation: %w", err)
	}
	return Parse(reply), nil
}

// Parse decodes a model reply. Anything undecodable becomes the fallback.
func Parse(reply string) Result {
	obj, ok := jsonx.ExtractObject(reply)
	if !ok {
		return fallback()
	}
	var w wireResult
	if err := json.Unmarshal([]byte(obj), &w); err != nil {
		return fallback()
	}
	out := Result{
		Weekly:         w.Weekly,
		Monthly:        w.Monthly,
		PriorityReason: w.PriorityReason,
	}
	if w.Priority != nil {
		p := normalizePriority(*w.Priority)
		out.Priority = &p
	}
	if w.TargetDate != nil {
		if d, err := domain.ParseDateKey(strings.TrimSpace(*w.TargetDate)); err == nil {
			out.TargetDate = &d
		}
	}
	return out
}

func fallback() Result {
	weekly, monthly, prio := fallbackPlan, fallbackPlan, string(health.PriorityMedium)
	return Result{Weekly: &weekly, Monthly: &monthly, Priority: &prio}
}

func normalizePriority(raw string) string {
	switch p := health.Priority(strings.ToLower(strings.TrimSpace(raw))); p {
	case health.PriorityLow, health.PriorityMedium, health.PriorityHigh:
		return string(p)
	default:
		return string(health.PriorityMedium)
	}
}

// Unchanged reports whether r matches every AI field already on old.
func (r Result) Unchanged(old *health.GoalPlan) bool {
	if old == nil {
		return false
	}
	return eqStr(r.Weekly, old.AIWeeklyPlan) &&
		eqStr(r.Monthly, old.AIMonthlyPlan) &&
		eqStr(r.Priority, old.AIPriority) &&
		eqStr(r.PriorityReason, old.AIPriorityReason) &&
		eqDate(r.TargetDate, old.AITargetDate)
}

// Updates is the targeted column set for a changed result. The old target
// date is kept when the new one matches it.
func (r Result) Updates(old *health.GoalPlan, now time.Time) map[string]interface{} {
	priority := string(health.PriorityMedium)
	if r.Priority != nil {
		priority = *r.Priority
	}
	reason := fallbackReason
	if r.PriorityReason != nil {
		reason = *r.PriorityReason
	}
	target := r.TargetDate
	if old != nil && eqDate(r.TargetDate, old.AITargetDate) {
		target = old.AITargetDate
	}
	return map[string]interface{}{
		"ai_weekly_plan":     r.Weekly,
		"ai_monthly_plan":    r.Monthly,
		"ai_priority":        priority,
		"ai_priority_reason": reason,
		"ai_target_date":     target,
		"generated_at":       now,
	}
}

func eqStr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func eqDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return domain.DateOnly(*a).Equal(domain.DateOnly(*b))
}
