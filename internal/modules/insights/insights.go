// Package insights writes the free-text coaching paragraphs: the per-profile
// health recommendation and the weekly nutrition analysis.
package insights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/nutribridge-backend/internal/domain/health"
	"github.com/yungbote/nutribridge-backend/internal/platform/openai"
)

const healthSystemPrompt = "You are a personal health assistant. Based on the user's structured health profile, provide 1 personalized recommendation that refers to the user’s goal and condition."

const healthUserPrompt = "User data:\n%s\n\nRespond with one paragraph recommendation."

// ErrEmptyInsight is returned when the model answers with whitespace only.
var ErrEmptyInsight = errors.New("insights: empty recommendation")

type Writer struct {
	llm openai.Client
}

func New(llm openai.Client) *Writer {
	return &Writer{llm: llm}
}

// HealthInput flattens the profile measurements and the stored assessment.
func HealthInput(p *health.HealthProfile) map[string]any {
	out := map[string]any{
		"height_cm": p.HeightCM,
		"weight_kg": p.WeightKG,
	}
	a := p.Assessment()
	if a.LifestyleCategory != "" {
		out["lifestyle_category"] = a.LifestyleCategory
	}
	if a.DietCategory != "" {
		out["diet_category"] = a.DietCategory
	}
	if a.GoalCategory != "" {
		out["goal_category"] = a.GoalCategory
	}
	return out
}

// Health returns one recommendation paragraph for the profile.
func (w *Writer) Health(ctx context.Context, p *health.HealthProfile) (string, error) {
	data, err := json.Marshal(HealthInput(p))
	if err != nil {
		return "", err
	}
	out, err := w.llm.Chat(ctx, healthSystemPrompt, fmt.Sprintf(healthUserPrompt, data), openai.ChatOptions{
		Temperature: openai.Temp(1),
		MaxTokens:   200,
	})
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", ErrEmptyInsight
	}
	return out, nil
}
