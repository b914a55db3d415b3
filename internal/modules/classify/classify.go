// Package classify maps the three free-text profile fields onto the closed
// label sets with one LLM call per field.
package classify

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/nutribridge-backend/internal/domain/health"
	"github.com/yungbote/nutribridge-backend/internal/platform/openai"
)

const (
	FieldLifestyle = "lifestyle"
	FieldDiet      = "dietary_preferences"
	FieldGoal      = "fitness_goals"
)

// ClassificationError is returned when the model answers with something
// outside the candidate list for Field.
type ClassificationError struct {
	Field string
	Raw   string
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("classify %s: unrecognized label %q", e.Field, e.Raw)
}

// Input is the free text as the user wrote it.
type Input struct {
	Lifestyle          string
	DietaryPreferences string
	FitnessGoals       string
}

type Classifier struct {
	llm openai.Client
}

func New(llm openai.Client) *Classifier {
	return &Classifier{llm: llm}
}

// Classify runs the three calls in order and stops at the first failure; a
// partial classification is never returned.
func (c *Classifier) Classify(ctx context.Context, in Input) (health.Classification, error) {
	var out health.Classification

	raw, err := c.ask(ctx, lifestylePrompt, in.Lifestyle)
	if err != nil {
		return out, fmt.Errorf("classify %s: %w", FieldLifestyle, err)
	}
	l, ok := health.ParseLifestyle(raw)
	if !ok {
		return out, &ClassificationError{Field: FieldLifestyle, Raw: raw}
	}

	raw, err = c.ask(ctx, dietPrompt, in.DietaryPreferences)
	if err != nil {
		return out, fmt.Errorf("classify %s: %w", FieldDiet, err)
	}
	d, ok := health.ParseDiet(raw)
	if !ok {
		return out, &ClassificationError{Field: FieldDiet, Raw: raw}
	}

	raw, err = c.ask(ctx, goalPrompt, in.FitnessGoals)
	if err != nil {
		return out, fmt.Errorf("classify %s: %w", FieldGoal, err)
	}
	g, ok := health.ParseGoal(raw)
	if !ok {
		return out, &ClassificationError{Field: FieldGoal, Raw: raw}
	}

	out.Lifestyle, out.Diet, out.Goal = l, d, g
	return out, nil
}

func (c *Classifier) ask(ctx context.Context, template, text string) (string, error) {
	prompt := strings.ReplaceAll(template, "{text}", text)
	reply, err := c.llm.Chat(ctx, systemPrompt, prompt, openai.ChatOptions{
		Temperature: openai.Temp(0),
		MaxTokens:   10,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}
