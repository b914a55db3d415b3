// Package macros estimates recipe nutrition with the LLM and sizes servings.
package macros

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/datatypes"

	"github.com/yungbote/nutribridge-backend/internal/domain/diet"
	"github.com/yungbote/nutribridge-backend/internal/pkg/jsonx"
	"github.com/yungbote/nutribridge-backend/internal/platform/openai"
)

const systemPrompt = "You are a nutritionist. Respond only with valid JSON."

const promptTemplate = `
You are a nutritionist. Estimate the total calories, protein (g), carbs (g), fat (g), and preparation time (in minutes) for the following recipe. Respond ONLY with valid JSON in this format: {"calories":123,"protein":12,"carbs":34,"fat":5,"prep_time_min":45}

Recipe Name: %s
Ingredients: %s
Instructions: %s
`

const instructionChars = 300

// ErrNoEstimate is returned when the reply holds no JSON object.
var ErrNoEstimate = errors.New("macros: no JSON object in reply")

type Estimator struct {
	llm openai.Client
}

func New(llm openai.Client) *Estimator {
	return &Estimator{llm: llm}
}

// Prompt renders the estimation prompt for one meal.
func Prompt(m *diet.UserSavedMeal) string {
	name := m.MealName
	if name == "" {
		name = "Unknown Meal"
	}
	parts := []string{}
	for _, ing := range m.Ingredients() {
		parts = append(parts, strings.TrimSpace(ing.Measure+" "+ing.Ingredient))
	}
	instr := []rune(m.Instructions)
	if len(instr) > instructionChars {
		instr = instr[:instructionChars]
	}
	return fmt.Sprintf(promptTemplate, name, strings.Join(parts, "; "), string(instr))
}

// Estimate returns the raw macros object as the model produced it.
func (e *Estimator) Estimate(ctx context.Context, m *diet.UserSavedMeal) (datatypes.JSON, error) {
	raw, err := e.llm.Chat(ctx, systemPrompt, Prompt(m), openai.ChatOptions{Temperature: openai.Temp(0)})
	if err != nil {
		return nil, err
	}
	obj, ok := jsonx.ExtractObject(raw)
	if !ok {
		return nil, ErrNoEstimate
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(obj), &decoded); err != nil {
		return nil, fmt.Errorf("macros: decode reply: %w", err)
	}
	if _, bad := decoded["error"]; bad {
		return nil, ErrNoEstimate
	}
	return datatypes.JSON(obj), nil
}

// Updates returns the column updates for a meal after estimation. Macros
// already present are kept and servings are only filled when unset.
func Updates(m *diet.UserSavedMeal, estimated datatypes.JSON) map[string]interface{} {
	updates := map[string]interface{}{}
	if jsonx.Empty(m.MacrosJSON) && len(estimated) > 0 {
		m.MacrosJSON = estimated
		updates["macros_json"] = estimated
		if macros, ok := m.Macros(); ok && macros.PrepTimeMin != nil {
			m.PrepTimeMin = macros.PrepTimeMin
			updates["prep_time_min"] = *macros.PrepTimeMin
		}
	}
	if m.RecommendedServings == nil || *m.RecommendedServings == 0 {
		n := diet.RecommendedServingsFor(m)
		m.RecommendedServings = &n
		updates["recommended_servings"] = n
	}
	return updates
}
