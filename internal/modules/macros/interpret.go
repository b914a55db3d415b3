package macros

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yungbote/nutribridge-backend/internal/domain/diet"
	"github.com/yungbote/nutribridge-backend/internal/platform/openai"
)

const interpretSystemPrompt = "You are a helpful recipe assistant that only outputs JSON."

const interpretPrompt = `
You are an expert recipe analyst. Your task is to take a user's raw, unstructured list of ingredients and convert it into a structured JSON format. Your primary goal is to resolve ambiguity.

**RULES:**
1.  If the user provides alternative ingredients (e.g., "chicken or beef"), create a separate interpretation for each.
2.  If the user provides an ambiguous quantity (e.g., "some eggs", "an onion", "a handful of spinach"), create separate interpretations with different, reasonable, specific numbers. For "some", you might suggest 2 and 3. For "a" or "an", you might suggest 1 and 2.
3.  Combine these rules. If there are multiple ambiguities, provide a few combined interpretations, but limit the total number of options to a maximum of 3 to avoid overwhelming the user.
4.  Always output a single JSON object with the key "interpretations". Do not include any text outside of the JSON.

**Example 1:**
*User Input:*
some eggs
a splash of milk

*Your Output:*
{
    "interpretations": [
        [
            {"ingredient": "Eggs", "measure": "2"},
            {"ingredient": "Milk", "measure": "2 tbsp"}
        ],
        [
            {"ingredient": "Eggs", "measure": "3"},
            {"ingredient": "Milk", "measure": "2 tbsp"}
        ]
    ]
}


**Example 2:**
*User Input:*
500g chicken or beef mince
an onion

*Your Output:*
{
    "interpretations": [
        [
            {"ingredient": "Chicken Mince", "measure": "500g"},
            {"ingredient": "Onion", "measure": "1 medium"}
        ],
        [
            {"ingredient": "Beef Mince", "measure": "500g"},
            {"ingredient": "Onion", "measure": "1 medium"}
        ]
    ]
}

---

Now, please process the following user input:

**User Input:**
%s

**Your Output:**
    `

// Interpretation is one candidate reading of free-text ingredients.
type Interpretation []diet.Ingredient

// Interpret asks for up to three structured readings of the text. When the
// model fails, each non-empty line becomes one "measure ingredient" pair.
func (e *Estimator) Interpret(ctx context.Context, text string) []Interpretation {
	raw, err := e.llm.Chat(ctx, interpretSystemPrompt, fmt.Sprintf(interpretPrompt, text), openai.ChatOptions{
		Temperature: openai.Temp(0.2),
		JSONObject:  true,
	})
	if err == nil {
		if out, ok := decodeInterpretations(raw); ok {
			return out
		}
	}
	return []Interpretation{FallbackInterpretation(text)}
}

func decodeInterpretations(raw string) ([]Interpretation, bool) {
	var body map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		return nil, false
	}
	if v, ok := body["interpretations"]; ok {
		var out []Interpretation
		if err := json.Unmarshal(v, &out); err == nil && len(out) > 0 {
			return out, true
		}
	}
	for _, v := range body {
		var nested []Interpretation
		if err := json.Unmarshal(v, &nested); err == nil && len(nested) > 0 {
			return nested, true
		}
	}
	for _, v := range body {
		var flat Interpretation
		if err := json.Unmarshal(v, &flat); err == nil && len(flat) > 0 {
			return []Interpretation{flat}, true
		}
	}
	return nil, false
}

// FallbackInterpretation splits each line on its first space.
func FallbackInterpretation(text string) Interpretation {
	out := Interpretation{}
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		measure, ingredient, ok := strings.Cut(line, " ")
		if !ok {
			measure, ingredient = "1", line
		}
		out = append(out, diet.Ingredient{Ingredient: ingredient, Measure: measure})
	}
	return out
}

// RawMealData builds the MealDB-shaped payload for a custom meal so it flows
// through the same ingredient parsing as saved MealDB meals.
func RawMealData(name, category, area, instructions string, ingredients []diet.Ingredient) map[string]any {
	out := map[string]any{
		"strMeal":         name,
		"strCategory":     category,
		"strArea":         area,
		"strInstructions": instructions,
	}
	for i, ing := range ingredients {
		if i >= 20 {
			break
		}
		out[fmt.Sprintf("strIngredient%d", i+1)] = ing.Ingredient
		out[fmt.Sprintf("strMeasure%d", i+1)] = ing.Measure
	}
	return out
}
