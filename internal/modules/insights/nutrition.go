package insights

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/yungbote/nutribridge-backend/internal/domain/diet"
	"github.com/yungbote/nutribridge-backend/internal/platform/openai"
)

const nutritionSystemPrompt = "You are an expert nutrition coach providing analytical insights. Be specific, actionable, and professional. Focus on the data provided."

const nutritionPrompt = `
    You are an expert nutrition coach analyzing a user's 7-day meal plan. Provide analytical insights and recommendations based on the following data:

    DAILY TARGETS:
    - Calories: %s kcal
    - Protein: %sg
    - Carbs: %sg
    - Fat: %sg

    7-DAY MEAL PLAN TOTALS:
    - Total Calories: %s kcal
    - Total Protein: %sg
    - Total Carbs: %sg
    - Total Fat: %sg

    WELLNESS SCORE INFO:
    - Base Score: %s
    - Adjusted Score: %s
    - Adherence Ratio: %s

    DAILY BREAKDOWN:
    %s

    Provide a comprehensive analysis in this exact format:

    SUMMARY:
    [2-3 sentences summarizing key achievements and potential concerns]

    MACRONUTRIENT ANALYSIS:
    [Analysis of protein, carbs, and fat balance with specific observations]

    IMPROVEMENT SUGGESTIONS:
    [3-4 specific, actionable recommendations for food choices, meal timing, portion adjustments, or meal plan optimizations]

    Keep the tone analytical and professional. Focus on actionable insights rather than generic advice. Assume the user's targets are already AI-calculated and appropriate for their goals.
    `

// NutritionUnavailable is returned in place of an analysis when the call fails.
const NutritionUnavailable = "Unable to generate analysis at this time. Please try again later."

const notSpecified = "Not specified"

// NutritionInput is the week as the planner shows it.
type NutritionInput struct {
	Targets       diet.Nutrition
	Days          map[string]diet.Nutrition
	BaseScore     *int
	AdjustedScore *int
	Ratio         *float64
}

func (in NutritionInput) totals() diet.Nutrition {
	var sum diet.Nutrition
	for _, d := range in.Days {
		sum = sum.Add(d)
	}
	return sum
}

func (in NutritionInput) breakdown() string {
	if len(in.Days) == 0 {
		return "Not available"
	}
	keys := make([]string, 0, len(in.Days))
	for k := range in.Days {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		d := in.Days[k]
		lines = append(lines, fmt.Sprintf("%s: %.0f kcal, %.0fg protein, %.0fg carbs, %.0fg fat", k, d.Calories, d.Protein, d.Carbs, d.Fat))
	}
	return strings.Join(lines, "\n    ")
}

// NutritionPrompt renders the analysis prompt.
func NutritionPrompt(in NutritionInput) string {
	t := in.totals()
	return fmt.Sprintf(nutritionPrompt,
		num(in.Targets.Calories), num(in.Targets.Protein), num(in.Targets.Carbs), num(in.Targets.Fat),
		num(t.Calories), num(t.Protein), num(t.Carbs), num(t.Fat),
		intPtr(in.BaseScore), intPtr(in.AdjustedScore), floatPtr(in.Ratio),
		in.breakdown(),
	)
}

// Nutrition never fails; errors collapse to NutritionUnavailable.
func (w *Writer) Nutrition(ctx context.Context, in NutritionInput) string {
	out, err := w.llm.Chat(ctx, nutritionSystemPrompt, NutritionPrompt(in), openai.ChatOptions{
		Temperature: openai.Temp(0.7),
		MaxTokens:   500,
	})
	if err != nil || strings.TrimSpace(out) == "" {
		return NutritionUnavailable
	}
	return strings.TrimSpace(out)
}

func num(v float64) string {
	if v == 0 {
		return notSpecified
	}
	return fmt.Sprintf("%.0f", v)
}

func intPtr(v *int) string {
	if v == nil {
		return notSpecified
	}
	return fmt.Sprintf("%d", *v)
}

func floatPtr(v *float64) string {
	if v == nil {
		return notSpecified
	}
	return fmt.Sprintf("%.1f", *v)
}
