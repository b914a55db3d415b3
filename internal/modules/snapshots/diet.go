package snapshots

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/nutribridge-backend/internal/domain"
	"github.com/yungbote/nutribridge-backend/internal/domain/diet"
	"github.com/yungbote/nutribridge-backend/internal/modules/adherence"
	"github.com/yungbote/nutribridge-backend/internal/modules/mealplan"
	"github.com/yungbote/nutribridge-backend/internal/modules/wellness"
	"github.com/yungbote/nutribridge-backend/internal/pkg/jsonx"
)

const (
	defaultProteinTarget = 50
	defaultCarbTarget    = 250
	defaultFatTarget     = 70
)

type Diet struct {
	Preferences        PreferencesView    `json:"preferences"`
	Targets            TargetsView        `json:"targets"`
	CurrentPlan        CurrentPlan        `json:"current_plan"`
	NutritionAdherence NutritionAdherence `json:"nutrition_adherence"`
	SavedMeals         SavedMealsView     `json:"saved_meals"`
	History            DietHistory        `json:"history"`
	MealAnalysis       json.RawMessage    `json:"meal_analysis"`
	MealBaseline       json.RawMessage    `json:"meal_baseline"`
	Summary            DietSummary        `json:"summary"`
	KeyMetrics         KeyMetrics         `json:"key_metrics"`
}

type PreferencesView struct {
	DietaryTags        []string        `json:"dietary_tags"`
	Allergies          []string        `json:"allergies"`
	Dislikes           []string        `json:"dislikes"`
	PreferredCuisines  []string        `json:"preferred_cuisines"`
	MealsPerDay        int             `json:"meals_per_day"`
	PreferredMealTimes json.RawMessage `json:"preferred_meal_times"`
}

type TargetsView struct {
	Calories *int `json:"calories"`
	Protein  *int `json:"protein"`
	Carbs    *int `json:"carbs"`
	Fat      *int `json:"fat"`
}

type PlannedSlotView struct {
	MealName            string         `json:"meal_name"`
	MealThumb           string         `json:"meal_thumb"`
	ID                  string         `json:"id"`
	SavedMealID         string         `json:"saved_meal_id"`
	Macros              *diet.Macros   `json:"macros"`
	RecommendedServings *int           `json:"recommended_servings"`
	PortionMultiplier   float64        `json:"portion_multiplier"`
	AdjustedNutrition   diet.Nutrition `json:"adjusted_nutrition"`
}

type DayMeal struct {
	MealType string  `json:"meal_type"`
	MealName string  `json:"meal_name"`
	Calories float64 `json:"calories"`
}

type DayTotals struct {
	Date     string    `json:"date"`
	Calories float64   `json:"calories"`
	Protein  float64   `json:"protein"`
	Carbs    float64   `json:"carbs"`
	Fat      float64   `json:"fat"`
	Meals    []DayMeal `json:"meals"`
}

type CurrentPlan struct {
	PlannedMeals      map[string]map[string]PlannedSlotView `json:"planned_meals"`
	DailyTotals       map[string]*DayTotals                 `json:"daily_totals"`
	MealSlots         []diet.MealType                       `json:"meal_slots"`
	WeekDates         []string                              `json:"week_dates"`
	PlannedMealsCount int                                   `json:"planned_meals_count"`
}

type NutritionAdherence struct {
	Ratio                 float64 `json:"ratio"`
	BaseWellnessScore     *int    `json:"base_wellness_score"`
	AdjustedWellnessScore *int    `json:"adjusted_wellness_score"`
	DailyTargetCalories   float64 `json:"daily_target_calories"`
	WeeklyTargetCalories  float64 `json:"weekly_target_calories"`
	CurrentWeekCalories   float64 `json:"current_week_calories"`
	DaysWithMeals         int     `json:"days_with_meals"`
	DaysWithoutMeals      int     `json:"days_without_meals"`
	DailyTargetProtein    float64 `json:"daily_target_protein"`
	DailyTargetCarbs      float64 `json:"daily_target_carbs"`
	DailyTargetFat        float64 `json:"daily_target_fat"`
}

type SavedMealView struct {
	ID                  uuid.UUID    `json:"id"`
	MealDBID            string       `json:"mealdb_id"`
	MealName            string       `json:"meal_name"`
	Category            string       `json:"category"`
	Area                string       `json:"area"`
	Favorite            bool         `json:"favorite"`
	Source              string       `json:"source"`
	Macros              *diet.Macros `json:"macros"`
	RecommendedServings *int         `json:"recommended_servings"`
}

type SavedMealsView struct {
	Count int             `json:"count"`
	Meals []SavedMealView `json:"meals"`
}

type PlanVersionView struct {
	ID                  uuid.UUID       `json:"id"`
	VersionName         string          `json:"version_name"`
	CreatedByAction     string          `json:"created_by_action"`
	CreatedAt           string          `json:"created_at"`
	MealPlanSnapshot    json.RawMessage `json:"meal_plan_snapshot"`
	DailyTotalsSnapshot json.RawMessage `json:"daily_totals_snapshot"`
}

type ShoppingVersionView struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	CreatedAt    string          `json:"created_at"`
	ShoppingData json.RawMessage `json:"shopping_data"`
}

type DietHistory struct {
	MealPlanVersions     []PlanVersionView     `json:"meal_plan_versions"`
	ShoppingListVersions []ShoppingVersionView `json:"shopping_list_versions"`
}

type DietSummary struct {
	DailyCalorieTarget       float64 `json:"daily_calorie_target"`
	WeeklyCalorieTarget      float64 `json:"weekly_calorie_target"`
	CurrentWeekTotalCalories float64 `json:"current_week_total_calories"`
	WeeklyCalorieDifference  float64 `json:"weekly_calorie_difference"`
}

// Diet collects the dietary view. The preferences row is the required root.
func (c *Collector) Diet(ctx context.Context, userID uuid.UUID) (*Diet, error) {
	dbc := c.dbc(ctx)
	prefs, err := c.repos.Preferences.GetByUserID(dbc, userID)
	if err != nil {
		return nil, err
	}
	if prefs == nil {
		return nil, ErrNoPreferences
	}
	profile, err := c.repos.HealthProfile.GetByUserID(dbc, userID)
	if err != nil {
		return nil, err
	}
	plan, err := c.repos.GoalPlan.GetByUserID(dbc, userID)
	if err != nil {
		return nil, err
	}
	start, end := mealplan.Bounds(c.now())
	slots, err := c.repos.PlannedMeal.ListInRange(dbc, userID, start, end)
	if err != nil {
		return nil, err
	}
	saved, err := c.repos.SavedMeal.ListByUser(dbc, userID)
	if err != nil {
		return nil, err
	}
	snap, err := c.repos.Adherence.GetByUserID(dbc, userID)
	if err != nil {
		return nil, err
	}
	planVersions, err := c.repos.MealPlanVersion.List(dbc, userID, planVersionLimit)
	if err != nil {
		return nil, err
	}
	shopVersions, err := c.repos.ShoppingListVersion.List(dbc, userID, shoppingVersionLimit)
	if err != nil {
		return nil, err
	}

	meals := make(map[uuid.UUID]*diet.UserSavedMeal, len(saved))
	for _, m := range saved {
		meals[m.ID] = m
	}
	analysis, hasAnalysis := decodeAnalysis(prefs)

	out := &Diet{
		Preferences: PreferencesView{
			DietaryTags:        jsonx.Strings(prefs.DietaryTags),
			Allergies:          jsonx.Strings(prefs.Allergies),
			Dislikes:           jsonx.Strings(prefs.Dislikes),
			PreferredCuisines:  jsonx.Strings(prefs.PreferredCuisines),
			MealsPerDay:        prefs.MealsPerDay,
			PreferredMealTimes: rawOrNull(prefs.PreferredMealTimes),
		},
		Targets: TargetsView{
			Calories: prefs.CalorieTarget,
			Protein:  prefs.ProteinTarget,
			Carbs:    prefs.CarbTarget,
			Fat:      prefs.FatTarget,
		},
		MealAnalysis: rawOrNull(prefs.MealPlanningAnalysis),
		MealBaseline: rawOrNull(prefs.MealBaseline),
	}

	out.CurrentPlan = currentPlan(c.now(), slots, meals)

	ratio := adherence.RatioOnTrack
	if snap != nil {
		ratio = snap.AdherenceRatio
	}
	dailyTarget := float64(adherence.DefaultDailyTarget)
	if prefs.CalorieTarget != nil {
		dailyTarget = float64(*prefs.CalorieTarget)
	}
	weekTotal := 0.0
	daysWithMeals := 0
	for _, d := range out.CurrentPlan.DailyTotals {
		weekTotal += d.Calories
		if d.Calories > 0 {
			daysWithMeals++
		}
	}
	na := NutritionAdherence{
		Ratio:                ratio,
		DailyTargetCalories:  dailyTarget,
		WeeklyTargetCalories: dailyTarget * mealplan.WindowDays,
		CurrentWeekCalories:  weekTotal,
		DaysWithMeals:        daysWithMeals,
		DaysWithoutMeals:     mealplan.WindowDays - daysWithMeals,
		DailyTargetProtein:   float64(intOr(prefs.ProteinTarget, defaultProteinTarget)),
		DailyTargetCarbs:     float64(intOr(prefs.CarbTarget, defaultCarbTarget)),
		DailyTargetFat:       float64(intOr(prefs.FatTarget, defaultFatTarget)),
	}
	if profile != nil {
		base := wellness.Score(wellness.FromProfile(profile))
		adjusted := wellness.Adjusted(base, ratio)
		na.BaseWellnessScore = &base
		na.AdjustedWellnessScore = &adjusted
	}
	out.NutritionAdherence = na

	out.SavedMeals = SavedMealsView{Count: len(saved), Meals: make([]SavedMealView, 0, len(saved))}
	for _, m := range saved {
		v := SavedMealView{
			ID:                  m.ID,
			MealDBID:            m.MealDBID,
			MealName:            m.MealName,
			Category:            m.Category,
			Area:                m.Area,
			Favorite:            m.Favorite,
			Source:              m.Source,
			RecommendedServings: m.RecommendedServings,
		}
		if macros, ok := m.Macros(); ok {
			v.Macros = &macros
		}
		out.SavedMeals.Meals = append(out.SavedMeals.Meals, v)
	}

	out.History.MealPlanVersions = make([]PlanVersionView, 0, len(planVersions))
	for _, v := range planVersions {
		out.History.MealPlanVersions = append(out.History.MealPlanVersions, PlanVersionView{
			ID:                  v.ID,
			VersionName:         v.VersionName,
			CreatedByAction:     v.CreatedByAction,
			CreatedAt:           v.CreatedAt.Format(timeLayout),
			MealPlanSnapshot:    rawOrNull(v.MealPlanSnapshot),
			DailyTotalsSnapshot: rawOrNull(v.DailyTotalsSnapshot),
		})
	}
	out.History.ShoppingListVersions = make([]ShoppingVersionView, 0, len(shopVersions))
	for _, v := range shopVersions {
		out.History.ShoppingListVersions = append(out.History.ShoppingListVersions, ShoppingVersionView{
			ID:           v.ID,
			Name:         v.Name,
			CreatedAt:    v.CreatedAt.Format(timeLayout),
			ShoppingData: rawOrNull(v.ItemsJSON),
		})
	}

	summaryTarget := float64(adherence.DefaultDailyTarget)
	switch {
	case prefs.CalorieTarget != nil:
		summaryTarget = float64(*prefs.CalorieTarget)
	case hasAnalysis && analysis.DailyCalories > 0:
		summaryTarget = analysis.DailyCalories
	}
	out.Summary = DietSummary{
		DailyCalorieTarget:       summaryTarget,
		WeeklyCalorieTarget:      summaryTarget * mealplan.WindowDays,
		CurrentWeekTotalCalories: weekTotal,
		WeeklyCalorieDifference:  summaryTarget*mealplan.WindowDays - weekTotal,
	}
	out.KeyMetrics = keyMetrics(prefs, profile, plan)
	return out, nil
}

func currentPlan(today time.Time, slots []*diet.PlannedMeal, meals map[uuid.UUID]*diet.UserSavedMeal) CurrentPlan {
	out := CurrentPlan{
		PlannedMeals: map[string]map[string]PlannedSlotView{},
		DailyTotals:  map[string]*DayTotals{},
		MealSlots:    diet.MealSlots,
	}
	for _, d := range mealplan.Window(today) {
		out.WeekDates = append(out.WeekDates, domain.DateKey(d))
	}
	for _, pm := range slots {
		key := domain.DateKey(pm.PlannedDate)
		primary, ok := mealplan.DecodePlan(pm).Primary()
		if !ok {
			continue
		}
		view := PlannedSlotView{
			ID:                pm.ID.String(),
			SavedMealID:       primary.SavedMealID,
			MealName:          primary.MealName,
			MealThumb:         primary.MealThumb,
			PortionMultiplier: primary.Multiplier(),
		}
		if id, err := uuid.Parse(primary.SavedMealID); err == nil {
			if m := meals[id]; m != nil {
				view.MealName = m.MealName
				view.MealThumb = m.MealThumb
				view.RecommendedServings = m.RecommendedServings
				if macros, ok := m.Macros(); ok {
					view.Macros = &macros
				}
			}
		}
		nutrition, counted := mealplan.EntryNutrition(primary, meals)
		view.AdjustedNutrition = nutrition
		if out.PlannedMeals[key] == nil {
			out.PlannedMeals[key] = map[string]PlannedSlotView{}
		}
		out.PlannedMeals[key][pm.MealType] = view
		out.PlannedMealsCount++

		day := out.DailyTotals[key]
		if day == nil {
			day = &DayTotals{Date: key, Meals: []DayMeal{}}
			out.DailyTotals[key] = day
		}
		if counted {
			day.Calories += nutrition.Calories
			day.Protein += nutrition.Protein
			day.Carbs += nutrition.Carbs
			day.Fat += nutrition.Fat
		}
		day.Meals = append(day.Meals, DayMeal{MealType: pm.MealType, MealName: view.MealName, Calories: nutrition.Calories})
	}
	return out
}

func decodeAnalysis(p *diet.UserDietaryPreferences) (diet.MealPlanningAnalysis, bool) {
	if p == nil || jsonx.Empty(p.MealPlanningAnalysis) {
		return diet.MealPlanningAnalysis{}, false
	}
	a, err := jsonx.Decode[diet.MealPlanningAnalysis](p.MealPlanningAnalysis)
	if err != nil {
		return diet.MealPlanningAnalysis{}, false
	}
	return a, true
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
