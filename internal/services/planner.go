package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/nutribridge-backend/internal/data/repos"
	types "github.com/yungbote/nutribridge-backend/internal/domain"
	"github.com/yungbote/nutribridge-backend/internal/domain/diet"
	"github.com/yungbote/nutribridge-backend/internal/modules/insights"
	"github.com/yungbote/nutribridge-backend/internal/modules/mealplan"
	"github.com/yungbote/nutribridge-backend/internal/modules/wellness"
	"github.com/yungbote/nutribridge-backend/internal/pkg/dbctx"
	"github.com/yungbote/nutribridge-backend/internal/pkg/jsonx"
	"github.com/yungbote/nutribridge-backend/internal/pkg/logger"
	"github.com/yungbote/nutribridge-backend/internal/pkg/pointers"
	"github.com/yungbote/nutribridge-backend/internal/platform/apierr"
)

// PlannedSlot is one populated (date, meal_type) cell of the planner. The
// display fields come from the first plan entry.
type PlannedSlot struct {
	ID                  uuid.UUID        `json:"id"`
	MealName            string           `json:"meal_name,omitempty"`
	MealThumb           string           `json:"meal_thumb,omitempty"`
	SavedMealID         string           `json:"saved_meal_id,omitempty"`
	PortionMultiplier   float64          `json:"portion_multiplier"`
	Macros              datatypes.JSON   `json:"macros"`
	RecommendedServings *int             `json:"recommended_servings"`
	AdjustedNutrition   *diet.Nutrition  `json:"adjusted_nutrition,omitempty"`
	Meals               []diet.PlanEntry `json:"meals"`
	Notes               string           `json:"notes"`
}

type WeekDay struct {
	Date    string                  `json:"date"`
	Weekday string                  `json:"weekday"`
	Slots   map[string]*PlannedSlot `json:"slots"`
	Totals  diet.Nutrition          `json:"totals"`
}

type WeekPlan struct {
	StartDate string          `json:"start_date"`
	EndDate   string          `json:"end_date"`
	MealSlots []diet.MealType `json:"meal_slots"`
	Days      []WeekDay       `json:"days"`
}

// week is the planner window loaded once and shared by the planner, the
// versions and the saved-meal listing.
type week struct {
	window []time.Time
	slots  []*types.PlannedMeal
	meals  map[uuid.UUID]*types.UserSavedMeal
}

func loadWeek(dbc dbctx.Context, r repos.Set, userID uuid.UUID, today time.Time) (*week, error) {
	window := mealplan.Window(today)
	slots, err := r.PlannedMeal.ListInRange(dbc, userID, window[0], window[len(window)-1])
	if err != nil {
		return nil, fmt.Errorf("load planned meals: %w", err)
	}
	meals, err := r.SavedMeal.GetByIDs(dbc, userID, mealplan.ReferencedMealIDs(slots))
	if err != nil {
		return nil, fmt.Errorf("load planned saved meals: %w", err)
	}
	return &week{window: window, slots: slots, meals: meals}, nil
}

func (w *week) totals() map[string]diet.Nutrition {
	return mealplan.DailyTotals(w.slots, w.meals)
}

func (w *week) plan() *WeekPlan {
	bySlot := map[string]map[string]*PlannedSlot{}
	for _, pm := range w.slots {
		key := types.DateKey(pm.PlannedDate)
		if bySlot[key] == nil {
			bySlot[key] = map[string]*PlannedSlot{}
		}
		bySlot[key][pm.MealType] = w.slot(pm)
	}
	totals := w.totals()
	out := &WeekPlan{
		StartDate: types.DateKey(w.window[0]),
		EndDate:   types.DateKey(w.window[len(w.window)-1]),
		MealSlots: diet.MealSlots,
		Days:      make([]WeekDay, 0, len(w.window)),
	}
	for _, d := range w.window {
		key := types.DateKey(d)
		slots := bySlot[key]
		if slots == nil {
			slots = map[string]*PlannedSlot{}
		}
		out.Days = append(out.Days, WeekDay{
			Date:    key,
			Weekday: d.Weekday().String(),
			Slots:   slots,
			Totals:  totals[key],
		})
	}
	return out
}

func (w *week) slot(pm *types.PlannedMeal) *PlannedSlot {
	plan := mealplan.DecodePlan(pm)
	ps := &PlannedSlot{ID: pm.ID, Notes: pm.Notes, Meals: plan.Meals, PortionMultiplier: 1.0}
	if ps.Meals == nil {
		ps.Meals = []diet.PlanEntry{}
	}
	primary, ok := plan.Primary()
	if !ok {
		return ps
	}
	ps.MealName = primary.MealName
	ps.MealThumb = primary.MealThumb
	ps.SavedMealID = primary.SavedMealID
	ps.PortionMultiplier = primary.Multiplier()
	if id, err := uuid.Parse(primary.SavedMealID); err == nil {
		if m := w.meals[id]; m != nil {
			ps.Macros = m.MacrosJSON
			ps.RecommendedServings = m.RecommendedServings
		}
	}
	if n, ok := mealplan.EntryNutrition(primary, w.meals); ok {
		ps.AdjustedNutrition = &n
	}
	return ps
}

type AddMealInput struct {
	MealID   string `json:"meal_id"`
	Date     string `json:"date"`
	MealType string `json:"meal_type"`
}

type AddedMeal struct {
	MealID    string `json:"meal_id"`
	Date      string `json:"date"`
	MealType  string `json:"meal_type"`
	MealName  string `json:"meal_name"`
	MealThumb string `json:"meal_thumb"`
}

type RemoveMealInput struct {
	Date     string `json:"date"`
	MealType string `json:"meal_type"`
	// MealID removes one entry; empty clears the slot.
	MealID string `json:"meal_id"`
}

type RemovedMeal struct {
	Date           string `json:"date"`
	MealType       string `json:"meal_type"`
	RemainingMeals int    `json:"remaining_meals"`
}

type SwapInput struct {
	SourceDate     string `json:"source_date"`
	SourceMealType string `json:"source_meal_type"`
	TargetDate     string `json:"target_date"`
	TargetMealType string `json:"target_meal_type"`
}

type SwapResult struct {
	SourceDate       string `json:"source_date"`
	SourceMealType   string `json:"source_meal_type"`
	TargetDate       string `json:"target_date"`
	TargetMealType   string `json:"target_meal_type"`
	SourceMealsCount int    `json:"source_meals_count"`
	TargetMealsCount int    `json:"target_meals_count"`
}

type AdjustPortionInput struct {
	Date              string   `json:"date"`
	MealType          string   `json:"meal_type"`
	MealID            string   `json:"meal_id"`
	PortionMultiplier *float64 `json:"portion_multiplier"`
}

type PortionResult struct {
	Date              string          `json:"date"`
	MealType          string          `json:"meal_type"`
	MealID            string          `json:"meal_id"`
	PortionMultiplier float64         `json:"portion_multiplier"`
	AdjustedNutrition *diet.Nutrition `json:"adjusted_nutrition"`
	MealName          string          `json:"meal_name"`
}

type NutritionAnalysis struct {
	Analysis    string                    `json:"analysis"`
	Targets     diet.Nutrition            `json:"daily_targets"`
	DailyTotals map[string]diet.Nutrition `json:"daily_totals"`
}

type PlannerService interface {
	Week(ctx context.Context) (*WeekPlan, error)
	AddMeal(ctx context.Context, in AddMealInput) (*AddedMeal, error)
	RemoveMeal(ctx context.Context, in RemoveMealInput) (*RemovedMeal, error)
	SwapMeals(ctx context.Context, in SwapInput) (*SwapResult, error)
	AdjustPortion(ctx context.Context, in AdjustPortionInput) (*PortionResult, error)
	// NutritionAnalysis asks the LLM to review the planned week against the
	// user's targets. It reads the stored adherence ratio and never
	// recomputes it.
	NutritionAnalysis(ctx context.Context) (*NutritionAnalysis, error)
}

type plannerService struct {
	db        *gorm.DB
	log       *logger.Logger
	repos     repos.Set
	writer    *insights.Writer
	analytics AnalyticsService
	now       func() time.Time
}

func NewPlannerService(db *gorm.DB, baseLog *logger.Logger, r repos.Set, writer *insights.Writer, analytics AnalyticsService) PlannerService {
	return &plannerService{
		db:        db,
		log:       baseLog.With("service", "PlannerService"),
		repos:     r,
		writer:    writer,
		analytics: analytics,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *plannerService) Week(ctx context.Context) (*WeekPlan, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	w, err := loadWeek(dbctx.New(ctx), s.repos, userID, s.now())
	if err != nil {
		return nil, err
	}
	return w.plan(), nil
}

// slotKey validates a (date, meal_type) pair from a request body.
func slotKey(date, mealType string) (time.Time, string, error) {
	d, err := types.ParseDateKey(strings.TrimSpace(date))
	if err != nil {
		return time.Time{}, "", apierr.BadRequest("invalid_date", fmt.Sprintf("Invalid date %q, expected YYYY-MM-DD.", date))
	}
	mt, err := diet.ParseMealType(strings.TrimSpace(mealType))
	if err != nil {
		return time.Time{}, "", apierr.BadRequest("invalid_meal_type", fmt.Sprintf("Invalid meal type %q.", mealType))
	}
	return d, string(mt), nil
}

func (s *plannerService) AddMeal(ctx context.Context, in AddMealInput) (*AddedMeal, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	if in.MealID == "" || in.Date == "" || in.MealType == "" {
		return nil, apierr.BadRequest("missing_fields", "Missing required fields")
	}
	date, mealType, err := slotKey(in.Date, in.MealType)
	if err != nil {
		return nil, err
	}
	mealID, err := uuid.Parse(in.MealID)
	if err != nil {
		return nil, apierr.NotFound("saved_meal_not_found", "Saved meal not found")
	}

	var out *AddedMeal
	err = inTx(s.db, dbctx.New(ctx), func(dbc dbctx.Context) error {
		meal, err := s.repos.SavedMeal.GetByID(dbc, userID, mealID)
		if err != nil {
			return err
		}
		if meal == nil {
			return apierr.NotFound("saved_meal_not_found", "Saved meal not found")
		}
		pm, err := s.repos.PlannedMeal.GetSlot(dbc, userID, date, mealType)
		if err != nil {
			return err
		}
		if pm == nil {
			pm = &types.PlannedMeal{UserID: userID, PlannedDate: date, MealType: mealType}
		}
		plan := mealplan.DecodePlan(pm)
		entry := diet.PlanEntry{
			SavedMealID: meal.ID.String(),
			MealName:    meal.MealName,
			MealThumb:   meal.MealThumb,
			AddedAt:     s.now().Format(time.RFC3339),
		}
		replaced := false
		for i, e := range plan.Meals {
			if e.SavedMealID == entry.SavedMealID {
				plan.Meals[i] = entry
				replaced = true
				break
			}
		}
		if !replaced {
			plan.Meals = append(plan.Meals, entry)
		}
		pm.PlanJSON = jsonx.Marshal(plan)
		if pm.ID == uuid.Nil {
			err = s.repos.PlannedMeal.Create(dbc, pm)
		} else {
			err = s.repos.PlannedMeal.Save(dbc, pm)
		}
		if err != nil {
			return fmt.Errorf("store planned meal: %w", err)
		}
		out = &AddedMeal{
			MealID:    in.MealID,
			Date:      types.DateKey(date),
			MealType:  mealType,
			MealName:  meal.MealName,
			MealThumb: meal.MealThumb,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	syncDiet(ctx, s.log, s.analytics, userID)
	return out, nil
}

func (s *plannerService) RemoveMeal(ctx context.Context, in RemoveMealInput) (*RemovedMeal, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	if in.Date == "" || in.MealType == "" {
		return nil, apierr.BadRequest("missing_fields", "Missing required fields")
	}
	date, mealType, err := slotKey(in.Date, in.MealType)
	if err != nil {
		return nil, err
	}

	dbc := dbctx.New(ctx)
	pm, err := s.repos.PlannedMeal.GetSlot(dbc, userID, date, mealType)
	if err != nil {
		return nil, err
	}
	if pm == nil || jsonx.Empty(pm.PlanJSON) {
		return nil, apierr.NotFound("slot_empty", "No meal found in this slot")
	}
	var remaining []diet.PlanEntry
	if in.MealID != "" {
		for _, e := range mealplan.DecodePlan(pm).Meals {
			if e.SavedMealID != in.MealID {
				remaining = append(remaining, e)
			}
		}
	}
	if len(remaining) > 0 {
		pm.PlanJSON = jsonx.Marshal(diet.MealPlan{Meals: remaining})
		err = s.repos.PlannedMeal.Save(dbc, pm)
	} else {
		err = s.repos.PlannedMeal.Delete(dbc, pm.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("remove planned meal: %w", err)
	}
	syncDiet(ctx, s.log, s.analytics, userID)
	return &RemovedMeal{Date: types.DateKey(date), MealType: mealType, RemainingMeals: len(remaining)}, nil
}

// SwapMeals exchanges the entry lists of two slots. A missing slot is
// created only when it would receive meals.
func (s *plannerService) SwapMeals(ctx context.Context, in SwapInput) (*SwapResult, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	if in.SourceDate == "" || in.SourceMealType == "" || in.TargetDate == "" || in.TargetMealType == "" {
		return nil, apierr.BadRequest("missing_fields", "Missing required fields for meal swap")
	}
	srcDate, srcType, err := slotKey(in.SourceDate, in.SourceMealType)
	if err != nil {
		return nil, err
	}
	dstDate, dstType, err := slotKey(in.TargetDate, in.TargetMealType)
	if err != nil {
		return nil, err
	}

	out := &SwapResult{
		SourceDate:     types.DateKey(srcDate),
		SourceMealType: srcType,
		TargetDate:     types.DateKey(dstDate),
		TargetMealType: dstType,
	}
	err = inTx(s.db, dbctx.New(ctx), func(dbc dbctx.Context) error {
		src, err := s.repos.PlannedMeal.GetSlot(dbc, userID, srcDate, srcType)
		if err != nil {
			return err
		}
		dst, err := s.repos.PlannedMeal.GetSlot(dbc, userID, dstDate, dstType)
		if err != nil {
			return err
		}
		srcMeals := mealplan.DecodePlan(src).Meals
		dstMeals := mealplan.DecodePlan(dst).Meals
		out.SourceMealsCount = len(srcMeals)
		out.TargetMealsCount = len(dstMeals)

		if err := s.fillSlot(dbc, src, userID, srcDate, srcType, dstMeals); err != nil {
			return err
		}
		return s.fillSlot(dbc, dst, userID, dstDate, dstType, srcMeals)
	})
	if err != nil {
		return nil, err
	}
	syncDiet(ctx, s.log, s.analytics, userID)
	return out, nil
}

func (s *plannerService) fillSlot(dbc dbctx.Context, pm *types.PlannedMeal, userID uuid.UUID, date time.Time, mealType string, meals []diet.PlanEntry) error {
	if meals == nil {
		meals = []diet.PlanEntry{}
	}
	if pm != nil {
		pm.PlanJSON = jsonx.Marshal(diet.MealPlan{Meals: meals})
		return s.repos.PlannedMeal.Save(dbc, pm)
	}
	if len(meals) == 0 {
		return nil
	}
	return s.repos.PlannedMeal.Create(dbc, &types.PlannedMeal{
		UserID:      userID,
		PlannedDate: date,
		MealType:    mealType,
		PlanJSON:    jsonx.Marshal(diet.MealPlan{Meals: meals}),
	})
}

func (s *plannerService) AdjustPortion(ctx context.Context, in AdjustPortionInput) (*PortionResult, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	if in.Date == "" || in.MealType == "" || in.MealID == "" || in.PortionMultiplier == nil || *in.PortionMultiplier == 0 {
		return nil, apierr.BadRequest("missing_fields", "Missing required fields for portion adjustment")
	}
	multiplier := *in.PortionMultiplier
	if err := diet.ValidatePortion(multiplier); err != nil {
		return nil, apierr.New(http.StatusBadRequest, "invalid_portion", fmt.Errorf("invalid portion multiplier value: %w", err))
	}
	date, mealType, err := slotKey(in.Date, in.MealType)
	if err != nil {
		return nil, err
	}
	mealID, err := uuid.Parse(in.MealID)
	if err != nil {
		return nil, apierr.NotFound("meal_not_in_slot", "Meal not found in this slot")
	}

	var out *PortionResult
	err = inTx(s.db, dbctx.New(ctx), func(dbc dbctx.Context) error {
		pm, err := s.repos.PlannedMeal.GetSlot(dbc, userID, date, mealType)
		if err != nil {
			return err
		}
		if pm == nil || jsonx.Empty(pm.PlanJSON) {
			return apierr.NotFound("slot_empty", "No meal plan found for this slot")
		}
		plan := mealplan.DecodePlan(pm)
		idx := -1
		for i, e := range plan.Meals {
			if e.SavedMealID == in.MealID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return apierr.NotFound("meal_not_in_slot", "Meal not found in this slot")
		}
		meal, err := s.repos.SavedMeal.GetByID(dbc, userID, mealID)
		if err != nil {
			return err
		}
		if meal == nil {
			return apierr.NotFound("saved_meal_not_found", "Saved meal not found")
		}

		plan.Meals[idx].PortionMultiplier = pointers.Ptr(multiplier)
		pm.PlanJSON = jsonx.Marshal(plan)
		if err := s.repos.PlannedMeal.Save(dbc, pm); err != nil {
			return fmt.Errorf("store portion: %w", err)
		}
		out = &PortionResult{
			Date:              types.DateKey(date),
			MealType:          mealType,
			MealID:            in.MealID,
			PortionMultiplier: multiplier,
			MealName:          meal.MealName,
		}
		if n, ok := mealplan.EntryNutrition(plan.Meals[idx], map[uuid.UUID]*types.UserSavedMeal{meal.ID: meal}); ok {
			out.AdjustedNutrition = &n
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	syncDiet(ctx, s.log, s.analytics, userID)
	return out, nil
}

func (s *plannerService) NutritionAnalysis(ctx context.Context) (*NutritionAnalysis, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	w, err := loadWeek(dbc, s.repos, userID, s.now())
	if err != nil {
		return nil, err
	}
	prefs, err := s.repos.Preferences.GetByUserID(dbc, userID)
	if err != nil {
		return nil, err
	}
	in := insights.NutritionInput{Targets: dailyTargets(prefs), Days: w.totals()}

	profile, err := s.repos.HealthProfile.GetByUserID(dbc, userID)
	if err != nil {
		return nil, err
	}
	snap, err := s.repos.Adherence.GetByUserID(dbc, userID)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		in.BaseScore = pointers.Ptr(wellness.Score(wellness.FromProfile(profile)))
		if snap != nil {
			in.AdjustedScore = pointers.Ptr(wellness.Adjusted(*in.BaseScore, snap.AdherenceRatio))
		}
	}
	if snap != nil {
		in.Ratio = pointers.Ptr(snap.AdherenceRatio)
	}
	return &NutritionAnalysis{
		Analysis:    s.writer.Nutrition(ctx, in),
		Targets:     in.Targets,
		DailyTotals: in.Days,
	}, nil
}

// dailyTargets prefers explicit targets, then the meal planning analysis.
func dailyTargets(prefs *types.UserDietaryPreferences) diet.Nutrition {
	var out diet.Nutrition
	if prefs == nil {
		return out
	}
	if a, err := jsonx.Decode[diet.MealPlanningAnalysis](prefs.MealPlanningAnalysis); err == nil && !jsonx.Empty(prefs.MealPlanningAnalysis) {
		out.Calories = a.DailyCalories
		out.Protein = a.DailyCalories * a.MacroSplit.Protein / 100 / 4
		out.Carbs = a.DailyCalories * a.MacroSplit.Carbs / 100 / 4
		out.Fat = a.DailyCalories * a.MacroSplit.Fats / 100 / 9
	}
	if prefs.CalorieTarget != nil {
		out.Calories = float64(*prefs.CalorieTarget)
	}
	if prefs.ProteinTarget != nil {
		out.Protein = float64(*prefs.ProteinTarget)
	}
	if prefs.CarbTarget != nil {
		out.Carbs = float64(*prefs.CarbTarget)
	}
	if prefs.FatTarget != nil {
		out.Fat = float64(*prefs.FatTarget)
	}
	return out
}
