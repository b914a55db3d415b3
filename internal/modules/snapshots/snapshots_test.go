package snapshots

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/nutribridge-backend/internal/data/repos"
	"github.com/yungbote/nutribridge-backend/internal/data/repos/testutil"
	"github.com/yungbote/nutribridge-backend/internal/domain"
	"github.com/yungbote/nutribridge-backend/internal/domain/diet"
	"github.com/yungbote/nutribridge-backend/internal/pkg/jsonx"
	"github.com/yungbote/nutribridge-backend/internal/pkg/pointers"
)

var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newCollector(t *testing.T) (*Collector, *gorm.DB) {
	t.Helper()
	db := testutil.DB(t)
	c := NewCollector(repos.NewSet(db, testutil.Logger(t)), testutil.Logger(t))
	c.now = func() time.Time { return fixedNow }
	return c, db
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestHealthTrends(t *testing.T) {
	c, db := newCollector(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, db, "h@example.com")
	testutil.SeedProfile(t, ctx, db, u.ID, 175, 78, `{"lifestyle_category":"Active","diet_category":"Healty","goal_category":"Weight loss"}`)
	testutil.SeedGoalPlan(t, ctx, db, u.ID, 70, 3)

	for i, w := range []float64{82, 80, 78} {
		row := &domain.HistoricalMetric{UserID: u.ID, MetricType: domain.MetricWeight, Value: w, RecordedAt: fixedNow.Add(time.Duration(i-3) * time.Hour)}
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("seed weight: %v", err)
		}
	}
	for i, s := range []int{90, 95} {
		row := &domain.WellnessScoreHistory{UserID: u.ID, Score: s, RecordedAt: fixedNow.Add(time.Duration(i-2) * time.Hour)}
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("seed score: %v", err)
		}
	}

	h, err := c.Health(ctx, u.ID)
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	wt := h.Trends.WeightTrend
	if wt == nil || wt.CurrentWeight != 78 || wt.PreviousWeight != 80 || wt.TrendDirection != "down" {
		t.Fatalf("unexpected weight trend %+v", wt)
	}
	if !approx(wt.ChangePercentage, -2.5) {
		t.Fatalf("change percentage = %v", wt.ChangePercentage)
	}
	if st := h.Trends.WellnessTrend; st == nil || st.Change != 5 || st.TrendDirection != "up" {
		t.Fatalf("unexpected wellness trend %+v", st)
	}
	gp := h.Trends.GoalProgress
	if gp == nil || gp.GoalType != "weight_loss" || gp.StartWeight != 82 || !approx(gp.ProgressPercentage, 33.33333333333333) {
		t.Fatalf("unexpected goal progress %+v", gp)
	}
	if h.Trends.ActivityTrend != nil {
		t.Fatalf("expected no activity trend without snapshots")
	}
	if len(h.History.WeightHistory) != 3 || h.History.WeightHistory[0].Weight != 78 {
		t.Fatalf("weight history should be newest first: %+v", h.History.WeightHistory)
	}
}

func TestHealthMissingGoalPlan(t *testing.T) {
	c, db := newCollector(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, db, "nogoal@example.com")
	testutil.SeedProfile(t, ctx, db, u.ID, 170, 65, "")

	view := c.HealthView(ctx, u.ID)
	payload, ok := view.(ErrorPayload)
	if !ok {
		t.Fatalf("expected error payload, got %T", view)
	}
	if !strings.HasPrefix(payload.Error, "Health data collection failed: ") {
		t.Fatalf("unexpected error text %q", payload.Error)
	}
}

func TestGoalProgressBounds(t *testing.T) {
	if p := goalProgress(70, 70, 70); p.ProgressPercentage != 100 {
		t.Fatalf("equal start and target should be 100, got %v", p.ProgressPercentage)
	}
	if p := goalProgress(80, 85, 70); p.ProgressPercentage != 0 {
		t.Fatalf("moving away should clamp to 0, got %v", p.ProgressPercentage)
	}
	if p := goalProgress(60, 66, 65); p.ProgressPercentage != 100 || p.GoalType != "weight_loss" {
		t.Fatalf("overshoot should clamp to 100, got %+v", p)
	}
}

func TestDietDailyTotalsMatchSlots(t *testing.T) {
	c, db := newCollector(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, db, "d@example.com")
	testutil.SeedPreferences(t, ctx, db, u.ID, `{"daily_calories":1800}`)
	meal := testutil.SeedSavedMeal(t, ctx, db, u.ID, "Curry", 900, 2)

	tomorrow := domain.DateOnly(fixedNow).AddDate(0, 0, 1)
	slots := []struct {
		mealType string
		mult     *float64
	}{
		{"lunch", pointers.Ptr(1.5)},
		{"dinner", nil},
	}
	for _, s := range slots {
		pm := &domain.PlannedMeal{
			UserID:      u.ID,
			PlannedDate: tomorrow,
			MealType:    s.mealType,
			PlanJSON: jsonx.Marshal(diet.MealPlan{Meals: []diet.PlanEntry{
				{SavedMealID: meal.ID.String(), MealName: meal.MealName, PortionMultiplier: s.mult},
			}}),
		}
		if err := db.Create(pm).Error; err != nil {
			t.Fatalf("seed planned meal: %v", err)
		}
	}

	d, err := c.Diet(ctx, u.ID)
	if err != nil {
		t.Fatalf("Diet: %v", err)
	}
	key := domain.DateKey(tomorrow)
	day := d.CurrentPlan.DailyTotals[key]
	if day == nil {
		t.Fatalf("missing daily totals for %s", key)
	}
	lunch := d.CurrentPlan.PlannedMeals[key]["lunch"].AdjustedNutrition.Calories
	dinner := d.CurrentPlan.PlannedMeals[key]["dinner"].AdjustedNutrition.Calories
	if lunch != 675 || dinner != 450 {
		t.Fatalf("unexpected slot calories lunch=%v dinner=%v", lunch, dinner)
	}
	if day.Calories != lunch+dinner {
		t.Fatalf("daily total %v != sum of slots %v", day.Calories, lunch+dinner)
	}
	if d.CurrentPlan.PlannedMealsCount != 2 || len(d.CurrentPlan.WeekDates) != 7 || d.CurrentPlan.WeekDates[0] != key {
		t.Fatalf("unexpected plan shape %+v", d.CurrentPlan)
	}
	if d.NutritionAdherence.Ratio != 1.0 || d.NutritionAdherence.DaysWithMeals != 1 || d.NutritionAdherence.DaysWithoutMeals != 6 {
		t.Fatalf("unexpected adherence block %+v", d.NutritionAdherence)
	}
	if d.NutritionAdherence.DailyTargetCarbs != 250 || d.NutritionAdherence.DailyTargetFat != 70 || d.NutritionAdherence.DailyTargetProtein != 50 {
		t.Fatalf("unset targets should fall back to defaults: %+v", d.NutritionAdherence)
	}
	if d.NutritionAdherence.BaseWellnessScore != nil {
		t.Fatalf("no profile should leave base score empty")
	}
	if d.Summary.DailyCalorieTarget != 1800 || d.Summary.WeeklyCalorieDifference != 1800*7-1125 {
		t.Fatalf("unexpected summary %+v", d.Summary)
	}
	if d.KeyMetrics.DailyCalorieTarget != 1800 || len(d.KeyMetrics.Allergies) != 1 {
		t.Fatalf("unexpected key metrics %+v", d.KeyMetrics)
	}
}

func TestDietZeroCalorieDaysAndTargets(t *testing.T) {
	c, db := newCollector(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, db, "pending@example.com")
	prefs := testutil.SeedPreferences(t, ctx, db, u.ID, "")
	if err := db.Model(prefs).Updates(map[string]interface{}{"carb_target": 120, "fat_target": 40}).Error; err != nil {
		t.Fatalf("set targets: %v", err)
	}
	pending := &domain.UserSavedMeal{UserID: u.ID, MealDBID: "pending-1", MealName: "Pending Bowl"}
	if err := db.Create(pending).Error; err != nil {
		t.Fatalf("seed meal: %v", err)
	}
	pm := &domain.PlannedMeal{
		UserID:      u.ID,
		PlannedDate: domain.DateOnly(fixedNow).AddDate(0, 0, 2),
		MealType:    "dinner",
		PlanJSON: jsonx.Marshal(diet.MealPlan{Meals: []diet.PlanEntry{
			{SavedMealID: pending.ID.String(), MealName: pending.MealName},
		}}),
	}
	if err := db.Create(pm).Error; err != nil {
		t.Fatalf("seed planned meal: %v", err)
	}

	d, err := c.Diet(ctx, u.ID)
	if err != nil {
		t.Fatalf("Diet: %v", err)
	}
	na := d.NutritionAdherence
	if na.DaysWithMeals != 0 || na.DaysWithoutMeals != 7 || na.CurrentWeekCalories != 0 {
		t.Fatalf("a zero-calorie day is not a day with meals: %+v", na)
	}
	if na.DailyTargetCarbs != 120 || na.DailyTargetFat != 40 {
		t.Fatalf("stored targets ignored: carbs=%v fat=%v", na.DailyTargetCarbs, na.DailyTargetFat)
	}
	if d.Targets.Carbs == nil || *d.Targets.Carbs != 120 {
		t.Fatalf("targets=%+v", d.Targets)
	}
}

func TestDietMissingPreferences(t *testing.T) {
	c, db := newCollector(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, db, "noprefs@example.com")

	payload, ok := c.DietView(ctx, u.ID).(ErrorPayload)
	if !ok || !strings.HasPrefix(payload.Error, "Diet data collection failed: ") {
		t.Fatalf("expected diet error payload, got %+v", payload)
	}
	km, err := c.KeyMetrics(ctx, u.ID)
	if err != nil {
		t.Fatalf("KeyMetrics: %v", err)
	}
	if km.DailyCalorieTarget != 2000 || km.ProteinTarget != 100 || km.Weight != nil {
		t.Fatalf("expected default key metrics, got %+v", km)
	}
}
