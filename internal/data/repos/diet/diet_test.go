package diet

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/nutribridge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/nutribridge-backend/internal/domain"
	"github.com/yungbote/nutribridge-backend/internal/pkg/dbctx"
)

func TestSavedMealRepo(t *testing.T) {
	db := testutil.DB(t)
	ctx := testutil.Ctx()
	dbc := dbctx.New(ctx)
	u := testutil.SeedUser(t, ctx, db, "meals@example.com")
	repo := NewSavedMealRepo(db, testutil.Logger(t))

	first := &types.UserSavedMeal{UserID: u.ID, MealDBID: "52772", MealName: "Teriyaki Chicken", SavedAt: time.Now().UTC().Add(-time.Hour)}
	if err := repo.Create(dbc, first); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.Source != types.SourceMealDB {
		t.Fatalf("expected default source, got %q", first.Source)
	}
	dup := &types.UserSavedMeal{UserID: u.ID, MealDBID: "52772", MealName: "Again"}
	if err := repo.Create(dbc, dup); err != ErrDuplicateSavedMeal {
		t.Fatalf("expected ErrDuplicateSavedMeal, got %v", err)
	}
	second := &types.UserSavedMeal{UserID: u.ID, MealDBID: "52773", MealName: "Salmon"}
	if err := repo.Create(dbc, second); err != nil {
		t.Fatalf("Create second: %v", err)
	}

	list, err := repo.ListByUser(dbc, u.ID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(list) != 2 || list[0].ID != second.ID {
		t.Fatalf("expected newest first, got %d rows", len(list))
	}

	byID, err := repo.GetByIDs(dbc, u.ID, []uuid.UUID{first.ID, uuid.New()})
	if err != nil || len(byID) != 1 {
		t.Fatalf("GetByIDs: err=%v n=%d", err, len(byID))
	}
	other := testutil.SeedUser(t, ctx, db, "other@example.com")
	if got, _ := repo.GetByID(dbc, other.ID, first.ID); got != nil {
		t.Fatalf("meal leaked across users")
	}

	if err := repo.UpdateFields(dbc, first.ID, map[string]interface{}{"macros_json": datatypes.JSON(`{"calories":900}`), "recommended_servings": 2}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	got, _ := repo.GetByMealDBID(dbc, u.ID, "52772")
	if got == nil || got.RecommendedServings == nil || *got.RecommendedServings != 2 {
		t.Fatalf("expected servings update, got %+v", got)
	}

	ok, err := repo.Delete(dbc, u.ID, first.ID)
	if err != nil || !ok {
		t.Fatalf("Delete: ok=%v err=%v", ok, err)
	}
	ok, _ = repo.Delete(dbc, u.ID, first.ID)
	if ok {
		t.Fatalf("second delete should report nothing removed")
	}
}

func TestPlannedMealRepoRangeAndSlot(t *testing.T) {
	db := testutil.DB(t)
	ctx := testutil.Ctx()
	dbc := dbctx.New(ctx)
	u := testutil.SeedUser(t, ctx, db, "plan@example.com")
	repo := NewPlannedMealRepo(db, testutil.Logger(t))

	today := types.DateOnly(time.Now())
	for i := 0; i < 3; i++ {
		pm := &types.PlannedMeal{
			UserID:      u.ID,
			PlannedDate: today.AddDate(0, 0, i).Add(5 * time.Hour),
			MealType:    "lunch",
			PlanJSON:    datatypes.JSON(`{"meals":[]}`),
		}
		if err := repo.Create(dbc, pm); err != nil {
			t.Fatalf("Create day %d: %v", i, err)
		}
	}
	dup := &types.PlannedMeal{UserID: u.ID, PlannedDate: today, MealType: "lunch"}
	if err := repo.Create(dbc, dup); err == nil {
		t.Fatalf("expected unique slot violation")
	}

	rows, err := repo.ListInRange(dbc, u.ID, today.AddDate(0, 0, 1), today.AddDate(0, 0, 2))
	if err != nil || len(rows) != 2 {
		t.Fatalf("ListInRange: err=%v n=%d", err, len(rows))
	}

	slot, err := repo.GetSlot(dbc, u.ID, today.Add(13*time.Hour), "lunch")
	if err != nil || slot == nil {
		t.Fatalf("GetSlot: err=%v slot=%v", err, slot)
	}
	cal := 500.0
	slot.TotalCalories = &cal
	if err := repo.Save(dbc, slot); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if missing, _ := repo.GetSlot(dbc, u.ID, today, "dinner"); missing != nil {
		t.Fatalf("expected nil for empty slot")
	}

	n, err := repo.DeleteInRange(dbc, u.ID, today, today.AddDate(0, 0, 1))
	if err != nil || n != 2 {
		t.Fatalf("DeleteInRange: n=%d err=%v", n, err)
	}
	all, _ := repo.ListByUser(dbc, u.ID)
	if len(all) != 1 {
		t.Fatalf("expected one remaining slot, got %d", len(all))
	}
}

func TestAdherenceRepoUpsert(t *testing.T) {
	db := testutil.DB(t)
	ctx := testutil.Ctx()
	dbc := dbctx.New(ctx)
	u := testutil.SeedUser(t, ctx, db, "adh@example.com")
	repo := NewAdherenceRepo(db, testutil.Logger(t))

	if got, err := repo.GetByUserID(dbc, u.ID); err != nil || got != nil {
		t.Fatalf("expected no snapshot yet: got=%v err=%v", got, err)
	}
	if _, err := repo.Upsert(dbc, u.ID, 0.6); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if _, err := repo.Upsert(dbc, u.ID, 1.2); err != nil {
		t.Fatalf("Upsert again: %v", err)
	}
	got, err := repo.GetByUserID(dbc, u.ID)
	if err != nil || got == nil || got.AdherenceRatio != 1.2 {
		t.Fatalf("expected ratio 1.2, got %+v err=%v", got, err)
	}
}

func TestVersionReposNewestFirst(t *testing.T) {
	db := testutil.DB(t)
	ctx := testutil.Ctx()
	dbc := dbctx.New(ctx)
	u := testutil.SeedUser(t, ctx, db, "ver@example.com")
	log := testutil.Logger(t)
	plans := NewMealPlanVersionRepo(db, log)
	lists := NewShoppingListVersionRepo(db, log)

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		v := &types.MealPlanVersion{
			UserID:              u.ID,
			MealPlanSnapshot:    datatypes.JSON(`{}`),
			DailyTotalsSnapshot: datatypes.JSON(`{}`),
			CreatedAt:           base.Add(time.Duration(i) * time.Minute),
		}
		if err := plans.Create(dbc, v); err != nil {
			t.Fatalf("Create plan version: %v", err)
		}
		if v.CreatedByAction != "manual" || v.VersionName == "" {
			t.Fatalf("expected defaults, got %+v", v)
		}
	}
	got, err := plans.List(dbc, u.ID, 2)
	if err != nil || len(got) != 2 || !got[0].CreatedAt.After(got[1].CreatedAt) {
		t.Fatalf("List: err=%v rows=%d", err, len(got))
	}
	if found, _ := plans.GetByID(dbc, u.ID, got[0].ID); found == nil {
		t.Fatalf("GetByID returned nil")
	}

	sl := &types.ShoppingListVersion{UserID: u.ID, Name: "week", ItemsJSON: datatypes.JSON(`{}`)}
	if err := lists.Create(dbc, sl); err != nil {
		t.Fatalf("Create shopping version: %v", err)
	}
	ok, err := lists.Delete(dbc, u.ID, sl.ID)
	if err != nil || !ok {
		t.Fatalf("Delete: ok=%v err=%v", ok, err)
	}
	rest, _ := lists.List(dbc, u.ID, 0)
	if len(rest) != 0 {
		t.Fatalf("expected empty list after delete")
	}
}

func TestPreferencesRepo(t *testing.T) {
	db := testutil.DB(t)
	ctx := testutil.Ctx()
	dbc := dbctx.New(ctx)
	u := testutil.SeedUser(t, ctx, db, "prefs@example.com")
	repo := NewPreferencesRepo(db, testutil.Logger(t))

	p := testutil.SeedPreferences(t, ctx, db, u.ID, "")
	if err := repo.UpdateFields(dbc, p.ID, map[string]interface{}{"calorie_target": 1800}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	got, err := repo.GetByUserID(dbc, u.ID)
	if err != nil || got == nil || got.CalorieTarget == nil || *got.CalorieTarget != 1800 {
		t.Fatalf("expected calorie target 1800, got %+v err=%v", got, err)
	}

	if err := repo.DeleteByUserID(dbc, u.ID); err != nil {
		t.Fatalf("DeleteByUserID: %v", err)
	}
	if got, _ := repo.GetByUserID(dbc, u.ID); got != nil {
		t.Fatalf("preferences should be gone, got %+v", got)
	}
}
