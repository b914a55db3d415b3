package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/nutribridge-backend/internal/data/repos"
	types "github.com/yungbote/nutribridge-backend/internal/domain"
	"github.com/yungbote/nutribridge-backend/internal/domain/diet"
	"github.com/yungbote/nutribridge-backend/internal/modules/mealplan"
	"github.com/yungbote/nutribridge-backend/internal/modules/shopping"
	"github.com/yungbote/nutribridge-backend/internal/pkg/dbctx"
	"github.com/yungbote/nutribridge-backend/internal/pkg/jsonx"
	"github.com/yungbote/nutribridge-backend/internal/pkg/logger"
	"github.com/yungbote/nutribridge-backend/internal/platform/apierr"
)

type VersionInput struct {
	VersionName string `json:"version_name"`
	Notes       string `json:"notes"`
	Action      string `json:"action"`
}

type VersionCreated struct {
	VersionID   uuid.UUID `json:"version_id"`
	VersionName string    `json:"version_name"`
	CreatedAt   time.Time `json:"created_at"`
}

type VersionSummary struct {
	ID              uuid.UUID `json:"id"`
	VersionName     string    `json:"version_name"`
	CreatedAt       time.Time `json:"created_at"`
	CreatedByAction string    `json:"created_by_action"`
	Notes           string    `json:"notes"`
	MealCount       int       `json:"meal_count"`
}

type RestoreResult struct {
	VersionName   string `json:"version_name"`
	RestoredMeals int    `json:"restored_meals"`
}

type ShoppingListInput struct {
	Name  string                  `json:"name"`
	Notes string                  `json:"notes"`
	Items []shopping.EditableItem `json:"items"`
}

// EditableShoppingList is the generated list flattened for editing, with the
// versions saved so far.
type EditableShoppingList struct {
	Items    []shopping.EditableItem      `json:"items"`
	Versions []*types.ShoppingListVersion `json:"versions"`
}

type VersionService interface {
	CreateVersion(ctx context.Context, in VersionInput) (*VersionCreated, error)
	ListVersions(ctx context.Context) ([]VersionSummary, error)
	// RestoreVersion replaces the planner window with the version's slots.
	RestoreVersion(ctx context.Context, id uuid.UUID) (*RestoreResult, error)
	DeleteVersion(ctx context.Context, id uuid.UUID) error

	ShoppingList(ctx context.Context) (*shopping.List, error)
	EditableShoppingList(ctx context.Context) (*EditableShoppingList, error)
	SaveShoppingList(ctx context.Context, in ShoppingListInput) (*types.ShoppingListVersion, error)
	GetShoppingList(ctx context.Context, id uuid.UUID) (*types.ShoppingListVersion, error)
	ListShoppingLists(ctx context.Context) ([]*types.ShoppingListVersion, error)
	DeleteShoppingList(ctx context.Context, id uuid.UUID) error
}

type versionService struct {
	db        *gorm.DB
	log       *logger.Logger
	repos     repos.Set
	analytics AnalyticsService
	now       func() time.Time
}

func NewVersionService(db *gorm.DB, baseLog *logger.Logger, r repos.Set, analytics AnalyticsService) VersionService {
	return &versionService{
		db:        db,
		log:       baseLog.With("service", "VersionService"),
		repos:     r,
		analytics: analytics,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *versionService) CreateVersion(ctx context.Context, in VersionInput) (*VersionCreated, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	w, err := loadWeek(dbc, s.repos, userID, s.now())
	if err != nil {
		return nil, err
	}
	snapshot := diet.PlanSnapshot{}
	for _, pm := range w.slots {
		key := types.DateKey(pm.PlannedDate)
		if snapshot[key] == nil {
			snapshot[key] = map[string]diet.SlotSnapshot{}
		}
		plan := mealplan.DecodePlan(pm)
		snapshot[key][pm.MealType] = diet.SlotSnapshot{
			ID:            pm.ID.String(),
			PlanJSON:      &plan,
			Notes:         pm.Notes,
			TotalCalories: pm.TotalCalories,
			TotalProtein:  pm.TotalProtein,
			TotalCarbs:    pm.TotalCarbs,
			TotalFat:      pm.TotalFat,
		}
	}
	totals := w.totals()
	daily := make(map[string]diet.Nutrition, len(w.window))
	for _, d := range w.window {
		key := types.DateKey(d)
		daily[key] = totals[key]
	}

	v := &types.MealPlanVersion{
		UserID:              userID,
		VersionName:         strings.TrimSpace(in.VersionName),
		Notes:               in.Notes,
		CreatedByAction:     strings.TrimSpace(in.Action),
		MealPlanSnapshot:    jsonx.Marshal(snapshot),
		DailyTotalsSnapshot: jsonx.Marshal(daily),
	}
	if err := s.repos.MealPlanVersion.Create(dbc, v); err != nil {
		return nil, fmt.Errorf("create meal plan version: %w", err)
	}
	s.log.Info("meal plan version created", "user_id", userID, "version_id", v.ID, "slots", snapshot.MealCount())
	syncDiet(ctx, s.log, s.analytics, userID)
	return &VersionCreated{VersionID: v.ID, VersionName: v.VersionName, CreatedAt: v.CreatedAt}, nil
}

func (s *versionService) ListVersions(ctx context.Context) ([]VersionSummary, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.repos.MealPlanVersion.List(dbctx.New(ctx), userID, 0)
	if err != nil {
		return nil, err
	}
	out := make([]VersionSummary, 0, len(rows))
	for _, v := range rows {
		snap, _ := jsonx.Decode[diet.PlanSnapshot](v.MealPlanSnapshot)
		out = append(out, VersionSummary{
			ID:              v.ID,
			VersionName:     v.VersionName,
			CreatedAt:       v.CreatedAt,
			CreatedByAction: v.CreatedByAction,
			Notes:           v.Notes,
			MealCount:       snap.MealCount(),
		})
	}
	return out, nil
}

func (s *versionService) RestoreVersion(ctx context.Context, id uuid.UUID) (*RestoreResult, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	out := &RestoreResult{}
	err = inTx(s.db, dbctx.New(ctx), func(dbc dbctx.Context) error {
		v, err := s.repos.MealPlanVersion.GetByID(dbc, userID, id)
		if err != nil {
			return err
		}
		if v == nil {
			return apierr.NotFound("version_not_found", "Version not found")
		}
		snap, err := jsonx.Decode[diet.PlanSnapshot](v.MealPlanSnapshot)
		if err != nil {
			return fmt.Errorf("decode version %s: %w", v.ID, err)
		}
		start, end := mealplan.Bounds(s.now())
		if _, err := s.repos.PlannedMeal.DeleteInRange(dbc, userID, start, end); err != nil {
			return fmt.Errorf("clear planner window: %w", err)
		}
		for dateKey, day := range snap {
			date, err := types.ParseDateKey(dateKey)
			if err != nil {
				s.log.Warn("skipping undated version slot", "version_id", v.ID, "date", dateKey)
				continue
			}
			for mealType, slot := range day {
				if slot.PlanJSON == nil {
					continue
				}
				pm := &types.PlannedMeal{
					UserID:        userID,
					PlannedDate:   date,
					MealType:      mealType,
					Notes:         slot.Notes,
					PlanJSON:      jsonx.Marshal(slot.PlanJSON),
					TotalCalories: slot.TotalCalories,
					TotalProtein:  slot.TotalProtein,
					TotalCarbs:    slot.TotalCarbs,
					TotalFat:      slot.TotalFat,
				}
				// A version taken on another day can hold dates outside the
				// cleared window; the snapshot slot replaces what is there.
				existing, err := s.repos.PlannedMeal.GetSlot(dbc, userID, date, mealType)
				if err != nil {
					return err
				}
				if existing != nil {
					pm.ID = existing.ID
					pm.CreatedAt = existing.CreatedAt
					err = s.repos.PlannedMeal.Save(dbc, pm)
				} else {
					err = s.repos.PlannedMeal.Create(dbc, pm)
				}
				if err != nil {
					return fmt.Errorf("restore slot %s/%s: %w", dateKey, mealType, err)
				}
				out.RestoredMeals++
			}
		}
		out.VersionName = v.VersionName
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("meal plan version restored", "user_id", userID, "version_id", id, "restored", out.RestoredMeals)
	syncDiet(ctx, s.log, s.analytics, userID)
	return out, nil
}

func (s *versionService) DeleteVersion(ctx context.Context, id uuid.UUID) error {
	userID, err := requestUser(ctx)
	if err != nil {
		return err
	}
	ok, err := s.repos.MealPlanVersion.Delete(dbctx.New(ctx), userID, id)
	if err != nil {
		return err
	}
	if !ok {
		return apierr.NotFound("version_not_found", "Version not found")
	}
	syncDiet(ctx, s.log, s.analytics, userID)
	return nil
}

func (s *versionService) build(ctx context.Context) (*week, map[string]int, map[string]*shopping.Item, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	w, err := loadWeek(dbctx.New(ctx), s.repos, userID, s.now())
	if err != nil {
		return nil, nil, nil, err
	}
	counts, items := shopping.Build(w.slots, w.meals)
	return w, counts, items, nil
}

func (s *versionService) ShoppingList(ctx context.Context) (*shopping.List, error) {
	w, counts, items, err := s.build(ctx)
	if err != nil {
		return nil, err
	}
	return &shopping.List{
		StartDate:   types.DateKey(w.window[0]),
		EndDate:     types.DateKey(w.window[len(w.window)-1]),
		MealCounts:  counts,
		Categorized: shopping.Group(items),
		Items:       shopping.Flatten(items),
	}, nil
}

func (s *versionService) EditableShoppingList(ctx context.Context) (*EditableShoppingList, error) {
	_, _, items, err := s.build(ctx)
	if err != nil {
		return nil, err
	}
	versions, err := s.ListShoppingLists(ctx)
	if err != nil {
		return nil, err
	}
	return &EditableShoppingList{Items: shopping.Flatten(items), Versions: versions}, nil
}

func (s *versionService) SaveShoppingList(ctx context.Context, in ShoppingListInput) (*types.ShoppingListVersion, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	items := in.Items
	if items == nil {
		items = []shopping.EditableItem{}
	}
	v := &types.ShoppingListVersion{
		UserID:    userID,
		Name:      strings.TrimSpace(in.Name),
		Notes:     in.Notes,
		ItemsJSON: jsonx.Marshal(items),
	}
	if err := s.repos.ShoppingListVersion.Create(dbctx.New(ctx), v); err != nil {
		return nil, fmt.Errorf("save shopping list: %w", err)
	}
	syncDiet(ctx, s.log, s.analytics, userID)
	return v, nil
}

func (s *versionService) GetShoppingList(ctx context.Context, id uuid.UUID) (*types.ShoppingListVersion, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	v, err := s.repos.ShoppingListVersion.GetByID(dbctx.New(ctx), userID, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, apierr.NotFound("shopping_list_not_found", "Not found")
	}
	return v, nil
}

func (s *versionService) ListShoppingLists(ctx context.Context) ([]*types.ShoppingListVersion, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.repos.ShoppingListVersion.List(dbctx.New(ctx), userID, 0)
}

func (s *versionService) DeleteShoppingList(ctx context.Context, id uuid.UUID) error {
	userID, err := requestUser(ctx)
	if err != nil {
		return err
	}
	ok, err := s.repos.ShoppingListVersion.Delete(dbctx.New(ctx), userID, id)
	if err != nil {
		return err
	}
	if !ok {
		return apierr.NotFound("shopping_list_not_found", "Not found")
	}
	syncDiet(ctx, s.log, s.analytics, userID)
	return nil
}
