package diet

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/nutribridge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/nutribridge-backend/internal/domain"
	"github.com/yungbote/nutribridge-backend/internal/pkg/dbctx"
)

func TestLibraryRecipeRepoFilters(t *testing.T) {
	db := testutil.DB(t)
	ctx := testutil.Ctx()
	dbc := dbctx.New(ctx)
	repo := NewLibraryRecipeRepo(db, testutil.Logger(t))

	curry := testutil.SeedLibraryRecipe(t, ctx, db, "Chicken Curry", "Chicken", "Indian", []string{"Chicken", "Coconut Milk"}, []float64{1, 0})
	testutil.SeedLibraryRecipe(t, ctx, db, "Beef Tacos", "Beef", "Mexican", []string{"Beef", "Tortilla"}, nil)
	testutil.SeedLibraryRecipe(t, ctx, db, "Paneer Tikka", "Vegetarian", "Indian", []string{"Paneer", "Yogurt"}, []float64{0, 1})

	indian, err := repo.Find(dbc, LibraryFilter{Area: "indian"})
	if err != nil || len(indian) != 2 || indian[0].MealName != "Chicken Curry" {
		t.Fatalf("area filter: err=%v rows=%d", err, len(indian))
	}
	coconut, _ := repo.Find(dbc, LibraryFilter{Dietary: "COCONUT"})
	if len(coconut) != 1 || coconut[0].ID != curry.ID {
		t.Fatalf("dietary filter should match ingredients text, got %d rows", len(coconut))
	}
	text, _ := repo.Find(dbc, LibraryFilter{Text: "taco"})
	if len(text) != 1 || text[0].MealName != "Beef Tacos" {
		t.Fatalf("text filter: got %d rows", len(text))
	}
	embedded, _ := repo.Find(dbc, LibraryFilter{Embedded: true})
	if len(embedded) != 2 {
		t.Fatalf("expected 2 embedded rows, got %d", len(embedded))
	}
	missing, _ := repo.Find(dbc, LibraryFilter{Unembedded: true})
	if len(missing) != 1 || missing[0].MealName != "Beef Tacos" {
		t.Fatalf("expected tacos without embedding, got %d rows", len(missing))
	}
	none, _ := repo.Find(dbc, LibraryFilter{IDs: []uuid.UUID{}})
	if len(none) != 0 {
		t.Fatalf("empty id set should match nothing")
	}
	limited, _ := repo.Find(dbc, LibraryFilter{Limit: 1})
	if len(limited) != 1 {
		t.Fatalf("limit ignored, got %d rows", len(limited))
	}

	if err := repo.SetEmbedding(dbc, missing[0].ID, datatypes.JSON(`[0.5,0.5]`)); err != nil {
		t.Fatalf("SetEmbedding: %v", err)
	}
	stats, err := repo.Stats(dbc)
	if err != nil || stats.Total != 3 || stats.Embedded != 3 {
		t.Fatalf("stats=%+v err=%v", stats, err)
	}
	got, _ := repo.GetByID(dbc, missing[0].ID)
	if v := got.Vector(); len(v) != 2 || v[0] != 0.5 {
		t.Fatalf("unexpected vector %v", v)
	}

	cats, areas, err := repo.Facets(dbc)
	if err != nil || len(cats) != 3 || len(areas) != 2 || areas[0] != "Indian" {
		t.Fatalf("facets cats=%v areas=%v err=%v", cats, areas, err)
	}

	dup := &types.LibraryRecipe{MealDBID: curry.MealDBID, MealName: "Again"}
	if err := repo.Create(dbc, dup); err != ErrDuplicateLibraryRecipe {
		t.Fatalf("expected ErrDuplicateLibraryRecipe, got %v", err)
	}
	if r, _ := repo.GetByMealDBID(dbc, curry.MealDBID); r == nil || r.ID != curry.ID {
		t.Fatalf("GetByMealDBID mismatch")
	}
}
