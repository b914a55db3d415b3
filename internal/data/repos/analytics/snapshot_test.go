package analytics

import (
	"testing"

	"gorm.io/datatypes"

	"github.com/yungbote/nutribridge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/nutribridge-backend/internal/domain"
	"github.com/yungbote/nutribridge-backend/internal/pkg/dbctx"
)

func TestUpsertSummaryKeepsOneRow(t *testing.T) {
	db := testutil.DB(t)
	ctx := testutil.Ctx()
	dbc := dbctx.New(ctx)
	u := testutil.SeedUser(t, ctx, db, "snap@example.com")
	repo := NewUserDataSnapshotRepo(db, testutil.Logger(t))

	first, err := repo.UpsertSummary(dbc, u.ID, types.DataTypeHealthSummary, datatypes.JSON(`{"v":1}`))
	if err != nil {
		t.Fatalf("UpsertSummary: %v", err)
	}
	second, err := repo.UpsertSummary(dbc, u.ID, types.DataTypeHealthSummary, datatypes.JSON(`{"v":2}`))
	if err != nil {
		t.Fatalf("UpsertSummary again: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected the summary row to be reused")
	}
	if _, err := repo.Append(dbc, u.ID, types.DataTypeCurrentSnapshot, datatypes.JSON(`{}`)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if _, err := repo.Append(dbc, u.ID, types.DataTypeCurrentSnapshot, datatypes.JSON(`{}`)); err != nil {
		t.Fatalf("Append: %v", err)
	}

	n, err := repo.Count(dbc)
	if err != nil || n != 3 {
		t.Fatalf("Count: n=%d err=%v", n, err)
	}
	latest, _ := repo.Latest(dbc, u.ID, types.DataTypeHealthSummary)
	if latest == nil || string(latest.DataJSON) != `{"v":2}` {
		t.Fatalf("unexpected latest %+v", latest)
	}
	recent, _ := repo.Recent(dbc, 2)
	if len(recent) != 2 {
		t.Fatalf("expected 2 recent rows, got %d", len(recent))
	}
}
