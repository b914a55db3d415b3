package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	dietrepo "github.com/yungbote/nutribridge-backend/internal/data/repos/diet"
	"github.com/yungbote/nutribridge-backend/internal/modules/recipes"
	"github.com/yungbote/nutribridge-backend/internal/pkg/pointers"
	"github.com/yungbote/nutribridge-backend/internal/services"
)

func TestPrintReport(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	failed := printReport(&buf, services.SyncReport{
		Email:         "eater@example.com",
		WellnessScore: pointers.Ptr(72),
		BMI:           pointers.Ptr(24.69),
		Adherence:     pointers.Ptr(0.6),
	})
	if failed {
		t.Fatalf("clean report flagged as failed")
	}
	if got := buf.String(); got != "✓ eater@example.com score=72 bmi=24.7 adherence=0.60\n" {
		t.Fatalf("line=%q", got)
	}

	buf.Reset()
	if !printReport(&buf, services.SyncReport{Email: "x@example.com", DietError: "boom"}) {
		t.Fatalf("diet error should be reported")
	}
	if !strings.Contains(buf.String(), "diet: boom") {
		t.Fatalf("line=%q", buf.String())
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := map[string]bool{"migrate": false, "sync-user-data": false, "recompute": false, "worker": false, "recipes": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Fatalf("missing command %s", name)
		}
	}
	if f := syncCmd.Flags().Lookup("all-users"); f == nil || f.DefValue != "false" {
		t.Fatalf("all-users flag=%+v", f)
	}
}

func TestRecipeReports(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	printLoadReport(&buf, recipes.LoadReport{Loaded: 3, Skipped: 1, Stats: dietrepo.LibraryStats{Total: 10, Embedded: 7}, Categories: 4, Areas: 5})
	if got := buf.String(); got != "✓ loaded 3 recipes, skipped 1\nlibrary: 10 recipes, 7 embedded, 4 categories, 5 areas\n" {
		t.Fatalf("load report=%q", got)
	}

	buf.Reset()
	printEmbedReport(&buf, recipes.EmbedReport{Processed: 4, Updated: 3, Failed: 1, Stats: dietrepo.LibraryStats{Total: 10, Embedded: 9}})
	if got := buf.String(); got != "✗ embedded 3 of 4 recipes, 1 failed\nlibrary: 9 of 10 recipes embedded\n" {
		t.Fatalf("embed report=%q", got)
	}

	if f := recipesLoadCmd.Flags().Lookup("limit"); f == nil || f.DefValue != "500" {
		t.Fatalf("load limit flag=%+v", f)
	}
}
