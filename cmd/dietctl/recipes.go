package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/yungbote/nutribridge-backend/internal/modules/recipes"
)

var (
	loadLetters string
	loadLimit   int
	loadDelay   time.Duration
	embedForce  bool
	embedLimit  int
)

var recipesCmd = &cobra.Command{
	Use:   "recipes",
	Short: "Maintain the shared recipe library",
}

var recipesLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "Import MealDB recipes into the library",
	Long: `Walk MealDB by first letter and store new recipes with their search
index. Recipes already in the library are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		letters := strings.ToLower(strings.TrimSpace(loadLetters))
		for _, r := range letters {
			if r < 'a' || r > 'z' {
				return fmt.Errorf("--letters must contain only a-z, got %q", loadLetters)
			}
		}
		rep, err := theApp.Services.RecipeLibrary.Load(cmd.Context(), theApp.Clients.MealDB, recipes.LoadOptions{
			Letters: letters,
			Limit:   loadLimit,
			Delay:   loadDelay,
		})
		if err != nil {
			return err
		}
		printLoadReport(cmd.OutOrStdout(), rep)
		return nil
	},
}

var recipesEmbedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Compute embeddings for library recipes",
	Long: `Embed every library recipe that has no vector yet. --force re-embeds
all of them. Requires OPENAI_API_KEY.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rep, err := theApp.Services.RecipeLibrary.EmbedMissing(cmd.Context(), recipes.EmbedOptions{
			Force: embedForce,
			Limit: embedLimit,
		})
		if err != nil {
			return err
		}
		printEmbedReport(cmd.OutOrStdout(), rep)
		if rep.Failed > 0 {
			return fmt.Errorf("%d recipes failed to embed", rep.Failed)
		}
		return nil
	},
}

func printLoadReport(w io.Writer, rep recipes.LoadReport) {
	fmt.Fprintf(w, "%s loaded %d recipes, skipped %d\n", color.GreenString("✓"), rep.Loaded, rep.Skipped)
	fmt.Fprintf(w, "library: %d recipes, %d embedded, %d categories, %d areas\n",
		rep.Stats.Total, rep.Stats.Embedded, rep.Categories, rep.Areas)
}

func printEmbedReport(w io.Writer, rep recipes.EmbedReport) {
	mark := color.GreenString("✓")
	if rep.Failed > 0 {
		mark = color.RedString("✗")
	}
	fmt.Fprintf(w, "%s embedded %d of %d recipes", mark, rep.Updated, rep.Processed)
	if rep.Failed > 0 {
		fmt.Fprintf(w, ", %d failed", rep.Failed)
	}
	fmt.Fprintf(w, "\nlibrary: %d of %d recipes embedded\n", rep.Stats.Embedded, rep.Stats.Total)
}

func init() {
	recipesLoadCmd.Flags().StringVar(&loadLetters, "letters", "abcdefghijklmnopqrstuvwxyz", "first letters to walk, in order")
	recipesLoadCmd.Flags().IntVar(&loadLimit, "limit", 500, "stop after this many new recipes")
	recipesLoadCmd.Flags().DurationVar(&loadDelay, "delay", 100*time.Millisecond, "pause between letters")
	recipesEmbedCmd.Flags().BoolVar(&embedForce, "force", false, "re-embed recipes that already have a vector")
	recipesEmbedCmd.Flags().IntVar(&embedLimit, "limit", 0, "embed at most this many recipes (0 = all)")
	recipesCmd.AddCommand(recipesLoadCmd, recipesEmbedCmd)
	rootCmd.AddCommand(recipesCmd)
}
