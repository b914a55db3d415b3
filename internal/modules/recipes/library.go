package recipes

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/nutribridge-backend/internal/data/repos"
	dietrepo "github.com/yungbote/nutribridge-backend/internal/data/repos/diet"
	"github.com/yungbote/nutribridge-backend/internal/domain/diet"
	"github.com/yungbote/nutribridge-backend/internal/pkg/dbctx"
	"github.com/yungbote/nutribridge-backend/internal/pkg/jsonx"
	"github.com/yungbote/nutribridge-backend/internal/pkg/logger"
	"github.com/yungbote/nutribridge-backend/internal/platform/mealdb"
	"github.com/yungbote/nutribridge-backend/internal/platform/openai"
)

const (
	searchLimit        = 50
	vectorTopK         = 20
	embedInstructions  = 500
	defaultEmbedWorker = 4
	defaultRecommend   = 10
	defaultLoadLimit   = 500
	defaultLoadDelay   = 100 * time.Millisecond
	defaultLoadLetters = "abcdefghijklmnopqrstuvwxyz"
	recommendFallback  = "healthy dinner recipe"
)

// Library searches and maintains the shared recipe table.
type Library struct {
	repo  repos.LibraryRecipeRepo
	embed openai.Embedder
	log   *logger.Logger
}

// NewLibrary works without an embedder; search then uses text matching only.
func NewLibrary(repo repos.LibraryRecipeRepo, embed openai.Embedder, baseLog *logger.Logger) *Library {
	return &Library{repo: repo, embed: embed, log: baseLog.With("module", "RecipeLibrary")}
}

type Query struct {
	Text     string
	Category string
	Area     string
	Dietary  string
	// Vector ranks by embedding similarity when Text is set.
	Vector bool
}

// Hit is one library recipe as listed to users.
type Hit struct {
	ID           uuid.UUID              `json:"id"`
	MealName     string                 `json:"meal_name"`
	Category     string                 `json:"category"`
	Area         string                 `json:"area"`
	MealThumb    string                 `json:"meal_thumb"`
	Ingredients  []diet.Ingredient      `json:"ingredients"`
	Instructions []diet.InstructionStep `json:"instructions"`
	Similarity   *float64               `json:"similarity_score,omitempty"`
}

type SearchResult struct {
	Query      string                `json:"query"`
	Results    []Hit                 `json:"results"`
	Categories []string              `json:"categories"`
	Areas      []string              `json:"areas"`
	Stats      dietrepo.LibraryStats `json:"stats"`
	// VectorSearch reports whether similarity ranking was actually used.
	VectorSearch bool `json:"vector_search"`
	RAGEnabled   bool `json:"rag_enabled"`
}

func hitFor(r *diet.LibraryRecipe) Hit {
	return Hit{
		ID:           r.ID,
		MealName:     r.MealName,
		Category:     r.Category,
		Area:         r.Area,
		MealThumb:    r.MealThumb,
		Ingredients:  r.Ingredients(),
		Instructions: r.InstructionSteps(),
	}
}

type scored struct {
	recipe *diet.LibraryRecipe
	score  float64
}

// rank orders rows by similarity to vec, ties by name, keeping at most k.
func rank(vec []float64, rows []*diet.LibraryRecipe, k int) []scored {
	out := make([]scored, 0, len(rows))
	for _, r := range rows {
		out = append(out, scored{recipe: r, score: Cosine(vec, r.Vector())})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].score > out[j].score })
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out
}

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }

// Search applies the filters, then ranks by similarity when q.Vector is set
// and embeddings exist. A failed embedding call falls back to text matching.
func (l *Library) Search(ctx context.Context, q Query) (*SearchResult, error) {
	dbc := dbctx.New(ctx)
	stats, err := l.repo.Stats(dbc)
	if err != nil {
		return nil, err
	}
	cats, areas, err := l.repo.Facets(dbc)
	if err != nil {
		return nil, err
	}
	out := &SearchResult{
		Query:      strings.TrimSpace(q.Text),
		Results:    []Hit{},
		Categories: cats,
		Areas:      areas,
		Stats:      stats,
		RAGEnabled: stats.Embedded > 0 && l.embed != nil,
	}
	f := dietrepo.LibraryFilter{Category: q.Category, Area: q.Area, Dietary: q.Dietary}

	if out.Query != "" && q.Vector && out.RAGEnabled {
		vec, err := l.embed.Embed(ctx, out.Query)
		if err == nil {
			f.Embedded = true
			rows, err := l.repo.Find(dbc, f)
			if err != nil {
				return nil, err
			}
			for _, s := range rank(vec, rows, vectorTopK) {
				h := hitFor(s.recipe)
				score := round3(s.score)
				h.Similarity = &score
				out.Results = append(out.Results, h)
			}
			out.VectorSearch = true
			return out, nil
		}
		l.log.Warn("query embedding failed; using text search", "error", err)
	}

	f.Text = out.Query
	f.Limit = searchLimit
	rows, err := l.repo.Find(dbc, f)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out.Results = append(out.Results, hitFor(r))
	}
	return out, nil
}

type Recommendation struct {
	Hit
	Nutrition Estimate `json:"nutrition"`
}

// RecommendationQuery joins dietary tags and preferred cuisines.
func RecommendationQuery(p Profile) string {
	parts := append(append([]string{}, p.DietaryTags...), p.Cuisines...)
	q := strings.TrimSpace(strings.Join(parts, " "))
	if q == "" {
		return recommendFallback
	}
	return q
}

func containsAllergen(ings []diet.Ingredient, allergies []string) bool {
	if len(allergies) == 0 {
		return false
	}
	names := make([]string, 0, len(ings))
	for _, ing := range ings {
		names = append(names, strings.ToLower(ing.Ingredient))
	}
	text := strings.Join(names, " ")
	for _, a := range allergies {
		if a = strings.ToLower(strings.TrimSpace(a)); a != "" && strings.Contains(text, a) {
			return true
		}
	}
	return false
}

// Recommend ranks the library against the profile's tags and cuisines and
// drops recipes containing an allergen. n <= 0 means ten. The list is empty
// when no embeddings are available.
func (l *Library) Recommend(ctx context.Context, p Profile, n int) ([]Recommendation, error) {
	if n <= 0 {
		n = defaultRecommend
	}
	out := []Recommendation{}
	if l.embed == nil {
		return out, nil
	}
	vec, err := l.embed.Embed(ctx, RecommendationQuery(p))
	if err != nil {
		l.log.Warn("recommendation embedding failed", "error", err)
		return out, nil
	}
	rows, err := l.repo.Find(dbctx.New(ctx), dietrepo.LibraryFilter{Embedded: true})
	if err != nil {
		return nil, err
	}
	for _, s := range rank(vec, rows, 2*n) {
		h := hitFor(s.recipe)
		if containsAllergen(h.Ingredients, p.Allergies) {
			continue
		}
		score := round3(s.score)
		h.Similarity = &score
		out = append(out, Recommendation{Hit: h, Nutrition: EstimateNutrition(h.Ingredients)})
		if len(out) >= n {
			break
		}
	}
	return out, nil
}

// EmbeddingText is the text embedded for one recipe: name, ingredients, the
// start of the instructions, category and area.
func EmbeddingText(r *diet.LibraryRecipe) string {
	var b strings.Builder
	b.WriteString(r.MealName)
	b.WriteString(" ")
	for _, ing := range r.Ingredients() {
		b.WriteString(ing.Ingredient + " " + ing.Measure + " ")
	}
	instr := []rune(r.Instructions)
	if len(instr) > embedInstructions {
		instr = instr[:embedInstructions]
	}
	b.WriteString(string(instr))
	if r.Category != "" {
		b.WriteString(" " + r.Category)
	}
	if r.Area != "" {
		b.WriteString(" " + r.Area)
	}
	return b.String()
}

type EmbedOptions struct {
	// Force re-embeds recipes that already have a vector.
	Force   bool
	Limit   int
	Workers int
}

type EmbedReport struct {
	Processed int                   `json:"processed"`
	Updated   int                   `json:"updated"`
	Failed    int                   `json:"failed"`
	Stats     dietrepo.LibraryStats `json:"stats"`
}

var ErrNoEmbedder = errors.New("recipes: no embedding client configured")

// EmbedMissing computes vectors for recipes without one. Per-recipe failures
// are counted and logged; only cancellation and storage errors abort.
func (l *Library) EmbedMissing(ctx context.Context, opts EmbedOptions) (EmbedReport, error) {
	var rep EmbedReport
	if l.embed == nil {
		return rep, ErrNoEmbedder
	}
	dbc := dbctx.New(ctx)
	rows, err := l.repo.Find(dbc, dietrepo.LibraryFilter{Unembedded: !opts.Force, Limit: opts.Limit})
	if err != nil {
		return rep, err
	}
	rep.Processed = len(rows)
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultEmbedWorker
	}

	var updated, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, r := range rows {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			vec, err := l.embed.Embed(gctx, EmbeddingText(r))
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				failed.Add(1)
				l.log.Warn("recipe embedding failed", "library_recipe_id", r.ID, "meal_name", r.MealName, "error", err)
				return nil
			}
			if err := l.repo.SetEmbedding(dbctx.New(gctx), r.ID, jsonx.Marshal(vec)); err != nil {
				return err
			}
			updated.Add(1)
			return nil
		})
	}
	err = g.Wait()
	rep.Updated = int(updated.Load())
	rep.Failed = int(failed.Load())
	if err != nil {
		return rep, err
	}
	rep.Stats, err = l.repo.Stats(dbc)
	l.log.Info("recipe embeddings updated", "processed", rep.Processed, "updated", rep.Updated, "failed", rep.Failed)
	return rep, err
}

type LoadOptions struct {
	Letters string
	Limit   int
	// Delay is waited between letters.
	Delay time.Duration
}

type LoadReport struct {
	Loaded     int                   `json:"loaded"`
	Skipped    int                   `json:"skipped"`
	Stats      dietrepo.LibraryStats `json:"stats"`
	Categories int                   `json:"categories"`
	Areas      int                   `json:"areas"`
}

// FromMeal maps a MealDB record onto a library row with its search index.
func FromMeal(m mealdb.Meal) *diet.LibraryRecipe {
	r := &diet.LibraryRecipe{
		MealDBID:      m.ID(),
		MealName:      m.Name(),
		Category:      m.Category(),
		Area:          m.Area(),
		Instructions:  m.Instructions(),
		MealThumb:     m.Thumb(),
		RawMealDBData: m.JSON(),
	}
	if y := m.Youtube(); y != "" {
		r.YoutubeLink = &y
	}
	if s := m.Source(); s != "" {
		r.SourceLink = &s
	}
	r.Index()
	return r
}

// Load pulls recipes from MealDB letter by letter until Limit new rows are
// stored. Recipes already in the library are skipped; a failing letter is
// logged and the next one tried.
func (l *Library) Load(ctx context.Context, src mealdb.Client, opts LoadOptions) (LoadReport, error) {
	var rep LoadReport
	letters := opts.Letters
	if letters == "" {
		letters = defaultLoadLetters
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultLoadLimit
	}
	delay := opts.Delay
	if delay < 0 {
		delay = 0
	}
	dbc := dbctx.New(ctx)

	for i, letter := range letters {
		if rep.Loaded >= limit {
			break
		}
		if i > 0 && delay > 0 {
			t := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return rep, ctx.Err()
			case <-t.C:
			}
		}
		meals, err := src.ByFirstLetter(ctx, string(letter))
		if err != nil {
			if ctx.Err() != nil {
				return rep, ctx.Err()
			}
			l.log.Warn("library load: letter failed", "letter", string(letter), "error", err)
			continue
		}
		for _, m := range meals {
			if rep.Loaded >= limit {
				break
			}
			if m.ID() == "" || m.Name() == "" {
				rep.Skipped++
				continue
			}
			err := l.repo.Create(dbc, FromMeal(m))
			switch {
			case errors.Is(err, dietrepo.ErrDuplicateLibraryRecipe):
				rep.Skipped++
			case err != nil:
				return rep, err
			default:
				rep.Loaded++
			}
		}
	}

	var err error
	if rep.Stats, err = l.repo.Stats(dbc); err != nil {
		return rep, err
	}
	cats, areas, err := l.repo.Facets(dbc)
	if err != nil {
		return rep, err
	}
	rep.Categories, rep.Areas = len(cats), len(areas)
	l.log.Info("recipe library loaded", "loaded", rep.Loaded, "skipped", rep.Skipped, "total", rep.Stats.Total)
	return rep, nil
}
