package mealdb

import (
	"encoding/json"
	"strings"

	"gorm.io/datatypes"

	"github.com/yungbote/nutribridge-backend/internal/domain/diet"
)

// Meal wraps one raw MealDB record. The raw map is kept so it can be stored
// verbatim as raw_mealdb_data.
type Meal struct {
	Raw map[string]any
}

func (m Meal) str(key string) string {
	if v, ok := m.Raw[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func (m Meal) ID() string           { return m.str("idMeal") }
func (m Meal) Name() string         { return m.str("strMeal") }
func (m Meal) Category() string     { return m.str("strCategory") }
func (m Meal) Area() string         { return m.str("strArea") }
func (m Meal) Instructions() string { return m.str("strInstructions") }
func (m Meal) Thumb() string        { return m.str("strMealThumb") }
func (m Meal) Youtube() string      { return m.str("strYoutube") }
func (m Meal) Source() string       { return m.str("strSource") }

func (m Meal) JSON() datatypes.JSON {
	b, err := json.Marshal(m.Raw)
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(b)
}

func (m Meal) Ingredients() []diet.Ingredient {
	return diet.IngredientsFromRaw(m.JSON())
}

// Steps splits the instructions on CRLF and drops blank lines.
func (m Meal) Steps() []string {
	out := []string{}
	for _, s := range strings.Split(m.Instructions(), "\r\n") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Recipe is the simplified shape returned by the search and detail endpoints.
type Recipe struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Category     string            `json:"category"`
	Area         string            `json:"area"`
	Instructions any               `json:"instructions"`
	Image        string            `json:"image"`
	Ingredients  []diet.Ingredient `json:"ingredients"`
	Youtube      string            `json:"youtube"`
	Source       string            `json:"source"`
}

// Recipe renders m for listings; detail=true splits instructions into steps.
func (m Meal) Recipe(detail bool) Recipe {
	r := Recipe{
		ID:          m.ID(),
		Name:        m.Name(),
		Category:    m.Category(),
		Area:        m.Area(),
		Image:       m.Thumb(),
		Ingredients: m.Ingredients(),
		Youtube:     m.Youtube(),
		Source:      m.Source(),
	}
	if detail {
		r.Instructions = m.Steps()
	} else {
		r.Instructions = m.Instructions()
	}
	return r
}

// SavedMeal maps m onto a new saved-meal row; the caller sets UserID.
func (m Meal) SavedMeal() *diet.UserSavedMeal {
	row := &diet.UserSavedMeal{
		MealDBID:      m.ID(),
		MealName:      m.Name(),
		Category:      m.Category(),
		Area:          m.Area(),
		Instructions:  m.Instructions(),
		MealThumb:     m.Thumb(),
		RawMealDBData: m.JSON(),
		Source:        diet.SourceMealDB,
	}
	if y := m.Youtube(); y != "" {
		row.YoutubeLink = &y
	}
	if s := m.Source(); s != "" {
		row.SourceLink = &s
	}
	return row
}
