package recipes

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/yungbote/nutribridge-backend/internal/domain/diet"
)

// Estimate is a rough per-recipe nutrition figure for library listings. It
// is never stored; saved meals get the LLM estimate instead.
type Estimate struct {
	Calories int     `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

type per100g struct {
	key                           string
	calories, protein, carbs, fat float64
}

// Checked in order; the first key contained in the ingredient name wins.
var nutritionTable = []per100g{
	{"chicken", 165, 31, 0, 3.6},
	{"beef", 250, 26, 0, 15},
	{"rice", 130, 2.7, 28, 0.3},
	{"pasta", 131, 5, 25, 1.1},
	{"tomato", 18, 0.9, 3.9, 0.2},
	{"onion", 40, 1.1, 9.3, 0.1},
	{"garlic", 149, 6.4, 33, 0.5},
	{"olive oil", 884, 0, 0, 100},
	{"butter", 717, 0.9, 0.1, 81},
	{"egg", 155, 13, 1.1, 11},
	{"milk", 42, 3.4, 5, 1},
	{"cheese", 402, 25, 1.3, 33},
	{"bread", 265, 9, 49, 3.2},
	{"potato", 77, 2, 17, 0.1},
	{"carrot", 41, 0.9, 10, 0.2},
	{"spinach", 23, 2.9, 3.6, 0.4},
	{"salmon", 208, 25, 0, 12},
	{"tuna", 144, 30, 0, 1},
	{"shrimp", 99, 24, 0.2, 0.3},
	{"lentil", 116, 9, 20, 0.4},
}

var gramsPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:g|grams?)\b`)

// gramsFactor scales a 100 g row by a measure such as "200g". Anything
// else counts as 100 g.
func gramsFactor(measure string) float64 {
	m := gramsPattern.FindStringSubmatch(strings.ToLower(measure))
	if m == nil {
		return 1
	}
	g, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 1
	}
	return g / 100
}

func EstimateNutrition(ings []diet.Ingredient) Estimate {
	var cal, protein, carb, fat float64
	for _, ing := range ings {
		name := strings.ToLower(ing.Ingredient)
		for _, row := range nutritionTable {
			if !strings.Contains(name, row.key) {
				continue
			}
			f := gramsFactor(ing.Measure)
			cal += row.calories * f
			protein += row.protein * f
			carb += row.carbs * f
			fat += row.fat * f
			break
		}
	}
	return Estimate{
		Calories: int(math.Round(cal)),
		Protein:  round1(protein),
		Carbs:    round1(carb),
		Fat:      round1(fat),
	}
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

// Cosine returns 0 for empty, mismatched or zero-length vectors.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, ma, mb float64
	for i := range a {
		dot += a[i] * b[i]
		ma += a[i] * a[i]
		mb += b[i] * b[i]
	}
	if ma == 0 || mb == 0 {
		return 0
	}
	return dot / (math.Sqrt(ma) * math.Sqrt(mb))
}
