// Package usda searches USDA FoodData Central for per-food nutrients.
package usda

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/yungbote/nutribridge-backend/internal/pkg/ctxutil"
	"github.com/yungbote/nutribridge-backend/internal/pkg/httpx"
	"github.com/yungbote/nutribridge-backend/internal/pkg/logger"
)

const (
	defaultBaseURL  = "https://api.nal.usda.gov/fdc/v1"
	defaultPageSize = 25
	maxPageSize     = 200
	cacheTTL        = time.Hour
)

var (
	ErrNotConfigured = errors.New("usda: missing USDA_API_KEY")
	ErrFoodNotFound  = errors.New("usda: food not found")
)

// searchDataTypes restricts search to the curated datasets.
var searchDataTypes = []string{"Foundation", "SR Legacy"}

// Cache holds raw response bodies keyed without the API key.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration)
}

type Client interface {
	// Search pages through foods matching q. page is 1-based.
	Search(ctx context.Context, q string, page, pageSize int) (SearchResult, error)
	// Food returns the full record for one FDC id. ErrFoodNotFound when absent.
	Food(ctx context.Context, fdcID int64) (Food, error)
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	httpClient *http.Client
	cache      Cache
	limiter    *rate.Limiter
	maxRetries int
}

// NewClient reads USDA_API_KEY and USDA_BASE_URL. cache may be nil.
func NewClient(log *logger.Logger, cache Cache) (Client, error) {
	apiKey := strings.TrimSpace(os.Getenv("USDA_API_KEY"))
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	baseURL := strings.TrimSpace(os.Getenv("USDA_BASE_URL"))
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return newClient(log, baseURL, apiKey, &http.Client{Timeout: 12 * time.Second}, cache, rate.NewLimiter(rate.Every(time.Second), 1), 2), nil
}

func newClient(log *logger.Logger, baseURL, apiKey string, hc *http.Client, cache Cache, limiter *rate.Limiter, maxRetries int) *client {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &client{
		log:        log.With("service", "USDAClient"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: hc,
		cache:      cache,
		limiter:    limiter,
		maxRetries: maxRetries,
	}
}

// SearchResult is one page of matches; CurrentPage is 1-based.
type SearchResult struct {
	Query       string `json:"query"`
	TotalHits   int    `json:"total_hits"`
	CurrentPage int    `json:"current_page"`
	TotalPages  int    `json:"total_pages"`
	Foods       []Food `json:"foods"`
}

type MicronutrientAmount struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

type Micronutrients map[string]MicronutrientAmount

// Food carries nutrients per 100 g (or per serving for branded foods).
type Food struct {
	FDCID          int64          `json:"fdc_id"`
	Description    string         `json:"description"`
	DataType       string         `json:"data_type"`
	Brand          string         `json:"brand,omitempty"`
	ServingAmount  float64        `json:"serving_amount,omitempty"`
	ServingUnit    string         `json:"serving_unit,omitempty"`
	Calories       float64        `json:"calories"`
	ProteinG       float64        `json:"protein_g"`
	CarbsG         float64        `json:"carbs_g"`
	FatG           float64        `json:"fat_g"`
	FiberG         float64        `json:"fiber_g"`
	SugarG         float64        `json:"sugar_g"`
	SodiumMg       float64        `json:"sodium_mg"`
	Micronutrients Micronutrients `json:"micronutrients,omitempty"`
}

type searchResponse struct {
	TotalHits   int        `json:"totalHits"`
	CurrentPage int        `json:"currentPage"`
	TotalPages  int        `json:"totalPages"`
	Foods       []usdaFood `json:"foods"`
}

type usdaFood struct {
	FDCID           int64          `json:"fdcId"`
	Description     string         `json:"description"`
	DataType        string         `json:"dataType"`
	BrandOwner      string         `json:"brandOwner"`
	ServingSize     float64        `json:"servingSize"`
	ServingSizeUnit string         `json:"servingSizeUnit"`
	FoodNutrients   []usdaNutrient `json:"foodNutrients"`
}

// usdaNutrient covers both shapes: search results are flat, the full food
// record nests name and unit under "nutrient" and uses "amount".
type usdaNutrient struct {
	NutrientName string   `json:"nutrientName"`
	UnitName     string   `json:"unitName"`
	Value        *float64 `json:"value"`
	Amount       *float64 `json:"amount"`
	Nutrient     *struct {
		Name     string `json:"name"`
		UnitName string `json:"unitName"`
	} `json:"nutrient"`
}

func (n usdaNutrient) parts() (name, unit string, value float64) {
	name, unit = n.NutrientName, n.UnitName
	if n.Nutrient != nil {
		if name == "" {
			name = n.Nutrient.Name
		}
		if unit == "" {
			unit = n.Nutrient.UnitName
		}
	}
	switch {
	case n.Value != nil:
		value = *n.Value
	case n.Amount != nil:
		value = *n.Amount
	}
	return strings.TrimSpace(name), strings.TrimSpace(unit), value
}

func (c *client) Search(ctx context.Context, q string, page, pageSize int) (SearchResult, error) {
	q = strings.TrimSpace(q)
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	params := url.Values{
		"query":      {q},
		"pageSize":   {strconv.Itoa(pageSize)},
		"pageNumber": {strconv.Itoa(page)},
		"dataType":   searchDataTypes,
	}
	var resp searchResponse
	if err := c.get(ctx, "/foods/search", params, &resp); err != nil {
		return SearchResult{}, err
	}
	out := SearchResult{
		Query:       q,
		TotalHits:   resp.TotalHits,
		CurrentPage: page,
		TotalPages:  resp.TotalPages,
		Foods:       make([]Food, 0, len(resp.Foods)),
	}
	for _, f := range resp.Foods {
		out.Foods = append(out.Foods, f.normalize())
	}
	return out, nil
}

func (c *client) Food(ctx context.Context, fdcID int64) (Food, error) {
	if fdcID <= 0 {
		return Food{}, ErrFoodNotFound
	}
	var raw usdaFood
	err := c.get(ctx, "/food/"+strconv.FormatInt(fdcID, 10), url.Values{"format": {"full"}}, &raw)
	var se *httpx.StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
		return Food{}, ErrFoodNotFound
	}
	if err != nil {
		return Food{}, err
	}
	if raw.FDCID == 0 {
		return Food{}, ErrFoodNotFound
	}
	return raw.normalize(), nil
}

func (f usdaFood) normalize() Food {
	out := Food{
		FDCID:          f.FDCID,
		Description:    strings.TrimSpace(f.Description),
		DataType:       strings.TrimSpace(f.DataType),
		Brand:          strings.TrimSpace(f.BrandOwner),
		ServingAmount:  f.ServingSize,
		ServingUnit:    strings.TrimSpace(f.ServingSizeUnit),
		Micronutrients: Micronutrients{},
	}
	for _, n := range f.FoodNutrients {
		name, unit, value := n.parts()
		switch strings.ToLower(name) {
		case "energy":
			// Foundation foods list energy twice, in kcal and kJ.
			if unit == "" || strings.EqualFold(unit, "kcal") {
				out.Calories = value
			}
		case "protein":
			out.ProteinG = value
		case "carbohydrate, by difference":
			out.CarbsG = value
		case "total lipid (fat)":
			out.FatG = value
		case "fiber, total dietary":
			out.FiberG = value
		case "sugars, total including nlea", "sugars, total":
			out.SugarG = value
		case "sodium, na":
			out.SodiumMg = value
		default:
			if key, u, ok := normalizeMicronutrient(name, unit); ok {
				out.Micronutrients[key] = MicronutrientAmount{Value: value, Unit: u}
			}
		}
	}
	return out
}

func normalizeMicronutrient(name, unit string) (string, string, bool) {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return "", "", false
	}
	isVitamin := strings.Contains(lower, "vitamin")
	isMineral := false
	for _, m := range []string{"iron", "calcium", "potassium", "zinc", "magnesium", "phosphorus", "selenium", "copper", "manganese"} {
		if strings.Contains(lower, m) {
			isMineral = true
			break
		}
	}
	if !isVitamin && !isMineral {
		return "", "", false
	}
	clean := strings.NewReplacer(",", "", "(", "", ")", "", "-", "_", " ", "_").Replace(lower)
	for strings.Contains(clean, "__") {
		clean = strings.ReplaceAll(clean, "__", "_")
	}
	clean = strings.Trim(clean, "_")
	unit = strings.ToLower(strings.TrimSpace(unit))
	if clean == "" || unit == "" {
		return "", "", false
	}
	return clean, unit, true
}

// CacheKey is stable for equal parameters and never includes the API key.
func CacheKey(path string, params url.Values) string {
	sum := sha256.Sum256([]byte(path + "?" + params.Encode()))
	return "usda:" + hex.EncodeToString(sum[:12])
}

func (c *client) get(ctx context.Context, path string, params url.Values, out any) error {
	ctx = ctxutil.Default(ctx)
	key := CacheKey(path, params)
	if c.cache != nil {
		if raw, ok := c.cache.Get(ctx, key); ok {
			if err := json.Unmarshal(raw, out); err == nil {
				return nil
			}
		}
	}

	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("api_key", c.apiKey)

	var raw []byte
	err := httpx.Retry(ctx, httpx.RetryPolicy{
		MaxRetries: c.maxRetries,
		BaseDelay:  time.Second,
		MaxDelay:   5 * time.Second,
		OnRetry: func(attempt int, sleep time.Duration, err error) {
			c.log.Warn("USDA request retrying", "path", path, "attempt", attempt, "sleep", sleep.String(), "error", err.Error())
		},
	}, func(int) (*http.Response, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return resp, &httpx.StatusError{Service: "usda", StatusCode: resp.StatusCode, Body: httpx.ReadLimited(resp.Body, 512)}
		}
		raw, err = io.ReadAll(resp.Body)
		return resp, err
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("usda decode: %w", err)
	}
	if c.cache != nil {
		c.cache.Set(ctx, key, raw, cacheTTL)
	}
	return nil
}
