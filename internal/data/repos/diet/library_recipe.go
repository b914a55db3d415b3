package diet

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/nutribridge-backend/internal/data/db"
	types "github.com/yungbote/nutribridge-backend/internal/domain"
	"github.com/yungbote/nutribridge-backend/internal/pkg/dbctx"
	"github.com/yungbote/nutribridge-backend/internal/pkg/logger"
)

var ErrDuplicateLibraryRecipe = errors.New("library recipe already loaded")

// LibraryFilter narrows a library query. String filters are case-insensitive
// substring matches; Dietary matches ingredients_text.
type LibraryFilter struct {
	Category string
	Area     string
	Dietary  string
	// Text matches meal name, ingredients or instructions.
	Text string
	IDs  []uuid.UUID
	// Embedded keeps only rows with a vector; Unembedded only rows without.
	Embedded   bool
	Unembedded bool
	Limit      int
}

type LibraryStats struct {
	Total    int64 `json:"total"`
	Embedded int64 `json:"embedded"`
}

type LibraryRecipeRepo interface {
	Create(dbc dbctx.Context, r *types.LibraryRecipe) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.LibraryRecipe, error)
	GetByMealDBID(dbc dbctx.Context, mealDBID string) (*types.LibraryRecipe, error)
	Find(dbc dbctx.Context, f LibraryFilter) ([]*types.LibraryRecipe, error)
	SetEmbedding(dbc dbctx.Context, id uuid.UUID, vec datatypes.JSON) error
	Stats(dbc dbctx.Context) (LibraryStats, error)
	// Facets lists the distinct non-empty categories and areas.
	Facets(dbc dbctx.Context) (categories, areas []string, err error)
}

type libraryRecipeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLibraryRecipeRepo(db *gorm.DB, baseLog *logger.Logger) LibraryRecipeRepo {
	return &libraryRecipeRepo{db: db, log: baseLog.With("repo", "LibraryRecipeRepo")}
}

func (r *libraryRecipeRepo) Create(dbc dbctx.Context, rec *types.LibraryRecipe) error {
	if rec == nil {
		return nil
	}
	if err := dbc.Conn(r.db).Create(rec).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return ErrDuplicateLibraryRecipe
		}
		return err
	}
	return nil
}

func (r *libraryRecipeRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.LibraryRecipe, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	return r.first(dbc.Conn(r.db).Where("id = ?", id))
}

func (r *libraryRecipeRepo) GetByMealDBID(dbc dbctx.Context, mealDBID string) (*types.LibraryRecipe, error) {
	if mealDBID == "" {
		return nil, nil
	}
	return r.first(dbc.Conn(r.db).Where("mealdb_id = ?", mealDBID))
}

func (r *libraryRecipeRepo) first(q *gorm.DB) (*types.LibraryRecipe, error) {
	var out types.LibraryRecipe
	if err := q.First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func contains(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}

func (r *libraryRecipeRepo) Find(dbc dbctx.Context, f LibraryFilter) ([]*types.LibraryRecipe, error) {
	q := dbc.Conn(r.db).Model(&types.LibraryRecipe{})
	if strings.TrimSpace(f.Category) != "" {
		q = q.Where("LOWER(category) LIKE ?", contains(f.Category))
	}
	if strings.TrimSpace(f.Area) != "" {
		q = q.Where("LOWER(area) LIKE ?", contains(f.Area))
	}
	if strings.TrimSpace(f.Dietary) != "" {
		q = q.Where("LOWER(ingredients_text) LIKE ?", contains(f.Dietary))
	}
	if strings.TrimSpace(f.Text) != "" {
		p := contains(f.Text)
		q = q.Where("LOWER(meal_name) LIKE ? OR LOWER(ingredients_text) LIKE ? OR LOWER(instructions) LIKE ?", p, p, p)
	}
	if f.IDs != nil {
		if len(f.IDs) == 0 {
			return []*types.LibraryRecipe{}, nil
		}
		q = q.Where("id IN ?", f.IDs)
	}
	if f.Embedded {
		q = q.Where("embedding IS NOT NULL")
	}
	if f.Unembedded {
		q = q.Where("embedding IS NULL")
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	out := []*types.LibraryRecipe{}
	if err := q.Order("meal_name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *libraryRecipeRepo) SetEmbedding(dbc dbctx.Context, id uuid.UUID, vec datatypes.JSON) error {
	if id == uuid.Nil {
		return nil
	}
	return dbc.Conn(r.db).
		Model(&types.LibraryRecipe{}).
		Where("id = ?", id).
		Update("embedding", vec).Error
}

func (r *libraryRecipeRepo) Stats(dbc dbctx.Context) (LibraryStats, error) {
	var out LibraryStats
	conn := dbc.Conn(r.db)
	if err := conn.Model(&types.LibraryRecipe{}).Count(&out.Total).Error; err != nil {
		return out, err
	}
	if err := conn.Model(&types.LibraryRecipe{}).Where("embedding IS NOT NULL").Count(&out.Embedded).Error; err != nil {
		return out, err
	}
	return out, nil
}

func (r *libraryRecipeRepo) Facets(dbc dbctx.Context) ([]string, []string, error) {
	conn := dbc.Conn(r.db)
	categories := []string{}
	if err := conn.Model(&types.LibraryRecipe{}).Where("category <> ''").Distinct().Order("category").Pluck("category", &categories).Error; err != nil {
		return nil, nil, err
	}
	areas := []string{}
	if err := conn.Model(&types.LibraryRecipe{}).Where("area <> ''").Distinct().Order("area").Pluck("area", &areas).Error; err != nil {
		return nil, nil, err
	}
	return categories, areas, nil
}
