package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/nutribridge-backend/internal/http/handlers"
	httpMW "github.com/yungbote/nutribridge-backend/internal/http/middleware"
	"github.com/yungbote/nutribridge-backend/internal/observability"
	"github.com/yungbote/nutribridge-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	CORSOrigins []string
	// ServiceName enables otelgin spans when set.
	ServiceName string

	AuthHandler     *httpH.AuthHandler
	AuthMiddleware  *httpMW.AuthMiddleware
	RealtimeHandler *httpH.RealtimeHandler
	JobHandler      *httpH.JobHandler
	StatusHandler   *httpH.StatusHandler

	HealthHandler      *httpH.HealthHandler
	PreferencesHandler *httpH.PreferencesHandler
	MealHandler        *httpH.MealHandler
	PlannerHandler     *httpH.PlannerHandler
	VersionHandler     *httpH.VersionHandler
	ChatHandler        *httpH.ChatHandler
	AnalyticsHandler   *httpH.AnalyticsHandler
	RecipeHandler      *httpH.RecipeHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins...))

	if cfg.StatusHandler != nil {
		r.GET("/healthcheck", cfg.StatusHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			protected.GET("/events", cfg.RealtimeHandler.SSEStream)
		}

		if cfg.JobHandler != nil {
			protected.GET("/jobs", cfg.JobHandler.ListJobs)
			protected.GET("/jobs/:id", cfg.JobHandler.GetJob)
		}

		// Health
		if h := cfg.HealthHandler; h != nil {
			protected.GET("/health/profile", h.GetProfile)
			protected.PUT("/health/profile", h.SaveProfile)
			protected.GET("/health/goal", h.GetGoalPlan)
			protected.PUT("/health/goal", h.SaveGoalPlan)
			protected.GET("/health/insights", h.Insights)
			protected.GET("/health/activity", h.Activity)
			protected.POST("/health/wellness-score/regenerate", h.RegenerateWellnessScore)
			protected.GET("/health/dashboard", h.Dashboard)
			protected.GET("/health/export", h.Export)
		}

		// Diet onboarding
		if h := cfg.PreferencesHandler; h != nil {
			protected.GET("/diet/preferences", h.Get)
			protected.PUT("/diet/preferences", h.Update)
			protected.POST("/diet/onboarding", h.Onboard)
			protected.POST("/diet/onboarding/reset", h.Reset)
			protected.GET("/diet/meal-planning", h.MealPlanning)
		}

		// Saved meals and recipes
		if h := cfg.MealHandler; h != nil {
			protected.GET("/meals", h.List)
			protected.POST("/meals", h.Save)
			protected.POST("/meals/custom", h.SaveCustom)
			protected.POST("/meals/custom/interpret", h.InterpretCustom)
			protected.DELETE("/meals/:id", h.Delete)
			protected.GET("/meals/:id/macros", h.Macros)
			protected.GET("/meals/:id/prep-time", h.PrepTime)
			protected.GET("/recipes/search", h.Search)
			protected.GET("/recipes/:id", h.Recipe)
		}

		// Generated recipes, substitutes, the recipe library and USDA foods
		if h := cfg.RecipeHandler; h != nil {
			protected.POST("/recipes/generate", h.Generate)
			protected.POST("/recipes/generate/save", h.SaveGenerated)
			protected.GET("/recipes/library", h.Library)
			protected.GET("/recipes/library/recommendations", h.Recommendations)
			protected.POST("/recipes/library/:id/save", h.SaveLibraryRecipe)
			protected.POST("/ingredients/substitute", h.SuggestSubstitute)
			protected.POST("/meals/:id/substitute", h.SaveSubstitute)
			protected.GET("/foods/search", h.SearchFoods)
			protected.GET("/foods/:fdc_id", h.Food)
		}

		// Planner
		if h := cfg.PlannerHandler; h != nil {
			protected.GET("/planner/week", h.Week)
			protected.POST("/planner/meals", h.AddMeal)
			protected.POST("/planner/meals/remove", h.RemoveMeal)
			protected.POST("/planner/swap", h.Swap)
			protected.POST("/planner/portion", h.AdjustPortion)
			protected.GET("/planner/nutrition-analysis", h.NutritionAnalysis)
		}

		// Versions and shopping lists
		if h := cfg.VersionHandler; h != nil {
			protected.GET("/planner/versions", h.List)
			protected.POST("/planner/versions", h.Create)
			protected.POST("/planner/versions/:id/restore", h.Restore)
			protected.DELETE("/planner/versions/:id", h.Delete)
			protected.GET("/shopping-list", h.ShoppingList)
			protected.GET("/shopping-list/editable", h.EditableShoppingList)
			protected.GET("/shopping-list/versions", h.ListShoppingLists)
			protected.POST("/shopping-list/versions", h.SaveShoppingList)
			protected.GET("/shopping-list/versions/:id", h.GetShoppingList)
			protected.DELETE("/shopping-list/versions/:id", h.DeleteShoppingList)
		}

		if h := cfg.ChatHandler; h != nil {
			protected.POST("/chat", h.Send)
			protected.GET("/chat/history", h.History)
			protected.DELETE("/chat/history", h.Clear)
		}

		if cfg.AnalyticsHandler != nil {
			protected.GET("/analytics/snapshot", cfg.AnalyticsHandler.Snapshot)
		}
	}

	return r
}
