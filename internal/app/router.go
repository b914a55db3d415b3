package app

import (
	"github.com/yungbote/nutribridge-backend/internal/http"
	"github.com/yungbote/nutribridge-backend/internal/observability"
	"github.com/yungbote/nutribridge-backend/internal/pkg/logger"
)

const serviceName = "nutribridge-api"

func wireServer(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *http.Server {
	rc := http.RouterConfig{
		Log:                log,
		Metrics:            metrics,
		CORSOrigins:        cfg.CORSOrigins,
		AuthHandler:        handlers.Auth,
		AuthMiddleware:     middleware.Auth,
		RealtimeHandler:    handlers.Realtime,
		JobHandler:         handlers.Job,
		StatusHandler:      handlers.Status,
		HealthHandler:      handlers.Health,
		PreferencesHandler: handlers.Preferences,
		MealHandler:        handlers.Meal,
		PlannerHandler:     handlers.Planner,
		VersionHandler:     handlers.Version,
		ChatHandler:        handlers.Chat,
		AnalyticsHandler:   handlers.Analytics,
		RecipeHandler:      handlers.Recipe,
	}
	if cfg.OtelEnabled {
		rc.ServiceName = serviceName
	}
	return http.NewServer(rc)
}
