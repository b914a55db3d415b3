package app

import (
	"gorm.io/gorm"

	httpH "github.com/yungbote/nutribridge-backend/internal/http/handlers"
	httpMW "github.com/yungbote/nutribridge-backend/internal/http/middleware"
	"github.com/yungbote/nutribridge-backend/internal/pkg/logger"
	"github.com/yungbote/nutribridge-backend/internal/realtime"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Status      *httpH.StatusHandler
	Auth        *httpH.AuthHandler
	Realtime    *httpH.RealtimeHandler
	Job         *httpH.JobHandler
	Health      *httpH.HealthHandler
	Preferences *httpH.PreferencesHandler
	Meal        *httpH.MealHandler
	Planner     *httpH.PlannerHandler
	Version     *httpH.VersionHandler
	Chat        *httpH.ChatHandler
	Analytics   *httpH.AnalyticsHandler
	Recipe      *httpH.RecipeHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, services Services, hub *realtime.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	var pinger httpH.Pinger
	if sqlDB, err := db.DB(); err == nil {
		pinger = sqlDB
	}
	return Handlers{
		Status:      httpH.NewStatusHandler(pinger),
		Auth:        httpH.NewAuthHandler(services.Auth),
		Realtime:    httpH.NewRealtimeHandler(log, hub),
		Job:         httpH.NewJobHandler(services.Jobs),
		Health:      httpH.NewHealthHandler(services.Health),
		Preferences: httpH.NewPreferencesHandler(services.Preferences),
		Meal:        httpH.NewMealHandler(services.Meals),
		Planner:     httpH.NewPlannerHandler(services.Planner),
		Version:     httpH.NewVersionHandler(services.Versions),
		Chat:        httpH.NewChatHandler(services.Chat),
		Analytics:   httpH.NewAnalyticsHandler(services.Analytics),
		Recipe:      httpH.NewRecipeHandler(services.Recipes),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{Auth: httpMW.NewAuthMiddleware(log, services.Auth)}
}
