package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/nutribridge-backend/internal/data/repos"
	jobhandlers "github.com/yungbote/nutribridge-backend/internal/jobs/handlers"
	"github.com/yungbote/nutribridge-backend/internal/jobs/runtime"
	"github.com/yungbote/nutribridge-backend/internal/jobs/worker"
	"github.com/yungbote/nutribridge-backend/internal/modules/assistant"
	"github.com/yungbote/nutribridge-backend/internal/modules/classify"
	"github.com/yungbote/nutribridge-backend/internal/modules/goalplan"
	"github.com/yungbote/nutribridge-backend/internal/modules/insights"
	"github.com/yungbote/nutribridge-backend/internal/modules/macros"
	"github.com/yungbote/nutribridge-backend/internal/modules/onboarding"
	"github.com/yungbote/nutribridge-backend/internal/modules/recipes"
	"github.com/yungbote/nutribridge-backend/internal/modules/recompute"
	"github.com/yungbote/nutribridge-backend/internal/modules/snapshots"
	"github.com/yungbote/nutribridge-backend/internal/pkg/logger"
	"github.com/yungbote/nutribridge-backend/internal/services"
)

type Services struct {
	Auth        services.AuthService
	Jobs        services.JobService
	Notifier    services.JobNotifier
	Health      services.HealthService
	Preferences services.PreferencesService
	Meals       services.MealService
	Planner     services.PlannerService
	Versions    services.VersionService
	Chat        services.ChatService
	Analytics   services.AnalyticsService
	Recipes     services.RecipeService

	Orchestrator  *recompute.Orchestrator
	RecipeLibrary *recipes.Library
	JobWorker     *worker.Worker
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r repos.Set, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	insightWriter := insights.New(clients.LLM)
	estimator := macros.New(clients.LLM)
	onboarder := onboarding.New(clients.LLM)
	collector := snapshots.NewCollector(r, log)

	notifier := services.NewJobNotifier(clients.Bus, log)
	jobSvc := services.NewJobService(db, log, r.JobRun, notifier)

	orch := recompute.NewOrchestrator(db, r, log, recompute.Options{
		Classifier: classify.New(clients.LLM),
		Insights:   insightWriter,
		Goals:      goalplan.New(clients.LLM),
		Policy:     cfg.StalenessPolicy,
	})
	orch.SetEnqueuer(jobSvc)

	analytics := services.NewAnalyticsService(r, collector, log)
	library := recipes.NewLibrary(r.LibraryRecipe, clients.Embedder, log)

	registry := runtime.NewRegistry()
	if err := jobhandlers.RegisterAll(registry, jobhandlers.Deps{
		Repos:        r,
		Orchestrator: orch,
		Estimator:    estimator,
		Onboarder:    onboarder,
		Syncer:       analytics,
		Log:          log,
	}); err != nil {
		return Services{}, fmt.Errorf("register job handlers: %w", err)
	}

	return Services{
		Auth:          services.NewAuthService(log, r.User, cfg.JWTSecretKey, cfg.AccessTokenTTL),
		Jobs:          jobSvc,
		Notifier:      notifier,
		Health:        services.NewHealthService(db, log, r, jobSvc, orch),
		Preferences:   services.NewPreferencesService(db, log, r, jobSvc, onboarder, analytics),
		Meals:         services.NewMealService(db, log, r, jobSvc, clients.MealDB, estimator, orch, analytics),
		Planner:       services.NewPlannerService(db, log, r, insightWriter, analytics),
		Versions:      services.NewVersionService(db, log, r, analytics),
		Chat:          services.NewChatService(log, clients.Sessions, collector, assistant.New(clients.LLM)),
		Analytics:     analytics,
		Recipes:       services.NewRecipeService(db, log, r, jobSvc, recipes.New(clients.LLM), library, clients.USDA, analytics),
		Orchestrator:  orch,
		RecipeLibrary: library,
		JobWorker:     worker.NewWorker(db, log, r.JobRun, registry, notifier),
	}, nil
}
