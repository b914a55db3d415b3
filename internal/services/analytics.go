package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/nutribridge-backend/internal/data/repos"
	types "github.com/yungbote/nutribridge-backend/internal/domain"
	"github.com/yungbote/nutribridge-backend/internal/modules/snapshots"
	"github.com/yungbote/nutribridge-backend/internal/pkg/dbctx"
	errs "github.com/yungbote/nutribridge-backend/internal/pkg/errors"
	"github.com/yungbote/nutribridge-backend/internal/pkg/jsonx"
	"github.com/yungbote/nutribridge-backend/internal/pkg/logger"
)

const syncAllParallelism = 4

// SyncReport summarizes one user's sync for the CLI.
type SyncReport struct {
	UserID        uuid.UUID `json:"user_id"`
	Email         string    `json:"email"`
	HealthError   string    `json:"health_error,omitempty"`
	DietError     string    `json:"diet_error,omitempty"`
	WellnessScore *int      `json:"wellness_score,omitempty"`
	BMI           *float64  `json:"bmi,omitempty"`
	SavedMeals    *int      `json:"saved_meals,omitempty"`
	PlannedMeals  *int      `json:"planned_meals,omitempty"`
	Adherence     *float64  `json:"adherence_ratio,omitempty"`
}

type AnalyticsService interface {
	// SyncUser rewrites both summaries and appends a combined snapshot.
	SyncUser(ctx context.Context, userID uuid.UUID) (SyncReport, error)
	SyncHealth(ctx context.Context, userID uuid.UUID) error
	SyncDiet(ctx context.Context, userID uuid.UUID) error
	SyncAll(ctx context.Context) ([]SyncReport, error)
	Latest(ctx context.Context, userID uuid.UUID, dataType string) (*types.UserDataSnapshot, error)
	Count(ctx context.Context) (int64, error)
	Recent(ctx context.Context, limit int) ([]*types.UserDataSnapshot, error)
}

type analyticsService struct {
	repos     repos.Set
	collector *snapshots.Collector
	log       *logger.Logger
}

func NewAnalyticsService(r repos.Set, collector *snapshots.Collector, baseLog *logger.Logger) AnalyticsService {
	return &analyticsService{
		repos:     r,
		collector: collector,
		log:       baseLog.With("service", "AnalyticsService"),
	}
}

func (s *analyticsService) SyncHealth(ctx context.Context, userID uuid.UUID) error {
	view := s.collector.HealthView(ctx, userID)
	_, err := s.repos.UserDataSnapshot.UpsertSummary(dbctx.New(ctx), userID, types.DataTypeHealthSummary, jsonx.Marshal(view))
	return err
}

func (s *analyticsService) SyncDiet(ctx context.Context, userID uuid.UUID) error {
	view := s.collector.DietView(ctx, userID)
	_, err := s.repos.UserDataSnapshot.UpsertSummary(dbctx.New(ctx), userID, types.DataTypeDietSummary, jsonx.Marshal(view))
	return err
}

func (s *analyticsService) SyncUser(ctx context.Context, userID uuid.UUID) (SyncReport, error) {
	report := SyncReport{UserID: userID}
	dbc := dbctx.New(ctx)
	user, err := s.repos.User.GetByID(dbc, userID)
	if err != nil {
		return report, err
	}
	if user == nil {
		return report, fmt.Errorf("user %s: %w", userID, errs.ErrNotFound)
	}
	report.Email = user.Email

	healthView, dietView := s.collector.Both(ctx, userID)
	fillReport(&report, healthView, dietView)

	if _, err := s.repos.UserDataSnapshot.UpsertSummary(dbc, userID, types.DataTypeHealthSummary, jsonx.Marshal(healthView)); err != nil {
		return report, fmt.Errorf("save health summary: %w", err)
	}
	if _, err := s.repos.UserDataSnapshot.UpsertSummary(dbc, userID, types.DataTypeDietSummary, jsonx.Marshal(dietView)); err != nil {
		return report, fmt.Errorf("save diet summary: %w", err)
	}
	combined := map[string]any{
		"health":     healthView,
		"diet":       dietView,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"user_email": user.Email,
	}
	if _, err := s.repos.UserDataSnapshot.Append(dbc, userID, types.DataTypeCurrentSnapshot, jsonx.Marshal(combined)); err != nil {
		return report, fmt.Errorf("save combined snapshot: %w", err)
	}
	s.log.Debug("user data synced", "user_id", userID)
	return report, nil
}

func fillReport(r *SyncReport, healthView, dietView any) {
	switch h := healthView.(type) {
	case *snapshots.Health:
		score := h.Profile.WellnessScore
		r.WellnessScore = &score
		r.BMI = h.Profile.BMI
	case snapshots.ErrorPayload:
		r.HealthError = h.Error
	}
	switch d := dietView.(type) {
	case *snapshots.Diet:
		saved := d.SavedMeals.Count
		planned := d.CurrentPlan.PlannedMealsCount
		ratio := d.NutritionAdherence.Ratio
		r.SavedMeals = &saved
		r.PlannedMeals = &planned
		r.Adherence = &ratio
	case snapshots.ErrorPayload:
		r.DietError = d.Error
	}
}

// SyncAll syncs every user with bounded parallelism. Per-user failures are
// logged and do not stop the others.
func (s *analyticsService) SyncAll(ctx context.Context) ([]SyncReport, error) {
	users, err := s.repos.User.ListAll(dbctx.New(ctx))
	if err != nil {
		return nil, err
	}
	reports := make([]SyncReport, len(users))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(syncAllParallelism)
	for i, u := range users {
		g.Go(func() error {
			rep, err := s.SyncUser(gctx, u.ID)
			if err != nil {
				s.log.Warn("sync user failed", "user_id", u.ID, "error", err)
				rep.UserID = u.ID
				rep.Email = u.Email
				rep.HealthError = err.Error()
			}
			reports[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return reports, err
	}
	return reports, nil
}

func (s *analyticsService) Latest(ctx context.Context, userID uuid.UUID, dataType string) (*types.UserDataSnapshot, error) {
	if dataType == "" {
		dataType = types.DataTypeCurrentSnapshot
	}
	snap, err := s.repos.UserDataSnapshot.Latest(dbctx.New(ctx), userID, dataType)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, fmt.Errorf("%s snapshot: %w", dataType, errs.ErrNotFound)
	}
	return snap, nil
}

func (s *analyticsService) Count(ctx context.Context) (int64, error) {
	return s.repos.UserDataSnapshot.Count(dbctx.New(ctx))
}

func (s *analyticsService) Recent(ctx context.Context, limit int) ([]*types.UserDataSnapshot, error) {
	return s.repos.UserDataSnapshot.Recent(dbctx.New(ctx), limit)
}
