package services

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/nutribridge-backend/internal/data/repos"
	types "github.com/yungbote/nutribridge-backend/internal/domain"
	"github.com/yungbote/nutribridge-backend/internal/domain/health"
	"github.com/yungbote/nutribridge-backend/internal/domain/jobs"
	"github.com/yungbote/nutribridge-backend/internal/modules/recompute"
	"github.com/yungbote/nutribridge-backend/internal/modules/wellness"
	"github.com/yungbote/nutribridge-backend/internal/pkg/dbctx"
	errs "github.com/yungbote/nutribridge-backend/internal/pkg/errors"
	"github.com/yungbote/nutribridge-backend/internal/pkg/logger"
	"github.com/yungbote/nutribridge-backend/internal/platform/apierr"
)

const (
	dashboardHistoryLimit = 60
	activityWindowDays    = 14
	insightListLimit      = 20
)

type ProfileInput struct {
	HeightCM           float64 `json:"height_cm"`
	WeightKG           float64 `json:"weight_kg"`
	Lifestyle          string  `json:"lifestyle"`
	DietaryPreferences string  `json:"dietary_preferences"`
	FitnessGoals       string  `json:"fitness_goals"`
}

type GoalInput struct {
	TargetWeight         *float64 `json:"target_weight"`
	WeeklyActivityTarget *int     `json:"weekly_activity_target"`
	GoalDescription      string   `json:"goal_description"`
}

// ProfileWrite is the synchronous half of a profile save. Job tracks the
// enrichment that follows.
type ProfileWrite struct {
	Profile *types.HealthProfile `json:"profile"`
	Job     *types.JobRun        `json:"job"`
}

// GoalWrite carries a nil Job when nothing changed and no regeneration was
// scheduled.
type GoalWrite struct {
	GoalPlan *types.GoalPlan `json:"goal_plan"`
	Job      *types.JobRun   `json:"job,omitempty"`
}

type ProgressSummary struct {
	StartWeight       float64 `json:"start_weight"`
	CurrentWeight     float64 `json:"current_weight"`
	GoalWeight        float64 `json:"goal_weight"`
	TotalDays         int     `json:"total_days"`
	DaysLeft          int     `json:"days_left"`
	TimeProgressPct   float64 `json:"time_progress_pct"`
	WeightProgressPct float64 `json:"weight_progress_pct"`
}

type Dashboard struct {
	Profile               *types.HealthProfile           `json:"profile"`
	Assessment            health.Assessment              `json:"assessment"`
	BMI                   *float64                       `json:"bmi"`
	BMICategory           string                         `json:"bmi_category,omitempty"`
	WellnessScore         int                            `json:"wellness_score"`
	AdherenceRatio        float64                        `json:"adherence_ratio"`
	AdjustedWellnessScore int                            `json:"adjusted_wellness_score"`
	GoalPlan              *types.GoalPlan                `json:"goal_plan"`
	GoalPlanStale         bool                           `json:"goal_plan_stale"`
	LatestInsight         *types.HealthInsight           `json:"latest_insight"`
	WeightHistory         []*types.HistoricalMetric      `json:"weight_history"`
	ScoreHistory          []*types.WellnessScoreHistory  `json:"score_history"`
	Activity              []*types.DailyActivitySnapshot `json:"activity"`
	Progress              *ProgressSummary               `json:"progress_summary"`
}

type HealthExport struct {
	Weights        []*types.HistoricalMetric      `json:"weights"`
	WellnessScores []*types.WellnessScoreHistory  `json:"wellness_scores"`
	Insights       []*types.HealthInsight         `json:"insights"`
	DailyActivity  []*types.DailyActivitySnapshot `json:"daily_activity"`
}

type HealthService interface {
	GetProfile(ctx context.Context) (*types.HealthProfile, error)
	// SaveProfile stores the user fields and enqueues health_profile_enrich.
	SaveProfile(ctx context.Context, in ProfileInput) (*ProfileWrite, error)
	GetGoalPlan(ctx context.Context) (*types.GoalPlan, error)
	SaveGoalPlan(ctx context.Context, in GoalInput) (*GoalWrite, error)
	Insights(ctx context.Context) ([]*types.HealthInsight, error)
	Activity(ctx context.Context) ([]*types.DailyActivitySnapshot, error)
	RegenerateWellnessScore(ctx context.Context) (recompute.WellnessOutcome, error)
	Dashboard(ctx context.Context) (*Dashboard, error)
	Export(ctx context.Context) (*HealthExport, error)
	// RecomputeNow runs the profile cascade inline for userID.
	RecomputeNow(ctx context.Context, userID uuid.UUID) (recompute.ProfileOutcome, error)
}

type healthService struct {
	db    *gorm.DB
	log   *logger.Logger
	repos repos.Set
	jobs  JobService
	orch  *recompute.Orchestrator
	now   func() time.Time
}

func NewHealthService(db *gorm.DB, baseLog *logger.Logger, r repos.Set, jobSvc JobService, orch *recompute.Orchestrator) HealthService {
	return &healthService{
		db:    db,
		log:   baseLog.With("service", "HealthService"),
		repos: r,
		jobs:  jobSvc,
		orch:  orch,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *healthService) GetProfile(ctx context.Context) (*types.HealthProfile, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.repos.HealthProfile.GetByUserID(dbctx.New(ctx), userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("health profile: %w", errs.ErrNotFound)
	}
	return p, nil
}

func (s *healthService) SaveProfile(ctx context.Context, in ProfileInput) (*ProfileWrite, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	candidate := &types.HealthProfile{
		UserID:             userID,
		HeightCM:           in.HeightCM,
		WeightKG:           in.WeightKG,
		Lifestyle:          strings.TrimSpace(in.Lifestyle),
		DietaryPreferences: strings.TrimSpace(in.DietaryPreferences),
		FitnessGoals:       strings.TrimSpace(in.FitnessGoals),
	}
	if err := candidate.Validate(); err != nil {
		return nil, apierr.New(http.StatusBadRequest, "invalid_profile", err)
	}

	out := &ProfileWrite{}
	err = inTx(s.db, dbctx.New(ctx), func(dbc dbctx.Context) error {
		existing, err := s.repos.HealthProfile.GetByUserID(dbc, userID)
		if err != nil {
			return err
		}
		if existing == nil {
			if err := s.repos.HealthProfile.Create(dbc, candidate); err != nil {
				return fmt.Errorf("create health profile: %w", err)
			}
			existing = candidate
		} else {
			existing.HeightCM = candidate.HeightCM
			existing.WeightKG = candidate.WeightKG
			existing.Lifestyle = candidate.Lifestyle
			existing.DietaryPreferences = candidate.DietaryPreferences
			existing.FitnessGoals = candidate.FitnessGoals
			if err := s.repos.HealthProfile.UpdateUserFields(dbc, existing); err != nil {
				return fmt.Errorf("update health profile: %w", err)
			}
		}
		job, err := s.jobs.Enqueue(dbc, userID, jobs.TypeHealthProfileEnrich, jobs.EntityHealthProfile, &existing.ID, map[string]any{
			"profile_id": existing.ID.String(),
		})
		if err != nil {
			return err
		}
		out.Profile = existing
		out.Job = job
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("health profile saved", "user_id", userID, "job_id", out.Job.ID)
	return out, nil
}

func (s *healthService) GetGoalPlan(ctx context.Context) (*types.GoalPlan, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	g, err := s.repos.GoalPlan.GetByUserID(dbctx.New(ctx), userID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, fmt.Errorf("goal plan: %w", errs.ErrNotFound)
	}
	return g, nil
}

// SaveGoalPlan writes the targets and schedules regeneration. A resubmit of
// unchanged targets on the day the plan was last written schedules nothing
// unless the profile moved since the last generation.
func (s *healthService) SaveGoalPlan(ctx context.Context, in GoalInput) (*GoalWrite, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	if in.TargetWeight != nil && *in.TargetWeight <= 0 {
		return nil, apierr.BadRequest("invalid_goal", "Target weight must be a positive number.")
	}
	if in.WeeklyActivityTarget != nil && *in.WeeklyActivityTarget < 0 {
		return nil, apierr.BadRequest("invalid_goal", "Weekly activity target cannot be negative.")
	}
	candidate := &types.GoalPlan{
		UserID:               userID,
		TargetWeight:         in.TargetWeight,
		WeeklyActivityTarget: in.WeeklyActivityTarget,
		GoalDescription:      strings.TrimSpace(in.GoalDescription),
	}

	out := &GoalWrite{}
	err = inTx(s.db, dbctx.New(ctx), func(dbc dbctx.Context) error {
		existing, err := s.repos.GoalPlan.GetByUserID(dbc, userID)
		if err != nil {
			return err
		}
		switch {
		case existing == nil:
			if err := s.repos.GoalPlan.Create(dbc, candidate); err != nil {
				return fmt.Errorf("create goal plan: %w", err)
			}
			existing = candidate
		case existing.SameTargets(candidate) && types.DateKey(existing.UpdatedAt) == types.DateKey(s.now()) && !existing.Stale():
			out.GoalPlan = existing
			return nil
		default:
			existing.TargetWeight = candidate.TargetWeight
			existing.WeeklyActivityTarget = candidate.WeeklyActivityTarget
			existing.GoalDescription = candidate.GoalDescription
			if err := s.repos.GoalPlan.UpdateTargets(dbc, existing); err != nil {
				return fmt.Errorf("update goal plan: %w", err)
			}
		}
		job, err := s.jobs.Enqueue(dbc, userID, jobs.TypeGoalPlanGenerate, jobs.EntityGoalPlan, &existing.ID, map[string]any{
			"goal_plan_id": existing.ID.String(),
			"trigger":      "goal_saved",
		})
		if err != nil {
			return err
		}
		out.GoalPlan = existing
		out.Job = job
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *healthService) Insights(ctx context.Context) ([]*types.HealthInsight, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.repos.HealthInsight.ListRecent(dbctx.New(ctx), userID, insightListLimit)
}

func (s *healthService) Activity(ctx context.Context) ([]*types.DailyActivitySnapshot, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.repos.DailyActivity.ListRecent(dbctx.New(ctx), userID, activityWindowDays)
}

func (s *healthService) RegenerateWellnessScore(ctx context.Context) (recompute.WellnessOutcome, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return recompute.WellnessOutcome{}, err
	}
	out, err := s.orch.RegenerateWellnessScore(recompute.WithProcessed(ctx), userID)
	if err != nil {
		return out, fmt.Errorf("regenerate wellness score: %w", err)
	}
	s.log.Info("wellness score regenerated", "user_id", userID, "base", out.BaseScore, "adjusted", out.AdjustedScore)
	return out, nil
}

func (s *healthService) Dashboard(ctx context.Context) (*Dashboard, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	profile, err := s.repos.HealthProfile.GetByUserID(dbc, userID)
	if err != nil {
		return nil, err
	}
	d := &Dashboard{Profile: profile, AdherenceRatio: 1.0}
	if profile != nil {
		d.Assessment = profile.Assessment()
		if bmi, ok := profile.BMI(); ok {
			rounded := math.Round(bmi*10) / 10
			d.BMI = &rounded
			d.BMICategory = health.BMICategory(bmi)
		}
	}
	d.WellnessScore = wellness.Score(wellness.FromProfile(profile))

	snap, err := s.repos.Adherence.GetByUserID(dbc, userID)
	if err != nil {
		return nil, err
	}
	if snap != nil {
		d.AdherenceRatio = snap.AdherenceRatio
	}
	d.AdjustedWellnessScore = wellness.Adjusted(d.WellnessScore, d.AdherenceRatio)

	if d.GoalPlan, err = s.repos.GoalPlan.GetByUserID(dbc, userID); err != nil {
		return nil, err
	}
	d.GoalPlanStale = d.GoalPlan.Stale()
	insights, err := s.repos.HealthInsight.ListRecent(dbc, userID, 1)
	if err != nil {
		return nil, err
	}
	if len(insights) > 0 {
		d.LatestInsight = insights[0]
	}
	if d.WeightHistory, err = s.repos.HistoricalMetric.ListRecent(dbc, userID, types.MetricWeight, dashboardHistoryLimit); err != nil {
		return nil, err
	}
	if d.ScoreHistory, err = s.repos.WellnessScore.ListRecent(dbc, userID, dashboardHistoryLimit); err != nil {
		return nil, err
	}
	if d.Activity, err = s.repos.DailyActivity.ListRecent(dbc, userID, activityWindowDays); err != nil {
		return nil, err
	}
	d.Progress = progressSummary(d.GoalPlan, d.WeightHistory, s.now())
	return d, nil
}

// progressSummary needs a target weight, an AI target date and at least one
// weight entry. weights is newest first.
func progressSummary(plan *types.GoalPlan, weights []*types.HistoricalMetric, now time.Time) *ProgressSummary {
	if plan == nil || plan.TargetWeight == nil || plan.AITargetDate == nil || len(weights) == 0 {
		return nil
	}
	first := weights[len(weights)-1]
	last := weights[0]
	start := types.DateOnly(first.RecordedAt)
	target := types.DateOnly(*plan.AITargetDate)
	today := types.DateOnly(now)

	totalDays := int(target.Sub(start).Hours() / 24)
	if totalDays <= 0 {
		totalDays = 1
	}
	passed := int(today.Sub(start).Hours() / 24)
	passed = max(0, min(passed, totalDays))

	ps := &ProgressSummary{
		StartWeight:       first.Value,
		CurrentWeight:     last.Value,
		GoalWeight:        *plan.TargetWeight,
		TotalDays:         totalDays,
		DaysLeft:          int(target.Sub(today).Hours() / 24),
		TimeProgressPct:   round1(float64(passed) / float64(totalDays) * 100),
		WeightProgressPct: 100,
	}
	if delta := ps.GoalWeight - ps.StartWeight; delta != 0 {
		ps.WeightProgressPct = round1((ps.CurrentWeight - ps.StartWeight) / delta * 100)
	}
	return ps
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func (s *healthService) Export(ctx context.Context) (*HealthExport, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	out := &HealthExport{}
	if out.Weights, err = s.repos.HistoricalMetric.ListRecent(dbc, userID, types.MetricWeight, 0); err != nil {
		return nil, err
	}
	if out.WellnessScores, err = s.repos.WellnessScore.ListRecent(dbc, userID, 0); err != nil {
		return nil, err
	}
	if out.Insights, err = s.repos.HealthInsight.ListRecent(dbc, userID, 0); err != nil {
		return nil, err
	}
	if out.DailyActivity, err = s.repos.DailyActivity.ListRecent(dbc, userID, 0); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *healthService) RecomputeNow(ctx context.Context, userID uuid.UUID) (recompute.ProfileOutcome, error) {
	profile, err := s.repos.HealthProfile.GetByUserID(dbctx.New(ctx), userID)
	if err != nil {
		return recompute.ProfileOutcome{}, err
	}
	if profile == nil {
		return recompute.ProfileOutcome{}, fmt.Errorf("health profile for %s: %w", userID, errs.ErrNotFound)
	}
	return s.orch.OnHealthProfileSaved(recompute.WithProcessed(ctx), profile)
}
