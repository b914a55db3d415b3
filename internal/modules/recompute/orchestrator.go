// Package recompute runs the derived-data cascades that follow a health
// profile or goal plan write.
package recompute

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/nutribridge-backend/internal/data/repos"
	"github.com/yungbote/nutribridge-backend/internal/domain"
	"github.com/yungbote/nutribridge-backend/internal/domain/health"
	"github.com/yungbote/nutribridge-backend/internal/modules/classify"
	"github.com/yungbote/nutribridge-backend/internal/modules/goalplan"
	"github.com/yungbote/nutribridge-backend/internal/modules/wellness"
	"github.com/yungbote/nutribridge-backend/internal/observability"
	"github.com/yungbote/nutribridge-backend/internal/pkg/dbctx"
	"github.com/yungbote/nutribridge-backend/internal/pkg/jsonx"
	"github.com/yungbote/nutribridge-backend/internal/pkg/logger"
)

const (
	cascadeProfile = "health_profile"
	cascadeGoal    = "goal_plan"

	outcomeOK      = "ok"
	outcomeSkipped = "skipped"
	outcomeFailed  = "failed"

	unknownLifestyle = "unknown"
)

type Classifier interface {
	Classify(ctx context.Context, in classify.Input) (health.Classification, error)
}

type InsightWriter interface {
	Health(ctx context.Context, p *health.HealthProfile) (string, error)
}

type GoalGenerator interface {
	Generate(ctx context.Context, plan *health.GoalPlan) (goalplan.Result, error)
}

// GoalPlanEnqueuer schedules a regeneration under PolicyAuto.
type GoalPlanEnqueuer interface {
	EnqueueGoalPlan(ctx context.Context, userID, planID uuid.UUID) error
}

type Orchestrator struct {
	db         *gorm.DB
	repos      repos.Set
	classifier Classifier
	insights   InsightWriter
	goals      GoalGenerator
	policy     StalenessPolicy
	enqueuer   GoalPlanEnqueuer
	log        *logger.Logger
	now        func() time.Time
}

type Options struct {
	Classifier Classifier
	Insights   InsightWriter
	Goals      GoalGenerator
	Policy     StalenessPolicy
}

func NewOrchestrator(db *gorm.DB, r repos.Set, log *logger.Logger, opts Options) *Orchestrator {
	policy := opts.Policy
	if policy == "" {
		policy = PolicyManual
	}
	return &Orchestrator{
		db:         db,
		repos:      r,
		classifier: opts.Classifier,
		insights:   opts.Insights,
		goals:      opts.Goals,
		policy:     policy,
		log:        log.With("service", "RecomputeOrchestrator"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SetEnqueuer breaks the construction cycle with the job service.
func (o *Orchestrator) SetEnqueuer(e GoalPlanEnqueuer) { o.enqueuer = e }

func (o *Orchestrator) Policy() StalenessPolicy { return o.policy }

// ProfileOutcome reports what the profile cascade wrote.
type ProfileOutcome struct {
	Skipped           bool                          `json:"skipped"`
	Classification    *health.Assessment            `json:"classification,omitempty"`
	ClassificationErr string                        `json:"classification_error,omitempty"`
	Insight           *domain.HealthInsight         `json:"insight,omitempty"`
	Score             int                           `json:"score"`
	ScoreEntry        *domain.WellnessScoreHistory  `json:"score_entry,omitempty"`
	WeightEntry       *domain.HistoricalMetric      `json:"weight_entry,omitempty"`
	GoalPlanMarked    bool                          `json:"goal_plan_marked"`
	Activity          *domain.DailyActivitySnapshot `json:"activity,omitempty"`
	GoalPlanEnqueued  bool                          `json:"goal_plan_enqueued"`
}

// OnHealthProfileSaved runs classification, the insight, score and weight
// history and goal-plan staleness for a committed profile. Classification
// and insight failures are recorded on the outcome and do not stop the
// cascade; history writes that fail are returned.
func (o *Orchestrator) OnHealthProfileSaved(ctx context.Context, profile *domain.HealthProfile) (ProfileOutcome, error) {
	var out ProfileOutcome
	if profile == nil || profile.ID == uuid.Nil {
		return out, errors.New("recompute: profile required")
	}
	if !claim(ctx, EntityKey{Type: EntityHealthProfile, ID: profile.ID}) {
		out.Skipped = true
		o.step(cascadeProfile, "claim", outcomeSkipped)
		return out, nil
	}
	dbc := dbctx.New(ctx)
	log := o.log.With("user_id", profile.UserID, "profile_id", profile.ID)
	p := *profile

	if o.classifier != nil {
		c, err := o.classifier.Classify(ctx, classify.Input{
			Lifestyle:          p.Lifestyle,
			DietaryPreferences: p.DietaryPreferences,
			FitnessGoals:       p.FitnessGoals,
		})
		if err != nil {
			out.ClassificationErr = err.Error()
			log.Warn("profile classification failed", "error", err)
			o.step(cascadeProfile, "classify", outcomeFailed)
		} else {
			a := c.Assessment()
			blob := jsonx.Marshal(a)
			if err := o.repos.HealthProfile.UpdateAssessment(dbc, p.ID, blob); err != nil {
				return out, fmt.Errorf("store assessment: %w", err)
			}
			p.AssessmentData = blob
			out.Classification = &a
			o.step(cascadeProfile, "classify", outcomeOK)
		}
	}

	var insight string
	if o.insights != nil {
		text, err := o.insights.Health(ctx, &p)
		if err != nil {
			log.Warn("health insight failed", "error", err)
			o.step(cascadeProfile, "insight", outcomeFailed)
		} else {
			insight = text
		}
	}

	// Score, weight, staleness mark and activity commit together so a
	// retried job never finds a partial set from an earlier attempt.
	var plan *domain.GoalPlan
	now := o.now()
	err := o.inTx(dbc, func(txc dbctx.Context) error {
		out.Score = wellness.Score(wellness.FromProfile(&p))
		score := &domain.WellnessScoreHistory{UserID: p.UserID, Score: out.Score, RecordedAt: now}
		if err := o.repos.WellnessScore.Create(txc, score); err != nil {
			return fmt.Errorf("store wellness score: %w", err)
		}
		weight := &domain.HistoricalMetric{UserID: p.UserID, MetricType: domain.MetricWeight, Value: p.WeightKG, RecordedAt: now}
		if err := o.repos.HistoricalMetric.Create(txc, weight); err != nil {
			return fmt.Errorf("store weight history: %w", err)
		}

		var err error
		plan, err = o.repos.GoalPlan.GetByUserID(txc, p.UserID)
		if err != nil {
			return fmt.Errorf("load goal plan: %w", err)
		}
		if plan == nil {
			out.ScoreEntry, out.WeightEntry = score, weight
			return nil
		}
		if _, err := o.repos.GoalPlan.MarkProfileUpdated(txc, p.UserID, now); err != nil {
			return fmt.Errorf("mark goal plan stale: %w", err)
		}
		lifestyle := unknownLifestyle
		if l := p.Assessment().LifestyleCategory; l != "" {
			lifestyle = l
		}
		activity := &domain.DailyActivitySnapshot{
			UserID:               p.UserID,
			Date:                 domain.DateOnly(now),
			LifestyleCategory:    lifestyle,
			WeeklyActivityTarget: plan.WeeklyActivityTarget,
			RecordedAt:           now,
		}
		if err := o.repos.DailyActivity.Upsert(txc, activity); err != nil {
			return fmt.Errorf("store daily activity: %w", err)
		}
		out.ScoreEntry, out.WeightEntry, out.Activity = score, weight, activity
		out.GoalPlanMarked = true
		return nil
	})
	if err != nil {
		o.step(cascadeProfile, "history", outcomeFailed)
		return out, err
	}
	o.step(cascadeProfile, "history", outcomeOK)

	if insight != "" {
		row := &domain.HealthInsight{UserID: p.UserID, Content: insight, RecordedAt: o.now()}
		if err := o.repos.HealthInsight.Create(dbc, row); err != nil {
			log.Warn("store health insight failed", "error", err)
			o.step(cascadeProfile, "insight", outcomeFailed)
		} else {
			out.Insight = row
			o.step(cascadeProfile, "insight", outcomeOK)
		}
	}

	if plan == nil {
		o.step(cascadeProfile, "goal_plan", outcomeSkipped)
		log.Info("profile cascade done", "score", out.Score)
		return out, nil
	}
	o.step(cascadeProfile, "goal_plan", outcomeOK)

	if o.policy == PolicyAuto && o.enqueuer != nil {
		if err := o.enqueuer.EnqueueGoalPlan(ctx, p.UserID, plan.ID); err != nil {
			log.Warn("enqueue goal plan regeneration failed", "error", err)
		} else {
			out.GoalPlanEnqueued = true
		}
	}
	log.Info("profile cascade done", "score", out.Score, "goal_plan_marked", out.GoalPlanMarked)
	return out, nil
}

// GoalOutcome reports what the goal cascade did.
type GoalOutcome struct {
	Skipped   bool            `json:"skipped"`
	Unchanged bool            `json:"unchanged"`
	Result    goalplan.Result `json:"result"`
}

// OnGoalPlanSaved regenerates the AI fields of plan. previous is the row as
// it was before the triggering write and is what change detection compares
// against; nil means compare against plan itself.
func (o *Orchestrator) OnGoalPlanSaved(ctx context.Context, previous, plan *domain.GoalPlan) (GoalOutcome, error) {
	var out GoalOutcome
	if plan == nil || plan.ID == uuid.Nil {
		return out, errors.New("recompute: goal plan required")
	}
	if !claim(ctx, EntityKey{Type: EntityGoalPlan, ID: plan.ID}) {
		out.Skipped = true
		o.step(cascadeGoal, "claim", outcomeSkipped)
		return out, nil
	}
	if o.goals == nil {
		return out, errors.New("recompute: goal generator not configured")
	}
	old := previous
	if old == nil {
		old = plan
	}
	dbc := dbctx.New(ctx)
	log := o.log.With("user_id", plan.UserID, "goal_plan_id", plan.ID)

	res, err := o.goals.Generate(ctx, plan)
	if err != nil {
		o.step(cascadeGoal, "generate", outcomeFailed)
		return out, err
	}
	out.Result = res
	now := o.now()
	if res.Unchanged(old) {
		out.Unchanged = true
		if err := o.repos.GoalPlan.UpdateAIFields(dbc, plan.ID, map[string]interface{}{"generated_at": now}); err != nil {
			return out, fmt.Errorf("touch goal plan: %w", err)
		}
		o.step(cascadeGoal, "write", outcomeSkipped)
		log.Info("goal plan unchanged")
		return out, nil
	}
	if err := o.repos.GoalPlan.UpdateAIFields(dbc, plan.ID, res.Updates(old, now)); err != nil {
		return out, fmt.Errorf("store goal plan: %w", err)
	}
	o.step(cascadeGoal, "write", outcomeOK)
	log.Info("goal plan regenerated")
	return out, nil
}

func (o *Orchestrator) step(cascade, step, outcome string) {
	observability.Current().ObserveCascadeStep(cascade, step, outcome)
}

func (o *Orchestrator) inTx(dbc dbctx.Context, fn func(dbctx.Context) error) error {
	if dbc.Tx != nil || o.db == nil {
		return fn(dbc)
	}
	return o.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbc.WithTx(tx))
	})
}
