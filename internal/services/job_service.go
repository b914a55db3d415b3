package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/nutribridge-backend/internal/data/repos"
	types "github.com/yungbote/nutribridge-backend/internal/domain"
	"github.com/yungbote/nutribridge-backend/internal/domain/jobs"
	"github.com/yungbote/nutribridge-backend/internal/pkg/ctxutil"
	"github.com/yungbote/nutribridge-backend/internal/pkg/dbctx"
	errs "github.com/yungbote/nutribridge-backend/internal/pkg/errors"
	"github.com/yungbote/nutribridge-backend/internal/pkg/logger"
)

const jobListLimit = 50

type JobService interface {
	Enqueue(dbc dbctx.Context, ownerUserID uuid.UUID, jobType string, entityType string, entityID *uuid.UUID, payload map[string]any) (*types.JobRun, error)
	// EnqueueGoalPlan schedules a goal plan regeneration unless one is
	// already queued or running for the plan.
	EnqueueGoalPlan(ctx context.Context, userID, planID uuid.UUID) error
	GetByIDForRequestUser(dbc dbctx.Context, jobID uuid.UUID) (*types.JobRun, error)
	GetLatestForEntityForRequestUser(dbc dbctx.Context, entityType string, entityID uuid.UUID, jobType string) (*types.JobRun, error)
	ListForRequestUser(dbc dbctx.Context) ([]*types.JobRun, error)
}

type jobService struct {
	db     *gorm.DB
	log    *logger.Logger
	repo   repos.JobRunRepo
	notify JobNotifier
}

func NewJobService(db *gorm.DB, baseLog *logger.Logger, repo repos.JobRunRepo, notify JobNotifier) JobService {
	return &jobService{
		db:     db,
		log:    baseLog.With("service", "JobService"),
		repo:   repo,
		notify: notify,
	}
}

func (s *jobService) Enqueue(dbc dbctx.Context, ownerUserID uuid.UUID, jobType string, entityType string, entityID *uuid.UUID, payload map[string]any) (*types.JobRun, error) {
	if ownerUserID == uuid.Nil {
		return nil, fmt.Errorf("missing owner_user_id")
	}
	if jobType == "" {
		return nil, fmt.Errorf("missing job_type")
	}
	if payload == nil {
		payload = map[string]any{}
	}
	if td := ctxutil.GetTraceData(dbc.Ctx); td != nil {
		if td.TraceID != "" {
			if _, ok := payload["trace_id"]; !ok {
				payload["trace_id"] = td.TraceID
			}
		}
		if td.RequestID != "" {
			if _, ok := payload["request_id"]; !ok {
				payload["request_id"] = td.RequestID
			}
		}
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode job payload: %w", err)
	}
	now := time.Now().UTC()
	job := &types.JobRun{
		ID:          uuid.New(),
		OwnerUserID: ownerUserID,
		JobType:     jobType,
		EntityType:  entityType,
		EntityID:    entityID,
		Status:      jobs.StatusQueued,
		Stage:       jobs.StatusQueued,
		Message:     "Queued",
		Payload:     datatypes.JSON(b),
		Result:      datatypes.JSON([]byte(`{}`)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.repo.Create(dbc, []*types.JobRun{job}); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	s.notify.JobCreated(ownerUserID, job)
	s.log.Debug("job enqueued", "job_id", job.ID, "job_type", jobType, "user_id", ownerUserID)
	return job, nil
}

func (s *jobService) EnqueueGoalPlan(ctx context.Context, userID, planID uuid.UUID) error {
	dbc := dbctx.New(ctx)
	exists, err := s.repo.ExistsRunnable(dbc, userID, jobs.TypeGoalPlanGenerate, jobs.EntityGoalPlan, &planID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	_, err = s.Enqueue(dbc, userID, jobs.TypeGoalPlanGenerate, jobs.EntityGoalPlan, &planID, map[string]any{
		"goal_plan_id": planID.String(),
		"trigger":      "profile_updated",
	})
	return err
}

func (s *jobService) GetByIDForRequestUser(dbc dbctx.Context, jobID uuid.UUID) (*types.JobRun, error) {
	userID := ctxutil.UserID(dbc.Ctx)
	if userID == uuid.Nil {
		return nil, errs.ErrUnauthorized
	}
	if jobID == uuid.Nil {
		return nil, fmt.Errorf("missing job id: %w", errs.ErrInvalidArgument)
	}
	job, err := s.repo.GetByIDForOwner(dbc, userID, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, fmt.Errorf("job: %w", errs.ErrNotFound)
	}
	return job, nil
}

func (s *jobService) GetLatestForEntityForRequestUser(dbc dbctx.Context, entityType string, entityID uuid.UUID, jobType string) (*types.JobRun, error) {
	userID := ctxutil.UserID(dbc.Ctx)
	if userID == uuid.Nil {
		return nil, errs.ErrUnauthorized
	}
	if entityType == "" || entityID == uuid.Nil {
		return nil, fmt.Errorf("missing entity info: %w", errs.ErrInvalidArgument)
	}
	if jobType == "" {
		jobType = defaultJobType(entityType)
	}
	if jobType == "" {
		return nil, fmt.Errorf("unknown entity type %q: %w", entityType, errs.ErrInvalidArgument)
	}
	job, err := s.repo.GetLatestByEntity(dbc, userID, entityType, entityID, jobType)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, fmt.Errorf("job: %w", errs.ErrNotFound)
	}
	return job, nil
}

func (s *jobService) ListForRequestUser(dbc dbctx.Context) ([]*types.JobRun, error) {
	userID := ctxutil.UserID(dbc.Ctx)
	if userID == uuid.Nil {
		return nil, errs.ErrUnauthorized
	}
	return s.repo.ListByOwner(dbc, userID, jobListLimit)
}

func defaultJobType(entityType string) string {
	switch entityType {
	case jobs.EntityHealthProfile:
		return jobs.TypeHealthProfileEnrich
	case jobs.EntityGoalPlan:
		return jobs.TypeGoalPlanGenerate
	case jobs.EntitySavedMeal:
		return jobs.TypeSavedMealMacros
	case jobs.EntityPreferences:
		return jobs.TypeMealPlanningAnalysis
	}
	return ""
}
