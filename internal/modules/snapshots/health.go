package snapshots

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/nutribridge-backend/internal/domain"
	"github.com/yungbote/nutribridge-backend/internal/modules/wellness"
)

type Health struct {
	Profile HealthProfileView `json:"profile"`
	Goals   GoalsView         `json:"goals"`
	Trends  Trends            `json:"trends"`
	History HealthHistory     `json:"history"`
}

type HealthProfileView struct {
	HeightCM           float64         `json:"height_cm"`
	WeightKG           float64         `json:"weight_kg"`
	BMI                *float64        `json:"bmi"`
	WellnessScore      int             `json:"wellness_score"`
	Lifestyle          string          `json:"lifestyle"`
	DietaryPreferences string          `json:"dietary_preferences"`
	FitnessGoals       string          `json:"fitness_goals"`
	AssessmentData     json.RawMessage `json:"assessment_data"`
}

type GoalsView struct {
	TargetWeight         *float64 `json:"target_weight"`
	WeeklyActivityTarget *int     `json:"weekly_activity_target"`
	GoalDescription      string   `json:"goal_description"`
	AIWeeklyPlan         *string  `json:"ai_weekly_plan"`
	AIMonthlyPlan        *string  `json:"ai_monthly_plan"`
	AIPriority           *string  `json:"ai_priority"`
	AITargetDate         *string  `json:"ai_target_date"`
}

type Trends struct {
	WeightTrend   *WeightTrend   `json:"weight_trend"`
	WellnessTrend *WellnessTrend `json:"wellness_trend"`
	GoalProgress  *GoalProgress  `json:"goal_progress"`
	ActivityTrend *ActivityTrend `json:"activity_trend"`
}

type WeightTrend struct {
	CurrentWeight    float64 `json:"current_weight"`
	PreviousWeight   float64 `json:"previous_weight"`
	Change           float64 `json:"change"`
	ChangePercentage float64 `json:"change_percentage"`
	TrendDirection   string  `json:"trend_direction"`
}

type WellnessTrend struct {
	CurrentScore   int    `json:"current_score"`
	PreviousScore  int    `json:"previous_score"`
	Change         int    `json:"change"`
	TrendDirection string `json:"trend_direction"`
}

type GoalProgress struct {
	StartWeight        float64 `json:"start_weight"`
	CurrentWeight      float64 `json:"current_weight"`
	TargetWeight       float64 `json:"target_weight"`
	WeightDifference   float64 `json:"weight_difference"`
	ProgressPercentage float64 `json:"progress_percentage"`
	GoalType           string  `json:"goal_type"`
	RemainingWeight    float64 `json:"remaining_weight"`
}

type ActivityEntry struct {
	Date                 string  `json:"date"`
	LifestyleCategory    string  `json:"lifestyle_category"`
	WeeklyActivityTarget *int    `json:"weekly_activity_target"`
	Notes                *string `json:"notes,omitempty"`
}

type ActivityTrend struct {
	RecentActivities []ActivityEntry `json:"recent_activities"`
}

type WeightPoint struct {
	Date   time.Time `json:"date"`
	Weight float64   `json:"weight"`
}

type ScorePoint struct {
	Date  time.Time `json:"date"`
	Score int       `json:"score"`
}

type HealthHistory struct {
	WeightHistory   []WeightPoint   `json:"weight_history"`
	ScoreHistory    []ScorePoint    `json:"score_history"`
	ActivityHistory []ActivityEntry `json:"activity_history"`
}

// Health joins the profile, goal plan and recent history. A missing profile
// or goal plan fails the whole snapshot.
func (c *Collector) Health(ctx context.Context, userID uuid.UUID) (*Health, error) {
	dbc := c.dbc(ctx)
	profile, err := c.repos.HealthProfile.GetByUserID(dbc, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrNoHealthProfile
	}
	plan, err := c.repos.GoalPlan.GetByUserID(dbc, userID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, ErrNoGoalPlan
	}
	weights, err := c.repos.HistoricalMetric.ListRecent(dbc, userID, domain.MetricWeight, weightHistoryLimit)
	if err != nil {
		return nil, err
	}
	scores, err := c.repos.WellnessScore.ListRecent(dbc, userID, scoreHistoryLimit)
	if err != nil {
		return nil, err
	}
	activity, err := c.repos.DailyActivity.ListRecent(dbc, userID, activityHistoryLimit)
	if err != nil {
		return nil, err
	}

	out := &Health{}
	out.Profile = HealthProfileView{
		HeightCM:           profile.HeightCM,
		WeightKG:           profile.WeightKG,
		WellnessScore:      wellness.Score(wellness.FromProfile(profile)),
		Lifestyle:          profile.Lifestyle,
		DietaryPreferences: profile.DietaryPreferences,
		FitnessGoals:       profile.FitnessGoals,
		AssessmentData:     rawOrNull(profile.AssessmentData),
	}
	if bmi, ok := profile.BMI(); ok {
		out.Profile.BMI = &bmi
	}
	out.Goals = GoalsView{
		TargetWeight:         plan.TargetWeight,
		WeeklyActivityTarget: plan.WeeklyActivityTarget,
		GoalDescription:      plan.GoalDescription,
		AIWeeklyPlan:         plan.AIWeeklyPlan,
		AIMonthlyPlan:        plan.AIMonthlyPlan,
		AIPriority:           plan.AIPriority,
	}
	if plan.AITargetDate != nil {
		s := domain.DateKey(*plan.AITargetDate)
		out.Goals.AITargetDate = &s
	}

	out.History.WeightHistory = make([]WeightPoint, 0, len(weights))
	for _, w := range weights {
		out.History.WeightHistory = append(out.History.WeightHistory, WeightPoint{Date: w.RecordedAt, Weight: w.Value})
	}
	out.History.ScoreHistory = make([]ScorePoint, 0, len(scores))
	for _, s := range scores {
		out.History.ScoreHistory = append(out.History.ScoreHistory, ScorePoint{Date: s.RecordedAt, Score: s.Score})
	}
	out.History.ActivityHistory = make([]ActivityEntry, 0, len(activity))
	for _, a := range activity {
		out.History.ActivityHistory = append(out.History.ActivityHistory, ActivityEntry{
			Date:                 domain.DateKey(a.Date),
			LifestyleCategory:    a.LifestyleCategory,
			WeeklyActivityTarget: a.WeeklyActivityTarget,
		})
	}

	if len(weights) >= 2 {
		cur, prev := weights[0].Value, weights[1].Value
		change := cur - prev
		pct := 0.0
		if prev > 0 {
			pct = change / prev * 100
		}
		out.Trends.WeightTrend = &WeightTrend{
			CurrentWeight:    cur,
			PreviousWeight:   prev,
			Change:           change,
			ChangePercentage: pct,
			TrendDirection:   direction(change),
		}
	}
	if len(scores) >= 2 {
		cur, prev := scores[0].Score, scores[1].Score
		out.Trends.WellnessTrend = &WellnessTrend{
			CurrentScore:   cur,
			PreviousScore:  prev,
			Change:         cur - prev,
			TrendDirection: direction(float64(cur - prev)),
		}
	}
	if plan.TargetWeight != nil && *plan.TargetWeight != 0 && profile.WeightKG != 0 {
		start := profile.WeightKG
		if n := len(weights); n > 0 {
			start = weights[n-1].Value
		}
		out.Trends.GoalProgress = goalProgress(start, profile.WeightKG, *plan.TargetWeight)
	}
	if len(activity) > 0 {
		recent := out.History.ActivityHistory
		if len(recent) > recentActivityLimit {
			recent = recent[:recentActivityLimit]
		}
		out.Trends.ActivityTrend = &ActivityTrend{RecentActivities: recent}
	}
	return out, nil
}

// goalProgress measures how far current has moved from start toward target.
func goalProgress(start, current, target float64) *GoalProgress {
	diff := current - target
	goalType := "weight_gain"
	if diff > 0 {
		goalType = "weight_loss"
	}
	pct := 100.0
	if span := start - target; span != 0 {
		pct = (start - current) / span * 100
	}
	pct = math.Max(0, math.Min(100, pct))
	return &GoalProgress{
		StartWeight:        start,
		CurrentWeight:      current,
		TargetWeight:       target,
		WeightDifference:   math.Abs(diff),
		ProgressPercentage: pct,
		GoalType:           goalType,
		RemainingWeight:    math.Abs(diff),
	}
}

func direction(change float64) string {
	switch {
	case change > 0:
		return "up"
	case change < 0:
		return "down"
	default:
		return "stable"
	}
}

func rawOrNull(b []byte) json.RawMessage {
	if len(b) == 0 {
		return json.RawMessage("null")
	}
	return json.RawMessage(b)
}
