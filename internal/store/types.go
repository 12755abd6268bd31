package store

import (
	"context"
	"database/sql"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// ModuleStatus is the unlock state of a module. Transitions only move
// forward: locked → active → completed.
type ModuleStatus string

const (
	ModuleLocked    ModuleStatus = "locked"
	ModuleActive    ModuleStatus = "active"
	ModuleCompleted ModuleStatus = "completed"
)

// CourseStatus is the lifecycle state of a course.
type CourseStatus string

const (
	CourseActive    CourseStatus = "active"
	CourseCompleted CourseStatus = "completed"
)

// ResourceTypeVideo is the only resource type attached today.
const ResourceTypeVideo = "video"

// Profile is a learner's onboarding answers. One per user.
type Profile struct {
	UserID         string    `json:"userId"`
	Goal           string    `json:"goal"`
	TimeframeWeeks int       `json:"timeframeWeeks"`
	WeeklyHours    int       `json:"weeklyHours"`
	SkillLevel     string    `json:"skillLevel"`
	LearningStyle  string    `json:"learningStyle"`
	EndObjective   string    `json:"endObjective"`
	PriorKnowledge string    `json:"priorKnowledge,omitempty"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// UserStats holds a user's gamification totals.
type UserStats struct {
	UserID           string     `json:"userId"`
	TotalXP          int        `json:"totalXp"`
	Level            int        `json:"level"`
	StreakDays       int        `json:"streakDays"`
	ModulesCompleted int        `json:"modulesCompleted"`
	LastActivityDate *time.Time `json:"lastActivityDate"`
}

// Course is a generated curriculum owned by one user.
type Course struct {
	ID             string       `json:"id"`
	UserID         string       `json:"userId"`
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	EstimatedWeeks int          `json:"estimatedWeeks"`
	TotalModules   int          `json:"totalModules"`
	Status         CourseStatus `json:"status"`
	CreatedAt      time.Time    `json:"createdAt"`

	Modules []Module `json:"modules,omitempty"`
}

// Module is the unit of learning and completion tracking.
type Module struct {
	ID                 string       `json:"id"`
	CourseID           string       `json:"courseId"`
	OrderIndex         int          `json:"orderIndex"`
	Title              string       `json:"title"`
	Description        string       `json:"description"`
	WeekNumber         int          `json:"weekNumber"`
	EstimatedHours     int          `json:"estimatedHours"`
	Status             ModuleStatus `json:"status"`
	XPReward           int          `json:"xpReward"`
	LearningObjectives []string     `json:"learningObjectives,omitempty"`

	Resources []Resource `json:"resources,omitempty"`
	Progress  *Progress  `json:"progress,omitempty"`
}

// Resource is external media attached to a module.
type Resource struct {
	ID              string `json:"id"`
	ModuleID        string `json:"moduleId"`
	Type            string `json:"type"`
	Title           string `json:"title"`
	VideoID         string `json:"videoId"`
	ChannelTitle    string `json:"channelTitle,omitempty"`
	ThumbnailURL    string `json:"thumbnailUrl,omitempty"`
	DurationSeconds int    `json:"durationSeconds"`
	OrderIndex      int    `json:"orderIndex"`
}

// Progress records a user's completion of a module. Unique per
// (user, module); once completed it never reverts.
type Progress struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	ModuleID    string     `json:"moduleId"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt"`
	XPEarned    int        `json:"xpEarned"`
}

// ProgressEntry is a completed Progress row joined with its module.
type ProgressEntry struct {
	Progress
	ModuleTitle string `json:"moduleTitle"`
	CourseID    string `json:"courseId"`
}

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int
	Purpose string
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEventRecord is a persisted LLM request event.
type LLMEventRecord struct {
	ID        int
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates token usage for a purpose or model.
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEventRecord, error)
	GetLLMEvent(ctx context.Context, id int) (*LLMEventRecord, error)
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)
}

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries groups the repository operations over a dbtx.
type Queries struct {
	db dbtx
}

// builder renders SQL for the SQLite dialect.
var builder = entsql.Dialect(dialect.SQLite)

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

func timeArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

// qualify prefixes cols with the alias of t for use in joins.
func qualify(t *entsql.SelectTable, cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = t.C(c)
	}
	return out
}
