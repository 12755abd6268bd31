package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table names.
const (
	TableProfiles  = "profiles"
	TableUserStats = "user_stats"
	TableCourses   = "courses"
	TableModules   = "modules"
	TableResources = "resources"
	TableProgress  = "progress"
	TableLLMEvents = "llm_events"
)

var (
	profilesColumns = []*schema.Column{
		{Name: "user_id", Type: field.TypeString},
		{Name: "goal", Type: field.TypeString},
		{Name: "timeframe_weeks", Type: field.TypeInt},
		{Name: "weekly_hours", Type: field.TypeInt},
		{Name: "skill_level", Type: field.TypeString},
		{Name: "learning_style", Type: field.TypeString},
		{Name: "end_objective", Type: field.TypeString},
		{Name: "prior_knowledge", Type: field.TypeString, Default: ""},
		{Name: "updated_at", Type: field.TypeTime},
	}
	profilesTable = &schema.Table{
		Name:       TableProfiles,
		Columns:    profilesColumns,
		PrimaryKey: []*schema.Column{profilesColumns[0]},
	}

	userStatsColumns = []*schema.Column{
		{Name: "user_id", Type: field.TypeString},
		{Name: "total_xp", Type: field.TypeInt, Default: 0},
		{Name: "level", Type: field.TypeInt, Default: 1},
		{Name: "streak_days", Type: field.TypeInt, Default: 0},
		{Name: "modules_completed", Type: field.TypeInt, Default: 0},
		{Name: "last_activity_date", Type: field.TypeTime, Nullable: true},
	}
	userStatsTable = &schema.Table{
		Name:       TableUserStats,
		Columns:    userStatsColumns,
		PrimaryKey: []*schema.Column{userStatsColumns[0]},
	}

	coursesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "user_id", Type: field.TypeString},
		{Name: "title", Type: field.TypeString},
		{Name: "description", Type: field.TypeString},
		{Name: "estimated_weeks", Type: field.TypeInt},
		{Name: "total_modules", Type: field.TypeInt},
		{Name: "status", Type: field.TypeString},
		{Name: "created_at", Type: field.TypeTime},
	}
	coursesTable = &schema.Table{
		Name:       TableCourses,
		Columns:    coursesColumns,
		PrimaryKey: []*schema.Column{coursesColumns[0]},
		Indexes: []*schema.Index{
			{Name: "course_user_id", Columns: []*schema.Column{coursesColumns[1]}},
		},
	}

	modulesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "course_id", Type: field.TypeString},
		{Name: "order_index", Type: field.TypeInt},
		{Name: "title", Type: field.TypeString},
		{Name: "description", Type: field.TypeString},
		{Name: "week_number", Type: field.TypeInt},
		{Name: "estimated_hours", Type: field.TypeInt},
		{Name: "status", Type: field.TypeString},
		{Name: "xp_reward", Type: field.TypeInt},
		{Name: "learning_objectives", Type: field.TypeJSON, Nullable: true},
	}
	modulesTable = &schema.Table{
		Name:       TableModules,
		Columns:    modulesColumns,
		PrimaryKey: []*schema.Column{modulesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "modules_courses_modules",
				Columns:    []*schema.Column{modulesColumns[1]},
				RefColumns: []*schema.Column{coursesColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "module_course_id_order_index", Unique: true, Columns: []*schema.Column{modulesColumns[1], modulesColumns[2]}},
		},
	}

	resourcesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "module_id", Type: field.TypeString},
		{Name: "type", Type: field.TypeString},
		{Name: "title", Type: field.TypeString},
		{Name: "video_id", Type: field.TypeString},
		{Name: "channel_title", Type: field.TypeString, Default: ""},
		{Name: "thumbnail_url", Type: field.TypeString, Default: ""},
		{Name: "duration_seconds", Type: field.TypeInt, Default: 0},
		{Name: "order_index", Type: field.TypeInt},
	}
	resourcesTable = &schema.Table{
		Name:       TableResources,
		Columns:    resourcesColumns,
		PrimaryKey: []*schema.Column{resourcesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "resources_modules_resources",
				Columns:    []*schema.Column{resourcesColumns[1]},
				RefColumns: []*schema.Column{modulesColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "resource_module_id", Columns: []*schema.Column{resourcesColumns[1]}},
		},
	}

	progressTableColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "user_id", Type: field.TypeString},
		{Name: "module_id", Type: field.TypeString},
		{Name: "completed", Type: field.TypeBool, Default: false},
		{Name: "completed_at", Type: field.TypeTime, Nullable: true},
		{Name: "xp_earned", Type: field.TypeInt, Default: 0},
	}
	progressTable = &schema.Table{
		Name:       TableProgress,
		Columns:    progressTableColumns,
		PrimaryKey: []*schema.Column{progressTableColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "progress_modules_progress",
				Columns:    []*schema.Column{progressTableColumns[2]},
				RefColumns: []*schema.Column{modulesColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "progress_user_id_module_id", Unique: true, Columns: []*schema.Column{progressTableColumns[1], progressTableColumns[2]}},
		},
	}

	llmEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Default: "", Size: 2147483647},
		{Name: "response_body", Type: field.TypeString, Default: "", Size: 2147483647},
	}
	llmEventsTable = &schema.Table{
		Name:       TableLLMEvents,
		Columns:    llmEventsColumns,
		PrimaryKey: []*schema.Column{llmEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmevent_timestamp", Columns: []*schema.Column{llmEventsColumns[1]}},
			{Name: "llmevent_purpose", Columns: []*schema.Column{llmEventsColumns[4]}},
		},
	}

	tables = []*schema.Table{
		profilesTable,
		userStatsTable,
		coursesTable,
		modulesTable,
		resourcesTable,
		progressTable,
		llmEventsTable,
	}
)

func init() {
	modulesTable.ForeignKeys[0].RefTable = coursesTable
	resourcesTable.ForeignKeys[0].RefTable = modulesTable
	progressTable.ForeignKeys[0].RefTable = modulesTable
}

// migrate creates or updates every table. Parents come before children in
// tables, so foreign keys always resolve.
func migrate(ctx context.Context, drv *entsql.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("new migrate: %w", err)
	}
	if err := m.Create(ctx, tables...); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}
