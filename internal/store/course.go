package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/learnpath/internal/apperr"
)

var (
	courseColumns = []string{
		"id", "user_id", "title", "description", "estimated_weeks",
		"total_modules", "status", "created_at",
	}
	moduleColumns = []string{
		"id", "course_id", "order_index", "title", "description", "week_number",
		"estimated_hours", "status", "xp_reward", "learning_objectives",
	}
	resourceColumns = []string{
		"id", "module_id", "type", "title", "video_id", "channel_title",
		"thumbnail_url", "duration_seconds", "order_index",
	}
)

// CreateCourse inserts the course row.
func (q *Queries) CreateCourse(ctx context.Context, c *Course) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	query, args := builder.Insert(TableCourses).
		Columns(courseColumns...).
		Values(c.ID, c.UserID, c.Title, c.Description, c.EstimatedWeeks,
			c.TotalModules, string(c.Status), c.CreatedAt.UTC()).
		Query()
	if _, err := q.db.ExecContext(ctx, query, args...); err != nil {
		return apperr.Persistence("insert course", err)
	}
	return nil
}

// CreateModule inserts a module row. Its course must already exist.
func (q *Queries) CreateModule(ctx context.Context, m *Module) error {
	objectives, err := json.Marshal(m.LearningObjectives)
	if err != nil {
		return fmt.Errorf("marshal learning objectives: %w", err)
	}
	query, args := builder.Insert(TableModules).
		Columns(moduleColumns...).
		Values(m.ID, m.CourseID, m.OrderIndex, m.Title, m.Description, m.WeekNumber,
			m.EstimatedHours, string(m.Status), m.XPReward, string(objectives)).
		Query()
	if _, err := q.db.ExecContext(ctx, query, args...); err != nil {
		return apperr.Persistence("insert module", err)
	}
	return nil
}

// CreateResource inserts a resource row. Its module must already exist.
func (q *Queries) CreateResource(ctx context.Context, r *Resource) error {
	query, args := builder.Insert(TableResources).
		Columns(resourceColumns...).
		Values(r.ID, r.ModuleID, r.Type, r.Title, r.VideoID, r.ChannelTitle,
			r.ThumbnailURL, r.DurationSeconds, r.OrderIndex).
		Query()
	if _, err := q.db.ExecContext(ctx, query, args...); err != nil {
		return apperr.Persistence("insert resource", err)
	}
	return nil
}

// GetCourse returns the course row without modules.
func (q *Queries) GetCourse(ctx context.Context, id string) (*Course, error) {
	query, args := builder.Select(courseColumns...).
		From(builder.Table(TableCourses)).
		Where(entsql.EQ("id", id)).
		Query()
	c, err := scanCourse(q.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("course", id)
	}
	if err != nil {
		return nil, apperr.Persistence("get course", err)
	}
	return c, nil
}

// ListCourses returns the user's courses, newest first.
func (q *Queries) ListCourses(ctx context.Context, userID string) ([]Course, error) {
	query, args := builder.Select(courseColumns...).
		From(builder.Table(TableCourses)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("id")).
		Query()
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Persistence("list courses", err)
	}
	defer rows.Close()

	var out []Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, apperr.Persistence("scan course", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("list courses", err)
	}
	return out, nil
}

// SetCourseStatus updates a course's status.
func (q *Queries) SetCourseStatus(ctx context.Context, id string, status CourseStatus) error {
	query, args := builder.Update(TableCourses).
		Set("status", string(status)).
		Where(entsql.EQ("id", id)).
		Query()
	if _, err := q.db.ExecContext(ctx, query, args...); err != nil {
		return apperr.Persistence("set course status", err)
	}
	return nil
}

// GetModule returns a module row without resources.
func (q *Queries) GetModule(ctx context.Context, id string) (*Module, error) {
	query, args := builder.Select(moduleColumns...).
		From(builder.Table(TableModules)).
		Where(entsql.EQ("id", id)).
		Query()
	m, err := scanModule(q.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("module", id)
	}
	if err != nil {
		return nil, apperr.Persistence("get module", err)
	}
	return m, nil
}

// ModuleAt returns the module at orderIndex within a course, or nil if the
// course has no such position.
func (q *Queries) ModuleAt(ctx context.Context, courseID string, orderIndex int) (*Module, error) {
	query, args := builder.Select(moduleColumns...).
		From(builder.Table(TableModules)).
		Where(entsql.And(
			entsql.EQ("course_id", courseID),
			entsql.EQ("order_index", orderIndex),
		)).
		Query()
	m, err := scanModule(q.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Persistence("get module by order", err)
	}
	return m, nil
}

// ListModules returns a course's modules ordered by orderIndex.
func (q *Queries) ListModules(ctx context.Context, courseID string) ([]Module, error) {
	query, args := builder.Select(moduleColumns...).
		From(builder.Table(TableModules)).
		Where(entsql.EQ("course_id", courseID)).
		OrderBy("order_index").
		Query()
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Persistence("list modules", err)
	}
	defer rows.Close()

	var out []Module
	for rows.Next() {
		m, err := scanModule(rows)
		if err != nil {
			return nil, apperr.Persistence("scan module", err)
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("list modules", err)
	}
	return out, nil
}

// TransitionModule moves a module from one status to another. It reports
// false, without error, when the module was not in the from status.
func (q *Queries) TransitionModule(ctx context.Context, id string, from, to ModuleStatus) (bool, error) {
	query, args := builder.Update(TableModules).
		Set("status", string(to)).
		Where(entsql.And(
			entsql.EQ("id", id),
			entsql.EQ("status", string(from)),
		)).
		Query()
	res, err := q.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, apperr.Persistence("transition module", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, apperr.Persistence("transition module", err)
	}
	return n == 1, nil
}

// CountModulesNotInStatus counts a course's modules whose status differs
// from status.
func (q *Queries) CountModulesNotInStatus(ctx context.Context, courseID string, status ModuleStatus) (int, error) {
	query, args := builder.Select(entsql.Count("*")).
		From(builder.Table(TableModules)).
		Where(entsql.And(
			entsql.EQ("course_id", courseID),
			entsql.NEQ("status", string(status)),
		)).
		Query()
	var n int
	if err := q.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, apperr.Persistence("count modules", err)
	}
	return n, nil
}

// ListResources returns the resources of every module in a course, keyed
// by module id and ordered by resource orderIndex.
func (q *Queries) ListResources(ctx context.Context, courseID string) (map[string][]Resource, error) {
	r := builder.Table(TableResources).As("r")
	m := builder.Table(TableModules).As("m")
	query, args := builder.Select(qualify(r, resourceColumns)...).
		From(r).
		Join(m).On(m.C("id"), r.C("module_id")).
		Where(entsql.EQ(m.C("course_id"), courseID)).
		OrderBy(m.C("order_index"), r.C("order_index")).
		Query()
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Persistence("list resources", err)
	}
	defer rows.Close()

	out := make(map[string][]Resource)
	for rows.Next() {
		var r Resource
		if err := rows.Scan(&r.ID, &r.ModuleID, &r.Type, &r.Title, &r.VideoID,
			&r.ChannelTitle, &r.ThumbnailURL, &r.DurationSeconds, &r.OrderIndex); err != nil {
			return nil, apperr.Persistence("scan resource", err)
		}
		out[r.ModuleID] = append(out[r.ModuleID], r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("list resources", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCourse(row rowScanner) (*Course, error) {
	var (
		c      Course
		status string
	)
	if err := row.Scan(&c.ID, &c.UserID, &c.Title, &c.Description, &c.EstimatedWeeks,
		&c.TotalModules, &status, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.Status = CourseStatus(status)
	c.CreatedAt = c.CreatedAt.UTC()
	return &c, nil
}

func scanModule(row rowScanner) (*Module, error) {
	var (
		m          Module
		status     string
		objectives sql.NullString
	)
	if err := row.Scan(&m.ID, &m.CourseID, &m.OrderIndex, &m.Title, &m.Description,
		&m.WeekNumber, &m.EstimatedHours, &status, &m.XPReward, &objectives); err != nil {
		return nil, err
	}
	m.Status = ModuleStatus(status)
	if objectives.Valid && objectives.String != "" && objectives.String != "null" {
		if err := json.Unmarshal([]byte(objectives.String), &m.LearningObjectives); err != nil {
			return nil, fmt.Errorf("unmarshal learning objectives: %w", err)
		}
	}
	return &m, nil
}
