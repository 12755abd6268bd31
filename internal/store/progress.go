package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/learnpath/internal/apperr"
)

var progressColumns = []string{"id", "user_id", "module_id", "completed", "completed_at", "xp_earned"}

// GetProgress returns the (user, module) progress row, or nil if the user
// has never touched the module.
func (q *Queries) GetProgress(ctx context.Context, userID, moduleID string) (*Progress, error) {
	query, args := builder.Select(progressColumns...).
		From(builder.Table(TableProgress)).
		Where(entsql.And(
			entsql.EQ("user_id", userID),
			entsql.EQ("module_id", moduleID),
		)).
		Query()
	p, err := scanProgress(q.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Persistence("get progress", err)
	}
	return p, nil
}

// InsertCompletedProgress creates the completed (user, module) row. Rows
// are never overwritten: a second insert for the same pair violates the
// unique index and is reported as ErrAlreadyCompleted.
func (q *Queries) InsertCompletedProgress(ctx context.Context, p *Progress) error {
	query, args := builder.Insert(TableProgress).
		Columns(progressColumns...).
		Values(p.ID, p.UserID, p.ModuleID, true, timeArg(p.CompletedAt), p.XPEarned).
		Query()
	if _, err := q.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return apperr.ErrAlreadyCompleted
		}
		return apperr.Persistence("insert progress", err)
	}
	p.Completed = true
	return nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint
// failure.
func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// ListCompletedProgress returns the user's completed modules, most recent
// first.
func (q *Queries) ListCompletedProgress(ctx context.Context, userID string) ([]ProgressEntry, error) {
	p := builder.Table(TableProgress).As("p")
	m := builder.Table(TableModules).As("m")
	query, args := builder.Select(append(qualify(p, progressColumns), m.C("title"), m.C("course_id"))...).
		From(p).
		Join(m).On(m.C("id"), p.C("module_id")).
		Where(entsql.And(
			entsql.EQ(p.C("user_id"), userID),
			entsql.EQ(p.C("completed"), true),
		)).
		OrderBy(entsql.Desc(p.C("completed_at"))).
		Query()
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Persistence("list progress", err)
	}
	defer rows.Close()

	var out []ProgressEntry
	for rows.Next() {
		var (
			e           ProgressEntry
			completedAt sql.NullTime
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.ModuleID, &e.Completed, &completedAt,
			&e.XPEarned, &e.ModuleTitle, &e.CourseID); err != nil {
			return nil, apperr.Persistence("scan progress", err)
		}
		e.CompletedAt = nullTime(completedAt)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("list progress", err)
	}
	return out, nil
}

// ListCourseProgress returns the user's progress rows for one course keyed
// by module id.
func (q *Queries) ListCourseProgress(ctx context.Context, userID, courseID string) (map[string]*Progress, error) {
	pt := builder.Table(TableProgress).As("p")
	m := builder.Table(TableModules).As("m")
	query, args := builder.Select(qualify(pt, progressColumns)...).
		From(pt).
		Join(m).On(m.C("id"), pt.C("module_id")).
		Where(entsql.And(
			entsql.EQ(pt.C("user_id"), userID),
			entsql.EQ(m.C("course_id"), courseID),
		)).
		Query()
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Persistence("list course progress", err)
	}
	defer rows.Close()

	out := make(map[string]*Progress)
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, apperr.Persistence("scan progress", err)
		}
		out[p.ModuleID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("list course progress", err)
	}
	return out, nil
}

func scanProgress(row rowScanner) (*Progress, error) {
	var (
		p           Progress
		completedAt sql.NullTime
	)
	if err := row.Scan(&p.ID, &p.UserID, &p.ModuleID, &p.Completed, &completedAt, &p.XPEarned); err != nil {
		return nil, err
	}
	p.CompletedAt = nullTime(completedAt)
	return &p, nil
}
