package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/learnpath/internal/apperr"
)

var profileColumns = []string{
	"user_id", "goal", "timeframe_weeks", "weekly_hours", "skill_level",
	"learning_style", "end_objective", "prior_knowledge", "updated_at",
}

// UpsertProfile creates the user's profile, or replaces every field of an
// existing one.
func (q *Queries) UpsertProfile(ctx context.Context, p *Profile) error {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}
	query, args := builder.Insert(TableProfiles).
		Columns(profileColumns...).
		Values(p.UserID, p.Goal, p.TimeframeWeeks, p.WeeklyHours, p.SkillLevel,
			p.LearningStyle, p.EndObjective, p.PriorKnowledge, p.UpdatedAt.UTC()).
		OnConflict(entsql.ConflictColumns("user_id"), entsql.ResolveWithNewValues()).
		Query()
	if _, err := q.db.ExecContext(ctx, query, args...); err != nil {
		return apperr.Persistence("upsert profile", err)
	}
	return nil
}

// GetProfile returns the user's profile or a not-found error.
func (q *Queries) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	query, args := builder.Select(profileColumns...).
		From(builder.Table(TableProfiles)).
		Where(entsql.EQ("user_id", userID)).
		Query()

	var p Profile
	err := q.db.QueryRowContext(ctx, query, args...).Scan(
		&p.UserID, &p.Goal, &p.TimeframeWeeks, &p.WeeklyHours, &p.SkillLevel,
		&p.LearningStyle, &p.EndObjective, &p.PriorKnowledge, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("profile", userID)
	}
	if err != nil {
		return nil, apperr.Persistence("get profile", err)
	}
	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}

// EnsureStats creates a zero-valued stats row for the user if none exists.
func (q *Queries) EnsureStats(ctx context.Context, userID string) error {
	query, args := builder.Insert(TableUserStats).
		Columns("user_id", "total_xp", "level", "streak_days", "modules_completed").
		Values(userID, 0, 1, 0, 0).
		OnConflict(entsql.ConflictColumns("user_id"), entsql.DoNothing()).
		Query()
	if _, err := q.db.ExecContext(ctx, query, args...); err != nil {
		return apperr.Persistence("ensure stats", err)
	}
	return nil
}

// GetStats returns the user's stats or a not-found error.
func (q *Queries) GetStats(ctx context.Context, userID string) (*UserStats, error) {
	query, args := builder.Select("user_id", "total_xp", "level", "streak_days", "modules_completed", "last_activity_date").
		From(builder.Table(TableUserStats)).
		Where(entsql.EQ("user_id", userID)).
		Query()

	var (
		s    UserStats
		last sql.NullTime
	)
	err := q.db.QueryRowContext(ctx, query, args...).Scan(
		&s.UserID, &s.TotalXP, &s.Level, &s.StreakDays, &s.ModulesCompleted, &last,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("stats", userID)
	}
	if err != nil {
		return nil, apperr.Persistence("get stats", err)
	}
	s.LastActivityDate = nullTime(last)
	return &s, nil
}

// SaveStats overwrites the user's stats row.
func (q *Queries) SaveStats(ctx context.Context, s *UserStats) error {
	query, args := builder.Update(TableUserStats).
		Set("total_xp", s.TotalXP).
		Set("level", s.Level).
		Set("streak_days", s.StreakDays).
		Set("modules_completed", s.ModulesCompleted).
		Set("last_activity_date", timeArg(s.LastActivityDate)).
		Where(entsql.EQ("user_id", s.UserID)).
		Query()
	res, err := q.db.ExecContext(ctx, query, args...)
	if err != nil {
		return apperr.Persistence("save stats", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("save stats: %w", apperr.NotFound("stats", s.UserID))
	}
	return nil
}
