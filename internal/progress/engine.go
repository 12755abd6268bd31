// Package progress implements module completion: XP, levels, streaks and
// sequential unlocking.
package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/learnpath/internal/apperr"
	"github.com/abhisek/learnpath/internal/logger"
	"github.com/abhisek/learnpath/internal/store"
)

// XPPerLevel is the XP needed to advance one level.
const XPPerLevel = 500

// Level returns the level reached at totalXP.
func Level(totalXP int) int {
	return totalXP/XPPerLevel + 1
}

// Result describes what a completion changed.
type Result struct {
	Progress store.Progress  `json:"progress"`
	Stats    store.UserStats `json:"stats"`
	// LeveledUp is set when the completion crossed a level boundary.
	LeveledUp bool `json:"leveledUp"`
	// SameDayStreak flags a completion on the same UTC day as the previous
	// one. Under the strict policy this resets the streak.
	SameDayStreak bool `json:"sameDayStreak"`
	// Unlocked is the successor module activated by this completion.
	Unlocked *store.Module `json:"unlocked,omitempty"`
	// CourseCompleted is set when this was the last open module.
	CourseCompleted bool `json:"courseCompleted"`
}

// Summary is a user's completion history with current stats.
type Summary struct {
	Completed []store.ProgressEntry `json:"completed"`
	Stats     *store.UserStats      `json:"stats"`
}

// Engine applies completions atomically.
type Engine struct {
	store *store.Store
	cfg   Config
	log   *logger.Logger

	now   func() time.Time
	newID func() string
}

// NewEngine creates an Engine.
func NewEngine(s *store.Store, cfg Config, log *logger.Logger) *Engine {
	if cfg.Streak == "" {
		cfg.Streak = StreakStrict
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{
		store: s,
		cfg:   cfg,
		log:   log.With("component", "progress"),
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// Complete marks moduleID completed for userID. Checks run in order:
// missing module or course, foreign course, already completed, module not
// active. Progress, module status, stats, successor unlock and course
// status are written in one transaction; on error nothing is applied.
func (e *Engine) Complete(ctx context.Context, userID, moduleID string) (*Result, error) {
	var res *Result
	err := e.store.WithTx(ctx, func(q *store.Queries) error {
		var err error
		res, err = e.complete(ctx, q, userID, moduleID)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("module completed", "user", userID, "module", moduleID,
		"xp", res.Stats.TotalXP, "level", res.Stats.Level, "streak", res.Stats.StreakDays,
		"course_completed", res.CourseCompleted)
	if res.SameDayStreak && e.cfg.Streak == StreakStrict {
		e.log.Warn("same-day completion reset streak", "user", userID)
	}
	return res, nil
}

func (e *Engine) complete(ctx context.Context, q *store.Queries, userID, moduleID string) (*Result, error) {
	mod, err := q.GetModule(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	course, err := q.GetCourse(ctx, mod.CourseID)
	if err != nil {
		return nil, err
	}
	if course.UserID != userID {
		return nil, fmt.Errorf("module %q: %w", moduleID, apperr.ErrForbidden)
	}

	existing, err := q.GetProgress(ctx, userID, moduleID)
	if err != nil {
		return nil, err
	}
	if (existing != nil && existing.Completed) || mod.Status == store.ModuleCompleted {
		return nil, fmt.Errorf("module %q: %w", moduleID, apperr.ErrAlreadyCompleted)
	}
	if mod.Status != store.ModuleActive {
		return nil, fmt.Errorf("module %q is %s: %w", moduleID, mod.Status, apperr.ErrInvalidState)
	}

	now := e.now()
	p := store.Progress{
		ID:          e.newID(),
		UserID:      userID,
		ModuleID:    moduleID,
		CompletedAt: &now,
		XPEarned:    mod.XPReward,
	}
	if err := q.InsertCompletedProgress(ctx, &p); err != nil {
		return nil, err
	}
	ok, err := q.TransitionModule(ctx, moduleID, store.ModuleActive, store.ModuleCompleted)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("module %q changed state: %w", moduleID, apperr.ErrInvalidState)
	}

	if err := q.EnsureStats(ctx, userID); err != nil {
		return nil, err
	}
	stats, err := q.GetStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	prevLevel := stats.Level
	streak := e.cfg.Streak.Next(stats.StreakDays, stats.LastActivityDate, now)
	stats.TotalXP += mod.XPReward
	stats.Level = Level(stats.TotalXP)
	stats.ModulesCompleted++
	stats.StreakDays = streak.Days
	stats.LastActivityDate = &now
	if err := q.SaveStats(ctx, stats); err != nil {
		return nil, err
	}

	res := &Result{
		Progress:      p,
		Stats:         *stats,
		LeveledUp:     stats.Level > prevLevel,
		SameDayStreak: streak.SameDay,
	}

	next, err := q.ModuleAt(ctx, mod.CourseID, mod.OrderIndex+1)
	if err != nil {
		return nil, err
	}
	if next != nil && next.Status == store.ModuleLocked {
		ok, err := q.TransitionModule(ctx, next.ID, store.ModuleLocked, store.ModuleActive)
		if err != nil {
			return nil, err
		}
		if ok {
			next.Status = store.ModuleActive
			res.Unlocked = next
		}
	}

	open, err := q.CountModulesNotInStatus(ctx, mod.CourseID, store.ModuleCompleted)
	if err != nil {
		return nil, err
	}
	if open == 0 && course.Status != store.CourseCompleted {
		if err := q.SetCourseStatus(ctx, course.ID, store.CourseCompleted); err != nil {
			return nil, err
		}
		res.CourseCompleted = true
	}
	return res, nil
}

// Summary returns the user's completed modules newest first with stats.
// Stats is nil when the user has none yet.
func (e *Engine) Summary(ctx context.Context, userID string) (*Summary, error) {
	q := e.store.Queries()
	entries, err := q.ListCompletedProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats, err := q.GetStats(ctx, userID)
	if err != nil && apperr.Kind(err) != apperr.KindNotFound {
		return nil, err
	}
	return &Summary{Completed: entries, Stats: stats}, nil
}

// Stats returns the user's stats, or a not-found error.
func (e *Engine) Stats(ctx context.Context, userID string) (*store.UserStats, error) {
	return e.store.Queries().GetStats(ctx, userID)
}
