package progress

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/learnpath/internal/apperr"
	"github.com/abhisek/learnpath/internal/course"
	"github.com/abhisek/learnpath/internal/curriculum"
	"github.com/abhisek/learnpath/internal/logger"
	"github.com/abhisek/learnpath/internal/store"
)

type fixture struct {
	store  *store.Store
	engine *Engine
	course *store.Course
	clock  time.Time
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	s, err := store.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	p := &store.Profile{
		UserID:         "u1",
		Goal:           "Learn Go",
		TimeframeWeeks: 8,
		WeeklyHours:    10,
		SkillLevel:     "beginner",
		LearningStyle:  "practical",
		EndObjective:   "Build a CLI tool",
	}
	require.NoError(t, s.Queries().UpsertProfile(ctx, p))

	asm := course.NewAssembler(s, nil, course.DefaultConfig(), logger.Nop())
	c, err := asm.Assemble(ctx, "u1", curriculum.Mock(p))
	require.NoError(t, err)

	f := &fixture{
		store:  s,
		course: c,
		clock:  time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC),
	}
	f.engine = NewEngine(s, cfg, logger.Nop())
	f.engine.now = func() time.Time { return f.clock }
	return f
}

func (f *fixture) module(i int) store.Module { return f.course.Modules[i] }

func (f *fixture) status(t *testing.T, i int) store.ModuleStatus {
	t.Helper()
	m, err := f.store.Queries().GetModule(context.Background(), f.module(i).ID)
	require.NoError(t, err)
	return m.Status
}

func TestComplete_FirstModule(t *testing.T) {
	f := newFixture(t, DefaultConfig())

	res, err := f.engine.Complete(context.Background(), "u1", f.module(0).ID)
	require.NoError(t, err)

	assert.Equal(t, 100, res.Progress.XPEarned)
	assert.True(t, res.Progress.Completed)
	assert.Equal(t, 100, res.Stats.TotalXP)
	assert.Equal(t, 1, res.Stats.Level)
	assert.Equal(t, 1, res.Stats.ModulesCompleted)
	assert.Equal(t, 1, res.Stats.StreakDays)
	require.NotNil(t, res.Stats.LastActivityDate)
	assert.True(t, f.clock.Equal(*res.Stats.LastActivityDate))
	require.NotNil(t, res.Unlocked)
	assert.Equal(t, f.module(1).ID, res.Unlocked.ID)
	assert.False(t, res.CourseCompleted)

	assert.Equal(t, store.ModuleCompleted, f.status(t, 0))
	assert.Equal(t, store.ModuleActive, f.status(t, 1))
	for i := 2; i < 6; i++ {
		assert.Equal(t, store.ModuleLocked, f.status(t, i))
	}
}

func TestComplete_Twice(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	ctx := context.Background()

	_, err := f.engine.Complete(ctx, "u1", f.module(0).ID)
	require.NoError(t, err)

	_, err = f.engine.Complete(ctx, "u1", f.module(0).ID)
	require.ErrorIs(t, err, apperr.ErrAlreadyCompleted)

	stats, err := f.engine.Stats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 100, stats.TotalXP)
	assert.Equal(t, 1, stats.ModulesCompleted)
}

func TestComplete_LockedModule(t *testing.T) {
	f := newFixture(t, DefaultConfig())

	_, err := f.engine.Complete(context.Background(), "u1", f.module(2).ID)
	require.ErrorIs(t, err, apperr.ErrInvalidState)
	assert.Equal(t, store.ModuleLocked, f.status(t, 2))

	_, err = f.engine.Stats(context.Background(), "u1")
	assert.ErrorIs(t, err, apperr.ErrNotFound, "nothing should be written")
}

func TestComplete_UnlocksOnlySuccessor(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	ctx := context.Background()

	_, err := f.engine.Complete(ctx, "u1", f.module(0).ID)
	require.NoError(t, err)
	res, err := f.engine.Complete(ctx, "u1", f.module(1).ID)
	require.NoError(t, err)

	require.NotNil(t, res.Unlocked)
	assert.Equal(t, 3, res.Unlocked.OrderIndex)
	assert.Equal(t, store.ModuleActive, f.status(t, 2))
	assert.Equal(t, store.ModuleLocked, f.status(t, 3))
}

func TestComplete_Forbidden(t *testing.T) {
	f := newFixture(t, DefaultConfig())

	_, err := f.engine.Complete(context.Background(), "intruder", f.module(0).ID)
	require.ErrorIs(t, err, apperr.ErrForbidden)
	assert.Equal(t, store.ModuleActive, f.status(t, 0))
}

func TestComplete_ForbiddenBeforeAlreadyCompleted(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	ctx := context.Background()

	_, err := f.engine.Complete(ctx, "u1", f.module(0).ID)
	require.NoError(t, err)

	_, err = f.engine.Complete(ctx, "intruder", f.module(0).ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestComplete_NotFound(t *testing.T) {
	f := newFixture(t, DefaultConfig())

	_, err := f.engine.Complete(context.Background(), "u1", "no-such-module")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestComplete_WholeCourse(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	ctx := context.Background()

	var res *Result
	var err error
	for i := range 6 {
		f.clock = f.clock.Add(24 * time.Hour)
		res, err = f.engine.Complete(ctx, "u1", f.module(i).ID)
		require.NoError(t, err, "module %d", i+1)
		assert.Equal(t, i == 5, res.CourseCompleted)
	}

	assert.Nil(t, res.Unlocked)
	assert.Equal(t, 600, res.Stats.TotalXP)
	assert.Equal(t, 2, res.Stats.Level)
	assert.Equal(t, 6, res.Stats.StreakDays)
	assert.Equal(t, 6, res.Stats.ModulesCompleted)

	c, err := f.store.Queries().GetCourse(ctx, f.course.ID)
	require.NoError(t, err)
	assert.Equal(t, store.CourseCompleted, c.Status)
}

func TestComplete_LevelUp(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	ctx := context.Background()
	require.NoError(t, f.store.Queries().EnsureStats(ctx, "u1"))
	require.NoError(t, f.store.Queries().SaveStats(ctx, &store.UserStats{UserID: "u1", TotalXP: 450, Level: 1}))

	res, err := f.engine.Complete(ctx, "u1", f.module(0).ID)
	require.NoError(t, err)
	assert.Equal(t, 550, res.Stats.TotalXP)
	assert.Equal(t, 2, res.Stats.Level)
	assert.True(t, res.LeveledUp)
}

func TestComplete_StreakRules(t *testing.T) {
	tests := []struct {
		name     string
		policy   StreakPolicy
		gap      time.Duration
		wantDays int
		wantFlag bool
	}{
		{"next day", StreakStrict, 24 * time.Hour, 2, false},
		{"two days later", StreakStrict, 48 * time.Hour, 1, false},
		{"same day strict", StreakStrict, time.Hour, 1, true},
		{"same day keeps", StreakSameDayKeeps, time.Hour, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, Config{Streak: tt.policy})
			ctx := context.Background()

			_, err := f.engine.Complete(ctx, "u1", f.module(0).ID)
			require.NoError(t, err)

			f.clock = f.clock.Add(tt.gap)
			res, err := f.engine.Complete(ctx, "u1", f.module(1).ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDays, res.Stats.StreakDays)
			assert.Equal(t, tt.wantFlag, res.SameDayStreak)
		})
	}
}

func TestComplete_SameDayKeepsLongStreak(t *testing.T) {
	f := newFixture(t, Config{Streak: StreakSameDayKeeps})
	ctx := context.Background()

	_, err := f.engine.Complete(ctx, "u1", f.module(0).ID)
	require.NoError(t, err)
	f.clock = f.clock.Add(24 * time.Hour)
	_, err = f.engine.Complete(ctx, "u1", f.module(1).ID)
	require.NoError(t, err)
	f.clock = f.clock.Add(2 * time.Hour)
	res, err := f.engine.Complete(ctx, "u1", f.module(2).ID)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Stats.StreakDays)
	assert.True(t, res.SameDayStreak)
}

func TestComplete_ConcurrentDoubleCompletion(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	ctx := context.Background()

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.engine.Complete(ctx, "u1", f.module(0).ID)
		}()
	}
	wg.Wait()

	var ok, dup int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, apperr.ErrAlreadyCompleted):
			dup++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, dup)

	stats, err := f.engine.Stats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 100, stats.TotalXP)
	assert.Equal(t, 1, stats.ModulesCompleted)
}

func TestComplete_PersistenceFailure(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	require.NoError(t, f.store.Close())

	_, err := f.engine.Complete(context.Background(), "u1", f.module(0).ID)
	var pe *apperr.PersistenceError
	assert.ErrorAs(t, err, &pe)
}

func TestSummary(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	ctx := context.Background()

	sum, err := f.engine.Summary(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, sum.Completed)
	assert.Nil(t, sum.Stats)

	_, err = f.engine.Complete(ctx, "u1", f.module(0).ID)
	require.NoError(t, err)
	f.clock = f.clock.Add(time.Hour)
	_, err = f.engine.Complete(ctx, "u1", f.module(1).ID)
	require.NoError(t, err)

	sum, err = f.engine.Summary(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, sum.Completed, 2)
	assert.Equal(t, f.module(1).ID, sum.Completed[0].ModuleID)
	assert.Equal(t, f.course.ID, sum.Completed[0].CourseID)
	assert.Equal(t, f.module(1).Title, sum.Completed[0].ModuleTitle)
	require.NotNil(t, sum.Stats)
	assert.Equal(t, 200, sum.Stats.TotalXP)
}
