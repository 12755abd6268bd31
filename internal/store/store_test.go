package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/learnpath/internal/apperr"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenMemory()
	require.NoError(t, err, "open test store")
	t.Cleanup(func() { s.Close() })
	return s
}

func seedCourse(t *testing.T, s *Store, userID string, n int) (*Course, []Module) {
	t.Helper()
	ctx := context.Background()
	c := &Course{
		ID:             uuid.NewString(),
		UserID:         userID,
		Title:          "Go in 8 weeks",
		Description:    "From zero to CLI",
		EstimatedWeeks: 8,
		TotalModules:   n,
		Status:         CourseActive,
	}
	mods := make([]Module, n)
	err := s.WithTx(ctx, func(q *Queries) error {
		if err := q.CreateCourse(ctx, c); err != nil {
			return err
		}
		for i := range mods {
			status := ModuleLocked
			if i == 0 {
				status = ModuleActive
			}
			mods[i] = Module{
				ID:                 uuid.NewString(),
				CourseID:           c.ID,
				OrderIndex:         i + 1,
				Title:              "Module",
				WeekNumber:         i + 1,
				EstimatedHours:     5,
				Status:             status,
				XPReward:           100,
				LearningObjectives: []string{"learn"},
			}
			if err := q.CreateModule(ctx, &mods[i]); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
	return c, mods
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := s.DB().QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		require.NoError(t, err, "PRAGMA %s", tt.pragma)
		assert.Equal(t, tt.want, got, "PRAGMA %s", tt.pragma)
	}
}

func TestProfileUpsertReplacesAllFields(t *testing.T) {
	s := openTestStore(t)
	q := s.Queries()
	ctx := context.Background()

	_, err := q.GetProfile(ctx, "u1")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	first := &Profile{
		UserID: "u1", Goal: "Learn Go", TimeframeWeeks: 8, WeeklyHours: 10,
		SkillLevel: "beginner", LearningStyle: "practical",
		EndObjective: "Build a CLI tool", PriorKnowledge: "Python",
	}
	require.NoError(t, q.UpsertProfile(ctx, first))

	second := &Profile{
		UserID: "u1", Goal: "Learn Rust", TimeframeWeeks: 12, WeeklyHours: 4,
		SkillLevel: "advanced", LearningStyle: "text",
		EndObjective: "Write an interpreter",
	}
	require.NoError(t, q.UpsertProfile(ctx, second))

	got, err := q.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Learn Rust", got.Goal)
	assert.Equal(t, 12, got.TimeframeWeeks)
	assert.Equal(t, 4, got.WeeklyHours)
	assert.Equal(t, "advanced", got.SkillLevel)
	assert.Equal(t, "text", got.LearningStyle)
	assert.Equal(t, "Write an interpreter", got.EndObjective)
	assert.Empty(t, got.PriorKnowledge, "full replace must clear prior knowledge")
}

func TestStatsLifecycle(t *testing.T) {
	s := openTestStore(t)
	q := s.Queries()
	ctx := context.Background()

	_, err := q.GetStats(ctx, "u1")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	require.NoError(t, q.EnsureStats(ctx, "u1"))
	require.NoError(t, q.EnsureStats(ctx, "u1"), "ensure is idempotent")

	st, err := q.GetStats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, UserStats{UserID: "u1", Level: 1}, *st)

	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	st.TotalXP, st.Level, st.StreakDays, st.ModulesCompleted = 600, 2, 3, 6
	st.LastActivityDate = &now
	require.NoError(t, q.SaveStats(ctx, st))

	got, err := q.GetStats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 600, got.TotalXP)
	assert.Equal(t, 2, got.Level)
	require.NotNil(t, got.LastActivityDate)
	assert.True(t, now.Equal(*got.LastActivityDate))
}

func TestCourseModulesAndResources(t *testing.T) {
	s := openTestStore(t)
	q := s.Queries()
	ctx := context.Background()

	c, mods := seedCourse(t, s, "u1", 3)
	require.NoError(t, q.CreateResource(ctx, &Resource{
		ID: uuid.NewString(), ModuleID: mods[1].ID, Type: ResourceTypeVideo,
		Title: "Go tour", VideoID: "abc123", DurationSeconds: 600, OrderIndex: 1,
	}))

	got, err := q.GetCourse(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.Title, got.Title)
	assert.Equal(t, CourseActive, got.Status)

	list, err := q.ListModules(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i, m := range list {
		assert.Equal(t, i+1, m.OrderIndex)
	}
	assert.Equal(t, []string{"learn"}, list[0].LearningObjectives)

	next, err := q.ModuleAt(ctx, c.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, mods[1].ID, next.ID)

	none, err := q.ModuleAt(ctx, c.ID, 4)
	require.NoError(t, err)
	assert.Nil(t, none)

	res, err := q.ListResources(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, res[mods[1].ID], 1)
	assert.Equal(t, "abc123", res[mods[1].ID][0].VideoID)

	_, err = q.GetCourse(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = q.GetModule(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDuplicateOrderIndexRejected(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	c, _ := seedCourse(t, s, "u1", 2)

	err := s.Queries().CreateModule(ctx, &Module{
		ID: uuid.NewString(), CourseID: c.ID, OrderIndex: 2, Status: ModuleLocked, XPReward: 100,
	})
	var pe *apperr.PersistenceError
	assert.ErrorAs(t, err, &pe)
}

func TestTransitionModuleIsConditional(t *testing.T) {
	s := openTestStore(t)
	q := s.Queries()
	ctx := context.Background()
	_, mods := seedCourse(t, s, "u1", 2)

	ok, err := q.TransitionModule(ctx, mods[1].ID, ModuleActive, ModuleCompleted)
	require.NoError(t, err)
	assert.False(t, ok, "locked module must not jump to completed")

	ok, err = q.TransitionModule(ctx, mods[0].ID, ModuleActive, ModuleCompleted)
	require.NoError(t, err)
	assert.True(t, ok)

	n, err := q.CountModulesNotInStatus(ctx, mods[0].CourseID, ModuleCompleted)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestInsertCompletedProgressRejectsDuplicate(t *testing.T) {
	s := openTestStore(t)
	q := s.Queries()
	ctx := context.Background()
	c, mods := seedCourse(t, s, "u1", 1)

	at := time.Now().UTC()
	p := &Progress{ID: uuid.NewString(), UserID: "u1", ModuleID: mods[0].ID, CompletedAt: &at, XPEarned: 100}
	require.NoError(t, q.InsertCompletedProgress(ctx, p))

	dup := &Progress{ID: uuid.NewString(), UserID: "u1", ModuleID: mods[0].ID, CompletedAt: &at, XPEarned: 100}
	assert.ErrorIs(t, q.InsertCompletedProgress(ctx, dup), apperr.ErrAlreadyCompleted)

	got, err := q.GetProgress(ctx, "u1", mods[0].ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)
	assert.Equal(t, 100, got.XPEarned)

	missing, err := q.GetProgress(ctx, "u2", mods[0].ID)
	require.NoError(t, err)
	assert.Nil(t, missing)

	entries, err := q.ListCompletedProgress(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, c.ID, entries[0].CourseID)

	byModule, err := q.ListCourseProgress(ctx, "u1", c.ID)
	require.NoError(t, err)
	assert.Contains(t, byModule, mods[0].ID)
}

func TestWithTxRollsBack(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.WithTx(ctx, func(q *Queries) error {
		if err := q.EnsureStats(ctx, "u1"); err != nil {
			return err
		}
		return apperr.ErrInvalidState
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	_, err = s.Queries().GetStats(ctx, "u1")
	assert.ErrorIs(t, err, apperr.ErrNotFound, "rolled back insert must not be visible")
}

func TestWithTxSerializesWriters(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Queries().EnsureStats(ctx, "u1"))

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.WithTx(ctx, func(q *Queries) error {
				st, err := q.GetStats(ctx, "u1")
				if err != nil {
					return err
				}
				st.TotalXP += 10
				return q.SaveStats(ctx, st)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	st, err := s.Queries().GetStats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 100, st.TotalXP)
}

func TestLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	require.NoError(t, repo.AppendLLMRequest(ctx, LLMRequestEventData{
		Provider: "gpt-4o-mini", Model: "gpt-4o-mini", Purpose: "curriculum",
		InputTokens: 100, OutputTokens: 50, LatencyMs: 20, Success: true,
		RequestBody: "[user]\nhi", ResponseBody: `{"title":"x"}`,
	}))
	require.NoError(t, repo.AppendLLMRequest(ctx, LLMRequestEventData{
		Provider: "gpt-4o-mini", Model: "gpt-4o-mini", Purpose: "curriculum",
		InputTokens: 10, OutputTokens: 0, LatencyMs: 40, Success: false, ErrorMessage: "down",
	}))

	events, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 10})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.False(t, events[0].Success, "newest first")

	e, err := repo.GetLLMEvent(ctx, events[1].ID)
	require.NoError(t, err)
	assert.Equal(t, `{"title":"x"}`, e.ResponseBody)

	missing, err := repo.GetLLMEvent(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	usage, err := repo.LLMUsageByPurpose(ctx)
	require.NoError(t, err)
	require.Len(t, usage, 1)
	assert.Equal(t, 2, usage[0].Calls)
	assert.Equal(t, 110, usage[0].InputTokens)
	assert.Equal(t, int64(30), usage[0].AvgLatencyMs)
}

func TestProgressTableSchema(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rows, err := s.db.QueryContext(ctx, "SELECT name FROM pragma_table_info(?)", TableProgress)
	require.NoError(t, err)
	defer rows.Close()
	var cols []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		cols = append(cols, name)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, progressColumns, cols)
}

func TestJoinedListsFilterAndOrder(t *testing.T) {
	s := openTestStore(t)
	q := s.Queries()
	ctx := context.Background()

	c, mods := seedCourse(t, s, "u1", 2)
	other, otherMods := seedCourse(t, s, "u1", 1)
	_, foreign := seedCourse(t, s, "u2", 1)

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	complete := func(userID, moduleID string, at time.Time) {
		require.NoError(t, q.InsertCompletedProgress(ctx, &Progress{
			ID: uuid.NewString(), UserID: userID, ModuleID: moduleID, CompletedAt: &at, XPEarned: 100,
		}))
	}
	complete("u1", mods[0].ID, base)
	complete("u1", otherMods[0].ID, base.Add(time.Hour))
	complete("u2", foreign[0].ID, base.Add(2*time.Hour))

	entries, err := q.ListCompletedProgress(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, otherMods[0].ID, entries[0].ModuleID, "most recent first")
	assert.Equal(t, other.ID, entries[0].CourseID)
	assert.Equal(t, mods[0].ID, entries[1].ModuleID)
	assert.Equal(t, "Module", entries[1].ModuleTitle)

	byModule, err := q.ListCourseProgress(ctx, "u1", c.ID)
	require.NoError(t, err)
	assert.Len(t, byModule, 1)
	assert.Contains(t, byModule, mods[0].ID)

	for i, m := range []string{mods[1].ID, mods[0].ID, mods[1].ID, otherMods[0].ID} {
		require.NoError(t, q.CreateResource(ctx, &Resource{
			ID: uuid.NewString(), ModuleID: m, Type: ResourceTypeVideo,
			Title: "clip", VideoID: fmt.Sprintf("v%d", i), OrderIndex: 4 - i,
		}))
	}
	res, err := q.ListResources(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, res, 2)
	require.Len(t, res[mods[1].ID], 2)
	assert.Equal(t, "v2", res[mods[1].ID][0].VideoID)
	assert.Equal(t, "v0", res[mods[1].ID][1].VideoID)
	assert.NotContains(t, res, otherMods[0].ID)
}
