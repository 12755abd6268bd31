package course

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/abhisek/learnpath/internal/apperr"
	"github.com/abhisek/learnpath/internal/curriculum"
	"github.com/abhisek/learnpath/internal/logger"
	"github.com/abhisek/learnpath/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testProfile(userID string) *store.Profile {
	return &store.Profile{
		UserID:         userID,
		Goal:           "Learn Go",
		TimeframeWeeks: 8,
		WeeklyHours:    10,
		SkillLevel:     "beginner",
		LearningStyle:  "practical",
		EndObjective:   "Build a REST API in Go",
	}
}

// fakeResolver returns a video for every query not listed in fail and
// tracks how many lookups run at once.
type fakeResolver struct {
	fail  map[string]bool
	delay time.Duration

	mu       sync.Mutex
	inFlight int
	peak     int
	calls    atomic.Int32
}

func (f *fakeResolver) Resolve(ctx context.Context, module, query string) *store.Resource {
	f.calls.Add(1)
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.peak {
		f.peak = f.inFlight
	}
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil
		}
	}
	if f.fail[query] {
		return nil
	}
	return &store.Resource{
		Type:            store.ResourceTypeVideo,
		Title:           "Video for " + module,
		VideoID:         "vid-" + query,
		DurationSeconds: 600,
	}
}

func TestAssemble_MockCurriculum(t *testing.T) {
	s := openTestStore(t)
	res := &fakeResolver{}
	a := NewAssembler(s, res, DefaultConfig(), logger.Nop())

	c := curriculum.Mock(testProfile("u1"))
	course, err := a.Assemble(context.Background(), "u1", c)
	require.NoError(t, err)

	assert.Equal(t, 6, course.TotalModules)
	assert.Equal(t, store.CourseActive, course.Status)
	require.Len(t, course.Modules, 6)
	for i, m := range course.Modules {
		assert.Equal(t, i+1, m.OrderIndex)
		assert.Equal(t, DefaultXPReward, m.XPReward)
		if i == 0 {
			assert.Equal(t, store.ModuleActive, m.Status)
		} else {
			assert.Equal(t, store.ModuleLocked, m.Status)
		}
		require.Len(t, m.Resources, 1)
		assert.Equal(t, 1, m.Resources[0].OrderIndex)
		assert.Equal(t, m.ID, m.Resources[0].ModuleID)
	}
	assert.EqualValues(t, 6, res.calls.Load())

	// Persisted snapshot matches the returned one.
	q := s.Queries()
	got, err := q.GetCourse(context.Background(), course.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, got.TotalModules)
	mods, err := q.ListModules(context.Background(), course.ID)
	require.NoError(t, err)
	require.Len(t, mods, 6)
	for i, m := range mods {
		assert.Equal(t, course.Modules[i].ID, m.ID)
		assert.Equal(t, course.Modules[i].Title, m.Title)
	}
	resources, err := q.ListResources(context.Background(), course.ID)
	require.NoError(t, err)
	assert.Len(t, resources, 6)
}

func TestAssemble_FlattensInMilestoneOrder(t *testing.T) {
	s := openTestStore(t)
	a := NewAssembler(s, nil, DefaultConfig(), logger.Nop())

	c := &curriculum.Curriculum{
		Title:          "T",
		EstimatedWeeks: 4,
		Milestones: []curriculum.Milestone{
			{Title: "A", Modules: []curriculum.ModuleSpec{{Title: "a1"}, {Title: "a2"}}},
			{Title: "B", Modules: []curriculum.ModuleSpec{{Title: "b1"}}},
			{Title: "C", Modules: []curriculum.ModuleSpec{{Title: "c1"}, {Title: "c2"}, {Title: "c3"}}},
		},
	}
	course, err := a.Assemble(context.Background(), "u1", c)
	require.NoError(t, err)

	var titles []string
	for _, m := range course.Modules {
		titles = append(titles, m.Title)
		assert.Empty(t, m.Resources)
	}
	assert.Equal(t, []string{"a1", "a2", "b1", "c1", "c2", "c3"}, titles)
	assert.Equal(t, 6, course.TotalModules)
}

func TestAssemble_VideoFailureIsolated(t *testing.T) {
	s := openTestStore(t)
	c := curriculum.Mock(testProfile("u1"))
	failing := c.Milestones[0].Modules[1].SearchQuery
	res := &fakeResolver{fail: map[string]bool{failing: true}}
	a := NewAssembler(s, res, DefaultConfig(), logger.Nop())

	course, err := a.Assemble(context.Background(), "u1", c)
	require.NoError(t, err)
	for i, m := range course.Modules {
		if i == 1 {
			assert.Empty(t, m.Resources)
			continue
		}
		assert.Len(t, m.Resources, 1, "module %d", i+1)
	}
}

func TestAssemble_BoundedConcurrency(t *testing.T) {
	s := openTestStore(t)
	res := &fakeResolver{delay: 20 * time.Millisecond}
	a := NewAssembler(s, res, Config{Workers: 2}, logger.Nop())

	_, err := a.Assemble(context.Background(), "u1", curriculum.Mock(testProfile("u1")))
	require.NoError(t, err)
	assert.LessOrEqual(t, res.peak, 2)
	assert.GreaterOrEqual(t, res.peak, 1)
}

func TestAssemble_EmptyCurriculum(t *testing.T) {
	s := openTestStore(t)
	a := NewAssembler(s, nil, DefaultConfig(), logger.Nop())

	_, err := a.Assemble(context.Background(), "u1", &curriculum.Curriculum{Title: "empty"})
	var ge *apperr.GenerationError
	require.ErrorAs(t, err, &ge)

	courses, err := s.Queries().ListCourses(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, courses)
}

func TestAssemble_PersistFailureLeavesNothing(t *testing.T) {
	s := openTestStore(t)
	a := NewAssembler(s, nil, DefaultConfig(), logger.Nop())
	n := 0
	a.newID = func() string {
		n++
		if n == 3 || n == 4 {
			return "dup"
		}
		return fmt.Sprintf("id-%d", n)
	}

	_, err := a.Assemble(context.Background(), "u1", curriculum.Mock(testProfile("u1")))
	require.Error(t, err)
	var pe *apperr.PersistenceError
	assert.True(t, errors.As(err, &pe), "got %T", err)

	courses, err := s.Queries().ListCourses(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, courses)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("LEARNPATH_ASSEMBLER_WORKERS", "7")
	assert.Equal(t, 7, ConfigFromEnv().Workers)

	t.Setenv("LEARNPATH_ASSEMBLER_WORKERS", "zero")
	assert.Equal(t, DefaultConfig().Workers, ConfigFromEnv().Workers)
}
