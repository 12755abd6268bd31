package course

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/learnpath/internal/apperr"
	"github.com/abhisek/learnpath/internal/curriculum"
	"github.com/abhisek/learnpath/internal/logger"
	"github.com/abhisek/learnpath/internal/store"
)

type failingGenerator struct{ err error }

func (f failingGenerator) Generate(context.Context, *store.Profile) (*curriculum.Curriculum, error) {
	return nil, f.err
}

func newTestService(t *testing.T, gen curriculum.Generator) (*Service, *store.Store) {
	t.Helper()
	s := openTestStore(t)
	asm := NewAssembler(s, &fakeResolver{}, DefaultConfig(), logger.Nop())
	return NewService(s, gen, asm, logger.Nop()), s
}

func saveProfile(t *testing.T, s *store.Store, userID string) {
	t.Helper()
	require.NoError(t, s.Queries().UpsertProfile(context.Background(), testProfile(userID)))
}

func TestGenerate_RequiresProfile(t *testing.T) {
	svc, _ := newTestService(t, curriculum.NewMock())

	_, err := svc.Generate(context.Background(), "nobody")
	require.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Contains(t, err.Error(), "complete onboarding first")
}

func TestGenerate_EndToEnd(t *testing.T) {
	svc, s := newTestService(t, curriculum.NewMock())
	saveProfile(t, s, "u1")

	course, err := svc.Generate(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Learn Go - Complete Course", course.Title)
	assert.Equal(t, 6, course.TotalModules)
	assert.Equal(t, store.ModuleActive, course.Modules[0].Status)

	got, err := svc.Get(context.Background(), "u1", course.ID)
	require.NoError(t, err)
	require.Len(t, got.Modules, 6)
	for i, m := range got.Modules {
		assert.Equal(t, i+1, m.OrderIndex)
		assert.Len(t, m.Resources, 1)
		assert.Nil(t, m.Progress)
	}
}

func TestGenerate_GeneratorFailurePersistsNothing(t *testing.T) {
	genErr := &apperr.GenerationError{Reason: "reply is not valid JSON"}
	svc, s := newTestService(t, failingGenerator{err: genErr})
	saveProfile(t, s, "u1")

	_, err := svc.Generate(context.Background(), "u1")
	var ge *apperr.GenerationError
	require.True(t, errors.As(err, &ge))

	courses, err := svc.List(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, courses)
}

func TestGet_OtherOwnerIsNotFound(t *testing.T) {
	svc, s := newTestService(t, curriculum.NewMock())
	saveProfile(t, s, "owner")

	course, err := svc.Generate(context.Background(), "owner")
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), "intruder", course.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.Get(context.Background(), "owner", "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestList_NewestFirst(t *testing.T) {
	svc, s := newTestService(t, curriculum.NewMock())
	saveProfile(t, s, "u1")

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	var ids []string
	for i := range 3 {
		svc.assembler.now = func() time.Time { return base.Add(time.Duration(i) * time.Hour) }
		c, err := svc.Generate(context.Background(), "u1")
		require.NoError(t, err)
		ids = append(ids, c.ID)
	}

	courses, err := svc.List(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, courses, 3)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{courses[0].ID, courses[1].ID, courses[2].ID})
	for _, c := range courses {
		assert.Len(t, c.Modules, 6)
	}

	other, err := svc.List(context.Background(), "u2")
	require.NoError(t, err)
	assert.Empty(t, other)
}
