package course

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/learnpath/internal/apperr"
	"github.com/abhisek/learnpath/internal/curriculum"
	"github.com/abhisek/learnpath/internal/logger"
	"github.com/abhisek/learnpath/internal/store"
)

// Service generates courses and reads them back for their owner.
type Service struct {
	store     *store.Store
	generator curriculum.Generator
	assembler *Assembler
	log       *logger.Logger
}

// NewService wires a course service.
func NewService(s *store.Store, gen curriculum.Generator, asm *Assembler, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{store: s, generator: gen, assembler: asm, log: log}
}

// Generate builds a new course from the user's saved profile. Nothing is
// persisted unless generation succeeds.
func (s *Service) Generate(ctx context.Context, userID string) (*store.Course, error) {
	profile, err := s.store.Queries().GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("complete onboarding first: %w", err)
		}
		return nil, err
	}

	c, err := s.generator.Generate(ctx, profile)
	if err != nil {
		return nil, err
	}
	return s.assembler.Assemble(ctx, userID, c)
}

// List returns the user's courses newest first, each with its modules but
// without resources.
func (s *Service) List(ctx context.Context, userID string) ([]store.Course, error) {
	q := s.store.Queries()
	courses, err := q.ListCourses(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range courses {
		mods, err := q.ListModules(ctx, courses[i].ID)
		if err != nil {
			return nil, err
		}
		courses[i].Modules = mods
	}
	return courses, nil
}

// Get returns one course with modules, resources and the caller's progress.
// A course owned by someone else is reported as not found.
func (s *Service) Get(ctx context.Context, userID, courseID string) (*store.Course, error) {
	q := s.store.Queries()
	c, err := q.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if c.UserID != userID {
		return nil, apperr.NotFound("course", courseID)
	}

	mods, err := q.ListModules(ctx, courseID)
	if err != nil {
		return nil, err
	}
	resources, err := q.ListResources(ctx, courseID)
	if err != nil {
		return nil, err
	}
	progress, err := q.ListCourseProgress(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	for i := range mods {
		mods[i].Resources = resources[mods[i].ID]
		mods[i].Progress = progress[mods[i].ID]
	}
	c.Modules = mods
	return c, nil
}
