// Package course assembles generated curricula into persisted courses and
// serves them back to their owners.
package course

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/learnpath/internal/apperr"
	"github.com/abhisek/learnpath/internal/curriculum"
	"github.com/abhisek/learnpath/internal/logger"
	"github.com/abhisek/learnpath/internal/store"
)

// DefaultXPReward is the XP granted for completing a module.
const DefaultXPReward = 100

// VideoResolver finds the primary video for a module. A nil result means
// no video; it must not fail.
type VideoResolver interface {
	Resolve(ctx context.Context, module, query string) *store.Resource
}

// Config controls course assembly.
type Config struct {
	// Workers bounds concurrent video lookups.
	Workers int
	// XPReward is stamped on every module.
	XPReward int
}

// DefaultConfig returns the recommended settings.
func DefaultConfig() Config {
	return Config{Workers: 4, XPReward: DefaultXPReward}
}

// ConfigFromEnv reads LEARNPATH_ASSEMBLER_WORKERS over the defaults.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if n, err := strconv.Atoi(os.Getenv("LEARNPATH_ASSEMBLER_WORKERS")); err == nil && n > 0 {
		cfg.Workers = n
	}
	return cfg
}

// Assembler flattens a curriculum into ordered modules, attaches videos and
// persists the result.
type Assembler struct {
	store    *store.Store
	resolver VideoResolver
	cfg      Config
	log      *logger.Logger

	newID func() string
	now   func() time.Time
}

// NewAssembler creates an Assembler. resolver may be nil to skip videos.
func NewAssembler(s *store.Store, resolver VideoResolver, cfg Config, log *logger.Logger) *Assembler {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.XPReward <= 0 {
		cfg.XPReward = DefaultXPReward
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Assembler{
		store:    s,
		resolver: resolver,
		cfg:      cfg,
		log:      log.With("component", "assembler"),
		newID:    uuid.NewString,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Assemble builds and saves a course for userID from c. Modules take
// orderIndex 1..N in milestone order then in-milestone order; the first is
// active and the rest locked. Course, modules and resources are written in
// one transaction, so a failure leaves nothing behind.
func (a *Assembler) Assemble(ctx context.Context, userID string, c *curriculum.Curriculum) (*store.Course, error) {
	specs := flatten(c)
	if len(specs) == 0 {
		return nil, &apperr.GenerationError{Reason: "curriculum has no modules"}
	}

	course := &store.Course{
		ID:             a.newID(),
		UserID:         userID,
		Title:          c.Title,
		Description:    c.Description,
		EstimatedWeeks: c.EstimatedWeeks,
		TotalModules:   len(specs),
		Status:         store.CourseActive,
		CreatedAt:      a.now(),
		Modules:        make([]store.Module, len(specs)),
	}
	for i, spec := range specs {
		status := store.ModuleLocked
		if i == 0 {
			status = store.ModuleActive
		}
		course.Modules[i] = store.Module{
			ID:                 a.newID(),
			CourseID:           course.ID,
			OrderIndex:         i + 1,
			Title:              spec.Title,
			Description:        spec.Description,
			WeekNumber:         spec.WeekNumber,
			EstimatedHours:     spec.EstimatedHours,
			Status:             status,
			XPReward:           a.cfg.XPReward,
			LearningObjectives: spec.LearningObjectives,
		}
	}

	videos := a.resolveVideos(ctx, course.Modules, specs)
	for i, v := range videos {
		if v == nil {
			continue
		}
		v.ID = a.newID()
		v.ModuleID = course.Modules[i].ID
		v.OrderIndex = 1
		course.Modules[i].Resources = []store.Resource{*v}
	}

	err := a.store.WithTx(ctx, func(q *store.Queries) error {
		if err := q.CreateCourse(ctx, course); err != nil {
			return err
		}
		for i := range course.Modules {
			if err := q.CreateModule(ctx, &course.Modules[i]); err != nil {
				return err
			}
		}
		for i := range course.Modules {
			for j := range course.Modules[i].Resources {
				if err := q.CreateResource(ctx, &course.Modules[i].Resources[j]); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.log.Info("course assembled", "user", userID, "course", course.ID,
		"modules", course.TotalModules, "videos", countNonNil(videos))
	return course, nil
}

// resolveVideos looks up one video per module with at most cfg.Workers
// lookups in flight. Results are indexed by module position.
func (a *Assembler) resolveVideos(ctx context.Context, mods []store.Module, specs []curriculum.ModuleSpec) []*store.Resource {
	out := make([]*store.Resource, len(specs))
	if a.resolver == nil {
		return out
	}

	var g errgroup.Group
	g.SetLimit(a.cfg.Workers)
	for i := range specs {
		g.Go(func() error {
			out[i] = a.resolver.Resolve(ctx, mods[i].Title, specs[i].SearchQuery)
			return nil
		})
	}
	_ = g.Wait() // lookups never fail
	return out
}

func flatten(c *curriculum.Curriculum) []curriculum.ModuleSpec {
	if c == nil {
		return nil
	}
	specs := make([]curriculum.ModuleSpec, 0, c.ModuleCount())
	for _, ms := range c.Milestones {
		specs = append(specs, ms.Modules...)
	}
	return specs
}

func countNonNil(rs []*store.Resource) int {
	n := 0
	for _, r := range rs {
		if r != nil {
			n++
		}
	}
	return n
}
