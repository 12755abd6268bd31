// Package curriculum turns a learner profile into a milestone → module
// curriculum, either through the text-generation provider or a
// deterministic offline generator.
package curriculum

import (
	"context"

	"github.com/abhisek/learnpath/internal/store"
)

// Curriculum is a generated course outline. Milestones only order modules;
// they are not persisted.
type Curriculum struct {
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	EstimatedWeeks int         `json:"estimatedWeeks"`
	Milestones     []Milestone `json:"milestones"`
}

// Milestone is a named phase of the curriculum.
type Milestone struct {
	Title   string       `json:"title"`
	Modules []ModuleSpec `json:"modules"`
}

// ModuleSpec describes one module as generated, before it has an id,
// position or status.
type ModuleSpec struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	WeekNumber         int      `json:"weekNumber"`
	EstimatedHours     int      `json:"estimatedHours"`
	LearningObjectives []string `json:"learningObjectives"`
	SearchQuery        string   `json:"youtubeSearchQuery"`
}

// ModuleCount returns the number of modules across all milestones.
func (c *Curriculum) ModuleCount() int {
	n := 0
	for _, m := range c.Milestones {
		n += len(m.Modules)
	}
	return n
}

// Generator produces a curriculum for a validated profile.
type Generator interface {
	// Generate returns a structurally valid curriculum. Failures are
	// *apperr.GenerationError when a reply arrived but was unusable, and
	// *apperr.ExternalServiceError when no reply arrived.
	Generate(ctx context.Context, p *store.Profile) (*Curriculum, error)
}
