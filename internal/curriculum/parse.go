package curriculum

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/learnpath/internal/apperr"
	"github.com/abhisek/learnpath/internal/llm"
)

// Parse decodes a model reply into a Curriculum. Surrounding code fences are
// stripped first. Malformed JSON or a structurally unusable curriculum is
// reported as *apperr.GenerationError carrying the cleaned reply.
func Parse(reply string) (*Curriculum, error) {
	content := llm.StripCodeFences(reply)
	if content == "" {
		return nil, &apperr.GenerationError{Reason: "empty reply"}
	}

	var c Curriculum
	if err := json.Unmarshal([]byte(content), &c); err != nil {
		return nil, &apperr.GenerationError{Reason: "reply is not valid JSON", Content: content, Err: err}
	}
	if err := checkStructure(&c); err != nil {
		return nil, &apperr.GenerationError{Reason: "reply does not match the curriculum schema", Content: content, Err: err}
	}
	normalize(&c)
	return &c, nil
}

func checkStructure(c *Curriculum) error {
	var errs []error
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, errors.New("title is empty"))
	}
	if len(c.Milestones) == 0 {
		errs = append(errs, errors.New("no milestones"))
	}
	for i, ms := range c.Milestones {
		if len(ms.Modules) == 0 {
			errs = append(errs, fmt.Errorf("milestone %d has no modules", i+1))
		}
		for j, m := range ms.Modules {
			at := fmt.Sprintf("milestone %d module %d", i+1, j+1)
			if strings.TrimSpace(m.Title) == "" {
				errs = append(errs, fmt.Errorf("%s: title is empty", at))
			}
			if m.WeekNumber < 1 {
				errs = append(errs, fmt.Errorf("%s: weekNumber %d is below 1", at, m.WeekNumber))
			}
			if m.EstimatedHours < 1 {
				errs = append(errs, fmt.Errorf("%s: estimatedHours %d is below 1", at, m.EstimatedHours))
			}
		}
	}
	return errors.Join(errs...)
}

func normalize(c *Curriculum) {
	c.Title = strings.TrimSpace(c.Title)
	c.Description = strings.TrimSpace(c.Description)
	for i := range c.Milestones {
		for j := range c.Milestones[i].Modules {
			m := &c.Milestones[i].Modules[j]
			m.Title = strings.TrimSpace(m.Title)
			m.SearchQuery = strings.TrimSpace(m.SearchQuery)
			if m.LearningObjectives == nil {
				m.LearningObjectives = []string{}
			}
		}
	}
}
