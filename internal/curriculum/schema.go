package curriculum

import "github.com/abhisek/learnpath/internal/llm"

var moduleSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"title":       map[string]any{"type": "string"},
		"description": map[string]any{"type": "string"},
		"weekNumber": map[string]any{
			"type":        "integer",
			"minimum":     1,
			"description": "Week of the course this module is scheduled in, starting at 1",
		},
		"estimatedHours": map[string]any{
			"type":    "integer",
			"minimum": 1,
		},
		"learningObjectives": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
		"youtubeSearchQuery": map[string]any{
			"type":        "string",
			"description": "Search query for finding a relevant video",
		},
	},
	"required":             []any{"title", "description", "weekNumber", "estimatedHours", "learningObjectives", "youtubeSearchQuery"},
	"additionalProperties": false,
}

// CurriculumSchema is the reply contract with the text-generation provider.
var CurriculumSchema = &llm.Schema{
	Name:        "learning-curriculum",
	Description: "A personalized course split into milestones of modules",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title":          map[string]any{"type": "string"},
			"description":    map[string]any{"type": "string"},
			"estimatedWeeks": map[string]any{"type": "integer", "minimum": 1},
			"milestones": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title": map[string]any{"type": "string"},
						"modules": map[string]any{
							"type":     "array",
							"minItems": 1,
							"items":    moduleSchema,
						},
					},
					"required":             []any{"title", "modules"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"title", "description", "estimatedWeeks", "milestones"},
		"additionalProperties": false,
	},
}
