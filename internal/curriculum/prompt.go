package curriculum

import (
	"fmt"
	"strings"

	"github.com/abhisek/learnpath/internal/store"
)

const systemPrompt = `You are a world-class learning architect. Output only valid JSON.`

// buildPrompt renders the profile into the generation instruction. The same
// profile always yields the same text.
func buildPrompt(p *store.Profile) string {
	prior := strings.TrimSpace(p.PriorKnowledge)
	if prior == "" {
		prior = "None specified"
	}

	var b strings.Builder
	b.WriteString("You are an expert learning architect. Generate a personalized learning course based on the following user profile:\n\n")
	fmt.Fprintf(&b, "Goal: %s\n", p.Goal)
	fmt.Fprintf(&b, "Timeframe: %d weeks\n", p.TimeframeWeeks)
	fmt.Fprintf(&b, "Weekly Hours: %d hours/week\n", p.WeeklyHours)
	fmt.Fprintf(&b, "Skill Level: %s\n", p.SkillLevel)
	fmt.Fprintf(&b, "Learning Style: %s\n", p.LearningStyle)
	fmt.Fprintf(&b, "End Objective: %s\n", p.EndObjective)
	fmt.Fprintf(&b, "Prior Knowledge: %s\n", prior)

	b.WriteString(`
Generate a structured learning course that:
1. Breaks the goal into logical milestones (3-5 major phases)
2. Each milestone contains 2-4 modules
3. Each module has a clear title, description, estimated hours, and week number
4. Total course fits within the timeframe and weekly availability
5. Adapts to the user's skill level (beginner = more fundamentals)
6. Each module includes a search query for finding relevant YouTube videos

Return ONLY valid JSON in this exact format (no markdown, no explanation):
`)
	b.WriteString(exampleShape)
	return b.String()
}

const exampleShape = `{
  "title": "Course Title",
  "description": "Brief course overview",
  "estimatedWeeks": 12,
  "milestones": [
    {
      "title": "Milestone 1",
      "modules": [
        {
          "title": "Module Title",
          "description": "What this module covers",
          "weekNumber": 1,
          "estimatedHours": 8,
          "learningObjectives": ["objective 1", "objective 2"],
          "youtubeSearchQuery": "specific search query for finding relevant video"
        }
      ]
    }
  ]
}`
