package curriculum

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/abhisek/learnpath/internal/store"
)

// MockGenerator synthesizes a fixed three-milestone, six-module curriculum
// from the profile alone. It never fails and performs no I/O.
type MockGenerator struct{}

// NewMock creates a MockGenerator.
func NewMock() *MockGenerator { return &MockGenerator{} }

// hourFactors scale weeklyHours per module position.
var hourFactors = [6]float64{0.8, 1.0, 1.2, 1.0, 1.5, 1.0}

func (MockGenerator) Generate(_ context.Context, p *store.Profile) (*Curriculum, error) {
	return Mock(p), nil
}

// Mock builds the offline curriculum for p. Hours are rounded and never
// below 1; week numbers stay within [1, timeframeWeeks].
func Mock(p *store.Profile) *Curriculum {
	weeks := max(p.TimeframeWeeks, 1)
	goal := strings.ToLower(p.Goal)
	hours := func(i int) int {
		return max(int(math.Round(float64(p.WeeklyHours)*hourFactors[i])), 1)
	}
	week := func(w int) int {
		return min(max(w, 1), weeks)
	}

	return &Curriculum{
		Title:          p.Goal + " - Complete Course",
		Description:    fmt.Sprintf("A personalized %d-week journey to master %s, tailored for %s learners.", p.TimeframeWeeks, goal, p.SkillLevel),
		EstimatedWeeks: weeks,
		Milestones: []Milestone{
			{
				Title: "Foundations & Fundamentals",
				Modules: []ModuleSpec{
					{
						Title:          "Introduction to the Basics",
						Description:    fmt.Sprintf("Start your %s journey with core concepts and fundamental principles.", goal),
						WeekNumber:     week(1),
						EstimatedHours: hours(0),
						LearningObjectives: []string{
							"Understand key terminology and concepts",
							"Set up your development environment",
							"Complete your first hands-on exercise",
						},
						SearchQuery: p.Goal + " tutorial for beginners",
					},
					{
						Title:          "Core Concepts Deep Dive",
						Description:    "Explore essential concepts that form the foundation of your learning path.",
						WeekNumber:     week(2),
						EstimatedHours: hours(1),
						LearningObjectives: []string{
							"Master fundamental concepts",
							"Apply knowledge through practical examples",
							"Build confidence with guided exercises",
						},
						SearchQuery: p.Goal + " core concepts explained",
					},
				},
			},
			{
				Title: "Intermediate Skills",
				Modules: []ModuleSpec{
					{
						Title:          "Building Your First Project",
						Description:    "Apply what you've learned by creating a real-world project from scratch.",
						WeekNumber:     week(4),
						EstimatedHours: hours(2),
						LearningObjectives: []string{
							"Plan and structure a project",
							"Implement core functionality",
							"Debug and test your work",
						},
						SearchQuery: p.Goal + " project tutorial step by step",
					},
					{
						Title:          "Advanced Techniques",
						Description:    "Level up your skills with intermediate-to-advanced techniques and best practices.",
						WeekNumber:     week(6),
						EstimatedHours: hours(3),
						LearningObjectives: []string{
							"Learn industry best practices",
							"Optimize your workflow",
							"Handle complex scenarios",
						},
						SearchQuery: p.Goal + " advanced techniques",
					},
				},
			},
			{
				Title: "Mastery & Real-World Application",
				Modules: []ModuleSpec{
					{
						Title:          "Final Project: " + p.EndObjective,
						Description:    fmt.Sprintf("Build %s - putting everything together.", strings.ToLower(p.EndObjective)),
						WeekNumber:     week(int(math.Floor(float64(p.TimeframeWeeks) * 0.75))),
						EstimatedHours: hours(4),
						LearningObjectives: []string{
							"Design and implement a complete solution",
							"Apply all learned concepts",
							"Prepare for deployment",
						},
						SearchQuery: p.Goal + " complete project build",
					},
					{
						Title:          "Deployment & Best Practices",
						Description:    "Learn how to deploy, maintain, and scale your work in production.",
						WeekNumber:     week(p.TimeframeWeeks - 1),
						EstimatedHours: hours(5),
						LearningObjectives: []string{
							"Deploy to production",
							"Implement monitoring and logging",
							"Plan for future growth",
						},
						SearchQuery: p.Goal + " deployment tutorial",
					},
				},
			},
		},
	}
}
