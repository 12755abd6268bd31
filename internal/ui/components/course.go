package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/learnpath/internal/store"
	"github.com/abhisek/learnpath/internal/ui/theme"
)

// Width is the default render width for cards and bars.
const Width = 60

// row renders a label/value line.
func row(label, value string) string {
	return theme.Label.Render(label) + theme.Body.Render(value)
}

// ProfileCard renders a learner's onboarding answers.
func ProfileCard(p *store.Profile) string {
	prior := p.PriorKnowledge
	if prior == "" {
		prior = "None specified"
	}
	lines := []string{
		theme.Title.Render(p.Goal),
		"",
		row("Timeframe", fmt.Sprintf("%d weeks", p.TimeframeWeeks)),
		row("Weekly hours", fmt.Sprintf("%d", p.WeeklyHours)),
		row("Skill level", p.SkillLevel),
		row("Learning style", p.LearningStyle),
		row("Objective", p.EndObjective),
		row("Prior knowledge", prior),
	}
	return theme.Card.Render(strings.Join(lines, "\n"))
}

// StatusMark returns the glyph for a module state.
func StatusMark(s store.ModuleStatus) string {
	switch s {
	case store.ModuleCompleted:
		return theme.Completed.Render("✓")
	case store.ModuleActive:
		return theme.Active.Render("▸")
	default:
		return theme.Locked.Render("·")
	}
}

func moduleTitle(m store.Module) string {
	title := fmt.Sprintf("%d. %s", m.OrderIndex, m.Title)
	switch m.Status {
	case store.ModuleCompleted:
		return theme.Completed.Render(title)
	case store.ModuleActive:
		return theme.Active.Render(title)
	default:
		return theme.Locked.Render(title)
	}
}

func completedCount(mods []store.Module) int {
	n := 0
	for _, m := range mods {
		if m.Status == store.ModuleCompleted {
			n++
		}
	}
	return n
}

// CourseOutline renders a course with every module, its status and
// attached video. Modules are grouped under their week.
func CourseOutline(c *store.Course) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render(c.Title) + "\n")
	if c.Description != "" {
		b.WriteString(theme.Subtitle.Render(c.Description) + "\n")
	}
	b.WriteString(theme.Hint.Render(fmt.Sprintf("%d weeks · %d modules · id %s", c.EstimatedWeeks, c.TotalModules, c.ID)) + "\n\n")
	b.WriteString(Fraction("Progress", completedCount(c.Modules), c.TotalModules, Width).View() + "\n")

	week := 0
	for _, m := range c.Modules {
		if m.WeekNumber != week {
			week = m.WeekNumber
			b.WriteString("\n" + theme.Milestone.Render(fmt.Sprintf("Week %d", week)) + "\n")
		}
		fmt.Fprintf(&b, " %s %s  %s\n", StatusMark(m.Status), moduleTitle(m),
			theme.Hint.Render(fmt.Sprintf("%dh · +%d XP", m.EstimatedHours, m.XPReward)))
		if m.Description != "" {
			b.WriteString("     " + theme.Subtitle.Render(m.Description) + "\n")
		}
		for _, obj := range m.LearningObjectives {
			b.WriteString("     - " + theme.Body.Render(obj) + "\n")
		}
		for _, r := range m.Resources {
			line := fmt.Sprintf("▶ %s (https://www.youtube.com/watch?v=%s", r.Title, r.VideoID)
			if r.DurationSeconds > 0 {
				line += ", " + (time.Duration(r.DurationSeconds) * time.Second).String()
			}
			b.WriteString("     " + theme.Hint.Render(line+")") + "\n")
		}
		b.WriteString(theme.Hint.Render("     module "+m.ID) + "\n")
	}
	return b.String()
}

// CourseList renders one line per course with its completion bar.
func CourseList(courses []store.Course) string {
	if len(courses) == 0 {
		return theme.Hint.Render("No courses yet. Run `learnpath course generate`.")
	}
	var b strings.Builder
	for _, c := range courses {
		status := string(c.Status)
		if c.Status == store.CourseCompleted {
			status = theme.Completed.Render(status)
		}
		fmt.Fprintf(&b, "%s  %s\n", theme.Title.Render(c.Title), status)
		b.WriteString(theme.Hint.Render(fmt.Sprintf("%s · created %s", c.ID, c.CreatedAt.Local().Format("2006-01-02"))) + "\n")
		b.WriteString(Fraction("", completedCount(c.Modules), c.TotalModules, Width).View() + "\n")
		for _, m := range c.Modules {
			if m.Status == store.ModuleActive {
				b.WriteString("  next: " + moduleTitle(m) + "\n")
			}
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// StatsCard renders XP, level, streak and a bar toward the next level.
func StatsCard(s *store.UserStats, xpPerLevel int) string {
	last := "never"
	if s.LastActivityDate != nil {
		last = s.LastActivityDate.Local().Format("2006-01-02 15:04")
	}
	intoLevel := s.TotalXP % xpPerLevel
	lines := []string{
		theme.Title.Render(fmt.Sprintf("Level %d", s.Level)),
		"",
		row("Total XP", theme.XP.Render(fmt.Sprintf("%d", s.TotalXP))),
		row("Streak", fmt.Sprintf("%d day(s)", s.StreakDays)),
		row("Completed", fmt.Sprintf("%d module(s)", s.ModulesCompleted)),
		row("Last activity", last),
		"",
		Fraction(fmt.Sprintf("Next level %d/%d", intoLevel, xpPerLevel), intoLevel, xpPerLevel, Width-4).View(),
	}
	return theme.Card.Render(strings.Join(lines, "\n"))
}

// History renders completed modules, newest first.
func History(entries []store.ProgressEntry) string {
	if len(entries) == 0 {
		return theme.Hint.Render("Nothing completed yet.")
	}
	var b strings.Builder
	for _, e := range entries {
		when := ""
		if e.CompletedAt != nil {
			when = e.CompletedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(&b, " %s %s  %s  %s\n", StatusMark(store.ModuleCompleted), theme.Body.Render(e.ModuleTitle),
			theme.XP.Render(fmt.Sprintf("+%d XP", e.XPEarned)), theme.Hint.Render(when))
	}
	return strings.TrimRight(b.String(), "\n")
}
