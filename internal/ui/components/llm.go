package components

import (
	"fmt"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/abhisek/learnpath/internal/store"
	"github.com/abhisek/learnpath/internal/ui/theme"
)

const timeLayout = "2006-01-02 15:04:05"

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return theme.Subtitle.Bold(true).Padding(0, 1)
			}
			return theme.Body.Padding(0, 1)
		})
}

// EventTable lists recorded curriculum-model calls.
func EventTable(events []store.LLMEventRecord) string {
	if len(events) == 0 {
		return theme.Hint.Render("No LLM events found.")
	}
	t := newTable("ID", "Time", "Purpose", "Model", "In", "Out", "Ms", "OK")
	for _, e := range events {
		ok := theme.Completed.Render("✓")
		if !e.Success {
			ok = theme.ErrorText.Render("✗")
		}
		t.Row(
			strconv.Itoa(e.ID),
			e.Timestamp.Local().Format(timeLayout),
			e.Purpose,
			clip(e.Model, 28),
			strconv.Itoa(e.InputTokens),
			strconv.Itoa(e.OutputTokens),
			strconv.FormatInt(e.LatencyMs, 10),
			ok,
		)
	}
	return t.String()
}

// EventDetail shows one event with its captured request and reply.
func EventDetail(e *store.LLMEventRecord) string {
	lines := []string{
		row("ID", strconv.Itoa(e.ID)),
		row("Time", e.Timestamp.Local().Format(timeLayout)),
		row("Provider", e.Provider),
		row("Model", e.Model),
		row("Purpose", e.Purpose),
		row("Tokens", fmt.Sprintf("%d in / %d out", e.InputTokens, e.OutputTokens)),
		row("Latency", fmt.Sprintf("%dms", e.LatencyMs)),
	}
	if e.ErrorMessage != "" {
		lines = append(lines, theme.Label.Render("Error")+theme.ErrorText.Render(e.ErrorMessage))
	}

	section := func(title, body string) string {
		if body == "" {
			body = theme.Hint.Render("(not captured)")
		}
		return theme.Subtitle.Render(title) + "\n" + body
	}
	return strings.Join([]string{
		theme.Card.Render(strings.Join(lines, "\n")),
		section("REQUEST", e.RequestBody),
		section("RESPONSE", e.ResponseBody),
	}, "\n\n")
}

// UsageTable aggregates token usage per purpose with a total row.
func UsageTable(usage []store.LLMUsage) string {
	if len(usage) == 0 {
		return theme.Hint.Render("No LLM usage recorded yet.")
	}
	t := newTable("Purpose", "Calls", "Input", "Output", "Total", "Avg ms")
	var calls, in, out int
	for _, u := range usage {
		t.Row(u.Purpose, strconv.Itoa(u.Calls), strconv.Itoa(u.InputTokens),
			strconv.Itoa(u.OutputTokens), strconv.Itoa(u.InputTokens+u.OutputTokens),
			strconv.FormatInt(u.AvgLatencyMs, 10))
		calls += u.Calls
		in += u.InputTokens
		out += u.OutputTokens
	}
	t.Row("TOTAL", strconv.Itoa(calls), strconv.Itoa(in), strconv.Itoa(out), strconv.Itoa(in+out), "")
	return theme.Subtitle.Render("Usage by purpose") + "\n" + t.String()
}

// PriceFunc returns the USD cost of a usage row, or false when the model
// has no known pricing.
type PriceFunc func(store.LLMUsage) (float64, bool)

// CostTable estimates spend per model. Models without pricing show "?"
// and mark the total as partial.
func CostTable(usage []store.LLMUsage, price PriceFunc) string {
	if len(usage) == 0 {
		return ""
	}
	t := newTable("Model", "Calls", "Input", "Output", "Cost")
	var (
		total    float64
		unpriced []string
	)
	for _, u := range usage {
		cost := "?"
		if c, ok := price(u); ok {
			total += c
			cost = USD(c)
		} else {
			unpriced = append(unpriced, u.Model)
		}
		t.Row(clip(u.Model, 32), strconv.Itoa(u.Calls), strconv.Itoa(u.InputTokens),
			strconv.Itoa(u.OutputTokens), cost)
	}
	label := "TOTAL"
	if len(unpriced) > 0 {
		label = "TOTAL (partial)"
	}
	t.Row(label, "", "", "", USD(total))

	out := theme.Subtitle.Render("Estimated cost (USD)") + "\n" + t.String()
	if len(unpriced) > 0 {
		out += "\n" + theme.Hint.Render("Pricing unavailable for: "+strings.Join(unpriced, ", "))
	}
	return out
}

// USD formats a dollar amount, keeping four decimals below one cent.
func USD(v float64) string {
	if v < 0.01 {
		return fmt.Sprintf("$%.4f", v)
	}
	return fmt.Sprintf("$%.2f", v)
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
