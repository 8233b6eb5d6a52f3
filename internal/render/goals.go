package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/horizonte/internal/analytics"
	"github.com/roach88/horizonte/internal/model"
)

// Goals renders the goal list. Row numbers are the 1-based references the
// commands accept.
func (r *Renderer) Goals(goals []model.Goal) string {
	if len(goals) == 0 {
		return r.muted.Render("No goals yet. Add one with `horizonte add`.") + "\n"
	}
	rows := make([][]string, len(goals))
	for i, g := range goals {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			ShortID(g.ID),
			g.Title,
			categoryLabel(g.Category),
			g.Horizon.Label(),
			string(g.Status),
			fmt.Sprintf("%s %3d%%", Bar(float64(g.ProgressPercentage), 10), g.ProgressPercentage),
		}
	}
	return r.table([]string{"#", "ID", "Title", "Category", "Horizon", "Status", "Progress"}, rows) + "\n"
}

// Goal renders one goal with its SMART criteria, milestones and recorded
// progress.
func (r *Renderer) Goal(g model.Goal, timeline []analytics.TimelinePoint) string {
	var b strings.Builder
	b.WriteString(r.heading.Render(g.Title) + "\n")
	fmt.Fprintf(&b, "%s  %s · %s · %s\n", r.muted.Render(g.ID), categoryLabel(g.Category), g.Horizon.Label(), g.Status)
	if g.StatusReason != nil {
		fmt.Fprintf(&b, "Reason: %s\n", *g.StatusReason)
	}
	if g.Description != "" && g.Description != g.Title {
		b.WriteString("\n" + g.Description + "\n")
	}
	fmt.Fprintf(&b, "\nProgress %s %d%%\n", Bar(float64(g.ProgressPercentage), BarWidth), g.ProgressPercentage)

	smart := []struct{ label, value string }{
		{"Specific", g.SmartCriteria.Specific},
		{"Measurable", g.SmartCriteria.Measurable},
		{"Achievable", g.SmartCriteria.Achievable},
		{"Relevant", g.SmartCriteria.Relevant},
		{"Time-bound", g.SmartCriteria.TimeBound},
	}
	if !g.SmartCriteria.IsZero() {
		b.WriteString("\n" + r.heading.Render("SMART") + "\n")
		for _, s := range smart {
			if s.value == "" {
				continue
			}
			fmt.Fprintf(&b, "  %-11s %s\n", s.label+":", s.value)
		}
	}

	if len(g.Milestones) > 0 {
		fmt.Fprintf(&b, "\n%s (%d/%d)\n", r.heading.Render("Milestones"), g.CompletedMilestones(), len(g.Milestones))
		for i, m := range g.Milestones {
			box := "[ ]"
			if m.IsCompleted {
				box = "[x]"
			}
			fmt.Fprintf(&b, "  %d. %s %s\n", i+1, box, m.Title)
		}
	}

	if len(timeline) > 0 {
		b.WriteString("\n" + r.heading.Render("History") + "\n")
		for _, p := range timeline {
			fmt.Fprintf(&b, "  %s %s %3d%%\n", p.Label, Bar(float64(p.Progress), BarWidth), p.Progress)
		}
	}
	return b.String()
}

// Milestones lists suggested milestone titles.
func (r *Renderer) Milestones(titles []string) string {
	var b strings.Builder
	for i, t := range titles {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, t)
	}
	return b.String()
}
