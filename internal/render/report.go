package render

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/roach88/horizonte/internal/analytics"
	"github.com/roach88/horizonte/internal/atomicfile"
	"github.com/roach88/horizonte/internal/tracker"
)

// ChartPeriods is how many periods the analytics chart shows.
const ChartPeriods = 12

// Chart draws one bar per period, oldest first.
func (r *Renderer) Chart(periods []analytics.Period) string {
	periods = analytics.Recent(periods, ChartPeriods)
	if len(periods) == 0 {
		return r.muted.Render("No check-ins with recorded progress yet.") + "\n"
	}
	var b strings.Builder
	for _, p := range periods {
		fmt.Fprintf(&b, "%s %s %5.1f%%\n", p.Label, Bar(p.Average, BarWidth), p.Average)
	}
	return b.String()
}

// Progress renders the status tally and the analytics report.
func (r *Renderer) Progress(totals analytics.Totals, rep analytics.Report) string {
	var b strings.Builder
	b.WriteString(r.heading.Render("Overview") + "\n")
	fmt.Fprintf(&b, "  Goals: %d (active %d, completed %d, abandoned %d",
		totals.Goals, totals.Active, totals.Completed, totals.Abandoned)
	if totals.Other > 0 {
		fmt.Fprintf(&b, ", other %d", totals.Other)
	}
	b.WriteString(")\n")
	fmt.Fprintf(&b, "  Check-ins: %d, streak: %d month(s)\n", totals.CheckIns, rep.Streak)

	if rep.Current != nil {
		fmt.Fprintf(&b, "  Current average: %.1f%% (%s)\n", rep.Current.Average, rep.Current.Label)
	}
	if rep.Previous != nil {
		fmt.Fprintf(&b, "  Velocity: %s points since %s\n", r.delta(rep.Velocity, ""), rep.Previous.Label)
	}

	if len(rep.Deltas) > 0 {
		rows := make([][]string, len(rep.Deltas))
		for i, d := range rep.Deltas {
			rows[i] = []string{
				categoryLabel(d.Category),
				tracked(d.Previous, d.InPrevious),
				tracked(d.Current, d.InCurrent),
				Signed(d.Delta),
			}
		}
		b.WriteString("\n" + r.heading.Render("By category") + "\n")
		b.WriteString(r.table([]string{"Category", "Previous", "Current", "Change"}, rows) + "\n")
	}

	b.WriteString("\n" + r.heading.Render("History") + "\n")
	b.WriteString(r.Chart(rep.Periods))
	return b.String()
}

func tracked(v float64, ok bool) string {
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", v)
}

// CheckIn summarizes the entries of a finished check-in.
func (r *Renderer) CheckIn(res tracker.CheckInResult) string {
	rows := make([][]string, len(res.Entries))
	for i, e := range res.Entries {
		rows[i] = []string{
			e.Title,
			fmt.Sprintf("%d%% -> %d%%", e.OldPercent, e.NewPercent),
			r.delta(float64(e.Delta()), "%"),
			e.Source,
		}
	}
	var b strings.Builder
	b.WriteString(r.table([]string{"Goal", "Progress", "Change", "Source"}, rows) + "\n")
	fmt.Fprintf(&b, "Saved %s\n", filepath.Base(res.Path))
	return b.String()
}

// History lists check-in narratives, newest first, numbered for `history show`.
func (r *Renderer) History(paths []string) string {
	if len(paths) == 0 {
		return r.muted.Render("No check-ins yet.") + "\n"
	}
	var b strings.Builder
	for i, p := range paths {
		fmt.Fprintf(&b, "%3d. %s\n", i+1, strings.TrimSuffix(filepath.Base(p), ".md"))
	}
	return b.String()
}

// Backups lists backup files, newest first.
func (r *Renderer) Backups(backups []atomicfile.Backup) string {
	if len(backups) == 0 {
		return r.muted.Render("No backups.") + "\n"
	}
	rows := make([][]string, len(backups))
	for i, bk := range backups {
		rows[i] = []string{
			filepath.Base(bk.Path),
			bk.Base,
			bk.Stamp.Format("2006-01-02 15:04:05"),
			strconv.FormatInt(bk.Size, 10),
		}
	}
	return r.table([]string{"Backup", "File", "Taken", "Bytes"}, rows) + "\n"
}

// Doctor renders file validation results.
func (r *Renderer) Doctor(checks []tracker.FileCheck) string {
	var b strings.Builder
	for _, c := range checks {
		name := filepath.Base(c.Path)
		switch {
		case c.Missing:
			fmt.Fprintf(&b, "%s %s %s\n", r.muted.Render("-"), name, r.muted.Render("(not created yet)"))
		case c.OK():
			fmt.Fprintf(&b, "%s %s\n", r.good.Render("ok"), name)
		default:
			fmt.Fprintf(&b, "%s %s: %s\n", r.bad.Render("!!"), name, c.Problem)
		}
	}
	return b.String()
}

// Due renders the reminder state.
func (r *Renderer) Due(d tracker.DueStatus) string {
	switch {
	case d.Done:
		return fmt.Sprintf("Check-in for %s done (%s).\n", d.Period, strings.TrimSuffix(d.Latest, ".md"))
	case d.LastDayOfMonth:
		return r.bad.Render(fmt.Sprintf("Last day of the month: the %s check-in is still pending.", d.Period)) + "\n"
	default:
		return fmt.Sprintf("Check-in for %s pending.\n", d.Period)
	}
}
