// Package analytics derives month-over-month statistics from check-in
// snapshots. It only reads the history it is given.
package analytics

import (
	"sort"
	"strconv"
	"time"

	"github.com/roach88/horizonte/internal/model"
)

// PeriodLayout formats period labels.
const PeriodLayout = "2006-01"

// Period summarizes one check-in snapshot.
type Period struct {
	Date       time.Time                  `json:"date"`
	Label      string                     `json:"period"`
	GoalCount  int                        `json:"total_goals"`
	Average    float64                    `json:"avg_progress"`
	Categories map[model.Category]float64 `json:"categories"`
}

// Tracks reports whether c had at least one goal in the period.
func (p Period) Tracks(c model.Category) bool {
	_, ok := p.Categories[c]
	return ok
}

// CategoryDelta compares one category between the two latest periods.
// Current and Previous are 0 when the category was not tracked; the InCurrent
// and InPrevious flags tell that apart from real zero progress.
type CategoryDelta struct {
	Category   model.Category `json:"category"`
	Current    float64        `json:"current"`
	Previous   float64        `json:"previous"`
	Delta      float64        `json:"delta"`
	InCurrent  bool           `json:"in_current"`
	InPrevious bool           `json:"in_previous"`
}

// round1 rounds the exact binary value of x to one decimal place, ties to
// even, so 2.25 becomes 2.2 and 0.15 (stored just below) becomes 0.1.
func round1(x float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 1, 64), 64)
	return r
}

// ComputeHistory returns one period per check-in that carries a snapshot,
// oldest first. Check-ins on the same date keep their input order.
func ComputeHistory(checkins []model.CheckIn) []Period {
	withSnapshot := make([]model.CheckIn, 0, len(checkins))
	for _, c := range checkins {
		if c.HasSnapshot() {
			withSnapshot = append(withSnapshot, c)
		}
	}
	sort.SliceStable(withSnapshot, func(i, j int) bool {
		return withSnapshot[i].Date.Before(withSnapshot[j].Date)
	})

	periods := make([]Period, 0, len(withSnapshot))
	for _, c := range withSnapshot {
		periods = append(periods, summarizeSnapshot(c))
	}
	return periods
}

func summarizeSnapshot(c model.CheckIn) Period {
	sums := map[model.Category]int{}
	counts := map[model.Category]int{}
	total := 0
	for _, g := range c.Snapshot {
		total += g.ProgressPercentage
		sums[g.Category] += g.ProgressPercentage
		counts[g.Category]++
	}

	p := Period{
		Date:       c.Date,
		Label:      c.Date.Format(PeriodLayout),
		GoalCount:  len(c.Snapshot),
		Categories: make(map[model.Category]float64, len(sums)),
	}
	if p.GoalCount > 0 {
		p.Average = round1(float64(total) / float64(p.GoalCount))
	}
	for cat, sum := range sums {
		p.Categories[cat] = round1(float64(sum) / float64(counts[cat]))
	}
	return p
}

// Latest returns the newest period and the one before it. Either may be nil.
func Latest(periods []Period) (current, previous *Period) {
	n := len(periods)
	if n >= 1 {
		current = &periods[n-1]
	}
	if n >= 2 {
		previous = &periods[n-2]
	}
	return current, previous
}

// Velocity is the change in global average between the two latest periods.
func Velocity(periods []Period) float64 {
	current, previous := Latest(periods)
	if current == nil || previous == nil {
		return 0
	}
	return round1(current.Average - previous.Average)
}

// CategoryDeltas compares every category present in either of the two latest
// periods, sorted by category. An untracked side counts as 0.
func CategoryDeltas(periods []Period) []CategoryDelta {
	current, previous := Latest(periods)
	if current == nil {
		return nil
	}
	if previous == nil {
		previous = &Period{}
	}

	seen := map[model.Category]bool{}
	for c := range current.Categories {
		seen[c] = true
	}
	for c := range previous.Categories {
		seen[c] = true
	}

	deltas := make([]CategoryDelta, 0, len(seen))
	for c := range seen {
		cur, inCur := current.Categories[c]
		prev, inPrev := previous.Categories[c]
		deltas = append(deltas, CategoryDelta{
			Category:   c,
			Current:    cur,
			Previous:   prev,
			Delta:      round1(cur - prev),
			InCurrent:  inCur,
			InPrevious: inPrev,
		})
	}
	sort.Slice(deltas, func(i, j int) bool { return deltas[i].Category < deltas[j].Category })
	return deltas
}

// monthIndex numbers calendar months so that consecutive months differ by 1.
func monthIndex(t time.Time) int {
	return t.Year()*12 + int(t.Month())
}

// Streak counts consecutive calendar months with at least one check-in,
// walking back from the most recent one. The streak is 0 when the most recent
// check-in is older than last month relative to now. Every check-in counts,
// with or without a snapshot.
func Streak(checkins []model.CheckIn, now time.Time) int {
	if len(checkins) == 0 {
		return 0
	}

	months := make([]int, 0, len(checkins))
	seen := map[int]bool{}
	for _, c := range checkins {
		m := monthIndex(c.Date)
		if !seen[m] {
			seen[m] = true
			months = append(months, m)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(months)))

	if monthIndex(now)-months[0] > 1 {
		return 0
	}

	streak := 1
	for i := 1; i < len(months); i++ {
		if months[i-1]-months[i] != 1 {
			break
		}
		streak++
	}
	return streak
}

// TimelinePoint is a goal's recorded state at one check-in.
type TimelinePoint struct {
	Date     time.Time    `json:"date"`
	Label    string       `json:"period"`
	Progress int          `json:"progress_percentage"`
	Status   model.Status `json:"status"`
}

// Timeline returns the recorded progress of goalID across every snapshot that
// contains it, oldest first.
func Timeline(checkins []model.CheckIn, goalID string) []TimelinePoint {
	sorted := make([]model.CheckIn, len(checkins))
	copy(sorted, checkins)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	var points []TimelinePoint
	for _, c := range sorted {
		g, ok := c.Snapshot.Find(goalID)
		if !ok {
			continue
		}
		points = append(points, TimelinePoint{
			Date:     c.Date,
			Label:    c.Date.Format(PeriodLayout),
			Progress: g.ProgressPercentage,
			Status:   g.Status,
		})
	}
	return points
}

// Totals counts goals by status alongside the number of check-ins.
type Totals struct {
	Goals     int `json:"total_goals"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Abandoned int `json:"abandoned"`
	Other     int `json:"other,omitempty"`
	CheckIns  int `json:"checkins"`
}

// Overview tallies goals by status. Goals with a status outside the known set
// count under Other so the buckets always sum to Goals.
func Overview(goals []model.Goal, checkinCount int) Totals {
	t := Totals{Goals: len(goals), CheckIns: checkinCount}
	for _, g := range goals {
		switch g.Status {
		case model.StatusActive:
			t.Active++
		case model.StatusCompleted:
			t.Completed++
		case model.StatusAbandoned:
			t.Abandoned++
		default:
			t.Other++
		}
	}
	return t
}

// Report is the full analytics view of a check-in history.
type Report struct {
	Periods  []Period        `json:"periods"`
	Current  *Period         `json:"current"`
	Previous *Period         `json:"previous"`
	Velocity float64         `json:"velocity"`
	Deltas   []CategoryDelta `json:"category_deltas"`
	Streak   int             `json:"streak"`
}

// Summarize builds a Report for checkins as of now.
func Summarize(checkins []model.CheckIn, now time.Time) Report {
	periods := ComputeHistory(checkins)
	current, previous := Latest(periods)
	return Report{
		Periods:  periods,
		Current:  current,
		Previous: previous,
		Velocity: Velocity(periods),
		Deltas:   CategoryDeltas(periods),
		Streak:   Streak(checkins, now),
	}
}

// Recent returns at most the last n periods.
func Recent(periods []Period, n int) []Period {
	if n <= 0 || len(periods) <= n {
		return periods
	}
	return periods[len(periods)-n:]
}
