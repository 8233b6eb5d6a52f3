package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/horizonte/internal/model"
	"github.com/roach88/horizonte/internal/testutil"
)

func goal(id string, cat model.Category, progress int) model.Goal {
	return testutil.Goal(id, id, cat, progress)
}

func TestComputeHistory_GlobalAverageAndVelocity(t *testing.T) {
	a := testutil.CheckIn("a", 2024, time.January,
		goal("g1", model.CategoryLife, 20), goal("g2", model.CategoryLife, 60))
	b := testutil.CheckIn("b", 2024, time.February,
		goal("g1", model.CategoryLife, 50), goal("g2", model.CategoryLife, 90))

	periods := ComputeHistory([]model.CheckIn{b, a})
	require.Len(t, periods, 2)
	assert.Equal(t, "2024-01", periods[0].Label)
	assert.Equal(t, 40.0, periods[0].Average)
	assert.Equal(t, 70.0, periods[1].Average)
	assert.Equal(t, 2, periods[1].GoalCount)

	assert.Equal(t, 30.0, Velocity(periods))
}

func TestComputeHistory_CategoryAverages(t *testing.T) {
	c := testutil.CheckIn("c", 2024, time.March,
		goal("h", model.CategoryHealth, 80), goal("f", model.CategoryFinancial, 40))

	periods := ComputeHistory([]model.CheckIn{c})
	require.Len(t, periods, 1)
	assert.Equal(t, 60.0, periods[0].Average)
	assert.Equal(t, map[model.Category]float64{
		model.CategoryHealth:    80.0,
		model.CategoryFinancial: 40.0,
	}, periods[0].Categories)
	assert.False(t, periods[0].Tracks(model.CategoryLife))
}

func TestComputeHistory_RoundsToOneDecimal(t *testing.T) {
	c := testutil.CheckIn("c", 2024, time.March,
		goal("a", model.CategoryLife, 10), goal("b", model.CategoryLife, 10), goal("c", model.CategoryLife, 13))

	periods := ComputeHistory([]model.CheckIn{c})
	require.Len(t, periods, 1)
	assert.Equal(t, 11.0, periods[0].Average)

	c = testutil.CheckIn("c", 2024, time.March,
		goal("a", model.CategoryLife, 0), goal("b", model.CategoryLife, 0), goal("c", model.CategoryLife, 1))
	assert.Equal(t, 0.3, ComputeHistory([]model.CheckIn{c})[0].Average)
}

func TestComputeHistory_RoundsHalfToEven(t *testing.T) {
	c := testutil.CheckIn("c", 2024, time.March,
		goal("a", model.CategoryLife, 1), goal("b", model.CategoryLife, 2),
		goal("c", model.CategoryLife, 3), goal("d", model.CategoryLife, 3))

	periods := ComputeHistory([]model.CheckIn{c})
	require.Len(t, periods, 1)
	assert.Equal(t, 2.2, periods[0].Average)
	assert.Equal(t, 2.2, periods[0].Categories[model.CategoryLife])
}

func TestRound1(t *testing.T) {
	cases := map[float64]float64{
		2.25:  2.2,
		2.35:  2.4,
		0.15:  0.1,
		0.25:  0.2,
		33.33: 33.3,
		-1.25: -1.2,
		40:    40,
	}
	for in, want := range cases {
		assert.Equal(t, want, round1(in), "round1(%v)", in)
	}
}

func TestComputeHistory_SkipsCheckInsWithoutSnapshot(t *testing.T) {
	bare := testutil.CheckIn("bare", 2024, time.April)
	empty := testutil.CheckIn("empty", 2024, time.May)
	empty.Snapshot = model.Snapshot{}
	full := testutil.CheckIn("full", 2024, time.March, goal("g", model.CategoryLife, 10))

	periods := ComputeHistory([]model.CheckIn{bare, empty, full})
	require.Len(t, periods, 1)
	assert.Equal(t, "2024-03", periods[0].Label)

	assert.Empty(t, ComputeHistory(nil))
}

func TestVelocity_NeedsTwoPeriods(t *testing.T) {
	assert.Equal(t, 0.0, Velocity(nil))
	assert.Equal(t, 0.0, Velocity([]Period{{Average: 50}}))
	assert.Equal(t, -12.5, Velocity([]Period{{Average: 62.5}, {Average: 50}}))
}

func TestCategoryDeltas(t *testing.T) {
	periods := []Period{
		{Categories: map[model.Category]float64{model.CategoryHealth: 40, model.CategoryLife: 10}},
		{Categories: map[model.Category]float64{model.CategoryHealth: 55.5, model.CategoryFinancial: 20}},
	}

	got := CategoryDeltas(periods)
	assert.Equal(t, []CategoryDelta{
		{Category: model.CategoryFinancial, Current: 20, Previous: 0, Delta: 20, InCurrent: true, InPrevious: false},
		{Category: model.CategoryHealth, Current: 55.5, Previous: 40, Delta: 15.5, InCurrent: true, InPrevious: true},
		{Category: model.CategoryLife, Current: 0, Previous: 10, Delta: -10, InCurrent: false, InPrevious: true},
	}, got)
}

func TestCategoryDeltas_SinglePeriod(t *testing.T) {
	got := CategoryDeltas([]Period{{Categories: map[model.Category]float64{model.CategoryOther: 5}}})
	require.Len(t, got, 1)
	assert.Equal(t, 5.0, got[0].Delta)
	assert.False(t, got[0].InPrevious)

	assert.Nil(t, CategoryDeltas(nil))
}

func TestStreak(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	month := func(m time.Month) model.CheckIn { return testutil.CheckIn(m.String(), 2024, m) }

	tests := []struct {
		name     string
		checkins []model.CheckIn
		want     int
	}{
		{"three consecutive", []model.CheckIn{month(time.June), month(time.May), month(time.April)}, 3},
		{"gap after current", []model.CheckIn{month(time.June), month(time.April)}, 1},
		{"stale", []model.CheckIn{month(time.March)}, 0},
		{"last month keeps it alive", []model.CheckIn{month(time.May), month(time.April)}, 2},
		{"duplicates count once", []model.CheckIn{month(time.June), month(time.June), month(time.May)}, 2},
		{"unsorted input", []model.CheckIn{month(time.April), month(time.June), month(time.May)}, 3},
		{"empty", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Streak(tt.checkins, now))
		})
	}
}

func TestStreak_CrossesYearBoundary(t *testing.T) {
	now := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)
	checkins := []model.CheckIn{
		testutil.CheckIn("jan", 2025, time.January),
		testutil.CheckIn("dec", 2024, time.December),
		testutil.CheckIn("nov", 2024, time.November),
	}
	assert.Equal(t, 3, Streak(checkins, now))
}

func TestTimeline(t *testing.T) {
	g := goal("g", model.CategoryLife, 10)
	jan := testutil.CheckIn("jan", 2024, time.January, g)
	g.ProgressPercentage = 35
	feb := testutil.CheckIn("feb", 2024, time.February, g, goal("other", model.CategoryLife, 1))
	mar := testutil.CheckIn("mar", 2024, time.March, goal("other", model.CategoryLife, 2))

	points := Timeline([]model.CheckIn{mar, feb, jan}, "g")
	require.Len(t, points, 2)
	assert.Equal(t, "2024-01", points[0].Label)
	assert.Equal(t, 10, points[0].Progress)
	assert.Equal(t, 35, points[1].Progress)
	assert.Equal(t, model.StatusActive, points[1].Status)
}

func TestOverview(t *testing.T) {
	done := goal("d", model.CategoryLife, 100)
	done.Status = model.StatusCompleted
	dropped := goal("x", model.CategoryLife, 5)
	dropped.Status = model.StatusAbandoned

	got := Overview([]model.Goal{goal("a", model.CategoryLife, 1), done, dropped}, 4)
	assert.Equal(t, Totals{Goals: 3, Active: 1, Completed: 1, Abandoned: 1, CheckIns: 4}, got)
}

func TestOverview_UnknownStatusCountsAsOther(t *testing.T) {
	odd := goal("o", model.CategoryLife, 0)
	odd.Status = model.Status("paused")

	got := Overview([]model.Goal{goal("a", model.CategoryLife, 1), odd}, 0)
	assert.Equal(t, Totals{Goals: 2, Active: 1, Other: 1}, got)
	assert.Equal(t, got.Goals, got.Active+got.Completed+got.Abandoned+got.Other)
}

func TestSummarize(t *testing.T) {
	now := time.Date(2024, 2, 28, 21, 0, 0, 0, time.UTC)
	a := testutil.CheckIn("a", 2024, time.January, goal("g1", model.CategoryHealth, 20))
	b := testutil.CheckIn("b", 2024, time.February, goal("g1", model.CategoryHealth, 50))

	r := Summarize([]model.CheckIn{a, b}, now)
	require.Len(t, r.Periods, 2)
	require.NotNil(t, r.Current)
	require.NotNil(t, r.Previous)
	assert.Equal(t, "2024-02", r.Current.Label)
	assert.Equal(t, 30.0, r.Velocity)
	assert.Equal(t, 2, r.Streak)
	require.Len(t, r.Deltas, 1)
	assert.Equal(t, 30.0, r.Deltas[0].Delta)

	empty := Summarize(nil, now)
	assert.Nil(t, empty.Current)
	assert.Empty(t, empty.Periods)
	assert.Equal(t, 0, empty.Streak)
}

func TestRecent(t *testing.T) {
	periods := make([]Period, 15)
	for i := range periods {
		periods[i].GoalCount = i
	}
	got := Recent(periods, 12)
	require.Len(t, got, 12)
	assert.Equal(t, 3, got[0].GoalCount)
	assert.Len(t, Recent(periods[:5], 12), 5)
}
