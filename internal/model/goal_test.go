package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleGoal() Goal {
	done := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	reason := "on track"
	return Goal{
		ID:          "g-1",
		Title:       "Run a marathon",
		Description: "Finish a full marathon",
		Category:    CategoryHealth,
		Horizon:     HorizonShort,
		SmartCriteria: SmartCriteria{
			Specific: "42km", Measurable: "race result", Achievable: "training plan",
			Relevant: "health", TimeBound: "December",
		},
		Milestones: []Milestone{
			{ID: "m-1", Title: "Run 10k", IsCompleted: true, CompletedAt: &done},
			{ID: "m-2", Title: "Run 21k"},
		},
		CreatedAt:          time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:          time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Status:             StatusActive,
		StatusReason:       &reason,
		ProgressPercentage: 35,
	}
}

func TestGoal_Validate(t *testing.T) {
	require.NoError(t, sampleGoal().Validate())

	g := sampleGoal()
	g.ProgressPercentage = 101
	assert.ErrorContains(t, g.Validate(), "outside 0..100")

	g = sampleGoal()
	g.ProgressPercentage = -1
	assert.Error(t, g.Validate())

	g = sampleGoal()
	g.ID = ""
	g.Category = "hobby"
	err := g.Validate()
	assert.ErrorContains(t, err, "id is empty")
	assert.ErrorIs(t, err, ErrUnknownValue)
}

func TestGoal_UnmarshalAppliesDefaults(t *testing.T) {
	var g Goal
	err := json.Unmarshal([]byte(`{"id":"x","title":"t","description":"d","horizon":"mid_term",
		"smart_criteria":{"specific":"s","measurable":"m","achievable":"a","relevant":"r","time_bound":"t"}}`), &g)
	require.NoError(t, err)
	assert.Equal(t, CategoryLife, g.Category)
	assert.Equal(t, StatusActive, g.Status)
	assert.Equal(t, HorizonMid, g.Horizon)
}

func TestGoal_UnmarshalLegacyCategory(t *testing.T) {
	var g Goal
	require.NoError(t, json.Unmarshal([]byte(`{"id":"x","title":"t","category":"saúde","horizon":"long_term"}`), &g))
	assert.Equal(t, CategoryHealth, g.Category)
}

func TestGoal_CloneIsDeep(t *testing.T) {
	orig := sampleGoal()
	c := orig.Clone()

	c.Milestones[0].Title = "changed"
	*c.Milestones[0].CompletedAt = time.Time{}
	*c.StatusReason = "changed"

	assert.Equal(t, "Run 10k", orig.Milestones[0].Title)
	assert.False(t, orig.Milestones[0].CompletedAt.IsZero())
	assert.Equal(t, "on track", *orig.StatusReason)
}

func TestGoal_SetStatus(t *testing.T) {
	g := sampleGoal()
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	g.SetStatus(StatusAbandoned, "  no time  ", now)
	assert.Equal(t, StatusAbandoned, g.Status)
	require.NotNil(t, g.StatusReason)
	assert.Equal(t, "no time", *g.StatusReason)
	assert.Equal(t, now, g.UpdatedAt)

	g.SetStatus(StatusCompleted, "", now)
	assert.Nil(t, g.StatusReason)
}

func TestGoal_SetProgressClamps(t *testing.T) {
	g := sampleGoal()
	g.SetProgress(140, time.Now())
	assert.Equal(t, 100, g.ProgressPercentage)
	g.SetProgress(-3, time.Now())
	assert.Equal(t, 0, g.ProgressPercentage)
}

func TestSmartCriteria_Merge(t *testing.T) {
	got := SmartCriteria{Specific: "mine"}.Merge(SmartCriteria{Specific: "s", Measurable: "m"})
	assert.Equal(t, "mine", got.Specific)
	assert.Equal(t, "m", got.Measurable)
	assert.True(t, SmartCriteria{Relevant: "  "}.IsZero())
}

func TestTakeSnapshot_ActiveOnlyAndImmutable(t *testing.T) {
	active := sampleGoal()
	done := sampleGoal()
	done.ID = "g-2"
	done.Status = StatusCompleted
	goals := []Goal{active, done}

	snap := TakeSnapshot(goals)
	require.Len(t, snap, 1)
	assert.Equal(t, "g-1", snap[0].ID)

	// Later mutation of the live goals never reaches the snapshot.
	goals[0].ProgressPercentage = 90
	goals[0].Milestones[1].IsCompleted = true
	assert.Equal(t, 35, snap[0].ProgressPercentage)
	assert.False(t, snap[0].Milestones[1].IsCompleted)

	found, ok := snap.Find("g-1")
	require.True(t, ok)
	assert.Equal(t, "Run a marathon", found.Title)
	_, ok = snap.Find("missing")
	assert.False(t, ok)
}

func TestCheckIn_BaseName(t *testing.T) {
	ci := CheckIn{Date: time.Date(2024, 3, 31, 22, 0, 0, 0, time.UTC), Type: CheckInMonthly}
	assert.Equal(t, "2024-03-31-monthly", ci.BaseName())
	assert.False(t, ci.HasSnapshot())
}
