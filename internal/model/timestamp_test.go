package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2024-01-01T10:00:00Z", time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-01-01T10:00:00.25Z", time.Date(2024, 1, 1, 10, 0, 0, 250000000, time.UTC)},
		{"2024-01-01T10:00:00", time.Date(2024, 1, 1, 10, 0, 0, 0, time.Local)},
		{"2024-01-01T10:00:00.123456", time.Date(2024, 1, 1, 10, 0, 0, 123456000, time.Local)},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseTimestamp(tc.in)
			require.NoError(t, err)
			assert.True(t, tc.want.Equal(got), "got %v", got)
		})
	}

	for _, bad := range []string{"", "2024-01-01", "01/01/2024 10:00"} {
		_, err := ParseTimestamp(bad)
		assert.Error(t, err, bad)
	}
}

func TestGoal_UnmarshalZonelessTimestamps(t *testing.T) {
	var g Goal
	require.NoError(t, json.Unmarshal([]byte(`{"id":"g","title":"t","horizon":"short_term",
		"created_at":"2024-01-01T10:00:00.5","updated_at":"2024-01-02T10:00:00Z",
		"milestones":[{"id":"m","title":"x","is_completed":true,"completed_at":"2024-01-03T07:00:00"}]}`), &g))

	assert.Equal(t, CategoryLife, g.Category)
	assert.Equal(t, StatusActive, g.Status)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 0, 0, 500000000, time.Local), g.CreatedAt)
	assert.True(t, time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC).Equal(g.UpdatedAt))
	require.Len(t, g.Milestones, 1)
	require.NotNil(t, g.Milestones[0].CompletedAt)
	assert.Equal(t, time.Date(2024, 1, 3, 7, 0, 0, 0, time.Local), *g.Milestones[0].CompletedAt)
}

func TestGoal_UnmarshalRejectsBadTimestamp(t *testing.T) {
	var g Goal
	err := json.Unmarshal([]byte(`{"id":"g","title":"t","horizon":"short_term","created_at":"yesterday"}`), &g)
	assert.Error(t, err)
}

func TestConfig_UnmarshalNullLastRun(t *testing.T) {
	var c Config
	require.NoError(t, json.Unmarshal([]byte(`{"user_name":null,"created_at":"2024-01-01T10:00:00","last_run_at":null}`), &c))
	assert.Nil(t, c.UserName)
	assert.Nil(t, c.LastRunAt)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 0, 0, 0, time.Local), c.CreatedAt)
}
