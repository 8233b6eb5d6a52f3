package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/horizonte/internal/analytics"
	"github.com/roach88/horizonte/internal/atomicfile"
	"github.com/roach88/horizonte/internal/model"
	fixtures "github.com/roach88/horizonte/internal/testutil"
)

func sampleInput() Input {
	run := fixtures.Goal("g1", "Run", model.CategoryHealth, 40)
	save := fixtures.Goal("g2", "Save", model.CategoryFinancial, 20)
	done := fixtures.Goal("g3", "Read", model.CategoryLife, 100)
	done.Status = model.StatusCompleted

	feb := fixtures.CheckIn("c1", 2024, time.February, run, save)
	run.ProgressPercentage = 60
	mar := fixtures.CheckIn("c2", 2024, time.March, run, save)
	checkins := []model.CheckIn{feb, mar}

	return Input{
		Goals:    []model.Goal{run, save, done},
		CheckIns: checkins,
		Report:   analytics.Summarize(checkins, time.Date(2024, 3, 30, 0, 0, 0, 0, time.UTC)),
		Backups: []atomicfile.Backup{
			{Base: "goals.json", Size: 100},
			{Base: "goals.json", Size: 50},
			{Base: "config.json", Size: 10},
		},
	}
}

func TestCollect(t *testing.T) {
	in := sampleInput()
	s := Collect(in)

	assert.Equal(t, 2.0, testutil.ToFloat64(s.goals.WithLabelValues("active")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.goals.WithLabelValues("completed")))
	assert.Equal(t, 0.0, testutil.ToFloat64(s.goals.WithLabelValues("abandoned")))
	assert.Equal(t, 60.0, testutil.ToFloat64(s.goalProgress.WithLabelValues("g1", "health")))
	assert.Equal(t, 2, testutil.CollectAndCount(s.goalProgress), "closed goals have no progress gauge")

	assert.Equal(t, 60.0, testutil.ToFloat64(s.categoryAvg.WithLabelValues("health")))
	assert.Equal(t, 2.0, testutil.ToFloat64(s.checkins))
	assert.Equal(t, float64(in.CheckIns[1].Date.Unix()), testutil.ToFloat64(s.lastCheckIn))
	assert.Equal(t, 2.0, testutil.ToFloat64(s.streak))
	assert.Equal(t, 10.0, testutil.ToFloat64(s.velocity))

	assert.Equal(t, 2.0, testutil.ToFloat64(s.backups.WithLabelValues("goals.json")))
	assert.Equal(t, 150.0, testutil.ToFloat64(s.backupBytes.WithLabelValues("goals.json")))
}

func TestCollect_Empty(t *testing.T) {
	s := Collect(Input{})
	assert.Equal(t, 0.0, testutil.ToFloat64(s.checkins))
	assert.Equal(t, 0.0, testutil.ToFloat64(s.lastCheckIn))
	assert.Equal(t, 3, testutil.CollectAndCount(s.goals))
}

func TestWriteTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "horizonte.prom")
	require.NoError(t, Collect(sampleInput()).WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "# TYPE horizonte_goals gauge")
	assert.Contains(t, text, `horizonte_goals{status="active"} 2`)
	assert.Contains(t, text, `horizonte_goal_progress_percent{category="financial",goal_id="g2"} 20`)
	assert.Contains(t, text, "horizonte_checkin_streak_months 2")
}
