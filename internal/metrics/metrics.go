// Package metrics publishes the goal state as Prometheus gauges, written in
// the textfile format for node_exporter's textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/roach88/horizonte/internal/analytics"
	"github.com/roach88/horizonte/internal/atomicfile"
	"github.com/roach88/horizonte/internal/model"
)

// Input is everything the gauges are derived from.
type Input struct {
	Goals    []model.Goal
	CheckIns []model.CheckIn
	Report   analytics.Report
	Backups  []atomicfile.Backup
}

// Set is one registry of freshly computed gauges.
type Set struct {
	Registry *prometheus.Registry

	goals        *prometheus.GaugeVec
	goalProgress *prometheus.GaugeVec
	categoryAvg  *prometheus.GaugeVec
	checkins     prometheus.Gauge
	lastCheckIn  prometheus.Gauge
	streak       prometheus.Gauge
	velocity     prometheus.Gauge
	backups      *prometheus.GaugeVec
	backupBytes  *prometheus.GaugeVec
}

// Collect builds a registry holding the gauges for in.
func Collect(in Input) *Set {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	s := &Set{
		Registry: reg,
		goals: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "horizonte_goals",
			Help: "Goals by status.",
		}, []string{"status"}),
		goalProgress: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "horizonte_goal_progress_percent",
			Help: "Progress of each active goal.",
		}, []string{"goal_id", "category"}),
		categoryAvg: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "horizonte_category_progress_percent",
			Help: "Average progress per category in the latest check-in.",
		}, []string{"category"}),
		checkins: f.NewGauge(prometheus.GaugeOpts{
			Name: "horizonte_checkins",
			Help: "Recorded check-ins.",
		}),
		lastCheckIn: f.NewGauge(prometheus.GaugeOpts{
			Name: "horizonte_last_checkin_timestamp_seconds",
			Help: "Unix time of the most recent check-in, 0 if none.",
		}),
		streak: f.NewGauge(prometheus.GaugeOpts{
			Name: "horizonte_checkin_streak_months",
			Help: "Consecutive months with a check-in.",
		}),
		velocity: f.NewGauge(prometheus.GaugeOpts{
			Name: "horizonte_velocity_points",
			Help: "Average progress change between the last two check-ins.",
		}),
		backups: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "horizonte_backups",
			Help: "Retained backups per file.",
		}, []string{"file"}),
		backupBytes: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "horizonte_backup_bytes",
			Help: "Total size of retained backups per file.",
		}, []string{"file"}),
	}

	for _, st := range []model.Status{model.StatusActive, model.StatusCompleted, model.StatusAbandoned} {
		s.goals.WithLabelValues(string(st)).Set(0)
	}
	for _, g := range in.Goals {
		s.goals.WithLabelValues(string(g.Status)).Inc()
		if g.IsActive() {
			s.goalProgress.WithLabelValues(g.ID, string(g.Category)).Set(float64(g.ProgressPercentage))
		}
	}

	if cur := in.Report.Current; cur != nil {
		for c, avg := range cur.Categories {
			s.categoryAvg.WithLabelValues(string(c)).Set(avg)
		}
	}

	s.checkins.Set(float64(len(in.CheckIns)))
	var last time.Time
	for _, c := range in.CheckIns {
		if c.Date.After(last) {
			last = c.Date
		}
	}
	if !last.IsZero() {
		s.lastCheckIn.Set(float64(last.Unix()))
	}
	s.streak.Set(float64(in.Report.Streak))
	s.velocity.Set(in.Report.Velocity)

	for _, b := range in.Backups {
		s.backups.WithLabelValues(b.Base).Inc()
		s.backupBytes.WithLabelValues(b.Base).Add(float64(b.Size))
	}
	return s
}

// WriteTextfile writes the gauges to path in the Prometheus text format. The
// file is replaced atomically.
func (s *Set) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, s.Registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
