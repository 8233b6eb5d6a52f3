package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/horizonte/internal/analytics"
	"github.com/roach88/horizonte/internal/export"
	"github.com/roach88/horizonte/internal/metrics"
)

// NewExportCommand creates the export command.
func NewExportCommand(opts *RootOptions) *cobra.Command {
	var out, goalRef string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Rebuild a SQLite database from the data files",
		Long: "Rebuild a SQLite database holding goals, milestones, check-in snapshots and " +
			"monthly averages, for ad-hoc SQL. The JSON files stay the source of truth.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			if out == "" {
				out = filepath.Join(a.home, "horizonte.db")
			}
			st := a.tracker.Store()
			goals, err := st.Goals.Load()
			if err != nil {
				return a.out.Fail(err)
			}
			checkins, err := st.CheckIns.LoadAll()
			if err != nil {
				return a.out.Fail(err)
			}

			db, err := export.Open(out)
			if err != nil {
				return a.out.Fail(err)
			}
			defer db.Close()

			counts, err := db.Export(cmd.Context(), export.Source{
				Root:     a.home,
				Goals:    goals,
				CheckIns: checkins,
				Periods:  analytics.ComputeHistory(checkins),
			}, a.clock.Now())
			if err != nil {
				return a.out.Fail(err)
			}
			a.logger.Info("export written", "path", out, "goals", counts.Goals, "checkins", counts.CheckIns)

			exportedAt, _, err := db.Meta(cmd.Context(), "exported_at")
			if err != nil {
				return a.out.Fail(err)
			}
			data := map[string]any{"path": out, "counts": counts, "exported_at": exportedAt}

			var b strings.Builder
			fmt.Fprintf(&b, "Exported %d goal(s), %d milestone(s), %d check-in(s), %d period(s) to %s\n",
				counts.Goals, counts.Milestones, counts.CheckIns, counts.Periods, out)

			if goalRef != "" {
				g, err := a.tracker.ResolveGoal(goalRef)
				if err != nil {
					return a.out.Fail(err)
				}
				rows, err := db.Progress(cmd.Context(), g.ID)
				if err != nil {
					return a.out.Fail(err)
				}
				if rows == nil {
					rows = []export.ProgressRow{}
				}
				data["goal"] = g.ID
				data["progress"] = rows

				fmt.Fprintf(&b, "\nRecorded progress of %q:\n", g.Title)
				if len(rows) == 0 {
					b.WriteString("  none\n")
				}
				for _, r := range rows {
					fmt.Fprintf(&b, "  %s  %3d%%  %s\n", r.Date, r.Progress, r.Status)
				}
			}
			return a.emit(b.String(), data)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "database path (default <home>/horizonte.db)")
	cmd.Flags().StringVarP(&goalRef, "goal", "g", "", "also list the recorded progress of this goal (number or id)")
	return cmd
}

// NewMetricsCommand creates the metrics command.
func NewMetricsCommand(opts *RootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Write Prometheus gauges for node_exporter's textfile collector",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			if out == "" {
				out = filepath.Join(a.home, "horizonte.prom")
			}
			st := a.tracker.Store()
			goals, err := st.Goals.Load()
			if err != nil {
				return a.out.Fail(err)
			}
			checkins, err := st.CheckIns.LoadAll()
			if err != nil {
				return a.out.Fail(err)
			}
			backups, err := a.tracker.Backups()
			if err != nil {
				return a.out.Fail(err)
			}

			set := metrics.Collect(metrics.Input{
				Goals:    goals,
				CheckIns: checkins,
				Report:   analytics.Summarize(checkins, a.clock.Now()),
				Backups:  backups,
			})
			if err := set.WriteTextfile(out); err != nil {
				return a.out.Fail(err)
			}
			return a.emit(fmt.Sprintf("Wrote %s\n", out), map[string]string{"path": out})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "textfile path (default <home>/horizonte.prom)")
	return cmd
}
