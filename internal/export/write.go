package export

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/roach88/horizonte/internal/analytics"
	"github.com/roach88/horizonte/internal/model"
)

// Source is one consistent read of the data root.
type Source struct {
	Root     string
	Goals    []model.Goal
	CheckIns []model.CheckIn
	Periods  []analytics.Period
}

// Counts is the number of rows in each exported table.
type Counts struct {
	Goals      int `json:"goals"`
	Milestones int `json:"milestones"`
	CheckIns   int `json:"checkins"`
	Snapshots  int `json:"snapshots"`
	Periods    int `json:"periods"`
}

// Export replaces every table with src. Goals and check-ins that repeat an
// id keep their first occurrence.
func (s *Store) Export(ctx context.Context, src Source, at time.Time) (Counts, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Counts{}, fmt.Errorf("export: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, table := range []string{"period_categories", "periods", "snapshots", "checkins", "milestones", "goals", "export_meta"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return Counts{}, fmt.Errorf("export: clear %s: %w", table, err)
		}
	}

	if err := writeGoals(ctx, tx, src.Goals); err != nil {
		return Counts{}, err
	}
	if err := writeCheckIns(ctx, tx, src.CheckIns); err != nil {
		return Counts{}, err
	}
	if err := writePeriods(ctx, tx, src.Periods); err != nil {
		return Counts{}, err
	}

	meta := map[string]string{
		"exported_at": formatTime(at),
		"source_root": src.Root,
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, `INSERT INTO export_meta (key, value) VALUES (?, ?)`, k, v); err != nil {
			return Counts{}, fmt.Errorf("export: meta: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Counts{}, fmt.Errorf("export: commit: %w", err)
	}
	return s.Counts(ctx)
}

func writeGoals(ctx context.Context, tx *sql.Tx, goals []model.Goal) error {
	for _, g := range goals {
		smart, err := json.Marshal(g.SmartCriteria)
		if err != nil {
			return fmt.Errorf("export goal %s: %w", g.ID, err)
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO goals
			(id, title, description, category, horizon, status, status_reason, progress, smart, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO NOTHING
		`,
			g.ID,
			g.Title,
			g.Description,
			string(g.Category),
			string(g.Horizon),
			string(g.Status),
			g.StatusReason,
			model.ClampPercent(g.ProgressPercentage),
			string(smart),
			formatTime(g.CreatedAt),
			formatTime(g.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("export goal %s: %w", g.ID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			continue
		}

		for i, m := range g.Milestones {
			var completed *string
			if m.CompletedAt != nil {
				v := formatTime(*m.CompletedAt)
				completed = &v
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO milestones (goal_id, position, id, title, is_completed, completed_at)
				VALUES (?, ?, ?, ?, ?, ?)
			`, g.ID, i+1, m.ID, m.Title, m.IsCompleted, completed)
			if err != nil {
				return fmt.Errorf("export milestone %s/%s: %w", g.ID, m.ID, err)
			}
		}
	}
	return nil
}

func writeCheckIns(ctx context.Context, tx *sql.Tx, checkins []model.CheckIn) error {
	for _, c := range checkins {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO checkins (id, date, type, file_path, goal_count)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO NOTHING
		`, c.ID, formatTime(c.Date), string(c.Type), c.FilePath, len(c.Snapshot))
		if err != nil {
			return fmt.Errorf("export check-in %s: %w", c.ID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			continue
		}

		for _, g := range c.Snapshot {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO snapshots (checkin_id, goal_id, title, category, status, progress)
				VALUES (?, ?, ?, ?, ?, ?)
				ON CONFLICT DO NOTHING
			`, c.ID, g.ID, g.Title, string(g.Category), string(g.Status), g.ProgressPercentage)
			if err != nil {
				return fmt.Errorf("export snapshot %s/%s: %w", c.ID, g.ID, err)
			}
		}
	}
	return nil
}

func writePeriods(ctx context.Context, tx *sql.Tx, periods []analytics.Period) error {
	for i, p := range periods {
		pos := i + 1
		_, err := tx.ExecContext(ctx, `
			INSERT INTO periods (position, label, date, goal_count, average)
			VALUES (?, ?, ?, ?, ?)
		`, pos, p.Label, formatTime(p.Date), p.GoalCount, p.Average)
		if err != nil {
			return fmt.Errorf("export period %s: %w", p.Label, err)
		}

		cats := make([]model.Category, 0, len(p.Categories))
		for c := range p.Categories {
			cats = append(cats, c)
		}
		sort.Slice(cats, func(a, b int) bool { return cats[a] < cats[b] })
		for _, c := range cats {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO period_categories (position, category, average)
				VALUES (?, ?, ?)
			`, pos, string(c), p.Categories[c])
			if err != nil {
				return fmt.Errorf("export period %s/%s: %w", p.Label, c, err)
			}
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
