package export

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Counts returns the row count of each exported table.
func (s *Store) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	targets := []struct {
		table string
		dst   *int
	}{
		{"goals", &c.Goals},
		{"milestones", &c.Milestones},
		{"checkins", &c.CheckIns},
		{"snapshots", &c.Snapshots},
		{"periods", &c.Periods},
	}
	for _, t := range targets {
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+t.table).Scan(t.dst); err != nil {
			return Counts{}, fmt.Errorf("count %s: %w", t.table, err)
		}
	}
	return c, nil
}

// ProgressRow is one recorded progress value of a goal.
type ProgressRow struct {
	CheckInID string `json:"checkin_id"`
	Date      string `json:"date"`
	Progress  int    `json:"progress"`
	Status    string `json:"status"`
}

// Progress returns the recorded progress of goalID ordered by check-in date,
// ties broken by check-in id.
func (s *Store) Progress(ctx context.Context, goalID string) ([]ProgressRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.date, sn.progress, sn.status
		FROM snapshots sn
		JOIN checkins c ON c.id = sn.checkin_id
		WHERE sn.goal_id = ?
		ORDER BY c.date ASC, c.id COLLATE BINARY ASC
	`, goalID)
	if err != nil {
		return nil, fmt.Errorf("query progress: %w", err)
	}
	defer rows.Close()

	var out []ProgressRow
	for rows.Next() {
		var r ProgressRow
		if err := rows.Scan(&r.CheckInID, &r.Date, &r.Progress, &r.Status); err != nil {
			return nil, fmt.Errorf("scan progress: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Meta returns an export_meta value; ok is false when the key is absent.
func (s *Store) Meta(ctx context.Context, key string) (value string, ok bool, err error) {
	err = s.db.QueryRowContext(ctx, `SELECT value FROM export_meta WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query meta: %w", err)
	}
	return value, true, nil
}
