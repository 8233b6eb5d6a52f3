package model

import (
	"encoding/json"
	"time"
)

// DateLayout formats check-in dates in file names.
const DateLayout = "2006-01-02"

// Snapshot is the point-in-time state of every active goal at check-in time.
// It is history: once written it is never refreshed from the live goals.
type Snapshot []Goal

// TakeSnapshot deep-copies the active goals, preserving their order.
func TakeSnapshot(goals []Goal) Snapshot {
	snap := make(Snapshot, 0, len(goals))
	for _, g := range goals {
		if g.IsActive() {
			snap = append(snap, g.Clone())
		}
	}
	return snap
}

// Clone returns a deep copy of s. A nil snapshot stays nil.
func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return nil
	}
	c := make(Snapshot, len(s))
	for i, g := range s {
		c[i] = g.Clone()
	}
	return c
}

// Find returns the snapshot record for goalID.
func (s Snapshot) Find(goalID string) (Goal, bool) {
	for _, g := range s {
		if g.ID == goalID {
			return g, true
		}
	}
	return Goal{}, false
}

// CheckIn is one periodic review. The narrative lives in the markdown file at
// FilePath; the structured record (this type) lives beside it as JSON.
type CheckIn struct {
	ID           string      `json:"id"`
	Date         time.Time   `json:"date"`
	Type         CheckInType `json:"type"`
	GoalsCovered []string    `json:"goals_covered"`
	FilePath     string      `json:"file_path"`
	Snapshot     Snapshot    `json:"snapshot"`
}

func (c *CheckIn) UnmarshalJSON(b []byte) error {
	type plain CheckIn
	var p plain
	aux := struct {
		*plain
		Date wireTime `json:"date"`
	}{plain: &p}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	p.Date = aux.Date.Time
	*c = CheckIn(p)
	return nil
}

// BaseName is the file name shared by the narrative and structured documents,
// e.g. "2024-03-31-monthly".
func (c CheckIn) BaseName() string {
	return c.Date.Format(DateLayout) + "-" + c.Type.String()
}

// HasSnapshot reports whether the check-in carries any goal state.
func (c CheckIn) HasSnapshot() bool { return len(c.Snapshot) > 0 }

// Config is the singleton user configuration stored in config.json.
type Config struct {
	UserName  *string    `json:"user_name"`
	CreatedAt time.Time  `json:"created_at"`
	LastRunAt *time.Time `json:"last_run_at"`
}

func (c *Config) UnmarshalJSON(b []byte) error {
	type plain Config
	var p plain
	aux := struct {
		*plain
		CreatedAt wireTime  `json:"created_at"`
		LastRunAt *wireTime `json:"last_run_at"`
	}{plain: &p}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	p.CreatedAt, p.LastRunAt = aux.CreatedAt.Time, aux.LastRunAt.ptr()
	*c = Config(p)
	return nil
}

// DefaultConfig is the config used when none has been saved yet.
func DefaultConfig(now time.Time) Config {
	return Config{CreatedAt: now}
}
