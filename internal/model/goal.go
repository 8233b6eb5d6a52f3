package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SmartCriteria describes what success means for a goal.
type SmartCriteria struct {
	Specific   string `json:"specific"`
	Measurable string `json:"measurable"`
	Achievable string `json:"achievable"`
	Relevant   string `json:"relevant"`
	TimeBound  string `json:"time_bound"`
}

// IsZero reports whether every field is blank.
func (s SmartCriteria) IsZero() bool {
	return strings.TrimSpace(s.Specific) == "" &&
		strings.TrimSpace(s.Measurable) == "" &&
		strings.TrimSpace(s.Achievable) == "" &&
		strings.TrimSpace(s.Relevant) == "" &&
		strings.TrimSpace(s.TimeBound) == ""
}

// Merge returns s with every blank field taken from fallback.
func (s SmartCriteria) Merge(fallback SmartCriteria) SmartCriteria {
	pick := func(v, alt string) string {
		if strings.TrimSpace(v) == "" {
			return alt
		}
		return v
	}
	return SmartCriteria{
		Specific:   pick(s.Specific, fallback.Specific),
		Measurable: pick(s.Measurable, fallback.Measurable),
		Achievable: pick(s.Achievable, fallback.Achievable),
		Relevant:   pick(s.Relevant, fallback.Relevant),
		TimeBound:  pick(s.TimeBound, fallback.TimeBound),
	}
}

// Milestone is one step of a goal breakdown.
type Milestone struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at"`
}

func (m *Milestone) UnmarshalJSON(b []byte) error {
	type plain Milestone
	var p plain
	aux := struct {
		*plain
		CompletedAt *wireTime `json:"completed_at"`
	}{plain: &p}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	p.CompletedAt = aux.CompletedAt.ptr()
	*m = Milestone(p)
	return nil
}

// Goal is a user-defined objective. Goals are owned by the goals collection and
// replaced whole on update, matched by ID.
type Goal struct {
	ID                 string        `json:"id"`
	Title              string        `json:"title"`
	Description        string        `json:"description"`
	Category           Category      `json:"category"`
	Horizon            Horizon       `json:"horizon"`
	SmartCriteria      SmartCriteria `json:"smart_criteria"`
	Milestones         []Milestone   `json:"milestones"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
	Status             Status        `json:"status"`
	StatusReason       *string       `json:"status_reason"`
	ProgressPercentage int           `json:"progress_percentage"`
}

// UnmarshalJSON applies the record defaults (category life, status active)
// for fields absent from older files and accepts zone-less timestamps.
func (g *Goal) UnmarshalJSON(b []byte) error {
	type plain Goal
	p := plain{Category: CategoryLife, Status: StatusActive}
	aux := struct {
		*plain
		CreatedAt wireTime `json:"created_at"`
		UpdatedAt wireTime `json:"updated_at"`
	}{plain: &p}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	p.CreatedAt, p.UpdatedAt = aux.CreatedAt.Time, aux.UpdatedAt.Time
	*g = Goal(p)
	return nil
}

// Validate checks the invariants every persisted goal must hold.
func (g Goal) Validate() error {
	var errs []error
	if strings.TrimSpace(g.ID) == "" {
		errs = append(errs, errors.New("id is empty"))
	}
	if strings.TrimSpace(g.Title) == "" {
		errs = append(errs, errors.New("title is empty"))
	}
	if !g.Category.Valid() {
		errs = append(errs, fmt.Errorf("%w: category %q", ErrUnknownValue, string(g.Category)))
	}
	if !g.Horizon.Valid() {
		errs = append(errs, fmt.Errorf("%w: horizon %q", ErrUnknownValue, string(g.Horizon)))
	}
	if !g.Status.Valid() {
		errs = append(errs, fmt.Errorf("%w: status %q", ErrUnknownValue, string(g.Status)))
	}
	if g.ProgressPercentage < 0 || g.ProgressPercentage > 100 {
		errs = append(errs, fmt.Errorf("progress %d outside 0..100", g.ProgressPercentage))
	}
	return errors.Join(errs...)
}

// IsActive reports whether the goal is still being pursued.
func (g Goal) IsActive() bool { return g.Status == StatusActive }

// Clone returns a deep copy sharing no memory with g.
func (g Goal) Clone() Goal {
	c := g
	if g.Milestones != nil {
		c.Milestones = make([]Milestone, len(g.Milestones))
		for i, m := range g.Milestones {
			if m.CompletedAt != nil {
				at := *m.CompletedAt
				m.CompletedAt = &at
			}
			c.Milestones[i] = m
		}
	}
	if g.StatusReason != nil {
		reason := *g.StatusReason
		c.StatusReason = &reason
	}
	return c
}

// SetStatus moves the goal to status, recording an optional reason.
func (g *Goal) SetStatus(status Status, reason string, now time.Time) {
	g.Status = status
	if r := strings.TrimSpace(reason); r != "" {
		g.StatusReason = &r
	} else {
		g.StatusReason = nil
	}
	g.UpdatedAt = now
}

// SetProgress records a new progress percentage, clamped to 0..100.
func (g *Goal) SetProgress(percent int, now time.Time) {
	g.ProgressPercentage = ClampPercent(percent)
	g.UpdatedAt = now
}

// CompletedMilestones counts milestones marked done.
func (g Goal) CompletedMilestones() int {
	n := 0
	for _, m := range g.Milestones {
		if m.IsCompleted {
			n++
		}
	}
	return n
}

// ClampPercent bounds p to the 0..100 progress range.
func ClampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
