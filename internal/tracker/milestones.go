package tracker

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/horizonte/internal/model"
	"github.com/roach88/horizonte/internal/store"
	"github.com/roach88/horizonte/internal/suggest"
)

// AddMilestones appends milestones with the given titles to the goal ref.
func (t *Tracker) AddMilestones(ref string, titles ...string) (model.Goal, error) {
	g, err := t.ResolveGoal(ref)
	if err != nil {
		return model.Goal{}, err
	}
	added := 0
	for _, title := range titles {
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}
		g.Milestones = append(g.Milestones, model.Milestone{ID: t.ids.Generate(), Title: title})
		added++
	}
	if added == 0 {
		return model.Goal{}, fmt.Errorf("%w: milestone title is empty", store.ErrInvalidGoal)
	}
	g.UpdatedAt = t.clock.Now()
	if err := t.store.Goals.Update(g); err != nil {
		return model.Goal{}, err
	}
	return g, nil
}

// SuggestMilestones asks the suggestion service for a breakdown of the goal
// ref. With apply set, the suggestions are appended to the goal.
func (t *Tracker) SuggestMilestones(ctx context.Context, ref string, apply bool) ([]string, model.Goal, error) {
	g, err := t.ResolveGoal(ref)
	if err != nil {
		return nil, model.Goal{}, err
	}
	titles, err := t.suggest.SuggestMilestones(ctx, suggest.ContextOf(g))
	if err != nil {
		return nil, g, err
	}
	if !apply {
		return titles, g, nil
	}
	g, err = t.AddMilestones(g.ID, titles...)
	if err != nil {
		return nil, model.Goal{}, err
	}
	return titles, g, nil
}

// CompleteMilestone marks a milestone of goal ref done. The milestone is
// named by 1-based position or by id.
func (t *Tracker) CompleteMilestone(ref, milestone string) (model.Goal, error) {
	g, err := t.ResolveGoal(ref)
	if err != nil {
		return model.Goal{}, err
	}
	idx := -1
	if n, err := strconv.Atoi(milestone); err == nil && n >= 1 && n <= len(g.Milestones) {
		idx = n - 1
	} else {
		for i, m := range g.Milestones {
			if m.ID == milestone {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		return model.Goal{}, fmt.Errorf("%w: %q on goal %q", ErrMilestoneNotFound, milestone, g.Title)
	}

	now := t.clock.Now()
	m := &g.Milestones[idx]
	if !m.IsCompleted {
		m.IsCompleted = true
		m.CompletedAt = &now
	}
	g.UpdatedAt = now
	if err := t.store.Goals.Update(g); err != nil {
		return model.Goal{}, err
	}
	return g, nil
}
