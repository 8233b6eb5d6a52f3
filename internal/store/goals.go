package store

import (
	"fmt"
	"log/slog"

	"github.com/roach88/horizonte/internal/atomicfile"
	"github.com/roach88/horizonte/internal/model"
)

// GoalRepository stores the goal collection in goals.json.
type GoalRepository struct {
	path   string
	files  *atomicfile.Store
	strict bool
	lock   bool
	logger *slog.Logger
}

// Path returns the goals file location.
func (r *GoalRepository) Path() string { return r.path }

// Load returns every stored goal in file order.
func (r *GoalRepository) Load() ([]model.Goal, error) {
	var goals []model.Goal
	found, err := readLenient(r.path, &goals, r.logger)
	if err != nil {
		return nil, err
	}
	if !found || goals == nil {
		return []model.Goal{}, nil
	}
	return goals, nil
}

// Save replaces the whole collection.
func (r *GoalRepository) Save(goals []model.Goal) error {
	if goals == nil {
		goals = []model.Goal{}
	}
	data, err := encodeJSON(goals)
	if err != nil {
		return fmt.Errorf("encode goals: %w", err)
	}
	if err := r.files.Write(r.path, data, true); err != nil {
		return fmt.Errorf("save goals: %w", err)
	}
	return nil
}

// Get returns the goal with id.
func (r *GoalRepository) Get(id string) (model.Goal, error) {
	goals, err := r.Load()
	if err != nil {
		return model.Goal{}, err
	}
	for _, g := range goals {
		if g.ID == id {
			return g, nil
		}
	}
	return model.Goal{}, fmt.Errorf("%w: %s", ErrGoalNotFound, id)
}

// Add appends goal to the collection.
func (r *GoalRepository) Add(goal model.Goal) error {
	if err := goal.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidGoal, err)
	}
	return r.modify(func(goals []model.Goal) ([]model.Goal, error) {
		return append(goals, goal), nil
	})
}

// Update replaces the first stored goal whose id matches goal.ID.
//
// An unknown id saves the collection unchanged, unless the repository was
// opened WithStrictUpdates, in which case ErrGoalNotFound is returned and
// nothing is written.
func (r *GoalRepository) Update(goal model.Goal) error {
	if err := goal.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidGoal, err)
	}
	return r.modify(func(goals []model.Goal) ([]model.Goal, error) {
		for i := range goals {
			if goals[i].ID == goal.ID {
				goals[i] = goal
				return goals, nil
			}
		}
		if r.strict {
			return nil, fmt.Errorf("%w: %s", ErrGoalNotFound, goal.ID)
		}
		r.logger.Debug("update of unknown goal ignored", slog.String("goal_id", goal.ID))
		return goals, nil
	})
}

// UpdateMany applies every goal in one read-modify-write. Unknown ids follow
// the same rules as Update.
func (r *GoalRepository) UpdateMany(updated []model.Goal) error {
	for _, g := range updated {
		if err := g.Validate(); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidGoal, g.ID, err)
		}
	}
	return r.modify(func(goals []model.Goal) ([]model.Goal, error) {
		index := make(map[string]int, len(goals))
		for i, g := range goals {
			if _, dup := index[g.ID]; !dup {
				index[g.ID] = i
			}
		}
		for _, g := range updated {
			i, ok := index[g.ID]
			if !ok {
				if r.strict {
					return nil, fmt.Errorf("%w: %s", ErrGoalNotFound, g.ID)
				}
				continue
			}
			goals[i] = g
		}
		return goals, nil
	})
}

// Reset empties the collection. The previous file is kept as a backup.
func (r *GoalRepository) Reset() error {
	return r.Save([]model.Goal{})
}

// modify runs a load-mutate-save cycle, under the file lock when enabled.
func (r *GoalRepository) modify(fn func([]model.Goal) ([]model.Goal, error)) error {
	if r.lock {
		unlock, err := r.files.Lock(r.path)
		if err != nil {
			return fmt.Errorf("lock goals: %w", err)
		}
		defer unlock()
	}

	goals, err := r.Load()
	if err != nil {
		return err
	}
	goals, err = fn(goals)
	if err != nil {
		return err
	}
	return r.Save(goals)
}
