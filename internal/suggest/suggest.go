// Package suggest talks to a natural-language suggestion service and turns its
// answers into goal data. Every call may fail; callers fall back to manual
// input, so nothing here is required for the tracker to work.
package suggest

import (
	"context"
	"errors"

	"github.com/roach88/horizonte/internal/model"
)

// ErrUnavailable is returned when suggestions are disabled or the service
// could not produce a usable answer.
var ErrUnavailable = errors.New("suggestion service unavailable")

// GoalContext is what the service sees of a goal being created or refined.
type GoalContext struct {
	Title       string
	Description string
	Category    model.Category
	Horizon     model.Horizon
	Smart       model.SmartCriteria
}

// ContextOf builds the context for an existing goal.
func ContextOf(g model.Goal) GoalContext {
	return GoalContext{
		Title:       g.Title,
		Description: g.Description,
		Category:    g.Category,
		Horizon:     g.Horizon,
		Smart:       g.SmartCriteria,
	}
}

// Update is a resolved progress change for one goal.
type Update struct {
	GoalID     string `json:"goal_id"`
	NewPercent int    `json:"new_percent"`
	Comment    string `json:"comment"`
	Reasoning  string `json:"reasoning,omitempty"`
}

// ReviewEntry is one goal's change, as fed to AnalyzeCheckIn.
type ReviewEntry struct {
	Title      string
	OldPercent int
	NewPercent int
	Comment    string
}

// Service is the suggestion contract used by the tracker.
type Service interface {
	SuggestSMART(ctx context.Context, goal GoalContext) (model.SmartCriteria, error)
	SuggestCategory(ctx context.Context, goal GoalContext) (model.Category, error)
	SuggestMilestones(ctx context.Context, goal GoalContext) ([]string, error)
	ProposeUpdates(ctx context.Context, text string, goals []model.Goal) ([]Update, error)
	CheckInIntro(ctx context.Context, goals []model.Goal, period string) (string, error)
	AnalyzeCheckIn(ctx context.Context, entries []ReviewEntry, reflection, period string) (string, error)
}

// Disabled answers every request with ErrUnavailable.
type Disabled struct{}

var _ Service = Disabled{}

func (Disabled) SuggestSMART(context.Context, GoalContext) (model.SmartCriteria, error) {
	return model.SmartCriteria{}, ErrUnavailable
}

func (Disabled) SuggestCategory(context.Context, GoalContext) (model.Category, error) {
	return "", ErrUnavailable
}

func (Disabled) SuggestMilestones(context.Context, GoalContext) ([]string, error) {
	return nil, ErrUnavailable
}

func (Disabled) ProposeUpdates(context.Context, string, []model.Goal) ([]Update, error) {
	return nil, ErrUnavailable
}

func (Disabled) CheckInIntro(context.Context, []model.Goal, string) (string, error) {
	return "", ErrUnavailable
}

func (Disabled) AnalyzeCheckIn(context.Context, []ReviewEntry, string, string) (string, error) {
	return "", ErrUnavailable
}
