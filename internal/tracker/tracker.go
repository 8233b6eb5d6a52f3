package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/roach88/horizonte/internal/analytics"
	"github.com/roach88/horizonte/internal/clock"
	"github.com/roach88/horizonte/internal/config"
	"github.com/roach88/horizonte/internal/model"
	"github.com/roach88/horizonte/internal/store"
	"github.com/roach88/horizonte/internal/suggest"
)

var (
	// ErrNoGoals is returned when a workflow needs goals and none exist.
	ErrNoGoals = errors.New("no goals saved yet")

	// ErrNoActiveGoals is returned by CheckIn when every goal is closed.
	ErrNoActiveGoals = errors.New("no active goals to check in")

	// ErrAmbiguousRef is returned when a goal reference matches several goals.
	ErrAmbiguousRef = errors.New("ambiguous reference")

	// ErrMilestoneNotFound is returned when a milestone reference matches
	// nothing on its goal.
	ErrMilestoneNotFound = errors.New("milestone not found")

	// ErrUnknownBackup is returned when a backup's source file is not part
	// of the data root.
	ErrUnknownBackup = errors.New("unknown backup")
)

// Tracker runs the goal workflows.
type Tracker struct {
	store   *store.Store
	suggest suggest.Service
	clock   clock.Clock
	ids     model.IDGenerator
	logger  *slog.Logger
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithSuggestions sets the suggestion service. The default is suggest.Disabled.
func WithSuggestions(s suggest.Service) Option { return func(t *Tracker) { t.suggest = s } }

// WithClock sets the clock used for timestamps.
func WithClock(c clock.Clock) Option { return func(t *Tracker) { t.clock = c } }

// WithIDs sets the id generator.
func WithIDs(g model.IDGenerator) Option { return func(t *Tracker) { t.ids = g } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(t *Tracker) { t.logger = l } }

// New creates a Tracker over st.
func New(st *store.Store, opts ...Option) *Tracker {
	t := &Tracker{
		store:   st,
		suggest: suggest.Disabled{},
		clock:   clock.System{},
		ids:     model.UUIDv7Generator{},
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Store returns the underlying repositories.
func (t *Tracker) Store() *store.Store { return t.store }

// InitResult reports what Init did.
type InitResult struct {
	Created       bool `json:"created"`
	Reset         bool `json:"reset"`
	GoalsKept     int  `json:"goals_kept"`
	SettingsAdded bool `json:"settings_added"`
}

// Init prepares the data root. It saves the config on first run, records
// userName when given, and writes a settings template if none exists. With
// reset, existing goals are cleared (a backup is kept).
func (t *Tracker) Init(userName string, reset bool) (InitResult, error) {
	var res InitResult

	if err := os.MkdirAll(t.store.Layout.CheckInsDir(), 0o755); err != nil {
		return res, fmt.Errorf("create data root: %w", err)
	}

	exists, err := t.store.Config.Exists()
	if err != nil {
		return res, err
	}
	cfg, err := t.store.Config.Load()
	if err != nil {
		return res, err
	}
	if name := strings.TrimSpace(userName); name != "" {
		cfg.UserName = &name
	}
	if !exists || userName != "" {
		if err := t.store.Config.Save(cfg); err != nil {
			return res, err
		}
	}
	res.Created = !exists

	settings := t.store.Layout.SettingsPath()
	if _, err := os.Stat(settings); errors.Is(err, os.ErrNotExist) {
		if err := t.store.Files.Write(settings, []byte(config.Template), false); err != nil {
			return res, fmt.Errorf("write settings template: %w", err)
		}
		res.SettingsAdded = true
	}

	goals, err := t.store.Goals.Load()
	if err != nil {
		return res, err
	}
	if reset && len(goals) > 0 {
		if err := t.store.Goals.Reset(); err != nil {
			return res, err
		}
		res.Reset = true
		return res, nil
	}
	res.GoalsKept = len(goals)
	return res, nil
}

// NewGoal describes a goal to create. A nil Category asks the suggestion
// service and falls back to life. Blank SMART fields are filled from a
// suggestion when one is available.
type NewGoal struct {
	Title       string
	Description string
	Category    *model.Category
	Horizon     model.Horizon
	Smart       model.SmartCriteria
	Progress    int
}

// AddGoal creates and stores a goal.
func (t *Tracker) AddGoal(ctx context.Context, in NewGoal) (model.Goal, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return model.Goal{}, fmt.Errorf("%w: title is empty", store.ErrInvalidGoal)
	}
	if !in.Horizon.Valid() {
		return model.Goal{}, fmt.Errorf("%w: horizon %q", store.ErrInvalidGoal, string(in.Horizon))
	}

	gc := suggest.GoalContext{Title: title, Description: in.Description, Horizon: in.Horizon, Smart: in.Smart}

	category := model.CategoryLife
	if in.Category != nil {
		category = *in.Category
	} else if suggested, err := t.suggest.SuggestCategory(ctx, gc); err == nil {
		category = suggested
	} else {
		t.logSuggestionFailure("category", err)
	}
	gc.Category = category

	smart := in.Smart
	if missingSmart(smart) {
		if suggested, err := t.suggest.SuggestSMART(ctx, gc); err == nil {
			smart = smart.Merge(suggested)
		} else {
			t.logSuggestionFailure("smart", err)
		}
	}

	now := t.clock.Now()
	g := model.Goal{
		ID:                 t.ids.Generate(),
		Title:              title,
		Description:        strings.TrimSpace(in.Description),
		Category:           category,
		Horizon:            in.Horizon,
		SmartCriteria:      smart,
		Milestones:         []model.Milestone{},
		CreatedAt:          now,
		UpdatedAt:          now,
		Status:             model.StatusActive,
		ProgressPercentage: in.Progress,
	}
	if err := t.store.Goals.Add(g); err != nil {
		return model.Goal{}, err
	}
	return g, nil
}

func missingSmart(s model.SmartCriteria) bool {
	for _, v := range []string{s.Specific, s.Measurable, s.Achievable, s.Relevant, s.TimeBound} {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}

func (t *Tracker) logSuggestionFailure(what string, err error) {
	level := slog.LevelWarn
	if errors.Is(err, suggest.ErrUnavailable) {
		level = slog.LevelDebug
	}
	t.logger.Log(context.Background(), level, "suggestion skipped",
		slog.String("kind", what),
		slog.String("error", err.Error()))
}

// Goals returns stored goals in file order. A non-nil status filters them.
func (t *Tracker) Goals(status *model.Status) ([]model.Goal, error) {
	goals, err := t.store.Goals.Load()
	if err != nil {
		return nil, err
	}
	if status == nil {
		return goals, nil
	}
	out := goals[:0]
	for _, g := range goals {
		if g.Status == *status {
			out = append(out, g)
		}
	}
	return out, nil
}

// ResolveGoal finds a goal by 1-based position in the stored list, by full
// id, or by a unique id prefix.
func (t *Tracker) ResolveGoal(ref string) (model.Goal, error) {
	goals, err := t.store.Goals.Load()
	if err != nil {
		return model.Goal{}, err
	}
	return resolveGoal(goals, ref)
}

func resolveGoal(goals []model.Goal, ref string) (model.Goal, error) {
	ref = strings.TrimSpace(ref)
	if len(goals) == 0 {
		return model.Goal{}, ErrNoGoals
	}
	if ref == "" {
		return model.Goal{}, fmt.Errorf("%w: empty reference", store.ErrGoalNotFound)
	}
	for _, g := range goals {
		if g.ID == ref {
			return g, nil
		}
	}
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(goals) {
			return model.Goal{}, fmt.Errorf("%w: no goal #%d (have %d)", store.ErrGoalNotFound, n, len(goals))
		}
		return goals[n-1], nil
	}

	var match *model.Goal
	for i := range goals {
		if strings.HasPrefix(goals[i].ID, ref) {
			if match != nil {
				return model.Goal{}, fmt.Errorf("%w: %q matches several goals", ErrAmbiguousRef, ref)
			}
			match = &goals[i]
		}
	}
	if match == nil {
		return model.Goal{}, fmt.Errorf("%w: %s", store.ErrGoalNotFound, ref)
	}
	return *match, nil
}

// Complete marks the goal done.
func (t *Tracker) Complete(ref, reason string) (model.Goal, error) {
	return t.setStatus(ref, model.StatusCompleted, reason)
}

// Abandon marks the goal dropped.
func (t *Tracker) Abandon(ref, reason string) (model.Goal, error) {
	return t.setStatus(ref, model.StatusAbandoned, reason)
}

func (t *Tracker) setStatus(ref string, status model.Status, reason string) (model.Goal, error) {
	g, err := t.ResolveGoal(ref)
	if err != nil {
		return model.Goal{}, err
	}
	g.SetStatus(status, reason, t.clock.Now())
	if err := t.store.Goals.Update(g); err != nil {
		return model.Goal{}, err
	}
	return g, nil
}

// Edit lists the fields to change; nil pointers and blank SMART fields are
// left as they are.
type Edit struct {
	Title       *string
	Description *string
	Category    *model.Category
	Horizon     *model.Horizon
	Status      *model.Status
	Smart       model.SmartCriteria
	Progress    *int
}

// IsZero reports whether the edit changes nothing.
func (e Edit) IsZero() bool {
	return e.Title == nil && e.Description == nil && e.Category == nil && e.Horizon == nil &&
		e.Status == nil && e.Progress == nil && e.Smart.IsZero()
}

// EditGoal applies e to the goal ref.
func (t *Tracker) EditGoal(ref string, e Edit) (model.Goal, error) {
	g, err := t.ResolveGoal(ref)
	if err != nil {
		return model.Goal{}, err
	}
	if e.Title != nil {
		g.Title = strings.TrimSpace(*e.Title)
	}
	if e.Description != nil {
		g.Description = strings.TrimSpace(*e.Description)
	}
	if e.Category != nil {
		g.Category = *e.Category
	}
	if e.Horizon != nil {
		g.Horizon = *e.Horizon
	}
	if e.Status != nil {
		g.Status = *e.Status
	}
	g.SmartCriteria = e.Smart.Merge(g.SmartCriteria)
	if e.Progress != nil {
		if *e.Progress < 0 || *e.Progress > 100 {
			return model.Goal{}, fmt.Errorf("%w: progress %d outside 0..100", store.ErrInvalidGoal, *e.Progress)
		}
		g.ProgressPercentage = *e.Progress
	}
	g.UpdatedAt = t.clock.Now()

	if err := t.store.Goals.Update(g); err != nil {
		return model.Goal{}, err
	}
	return g, nil
}

// GoalDetail is everything shown for a single goal.
type GoalDetail struct {
	Goal     model.Goal                `json:"goal"`
	Timeline []analytics.TimelinePoint `json:"timeline"`
}

// Show returns the goal with its recorded progress history.
func (t *Tracker) Show(ref string) (GoalDetail, error) {
	g, err := t.ResolveGoal(ref)
	if err != nil {
		return GoalDetail{}, err
	}
	checkins, err := t.store.CheckIns.LoadAll()
	if err != nil {
		return GoalDetail{}, err
	}
	return GoalDetail{Goal: g, Timeline: analytics.Timeline(checkins, g.ID)}, nil
}

// Progress combines the status tally with the analytics report.
type Progress struct {
	Totals analytics.Totals `json:"totals"`
	Report analytics.Report `json:"report"`
}

// Progress summarizes goals and check-in history as of now.
func (t *Tracker) Progress() (Progress, error) {
	goals, err := t.store.Goals.Load()
	if err != nil {
		return Progress{}, err
	}
	checkins, err := t.store.CheckIns.LoadAll()
	if err != nil {
		return Progress{}, err
	}
	return Progress{
		Totals: analytics.Overview(goals, len(checkins)),
		Report: analytics.Summarize(checkins, t.clock.Now()),
	}, nil
}
