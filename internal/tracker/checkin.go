package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/roach88/horizonte/internal/model"
	"github.com/roach88/horizonte/internal/store"
	"github.com/roach88/horizonte/internal/suggest"
)

// ManualUpdate is a progress change entered directly by the user.
type ManualUpdate struct {
	Percent int
	Comment string
}

// CheckInRequest describes one check-in run.
type CheckInRequest struct {
	Type model.CheckInType

	// Text is a free-form progress report handed to the suggestion service.
	Text string

	// Manual updates keyed by goal reference. They win over proposals
	// derived from Text.
	Manual map[string]ManualUpdate

	// Reflection is the user's one-line summary of the period.
	Reflection string

	// Review asks the suggestion service for a written summary.
	Review bool
}

// Entry is one goal's change in a check-in.
type Entry struct {
	GoalID     string         `json:"goal_id"`
	Title      string         `json:"title"`
	Category   model.Category `json:"category"`
	OldPercent int            `json:"old_percent"`
	NewPercent int            `json:"new_percent"`
	Comment    string         `json:"comment"`
	Source     string         `json:"source"` // "manual", "suggested" or "unchanged"
}

// Delta is the signed progress change.
func (e Entry) Delta() int { return e.NewPercent - e.OldPercent }

// CheckInResult is the outcome of a check-in.
type CheckInResult struct {
	CheckIn model.CheckIn `json:"checkin"`
	Path    string        `json:"path"`
	Entries []Entry       `json:"entries"`
}

// CheckIn reviews every active goal: proposals from req.Text are merged with
// manual updates, progress is saved, a snapshot of the updated goals is taken
// and the narrative and record are written.
func (t *Tracker) CheckIn(ctx context.Context, req CheckInRequest) (CheckInResult, error) {
	if req.Type == "" {
		req.Type = model.CheckInMonthly
	}
	if !req.Type.Valid() {
		return CheckInResult{}, fmt.Errorf("%w: check-in type %q", model.ErrUnknownValue, string(req.Type))
	}

	goals, err := t.store.Goals.Load()
	if err != nil {
		return CheckInResult{}, err
	}
	var active []model.Goal
	for _, g := range goals {
		if g.IsActive() {
			active = append(active, g)
		}
	}
	if len(active) == 0 {
		return CheckInResult{}, ErrNoActiveGoals
	}

	manual := make(map[string]ManualUpdate, len(req.Manual))
	for ref, u := range req.Manual {
		g, err := resolveGoal(goals, ref)
		if err != nil {
			return CheckInResult{}, fmt.Errorf("manual update %q: %w", ref, err)
		}
		if !g.IsActive() {
			return CheckInResult{}, fmt.Errorf("%w: manual update %q: goal %q is %s", store.ErrInvalidGoal, ref, g.Title, g.Status)
		}
		if u.Percent < 0 || u.Percent > 100 {
			return CheckInResult{}, fmt.Errorf("%w: manual update %q: progress %d outside 0..100", store.ErrInvalidGoal, ref, u.Percent)
		}
		manual[g.ID] = u
	}

	now := t.clock.Now()
	period := now.Format("January 2006")

	intro, err := t.suggest.CheckInIntro(ctx, active, period)
	if err != nil {
		t.logSuggestionFailure("intro", err)
		intro = fmt.Sprintf("Welcome to your %s check-in! Let's see how you're doing.", period)
	}

	proposed := map[string]suggest.Update{}
	if text := strings.TrimSpace(req.Text); text != "" {
		updates, err := t.suggest.ProposeUpdates(ctx, text, active)
		if err != nil {
			t.logSuggestionFailure("updates", err)
		}
		for _, u := range updates {
			if _, ok := proposed[u.GoalID]; !ok {
				proposed[u.GoalID] = u
			}
		}
	}

	entries := make([]Entry, 0, len(active))
	for i := range active {
		g := &active[i]
		e := Entry{
			GoalID:     g.ID,
			Title:      g.Title,
			Category:   g.Category,
			OldPercent: g.ProgressPercentage,
			NewPercent: g.ProgressPercentage,
			Source:     "unchanged",
		}
		if u, ok := manual[g.ID]; ok {
			e.NewPercent, e.Comment, e.Source = u.Percent, u.Comment, "manual"
		} else if u, ok := proposed[g.ID]; ok {
			e.NewPercent, e.Comment, e.Source = u.NewPercent, u.Comment, "suggested"
		}
		if e.Source != "unchanged" {
			g.SetProgress(e.NewPercent, now)
		}
		entries = append(entries, e)
	}

	if err := t.store.Goals.UpdateMany(active); err != nil {
		return CheckInResult{}, err
	}

	var review string
	if req.Review {
		review, err = t.suggest.AnalyzeCheckIn(ctx, reviewEntries(entries), req.Reflection, period)
		if err != nil {
			t.logSuggestionFailure("review", err)
			review = ""
		}
	}

	covered := make([]string, len(active))
	for i, g := range active {
		covered[i] = g.ID
	}
	ci := model.CheckIn{
		ID:           t.ids.Generate(),
		Date:         now,
		Type:         req.Type,
		GoalsCovered: covered,
		Snapshot:     model.TakeSnapshot(active),
	}

	narrative := Narrative{
		Period:     period,
		Date:       now,
		Intro:      intro,
		Text:       strings.TrimSpace(req.Text),
		Entries:    entries,
		Reflection: strings.TrimSpace(req.Reflection),
		Review:     review,
	}.Markdown()

	path, err := t.store.CheckIns.Save(&ci, narrative)
	if err != nil {
		return CheckInResult{}, err
	}
	if err := t.store.Config.MarkRun(); err != nil {
		return CheckInResult{}, err
	}

	t.logger.Info("check-in saved",
		slog.String("file", filepath.Base(path)),
		slog.Int("goals", len(active)))
	return CheckInResult{CheckIn: ci, Path: path, Entries: entries}, nil
}

func reviewEntries(entries []Entry) []suggest.ReviewEntry {
	out := make([]suggest.ReviewEntry, len(entries))
	for i, e := range entries {
		out[i] = suggest.ReviewEntry{Title: e.Title, OldPercent: e.OldPercent, NewPercent: e.NewPercent, Comment: e.Comment}
	}
	return out
}

// DueStatus tells whether the current month still needs a check-in.
type DueStatus struct {
	Period         string `json:"period"`
	Done           bool   `json:"done"`
	LastDayOfMonth bool   `json:"last_day_of_month"`
	Latest         string `json:"latest,omitempty"`
}

// Due reports whether a check-in was recorded this month: the newest
// narrative name must carry the current YYYY-MM.
func (t *Tracker) Due() (DueStatus, error) {
	now := t.clock.Now()
	status := DueStatus{
		Period:         now.Format("2006-01"),
		LastDayOfMonth: isLastDayOfMonth(now),
	}
	paths, err := t.store.CheckIns.List()
	if err != nil {
		return DueStatus{}, err
	}
	if len(paths) > 0 {
		status.Latest = filepath.Base(paths[0])
		status.Done = strings.Contains(status.Latest, status.Period)
	}
	return status, nil
}

func isLastDayOfMonth(t time.Time) bool {
	return t.AddDate(0, 0, 1).Month() != t.Month()
}
