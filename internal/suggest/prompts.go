package suggest

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/horizonte/internal/model"
)

const systemJSON = "You are a helpful assistant that outputs JSON only. Convert written amounts (k, M, mi) to numbers."

func describeGoal(g GoalContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", g.Title)
	fmt.Fprintf(&b, "Description: %s\n", g.Description)
	if g.Category != "" {
		fmt.Fprintf(&b, "Category: %s\n", g.Category)
	}
	if g.Horizon != "" {
		fmt.Fprintf(&b, "Horizon: %s\n", g.Horizon.Label())
	}
	return b.String()
}

func smartPrompt(g GoalContext) string {
	return "Act as a goal-setting coach. The user has this goal:\n\n" + describeGoal(g) + `
Expand it into SMART criteria (specific, measurable, achievable, relevant, time-bound).
Be concise and practical. Answer in the language of the goal title.

Return ONLY a JSON object, without markdown fences:
{"specific": "...", "measurable": "...", "achievable": "...", "relevant": "...", "time_bound": "..."}`
}

func categoryPrompt(g GoalContext) string {
	names := make([]string, len(model.Categories))
	for i, c := range model.Categories {
		names[i] = c.String()
	}
	return fmt.Sprintf(`Classify the goal below into ONE of these categories: %s

Title: %s
Description: %s

Return ONLY the category word, lowercase, without punctuation. If none fits, return "other".`,
		strings.Join(names, ", "), g.Title, g.Description)
}

func milestonesPrompt(g GoalContext) string {
	return "Break the goal below into 3 to 6 concrete, ordered milestones.\n\n" + describeGoal(g) +
		fmt.Sprintf("SMART: %s %s %s\n", g.Smart.Specific, g.Smart.Measurable, g.Smart.TimeBound) + `
Return ONLY a JSON array of short milestone titles, without markdown fences.`
}

type goalBrief struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Category       string   `json:"category"`
	Horizon        string   `json:"horizon"`
	CurrentPercent int      `json:"current_percent"`
	Measurable     string   `json:"smart_measurable"`
	InferredTarget *float64 `json:"inferred_target_value"`
}

func updatesPrompt(text string, goals []model.Goal) (string, error) {
	briefs := make([]goalBrief, len(goals))
	for i, g := range goals {
		briefs[i] = goalBrief{
			ID:             g.ID,
			Title:          g.Title,
			Description:    g.Description,
			Category:       g.Category.String(),
			Horizon:        g.Horizon.String(),
			CurrentPercent: g.ProgressPercentage,
			Measurable:     g.SmartCriteria.Measurable,
		}
		if v, ok := InferTarget(g); ok {
			briefs[i].InferredTarget = &v
		}
	}
	goalsJSON, err := json.Marshal(briefs)
	if err != nil {
		return "", fmt.Errorf("encode goals: %w", err)
	}

	return fmt.Sprintf(`You track progress on personal goals.

GOALS:
%s

USER UPDATE:
%q

NUMBERS DETECTED IN THE UPDATE: %v

For every goal the update talks about, return one entry. When one statement applies to several
goals (e.g. short and long term goals of the same category), return an entry for each.
- target_value: use inferred_target_value when present unless the user changes the target.
- current_value: the amount the user reports now, if any.
- delta_value: the amount gained since last time, if the user reports a change instead.
- explicit_percent: only when the user states a percentage.

Return ONLY a JSON array:
[{"goal_id": "...", "target_value": null, "current_value": null, "delta_value": null,
  "explicit_percent": null, "comment": "short comment", "reasoning": "..."}]`,
		goalsJSON, text, ExtractValues(text)), nil
}

func introPrompt(goals []model.Goal, period string) string {
	var b strings.Builder
	for _, g := range goals {
		fmt.Fprintf(&b, "- %s (%s)\n", g.Title, g.Category)
	}
	return fmt.Sprintf(`The user is starting a progress check-in for %s.

Goals in progress:
%s
Write a short (1-2 paragraphs), upbeat introduction for the check-in, like an energetic coach friend.`,
		period, b.String())
}

func reviewPrompt(entries []ReviewEntry, reflection, period string) string {
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "- %s: %d%% -> %d%%. Comment: %s\n", e.Title, e.OldPercent, e.NewPercent, e.Comment)
	}
	return fmt.Sprintf(`Check-in data (%s):

%s
User reflection: %q

Write an analytical, motivating summary of this check-in. Highlight the biggest wins, gently point
at stalled goals, weave in the user's reflection, and end with one line for the next month.`,
		period, b.String(), reflection)
}
