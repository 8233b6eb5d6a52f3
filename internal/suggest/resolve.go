package suggest

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/roach88/horizonte/internal/model"
)

// RawUpdate is a proposal as returned by the service, before the numbers are
// turned into a percentage.
type RawUpdate struct {
	GoalID          string   `json:"goal_id"`
	TargetValue     *float64 `json:"target_value"`
	CurrentValue    *float64 `json:"current_value"`
	DeltaValue      *float64 `json:"delta_value"`
	ExplicitPercent *float64 `json:"explicit_percent"`
	Comment         string   `json:"comment"`
	Reasoning       string   `json:"reasoning"`
}

// ResolveUpdate computes the new percentage for goal from raw:
//
//   - an explicit percentage wins;
//   - otherwise, with a positive target, current/target, where current is
//     given or derived as old% of target plus the delta;
//   - otherwise progress is unchanged.
//
// The result is rounded half to even and clamped to 0..100.
func ResolveUpdate(raw RawUpdate, goal model.Goal) Update {
	percent := float64(goal.ProgressPercentage)

	switch {
	case raw.ExplicitPercent != nil:
		percent = *raw.ExplicitPercent
	case raw.TargetValue != nil && *raw.TargetValue != 0:
		target := *raw.TargetValue
		var current *float64
		if raw.CurrentValue != nil {
			current = raw.CurrentValue
		} else if raw.DeltaValue != nil {
			c := float64(goal.ProgressPercentage)/100*target + *raw.DeltaValue
			current = &c
		}
		if current != nil && target > 0 {
			percent = *current / target * 100
		}
	}

	return Update{
		GoalID:     raw.GoalID,
		NewPercent: model.ClampPercent(int(math.RoundToEven(percent))),
		Comment:    raw.Comment,
		Reasoning:  raw.Reasoning,
	}
}

// ResolveUpdates resolves every proposal naming one of goals. Proposals for
// unknown ids are dropped.
func ResolveUpdates(raws []RawUpdate, goals []model.Goal) []Update {
	byID := make(map[string]model.Goal, len(goals))
	for _, g := range goals {
		byID[g.ID] = g
	}
	out := make([]Update, 0, len(raws))
	for _, raw := range raws {
		g, ok := byID[raw.GoalID]
		if !ok {
			continue
		}
		out = append(out, ResolveUpdate(raw, g))
	}
	return out
}

var amountPattern = regexp.MustCompile(`(\d(?:[\d.,]*\d)?)\s*(?:(k|mi|m|bi|t)\b)?`)

// ExtractValue finds the first amount in text, e.g. "227k", "1,5mi" or
// "R$ 1.000,00", and returns it as a number.
func ExtractValue(text string) (float64, bool) {
	m := amountPattern.FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return 0, false
	}
	return parseAmount(m[1], m[2])
}

// ExtractValues returns every amount in text, in order.
func ExtractValues(text string) []float64 {
	var out []float64
	for _, m := range amountPattern.FindAllStringSubmatch(strings.ToLower(text), -1) {
		if v, ok := parseAmount(m[1], m[2]); ok {
			out = append(out, v)
		}
	}
	return out
}

func parseAmount(num, suffix string) (float64, bool) {
	switch {
	case strings.Contains(num, ".") && strings.Contains(num, ","):
		// 1.000,50: dots group thousands, the comma is the decimal mark.
		num = strings.ReplaceAll(num, ".", "")
		num = strings.ReplaceAll(num, ",", ".")
	case strings.Contains(num, ","):
		if strings.Count(num, ",") > 1 {
			return 0, false
		}
		num = strings.ReplaceAll(num, ",", ".")
	case strings.Count(num, ".") > 1:
		// 1.000.000
		num = strings.ReplaceAll(num, ".", "")
	}

	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}

	switch suffix {
	case "k":
		v *= 1e3
	case "m", "mi":
		v *= 1e6
	case "bi":
		v *= 1e9
	}
	return v, true
}

// InferTarget looks for a target amount in the goal title, then in its
// description.
func InferTarget(g model.Goal) (float64, bool) {
	if v, ok := ExtractValue(g.Title); ok {
		return v, true
	}
	return ExtractValue(g.Description)
}

// StripFences removes a surrounding markdown code fence from a model answer.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "[{") {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
