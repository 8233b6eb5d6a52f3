// Package testutil provides deterministic clocks, fixture builders and
// golden-file helpers shared by the package tests.
package testutil

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/horizonte/internal/model"
)

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Golden returns a goldie instance reading testdata/golden/*.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/<pkg> -update
func Golden(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

// Goal builds an active goal with fixed timestamps.
func Goal(id, title string, category model.Category, progress int) model.Goal {
	created := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	return model.Goal{
		ID:          id,
		Title:       title,
		Description: title,
		Category:    category,
		Horizon:     model.HorizonShort,
		SmartCriteria: model.SmartCriteria{
			Specific:   title,
			Measurable: "progress percentage",
			Achievable: "monthly reviews",
			Relevant:   string(category),
			TimeBound:  "end of year",
		},
		Milestones:         []model.Milestone{},
		CreatedAt:          created,
		UpdatedAt:          created,
		Status:             model.StatusActive,
		ProgressPercentage: progress,
	}
}

// CheckIn builds a monthly check-in dated the 28th of year/month whose
// snapshot holds goals.
func CheckIn(id string, year int, month time.Month, goals ...model.Goal) model.CheckIn {
	ids := make([]string, len(goals))
	for i, g := range goals {
		ids[i] = g.ID
	}
	var snap model.Snapshot
	if len(goals) > 0 {
		snap = model.TakeSnapshot(goals)
	}
	return model.CheckIn{
		ID:           id,
		Date:         time.Date(year, month, 28, 20, 0, 0, 0, time.UTC),
		Type:         model.CheckInMonthly,
		GoalsCovered: ids,
		Snapshot:     snap,
	}
}
