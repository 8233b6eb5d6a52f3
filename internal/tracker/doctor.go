package tracker

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/horizonte/internal/schema"
)

// FileCheck is the doctor verdict for one persisted file.
type FileCheck struct {
	Path    string `json:"path"`
	Kind    string `json:"kind"`
	Missing bool   `json:"missing,omitempty"`
	Problem string `json:"problem,omitempty"`
}

// OK reports whether the file is absent or valid.
func (c FileCheck) OK() bool { return c.Problem == "" }

// Doctor validates goals.json, config.json and every check-in record. A file
// that fails here is one the lenient loaders silently treat as empty.
func (t *Tracker) Doctor() ([]FileCheck, error) {
	v, err := schema.New()
	if err != nil {
		return nil, err
	}

	type target struct {
		kind schema.Kind
		path string
	}
	layout := t.store.Layout
	targets := []target{
		{schema.KindGoals, layout.GoalsPath()},
		{schema.KindConfig, layout.ConfigPath()},
	}
	records, err := filepath.Glob(filepath.Join(layout.CheckInsDir(), "*.json"))
	if err != nil {
		return nil, err
	}
	for _, p := range records {
		targets = append(targets, target{schema.KindCheckIn, p})
	}

	checks := make([]FileCheck, 0, len(targets))
	for _, tg := range targets {
		c := FileCheck{Path: tg.path, Kind: strings.TrimPrefix(string(tg.kind), "#")}
		switch err := v.ValidateFile(tg.kind, tg.path); {
		case err == nil:
		case errors.Is(err, os.ErrNotExist):
			c.Missing = true
		case schema.IsSchemaError(err):
			c.Problem = err.Error()
		default:
			return nil, err
		}
		checks = append(checks, c)
	}
	return checks, nil
}
