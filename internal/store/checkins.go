package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/horizonte/internal/atomicfile"
	"github.com/roach88/horizonte/internal/model"
)

const (
	narrativeExt = ".md"
	recordExt    = ".json"
)

// CheckInRepository stores one markdown narrative and one JSON record per
// check-in in the checkins directory.
type CheckInRepository struct {
	dir    string
	files  *atomicfile.Store
	logger *slog.Logger
}

// Dir returns the check-in directory.
func (r *CheckInRepository) Dir() string { return r.dir }

// Save writes the narrative and the record for ci, setting ci.FilePath to the
// narrative path, and returns that path. A second check-in of the same type
// on the same day replaces the first.
func (r *CheckInRepository) Save(ci *model.CheckIn, narrative string) (string, error) {
	base := ci.BaseName()
	mdPath := filepath.Join(r.dir, base+narrativeExt)

	if err := r.files.Write(mdPath, []byte(narrative), true); err != nil {
		return "", fmt.Errorf("save narrative: %w", err)
	}
	ci.FilePath = mdPath

	data, err := encodeJSON(ci)
	if err != nil {
		return "", fmt.Errorf("encode check-in: %w", err)
	}
	if err := r.files.Write(filepath.Join(r.dir, base+recordExt), data, true); err != nil {
		return "", fmt.Errorf("save check-in: %w", err)
	}
	return mdPath, nil
}

// List returns narrative paths, newest name first.
func (r *CheckInRepository) List() ([]string, error) {
	entries, err := r.entries(narrativeExt)
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = filepath.Join(r.dir, e.Name())
	}
	sort.Sort(sort.Reverse(sort.StringSlice(paths)))
	return paths, nil
}

// LoadAll decodes every check-in record in modification-time order, ties
// broken by name. Records that cannot be read or decoded are skipped.
func (r *CheckInRepository) LoadAll() ([]model.CheckIn, error) {
	entries, err := r.entries(recordExt)
	if err != nil {
		return nil, err
	}

	type loaded struct {
		name    string
		modTime time.Time
		ci      model.CheckIn
	}
	var all []loaded
	for _, e := range entries {
		path := filepath.Join(r.dir, e.Name())
		info, err := e.Info()
		if err != nil {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			r.logger.Warn("skipping unreadable check-in",
				slog.String("file", path),
				slog.String("error", err.Error()))
			continue
		}
		var ci model.CheckIn
		if err := json.Unmarshal(data, &ci); err != nil {
			r.logger.Warn("skipping undecodable check-in",
				slog.String("file", path),
				slog.String("error", err.Error()))
			continue
		}
		all = append(all, loaded{name: e.Name(), modTime: info.ModTime(), ci: ci})
	}

	sort.SliceStable(all, func(i, j int) bool {
		if !all[i].modTime.Equal(all[j].modTime) {
			return all[i].modTime.Before(all[j].modTime)
		}
		return all[i].name < all[j].name
	})

	out := make([]model.CheckIn, len(all))
	for i, l := range all {
		out[i] = l.ci
	}
	return out, nil
}

// ReadNarrative returns the markdown text at path.
func (r *CheckInRepository) ReadNarrative(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read narrative: %w", err)
	}
	return string(data), nil
}

// Resolve maps a user reference to a narrative path. It accepts a full path,
// a file name with or without ".md", or a 1-based index into List.
func (r *CheckInRepository) Resolve(ref string) (string, error) {
	paths, err := r.List()
	if err != nil {
		return "", err
	}
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(paths) {
			return "", fmt.Errorf("check-in %d: %w", n, os.ErrNotExist)
		}
		return paths[n-1], nil
	}
	name := strings.TrimSuffix(filepath.Base(ref), narrativeExt) + narrativeExt
	for _, p := range paths {
		if filepath.Base(p) == name {
			return p, nil
		}
	}
	return "", fmt.Errorf("check-in %s: %w", ref, os.ErrNotExist)
}

// entries lists regular files in the check-in directory with extension ext.
// A missing directory yields nothing.
func (r *CheckInRepository) entries(ext string) ([]os.DirEntry, error) {
	all, err := os.ReadDir(r.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read check-in dir: %w", err)
	}
	var out []os.DirEntry
	for _, e := range all {
		if e.Type().IsRegular() && strings.HasSuffix(e.Name(), ext) {
			out = append(out, e)
		}
	}
	return out, nil
}
