package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/roach88/horizonte/internal/atomicfile"
	"github.com/roach88/horizonte/internal/clock"
)

var (
	// ErrGoalNotFound is returned when no goal has the requested id.
	ErrGoalNotFound = errors.New("goal not found")

	// ErrInvalidGoal wraps the validation failure of a goal being saved.
	ErrInvalidGoal = errors.New("invalid goal")
)

// Layout derives every persisted path from the data root.
type Layout struct {
	Root string
}

func (l Layout) GoalsPath() string    { return filepath.Join(l.Root, "goals.json") }
func (l Layout) ConfigPath() string   { return filepath.Join(l.Root, "config.json") }
func (l Layout) SettingsPath() string { return filepath.Join(l.Root, "settings.yaml") }
func (l Layout) CheckInsDir() string  { return filepath.Join(l.Root, "checkins") }
func (l Layout) BackupsDir() string   { return filepath.Join(l.Root, "backups") }

type options struct {
	strict bool
	lock   bool
	keep   int
	clock  clock.Clock
	logger *slog.Logger
}

// Option configures Open.
type Option func(*options)

// WithStrictUpdates makes Update report ErrGoalNotFound for unknown ids
// instead of silently saving the collection unchanged.
func WithStrictUpdates() Option { return func(o *options) { o.strict = true } }

// WithLocking holds an exclusive file lock across each read-modify-write.
func WithLocking() Option { return func(o *options) { o.lock = true } }

// WithBackupKeep sets how many backups are retained per file.
func WithBackupKeep(n int) Option { return func(o *options) { o.keep = n } }

// WithClock sets the clock used for timestamps and backup names.
func WithClock(c clock.Clock) Option { return func(o *options) { o.clock = c } }

// WithLogger sets the logger for load warnings and pruning diagnostics.
func WithLogger(l *slog.Logger) Option { return func(o *options) { o.logger = l } }

// Store bundles the repositories that share one data root.
type Store struct {
	Layout   Layout
	Files    *atomicfile.Store
	Goals    *GoalRepository
	Config   *ConfigRepository
	CheckIns *CheckInRepository
}

// Open wires the repositories for layout. Nothing is read or created until
// the first call.
func Open(layout Layout, opts ...Option) *Store {
	o := options{keep: atomicfile.DefaultKeep}
	for _, opt := range opts {
		opt(&o)
	}
	o.clock = clock.OrSystem(o.clock)
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	files := atomicfile.New(layout.BackupsDir(), o.keep, o.clock, o.logger)
	return &Store{
		Layout: layout,
		Files:  files,
		Goals: &GoalRepository{
			path:   layout.GoalsPath(),
			files:  files,
			strict: o.strict,
			lock:   o.lock,
			logger: o.logger.With(slog.String("repo", "goals")),
		},
		Config: &ConfigRepository{
			path:   layout.ConfigPath(),
			files:  files,
			clock:  o.clock,
			logger: o.logger.With(slog.String("repo", "config")),
		},
		CheckIns: &CheckInRepository{
			dir:    layout.CheckInsDir(),
			files:  files,
			logger: o.logger.With(slog.String("repo", "checkins")),
		},
	}
}

// encodeJSON renders v as indented UTF-8 JSON with a trailing newline.
// Non-ASCII text such as accented goal titles is written as-is.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// readLenient reads path into v. It reports found=false when the file is
// missing or undecodable; only other read failures are errors.
func readLenient(path string, v any, logger *slog.Logger) (found bool, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		logger.Warn("ignoring unreadable file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return false, nil
	}
	return true, nil
}
