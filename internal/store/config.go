package store

import (
	"fmt"
	"log/slog"

	"github.com/roach88/horizonte/internal/atomicfile"
	"github.com/roach88/horizonte/internal/clock"
	"github.com/roach88/horizonte/internal/model"
)

// ConfigRepository stores the singleton config in config.json.
type ConfigRepository struct {
	path   string
	files  *atomicfile.Store
	clock  clock.Clock
	logger *slog.Logger
}

// Load returns the saved config, or a fresh default when none is readable.
func (r *ConfigRepository) Load() (model.Config, error) {
	var cfg model.Config
	found, err := readLenient(r.path, &cfg, r.logger)
	if err != nil {
		return model.Config{}, err
	}
	if !found {
		return model.DefaultConfig(r.clock.Now()), nil
	}
	return cfg, nil
}

// Exists reports whether a config has been saved, i.e. the data root was
// initialized.
func (r *ConfigRepository) Exists() (bool, error) {
	var cfg model.Config
	return readLenient(r.path, &cfg, r.logger)
}

// Save writes cfg.
func (r *ConfigRepository) Save(cfg model.Config) error {
	data, err := encodeJSON(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := r.files.Write(r.path, data, true); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// MarkRun records the time of the latest check-in run.
func (r *ConfigRepository) MarkRun() error {
	cfg, err := r.Load()
	if err != nil {
		return err
	}
	now := r.clock.Now()
	cfg.LastRunAt = &now
	return r.Save(cfg)
}
