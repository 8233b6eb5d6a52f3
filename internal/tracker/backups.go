package tracker

import (
	"fmt"
	"path/filepath"

	"github.com/roach88/horizonte/internal/atomicfile"
	"github.com/roach88/horizonte/internal/config"
)

// Backups lists every backup in the data root, newest first.
func (t *Tracker) Backups() ([]atomicfile.Backup, error) {
	return t.store.Files.Backups("")
}

// RestoreBackup copies the named backup over the file it was taken from and
// returns that file's path. The file being replaced is backed up first.
func (t *Tracker) RestoreBackup(name string) (string, error) {
	b, err := t.store.Files.FindBackup(filepath.Base(name))
	if err != nil {
		return "", err
	}
	target, err := t.restoreTarget(b.Base)
	if err != nil {
		return "", err
	}
	if err := t.store.Files.Restore(b, target); err != nil {
		return "", err
	}
	t.logger.Info("backup restored", "backup", filepath.Base(b.Path), "target", target)
	return target, nil
}

func (t *Tracker) restoreTarget(base string) (string, error) {
	layout := t.store.Layout
	switch base {
	case filepath.Base(layout.GoalsPath()):
		return layout.GoalsPath(), nil
	case filepath.Base(layout.ConfigPath()):
		return layout.ConfigPath(), nil
	case config.SettingsFile:
		return layout.SettingsPath(), nil
	}
	if ext := filepath.Ext(base); ext == ".json" || ext == ".md" {
		return filepath.Join(layout.CheckInsDir(), base), nil
	}
	return "", fmt.Errorf("%w: no known location for %s", ErrUnknownBackup, base)
}
