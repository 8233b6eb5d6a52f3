package atomicfile

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/roach88/horizonte/internal/clock"
)

const (
	// DefaultKeep is the number of backups retained per file when Keep is unset.
	DefaultKeep = 20

	// StampLayout formats the backup timestamp embedded in backup names.
	StampLayout = "20060102150405"

	backupExt = ".bak"

	// maxBackupSeq bounds the copies of one file taken within one second.
	maxBackupSeq = 1000
)

// Store performs atomic writes with optional backups.
//
// Store holds configuration only; every call re-reads the file system.
type Store struct {
	BackupDir   string
	Keep        int
	Clock       clock.Clock
	Logger      *slog.Logger
	LockTimeout time.Duration

	// beforeRename runs after the temp file is durable and before it replaces
	// the target. Tests use it to abort a write at the last possible moment.
	beforeRename func(tmp string) error
}

// New creates a Store keeping backups in backupDir.
func New(backupDir string, keep int, clk clock.Clock, logger *slog.Logger) *Store {
	return &Store{
		BackupDir: backupDir,
		Keep:      keep,
		Clock:     clk,
		Logger:    logger,
	}
}

func (s *Store) keep() int {
	if s.Keep <= 0 {
		return DefaultKeep
	}
	return s.Keep
}

func (s *Store) now() time.Time { return clock.OrSystem(s.Clock).Now() }

func (s *Store) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s.Logger
}

// Write replaces path with content. When makeBackup is set and path already
// exists, the current content is first copied into the backup directory.
func (s *Store) Write(path string, content []byte, makeBackup bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	if makeBackup {
		if _, err := s.backup(path); err != nil {
			return err
		}
	}

	return s.replace(path, content)
}

// replace writes content to a temp file in the target's directory and
// renames it over path.
func (s *Store) replace(path string, content []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	renamed := false
	defer func() {
		if !renamed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if s.beforeRename != nil {
		if err := s.beforeRename(tmpName); err != nil {
			return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
		}
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	renamed = true

	if err := syncDir(dir); err != nil {
		s.logger().Debug("directory sync skipped",
			slog.String("dir", dir),
			slog.String("error", err.Error()))
	}
	return nil
}

// syncDir makes the rename durable on file systems that need it.
func syncDir(dirPath string) error {
	dir, err := os.Open(dirPath)
	if err != nil {
		return fmt.Errorf("open dir for sync: %w", err)
	}
	defer dir.Close()

	if err := dir.Sync(); err != nil {
		return fmt.Errorf("sync dir: %w", err)
	}
	return nil
}

// backup copies path into the backup directory and prunes old copies.
// It returns the backup path, or "" when path does not exist.
func (s *Store) backup(path string) (string, error) {
	src, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("open for backup: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(s.BackupDir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	base := filepath.Base(path)
	stamp := s.now()
	dst, out, err := s.createBackup(base, stamp)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, src); err != nil {
		_ = out.Close()
		return "", fmt.Errorf("copy backup: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close backup: %w", err)
	}

	// The modification time orders backups for pruning; align it with the
	// stamp in the name so both orders agree.
	_ = os.Chtimes(dst, stamp, stamp)

	if err := s.prune(base); err != nil {
		s.logger().Debug("backup pruning failed",
			slog.String("file", base),
			slog.String("error", err.Error()))
	}
	return dst, nil
}

// createBackup exclusively creates the backup file for base at stamp. Writes
// within the same second get a "-N" suffix instead of overwriting.
func (s *Store) createBackup(base string, stamp time.Time) (string, *os.File, error) {
	for seq := 0; seq < maxBackupSeq; seq++ {
		dst := filepath.Join(s.BackupDir, backupName(base, stamp, seq))
		out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", nil, fmt.Errorf("create backup: %w", err)
		}
		return dst, out, nil
	}
	return "", nil, fmt.Errorf("create backup: %d copies of %s at %s already exist",
		maxBackupSeq, base, stamp.Format(StampLayout))
}

// prune removes the oldest backups of base beyond the retention limit.
func (s *Store) prune(base string) error {
	backups, err := s.Backups(base)
	if err != nil {
		return err
	}
	keep := s.keep()
	if len(backups) <= keep {
		return nil
	}

	var errs []error
	// Backups lists newest first, so everything past keep is older.
	for _, b := range backups[keep:] {
		if err := os.Remove(b.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
