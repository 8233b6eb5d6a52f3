package atomicfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Backup describes one backup copy on disk.
type Backup struct {
	Path    string
	Base    string    // name of the file it was copied from
	Stamp   time.Time // timestamp embedded in the name
	Seq     int       // collision counter, 0 for the first copy in a second
	ModTime time.Time
	Size    int64
}

// BackupName returns the backup file name for base taken at t.
func BackupName(base string, t time.Time) string {
	return backupName(base, t, 0)
}

// backupName appends "-seq" to the stamp when seq is positive, e.g.
// "goals.json.20240315103000-1.bak".
func backupName(base string, t time.Time, seq int) string {
	stamp := t.Format(StampLayout)
	if seq > 0 {
		stamp += "-" + strconv.Itoa(seq)
	}
	return base + "." + stamp + backupExt
}

// ParseBackupName splits a backup file name into its base and stamp.
func ParseBackupName(name string) (base string, stamp time.Time, ok bool) {
	base, stamp, _, ok = parseBackupName(name)
	return base, stamp, ok
}

func parseBackupName(name string) (base string, stamp time.Time, seq int, ok bool) {
	if !strings.HasSuffix(name, backupExt) {
		return "", time.Time{}, 0, false
	}
	trimmed := strings.TrimSuffix(name, backupExt)
	dot := strings.LastIndexByte(trimmed, '.')
	if dot <= 0 {
		return "", time.Time{}, 0, false
	}
	raw := trimmed[dot+1:]
	if i := strings.IndexByte(raw, '-'); i >= 0 {
		n, err := strconv.Atoi(raw[i+1:])
		if err != nil || n <= 0 || raw[i+1] == '+' {
			return "", time.Time{}, 0, false
		}
		raw, seq = raw[:i], n
	}
	if len(raw) != len(StampLayout) {
		return "", time.Time{}, 0, false
	}
	stamp, err := time.ParseInLocation(StampLayout, raw, time.Local)
	if err != nil {
		return "", time.Time{}, 0, false
	}
	return trimmed[:dot], stamp, seq, true
}

// Backups lists the backups of base, newest first. An empty base lists every
// backup. A missing backup directory yields no backups.
func (s *Store) Backups(base string) ([]Backup, error) {
	entries, err := os.ReadDir(s.BackupDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backup dir: %w", err)
	}

	var backups []Backup
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		b, stamp, seq, ok := parseBackupName(e.Name())
		if !ok || (base != "" && b != base) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		backups = append(backups, Backup{
			Path:    filepath.Join(s.BackupDir, e.Name()),
			Base:    b,
			Stamp:   stamp,
			Seq:     seq,
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
	}

	sort.SliceStable(backups, func(i, j int) bool {
		a, b := backups[i], backups[j]
		if !a.ModTime.Equal(b.ModTime) {
			return a.ModTime.After(b.ModTime)
		}
		if !a.Stamp.Equal(b.Stamp) {
			return a.Stamp.After(b.Stamp)
		}
		if a.Seq != b.Seq {
			return a.Seq > b.Seq
		}
		return filepath.Base(a.Path) > filepath.Base(b.Path)
	})
	return backups, nil
}

// FindBackup returns the backup whose file name is name.
func (s *Store) FindBackup(name string) (Backup, error) {
	base, _, ok := ParseBackupName(name)
	if !ok {
		return Backup{}, fmt.Errorf("%q is not a backup name: %w", name, os.ErrNotExist)
	}
	backups, err := s.Backups(base)
	if err != nil {
		return Backup{}, err
	}
	for _, b := range backups {
		if filepath.Base(b.Path) == name {
			return b, nil
		}
	}
	return Backup{}, fmt.Errorf("backup %s: %w", name, os.ErrNotExist)
}

// Restore atomically replaces target with the content of backup. The current
// target is backed up first, so a restore can itself be undone.
func (s *Store) Restore(backup Backup, target string) error {
	content, err := os.ReadFile(backup.Path)
	if err != nil {
		return fmt.Errorf("read backup: %w", err)
	}
	if err := s.Write(target, content, true); err != nil {
		return fmt.Errorf("restore %s: %w", filepath.Base(target), err)
	}
	return nil
}
