package atomicfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/horizonte/internal/testutil"
)

var epoch = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

// testStore creates a Store rooted in a fresh temp dir with a clock that
// advances one second per read.
func testStore(t *testing.T) (*Store, string) {
	t.Helper()
	root := t.TempDir()
	s := New(filepath.Join(root, "backups"), 0, testutil.NewStepClock(epoch, time.Second), testutil.DiscardLogger())
	return s, root
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestWrite_CreatesParentDir(t *testing.T) {
	s, root := testStore(t)
	path := filepath.Join(root, "nested", "deeper", "goals.json")

	require.NoError(t, s.Write(path, []byte("[]\n"), true))

	assert.Equal(t, "[]\n", readFile(t, path))
	backups, err := s.Backups("goals.json")
	require.NoError(t, err)
	assert.Empty(t, backups, "nothing to back up on first write")
}

func TestWrite_FailureBeforeRenameLeavesTargetIntact(t *testing.T) {
	s, root := testStore(t)
	path := filepath.Join(root, "goals.json")
	require.NoError(t, s.Write(path, []byte("A"), false))

	var staged string
	s.beforeRename = func(tmp string) error {
		staged = tmp
		assert.Equal(t, "B", readFile(t, tmp), "temp file holds the new content")
		return errors.New("simulated crash")
	}

	err := s.Write(path, []byte("B"), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "simulated crash")

	assert.Equal(t, "A", readFile(t, path))
	assert.NoFileExists(t, staged)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp", "temp file left behind")
	}
}

func TestWrite_BackupHoldsPreviousContent(t *testing.T) {
	s, root := testStore(t)
	path := filepath.Join(root, "goals.json")

	require.NoError(t, s.Write(path, []byte("A"), true))
	require.NoError(t, s.Write(path, []byte("B"), true))

	assert.Equal(t, "B", readFile(t, path))

	backups, err := s.Backups("goals.json")
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.Equal(t, "A", readFile(t, backups[0].Path))
	assert.Equal(t, "goals.json", backups[0].Base)
	assert.Regexp(t, `^goals\.json\.\d{14}\.bak$`, filepath.Base(backups[0].Path))
}

func TestWrite_NoBackupWhenDisabled(t *testing.T) {
	s, root := testStore(t)
	path := filepath.Join(root, "config.json")

	require.NoError(t, s.Write(path, []byte("A"), false))
	require.NoError(t, s.Write(path, []byte("B"), false))

	backups, err := s.Backups("")
	require.NoError(t, err)
	assert.Empty(t, backups)
	assert.NoDirExists(t, s.BackupDir)
}

func TestWrite_RetainsNewestBackups(t *testing.T) {
	s, root := testStore(t)
	path := filepath.Join(root, "goals.json")

	const writes = DefaultKeep + 6 // first write has nothing to back up
	for i := range writes {
		require.NoError(t, s.Write(path, []byte(fmt.Sprintf("v%d", i)), true))
	}

	backups, err := s.Backups("goals.json")
	require.NoError(t, err)
	require.Len(t, backups, DefaultKeep)

	// Newest backup holds the content replaced by the last write.
	assert.Equal(t, fmt.Sprintf("v%d", writes-2), readFile(t, backups[0].Path))
	assert.Equal(t, fmt.Sprintf("v%d", writes-1-DefaultKeep), readFile(t, backups[len(backups)-1].Path))

	for i := 1; i < len(backups); i++ {
		assert.True(t, backups[i-1].Stamp.After(backups[i].Stamp), "backups listed newest first")
	}
}

func TestWrite_RetentionIsPerBaseName(t *testing.T) {
	s, root := testStore(t)
	s.Keep = 2
	goals := filepath.Join(root, "goals.json")
	config := filepath.Join(root, "config.json")

	for i := range 4 {
		require.NoError(t, s.Write(goals, []byte(fmt.Sprint(i)), true))
	}
	require.NoError(t, s.Write(config, []byte("c1"), true))
	require.NoError(t, s.Write(config, []byte("c2"), true))

	g, err := s.Backups("goals.json")
	require.NoError(t, err)
	assert.Len(t, g, 2)

	c, err := s.Backups("config.json")
	require.NoError(t, err)
	assert.Len(t, c, 1)

	all, err := s.Backups("")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestWrite_BackupCopyFailurePropagates(t *testing.T) {
	s, root := testStore(t)
	path := filepath.Join(root, "goals.json")
	require.NoError(t, s.Write(path, []byte("A"), false))

	// A regular file where the backup dir should be makes the copy fail.
	require.NoError(t, os.WriteFile(s.BackupDir, []byte("x"), 0o644))

	err := s.Write(path, []byte("B"), true)
	require.Error(t, err)
	assert.Equal(t, "A", readFile(t, path))
}

func TestRestore(t *testing.T) {
	s, root := testStore(t)
	path := filepath.Join(root, "goals.json")
	require.NoError(t, s.Write(path, []byte("A"), true))
	require.NoError(t, s.Write(path, []byte("B"), true))

	backups, err := s.Backups("goals.json")
	require.NoError(t, err)
	require.Len(t, backups, 1)

	found, err := s.FindBackup(filepath.Base(backups[0].Path))
	require.NoError(t, err)
	require.NoError(t, s.Restore(found, path))

	assert.Equal(t, "A", readFile(t, path))

	// The overwritten "B" is now recoverable too.
	backups, err = s.Backups("goals.json")
	require.NoError(t, err)
	require.Len(t, backups, 2)
	assert.Equal(t, "B", readFile(t, backups[0].Path))
}

func TestFindBackup_Unknown(t *testing.T) {
	s, _ := testStore(t)

	_, err := s.FindBackup("goals.json.20240101000000.bak")
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = s.FindBackup("goals.json")
	assert.Error(t, err)
}

func TestParseBackupName(t *testing.T) {
	base, stamp, ok := ParseBackupName("goals.json.20240315103000.bak")
	require.True(t, ok)
	assert.Equal(t, "goals.json", base)
	assert.Equal(t, "2024-03-15 10:30:00", stamp.Format(time.DateTime))

	for _, name := range []string{"goals.json", "goals.json.bak", "goals.json.2024.bak", ".20240315103000.bak"} {
		_, _, ok := ParseBackupName(name)
		assert.False(t, ok, name)
	}

	assert.Equal(t, "goals.json.20240301080000.bak", BackupName("goals.json", epoch))
}

func TestParseBackupName_Sequence(t *testing.T) {
	base, stamp, seq, ok := parseBackupName("goals.json.20240315103000-2.bak")
	require.True(t, ok)
	assert.Equal(t, "goals.json", base)
	assert.Equal(t, "2024-03-15 10:30:00", stamp.Format(time.DateTime))
	assert.Equal(t, 2, seq)

	_, _, ok = ParseBackupName("goals.json.20240315103000-1.bak")
	assert.True(t, ok)

	for _, name := range []string{
		"goals.json.20240315103000-.bak",
		"goals.json.20240315103000-0.bak",
		"goals.json.20240315103000-+1.bak",
		"goals.json.20240315103000-x.bak",
		"goals.json.2024-03-15.bak",
	} {
		_, _, _, ok := parseBackupName(name)
		assert.False(t, ok, name)
	}

	assert.Equal(t, "goals.json.20240301080000-3.bak", backupName("goals.json", epoch, 3))
}

func TestWrite_SameSecondBackupsDoNotCollide(t *testing.T) {
	root := t.TempDir()
	s := New(filepath.Join(root, "backups"), 0, testutil.NewStepClock(epoch, 0), testutil.DiscardLogger())
	path := filepath.Join(root, "goals.json")

	for _, content := range []string{"A", "B", "C", "D"} {
		require.NoError(t, s.Write(path, []byte(content), true))
	}

	backups, err := s.Backups("goals.json")
	require.NoError(t, err)
	require.Len(t, backups, 3)
	assert.Equal(t, "goals.json.20240301080000-2.bak", filepath.Base(backups[0].Path))
	assert.Equal(t, "C", readFile(t, backups[0].Path))
	assert.Equal(t, "goals.json.20240301080000-1.bak", filepath.Base(backups[1].Path))
	assert.Equal(t, "B", readFile(t, backups[1].Path))
	assert.Equal(t, "goals.json.20240301080000.bak", filepath.Base(backups[2].Path))
	assert.Equal(t, "A", readFile(t, backups[2].Path))
	assert.Equal(t, 0, backups[2].Seq)

	found, err := s.FindBackup("goals.json.20240301080000-1.bak")
	require.NoError(t, err)
	assert.Equal(t, 1, found.Seq)
}
