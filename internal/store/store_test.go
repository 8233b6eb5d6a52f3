package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/horizonte/internal/model"
	"github.com/roach88/horizonte/internal/testutil"
)

var epoch = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

// openTestStore opens a store on a fresh temp root.
func openTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	base := []Option{
		WithClock(testutil.NewStepClock(epoch, time.Second)),
		WithLogger(testutil.DiscardLogger()),
	}
	return Open(Layout{Root: t.TempDir()}, append(base, opts...)...)
}

func TestLayout(t *testing.T) {
	l := Layout{Root: "/data"}
	assert.Equal(t, "/data/goals.json", l.GoalsPath())
	assert.Equal(t, "/data/config.json", l.ConfigPath())
	assert.Equal(t, "/data/settings.yaml", l.SettingsPath())
	assert.Equal(t, "/data/checkins", l.CheckInsDir())
	assert.Equal(t, "/data/backups", l.BackupsDir())
}

func TestEncodeJSON_KeepsNonASCII(t *testing.T) {
	data, err := encodeJSON(map[string]string{"title": "Poupar R$ 10 mil & viajar à Itália"})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"title\": \"Poupar R$ 10 mil & viajar à Itália\"\n}\n", string(data))
}

func TestReadLenient_PropagatesIOErrors(t *testing.T) {
	dir := t.TempDir()
	var v []model.Goal
	// Reading a directory as a file is an I/O failure, not "not exist".
	_, err := readLenient(dir, &v, testutil.DiscardLogger())
	require.Error(t, err)

	found, err := readLenient(filepath.Join(dir, "absent.json"), &v, testutil.DiscardLogger())
	require.NoError(t, err)
	assert.False(t, found)
}

func TestOpen_TouchesNothing(t *testing.T) {
	s := openTestStore(t)
	entries, err := os.ReadDir(s.Layout.Root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
