package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/horizonte/internal/model"
	"github.com/roach88/horizonte/internal/testutil"
)

func TestCheckIns_SaveWritesBothDocuments(t *testing.T) {
	s := openTestStore(t)
	g := testutil.Goal("g-1", "Save money", model.CategoryFinancial, 30)
	ci := testutil.CheckIn("c-1", 2024, time.March, g)

	path, err := s.CheckIns.Save(&ci, "# March\n")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(s.Layout.CheckInsDir(), "2024-03-28-monthly.md"), path)
	assert.Equal(t, path, ci.FilePath)
	assert.FileExists(t, filepath.Join(s.Layout.CheckInsDir(), "2024-03-28-monthly.json"))

	text, err := s.CheckIns.ReadNarrative(path)
	require.NoError(t, err)
	assert.Equal(t, "# March\n", text)

	all, err := s.CheckIns.LoadAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	if diff := cmp.Diff(ci, all[0]); diff != "" {
		t.Errorf("check-in round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckIns_ListNewestNameFirst(t *testing.T) {
	s := openTestStore(t)
	for _, m := range []time.Month{time.January, time.March, time.February} {
		ci := testutil.CheckIn("c", 2024, m)
		_, err := s.CheckIns.Save(&ci, "x")
		require.NoError(t, err)
	}

	paths, err := s.CheckIns.List()
	require.NoError(t, err)
	require.Len(t, paths, 3)
	assert.Equal(t, "2024-03-28-monthly.md", filepath.Base(paths[0]))
	assert.Equal(t, "2024-02-28-monthly.md", filepath.Base(paths[1]))
	assert.Equal(t, "2024-01-28-monthly.md", filepath.Base(paths[2]))
}

func TestCheckIns_AbsentDirIsEmpty(t *testing.T) {
	s := openTestStore(t)

	paths, err := s.CheckIns.List()
	require.NoError(t, err)
	assert.Empty(t, paths)

	all, err := s.CheckIns.LoadAll()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCheckIns_LoadAllSkipsCorruptAndOrdersByModTime(t *testing.T) {
	s := openTestStore(t)
	dir := s.Layout.CheckInsDir()

	// Saved in reverse date order; LoadAll follows modification time.
	feb := testutil.CheckIn("feb", 2024, time.February, testutil.Goal("g", "G", model.CategoryLife, 20))
	jan := testutil.CheckIn("jan", 2024, time.January, testutil.Goal("g", "G", model.CategoryLife, 10))
	_, err := s.CheckIns.Save(&feb, "feb")
	require.NoError(t, err)
	_, err = s.CheckIns.Save(&jan, "jan")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2024-03-28-monthly.json"), []byte("garbage"), 0o644))

	older := time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "2024-02-28-monthly.json"), older, older))
	require.NoError(t, os.Chtimes(filepath.Join(dir, "2024-01-28-monthly.json"), newer, newer))

	all, err := s.CheckIns.LoadAll()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "feb", all[0].ID)
	assert.Equal(t, "jan", all[1].ID)
}

func TestCheckIns_LoadAllKeepsNullSnapshot(t *testing.T) {
	s := openTestStore(t)
	ci := testutil.CheckIn("bare", 2024, time.April)
	_, err := s.CheckIns.Save(&ci, "bare")
	require.NoError(t, err)

	all, err := s.CheckIns.LoadAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Nil(t, all[0].Snapshot)
	assert.False(t, all[0].HasSnapshot())
}

func TestCheckIns_LoadAllZonelessTimestamps(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, os.MkdirAll(s.Layout.CheckInsDir(), 0o755))
	record := `{
  "id": "c-1",
  "date": "2024-03-31T20:15:00.654321",
  "type": "monthly",
  "goals_covered": ["g-1"],
  "file_path": "checkins/2024-03-31-monthly.md",
  "snapshot": [
    {"id": "g-1", "title": "Poupar", "description": "", "category": "financeira", "horizon": "short_term",
     "milestones": [], "created_at": "2024-01-01T10:00:00.5", "updated_at": "2024-03-30T09:00:00",
     "status": "active", "status_reason": null, "progress_percentage": 30}
  ]
}`
	require.NoError(t, os.WriteFile(filepath.Join(s.Layout.CheckInsDir(), "2024-03-31-monthly.json"), []byte(record), 0o644))

	all, err := s.CheckIns.LoadAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	ci := all[0]
	assert.Equal(t, time.Date(2024, 3, 31, 20, 15, 0, 654321000, time.Local), ci.Date)
	assert.Equal(t, model.CheckInMonthly, ci.Type)
	require.Len(t, ci.Snapshot, 1)
	assert.Equal(t, model.CategoryFinancial, ci.Snapshot[0].Category)
	assert.Equal(t, 30, ci.Snapshot[0].ProgressPercentage)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 0, 0, 500000000, time.Local), ci.Snapshot[0].CreatedAt)
}

func TestCheckIns_SnapshotSurvivesGoalEdits(t *testing.T) {
	s := openTestStore(t)
	g := testutil.Goal("g-1", "Save money", model.CategoryFinancial, 30)
	require.NoError(t, s.Goals.Save([]model.Goal{g}))

	ci := testutil.CheckIn("c-1", 2024, time.March, g)
	_, err := s.CheckIns.Save(&ci, "x")
	require.NoError(t, err)

	g.ProgressPercentage = 90
	require.NoError(t, s.Goals.Update(g))

	all, err := s.CheckIns.LoadAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	snap, ok := all[0].Snapshot.Find("g-1")
	require.True(t, ok)
	assert.Equal(t, 30, snap.ProgressPercentage)
}

func TestCheckIns_Resolve(t *testing.T) {
	s := openTestStore(t)
	for _, m := range []time.Month{time.January, time.February} {
		ci := testutil.CheckIn("c", 2024, m)
		_, err := s.CheckIns.Save(&ci, "x")
		require.NoError(t, err)
	}

	p, err := s.CheckIns.Resolve("1")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-28-monthly.md", filepath.Base(p))

	p, err = s.CheckIns.Resolve("2024-01-28-monthly")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-28-monthly.md", filepath.Base(p))

	_, err = s.CheckIns.Resolve("3")
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = s.CheckIns.Resolve("2023-12-28-monthly.md")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
