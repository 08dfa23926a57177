package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"modelvault/internal/models"
)

func writeArtifact(t *testing.T, mtime time.Time) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tower.edb")
	require.NoError(t, os.WriteFile(path, []byte("binary"), 0o644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
	return path
}

func intPtr(n int) *int { return &n }

func TestResolveMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tower.edb")
	res, err := Resolve(path, models.WorkingState{}, func(int) bool { return true })
	require.NoError(t, err)
	require.Equal(t, Missing, res.State)
}

func TestResolveMissingShadowsRecordedEditor(t *testing.T) {
	// Even with a live editor pid on record, a vanished file is missing.
	path := filepath.Join(t.TempDir(), "tower.edb")
	ws := models.WorkingState{EditorPID: intPtr(os.Getpid())}
	res, err := Resolve(path, ws, func(int) bool { return true })
	require.NoError(t, err)
	require.Equal(t, Missing, res.State)
}

func TestResolveOpenClean(t *testing.T) {
	synced := time.Now().Add(-time.Minute)
	path := writeArtifact(t, synced)
	ws := models.WorkingState{
		BasedOn:    intPtr(3),
		LastSynced: synced,
		EditorPID:  intPtr(4242),
	}
	res, err := Resolve(path, ws, func(pid int) bool { return pid == 4242 })
	require.NoError(t, err)
	require.Equal(t, OpenClean, res.State)
	require.Equal(t, 4242, res.PID)
	require.True(t, res.State.Open())
	require.False(t, res.State.Dirty())
}

func TestResolveOpenModified(t *testing.T) {
	synced := time.Now().Add(-time.Hour)
	path := writeArtifact(t, synced.Add(30*time.Minute))
	ws := models.WorkingState{
		BasedOn:    intPtr(3),
		LastSynced: synced,
		EditorPID:  intPtr(4242),
	}
	res, err := Resolve(path, ws, func(int) bool { return true })
	require.NoError(t, err)
	require.Equal(t, OpenModified, res.State)
	require.True(t, res.State.Dirty())
}

func TestResolveOrphaned(t *testing.T) {
	synced := time.Now().Add(-time.Hour)
	path := writeArtifact(t, synced)
	ws := models.WorkingState{
		BasedOn:    intPtr(1),
		LastSynced: synced,
		EditorPID:  intPtr(4242),
	}
	res, err := Resolve(path, ws, func(int) bool { return false })
	require.NoError(t, err)
	require.Equal(t, Orphaned, res.State)
	require.Equal(t, 4242, res.PID)
}

func TestResolveUntracked(t *testing.T) {
	path := writeArtifact(t, time.Now())
	res, err := Resolve(path, models.WorkingState{}, func(int) bool { return false })
	require.NoError(t, err)
	require.Equal(t, Untracked, res.State)
	require.True(t, res.State.Dirty())
}

func TestResolveOpenUntracked(t *testing.T) {
	// A live editor on a file with no lineage still reads as open.
	path := writeArtifact(t, time.Now())
	ws := models.WorkingState{EditorPID: intPtr(4242)}
	res, err := Resolve(path, ws, func(int) bool { return true })
	require.NoError(t, err)
	require.Equal(t, OpenModified, res.State)
}

func TestResolveCleanAndModified(t *testing.T) {
	synced := time.Now().Add(-time.Hour)
	path := writeArtifact(t, synced)
	ws := models.WorkingState{BasedOn: intPtr(2), LastSynced: synced}

	res, err := Resolve(path, ws, nil)
	require.NoError(t, err)
	require.Equal(t, Clean, res.State)

	require.NoError(t, os.Chtimes(path, synced.Add(time.Minute), synced.Add(time.Minute)))
	res, err = Resolve(path, ws, nil)
	require.NoError(t, err)
	require.Equal(t, Modified, res.State)
}
