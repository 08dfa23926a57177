package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"modelvault/internal/automation"
	"modelvault/internal/history"
	"modelvault/internal/state"
	"modelvault/internal/store"
)

// editorPID is the process id the fake collaborator hands back on open.
const editorPID = 43210

func newTestEngine(t *testing.T) (*Engine, *automation.FakeRunner) {
	t.Helper()
	root := filepath.Join(t.TempDir(), "project")
	_, err := InitProject(root, "tower", "office tower model", "tower.edb", "")
	require.NoError(t, err)
	s, err := store.Open(root)
	require.NoError(t, err)
	log, err := history.Open(s.HistoryDir())
	require.NoError(t, err)

	fake := &automation.FakeRunner{PID: editorPID}
	e := New(s, log, fake)
	e.Author = "Test Engineer <eng@example.com>"
	e.Alive = func(int) bool { return false }
	return e, fake
}

func writeWorking(t *testing.T, e *Engine, branch, content string) string {
	t.Helper()
	path := e.Store.WorkingFilePath(branch, "tower.edb")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// modifyWorking rewrites the working file and pushes its modtime past
// any recorded sync point, so the state reads dirty regardless of clock
// granularity.
func modifyWorking(t *testing.T, e *Engine, branch, content string) {
	t.Helper()
	path := writeWorking(t, e, branch, content)
	future := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, future, future))
}

func commitVersion(t *testing.T, e *Engine, content, message string) *CommitResult {
	t.Helper()
	writeWorking(t, e, "main", content)
	res, err := e.Commit(context.Background(), CommitOptions{Message: message})
	require.NoError(t, err)
	return res
}

func readWorking(t *testing.T, e *Engine, branch string) string {
	t.Helper()
	data, err := os.ReadFile(e.Store.WorkingFilePath(branch, "tower.edb"))
	require.NoError(t, err)
	return string(data)
}

func TestInitProject(t *testing.T) {
	root := filepath.Join(t.TempDir(), "project")
	project, err := InitProject(root, "tower", "office tower model", "tower.edb", "")
	require.NoError(t, err)
	require.NotEmpty(t, project.ID)

	s, err := store.Open(root)
	require.NoError(t, err)
	local, err := s.LoadLocal()
	require.NoError(t, err)
	require.NotEmpty(t, local.MachineID)
	require.Equal(t, "main", local.ActiveBranch)
	require.True(t, s.BranchExists("main"))

	// The seed entry is internal; user history starts empty.
	log, err := history.Open(s.HistoryDir())
	require.NoError(t, err)
	entries, err := log.Entries("", 0, false)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestInitProjectRefusesExisting(t *testing.T) {
	root := filepath.Join(t.TempDir(), "project")
	_, err := InitProject(root, "tower", "", "tower.edb", "")
	require.NoError(t, err)
	_, err = InitProject(root, "tower2", "", "tower.edb", "")
	require.ErrorContains(t, err, "already exists")
}

func TestInitProjectSeed(t *testing.T) {
	dir := t.TempDir()
	seed := filepath.Join(dir, "existing.edb")
	require.NoError(t, os.WriteFile(seed, []byte("existing model"), 0o644))

	root := filepath.Join(dir, "project")
	_, err := InitProject(root, "tower", "", "tower.edb", seed)
	require.NoError(t, err)

	s, err := store.Open(root)
	require.NoError(t, err)
	log, err := history.Open(s.HistoryDir())
	require.NoError(t, err)
	e := New(s, log, &automation.FakeRunner{})
	e.Alive = func(int) bool { return false }

	st, err := e.Status()
	require.NoError(t, err)
	require.Equal(t, state.Untracked, st.State)
	require.Nil(t, st.BasedOn)
	require.Equal(t, "existing model", readWorking(t, e, "main"))
}

func TestStatusMissingWorkingFile(t *testing.T) {
	e, _ := newTestEngine(t)
	st, err := e.Status()
	require.NoError(t, err)
	require.Equal(t, state.Missing, st.State)
	require.Contains(t, st.Hint, "checkout")
}

func TestStatusAfterCommit(t *testing.T) {
	e, _ := newTestEngine(t)
	commitVersion(t, e, "frame revision A", "first pass")

	st, err := e.Status()
	require.NoError(t, err)
	require.Equal(t, "tower", st.Project)
	require.Equal(t, "main", st.Branch)
	require.Equal(t, "tower.edb", st.Artifact)
	require.Equal(t, state.Clean, st.State)
	require.NotNil(t, st.BasedOn)
	require.Equal(t, 1, *st.BasedOn)
	require.Equal(t, 1, st.LatestVersion)
	require.False(t, st.BaseAnalyzed)
	require.Nil(t, st.Stash)
}

func TestStatusReportsAnalyzedBase(t *testing.T) {
	e, _ := newTestEngine(t)
	commitVersion(t, e, "frame revision A", "first pass")
	_, err := e.Analyze(context.Background(), "", 1)
	require.NoError(t, err)

	st, err := e.Status()
	require.NoError(t, err)
	require.True(t, st.BaseAnalyzed)
}

func TestVersionsListing(t *testing.T) {
	e, _ := newTestEngine(t)
	commitVersion(t, e, "frame revision A", "first pass")
	commitVersion(t, e, "frame revision B", "stiffen core")

	versions, err := e.Versions("")
	require.NoError(t, err)
	require.Len(t, versions, 2)
	require.Equal(t, 1, versions[0].Ordinal)
	require.Equal(t, 2, versions[1].Ordinal)
	require.Equal(t, "stiffen core", versions[1].Message)

	// A slot directory without its record is skipped, not fatal.
	require.NoError(t, os.MkdirAll(e.Store.VersionDir("main", 3), 0o755))
	versions, err = e.Versions("")
	require.NoError(t, err)
	require.Len(t, versions, 2)
}
