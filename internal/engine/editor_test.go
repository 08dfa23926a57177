package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"modelvault/internal/models"
	"modelvault/internal/state"
)

func TestOpenRecordsEditorProcess(t *testing.T) {
	e, fake := newTestEngine(t)
	commitVersion(t, e, "frame revision A", "first pass")
	e.Alive = func(pid int) bool { return pid == editorPID }

	res, err := e.Open(context.Background())
	require.NoError(t, err)
	require.Equal(t, editorPID, res.PID)
	// Commit ran inspect+export; open re-inspects before launching.
	require.Equal(t, "inspect,export,inspect,open", fake.String())

	st, err := e.Status()
	require.NoError(t, err)
	require.Equal(t, state.OpenClean, st.State)
	require.Equal(t, editorPID, *st.EditorPID)
}

func TestOpenPreservesPreexistingChanges(t *testing.T) {
	e, fake := newTestEngine(t)
	commitVersion(t, e, "frame revision A", "first pass")
	modifyWorking(t, e, "main", "uncommitted work")
	e.Alive = func(pid int) bool { return pid == editorPID }

	// Opening must not move the sync point: the dirt predates the
	// session and must survive it.
	_, err := e.Open(context.Background())
	require.NoError(t, err)
	st, err := e.Status()
	require.NoError(t, err)
	require.Equal(t, state.OpenModified, st.State)

	_, err = e.Close(context.Background())
	require.NoError(t, err)
	require.Contains(t, fake.CallOps(), "close")
	st, err = e.Status()
	require.NoError(t, err)
	require.Equal(t, state.Modified, st.State)
}

func TestOpenBlockedByEditLock(t *testing.T) {
	e, fake := newTestEngine(t)
	commitVersion(t, e, "frame revision A", "first pass")
	fake.Locked = true

	_, err := e.Open(context.Background())
	require.ErrorContains(t, err, "unlock")
	ws, err := e.Store.LoadWorkingState("main")
	require.NoError(t, err)
	require.Nil(t, ws.EditorPID)
}

func TestOpenWhileAlreadyOpen(t *testing.T) {
	e, _ := newTestEngine(t)
	commitVersion(t, e, "frame revision A", "first pass")
	e.Alive = func(pid int) bool { return pid == editorPID }
	_, err := e.Open(context.Background())
	require.NoError(t, err)

	_, err = e.Open(context.Background())
	var se *StateError
	require.ErrorAs(t, err, &se)
	require.Equal(t, state.OpenClean, se.State)
}

func TestOpenRejectsMissingPID(t *testing.T) {
	e, fake := newTestEngine(t)
	commitVersion(t, e, "frame revision A", "first pass")
	fake.PID = 0

	_, err := e.Open(context.Background())
	require.ErrorContains(t, err, "no process id")
	ws, err := e.Store.LoadWorkingState("main")
	require.NoError(t, err)
	require.Nil(t, ws.EditorPID)
}

func TestCloseOrphanedRecord(t *testing.T) {
	e, fake := newTestEngine(t)
	commitVersion(t, e, "frame revision A", "first pass")
	e.Alive = func(pid int) bool { return pid == editorPID }
	_, err := e.Open(context.Background())
	require.NoError(t, err)

	// The editor died without telling anyone.
	e.Alive = func(int) bool { return false }
	st, err := e.Status()
	require.NoError(t, err)
	require.Equal(t, state.Orphaned, st.State)
	require.Contains(t, st.Hint, "close")

	calls := len(fake.Calls)
	res, err := e.Close(context.Background())
	require.NoError(t, err)
	require.True(t, res.Orphaned)
	// No collaborator call: there is no process left to close.
	require.Len(t, fake.Calls, calls)

	st, err = e.Status()
	require.NoError(t, err)
	require.Equal(t, state.Clean, st.State)
	require.Nil(t, st.EditorPID)
}

func TestCloseWithoutEditor(t *testing.T) {
	e, _ := newTestEngine(t)
	commitVersion(t, e, "frame revision A", "first pass")

	_, err := e.Close(context.Background())
	require.ErrorContains(t, err, "no editor is open")
}

func TestUnlock(t *testing.T) {
	e, fake := newTestEngine(t)
	commitVersion(t, e, "frame revision A", "first pass")

	require.NoError(t, e.Unlock(context.Background()))
	require.Equal(t, "inspect,export,unlock", fake.String())
}

func TestLiveEditorBlocksEveryMutation(t *testing.T) {
	e, _ := newTestEngine(t)
	commitVersion(t, e, "frame revision A", "first pass")
	_, err := e.BranchCreate("feature", "", "")
	require.NoError(t, err)
	e.Alive = func(pid int) bool { return pid == editorPID }
	_, err = e.Open(context.Background())
	require.NoError(t, err)

	ctx := context.Background()
	_, err = e.Commit(ctx, CommitOptions{Message: "nope"})
	require.Error(t, err)
	_, err = e.Checkout(models.VersionRef{Ordinal: 1}, false)
	require.Error(t, err)
	_, err = e.StashSave(false)
	require.Error(t, err)
	_, err = e.Switch("feature")
	require.Error(t, err)
	err = e.Unlock(ctx)
	require.Error(t, err)

	// Zero mutation across all of them.
	require.False(t, e.Store.VersionExists("main", 2))
	stash, err := e.Store.LoadStash("main")
	require.NoError(t, err)
	require.Nil(t, stash)
	local, err := e.Store.LoadLocal()
	require.NoError(t, err)
	require.Equal(t, "main", local.ActiveBranch)
	require.Equal(t, "frame revision A", readWorking(t, e, "main"))
}
