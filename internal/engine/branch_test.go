package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"modelvault/internal/models"
	"modelvault/internal/store"
)

func TestBranchCreateFromLatest(t *testing.T) {
	e, _ := newTestEngine(t)
	commitVersion(t, e, "frame revision A", "first pass")
	commitVersion(t, e, "frame revision B", "stiffen core")

	branch, err := e.BranchCreate("feature", "", "stiffer shear walls")
	require.NoError(t, err)
	require.Equal(t, "main", branch.ParentBranch)
	require.Equal(t, 2, branch.ParentVersion)
	require.Equal(t, "stiffer shear walls", branch.Description)

	// Content matches the source version, but nothing is committed on
	// the new branch yet.
	require.Equal(t, "frame revision B", readWorking(t, e, "feature"))
	ws, err := e.Store.LoadWorkingState("feature")
	require.NoError(t, err)
	require.Nil(t, ws.BasedOn)
}

func TestBranchCreateFromVersionRef(t *testing.T) {
	e, _ := newTestEngine(t)
	commitVersion(t, e, "frame revision A", "first pass")
	commitVersion(t, e, "frame revision B", "stiffen core")

	branch, err := e.BranchCreate("alt", "main/v1", "")
	require.NoError(t, err)
	require.Equal(t, 1, branch.ParentVersion)
	require.Equal(t, "frame revision A", readWorking(t, e, "alt"))

	// A bare ordinal resolves against the active branch.
	branch, err = e.BranchCreate("alt2", "v1", "")
	require.NoError(t, err)
	require.Equal(t, "main", branch.ParentBranch)
	require.Equal(t, 1, branch.ParentVersion)
}

func TestBranchCreateValidation(t *testing.T) {
	e, _ := newTestEngine(t)
	commitVersion(t, e, "frame revision A", "first pass")

	_, err := e.BranchCreate("bad name", "", "")
	require.ErrorContains(t, err, "invalid branch name")

	_, err = e.BranchCreate("feature", "###", "")
	require.ErrorContains(t, err, "unknown branch or version")

	_, err = e.BranchCreate("feature", "", "")
	require.NoError(t, err)
	_, err = e.BranchCreate("feature", "", "")
	require.ErrorContains(t, err, "already exists")

	// The new branch has no versions of its own to branch from.
	_, err = e.BranchCreate("grandchild", "feature", "")
	require.ErrorContains(t, err, "no versions")
}

func TestBranchNamePrecedesVersionRef(t *testing.T) {
	e, _ := newTestEngine(t)
	commitVersion(t, e, "frame revision A", "first pass")
	_, err := e.BranchCreate("v3", "main/v1", "")
	require.NoError(t, err)
	writeWorking(t, e, "v3", "variant frame")
	_, err = e.Commit(context.Background(), CommitOptions{Branch: "v3", Message: "variant"})
	require.NoError(t, err)

	// "v3" resolves as the branch named v3, not as main's version 3.
	branch, err := e.BranchCreate("offshoot", "v3", "")
	require.NoError(t, err)
	require.Equal(t, "v3", branch.ParentBranch)
	require.Equal(t, 1, branch.ParentVersion)
}

func TestSwitch(t *testing.T) {
	e, _ := newTestEngine(t)
	commitVersion(t, e, "frame revision A", "first pass")
	_, err := e.BranchCreate("feature", "", "")
	require.NoError(t, err)

	res, err := e.Switch("feature")
	require.NoError(t, err)
	require.Equal(t, "feature", res.Branch)
	local, err := e.Store.LoadLocal()
	require.NoError(t, err)
	require.Equal(t, "feature", local.ActiveBranch)

	res, err = e.Switch("feature")
	require.NoError(t, err)
	require.Contains(t, res.Warning, "already on")

	_, err = e.Switch("nope")
	require.True(t, store.IsNotFound(err))
}

func TestSwitchWarnsOnUncommittedChanges(t *testing.T) {
	e, _ := newTestEngine(t)
	commitVersion(t, e, "frame revision A", "first pass")
	_, err := e.BranchCreate("feature", "", "")
	require.NoError(t, err)
	modifyWorking(t, e, "main", "uncommitted work")

	res, err := e.Switch("feature")
	require.NoError(t, err)
	require.Contains(t, res.Warning, "uncommitted")

	// The changes stay on main's own working file.
	require.Equal(t, "uncommitted work", readWorking(t, e, "main"))
}

func TestSwitchBlockedWhileEditorLive(t *testing.T) {
	e, _ := newTestEngine(t)
	commitVersion(t, e, "frame revision A", "first pass")
	_, err := e.BranchCreate("feature", "", "")
	require.NoError(t, err)
	e.Alive = func(pid int) bool { return pid == editorPID }
	_, err = e.Open(context.Background())
	require.NoError(t, err)

	_, err = e.Switch("feature")
	var se *StateError
	require.ErrorAs(t, err, &se)
	local, err := e.Store.LoadLocal()
	require.NoError(t, err)
	require.Equal(t, "main", local.ActiveBranch)
}

func TestBranchesListing(t *testing.T) {
	e, _ := newTestEngine(t)
	commitVersion(t, e, "frame revision A", "first pass")
	commitVersion(t, e, "frame revision B", "stiffen core")
	_, err := e.BranchCreate("feature", "", "")
	require.NoError(t, err)

	infos, err := e.Branches()
	require.NoError(t, err)
	require.Len(t, infos, 2)
	require.Equal(t, "feature", infos[0].Name)
	require.False(t, infos[0].Active)
	require.Zero(t, infos[0].Versions)
	require.Equal(t, "main", infos[1].Name)
	require.True(t, infos[1].Active)
	require.Equal(t, 2, infos[1].Versions)
	require.Equal(t, 2, infos[1].Latest)
}

func TestBranchDeleteGuards(t *testing.T) {
	e, _ := newTestEngine(t)
	commitVersion(t, e, "frame revision A", "first pass")

	err := e.BranchDelete("main", nil, false)
	require.ErrorContains(t, err, "active branch")

	_, err = e.BranchCreate("feature", "", "")
	require.NoError(t, err)
	_, err = e.Switch("feature")
	require.NoError(t, err)
	writeWorking(t, e, "feature", "feature work")
	_, err = e.Commit(context.Background(), CommitOptions{Message: "feature pass"})
	require.NoError(t, err)
	_, err = e.Switch("main")
	require.NoError(t, err)

	err = e.BranchDelete("feature", nil, false)
	require.ErrorContains(t, err, "unmerged work")
	require.ErrorContains(t, err, "not on the remote")
	require.True(t, e.Store.BranchExists("feature"))

	require.NoError(t, e.BranchDelete("feature", nil, true))
	require.False(t, e.Store.BranchExists("feature"))
}

func TestBranchDeleteCleanAgainstRemote(t *testing.T) {
	e, _ := newTestEngine(t)
	commitVersion(t, e, "frame revision A", "first pass")
	_, err := e.BranchCreate("feature", "", "")
	require.NoError(t, err)
	_, err = e.Switch("feature")
	require.NoError(t, err)
	writeWorking(t, e, "feature", "feature work")
	res, err := e.Commit(context.Background(), CommitOptions{Message: "feature pass"})
	require.NoError(t, err)
	_, err = e.Switch("main")
	require.NoError(t, err)

	// Everything the branch holds is on the remote, so no force needed.
	remote := &models.Descriptor{Versions: []models.DescriptorVersion{{
		Branch:    "feature",
		Ordinal:   1,
		ContentID: res.ContentID,
	}}}
	require.NoError(t, e.BranchDelete("feature", remote, false))
}

func TestBranchDeleteCountsStashAndDirt(t *testing.T) {
	e, _ := newTestEngine(t)
	commitVersion(t, e, "frame revision A", "first pass")
	_, err := e.BranchCreate("feature", "", "")
	require.NoError(t, err)
	_, err = e.Switch("feature")
	require.NoError(t, err)
	writeWorking(t, e, "feature", "feature work")
	res, err := e.Commit(context.Background(), CommitOptions{Message: "feature pass"})
	require.NoError(t, err)
	modifyWorking(t, e, "feature", "half finished idea")
	_, err = e.StashSave(false)
	require.NoError(t, err)
	_, err = e.Switch("main")
	require.NoError(t, err)

	remote := &models.Descriptor{Versions: []models.DescriptorVersion{{
		Branch:    "feature",
		Ordinal:   1,
		ContentID: res.ContentID,
	}}}
	err = e.BranchDelete("feature", remote, false)
	require.ErrorContains(t, err, "stash")
}

func TestBranchDeleteBlockedWhileEditorLive(t *testing.T) {
	e, _ := newTestEngine(t)
	commitVersion(t, e, "frame revision A", "first pass")
	_, err := e.BranchCreate("feature", "", "")
	require.NoError(t, err)

	pid := editorPID
	ws, err := e.Store.LoadWorkingState("feature")
	require.NoError(t, err)
	ws.EditorPID = &pid
	require.NoError(t, e.Store.SaveWorkingState("feature", ws))
	e.Alive = func(p int) bool { return p == pid }

	err = e.BranchDelete("feature", nil, true)
	var se *StateError
	require.ErrorAs(t, err, &se)
	require.True(t, e.Store.BranchExists("feature"))
}

func TestDeletedBranchOrdinalsNeverReused(t *testing.T) {
	e, _ := newTestEngine(t)
	commitVersion(t, e, "frame revision A", "first pass")
	_, err := e.BranchCreate("feature", "", "")
	require.NoError(t, err)
	_, err = e.Switch("feature")
	require.NoError(t, err)
	writeWorking(t, e, "feature", "feature work")
	_, err = e.Commit(context.Background(), CommitOptions{Message: "feature pass"})
	require.NoError(t, err)
	_, err = e.Switch("main")
	require.NoError(t, err)
	require.NoError(t, e.BranchDelete("feature", nil, true))

	// A recreated branch with the same name continues after the highest
	// ordinal its deleted incarnation ever recorded.
	_, err = e.BranchCreate("feature", "", "")
	require.NoError(t, err)
	_, err = e.Switch("feature")
	require.NoError(t, err)
	writeWorking(t, e, "feature", "second incarnation")
	res, err := e.Commit(context.Background(), CommitOptions{Message: "fresh start"})
	require.NoError(t, err)
	require.Equal(t, 2, res.Ordinal)
}
