package cmd

import (
	"testing"

	"github.com/stretchr/testify/require"

	"modelvault/internal/state"
	"modelvault/internal/testutil"
)

func TestStatusCommand(t *testing.T) {
	p := testutil.NewTempProject(t, "tower", "tower.edb")
	testutil.Chdir(t, p.Root)

	// Fresh project: main's working slot is empty.
	statusJSON = false
	statusToon = false
	require.NoError(t, runStatus(nil, nil))
}

func TestStatusAfterCommit(t *testing.T) {
	newCommittedProject(t, "frame revision A", "first pass")

	statusJSON = false
	statusToon = false
	require.NoError(t, runStatus(nil, nil))

	statusJSON = true
	require.NoError(t, runStatus(nil, nil))
	statusJSON = false

	e, cleanup, err := openProject()
	require.NoError(t, err)
	defer cleanup()
	st, err := e.Status()
	require.NoError(t, err)
	require.Equal(t, state.Clean, st.State)
	require.Equal(t, "tower", st.Project)
	require.Equal(t, 1, st.LatestVersion)
}
