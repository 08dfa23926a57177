package cmd

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"modelvault/internal/testutil"
)

func TestStatsCommand(t *testing.T) {
	p := newCommittedProject(t, "frame revision A", "first pass")
	p.WriteWorking(t, "main", "frame revision B")
	future := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(p.Store.WorkingFilePath("main", "tower.edb"), future, future))

	commitMessage = "stiffen core"
	require.NoError(t, runCommit(commitCmd, nil))

	statsJSON = false
	statsToon = false
	require.NoError(t, runStats(nil, nil))

	statsJSON = true
	require.NoError(t, runStats(nil, nil))
	statsJSON = false
}

func TestStatsEmptyProject(t *testing.T) {
	p := testutil.NewTempProject(t, "tower", "tower.edb")
	testutil.Chdir(t, p.Root)

	statsJSON = false
	statsToon = false
	require.NoError(t, runStats(nil, nil))
}
