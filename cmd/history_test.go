package cmd

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHistoryCommand(t *testing.T) {
	p := newCommittedProject(t, "frame revision A", "first pass")
	p.WriteWorking(t, "main", "frame revision B")
	future := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(p.Store.WorkingFilePath("main", "tower.edb"), future, future))

	commitMessage = "stiffen core"
	require.NoError(t, runCommit(commitCmd, nil))

	historyLimit = 0
	historyBranch = ""
	historyInternal = false
	historyJSON = false
	historyToon = false
	require.NoError(t, runHistory(nil, nil))

	historyJSON = true
	require.NoError(t, runHistory(nil, nil))
	historyJSON = false

	e, cleanup, err := openProject()
	require.NoError(t, err)
	defer cleanup()
	entries, err := e.Log.Entries("main", 0, false)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "stiffen core", entries[0].Message)
	require.Equal(t, "first pass", entries[1].Message)
}
