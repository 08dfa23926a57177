package cmd

import (
	"context"
	"os"
	"testing"

	"github.com/spf13/viper"

	"modelvault/internal/config"
	"modelvault/internal/testutil"
)

func TestMain(m *testing.M) {
	config.SetDefaults()
	// Keep disk preflights from depending on the host's free space.
	viper.Set("storage.free_margin_mb", 1)
	// Tests invoke run functions directly, bypassing Execute(), which is
	// what normally seeds the command context.
	commitCmd.SetContext(context.Background())
	os.Exit(m.Run())
}

// newCommittedProject initializes a project, moves the test into it,
// wires the stub collaborator, and commits one version on main.
func newCommittedProject(t *testing.T, content, message string) *testutil.TempProject {
	t.Helper()

	p := testutil.NewTempProject(t, "tower", "tower.edb")
	p.WriteWorking(t, "main", content)
	testutil.Chdir(t, p.Root)
	viper.Set("automation.command", testutil.StubCollaborator(t))

	commitMessage = message
	commitAnalyze = false
	commitForce = false
	commitBranch = ""
	if err := runCommit(commitCmd, nil); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	return p
}
