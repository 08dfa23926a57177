package cmd

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVerifyCommand(t *testing.T) {
	newCommittedProject(t, "frame revision A", "first pass")

	verifyJSON = false
	verifyToon = false
	require.NoError(t, runVerify(nil, nil))
}

func TestVerifyDetectsTampering(t *testing.T) {
	p := newCommittedProject(t, "frame revision A", "first pass")

	artifact := p.Store.VersionArtifactPath("main", 1, "tower.edb")
	require.NoError(t, os.WriteFile(artifact, []byte("silently edited"), 0o644))

	verifyJSON = false
	verifyToon = false
	err := runVerify(nil, nil)
	require.ErrorContains(t, err, "failed verification")
}
