package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestVerifyCleanProject(t *testing.T) {
	e, _ := newTestEngine(t)
	commitVersion(t, e, "frame revision A", "first pass")
	commitVersion(t, e, "frame revision B", "stiffen core")

	report, err := e.Verify()
	require.NoError(t, err)
	require.True(t, report.OK())
	require.Equal(t, 2, report.Checked)
}

func TestVerifyDetectsArtifactTamper(t *testing.T) {
	e, _ := newTestEngine(t)
	commitVersion(t, e, "frame revision A", "first pass")

	artifact := e.Store.VersionArtifactPath("main", 1, "tower.edb")
	require.NoError(t, os.WriteFile(artifact, []byte("frame revision X"), 0o644))

	report, err := e.Verify()
	require.NoError(t, err)
	require.Len(t, report.Findings, 1)
	require.Contains(t, report.Findings[0].Problem, "do not match")
}

func TestVerifyDetectsMissingSlotFiles(t *testing.T) {
	e, _ := newTestEngine(t)
	commitVersion(t, e, "frame revision A", "first pass")
	commitVersion(t, e, "frame revision B", "stiffen core")

	require.NoError(t, os.Remove(e.Store.VersionArtifactPath("main", 1, "tower.edb")))
	require.NoError(t, os.Remove(e.Store.VersionExportPath("main", 2, "tower.edb")))

	report, err := e.Verify()
	require.NoError(t, err)
	require.Len(t, report.Findings, 2)
	require.Contains(t, report.Findings[0].Problem, "artifact missing")
	require.Contains(t, report.Findings[1].Problem, "export missing")
}

func TestVerifyDetectsPartialSlot(t *testing.T) {
	e, _ := newTestEngine(t)
	commitVersion(t, e, "frame revision A", "first pass")
	require.NoError(t, os.MkdirAll(e.Store.VersionDir("main", 2), 0o755))

	report, err := e.Verify()
	require.NoError(t, err)
	require.Equal(t, 2, report.Checked)
	require.Len(t, report.Findings, 1)
	require.Contains(t, report.Findings[0].Problem, "record missing")
}

func TestVerifyDetectsRecordEditedBehindLog(t *testing.T) {
	e, _ := newTestEngine(t)
	commitVersion(t, e, "frame revision A", "first pass")

	// Rewrite both the artifact and the store record so they agree with
	// each other; the log still remembers the original.
	artifact := e.Store.VersionArtifactPath("main", 1, "tower.edb")
	require.NoError(t, os.WriteFile(artifact, []byte("doctored bytes"), 0o644))
	sum := sha256.Sum256([]byte("doctored bytes"))
	v, err := e.Store.LoadVersion("main", 1)
	require.NoError(t, err)
	v.ContentID = hex.EncodeToString(sum[:])
	require.NoError(t, e.Store.SaveVersion("main", v))

	report, err := e.Verify()
	require.NoError(t, err)
	require.Len(t, report.Findings, 1)
	require.Contains(t, report.Findings[0].Problem, "history log disagrees")
}

func TestVerifyDetectsMissingLogEntry(t *testing.T) {
	e, _ := newTestEngine(t)
	commitVersion(t, e, "frame revision A", "first pass")

	require.NoError(t, e.Log.RemovePath("main/v1"))
	require.NoError(t, e.Log.Commit("scrub", "", "", time.Time{}, true))

	report, err := e.Verify()
	require.NoError(t, err)
	require.Len(t, report.Findings, 1)
	require.Contains(t, report.Findings[0].Problem, "missing from history log")
}
