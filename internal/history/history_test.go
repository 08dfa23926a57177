package history

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newLog(t *testing.T) *Log {
	t.Helper()
	l, err := Init(filepath.Join(t.TempDir(), "history"))
	require.NoError(t, err)
	return l
}

func recordVersion(t *testing.T, l *Log, branch string, ordinal int, message, export string) {
	t.Helper()
	base := branch + "/v" + strconv.Itoa(ordinal)
	require.NoError(t, l.StageBytes(base+"/version.json", []byte(`{"ordinal":`+strconv.Itoa(ordinal)+`}`)))
	require.NoError(t, l.StageBytes(base+"/tower.e2k", []byte(export)))
	require.NoError(t, l.Commit(VersionSubject(branch, ordinal, message), "", "Alice Doe <alice@example.com>", time.Time{}, false))
}

func TestInitSeedsInternalEntry(t *testing.T) {
	l := newLog(t)

	visible, err := l.Entries("", 0, false)
	require.NoError(t, err)
	require.Empty(t, visible)

	all, err := l.Entries("", 0, true)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.True(t, all[0].Internal)
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestCommitAndList(t *testing.T) {
	l := newLog(t)
	recordVersion(t, l, "main", 1, "initial geometry", "STORY L1")
	recordVersion(t, l, "main", 2, "retrofit columns", "STORY L1\nSTORY L2")

	entries, err := l.Entries("", 0, false)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first.
	require.Equal(t, "main", entries[0].Branch)
	require.Equal(t, 2, entries[0].Ordinal)
	require.Equal(t, "retrofit columns", entries[0].Message)
	require.Equal(t, "Alice Doe", entries[0].Author)
	require.Equal(t, "alice@example.com", entries[0].Email)
	require.Equal(t, 1, entries[1].Ordinal)
}

func TestInternalEntriesFilteredFromListing(t *testing.T) {
	l := newLog(t)
	recordVersion(t, l, "main", 1, "initial geometry", "STORY L1")
	require.NoError(t, l.StageBytes("main/v1/version.json", []byte(`{"ordinal":1,"analyzed":true}`)))
	require.NoError(t, l.Commit(VersionSubject("main", 1, "analysis recorded"), "", "", time.Time{}, true))

	visible, err := l.Entries("", 0, false)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	require.Equal(t, "initial geometry", visible[0].Message)

	all, err := l.Entries("", 0, true)
	require.NoError(t, err)
	require.Len(t, all, 3) // init + commit + analysis marker
}

func TestEntriesBranchFilterAndLimit(t *testing.T) {
	l := newLog(t)
	recordVersion(t, l, "main", 1, "one", "a")
	recordVersion(t, l, "main", 2, "two", "b")
	recordVersion(t, l, "seismic", 3, "three", "c")

	mainOnly, err := l.Entries("main", 0, false)
	require.NoError(t, err)
	require.Len(t, mainOnly, 2)
	for _, e := range mainOnly {
		require.Equal(t, "main", e.Branch)
	}

	limited, err := l.Entries("", 1, false)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	require.Equal(t, "three", limited[0].Message)
}

func TestCommitPreservesAuthorDate(t *testing.T) {
	l := newLog(t)
	created := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	require.NoError(t, l.StageBytes("main/v1/version.json", []byte("{}")))
	require.NoError(t, l.Commit(VersionSubject("main", 1, "imported"), "imported from peer f00d", "Bob Roe <bob@example.com>", created, false))

	entries, err := l.Entries("", 0, false)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.True(t, entries[0].Date.Equal(created), "got %s", entries[0].Date)
	require.Equal(t, "Bob Roe", entries[0].Author)
}

func TestShowFile(t *testing.T) {
	l := newLog(t)
	recordVersion(t, l, "main", 1, "one", "STORY L1")

	data, err := l.ShowFile("HEAD", "main/v1/tower.e2k")
	require.NoError(t, err)
	require.Equal(t, "STORY L1", string(data))

	_, err = l.ShowFile("HEAD", "main/v9/tower.e2k")
	require.Error(t, err)
}

func TestMaxOrdinalSurvivesBranchRemoval(t *testing.T) {
	l := newLog(t)
	recordVersion(t, l, "main", 1, "one", "a")
	recordVersion(t, l, "main", 2, "two", "b")

	max, err := l.MaxOrdinal("main")
	require.NoError(t, err)
	require.Equal(t, 2, max)

	// Deleting the branch from the tree must not free its ordinals.
	require.NoError(t, l.RemovePath("main"))
	require.NoError(t, l.Commit("delete branch main", "", "", time.Time{}, true))

	max, err = l.MaxOrdinal("main")
	require.NoError(t, err)
	require.Equal(t, 2, max)

	max, err = l.MaxOrdinal("unknown")
	require.NoError(t, err)
	require.Equal(t, 0, max)
}

func TestMovePathRenamesEntry(t *testing.T) {
	l := newLog(t)
	recordVersion(t, l, "main", 1, "one", "STORY L1")

	require.NoError(t, l.MovePath("main/v1", "main/v4"))
	require.NoError(t, l.Commit("renumber main v1 to v4", "", "", time.Time{}, true))

	data, err := l.ShowFile("HEAD", "main/v4/tower.e2k")
	require.NoError(t, err)
	require.Equal(t, "STORY L1", string(data))

	max, err := l.MaxOrdinal("main")
	require.NoError(t, err)
	require.Equal(t, 4, max)
}

func TestDiffFiles(t *testing.T) {
	l := newLog(t)
	dir := t.TempDir()
	a := filepath.Join(dir, "a.e2k")
	b := filepath.Join(dir, "b.e2k")
	require.NoError(t, os.WriteFile(a, []byte("STORY L1\nBEAM B1\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("STORY L1\nBEAM B2\n"), 0o644))

	diff, err := l.DiffFiles(a, b)
	require.NoError(t, err)
	require.Contains(t, diff, "-BEAM B1")
	require.Contains(t, diff, "+BEAM B2")

	same, err := l.DiffFiles(a, a)
	require.NoError(t, err)
	require.Empty(t, same)
}

func TestBundleRoundtrip(t *testing.T) {
	src := newLog(t)
	recordVersion(t, src, "main", 1, "one", "STORY L1")

	bundle := filepath.Join(t.TempDir(), "m1.bundle")
	require.NoError(t, src.Bundle(bundle))
	require.FileExists(t, bundle)

	dst := newLog(t)
	require.NoError(t, dst.FetchBundle(bundle, "m1"))

	out, err := dst.output("rev-parse", "refs/peers/m1/main")
	require.NoError(t, err)
	require.NotEmpty(t, out)

	// Peer refs stay out of listings.
	entries, err := dst.Entries("", 0, false)
	require.NoError(t, err)
	require.Empty(t, entries)
}
