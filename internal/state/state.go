// Package state resolves the working-copy state of a project's binary
// artifact from recorded metadata and cheap filesystem checks. No
// collaborator subprocess is involved; resolution is constant-time so
// that status stays instant even for multi-gigabyte artifacts.
package state

import (
	"os"
	"time"

	"modelvault/internal/models"
)

// State is the resolved condition of the working artifact.
type State string

const (
	// Missing: no working file on disk.
	Missing State = "missing"
	// OpenClean: editor process alive, file unchanged since last sync.
	OpenClean State = "open-clean"
	// OpenModified: editor process alive, file changed since last sync.
	OpenModified State = "open-modified"
	// Orphaned: an editor pid is recorded but the process is gone.
	Orphaned State = "orphaned"
	// Untracked: file exists but no version lineage is recorded.
	Untracked State = "untracked"
	// Modified: tracked file changed since its base version was placed.
	Modified State = "modified"
	// Clean: tracked file matches its base version.
	Clean State = "clean"
)

// Open reports whether an editor currently holds the artifact.
func (s State) Open() bool {
	return s == OpenClean || s == OpenModified
}

// Dirty reports whether the working file carries uncommitted changes.
func (s State) Dirty() bool {
	return s == OpenModified || s == Modified || s == Untracked
}

// AliveFunc reports whether a pid refers to a running process.
// Injectable so tests can simulate live and dead editors.
type AliveFunc func(pid int) bool

// Resolution is the outcome of a state check.
type Resolution struct {
	State   State
	ModTime time.Time
	PID     int
}

// Resolve determines the working state for the artifact at path given
// the recorded working metadata. Checks run in a fixed order and the
// first match wins: a missing file shadows a recorded editor pid, and a
// live editor shadows everything below it.
func Resolve(path string, ws models.WorkingState, alive AliveFunc) (Resolution, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return Resolution{State: Missing}, nil
	}
	if err != nil {
		return Resolution{}, err
	}
	res := Resolution{ModTime: info.ModTime()}

	if ws.EditorPID != nil {
		res.PID = *ws.EditorPID
		if alive(*ws.EditorPID) {
			if res.ModTime.After(ws.LastSynced) {
				res.State = OpenModified
			} else {
				res.State = OpenClean
			}
			return res, nil
		}
		res.State = Orphaned
		return res, nil
	}

	if ws.BasedOn == nil {
		res.State = Untracked
		return res, nil
	}
	if res.ModTime.After(ws.LastSynced) {
		res.State = Modified
	} else {
		res.State = Clean
	}
	return res, nil
}
