package engine

import (
	"errors"
	"fmt"

	"modelvault/internal/state"
)

// ErrStashExists blocks stash-save over an occupied slot.
var ErrStashExists = errors.New("a stash entry already exists (pass --overwrite to replace it)")

// ErrNoStash reports an empty stash slot on pop or drop.
var ErrNoStash = errors.New("no stash entry exists")

// StateError reports an operation blocked by the working file's current
// state. It is raised before any mutation.
type StateError struct {
	Op     string
	Branch string
	State  state.State
	Hint   string
}

func (e *StateError) Error() string {
	msg := fmt.Sprintf("%s not permitted on %s: working file is %s", e.Op, e.Branch, e.State)
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

// remediation suggests the recovery command for a blocking state.
func remediation(s state.State) string {
	switch s {
	case state.Missing:
		return "restore it with 'modelvault checkout <version>'"
	case state.OpenClean, state.OpenModified:
		return "close the editor first"
	case state.Orphaned:
		return "the recorded editor is gone; run 'modelvault close' to clear it"
	case state.Modified:
		return "commit, stash, or pass --discard to drop the changes"
	case state.Untracked:
		return "commit, stash, or pass --discard to drop the file"
	default:
		return ""
	}
}

// blocked builds the StateError for an operation denied in state s.
func blocked(op, branch string, s state.State) *StateError {
	return &StateError{Op: op, Branch: branch, State: s, Hint: remediation(s)}
}
