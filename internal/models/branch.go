package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Branch is the per-branch record stored in branch.json.
// ParentBranch and ParentVersion record the creation origin; both are
// empty/zero only for a project's initial branch.
type Branch struct {
	Name          string    `json:"name"`
	ParentBranch  string    `json:"parent_branch,omitempty"`
	ParentVersion int       `json:"parent_version,omitempty"`
	Description   string    `json:"description,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// WorkingState is the working-file bookkeeping stored in working/state.json.
// BasedOn is nil until the first commit or checkout on the branch.
// LastSynced is the working file's modification time recorded at the last
// moment the file was known to be consistent with a version.
type WorkingState struct {
	BasedOn    *int      `json:"based_on"`
	LastSynced time.Time `json:"last_synced"`
	EditorPID  *int      `json:"editor_pid,omitempty"`
}

// Stash is the stash-slot record stored in stash/stash.json. At most
// one stash entry exists per branch. LastSynced carries the working
// state's sync time across save and pop so the popped file resolves to
// the same clean/modified reading it had when saved.
type Stash struct {
	BasedOn    *int      `json:"based_on"`
	LastSynced time.Time `json:"last_synced"`
	SavedAt    time.Time `json:"saved_at"`
}

// validBranchRe matches valid branch names: alphanumeric start, then
// alphanumeric, dots, hyphens, underscores.
var validBranchRe = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// ValidateBranchName checks that a branch name is usable as a directory
// name and a history-log path segment.
func ValidateBranchName(name string) error {
	if name == "" {
		return fmt.Errorf("branch name cannot be empty")
	}
	if len(name) > 80 {
		return fmt.Errorf("branch name too long (max 80 characters)")
	}
	if !validBranchRe.MatchString(name) {
		return fmt.Errorf("invalid branch name %q: must start with alphanumeric, may contain a-z A-Z 0-9 . _ -", name)
	}
	if strings.Contains(name, "..") {
		return fmt.Errorf("branch name cannot contain '..'")
	}
	return nil
}
