package store

import (
	"errors"
	"fmt"
)

// ErrLocked indicates another command already holds the project lock.
var ErrLocked = errors.New("project is locked by another modelvault command")

// ErrNoProject indicates no project root was found at or above a path.
var ErrNoProject = errors.New("not inside a modelvault project (no modelvault.json found)")

// NotFoundError reports a missing on-disk resource by kind and name.
type NotFoundError struct {
	Kind string // "branch", "version", "stash", "working file", ...
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// DiskSpaceError reports a failed free-space preflight.
type DiskSpaceError struct {
	Path      string
	Required  uint64
	Available uint64
}

func (e *DiskSpaceError) Error() string {
	return fmt.Sprintf("insufficient disk space at %s: need %d bytes, %d available",
		e.Path, e.Required, e.Available)
}
