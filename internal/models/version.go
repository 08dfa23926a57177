package models

import (
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"
)

// Version is the immutable per-version record stored in version.json.
// Parent is nil for a branch's first version. ContentID is the SHA-256
// of the binary artifact and never changes; Analyzed may flip to true
// in a follow-up internal update without touching ContentID.
type Version struct {
	Ordinal   int       `json:"ordinal"`
	Parent    *int      `json:"parent"`
	Message   string    `json:"message"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	ContentID string    `json:"content_id"`
	Analyzed  bool      `json:"analyzed"`
}

// VersionDirName returns the version slot directory name for an ordinal.
// Format: v<N>, numbered from 1.
func VersionDirName(ordinal int) string {
	return fmt.Sprintf("v%d", ordinal)
}

// ParseVersionDirName parses a version slot directory name back into its
// ordinal. Returns an error for anything that is not v<N> with N >= 1.
func ParseVersionDirName(name string) (int, error) {
	if !strings.HasPrefix(name, "v") {
		return 0, fmt.Errorf("invalid version directory name %q", name)
	}
	n, err := strconv.Atoi(name[1:])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid version directory name %q", name)
	}
	return n, nil
}

// VersionRef identifies a version, optionally on a specific branch.
// An empty Branch means the caller's current branch.
type VersionRef struct {
	Branch  string
	Ordinal int
}

// ParseVersionRef parses "v3", "3" or "branch/v3" into a VersionRef.
func ParseVersionRef(s string) (VersionRef, error) {
	branch := ""
	vpart := s
	if i := strings.LastIndex(s, "/"); i >= 0 {
		branch = s[:i]
		vpart = s[i+1:]
	}
	vpart = strings.TrimPrefix(vpart, "v")
	n, err := strconv.Atoi(vpart)
	if err != nil || n < 1 {
		return VersionRef{}, fmt.Errorf("invalid version reference %q (use v3 or branch/v3)", s)
	}
	if branch != "" {
		if err := ValidateBranchName(branch); err != nil {
			return VersionRef{}, fmt.Errorf("invalid version reference %q: %w", s, err)
		}
	}
	return VersionRef{Branch: branch, Ordinal: n}, nil
}

// String renders the reference as branch/vN or vN.
func (r VersionRef) String() string {
	if r.Branch == "" {
		return VersionDirName(r.Ordinal)
	}
	return r.Branch + "/" + VersionDirName(r.Ordinal)
}

// ExportName derives the text-export filename from the artifact filename
// by swapping the extension for .e2k (model.edb -> model.e2k).
func ExportName(artifact string) string {
	ext := path.Ext(artifact)
	return strings.TrimSuffix(artifact, ext) + ".e2k"
}

// LogEntryPath returns the history-log path of an entry file for a
// version, relative to the log root (e.g. main/v3/version.json).
func LogEntryPath(branch string, ordinal int, file string) string {
	return path.Join(branch, VersionDirName(ordinal), file)
}
