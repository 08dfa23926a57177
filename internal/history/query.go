package history

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"modelvault/internal/models"
)

// Entry is one parsed history listing row. Branch and Ordinal are zero
// for entries whose subject carries no version reference (bookkeeping).
type Entry struct {
	Hash     string    `json:"hash"`
	Branch   string    `json:"branch,omitempty"`
	Ordinal  int       `json:"ordinal,omitempty"`
	Message  string    `json:"message"`
	Author   string    `json:"author"`
	Email    string    `json:"email"`
	Date     time.Time `json:"date"`
	Internal bool      `json:"internal,omitempty"`
	Subject  string    `json:"-"`
}

// VersionSubject renders the canonical entry subject for a version.
func VersionSubject(branch string, ordinal int, message string) string {
	return fmt.Sprintf("%s/%s: %s", branch, models.VersionDirName(ordinal), message)
}

// Entries lists log entries newest first, from the local line only —
// fetched peer refs never appear here. A non-empty branch restricts the
// listing to entries touching that branch's paths; limit > 0 caps the
// result after internal entries are filtered out. Pass includeInternal
// to see the full audit trail.
func (l *Log) Entries(branch string, limit int, includeInternal bool) ([]Entry, error) {
	args := []string{"log", "--pretty=format:%H%x1f%an%x1f%ae%x1f%aI%x1f%s%x1e"}
	if branch != "" {
		args = append(args, "--", branch+"/")
	}
	out, err := l.output(args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	var entries []Entry
	for _, record := range strings.Split(out, "\x1e") {
		record = strings.TrimSpace(record)
		if record == "" {
			continue
		}
		fields := strings.Split(record, "\x1f")
		if len(fields) != 5 {
			continue
		}
		e := Entry{Hash: fields[0], Author: fields[1], Email: fields[2], Subject: fields[4]}
		if t, err := time.Parse(time.RFC3339, fields[3]); err == nil {
			e.Date = t
		}
		subject := fields[4]
		if strings.HasPrefix(subject, InternalTag) {
			e.Internal = true
			subject = strings.TrimSpace(strings.TrimPrefix(subject, InternalTag))
		}
		e.Message = subject
		if refPart, msg, ok := strings.Cut(subject, ": "); ok {
			if ref, err := models.ParseVersionRef(refPart); err == nil && ref.Branch != "" {
				e.Branch = ref.Branch
				e.Ordinal = ref.Ordinal
				e.Message = msg
			}
		}
		if e.Internal && !includeInternal {
			continue
		}
		entries = append(entries, e)
		if limit > 0 && len(entries) == limit {
			break
		}
	}
	return entries, nil
}

// ShowFile reads a file from the log at a given revision (HEAD for the
// current tree).
func (l *Log) ShowFile(rev, rel string) ([]byte, error) {
	out, err := l.output("show", rev+":"+rel)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s from log: %w", rel, err)
	}
	return []byte(out), nil
}

// MaxOrdinal returns the highest version ordinal ever recorded for a
// branch name, across all of history. Deleting and recreating a branch
// must never resurrect an ordinal, so this consults deleted paths too.
func (l *Log) MaxOrdinal(branch string) (int, error) {
	out, err := l.output("log", "--all", "--pretty=format:", "--name-only", "--", branch+"/")
	if err != nil {
		return 0, fmt.Errorf("failed to scan history for %s: %w", branch, err)
	}
	max := 0
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		parts := strings.SplitN(line, "/", 3)
		if len(parts) < 2 || parts[0] != branch {
			continue
		}
		if n, err := models.ParseVersionDirName(parts[1]); err == nil && n > max {
			max = n
		}
	}
	return max, nil
}

// DiffFiles produces a unified diff between two files on disk using the
// log's diff engine. Exit status 1 means differences were found and is
// not an error; the empty string means the files match.
func (l *Log) DiffFiles(pathA, pathB string) (string, error) {
	cmd := exec.Command("git", "diff", "--no-index", "--", pathA, pathB)
	cmd.Dir = l.Dir
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return string(out), nil
		}
		return "", fmt.Errorf("failed to diff exports: %w", err)
	}
	return string(out), nil
}
