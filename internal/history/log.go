// Package history drives the embedded git repository that records every
// version's metadata and text export. Only text lands here; the binary
// artifact itself is handled by the store and never enters the log.
// Entries tagged internal (analysis markers, renumber records) stay in
// the underlying log for audit but are filtered from listings.
package history

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// InternalTag marks log entries that are bookkeeping, not user commits.
const InternalTag = "[internal]"

// Log is a handle on the embedded history repository.
type Log struct {
	Dir string
}

// Open attaches to an existing history repository.
func Open(dir string) (*Log, error) {
	if _, err := os.Stat(filepath.Join(dir, ".git")); err != nil {
		return nil, fmt.Errorf("history log not found at %s: %w", dir, err)
	}
	return &Log{Dir: dir}, nil
}

// Init creates the history repository with a deterministic default
// branch and a committer identity, and seeds it with an initial entry
// so the log is always bundleable.
func Init(dir string) (*Log, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	l := &Log{Dir: dir}
	if err := l.run("init", "--quiet"); err != nil {
		return nil, fmt.Errorf("failed to init history log: %w", err)
	}
	if err := l.run("symbolic-ref", "HEAD", "refs/heads/main"); err != nil {
		return nil, fmt.Errorf("failed to set history branch: %w", err)
	}
	if err := l.run("config", "user.name", "modelvault"); err != nil {
		return nil, fmt.Errorf("failed to set history identity: %w", err)
	}
	if err := l.run("config", "user.email", "modelvault@localhost"); err != nil {
		return nil, fmt.Errorf("failed to set history identity: %w", err)
	}
	if err := l.run("commit", "--quiet", "--allow-empty", "--no-verify",
		"-m", InternalTag+" initialize history log"); err != nil {
		return nil, fmt.Errorf("failed to seed history log: %w", err)
	}
	return l, nil
}

// run executes git in the log directory, folding git's own output into
// the returned error.
func (l *Log) run(args ...string) error {
	return l.runEnv(nil, args...)
}

func (l *Log) runEnv(extraEnv []string, args ...string) error {
	cmd := exec.Command("git", args...)
	cmd.Dir = l.Dir
	if len(extraEnv) > 0 {
		cmd.Env = append(os.Environ(), extraEnv...)
	}
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git %s: %s: %w", args[0], strings.TrimSpace(string(output)), err)
	}
	return nil
}

// output executes git in the log directory and returns stdout.
func (l *Log) output(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = l.Dir
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s: %w", args[0], err)
	}
	return string(out), nil
}

// StageFile copies src into the log working tree at rel and leaves it
// for the next Commit to pick up.
func (l *Log) StageFile(rel, src string) error {
	dst := filepath.Join(l.Dir, rel)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(rel), err)
	}
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", rel, err)
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to stage %s: %w", rel, err)
	}
	return out.Close()
}

// StageBytes writes data into the log working tree at rel.
func (l *Log) StageBytes(rel string, data []byte) error {
	dst := filepath.Join(l.Dir, rel)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(rel), err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("failed to stage %s: %w", rel, err)
	}
	return nil
}

// MovePath renames a path inside the log working tree. The rename is
// recorded by the next Commit.
func (l *Log) MovePath(oldRel, newRel string) error {
	dst := filepath.Join(l.Dir, newRel)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(newRel), err)
	}
	if err := os.Rename(filepath.Join(l.Dir, oldRel), dst); err != nil {
		return fmt.Errorf("failed to move %s to %s: %w", oldRel, newRel, err)
	}
	return nil
}

// RemovePath deletes a path from the log working tree. The deletion is
// recorded by the next Commit; history retains the content for audit.
func (l *Log) RemovePath(rel string) error {
	if err := os.RemoveAll(filepath.Join(l.Dir, rel)); err != nil {
		return fmt.Errorf("failed to remove %s: %w", rel, err)
	}
	return nil
}

// Commit records everything staged in the working tree as one entry.
// Author is "Name <email>"; a zero date means now. Internal entries get
// the internal tag prefix and disappear from listings.
func (l *Log) Commit(subject, body, author string, date time.Time, internal bool) error {
	if err := l.run("add", "-A"); err != nil {
		return fmt.Errorf("failed to stage entry: %w", err)
	}
	if internal {
		subject = InternalTag + " " + subject
	}
	args := []string{"commit", "--quiet", "--no-verify", "--allow-empty", "-m", subject}
	if body != "" {
		args = append(args, "-m", body)
	}
	if author != "" {
		args = append(args, "--author", author)
	}
	var env []string
	if !date.IsZero() {
		stamp := date.Format(time.RFC3339)
		env = append(env, "GIT_AUTHOR_DATE="+stamp, "GIT_COMMITTER_DATE="+stamp)
	}
	if err := l.runEnv(env, args...); err != nil {
		return fmt.Errorf("failed to record entry: %w", err)
	}
	return nil
}
