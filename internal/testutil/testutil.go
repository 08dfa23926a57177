// Package testutil provides fixtures for command-level tests: a fully
// initialized project on disk and a shell-script collaborator that
// honors the real subprocess contract.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"modelvault/internal/engine"
	"modelvault/internal/store"
)

// TempProject is an initialized project in a temporary directory.
type TempProject struct {
	Root     string
	Artifact string
	Store    *store.Store
}

// NewTempProject initializes a project with a single artifact under a
// fresh temp directory.
func NewTempProject(t *testing.T, name, artifact string) *TempProject {
	t.Helper()

	root := t.TempDir()
	if _, err := engine.InitProject(root, name, "", artifact, ""); err != nil {
		t.Fatalf("failed to init project: %v", err)
	}
	s, err := store.Open(root)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	return &TempProject{Root: root, Artifact: artifact, Store: s}
}

// WriteWorking writes content into a branch's working file.
func (p *TempProject) WriteWorking(t *testing.T, branch, content string) {
	t.Helper()

	path := p.Store.WorkingFilePath(branch, p.Artifact)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write working file: %v", err)
	}
}

// ReadWorking returns a branch's working file content.
func (p *TempProject) ReadWorking(t *testing.T, branch string) string {
	t.Helper()

	data, err := os.ReadFile(p.Store.WorkingFilePath(branch, p.Artifact))
	if err != nil {
		t.Fatalf("failed to read working file: %v", err)
	}
	return string(data)
}

// stubScript mimics the collaborator contract: progress on stderr, one
// JSON payload on stdout. Export copies the artifact to its .e2k
// sibling; analyze drops a results bundle beside it. Open reports the
// script's own pid, which is gone by the time the caller checks it.
const stubScript = `#!/bin/sh
op="$1"
path="$2"
case "$op" in
export)
  echo "exporting $path" >&2
  cp "$path" "${path%.*}.e2k" || exit 1
  printf '{"status":"ok","export":"%s"}\n' "${path%.*}.e2k"
  ;;
analyze)
  echo "analyzing $path" >&2
  dir=$(dirname "$path")/analysis
  mkdir -p "$dir" || exit 1
  printf '{"artifact":"%s","status":"complete"}\n' "$(basename "$path")" > "$dir/results.json"
  printf '{"status":"ok"}\n'
  ;;
inspect)
  printf '{"status":"ok","analyzed":false,"locked":false}\n'
  ;;
open)
  printf '{"status":"ok","pid":%d}\n' "$$"
  ;;
close|unlock)
  printf '{"status":"ok"}\n'
  ;;
*)
  printf '{"status":"error","error":"unknown operation %s"}\n' "$op"
  ;;
esac
`

// StubCollaborator writes an executable collaborator script and returns
// its path, for wiring into automation.command.
func StubCollaborator(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "collaborator.sh")
	if err := os.WriteFile(path, []byte(stubScript), 0o755); err != nil {
		t.Fatalf("failed to write collaborator stub: %v", err)
	}
	return path
}

// Chdir changes into dir for the duration of the test.
func Chdir(t *testing.T, dir string) {
	t.Helper()

	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Errorf("failed to restore working directory: %v", err)
		}
	})
}
