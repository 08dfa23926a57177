// Package store owns the on-disk project layout: branch trees, immutable
// version slots, working files, and the staging directory that makes
// every write atomic. Nothing here interprets artifact contents; the
// store moves bytes and JSON records.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"modelvault/internal/models"
)

// Store is a handle on one project root.
type Store struct {
	Root string
}

// Open attaches to an existing project root and sweeps leftover staging
// files from tmp/. Returns ErrNoProject if the root has no project
// record.
func Open(root string) (*Store, error) {
	s := &Store{Root: root}
	if _, err := os.Stat(s.ProjectPath()); err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoProject
		}
		return nil, fmt.Errorf("failed to open project at %s: %w", root, err)
	}
	if err := s.SweepTemp(); err != nil {
		return nil, err
	}
	return s, nil
}

// Init creates the project skeleton directories at root. The caller
// writes the project and local records afterwards.
func Init(root string) (*Store, error) {
	s := &Store{Root: root}
	for _, dir := range []string{root, s.TmpDir(), s.LogsDir(), s.BranchesDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return s, nil
}

// FindRoot walks up from start looking for a directory containing the
// project record, mirroring how git discovers its repository root.
func FindRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", start, err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, ProjectFile)); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoProject
		}
		dir = parent
	}
}

// SweepTemp removes leftover staging files. A file here means a prior
// command died mid-write; the rename never happened, so destinations
// are intact and the leftovers are garbage.
func (s *Store) SweepTemp() error {
	entries, err := os.ReadDir(s.TmpDir())
	if err != nil {
		if os.IsNotExist(err) {
			return os.MkdirAll(s.TmpDir(), 0o755)
		}
		return fmt.Errorf("failed to read staging directory: %w", err)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(s.TmpDir(), e.Name())); err != nil {
			return fmt.Errorf("failed to sweep %s: %w", e.Name(), err)
		}
	}
	return nil
}

// readJSON loads a JSON record into v.
func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

// writeJSON writes v as indented JSON through the staging directory so
// readers never observe a partial record.
func (s *Store) writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	return s.WriteFileAtomic(path, append(data, '\n'))
}

// LoadProject reads the project record.
func (s *Store) LoadProject() (*models.Project, error) {
	var p models.Project
	if err := readJSON(s.ProjectPath(), &p); err != nil {
		return nil, fmt.Errorf("failed to load project record: %w", err)
	}
	return &p, nil
}

// SaveProject writes the project record.
func (s *Store) SaveProject(p *models.Project) error {
	return s.writeJSON(s.ProjectPath(), p)
}

// LoadLocal reads the machine-local record.
func (s *Store) LoadLocal() (*models.LocalState, error) {
	var l models.LocalState
	if err := readJSON(s.LocalPath(), &l); err != nil {
		return nil, fmt.Errorf("failed to load local record: %w", err)
	}
	return &l, nil
}

// SaveLocal writes the machine-local record.
func (s *Store) SaveLocal(l *models.LocalState) error {
	return s.writeJSON(s.LocalPath(), l)
}

// LoadBranch reads one branch's metadata.
func (s *Store) LoadBranch(name string) (*models.Branch, error) {
	var b models.Branch
	if err := readJSON(s.BranchMetaPath(name), &b); err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{Kind: "branch", Name: name}
		}
		return nil, fmt.Errorf("failed to load branch %s: %w", name, err)
	}
	return &b, nil
}

// SaveBranch writes branch metadata, creating the branch tree.
func (s *Store) SaveBranch(b *models.Branch) error {
	for _, dir := range []string{s.WorkingDir(b.Name), s.VersionsDir(b.Name)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return s.writeJSON(s.BranchMetaPath(b.Name), b)
}

// BranchExists reports whether a branch tree is present.
func (s *Store) BranchExists(name string) bool {
	_, err := os.Stat(s.BranchMetaPath(name))
	return err == nil
}

// DeleteBranch removes an entire branch tree.
func (s *Store) DeleteBranch(name string) error {
	if !s.BranchExists(name) {
		return &NotFoundError{Kind: "branch", Name: name}
	}
	if err := os.RemoveAll(s.BranchDir(name)); err != nil {
		return fmt.Errorf("failed to delete branch %s: %w", name, err)
	}
	return nil
}

// ListBranches returns all branch records sorted by name.
func (s *Store) ListBranches() ([]*models.Branch, error) {
	entries, err := os.ReadDir(s.BranchesDir())
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	var out []*models.Branch
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		b, err := s.LoadBranch(e.Name())
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// LoadWorkingState reads a branch's working-state record. A missing
// record reads as the zero state (nothing synced, no editor).
func (s *Store) LoadWorkingState(branch string) (models.WorkingState, error) {
	var ws models.WorkingState
	if err := readJSON(s.WorkingStatePath(branch), &ws); err != nil {
		if os.IsNotExist(err) {
			return models.WorkingState{}, nil
		}
		return models.WorkingState{}, fmt.Errorf("failed to load working state for %s: %w", branch, err)
	}
	return ws, nil
}

// SaveWorkingState writes a branch's working-state record.
func (s *Store) SaveWorkingState(branch string, ws models.WorkingState) error {
	return s.writeJSON(s.WorkingStatePath(branch), ws)
}

// LoadVersion reads one version's metadata.
func (s *Store) LoadVersion(branch string, ordinal int) (*models.Version, error) {
	var v models.Version
	if err := readJSON(s.VersionMetaPath(branch, ordinal), &v); err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{Kind: "version", Name: fmt.Sprintf("%s/%s", branch, models.VersionDirName(ordinal))}
		}
		return nil, fmt.Errorf("failed to load %s/%s: %w", branch, models.VersionDirName(ordinal), err)
	}
	return &v, nil
}

// SaveVersion writes version metadata into its slot.
func (s *Store) SaveVersion(branch string, v *models.Version) error {
	if err := os.MkdirAll(s.VersionDir(branch, v.Ordinal), 0o755); err != nil {
		return fmt.Errorf("failed to create version slot: %w", err)
	}
	return s.writeJSON(s.VersionMetaPath(branch, v.Ordinal), v)
}

// VersionExists reports whether a version slot is present.
func (s *Store) VersionExists(branch string, ordinal int) bool {
	_, err := os.Stat(s.VersionMetaPath(branch, ordinal))
	return err == nil
}

// ListVersionOrdinals returns a branch's version ordinals ascending.
func (s *Store) ListVersionOrdinals(branch string) ([]int, error) {
	entries, err := os.ReadDir(s.VersionsDir(branch))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list versions for %s: %w", branch, err)
	}
	var out []int
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		n, err := models.ParseVersionDirName(e.Name())
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	sort.Ints(out)
	return out, nil
}

// MaxOrdinal returns the highest version ordinal present for a branch,
// or 0 when the branch has no versions.
func (s *Store) MaxOrdinal(branch string) (int, error) {
	ordinals, err := s.ListVersionOrdinals(branch)
	if err != nil {
		return 0, err
	}
	if len(ordinals) == 0 {
		return 0, nil
	}
	return ordinals[len(ordinals)-1], nil
}

// LoadStash reads a branch's stash record, or nil when the slot is empty.
func (s *Store) LoadStash(branch string) (*models.Stash, error) {
	var st models.Stash
	if err := readJSON(s.StashMetaPath(branch), &st); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load stash for %s: %w", branch, err)
	}
	return &st, nil
}

// SaveStash writes a branch's stash record.
func (s *Store) SaveStash(branch string, st *models.Stash) error {
	if err := os.MkdirAll(s.StashDir(branch), 0o755); err != nil {
		return fmt.Errorf("failed to create stash slot: %w", err)
	}
	return s.writeJSON(s.StashMetaPath(branch), st)
}

// DropStash clears a branch's stash slot.
func (s *Store) DropStash(branch string) error {
	if err := os.RemoveAll(s.StashDir(branch)); err != nil {
		return fmt.Errorf("failed to drop stash for %s: %w", branch, err)
	}
	return nil
}
