package store

import (
	"path/filepath"

	"modelvault/internal/models"
)

// Filenames fixed by the on-disk contract.
const (
	ProjectFile      = "modelvault.json"
	LocalFile        = "local.json"
	LockFile         = "modelvault.lock"
	BranchFile       = "branch.json"
	WorkingStateFile = "state.json"
	VersionFile      = "version.json"
	StashFile        = "stash.json"
	TmpDirName       = "tmp"
	LogsDirName      = "logs"
	HistoryDirName   = "history"
	AnalysisDirName  = "analysis"
)

// ProjectPath returns <root>/modelvault.json.
func (s *Store) ProjectPath() string { return filepath.Join(s.Root, ProjectFile) }

// LocalPath returns <root>/local.json, the machine-local record that is
// never replicated.
func (s *Store) LocalPath() string { return filepath.Join(s.Root, LocalFile) }

// LockPath returns the flock guard file path.
func (s *Store) LockPath() string { return filepath.Join(s.Root, LockFile) }

// TmpDir returns the same-filesystem staging directory used by atomic
// writes. Files land here first and are renamed into place.
func (s *Store) TmpDir() string { return filepath.Join(s.Root, TmpDirName) }

// LogsDir returns the directory zap log files rotate in.
func (s *Store) LogsDir() string { return filepath.Join(s.Root, LogsDirName) }

// HistoryDir returns the embedded history-log repository root.
func (s *Store) HistoryDir() string { return filepath.Join(s.Root, HistoryDirName) }

// BranchesDir returns the parent directory of all branch trees.
func (s *Store) BranchesDir() string { return filepath.Join(s.Root, "branches") }

// BranchDir returns the root of one branch's tree.
func (s *Store) BranchDir(branch string) string {
	return filepath.Join(s.BranchesDir(), branch)
}

// BranchMetaPath returns the branch.json path for a branch.
func (s *Store) BranchMetaPath(branch string) string {
	return filepath.Join(s.BranchDir(branch), BranchFile)
}

// WorkingDir returns the directory holding a branch's working file.
func (s *Store) WorkingDir(branch string) string {
	return filepath.Join(s.BranchDir(branch), "working")
}

// WorkingFilePath returns the working artifact path for a branch.
func (s *Store) WorkingFilePath(branch, artifact string) string {
	return filepath.Join(s.WorkingDir(branch), artifact)
}

// WorkingStatePath returns the working-state metadata path.
func (s *Store) WorkingStatePath(branch string) string {
	return filepath.Join(s.WorkingDir(branch), WorkingStateFile)
}

// VersionsDir returns the parent directory of a branch's version slots.
func (s *Store) VersionsDir(branch string) string {
	return filepath.Join(s.BranchDir(branch), "versions")
}

// VersionDir returns one immutable version slot.
func (s *Store) VersionDir(branch string, ordinal int) string {
	return filepath.Join(s.VersionsDir(branch), models.VersionDirName(ordinal))
}

// VersionArtifactPath returns the binary snapshot path inside a slot.
func (s *Store) VersionArtifactPath(branch string, ordinal int, artifact string) string {
	return filepath.Join(s.VersionDir(branch, ordinal), artifact)
}

// VersionExportPath returns the derived text export path inside a slot.
func (s *Store) VersionExportPath(branch string, ordinal int, artifact string) string {
	return filepath.Join(s.VersionDir(branch, ordinal), models.ExportName(artifact))
}

// VersionMetaPath returns the version.json path inside a slot.
func (s *Store) VersionMetaPath(branch string, ordinal int) string {
	return filepath.Join(s.VersionDir(branch, ordinal), VersionFile)
}

// AnalysisDir returns the optional analysis-result bundle directory.
func (s *Store) AnalysisDir(branch string, ordinal int) string {
	return filepath.Join(s.VersionDir(branch, ordinal), AnalysisDirName)
}

// StashDir returns a branch's stash slot directory.
func (s *Store) StashDir(branch string) string {
	return filepath.Join(s.BranchDir(branch), "stash")
}

// StashFilePath returns the stashed artifact path.
func (s *Store) StashFilePath(branch, artifact string) string {
	return filepath.Join(s.StashDir(branch), artifact)
}

// StashMetaPath returns the stash.json path.
func (s *Store) StashMetaPath(branch string) string {
	return filepath.Join(s.StashDir(branch), StashFile)
}
