package engine

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"modelvault/internal/history"
	"modelvault/internal/models"
	"modelvault/internal/store"
)

// InitProject creates a fresh project at root: the store skeleton, the
// initial main branch, the machine identity, and the history log. An
// optional seed copies an existing artifact into main's working slot,
// which then reads untracked until its first commit.
func InitProject(root, name, description, artifact, seed string) (*models.Project, error) {
	if name == "" {
		return nil, fmt.Errorf("project name is required")
	}
	if artifact == "" {
		return nil, fmt.Errorf("artifact filename is required")
	}
	if _, err := os.Stat(root); err == nil {
		if _, err := store.Open(root); err == nil {
			return nil, fmt.Errorf("a project already exists at %s", root)
		}
	}

	s, err := store.Init(root)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	project := &models.Project{
		ID:           uuid.NewString(),
		Name:         name,
		Description:  description,
		ArtifactName: artifact,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.SaveProject(project); err != nil {
		return nil, err
	}
	local := &models.LocalState{
		MachineID:    uuid.NewString(),
		ActiveBranch: "main",
	}
	if err := s.SaveLocal(local); err != nil {
		return nil, err
	}
	if err := s.SaveBranch(&models.Branch{Name: "main", CreatedAt: now}); err != nil {
		return nil, err
	}
	if err := s.SaveWorkingState("main", models.WorkingState{}); err != nil {
		return nil, err
	}
	if _, err := history.Init(s.HistoryDir()); err != nil {
		return nil, err
	}
	if seed != "" {
		if err := s.CopyFileAtomic(seed, s.WorkingFilePath("main", artifact)); err != nil {
			return nil, fmt.Errorf("failed to seed working file: %w", err)
		}
	}
	return project, nil
}
