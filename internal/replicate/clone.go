package replicate

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"modelvault/internal/history"
	"modelvault/internal/models"
	"modelvault/internal/store"
)

// Clone bootstraps a fresh project at dir from a remote that already
// carries a descriptor, then runs an initial full pull. The clone gets
// its own machine identity; everything replicated comes from the
// remote.
func Clone(remote *Remote, dir string) (*PullResult, error) {
	desc, err := remote.LoadDescriptor()
	if err != nil {
		return nil, err
	}
	if desc == nil {
		return nil, fmt.Errorf("cannot clone: remote %s has no descriptor", remote.Root)
	}
	if desc.ArtifactName == "" {
		return nil, fmt.Errorf("cannot clone: remote descriptor names no artifact")
	}
	if _, err := os.Stat(dir); err == nil {
		if _, err := store.Open(dir); err == nil {
			return nil, fmt.Errorf("a project already exists at %s", dir)
		}
	}

	s, err := store.Init(dir)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	createdAt := desc.ProjectCreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	project := &models.Project{
		ID:           desc.ProjectID,
		Name:         desc.ProjectName,
		ArtifactName: desc.ArtifactName,
		CreatedAt:    createdAt,
		UpdatedAt:    now,
	}
	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	if err := s.SaveProject(project); err != nil {
		return nil, err
	}

	active := "main"
	if !desc.HasBranch("main") && len(desc.Branches) > 0 {
		active = desc.Branches[0].Name
	}
	local := &models.LocalState{
		MachineID:    uuid.NewString(),
		ActiveBranch: active,
	}
	if err := s.SaveLocal(local); err != nil {
		return nil, err
	}
	log, err := history.Init(s.HistoryDir())
	if err != nil {
		return nil, err
	}
	if len(desc.Branches) == 0 {
		// Degenerate remote: a project pushed before any branch had
		// versions. Still leave a usable main behind.
		if err := s.SaveBranch(&models.Branch{Name: "main", CreatedAt: now}); err != nil {
			return nil, err
		}
		if err := s.SaveWorkingState("main", models.WorkingState{}); err != nil {
			return nil, err
		}
	}
	return New(s, log).Pull(remote)
}
