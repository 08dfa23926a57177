package replicate

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"modelvault/internal/models"
	"modelvault/internal/store"
)

// PushResult reports what a push moved to the remote.
type PushResult struct {
	Pushed      []string     `json:"pushed,omitempty"`
	Updated     []string     `json:"updated,omitempty"`
	NewBranches []string     `json:"new_branches,omitempty"`
	Renumbered  []Renumbered `json:"renumbered,omitempty"`
}

// Push copies every version the remote lacks onto the shared medium and
// publishes the updated descriptor. An ordinal collision with different
// content aborts before anything is copied unless renumber is set, in
// which case the local chain moves out of the way first and the push
// proceeds. Remote versions are never overwritten.
func (r *Replicator) Push(remote *Remote, renumber bool) (*PushResult, error) {
	project, err := r.Store.LoadProject()
	if err != nil {
		return nil, err
	}
	local, err := r.Store.LoadLocal()
	if err != nil {
		return nil, err
	}
	desc, err := remote.LoadDescriptor()
	if err != nil {
		return nil, err
	}
	if desc == nil {
		desc = &models.Descriptor{
			ProjectID:        project.ID,
			ProjectName:      project.Name,
			ArtifactName:     project.ArtifactName,
			ProjectCreatedAt: project.CreatedAt,
		}
	} else if err := checkIdentity(project, desc); err != nil {
		return nil, err
	}
	if err := remote.ensure(); err != nil {
		return nil, err
	}

	locals, err := r.localVersions()
	if err != nil {
		return nil, err
	}

	result := &PushResult{}
	if conflicts := findConflicts(locals, desc); len(conflicts) > 0 {
		if !renumber {
			c := conflicts[0]
			c.Hint = "another machine pushed this ordinal; rerun with --renumber to move the local chain, or abort"
			return nil, c
		}
		for _, c := range conflicts {
			moves, err := r.renumberChain(c.Branch, c.Ordinal, desc)
			if err != nil {
				return nil, err
			}
			result.Renumbered = append(result.Renumbered, moves...)
		}
		locals, err = r.localVersions()
		if err != nil {
			return nil, err
		}
	}

	// Artifacts and bundle land before the descriptor is published, so
	// a concurrent reader never sees an entry whose files are absent.
	for _, v := range locals {
		label := v.Branch + "/" + models.VersionDirName(v.Ordinal)
		rv := desc.FindVersion(v.Branch, v.Ordinal)
		switch {
		case rv == nil:
			if err := store.CopyTree(remote.TmpDir(),
				r.Store.VersionDir(v.Branch, v.Ordinal),
				remote.VersionDir(v.Branch, v.Ordinal)); err != nil {
				return nil, fmt.Errorf("failed to copy %s to remote: %w", label, err)
			}
			entry := models.DescriptorVersion{
				Branch:    v.Branch,
				Ordinal:   v.Ordinal,
				Parent:    v.Parent,
				ContentID: v.ContentID,
				Author:    v.Author,
				Message:   v.Message,
				CreatedAt: v.CreatedAt,
				Analyzed:  v.Analyzed,
				MachineID: local.MachineID,
			}
			if err := desc.AddVersion(entry); err != nil {
				return nil, err
			}
			result.Pushed = append(result.Pushed, label)
		case rv.ContentID == v.ContentID && v.Analyzed && !rv.Analyzed:
			// Propagate the analysis follow-up: same content, richer
			// slot (results bundle plus the flipped flag).
			if err := store.CopyTree(remote.TmpDir(),
				r.Store.VersionDir(v.Branch, v.Ordinal),
				remote.VersionDir(v.Branch, v.Ordinal)); err != nil {
				return nil, fmt.Errorf("failed to update %s on remote: %w", label, err)
			}
			rv.Analyzed = true
			result.Updated = append(result.Updated, label)
		}
	}

	branches, err := r.Store.ListBranches()
	if err != nil {
		return nil, err
	}
	for _, b := range branches {
		if desc.HasBranch(b.Name) {
			continue
		}
		desc.Branches = append(desc.Branches, models.DescriptorBranch{
			Name:          b.Name,
			ParentBranch:  b.ParentBranch,
			ParentVersion: b.ParentVersion,
			CreatedAt:     b.CreatedAt,
		})
		result.NewBranches = append(result.NewBranches, b.Name)
	}

	bundleTmp := filepath.Join(remote.TmpDir(), local.MachineID+".bundle")
	if err := r.Log.Bundle(bundleTmp); err != nil {
		return nil, err
	}
	if err := os.Rename(bundleTmp, remote.BundlePath(local.MachineID)); err != nil {
		return nil, fmt.Errorf("failed to publish history bundle: %w", err)
	}

	now := r.Now().UTC()
	desc.UpdatedAt = now
	desc.UpdatedBy = local.MachineID
	if err := remote.SaveDescriptor(desc); err != nil {
		return nil, err
	}

	local.LastPush = now
	if err := r.Store.SaveLocal(local); err != nil {
		return nil, err
	}
	r.Logger.Info("push",
		zap.String("remote", remote.Root),
		zap.Int("pushed", len(result.Pushed)),
		zap.Int("renumbered", len(result.Renumbered)))
	return result, nil
}
