package engine

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"modelvault/internal/models"
	"modelvault/internal/state"
	"modelvault/internal/store"
)

// BranchCreate creates a branch whose working file is copied from an
// existing version. fromRef accepts "branch", "vN" or "branch/vN";
// empty means the active branch's latest version. The new branch starts
// untracked: its content matches the source version, but nothing has
// been committed on the branch itself yet.
func (e *Engine) BranchCreate(name, fromRef, description string) (*models.Branch, error) {
	if err := models.ValidateBranchName(name); err != nil {
		return nil, err
	}
	if e.Store.BranchExists(name) {
		return nil, fmt.Errorf("branch %s already exists", name)
	}
	project, err := e.Store.LoadProject()
	if err != nil {
		return nil, err
	}
	local, err := e.Store.LoadLocal()
	if err != nil {
		return nil, err
	}

	srcBranch, srcOrdinal := local.ActiveBranch, 0
	switch {
	case fromRef == "":
	case e.Store.BranchExists(fromRef):
		srcBranch = fromRef
	default:
		ref, err := models.ParseVersionRef(fromRef)
		if err != nil {
			return nil, fmt.Errorf("unknown branch or version %q", fromRef)
		}
		if ref.Branch != "" {
			srcBranch = ref.Branch
		}
		srcOrdinal = ref.Ordinal
	}
	if srcOrdinal == 0 {
		srcOrdinal, err = e.latestVersion(srcBranch)
		if err != nil {
			return nil, err
		}
		if srcOrdinal == 0 {
			return nil, fmt.Errorf("branch %s has no versions to branch from", srcBranch)
		}
	}
	if _, err := e.Store.LoadVersion(srcBranch, srcOrdinal); err != nil {
		return nil, err
	}

	srcArtifact := e.Store.VersionArtifactPath(srcBranch, srcOrdinal, project.ArtifactName)
	size, err := store.FileSize(srcArtifact)
	if err != nil {
		return nil, fmt.Errorf("failed to size source artifact: %w", err)
	}
	if err := store.CheckDiskSpace(e.Store.Root, uint64(size)+e.FreeMargin); err != nil {
		return nil, err
	}

	branch := &models.Branch{
		Name:          name,
		ParentBranch:  srcBranch,
		ParentVersion: srcOrdinal,
		Description:   description,
		CreatedAt:     e.Now().UTC(),
	}
	if err := e.Store.SaveBranch(branch); err != nil {
		return nil, err
	}
	if err := e.Store.CopyFileAtomic(srcArtifact, e.Store.WorkingFilePath(name, project.ArtifactName)); err != nil {
		return nil, err
	}
	if err := e.Store.SaveWorkingState(name, models.WorkingState{}); err != nil {
		return nil, err
	}

	subject := fmt.Sprintf("create branch %s from %s/%s", name, srcBranch, models.VersionDirName(srcOrdinal))
	if err := e.Log.Commit(subject, "", e.Author, branch.CreatedAt, true); err != nil {
		return nil, err
	}

	e.Logger.Info("branch created",
		zap.String("branch", name),
		zap.String("from", srcBranch),
		zap.Int("version", srcOrdinal))
	return branch, nil
}

// BranchDelete removes a branch tree. The active branch cannot be
// deleted, nor one whose editor is live. Without force, unmerged work
// blocks deletion: uncommitted changes, a stash entry, or versions the
// remote descriptor does not hold.
func (e *Engine) BranchDelete(name string, remote *models.Descriptor, force bool) error {
	local, err := e.Store.LoadLocal()
	if err != nil {
		return err
	}
	if name == local.ActiveBranch {
		return fmt.Errorf("cannot delete the active branch %s (switch away first)", name)
	}
	wc, err := e.resolveWorking(name)
	if err != nil {
		return err
	}
	if wc.Res.State.Open() {
		return blocked("delete", name, wc.Res.State)
	}

	if !force {
		var unmerged []string
		if wc.Res.State.Dirty() {
			unmerged = append(unmerged, "uncommitted changes")
		}
		stash, err := e.Store.LoadStash(name)
		if err != nil {
			return err
		}
		if stash != nil {
			unmerged = append(unmerged, "a stash entry")
		}
		unpushed, err := e.unpushedVersions(name, remote)
		if err != nil {
			return err
		}
		if n := len(unpushed); n > 0 {
			unmerged = append(unmerged, fmt.Sprintf("%d version(s) not on the remote", n))
		}
		if len(unmerged) > 0 {
			return fmt.Errorf("branch %s has unmerged work: %s (pass --force to delete anyway)",
				name, strings.Join(unmerged, ", "))
		}
	}

	if err := e.Store.DeleteBranch(name); err != nil {
		return err
	}
	if err := e.Log.RemovePath(name); err != nil {
		return err
	}
	if err := e.Log.Commit("delete branch "+name, "", e.Author, e.Now().UTC(), true); err != nil {
		return err
	}
	e.Logger.Info("branch deleted", zap.String("branch", name), zap.Bool("force", force))
	return nil
}

// unpushedVersions lists ordinals the remote descriptor does not hold
// with matching content. A nil descriptor counts everything as
// unpushed.
func (e *Engine) unpushedVersions(branch string, remote *models.Descriptor) ([]int, error) {
	ordinals, err := e.Store.ListVersionOrdinals(branch)
	if err != nil {
		return nil, err
	}
	var out []int
	for _, n := range ordinals {
		v, err := e.Store.LoadVersion(branch, n)
		if err != nil {
			if store.IsNotFound(err) {
				out = append(out, n)
				continue
			}
			return nil, err
		}
		if remote == nil {
			out = append(out, n)
			continue
		}
		rv := remote.FindVersion(branch, n)
		if rv == nil || rv.ContentID != v.ContentID {
			out = append(out, n)
		}
	}
	return out, nil
}

// SwitchResult reports a branch switch.
type SwitchResult struct {
	Branch  string `json:"branch"`
	Warning string `json:"warning,omitempty"`
}

// Switch changes the active-branch pointer. No artifact moves: each
// branch owns its working file. Blocked while the current branch's
// editor is live; uncommitted state only warns.
func (e *Engine) Switch(name string) (*SwitchResult, error) {
	local, err := e.Store.LoadLocal()
	if err != nil {
		return nil, err
	}
	if name == local.ActiveBranch {
		return &SwitchResult{Branch: name, Warning: "already on " + name}, nil
	}
	if !e.Store.BranchExists(name) {
		return nil, &store.NotFoundError{Kind: "branch", Name: name}
	}
	wc, err := e.resolveWorking(local.ActiveBranch)
	if err != nil {
		return nil, err
	}
	if err := guard("switch", wc); err != nil {
		return nil, err
	}

	result := &SwitchResult{Branch: name}
	if wc.Res.State == state.Modified || wc.Res.State == state.Untracked {
		result.Warning = fmt.Sprintf("branch %s has uncommitted changes; they stay on its working file", wc.Branch)
	}

	local.ActiveBranch = name
	if err := e.Store.SaveLocal(local); err != nil {
		return nil, err
	}
	e.Logger.Info("switch", zap.String("from", wc.Branch), zap.String("to", name))
	return result, nil
}

// BranchInfo is one row of the branch listing.
type BranchInfo struct {
	models.Branch
	Active   bool `json:"active"`
	Latest   int  `json:"latest_version"`
	Versions int  `json:"version_count"`
}

// Branches lists all branches with their version counts.
func (e *Engine) Branches() ([]BranchInfo, error) {
	local, err := e.Store.LoadLocal()
	if err != nil {
		return nil, err
	}
	branches, err := e.Store.ListBranches()
	if err != nil {
		return nil, err
	}
	out := make([]BranchInfo, 0, len(branches))
	for _, b := range branches {
		ordinals, err := e.Store.ListVersionOrdinals(b.Name)
		if err != nil {
			return nil, err
		}
		latest := 0
		if len(ordinals) > 0 {
			latest = ordinals[len(ordinals)-1]
		}
		out = append(out, BranchInfo{
			Branch:   *b,
			Active:   b.Name == local.ActiveBranch,
			Latest:   latest,
			Versions: len(ordinals),
		})
	}
	return out, nil
}
