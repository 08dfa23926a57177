package replicate

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"modelvault/internal/history"
	"modelvault/internal/models"
	"modelvault/internal/store"
)

// PullResult reports what a pull brought in.
type PullResult struct {
	Imported    []string `json:"imported,omitempty"`
	Updated     []string `json:"updated,omitempty"`
	NewBranches []string `json:"new_branches,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
}

// Pull imports every version the descriptor reports that is absent
// locally: the artifact slot is copied and hash-verified, then a log
// entry is recorded under the original author and date. Analysis
// follow-ups published by other machines are folded into versions we
// already hold. Branches that exist only remotely are created, and a
// freshly created branch gets its working file materialized from its
// newest imported version. Working files of existing branches are never
// touched; use checkout to move to an imported version.
func (r *Replicator) Pull(remote *Remote) (*PullResult, error) {
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
		return nil, fmt.Errorf("remote %s has no descriptor: nothing has been pushed yet", remote.Root)
	}
	if err := checkIdentity(project, desc); err != nil {
		return nil, err
	}

	// A collision means both sides hold different content under the
	// same ordinal; importing would shadow local work, so stop before
	// anything lands.
	locals, err := r.localVersions()
	if err != nil {
		return nil, err
	}
	if conflicts := findConflicts(locals, desc); len(conflicts) > 0 {
		c := conflicts[0]
		c.Hint = "run 'modelvault push --renumber' to move the local chain, then pull again"
		return nil, c
	}

	result := &PullResult{}
	created := make(map[string]bool)
	for _, db := range desc.Branches {
		if r.Store.BranchExists(db.Name) {
			continue
		}
		b := &models.Branch{
			Name:          db.Name,
			ParentBranch:  db.ParentBranch,
			ParentVersion: db.ParentVersion,
			CreatedAt:     db.CreatedAt,
		}
		if err := r.Store.SaveBranch(b); err != nil {
			return nil, err
		}
		if err := r.Store.SaveWorkingState(db.Name, models.WorkingState{}); err != nil {
			return nil, err
		}
		created[db.Name] = true
		result.NewBranches = append(result.NewBranches, db.Name)
	}

	// Ascending per branch so imported log entries read in commit order.
	versions := append([]models.DescriptorVersion(nil), desc.Versions...)
	sort.Slice(versions, func(i, j int) bool {
		if versions[i].Branch != versions[j].Branch {
			return versions[i].Branch < versions[j].Branch
		}
		return versions[i].Ordinal < versions[j].Ordinal
	})

	latest := make(map[string]int)
	for _, rv := range versions {
		label := rv.Branch + "/" + models.VersionDirName(rv.Ordinal)
		if !r.Store.BranchExists(rv.Branch) {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("skipping %s: descriptor does not declare branch %s", label, rv.Branch))
			continue
		}
		if r.Store.VersionExists(rv.Branch, rv.Ordinal) {
			v, err := r.Store.LoadVersion(rv.Branch, rv.Ordinal)
			if err != nil || rv.ContentID != v.ContentID || !rv.Analyzed || v.Analyzed {
				continue
			}
			// Analysis follow-up: same content, richer slot. Fold it in
			// and append the same internal marker a local analysis
			// records.
			if err := r.updateSlot(remote, project.ArtifactName, rv, label); err != nil {
				return nil, err
			}
			rel := models.LogEntryPath(rv.Branch, rv.Ordinal, store.VersionFile)
			if err := r.Log.StageFile(rel, r.Store.VersionMetaPath(rv.Branch, rv.Ordinal)); err != nil {
				return nil, err
			}
			subject := history.VersionSubject(rv.Branch, rv.Ordinal, "analysis recorded")
			if err := r.Log.Commit(subject, "", rv.Author, rv.CreatedAt, true); err != nil {
				return nil, err
			}
			result.Updated = append(result.Updated, label)
			continue
		}
		if err := r.importSlot(remote, project.ArtifactName, rv, label); err != nil {
			return nil, err
		}
		if err := r.recordImport(project.ArtifactName, rv); err != nil {
			return nil, err
		}
		result.Imported = append(result.Imported, label)
		if rv.Ordinal > latest[rv.Branch] {
			latest[rv.Branch] = rv.Ordinal
		}
	}

	// A branch born from this pull has no working file yet; seed it
	// from its newest version so it starts out clean and usable. A
	// branch with no versions of its own is seeded untracked from its
	// recorded creation origin, the same state branch creation leaves
	// behind.
	names := make([]string, 0, len(created))
	for name := range created {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		srcBranch := name
		ordinal, imported := latest[name]
		if !imported {
			b, err := r.Store.LoadBranch(name)
			if err != nil || b.ParentBranch == "" || !r.Store.VersionExists(b.ParentBranch, b.ParentVersion) {
				continue
			}
			srcBranch, ordinal = b.ParentBranch, b.ParentVersion
		}
		src := r.Store.VersionArtifactPath(srcBranch, ordinal, project.ArtifactName)
		dst := r.Store.WorkingFilePath(name, project.ArtifactName)
		if err := r.Store.CopyFileAtomic(src, dst); err != nil {
			return nil, fmt.Errorf("failed to materialize working file for %s: %w", name, err)
		}
		// The sync point is taken after the copy so it trails the
		// working file's modtime, same as checkout.
		var ws models.WorkingState
		if imported {
			n := ordinal
			ws = models.WorkingState{BasedOn: &n, LastSynced: r.Now()}
		}
		if err := r.Store.SaveWorkingState(name, ws); err != nil {
			return nil, err
		}
	}

	result.Warnings = append(result.Warnings, r.fetchPeerBundles(remote, local.MachineID)...)

	local.LastPull = r.Now().UTC()
	if err := r.Store.SaveLocal(local); err != nil {
		return nil, err
	}
	r.Logger.Info("pull",
		zap.String("remote", remote.Root),
		zap.Int("imported", len(result.Imported)),
		zap.Int("new_branches", len(result.NewBranches)))
	return result, nil
}

// importSlot copies one version slot from the remote and verifies the
// artifact against the descriptor's content id. A failed verification
// removes the slot again: a corrupt remote must not leave local state
// behind.
func (r *Replicator) importSlot(remote *Remote, artifact string, rv models.DescriptorVersion, label string) error {
	slot := r.Store.VersionDir(rv.Branch, rv.Ordinal)
	if err := store.CopyTree(r.Store.TmpDir(), remote.VersionDir(rv.Branch, rv.Ordinal), slot); err != nil {
		return fmt.Errorf("failed to copy %s from remote: %w", label, err)
	}
	sum, err := store.HashFile(r.Store.VersionArtifactPath(rv.Branch, rv.Ordinal, artifact))
	if err != nil {
		os.RemoveAll(slot)
		return fmt.Errorf("failed to verify %s: %w", label, err)
	}
	if sum != rv.ContentID {
		os.RemoveAll(slot)
		return fmt.Errorf(
			"refusing to import %s: artifact content %.12s does not match the descriptor's %.12s (corrupt or tampered remote)",
			label, sum, rv.ContentID)
	}
	return nil
}

// updateSlot folds an analysis follow-up into a slot we already hold.
// Unlike importSlot there is good local state to protect, so the remote
// artifact is verified in place before anything is copied over it.
func (r *Replicator) updateSlot(remote *Remote, artifact string, rv models.DescriptorVersion, label string) error {
	sum, err := store.HashFile(filepath.Join(remote.VersionDir(rv.Branch, rv.Ordinal), artifact))
	if err != nil {
		return fmt.Errorf("failed to verify %s: %w", label, err)
	}
	if sum != rv.ContentID {
		return fmt.Errorf(
			"refusing to update %s: artifact content %.12s does not match the descriptor's %.12s (corrupt or tampered remote)",
			label, sum, rv.ContentID)
	}
	if err := store.CopyTree(r.Store.TmpDir(), remote.VersionDir(rv.Branch, rv.Ordinal), r.Store.VersionDir(rv.Branch, rv.Ordinal)); err != nil {
		return fmt.Errorf("failed to update %s from remote: %w", label, err)
	}
	return nil
}

// recordImport appends one log entry for an imported version, staged
// the same way a local commit stages: metadata plus text export, under
// the original author and creation date.
func (r *Replicator) recordImport(artifact string, rv models.DescriptorVersion) error {
	rel := models.LogEntryPath(rv.Branch, rv.Ordinal, store.VersionFile)
	if err := r.Log.StageFile(rel, r.Store.VersionMetaPath(rv.Branch, rv.Ordinal)); err != nil {
		return err
	}
	exportSrc := r.Store.VersionExportPath(rv.Branch, rv.Ordinal, artifact)
	if _, err := os.Stat(exportSrc); err == nil {
		exportRel := models.LogEntryPath(rv.Branch, rv.Ordinal, models.ExportName(artifact))
		if err := r.Log.StageFile(exportRel, exportSrc); err != nil {
			return err
		}
	}
	body := ""
	if rv.MachineID != "" {
		body = "imported from machine " + rv.MachineID
	}
	subject := history.VersionSubject(rv.Branch, rv.Ordinal, rv.Message)
	return r.Log.Commit(subject, body, rv.Author, rv.CreatedAt, false)
}

// fetchPeerBundles anchors every other machine's published history under
// peer refs. Failures are reported, not fatal: the versions themselves
// already imported through the descriptor.
func (r *Replicator) fetchPeerBundles(remote *Remote, selfID string) []string {
	entries, err := os.ReadDir(remote.LogDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return []string{fmt.Sprintf("failed to list remote history bundles: %v", err)}
	}
	var warnings []string
	for _, ent := range entries {
		name := ent.Name()
		if !strings.HasSuffix(name, ".bundle") {
			continue
		}
		peer := strings.TrimSuffix(name, ".bundle")
		if peer == selfID {
			continue
		}
		if err := r.Log.FetchBundle(filepath.Join(remote.LogDir(), name), peer); err != nil {
			warnings = append(warnings, fmt.Sprintf("failed to fetch history bundle from %s: %v", peer, err))
		}
	}
	return warnings
}
