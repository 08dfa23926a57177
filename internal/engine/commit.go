package engine

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"modelvault/internal/automation"
	"modelvault/internal/history"
	"modelvault/internal/models"
	"modelvault/internal/state"
	"modelvault/internal/store"
)

// CommitOptions configures a commit.
type CommitOptions struct {
	// Branch to commit on; empty means the active branch.
	Branch string
	// Message is the commit message.
	Message string
	// Analyze runs the isolated analysis phase after the base commit.
	Analyze bool
	// Force overrides the analyzed/locked refinement guards.
	Force bool
}

// CommitResult reports a created version.
type CommitResult struct {
	Branch        string   `json:"branch"`
	Ordinal       int      `json:"ordinal"`
	Parent        *int     `json:"parent"`
	ContentID     string   `json:"content_id"`
	Analyzed      bool     `json:"analyzed"`
	Warnings      []string `json:"warnings,omitempty"`
	AnalysisError string   `json:"analysis_error,omitempty"`
}

// Commit snapshots the working file into the next version slot, derives
// its text export through the collaborator, records the log entry, and
// moves the working file's base to the new version. The optional
// analysis phase runs strictly after the base commit, against the
// snapshot copy only; its failure never invalidates the commit.
func (e *Engine) Commit(ctx context.Context, opts CommitOptions) (*CommitResult, error) {
	if opts.Message == "" {
		return nil, fmt.Errorf("commit message is required")
	}
	wc, err := e.resolveWorking(opts.Branch)
	if err != nil {
		return nil, err
	}
	if err := guard("commit", wc); err != nil {
		return nil, err
	}

	var warnings []string
	if wc.Res.State == state.Clean {
		warnings = append(warnings, fmt.Sprintf(
			"working file is unchanged since %s; committing an identical snapshot",
			basedOnLabel(wc.WS.BasedOn)))
	}

	// Expensive refinement, performed only here and not on every
	// resolve: an edit lock or analysis results demand an explicit
	// override before they are snapshotted over.
	insp, err := e.Auto.Run(ctx, automation.OpInspect, wc.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect working file: %w", err)
	}
	if insp.Locked && !opts.Force {
		return nil, fmt.Errorf("working file on %s is locked by the editor; run 'modelvault unlock' or pass --force", wc.Branch)
	}
	if insp.Analyzed && !opts.Force {
		return nil, fmt.Errorf("working file on %s carries analysis results; pass --force to commit the analyzed model", wc.Branch)
	}

	ordinal, err := e.nextOrdinal(wc.Branch)
	if err != nil {
		return nil, err
	}

	size, err := store.FileSize(wc.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to size working file: %w", err)
	}
	if err := store.CheckDiskSpace(e.Store.Root, uint64(size)+e.FreeMargin); err != nil {
		return nil, err
	}

	slotArtifact := e.Store.VersionArtifactPath(wc.Branch, ordinal, wc.Project.ArtifactName)
	if err := e.Store.CopyFileAtomic(wc.Path, slotArtifact); err != nil {
		return nil, fmt.Errorf("failed to snapshot working file: %w", err)
	}
	cleanup := func() { os.RemoveAll(e.Store.VersionDir(wc.Branch, ordinal)) }

	contentID, err := store.HashFile(slotArtifact)
	if err != nil {
		cleanup()
		return nil, err
	}

	if _, err := e.Auto.Run(ctx, automation.OpExport, slotArtifact); err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to derive text export: %w", err)
	}

	version := &models.Version{
		Ordinal:   ordinal,
		Parent:    wc.WS.BasedOn,
		Message:   opts.Message,
		Author:    e.Author,
		CreatedAt: e.Now().UTC(),
		ContentID: contentID,
	}
	if err := e.Store.SaveVersion(wc.Branch, version); err != nil {
		cleanup()
		return nil, err
	}

	if err := e.recordVersionEntry(wc.Branch, version, wc.Project.ArtifactName, false, opts.Message); err != nil {
		cleanup()
		return nil, err
	}

	wc.WS.BasedOn = &ordinal
	wc.WS.LastSynced = e.Now()
	if err := e.Store.SaveWorkingState(wc.Branch, wc.WS); err != nil {
		return nil, err
	}

	e.Logger.Info("commit",
		zap.String("branch", wc.Branch),
		zap.Int("ordinal", ordinal),
		zap.String("content_id", contentID))

	result := &CommitResult{
		Branch:    wc.Branch,
		Ordinal:   ordinal,
		Parent:    version.Parent,
		ContentID: contentID,
		Warnings:  warnings,
	}

	if opts.Analyze {
		if err := e.runAnalysis(ctx, wc.Branch, version, wc.Project.ArtifactName); err != nil {
			// The base commit stands; the analysis marker is simply
			// absent and the pass can be retried with 'analyze'.
			e.Logger.Warn("analysis failed",
				zap.String("branch", wc.Branch),
				zap.Int("ordinal", ordinal),
				zap.Error(err))
			result.AnalysisError = err.Error()
			return result, nil
		}
		result.Analyzed = true
	}
	return result, nil
}

// Analyze retries the analysis pass for an existing version. The pass
// runs against the snapshot copy and never touches the working file.
func (e *Engine) Analyze(ctx context.Context, branch string, ordinal int) (*models.Version, error) {
	if branch == "" {
		local, err := e.Store.LoadLocal()
		if err != nil {
			return nil, err
		}
		branch = local.ActiveBranch
	}
	project, err := e.Store.LoadProject()
	if err != nil {
		return nil, err
	}
	version, err := e.Store.LoadVersion(branch, ordinal)
	if err != nil {
		return nil, err
	}
	if version.Analyzed {
		return version, nil
	}
	if err := e.runAnalysis(ctx, branch, version, project.ArtifactName); err != nil {
		return nil, err
	}
	return version, nil
}

// runAnalysis executes the collaborator's analysis against a version
// slot, flips the analyzed flag, and appends the internally-tagged
// marker entry to the log.
func (e *Engine) runAnalysis(ctx context.Context, branch string, version *models.Version, artifact string) error {
	slotArtifact := e.Store.VersionArtifactPath(branch, version.Ordinal, artifact)
	if _, err := e.Auto.Run(ctx, automation.OpAnalyze, slotArtifact); err != nil {
		return err
	}
	version.Analyzed = true
	if err := e.Store.SaveVersion(branch, version); err != nil {
		return err
	}
	if err := e.recordVersionEntry(branch, version, artifact, true, "analysis recorded"); err != nil {
		return err
	}
	e.Logger.Info("analysis recorded",
		zap.String("branch", branch),
		zap.Int("ordinal", version.Ordinal))
	return nil
}

// recordVersionEntry stages a version's metadata (and, for user
// commits, its text export) into the log and commits one entry.
func (e *Engine) recordVersionEntry(branch string, version *models.Version, artifact string, internal bool, message string) error {
	rel := models.LogEntryPath(branch, version.Ordinal, store.VersionFile)
	if err := e.Log.StageFile(rel, e.Store.VersionMetaPath(branch, version.Ordinal)); err != nil {
		return err
	}
	if !internal {
		exportRel := models.LogEntryPath(branch, version.Ordinal, models.ExportName(artifact))
		if err := e.Log.StageFile(exportRel, e.Store.VersionExportPath(branch, version.Ordinal, artifact)); err != nil {
			return err
		}
	}
	subject := history.VersionSubject(branch, version.Ordinal, message)
	if err := e.Log.Commit(subject, "", e.Author, version.CreatedAt, internal); err != nil {
		return err
	}
	return nil
}

// basedOnLabel renders a nullable base ordinal for messages.
func basedOnLabel(basedOn *int) string {
	if basedOn == nil {
		return "its base"
	}
	return models.VersionDirName(*basedOn)
}
