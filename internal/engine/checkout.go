package engine

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"modelvault/internal/models"
)

// CheckoutResult reports a completed checkout.
type CheckoutResult struct {
	Branch    string `json:"branch"`
	Ordinal   int    `json:"ordinal"`
	Switched  bool   `json:"switched,omitempty"`
	Discarded bool   `json:"discarded,omitempty"`
}

// Checkout restores a branch's working file to exactly match a version's
// artifact. Uncommitted changes are a hard decision gate: the caller
// must commit, stash, or explicitly discard before the copy proceeds,
// because the overwrite is irreversible. A cross-branch ref composes
// switch-then-checkout, aborting before any mutation if either side's
// editor is live.
func (e *Engine) Checkout(ref models.VersionRef, discard bool) (*CheckoutResult, error) {
	local, err := e.Store.LoadLocal()
	if err != nil {
		return nil, err
	}
	target := ref.Branch
	if target == "" {
		target = local.ActiveBranch
	}
	cross := target != local.ActiveBranch

	if cross {
		current, err := e.resolveWorking(local.ActiveBranch)
		if err != nil {
			return nil, err
		}
		if err := guard("switch", current); err != nil {
			return nil, err
		}
	}

	wc, err := e.resolveWorking(target)
	if err != nil {
		return nil, err
	}
	if err := guard("checkout", wc); err != nil {
		return nil, err
	}
	if wc.Res.State.Dirty() && !discard {
		return nil, blocked("checkout", target, wc.Res.State)
	}

	if _, err := e.Store.LoadVersion(target, ref.Ordinal); err != nil {
		return nil, err
	}
	slotArtifact := e.Store.VersionArtifactPath(target, ref.Ordinal, wc.Project.ArtifactName)
	if err := e.Store.CopyFileAtomic(slotArtifact, wc.Path); err != nil {
		return nil, fmt.Errorf("failed to restore %s: %w", ref, err)
	}

	ordinal := ref.Ordinal
	wc.WS.BasedOn = &ordinal
	wc.WS.LastSynced = e.Now()
	wc.WS.EditorPID = nil
	if err := e.Store.SaveWorkingState(target, wc.WS); err != nil {
		return nil, err
	}
	if cross {
		local.ActiveBranch = target
		if err := e.Store.SaveLocal(local); err != nil {
			return nil, err
		}
	}

	e.Logger.Info("checkout",
		zap.String("branch", target),
		zap.Int("ordinal", ordinal),
		zap.Bool("discarded", discard && wc.Res.State.Dirty()))
	return &CheckoutResult{
		Branch:    target,
		Ordinal:   ordinal,
		Switched:  cross,
		Discarded: discard && wc.Res.State.Dirty(),
	}, nil
}

// StashResult reports a stash mutation.
type StashResult struct {
	Branch   string `json:"branch"`
	BasedOn  *int   `json:"based_on"`
	Restored bool   `json:"restored,omitempty"`
}

// StashSave relocates the working file into the branch's stash slot.
// When the file was tracking a version, that version's artifact is
// restored as the fresh working file; an untracked save leaves the slot
// empty until pop.
func (e *Engine) StashSave(overwrite bool) (*StashResult, error) {
	wc, err := e.resolveWorking("")
	if err != nil {
		return nil, err
	}
	if err := guard("stash", wc); err != nil {
		return nil, err
	}
	existing, err := e.Store.LoadStash(wc.Branch)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if !overwrite {
			return nil, ErrStashExists
		}
		if err := e.Store.DropStash(wc.Branch); err != nil {
			return nil, err
		}
	}

	stash := &models.Stash{
		BasedOn:    wc.WS.BasedOn,
		LastSynced: wc.WS.LastSynced,
		SavedAt:    e.Now().UTC(),
	}
	if err := e.Store.SaveStash(wc.Branch, stash); err != nil {
		return nil, err
	}
	stashFile := e.Store.StashFilePath(wc.Branch, wc.Project.ArtifactName)
	if err := os.Rename(wc.Path, stashFile); err != nil {
		return nil, fmt.Errorf("failed to move working file into stash: %w", err)
	}

	result := &StashResult{Branch: wc.Branch, BasedOn: stash.BasedOn}
	if wc.WS.BasedOn != nil {
		base := e.Store.VersionArtifactPath(wc.Branch, *wc.WS.BasedOn, wc.Project.ArtifactName)
		if err := e.Store.CopyFileAtomic(base, wc.Path); err != nil {
			return nil, fmt.Errorf("failed to restore base version: %w", err)
		}
		wc.WS.LastSynced = e.Now()
		result.Restored = true
	} else {
		wc.WS = models.WorkingState{}
	}
	if err := e.Store.SaveWorkingState(wc.Branch, wc.WS); err != nil {
		return nil, err
	}
	e.Logger.Info("stash saved", zap.String("branch", wc.Branch))
	return result, nil
}

// StashPop restores the stashed file as the working file and clears the
// slot. The current working file is overwritten, so uncommitted changes
// demand the same explicit discard decision as checkout.
func (e *Engine) StashPop(discard bool) (*StashResult, error) {
	wc, err := e.resolveWorking("")
	if err != nil {
		return nil, err
	}
	if err := guard("stash-pop", wc); err != nil {
		return nil, err
	}
	if wc.Res.State.Dirty() && !discard {
		return nil, blocked("stash-pop", wc.Branch, wc.Res.State)
	}
	stash, err := e.Store.LoadStash(wc.Branch)
	if err != nil {
		return nil, err
	}
	if stash == nil {
		return nil, ErrNoStash
	}
	stashFile := e.Store.StashFilePath(wc.Branch, wc.Project.ArtifactName)
	if _, err := os.Stat(stashFile); err != nil {
		return nil, fmt.Errorf("stash entry is missing its artifact: %w", err)
	}

	if err := os.Rename(stashFile, wc.Path); err != nil {
		return nil, fmt.Errorf("failed to restore stash: %w", err)
	}
	wc.WS.BasedOn = stash.BasedOn
	wc.WS.LastSynced = stash.LastSynced
	wc.WS.EditorPID = nil
	if err := e.Store.SaveWorkingState(wc.Branch, wc.WS); err != nil {
		return nil, err
	}
	if err := e.Store.DropStash(wc.Branch); err != nil {
		return nil, err
	}
	e.Logger.Info("stash popped", zap.String("branch", wc.Branch))
	return &StashResult{Branch: wc.Branch, BasedOn: stash.BasedOn}, nil
}

// StashDrop discards the stash entry without restoring it.
func (e *Engine) StashDrop() error {
	local, err := e.Store.LoadLocal()
	if err != nil {
		return err
	}
	stash, err := e.Store.LoadStash(local.ActiveBranch)
	if err != nil {
		return err
	}
	if stash == nil {
		return ErrNoStash
	}
	if err := e.Store.DropStash(local.ActiveBranch); err != nil {
		return err
	}
	e.Logger.Info("stash dropped", zap.String("branch", local.ActiveBranch))
	return nil
}
