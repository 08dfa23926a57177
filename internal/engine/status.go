package engine

import (
	"modelvault/internal/models"
	"modelvault/internal/state"
	"modelvault/internal/store"
)

// Status is the queryable state snapshot consumed by presentation
// layers. Resolution stays constant-time: only metadata records are
// read, never artifact contents.
type Status struct {
	Project       string        `json:"project"`
	Branch        string        `json:"branch"`
	Artifact      string        `json:"artifact"`
	State         state.State   `json:"state"`
	BasedOn       *int          `json:"based_on"`
	BaseAnalyzed  bool          `json:"base_analyzed,omitempty"`
	LatestVersion int           `json:"latest_version"`
	EditorPID     *int          `json:"editor_pid,omitempty"`
	Stash         *models.Stash `json:"stash,omitempty"`
	Hint          string        `json:"hint,omitempty"`
}

// Status resolves the active branch's current snapshot.
func (e *Engine) Status() (*Status, error) {
	wc, err := e.resolveWorking("")
	if err != nil {
		return nil, err
	}
	latest, err := e.latestVersion(wc.Branch)
	if err != nil {
		return nil, err
	}
	stash, err := e.Store.LoadStash(wc.Branch)
	if err != nil {
		return nil, err
	}

	st := &Status{
		Project:       wc.Project.Name,
		Branch:        wc.Branch,
		Artifact:      wc.Project.ArtifactName,
		State:         wc.Res.State,
		BasedOn:       wc.WS.BasedOn,
		LatestVersion: latest,
		EditorPID:     wc.WS.EditorPID,
		Stash:         stash,
	}
	if wc.WS.BasedOn != nil {
		if base, err := e.Store.LoadVersion(wc.Branch, *wc.WS.BasedOn); err == nil {
			st.BaseAnalyzed = base.Analyzed
		}
	}
	switch wc.Res.State {
	case state.Missing, state.Orphaned:
		st.Hint = remediation(wc.Res.State)
	}
	return st, nil
}

// Versions lists a branch's complete version records ascending. Slots
// left partial by an interrupted commit are skipped here; Verify
// reports them.
func (e *Engine) Versions(branch string) ([]*models.Version, error) {
	if branch == "" {
		local, err := e.Store.LoadLocal()
		if err != nil {
			return nil, err
		}
		branch = local.ActiveBranch
	}
	ordinals, err := e.Store.ListVersionOrdinals(branch)
	if err != nil {
		return nil, err
	}
	var out []*models.Version
	for _, n := range ordinals {
		v, err := e.Store.LoadVersion(branch, n)
		if err != nil {
			if store.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
