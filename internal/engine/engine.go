// Package engine orchestrates commits, branches, checkouts, stashes and
// editor lifecycle over the store and the history log. Every operation
// resolves the working state first and consults a fixed permission
// table before mutating anything; callers hold the project lock for the
// duration of a mutating call.
package engine

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"modelvault/internal/automation"
	"modelvault/internal/history"
	"modelvault/internal/models"
	"modelvault/internal/proc"
	"modelvault/internal/state"
	"modelvault/internal/store"
)

// Engine wires the store, the history log and the collaborator.
type Engine struct {
	Store *store.Store
	Log   *history.Log
	Auto  automation.Runner

	// Alive probes editor liveness; defaults to the OS check.
	Alive state.AliveFunc
	// Author is the "Name <email>" recorded on commits.
	Author string
	// FreeMargin is the disk-space safety margin for copy preflights.
	FreeMargin uint64
	// Logger receives structured operation logs; never user-facing.
	Logger *zap.Logger
	// Now is the clock, injectable for tests.
	Now func() time.Time
}

// New creates an engine with OS liveness, a no-op logger and the real
// clock; callers override fields as needed.
func New(s *store.Store, l *history.Log, auto automation.Runner) *Engine {
	return &Engine{
		Store:  s,
		Log:    l,
		Auto:   auto,
		Alive:  proc.Alive,
		Logger: zap.NewNop(),
		Now:    time.Now,
	}
}

// context bundles everything an operation needs about one branch's
// working file, resolved fresh at operation entry.
type workingContext struct {
	Project *models.Project
	Branch  string
	WS      models.WorkingState
	Res     state.Resolution
	Path    string
}

// resolveWorking loads the project and the branch's working metadata
// and resolves the current state. An empty branch means the active one.
func (e *Engine) resolveWorking(branch string) (*workingContext, error) {
	project, err := e.Store.LoadProject()
	if err != nil {
		return nil, err
	}
	if branch == "" {
		local, err := e.Store.LoadLocal()
		if err != nil {
			return nil, err
		}
		branch = local.ActiveBranch
	}
	if !e.Store.BranchExists(branch) {
		return nil, &store.NotFoundError{Kind: "branch", Name: branch}
	}
	ws, err := e.Store.LoadWorkingState(branch)
	if err != nil {
		return nil, err
	}
	path := e.Store.WorkingFilePath(branch, project.ArtifactName)
	res, err := state.Resolve(path, ws, e.Alive)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve state for %s: %w", branch, err)
	}
	return &workingContext{
		Project: project,
		Branch:  branch,
		WS:      ws,
		Res:     res,
		Path:    path,
	}, nil
}

// nextOrdinal allocates the next version ordinal for a branch. Both the
// store and the full history are consulted so that ordinals recorded by
// a deleted incarnation of the branch are never reused.
func (e *Engine) nextOrdinal(branch string) (int, error) {
	storeMax, err := e.Store.MaxOrdinal(branch)
	if err != nil {
		return 0, err
	}
	logMax, err := e.Log.MaxOrdinal(branch)
	if err != nil {
		return 0, err
	}
	if logMax > storeMax {
		storeMax = logMax
	}
	return storeMax + 1, nil
}

// latestVersion returns a branch's highest present ordinal, or 0.
func (e *Engine) latestVersion(branch string) (int, error) {
	return e.Store.MaxOrdinal(branch)
}
