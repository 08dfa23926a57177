package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"modelvault/internal/automation"
	"modelvault/internal/state"
)

// OpenResult reports a launched editor.
type OpenResult struct {
	Branch string `json:"branch"`
	PID    int    `json:"pid"`
}

// Open launches the editor on the active branch's working file through
// the collaborator and records the returned process id. An existing
// edit lock blocks the launch; clear it with Unlock first.
func (e *Engine) Open(ctx context.Context) (*OpenResult, error) {
	wc, err := e.resolveWorking("")
	if err != nil {
		return nil, err
	}
	if err := guard("open", wc); err != nil {
		return nil, err
	}

	insp, err := e.Auto.Run(ctx, automation.OpInspect, wc.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect working file: %w", err)
	}
	if insp.Locked {
		return nil, fmt.Errorf("working file on %s is locked by the editor; run 'modelvault unlock' first", wc.Branch)
	}

	res, err := e.Auto.Run(ctx, automation.OpOpen, wc.Path)
	if err != nil {
		return nil, err
	}
	if res.PID <= 0 {
		return nil, fmt.Errorf("automation open returned no process id")
	}
	wc.WS.EditorPID = &res.PID
	if err := e.Store.SaveWorkingState(wc.Branch, wc.WS); err != nil {
		return nil, err
	}
	e.Logger.Info("editor opened", zap.String("branch", wc.Branch), zap.Int("pid", res.PID))
	return &OpenResult{Branch: wc.Branch, PID: res.PID}, nil
}

// CloseResult reports a cleared editor record.
type CloseResult struct {
	Branch   string `json:"branch"`
	Orphaned bool   `json:"orphaned,omitempty"`
}

// Close ends the editor session. With a live editor the collaborator
// performs the close, which is not guaranteed dialog-free; a blocked
// close surfaces as an error and is never retried. With an orphaned
// record there is no process to close, so Close is the explicit
// recovery decision that clears the record.
func (e *Engine) Close(ctx context.Context) (*CloseResult, error) {
	wc, err := e.resolveWorking("")
	if err != nil {
		return nil, err
	}
	switch {
	case wc.Res.State.Open():
		if _, err := e.Auto.Run(ctx, automation.OpClose, wc.Path); err != nil {
			return nil, err
		}
	case wc.Res.State == state.Orphaned:
		// Process already gone; only the record needs clearing.
	default:
		return nil, fmt.Errorf("no editor is open on %s", wc.Branch)
	}

	wc.WS.EditorPID = nil
	if err := e.Store.SaveWorkingState(wc.Branch, wc.WS); err != nil {
		return nil, err
	}
	orphaned := wc.Res.State == state.Orphaned
	e.Logger.Info("editor closed", zap.String("branch", wc.Branch), zap.Bool("orphaned", orphaned))
	return &CloseResult{Branch: wc.Branch, Orphaned: orphaned}, nil
}

// Unlock clears an editor-applied edit lock on the working file after a
// fresh liveness check. The collaborator mutates the file, so the state
// reads modified afterwards.
func (e *Engine) Unlock(ctx context.Context) error {
	wc, err := e.resolveWorking("")
	if err != nil {
		return err
	}
	if err := guard("unlock", wc); err != nil {
		return err
	}
	if _, err := e.Auto.Run(ctx, automation.OpUnlock, wc.Path); err != nil {
		return err
	}
	e.Logger.Info("unlocked", zap.String("branch", wc.Branch))
	return nil
}
