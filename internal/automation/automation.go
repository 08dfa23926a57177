// Package automation invokes the external collaborator that knows how
// to drive the proprietary modeling software. The contract is single
// shot: one subprocess per operation, human-readable progress lines on
// stderr, one JSON result payload on stdout. The collaborator is never
// assumed to be running already, and a nonzero exit or malformed payload
// is an operation failure, not partial success.
package automation

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// Op names a collaborator operation.
type Op string

const (
	// OpExport derives the text export next to a snapshot artifact.
	OpExport Op = "export"
	// OpAnalyze runs the analysis pass against a snapshot artifact,
	// writing its result bundle into an analysis/ directory beside it.
	OpAnalyze Op = "analyze"
	// OpInspect reports the expensive refinements of a live artifact:
	// analysis markers and editor-applied edit locks.
	OpInspect Op = "inspect"
	// OpOpen launches the editor on the working file; the result
	// carries the editor's process id.
	OpOpen Op = "open"
	// OpClose asks the editor to close the artifact. Not guaranteed
	// dialog-free; a blocked close surfaces as a failure.
	OpClose Op = "close"
	// OpUnlock clears an editor-applied edit lock.
	OpUnlock Op = "unlock"
)

// Result is the collaborator's stdout payload.
type Result struct {
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
	PID      int    `json:"pid,omitempty"`
	Export   string `json:"export,omitempty"`
	Analyzed bool   `json:"analyzed,omitempty"`
	Locked   bool   `json:"locked,omitempty"`
}

// Runner executes collaborator operations.
type Runner interface {
	Run(ctx context.Context, op Op, path string) (*Result, error)
}

// ExecRunner runs the configured collaborator command as a subprocess.
type ExecRunner struct {
	// Command is the collaborator executable; invoked as
	// `command <op> <path>`.
	Command string
	// Timeout bounds one invocation. Zero means no bound beyond ctx.
	Timeout time.Duration
	// Progress receives each stderr line as it arrives. May be nil.
	Progress func(line string)
}

// Run invokes the collaborator and decodes its result payload.
func (r *ExecRunner) Run(ctx context.Context, op Op, path string) (*Result, error) {
	if r.Command == "" {
		return nil, fmt.Errorf("no automation command configured (set automation.command)")
	}
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.Command, string(op), path)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", op, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", op, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", op, err)
	}

	progressDone := make(chan struct{})
	go func() {
		defer close(progressDone)
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			if r.Progress != nil {
				r.Progress(scanner.Text())
			}
		}
	}()

	payload, readErr := io.ReadAll(stdout)
	<-progressDone
	waitErr := cmd.Wait()
	if waitErr != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("automation %s timed out: %w", op, ctx.Err())
		}
		return nil, fmt.Errorf("automation %s failed: %w", op, waitErr)
	}
	if readErr != nil {
		return nil, fmt.Errorf("failed to read %s result: %w", op, readErr)
	}

	var res Result
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(payload))), &res); err != nil {
		return nil, fmt.Errorf("automation %s returned malformed result: %w", op, err)
	}
	if res.Status != "ok" {
		if res.Error != "" {
			return nil, fmt.Errorf("automation %s failed: %s", op, res.Error)
		}
		return nil, fmt.Errorf("automation %s failed with status %q", op, res.Status)
	}
	return &res, nil
}
