package automation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"modelvault/internal/models"
)

// Call records one FakeRunner invocation.
type Call struct {
	Op   Op
	Path string
}

// FakeRunner simulates the collaborator in tests. Export and analyze
// write real files next to the given artifact so the calling code's
// filesystem expectations hold.
type FakeRunner struct {
	// PID is returned by the open operation.
	PID int
	// Analyzed and Locked are returned by inspect.
	Analyzed bool
	Locked   bool
	// ExportContent is written as the derived text export. When empty a
	// deterministic line derived from the artifact name is used.
	ExportContent string
	// Fail maps an op to an error message, simulating collaborator
	// failure for that op.
	Fail map[Op]string
	// Calls records every invocation in order.
	Calls []Call
}

// Run simulates one collaborator invocation.
func (r *FakeRunner) Run(_ context.Context, op Op, path string) (*Result, error) {
	r.Calls = append(r.Calls, Call{Op: op, Path: path})
	if msg, ok := r.Fail[op]; ok {
		return nil, fmt.Errorf("automation %s failed: %s", op, msg)
	}
	switch op {
	case OpExport:
		dst := filepath.Join(filepath.Dir(path), models.ExportName(filepath.Base(path)))
		content := r.ExportContent
		if content == "" {
			content = "EXPORT " + filepath.Base(path) + "\n"
		}
		if err := os.WriteFile(dst, []byte(content), 0o644); err != nil {
			return nil, fmt.Errorf("automation export failed: %w", err)
		}
		return &Result{Status: "ok", Export: dst}, nil
	case OpAnalyze:
		dir := filepath.Join(filepath.Dir(path), "analysis")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("automation analyze failed: %w", err)
		}
		summary := fmt.Sprintf("{\n  \"artifact\": %q,\n  \"status\": \"complete\"\n}\n", filepath.Base(path))
		if err := os.WriteFile(filepath.Join(dir, "results.json"), []byte(summary), 0o644); err != nil {
			return nil, fmt.Errorf("automation analyze failed: %w", err)
		}
		return &Result{Status: "ok"}, nil
	case OpInspect:
		return &Result{Status: "ok", Analyzed: r.Analyzed, Locked: r.Locked}, nil
	case OpOpen:
		return &Result{Status: "ok", PID: r.PID}, nil
	case OpClose, OpUnlock:
		return &Result{Status: "ok"}, nil
	default:
		return nil, fmt.Errorf("automation %s failed: unknown operation", op)
	}
}

// CallOps returns the op names seen so far, for compact assertions.
func (r *FakeRunner) CallOps() []string {
	ops := make([]string, 0, len(r.Calls))
	for _, c := range r.Calls {
		ops = append(ops, string(c.Op))
	}
	return ops
}

// String renders the call history.
func (r *FakeRunner) String() string {
	return strings.Join(r.CallOps(), ",")
}
