package engine

import "modelvault/internal/state"

// permitted is the fixed permission table: which working states each
// operation may start from. Checkout and stash-pop additionally demand
// an explicit discard decision when starting from modified or untracked
// (the overwrite is irreversible); that gate lives in the operations
// themselves. Close is absent because it exists precisely to leave the
// open and orphaned states.
var permitted = map[string][]state.State{
	"commit":    {state.Untracked, state.Clean, state.Modified},
	"switch":    {state.Missing, state.Orphaned, state.Untracked, state.Modified, state.Clean},
	"checkout":  {state.Missing, state.Clean, state.Modified, state.Untracked},
	"stash":     {state.Untracked, state.Modified, state.Clean},
	"stash-pop": {state.Missing, state.Clean, state.Modified, state.Untracked},
	"open":      {state.Clean, state.Modified, state.Untracked},
	"unlock":    {state.Clean, state.Modified, state.Untracked},
}

// guard rejects an operation not permitted in the current state.
func guard(op string, c *workingContext) error {
	for _, s := range permitted[op] {
		if s == c.Res.State {
			return nil
		}
	}
	return blocked(op, c.Branch, c.Res.State)
}
