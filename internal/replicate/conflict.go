package replicate

import (
	"fmt"
	"os"
	"sort"

	"go.uber.org/zap"

	"modelvault/internal/models"
	"modelvault/internal/store"
)

// ConflictError reports an ordinal collision: the same branch and
// ordinal exist locally and remotely with different content, meaning
// two machines committed independently. Resolution is explicit,
// renumber-and-retry or abort, never a silent overwrite. Hint carries
// the remediation for the operation that hit the conflict.
type ConflictError struct {
	Branch   string
	Ordinal  int
	LocalID  string
	RemoteID string
	Hint     string
}

func (e *ConflictError) Error() string {
	msg := fmt.Sprintf(
		"version conflict on %s/%s: local content %.12s differs from remote %.12s",
		e.Branch, models.VersionDirName(e.Ordinal), e.LocalID, e.RemoteID)
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

// findConflicts returns the lowest colliding ordinal per branch,
// ordered by branch name.
func findConflicts(locals []localVersion, desc *models.Descriptor) []*ConflictError {
	lowest := make(map[string]*ConflictError)
	for _, v := range locals {
		rv := desc.FindVersion(v.Branch, v.Ordinal)
		if rv == nil || rv.ContentID == v.ContentID {
			continue
		}
		if prev, ok := lowest[v.Branch]; !ok || v.Ordinal < prev.Ordinal {
			lowest[v.Branch] = &ConflictError{
				Branch:   v.Branch,
				Ordinal:  v.Ordinal,
				LocalID:  v.ContentID,
				RemoteID: rv.ContentID,
			}
		}
	}
	out := make([]*ConflictError, 0, len(lowest))
	for _, c := range lowest {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Branch < out[j].Branch })
	return out
}

// Renumbered records one version's ordinal move.
type Renumbered struct {
	Branch string `json:"branch"`
	From   int    `json:"from"`
	To     int    `json:"to"`
}

// renumberChain moves a branch's conflicted version and every local
// version above it to consecutive ordinals above everything known
// locally or remotely, rewriting parent lineage, working and stash
// bookkeeping, and the history log paths, then records one internal
// log entry. Descendants move with the conflicted version because their
// recorded parents would otherwise point into the remote's chain.
func (r *Replicator) renumberChain(branch string, from int, desc *models.Descriptor) ([]Renumbered, error) {
	ordinals, err := r.Store.ListVersionOrdinals(branch)
	if err != nil {
		return nil, err
	}
	var chain []int
	for _, n := range ordinals {
		if n >= from {
			chain = append(chain, n)
		}
	}
	if len(chain) == 0 {
		return nil, fmt.Errorf("no local versions at or above %s/%s to renumber",
			branch, models.VersionDirName(from))
	}
	for _, n := range chain {
		if rv := desc.FindVersion(branch, n); rv != nil {
			if v, err := r.Store.LoadVersion(branch, n); err == nil && v.ContentID == rv.ContentID {
				return nil, fmt.Errorf("cannot renumber %s/%s: it already exists on the remote",
					branch, models.VersionDirName(n))
			}
		}
	}

	base := desc.MaxOrdinal(branch)
	if m, err := r.Store.MaxOrdinal(branch); err != nil {
		return nil, err
	} else if m > base {
		base = m
	}
	if m, err := r.Log.MaxOrdinal(branch); err != nil {
		return nil, err
	} else if m > base {
		base = m
	}

	mapping := make(map[int]int, len(chain))
	for i, n := range chain {
		mapping[n] = base + 1 + i
	}

	// Move slots highest-first so a partially applied rename never
	// collides with a not-yet-moved slot.
	for i := len(chain) - 1; i >= 0; i-- {
		oldN, newN := chain[i], mapping[chain[i]]
		if err := os.Rename(r.Store.VersionDir(branch, oldN), r.Store.VersionDir(branch, newN)); err != nil {
			return nil, fmt.Errorf("failed to move version slot: %w", err)
		}
		if err := r.Log.MovePath(
			models.LogEntryPath(branch, oldN, ""),
			models.LogEntryPath(branch, newN, "")); err != nil {
			return nil, err
		}
	}

	// Rewrite the moved records: own ordinal, and parents that pointed
	// into the moved range.
	for _, oldN := range chain {
		newN := mapping[oldN]
		v, err := r.Store.LoadVersion(branch, newN)
		if err != nil {
			return nil, err
		}
		v.Ordinal = newN
		if v.Parent != nil {
			if remapped, ok := mapping[*v.Parent]; ok {
				v.Parent = &remapped
			}
		}
		if err := r.Store.SaveVersion(branch, v); err != nil {
			return nil, err
		}
		rel := models.LogEntryPath(branch, newN, store.VersionFile)
		if err := r.Log.StageFile(rel, r.Store.VersionMetaPath(branch, newN)); err != nil {
			return nil, err
		}
	}

	ws, err := r.Store.LoadWorkingState(branch)
	if err != nil {
		return nil, err
	}
	if ws.BasedOn != nil {
		if remapped, ok := mapping[*ws.BasedOn]; ok {
			ws.BasedOn = &remapped
			if err := r.Store.SaveWorkingState(branch, ws); err != nil {
				return nil, err
			}
		}
	}
	stash, err := r.Store.LoadStash(branch)
	if err != nil {
		return nil, err
	}
	if stash != nil && stash.BasedOn != nil {
		if remapped, ok := mapping[*stash.BasedOn]; ok {
			stash.BasedOn = &remapped
			if err := r.Store.SaveStash(branch, stash); err != nil {
				return nil, err
			}
		}
	}

	first, last := chain[0], chain[len(chain)-1]
	subject := fmt.Sprintf("renumber %s %s-%s to %s-%s",
		branch,
		models.VersionDirName(first), models.VersionDirName(last),
		models.VersionDirName(mapping[first]), models.VersionDirName(mapping[last]))
	if len(chain) == 1 {
		subject = fmt.Sprintf("renumber %s %s to %s",
			branch, models.VersionDirName(first), models.VersionDirName(mapping[first]))
	}
	if err := r.Log.Commit(subject, "", "", r.Now().UTC(), true); err != nil {
		return nil, err
	}

	moves := make([]Renumbered, 0, len(chain))
	for _, n := range chain {
		moves = append(moves, Renumbered{Branch: branch, From: n, To: mapping[n]})
	}
	r.Logger.Info("renumbered conflicted chain",
		zap.String("branch", branch),
		zap.Int("from", first),
		zap.Int("count", len(chain)))
	return moves, nil
}
