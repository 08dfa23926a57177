package replicate

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"modelvault/internal/history"
	"modelvault/internal/models"
	"modelvault/internal/store"
)

// Replicator moves versions between the local store and a remote.
type Replicator struct {
	Store  *store.Store
	Log    *history.Log
	Logger *zap.Logger
	Now    func() time.Time
}

// New creates a replicator with a no-op logger and the real clock.
func New(s *store.Store, l *history.Log) *Replicator {
	return &Replicator{Store: s, Log: l, Logger: zap.NewNop(), Now: time.Now}
}

// checkIdentity rejects a remote that belongs to a different project.
func checkIdentity(project *models.Project, desc *models.Descriptor) error {
	if desc.ProjectID != "" && desc.ProjectID != project.ID {
		return fmt.Errorf("remote belongs to project %q (%s), not %q (%s)",
			desc.ProjectName, desc.ProjectID, project.Name, project.ID)
	}
	return nil
}

// localVersion pairs a version record with the branch that owns it.
type localVersion struct {
	Branch string
	*models.Version
}

// localVersions collects every complete local version, ascending per
// branch. Partial slots from an interrupted commit are skipped; Verify
// reports those.
func (r *Replicator) localVersions() ([]localVersion, error) {
	branches, err := r.Store.ListBranches()
	if err != nil {
		return nil, err
	}
	var out []localVersion
	for _, b := range branches {
		ordinals, err := r.Store.ListVersionOrdinals(b.Name)
		if err != nil {
			return nil, err
		}
		for _, n := range ordinals {
			v, err := r.Store.LoadVersion(b.Name, n)
			if err != nil {
				if store.IsNotFound(err) {
					continue
				}
				return nil, err
			}
			out = append(out, localVersion{Branch: b.Name, Version: v})
		}
	}
	return out, nil
}

// Staleness compares local versions against the remote descriptor.
type Staleness struct {
	Ahead  int `json:"ahead"`
	Behind int `json:"behind"`
}

// CompareRemote reports how many versions exist only locally (ahead)
// and only remotely (behind). A never-pushed remote counts everything
// local as ahead.
func (r *Replicator) CompareRemote(remote *Remote) (*Staleness, error) {
	locals, err := r.localVersions()
	if err != nil {
		return nil, err
	}
	desc, err := remote.LoadDescriptor()
	if err != nil {
		return nil, err
	}
	st := &Staleness{}
	if desc == nil {
		st.Ahead = len(locals)
		return st, nil
	}
	for _, v := range locals {
		rv := desc.FindVersion(v.Branch, v.Ordinal)
		if rv == nil || rv.ContentID != v.ContentID {
			st.Ahead++
		}
	}
	for _, rv := range desc.Versions {
		local, err := r.Store.LoadVersion(rv.Branch, rv.Ordinal)
		if err != nil || local.ContentID != rv.ContentID {
			st.Behind++
		}
	}
	return st, nil
}
