package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"modelvault/internal/models"
	"modelvault/internal/store"
)

// Finding is one verification problem.
type Finding struct {
	Branch  string `json:"branch"`
	Ordinal int    `json:"ordinal"`
	Problem string `json:"problem"`
}

// VerifyReport summarizes an integrity check.
type VerifyReport struct {
	Checked  int       `json:"checked"`
	Findings []Finding `json:"findings,omitempty"`
}

// OK reports whether verification found no problems.
func (r *VerifyReport) OK() bool { return len(r.Findings) == 0 }

// Verify recomputes every version's content id against its stored
// artifact and cross-checks the store's records against the history
// log. It reads everything and mutates nothing.
func (e *Engine) Verify() (*VerifyReport, error) {
	project, err := e.Store.LoadProject()
	if err != nil {
		return nil, err
	}
	branches, err := e.Store.ListBranches()
	if err != nil {
		return nil, err
	}

	report := &VerifyReport{}
	for _, b := range branches {
		ordinals, err := e.Store.ListVersionOrdinals(b.Name)
		if err != nil {
			return nil, err
		}
		for _, n := range ordinals {
			report.Checked++
			version, err := e.Store.LoadVersion(b.Name, n)
			if err != nil {
				if store.IsNotFound(err) {
					report.add(b.Name, n, "version record missing (interrupted commit?)")
					continue
				}
				return nil, err
			}

			artifact := e.Store.VersionArtifactPath(b.Name, n, project.ArtifactName)
			sum, err := store.HashFile(artifact)
			switch {
			case errors.Is(err, fs.ErrNotExist):
				report.add(b.Name, n, "artifact missing from version slot")
			case err != nil:
				return nil, err
			case sum != version.ContentID:
				report.add(b.Name, n, "artifact bytes do not match recorded content id")
			}

			if _, err := os.Stat(e.Store.VersionExportPath(b.Name, n, project.ArtifactName)); err != nil {
				report.add(b.Name, n, "text export missing from version slot")
			}

			rel := models.LogEntryPath(b.Name, n, store.VersionFile)
			data, err := e.Log.ShowFile("HEAD", rel)
			if err != nil {
				report.add(b.Name, n, "version missing from history log")
				continue
			}
			var logged models.Version
			if err := json.Unmarshal(data, &logged); err != nil {
				report.add(b.Name, n, "history log record is not parseable")
				continue
			}
			if logged.ContentID != version.ContentID {
				report.add(b.Name, n, fmt.Sprintf(
					"history log disagrees on content id (store %.12s, log %.12s)",
					version.ContentID, logged.ContentID))
			}
		}
	}
	return report, nil
}

func (r *VerifyReport) add(branch string, ordinal int, problem string) {
	r.Findings = append(r.Findings, Finding{Branch: branch, Ordinal: ordinal, Problem: problem})
}
