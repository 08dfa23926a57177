package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/alpkeskin/gotoon"
	"github.com/sourcegraph/go-diff/diff"
	"github.com/spf13/cobra"

	"modelvault/internal/engine"
	"modelvault/internal/models"
)

var (
	diffBranch string
	diffJSON   bool
	diffToon   bool
)

var diffCmd = &cobra.Command{
	Use:   "diff <vN> <vM>",
	Short: "Compare two versions' text exports",
	Long: `Produce a unified diff between the text exports of two versions. The
binary artifacts themselves are never diffed; the export is the
human-readable shadow of the model.

Bare versions (v2 v3) resolve against --branch or the active branch;
a branch/vN ref names another branch explicitly.

Examples:
  modelvault diff v1 v2
  modelvault diff main/v3 lighter-core/v1 --json`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)

	diffCmd.Flags().StringVar(&diffBranch, "branch", "", "Branch for bare version refs (default: active branch)")
	diffCmd.Flags().BoolVar(&diffJSON, "json", false, "Output as JSON")
	diffCmd.Flags().BoolVar(&diffToon, "toon", false, "Output in LLM-friendly toon format")
}

type exportDiff struct {
	From         string     `json:"from"`
	To           string     `json:"to"`
	Changed      bool       `json:"changed"`
	LinesAdded   int        `json:"lines_added"`
	LinesRemoved int        `json:"lines_removed"`
	Hunks        []diffHunk `json:"hunks,omitempty"`
}

type diffHunk struct {
	OrigStartLine int32  `json:"orig_start_line"`
	OrigLines     int32  `json:"orig_lines"`
	NewStartLine  int32  `json:"new_start_line"`
	NewLines      int32  `json:"new_lines"`
	Body          string `json:"body"`
}

func runDiff(cmd *cobra.Command, args []string) error {
	e, cleanup, err := openProject()
	if err != nil {
		return err
	}
	defer cleanup()

	refA, err := resolveDiffRef(e, args[0])
	if err != nil {
		return err
	}
	refB, err := resolveDiffRef(e, args[1])
	if err != nil {
		return err
	}

	project, err := e.Store.LoadProject()
	if err != nil {
		return err
	}
	pathA := e.Store.VersionExportPath(refA.Branch, refA.Ordinal, project.ArtifactName)
	pathB := e.Store.VersionExportPath(refB.Branch, refB.Ordinal, project.ArtifactName)
	for _, p := range []string{pathA, pathB} {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("no text export at %s (version slot incomplete?)", p)
		}
	}

	unified, err := e.Log.DiffFiles(pathA, pathB)
	if err != nil {
		return err
	}

	if diffJSON || diffToon {
		out := &exportDiff{From: refA.String(), To: refB.String(), Changed: unified != ""}
		if unified != "" {
			fileDiffs, err := diff.NewMultiFileDiffReader(strings.NewReader(unified)).ReadAllFiles()
			if err != nil {
				return fmt.Errorf("failed to parse diff: %w", err)
			}
			for _, fd := range fileDiffs {
				for _, hunk := range fd.Hunks {
					out.Hunks = append(out.Hunks, diffHunk{
						OrigStartLine: hunk.OrigStartLine,
						OrigLines:     hunk.OrigLines,
						NewStartLine:  hunk.NewStartLine,
						NewLines:      hunk.NewLines,
						Body:          string(hunk.Body),
					})
					for _, line := range strings.Split(string(hunk.Body), "\n") {
						if strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++") {
							out.LinesAdded++
						} else if strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---") {
							out.LinesRemoved++
						}
					}
				}
			}
		}

		if diffJSON {
			output, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal JSON: %w", err)
			}
			fmt.Println(string(output))
			return nil
		}
		output, err := gotoon.Encode(out)
		if err != nil {
			return fmt.Errorf("failed to encode Toon: %w", err)
		}
		fmt.Println(output)
		return nil
	}

	if unified == "" {
		fmt.Printf("Exports of %s and %s are identical\n", refA, refB)
		return nil
	}
	fmt.Print(unified)
	return nil
}

// resolveDiffRef parses a version ref and fills in the branch for bare
// refs: --branch when set, otherwise the active branch.
func resolveDiffRef(e *engine.Engine, s string) (models.VersionRef, error) {
	ref, err := models.ParseVersionRef(s)
	if err != nil {
		return ref, err
	}
	if ref.Branch == "" {
		ref.Branch = diffBranch
	}
	if ref.Branch == "" {
		local, err := e.Store.LoadLocal()
		if err != nil {
			return ref, err
		}
		ref.Branch = local.ActiveBranch
	}
	if !e.Store.VersionExists(ref.Branch, ref.Ordinal) {
		return ref, fmt.Errorf("version %s/v%d does not exist", ref.Branch, ref.Ordinal)
	}
	return ref, nil
}
