package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"modelvault/internal/engine"
)

var (
	commitMessage string
	commitAnalyze bool
	commitForce   bool
	commitBranch  string
)

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Snapshot the working file as a new immutable version",
	Long: `Copy the working file into the next version slot, derive its text
export through the collaborator, and record the version in the history
log. The snapshot copy is hashed; the working file is never touched.

Committing an unchanged (clean) working file is permitted but warns.
An editor-applied edit lock or embedded analysis results demand
--force, so stale refinements are never snapshotted silently.

--analyze runs the analysis pass after the commit. Analysis failure
never undoes the commit; retry later with 'modelvault analyze'.

Examples:
  modelvault commit -m "stiffened the transfer level"
  modelvault commit -m "final design run" --analyze`,
	RunE: runCommit,
}

func init() {
	rootCmd.AddCommand(commitCmd)

	commitCmd.Flags().StringVarP(&commitMessage, "message", "m", "", "Commit message (required)")
	commitCmd.Flags().BoolVar(&commitAnalyze, "analyze", false, "Run the analysis pass after committing")
	commitCmd.Flags().BoolVar(&commitForce, "force", false, "Commit despite an edit lock or embedded analysis results")
	commitCmd.Flags().StringVar(&commitBranch, "branch", "", "Commit on this branch instead of the active one")
}

func runCommit(cmd *cobra.Command, args []string) error {
	e, cleanup, err := openProject()
	if err != nil {
		return err
	}
	defer cleanup()
	unlock, err := lockProject(e)
	if err != nil {
		return err
	}
	defer unlock()

	res, err := e.Commit(cmd.Context(), engine.CommitOptions{
		Message: commitMessage,
		Branch:  commitBranch,
		Analyze: commitAnalyze,
		Force:   commitForce,
	})
	if err != nil {
		return err
	}

	for _, w := range res.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}
	fmt.Printf("✓ Committed %s/v%d (%.12s)\n", res.Branch, res.Ordinal, res.ContentID)
	if res.Analyzed {
		fmt.Println("  Analysis results recorded")
	}
	if res.AnalysisError != "" {
		fmt.Fprintf(os.Stderr, "Warning: analysis failed: %s\n", res.AnalysisError)
		fmt.Fprintln(os.Stderr, "The version itself is committed; retry with: modelvault analyze")
	}
	return nil
}
