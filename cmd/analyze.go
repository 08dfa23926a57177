package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"modelvault/internal/models"
)

var analyzeBranch string

var analyzeCmd = &cobra.Command{
	Use:   "analyze [vN]",
	Short: "Run the analysis pass for a committed version",
	Long: `Run the collaborator's analysis pass against a version's snapshot
copy, recording the result bundle in the version slot. The working
file is never touched, and a failed pass can simply be retried.

Without an argument the branch's latest version is analyzed. Analyzing
an already-analyzed version is a no-op.

Examples:
  modelvault analyze
  modelvault analyze v2 --branch lighter-core`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeBranch, "branch", "", "Branch owning the version (default: active branch)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
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

	branch := analyzeBranch
	ordinal := 0
	if len(args) > 0 {
		ref, err := models.ParseVersionRef(args[0])
		if err != nil {
			return err
		}
		ordinal = ref.Ordinal
		if ref.Branch != "" {
			branch = ref.Branch
		}
	}
	if ordinal == 0 {
		b := branch
		if b == "" {
			local, err := e.Store.LoadLocal()
			if err != nil {
				return err
			}
			b = local.ActiveBranch
		}
		latest, err := e.Store.MaxOrdinal(b)
		if err != nil {
			return err
		}
		if latest == 0 {
			return fmt.Errorf("branch %s has no versions to analyze", b)
		}
		ordinal = latest
	}

	v, err := e.Analyze(cmd.Context(), branch, ordinal)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Analysis recorded for v%d\n", v.Ordinal)
	return nil
}
