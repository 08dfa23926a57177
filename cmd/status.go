package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/alpkeskin/gotoon"
	"github.com/spf13/cobra"

	"modelvault/internal/config"
	"modelvault/internal/engine"
	"modelvault/internal/replicate"
)

var (
	statusJSON bool
	statusToon bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active branch's working state",
	Long: `Resolve and display the working state of the active branch: project,
branch, state, base version, latest version, stash presence, and how
the local store compares against the configured remote.

Resolution reads only metadata records, never artifact contents, so
status is instant regardless of model size.

Examples:
  modelvault status
  modelvault status --json
  modelvault status --toon`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output as JSON")
	statusCmd.Flags().BoolVar(&statusToon, "toon", false, "Output in LLM-friendly toon format")
}

type statusOutput struct {
	*engine.Status
	Remote *replicate.Staleness `json:"remote,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	e, cleanup, err := openProject()
	if err != nil {
		return err
	}
	defer cleanup()

	st, err := e.Status()
	if err != nil {
		return err
	}
	out := &statusOutput{Status: st}

	// The remote comparison only reads the descriptor; a missing or
	// unreachable remote degrades to local-only status.
	if config.GetRemotePath() != "" {
		remote := &replicate.Remote{Root: config.GetRemotePath()}
		if staleness, err := newReplicator(e).CompareRemote(remote); err == nil {
			out.Remote = staleness
		}
	}

	// Output JSON if requested
	if statusJSON {
		output, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}

	// Output Toon if requested
	if statusToon {
		output, err := gotoon.Encode(out)
		if err != nil {
			return fmt.Errorf("failed to encode Toon: %w", err)
		}
		fmt.Println(output)
		return nil
	}

	fmt.Printf("Project:  %s (%s)\n", st.Project, st.Artifact)
	fmt.Printf("Branch:   %s\n", st.Branch)
	fmt.Printf("State:    %s\n", st.State)
	if st.BasedOn != nil {
		base := fmt.Sprintf("v%d", *st.BasedOn)
		if st.BaseAnalyzed {
			base += " (analyzed)"
		}
		fmt.Printf("Based on: %s\n", base)
	} else {
		fmt.Println("Based on: (untracked)")
	}
	if st.LatestVersion > 0 {
		fmt.Printf("Latest:   v%d\n", st.LatestVersion)
	} else {
		fmt.Println("Latest:   (no versions yet)")
	}
	if st.EditorPID != nil {
		fmt.Printf("Editor:   pid %d\n", *st.EditorPID)
	}
	if st.Stash != nil {
		if st.Stash.BasedOn != nil {
			fmt.Printf("Stash:    saved %s (based on v%d)\n",
				st.Stash.SavedAt.Local().Format("2006-01-02 15:04"), *st.Stash.BasedOn)
		} else {
			fmt.Printf("Stash:    saved %s (untracked)\n",
				st.Stash.SavedAt.Local().Format("2006-01-02 15:04"))
		}
	}
	if out.Remote != nil {
		fmt.Printf("Remote:   %d ahead, %d behind\n", out.Remote.Ahead, out.Remote.Behind)
	}
	if st.Hint != "" {
		fmt.Printf("\nHint: %s\n", st.Hint)
	}
	return nil
}
