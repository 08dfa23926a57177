package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/alpkeskin/gotoon"
	"github.com/spf13/cobra"

	"modelvault/internal/config"
	"modelvault/internal/models"
	"modelvault/internal/replicate"
)

var (
	branchFrom        string
	branchDescription string
	branchListJSON    bool
	branchListToon    bool
	branchDeleteForce bool
)

var branchCmd = &cobra.Command{
	Use:   "branch",
	Short: "Manage design-alternative branches",
	Long: `Branches are parallel design alternatives. Each branch owns its own
working file; switching never moves artifacts around.`,
}

var branchCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a branch from an existing version",
	Long: `Create a branch whose working file starts as a copy of an existing
version's artifact. The source defaults to the active branch's latest
version; --from accepts a branch, a version (v3), or both (main/v3).

The new working file is untracked until its first commit.

Examples:
  modelvault branch create lighter-core
  modelvault branch create lighter-core --from main/v2`,
	Args: cobra.ExactArgs(1),
	RunE: runBranchCreate,
}

var branchListCmd = &cobra.Command{
	Use:   "list",
	Short: "List branches with their version counts",
	RunE:  runBranchList,
}

var branchDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a branch and its local versions",
	Long: `Delete a branch. Refused while the branch is active, while its editor
is live, or while it holds unmerged work: uncommitted changes, a stash
entry, or versions the configured remote has never seen. --force
overrides the unmerged-work guard, never the editor guard.

Version ordinals recorded in the history log are never reused, so a
recreated branch continues numbering where the deleted one stopped.`,
	Args: cobra.ExactArgs(1),
	RunE: runBranchDelete,
}

func init() {
	rootCmd.AddCommand(branchCmd)
	branchCmd.AddCommand(branchCreateCmd)
	branchCmd.AddCommand(branchListCmd)
	branchCmd.AddCommand(branchDeleteCmd)

	branchCreateCmd.Flags().StringVar(&branchFrom, "from", "", "Source version: branch, vN, or branch/vN (default: active branch's latest)")
	branchCreateCmd.Flags().StringVar(&branchDescription, "description", "", "Branch description")
	branchListCmd.Flags().BoolVar(&branchListJSON, "json", false, "Output as JSON")
	branchListCmd.Flags().BoolVar(&branchListToon, "toon", false, "Output in LLM-friendly toon format")
	branchDeleteCmd.Flags().BoolVar(&branchDeleteForce, "force", false, "Delete despite unmerged work")
}

func runBranchCreate(cmd *cobra.Command, args []string) error {
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

	b, err := e.BranchCreate(args[0], branchFrom, branchDescription)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Created branch %s from %s/v%d\n", b.Name, b.ParentBranch, b.ParentVersion)
	fmt.Println("  The working file is an uncommitted copy; commit to record it")
	return nil
}

func runBranchList(cmd *cobra.Command, args []string) error {
	e, cleanup, err := openProject()
	if err != nil {
		return err
	}
	defer cleanup()

	branches, err := e.Branches()
	if err != nil {
		return err
	}

	// Output JSON if requested
	if branchListJSON {
		output, err := json.MarshalIndent(branches, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}

	// Output Toon if requested
	if branchListToon {
		output, err := gotoon.Encode(branches)
		if err != nil {
			return fmt.Errorf("failed to encode Toon: %w", err)
		}
		fmt.Println(output)
		return nil
	}

	for _, b := range branches {
		marker := " "
		if b.Active {
			marker = "*"
		}
		line := fmt.Sprintf("%s %s", marker, b.Name)
		if b.Latest > 0 {
			line += fmt.Sprintf(" (v%d, %d versions)", b.Latest, b.Versions)
		} else {
			line += " (no versions)"
		}
		if b.ParentBranch != "" {
			line += fmt.Sprintf("  <- %s/v%d", b.ParentBranch, b.ParentVersion)
		}
		fmt.Println(line)
	}
	return nil
}

func runBranchDelete(cmd *cobra.Command, args []string) error {
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

	// The unpushed-work guard compares against the remote descriptor
	// when one is reachable; without it every version counts as
	// unpushed.
	var desc *models.Descriptor
	if config.GetRemotePath() != "" {
		remote := &replicate.Remote{Root: config.GetRemotePath()}
		if d, err := remote.LoadDescriptor(); err == nil {
			desc = d
		}
	}

	if err := e.BranchDelete(args[0], desc, branchDeleteForce); err != nil {
		return err
	}
	fmt.Printf("✓ Deleted branch %s\n", args[0])
	return nil
}
