package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	pushRemote   string
	pushRenumber bool
)

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Publish local versions to the shared remote",
	Long: `Copy every version the remote lacks onto the shared folder and update
its descriptor. Versions already on the remote are never overwritten.

When another machine has already pushed the same ordinal with
different content, the push aborts and reports both content ids.
--renumber moves the local conflicting version and its descendants to
free ordinals above everything known, records the move in the history
log, and pushes the renumbered chain.

Examples:
  modelvault push
  modelvault push --remote /mnt/share/tower
  modelvault push --renumber`,
	RunE: runPush,
}

func init() {
	rootCmd.AddCommand(pushCmd)

	pushCmd.Flags().StringVar(&pushRemote, "remote", "", "Shared-folder remote (default: remote.path from config)")
	pushCmd.Flags().BoolVar(&pushRenumber, "renumber", false, "Move conflicting local versions to free ordinals and retry")
}

func runPush(cmd *cobra.Command, args []string) error {
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

	remote, err := resolveRemote(pushRemote)
	if err != nil {
		return err
	}

	res, err := newReplicator(e).Push(remote, pushRenumber)
	if err != nil {
		return err
	}

	for _, move := range res.Renumbered {
		fmt.Printf("  Renumbered %s/v%d -> v%d\n", move.Branch, move.From, move.To)
	}
	for _, label := range res.Pushed {
		fmt.Printf("  Pushed %s\n", label)
	}
	for _, label := range res.Updated {
		fmt.Printf("  Updated %s (analysis results)\n", label)
	}
	for _, name := range res.NewBranches {
		fmt.Printf("  Published branch %s\n", name)
	}
	if len(res.Pushed) == 0 && len(res.Updated) == 0 && len(res.NewBranches) == 0 {
		fmt.Println("✓ Remote is already up to date")
	} else {
		fmt.Printf("✓ Pushed to %s\n", remote.Root)
	}
	return nil
}
