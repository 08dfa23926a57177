package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"modelvault/internal/models"
)

var checkoutDiscard bool

var checkoutCmd = &cobra.Command{
	Use:   "checkout <vN | branch/vN>",
	Short: "Restore the working file to a committed version",
	Long: `Replace the working file with an exact copy of a version's artifact.
A bare version (v3) resolves against the active branch; branch/v3
switches there first.

Uncommitted changes are a hard decision gate: commit, stash, or pass
--discard before the overwrite proceeds, because the previous working
file cannot be recovered afterwards. Checkout from a missing working
file is the recovery path and needs no flag.

Examples:
  modelvault checkout v2
  modelvault checkout lighter-core/v1 --discard`,
	Args: cobra.ExactArgs(1),
	RunE: runCheckout,
}

func init() {
	rootCmd.AddCommand(checkoutCmd)

	checkoutCmd.Flags().BoolVar(&checkoutDiscard, "discard", false, "Discard uncommitted changes in the working file")
}

func runCheckout(cmd *cobra.Command, args []string) error {
	ref, err := models.ParseVersionRef(args[0])
	if err != nil {
		return err
	}

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

	res, err := e.Checkout(ref, checkoutDiscard)
	if err != nil {
		return err
	}
	if res.Switched {
		fmt.Printf("✓ Switched to %s and restored v%d\n", res.Branch, res.Ordinal)
	} else {
		fmt.Printf("✓ Restored %s/v%d\n", res.Branch, res.Ordinal)
	}
	if res.Discarded {
		fmt.Println("  Uncommitted changes were discarded")
	}
	return nil
}
