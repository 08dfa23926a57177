package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	stashOverwrite  bool
	stashPopDiscard bool
)

var stashCmd = &cobra.Command{
	Use:   "stash",
	Short: "Set the working file aside without committing",
	Long: `Move the working file into the branch's stash slot. A tracked file is
replaced by a fresh copy of its base version, so the branch stays
usable; an untracked file leaves the slot empty until pop.

One stash entry exists per branch; --overwrite replaces it. The save
is a rename, not a copy, so it is instant for any model size.`,
	RunE: runStashSave,
}

var stashPopCmd = &cobra.Command{
	Use:   "pop",
	Short: "Restore the stashed working file",
	Long: `Move the stashed file back as the working file and clear the slot.
The current working file is overwritten, so uncommitted changes demand
--discard, the same decision gate as checkout.`,
	RunE: runStashPop,
}

var stashDropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Discard the stash entry",
	RunE:  runStashDrop,
}

func init() {
	rootCmd.AddCommand(stashCmd)
	stashCmd.AddCommand(stashPopCmd)
	stashCmd.AddCommand(stashDropCmd)

	stashCmd.Flags().BoolVar(&stashOverwrite, "overwrite", false, "Replace an existing stash entry")
	stashPopCmd.Flags().BoolVar(&stashPopDiscard, "discard", false, "Discard uncommitted changes in the working file")
}

func runStashSave(cmd *cobra.Command, args []string) error {
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

	res, err := e.StashSave(stashOverwrite)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Stashed working file on %s\n", res.Branch)
	if res.Restored {
		fmt.Printf("  Working file restored from v%d\n", *res.BasedOn)
	} else {
		fmt.Println("  Working slot is empty until 'modelvault stash pop'")
	}
	return nil
}

func runStashPop(cmd *cobra.Command, args []string) error {
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

	res, err := e.StashPop(stashPopDiscard)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Restored stashed working file on %s\n", res.Branch)
	return nil
}

func runStashDrop(cmd *cobra.Command, args []string) error {
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

	if err := e.StashDrop(); err != nil {
		return err
	}
	fmt.Println("✓ Dropped stash entry")
	return nil
}
