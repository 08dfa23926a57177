package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var switchCmd = &cobra.Command{
	Use:   "switch <branch>",
	Short: "Make another branch the active one",
	Long: `Change the active-branch pointer. Nothing is copied or restored: each
branch keeps its own working file, so uncommitted changes stay where
they are and are waiting when you switch back.

Blocked while the current branch's editor is live.`,
	Args: cobra.ExactArgs(1),
	RunE: runSwitch,
}

func init() {
	rootCmd.AddCommand(switchCmd)
}

func runSwitch(cmd *cobra.Command, args []string) error {
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

	res, err := e.Switch(args[0])
	if err != nil {
		return err
	}
	if res.Warning != "" {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", res.Warning)
	}
	fmt.Printf("✓ On branch %s\n", res.Branch)
	return nil
}
