package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var closeCmd = &cobra.Command{
	Use:   "close",
	Short: "End the editor session on the working file",
	Long: `Ask the editor to close the artifact and clear the recorded process
id. The close goes through the editor itself, so an unsaved-changes
dialog can block it; that surfaces as an error here and nothing is
cleared.

When the recorded editor process is already gone (a crash or a
force-kill), close is the explicit recovery step that clears the stale
record without involving the collaborator.`,
	RunE: runClose,
}

func init() {
	rootCmd.AddCommand(closeCmd)
}

func runClose(cmd *cobra.Command, args []string) error {
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

	res, err := e.Close(cmd.Context())
	if err != nil {
		return err
	}
	if res.Orphaned {
		fmt.Printf("✓ Cleared orphaned editor record on %s\n", res.Branch)
	} else {
		fmt.Printf("✓ Editor closed on %s\n", res.Branch)
	}
	return nil
}
