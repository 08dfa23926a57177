package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var unlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Clear an editor-applied edit lock",
	Long: `Clear the edit lock the editor embeds in the working file, via the
collaborator, after a fresh check that no editor is actually running.
The collaborator mutates the file, so its state reads modified
afterwards.`,
	RunE: runUnlock,
}

func init() {
	rootCmd.AddCommand(unlockCmd)
}

func runUnlock(cmd *cobra.Command, args []string) error {
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

	if err := e.Unlock(cmd.Context()); err != nil {
		return err
	}
	fmt.Println("✓ Edit lock cleared")
	return nil
}
