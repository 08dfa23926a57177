package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var openCmd = &cobra.Command{
	Use:   "open",
	Short: "Open the working file in the modeling editor",
	Long: `Launch the editor on the active branch's working file through the
collaborator and record the editor's process id. While the editor is
live every mutating operation on the branch is blocked.

An existing edit lock blocks the launch; clear it with
'modelvault unlock' first.`,
	RunE: runOpen,
}

func init() {
	rootCmd.AddCommand(openCmd)
}

func runOpen(cmd *cobra.Command, args []string) error {
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

	res, err := e.Open(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("✓ Editor open on %s (pid %d)\n", res.Branch, res.PID)
	fmt.Println("  Run 'modelvault close' when you are done")
	return nil
}
