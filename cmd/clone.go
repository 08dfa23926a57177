package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"modelvault/internal/replicate"
)

var cloneCmd = &cobra.Command{
	Use:   "clone <remote> <dir>",
	Short: "Bootstrap a local project from a shared remote",
	Long: `Create a fresh project directory from a remote's descriptor and pull
every branch and version it holds. The clone keeps the remote's
project identity but gets its own machine id, so later pushes and
pulls reconcile cleanly with the machines that came before it.

Example:
  modelvault clone /mnt/share/tower ./tower`,
	Args: cobra.ExactArgs(2),
	RunE: runClone,
}

func init() {
	rootCmd.AddCommand(cloneCmd)
}

func runClone(cmd *cobra.Command, args []string) error {
	remote := &replicate.Remote{Root: args[0]}
	dir := args[1]

	res, err := replicate.Clone(remote, dir)
	if err != nil {
		return err
	}

	for _, warning := range res.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", warning)
	}
	for _, label := range res.Imported {
		fmt.Printf("  Imported %s\n", label)
	}
	for _, name := range res.NewBranches {
		fmt.Printf("  Branch %s\n", name)
	}
	fmt.Printf("✓ Cloned %s into %s\n", remote.Root, dir)
	fmt.Printf("  Run 'modelvault status' inside %s to get started\n", dir)
	return nil
}
