package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var pullRemote string

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Import versions other machines pushed to the remote",
	Long: `Copy every version the remote holds that this machine lacks, verify
each artifact against the descriptor's content id, and record the
imports in the history log under the original author's name.

Branches that other machines created are checked out into the local
workspace; branches that already exist locally are never touched
beyond their version slots. Machine-local settings stay local.

Examples:
  modelvault pull
  modelvault pull --remote /mnt/share/tower`,
	RunE: runPull,
}

func init() {
	rootCmd.AddCommand(pullCmd)

	pullCmd.Flags().StringVar(&pullRemote, "remote", "", "Shared-folder remote (default: remote.path from config)")
}

func runPull(cmd *cobra.Command, args []string) error {
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

	remote, err := resolveRemote(pullRemote)
	if err != nil {
		return err
	}

	res, err := newReplicator(e).Pull(remote)
	if err != nil {
		return err
	}

	for _, warning := range res.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", warning)
	}
	for _, label := range res.Imported {
		fmt.Printf("  Imported %s\n", label)
	}
	for _, label := range res.Updated {
		fmt.Printf("  Updated %s (analysis results)\n", label)
	}
	for _, name := range res.NewBranches {
		fmt.Printf("  New branch %s\n", name)
	}
	if len(res.Imported) == 0 && len(res.Updated) == 0 && len(res.NewBranches) == 0 {
		fmt.Println("✓ Already up to date")
	} else {
		fmt.Printf("✓ Pulled from %s\n", remote.Root)
	}
	return nil
}
