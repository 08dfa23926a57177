package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"modelvault/internal/engine"
)

var (
	initArtifact    string
	initDescription string
	initDir         string
	initSeed        string
)

var initCmd = &cobra.Command{
	Use:   "init <name>",
	Short: "Create a new model project",
	Long: `Create a project skeleton in the target directory: the initial main
branch, the machine identity, and the embedded history log.

The working slot starts empty; pass --seed to copy an existing model
file into main's working slot so the first commit can snapshot it.

Examples:
  modelvault init tower --artifact tower.edb
  modelvault init tower --artifact tower.edb --seed ~/models/tower.edb`,
	Args: cobra.ExactArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&initArtifact, "artifact", "model.edb", "Artifact filename the project versions")
	initCmd.Flags().StringVar(&initDescription, "description", "", "Project description")
	initCmd.Flags().StringVar(&initDir, "dir", "", "Target directory (default is the current directory)")
	initCmd.Flags().StringVar(&initSeed, "seed", "", "Copy an existing model file into main's working slot")
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := initDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		dir = wd
	}

	project, err := engine.InitProject(dir, args[0], initDescription, initArtifact, initSeed)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Initialized project %q at %s\n", project.Name, dir)
	fmt.Printf("  Artifact: %s\n", project.ArtifactName)
	if initSeed != "" {
		fmt.Printf("  Seeded main from %s (uncommitted)\n", initSeed)
		fmt.Println("  Next: modelvault commit -m \"initial model\"")
	} else {
		fmt.Printf("  Place %s under branches/main/working/ to begin\n", project.ArtifactName)
	}
	return nil
}
