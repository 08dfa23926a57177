package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/alpkeskin/gotoon"
	"github.com/spf13/cobra"
)

var (
	infoJSON           bool
	infoToon           bool
	infoSetDescription string
)

// infoOutput joins the replicated project record with this machine's
// local identity for display.
type infoOutput struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	ArtifactName string    `json:"artifact_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MachineID    string    `json:"machine_id"`
	ActiveBranch string    `json:"active_branch"`
	LastPush     time.Time `json:"last_push,omitempty"`
	LastPull     time.Time `json:"last_pull,omitempty"`
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show project identity and metadata",
	Long: `Show the project's replicated identity (name, id, artifact,
description) together with this machine's local details.

--set-description updates the project description; the change
replicates to other machines on the next push.

Examples:
  modelvault info
  modelvault info --json
  modelvault info --set-description "40-story tower, seismic redesign"`,
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)

	infoCmd.Flags().BoolVar(&infoJSON, "json", false, "Output as JSON")
	infoCmd.Flags().BoolVar(&infoToon, "toon", false, "Output in LLM-friendly toon format")
	infoCmd.Flags().StringVar(&infoSetDescription, "set-description", "", "Set the project description")
}

func runInfo(cmd *cobra.Command, args []string) error {
	e, cleanup, err := openProject()
	if err != nil {
		return err
	}
	defer cleanup()

	if infoSetDescription != "" {
		unlock, err := lockProject(e)
		if err != nil {
			return err
		}
		defer unlock()

		project, err := e.Store.LoadProject()
		if err != nil {
			return err
		}
		project.Description = infoSetDescription
		project.UpdatedAt = e.Now().UTC()
		if err := e.Store.SaveProject(project); err != nil {
			return err
		}
		fmt.Printf("✓ Updated description for %s\n", project.Name)
		return nil
	}

	project, err := e.Store.LoadProject()
	if err != nil {
		return err
	}
	local, err := e.Store.LoadLocal()
	if err != nil {
		return err
	}
	out := infoOutput{
		ID:           project.ID,
		Name:         project.Name,
		Description:  project.Description,
		ArtifactName: project.ArtifactName,
		CreatedAt:    project.CreatedAt,
		UpdatedAt:    project.UpdatedAt,
		MachineID:    local.MachineID,
		ActiveBranch: local.ActiveBranch,
		LastPush:     local.LastPush,
		LastPull:     local.LastPull,
	}

	// Output JSON if requested
	if infoJSON {
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	// Output Toon if requested
	if infoToon {
		output, err := gotoon.Encode(out)
		if err != nil {
			return fmt.Errorf("failed to encode Toon: %w", err)
		}
		fmt.Println(output)
		return nil
	}

	fmt.Printf("Project:  %s (%s)\n", out.Name, out.ID)
	if out.Description != "" {
		fmt.Printf("About:    %s\n", out.Description)
	}
	fmt.Printf("Artifact: %s\n", out.ArtifactName)
	fmt.Printf("Created:  %s\n", out.CreatedAt.Local().Format("2006-01-02 15:04"))
	fmt.Printf("Machine:  %s\n", out.MachineID)
	fmt.Printf("Branch:   %s\n", out.ActiveBranch)
	if !out.LastPush.IsZero() {
		fmt.Printf("Pushed:   %s\n", out.LastPush.Local().Format("2006-01-02 15:04"))
	}
	if !out.LastPull.IsZero() {
		fmt.Printf("Pulled:   %s\n", out.LastPull.Local().Format("2006-01-02 15:04"))
	}
	return nil
}
