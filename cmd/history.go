package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/alpkeskin/gotoon"
	"github.com/spf13/cobra"
)

var (
	historyLimit    int
	historyBranch   string
	historyInternal bool
	historyJSON     bool
	historyToon     bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded versions from the history log",
	Long: `List history log entries, newest first. Internal bookkeeping entries
(analysis markers, renumber records) are filtered out; pass
--internal to see the full audit trail.

Examples:
  modelvault history
  modelvault history --branch lighter-core --limit 5
  modelvault history --json`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVar(&historyLimit, "limit", 0, "Show at most this many entries")
	historyCmd.Flags().StringVar(&historyBranch, "branch", "", "Restrict to one branch's entries")
	historyCmd.Flags().BoolVar(&historyInternal, "internal", false, "Include internal bookkeeping entries")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output as JSON")
	historyCmd.Flags().BoolVar(&historyToon, "toon", false, "Output in LLM-friendly toon format")
}

func runHistory(cmd *cobra.Command, args []string) error {
	e, cleanup, err := openProject()
	if err != nil {
		return err
	}
	defer cleanup()

	entries, err := e.Log.Entries(historyBranch, historyLimit, historyInternal)
	if err != nil {
		return err
	}

	// Output JSON if requested
	if historyJSON {
		output, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}

	// Output Toon if requested
	if historyToon {
		output, err := gotoon.Encode(entries)
		if err != nil {
			return fmt.Errorf("failed to encode Toon: %w", err)
		}
		fmt.Println(output)
		return nil
	}

	if len(entries) == 0 {
		fmt.Println("No versions recorded yet")
		return nil
	}
	for _, entry := range entries {
		ref := "          "
		if entry.Branch != "" {
			ref = fmt.Sprintf("%s/v%d", entry.Branch, entry.Ordinal)
		}
		marker := ""
		if entry.Internal {
			marker = " [internal]"
		}
		fmt.Printf("%s  %-16s %s%s\n", entry.Date.Local().Format("2006-01-02 15:04"), ref, entry.Message, marker)
		fmt.Printf("                    %s\n", entry.Author)
	}
	return nil
}
