package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/alpkeskin/gotoon"
	"github.com/spf13/cobra"
)

var (
	verifyJSON bool
	verifyToon bool
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check every stored version against its recorded content id",
	Long: `Rehash every version's artifact and compare it with the content id
recorded at commit time, then cross-check the store's records against
the history log. Verification reads everything and repairs nothing;
the exit status is nonzero when any version fails.

Examples:
  modelvault verify
  modelvault verify --json`,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().BoolVar(&verifyJSON, "json", false, "Output as JSON")
	verifyCmd.Flags().BoolVar(&verifyToon, "toon", false, "Output in LLM-friendly toon format")
}

func runVerify(cmd *cobra.Command, args []string) error {
	e, cleanup, err := openProject()
	if err != nil {
		return err
	}
	defer cleanup()

	report, err := e.Verify()
	if err != nil {
		return err
	}

	// Output JSON if requested
	if verifyJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
		if !report.OK() {
			return fmt.Errorf("%d of %d versions failed verification", len(report.Findings), report.Checked)
		}
		return nil
	}

	// Output Toon if requested
	if verifyToon {
		output, err := gotoon.Encode(report)
		if err != nil {
			return fmt.Errorf("failed to encode Toon: %w", err)
		}
		fmt.Println(output)
		if !report.OK() {
			return fmt.Errorf("%d of %d versions failed verification", len(report.Findings), report.Checked)
		}
		return nil
	}

	for _, f := range report.Findings {
		fmt.Printf("  %s/v%d: %s\n", f.Branch, f.Ordinal, f.Problem)
	}
	if report.OK() {
		fmt.Printf("✓ Verified %d versions, no problems found\n", report.Checked)
		return nil
	}
	return fmt.Errorf("%d of %d versions failed verification", len(report.Findings), report.Checked)
}
