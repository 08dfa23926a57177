package cmd

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/alpkeskin/gotoon"
	"github.com/spf13/cobra"

	"modelvault/internal/store"
)

var (
	statsJSON bool
	statsToon bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show version statistics and storage usage",
	Long: `Display statistics about the project including:
  - Total version count and date range
  - Versions per branch
  - Storage used by artifacts and exports
  - Analysis coverage
  - Versions per author
  - Recent commit activity

Examples:
  modelvault stats
  modelvault stats --json
  modelvault stats --toon`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output as JSON")
	statsCmd.Flags().BoolVar(&statsToon, "toon", false, "Output in LLM-friendly toon format")
}

type projectStats struct {
	TotalVersions int             `json:"total_versions"`
	TotalBranches int             `json:"total_branches"`
	StorageBytes  int64           `json:"storage_bytes"`
	Analyzed      int             `json:"analyzed"`
	NotAnalyzed   int             `json:"not_analyzed"`
	OldestVersion *time.Time      `json:"oldest_version,omitempty"`
	NewestVersion *time.Time      `json:"newest_version,omitempty"`
	ByBranch      []branchStat    `json:"by_branch"`
	ByAuthor      []authorStat    `json:"by_author"`
	DailyActivity []dailyActivity `json:"daily_activity"`
}

type branchStat struct {
	Branch   string `json:"branch"`
	Versions int    `json:"versions"`
	Bytes    int64  `json:"bytes"`
}

type authorStat struct {
	Author   string `json:"author"`
	Versions int    `json:"versions"`
}

type dailyActivity struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

func runStats(cmd *cobra.Command, args []string) error {
	e, cleanup, err := openProject()
	if err != nil {
		return err
	}
	defer cleanup()

	project, err := e.Store.LoadProject()
	if err != nil {
		return err
	}
	branches, err := e.Store.ListBranches()
	if err != nil {
		return err
	}

	// Collect statistics
	stats := &projectStats{TotalBranches: len(branches)}
	byAuthor := make(map[string]int)
	byDate := make(map[string]int)

	for _, b := range branches {
		ordinals, err := e.Store.ListVersionOrdinals(b.Name)
		if err != nil {
			return err
		}
		bs := branchStat{Branch: b.Name, Versions: len(ordinals)}
		for _, n := range ordinals {
			version, err := e.Store.LoadVersion(b.Name, n)
			if err != nil {
				continue
			}
			stats.TotalVersions++

			// Track oldest/newest
			if stats.OldestVersion == nil || version.CreatedAt.Before(*stats.OldestVersion) {
				t := version.CreatedAt
				stats.OldestVersion = &t
			}
			if stats.NewestVersion == nil || version.CreatedAt.After(*stats.NewestVersion) {
				t := version.CreatedAt
				stats.NewestVersion = &t
			}

			if version.Analyzed {
				stats.Analyzed++
			} else {
				stats.NotAnalyzed++
			}
			byAuthor[version.Author]++
			byDate[version.CreatedAt.Local().Format("2006-01-02")]++

			// Size of the slot's artifact and export; missing files
			// just contribute nothing.
			if size, err := store.FileSize(e.Store.VersionArtifactPath(b.Name, n, project.ArtifactName)); err == nil {
				bs.Bytes += size
			}
			if size, err := store.FileSize(e.Store.VersionExportPath(b.Name, n, project.ArtifactName)); err == nil {
				bs.Bytes += size
			}
		}
		stats.StorageBytes += bs.Bytes
		stats.ByBranch = append(stats.ByBranch, bs)
	}

	if stats.TotalVersions == 0 {
		fmt.Println("No versions found")
		return nil
	}

	sort.Slice(stats.ByBranch, func(i, j int) bool {
		return stats.ByBranch[i].Versions > stats.ByBranch[j].Versions
	})

	// Build author ranking
	for author, count := range byAuthor {
		stats.ByAuthor = append(stats.ByAuthor, authorStat{Author: author, Versions: count})
	}
	sort.Slice(stats.ByAuthor, func(i, j int) bool {
		return stats.ByAuthor[i].Versions > stats.ByAuthor[j].Versions
	})

	// Build daily activity
	for date, count := range byDate {
		stats.DailyActivity = append(stats.DailyActivity, dailyActivity{Date: date, Count: count})
	}
	sort.Slice(stats.DailyActivity, func(i, j int) bool {
		return stats.DailyActivity[i].Date > stats.DailyActivity[j].Date
	})

	// Output JSON if requested
	if statsJSON {
		output, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}

	// Output Toon if requested
	if statsToon {
		output, err := gotoon.Encode(stats)
		if err != nil {
			return fmt.Errorf("failed to encode Toon: %w", err)
		}
		fmt.Println(output)
		return nil
	}

	// Display human-readable stats
	fmt.Println("Project Statistics")
	fmt.Println("━━━━━━━━━━━━━━━━━━")
	fmt.Println()

	fmt.Printf("Total Versions: %d across %d branches\n", stats.TotalVersions, stats.TotalBranches)
	fmt.Printf("Storage Used:   %s\n", formatBytes(stats.StorageBytes))
	if stats.OldestVersion != nil && stats.NewestVersion != nil {
		fmt.Printf("Date Range:     %s to %s\n",
			stats.OldestVersion.Local().Format("2006-01-02"),
			stats.NewestVersion.Local().Format("2006-01-02"))
	}
	fmt.Println()

	// Branch breakdown
	fmt.Println("By Branch:")
	for _, bs := range stats.ByBranch {
		fmt.Printf("  %-20s %3d  %s\n", bs.Branch, bs.Versions, formatBytes(bs.Bytes))
	}
	fmt.Println()

	// Analysis coverage
	fmt.Println("Analysis Coverage:")
	percentage := float64(stats.Analyzed) / float64(stats.TotalVersions) * 100
	fmt.Printf("  Analyzed:     %3d  (%.1f%%)\n", stats.Analyzed, percentage)
	fmt.Printf("  Not analyzed: %3d  (%.1f%%)\n", stats.NotAnalyzed, 100-percentage)
	fmt.Println()

	// Author ranking
	if len(stats.ByAuthor) > 0 {
		fmt.Println("By Author:")
		limit := 10
		if len(stats.ByAuthor) < limit {
			limit = len(stats.ByAuthor)
		}
		for i := 0; i < limit; i++ {
			as := stats.ByAuthor[i]
			fmt.Printf("  %-30s %3d\n", as.Author, as.Versions)
		}
		fmt.Println()
	}

	// Recent activity
	if len(stats.DailyActivity) > 0 {
		fmt.Println("Recent Activity:")
		limit := 7
		if len(stats.DailyActivity) < limit {
			limit = len(stats.DailyActivity)
		}
		for i := 0; i < limit; i++ {
			da := stats.DailyActivity[i]
			bar := ""
			for j := 0; j < da.Count && j < 20; j++ {
				bar += "█"
			}
			fmt.Printf("  %s  %3d  %s\n", da.Date, da.Count, bar)
		}
	}

	return nil
}

// formatBytes renders a byte count in the largest sensible unit.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
