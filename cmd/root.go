package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"modelvault/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "modelvault",
	Short: "Version control for binary engineering model files",
	Long: `modelvault versions the binary model files that engineering tools
produce (ETABS-style .edb artifacts) without ever parsing them:
  - immutable version snapshots with content ids and text exports
  - per-branch working files, stash, and editor session tracking
  - an embedded git history log for audit and diffs
  - replication between machines over a plain shared folder

The modeling tool itself is driven through an external collaborator
process; modelvault orchestrates files, state, and history around it.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/modelvault/config.toml)")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".config", "modelvault")
		viper.AddConfigPath(configDir)
		viper.SetConfigType("toml")
		viper.SetConfigName("config")
	}

	viper.AutomaticEnv()
	config.SetDefaults()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
