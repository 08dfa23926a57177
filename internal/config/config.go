package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// SetDefaults installs the baseline configuration every command assumes.
func SetDefaults() {
	viper.SetDefault("author.name", "engineer")
	viper.SetDefault("author.email", "engineer@localhost")
	viper.SetDefault("automation.command", "")
	viper.SetDefault("automation.timeout", "5m")
	viper.SetDefault("remote.path", "")
	viper.SetDefault("storage.free_margin_mb", 512)
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.file", "modelvault.log")
	viper.SetDefault("logging.max_size_mb", 10)
	viper.SetDefault("logging.max_backups", 5)
	viper.SetDefault("logging.max_age_days", 30)
}

// GetAuthorName returns the configured commit author name
func GetAuthorName() string {
	return viper.GetString("author.name")
}

// GetAuthorEmail returns the configured commit author email
func GetAuthorEmail() string {
	return viper.GetString("author.email")
}

// Author returns the author in "Name <email>" form
func Author() string {
	return fmt.Sprintf("%s <%s>", GetAuthorName(), GetAuthorEmail())
}

// GetAutomationCommand returns the collaborator executable
func GetAutomationCommand() string {
	return viper.GetString("automation.command")
}

// GetAutomationTimeout returns the per-operation collaborator timeout
func GetAutomationTimeout() time.Duration {
	return viper.GetDuration("automation.timeout")
}

// GetRemotePath returns the configured shared-folder remote
func GetRemotePath() string {
	return viper.GetString("remote.path")
}

// GetFreeMarginBytes returns the disk-space safety margin for preflights
func GetFreeMarginBytes() uint64 {
	return uint64(viper.GetInt64("storage.free_margin_mb")) * 1024 * 1024
}

// GetLogLevel returns the configured log level
func GetLogLevel() string {
	return viper.GetString("logging.level")
}

// GetLogFile returns the log filename inside the project's logs directory
func GetLogFile() string {
	return viper.GetString("logging.file")
}

// GetLogMaxSizeMB returns the rotation size threshold
func GetLogMaxSizeMB() int {
	return viper.GetInt("logging.max_size_mb")
}

// GetLogMaxBackups returns how many rotated log files to keep
func GetLogMaxBackups() int {
	return viper.GetInt("logging.max_backups")
}

// GetLogMaxAgeDays returns how long rotated log files are kept
func GetLogMaxAgeDays() int {
	return viper.GetInt("logging.max_age_days")
}
