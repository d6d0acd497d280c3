package flags

import "github.com/spf13/cobra"

const (
	// ConfigFlagName exposes the configuration file flag name.
	ConfigFlagName = "config"
	// ConfigFlagUsage describes the configuration file flag purpose.
	ConfigFlagUsage = "Path to a configuration file (defaults to ./config.yaml or the user configuration directory)"
	// LogLevelFlagName exposes the log level flag name.
	LogLevelFlagName = "log-level"
	// LogLevelFlagUsage describes the log level flag purpose.
	LogLevelFlagUsage = "Diagnostic log level (debug, info, warn, error)"
	// LogFormatFlagName exposes the log format flag name.
	LogFormatFlagName = "log-format"
	// LogFormatFlagUsage describes the log format flag purpose.
	LogFormatFlagUsage = "Diagnostic log format (structured, console)"
	// DrupalRootFlagName exposes the Drupal root flag name.
	DrupalRootFlagName = "root"
	// DrupalRootFlagUsage describes the Drupal root flag purpose.
	DrupalRootFlagUsage = "Drupal document root relative to the project directory"
)

// GlobalFlagValues stores the values of the flags shared by every command.
type GlobalFlagValues struct {
	ConfigurationFilePath string
	LogLevel              string
	LogFormat             string
	DrupalRoot            string
}

// BindGlobalFlags attaches the shared persistent flags to the provided command.
func BindGlobalFlags(command *cobra.Command, defaults GlobalFlagValues) *GlobalFlagValues {
	values := defaults
	if command == nil {
		return &values
	}

	persistentFlagSet := command.PersistentFlags()
	persistentFlagSet.StringVar(&values.ConfigurationFilePath, ConfigFlagName, defaults.ConfigurationFilePath, ConfigFlagUsage)
	persistentFlagSet.StringVar(&values.LogLevel, LogLevelFlagName, defaults.LogLevel, LogLevelFlagUsage)
	persistentFlagSet.StringVar(&values.LogFormat, LogFormatFlagName, defaults.LogFormat, LogFormatFlagUsage)
	persistentFlagSet.StringVar(&values.DrupalRoot, DrupalRootFlagName, defaults.DrupalRoot, DrupalRootFlagUsage)

	return &values
}
