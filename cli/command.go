package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/slatebar/slate/config"
)

// CommandOptions holds common options for slate commands
type CommandOptions struct {
	ConfigFile string
	Verbose    bool
	JSONOutput bool
}

// NewStandardCommand creates a new command with standard slate flags
func NewStandardCommand(use, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		// Errors are rendered by the ErrorHandler in main, not by cobra.
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	// Standard flags for all slate tools
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().StringP("config", "c", "", "Path to slate config file")

	// Apply styled help
	SetStyledHelp(cmd)

	return cmd
}

// GetLogger creates a logger based on command flags
func GetLogger(cmd *cobra.Command) *logrus.Logger {
	var opts []LoggerOption

	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		opts = append(opts, WithLevel(logrus.DebugLevel))
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		opts = append(opts, WithFormatter(&logrus.JSONFormatter{}))
	}

	return NewLogger(opts...)
}

// GetOptions extracts common options from a command
func GetOptions(cmd *cobra.Command) CommandOptions {
	configFile, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	return CommandOptions{
		ConfigFile: configFile,
		Verbose:    verbose,
		JSONOutput: jsonOutput,
	}
}

// LoadConfig resolves and loads the configuration for a command: the
// --config flag when present, then the XDG config locations, then
// built-in defaults.
func LoadConfig(cmd *cobra.Command) (*config.Config, error) {
	configFile, _ := cmd.Flags().GetString("config")
	if configFile != "" {
		return config.Load(configFile)
	}
	return config.LoadDefault()
}
