package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/slatebar/slate/cli"
	"github.com/slatebar/slate/config"
)

// NewConfigCmd returns the config command tree.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and validate the slate configuration",
	}
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigSchemaCmd())
	cmd.AddCommand(newConfigValidateCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: `Loads the configuration the daemons would load (flag, then XDG config
locations, then built-in defaults) and prints the final result as YAML.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}

			if path, err := config.FindConfigFile(); err == nil {
				fmt.Printf("# Source: %s\n", path)
			} else {
				fmt.Println("# Source: built-in defaults")
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			fmt.Print(string(data))
			return nil
		},
	}
}

func newConfigSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the configuration JSON schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := config.GenerateSchema()
			if err != nil {
				return fmt.Errorf("failed to generate schema: %w", err)
			}
			fmt.Println(string(schema))
			return nil
		},
	}
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			} else if found, err := config.FindConfigFile(); err == nil {
				path = found
			} else {
				fmt.Println("No configuration file found; defaults are always valid.")
				return nil
			}

			if _, err := config.Load(path); err != nil {
				fmt.Fprintf(os.Stderr, "❌ %s: %v\n", path, err)
				os.Exit(1)
			}
			fmt.Printf("✓ %s is valid\n", path)
			return nil
		},
	}
}
