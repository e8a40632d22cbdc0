package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/andri/pocs/pkg/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// ConfigShowOptions holds options for the config show command
type ConfigShowOptions struct {
	Format string
}

// ConfigValidateOptions holds options for the config validate command
type ConfigValidateOptions struct {
	ConfigFile string
	Format     string
}

// newConfigCmd creates the config subcommand with its subcommands
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage pocs configuration.

Configuration is loaded from multiple sources in order of precedence:
  1. CLI flags (highest priority)
  2. Environment variables (POCS_* prefix, e.g. POCS_DATABASE_PATH)
  3. Config file (./pocs.yaml, ~/.config/pocs/config.yaml, /etc/pocs/config.yaml)
  4. Default values (lowest priority)`,
	}

	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigValidateCmd())

	return cmd
}

// newConfigShowCmd creates the config show subcommand
func newConfigShowCmd() *cobra.Command {
	opts := &ConfigShowOptions{}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Long:  `Show the configuration after merging defaults, the config file, POCS_* variables and flags.`,
		Example: `  # Show configuration in YAML format (default)
  pocs config show

  # Show configuration in JSON format
  pocs config show --format json

  # Show what a different database and zone would resolve to
  pocs --database /tmp/demo.sqlite3 --time-zone Asia/Tokyo config show`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "yaml", "output format: yaml, json")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFixed("yaml", "json"))

	return cmd
}

// newConfigValidateCmd creates the config validate subcommand
func newConfigValidateCmd() *cobra.Command {
	opts := &ConfigValidateOptions{}

	cmd := &cobra.Command{
		Use:   "validate [config-file]",
		Short: "Validate configuration",
		Long: `Validate configuration and report any errors or warnings.

Returns exit code 0 if configuration is valid, 1 if there are errors.
Warnings are reported but don't affect the exit code.`,
		Example: `  # Validate the configuration pocs would use
  pocs config validate

  # Validate a specific config file as JSON
  pocs config validate ./pocs.yaml --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.ConfigFile = args[0]
			}
			return runConfigValidate(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "text", "output format: text, json, yaml")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFixed("text", "json", "yaml"))

	return cmd
}

// ConfigOutput represents the configuration output structure
type ConfigOutput struct {
	ConfigFile string        `json:"configFile,omitempty" yaml:"configFile,omitempty"`
	Config     config.Config `json:"config" yaml:"config"`
}

// ValidationOutput represents validation results for output
type ValidationOutput struct {
	ConfigFile string   `json:"configFile,omitempty" yaml:"configFile,omitempty"`
	Valid      bool     `json:"valid" yaml:"valid"`
	Errors     []string `json:"errors,omitempty" yaml:"errors,omitempty"`
	Warnings   []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

func runConfigShow(cmd *cobra.Command, opts *ConfigShowOptions) error {
	out := cmd.OutOrStdout()

	output := ConfigOutput{Config: GlobalOptions.Config}
	result, err := config.LoadConfig(config.LoadOptions{ConfigFile: GlobalOptions.ConfigFile})
	if err == nil {
		output.ConfigFile = result.ConfigFileUsed
	}

	switch strings.ToLower(opts.Format) {
	case "json":
		data, marshalErr := json.MarshalIndent(output, "", "  ")
		if marshalErr != nil {
			return fmt.Errorf("failed to marshal config: %w", marshalErr)
		}
		_, _ = fmt.Fprintln(out, string(data))
	case "yaml":
		data, marshalErr := yaml.Marshal(output)
		if marshalErr != nil {
			return fmt.Errorf("failed to marshal config: %w", marshalErr)
		}
		_, _ = fmt.Fprint(out, string(data))
	default:
		return fmt.Errorf("unknown format %q (valid formats: yaml, json)", opts.Format)
	}

	return nil
}

func runConfigValidate(cmd *cobra.Command, opts *ConfigValidateOptions) error {
	out := cmd.OutOrStdout()

	configFile := opts.ConfigFile
	if configFile == "" {
		configFile = GlobalOptions.ConfigFile
	}

	result, loadErr := config.LoadConfig(config.LoadOptions{
		ConfigFile: configFile,
		Flags:      buildFlagSet(cmd),
	})

	output := ValidationOutput{
		ConfigFile: result.ConfigFileUsed,
		Valid:      true,
		Warnings:   result.Validation.Warnings,
	}

	var vErr *config.ValidationError
	switch {
	case loadErr == nil:
	case errors.As(loadErr, &vErr):
		for _, err := range result.Validation.Errors {
			output.Errors = append(output.Errors, err.Error())
		}
	default:
		output.Errors = append(output.Errors, loadErr.Error())
	}
	output.Valid = len(output.Errors) == 0

	switch strings.ToLower(opts.Format) {
	case "json":
		data, marshalErr := json.MarshalIndent(output, "", "  ")
		if marshalErr != nil {
			return fmt.Errorf("failed to marshal validation result: %w", marshalErr)
		}
		_, _ = fmt.Fprintln(out, string(data))

	case "yaml":
		data, marshalErr := yaml.Marshal(output)
		if marshalErr != nil {
			return fmt.Errorf("failed to marshal validation result: %w", marshalErr)
		}
		_, _ = fmt.Fprint(out, string(data))

	default:
		if output.ConfigFile != "" {
			_, _ = fmt.Fprintf(out, "Config file: %s\n\n", output.ConfigFile)
		} else {
			_, _ = fmt.Fprint(out, "Config file: (none - using defaults)\n\n")
		}

		if output.Valid {
			_, _ = fmt.Fprintln(out, "Configuration is valid.")
		} else {
			_, _ = fmt.Fprintln(out, "Configuration has errors:")
			for _, err := range output.Errors {
				_, _ = fmt.Fprintf(out, "  - %s\n", err)
			}
		}

		if len(output.Warnings) > 0 {
			_, _ = fmt.Fprintln(out, "\nWarnings:")
			for _, warn := range output.Warnings {
				_, _ = fmt.Fprintf(out, "  - %s\n", warn)
			}
		}
	}

	if !output.Valid {
		return fmt.Errorf("configuration validation failed")
	}

	return nil
}
