package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TimurManjosov/ledgerrules/internal/cli"
	"github.com/TimurManjosov/ledgerrules/internal/money"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Manage the rulectl configuration file.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration file",
	Long: `Create a default configuration file at ~/.ledgerrules/config.yaml
(or at $RULECTL_CONFIG).

Example:
  rulectl config init`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cli.InitConfig(); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		configPath, _ := cli.GetConfigPath()
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created at: %s\n", configPath)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cli.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Default Profile: %s\n", cfg.DefaultProfile)
		fmt.Fprintf(out, "Number Format: %s\n", cfg.Format())
		fmt.Fprintf(out, "Language: %s\n\n", cfg.Language)
		fmt.Fprintln(out, "Profiles:")
		for name, p := range cfg.Profiles {
			fmt.Fprintf(out, "  %s:\n", name)
			fmt.Fprintf(out, "    base_url: %s\n", p.BaseURL)
			fmt.Fprintf(out, "    api_key: %s\n", maskKey(p.APIKey))
		}
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long: `Get a configuration value. Keys are default_profile, number_format,
language, or <profile>.base_url and <profile>.api_key.

Examples:
  rulectl config get number_format
  rulectl config get local.base_url`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cli.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		out := cmd.OutOrStdout()
		switch args[0] {
		case "default_profile":
			fmt.Fprintln(out, cfg.DefaultProfile)
			return nil
		case "number_format":
			fmt.Fprintln(out, cfg.Format())
			return nil
		case "language":
			fmt.Fprintln(out, cfg.Language)
			return nil
		}

		name, key, ok := strings.Cut(args[0], ".")
		if !ok {
			return fmt.Errorf("invalid key format, expected 'profile.key' (e.g., 'local.base_url')")
		}
		p, ok := cfg.Profiles[name]
		if !ok {
			return fmt.Errorf("profile '%s' not found", name)
		}
		switch key {
		case "base_url":
			fmt.Fprintln(out, p.BaseURL)
		case "api_key":
			fmt.Fprintln(out, maskKey(p.APIKey))
		default:
			return fmt.Errorf("unknown key '%s', valid keys: base_url, api_key", key)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value.

Examples:
  rulectl config set number_format dot-comma
  rulectl config set prod.base_url https://rules.example.com
  rulectl config set prod.api_key my-secret-key`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cli.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		value := args[1]

		switch args[0] {
		case "default_profile":
			cfg.DefaultProfile = value
		case "number_format":
			if string(money.ParseNumberFormat(value)) != value {
				return fmt.Errorf("unknown number format '%s'", value)
			}
			cfg.NumberFormat = value
		case "language":
			cfg.Language = value
		default:
			name, key, ok := strings.Cut(args[0], ".")
			if !ok {
				return fmt.Errorf("invalid key format, expected 'profile.key' (e.g., 'local.base_url')")
			}
			p := cfg.Profiles[name]
			switch key {
			case "base_url":
				p.BaseURL = value
			case "api_key":
				p.APIKey = value
			default:
				return fmt.Errorf("unknown key '%s', valid keys: base_url, api_key", key)
			}
			cfg.Profiles[name] = p
		}

		if err := cli.SaveConfig(cfg); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "Successfully set %s\n", args[0])
		}
		return nil
	},
}

func maskKey(key string) string {
	if len(key) > 4 {
		return key[:4] + "***"
	}
	return "***"
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}
