package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/TimurManjosov/ledgerrules/internal/cli"
	"github.com/TimurManjosov/ledgerrules/internal/client"
	"github.com/TimurManjosov/ledgerrules/internal/i18n"
	"github.com/TimurManjosov/ledgerrules/internal/money"
)

var (
	// Global flags
	baseURL      string
	apiKey       string
	profile      string
	format       string
	lang         string
	catalogPath  string
	numberFormat string
	quiet        bool
	verbose      bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "rulectl",
	Short: "CLI tool for budget rule conditions",
	Long: `rulectl inspects and converts budget rule conditions and manages saved
transaction filters on a ledgerrules server.

Codec commands run locally; filter commands talk to the API.

Examples:
  rulectl fields
  rulectl ops number
  rulectl parse conditions.json
  rulectl validate conditions.yaml --remote
  rulectl filters list --profile prod
  rulectl export --output filters.yaml`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Base URL of the ledgerrules API")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Admin API key for filter writes")
	rootCmd.PersistentFlags().StringVar(&profile, "profile", "", "Server profile from the config file")
	rootCmd.PersistentFlags().StringVar(&format, "format", "table", "Output format (table, json, yaml)")
	rootCmd.PersistentFlags().StringVar(&lang, "lang", "", "Label language (default from config, then en)")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "YAML translation catalog")
	rootCmd.PersistentFlags().StringVar(&numberFormat, "number-format", "", "Amount input format (comma-dot, dot-comma, space-comma, apostrophe-dot, comma-dot-in)")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Suppress output")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose output")
}

// newClient builds an API client from flags, environment and config file.
func newClient() (*client.Client, error) {
	p, _, err := cli.GetProfile(profile, baseURL, apiKey)
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	c := client.NewClient(p.BaseURL, p.APIKey)
	c.Language = effectiveLanguage()
	return c, nil
}

func loadConfig() *cli.Config {
	cfg, err := cli.LoadConfig()
	if err != nil {
		return &cli.Config{}
	}
	return cfg
}

func effectiveLanguage() string {
	if lang != "" {
		return lang
	}
	return loadConfig().Language
}

func effectiveFormat() (money.NumberFormat, error) {
	name := numberFormat
	if name == "" {
		return loadConfig().Format(), nil
	}
	f := money.ParseNumberFormat(name)
	if string(f) != name {
		return "", fmt.Errorf("unknown number format %q", name)
	}
	return f, nil
}

func translator() (language.Tag, i18n.TranslateFunc, error) {
	cat := i18n.NewCatalog()
	if catalogPath != "" {
		if err := cat.LoadFile(catalogPath); err != nil {
			return language.Und, nil, err
		}
	}
	tag := cat.Match(effectiveLanguage())
	return tag, cat.Translator(tag), nil
}

func newPrinter(cmd *cobra.Command) (*cli.Printer, error) {
	_, t, err := translator()
	if err != nil {
		return nil, err
	}
	return &cli.Printer{W: cmd.OutOrStdout(), Format: cli.OutputFormat(format), T: t}, nil
}
