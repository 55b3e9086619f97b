package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/TimurManjosov/ledgerrules/internal/rules"
	"github.com/TimurManjosov/ledgerrules/internal/store"
)

var (
	exportOutput string
	importDryRun bool
	importForce  bool
	importKeepID bool
)

// ExportFormat represents the structure for exporting filters
type ExportFormat struct {
	Filters []store.Filter `yaml:"filters" json:"filters"`
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export saved filters to a file",
	Long: `Export all saved filters to a YAML or JSON file.

Examples:
  rulectl export --output filters.yaml
  rulectl export --format json --output filters.json
  rulectl export --profile prod > backup.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}

		filters, err := c.ListFilters(context.Background())
		if err != nil {
			return fmt.Errorf("failed to list filters: %w", err)
		}
		exportData := ExportFormat{Filters: filters}

		var output io.Writer = cmd.OutOrStdout()
		if exportOutput != "" && exportOutput != "-" {
			f, err := os.Create(exportOutput)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer f.Close()
			output = f
		}

		switch format {
		case "json":
			encoder := json.NewEncoder(output)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(exportData); err != nil {
				return fmt.Errorf("failed to encode JSON: %w", err)
			}
		case "yaml", "table":
			encoder := yaml.NewEncoder(output)
			defer encoder.Close()
			encoder.SetIndent(2)
			if err := encoder.Encode(exportData); err != nil {
				return fmt.Errorf("failed to encode YAML: %w", err)
			}
		default:
			return fmt.Errorf("unsupported export format: %s", format)
		}

		if exportOutput != "" && exportOutput != "-" && !quiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "Successfully exported %d filter(s) to %s\n", len(filters), exportOutput)
		}
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import saved filters from a file",
	Long: `Import filters from a YAML or JSON export. Conditions are checked
locally first; the server validates them again on save. Filters get new ids
unless --keep-ids is set.

Examples:
  rulectl import filters.yaml
  rulectl import filters.yaml --dry-run
  rulectl import filters.yaml --profile prod --keep-ids --force`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		var importData ExportFormat
		if err := yaml.Unmarshal(data, &importData); err != nil {
			return fmt.Errorf("failed to parse file: %w", err)
		}
		if len(importData.Filters) == 0 {
			return fmt.Errorf("no filters found in file")
		}
		if verbose {
			fmt.Fprintf(out, "Found %d filter(s) to import\n", len(importData.Filters))
		}

		for _, f := range importData.Filters {
			if _, err := rules.ValidateConditions(f.Conditions); err != nil {
				return fmt.Errorf("filter '%s': %w", f.Name, err)
			}
		}

		if importDryRun {
			fmt.Fprintln(out, "Dry run mode - the following filters would be imported:")
			for _, f := range importData.Filters {
				fmt.Fprintf(out, "  - %s (%s, %d conditions)\n", f.Name, f.ConditionsOp, len(f.Conditions))
			}
			return nil
		}

		c, err := newClient()
		if err != nil {
			return err
		}
		ctx := context.Background()

		successCount := 0
		errorCount := 0
		for _, f := range importData.Filters {
			params := store.UpsertParams{Name: f.Name, ConditionsOp: f.ConditionsOp, Conditions: f.Conditions}
			if importKeepID {
				params.ID = f.ID
			}
			if verbose {
				fmt.Fprintf(out, "Importing filter: %s\n", f.Name)
			}
			if _, err := c.UpsertFilter(ctx, params); err != nil {
				errorCount++
				fmt.Fprintf(cmd.ErrOrStderr(), "Failed to import filter '%s': %v\n", f.Name, err)
				if !importForce {
					return fmt.Errorf("import failed, use --force to continue on errors")
				}
			} else {
				successCount++
			}
		}

		if !quiet {
			fmt.Fprintf(out, "Import complete: %d succeeded, %d failed\n", successCount, errorCount)
		}
		if errorCount > 0 {
			return fmt.Errorf("import completed with errors")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)

	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: stdout)")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Validate without importing")
	importCmd.Flags().BoolVar(&importForce, "force", false, "Continue on errors")
	importCmd.Flags().BoolVar(&importKeepID, "keep-ids", false, "Replace filters with the exported ids")
}
