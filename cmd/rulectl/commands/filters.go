package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/TimurManjosov/ledgerrules/internal/cli"
	"github.com/TimurManjosov/ledgerrules/internal/store"
)

var (
	createName string
	createOp   string
	createFrom string
	createID   string
)

var filtersCmd = &cobra.Command{
	Use:   "filters",
	Short: "Manage saved transaction filters",
}

var filtersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved filters",
	Long: `List all saved filters.

Examples:
  rulectl filters list
  rulectl filters list --profile prod --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}

		filters, err := c.ListFilters(context.Background())
		if err != nil {
			return fmt.Errorf("failed to list filters: %w", err)
		}

		if quiet {
			return nil
		}
		if len(filters) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No filters found")
			return nil
		}
		p, err := newPrinter(cmd)
		if err != nil {
			return err
		}
		return p.PrintFilters(filters)
	},
}

var filtersGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a saved filter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid filter id: %w", err)
		}
		c, err := newClient()
		if err != nil {
			return err
		}

		f, err := c.GetFilter(context.Background(), id)
		if err != nil {
			return fmt.Errorf("failed to get filter: %w", err)
		}
		p, err := newPrinter(cmd)
		if err != nil {
			return err
		}
		return p.PrintFilter(f)
	},
}

var filtersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create or replace a saved filter",
	Long: `Save a filter whose conditions are read from a JSON or YAML file.
The server validates the conditions before saving. Pass --id to replace an
existing filter.

Examples:
  rulectl filters create --name "Big spends" --from conditions.yaml
  rulectl filters create --name Rent --op or --from - < conditions.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if createName == "" {
			return fmt.Errorf("--name is required")
		}
		op, err := store.ParseConditionsOp(createOp)
		if err != nil {
			return err
		}
		conds, err := cli.ReadConditions(createFrom, cmd.InOrStdin())
		if err != nil {
			return err
		}

		params := store.UpsertParams{Name: createName, ConditionsOp: op, Conditions: conds}
		if createID != "" {
			if params.ID, err = uuid.Parse(createID); err != nil {
				return fmt.Errorf("invalid filter id: %w", err)
			}
		}

		c, err := newClient()
		if err != nil {
			return err
		}
		f, err := c.UpsertFilter(context.Background(), params)
		if err != nil {
			return fmt.Errorf("failed to save filter: %w", err)
		}

		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "Saved filter '%s' (%s)\n", f.Name, f.ID)
		}
		return nil
	},
}

var filtersDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved filter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid filter id: %w", err)
		}
		c, err := newClient()
		if err != nil {
			return err
		}
		if err := c.DeleteFilter(context.Background(), id); err != nil {
			return fmt.Errorf("failed to delete filter: %w", err)
		}
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted filter %s\n", id)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(filtersCmd)
	filtersCmd.AddCommand(filtersListCmd)
	filtersCmd.AddCommand(filtersGetCmd)
	filtersCmd.AddCommand(filtersCreateCmd)
	filtersCmd.AddCommand(filtersDeleteCmd)

	filtersCreateCmd.Flags().StringVar(&createName, "name", "", "Filter name")
	filtersCreateCmd.Flags().StringVar(&createOp, "op", "and", "How conditions combine (and, or)")
	filtersCreateCmd.Flags().StringVar(&createFrom, "from", "-", "Conditions file (default: stdin)")
	filtersCreateCmd.Flags().StringVar(&createID, "id", "", "Replace the filter with this id")
}
