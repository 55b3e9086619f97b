package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TimurManjosov/ledgerrules/internal/cli"
	"github.com/TimurManjosov/ledgerrules/internal/rules"
)

var (
	validateRemote bool
)

var validateCmd = &cobra.Command{
	Use:   "validate [file|-]",
	Short: "Validate wire conditions",
	Long: `Validate wire conditions the way rule validation does and print one
result per condition. Month and year dates are shown normalized.
Exits non-zero when any condition is invalid.

Examples:
  rulectl validate conditions.yaml
  rulectl validate conditions.json --remote --profile prod`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		conds, err := cli.ReadConditions(argOrStdin(args), cmd.InOrStdin())
		if err != nil {
			return err
		}

		var res rules.ValidateResult
		if validateRemote {
			c, err := newClient()
			if err != nil {
				return err
			}
			resp, err := c.Validate(context.Background(), conds)
			if err != nil {
				return fmt.Errorf("failed to validate: %w", err)
			}
			res = rules.ValidateResult{Conditions: resp.Conditions, ConditionErrors: resp.ConditionErrors}
		} else {
			res = rules.Validate(rules.ValidateRequest{Conditions: conds, Actions: []json.RawMessage{}})
		}

		if !quiet {
			p, err := newPrinter(cmd)
			if err != nil {
				return err
			}
			if err := p.PrintConditions(res.Conditions, res.ConditionErrors); err != nil {
				return err
			}
		}

		if !res.Valid() {
			invalid := 0
			for _, k := range res.ConditionErrors {
				if k != rules.ErrKindNone {
					invalid++
				}
			}
			return fmt.Errorf("%d of %d conditions are invalid", invalid, len(res.ConditionErrors))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateRemote, "remote", false, "Validate on the API server")
}
