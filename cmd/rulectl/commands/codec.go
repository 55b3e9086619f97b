package commands

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/TimurManjosov/ledgerrules/internal/cli"
	"github.com/TimurManjosov/ledgerrules/internal/rules"
)

var (
	valueOp string
)

var parseCmd = &cobra.Command{
	Use:   "parse [file|-]",
	Short: "Convert wire conditions to editor form",
	Long: `Read wire conditions (JSON or YAML) and print their editor form.
Amounts in minor units become decimal amounts.

Examples:
  rulectl parse conditions.json
  echo '{"field":"amount","op":"is","value":1234}' | rulectl parse --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		conds, err := cli.ReadConditions(argOrStdin(args), cmd.InOrStdin())
		if err != nil {
			return err
		}
		for i, c := range conds {
			conds[i] = rules.Parse(c.Typed())
		}
		p, err := newPrinter(cmd)
		if err != nil {
			return err
		}
		return p.PrintConditions(conds, nil)
	},
}

var unparseCmd = &cobra.Command{
	Use:   "unparse [file|-]",
	Short: "Convert editor conditions to wire form",
	Long: `Read editor conditions (JSON or YAML) and print their wire form.
Decimal amounts become integer minor units.

Examples:
  rulectl unparse edited.yaml --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		conds, err := cli.ReadConditions(argOrStdin(args), cmd.InOrStdin())
		if err != nil {
			return err
		}
		for i, c := range conds {
			conds[i] = rules.Unparse(c.Typed())
		}
		p, err := newPrinter(cmd)
		if err != nil {
			return err
		}
		return p.PrintConditions(conds, nil)
	},
}

var valueCmd = &cobra.Command{
	Use:   "value <field> <input>",
	Short: "Apply typed input to a fresh condition",
	Long: `Start a condition for field with its defaults and apply input the way
the editor does. Amount input is read in the configured number format.

Examples:
  rulectl value amount "1,234.56"
  rulectl value amount-outflow "1.234,56" --number-format dot-comma
  rulectl value notes rent --op contains`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := rules.ConfigureDefaults(args[0])
		if c.Type == "" {
			return fmt.Errorf("unknown field %q", args[0])
		}
		if valueOp != "" {
			op := rules.Operator(valueOp)
			if !rules.AllowsOperator(c.Type, op) {
				return fmt.Errorf("operator %q is not valid for %s fields", valueOp, c.Type)
			}
			c.Op = op
		}

		nf, err := effectiveFormat()
		if err != nil {
			return err
		}

		var input any = args[1]
		if c.Type == rules.TypeBoolean {
			b, err := strconv.ParseBool(args[1])
			if err != nil {
				return fmt.Errorf("boolean input must be true or false")
			}
			input = b
		} else if c.Op == rules.OpIsBetween || c.Op == rules.OpOneOf {
			var structured any
			if err := json.Unmarshal([]byte(args[1]), &structured); err != nil {
				return fmt.Errorf("%s input must be JSON: %w", c.Op, err)
			}
			input = structured
		}

		p, err := newPrinter(cmd)
		if err != nil {
			return err
		}
		return p.PrintConditions([]rules.Condition{rules.MakeValue(input, c, nf)}, nil)
	},
}

var approxCmd = &cobra.Command{
	Use:   "approx <amount>",
	Short: "Show the isapprox tolerance for an amount",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("amount must be a number: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d\n", rules.ApproxThreshold(n))
		return nil
	},
}

func argOrStdin(args []string) string {
	if len(args) == 0 {
		return "-"
	}
	return args[0]
}

func init() {
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(unparseCmd)
	rootCmd.AddCommand(valueCmd)
	rootCmd.AddCommand(approxCmd)

	valueCmd.Flags().StringVar(&valueOp, "op", "", "Operator (default: the first operator of the field type)")
}
