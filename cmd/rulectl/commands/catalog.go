package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TimurManjosov/ledgerrules/internal/rules"
	"github.com/TimurManjosov/ledgerrules/internal/snapshot"
)

var (
	fieldsRemote bool
	opsSubfield  string
)

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List filter fields",
	Long: `List the fields offered by the filter editor with their types,
labels, operators and subfields.

Examples:
  rulectl fields
  rulectl fields --lang fr --catalog fr.yaml
  rulectl fields --remote --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tag, t, err := translator()
		if err != nil {
			return err
		}
		p, err := newPrinter(cmd)
		if err != nil {
			return err
		}

		var snap *snapshot.Snapshot
		if fieldsRemote {
			c, err := newClient()
			if err != nil {
				return err
			}
			snap, err = c.Fields(context.Background())
			if err != nil {
				return fmt.Errorf("failed to fetch fields: %w", err)
			}
		} else {
			snap = snapshot.Build(tag, t)
		}
		return p.PrintFields(snap)
	},
}

var opsCmd = &cobra.Command{
	Use:   "ops <type|field>",
	Short: "List operators for a field type",
	Long: `List the operators valid for a field type (date, id, string, number,
boolean) or for a field, with their display labels.

Examples:
  rulectl ops number
  rulectl ops date --subfield month`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, field, err := resolveType(args[0])
		if err != nil {
			return err
		}

		ops := rules.OperatorsFor(typ)
		if opsSubfield != "" {
			if field == "" {
				return fmt.Errorf("--subfield needs a field, not a type")
			}
			ops = rules.OperatorsForSubfield(field, rules.Subfield(opsSubfield))
		}

		p, err := newPrinter(cmd)
		if err != nil {
			return err
		}
		return p.PrintOperators(typ, ops)
	},
}

// resolveType accepts a type name or a (possibly compound) field name.
func resolveType(name string) (rules.FieldType, rules.Field, error) {
	field, _ := rules.DeserializeField(name)
	if t, ok := rules.TypeOf(field); ok {
		return t, field, nil
	}
	for _, t := range rules.FieldTypes() {
		if string(t) == name {
			return t, "", nil
		}
	}

	names := make([]string, 0, len(rules.FieldTypes()))
	for _, t := range rules.FieldTypes() {
		names = append(names, string(t))
	}
	return "", "", fmt.Errorf("unknown type or field %q (types: %s)", name, strings.Join(names, ", "))
}

func init() {
	rootCmd.AddCommand(fieldsCmd)
	rootCmd.AddCommand(opsCmd)

	fieldsCmd.Flags().BoolVar(&fieldsRemote, "remote", false, "Fetch the catalog from the API")
	opsCmd.Flags().StringVar(&opsSubfield, "subfield", "", "Subfield (month, year, amount-inflow, amount-outflow)")
}
