package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/TimurManjosov/ledgerrules/internal/i18n"
	"github.com/TimurManjosov/ledgerrules/internal/rules"
	"github.com/TimurManjosov/ledgerrules/internal/snapshot"
	"github.com/TimurManjosov/ledgerrules/internal/store"
)

// OutputFormat specifies the output format for CLI commands
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
)

// Printer renders command results in one output format.
type Printer struct {
	W      io.Writer
	Format OutputFormat
	T      i18n.TranslateFunc
}

func (p *Printer) translate() i18n.TranslateFunc {
	if p.T == nil {
		return i18n.English
	}
	return p.T
}

// print encodes v as JSON or YAML, or calls table for table output.
func (p *Printer) print(v any, table func() error) error {
	switch p.Format {
	case FormatJSON:
		encoder := json.NewEncoder(p.W)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	case FormatYAML:
		encoder := yaml.NewEncoder(p.W)
		defer encoder.Close()
		encoder.SetIndent(2)
		return encoder.Encode(v)
	case FormatTable, "":
		return table()
	default:
		return fmt.Errorf("unsupported format: %s", p.Format)
	}
}

// PrintFilters outputs saved filters
func (p *Printer) PrintFilters(filters []store.Filter) error {
	return p.print(map[string][]store.Filter{"filters": filters}, func() error {
		table := tablewriter.NewWriter(p.W)
		table.Header("ID", "Name", "Op", "Conditions", "Updated At")
		for _, f := range filters {
			table.Append(
				f.ID.String(),
				f.Name,
				string(f.ConditionsOp),
				fmt.Sprintf("%d", len(f.Conditions)),
				f.UpdatedAt.Format("2006-01-02 15:04"),
			)
		}
		return table.Render()
	})
}

// PrintFilter outputs one filter with its conditions spelled out
func (p *Printer) PrintFilter(f *store.Filter) error {
	return p.print(f, func() error {
		fmt.Fprintf(p.W, "%s (%s)\nmatch %s of:\n", f.Name, f.ID, f.ConditionsOp)
		return p.conditionTable(f.Conditions, nil)
	})
}

// PrintFields outputs the field catalog
func (p *Printer) PrintFields(snap *snapshot.Snapshot) error {
	return p.print(snap, func() error {
		table := tablewriter.NewWriter(p.W)
		table.Header("Field", "Label", "Type", "Nullable", "Operators", "Subfields")
		for _, f := range snap.Fields {
			subs := make([]string, 0, len(f.Subfields))
			for _, s := range f.Subfields {
				subs = append(subs, string(s.Subfield))
			}
			table.Append(
				string(f.Field),
				f.Label,
				string(f.Type),
				fmt.Sprintf("%t", f.Nullable),
				opList(f.Operators),
				strings.Join(subs, ", "),
			)
		}
		return table.Render()
	})
}

// PrintOperators outputs the operators of a field type with their labels
func (p *Printer) PrintOperators(typ rules.FieldType, ops []rules.Operator) error {
	t := p.translate()
	views := make([]snapshot.OperatorView, 0, len(ops))
	for _, op := range ops {
		views = append(views, snapshot.OperatorView{Op: op, Label: rules.LabelForOperator(op, typ, t)})
	}
	return p.print(views, func() error {
		table := tablewriter.NewWriter(p.W)
		table.Header("Operator", "Label")
		for _, v := range views {
			table.Append(string(v.Op), v.Label)
		}
		return table.Render()
	})
}

// PrintConditions outputs conditions; kinds, when non-nil, is aligned with
// conds and adds a validation column.
func (p *Printer) PrintConditions(conds []rules.Condition, kinds []rules.ErrorKind) error {
	var v any = conds
	if kinds != nil {
		v = map[string]any{"conditions": conds, "conditionErrors": kinds}
	}
	return p.print(v, func() error {
		return p.conditionTable(conds, kinds)
	})
}

func (p *Printer) conditionTable(conds []rules.Condition, kinds []rules.ErrorKind) error {
	t := p.translate()
	table := tablewriter.NewWriter(p.W)
	if kinds != nil {
		table.Header("#", "Field", "Operator", "Value", "Error")
	} else {
		table.Header("#", "Field", "Operator", "Value")
	}
	for i, c := range conds {
		c = c.Typed()
		row := []any{
			fmt.Sprintf("%d", i),
			rules.LabelForField(string(c.Field), c.Options, t),
			rules.LabelForOperator(c.Op, c.Type, t),
			formatValue(c.Value),
		}
		if kinds != nil {
			msg := ""
			if i < len(kinds) && kinds[i] != rules.ErrKindNone {
				msg = rules.FieldErrorMessage(kinds[i], t)
			}
			row = append(row, msg)
		}
		table.Append(row...)
	}
	return table.Render()
}

func opList(ops []snapshot.OperatorView) string {
	names := make([]string, 0, len(ops))
	for _, op := range ops {
		names = append(names, string(op.Op))
	}
	return strings.Join(names, ", ")
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case []any, map[string]any:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	default:
		return fmt.Sprint(val)
	}
}
