package cli

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/TimurManjosov/ledgerrules/internal/rules"
)

// ReadConditions reads conditions from path, or stdin when path is "-".
// The document may be JSON or YAML holding a single condition, a list, or
// an object with a "conditions" list.
func ReadConditions(path string, stdin io.Reader) ([]rules.Condition, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" || path == "" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read conditions: %w", err)
	}
	return ParseConditions(data)
}

// ParseConditions decodes a conditions document.
func ParseConditions(data []byte) ([]rules.Condition, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to parse conditions: %w", err)
	}
	if len(node.Content) == 0 {
		return nil, fmt.Errorf("no conditions found")
	}
	root := node.Content[0]

	switch root.Kind {
	case yaml.SequenceNode:
		var list []rules.Condition
		if err := root.Decode(&list); err != nil {
			return nil, fmt.Errorf("failed to parse conditions: %w", err)
		}
		return list, nil
	case yaml.MappingNode:
		var wrapper struct {
			Conditions []rules.Condition `yaml:"conditions"`
		}
		if err := root.Decode(&wrapper); err == nil && wrapper.Conditions != nil {
			return wrapper.Conditions, nil
		}
		var single rules.Condition
		if err := root.Decode(&single); err != nil {
			return nil, fmt.Errorf("failed to parse condition: %w", err)
		}
		return []rules.Condition{single}, nil
	default:
		return nil, fmt.Errorf("expected a condition, a list, or a conditions object")
	}
}
