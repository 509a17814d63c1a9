package sweep

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//////
// YAML specs.
//////

// oneOfKey introduces fragment alternatives in a name slot.
const oneOfKey = "$oneof"

// uniformKey introduces a Range value.
const uniformKey = "uniform"

// specFile is the top-level layout of a YAML spec.
type specFile struct {
	Params yaml.Node `yaml:"params"`
}

// ParseSpec reads a Spec from YAML.
//
// `params` is a list of mappings, read in order. Within a value, a sequence
// is an Enum, `{uniform: [lo, hi]}` is a Range and any other mapping is a
// fragment. A `$oneof` key takes a list of alternatives for a whole slot.
//
// Example:
//
//	params:
//	  - lr: [0.01, 0.001]
//	    dropout: {uniform: [0, 0.5]}
//	  - $oneof:
//	      - {optimizer: sgd}
//	      - {optimizer: adam, beta1: [0.8, 0.9]}
func ParseSpec(data []byte) (Spec, error) {
	var doc specFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedSpecification, err)
	}

	if doc.Params.Kind == 0 {
		return nil, fmt.Errorf("%w: missing params", ErrMalformedSpecification)
	}

	return parseEntries(&doc.Params)
}

// LoadSpec reads and parses a YAML spec file.
func LoadSpec(path string) (Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read spec: %w", err)
	}

	return ParseSpec(data)
}

// parseEntries converts a mapping, or a list of mappings, into a flat entry
// list.
func parseEntries(node *yaml.Node) (Spec, error) {
	node = resolve(node)

	switch node.Kind {
	case yaml.SequenceNode:
		spec := Spec{}

		for _, item := range node.Content {
			entries, err := parseEntries(item)
			if err != nil {
				return nil, err
			}

			spec = append(spec, entries...)
		}

		return spec, nil
	case yaml.MappingNode:
		spec := make(Spec, 0, len(node.Content))

		for i := 0; i+1 < len(node.Content); i += 2 {
			key, value := node.Content[i], resolve(node.Content[i+1])

			if key.Value == oneOfKey {
				if value.Kind != yaml.SequenceNode {
					return nil, fmt.Errorf("%w: line %d: %s expects a list", ErrMalformedSpecification, key.Line, oneOfKey)
				}

				alternatives, err := parseValue(value)
				if err != nil {
					return nil, err
				}

				spec = append(spec, alternatives)

				continue
			}

			v, err := parseValue(value)
			if err != nil {
				return nil, err
			}

			spec = append(spec, key.Value, v)
		}

		return spec, nil
	}

	return nil, fmt.Errorf("%w: line %d: expected a mapping or a list of mappings", ErrMalformedSpecification, node.Line)
}

// parseValue converts a value node.
func parseValue(node *yaml.Node) (any, error) {
	node = resolve(node)

	switch node.Kind {
	case yaml.SequenceNode:
		alternatives := make(Enum, 0, len(node.Content))

		for _, item := range node.Content {
			v, err := parseValue(item)
			if err != nil {
				return nil, err
			}

			alternatives = append(alternatives, v)
		}

		return alternatives, nil
	case yaml.MappingNode:
		if len(node.Content) == 2 && node.Content[0].Value == uniformKey {
			return parseRange(node.Content[1])
		}

		return parseEntries(node)
	case yaml.ScalarNode:
		var v any
		if err := node.Decode(&v); err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrMalformedSpecification, node.Line, err)
		}

		return v, nil
	}

	return nil, fmt.Errorf("%w: line %d: unsupported node", ErrMalformedSpecification, node.Line)
}

// parseRange converts the `[lo, hi]` operand of uniform.
func parseRange(node *yaml.Node) (Range, error) {
	var bounds []float64
	if err := resolve(node).Decode(&bounds); err != nil || len(bounds) != 2 {
		return Range{}, fmt.Errorf("%w: line %d: %s expects two numbers", ErrMalformedSpecification, node.Line, uniformKey)
	}

	return Uniform(bounds[0], bounds[1]), nil
}

func resolve(node *yaml.Node) *yaml.Node {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}

	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		return resolve(node.Content[0])
	}

	return node
}
