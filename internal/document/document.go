// Package document reads the static JSON/YAML input documents (extension table,
// colour table) and validates them against embedded JSON Schemas.
package document

import (
	"errors"
	"fmt"
	"iter"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned when a document does not match its schema.
var ErrInvalid = errors.New("invalid document")

// Read parses the file at path as YAML (JSON is accepted as a subset) and returns the
// root content node. An empty file yields an empty mapping node.
func Read(path string) (*yaml.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return Parse(data)
}

// Parse decodes raw document bytes into the root content node.
func Parse(data []byte) (*yaml.Node, error) {
	var doc yaml.Node

	err := yaml.Unmarshal(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	if doc.Kind == 0 || len(doc.Content) == 0 {
		return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}, nil
	}

	return doc.Content[0], nil
}

// Validate checks root against a JSON Schema. All schema violations are reported in
// a single error wrapping ErrInvalid.
func Validate(root *yaml.Node, schema []byte) error {
	violations, err := Check(root, schema)
	if err != nil {
		return err
	}

	if len(violations) == 0 {
		return nil
	}

	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(violations, "; "))
}

// Check returns the schema violations of root; none means the document is valid.
func Check(root *yaml.Node, schema []byte) ([]string, error) {
	var value any

	err := root.Decode(&value)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	if value == nil {
		value = map[string]any{}
	}

	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schema), gojsonschema.NewGoLoader(value))
	if err != nil {
		return nil, fmt.Errorf("schema validation: %w", err)
	}

	return Violations(result), nil
}

// Violations formats schema errors as "field: description" strings.
func Violations(result *gojsonschema.Result) []string {
	out := make([]string, 0, len(result.Errors()))

	for _, verr := range result.Errors() {
		out = append(out, fmt.Sprintf("%s: %s", verr.Field(), verr.Description()))
	}

	return out
}

// Pairs iterates over the key/value pairs of a mapping node in document order.
// Non-mapping nodes yield nothing.
func Pairs(node *yaml.Node) iter.Seq2[string, *yaml.Node] {
	return func(yield func(string, *yaml.Node) bool) {
		if node == nil || node.Kind != yaml.MappingNode {
			return
		}

		for i := 0; i+1 < len(node.Content); i += 2 {
			if !yield(node.Content[i].Value, node.Content[i+1]) {
				return
			}
		}
	}
}

// Lookup returns the value node stored under key in a mapping node.
func Lookup(node *yaml.Node, key string) (*yaml.Node, bool) {
	for k, v := range Pairs(node) {
		if k == key {
			return v, true
		}
	}

	return nil, false
}
