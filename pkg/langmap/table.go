// Package langmap maps file paths to canonical language names using a static
// extension table.
package langmap

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/locstat/internal/document"
)

// ErrInvalidDocument is returned when the extension document is malformed.
var ErrInvalidDocument = errors.New("invalid extension table")

// Schema is the JSON Schema for the extension table document.
//
//go:embed schema/languages.schema.json
var Schema []byte

const languagesKey = "languages"

// Table maps a lowercase extension without the leading dot to a language name.
// A Table is read-only once built.
type Table map[string]string

// LoadTable reads and validates an extension table document.
func LoadTable(path string) (Table, error) {
	root, err := document.Read(path)
	if err != nil {
		return nil, err
	}

	return decodeTable(root)
}

// ParseTable builds a Table from raw document bytes.
func ParseTable(data []byte) (Table, error) {
	root, err := document.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	return decodeTable(root)
}

type languageEntry struct {
	Name       string   `yaml:"name"`
	Extensions []string `yaml:"extensions"`
}

func decodeTable(root *yaml.Node) (Table, error) {
	err := document.Validate(root, Schema)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	languages, _ := document.Lookup(root, languagesKey)
	table := make(Table)

	for key, node := range document.Pairs(languages) {
		var entry languageEntry

		decodeErr := node.Decode(&entry)
		if decodeErr != nil {
			return nil, fmt.Errorf("%w: language %q: %w", ErrInvalidDocument, key, decodeErr)
		}

		name := entry.Name
		if name == "" {
			name = key
		}

		for _, ext := range entry.Extensions {
			normalized := normalizeExtension(ext)
			if normalized == "" {
				continue
			}

			// First language in document order keeps a contested extension.
			if _, taken := table[normalized]; taken {
				continue
			}

			table[normalized] = name
		}
	}

	return table, nil
}

// Lookup returns the language for an extension, case-insensitively.
// The extension may carry a leading dot.
func (t Table) Lookup(ext string) (string, bool) {
	name, ok := t[normalizeExtension(ext)]

	return name, ok
}

func normalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
