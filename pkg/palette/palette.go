// Package palette assigns stable display colours to language names.
package palette

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/locstat/internal/document"
)

// ErrInvalidDocument is returned when the colour document is malformed.
var ErrInvalidDocument = errors.New("invalid colour table")

// ErrUnknownFallback is returned by ParseFallback for unsupported values.
var ErrUnknownFallback = errors.New("unknown colour fallback")

// Schema is the JSON Schema for the colour table document.
//
//go:embed schema/colors.schema.json
var Schema []byte

// Gray is the colour used by FallbackGray.
const Gray = "#888888"

// hashColorDigits is the number of hex digits taken from the name digest.
const hashColorDigits = 6

// Fallback selects how names missing from the table are coloured.
type Fallback string

// Fallback strategies.
const (
	// FallbackHash derives the colour from a SHA-256 digest of the name.
	FallbackHash Fallback = "hash"
	// FallbackGray paints every unknown name Gray.
	FallbackGray Fallback = "gray"
)

// DefaultFallback is used when no strategy is configured.
const DefaultFallback = FallbackHash

// ParseFallback validates a fallback name. The empty string selects the default.
func ParseFallback(s string) (Fallback, error) {
	switch fb := Fallback(strings.ToLower(strings.TrimSpace(s))); fb {
	case "":
		return DefaultFallback, nil
	case FallbackHash, FallbackGray:
		return fb, nil
	default:
		return "", fmt.Errorf("%w: %q (want hash or gray)", ErrUnknownFallback, s)
	}
}

// Table maps a language display name to a normalised "#rrggbb" colour.
type Table map[string]string

// LoadTable reads and validates a colour table document.
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

type colorEntry struct {
	Color string `yaml:"color"`
}

func decodeTable(root *yaml.Node) (Table, error) {
	err := document.Validate(root, Schema)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	table := make(Table)

	for name, node := range document.Pairs(root) {
		var entry colorEntry

		decodeErr := node.Decode(&entry)
		if decodeErr != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidDocument, name, decodeErr)
		}

		if entry.Color == "" {
			continue
		}

		normalized, normErr := Normalize(entry.Color)
		if normErr != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidDocument, name, normErr)
		}

		table[name] = normalized
	}

	return table, nil
}

// Normalize parses a "#rgb" or "#rrggbb" colour and returns it as lowercase "#rrggbb".
func Normalize(hexColor string) (string, error) {
	c, err := colorful.Hex(strings.TrimSpace(hexColor))
	if err != nil {
		return "", fmt.Errorf("parse colour %q: %w", hexColor, err)
	}

	return c.Hex(), nil
}

// HashColor derives a colour from name: the first six hex digits of the SHA-256 digest
// of its UTF-8 bytes. The result is identical across runs and processes.
func HashColor(name string) string {
	sum := sha256.Sum256([]byte(name))

	return "#" + hex.EncodeToString(sum[:])[:hashColorDigits]
}

// Assigner returns display colours for language names.
type Assigner struct {
	Table    Table
	Fallback Fallback
}

// NewAssigner creates an Assigner. A nil table behaves as an empty one.
func NewAssigner(table Table, fallback Fallback) *Assigner {
	if fallback == "" {
		fallback = DefaultFallback
	}

	return &Assigner{Table: table, Fallback: fallback}
}

// ColorFor returns the configured colour for name, or the fallback colour.
func (a *Assigner) ColorFor(name string) string {
	if c, ok := a.Table[name]; ok {
		return c
	}

	if a.Fallback == FallbackGray {
		return Gray
	}

	return HashColor(name)
}
