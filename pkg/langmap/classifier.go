package langmap

import (
	"errors"
	"fmt"
	"strings"

	"github.com/src-d/enry/v2"
)

// Other is the bucket label for paths whose extension is not in the table.
const Other = "Other"

// ErrUnknownMode is returned by ParseUnmappedMode for unsupported values.
var ErrUnknownMode = errors.New("unknown unmapped mode")

// UnmappedMode selects what happens to paths the table cannot classify.
type UnmappedMode string

// Unmapped modes.
const (
	// UnmappedSkip drops unmapped paths from the totals.
	UnmappedSkip UnmappedMode = "skip"
	// UnmappedOther buckets unmapped paths under Other.
	UnmappedOther UnmappedMode = "other"
	// UnmappedDetect asks enry for a language and falls back to Other.
	UnmappedDetect UnmappedMode = "detect"
)

// DefaultUnmappedMode is used when no mode is configured.
const DefaultUnmappedMode = UnmappedSkip

// ParseUnmappedMode validates a mode name. The empty string selects the default.
func ParseUnmappedMode(s string) (UnmappedMode, error) {
	switch mode := UnmappedMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case "":
		return DefaultUnmappedMode, nil
	case UnmappedSkip, UnmappedOther, UnmappedDetect:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: %q (want skip, other or detect)", ErrUnknownMode, s)
	}
}

// Classifier resolves file paths to languages.
type Classifier struct {
	table Table
	mode  UnmappedMode
}

// NewClassifier creates a Classifier over table with the given unmapped mode.
func NewClassifier(table Table, mode UnmappedMode) *Classifier {
	if mode == "" {
		mode = DefaultUnmappedMode
	}

	return &Classifier{table: table, mode: mode}
}

// Mode returns the configured unmapped mode.
func (c *Classifier) Mode() UnmappedMode {
	return c.mode
}

// Classify returns the language of path. The boolean is false when the path must be
// excluded from totals, which only happens in UnmappedSkip mode.
func (c *Classifier) Classify(path string) (string, bool) {
	ext := Extension(path)
	if ext != "" {
		if name, ok := c.table.Lookup(ext); ok {
			return name, true
		}
	}

	switch c.mode {
	case UnmappedOther:
		return Other, true
	case UnmappedDetect:
		return detect(baseName(path)), true
	default:
		return "", false
	}
}

func detect(name string) string {
	if lang, _ := enry.GetLanguageByExtension(name); lang != "" {
		return lang
	}

	if lang, _ := enry.GetLanguageByFilename(name); lang != "" {
		return lang
	}

	return Other
}

// Extension returns the lowercase extension of the final path segment without the
// dot, or "" when there is none. A name whose only dot is its first character
// (".gitignore") has no extension.
func Extension(path string) string {
	name := baseName(path)

	idx := strings.LastIndexByte(name, '.')
	if idx <= 0 || idx == len(name)-1 {
		return ""
	}

	return strings.ToLower(name[idx+1:])
}

func baseName(path string) string {
	if idx := strings.LastIndexAny(path, `/\`); idx >= 0 {
		return path[idx+1:]
	}

	return path
}
