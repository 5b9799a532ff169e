package commands

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/locstat/internal/document"
	"github.com/Sumatoshi-tech/locstat/pkg/langmap"
	"github.com/Sumatoshi-tech/locstat/pkg/palette"
)

// Document kinds accepted by validate.
const (
	kindLanguages = "languages"
	kindColors    = "colors"
)

// ErrUnknownKind is returned for a document kind other than languages or colors.
var ErrUnknownKind = errors.New("unknown document kind (want languages or colors)")

// ErrValidationFailed is returned when the document violates its schema.
var ErrValidationFailed = errors.New("validation failed")

// NewValidateCommand creates the validate subcommand.
func NewValidateCommand() *cobra.Command {
	var noColor bool

	cmd := &cobra.Command{
		Use:   "validate <languages|colors> <file>",
		Short: "Check an extension or colour table against its schema",
		Long: `Validate an input document before a scan or render.

Examples:
  locstat validate languages languages.json
  locstat validate colors colors.yaml
`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{kindLanguages, kindColors},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args[0], args[1], noColor)
		},
	}

	cmd.Flags().BoolVar(&noColor, flagNoColor, false, "disable colored output")

	return cmd
}

func runValidate(cmd *cobra.Command, kind, path string, noColor bool) error {
	var schema []byte

	switch kind {
	case kindLanguages:
		schema = langmap.Schema
	case kindColors:
		schema = palette.Schema
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	root, err := document.Read(path)
	if err != nil {
		return err
	}

	violations, err := document.Check(root, schema)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	ok := color.New(color.FgGreen)
	bad := color.New(color.FgRed)

	if noColor {
		ok.DisableColor()
		bad.DisableColor()
	}

	if len(violations) == 0 {
		ok.Fprintf(out, "%s is a valid %s table\n", path, kind)

		return nil
	}

	bad.Fprintf(out, "%s is not a valid %s table\n", path, kind)

	for _, violation := range violations {
		bad.Fprintf(out, "  - %s\n", violation)
	}

	return fmt.Errorf("%w: %s: %d violations", ErrValidationFailed, path, len(violations))
}
