package report

import (
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/locstat/internal/document"
	"github.com/Sumatoshi-tech/locstat/pkg/loc"
)

// ErrInvalidTokei is returned when a tokei report has an unexpected shape.
var ErrInvalidTokei = errors.New("invalid tokei report")

// tokeiTotalRow is the aggregate row tokei appends to its JSON output.
const tokeiTotalRow = "Total"

type tokeiLanguage struct {
	Code     int `yaml:"code"`
	Comments int `yaml:"comments"`
}

// ReadTokei reads `tokei --output json` and returns code plus comment lines per
// language in document order. The aggregate Total row is dropped.
func ReadTokei(path string) (*loc.Totals, error) {
	root, err := document.Read(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTokei, err)
	}

	totals := loc.New()

	for name, node := range document.Pairs(root) {
		if name == tokeiTotalRow {
			continue
		}

		var lang tokeiLanguage

		decodeErr := node.Decode(&lang)
		if decodeErr != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidTokei, name, decodeErr)
		}

		totals.Add(name, lang.Code+lang.Comments)
	}

	return totals, nil
}
