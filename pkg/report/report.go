// Package report persists per-repository scan results and reads them back for charting.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/Sumatoshi-tech/locstat/pkg/history"
	"github.com/Sumatoshi-tech/locstat/pkg/loc"
)

// ErrInvalidRecord is returned when a stored record cannot be decoded.
var ErrInvalidRecord = errors.New("invalid report record")

const (
	recordExt  = ".json"
	indent     = "  "
	filePerm   = 0o644
	dirPerm    = 0o755
	defaultRun = "locstat"
)

// Record is one repository's totals for one attribution class.
type Record struct {
	Repo                  string      `json:"repo"`
	Since                 string      `json:"since"`
	LOCChangedPerLanguage *loc.Totals `json:"loc_changed_per_language"`
}

// NewRecord builds a record with since rendered in history.SinceLayout.
func NewRecord(repo string, since time.Time, totals *loc.Totals) Record {
	return Record{
		Repo:                  repo,
		Since:                 history.FormatSince(since),
		LOCChangedPerLanguage: totals,
	}
}

// Writer stores records as indented JSON files named "<run-id>_<repo>.json" in Dir.
type Writer struct {
	Dir   string
	RunID string
}

// NewWriter creates a Writer. An empty runID falls back to "locstat".
func NewWriter(dir, runID string) *Writer {
	if runID == "" {
		runID = defaultRun
	}

	return &Writer{Dir: dir, RunID: runID}
}

// Path returns the file a record for repo is written to.
func (w *Writer) Path(repo string) string {
	return filepath.Join(w.Dir, Sanitize(w.RunID)+"_"+Sanitize(repo)+recordExt)
}

// Write stores rec and returns the written path. Records with empty totals are not
// written and yield an empty path. An existing file with the same name is replaced.
func (w *Writer) Write(rec Record) (string, error) {
	if rec.LOCChangedPerLanguage.Empty() {
		return "", nil
	}

	data, err := json.MarshalIndent(rec, "", indent)
	if err != nil {
		return "", fmt.Errorf("encode record %s: %w", rec.Repo, err)
	}

	err = os.MkdirAll(w.Dir, dirPerm)
	if err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}

	path := w.Path(rec.Repo)

	err = os.WriteFile(path, append(data, '\n'), filePerm)
	if err != nil {
		return "", fmt.Errorf("write record %s: %w", path, err)
	}

	return path, nil
}

// Sanitize replaces every rune outside [A-Za-z0-9._-] with an underscore.
func Sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, name)
}

// ReadRecord decodes the record stored at path. A missing totals field decodes as empty.
func ReadRecord(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, fmt.Errorf("read record: %w", err)
	}

	var rec Record

	err = json.Unmarshal(data, &rec)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %s: %w", ErrInvalidRecord, path, err)
	}

	if rec.LOCChangedPerLanguage == nil {
		rec.LOCChangedPerLanguage = loc.New()
	}

	return rec, nil
}

// LoadDir merges the totals of every *.json record in dir, visiting files in name
// order so the merged order is reproducible. It also returns the number of records read.
func LoadDir(dir string) (*loc.Totals, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, fmt.Errorf("read report directory: %w", err)
	}

	names := make([]string, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != recordExt {
			continue
		}

		names = append(names, entry.Name())
	}

	slices.Sort(names)

	totals := loc.New()

	for _, name := range names {
		rec, readErr := ReadRecord(filepath.Join(dir, name))
		if readErr != nil {
			return nil, 0, readErr
		}

		totals.Merge(rec.LOCChangedPerLanguage)
	}

	return totals, len(names), nil
}

// LoadDirs merges LoadDir over several directories in the given order.
func LoadDirs(dirs []string) (*loc.Totals, int, error) {
	totals := loc.New()
	records := 0

	for _, dir := range dirs {
		dirTotals, n, err := LoadDir(dir)
		if err != nil {
			return nil, 0, err
		}

		totals.Merge(dirTotals)
		records += n
	}

	return totals, records, nil
}
