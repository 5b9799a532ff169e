package gitlib

import (
	"fmt"

	git2go "github.com/libgit2/git2go/v34"
)

// FileStat is the line delta of one file in a diff.
type FileStat struct {
	Path    string
	Added   int
	Deleted int
	Binary  bool
}

// Diff wraps a libgit2 diff.
type Diff struct {
	diff *git2go.Diff
}

// NumDeltas returns the number of deltas in the diff.
func (d *Diff) NumDeltas() (int, error) {
	numDeltas, err := d.diff.NumDeltas()
	if err != nil {
		return 0, fmt.Errorf("get num deltas: %w", err)
	}

	return numDeltas, nil
}

// FileStats walks every line of the diff and counts additions and deletions per file.
// Renamed files are reported under their new path; binary files are flagged with
// zero counts.
func (d *Diff) FileStats() ([]FileStat, error) {
	var stats []FileStat

	err := d.diff.ForEach(func(delta git2go.DiffDelta, _ float64) (git2go.DiffForEachHunkCallback, error) {
		path := delta.NewFile.Path
		if delta.Status == git2go.DeltaDeleted || path == "" {
			path = delta.OldFile.Path
		}

		stats = append(stats, FileStat{
			Path:   path,
			Binary: delta.Flags&git2go.DiffFlagBinary != 0,
		})
		current := &stats[len(stats)-1]

		return func(_ git2go.DiffHunk) (git2go.DiffForEachLineCallback, error) {
			return func(line git2go.DiffLine) error {
				switch line.Origin { //nolint:exhaustive // only additions and deletions are counted.
				case git2go.DiffLineAddition:
					current.Added++
				case git2go.DiffLineDeletion:
					current.Deleted++
				}

				return nil
			}, nil
		}, nil
	}, git2go.DiffDetailLines)
	if err != nil {
		return nil, fmt.Errorf("diff foreach: %w", err)
	}

	return stats, nil
}

// Free releases the diff resources.
func (d *Diff) Free() {
	if d.diff == nil {
		return
	}

	// Free errors are not actionable during cleanup.
	_ = d.diff.Free()
	d.diff = nil
}
