// Package history defines the version-control queries the scanner depends on.
package history

import (
	"context"
	"errors"
	"time"
)

// ErrQuery wraps every failed history, message, or diff-statistics query.
var ErrQuery = errors.New("history query failed")

// SinceLayout is the timestamp layout used for window starts in queries and reports.
const SinceLayout = "2006-01-02T15:04:05Z"

// FormatSince renders t in UTC using SinceLayout.
func FormatSince(t time.Time) string {
	return t.UTC().Format(SinceLayout)
}

// CommitRef identifies one revision in one repository.
type CommitRef struct {
	Repo string
	Rev  string
}

// FileChange is one file's line delta within a commit.
type FileChange struct {
	Added   int
	Deleted int
	Path    string
}

// Lines returns the number of changed lines (added plus deleted).
func (fc FileChange) Lines() int {
	return fc.Added + fc.Deleted
}

// Backend answers the three queries the scanner needs from a repository.
// Implementations must be safe to call sequentially; callers never call them
// concurrently for the same repository.
type Backend interface {
	// Name identifies the backend in logs.
	Name() string
	// Revisions lists commits since the window start whose author matches author,
	// newest first.
	Revisions(ctx context.Context, repo string, since time.Time, author string) ([]string, error)
	// Message returns the full commit message of rev.
	Message(ctx context.Context, repo, rev string) (string, error)
	// FileChanges returns the per-file line deltas introduced by rev.
	FileChanges(ctx context.Context, repo, rev string) ([]FileChange, error)
}
