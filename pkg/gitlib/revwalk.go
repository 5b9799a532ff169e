package gitlib

import (
	"errors"
	"io"
	"time"

	git2go "github.com/libgit2/git2go/v34"
)

// sinceSlop is how many consecutive commits older than the window the walk tolerates
// before it stops, so a few commits with skewed clocks do not end it early.
const sinceSlop = 5

// CommitIter iterates over commits from a revision walk.
type CommitIter struct {
	walk  *git2go.RevWalk
	repo  *Repository
	since time.Time
	stale int
}

// Next returns the next commit inside the window, or io.EOF.
func (ci *CommitIter) Next() (*Commit, error) {
	for {
		if ci.walk == nil {
			return nil, io.EOF
		}

		oid := new(git2go.Oid)

		err := ci.walk.Next(oid)
		if err != nil {
			ci.Close()

			if git2go.IsErrorCode(err, git2go.ErrorCodeIterOver) {
				return nil, io.EOF
			}

			return nil, err
		}

		commit, err := ci.repo.repo.LookupCommit(oid)
		if err != nil {
			continue
		}

		if !ci.since.IsZero() && commit.Committer().When.Before(ci.since) {
			commit.Free()

			ci.stale++
			if ci.stale > sinceSlop {
				ci.Close()

				return nil, io.EOF
			}

			continue
		}

		ci.stale = 0

		return &Commit{commit: commit, repo: ci.repo}, nil
	}
}

// ForEach calls the callback for each commit. The commit is freed after the callback.
func (ci *CommitIter) ForEach(cb func(*Commit) error) error {
	for {
		commit, err := ci.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return err
		}

		cbErr := cb(commit)
		commit.Free()

		if cbErr != nil {
			ci.Close()

			return cbErr
		}
	}
}

// Close releases resources.
func (ci *CommitIter) Close() {
	if ci.walk != nil {
		ci.walk.Free()
		ci.walk = nil
	}
}
