// Package native implements history.Backend in-process with libgit2.
package native

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/Sumatoshi-tech/locstat/pkg/gitlib"
	"github.com/Sumatoshi-tech/locstat/pkg/history"
)

// BackendName identifies this backend in configuration and logs.
const BackendName = "libgit2"

// Backend answers history queries by opening the repository with libgit2 on every call.
type Backend struct{}

// New creates a libgit2 backend.
func New() *Backend {
	return &Backend{}
}

// Name returns the backend identifier.
func (b *Backend) Name() string {
	return BackendName
}

// Revisions walks HEAD newest first and keeps commits inside the window whose
// "Name <email>" matches author, the way `git log --author` does.
func (b *Backend) Revisions(ctx context.Context, repo string, since time.Time, author string) ([]string, error) {
	r, err := open(repo)
	if err != nil {
		return nil, err
	}
	defer r.Free()

	iter, err := r.Log(gitlib.LogOptions{Since: since})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", history.ErrQuery, repo, err)
	}
	defer iter.Close()

	match := authorMatcher(author)

	var revs []string

	err = iter.ForEach(func(c *gitlib.Commit) error {
		ctxErr := ctx.Err()
		if ctxErr != nil {
			return ctxErr
		}

		if match(c.Author().String()) {
			revs = append(revs, c.Hash().String())
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: walk %s: %w", history.ErrQuery, repo, err)
	}

	return revs, nil
}

// Message returns the full commit message of rev.
func (b *Backend) Message(_ context.Context, repo, rev string) (string, error) {
	r, commit, err := lookup(repo, rev)
	if err != nil {
		return "", err
	}
	defer r.Free()
	defer commit.Free()

	return commit.Message(), nil
}

// FileChanges returns the per-file line deltas of rev against its first parent.
// Binary files are left out, as numstat reports them without counts.
func (b *Backend) FileChanges(_ context.Context, repo, rev string) ([]history.FileChange, error) {
	r, commit, err := lookup(repo, rev)
	if err != nil {
		return nil, err
	}
	defer r.Free()
	defer commit.Free()

	stats, err := commit.FileStats()
	if err != nil {
		return nil, fmt.Errorf("%w: diff %s: %w", history.ErrQuery, rev, err)
	}

	changes := make([]history.FileChange, 0, len(stats))

	for _, stat := range stats {
		if stat.Binary {
			continue
		}

		changes = append(changes, history.FileChange{
			Added:   stat.Added,
			Deleted: stat.Deleted,
			Path:    stat.Path,
		})
	}

	return changes, nil
}

func open(repo string) (*gitlib.Repository, error) {
	r, err := gitlib.OpenRepository(repo)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", history.ErrQuery, err)
	}

	return r, nil
}

func lookup(repo, rev string) (*gitlib.Repository, *gitlib.Commit, error) {
	hash, err := gitlib.ParseHash(rev)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", history.ErrQuery, err)
	}

	r, err := open(repo)
	if err != nil {
		return nil, nil, err
	}

	commit, err := r.LookupCommit(hash)
	if err != nil {
		r.Free()

		return nil, nil, fmt.Errorf("%w: %w", history.ErrQuery, err)
	}

	return r, commit, nil
}

// authorMatcher compiles author as a regular expression; patterns that do not
// compile are matched literally. An empty author matches everything.
func authorMatcher(author string) func(string) bool {
	re, err := regexp.Compile(author)
	if err != nil {
		re = regexp.MustCompile(regexp.QuoteMeta(author))
	}

	return re.MatchString
}
