// Package gittest builds throwaway git repositories for tests.
package gittest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	git2go "github.com/libgit2/git2go/v34"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/locstat/pkg/gitlib"
)

// Default identity used when a commit does not set one.
const (
	DefaultName  = "Test User"
	DefaultEmail = "test@example.com"
)

// Repo is a repository on disk with a working tree, freed when the test ends.
type Repo struct {
	t      *testing.T
	Path   string
	native *git2go.Repository
}

// Commit describes one commit to create.
type Commit struct {
	Name    string
	Email   string
	When    time.Time
	Message string
}

// New initialises an empty repository in a temporary directory.
func New(t *testing.T) *Repo {
	t.Helper()

	return NewAt(t, t.TempDir())
}

// NewAt initialises an empty repository in dir.
func NewAt(t *testing.T, dir string) *Repo {
	t.Helper()

	repo, err := git2go.InitRepository(dir, false)
	require.NoError(t, err)

	t.Cleanup(repo.Free)

	return &Repo{t: t, Path: dir, native: repo}
}

// WriteFile writes content to name in the working tree, creating parent directories.
func (r *Repo) WriteFile(name, content string) {
	r.t.Helper()

	path := filepath.Join(r.Path, name)

	err := os.MkdirAll(filepath.Dir(path), 0o755)
	require.NoError(r.t, err)

	err = os.WriteFile(path, []byte(content), 0o644)
	require.NoError(r.t, err)
}

// Rename moves a file in the working tree.
func (r *Repo) Rename(from, to string) {
	r.t.Helper()

	target := filepath.Join(r.Path, to)

	err := os.MkdirAll(filepath.Dir(target), 0o755)
	require.NoError(r.t, err)

	err = os.Rename(filepath.Join(r.Path, from), target)
	require.NoError(r.t, err)
}

// Remove deletes a file from the working tree.
func (r *Repo) Remove(name string) {
	r.t.Helper()

	err := os.Remove(filepath.Join(r.Path, name))
	require.NoError(r.t, err)
}

// Commit stages every change in the working tree and commits it on HEAD.
func (r *Repo) Commit(c Commit) gitlib.Hash {
	r.t.Helper()

	index, err := r.native.Index()
	require.NoError(r.t, err)

	defer index.Free()

	err = index.AddAll([]string{"*"}, git2go.IndexAddDefault, nil)
	require.NoError(r.t, err)

	err = index.UpdateAll([]string{"*"}, nil)
	require.NoError(r.t, err)

	err = index.Write()
	require.NoError(r.t, err)

	treeID, err := index.WriteTree()
	require.NoError(r.t, err)

	tree, err := r.native.LookupTree(treeID)
	require.NoError(r.t, err)

	defer tree.Free()

	sig := &git2go.Signature{
		Name:  withDefault(c.Name, DefaultName),
		Email: withDefault(c.Email, DefaultEmail),
		When:  c.When,
	}
	if sig.When.IsZero() {
		sig.When = time.Now()
	}

	var parents []*git2go.Commit

	head, err := r.native.Head()
	if err == nil {
		headCommit, lookupErr := r.native.LookupCommit(head.Target())
		require.NoError(r.t, lookupErr)

		parents = append(parents, headCommit)

		head.Free()
	}

	oid, err := r.native.CreateCommit("HEAD", sig, sig, c.Message, tree, parents...)
	require.NoError(r.t, err)

	for _, parent := range parents {
		parent.Free()
	}

	return gitlib.HashFromOid(oid)
}

func withDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}

	return value
}
