// Package gitcli implements history.Backend by running the git executable, one
// blocking subprocess per query.
package gitcli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/Sumatoshi-tech/locstat/pkg/history"
)

// BackendName identifies this backend in configuration and logs.
const BackendName = "git"

// numstatFields is the number of tab-separated fields in a numstat row.
const numstatFields = 3

// recordSeparator terminates every field group in `-z` output.
const recordSeparator = "\x00"

// Backend runs git subprocesses.
type Backend struct {
	// Executable is the git binary; "git" when empty.
	Executable string
	// QueryTimeout bounds each subprocess; zero means no bound.
	QueryTimeout time.Duration
}

// New creates a Backend using the git found on PATH.
func New(queryTimeout time.Duration) *Backend {
	return &Backend{Executable: "git", QueryTimeout: queryTimeout}
}

// Name returns the backend identifier.
func (b *Backend) Name() string {
	return BackendName
}

// Revisions lists commit hashes since the window start authored by author.
func (b *Backend) Revisions(ctx context.Context, repo string, since time.Time, author string) ([]string, error) {
	out, err := b.run(ctx, repo,
		"log",
		"--since="+history.FormatSince(since),
		"--author="+author,
		"--pretty=format:%H",
	)
	if err != nil {
		return nil, err
	}

	return splitLines(out), nil
}

// Message returns the raw commit message (subject, body and trailers).
func (b *Backend) Message(ctx context.Context, repo, rev string) (string, error) {
	return b.run(ctx, repo, "show", "-s", "--format=%B", rev)
}

// FileChanges returns the numstat rows of rev. Malformed rows are skipped.
// Paths are read from NUL-terminated output, so they arrive unquoted.
func (b *Backend) FileChanges(ctx context.Context, repo, rev string) ([]history.FileChange, error) {
	out, err := b.run(ctx, repo, "show", "-z", "-M", "--numstat", "--format=", rev)
	if err != nil {
		return nil, err
	}

	return ParseNumstat(out), nil
}

func (b *Backend) run(ctx context.Context, repo string, args ...string) (string, error) {
	if b.QueryTimeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, b.QueryTimeout)
		defer cancel()
	}

	exe := b.Executable
	if exe == "" {
		exe = "git"
	}

	cmd := exec.CommandContext(ctx, exe, append([]string{"-C", repo}, args...)...)

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if runErr != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: git %s: timed out after %s", history.ErrQuery, args[0], b.QueryTimeout)
		}

		return "", fmt.Errorf("%w: git %s: %w: %s",
			history.ErrQuery, args[0], runErr, strings.TrimSpace(stderr.String()))
	}

	return stdout.String(), nil
}

// ParseNumstat parses `git show -z --numstat` output. Each record is
// "<added>\t<deleted>\t<path>\x00"; a rename leaves the path empty and is followed
// by "<old>\x00<new>\x00", in which case the new path is kept. Records with a
// different field count or non-integer counts (binary files report "-") are skipped.
func ParseNumstat(out string) []history.FileChange {
	var changes []history.FileChange

	fields := strings.Split(out, recordSeparator)

	for i := 0; i < len(fields); i++ {
		record := strings.TrimLeft(fields[i], "\r\n")
		if strings.TrimSpace(record) == "" {
			continue
		}

		parts := strings.SplitN(record, "\t", numstatFields)
		if len(parts) != numstatFields {
			continue
		}

		path := parts[2]
		if path == "" {
			// Rename or copy: old and new paths follow as separate fields.
			if i+2 >= len(fields) {
				break
			}

			path = fields[i+2]
			i += 2
		}

		added, addErr := strconv.Atoi(strings.TrimSpace(parts[0]))
		deleted, delErr := strconv.Atoi(strings.TrimSpace(parts[1]))

		if addErr != nil || delErr != nil || added < 0 || deleted < 0 || path == "" {
			continue
		}

		changes = append(changes, history.FileChange{
			Added:   added,
			Deleted: deleted,
			Path:    path,
		})
	}

	return changes
}

func splitLines(out string) []string {
	var lines []string

	for line := range strings.SplitSeq(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}

	return lines
}
