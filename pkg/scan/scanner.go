// Package scan walks repository history over a time window and folds the changed
// lines of every matching commit into per-language totals, split by attribution class.
package scan

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/locstat/pkg/history"
	"github.com/Sumatoshi-tech/locstat/pkg/langmap"
	"github.com/Sumatoshi-tech/locstat/pkg/loc"
	"github.com/Sumatoshi-tech/locstat/pkg/observability"
)

// DefaultMarker is the co-authorship trailer that marks assistant-authored commits.
const DefaultMarker = "Co-Authored-By: Claude <noreply@anthropic.com>"

// Class is an attribution class.
type Class string

// Attribution classes.
const (
	ClassRegular   Class = "regular"
	ClassAssistant Class = "assistant"
)

// Config holds the per-run scanning parameters.
type Config struct {
	// Identities are author patterns; a commit matching any of them is scanned.
	Identities []string
	// Marker classifies a commit as assistant-authored when its message contains it.
	// Empty classifies every commit as regular.
	Marker string
	// Since is the window start.
	Since time.Time
}

// RepoResult is the outcome of scanning one repository.
type RepoResult struct {
	Name      string
	Path      string
	Since     time.Time
	Regular   *loc.Totals
	Assistant *loc.Totals
}

// Sink receives each scanned repository. Returning an error stops the run.
type Sink func(ctx context.Context, result RepoResult) error

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets the logger for progress and query failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metric instruments. Nil disables metrics.
func WithMetrics(metrics *observability.ScanMetrics) Option {
	return func(s *Scanner) {
		s.metrics = metrics
	}
}

// WithTracer sets the tracer used for per-repository spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Scanner) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// Scanner runs the history, attribution and aggregation steps sequentially.
type Scanner struct {
	backend    history.Backend
	classifier *langmap.Classifier
	cfg        Config
	logger     *slog.Logger
	metrics    *observability.ScanMetrics
	tracer     trace.Tracer
}

// New creates a Scanner.
func New(backend history.Backend, classifier *langmap.Classifier, cfg Config, opts ...Option) *Scanner {
	s := &Scanner{
		backend:    backend,
		classifier: classifier,
		cfg:        cfg,
		logger:     slog.New(slog.DiscardHandler),
		tracer:     nooptrace.NewTracerProvider().Tracer("scan"),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// CommitsSince returns the commits in repo since the window start authored by any
// identity, in discovery order without duplicates. If any identity query fails the
// failure is logged and the repository yields nothing.
func (s *Scanner) CommitsSince(ctx context.Context, repo string, since time.Time, identities []string) []history.CommitRef {
	seen := make(map[string]struct{})

	var refs []history.CommitRef

	for _, identity := range identities {
		if identity == "" {
			continue
		}

		revs, err := s.backend.Revisions(ctx, repo, since, identity)
		if err != nil {
			s.metrics.RecordQueryFailure(ctx, observability.OpLog)
			s.logger.WarnContext(ctx, "history query failed",
				"repo", repo, "identity", identity, "error", err)

			return nil
		}

		for _, rev := range revs {
			if _, dup := seen[rev]; dup {
				continue
			}

			seen[rev] = struct{}{}

			refs = append(refs, history.CommitRef{Repo: repo, Rev: rev})
		}
	}

	return refs
}

// Split partitions commits by whether their message contains marker. The two
// results are disjoint, keep input order, and together hold every distinct input
// commit. A commit whose message cannot be read is regular.
func (s *Scanner) Split(ctx context.Context, repo string, commits []history.CommitRef, marker string) (assistant, regular []history.CommitRef) {
	seen := make(map[string]struct{}, len(commits))

	for _, ref := range commits {
		if _, dup := seen[ref.Rev]; dup {
			continue
		}

		seen[ref.Rev] = struct{}{}

		if marker == "" {
			regular = append(regular, ref)

			continue
		}

		msg, err := s.backend.Message(ctx, repo, ref.Rev)
		if err != nil {
			s.metrics.RecordQueryFailure(ctx, observability.OpMessage)
			s.logger.WarnContext(ctx, "commit message query failed",
				"repo", repo, "rev", ref.Rev, "error", err)

			regular = append(regular, ref)

			continue
		}

		if strings.Contains(msg, marker) {
			assistant = append(assistant, ref)
		} else {
			regular = append(regular, ref)
		}
	}

	return assistant, regular
}

// Aggregate sums added plus deleted lines per language over commits. A commit whose
// statistics cannot be read contributes nothing. Aggregation stops early when ctx
// is done.
func (s *Scanner) Aggregate(ctx context.Context, repo string, commits []history.CommitRef) *loc.Totals {
	totals := loc.New()

	for _, ref := range commits {
		if ctx.Err() != nil {
			break
		}

		changes, err := s.backend.FileChanges(ctx, repo, ref.Rev)
		if err != nil {
			s.metrics.RecordQueryFailure(ctx, observability.OpNumstat)
			s.logger.WarnContext(ctx, "diff statistics query failed",
				"repo", repo, "rev", ref.Rev, "error", err)

			continue
		}

		for _, change := range changes {
			lang, ok := s.classifier.Classify(change.Path)
			if !ok {
				continue
			}

			totals.Add(lang, change.Lines())
		}
	}

	return totals
}

// ScanRepo runs the whole pipeline for the repository at path.
func (s *Scanner) ScanRepo(ctx context.Context, path string) RepoResult {
	name := filepath.Base(path)

	ctx, span := s.tracer.Start(ctx, "locstat.scan.repo",
		trace.WithAttributes(attribute.String("locstat.repo", name)))
	defer span.End()

	s.logger.InfoContext(ctx, "scanning repository", "repo", name, "backend", s.backend.Name())

	commits := s.CommitsSince(ctx, path, s.cfg.Since, s.cfg.Identities)
	assistant, regular := s.Split(ctx, path, commits, s.cfg.Marker)

	result := RepoResult{
		Name:      name,
		Path:      path,
		Since:     s.cfg.Since,
		Regular:   s.aggregateClass(ctx, path, ClassRegular, regular),
		Assistant: s.aggregateClass(ctx, path, ClassAssistant, assistant),
	}

	s.metrics.RecordRepo(ctx)
	span.SetAttributes(
		attribute.Int("locstat.commits", len(commits)),
		attribute.Int("locstat.commits.assistant", len(assistant)),
	)

	s.logger.DebugContext(ctx, "repository scanned",
		"repo", name,
		"commits", len(commits),
		"assistant_commits", len(assistant),
		"regular_lines", result.Regular.Sum(),
		"assistant_lines", result.Assistant.Sum())

	return result
}

func (s *Scanner) aggregateClass(ctx context.Context, path string, class Class, commits []history.CommitRef) *loc.Totals {
	ctx, span := s.tracer.Start(ctx, "locstat.scan.commit_batch",
		trace.WithAttributes(
			attribute.String("locstat.class", string(class)),
			attribute.Int("locstat.commits", len(commits)),
		))
	defer span.End()

	totals := s.Aggregate(ctx, path, commits)
	s.metrics.RecordClass(ctx, string(class), len(commits), totals.Sum())

	return totals
}

// Run scans every immediate, non-hidden subdirectory of root in name order and
// hands each result to sink. It returns the first sink error, or ctx's error when
// cancelled between repositories.
func (s *Scanner) Run(ctx context.Context, root string, sink Sink) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("read repositories root: %w", err)
	}

	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		path := filepath.Join(root, entry.Name())

		info, statErr := os.Stat(path)
		if statErr != nil || !info.IsDir() {
			continue
		}

		ctxErr := ctx.Err()
		if ctxErr != nil {
			return ctxErr
		}

		result := s.ScanRepo(ctx, path)

		ctxErr = ctx.Err()
		if ctxErr != nil {
			return ctxErr
		}

		sinkErr := sink(ctx, result)
		if sinkErr != nil {
			return sinkErr
		}
	}

	return nil
}
