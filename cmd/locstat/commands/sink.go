package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Sumatoshi-tech/locstat/pkg/loc"
	"github.com/Sumatoshi-tech/locstat/pkg/report"
	"github.com/Sumatoshi-tech/locstat/pkg/scan"
)

// recordSink writes the regular and assistant totals of each repository to their
// own directories and counts what it wrote.
type recordSink struct {
	regular   *report.Writer
	assistant *report.Writer
	logger    *slog.Logger
	repos     int
	records   int
}

func newRecordSink(regular, assistant *report.Writer, logger *slog.Logger) *recordSink {
	return &recordSink{regular: regular, assistant: assistant, logger: logger}
}

func (s *recordSink) write(ctx context.Context, result scan.RepoResult) error {
	s.repos++

	regularErr := s.writeClass(ctx, s.regular, scan.ClassRegular, result, result.Regular)
	if regularErr != nil {
		return regularErr
	}

	return s.writeClass(ctx, s.assistant, scan.ClassAssistant, result, result.Assistant)
}

func (s *recordSink) writeClass(
	ctx context.Context, w *report.Writer, class scan.Class, result scan.RepoResult, totals *loc.Totals,
) error {
	path, err := w.Write(report.NewRecord(result.Name, result.Since, totals))
	if err != nil {
		return fmt.Errorf("write %s record for %s: %w", class, result.Name, err)
	}

	if path == "" {
		s.logger.DebugContext(ctx, "no changes, record skipped", "repo", result.Name, "class", string(class))

		return nil
	}

	s.records++

	s.logger.InfoContext(ctx, "record written",
		"repo", result.Name,
		"class", string(class),
		"languages", totals.Len(),
		"lines", totals.Sum(),
		"path", path)

	return nil
}
