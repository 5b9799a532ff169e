package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricReposScanned   = "locstat.repos.scanned"
	metricCommitsScanned = "locstat.commits.scanned"
	metricQueryFailures  = "locstat.query.failures"
	metricLinesChanged   = "locstat.lines.changed"

	attrClass = "class"
	attrOp    = "op"
)

// Query operations reported with RecordQueryFailure.
const (
	OpLog     = "log"
	OpMessage = "message"
	OpNumstat = "numstat"
)

// ScanMetrics holds the OTel instruments for a scan run. A nil *ScanMetrics
// records nothing.
type ScanMetrics struct {
	repos    metric.Int64Counter
	commits  metric.Int64Counter
	failures metric.Int64Counter
	lines    metric.Int64Counter
}

// NewScanMetrics creates scan metric instruments from the given meter.
func NewScanMetrics(mt metric.Meter) (*ScanMetrics, error) {
	repos, err := mt.Int64Counter(metricReposScanned,
		metric.WithDescription("Repositories scanned"),
		metric.WithUnit("{repository}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricReposScanned, err)
	}

	commits, err := mt.Int64Counter(metricCommitsScanned,
		metric.WithDescription("Commits aggregated by attribution class"),
		metric.WithUnit("{commit}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCommitsScanned, err)
	}

	failures, err := mt.Int64Counter(metricQueryFailures,
		metric.WithDescription("Failed version-control queries by operation"),
		metric.WithUnit("{query}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricQueryFailures, err)
	}

	lines, err := mt.Int64Counter(metricLinesChanged,
		metric.WithDescription("Lines added plus deleted by attribution class"),
		metric.WithUnit("{line}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricLinesChanged, err)
	}

	return &ScanMetrics{
		repos:    repos,
		commits:  commits,
		failures: failures,
		lines:    lines,
	}, nil
}

// RecordRepo counts one scanned repository.
func (sm *ScanMetrics) RecordRepo(ctx context.Context) {
	if sm == nil {
		return
	}

	sm.repos.Add(ctx, 1)
}

// RecordClass records the commits and changed lines attributed to one class.
func (sm *ScanMetrics) RecordClass(ctx context.Context, class string, commits, lines int) {
	if sm == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String(attrClass, class))
	sm.commits.Add(ctx, int64(commits), attrs)
	sm.lines.Add(ctx, int64(lines), attrs)
}

// RecordQueryFailure counts one failed history query.
func (sm *ScanMetrics) RecordQueryFailure(ctx context.Context, op string) {
	if sm == nil {
		return
	}

	sm.failures.Add(ctx, 1, metric.WithAttributes(attribute.String(attrOp, op)))
}
