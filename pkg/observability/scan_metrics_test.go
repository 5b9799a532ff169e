package observability_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Sumatoshi-tech/locstat/pkg/observability"
)

func setupScanMeter(t *testing.T) (*observability.ScanMetrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	sm, err := observability.NewScanMetrics(mp.Meter("test"))
	require.NoError(t, err)

	return sm, reader
}

func collectSums(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Sum[int64] {
	t.Helper()

	var rm metricdata.ResourceMetrics

	require.NoError(t, reader.Collect(context.Background(), &rm))

	sums := make(map[string]metricdata.Sum[int64])

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if ok {
				sums[m.Name] = sum
			}
		}
	}

	return sums
}

func valueFor(sum metricdata.Sum[int64], key, value string) int64 {
	for _, dp := range sum.DataPoints {
		v, ok := dp.Attributes.Value(attribute.Key(key))
		if ok && v.AsString() == value {
			return dp.Value
		}
	}

	return 0
}

func TestScanMetrics_Record(t *testing.T) {
	t.Parallel()

	sm, reader := setupScanMeter(t)
	ctx := context.Background()

	sm.RecordRepo(ctx)
	sm.RecordRepo(ctx)
	sm.RecordClass(ctx, "regular", 4, 300)
	sm.RecordClass(ctx, "assistant", 1, 25)
	sm.RecordQueryFailure(ctx, observability.OpNumstat)

	sums := collectSums(t, reader)

	require.Contains(t, sums, "locstat.repos.scanned")
	require.Len(t, sums["locstat.repos.scanned"].DataPoints, 1)
	assert.Equal(t, int64(2), sums["locstat.repos.scanned"].DataPoints[0].Value)

	assert.Equal(t, int64(4), valueFor(sums["locstat.commits.scanned"], "class", "regular"))
	assert.Equal(t, int64(25), valueFor(sums["locstat.lines.changed"], "class", "assistant"))
	assert.Equal(t, int64(1), valueFor(sums["locstat.query.failures"], "op", "numstat"))
}

func TestScanMetrics_NilSafe(t *testing.T) {
	t.Parallel()

	var sm *observability.ScanMetrics

	ctx := context.Background()

	assert.NotPanics(t, func() {
		sm.RecordRepo(ctx)
		sm.RecordClass(ctx, "regular", 1, 1)
		sm.RecordQueryFailure(ctx, observability.OpLog)
	})
}
