package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestMetrics_RecordsStorageOps(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := NewWithMeter(provider.Meter("test"))
	require.NoError(t, err)

	m.RecordStorageOp(ctx, "set", "records", true, 5*time.Millisecond)
	m.RecordStorageOp(ctx, "set", "records", true, 5*time.Millisecond)
	m.RecordRetry(ctx, "get", "records")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	totals := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			if sum, ok := md.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					totals[md.Name] += dp.Value
				}
			}
		}
	}

	assert.Equal(t, int64(2), totals["storage_ops_total"])
	assert.Equal(t, int64(1), totals["storage_retry_total"])
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordStorageOp(context.Background(), "get", "records", false, time.Second)
		m.RecordBackup(context.Background(), "auto")
		m.RecordError(context.Background(), "storage_error", "medium")
	})
}
