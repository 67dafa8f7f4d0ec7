package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestGalleryMetrics_InstrumentNames(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := NewGalleryMetrics(provider.Meter(instrumentationName))
	require.NoError(t, err)

	ctx := context.Background()
	m.ImageAttempt(ctx, 1, "failed")
	m.FormOutcome(ctx, "done", "file")
	m.FormOutcome(ctx, "error", "capture")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	totals := make(map[string]int64)
	for _, scope := range rm.ScopeMetrics {
		for _, metric := range scope.Metrics {
			sum, ok := metric.Data.(metricdata.Sum[int64])
			require.True(t, ok, metric.Name)
			for _, dp := range sum.DataPoints {
				totals[metric.Name] += dp.Value
			}
		}
	}

	assert.Equal(t, map[string]int64{
		"gallery.image.resolve.attempts": 1,
		"gallery.form.outcomes":          2,
	}, totals)
}
