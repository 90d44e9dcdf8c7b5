package infrastructure

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"lfsclean/pkg/contracts/domain"
)

func newTestMetrics(t *testing.T) (*PipelineMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := NewPipelineMetrics(provider.Meter(MeterName))
	require.NoError(t, err)
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumByAttr(t *testing.T, m metricdata.Metrics, key string) map[string]int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)

	out := make(map[string]int64)
	for _, dp := range sum.DataPoints {
		v, _ := dp.Attributes.Value(attribute.Key(key))
		out[v.AsString()] += dp.Value
	}
	return out
}

func TestPipelineMetrics_RecordTransform(t *testing.T) {
	m, reader := newTestMetrics(t)

	report := domain.NewDropReport(10)
	report.RowsOut = 4
	report.DroppedByStep[domain.StepStudents] = 2
	report.DroppedByStep[domain.StepNotInLabourForce] = 3
	report.DroppedByStep[domain.StepEmployed] = 1
	report.DroppedByStep[domain.StepIncomplete] = 0
	report.UnknownCodes[domain.ColumnProvince] = 5

	m.RecordTransform(context.Background(), report, 250*time.Millisecond)
	m.RecordTransform(context.Background(), report, 250*time.Millisecond)

	got := collect(t, reader)

	assert.Equal(t, map[string]int64{"": 20}, sumByAttr(t, got["lfs_rows_read_total"], "step"))
	assert.Equal(t, map[string]int64{"": 8}, sumByAttr(t, got["lfs_rows_written_total"], "step"))
	assert.Equal(t, map[string]int64{
		domain.StepStudents:         4,
		domain.StepNotInLabourForce: 6,
		domain.StepEmployed:         2,
		domain.StepIncomplete:       0,
	}, sumByAttr(t, got["lfs_rows_dropped_total"], "step"))
	assert.Equal(t, map[string]int64{domain.ColumnProvince: 10},
		sumByAttr(t, got["lfs_unknown_codes_total"], "column"))

	hist, ok := got["lfs_transform_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(2), hist.DataPoints[0].Count)
	assert.InDelta(t, 0.5, hist.DataPoints[0].Sum, 1e-9)
}

func TestPipelineMetrics_RecordFile(t *testing.T) {
	m, reader := newTestMetrics(t)

	m.RecordFile(context.Background(), nil)
	m.RecordFile(context.Background(), nil)
	m.RecordFile(context.Background(), errors.New("boom"))

	got := collect(t, reader)
	assert.Equal(t, map[string]int64{"success": 2, "failure": 1},
		sumByAttr(t, got["lfs_files_processed_total"], "status"))
}

func TestPipelineMetrics_NilSafe(t *testing.T) {
	var m *PipelineMetrics
	assert.NotPanics(t, func() {
		m.RecordTransform(context.Background(), domain.NewDropReport(1), time.Second)
		m.RecordFile(context.Background(), nil)
	})

	metrics, reader := newTestMetrics(t)
	metrics.RecordTransform(context.Background(), nil, time.Second)
	assert.Empty(t, collect(t, reader))
}
