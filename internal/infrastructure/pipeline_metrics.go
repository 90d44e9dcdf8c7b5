package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"lfsclean/pkg/contracts/domain"
)

// PipelineMetrics holds the cleaning pipeline instruments
type PipelineMetrics struct {
	rowsRead          metric.Int64Counter
	rowsDropped       metric.Int64Counter
	rowsWritten       metric.Int64Counter
	unknownCodes      metric.Int64Counter
	transformDuration metric.Float64Histogram
	filesProcessed    metric.Int64Counter
}

// NewPipelineMetrics creates the pipeline instruments on meter
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	rowsRead, err := meter.Int64Counter(
		"lfs_rows_read_total",
		metric.WithDescription("Rows read from survey extracts"),
	)
	if err != nil {
		return nil, err
	}

	rowsDropped, err := meter.Int64Counter(
		"lfs_rows_dropped_total",
		metric.WithDescription("Rows removed by a cleaning filter step"),
	)
	if err != nil {
		return nil, err
	}

	rowsWritten, err := meter.Int64Counter(
		"lfs_rows_written_total",
		metric.WithDescription("Rows in cleaned cohort tables"),
	)
	if err != nil {
		return nil, err
	}

	unknownCodes, err := meter.Int64Counter(
		"lfs_unknown_codes_total",
		metric.WithDescription("Cells whose code had no label"),
	)
	if err != nil {
		return nil, err
	}

	transformDuration, err := meter.Float64Histogram(
		"lfs_transform_duration_seconds",
		metric.WithDescription("Duration of a cleaning transform"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	filesProcessed, err := meter.Int64Counter(
		"lfs_files_processed_total",
		metric.WithDescription("Survey extract files processed, by status"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		rowsRead:          rowsRead,
		rowsDropped:       rowsDropped,
		rowsWritten:       rowsWritten,
		unknownCodes:      unknownCodes,
		transformDuration: transformDuration,
		filesProcessed:    filesProcessed,
	}, nil
}

// RecordTransform records the row accounting of one transform
func (m *PipelineMetrics) RecordTransform(ctx context.Context, report *domain.DropReport, elapsed time.Duration) {
	if m == nil || report == nil {
		return
	}

	m.rowsRead.Add(ctx, int64(report.RowsIn))
	m.rowsWritten.Add(ctx, int64(report.RowsOut))
	for step, n := range report.DroppedByStep {
		m.rowsDropped.Add(ctx, int64(n), metric.WithAttributes(attribute.String("step", step)))
	}
	for column, n := range report.UnknownCodes {
		m.unknownCodes.Add(ctx, int64(n), metric.WithAttributes(attribute.String("column", column)))
	}
	m.transformDuration.Record(ctx, elapsed.Seconds())
}

// RecordFile counts one processed extract file
func (m *PipelineMetrics) RecordFile(ctx context.Context, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.filesProcessed.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}
