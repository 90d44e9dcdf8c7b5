package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/spf13/cast"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"lfsclean/internal/codebook"
	"lfsclean/internal/errors"
	"lfsclean/internal/infrastructure"
	"lfsclean/pkg/contracts/domain"
)

// TracerName is the instrumentation scope of cleaning spans
const TracerName = "lfsclean/dataprocessing"

// naText is how gota marks a missing element in text form
const naText = "NaN"

// monthDateLayout parses "<year>-<month label>" pairs such as "2023-March"
const monthDateLayout = "2006-January"

// DatasetCleaner cleans one loaded extract. The frame it holds is never
// modified, so Transform may be called any number of times, concurrently.
type DatasetCleaner struct {
	input   dataframe.DataFrame
	logger  *slog.Logger
	metrics MetricsRecorder
	source  string
}

// NewDatasetCleaner creates a cleaner over df
func NewDatasetCleaner(df dataframe.DataFrame, logger *slog.Logger, opts ...Option) *DatasetCleaner {
	if logger == nil {
		logger = slog.Default()
	}

	c := &DatasetCleaner{
		input:  df.Copy(),
		logger: infrastructure.WithComponent(logger, "dataset_cleaner"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.source != "" {
		c.logger = c.logger.With(slog.String("source", c.source))
	}
	return c
}

// Transform runs the cleaning pipeline and returns a new table
func (c *DatasetCleaner) Transform(ctx context.Context, opts domain.CleaningOptions) (*Result, error) {
	start := time.Now()

	ctx, span := otel.Tracer(TracerName).Start(ctx, "dataprocessing.transform",
		trace.WithAttributes(
			attribute.String("lfs.source", c.source),
			attribute.Bool("lfs.unemployed_only", opts.UnemployedOnly),
			attribute.Bool("lfs.classification_mode", opts.ClassificationMode),
			attribute.Int("lfs.rows_in", c.input.Nrow()),
		))
	defer span.End()

	result, err := c.transform(ctx, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.ErrorContext(ctx, "transform failed", slog.String("error", err.Error()))
		return nil, err
	}

	elapsed := time.Since(start)
	span.SetAttributes(
		attribute.Int("lfs.rows_out", result.Report.RowsOut),
		attribute.Int("lfs.rows_dropped", result.Report.TotalDropped()),
	)

	c.logger.InfoContext(ctx, "transform completed",
		slog.Int("rows_in", result.Report.RowsIn),
		slog.Int("rows_out", result.Report.RowsOut),
		slog.Any("dropped_by_step", result.Report.DroppedByStep),
		slog.Any("unknown_codes", result.Report.UnknownCodes),
		slog.Duration("elapsed", elapsed))

	if c.metrics != nil {
		c.metrics.RecordTransform(ctx, result.Report, elapsed)
	}

	return result, nil
}

func (c *DatasetCleaner) transform(ctx context.Context, opts domain.CleaningOptions) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.input.Err != nil {
		return nil, errors.NewParsingError("extract could not be loaded", c.input.Err)
	}
	if missing := MissingColumns(c.input.Names()); len(missing) > 0 {
		return nil, errors.NewMissingColumnsError(missing)
	}

	report := domain.NewDropReport(c.input.Nrow())

	df, err := selectAndRename(c.input)
	if err != nil {
		return nil, err
	}

	if df, err = decodeColumns(df, report); err != nil {
		return nil, err
	}

	if df, err = deriveDate(df, report); err != nil {
		return nil, err
	}

	df = c.filterRows(ctx, df, domain.StepStudents, domain.ColumnStudentStatus, report,
		func(label string, na bool) bool { return !na && label == codebook.LabelNonStudent })
	if df, err = dropColumns(df, domain.ColumnStudentStatus); err != nil {
		return nil, err
	}

	// Rows with an undecoded status survive here and fall to the completeness filter.
	df = c.filterRows(ctx, df, domain.StepNotInLabourForce, domain.ColumnLabourForceStatus, report,
		func(label string, na bool) bool { return na || label != codebook.LabelNotInLabourForce })

	if opts.UnemployedOnly {
		df = c.filterRows(ctx, df, domain.StepEmployed, domain.ColumnLabourForceStatus, report,
			func(label string, na bool) bool { return !na && label == codebook.LabelUnemployed })
		if df, err = dropColumns(df, domain.ColumnLabourForceStatus); err != nil {
			return nil, err
		}
	}

	if opts.ClassificationMode {
		if df, err = dropColumns(df, domain.ColumnDuration); err != nil {
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	df = c.dropIncomplete(ctx, df, report)

	if df, err = dateFirst(df); err != nil {
		return nil, err
	}

	report.RowsOut = df.Nrow()
	return &Result{Frame: df, Report: report}, nil
}

// MissingColumns returns the required source columns absent from names
func MissingColumns(names []string) []string {
	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[n] = true
	}

	var missing []string
	for _, col := range domain.SourceColumns {
		if !present[col.Source] {
			missing = append(missing, col.Source)
		}
	}
	return missing
}

func selectAndRename(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	out := df.Select(domain.SourceNames())
	for _, col := range domain.SourceColumns {
		out = out.Rename(col.Target, col.Source)
	}
	if out.Err != nil {
		return out, fmt.Errorf("select source columns: %w", out.Err)
	}
	return out, nil
}

// decodeColumns replaces every coded column with its labels, parses Year as
// an integer and passes the joblessness duration through as a float.
func decodeColumns(df dataframe.DataFrame, report *domain.DropReport) (dataframe.DataFrame, error) {
	for _, table := range codebook.Coded {
		raw := df.Col(table.Column).Records()
		labels := make([]string, len(raw))
		for i, v := range raw {
			outcome := table.DecodeValue(v)
			switch outcome.Status {
			case codebook.StatusKnown:
				labels[i] = outcome.Label
			case codebook.StatusUnknown:
				report.UnknownCodes[table.Column]++
				labels[i] = naText
			default:
				labels[i] = naText
			}
		}
		df = df.Mutate(series.New(labels, series.String, table.Column))
	}

	years := df.Col(domain.ColumnYear).Records()
	yearText := make([]string, len(years))
	for i, v := range years {
		yearText[i] = naText
		if n, ok := codebook.ParseCode(v); ok {
			yearText[i] = strconv.Itoa(n)
		} else if !codebook.IsMissing(v) {
			report.UnknownCodes[domain.ColumnYear]++
		}
	}
	df = df.Mutate(series.New(yearText, series.Int, domain.ColumnYear))

	durations := df.Col(domain.ColumnDuration).Records()
	durationText := make([]string, len(durations))
	for i, v := range durations {
		durationText[i] = naText
		if f, ok := parseMonths(v); ok {
			durationText[i] = strconv.FormatFloat(f, 'f', -1, 64)
		} else if !codebook.IsMissing(v) {
			report.UnknownCodes[domain.ColumnDuration]++
		}
	}
	df = df.Mutate(series.New(durationText, series.Float, domain.ColumnDuration))

	if df.Err != nil {
		return df, fmt.Errorf("decode columns: %w", df.Err)
	}
	return df, nil
}

// parseMonths reads a joblessness duration. Any finite number is kept as is.
func parseMonths(raw string) (float64, bool) {
	if codebook.IsMissing(raw) {
		return 0, false
	}
	f, err := cast.ToFloat64E(strings.TrimSpace(raw))
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// deriveDate combines Year and the decoded Month into a Date column and
// removes both source columns.
func deriveDate(df dataframe.DataFrame, report *domain.DropReport) (dataframe.DataFrame, error) {
	years := df.Col(domain.ColumnYear)
	months := df.Col(domain.ColumnMonth)

	dates := make([]string, df.Nrow())
	for i := range dates {
		dates[i] = naText

		y, m := years.Elem(i), months.Elem(i)
		if y.IsNA() || m.IsNA() {
			continue
		}
		year, err := y.Int()
		if err != nil {
			continue
		}
		t, err := time.Parse(monthDateLayout, fmt.Sprintf("%d-%s", year, m.String()))
		if err != nil {
			report.UnknownCodes[domain.ColumnDate]++
			continue
		}
		dates[i] = t.Format(domain.DateLayout)
	}

	df = df.Mutate(series.New(dates, series.String, domain.ColumnDate))
	return dropColumns(df, domain.ColumnYear, domain.ColumnMonth)
}

// filterRows keeps the rows whose value in column satisfies keep and counts
// the rest against step.
func (c *DatasetCleaner) filterRows(ctx context.Context, df dataframe.DataFrame, step, column string,
	report *domain.DropReport, keep func(label string, na bool) bool) dataframe.DataFrame {
	col := df.Col(column)
	labels := col.Records()
	na := col.IsNaN()

	mask := make([]bool, len(labels))
	for i := range labels {
		mask[i] = keep(labels[i], na[i])
	}

	out := keepRows(df, mask)
	dropped := df.Nrow() - out.Nrow()
	report.DroppedByStep[step] += dropped

	c.logger.DebugContext(ctx, "filter applied",
		slog.String("step", step),
		slog.Int("rows_before", df.Nrow()),
		slog.Int("rows_after", out.Nrow()),
		slog.Int("dropped", dropped))

	return out
}

// dropIncomplete removes every row holding a missing value in any column.
func (c *DatasetCleaner) dropIncomplete(ctx context.Context, df dataframe.DataFrame, report *domain.DropReport) dataframe.DataFrame {
	mask := make([]bool, df.Nrow())
	for i := range mask {
		mask[i] = true
	}

	for _, name := range df.Names() {
		for i, missing := range df.Col(name).IsNaN() {
			if missing {
				report.MissingValues[name]++
				mask[i] = false
			}
		}
	}

	out := keepRows(df, mask)
	dropped := df.Nrow() - out.Nrow()
	report.DroppedByStep[domain.StepIncomplete] += dropped

	c.logger.DebugContext(ctx, "filter applied",
		slog.String("step", domain.StepIncomplete),
		slog.Int("rows_before", df.Nrow()),
		slog.Int("rows_after", out.Nrow()),
		slog.Int("dropped", dropped),
		slog.Any("missing_values", report.MissingValues))

	return out
}

// keepRows subsets df by mask. An all-false mask yields an empty frame with
// the same columns.
func keepRows(df dataframe.DataFrame, mask []bool) dataframe.DataFrame {
	kept := 0
	for _, k := range mask {
		if k {
			kept++
		}
	}

	switch kept {
	case len(mask):
		return df
	case 0:
		return emptyLike(df)
	}
	return df.Subset(mask)
}

func emptyLike(df dataframe.DataFrame) dataframe.DataFrame {
	names := df.Names()
	cols := make([]series.Series, len(names))
	for i, name := range names {
		cols[i] = series.New([]string{}, df.Col(name).Type(), name)
	}
	return dataframe.New(cols...)
}

func dropColumns(df dataframe.DataFrame, columns ...string) (dataframe.DataFrame, error) {
	out := df.Drop(columns)
	if out.Err != nil {
		return out, fmt.Errorf("drop %v: %w", columns, out.Err)
	}
	return out, nil
}

// dateFirst moves Date to the front, keeping the order of the other columns.
func dateFirst(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	order := []string{domain.ColumnDate}
	for _, name := range df.Names() {
		if name != domain.ColumnDate {
			order = append(order, name)
		}
	}

	out := df.Select(order)
	if out.Err != nil {
		return out, fmt.Errorf("reorder columns: %w", out.Err)
	}
	return out, nil
}
