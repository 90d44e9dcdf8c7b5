package dataprocessing

import (
	"context"
	"fmt"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"lfsclean/pkg/contracts/domain"
)

// Cleaner defines the cleaning operation over a loaded extract
type Cleaner interface {
	Transform(ctx context.Context, opts domain.CleaningOptions) (*Result, error)
}

// MetricsRecorder receives the outcome of every transform
type MetricsRecorder interface {
	RecordTransform(ctx context.Context, report *domain.DropReport, elapsed time.Duration)
}

// Option configures a DatasetCleaner
type Option func(*DatasetCleaner)

// WithMetrics attaches a metrics recorder
func WithMetrics(m MetricsRecorder) Option {
	return func(c *DatasetCleaner) {
		c.metrics = m
	}
}

// WithSource names the extract in log lines and spans
func WithSource(name string) Option {
	return func(c *DatasetCleaner) {
		c.source = name
	}
}

// Result is the output of one transform
type Result struct {
	Frame  dataframe.DataFrame
	Report *domain.DropReport
}

// Columns returns the cleaned table's column names
func (r *Result) Columns() []string {
	return r.Frame.Names()
}

// Len returns the number of cleaned rows
func (r *Result) Len() int {
	return r.Frame.Nrow()
}

// Records converts the cleaned table into typed cohort records
func (r *Result) Records() ([]domain.CohortRecord, error) {
	cols := make(map[string]series.Series)
	for _, name := range r.Frame.Names() {
		cols[name] = r.Frame.Col(name)
	}
	if _, ok := cols[domain.ColumnDate]; !ok {
		return nil, fmt.Errorf("cleaned table has no %s column", domain.ColumnDate)
	}

	text := func(col string, row int) string {
		s, ok := cols[col]
		if !ok {
			return ""
		}
		return s.Elem(row).String()
	}

	n := r.Frame.Nrow()
	records := make([]domain.CohortRecord, 0, n)
	for i := 0; i < n; i++ {
		date, err := time.Parse(domain.DateLayout, text(domain.ColumnDate, i))
		if err != nil {
			return nil, fmt.Errorf("row %d: parse date: %w", i, err)
		}

		rec := domain.CohortRecord{
			Date:              date,
			LabourForceStatus: text(domain.ColumnLabourForceStatus, i),
			Province:          text(domain.ColumnProvince, i),
			AgeGroup:          text(domain.ColumnAgeGroup, i),
			Gender:            text(domain.ColumnGender, i),
			EducationLevel:    text(domain.ColumnEducation, i),
			ImmigrationStatus: text(domain.ColumnImmigration, i),
			Occupation:        text(domain.ColumnOccupation, i),
		}

		if duration, ok := cols[domain.ColumnDuration]; ok {
			el := duration.Elem(i)
			if el.IsNA() {
				return nil, fmt.Errorf("row %d: duration is missing", i)
			}
			months := el.Float()
			rec.DurationMonths = &months
		}

		records = append(records, rec)
	}
	return records, nil
}
