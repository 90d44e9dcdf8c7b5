package dataprocessing

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"lfsclean/internal/codebook"
	"lfsclean/internal/errors"
	"lfsclean/internal/infrastructure"
	"lfsclean/pkg/contracts/domain"
)

// Summarizer builds cohort summaries from cleaned tables.
type Summarizer struct {
	logger *slog.Logger
}

// LabelCount is the number of cleaned rows carrying one label
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// ColumnSummary holds the label counts of one categorical column
type ColumnSummary struct {
	Column string       `json:"column"`
	Counts []LabelCount `json:"counts"`
}

// CohortSummary describes a cleaned table
type CohortSummary struct {
	Rows       int                `json:"rows"`
	FirstMonth string             `json:"first_month,omitempty"`
	LastMonth  string             `json:"last_month,omitempty"`
	Columns    []ColumnSummary    `json:"columns"`
	Report     *domain.DropReport `json:"report,omitempty"`
}

// NewSummarizer creates a new cohort summarizer
func NewSummarizer(logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{
		logger: infrastructure.WithComponent(logger, "summarizer"),
	}
}

// filteredLabels are labels the cleaning pipeline removes from a column, so
// a cleaned table never carries them.
var filteredLabels = map[string]map[string]bool{
	domain.ColumnLabourForceStatus: {codebook.LabelNotInLabourForce: true},
}

// Generate summarizes a transform result. Every label a cleaned column can
// take is listed, in code order, including those no row carries. Labels the
// pipeline filters out are omitted.
func (s *Summarizer) Generate(ctx context.Context, result *Result) (*CohortSummary, error) {
	summary := &CohortSummary{
		Rows:   result.Len(),
		Report: result.Report,
	}

	present := make(map[string]bool)
	for _, name := range result.Columns() {
		present[name] = true
	}

	if present[domain.ColumnDate] && summary.Rows > 0 {
		months := result.Frame.Col(domain.ColumnDate).Records()
		sort.Strings(months)
		summary.FirstMonth = months[0]
		summary.LastMonth = months[len(months)-1]
	}

	for _, column := range domain.CategoricalColumns {
		if !present[column] {
			continue
		}

		counts := make(map[string]int)
		for _, label := range result.Frame.Col(column).Records() {
			counts[label]++
		}

		cs := ColumnSummary{Column: column}
		if table, ok := codebook.ForColumn(column); ok {
			for _, label := range table.DistinctLabels() {
				if filteredLabels[column][label] {
					continue
				}
				cs.Counts = append(cs.Counts, LabelCount{Label: label, Count: counts[label]})
				delete(counts, label)
			}
		}
		// Labels outside the code table cannot occur in a cleaned table; list them last if they do.
		var extra []string
		for label := range counts {
			extra = append(extra, label)
		}
		sort.Strings(extra)
		for _, label := range extra {
			cs.Counts = append(cs.Counts, LabelCount{Label: label, Count: counts[label]})
		}

		summary.Columns = append(summary.Columns, cs)
	}

	s.logger.DebugContext(ctx, "cohort summary generated",
		slog.Int("rows", summary.Rows),
		slog.String("first_month", summary.FirstMonth),
		slog.String("last_month", summary.LastMonth),
		slog.Int("columns", len(summary.Columns)))

	return summary, nil
}

// WriteCSV writes the label counts as Column,Label,Count rows
func (s *Summarizer) WriteCSV(ctx context.Context, path string, summary *CohortSummary) error {
	s.logger.InfoContext(ctx, "writing cohort summary to CSV", slog.String("path", path))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewStorageError("failed to create directory for CSV output", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.NewStorageError("failed to create CSV file for cohort summary", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write([]string{"Column", "Label", "Count"}); err != nil {
		return errors.NewStorageError("failed to write CSV header row", err)
	}
	for _, col := range summary.Columns {
		for _, c := range col.Counts {
			if err := writer.Write([]string{col.Column, c.Label, strconv.Itoa(c.Count)}); err != nil {
				return errors.NewStorageError("failed to write CSV data row", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.NewStorageError("failed to flush cohort summary", err)
	}
	return nil
}

// WriteJSON writes the summary with generation metadata
func (s *Summarizer) WriteJSON(ctx context.Context, path string, summary *CohortSummary) error {
	s.logger.InfoContext(ctx, "writing cohort summary to JSON", slog.String("path", path))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewStorageError("failed to create directory for JSON output", err)
	}

	jsonData := map[string]interface{}{
		"summary":      summary,
		"generated_at": time.Now().Format(time.RFC3339),
		"format":       "lfs_cohort_summary_v1",
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.NewStorageError("failed to create JSON file for cohort summary", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(jsonData); err != nil {
		return errors.NewStorageError("failed to encode cohort summary to JSON", err)
	}

	return nil
}
