package http

import (
	"context"
	"io"

	"lfsclean/internal/dataprocessing"
	"lfsclean/internal/exporter"
	"lfsclean/pkg/contracts/domain"
)

// CleaningServiceInterface defines the cleaning operations the handlers use
type CleaningServiceInterface interface {
	CleanReader(ctx context.Context, r io.Reader, format, sheet, source string, opts domain.CleaningOptions) (*dataprocessing.Result, error)
	Encode(w io.Writer, result *dataprocessing.Result, format exporter.Format, sheet string, bom bool) error
	Summarize(ctx context.Context, result *dataprocessing.Result) (*dataprocessing.CohortSummary, error)
}
