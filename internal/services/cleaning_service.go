package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"lfsclean/internal/config"
	"lfsclean/internal/dataprocessing"
	"lfsclean/internal/errors"
	"lfsclean/internal/exporter"
	"lfsclean/internal/files"
	"lfsclean/internal/infrastructure"
	"lfsclean/internal/validation"
	"lfsclean/pkg/contracts/domain"
)

const tracerName = "lfsclean/services"

// PipelineRecorder receives per-transform and per-file outcomes
type PipelineRecorder interface {
	dataprocessing.MetricsRecorder
	RecordFile(ctx context.Context, err error)
}

// CleanedTable is the JSON rendering of a cleaned cohort table
type CleanedTable struct {
	Columns []string              `json:"columns"`
	Records []domain.CohortRecord `json:"records"`
	Report  *domain.DropReport    `json:"report"`
}

// ExportRequest describes where and how a cleaned table is written
type ExportRequest struct {
	Path   string
	Format exporter.Format
	Sheet  string
	BOM    bool
}

// CleaningService runs the cleaning pipeline over files, directories and
// streams, and writes its outputs.
type CleaningService struct {
	cfg        config.CleaningConfig
	discovery  *files.Discovery
	validator  *validation.FileValidator
	summarizer *dataprocessing.Summarizer
	metrics    PipelineRecorder
	logger     *slog.Logger
}

// NewCleaningService creates a cleaning service. metrics may be nil.
func NewCleaningService(cfg config.CleaningConfig, discovery *files.Discovery, metrics PipelineRecorder, logger *slog.Logger) *CleaningService {
	if logger == nil {
		logger = slog.Default()
	}
	if discovery == nil {
		discovery = files.NewDiscovery("")
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	logger = infrastructure.WithComponent(logger, "cleaning_service")

	return &CleaningService{
		cfg:        cfg,
		discovery:  discovery,
		validator:  validation.NewFileValidator(logger),
		summarizer: dataprocessing.NewSummarizer(logger),
		metrics:    metrics,
		logger:     logger,
	}
}

// Clean cleans the extract at in, or every extract in it when in is a
// directory.
func (s *CleaningService) Clean(ctx context.Context, in string, opts domain.CleaningOptions) (*dataprocessing.Result, error) {
	extracts, isDir, err := s.discovery.Resolve(in)
	if err != nil {
		return nil, err
	}
	if isDir {
		return s.cleanAll(ctx, in, extracts, opts)
	}
	return s.CleanFile(ctx, extracts[0].Path, opts)
}

// CleanFile parses and cleans a single CSV or XLSX extract
func (s *CleaningService) CleanFile(ctx context.Context, path string, opts domain.CleaningOptions) (*dataprocessing.Result, error) {
	result, err := s.cleanFile(ctx, path, opts)
	if s.metrics != nil {
		s.metrics.RecordFile(ctx, err)
	}
	return result, err
}

func (s *CleaningService) cleanFile(ctx context.Context, path string, opts domain.CleaningOptions) (*dataprocessing.Result, error) {
	if err := s.validator.ValidateExtract(path); err != nil {
		return nil, err
	}

	df, err := dataprocessing.ParseFile(path, s.cfg.Sheet)
	if err != nil {
		return nil, err
	}

	return s.transform(ctx, df, filepath.Base(path), opts)
}

// CleanReader parses an extract of the given format from r and cleans it.
// source names the input in logs.
func (s *CleaningService) CleanReader(ctx context.Context, r io.Reader, format, sheet, source string, opts domain.CleaningOptions) (*dataprocessing.Result, error) {
	if sheet == "" {
		sheet = s.cfg.Sheet
	}
	df, err := dataprocessing.ParseReader(r, format, sheet)
	if err != nil {
		return nil, err
	}
	return s.transform(ctx, df, source, opts)
}

// CleanDirectory cleans every extract in dir in parallel and concatenates
// the results in file-name order. Any failing file fails the batch.
func (s *CleaningService) CleanDirectory(ctx context.Context, dir string, opts domain.CleaningOptions) (*dataprocessing.Result, error) {
	if err := s.validator.ValidateInputDirectory(dir); err != nil {
		return nil, err
	}
	extracts, err := s.discovery.FindExtracts(dir)
	if err != nil {
		return nil, err
	}
	return s.cleanAll(ctx, dir, extracts, opts)
}

func (s *CleaningService) cleanAll(ctx context.Context, dir string, extracts []files.FileInfo, opts domain.CleaningOptions) (*dataprocessing.Result, error) {
	if len(extracts) == 0 {
		return nil, errors.NewAppError(errors.ErrTypeNotFound,
			fmt.Sprintf("no CSV or XLSX extracts in %s", dir), ErrNoExtractsFound)
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "services.clean_directory",
		trace.WithAttributes(
			attribute.String("lfs.directory", dir),
			attribute.Int("lfs.files", len(extracts)),
		))
	defer span.End()

	start := time.Now()
	results := make([]*dataprocessing.Result, len(extracts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i, extract := range extracts {
		g.Go(func() error {
			result, err := s.CleanFile(gctx, extract.Path, opts)
			if err != nil {
				return fmt.Errorf("clean %s: %w", extract.Name, err)
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.ErrorContext(ctx, "batch failed",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return nil, err
	}

	combined, err := combine(results)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.logger.InfoContext(ctx, "batch completed",
		slog.String("directory", dir),
		slog.Int("files", len(extracts)),
		slog.Int("rows_in", combined.Report.RowsIn),
		slog.Int("rows_out", combined.Report.RowsOut),
		slog.Duration("elapsed", time.Since(start)))

	return combined, nil
}

// combine concatenates per-file tables in order and merges their reports
func combine(results []*dataprocessing.Result) (*dataprocessing.Result, error) {
	report := domain.NewDropReport(0)
	var frame *dataframe.DataFrame

	for _, r := range results {
		report.Merge(r.Report)
		if r.Len() == 0 {
			continue
		}
		if frame == nil {
			f := r.Frame
			frame = &f
			continue
		}
		if !sameColumns(frame.Names(), r.Columns()) {
			return nil, ErrIncompatibleRun
		}
		bound := frame.RBind(r.Frame)
		if bound.Err != nil {
			return nil, fmt.Errorf("concatenate tables: %w", bound.Err)
		}
		frame = &bound
	}

	if frame == nil {
		// every file cleaned to zero rows; keep the first table's columns
		f := results[0].Frame
		frame = &f
	}

	return &dataprocessing.Result{Frame: *frame, Report: report}, nil
}

func sameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (s *CleaningService) transform(ctx context.Context, df dataframe.DataFrame, source string, opts domain.CleaningOptions) (*dataprocessing.Result, error) {
	cleanerOpts := []dataprocessing.Option{dataprocessing.WithSource(source)}
	if s.metrics != nil {
		cleanerOpts = append(cleanerOpts, dataprocessing.WithMetrics(s.metrics))
	}
	return dataprocessing.NewDatasetCleaner(df, s.logger, cleanerOpts...).Transform(ctx, opts)
}

// Encode writes result to w in the given format
func (s *CleaningService) Encode(w io.Writer, result *dataprocessing.Result, format exporter.Format, sheet string, bom bool) error {
	switch format {
	case exporter.FormatCSV:
		return exporter.EncodeFrameCSV(w, result.Frame, bom)
	case exporter.FormatXLSX:
		if sheet == "" {
			sheet = exporter.DefaultSheet
		}
		return exporter.EncodeFrameXLSX(w, result.Frame, sheet)
	case exporter.FormatJSON:
		records, err := result.Records()
		if err != nil {
			return err
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(CleanedTable{
			Columns: result.Columns(),
			Records: records,
			Report:  result.Report,
		})
	}
	return fmt.Errorf("output format %q: %w", format, errors.ErrUnsupportedFormat)
}

// Export writes result to req.Path in req.Format
func (s *CleaningService) Export(ctx context.Context, result *dataprocessing.Result, req ExportRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.validator.ValidateOutputDirectory(filepath.Dir(req.Path)); err != nil {
		return err
	}

	f, err := os.Create(req.Path)
	if err != nil {
		return errors.NewStorageError(fmt.Sprintf("failed to create %s", req.Path), err)
	}

	if err := s.Encode(f, result, req.Format, req.Sheet, req.BOM); err != nil {
		f.Close()
		os.Remove(req.Path)
		return errors.NewStorageError(fmt.Sprintf("failed to write %s", req.Path), err)
	}
	if err := f.Close(); err != nil {
		return errors.NewStorageError(fmt.Sprintf("failed to close %s", req.Path), err)
	}

	s.logger.InfoContext(ctx, "cleaned table written",
		slog.String("path", req.Path),
		slog.String("format", string(req.Format)),
		slog.Int("rows", result.Len()))
	return nil
}

// Summarize builds the cohort summary of a cleaned table
func (s *CleaningService) Summarize(ctx context.Context, result *dataprocessing.Result) (*dataprocessing.CohortSummary, error) {
	return s.summarizer.Generate(ctx, result)
}

// WriteSummary writes summary as CSV when path ends in .csv, JSON otherwise
func (s *CleaningService) WriteSummary(ctx context.Context, path string, summary *dataprocessing.CohortSummary) error {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return s.summarizer.WriteCSV(ctx, path, summary)
	}
	return s.summarizer.WriteJSON(ctx, path, summary)
}

// WriteDropReport writes the drop report as JSON
func (s *CleaningService) WriteDropReport(path string, report *domain.DropReport) error {
	return exporter.WriteDropReportJSON(path, report)
}
