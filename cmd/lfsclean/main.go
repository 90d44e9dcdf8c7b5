package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lfsclean/internal/config"
	"lfsclean/internal/exporter"
	"lfsclean/internal/files"
	"lfsclean/internal/infrastructure"
	"lfsclean/internal/services"
)

// options holds the parsed command line
type options struct {
	configPath     string
	in             string
	out            string
	format         string
	unemployedOnly bool
	classification bool
	summary        string
	report         string

	// set records which flags were given explicitly
	set map[string]bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		infrastructure.WithError(infrastructure.GetLogger(), err).Error("lfsclean failed")
		stop()
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("lfsclean", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{set: make(map[string]bool)}
	fs.StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	fs.StringVar(&opts.in, "in", "", "extract file or directory of extracts (defaults to the configured input directory)")
	fs.StringVar(&opts.out, "out", "", "cleaned table path (defaults to the configured output directory)")
	fs.StringVar(&opts.format, "format", "", "output format: csv or xlsx")
	fs.BoolVar(&opts.unemployedOnly, "unemployed-only", true, "keep unemployed respondents only")
	fs.BoolVar(&opts.classification, "classification", false, "drop the joblessness duration column")
	fs.StringVar(&opts.summary, "summary", "", "write the cohort summary to this path (.csv or .json)")
	fs.StringVar(&opts.report, "report", "", "write the drop report JSON to this path")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })
	return opts, nil
}

// apply overlays the explicitly given flags onto cfg
func (o *options) apply(cfg *config.Config) {
	if o.set["unemployed-only"] {
		cfg.Cleaning.UnemployedOnly = o.unemployedOnly
	}
	if o.set["classification"] {
		cfg.Cleaning.ClassificationMode = o.classification
	}
	if o.format != "" {
		cfg.Cleaning.OutputFormat = o.format
	}
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	opts.apply(cfg)

	format, err := exporter.ParseFormat(cfg.Cleaning.OutputFormat)
	if err != nil {
		return err
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer infrastructure.CloseLogFile()

	ctx = infrastructure.EnsureTraceID(ctx)

	paths, err := config.NewPaths(cfg.Paths)
	if err != nil {
		return err
	}
	in := opts.in
	if in == "" {
		in = paths.InputDir
	}
	out := opts.out
	if out == "" {
		out = paths.CleanedPath(string(format))
	}

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.WarnContext(ctx, "telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	metrics, err := infrastructure.NewPipelineMetrics(providers.MeterOrNoop())
	if err != nil {
		return err
	}

	svc := services.NewCleaningService(cfg.Cleaning, files.NewDiscovery(paths.InputDir), metrics, logger)

	logger.InfoContext(ctx, "cleaning started",
		slog.String("in", in),
		slog.String("out", out),
		slog.String("format", string(format)),
		slog.Bool("unemployed_only", cfg.Cleaning.UnemployedOnly),
		slog.Bool("classification_mode", cfg.Cleaning.ClassificationMode))

	result, err := svc.Clean(ctx, in, cfg.Cleaning.Options())
	if err != nil {
		return err
	}

	if err := svc.Export(ctx, result, services.ExportRequest{
		Path:   out,
		Format: format,
		Sheet:  cfg.Cleaning.Sheet,
		BOM:    cfg.Cleaning.BOM,
	}); err != nil {
		return err
	}

	if opts.summary != "" {
		summary, err := svc.Summarize(ctx, result)
		if err != nil {
			return err
		}
		if err := svc.WriteSummary(ctx, opts.summary, summary); err != nil {
			return err
		}
	}

	if opts.report != "" {
		if err := svc.WriteDropReport(opts.report, result.Report); err != nil {
			return err
		}
	}

	report := result.Report
	logger.InfoContext(ctx, "cleaning completed",
		slog.Int("rows_in", report.RowsIn),
		slog.Int("rows_out", report.RowsOut),
		slog.Any("dropped_by_step", report.DroppedByStep),
		slog.Any("unknown_codes", report.UnknownCodes),
		slog.Any("missing_values", report.MissingValues))
	return nil
}
