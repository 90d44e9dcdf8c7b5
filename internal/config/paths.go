package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains the resolved application directories and well-known files.
type Paths struct {
	BaseDir    string
	DataDir    string
	InputDir   string
	OutputDir  string
	ReportsDir string
	LogsDir    string

	// Well-known output files
	CleanedCSV     string
	CleanedXLSX    string
	SummaryJSON    string
	SummaryCSV     string
	DropReportJSON string
}

// NewPaths resolves cfg against its base directory. An empty BaseDir means
// the directory holding the running executable.
func NewPaths(cfg PathsConfig) (*Paths, error) {
	base := cfg.BaseDir
	if base == "" {
		dir, err := executableDir()
		if err != nil {
			return nil, err
		}
		base = dir
	}

	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	resolve := func(dir string) string {
		if filepath.IsAbs(dir) {
			return dir
		}
		return filepath.Join(base, dir)
	}

	outputDir := resolve(cfg.OutputDir)
	reportsDir := resolve(cfg.ReportsDir)

	return &Paths{
		BaseDir:    base,
		DataDir:    resolve(cfg.DataDir),
		InputDir:   resolve(cfg.InputDir),
		OutputDir:  outputDir,
		ReportsDir: reportsDir,
		LogsDir:    resolve(cfg.LogsDir),

		CleanedCSV:     filepath.Join(outputDir, CleanedCSVName),
		CleanedXLSX:    filepath.Join(outputDir, CleanedXLSXName),
		SummaryJSON:    filepath.Join(reportsDir, SummaryJSONName),
		SummaryCSV:     filepath.Join(reportsDir, SummaryCSVName),
		DropReportJSON: filepath.Join(reportsDir, DropReportJSONName),
	}, nil
}

// GetPaths returns the default paths relative to the executable location
func GetPaths() (*Paths, error) {
	return NewPaths(Default().Paths)
}

func executableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}

	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}

	return filepath.Dir(exe), nil
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.InputDir,
		p.OutputDir,
		p.ReportsDir,
		p.LogsDir,
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}

	return nil
}

// GetInputPath returns the path of an extract in the input directory
func (p *Paths) GetInputPath(filename string) string {
	return filepath.Join(p.InputDir, filename)
}

// GetOutputPath returns a path in the cleaned output directory
func (p *Paths) GetOutputPath(filename string) string {
	return filepath.Join(p.OutputDir, filename)
}

// GetReportPath returns a path in the reports directory
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetLogPath returns a path in the logs directory
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// CleanedPath returns the default cleaned table path for an output format
func (p *Paths) CleanedPath(format string) string {
	if format == "xlsx" {
		return p.CleanedXLSX
	}
	return p.CleanedCSV
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LogPathResolution logs the resolved directories for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("base", p.BaseDir),
			slog.String("data", p.DataDir),
			slog.String("input", p.InputDir),
			slog.String("output", p.OutputDir),
			slog.String("reports", p.ReportsDir),
			slog.String("logs", p.LogsDir),
		),
		slog.Group("report_files",
			slog.String("summary_json", p.SummaryJSON),
			slog.String("summary_csv", p.SummaryCSV),
			slog.String("drop_report_json", p.DropReportJSON),
		))
}
