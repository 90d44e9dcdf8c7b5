package config

import "time"

// Application constants
const (
	AppName = "lfsclean"

	// Directories, relative to the base directory
	DefaultDataDir    = "data"
	DefaultInputDir   = "data/extracts"
	DefaultOutputDir  = "data/cleaned"
	DefaultReportsDir = "data/reports"
	DefaultLogsDir    = "logs"

	// Well-known output file names
	CleanedCSVName     = "lfs_cleaned.csv"
	CleanedXLSXName    = "lfs_cleaned.xlsx"
	SummaryJSONName    = "lfs_summary.json"
	SummaryCSVName     = "lfs_summary.csv"
	DropReportJSONName = "lfs_drop_report.json"

	// Rate limiting, requests per second
	DefaultRateLimit = 10
	DefaultBurstSize = 20

	// Extract uploads are whole monthly microdata files
	DefaultMaxUploadBytes = 256 << 20
	DefaultRequestTimeout = 2 * time.Minute

	DefaultWorkers = 4
)
