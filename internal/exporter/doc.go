// Package exporter writes cleaned LFS tables and their reports.
//
// This package contains three main components:
//
// CSVWriter: CSV writing with headers, streaming and an optional UTF-8 BOM
// for Excel compatibility. Relative paths resolve into the configured output
// or reports directory.
//
// XLSX encoding: cleaned tables as a single worksheet with a bold header row,
// written through excelize's stream writer.
//
// Formats: the output formats the CLI and HTTP service accept, with their
// file extensions and content types.
//
// Example usage:
//
//	writer := exporter.NewCSVWriter(paths)
//	if err := writer.WriteFrame("lfs_cleaned.csv", result.Frame, true); err != nil {
//	    return err
//	}
//
//	err := exporter.WriteFrameXLSX(paths.CleanedXLSX, result.Frame, exporter.DefaultSheet)
package exporter
