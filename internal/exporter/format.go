package exporter

import (
	"fmt"
	"strings"

	"lfsclean/internal/errors"
)

// Format is an output format for cleaned tables
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

// ParseFormat parses a format name, case-insensitively
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatCSV, FormatXLSX, FormatJSON:
		return f, nil
	case "":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("output format %q: %w", name, errors.ErrUnsupportedFormat)
}

// ContentType returns the media type of the format
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatJSON:
		return "application/json"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Extension returns the file extension of the format, with the dot
func (f Format) Extension() string {
	return "." + string(f)
}
