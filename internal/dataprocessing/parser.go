package dataprocessing

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"

	"lfsclean/internal/errors"
)

// Supported extract formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// missingValues are the cell texts loaded as missing
var missingValues = []string{"", "NA", "NaN", "nan", "<nil>"}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// FormatOf returns the extract format implied by a file name
func FormatOf(name string) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%s: %w", filepath.Base(name), errors.ErrUnsupportedFormat)
}

// ParseFile loads a CSV or Excel extract. sheet selects the worksheet of an
// Excel file; empty means the first sheet.
func ParseFile(path, sheet string) (dataframe.DataFrame, error) {
	format, err := FormatOf(path)
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, errors.NewStorageError("open extract", err).WithContext("path", path)
	}
	defer f.Close()

	slog.Debug("parsing extract", slog.String("path", path), slog.String("format", format))
	return ParseReader(f, format, sheet)
}

// ParseReader loads an extract of the given format from r
func ParseReader(r io.Reader, format, sheet string) (dataframe.DataFrame, error) {
	var (
		records [][]string
		err     error
	)

	switch format {
	case FormatCSV:
		records, err = readCSV(r)
	case FormatXLSX:
		records, err = readXLSX(r, sheet)
	default:
		return dataframe.DataFrame{}, fmt.Errorf("format %q: %w", format, errors.ErrUnsupportedFormat)
	}
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	return FromRecords(records)
}

// FromRecords builds a text-typed frame from a header row followed by data
// rows. Short rows are padded with missing cells.
func FromRecords(records [][]string) (dataframe.DataFrame, error) {
	if len(records) < 2 || len(records[0]) == 0 {
		return dataframe.DataFrame{}, errors.NewParsingError("load extract", errors.ErrEmptyDataset)
	}

	header := make([]string, len(records[0]))
	for i, name := range records[0] {
		header[i] = strings.TrimSpace(name)
	}
	header[0] = strings.TrimPrefix(header[0], string(utf8BOM))

	rows := make([][]string, 0, len(records))
	rows = append(rows, header)
	for i, rec := range records[1:] {
		if len(rec) > len(header) {
			return dataframe.DataFrame{}, errors.NewParsingError(
				fmt.Sprintf("row %d has %d fields, header has %d", i+2, len(rec), len(header)), nil)
		}
		if len(rec) < len(header) {
			padded := make([]string, len(header))
			copy(padded, rec)
			rec = padded
		}
		rows = append(rows, rec)
	}

	df := dataframe.LoadRecords(rows,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(missingValues),
	)
	if df.Err != nil {
		return df, errors.NewParsingError("load extract", df.Err)
	}
	return df, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.NewParsingError("read csv", err)
	}
	return records, nil
}

func readXLSX(r io.Reader, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.NewParsingError("open workbook", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.NewParsingError("workbook has no sheets", errors.ErrEmptyDataset)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.NewParsingError(fmt.Sprintf("read sheet %q", sheet), err)
	}

	// Trailing blank rows come back as empty slices.
	for len(rows) > 0 && isBlankRow(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	return rows, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
