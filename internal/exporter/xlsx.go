package exporter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
)

// DefaultSheet names the worksheet of exported workbooks
const DefaultSheet = "LFS"

const columnWidth = 24

// EncodeFrameXLSX writes a cleaned table as a single-sheet workbook to out.
// Integer columns are written as numbers, everything else as text.
func EncodeFrameXLSX(out io.Writer, df dataframe.DataFrame, sheet string) error {
	f, err := buildWorkbook(df, sheet)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// WriteFrameXLSX saves a cleaned table as a workbook at path
func WriteFrameXLSX(path string, df dataframe.DataFrame, sheet string) error {
	f, err := buildWorkbook(df, sheet)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func buildWorkbook(df dataframe.DataFrame, sheet string) (*excelize.File, error) {
	if df.Err != nil {
		return nil, fmt.Errorf("frame: %w", df.Err)
	}
	if sheet == "" {
		sheet = DefaultSheet
	}

	f := excelize.NewFile()
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to name sheet: %w", err)
		}
	}

	if err := streamFrame(f, sheet, df); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func streamFrame(f *excelize.File, sheet string, df dataframe.DataFrame) error {
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	names := df.Names()
	if len(names) > 0 {
		if err := sw.SetColWidth(1, len(names), columnWidth); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	header := make([]interface{}, len(names))
	cols := make([]series.Series, len(names))
	for j, name := range names {
		header[j] = excelize.Cell{StyleID: bold, Value: name}
		cols[j] = df.Col(name)
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	for i := 0; i < df.Nrow(); i++ {
		row := make([]interface{}, len(cols))
		for j, col := range cols {
			row[j] = cellValue(col, i)
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	return nil
}

func cellValue(col series.Series, i int) interface{} {
	el := col.Elem(i)
	if el.IsNA() {
		return nil
	}
	switch col.Type() {
	case series.Int:
		if n, err := el.Int(); err == nil {
			return n
		}
	case series.Float:
		return el.Float()
	}
	return el.String()
}
