package exporter

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"lfsclean/pkg/contracts/domain"
)

func TestEncodeFrameXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeFrameXLSX(&buf, cleanedFrame(), ""))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{DefaultSheet}, f.GetSheetList())

	rows, err := f.GetRows(DefaultSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{domain.ColumnDate, domain.ColumnProvince, domain.ColumnDuration},
		{"2023-03", "Ontario", "5"},
		{"2023-04", "Quebec", "2.5"},
	}, rows)

	cellType, err := f.GetCellType(DefaultSheet, "C2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, cellType)
	assert.NotEqual(t, excelize.CellTypeInlineString, cellType)
}

func TestWriteFrameXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "cleaned.xlsx")

	require.NoError(t, WriteFrameXLSX(path, cleanedFrame(), "Cohort"))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Cohort")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}
