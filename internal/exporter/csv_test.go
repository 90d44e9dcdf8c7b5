package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lfsclean/internal/config"
	"lfsclean/pkg/contracts/domain"
)

func setupTestEnv(t *testing.T) (*CSVWriter, *config.Paths) {
	t.Helper()

	cfg := config.Default().Paths
	cfg.BaseDir = t.TempDir()
	paths, err := config.NewPaths(cfg)
	require.NoError(t, err)

	return NewCSVWriter(paths), paths
}

func cleanedFrame() dataframe.DataFrame {
	return dataframe.New(
		series.New([]string{"2023-03", "2023-04"}, series.String, domain.ColumnDate),
		series.New([]string{"Ontario", "Quebec"}, series.String, domain.ColumnProvince),
		series.New([]float64{5, 2.5}, series.Float, domain.ColumnDuration),
	)
}

func readCSVFile(t *testing.T, path string) ([]byte, [][]string) {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM))).ReadAll()
	require.NoError(t, err)
	return data, rows
}

func TestCSVWriter_WriteFrame(t *testing.T) {
	writer, paths := setupTestEnv(t)

	tests := []struct {
		name    string
		bom     bool
		wantBOM bool
	}{
		{"with BOM", true, true},
		{"without BOM", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, writer.WriteFrame(config.CleanedCSVName, cleanedFrame(), tt.bom))

			data, rows := readCSVFile(t, paths.CleanedCSV)
			assert.Equal(t, tt.wantBOM, bytes.HasPrefix(data, utf8BOM))
			assert.Equal(t, [][]string{
				{domain.ColumnDate, domain.ColumnProvince, domain.ColumnDuration},
				{"2023-03", "Ontario", "5"},
				{"2023-04", "Quebec", "2.5"},
			}, rows)
		})
	}
}

func TestEncodeFrameCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeFrameCSV(&buf, cleanedFrame(), false))

	assert.Equal(t, "Date,Province,Duration of Joblessness (Months)\n2023-03,Ontario,5\n2023-04,Quebec,2.5\n", buf.String())

	buf.Reset()
	require.NoError(t, EncodeFrameCSV(&buf, cleanedFrame(), true))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), utf8BOM))

	broken := dataframe.DataFrame{Err: assert.AnError}
	assert.Error(t, EncodeFrameCSV(&buf, broken, false))
}

func TestCSVWriter_ResolvePath(t *testing.T) {
	writer, paths := setupTestEnv(t)
	abs := filepath.Join(t.TempDir(), "x.csv")

	tests := []struct {
		in   string
		want string
	}{
		{"cleaned.csv", filepath.Join(paths.OutputDir, "cleaned.csv")},
		{"reports/summary.csv", filepath.Join(paths.ReportsDir, "summary.csv")},
		{abs, abs},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, writer.resolvePath(tt.in))
		})
	}

	assert.Equal(t, "plain.csv", NewCSVWriter(nil).resolvePath("plain.csv"))
}

func TestCSVWriter_WriteCSV_Append(t *testing.T) {
	writer, paths := setupTestEnv(t)

	require.NoError(t, writer.WriteSimpleCSV("batch.csv", []string{"A", "B"}, [][]string{{"1", "2"}}))
	require.NoError(t, writer.WriteCSV("batch.csv", WriteOptions{
		Headers: []string{"ignored"},
		Records: [][]string{{"3", "4"}},
		Append:  true,
	}))

	data, rows := readCSVFile(t, paths.GetOutputPath("batch.csv"))
	assert.True(t, bytes.HasPrefix(data, utf8BOM))
	assert.Equal(t, [][]string{{"A", "B"}, {"1", "2"}, {"3", "4"}}, rows)
}

func TestCSVWriter_StreamWriter(t *testing.T) {
	writer, paths := setupTestEnv(t)

	stream, err := writer.CreateStreamWriter("stream.csv", []string{"Name", "Value"}, false)
	require.NoError(t, err)

	for _, rec := range [][]string{{"a", "1"}, {"b", "2"}} {
		require.NoError(t, stream.WriteRecord(rec))
	}
	require.NoError(t, stream.Close())

	_, rows := readCSVFile(t, paths.GetOutputPath("stream.csv"))
	assert.Equal(t, [][]string{{"Name", "Value"}, {"a", "1"}, {"b", "2"}}, rows)
}
