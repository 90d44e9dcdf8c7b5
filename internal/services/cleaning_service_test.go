package services

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"lfsclean/internal/config"
	"lfsclean/internal/dataprocessing"
	"lfsclean/internal/errors"
	"lfsclean/internal/exporter"
	"lfsclean/internal/files"
	"lfsclean/internal/shared/testutil"
	"lfsclean/pkg/contracts/domain"
)

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) RecordTransform(ctx context.Context, report *domain.DropReport, elapsed time.Duration) {
	m.Called(report.RowsIn, report.RowsOut)
}

func (m *mockRecorder) RecordFile(ctx context.Context, err error) {
	m.Called(err == nil)
}

func newTestService(t *testing.T, workers int, metrics PipelineRecorder) *CleaningService {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	cfg := config.Default().Cleaning
	cfg.Workers = workers
	return NewCleaningService(cfg, files.NewDiscovery(""), metrics, logger)
}

func monthRow(month string) testutil.SurveyRow {
	return testutil.WorkedExampleRow().With(domain.SourceMonth, month)
}

func dates(t *testing.T, result *dataprocessing.Result) []string {
	t.Helper()
	return result.Frame.Col(domain.ColumnDate).Records()
}

func TestCleaningService_CleanFile(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteSurveyCSV(t, dir, "pub0323.csv",
		testutil.WorkedExampleRow(),
		testutil.WorkedExampleRow().With(domain.SourceStudentStatus, "2"),
	)

	rec := &mockRecorder{}
	rec.On("RecordTransform", 2, 1).Once()
	rec.On("RecordFile", true).Once()

	result, err := newTestService(t, 1, rec).CleanFile(context.Background(), path, domain.DefaultCleaningOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"2023-03"}, dates(t, result))
	assert.Equal(t, 1, result.Report.DroppedByStep[domain.StepStudents])
	rec.AssertExpectations(t)
}

func TestCleaningService_CleanFile_Failures(t *testing.T) {
	dir := t.TempDir()
	noColumn := filepath.Join(dir, "pub0123.csv")
	require.NoError(t, os.WriteFile(noColumn, []byte("SURVYEAR,SURVMNTH\n2023,3\n"), 0644))

	notes := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("x"), 0644))

	tests := []struct {
		name  string
		path  string
		check func(t *testing.T, err error)
	}{
		{name: "missing column", path: noColumn, check: func(t *testing.T, err error) {
			assert.Equal(t, errors.ErrTypeSchema, errors.TypeOf(err))
			assert.True(t, stderrors.Is(err, errors.ErrMissingColumns))
		}},
		{name: "unsupported", path: notes, check: func(t *testing.T, err error) {
			assert.True(t, stderrors.Is(err, errors.ErrUnsupportedFormat))
		}},
		{name: "missing file", path: filepath.Join(dir, "pub0223.csv"), check: func(t *testing.T, err error) {
			assert.Equal(t, errors.ErrTypeNotFound, errors.TypeOf(err))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &mockRecorder{}
			rec.On("RecordFile", false).Once()

			_, err := newTestService(t, 1, rec).CleanFile(context.Background(), tt.path, domain.DefaultCleaningOptions())
			require.Error(t, err)
			tt.check(t, err)
			rec.AssertExpectations(t)
		})
	}
}

func TestCleaningService_CleanDirectory(t *testing.T) {
	dir := t.TempDir()
	// written out of order to show results follow file names
	testutil.WriteSurveyCSV(t, dir, "pub0323.csv",
		testutil.WorkedExampleRow().With(domain.SourceLabourForceStatus, "4"))
	testutil.WriteSurveyCSV(t, dir, "pub0223.csv", monthRow("2"))
	testutil.WriteSurveyCSV(t, dir, "pub0123.csv",
		monthRow("1"),
		monthRow("1").With(domain.SourceStudentStatus, "2"),
	)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), []byte("ignored"), 0644))

	for _, workers := range []int{1, 3} {
		rec := &mockRecorder{}
		rec.On("RecordTransform", mock.Anything, mock.Anything).Times(3)
		rec.On("RecordFile", true).Times(3)

		result, err := newTestService(t, workers, rec).CleanDirectory(context.Background(), dir, domain.DefaultCleaningOptions())
		require.NoError(t, err)

		assert.Equal(t, []string{"2023-01", "2023-02"}, dates(t, result))
		assert.Equal(t, 4, result.Report.RowsIn)
		assert.Equal(t, 2, result.Report.RowsOut)
		assert.Equal(t, 1, result.Report.DroppedByStep[domain.StepStudents])
		assert.Equal(t, 1, result.Report.DroppedByStep[domain.StepNotInLabourForce])
		assert.Equal(t, result.Report.RowsIn-result.Report.RowsOut, result.Report.TotalDropped())
		rec.AssertExpectations(t)
	}
}

func TestCleaningService_CleanDirectory_AllEmpty(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteSurveyCSV(t, dir, "pub0123.csv",
		testutil.WorkedExampleRow().With(domain.SourceStudentStatus, "2"))
	testutil.WriteSurveyCSV(t, dir, "pub0223.csv",
		testutil.WorkedExampleRow().With(domain.SourceLabourForceStatus, "4"))

	result, err := newTestService(t, 2, nil).CleanDirectory(context.Background(), dir, domain.DefaultCleaningOptions())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Len())
	assert.Equal(t, domain.ColumnDate, result.Columns()[0])
	assert.Equal(t, 2, result.Report.RowsIn)
}

func TestCleaningService_CleanDirectory_Errors(t *testing.T) {
	t.Run("no extracts", func(t *testing.T) {
		_, err := newTestService(t, 2, nil).CleanDirectory(context.Background(), t.TempDir(), domain.DefaultCleaningOptions())
		require.Error(t, err)
		assert.True(t, stderrors.Is(err, ErrNoExtractsFound))
		assert.Equal(t, errors.ErrTypeNotFound, errors.TypeOf(err))
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := newTestService(t, 2, nil).CleanDirectory(context.Background(),
			filepath.Join(t.TempDir(), "nope"), domain.DefaultCleaningOptions())
		assert.Equal(t, errors.ErrTypeNotFound, errors.TypeOf(err))
	})

	t.Run("one bad file fails the batch", func(t *testing.T) {
		dir := t.TempDir()
		testutil.WriteSurveyCSV(t, dir, "pub0123.csv", monthRow("1"))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "pub0223.csv"), []byte("SURVYEAR\n"), 0644))

		_, err := newTestService(t, 2, nil).CleanDirectory(context.Background(), dir, domain.DefaultCleaningOptions())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "pub0223.csv")
		assert.True(t, stderrors.Is(err, errors.ErrEmptyDataset))
	})

	t.Run("cancelled", func(t *testing.T) {
		dir := t.TempDir()
		testutil.WriteSurveyCSV(t, dir, "pub0123.csv", monthRow("1"))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := newTestService(t, 1, nil).CleanDirectory(ctx, dir, domain.DefaultCleaningOptions())
		assert.True(t, stderrors.Is(err, context.Canceled))
	})
}

func TestCleaningService_Clean(t *testing.T) {
	dir := t.TempDir()
	single := testutil.WriteSurveyCSV(t, dir, "pub0123.csv", monthRow("1"))
	testutil.WriteSurveyCSV(t, dir, "pub0223.csv", monthRow("2"))

	svc := newTestService(t, 2, nil)

	fromFile, err := svc.Clean(context.Background(), single, domain.DefaultCleaningOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"2023-01"}, dates(t, fromFile))

	fromDir, err := svc.Clean(context.Background(), dir, domain.DefaultCleaningOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"2023-01", "2023-02"}, dates(t, fromDir))

	_, err = svc.Clean(context.Background(), filepath.Join(dir, "missing.csv"), domain.DefaultCleaningOptions())
	assert.Equal(t, errors.ErrTypeNotFound, errors.TypeOf(err))
}

func TestCleaningService_CleanReader(t *testing.T) {
	var buf bytes.Buffer
	for _, rec := range testutil.SurveyRecords(testutil.WorkedExampleRow()) {
		buf.WriteString(strings.Join(rec, ",") + "\n")
	}

	result, err := newTestService(t, 1, nil).CleanReader(context.Background(), &buf,
		dataprocessing.FormatCSV, "", "upload.csv",
		domain.CleaningOptions{UnemployedOnly: true, ClassificationMode: true})
	require.NoError(t, err)
	assert.NotContains(t, result.Columns(), domain.ColumnDuration)
	assert.Equal(t, 1, result.Len())
}

func TestCleaningService_Encode(t *testing.T) {
	svc := newTestService(t, 1, nil)
	path := testutil.WriteSurveyCSV(t, t.TempDir(), "pub0323.csv", testutil.WorkedExampleRow())
	result, err := svc.CleanFile(context.Background(), path, domain.DefaultCleaningOptions())
	require.NoError(t, err)

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, svc.Encode(&buf, result, exporter.FormatJSON, "", false))

		var table CleanedTable
		require.NoError(t, json.Unmarshal(buf.Bytes(), &table))
		require.Len(t, table.Records, 1)
		assert.Equal(t, "Ontario", table.Records[0].Province)
		require.NotNil(t, table.Records[0].DurationMonths)
		assert.Equal(t, 5.0, *table.Records[0].DurationMonths)
		assert.Equal(t, 1, table.Report.RowsOut)
		assert.Equal(t, result.Columns(), table.Columns)
	})

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, svc.Encode(&buf, result, exporter.FormatCSV, "", false))
		assert.True(t, strings.HasPrefix(buf.String(), "Date,Province,"))
	})

	t.Run("xlsx", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, svc.Encode(&buf, result, exporter.FormatXLSX, "", false))

		f, err := excelize.OpenReader(&buf)
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, []string{exporter.DefaultSheet}, f.GetSheetList())
	})

	t.Run("unknown", func(t *testing.T) {
		err := svc.Encode(&bytes.Buffer{}, result, exporter.Format("parquet"), "", false)
		assert.True(t, stderrors.Is(err, errors.ErrUnsupportedFormat))
	})
}

func TestCleaningService_ExportAndReports(t *testing.T) {
	svc := newTestService(t, 1, nil)
	in := testutil.WriteSurveyCSV(t, t.TempDir(), "pub0323.csv", testutil.WorkedExampleRow())
	result, err := svc.CleanFile(context.Background(), in, domain.DefaultCleaningOptions())
	require.NoError(t, err)

	out := t.TempDir()
	csvPath := filepath.Join(out, "cleaned", "lfs_cleaned.csv")
	require.NoError(t, svc.Export(context.Background(), result, ExportRequest{
		Path: csvPath, Format: exporter.FormatCSV, BOM: true,
	}))
	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}))

	summary, err := svc.Summarize(context.Background(), result)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Rows)

	for _, name := range []string{"summary.json", "summary.csv"} {
		p := filepath.Join(out, name)
		require.NoError(t, svc.WriteSummary(context.Background(), p, summary))
		assert.FileExists(t, p)
	}

	reportPath := filepath.Join(out, "reports", "drop.json")
	require.NoError(t, svc.WriteDropReport(reportPath, result.Report))
	raw, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var report domain.DropReport
	require.NoError(t, json.Unmarshal(raw, &report))
	assert.Equal(t, *result.Report, report)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, svc.Export(ctx, result, ExportRequest{Path: csvPath, Format: exporter.FormatCSV}))
}
