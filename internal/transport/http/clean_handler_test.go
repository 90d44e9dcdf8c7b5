package http

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"lfsclean/internal/config"
	"lfsclean/internal/dataprocessing"
	apierrors "lfsclean/internal/errors"
	"lfsclean/internal/exporter"
	"lfsclean/internal/services"
	"lfsclean/internal/shared/testutil"
	"lfsclean/pkg/contracts/domain"
)

type mockCleaningService struct {
	mock.Mock
}

func (m *mockCleaningService) CleanReader(ctx context.Context, r io.Reader, format, sheet, source string, opts domain.CleaningOptions) (*dataprocessing.Result, error) {
	args := m.Called(format, sheet, source, opts)
	if res := args.Get(0); res != nil {
		return res.(*dataprocessing.Result), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCleaningService) Encode(w io.Writer, result *dataprocessing.Result, format exporter.Format, sheet string, bom bool) error {
	args := m.Called(format, bom)
	if err := args.Error(0); err != nil {
		return err
	}
	_, err := io.WriteString(w, "encoded")
	return err
}

func (m *mockCleaningService) Summarize(ctx context.Context, result *dataprocessing.Result) (*dataprocessing.CohortSummary, error) {
	args := m.Called(result)
	if s := args.Get(0); s != nil {
		return s.(*dataprocessing.CohortSummary), args.Error(1)
	}
	return nil, args.Error(1)
}

func testResult() *dataprocessing.Result {
	report := domain.NewDropReport(3)
	report.RowsOut = 1
	return &dataprocessing.Result{
		Frame:  dataframe.LoadRecords([][]string{{domain.ColumnDate}, {"2023-03"}}),
		Report: report,
	}
}

func newCleanHandler(t *testing.T, svc CleaningServiceInterface) *CleanHandler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	return NewCleanHandler(svc, config.Default().Cleaning, logger, apierrors.NewErrorHandler(logger, false))
}

func surveyCSV(t *testing.T, rows ...testutil.SurveyRow) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, csv.NewWriter(&buf).WriteAll(testutil.SurveyRecords(rows...)))
	return buf.Bytes()
}

func multipartBody(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(uploadField, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func problemStatus(t *testing.T, rec *httptest.ResponseRecorder) int {
	t.Helper()
	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	status, ok := problem["status"].(float64)
	require.True(t, ok, "problem body has no status: %s", rec.Body.String())
	return int(status)
}

func TestCleanHandler_Clean(t *testing.T) {
	defaults := config.Default().Cleaning.Options()

	tests := []struct {
		name        string
		query       string
		contentType string
		wantFormat  string
		wantSource  string
		wantOpts    domain.CleaningOptions
		wantOut     exporter.Format
		wantCT      string
	}{
		{
			name:        "raw csv body with defaults",
			contentType: "text/csv",
			wantFormat:  dataprocessing.FormatCSV,
			wantSource:  "body.csv",
			wantOpts:    defaults,
			wantOut:     exporter.FormatCSV,
			wantCT:      "text/csv; charset=utf-8",
		},
		{
			name:       "no content type is read as csv",
			wantFormat: dataprocessing.FormatCSV,
			wantSource: "body.csv",
			wantOpts:   defaults,
			wantOut:    exporter.FormatCSV,
			wantCT:     "text/csv; charset=utf-8",
		},
		{
			name:        "xlsx body with overrides",
			query:       "?unemployed_only=false&classification=true&format=xlsx&sheet=March",
			contentType: xlsxMediaType,
			wantFormat:  dataprocessing.FormatXLSX,
			wantSource:  "body.xlsx",
			wantOpts:    domain.CleaningOptions{UnemployedOnly: false, ClassificationMode: true},
			wantOut:     exporter.FormatXLSX,
			wantCT:      xlsxMediaType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockCleaningService)
			sheet := ""
			if tt.wantOut == exporter.FormatXLSX {
				sheet = "March"
			}
			svc.On("CleanReader", tt.wantFormat, sheet, tt.wantSource, tt.wantOpts).Return(testResult(), nil)
			svc.On("Encode", tt.wantOut, true).Return(nil)

			req := httptest.NewRequest(http.MethodPost, "/"+tt.query, strings.NewReader("ignored"))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()

			newCleanHandler(t, svc).Routes().ServeHTTP(rec, req)

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, "encoded", rec.Body.String())
			assert.Equal(t, tt.wantCT, rec.Header().Get("Content-Type"))
			assert.Equal(t, "3", rec.Header().Get(HeaderRowsIn))
			assert.Equal(t, "1", rec.Header().Get(HeaderRowsOut))
			assert.Contains(t, rec.Header().Get("Content-Disposition"), "lfs_cleaned"+tt.wantOut.Extension())
			svc.AssertExpectations(t)
		})
	}
}

func TestCleanHandler_Multipart(t *testing.T) {
	svc := new(mockCleaningService)
	svc.On("CleanReader", dataprocessing.FormatCSV, "", "march.csv", config.Default().Cleaning.Options()).
		Return(testResult(), nil)
	svc.On("Encode", exporter.FormatJSON, true).Return(nil)

	body, ct := multipartBody(t, "march.csv", []byte("a,b\n1,2\n"))
	req := httptest.NewRequest(http.MethodPost, "/?format=json", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()

	newCleanHandler(t, svc).Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Empty(t, rec.Header().Get("Content-Disposition"))
	svc.AssertExpectations(t)
}

func TestCleanHandler_Errors(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		contentType string
		body        func(t *testing.T) (io.Reader, string)
		setup       func(svc *mockCleaningService)
		wantStatus  int
		wantCode    string
	}{
		{
			name:        "invalid query parameter",
			query:       "?format=xml",
			contentType: "text/csv",
			wantStatus:  http.StatusBadRequest,
		},
		{
			name:        "unsupported content type",
			contentType: "application/pdf",
			wantStatus:  http.StatusUnsupportedMediaType,
			wantCode:    "UNSUPPORTED_MEDIA_TYPE",
		},
		{
			name:        "malformed content type",
			contentType: "text/csv; =broken",
			wantStatus:  http.StatusBadRequest,
		},
		{
			name: "multipart without file field",
			body: func(t *testing.T) (io.Reader, string) {
				var buf bytes.Buffer
				mw := multipart.NewWriter(&buf)
				require.NoError(t, mw.WriteField("note", "no file"))
				require.NoError(t, mw.Close())
				return &buf, mw.FormDataContentType()
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "multipart with unsupported file",
			body: func(t *testing.T) (io.Reader, string) {
				return multipartBody(t, "march.pdf", []byte("%PDF"))
			},
			wantStatus: http.StatusUnsupportedMediaType,
		},
		{
			name:        "missing columns",
			contentType: "text/csv",
			setup: func(svc *mockCleaningService) {
				svc.On("CleanReader", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(nil, apierrors.NewMissingColumnsError([]string{"LFSSTAT"}))
			},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:        "oversized body",
			contentType: "text/csv",
			setup: func(svc *mockCleaningService) {
				svc.On("CleanReader", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(nil, &http.MaxBytesError{Limit: 10})
			},
			wantStatus: http.StatusRequestEntityTooLarge,
		},
		{
			name:        "encoding failure",
			contentType: "text/csv",
			setup: func(svc *mockCleaningService) {
				svc.On("CleanReader", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(testResult(), nil)
				svc.On("Encode", exporter.FormatCSV, true).Return(assert.AnError)
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockCleaningService)
			if tt.setup != nil {
				tt.setup(svc)
			}

			var body io.Reader = strings.NewReader("x")
			contentType := tt.contentType
			if tt.body != nil {
				body, contentType = tt.body(t)
			}
			req := httptest.NewRequest(http.MethodPost, "/"+tt.query, body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()

			newCleanHandler(t, svc).Routes().ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantStatus, problemStatus(t, rec))
			if tt.wantCode != "" {
				assert.Contains(t, rec.Body.String(), `"error_code":"`+tt.wantCode+`"`)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestCleanHandler_Report(t *testing.T) {
	result := testResult()
	summary := &dataprocessing.CohortSummary{Rows: 1, FirstMonth: "2023-03", LastMonth: "2023-03", Report: result.Report}

	svc := new(mockCleaningService)
	svc.On("CleanReader", dataprocessing.FormatCSV, "", "body.csv", config.Default().Cleaning.Options()).Return(result, nil)
	svc.On("Summarize", result).Return(summary, nil)

	req := httptest.NewRequest(http.MethodPost, "/report", strings.NewReader("x"))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()

	newCleanHandler(t, svc).Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp ReportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "body.csv", resp.Source)
	assert.True(t, resp.Options.UnemployedOnly)
	require.NotNil(t, resp.Summary)
	assert.Equal(t, 1, resp.Summary.Rows)
	assert.Equal(t, 3, resp.Summary.Report.RowsIn)
	svc.AssertExpectations(t)
}

func TestCleanHandler_WithCleaningService(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	svc := services.NewCleaningService(config.Default().Cleaning, nil, nil, logger)
	handler := newCleanHandler(t, svc)

	student := testutil.WorkedExampleRow().With(domain.SourceStudentStatus, "2")
	content := surveyCSV(t, testutil.WorkedExampleRow(), student)

	t.Run("csv", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(content))
		req.Header.Set("Content-Type", "text/csv")
		rec := httptest.NewRecorder()

		handler.Routes().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "2", rec.Header().Get(HeaderRowsIn))
		assert.Equal(t, "1", rec.Header().Get(HeaderRowsOut))

		records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(rec.Body.Bytes(), []byte("\xef\xbb\xbf")))).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, domain.ColumnDate, records[0][0])
		assert.Equal(t, "2023-03", records[1][0])
	})

	t.Run("json", func(t *testing.T) {
		body, ct := multipartBody(t, "march.csv", content)
		req := httptest.NewRequest(http.MethodPost, "/?format=json", body)
		req.Header.Set("Content-Type", ct)
		rec := httptest.NewRecorder()

		handler.Routes().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var table services.CleanedTable
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &table))
		assert.Len(t, table.Records, 1)
		require.NotNil(t, table.Report)
		assert.Equal(t, 1, table.Report.DroppedByStep[domain.StepStudents])
	})
}
