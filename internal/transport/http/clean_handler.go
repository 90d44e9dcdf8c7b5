package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"lfsclean/internal/config"
	"lfsclean/internal/dataprocessing"
	apierrors "lfsclean/internal/errors"
	"lfsclean/internal/exporter"
	"lfsclean/internal/infrastructure"
	"lfsclean/internal/validation"
	"lfsclean/pkg/contracts/domain"
)

// Response headers carrying the row accounting of a cleaned table
const (
	HeaderRowsIn  = "X-Rows-In"
	HeaderRowsOut = "X-Rows-Out"
)

// uploadField is the multipart form field holding the extract
const uploadField = "file"

// multipartMemory is the part of a multipart upload kept in memory; the
// rest spills to temporary files.
const multipartMemory = 32 << 20

const xlsxMediaType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// CleanHandler serves the cleaning endpoints
type CleanHandler struct {
	service      CleaningServiceInterface
	cleaning     config.CleaningConfig
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// ReportResponse is the body of POST /api/v1/clean/report
type ReportResponse struct {
	Source  string                        `json:"source"`
	Options domain.CleaningOptions        `json:"options"`
	Summary *dataprocessing.CohortSummary `json:"summary"`
}

// NewCleanHandler creates a clean handler. cleaning supplies the defaults
// for absent query parameters.
func NewCleanHandler(service CleaningServiceInterface, cleaning config.CleaningConfig, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *CleanHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CleanHandler{
		service:      service,
		cleaning:     cleaning,
		logger:       infrastructure.WithComponent(logger, "clean_handler"),
		errorHandler: errorHandler,
	}
}

// Routes returns the clean routes
func (h *CleanHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Clean)
	r.Post("/report", h.Report)
	return r
}

// Clean handles POST /api/v1/clean
func (h *CleanHandler) Clean(w http.ResponseWriter, r *http.Request) {
	params, err := validation.ParseCleanParams(r.URL.Query(), h.cleaning.Options(), h.cleaning.OutputFormat)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, source, err := h.clean(r, params)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	format, err := exporter.ParseFormat(params.Format)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	// encode fully before writing so failures still produce a problem response
	var body bytes.Buffer
	if err := h.service.Encode(&body, result, format, "", h.cleaning.BOM); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set(HeaderRowsIn, strconv.Itoa(result.Report.RowsIn))
	w.Header().Set(HeaderRowsOut, strconv.Itoa(result.Report.RowsOut))
	if format != exporter.FormatJSON {
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", "lfs_cleaned"+format.Extension()))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body.Bytes()); err != nil {
		h.logger.WarnContext(r.Context(), "failed to write response", slog.String("error", err.Error()))
	}

	h.logger.InfoContext(r.Context(), "extract cleaned",
		slog.String("source", source),
		slog.String("format", string(format)),
		slog.Int("rows_in", result.Report.RowsIn),
		slog.Int("rows_out", result.Report.RowsOut))
}

// Report handles POST /api/v1/clean/report
func (h *CleanHandler) Report(w http.ResponseWriter, r *http.Request) {
	params, err := validation.ParseCleanParams(r.URL.Query(), h.cleaning.Options(), h.cleaning.OutputFormat)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, source, err := h.clean(r, params)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	summary, err := h.service.Summarize(r.Context(), result)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, ReportResponse{
		Source:  source,
		Options: params.Options,
		Summary: summary,
	})
}

// clean reads the uploaded extract and runs it through the service
func (h *CleanHandler) clean(r *http.Request, params validation.CleanParams) (*dataprocessing.Result, string, error) {
	body, format, source, closer, err := readUpload(r)
	if err != nil {
		return nil, "", uploadError(err)
	}
	if closer != nil {
		defer closer.Close()
	}

	result, err := h.service.CleanReader(r.Context(), body, format, params.Sheet, source, params.Options)
	if err != nil {
		return nil, source, uploadError(err)
	}
	return result, source, nil
}

// readUpload returns the extract carried by r: the multipart "file" field,
// or the raw body typed by Content-Type.
func readUpload(r *http.Request) (io.Reader, string, string, io.Closer, error) {
	mediaType := ""
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return nil, "", "", nil, apierrors.InvalidRequestWithError(err)
		}
		mediaType = mt
	}

	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return nil, "", "", nil, err
		}
		file, header, err := r.FormFile(uploadField)
		if err != nil {
			return nil, "", "", nil, apierrors.ErrValidation(uploadField, "multipart field 'file' is required")
		}
		format, err := dataprocessing.FormatOf(header.Filename)
		if err != nil {
			file.Close()
			return nil, "", "", nil, err
		}
		return file, format, header.Filename, file, nil
	case "", "text/csv", "application/csv", "text/plain":
		return r.Body, dataprocessing.FormatCSV, "body.csv", nil, nil
	case xlsxMediaType:
		return r.Body, dataprocessing.FormatXLSX, "body.xlsx", nil, nil
	}
	return nil, "", "", nil, apierrors.ErrUnsupportedMedia
}

// uploadError maps an oversized body to 413, leaving other errors as they are
func uploadError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apierrors.ErrPayloadTooLarge
	}
	return err
}
