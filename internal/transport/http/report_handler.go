// Package http contains the HTTP handlers for the report API.
package http

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/render"

	"clinicpulse/internal/config"
	"clinicpulse/internal/dataprocessing"
	"clinicpulse/internal/errors"
	"clinicpulse/internal/report"
	"clinicpulse/internal/services"
)

// uploadField is the multipart form field carrying the spreadsheet.
const uploadField = "file"

// ReportHandler handles spreadsheet uploads and report generation.
type ReportHandler struct {
	service      ReportGenerator
	cfg          config.ReportConfig
	errorHandler *errors.ErrorHandler
	logger       *slog.Logger
}

// NewReportHandler creates a report handler.
func NewReportHandler(service ReportGenerator, cfg config.ReportConfig, errorHandler *errors.ErrorHandler, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		service:      service,
		cfg:          cfg,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("component", "report_handler")),
	}
}

// ReportResponse is the envelope for a successful report build.
type ReportResponse struct {
	Success bool                   `json:"success"`
	Report  *services.ReportResult `json:"report"`
}

// Render implements render.Renderer.
func (rr *ReportResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, http.StatusOK)
	return nil
}

// GenerateReport handles POST /api/reports. It accepts a multipart
// spreadsheet upload and responds with the composed figure and the
// normalized table as JSON.
func (h *ReportHandler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	file, err := h.openUpload(w, r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	defer file.Close()

	result, err := h.service.Generate(r.Context(), file)
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapPipelineError(err))
		return
	}

	resp := &ReportResponse{Success: true, Report: result}
	if err := render.Render(w, r, resp); err != nil {
		h.errorHandler.HandleError(w, r, err)
	}
}

// GenerateReportPDF handles POST /api/reports/pdf. The same upload goes
// through the pipeline and comes back as a PDF attachment.
func (h *ReportHandler) GenerateReportPDF(w http.ResponseWriter, r *http.Request) {
	file, err := h.openUpload(w, r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	defer file.Close()

	pdf, err := h.service.GeneratePDF(r.Context(), file)
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapPipelineError(err))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", h.cfg.DownloadName))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to write PDF response",
			slog.String("error", err.Error()))
	}
}

// openUpload extracts and validates the uploaded spreadsheet. The body
// is capped before parsing so an oversized upload fails fast.
func (h *ReportHandler) openUpload(w http.ResponseWriter, r *http.Request) (multipart.File, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)

	if err := r.ParseMultipartForm(h.cfg.MaxUploadBytes); err != nil {
		var maxBytesErr *http.MaxBytesError
		if stderrors.As(err, &maxBytesErr) {
			return nil, errors.ErrUploadTooLarge(h.cfg.MaxUploadBytes)
		}
		return nil, errors.ErrInvalidUpload("request is not a valid multipart upload")
	}

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		return nil, errors.ErrInvalidUpload(fmt.Sprintf("missing form field %q", uploadField))
	}

	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != ".xlsx" {
		file.Close()
		return nil, errors.ErrInvalidUpload(fmt.Sprintf("unsupported file type %q, expected .xlsx", ext))
	}

	h.logger.InfoContext(r.Context(), "spreadsheet uploaded",
		slog.String("filename", header.Filename),
		slog.Int64("size", header.Size))

	return file, nil
}

// mapPipelineError translates pipeline failures into API errors. Errors
// already carrying an API shape pass through untouched.
func (h *ReportHandler) mapPipelineError(err error) error {
	var apiErr *errors.APIError
	if stderrors.As(err, &apiErr) {
		return err
	}

	switch {
	case stderrors.Is(err, dataprocessing.ErrMissingColumn):
		return errors.ErrMissingColumn(err)
	case stderrors.Is(err, report.ErrEmptyTable):
		return errors.ErrEmptyReport(err)
	case stderrors.Is(err, dataprocessing.ErrBadShape),
		stderrors.Is(err, dataprocessing.ErrNotDate),
		stderrors.Is(err, dataprocessing.ErrNotNumeric):
		return errors.ErrParseFailed(err)
	}

	if strings.HasPrefix(err.Error(), "parse: ") {
		return errors.ErrParseFailed(err)
	}
	if strings.HasPrefix(err.Error(), "render: ") {
		return errors.ErrRenderFailed(err)
	}
	return err
}
