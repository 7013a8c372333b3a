package errors

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// APIError represents a structured API error response
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError represents a single field validation failure
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new APIError with the given parameters
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates a new APIError with additional details
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// Predefined error types for common scenarios
var (
	ErrInvalidRequest = New(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format")
	ErrNotFound       = New(http.StatusNotFound, "NOT_FOUND", "Resource not found")
	ErrInternalServer = New(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error")
)

// ErrValidation creates a validation error with field details
func ErrValidation(field, message string) *APIError {
	return NewWithDetails(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", ValidationError{
		Field:   field,
		Message: message,
	})
}

// ErrInvalidUpload creates an error for a rejected spreadsheet upload
func ErrInvalidUpload(reason string) *APIError {
	return NewWithDetails(http.StatusBadRequest, "INVALID_UPLOAD", "Uploaded file was rejected", reason)
}

// ErrUploadTooLarge creates an error for an oversized upload
func ErrUploadTooLarge(limit int64) *APIError {
	return NewWithDetails(http.StatusRequestEntityTooLarge, "UPLOAD_TOO_LARGE",
		"Uploaded file exceeds the size limit", fmt.Sprintf("limit is %d bytes", limit))
}

// ErrParseFailed creates an error for a spreadsheet that could not be read
func ErrParseFailed(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, "PARSE_FAILED", "Failed to parse spreadsheet", err.Error())
}

// ErrMissingColumn creates an error for a report missing a required column
func ErrMissingColumn(err error) *APIError {
	return NewWithDetails(http.StatusUnprocessableEntity, "MISSING_COLUMN",
		"Spreadsheet is missing a required column", err.Error())
}

// ErrEmptyReport creates an error for a report with no data rows
func ErrEmptyReport(err error) *APIError {
	return NewWithDetails(http.StatusUnprocessableEntity, "EMPTY_REPORT",
		"Spreadsheet contains no data rows", err.Error())
}

// ErrRenderFailed creates an error for a failed chart or PDF render
func ErrRenderFailed(err error) *APIError {
	return NewWithDetails(http.StatusInternalServerError, "RENDER_FAILED", "Failed to render report", err.Error())
}

// ErrorResponse represents a standard error response envelope
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   *APIError `json:"error"`
	TraceID string    `json:"trace_id,omitempty"`
}

// NewErrorResponse creates a new error response
func NewErrorResponse(err *APIError) *ErrorResponse {
	return &ErrorResponse{
		Success: false,
		Error:   err,
	}
}

// Render implements the render.Renderer interface
func (e *ErrorResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return e.Error.Render(w, r)
}

// WriteError writes an error response outside the chi/render flow
func WriteError(w http.ResponseWriter, err *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	json.NewEncoder(w).Encode(NewErrorResponse(err))
}

// PanicRecovery carries panic details in an error response
type PanicRecovery struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// ErrPanic creates a panic recovery error
func ErrPanic(rec interface{}, stack string) *APIError {
	return NewWithDetails(
		http.StatusInternalServerError,
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		PanicRecovery{
			Message: fmt.Sprintf("%v", rec),
			Stack:   stack,
		},
	)
}
