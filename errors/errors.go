package errors

import (
	"fmt"
	"net/http"
	"time"
)

// AppError là custom error type cho application
type AppError struct {
	Raw       error
	HTTPCode  int
	Code      ErrorCode
	Message   string
	Details   map[string]string
	Timestamp time.Time
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap exposes the underlying error to errors.Is / errors.As.
func (e AppError) Unwrap() error {
	return e.Raw
}

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	details := make(map[string]string, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	e.Details = details
	return e
}

func newAppError(raw error, httpCode int, code ErrorCode, message string) AppError {
	return AppError{
		Raw:       raw,
		HTTPCode:  httpCode,
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// General Errors
func ErrInternal(err error) AppError {
	return newAppError(err, http.StatusInternalServerError, ErrorCode_INTERNAL, "Internal server error")
}

func ErrInvalidArgument(message string) AppError {
	return newAppError(nil, http.StatusBadRequest, ErrorCode_INVALID_ARGUMENT, message)
}

func ErrNotFound(resource string) AppError {
	return newAppError(nil, http.StatusNotFound, ErrorCode_NOT_FOUND, fmt.Sprintf("%s not found", resource))
}

func ErrInvalidPayload() AppError {
	return newAppError(nil, http.StatusBadRequest, ErrorCode_INVALID_PAYLOAD, "Invalid payload")
}

// Transcript pipeline errors

// ErrEmptyTranscript is returned when text sent for analysis is blank.
func ErrEmptyTranscript() AppError {
	return newAppError(nil, http.StatusUnprocessableEntity, ErrorCode_EMPTY_TRANSCRIPT, "Transcript has no usable text")
}

func ErrUnsupportedFormat(format string) AppError {
	return newAppError(nil, http.StatusBadRequest, ErrorCode_UNSUPPORTED_FORMAT, "Unsupported transcript format").
		WithDetail("format", format)
}

// AI Errors
func ErrAIAnalysisFailed(err error) AppError {
	return newAppError(err, http.StatusBadGateway, ErrorCode_AI_ANALYSIS_FAILED, "AI analysis failed")
}

func ErrAITranscriptionFailed(err error) AppError {
	return newAppError(err, http.StatusBadGateway, ErrorCode_AI_TRANSCRIPTION_FAILED, "Audio transcription failed")
}

func ErrAIServiceUnavailable(service string) AppError {
	return newAppError(nil, http.StatusServiceUnavailable, ErrorCode_AI_SERVICE_UNAVAILABLE, "AI service temporarily unavailable").
		WithDetail("service", service)
}

// Integration Errors
func ErrStorageFailed(operation string, err error) AppError {
	return newAppError(err, http.StatusInternalServerError, ErrorCode_INTEGRATION_STORAGE_FAILED,
		fmt.Sprintf("Storage operation failed: %s", operation))
}

// Database Errors
func ErrDBConnectionFailed(err error) AppError {
	return newAppError(err, http.StatusInternalServerError, ErrorCode_DB_CONNECTION_FAILED, "Database connection failed")
}

func ErrDBQueryFailed(query string, err error) AppError {
	return newAppError(err, http.StatusInternalServerError, ErrorCode_DB_QUERY_FAILED, "Database query failed").
		WithDetail("query", query)
}

// HTTPStatusOK represents a successful HTTP response.
func HTTPStatusOK(message string) AppError {
	return newAppError(nil, http.StatusOK, ErrorCode_HTTP_OK, message)
}
