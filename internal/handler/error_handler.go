package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/Raymond9734/voicemail-drop-backend/internal/csvimport"
	"github.com/Raymond9734/voicemail-drop-backend/internal/models"
)

// handleError maps service errors to HTTP responses
func handleError(ctx context.Context, w http.ResponseWriter, err error, logger *otelzap.Logger) {
	var rejected *csvimport.RejectedError
	if errors.As(err, &rejected) {
		respondRejected(w, models.CodeValidationFailed, rejected.Message, rejected.Details)
		return
	}

	var appErr *models.AppError
	if errors.As(err, &appErr) {
		status := mapErrorCodeToHTTPStatus(appErr.Code)
		if len(appErr.Details) > 0 {
			respondJSON(w, status, ErrorResponse{Error: appErr.Message, Code: appErr.Code, Details: appErr.Details})
			return
		}
		respondError(w, status, appErr.Code, appErr.Message)
		return
	}

	switch {
	case errors.Is(err, models.ErrNotFound):
		respondError(w, http.StatusNotFound, models.CodeNotFound, err.Error())

	case errors.Is(err, models.ErrConflict):
		respondError(w, http.StatusConflict, models.CodeConflict, err.Error())

	case errors.Is(err, csvimport.ErrUnsupportedFormat):
		respondError(w, http.StatusBadRequest, "UNSUPPORTED_FORMAT", csvimport.UserMessage(err))

	case errors.Is(err, csvimport.ErrFileTooLarge):
		respondError(w, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", csvimport.UserMessage(err))

	case errors.Is(err, csvimport.ErrUploadInProgress):
		respondError(w, http.StatusConflict, models.CodeConflict, csvimport.UserMessage(err))

	case errors.Is(err, csvimport.ErrProcessingFailure):
		respondError(w, http.StatusBadRequest, "PROCESSING_FAILURE", csvimport.UserMessage(err))

	default:
		// Log internal errors but don't expose details to client
		logger.Ctx(ctx).Error("internal server error", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred")
	}
}

// mapErrorCodeToHTTPStatus maps error codes to HTTP status codes
func mapErrorCodeToHTTPStatus(code string) int {
	switch code {
	case models.CodeInvalidInput, models.CodeValidationFailed, "INVALID_JSON":
		return http.StatusBadRequest
	case models.CodeNotFound:
		return http.StatusNotFound
	case models.CodeConflict:
		return http.StatusConflict
	case models.CodeUnauthorized:
		return http.StatusUnauthorized
	case models.CodeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
