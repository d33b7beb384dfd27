package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Raymond9734/voicemail-drop-backend/internal/models"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error   string             `json:"error"`
	Code    string             `json:"code"`
	Details []models.RowDetail `json:"details,omitempty"`
}

// respondJSON writes a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	if status == http.StatusNoContent || data == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	// the status line is already out; nothing useful can be sent on failure
	_ = json.NewEncoder(w).Encode(data)
}

// respondError writes a standard error response
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// respondRejected writes a batch rejection with every failing row
func respondRejected(w http.ResponseWriter, code, message string, details []models.RowDetail) {
	respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: message, Code: code, Details: details})
}

// respondSuccess writes a successful response with 200 OK
func respondSuccess(w http.ResponseWriter, data interface{}) {
	respondJSON(w, http.StatusOK, data)
}

// respondCreated writes a successful response with 201 Created
func respondCreated(w http.ResponseWriter, data interface{}) {
	respondJSON(w, http.StatusCreated, data)
}

// decode reads a JSON body into v
func decode(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return models.ErrInvalidInput("request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &models.AppError{
			Code:    "INVALID_JSON",
			Message: "Invalid JSON format",
			Err:     fmt.Errorf("decoding body: %w", err),
		}
	}
	return nil
}
