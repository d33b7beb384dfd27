package csvimport

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Raymond9734/voicemail-drop-backend/internal/models"
)

var (
	// ErrUnsupportedFormat is returned for files that are not .csv
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrProcessingFailure wraps unexpected read or parse failures
	ErrProcessingFailure = errors.New("failed to process file")

	// ErrFileTooLarge is returned when an upload exceeds the size limit
	ErrFileTooLarge = errors.New("file is too large")

	// ErrUploadInProgress is returned when a file arrives while another is processing
	ErrUploadInProgress = errors.New("an upload is already being processed")

	// ErrSubmitFailed covers transport failures and non-2xx responses
	ErrSubmitFailed = errors.New("failed to import customers")
)

// RejectedError is returned when the server refuses a batch with row details
type RejectedError struct {
	Message string
	Details []models.RowDetail
}

func (e *RejectedError) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	lines := make([]string, len(e.Details))
	for i, d := range e.Details {
		lines[i] = fmt.Sprintf("Row %d: %s", d.Row, d.Error)
	}
	return e.Message + ": " + strings.Join(lines, "; ")
}

// UserMessage returns the text shown to the person uploading the file
func UserMessage(err error) string {
	var rejected *RejectedError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnsupportedFormat):
		return "Unsupported file format. Please use CSV format."
	case errors.Is(err, ErrFileTooLarge):
		return "File is too large. Please upload a smaller file."
	case errors.Is(err, ErrUploadInProgress):
		return "Please wait for the current file to finish processing."
	case errors.Is(err, ErrSubmitFailed):
		return "Failed to import customers. Please try again."
	case errors.As(err, &rejected):
		return rejected.Message
	default:
		return "Failed to process file. Please check the format and try again."
	}
}
