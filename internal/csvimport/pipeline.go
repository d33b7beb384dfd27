// Package csvimport turns an uploaded customer CSV into validated customer
// records and submits them to the bulk create endpoint.
package csvimport

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/Raymond9734/voicemail-drop-backend/internal/models"
	"github.com/Raymond9734/voicemail-drop-backend/internal/validation"
)

// The header occupies line 1, so the first data record is row 2.
const firstDataRow = 2

// Accepted upload types
const (
	Extension   = ".csv"
	ContentType = "text/csv"
)

// contentTypes lists the media types browsers and HTTP clients send for a .csv file
var contentTypes = map[string]bool{
	ContentType:                true,
	"application/csv":          true,
	"application/vnd.ms-excel": true,
	"application/octet-stream": true,
	"text/plain":               true,
}

// Result is the outcome of processing one file
type Result struct {
	FileName  string
	Rows      int
	Customers []models.CustomerInput
	Errors    []validation.RowError
}

// OK reports whether every row passed validation
func (r *Result) OK() bool {
	return len(r.Errors) == 0
}

// ErrorMessages renders the accumulated errors in row order
func (r *Result) ErrorMessages() []string {
	out := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		out[i] = e.Error()
	}
	return out
}

// Rejection converts the row errors into the same shape the server uses
func (r *Result) Rejection() *RejectedError {
	if r.OK() {
		return nil
	}
	return &RejectedError{
		Message: "Validation failed",
		Details: validation.Details(r.Errors),
	}
}

// CheckFormat rejects anything that is not a .csv file
func CheckFormat(name string) error {
	if !strings.EqualFold(filepath.Ext(name), Extension) {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
	return nil
}

// CheckContentType rejects a declared media type that cannot be a CSV file.
// An empty value is accepted and left to CheckFormat.
func CheckContentType(contentType string) error {
	if contentType == "" {
		return nil
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !contentTypes[strings.ToLower(mediaType)] {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, contentType)
	}
	return nil
}

// Process checks the file name, parses the stream, maps each row to a
// customer and validates it. maxBytes <= 0 disables the size limit.
// Row failures are reported in Result.Errors, not as an error.
func Process(name string, r io.Reader, maxBytes int64) (*Result, error) {
	if err := CheckFormat(name); err != nil {
		return nil, err
	}

	if maxBytes > 0 {
		r = &limitReader{r: r, n: maxBytes}
	}

	rows, err := Parse(r)
	if err != nil {
		if errors.Is(err, ErrFileTooLarge) {
			return nil, ErrFileTooLarge
		}
		return nil, fmt.Errorf("%w: %w", ErrProcessingFailure, err)
	}

	inputs := make([]models.CustomerInput, len(rows))
	for i, row := range rows {
		inputs[i] = MapFields(row)
	}

	valid, rowErrs := validation.Rows(inputs, firstDataRow)

	return &Result{
		FileName:  name,
		Rows:      len(rows),
		Customers: valid,
		Errors:    rowErrs,
	}, nil
}

// limitReader fails with ErrFileTooLarge once more than n bytes are read
type limitReader struct {
	r io.Reader
	n int64
}

func (l *limitReader) Read(p []byte) (int, error) {
	if l.n < 0 {
		return 0, ErrFileTooLarge
	}
	if int64(len(p)) > l.n+1 {
		p = p[:l.n+1]
	}
	n, err := l.r.Read(p)
	l.n -= int64(n)
	if l.n < 0 {
		return n, ErrFileTooLarge
	}
	return n, err
}
