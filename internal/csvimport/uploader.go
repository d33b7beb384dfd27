package csvimport

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/Raymond9734/voicemail-drop-backend/internal/models"
)

// State of an upload
type State string

const (
	StateIdle       State = "idle"
	StateProcessing State = "processing"
	StateSuccess    State = "success"
	StateError      State = "error"
)

// ErrResetRequired is returned when a file arrives before the previous outcome was cleared
var ErrResetRequired = errors.New("reset the upload before processing another file")

// BulkResult is the server's answer to a successful bulk create
type BulkResult struct {
	BatchID   string            `json:"batchId"`
	Message   string            `json:"message"`
	Customers []models.Customer `json:"customers"`
}

// Submitter sends validated customers as one batch
type Submitter interface {
	BulkCreate(ctx context.Context, customers []models.CustomerInput) (*BulkResult, error)
}

// Uploader drives one file at a time through
// idle → processing → {success | error} → idle.
// A file arriving while another is processing is rejected.
type Uploader struct {
	submitter Submitter
	maxBytes  int64

	mu      sync.Mutex
	state   State
	result  *Result
	created *BulkResult
	err     error
}

// NewUploader creates an uploader. A nil submitter validates without submitting.
func NewUploader(submitter Submitter, maxBytes int64) *Uploader {
	return &Uploader{
		submitter: submitter,
		maxBytes:  maxBytes,
		state:     StateIdle,
	}
}

// State returns the current state
func (u *Uploader) State() State {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}

// Result returns the parsed outcome of the last file, if any
func (u *Uploader) Result() *Result {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.result
}

// Created returns the server response of the last successful submission
func (u *Uploader) Created() *BulkResult {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.created
}

// Err returns the error that moved the uploader into StateError
func (u *Uploader) Err() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.err
}

// Upload processes the file and, when every row is valid, submits the batch.
// Validation failures come back as *RejectedError with the full row list.
func (u *Uploader) Upload(ctx context.Context, name string, r io.Reader) (*Result, error) {
	u.mu.Lock()
	switch u.state {
	case StateProcessing:
		u.mu.Unlock()
		return nil, ErrUploadInProgress
	case StateSuccess, StateError:
		u.mu.Unlock()
		return nil, ErrResetRequired
	}
	u.state = StateProcessing
	u.result, u.created, u.err = nil, nil, nil
	u.mu.Unlock()

	res, err := Process(name, r, u.maxBytes)
	if err != nil {
		return nil, u.finish(nil, nil, err)
	}
	if !res.OK() {
		return res, u.finish(res, nil, res.Rejection())
	}
	if u.submitter == nil || len(res.Customers) == 0 {
		return res, u.finish(res, nil, nil)
	}

	created, err := u.submitter.BulkCreate(ctx, res.Customers)
	return res, u.finish(res, created, err)
}

func (u *Uploader) finish(res *Result, created *BulkResult, err error) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.result = res
	u.created = created
	u.err = err
	if err != nil {
		u.state = StateError
	} else {
		u.state = StateSuccess
	}
	return err
}

// Reset discards the previous outcome and returns to idle ("Try Again").
func (u *Uploader) Reset() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.state == StateProcessing {
		return ErrUploadInProgress
	}
	u.state = StateIdle
	u.result, u.created, u.err = nil, nil, nil
	return nil
}
