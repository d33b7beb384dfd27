package csvimport

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Raymond9734/voicemail-drop-backend/internal/models"
)

type fakeSubmitter struct {
	calls   [][]models.CustomerInput
	err     error
	block   chan struct{}
	entered chan struct{}
}

func (f *fakeSubmitter) BulkCreate(ctx context.Context, customers []models.CustomerInput) (*BulkResult, error) {
	f.calls = append(f.calls, customers)
	if f.entered != nil {
		close(f.entered)
	}
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Customer, len(customers))
	for i, c := range customers {
		out[i] = *c.ToCustomer("org-1")
	}
	return &BulkResult{Message: "imported", Customers: out}, nil
}

const validCSV = "firstname,lastname,phone\nJohn,Smith,555-0101\nJane,Lee,555-0103\n"

func TestUploader_Success(t *testing.T) {
	sub := &fakeSubmitter{}
	u := NewUploader(sub, 0)
	assert.Equal(t, StateIdle, u.State())

	res, err := u.Upload(context.Background(), "ok.csv", strings.NewReader(validCSV))
	require.NoError(t, err)

	assert.Equal(t, StateSuccess, u.State())
	assert.Len(t, res.Customers, 2)
	require.Len(t, sub.calls, 1)
	assert.Len(t, sub.calls[0], 2)
	assert.Len(t, u.Created().Customers, 2)
}

func TestUploader_ValidationErrorsBlockSubmit(t *testing.T) {
	sub := &fakeSubmitter{}
	u := NewUploader(sub, 0)

	_, err := u.Upload(context.Background(), "bad.csv", strings.NewReader(sampleCSV))

	var rej *RejectedError
	require.True(t, errors.As(err, &rej))
	assert.Len(t, rej.Details, 2)
	assert.Equal(t, StateError, u.State())
	assert.Empty(t, sub.calls, "an invalid file must not be submitted")
}

func TestUploader_UnsupportedFormatMakesNoCalls(t *testing.T) {
	sub := &fakeSubmitter{}
	u := NewUploader(sub, 0)

	res, err := u.Upload(context.Background(), "notes.txt", strings.NewReader(validCSV))
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Equal(t, StateError, u.State())
	assert.Nil(t, u.Result())
	assert.Empty(t, sub.calls)
}

func TestUploader_SubmitFailure(t *testing.T) {
	sub := &fakeSubmitter{err: ErrSubmitFailed}
	u := NewUploader(sub, 0)

	_, err := u.Upload(context.Background(), "ok.csv", strings.NewReader(validCSV))
	assert.ErrorIs(t, err, ErrSubmitFailed)
	assert.Equal(t, StateError, u.State())
	assert.Equal(t, "Failed to import customers. Please try again.", UserMessage(u.Err()))
}

func TestUploader_TryAgainIsIdempotent(t *testing.T) {
	u := NewUploader(nil, 0)

	first, err := u.Upload(context.Background(), "bad.csv", strings.NewReader(sampleCSV))
	require.Error(t, err)

	_, err = u.Upload(context.Background(), "bad.csv", strings.NewReader(sampleCSV))
	assert.ErrorIs(t, err, ErrResetRequired)

	require.NoError(t, u.Reset())
	assert.Equal(t, StateIdle, u.State())
	assert.Nil(t, u.Result())

	second, err := u.Upload(context.Background(), "bad.csv", strings.NewReader(sampleCSV))
	require.Error(t, err)

	assert.Equal(t, first.Customers, second.Customers)
	assert.Equal(t, first.Errors, second.Errors)
}

func TestUploader_RejectsDropWhileProcessing(t *testing.T) {
	sub := &fakeSubmitter{block: make(chan struct{}), entered: make(chan struct{})}
	u := NewUploader(sub, 0)

	done := make(chan error, 1)
	go func() {
		_, err := u.Upload(context.Background(), "ok.csv", strings.NewReader(validCSV))
		done <- err
	}()

	<-sub.entered
	assert.Equal(t, StateProcessing, u.State())

	_, err := u.Upload(context.Background(), "second.csv", strings.NewReader(validCSV))
	assert.ErrorIs(t, err, ErrUploadInProgress)
	assert.ErrorIs(t, u.Reset(), ErrUploadInProgress)

	close(sub.block)
	require.NoError(t, <-done)
	assert.Equal(t, StateSuccess, u.State())
	assert.Len(t, sub.calls, 1)
}
