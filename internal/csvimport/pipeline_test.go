package csvimport

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Raymond9734/voicemail-drop-backend/internal/models"
	"github.com/Raymond9734/voicemail-drop-backend/internal/validation"
)

const sampleCSV = `firstname,lastname,phone,email
John,Smith,555-0101,john@x.com
,Doe,555-0102,
Jane,Lee,abc123,
`

func TestProcess_MixedRows(t *testing.T) {
	res, err := Process("customers.csv", strings.NewReader(sampleCSV), 0)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Rows)
	want := []models.CustomerInput{{
		FirstName:   "John",
		LastName:    "Smith",
		PhoneNumber: "555-0101",
		Email:       "john@x.com",
	}}
	if diff := cmp.Diff(want, res.Customers); diff != "" {
		t.Errorf("customers mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, []string{
		"Row 3: First name is required",
		"Row 4: Invalid phone number format",
	}, res.ErrorMessages())
	assert.False(t, res.OK())

	rej := res.Rejection()
	require.NotNil(t, rej)
	assert.Equal(t, []models.RowDetail{
		{Row: 3, Error: "First name is required"},
		{Row: 4, Error: "Invalid phone number format"},
	}, rej.Details)
}

func TestProcess_OneErrorPerMissingField(t *testing.T) {
	input := "first,last,mobile\n" +
		",Smith,555\n" +
		"Ann,,555\n" +
		"Bob,Jones,\n"

	res, err := Process("list.csv", strings.NewReader(input), 0)
	require.NoError(t, err)

	assert.Empty(t, res.Customers)
	require.Len(t, res.Errors, 3)
	for i, want := range []struct {
		row  int
		code validation.Code
		msg  string
	}{
		{2, validation.CodeMissingField, "Row 2: First name is required"},
		{3, validation.CodeMissingField, "Row 3: Last name is required"},
		{4, validation.CodeMissingField, "Row 4: Phone number is required"},
	} {
		assert.Equal(t, want.row, res.Errors[i].Row)
		assert.Equal(t, want.code, res.Errors[i].Code)
		assert.Equal(t, want.msg, res.Errors[i].Error())
	}
}

func TestProcess_AliasedHeaders(t *testing.T) {
	input := "First Name,Last Name,Phone Number,Vehicle Interest,Last Contact,Email\n" +
		"Sarah,Johnson,+1 (555) 012-4000,2024 Honda Accord,2024-11-18,sarah@example.com\n"

	res, err := Process("export.CSV", strings.NewReader(input), 0)
	require.NoError(t, err)
	require.True(t, res.OK())
	require.Len(t, res.Customers, 1)

	assert.Equal(t, models.CustomerInput{
		FirstName:       "Sarah",
		LastName:        "Johnson",
		PhoneNumber:     "+1 (555) 012-4000",
		VehicleInterest: "2024 Honda Accord",
		LastContact:     "2024-11-18",
		Email:           "sarah@example.com",
	}, res.Customers[0])
}

func TestProcess_QuotedFields(t *testing.T) {
	input := "firstname,lastname,phone,vehicle\n" +
		"\"Smith, Jr.\",\"O\"\"Brien\",555-0101,\"F-150, crew cab\"\n"

	res, err := Process("q.csv", strings.NewReader(input), 0)
	require.NoError(t, err)
	require.Len(t, res.Customers, 1)
	assert.Equal(t, "Smith, Jr.", res.Customers[0].FirstName)
	assert.Equal(t, `O"Brien`, res.Customers[0].LastName)
	assert.Equal(t, "F-150, crew cab", res.Customers[0].VehicleInterest)
}

func TestProcess_SkipsBlankLinesAndShortRows(t *testing.T) {
	input := "firstname,lastname,phone,email\n\n" +
		"John,Smith,555-0101\n" +
		"   \n" +
		"Jane,Lee,555-0103,jane@x.com\n"

	res, err := Process("c.csv", strings.NewReader(input), 0)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Rows)
	assert.True(t, res.OK())
	assert.Equal(t, "", res.Customers[0].Email)
}

func TestProcess_CommaOnlyLineIsARow(t *testing.T) {
	input := "firstname,lastname,phone\n" +
		",,\n" +
		",Doe,555-0102\n"

	res, err := Process("c.csv", strings.NewReader(input), 0)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Rows)
	assert.Empty(t, res.Customers)

	want := []string{
		"Row 2: First name is required",
		"Row 2: Last name is required",
		"Row 2: Phone number is required",
		"Row 3: First name is required",
	}
	if diff := cmp.Diff(want, res.ErrorMessages()); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestProcess_UnsupportedFormat(t *testing.T) {
	r := &countingReader{r: strings.NewReader(sampleCSV)}

	res, err := Process("customers.txt", r, 0)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
	assert.Zero(t, r.reads, "no bytes may be read for an unsupported file")
	assert.Equal(t, "Unsupported file format. Please use CSV format.", UserMessage(err))
}

func TestProcess_FileTooLarge(t *testing.T) {
	_, err := Process("big.csv", strings.NewReader(sampleCSV), 10)
	assert.ErrorIs(t, err, ErrFileTooLarge)

	_, err = Process("exact.csv", strings.NewReader(sampleCSV), int64(len(sampleCSV)))
	assert.NoError(t, err)
}

func TestProcess_HeaderOnly(t *testing.T) {
	res, err := Process("empty.csv", strings.NewReader("firstname,lastname,phone\n"), 0)
	require.NoError(t, err)
	assert.Zero(t, res.Rows)
	assert.True(t, res.OK())
}

func TestMapFields_FirstNonEmptyAlias(t *testing.T) {
	got := MapFields(map[string]string{
		"phone":  "",
		"mobile": "555-0199",
		"first":  "Al",
		"last":   "Bo",
	})
	assert.Equal(t, "555-0199", got.PhoneNumber)
	assert.Equal(t, "Al", got.FirstName)
	assert.Equal(t, "Bo", got.LastName)
	assert.Equal(t, "", got.Email)
}

type countingReader struct {
	r     *strings.Reader
	reads int
}

func (c *countingReader) Read(p []byte) (int, error) {
	c.reads++
	return c.r.Read(p)
}

func TestCheckContentType(t *testing.T) {
	tests := []struct {
		contentType string
		wantErr     bool
	}{
		{"", false},
		{"text/csv", false},
		{"text/csv; charset=utf-8", false},
		{"application/vnd.ms-excel", false},
		{"application/octet-stream", false},
		{"application/pdf", true},
		{"image/png", true},
		{"not a media type;;", true},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			err := CheckContentType(tt.contentType)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
