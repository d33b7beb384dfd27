package validation

import (
	"fmt"

	"github.com/Raymond9734/voicemail-drop-backend/internal/models"
)

// RowError is a field failure attributed to a numbered row
type RowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("Row %d: %s", e.Row, e.Message)
}

// Rows validates every input and splits them into the valid ones and the
// accumulated errors. inputs[i] is reported as row firstRow+i. A row with any
// failing field is excluded from the valid set as a whole.
func Rows(inputs []models.CustomerInput, firstRow int) ([]models.CustomerInput, []RowError) {
	valid := make([]models.CustomerInput, 0, len(inputs))
	var errs []RowError

	for i := range inputs {
		row := firstRow + i
		fieldErrs := Customer(&inputs[i])
		if len(fieldErrs) == 0 {
			valid = append(valid, inputs[i])
			continue
		}
		for _, fe := range fieldErrs {
			errs = append(errs, RowError{
				Row:     row,
				Field:   fe.Field,
				Code:    fe.Code,
				Message: fe.Message,
			})
		}
	}

	return valid, errs
}

// Details converts row errors into the batch rejection payload
func Details(errs []RowError) []models.RowDetail {
	out := make([]models.RowDetail, len(errs))
	for i, e := range errs {
		out[i] = models.RowDetail{Row: e.Row, Error: e.Message}
	}
	return out
}
