package csvimport

import "github.com/Raymond9734/voicemail-drop-backend/internal/models"

// Header aliases per canonical field, in priority order.
var (
	firstNameAliases   = []string{"firstname", "first name", "first"}
	lastNameAliases    = []string{"lastname", "last name", "last"}
	phoneAliases       = []string{"phone", "phonenumber", "phone number", "mobile"}
	vehicleAliases     = []string{"vehicle", "interest", "vehicle interest"}
	lastContactAliases = []string{"lastcontact", "last contact"}
	emailAliases       = []string{"email"}
)

// MapFields builds a customer from one row keyed by lower-cased header.
// Each field takes the first alias with a non-empty value, or "".
func MapFields(row map[string]string) models.CustomerInput {
	return models.CustomerInput{
		FirstName:       pick(row, firstNameAliases),
		LastName:        pick(row, lastNameAliases),
		PhoneNumber:     pick(row, phoneAliases),
		Email:           pick(row, emailAliases),
		VehicleInterest: pick(row, vehicleAliases),
		LastContact:     pick(row, lastContactAliases),
	}
}

func pick(row map[string]string, aliases []string) string {
	for _, alias := range aliases {
		if v := row[alias]; v != "" {
			return v
		}
	}
	return ""
}
