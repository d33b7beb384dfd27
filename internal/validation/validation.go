// Package validation holds the customer and campaign rule set shared by the
// CSV importer, the bulk endpoint and the single-record API.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Raymond9734/voicemail-drop-backend/internal/models"
)

// PhonePattern accepts an optional leading + followed by digits, spaces, hyphens and parentheses.
var PhonePattern = regexp.MustCompile(`^\+?[\d\s\-\(\)]+$`)

// Code classifies a field failure
type Code string

const (
	CodeMissingField       Code = "MissingField"
	CodeInvalidPhoneFormat Code = "InvalidPhoneFormat"
	CodeInvalidValue       Code = "InvalidValue"
)

// FieldError is a single failed rule on a single field
type FieldError struct {
	Field   string
	Code    Code
	Message string
}

var labels = map[string]string{
	"firstName":           "First name",
	"lastName":            "Last name",
	"phoneNumber":         "Phone number",
	"status":              "Status",
	"name":                "Campaign name",
	"script":              "Script",
	"callerId":            "Caller ID",
	"deliveryWindowStart": "Delivery window start",
	"deliveryWindowEnd":   "Delivery window end",
	"timeZone":            "Time zone",
}

// Validator wraps a configured go-playground validator
type Validator struct {
	validate *validator.Validate
}

// New creates a validator with the phone rule registered and JSON field names reported
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	// Registration only fails for an empty tag name.
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return PhonePattern.MatchString(fl.Field().String())
	})

	return &Validator{validate: v}
}

var std = New()

// Customer validates a customer input. Fields are reported in declaration
// order and at most once each.
func (v *Validator) Customer(in *models.CustomerInput) []FieldError {
	return v.check(in)
}

// Campaign validates a campaign input
func (v *Validator) Campaign(in *models.CampaignInput) []FieldError {
	return v.check(in)
}

func (v *Validator) check(s interface{}) []FieldError {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Code: CodeInvalidValue, Message: err.Error()}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, translate(fe))
	}
	return out
}

func translate(fe validator.FieldError) FieldError {
	label, ok := labels[fe.Field()]
	if !ok {
		label = fe.Field()
	}

	switch fe.Tag() {
	case "required":
		return FieldError{fe.Field(), CodeMissingField, label + " is required"}
	case "phone":
		return FieldError{fe.Field(), CodeInvalidPhoneFormat, "Invalid " + strings.ToLower(label) + " format"}
	case "min":
		return FieldError{fe.Field(), CodeInvalidValue, fmt.Sprintf("%s must be at least %s characters", label, fe.Param())}
	case "max":
		return FieldError{fe.Field(), CodeInvalidValue, fmt.Sprintf("%s must be less than %s characters", label, fe.Param())}
	case "oneof":
		return FieldError{fe.Field(), CodeInvalidValue, fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(fe.Param(), " ", ", "))}
	case "datetime":
		return FieldError{fe.Field(), CodeInvalidValue, label + " must be in HH:MM format"}
	case "timezone":
		return FieldError{fe.Field(), CodeInvalidValue, label + " must be a valid IANA time zone"}
	default:
		return FieldError{fe.Field(), CodeInvalidValue, label + " is invalid"}
	}
}

// Customer validates with the package default validator
func Customer(in *models.CustomerInput) []FieldError {
	return std.Customer(in)
}

// Campaign validates with the package default validator
func Campaign(in *models.CampaignInput) []FieldError {
	return std.Campaign(in)
}

// Messages flattens field errors into their messages
func Messages(errs []FieldError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Message
	}
	return out
}
