package service

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/Raymond9734/voicemail-drop-backend/internal/models"
)

// ScriptService handles voicemail script rendering and validation
type ScriptService interface {
	Render(script string, customer *models.Customer, campaign *models.Campaign) (string, error)
	ValidateScript(script string) error
	ExtractPlaceholders(script string) []string
}

type scriptService struct {
	placeholderPattern *regexp.Regexp
}

// NewScriptService creates a new script service
func NewScriptService() ScriptService {
	return &scriptService{
		placeholderPattern: regexp.MustCompile(`\[([A-Za-z][A-Za-z ]*)\]`),
	}
}

type fieldFunc func(cu *models.Customer, ca *models.Campaign) string

// placeholders maps each supported [Name] to the value it renders
var placeholders = map[string]fieldFunc{
	"Customer Name": func(cu *models.Customer, _ *models.Campaign) string { return cu.FullName() },
	"First Name":    func(cu *models.Customer, _ *models.Campaign) string { return cu.FirstName },
	"Last Name":     func(cu *models.Customer, _ *models.Campaign) string { return cu.LastName },
	"Vehicle":       func(cu *models.Customer, _ *models.Campaign) string { return cu.VehicleInterest },
	"Vehicle Type":  func(cu *models.Customer, _ *models.Campaign) string { return cu.VehicleInterest },
	"Dealership":    func(_ *models.Customer, ca *models.Campaign) string { return ca.Dealership },
	"Sales Rep":     func(_ *models.Customer, ca *models.Campaign) string { return ca.SalesRep },
}

// SupportedPlaceholders lists the placeholders in sorted order
func SupportedPlaceholders() []string {
	names := make([]string, 0, len(placeholders))
	for name := range placeholders {
		names = append(names, "["+name+"]")
	}
	sort.Strings(names)
	return names
}

// Render replaces placeholders with customer and campaign data.
// Missing values render as empty strings.
func (s *scriptService) Render(script string, customer *models.Customer, campaign *models.Campaign) (string, error) {
	if customer == nil {
		return "", models.ErrInvalidInput("customer cannot be nil")
	}
	if campaign == nil {
		campaign = &models.Campaign{}
	}

	result := s.placeholderPattern.ReplaceAllStringFunc(script, func(match string) string {
		name := strings.Trim(match, "[]")
		if f, ok := placeholders[name]; ok {
			return f(customer, campaign)
		}
		return ""
	})

	return result, nil
}

// ValidateScript rejects empty scripts and unknown placeholders
func (s *scriptService) ValidateScript(script string) error {
	if strings.TrimSpace(script) == "" {
		return models.ErrInvalidInput("script cannot be empty")
	}

	var invalid []string
	for _, name := range s.ExtractPlaceholders(script) {
		if _, ok := placeholders[name]; !ok {
			invalid = append(invalid, "["+name+"]")
		}
	}

	if len(invalid) > 0 {
		return models.ErrInvalidInput(fmt.Sprintf(
			"invalid placeholders: %s. Valid placeholders are: %s",
			strings.Join(invalid, ", "),
			strings.Join(SupportedPlaceholders(), ", "),
		))
	}

	return nil
}

// ExtractPlaceholders returns the placeholder names found in script, in order
func (s *scriptService) ExtractPlaceholders(script string) []string {
	matches := s.placeholderPattern.FindAllStringSubmatch(script, -1)
	names := make([]string, 0, len(matches))

	for _, match := range matches {
		if len(match) > 1 {
			names = append(names, match[1])
		}
	}

	return names
}
