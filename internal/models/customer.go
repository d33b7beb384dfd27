package models

import (
	"strings"
	"time"
)

// Customer status constants
const (
	CustomerStatusActive   = "active"
	CustomerStatusInactive = "inactive"
)

// Customer represents a dealership customer who can receive voicemail drops
type Customer struct {
	ID              string    `json:"id"`
	OrganizationID  string    `json:"organizationId"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	PhoneNumber     string    `json:"phoneNumber"`
	Email           string    `json:"email,omitempty"`
	VehicleInterest string    `json:"vehicleInterest,omitempty"`
	LastContact     string    `json:"lastContact,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	Tags            []string  `json:"tags,omitempty"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// FullName joins first and last name
func (c *Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// CustomerInput is the customer shape accepted from CSV rows and API payloads.
// The validate tags are the single rule set shared by every entry point.
type CustomerInput struct {
	FirstName       string   `json:"firstName" validate:"required"`
	LastName        string   `json:"lastName" validate:"required"`
	PhoneNumber     string   `json:"phoneNumber" validate:"required,phone"`
	Email           string   `json:"email,omitempty"`
	VehicleInterest string   `json:"vehicleInterest,omitempty"`
	LastContact     string   `json:"lastContact,omitempty"`
	Notes           string   `json:"notes,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	Status          string   `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}

// ToCustomer builds a customer owned by the given organization
func (in *CustomerInput) ToCustomer(organizationID string) *Customer {
	status := in.Status
	if status == "" {
		status = CustomerStatusActive
	}

	return &Customer{
		OrganizationID:  organizationID,
		FirstName:       in.FirstName,
		LastName:        in.LastName,
		PhoneNumber:     in.PhoneNumber,
		Email:           in.Email,
		VehicleInterest: in.VehicleInterest,
		LastContact:     in.LastContact,
		Notes:           in.Notes,
		Tags:            in.Tags,
		Status:          status,
	}
}

// CustomerUpdate carries a partial customer update; nil fields are left untouched
type CustomerUpdate struct {
	FirstName       *string  `json:"firstName,omitempty"`
	LastName        *string  `json:"lastName,omitempty"`
	PhoneNumber     *string  `json:"phoneNumber,omitempty"`
	Email           *string  `json:"email,omitempty"`
	VehicleInterest *string  `json:"vehicleInterest,omitempty"`
	LastContact     *string  `json:"lastContact,omitempty"`
	Notes           *string  `json:"notes,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	Status          *string  `json:"status,omitempty"`
}

// Apply merges the update into the customer and returns the resulting input for validation
func (u *CustomerUpdate) Apply(c *Customer) CustomerInput {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}

	set(&c.FirstName, u.FirstName)
	set(&c.LastName, u.LastName)
	set(&c.PhoneNumber, u.PhoneNumber)
	set(&c.Email, u.Email)
	set(&c.VehicleInterest, u.VehicleInterest)
	set(&c.LastContact, u.LastContact)
	set(&c.Notes, u.Notes)
	set(&c.Status, u.Status)
	if u.Tags != nil {
		c.Tags = u.Tags
	}

	return CustomerInput{
		FirstName:       c.FirstName,
		LastName:        c.LastName,
		PhoneNumber:     c.PhoneNumber,
		Email:           c.Email,
		VehicleInterest: c.VehicleInterest,
		LastContact:     c.LastContact,
		Notes:           c.Notes,
		Tags:            c.Tags,
		Status:          c.Status,
	}
}

// CustomerFilter holds filtering options for listing customers
type CustomerFilter struct {
	OrganizationID string
	Status         string
	Search         string
	Page           int
	PageSize       int
}

// Matches reports whether the customer passes the status and search filters
func (f *CustomerFilter) Matches(c *Customer) bool {
	if f.OrganizationID != "" && c.OrganizationID != f.OrganizationID {
		return false
	}
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	if f.Search == "" {
		return true
	}

	needle := strings.ToLower(f.Search)
	return strings.Contains(strings.ToLower(c.FirstName), needle) ||
		strings.Contains(strings.ToLower(c.LastName), needle) ||
		strings.Contains(strings.ToLower(c.Email), needle) ||
		strings.Contains(c.PhoneNumber, f.Search)
}
