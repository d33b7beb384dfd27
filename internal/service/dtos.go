package service

import (
	"github.com/Raymond9734/voicemail-drop-backend/internal/models"
)

// SendCampaignRequest represents a request to send a campaign
type SendCampaignRequest struct {
	CustomerIDs []string `json:"customerIds"`
}

// Validate performs validation on the send campaign request
func (r *SendCampaignRequest) Validate() error {
	if len(r.CustomerIDs) == 0 {
		return models.ErrInvalidInput("customerIds is required and cannot be empty")
	}
	return nil
}

// SendCampaignResult represents the result of sending a campaign
type SendCampaignResult struct {
	CampaignID  string   `json:"campaignId"`
	DropsQueued int      `json:"dropsQueued"`
	Skipped     []string `json:"skipped,omitempty"`
	Status      string   `json:"status"`
}

// PreviewRequest represents a request to preview a rendered script
type PreviewRequest struct {
	CustomerID     string  `json:"customerId"`
	OverrideScript *string `json:"overrideScript,omitempty"`
}

// Validate performs validation on the preview request
func (r *PreviewRequest) Validate() error {
	if r.CustomerID == "" {
		return models.ErrInvalidInput("customerId is required")
	}
	return nil
}

// PreviewResult represents a rendered script for one customer
type PreviewResult struct {
	RenderedScript string           `json:"renderedScript"`
	UsedScript     string           `json:"usedScript"`
	Customer       *CustomerPreview `json:"customer"`
}

// CustomerPreview contains minimal customer info for preview
type CustomerPreview struct {
	ID          string `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
}

// CampaignListResult represents paginated campaign list results
type CampaignListResult struct {
	Campaigns  []*models.Campaign      `json:"campaigns"`
	Pagination models.PaginationResult `json:"pagination"`
}

// CustomerListResult represents paginated customer list results
type CustomerListResult struct {
	Customers  []*models.Customer      `json:"customers"`
	Total      int64                   `json:"total"`
	Pagination models.PaginationResult `json:"pagination"`
}
