package models

import "time"

// Voicemail drop status constants
const (
	DropStatusPending   = "pending"
	DropStatusDelivered = "delivered"
	DropStatusFailed    = "failed"
)

// VoicemailDrop is one pre-recorded message delivered to one customer
type VoicemailDrop struct {
	ID             string     `json:"id"`
	CampaignID     string     `json:"campaignId"`
	CustomerID     string     `json:"customerId"`
	PhoneNumber    string     `json:"phoneNumber"`
	Status         string     `json:"status"`
	RenderedScript string     `json:"renderedScript"`
	ProviderSID    *string    `json:"providerSid,omitempty"`
	LastError      *string    `json:"lastError,omitempty"`
	RetryCount     int        `json:"retryCount"`
	DeliveredAt    *time.Time `json:"deliveredAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// DropJob is the queue payload referencing a drop to deliver
type DropJob struct {
	DropID string `json:"dropId"`
}

// DropResult records the outcome of one delivery attempt
type DropResult struct {
	Status      string
	ProviderSID *string
	LastError   *string
	DeliveredAt *time.Time
}

// IsValidDropStatus checks if the drop status is valid
func IsValidDropStatus(status string) bool {
	switch status {
	case DropStatusPending, DropStatusDelivered, DropStatusFailed:
		return true
	default:
		return false
	}
}
