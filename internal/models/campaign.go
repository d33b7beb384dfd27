package models

import (
	"time"
)

// Campaign status constants
const (
	CampaignStatusPending   = "pending"
	CampaignStatusScheduled = "scheduled"
	CampaignStatusRunning   = "running"
	CampaignStatusPaused    = "paused"
	CampaignStatusCompleted = "completed"
	CampaignStatusFailed    = "failed"
)

// Campaign represents a voicemail drop campaign
type Campaign struct {
	ID                  string     `json:"id"`
	OrganizationID      string     `json:"organizationId"`
	Name                string     `json:"name"`
	Script              string     `json:"script"`
	Status              string     `json:"status"`
	VoiceID             string     `json:"voiceId,omitempty"`
	CallerID            string     `json:"callerId,omitempty"`
	Dealership          string     `json:"dealership,omitempty"`
	SalesRep            string     `json:"salesRep,omitempty"`
	ScheduledAt         *time.Time `json:"scheduledAt,omitempty"`
	DeliveryWindowStart string     `json:"deliveryWindowStart,omitempty"`
	DeliveryWindowEnd   string     `json:"deliveryWindowEnd,omitempty"`
	TimeZone            string     `json:"timeZone,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// CampaignFilter holds filtering options for listing campaigns
type CampaignFilter struct {
	OrganizationID string
	Status         string
	Page           int
	PageSize       int
}

// CampaignStats holds drop statistics for a campaign
type CampaignStats struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Delivered int64 `json:"delivered"`
	Failed    int64 `json:"failed"`
}

// CampaignWithStats combines campaign details with statistics
type CampaignWithStats struct {
	Campaign
	Stats CampaignStats `json:"stats"`
}

// IsValidCampaignStatus checks if the campaign status is valid
func IsValidCampaignStatus(status string) bool {
	switch status {
	case CampaignStatusPending, CampaignStatusScheduled, CampaignStatusRunning,
		CampaignStatusPaused, CampaignStatusCompleted, CampaignStatusFailed:
		return true
	default:
		return false
	}
}

// CanBeSent checks if drops may be created for the campaign.
// Running, completed and failed campaigns are rejected so a repeated send
// request cannot queue the same recipients twice.
func (c *Campaign) CanBeSent() bool {
	return c.Status == CampaignStatusPending ||
		c.Status == CampaignStatusScheduled ||
		c.Status == CampaignStatusPaused
}

// CampaignInput is the payload for creating or replacing a campaign
type CampaignInput struct {
	Name                string     `json:"name" validate:"required"`
	Script              string     `json:"script" validate:"required,min=10,max=500"`
	Status              string     `json:"status,omitempty" validate:"omitempty,oneof=pending scheduled running paused completed failed"`
	VoiceID             string     `json:"voiceId,omitempty"`
	CallerID            string     `json:"callerId,omitempty" validate:"omitempty,phone"`
	Dealership          string     `json:"dealership,omitempty"`
	SalesRep            string     `json:"salesRep,omitempty"`
	ScheduledAt         *time.Time `json:"scheduledAt,omitempty"`
	DeliveryWindowStart string     `json:"deliveryWindowStart,omitempty" validate:"omitempty,datetime=15:04"`
	DeliveryWindowEnd   string     `json:"deliveryWindowEnd,omitempty" validate:"omitempty,datetime=15:04"`
	TimeZone            string     `json:"timeZone,omitempty" validate:"omitempty,timezone"`
}

// ApplyTo copies the input onto a campaign, deriving the status when unset
func (in *CampaignInput) ApplyTo(c *Campaign) {
	c.Name = in.Name
	c.Script = in.Script
	c.VoiceID = in.VoiceID
	c.CallerID = in.CallerID
	c.Dealership = in.Dealership
	c.SalesRep = in.SalesRep
	c.ScheduledAt = in.ScheduledAt
	c.DeliveryWindowStart = in.DeliveryWindowStart
	c.DeliveryWindowEnd = in.DeliveryWindowEnd
	c.TimeZone = in.TimeZone

	switch {
	case in.Status != "":
		c.Status = in.Status
	case c.Status != "":
		// keep the current status on replace
	case in.ScheduledAt != nil:
		c.Status = CampaignStatusScheduled
	default:
		c.Status = CampaignStatusPending
	}
}
