package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Raymond9734/voicemail-drop-backend/internal/models"
)

type campaignRepository struct {
	s *Store
}

func campaignNotFound(id string) error {
	return models.ErrNotFoundWithMsg(fmt.Sprintf("campaign with ID %s not found", id))
}

func (r *campaignRepository) Create(ctx context.Context, campaign *models.Campaign) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	if campaign.ID == "" {
		campaign.ID = uuid.NewString()
	}
	campaign.CreatedAt = now
	campaign.UpdatedAt = now

	c := *campaign
	r.s.campaigns[c.ID] = &c
	return nil
}

func (r *campaignRepository) GetByID(ctx context.Context, id string) (*models.Campaign, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.campaigns[id]
	if !ok {
		return nil, campaignNotFound(id)
	}
	out := *c
	return &out, nil
}

func (r *campaignRepository) GetWithStats(ctx context.Context, id string) (*models.CampaignWithStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.campaigns[id]
	if !ok {
		return nil, campaignNotFound(id)
	}

	var stats models.CampaignStats
	for _, d := range r.s.drops {
		if d.CampaignID != id {
			continue
		}
		stats.Total++
		switch d.Status {
		case models.DropStatusPending:
			stats.Pending++
		case models.DropStatusDelivered:
			stats.Delivered++
		case models.DropStatusFailed:
			stats.Failed++
		}
	}

	return &models.CampaignWithStats{Campaign: *c, Stats: stats}, nil
}

func (r *campaignRepository) List(ctx context.Context, filter models.CampaignFilter) ([]*models.Campaign, int64, error) {
	models.ValidateAndSetDefaults(&filter.Page, &filter.PageSize)

	r.s.mu.RLock()
	matched := []*models.Campaign{}
	for _, c := range r.s.campaigns {
		if filter.OrganizationID != "" && c.OrganizationID != filter.OrganizationID {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		out := *c
		matched = append(matched, &out)
	}
	r.s.mu.RUnlock()

	sortCampaigns(matched)
	start, end := models.PageBounds(filter.Page, filter.PageSize, len(matched))
	return matched[start:end], int64(len(matched)), nil
}

func (r *campaignRepository) Update(ctx context.Context, campaign *models.Campaign) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.campaigns[campaign.ID]
	if !ok {
		return campaignNotFound(campaign.ID)
	}

	campaign.OrganizationID = existing.OrganizationID
	campaign.CreatedAt = existing.CreatedAt
	campaign.UpdatedAt = r.s.now()
	c := *campaign
	r.s.campaigns[c.ID] = &c
	return nil
}

func (r *campaignRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.campaigns[id]
	if !ok {
		return campaignNotFound(id)
	}
	c.Status = status
	c.UpdatedAt = r.s.now()
	return nil
}

func (r *campaignRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.campaigns[id]; !ok {
		return campaignNotFound(id)
	}
	delete(r.s.campaigns, id)
	for dropID, d := range r.s.drops {
		if d.CampaignID == id {
			delete(r.s.drops, dropID)
		}
	}
	return nil
}
