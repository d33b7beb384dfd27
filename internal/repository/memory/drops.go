package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/Raymond9734/voicemail-drop-backend/internal/models"
)

type dropRepository struct {
	s *Store
}

func dropNotFound(id string) error {
	return models.ErrNotFoundWithMsg(fmt.Sprintf("voicemail drop with ID %s not found", id))
}

func (r *dropRepository) CreateBatch(ctx context.Context, drops []*models.VoicemailDrop) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, d := range drops {
		if _, ok := r.s.campaigns[d.CampaignID]; !ok {
			return campaignNotFound(d.CampaignID)
		}
		if _, ok := r.s.customers[d.CustomerID]; !ok {
			return customerNotFound(d.CustomerID)
		}
	}

	now := r.s.now()
	for _, d := range drops {
		if d.ID == "" {
			d.ID = uuid.NewString()
		}
		if d.Status == "" {
			d.Status = models.DropStatusPending
		}
		d.CreatedAt = now
		d.UpdatedAt = now
		r.s.drops[d.ID] = cloneDrop(d)
	}
	return nil
}

func (r *dropRepository) GetByID(ctx context.Context, id string) (*models.VoicemailDrop, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	d, ok := r.s.drops[id]
	if !ok {
		return nil, dropNotFound(id)
	}
	return cloneDrop(d), nil
}

func (r *dropRepository) ListByCampaign(ctx context.Context, campaignID string) ([]*models.VoicemailDrop, error) {
	r.s.mu.RLock()
	out := []*models.VoicemailDrop{}
	for _, d := range r.s.drops {
		if d.CampaignID == campaignID {
			out = append(out, cloneDrop(d))
		}
	}
	r.s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *dropRepository) RecordResult(ctx context.Context, id string, res models.DropResult) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	d, ok := r.s.drops[id]
	if !ok {
		return dropNotFound(id)
	}

	d.Status = res.Status
	if res.ProviderSID != nil {
		sid := *res.ProviderSID
		d.ProviderSID = &sid
	}
	d.LastError = nil
	if res.LastError != nil {
		msg := *res.LastError
		d.LastError = &msg
	}
	d.DeliveredAt = nil
	if res.DeliveredAt != nil {
		at := *res.DeliveredAt
		d.DeliveredAt = &at
	}
	d.UpdatedAt = r.s.now()
	return nil
}

func (r *dropRepository) IncrementRetryCount(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	d, ok := r.s.drops[id]
	if !ok {
		return dropNotFound(id)
	}
	d.RetryCount++
	d.UpdatedAt = r.s.now()
	return nil
}
