package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Raymond9734/voicemail-drop-backend/internal/models"
	"github.com/Raymond9734/voicemail-drop-backend/internal/repository"
)

// DropService exposes the delivery records of a campaign
type DropService interface {
	ListByCampaign(ctx context.Context, organizationID, campaignID, status string) ([]*models.VoicemailDrop, error)
	GetByID(ctx context.Context, organizationID, id string) (*models.VoicemailDrop, error)
}

type dropService struct {
	dropRepo     repository.VoicemailDropRepository
	campaignRepo repository.CampaignRepository
	logger       *zap.Logger
}

// NewDropService creates a new drop service
func NewDropService(ds repository.DataSource, logger *zap.Logger) DropService {
	return &dropService{
		dropRepo:     ds.Drops,
		campaignRepo: ds.Campaigns,
		logger:       logger,
	}
}

func (s *dropService) checkCampaign(ctx context.Context, organizationID, campaignID string) error {
	campaign, err := s.campaignRepo.GetByID(ctx, campaignID)
	if err != nil {
		return err
	}
	if campaign.OrganizationID != organizationID {
		return models.ErrNotFoundWithMsg(fmt.Sprintf("campaign with ID %s not found", campaignID))
	}
	return nil
}

// ListByCampaign returns the drops of a campaign, optionally filtered by status
func (s *dropService) ListByCampaign(ctx context.Context, organizationID, campaignID, status string) ([]*models.VoicemailDrop, error) {
	if status != "" && !models.IsValidDropStatus(status) {
		return nil, models.ErrInvalidInput(fmt.Sprintf("invalid status filter %q", status))
	}

	if err := s.checkCampaign(ctx, organizationID, campaignID); err != nil {
		return nil, err
	}

	drops, err := s.dropRepo.ListByCampaign(ctx, campaignID)
	if err != nil {
		s.logger.Error("failed to list drops",
			zap.String("campaign_id", campaignID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to list drops: %w", err)
	}

	if status == "" {
		return drops, nil
	}

	filtered := drops[:0]
	for _, d := range drops {
		if d.Status == status {
			filtered = append(filtered, d)
		}
	}
	return filtered, nil
}

// GetByID retrieves one drop of the organization
func (s *dropService) GetByID(ctx context.Context, organizationID, id string) (*models.VoicemailDrop, error) {
	drop, err := s.dropRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.checkCampaign(ctx, organizationID, drop.CampaignID); err != nil {
		return nil, models.ErrNotFoundWithMsg(fmt.Sprintf("voicemail drop with ID %s not found", id))
	}

	return drop, nil
}
