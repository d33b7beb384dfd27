package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Raymond9734/voicemail-drop-backend/internal/models"
	"github.com/Raymond9734/voicemail-drop-backend/internal/queue"
	"github.com/Raymond9734/voicemail-drop-backend/internal/repository"
	"github.com/Raymond9734/voicemail-drop-backend/internal/validation"
)

// CampaignService handles campaign business logic
type CampaignService interface {
	Create(ctx context.Context, organizationID string, in *models.CampaignInput) (*models.Campaign, error)
	GetByID(ctx context.Context, organizationID, id string) (*models.CampaignWithStats, error)
	List(ctx context.Context, filter models.CampaignFilter) (*CampaignListResult, error)
	Update(ctx context.Context, organizationID, id string, in *models.CampaignInput) (*models.Campaign, error)
	Delete(ctx context.Context, organizationID, id string) error
	SendCampaign(ctx context.Context, organizationID, id string, req *SendCampaignRequest) (*SendCampaignResult, error)
	Preview(ctx context.Context, organizationID, id string, req *PreviewRequest) (*PreviewResult, error)
}

type campaignService struct {
	campaignRepo repository.CampaignRepository
	customerRepo repository.CustomerRepository
	dropRepo     repository.VoicemailDropRepository
	scriptSvc    ScriptService
	queueClient  queue.Client
	logger       *zap.Logger
}

// NewCampaignService creates a new campaign service
func NewCampaignService(
	ds repository.DataSource,
	scriptSvc ScriptService,
	queueClient queue.Client,
	logger *zap.Logger,
) CampaignService {
	return &campaignService{
		campaignRepo: ds.Campaigns,
		customerRepo: ds.Customers,
		dropRepo:     ds.Drops,
		scriptSvc:    scriptSvc,
		queueClient:  queueClient,
		logger:       logger,
	}
}

func (s *campaignService) validate(in *models.CampaignInput) error {
	if err := fieldErrors(validation.Campaign(in)); err != nil {
		return err
	}
	return s.scriptSvc.ValidateScript(in.Script)
}

// owned fetches a campaign and hides other organizations' campaigns
func (s *campaignService) owned(ctx context.Context, organizationID, id string) (*models.Campaign, error) {
	campaign, err := s.campaignRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if campaign.OrganizationID != organizationID {
		return nil, models.ErrNotFoundWithMsg(fmt.Sprintf("campaign with ID %s not found", id))
	}
	return campaign, nil
}

// Create creates a new campaign
func (s *campaignService) Create(ctx context.Context, organizationID string, in *models.CampaignInput) (*models.Campaign, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}

	campaign := &models.Campaign{OrganizationID: organizationID}
	in.ApplyTo(campaign)

	if err := s.campaignRepo.Create(ctx, campaign); err != nil {
		s.logger.Error("failed to create campaign",
			zap.String("name", in.Name),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to create campaign: %w", err)
	}

	s.logger.Info("campaign created",
		zap.String("campaign_id", campaign.ID),
		zap.String("name", campaign.Name),
		zap.String("status", campaign.Status),
	)

	return campaign, nil
}

// GetByID retrieves a campaign with statistics
func (s *campaignService) GetByID(ctx context.Context, organizationID, id string) (*models.CampaignWithStats, error) {
	if _, err := s.owned(ctx, organizationID, id); err != nil {
		return nil, err
	}

	return s.campaignRepo.GetWithStats(ctx, id)
}

// List retrieves campaigns with pagination
func (s *campaignService) List(ctx context.Context, filter models.CampaignFilter) (*CampaignListResult, error) {
	if filter.Status != "" && !models.IsValidCampaignStatus(filter.Status) {
		return nil, models.ErrInvalidInput(fmt.Sprintf("invalid status filter %q", filter.Status))
	}

	campaigns, totalCount, err := s.campaignRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}

	models.ValidateAndSetDefaults(&filter.Page, &filter.PageSize)

	return &CampaignListResult{
		Campaigns:  campaigns,
		Pagination: models.NewPaginationResult(filter.Page, filter.PageSize, totalCount),
	}, nil
}

// Update replaces the editable fields of a campaign
func (s *campaignService) Update(ctx context.Context, organizationID, id string, in *models.CampaignInput) (*models.Campaign, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}

	campaign, err := s.owned(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}

	in.ApplyTo(campaign)
	if err := s.campaignRepo.Update(ctx, campaign); err != nil {
		s.logger.Error("failed to update campaign",
			zap.String("campaign_id", id),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to update campaign: %w", err)
	}

	s.logger.Info("campaign updated", zap.String("campaign_id", id))

	return campaign, nil
}

// Delete removes a campaign. Running campaigns cannot be deleted.
func (s *campaignService) Delete(ctx context.Context, organizationID, id string) error {
	campaign, err := s.owned(ctx, organizationID, id)
	if err != nil {
		return err
	}
	if campaign.Status == models.CampaignStatusRunning {
		return models.ErrConflictWithMsg("a running campaign cannot be deleted")
	}

	if err := s.campaignRepo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete campaign",
			zap.String("campaign_id", id),
			zap.Error(err),
		)
		return fmt.Errorf("failed to delete campaign: %w", err)
	}

	s.logger.Info("campaign deleted", zap.String("campaign_id", id))

	return nil
}

// SendCampaign renders the script for each customer, stores pending drops
// and queues one job per drop
func (s *campaignService) SendCampaign(ctx context.Context, organizationID, id string, req *SendCampaignRequest) (*SendCampaignResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	campaign, err := s.owned(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}

	if !campaign.CanBeSent() {
		return nil, models.ErrConflictWithMsg(
			fmt.Sprintf("campaign with status '%s' cannot be sent", campaign.Status),
		)
	}

	seen := make(map[string]bool, len(req.CustomerIDs))
	drops := make([]*models.VoicemailDrop, 0, len(req.CustomerIDs))
	var skipped []string

	for _, customerID := range req.CustomerIDs {
		if seen[customerID] {
			continue
		}
		seen[customerID] = true

		customer, err := s.customerRepo.GetByID(ctx, customerID)
		if err != nil || customer.OrganizationID != organizationID {
			s.logger.Warn("customer not found, skipping",
				zap.String("customer_id", customerID),
				zap.Error(err),
			)
			skipped = append(skipped, customerID)
			continue
		}

		if customer.Status != models.CustomerStatusActive {
			s.logger.Info("customer inactive, skipping", zap.String("customer_id", customerID))
			skipped = append(skipped, customerID)
			continue
		}

		rendered, err := s.scriptSvc.Render(campaign.Script, customer, campaign)
		if err != nil {
			s.logger.Error("failed to render script",
				zap.String("campaign_id", id),
				zap.String("customer_id", customerID),
				zap.Error(err),
			)
			skipped = append(skipped, customerID)
			continue
		}

		drops = append(drops, &models.VoicemailDrop{
			CampaignID:     campaign.ID,
			CustomerID:     customer.ID,
			PhoneNumber:    customer.PhoneNumber,
			Status:         models.DropStatusPending,
			RenderedScript: rendered,
		})
	}

	if len(drops) == 0 {
		return nil, models.ErrInvalidInput("no valid customers found to send voicemail drops")
	}

	if err := s.dropRepo.CreateBatch(ctx, drops); err != nil {
		s.logger.Error("failed to create drops",
			zap.String("campaign_id", id),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to create drops: %w", err)
	}

	// running before publish: workers only complete running campaigns
	if err := s.campaignRepo.UpdateStatus(ctx, campaign.ID, models.CampaignStatusRunning); err != nil {
		s.logger.Error("failed to update campaign status",
			zap.String("campaign_id", id),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to mark campaign running: %w", err)
	}

	queued := 0
	for _, drop := range drops {
		if err := s.queueClient.Publish(ctx, &models.DropJob{DropID: drop.ID}); err != nil {
			s.logger.Error("failed to queue drop",
				zap.String("drop_id", drop.ID),
				zap.Error(err),
			)
			continue
		}
		queued++
	}

	s.logger.Info("campaign sent",
		zap.String("campaign_id", id),
		zap.Int("drops_queued", queued),
		zap.Int("skipped", len(skipped)),
	)

	return &SendCampaignResult{
		CampaignID:  campaign.ID,
		DropsQueued: queued,
		Skipped:     skipped,
		Status:      models.CampaignStatusRunning,
	}, nil
}

// Preview renders the campaign script, or an override, for one customer
func (s *campaignService) Preview(ctx context.Context, organizationID, id string, req *PreviewRequest) (*PreviewResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	campaign, err := s.owned(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}

	customer, err := s.customerRepo.GetByID(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer.OrganizationID != organizationID {
		return nil, models.ErrNotFoundWithMsg(fmt.Sprintf("customer with ID %s not found", req.CustomerID))
	}

	script := campaign.Script
	if req.OverrideScript != nil && *req.OverrideScript != "" {
		script = *req.OverrideScript
		if err := s.scriptSvc.ValidateScript(script); err != nil {
			return nil, err
		}
	}

	rendered, err := s.scriptSvc.Render(script, customer, campaign)
	if err != nil {
		return nil, fmt.Errorf("failed to render script: %w", err)
	}

	return &PreviewResult{
		RenderedScript: rendered,
		UsedScript:     script,
		Customer: &CustomerPreview{
			ID:          customer.ID,
			FirstName:   customer.FirstName,
			LastName:    customer.LastName,
			PhoneNumber: customer.PhoneNumber,
		},
	}, nil
}
