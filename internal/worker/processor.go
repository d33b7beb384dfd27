// Package worker delivers queued voicemail drops and settles campaign status.
package worker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Raymond9734/voicemail-drop-backend/internal/models"
	"github.com/Raymond9734/voicemail-drop-backend/internal/repository"
)

// Publisher puts a job back on the queue
type Publisher interface {
	Publish(ctx context.Context, job *models.DropJob) error
}

// DropProcessor processes drop jobs from the queue
type DropProcessor struct {
	dropRepo     repository.VoicemailDropRepository
	campaignRepo repository.CampaignRepository
	provider     VoicemailProvider
	requeue      Publisher
	maxRetries   int
	logger       *zap.Logger
	now          func() time.Time
}

// NewDropProcessor creates a new drop processor. A nil requeue leaves
// retryable drops pending without scheduling another attempt.
func NewDropProcessor(
	ds repository.DataSource,
	provider VoicemailProvider,
	requeue Publisher,
	maxRetries int,
	logger *zap.Logger,
) *DropProcessor {
	if maxRetries < 1 {
		maxRetries = 1
	}

	return &DropProcessor{
		dropRepo:     ds.Drops,
		campaignRepo: ds.Campaigns,
		provider:     provider,
		requeue:      requeue,
		maxRetries:   maxRetries,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Process handles a single drop job. It matches queue.DropHandler.
func (p *DropProcessor) Process(ctx context.Context, job *models.DropJob) error {
	drop, err := p.dropRepo.GetByID(ctx, job.DropID)
	if err != nil {
		p.logger.Error("failed to fetch drop",
			zap.String("drop_id", job.DropID),
			zap.Error(err),
		)
		return fmt.Errorf("failed to fetch drop: %w", err)
	}

	// redelivered jobs for settled drops are dropped
	if drop.Status != models.DropStatusPending {
		p.logger.Info("drop already settled, skipping",
			zap.String("drop_id", drop.ID),
			zap.String("status", drop.Status),
		)
		return nil
	}

	campaign, err := p.campaignRepo.GetByID(ctx, drop.CampaignID)
	if err != nil {
		p.logger.Error("failed to fetch campaign",
			zap.String("campaign_id", drop.CampaignID),
			zap.Error(err),
		)
		return fmt.Errorf("failed to fetch campaign: %w", err)
	}

	p.logger.Info("delivering drop",
		zap.String("drop_id", drop.ID),
		zap.String("campaign_id", campaign.ID),
		zap.String("phone", drop.PhoneNumber),
		zap.Int("attempt", drop.RetryCount+1),
	)

	sid, err := p.provider.Deliver(ctx, Delivery{
		DropID:      drop.ID,
		PhoneNumber: drop.PhoneNumber,
		Script:      drop.RenderedScript,
		VoiceID:     campaign.VoiceID,
		CallerID:    campaign.CallerID,
	})
	if err != nil {
		// shutdown, not a carrier failure: leave the drop pending
		if ctx.Err() != nil {
			return ctx.Err()
		}

		p.logger.Warn("drop delivery failed",
			zap.String("drop_id", drop.ID),
			zap.Int("retry_count", drop.RetryCount),
			zap.Error(err),
		)
		return p.handleFailure(ctx, drop, err)
	}

	return p.handleSuccess(ctx, drop, sid)
}

// handleSuccess marks the drop delivered
func (p *DropProcessor) handleSuccess(ctx context.Context, drop *models.VoicemailDrop, sid string) error {
	deliveredAt := p.now()
	err := p.dropRepo.RecordResult(ctx, drop.ID, models.DropResult{
		Status:      models.DropStatusDelivered,
		ProviderSID: &sid,
		DeliveredAt: &deliveredAt,
	})
	if err != nil {
		p.logger.Error("failed to record delivery",
			zap.String("drop_id", drop.ID),
			zap.Error(err),
		)
		return fmt.Errorf("failed to record delivery: %w", err)
	}

	p.logger.Info("drop delivered",
		zap.String("drop_id", drop.ID),
		zap.String("provider_sid", sid),
	)

	p.updateCampaignStatusIfComplete(ctx, drop.CampaignID)

	return nil
}

// handleFailure counts the attempt and either schedules a retry or fails the drop for good
func (p *DropProcessor) handleFailure(ctx context.Context, drop *models.VoicemailDrop, deliverErr error) error {
	if err := p.dropRepo.IncrementRetryCount(ctx, drop.ID); err != nil {
		p.logger.Error("failed to increment retry count",
			zap.String("drop_id", drop.ID),
			zap.Error(err),
		)
		return err
	}

	attempts := drop.RetryCount + 1

	if attempts >= p.maxRetries {
		p.logger.Error("drop permanently failed after max retries",
			zap.String("drop_id", drop.ID),
			zap.Int("retry_count", attempts),
			zap.Int("max_retries", p.maxRetries),
		)

		errMsg := fmt.Sprintf("max retries exceeded: %s", deliverErr.Error())
		if err := p.dropRepo.RecordResult(ctx, drop.ID, models.DropResult{
			Status:    models.DropStatusFailed,
			LastError: &errMsg,
		}); err != nil {
			p.logger.Error("failed to record drop failure",
				zap.String("drop_id", drop.ID),
				zap.Error(err),
			)
			return err
		}

		p.updateCampaignStatusIfComplete(ctx, drop.CampaignID)

		return nil
	}

	errMsg := deliverErr.Error()
	if err := p.dropRepo.RecordResult(ctx, drop.ID, models.DropResult{
		Status:    models.DropStatusPending,
		LastError: &errMsg,
	}); err != nil {
		p.logger.Error("failed to record drop error",
			zap.String("drop_id", drop.ID),
			zap.Error(err),
		)
		return err
	}

	if p.requeue != nil {
		if err := p.requeue.Publish(ctx, &models.DropJob{DropID: drop.ID}); err != nil {
			p.logger.Error("failed to requeue drop",
				zap.String("drop_id", drop.ID),
				zap.Error(err),
			)
		}
	}

	p.logger.Info("drop will be retried",
		zap.String("drop_id", drop.ID),
		zap.Int("retry_count", attempts),
		zap.Int("max_retries", p.maxRetries),
	)

	return fmt.Errorf("delivery failed, retry %d/%d: %w", attempts, p.maxRetries, deliverErr)
}

// updateCampaignStatusIfComplete settles a running campaign once no drop is pending
func (p *DropProcessor) updateCampaignStatusIfComplete(ctx context.Context, campaignID string) {
	campaign, err := p.campaignRepo.GetWithStats(ctx, campaignID)
	if err != nil {
		p.logger.Error("failed to get campaign stats",
			zap.String("campaign_id", campaignID),
			zap.Error(err),
		)
		return
	}

	if campaign.Status != models.CampaignStatusRunning {
		return
	}

	if campaign.Stats.Pending > 0 {
		p.logger.Debug("campaign still has pending drops",
			zap.String("campaign_id", campaignID),
			zap.Int64("pending", campaign.Stats.Pending),
		)
		return
	}

	newStatus := models.CampaignStatusCompleted
	if campaign.Stats.Delivered == 0 {
		newStatus = models.CampaignStatusFailed
	}

	if err := p.campaignRepo.UpdateStatus(ctx, campaignID, newStatus); err != nil {
		p.logger.Error("failed to update campaign status",
			zap.String("campaign_id", campaignID),
			zap.String("new_status", newStatus),
			zap.Error(err),
		)
		return
	}

	p.logger.Info("campaign status updated",
		zap.String("campaign_id", campaignID),
		zap.String("status", newStatus),
		zap.Int64("total", campaign.Stats.Total),
		zap.Int64("delivered", campaign.Stats.Delivered),
		zap.Int64("failed", campaign.Stats.Failed),
	)
}
