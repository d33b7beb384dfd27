package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Raymond9734/voicemail-drop-backend/internal/models"
)

// CampaignRepository defines the interface for campaign data access
type CampaignRepository interface {
	Create(ctx context.Context, campaign *models.Campaign) error
	GetByID(ctx context.Context, id string) (*models.Campaign, error)
	GetWithStats(ctx context.Context, id string) (*models.CampaignWithStats, error)
	List(ctx context.Context, filter models.CampaignFilter) ([]*models.Campaign, int64, error)
	Update(ctx context.Context, campaign *models.Campaign) error
	UpdateStatus(ctx context.Context, id string, status string) error
	Delete(ctx context.Context, id string) error
}

// campaignRepository implements CampaignRepository using PostgreSQL
type campaignRepository struct {
	db *sql.DB
}

// NewCampaignRepository creates a new campaign repository
func NewCampaignRepository(db *sql.DB) CampaignRepository {
	return &campaignRepository{db: db}
}

const campaignColumns = `id, organization_id, name, script, status, voice_id, caller_id,
	dealership, sales_rep, scheduled_at, delivery_window_start, delivery_window_end,
	time_zone, created_at, updated_at`

func scanCampaign(row interface{ Scan(...interface{}) error }) (*models.Campaign, error) {
	c := &models.Campaign{}
	err := row.Scan(
		&c.ID,
		&c.OrganizationID,
		&c.Name,
		&c.Script,
		&c.Status,
		&c.VoiceID,
		&c.CallerID,
		&c.Dealership,
		&c.SalesRep,
		&c.ScheduledAt,
		&c.DeliveryWindowStart,
		&c.DeliveryWindowEnd,
		&c.TimeZone,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

func campaignNotFound(id string) error {
	return models.ErrNotFoundWithMsg(fmt.Sprintf("campaign with ID %s not found", id))
}

// Create inserts a new campaign
func (r *campaignRepository) Create(ctx context.Context, campaign *models.Campaign) error {
	now := time.Now().UTC()
	if campaign.ID == "" {
		campaign.ID = uuid.NewString()
	}
	campaign.CreatedAt = now
	campaign.UpdatedAt = now

	query := `
		INSERT INTO campaigns (` + campaignColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.db.ExecContext(
		ctx,
		query,
		campaign.ID,
		campaign.OrganizationID,
		campaign.Name,
		campaign.Script,
		campaign.Status,
		campaign.VoiceID,
		campaign.CallerID,
		campaign.Dealership,
		campaign.SalesRep,
		campaign.ScheduledAt,
		campaign.DeliveryWindowStart,
		campaign.DeliveryWindowEnd,
		campaign.TimeZone,
		campaign.CreatedAt,
		campaign.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create campaign: %w", err)
	}

	return nil
}

// GetByID retrieves a campaign by ID
func (r *campaignRepository) GetByID(ctx context.Context, id string) (*models.Campaign, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, campaignNotFound(id)
	}

	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1`

	campaign, err := scanCampaign(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, campaignNotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}

	return campaign, nil
}

// GetWithStats retrieves a campaign with drop statistics
func (r *campaignRepository) GetWithStats(ctx context.Context, id string) (*models.CampaignWithStats, error) {
	campaign, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	statsQuery := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'pending') AS pending,
			COUNT(*) FILTER (WHERE status = 'delivered') AS delivered,
			COUNT(*) FILTER (WHERE status = 'failed') AS failed
		FROM voicemail_drops
		WHERE campaign_id = $1`

	var stats models.CampaignStats
	err = r.db.QueryRowContext(ctx, statsQuery, id).Scan(
		&stats.Total,
		&stats.Pending,
		&stats.Delivered,
		&stats.Failed,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign stats: %w", err)
	}

	return &models.CampaignWithStats{
		Campaign: *campaign,
		Stats:    stats,
	}, nil
}

// List retrieves campaigns with pagination and filtering
func (r *campaignRepository) List(ctx context.Context, filter models.CampaignFilter) ([]*models.Campaign, int64, error) {
	models.ValidateAndSetDefaults(&filter.Page, &filter.PageSize)

	where := ` WHERE organization_id = $1`
	args := []interface{}{filter.OrganizationID}
	argPos := 2

	if filter.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, filter.Status)
		argPos++
	}

	var totalCount int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM campaigns`+where, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count campaigns: %w", err)
	}

	offset := models.CalculateOffset(filter.Page, filter.PageSize)
	query := `SELECT ` + campaignColumns + ` FROM campaigns` + where +
		fmt.Sprintf(" ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, filter.PageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list campaigns: %w", err)
	}
	defer rows.Close()

	campaigns := []*models.Campaign{}
	for rows.Next() {
		campaign, err := scanCampaign(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan campaign: %w", err)
		}
		campaigns = append(campaigns, campaign)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating campaigns: %w", err)
	}

	return campaigns, totalCount, nil
}

// Update updates an existing campaign
func (r *campaignRepository) Update(ctx context.Context, campaign *models.Campaign) error {
	campaign.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE campaigns
		SET name = $1, script = $2, status = $3, voice_id = $4, caller_id = $5,
			dealership = $6, sales_rep = $7, scheduled_at = $8,
			delivery_window_start = $9, delivery_window_end = $10, time_zone = $11,
			updated_at = $12
		WHERE id = $13`

	result, err := r.db.ExecContext(
		ctx,
		query,
		campaign.Name,
		campaign.Script,
		campaign.Status,
		campaign.VoiceID,
		campaign.CallerID,
		campaign.Dealership,
		campaign.SalesRep,
		campaign.ScheduledAt,
		campaign.DeliveryWindowStart,
		campaign.DeliveryWindowEnd,
		campaign.TimeZone,
		campaign.UpdatedAt,
		campaign.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update campaign: %w", err)
	}

	return expectOne(result, fmt.Sprintf("campaign with ID %s not found", campaign.ID))
}

// UpdateStatus updates only the status of a campaign
func (r *campaignRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	query := `
		UPDATE campaigns
		SET status = $1, updated_at = NOW()
		WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update campaign status: %w", err)
	}

	return expectOne(result, fmt.Sprintf("campaign with ID %s not found", id))
}

// Delete removes a campaign and, by cascade, its drops
func (r *campaignRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return campaignNotFound(id)
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete campaign: %w", err)
	}

	return expectOne(result, fmt.Sprintf("campaign with ID %s not found", id))
}
