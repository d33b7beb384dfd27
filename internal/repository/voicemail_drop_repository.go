package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Raymond9734/voicemail-drop-backend/internal/models"
)

// VoicemailDropRepository defines the interface for voicemail drop data access
type VoicemailDropRepository interface {
	CreateBatch(ctx context.Context, drops []*models.VoicemailDrop) error
	GetByID(ctx context.Context, id string) (*models.VoicemailDrop, error)
	ListByCampaign(ctx context.Context, campaignID string) ([]*models.VoicemailDrop, error)
	RecordResult(ctx context.Context, id string, result models.DropResult) error
	IncrementRetryCount(ctx context.Context, id string) error
}

// voicemailDropRepository implements VoicemailDropRepository using PostgreSQL
type voicemailDropRepository struct {
	db *sql.DB
}

// NewVoicemailDropRepository creates a new voicemail drop repository
func NewVoicemailDropRepository(db *sql.DB) VoicemailDropRepository {
	return &voicemailDropRepository{db: db}
}

const dropColumns = `id, campaign_id, customer_id, phone_number, status, rendered_script,
	provider_sid, last_error, retry_count, delivered_at, created_at, updated_at`

func scanDrop(row interface{ Scan(...interface{}) error }) (*models.VoicemailDrop, error) {
	d := &models.VoicemailDrop{}
	err := row.Scan(
		&d.ID,
		&d.CampaignID,
		&d.CustomerID,
		&d.PhoneNumber,
		&d.Status,
		&d.RenderedScript,
		&d.ProviderSID,
		&d.LastError,
		&d.RetryCount,
		&d.DeliveredAt,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	return d, err
}

func dropNotFound(id string) error {
	return models.ErrNotFoundWithMsg(fmt.Sprintf("voicemail drop with ID %s not found", id))
}

// CreateBatch inserts multiple drops in a single transaction
func (r *voicemailDropRepository) CreateBatch(ctx context.Context, drops []*models.VoicemailDrop) error {
	if len(drops) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO voicemail_drops (id, campaign_id, customer_id, phone_number, status,
			rendered_script, retry_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, drop := range drops {
		if drop.ID == "" {
			drop.ID = uuid.NewString()
		}
		if drop.Status == "" {
			drop.Status = models.DropStatusPending
		}
		drop.CreatedAt = now
		drop.UpdatedAt = now

		_, err := stmt.ExecContext(
			ctx,
			drop.ID,
			drop.CampaignID,
			drop.CustomerID,
			drop.PhoneNumber,
			drop.Status,
			drop.RenderedScript,
			drop.RetryCount,
			drop.CreatedAt,
			drop.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert drop: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a drop by ID
func (r *voicemailDropRepository) GetByID(ctx context.Context, id string) (*models.VoicemailDrop, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, dropNotFound(id)
	}

	query := `SELECT ` + dropColumns + ` FROM voicemail_drops WHERE id = $1`

	drop, err := scanDrop(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, dropNotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get voicemail drop: %w", err)
	}

	return drop, nil
}

// ListByCampaign returns every drop of a campaign, oldest first
func (r *voicemailDropRepository) ListByCampaign(ctx context.Context, campaignID string) ([]*models.VoicemailDrop, error) {
	query := `SELECT ` + dropColumns + `
		FROM voicemail_drops
		WHERE campaign_id = $1
		ORDER BY created_at ASC, id`

	rows, err := r.db.QueryContext(ctx, query, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to list voicemail drops: %w", err)
	}
	defer rows.Close()

	drops := []*models.VoicemailDrop{}
	for rows.Next() {
		drop, err := scanDrop(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan voicemail drop: %w", err)
		}
		drops = append(drops, drop)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating voicemail drops: %w", err)
	}

	return drops, nil
}

// RecordResult stores the outcome of a delivery attempt
func (r *voicemailDropRepository) RecordResult(ctx context.Context, id string, res models.DropResult) error {
	query := `
		UPDATE voicemail_drops
		SET status = $1, provider_sid = COALESCE($2, provider_sid), last_error = $3,
			delivered_at = $4, updated_at = NOW()
		WHERE id = $5`

	result, err := r.db.ExecContext(ctx, query, res.Status, res.ProviderSID, res.LastError, res.DeliveredAt, id)
	if err != nil {
		return fmt.Errorf("failed to record drop result: %w", err)
	}

	return expectOne(result, fmt.Sprintf("voicemail drop with ID %s not found", id))
}

// IncrementRetryCount increments the retry count for a drop
func (r *voicemailDropRepository) IncrementRetryCount(ctx context.Context, id string) error {
	query := `
		UPDATE voicemail_drops
		SET retry_count = retry_count + 1, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to increment retry count: %w", err)
	}

	return expectOne(result, fmt.Sprintf("voicemail drop with ID %s not found", id))
}
