package repository

import (
	"context"
	"database/sql"
)

// DataSource groups the repositories a process works against.
// It is chosen once at startup: Postgres, or in-memory demo fixtures.
type DataSource struct {
	Customers CustomerRepository
	Campaigns CampaignRepository
	Drops     VoicemailDropRepository

	// Health reports store reachability; nil means there is nothing to check
	Health func(ctx context.Context) error
}

// NewPostgres builds a DataSource backed by PostgreSQL
func NewPostgres(db *sql.DB) DataSource {
	return DataSource{
		Customers: NewCustomerRepository(db),
		Campaigns: NewCampaignRepository(db),
		Drops:     NewVoicemailDropRepository(db),
		Health:    db.PingContext,
	}
}
