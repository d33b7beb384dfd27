package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Raymond9734/voicemail-drop-backend/internal/db"
	"github.com/Raymond9734/voicemail-drop-backend/internal/models"
)

// CustomerRepository defines the interface for customer data access
type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	CreateBatch(ctx context.Context, customers []*models.Customer) error
	GetByID(ctx context.Context, id string) (*models.Customer, error)
	GetByPhone(ctx context.Context, organizationID, phone string) (*models.Customer, error)
	List(ctx context.Context, filter models.CustomerFilter) ([]*models.Customer, int64, error)
	Update(ctx context.Context, customer *models.Customer) error
	Delete(ctx context.Context, id string) error
}

// customerRepository implements CustomerRepository using PostgreSQL
type customerRepository struct {
	db *sql.DB
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *sql.DB) CustomerRepository {
	return &customerRepository{db: db}
}

const customerColumns = `id, organization_id, first_name, last_name, phone_number, email,
	vehicle_interest, last_contact, notes, tags, status, created_at, updated_at`

func scanCustomer(row interface{ Scan(...interface{}) error }) (*models.Customer, error) {
	c := &models.Customer{}
	err := row.Scan(
		&c.ID,
		&c.OrganizationID,
		&c.FirstName,
		&c.LastName,
		&c.PhoneNumber,
		&c.Email,
		&c.VehicleInterest,
		&c.LastContact,
		&c.Notes,
		pq.Array(&c.Tags),
		&c.Status,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

// prepareNew assigns an id and timestamps to a customer about to be inserted
func prepareNew(c *models.Customer, now time.Time) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = models.CustomerStatusActive
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	c.CreatedAt = now
	c.UpdatedAt = now
}

func duplicatePhone(phone string) error {
	return models.ErrConflictWithMsg(fmt.Sprintf("customer with phone %s already exists", phone))
}

// Create inserts a new customer
func (r *customerRepository) Create(ctx context.Context, customer *models.Customer) error {
	prepareNew(customer, time.Now().UTC())

	query := `
		INSERT INTO customers (` + customerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.ExecContext(
		ctx,
		query,
		customer.ID,
		customer.OrganizationID,
		customer.FirstName,
		customer.LastName,
		customer.PhoneNumber,
		customer.Email,
		customer.VehicleInterest,
		customer.LastContact,
		customer.Notes,
		pq.StringArray(customer.Tags),
		customer.Status,
		customer.CreatedAt,
		customer.UpdatedAt,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return duplicatePhone(customer.PhoneNumber)
		}
		return fmt.Errorf("failed to create customer: %w", err)
	}

	return nil
}

// CreateBatch inserts all customers with COPY inside one transaction.
// Either every row is stored or none is.
func (r *customerRepository) CreateBatch(ctx context.Context, customers []*models.Customer) error {
	if len(customers) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("customers",
		"id", "organization_id", "first_name", "last_name", "phone_number", "email",
		"vehicle_interest", "last_contact", "notes", "tags", "status", "created_at", "updated_at",
	))
	if err != nil {
		return fmt.Errorf("failed to prepare copy: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, c := range customers {
		prepareNew(c, now)
		_, err := stmt.ExecContext(ctx,
			c.ID,
			c.OrganizationID,
			c.FirstName,
			c.LastName,
			c.PhoneNumber,
			c.Email,
			c.VehicleInterest,
			c.LastContact,
			c.Notes,
			pq.StringArray(c.Tags),
			c.Status,
			c.CreatedAt,
			c.UpdatedAt,
		)
		if err != nil {
			if db.IsUniqueViolation(err) {
				return models.ErrConflictWithMsg("one or more phone numbers already exist")
			}
			return fmt.Errorf("failed to copy customer: %w", err)
		}
	}

	// flush buffered rows; constraint violations surface here
	if _, err := stmt.ExecContext(ctx); err != nil {
		if db.IsUniqueViolation(err) {
			return models.ErrConflictWithMsg("one or more phone numbers already exist")
		}
		return fmt.Errorf("failed to flush customer copy: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a customer by ID
func (r *customerRepository) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, models.ErrNotFoundWithMsg(fmt.Sprintf("customer with ID %s not found", id))
	}

	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	customer, err := scanCustomer(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFoundWithMsg(fmt.Sprintf("customer with ID %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	return customer, nil
}

// GetByPhone retrieves a customer of an organization by phone number
func (r *customerRepository) GetByPhone(ctx context.Context, organizationID, phone string) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + `
		FROM customers
		WHERE organization_id = $1 AND phone_number = $2`

	customer, err := scanCustomer(r.db.QueryRowContext(ctx, query, organizationID, phone))
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFoundWithMsg(fmt.Sprintf("customer with phone %s not found", phone))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer by phone: %w", err)
	}

	return customer, nil
}

// List retrieves customers with pagination and filtering
func (r *customerRepository) List(ctx context.Context, filter models.CustomerFilter) ([]*models.Customer, int64, error) {
	models.ValidateAndSetDefaults(&filter.Page, &filter.PageSize)

	where := ` WHERE organization_id = $1`
	args := []interface{}{filter.OrganizationID}
	argPos := 2

	if filter.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, filter.Status)
		argPos++
	}

	if s := strings.TrimSpace(filter.Search); s != "" {
		where += fmt.Sprintf(
			" AND (first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d OR phone_number LIKE $%d)",
			argPos, argPos, argPos, argPos,
		)
		args = append(args, "%"+s+"%")
		argPos++
	}

	var totalCount int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`+where, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count customers: %w", err)
	}

	offset := models.CalculateOffset(filter.Page, filter.PageSize)
	query := `SELECT ` + customerColumns + ` FROM customers` + where +
		fmt.Sprintf(" ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, filter.PageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	customers := []*models.Customer{}
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, customer)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating customers: %w", err)
	}

	return customers, totalCount, nil
}

// Update updates an existing customer
func (r *customerRepository) Update(ctx context.Context, customer *models.Customer) error {
	customer.UpdatedAt = time.Now().UTC()
	if customer.Tags == nil {
		customer.Tags = []string{}
	}

	query := `
		UPDATE customers
		SET first_name = $1, last_name = $2, phone_number = $3, email = $4,
			vehicle_interest = $5, last_contact = $6, notes = $7, tags = $8,
			status = $9, updated_at = $10
		WHERE id = $11`

	result, err := r.db.ExecContext(
		ctx,
		query,
		customer.FirstName,
		customer.LastName,
		customer.PhoneNumber,
		customer.Email,
		customer.VehicleInterest,
		customer.LastContact,
		customer.Notes,
		pq.StringArray(customer.Tags),
		customer.Status,
		customer.UpdatedAt,
		customer.ID,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return duplicatePhone(customer.PhoneNumber)
		}
		return fmt.Errorf("failed to update customer: %w", err)
	}

	return expectOne(result, fmt.Sprintf("customer with ID %s not found", customer.ID))
}

// Delete removes a customer
func (r *customerRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return models.ErrNotFoundWithMsg(fmt.Sprintf("customer with ID %s not found", id))
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}

	return expectOne(result, fmt.Sprintf("customer with ID %s not found", id))
}

// expectOne turns a zero-row update or delete into a not found error
func expectOne(result sql.Result, notFound string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return models.ErrNotFoundWithMsg(notFound)
	}

	return nil
}
