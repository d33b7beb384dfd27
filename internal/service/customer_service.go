package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/Raymond9734/voicemail-drop-backend/internal/csvimport"
	"github.com/Raymond9734/voicemail-drop-backend/internal/models"
	"github.com/Raymond9734/voicemail-drop-backend/internal/repository"
	"github.com/Raymond9734/voicemail-drop-backend/internal/validation"
)

// firstBatchRow numbers bulk payload entries from 1
const firstBatchRow = 1

// CustomerService handles customer business logic
type CustomerService interface {
	Create(ctx context.Context, organizationID string, in *models.CustomerInput) (*models.Customer, error)
	GetByID(ctx context.Context, organizationID, id string) (*models.Customer, error)
	List(ctx context.Context, filter models.CustomerFilter) (*CustomerListResult, error)
	Update(ctx context.Context, organizationID, id string, upd *models.CustomerUpdate) (*models.Customer, error)
	Delete(ctx context.Context, organizationID, id string) error
	BulkCreate(ctx context.Context, organizationID string, inputs []models.CustomerInput) (*csvimport.BulkResult, error)
}

type customerService struct {
	customerRepo repository.CustomerRepository
	maxBatchSize int
	logger       *zap.Logger
}

// NewCustomerService creates a new customer service
func NewCustomerService(
	customerRepo repository.CustomerRepository,
	maxBatchSize int,
	logger *zap.Logger,
) CustomerService {
	return &customerService{
		customerRepo: customerRepo,
		maxBatchSize: maxBatchSize,
		logger:       logger,
	}
}

// fieldErrors turns single-record validation failures into one input error
func fieldErrors(errs []validation.FieldError) error {
	if len(errs) == 0 {
		return nil
	}
	return models.ErrInvalidInput(strings.Join(validation.Messages(errs), "; "))
}

// Create creates a new customer
func (s *customerService) Create(ctx context.Context, organizationID string, in *models.CustomerInput) (*models.Customer, error) {
	if err := fieldErrors(validation.Customer(in)); err != nil {
		return nil, err
	}

	if existing, err := s.customerRepo.GetByPhone(ctx, organizationID, in.PhoneNumber); err == nil {
		return nil, models.ErrConflictWithMsg(fmt.Sprintf(
			"customer with phone number %s already exists (%s)", in.PhoneNumber, existing.ID,
		))
	}

	customer := in.ToCustomer(organizationID)
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		s.logger.Error("failed to create customer",
			zap.String("organization_id", organizationID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	s.logger.Info("customer created",
		zap.String("customer_id", customer.ID),
		zap.String("organization_id", organizationID),
	)

	return customer, nil
}

// GetByID retrieves a customer owned by the organization
func (s *customerService) GetByID(ctx context.Context, organizationID, id string) (*models.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// other organizations' customers are indistinguishable from missing ones
	if customer.OrganizationID != organizationID {
		return nil, models.ErrNotFoundWithMsg(fmt.Sprintf("customer with ID %s not found", id))
	}

	return customer, nil
}

// List retrieves customers with pagination
func (s *customerService) List(ctx context.Context, filter models.CustomerFilter) (*CustomerListResult, error) {
	if filter.Status != "" && filter.Status != models.CustomerStatusActive && filter.Status != models.CustomerStatusInactive {
		return nil, models.ErrInvalidInput(fmt.Sprintf("invalid status filter %q", filter.Status))
	}

	customers, totalCount, err := s.customerRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	models.ValidateAndSetDefaults(&filter.Page, &filter.PageSize)

	return &CustomerListResult{
		Customers:  customers,
		Total:      totalCount,
		Pagination: models.NewPaginationResult(filter.Page, filter.PageSize, totalCount),
	}, nil
}

// Update applies a partial update and re-validates the merged record
func (s *customerService) Update(ctx context.Context, organizationID, id string, upd *models.CustomerUpdate) (*models.Customer, error) {
	customer, err := s.GetByID(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}

	merged := upd.Apply(customer)
	if err := fieldErrors(validation.Customer(&merged)); err != nil {
		return nil, err
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		s.logger.Error("failed to update customer",
			zap.String("customer_id", id),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}

	s.logger.Info("customer updated", zap.String("customer_id", id))

	return customer, nil
}

// Delete removes a customer
func (s *customerService) Delete(ctx context.Context, organizationID, id string) error {
	if _, err := s.GetByID(ctx, organizationID, id); err != nil {
		return err
	}

	if err := s.customerRepo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete customer",
			zap.String("customer_id", id),
			zap.Error(err),
		)
		return fmt.Errorf("failed to delete customer: %w", err)
	}

	s.logger.Info("customer deleted", zap.String("customer_id", id))

	return nil
}

// BulkCreate re-validates every record with the shared rule set and inserts
// them as one batch. Any failing record rejects the whole batch.
func (s *customerService) BulkCreate(ctx context.Context, organizationID string, inputs []models.CustomerInput) (*csvimport.BulkResult, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "customers.bulk_create")
	defer span.End()

	batchID := ulid.Make().String()
	span.SetAttributes(
		attribute.String("batch.id", batchID),
		attribute.String("organization.id", organizationID),
		attribute.Int("batch.size", len(inputs)),
	)

	if len(inputs) == 0 {
		return nil, models.ErrInvalidInput("no customers provided")
	}
	if s.maxBatchSize > 0 && len(inputs) > s.maxBatchSize {
		return nil, models.ErrInvalidInput(fmt.Sprintf(
			"batch of %d customers exceeds the limit of %d", len(inputs), s.maxBatchSize,
		))
	}

	_, rowErrs := validation.Rows(inputs, firstBatchRow)
	if len(rowErrs) > 0 {
		span.SetAttributes(attribute.Int("batch.rejected_rows", len(rowErrs)))
		span.SetStatus(codes.Error, "validation failed")
		s.logger.Info("bulk import rejected",
			zap.String("batch_id", batchID),
			zap.Int("errors", len(rowErrs)),
		)
		return nil, models.ErrValidationFailed("Validation failed", validation.Details(rowErrs))
	}

	customers := make([]*models.Customer, len(inputs))
	for i := range inputs {
		customers[i] = inputs[i].ToCustomer(organizationID)
	}

	if err := s.customerRepo.CreateBatch(ctx, customers); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		s.logger.Error("bulk import failed",
			zap.String("batch_id", batchID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to import customers: %w", err)
	}

	created := make([]models.Customer, len(customers))
	for i, c := range customers {
		created[i] = *c
	}

	s.logger.Info("bulk import completed",
		zap.String("batch_id", batchID),
		zap.String("organization_id", organizationID),
		zap.Int("count", len(created)),
	)

	return &csvimport.BulkResult{
		BatchID:   batchID,
		Message:   fmt.Sprintf("Successfully imported %d customers", len(created)),
		Customers: created,
	}, nil
}

// Submitter adapts the service to the csv uploader for one organization
func Submitter(svc CustomerService, organizationID string) csvimport.Submitter {
	return submitter{svc: svc, organizationID: organizationID}
}

type submitter struct {
	svc            CustomerService
	organizationID string
}

func (s submitter) BulkCreate(ctx context.Context, customers []models.CustomerInput) (*csvimport.BulkResult, error) {
	return s.svc.BulkCreate(ctx, s.organizationID, customers)
}
