package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Raymond9734/voicemail-drop-backend/internal/models"
	"github.com/Raymond9734/voicemail-drop-backend/internal/repository/memory"
)

func newCustomerService(maxBatch int) CustomerService {
	return NewCustomerService(memory.NewDemoDataSource().Customers, maxBatch, zap.NewNop())
}

func TestCustomerService_BulkCreate(t *testing.T) {
	svc := newCustomerService(100)
	ctx := context.Background()

	res, err := svc.BulkCreate(ctx, "org-1", []models.CustomerInput{
		{FirstName: "Ana", LastName: "Lopez", PhoneNumber: "+1 (555) 010-0001"},
		{FirstName: "Ben", LastName: "Okafor", PhoneNumber: "555-010-0002", VehicleInterest: "Kia EV6"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Successfully imported 2 customers", res.Message)
	assert.NotEmpty(t, res.BatchID)
	require.Len(t, res.Customers, 2)
	for _, c := range res.Customers {
		assert.NotEmpty(t, c.ID)
		assert.Equal(t, "org-1", c.OrganizationID)
		assert.Equal(t, models.CustomerStatusActive, c.Status)
	}
}

func TestCustomerService_BulkCreate_RejectsWholeBatch(t *testing.T) {
	svc := newCustomerService(100)
	ctx := context.Background()

	_, err := svc.BulkCreate(ctx, "org-1", []models.CustomerInput{
		{FirstName: "Ana", LastName: "Lopez", PhoneNumber: "+15550100001"},
		{LastName: "Okafor", PhoneNumber: "abc"},
	})
	require.Error(t, err)

	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, models.CodeValidationFailed, appErr.Code)
	assert.Equal(t, []models.RowDetail{
		{Row: 2, Error: "First name is required"},
		{Row: 2, Error: "Invalid phone number format"},
	}, appErr.Details)

	// nothing from the batch was stored
	list, err := svc.List(ctx, models.CustomerFilter{OrganizationID: "org-1", Search: "Lopez"})
	require.NoError(t, err)
	assert.Zero(t, list.Total)
}

func TestCustomerService_BulkCreate_Limits(t *testing.T) {
	svc := newCustomerService(1)
	ctx := context.Background()

	_, err := svc.BulkCreate(ctx, "org-1", nil)
	assert.EqualError(t, err, "no customers provided")

	_, err = svc.BulkCreate(ctx, "org-1", []models.CustomerInput{
		{FirstName: "A", LastName: "B", PhoneNumber: "1"},
		{FirstName: "C", LastName: "D", PhoneNumber: "2"},
	})
	assert.EqualError(t, err, "batch of 2 customers exceeds the limit of 1")
}

func TestCustomerService_BulkCreate_DuplicatePhone(t *testing.T) {
	svc := newCustomerService(100)

	_, err := svc.BulkCreate(context.Background(), "org-1", []models.CustomerInput{
		{FirstName: "Johnny", LastName: "Smith", PhoneNumber: "+1234567890"},
	})
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestCustomerService_CreateAndUpdate(t *testing.T) {
	svc := newCustomerService(100)
	ctx := context.Background()

	c, err := svc.Create(ctx, "org-1", &models.CustomerInput{
		FirstName: "Dana", LastName: "Reyes", PhoneNumber: "+15550100009",
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, "org-1", &models.CustomerInput{FirstName: "Dan", LastName: "Reyes", PhoneNumber: "+15550100009"})
	assert.ErrorIs(t, err, models.ErrConflict)

	// other organizations may reuse the number
	_, err = svc.Create(ctx, "org-2", &models.CustomerInput{FirstName: "Dan", LastName: "Reyes", PhoneNumber: "+15550100009"})
	assert.NoError(t, err)

	_, err = svc.Create(ctx, "org-1", &models.CustomerInput{LastName: "Reyes", PhoneNumber: "x"})
	assert.EqualError(t, err, "First name is required; Invalid phone number format")

	bad := "not a phone"
	_, err = svc.Update(ctx, "org-1", c.ID, &models.CustomerUpdate{PhoneNumber: &bad})
	assert.EqualError(t, err, "Invalid phone number format")

	vehicle := "Mazda CX-5"
	updated, err := svc.Update(ctx, "org-1", c.ID, &models.CustomerUpdate{VehicleInterest: &vehicle})
	require.NoError(t, err)
	assert.Equal(t, "Mazda CX-5", updated.VehicleInterest)
	assert.Equal(t, "Dana", updated.FirstName)

	got, err := svc.GetByID(ctx, "org-1", c.ID)
	require.NoError(t, err)
	assert.Equal(t, "+15550100009", got.PhoneNumber)
}

func TestCustomerService_OrganizationIsolation(t *testing.T) {
	svc := newCustomerService(100)
	ctx := context.Background()
	john := memory.DemoCustomers()[0]

	_, err := svc.GetByID(ctx, "org-2", john.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, "org-2", john.ID), models.ErrNotFound)

	list, err := svc.List(ctx, models.CustomerFilter{OrganizationID: "org-2"})
	require.NoError(t, err)
	assert.Empty(t, list.Customers)
}

func TestCustomerService_List(t *testing.T) {
	svc := newCustomerService(100)

	list, err := svc.List(context.Background(), models.CustomerFilter{
		OrganizationID: "org-1",
		Search:         "JOHN",
	})
	require.NoError(t, err)

	// John Smith and Sarah Johnson
	assert.Equal(t, int64(2), list.Total)
	assert.Equal(t, 1, list.Pagination.Page)
	assert.Equal(t, models.DefaultPageSize, list.Pagination.PageSize)

	_, err = svc.List(context.Background(), models.CustomerFilter{Status: "gone"})
	assert.Error(t, err)
}
