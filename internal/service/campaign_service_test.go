package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Raymond9734/voicemail-drop-backend/internal/models"
	"github.com/Raymond9734/voicemail-drop-backend/internal/queue"
	"github.com/Raymond9734/voicemail-drop-backend/internal/repository"
	"github.com/Raymond9734/voicemail-drop-backend/internal/repository/memory"
)

// mockCampaignRepository serves List from a slice, in the order given
type mockCampaignRepository struct {
	campaigns []*models.Campaign
}

func (m *mockCampaignRepository) Create(ctx context.Context, campaign *models.Campaign) error {
	campaign.ID = fmt.Sprintf("c-%d", len(m.campaigns)+1)
	m.campaigns = append(m.campaigns, campaign)
	return nil
}

func (m *mockCampaignRepository) GetByID(ctx context.Context, id string) (*models.Campaign, error) {
	for _, c := range m.campaigns {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, models.ErrNotFoundWithMsg("campaign not found")
}

func (m *mockCampaignRepository) GetWithStats(ctx context.Context, id string) (*models.CampaignWithStats, error) {
	campaign, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.CampaignWithStats{Campaign: *campaign}, nil
}

func (m *mockCampaignRepository) List(ctx context.Context, filter models.CampaignFilter) ([]*models.Campaign, int64, error) {
	filtered := []*models.Campaign{}
	for _, c := range m.campaigns {
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		filtered = append(filtered, c)
	}

	models.ValidateAndSetDefaults(&filter.Page, &filter.PageSize)
	start, end := models.PageBounds(filter.Page, filter.PageSize, len(filtered))

	return filtered[start:end], int64(len(filtered)), nil
}

func (m *mockCampaignRepository) Update(ctx context.Context, campaign *models.Campaign) error {
	return nil
}

func (m *mockCampaignRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	c, err := m.GetByID(ctx, id)
	if err != nil {
		return err
	}
	c.Status = status
	return nil
}

func (m *mockCampaignRepository) Delete(ctx context.Context, id string) error {
	return nil
}

// recordingQueue captures published jobs
type recordingQueue struct {
	mu   sync.Mutex
	jobs []models.DropJob
	err  error
}

func (q *recordingQueue) Publish(ctx context.Context, job *models.DropJob) error {
	if q.err != nil {
		return q.err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, *job)
	return nil
}

func (q *recordingQueue) Consume(ctx context.Context, handler queue.DropHandler, concurrency int) error {
	<-ctx.Done()
	return ctx.Err()
}

func (q *recordingQueue) Close() error                     { return nil }
func (q *recordingQueue) Health(ctx context.Context) error { return nil }

func (q *recordingQueue) Len(ctx context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.jobs)), nil
}

func TestCampaignService_List_Pagination(t *testing.T) {
	tests := []struct {
		name           string
		totalCampaigns int
		page           int
		pageSize       int
		wantCount      int
		wantTotalCount int64
		wantTotalPages int
	}{
		{"first page", 50, 1, 20, 20, 50, 3},
		{"last page (partial)", 50, 3, 20, 10, 50, 3},
		{"page beyond last (empty)", 50, 10, 20, 0, 50, 3},
		{"zero page defaults to 1", 30, 0, 10, 10, 30, 3},
		{"zero page size defaults to 20", 50, 1, 0, 20, 50, 3},
		{"page size over 100 capped at 100", 150, 1, 200, 100, 150, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mockCampaignRepository{
				campaigns: make([]*models.Campaign, tt.totalCampaigns),
			}
			for i := 0; i < tt.totalCampaigns; i++ {
				mockRepo.campaigns[i] = &models.Campaign{
					ID:     fmt.Sprintf("c-%d", i+1),
					Name:   fmt.Sprintf("Campaign %d", i+1),
					Status: models.CampaignStatusPending,
				}
			}

			svc := &campaignService{campaignRepo: mockRepo}

			result, err := svc.List(context.Background(), models.CampaignFilter{
				Page:     tt.page,
				PageSize: tt.pageSize,
			})
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}

			if len(result.Campaigns) != tt.wantCount {
				t.Errorf("List() returned %d campaigns, want %d", len(result.Campaigns), tt.wantCount)
			}
			if result.Pagination.TotalCount != tt.wantTotalCount {
				t.Errorf("List() TotalCount = %d, want %d", result.Pagination.TotalCount, tt.wantTotalCount)
			}
			if result.Pagination.TotalPages != tt.wantTotalPages {
				t.Errorf("List() TotalPages = %d, want %d", result.Pagination.TotalPages, tt.wantTotalPages)
			}
		})
	}
}

func TestCampaignService_List_InvalidStatus(t *testing.T) {
	svc := &campaignService{campaignRepo: &mockCampaignRepository{}}
	_, err := svc.List(context.Background(), models.CampaignFilter{Status: "sent"})
	assert.Error(t, err)
}

func newCampaignService(t *testing.T) (CampaignService, *recordingQueue) {
	t.Helper()
	q := &recordingQueue{}
	return NewCampaignService(memory.NewDemoDataSource(), NewScriptService(), q, zap.NewNop()), q
}

func TestCampaignService_Create_DerivesStatus(t *testing.T) {
	svc, _ := newCampaignService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, "org-1", &models.CampaignInput{
		Name:   "Weekend",
		Script: "Hi [First Name], come see us this weekend.",
	})
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStatusPending, c.Status)
	assert.Equal(t, "org-1", c.OrganizationID)

	_, err = svc.Create(ctx, "org-1", &models.CampaignInput{Name: "Short", Script: "Hi"})
	assert.EqualError(t, err, "Script must be at least 10 characters")

	_, err = svc.Create(ctx, "org-1", &models.CampaignInput{Name: "Bad", Script: "Hi [Nickname], welcome back!"})
	assert.ErrorContains(t, err, "invalid placeholders: [Nickname]")
}

func TestCampaignService_SendCampaign(t *testing.T) {
	svc, q := newCampaignService(t)
	ctx := context.Background()
	campaign := memory.DemoCampaigns()[0]
	customers := memory.DemoCustomers()

	result, err := svc.SendCampaign(ctx, "org-1", campaign.ID, &SendCampaignRequest{
		CustomerIDs: []string{customers[0].ID, customers[1].ID, customers[0].ID, "missing"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.DropsQueued)
	assert.Equal(t, []string{"missing"}, result.Skipped)
	assert.Equal(t, models.CampaignStatusRunning, result.Status)
	assert.Len(t, q.jobs, 2)

	got, err := svc.GetByID(ctx, "org-1", campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStatusRunning, got.Status)
	assert.Equal(t, models.CampaignStats{Total: 2, Pending: 2}, got.Stats)

	// a running campaign cannot be sent twice
	_, err = svc.SendCampaign(ctx, "org-1", campaign.ID, &SendCampaignRequest{CustomerIDs: []string{customers[2].ID}})
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestCampaignService_SendCampaign_Rejects(t *testing.T) {
	svc, q := newCampaignService(t)
	ctx := context.Background()
	campaigns := memory.DemoCampaigns()
	customers := memory.DemoCustomers()

	_, err := svc.SendCampaign(ctx, "org-1", campaigns[0].ID, &SendCampaignRequest{})
	assert.Error(t, err)

	_, err = svc.SendCampaign(ctx, "org-1", campaigns[0].ID, &SendCampaignRequest{CustomerIDs: []string{"nope"}})
	assert.Error(t, err)

	_, err = svc.SendCampaign(ctx, "org-1", campaigns[2].ID, &SendCampaignRequest{CustomerIDs: []string{customers[0].ID}})
	assert.ErrorIs(t, err, models.ErrConflict, "completed campaigns cannot be sent")

	_, err = svc.SendCampaign(ctx, "org-2", campaigns[0].ID, &SendCampaignRequest{CustomerIDs: []string{customers[0].ID}})
	assert.ErrorIs(t, err, models.ErrNotFound)

	assert.Empty(t, q.jobs)
}

// statusFailingRepository refuses every status change
type statusFailingRepository struct {
	repository.CampaignRepository
}

func (r statusFailingRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	return errors.New("connection reset")
}

func TestCampaignService_SendCampaign_StatusUpdateFails(t *testing.T) {
	ds := memory.NewDemoDataSource()
	ds.Campaigns = statusFailingRepository{ds.Campaigns}
	q := &recordingQueue{}
	svc := NewCampaignService(ds, NewScriptService(), q, zap.NewNop())
	ctx := context.Background()
	campaign := memory.DemoCampaigns()[0]

	_, err := svc.SendCampaign(ctx, "org-1", campaign.ID, &SendCampaignRequest{
		CustomerIDs: []string{memory.DemoCustomers()[0].ID},
	})
	assert.ErrorContains(t, err, "connection reset")
	assert.Empty(t, q.jobs, "no job may be queued for a campaign that is not running")

	got, err := ds.Campaigns.GetByID(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStatusPending, got.Status)
}

func TestCampaignService_Preview(t *testing.T) {
	svc, _ := newCampaignService(t)
	ctx := context.Background()
	campaign := memory.DemoCampaigns()[0]
	john := memory.DemoCustomers()[0]

	res, err := svc.Preview(ctx, "org-1", campaign.ID, &PreviewRequest{CustomerID: john.ID})
	require.NoError(t, err)
	assert.Contains(t, res.RenderedScript, "Hi John, this is Alex from Downtown Motors")
	assert.Equal(t, campaign.Script, res.UsedScript)
	assert.Equal(t, john.PhoneNumber, res.Customer.PhoneNumber)

	override := "Hey [Customer Name], the [Vehicle] is waiting."
	res, err = svc.Preview(ctx, "org-1", campaign.ID, &PreviewRequest{CustomerID: john.ID, OverrideScript: &override})
	require.NoError(t, err)
	assert.Equal(t, "Hey John Smith, the Toyota Camry is waiting.", res.RenderedScript)

	bad := "Hey [Nickname]"
	_, err = svc.Preview(ctx, "org-1", campaign.ID, &PreviewRequest{CustomerID: john.ID, OverrideScript: &bad})
	assert.Error(t, err)

	_, err = svc.Preview(ctx, "org-1", campaign.ID, &PreviewRequest{})
	assert.Error(t, err)
}

func TestCampaignService_DeleteRunning(t *testing.T) {
	svc, _ := newCampaignService(t)
	ctx := context.Background()
	campaign := memory.DemoCampaigns()[0]

	_, err := svc.SendCampaign(ctx, "org-1", campaign.ID, &SendCampaignRequest{
		CustomerIDs: []string{memory.DemoCustomers()[0].ID},
	})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, "org-1", campaign.ID), models.ErrConflict)
	assert.NoError(t, svc.Delete(ctx, "org-1", memory.DemoCampaigns()[2].ID))
}
