package worker

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/Raymond9734/voicemail-drop-backend/internal/models"
	"github.com/Raymond9734/voicemail-drop-backend/internal/repository"
	"github.com/Raymond9734/voicemail-drop-backend/internal/repository/memory"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var errCarrier = errors.New("carrier busy")

// scriptedProvider fails the first failures calls, then succeeds
type scriptedProvider struct {
	mu       sync.Mutex
	failures int
	calls    []Delivery
}

func (s *scriptedProvider) Deliver(ctx context.Context, d Delivery) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, d)
	if s.failures > 0 {
		s.failures--
		return "", errCarrier
	}
	return "VM-test", nil
}

type recordingPublisher struct {
	jobs []models.DropJob
}

func (r *recordingPublisher) Publish(ctx context.Context, job *models.DropJob) error {
	r.jobs = append(r.jobs, *job)
	return nil
}

// setup seeds a running campaign with one pending drop per demo customer given
func setup(t *testing.T, customers int) (repository.DataSource, []*models.VoicemailDrop) {
	t.Helper()

	ds := memory.NewDemoDataSource()
	ctx := context.Background()
	campaign := memory.DemoCampaigns()[0]

	var drops []*models.VoicemailDrop
	for _, c := range memory.DemoCustomers()[:customers] {
		drops = append(drops, &models.VoicemailDrop{
			CampaignID:     campaign.ID,
			CustomerID:     c.ID,
			PhoneNumber:    c.PhoneNumber,
			Status:         models.DropStatusPending,
			RenderedScript: "Hi " + c.FirstName,
		})
	}
	require.NoError(t, ds.Drops.CreateBatch(ctx, drops))
	require.NoError(t, ds.Campaigns.UpdateStatus(ctx, campaign.ID, models.CampaignStatusRunning))

	return ds, drops
}

func TestDropProcessor_Success(t *testing.T) {
	ds, drops := setup(t, 1)
	provider := &scriptedProvider{}
	p := NewDropProcessor(ds, provider, nil, 3, zap.NewNop())
	fixed := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }
	ctx := context.Background()

	require.NoError(t, p.Process(ctx, &models.DropJob{DropID: drops[0].ID}))

	got, err := ds.Drops.GetByID(ctx, drops[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.DropStatusDelivered, got.Status)
	require.NotNil(t, got.ProviderSID)
	assert.Equal(t, "VM-test", *got.ProviderSID)
	require.NotNil(t, got.DeliveredAt)
	assert.True(t, got.DeliveredAt.Equal(fixed))

	require.Len(t, provider.calls, 1)
	assert.Equal(t, "professional_male", provider.calls[0].VoiceID)
	assert.Equal(t, "Hi John", provider.calls[0].Script)

	campaign, err := ds.Campaigns.GetByID(ctx, drops[0].CampaignID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStatusCompleted, campaign.Status)
}

func TestDropProcessor_RetryThenDeliver(t *testing.T) {
	ds, drops := setup(t, 1)
	pub := &recordingPublisher{}
	p := NewDropProcessor(ds, &scriptedProvider{failures: 1}, pub, 3, zap.NewNop())
	ctx := context.Background()
	job := &models.DropJob{DropID: drops[0].ID}

	err := p.Process(ctx, job)
	require.ErrorIs(t, err, errCarrier)
	assert.Equal(t, []models.DropJob{*job}, pub.jobs)

	got, err := ds.Drops.GetByID(ctx, drops[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.DropStatusPending, got.Status)
	assert.Equal(t, 1, got.RetryCount)
	require.NotNil(t, got.LastError)
	assert.Equal(t, "carrier busy", *got.LastError)

	campaign, err := ds.Campaigns.GetByID(ctx, drops[0].CampaignID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStatusRunning, campaign.Status)

	require.NoError(t, p.Process(ctx, job))
	got, err = ds.Drops.GetByID(ctx, drops[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.DropStatusDelivered, got.Status)
	assert.Nil(t, got.LastError)
}

func TestDropProcessor_PermanentFailure(t *testing.T) {
	ds, drops := setup(t, 1)
	pub := &recordingPublisher{}
	p := NewDropProcessor(ds, &scriptedProvider{failures: 10}, pub, 2, zap.NewNop())
	ctx := context.Background()
	job := &models.DropJob{DropID: drops[0].ID}

	assert.Error(t, p.Process(ctx, job))
	assert.NoError(t, p.Process(ctx, job), "the final attempt settles the drop")
	assert.Len(t, pub.jobs, 1)

	got, err := ds.Drops.GetByID(ctx, drops[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.DropStatusFailed, got.Status)
	assert.Equal(t, 2, got.RetryCount)
	require.NotNil(t, got.LastError)
	assert.True(t, strings.HasPrefix(*got.LastError, "max retries exceeded"))

	// nothing was delivered
	campaign, err := ds.Campaigns.GetByID(ctx, drops[0].CampaignID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStatusFailed, campaign.Status)

	// a redelivered job for a settled drop is ignored
	assert.NoError(t, p.Process(ctx, job))
}

func TestDropProcessor_CampaignWaitsForPendingDrops(t *testing.T) {
	ds, drops := setup(t, 2)
	p := NewDropProcessor(ds, &scriptedProvider{}, nil, 3, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, p.Process(ctx, &models.DropJob{DropID: drops[0].ID}))

	stats, err := ds.Campaigns.GetWithStats(ctx, drops[0].CampaignID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStatusRunning, stats.Status)
	assert.Equal(t, models.CampaignStats{Total: 2, Pending: 1, Delivered: 1}, stats.Stats)

	require.NoError(t, p.Process(ctx, &models.DropJob{DropID: drops[1].ID}))

	stats, err = ds.Campaigns.GetWithStats(ctx, drops[0].CampaignID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStatusCompleted, stats.Status)
}

func TestDropProcessor_CancelledDeliveryStaysPending(t *testing.T) {
	ds, drops := setup(t, 1)
	p := NewDropProcessor(ds, NewSimulatedProvider(1, time.Hour, time.Hour), nil, 3, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, p.Process(ctx, &models.DropJob{DropID: drops[0].ID}), context.Canceled)

	got, err := ds.Drops.GetByID(context.Background(), drops[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.DropStatusPending, got.Status)
	assert.Zero(t, got.RetryCount)
}

func TestDropProcessor_UnknownDrop(t *testing.T) {
	ds, _ := setup(t, 1)
	p := NewDropProcessor(ds, &scriptedProvider{}, nil, 3, zap.NewNop())

	err := p.Process(context.Background(), &models.DropJob{DropID: "missing"})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSimulatedProvider(t *testing.T) {
	ctx := context.Background()
	d := Delivery{DropID: "d1", PhoneNumber: "+1234567890"}

	sid, err := NewSimulatedProvider(1, 0, 0).Deliver(ctx, d)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sid, "VM"))
	assert.Len(t, sid, 2+26)

	_, err = NewSimulatedProvider(0, 0, 0).Deliver(ctx, d)
	assert.ErrorIs(t, err, ErrDeliveryFailed)

	p := NewSimulatedProvider(7, 0, 0).(*simulatedProvider)
	assert.Equal(t, DefaultSuccessRate, p.successRate)
}
