// Package memory is an in-process DataSource used for demo mode and tests.
// Records are copied on the way in and out so callers never share state.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/Raymond9734/voicemail-drop-backend/internal/models"
	"github.com/Raymond9734/voicemail-drop-backend/internal/repository"
)

// Store holds every record behind one lock
type Store struct {
	mu        sync.RWMutex
	customers map[string]*models.Customer
	campaigns map[string]*models.Campaign
	drops     map[string]*models.VoicemailDrop
	now       func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		customers: make(map[string]*models.Customer),
		campaigns: make(map[string]*models.Campaign),
		drops:     make(map[string]*models.VoicemailDrop),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// NewDataSource returns repositories backed by a fresh store
func NewDataSource() repository.DataSource {
	return NewStore().DataSource()
}

// NewDemoDataSource returns repositories pre-loaded with the demo fixtures
func NewDemoDataSource() repository.DataSource {
	s := NewStore()
	s.Seed(DemoCustomers(), DemoCampaigns())
	return s.DataSource()
}

// DataSource exposes the store through the repository interfaces
func (s *Store) DataSource() repository.DataSource {
	return repository.DataSource{
		Customers: &customerRepository{s: s},
		Campaigns: &campaignRepository{s: s},
		Drops:     &dropRepository{s: s},
	}
}

// Seed loads fixtures as-is
func (s *Store) Seed(customers []models.Customer, campaigns []models.Campaign) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range customers {
		c := cloneCustomer(&customers[i])
		s.customers[c.ID] = c
	}
	for i := range campaigns {
		c := campaigns[i]
		s.campaigns[c.ID] = &c
	}
}

func cloneCustomer(c *models.Customer) *models.Customer {
	out := *c
	if c.Tags != nil {
		out.Tags = append([]string(nil), c.Tags...)
	}
	return &out
}

func cloneDrop(d *models.VoicemailDrop) *models.VoicemailDrop {
	out := *d
	if d.ProviderSID != nil {
		sid := *d.ProviderSID
		out.ProviderSID = &sid
	}
	if d.LastError != nil {
		msg := *d.LastError
		out.LastError = &msg
	}
	if d.DeliveredAt != nil {
		at := *d.DeliveredAt
		out.DeliveredAt = &at
	}
	return &out
}

// newestFirst orders by creation time descending, then id
func newestFirst(created func(i int) (time.Time, string)) func(i, j int) bool {
	return func(i, j int) bool {
		ti, idi := created(i)
		tj, idj := created(j)
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return idi < idj
	}
}

func sortCustomers(cs []*models.Customer) {
	sort.SliceStable(cs, newestFirst(func(i int) (time.Time, string) {
		return cs[i].CreatedAt, cs[i].ID
	}))
}

func sortCampaigns(cs []*models.Campaign) {
	sort.SliceStable(cs, newestFirst(func(i int) (time.Time, string) {
		return cs[i].CreatedAt, cs[i].ID
	}))
}
