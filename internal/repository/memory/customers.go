package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Raymond9734/voicemail-drop-backend/internal/models"
)

type customerRepository struct {
	s *Store
}

func customerNotFound(id string) error {
	return models.ErrNotFoundWithMsg(fmt.Sprintf("customer with ID %s not found", id))
}

// phoneTaken must be called with the lock held
func (r *customerRepository) phoneTaken(organizationID, phone, exceptID string) bool {
	for _, c := range r.s.customers {
		if c.ID != exceptID && c.OrganizationID == organizationID && c.PhoneNumber == phone {
			return true
		}
	}
	return false
}

// insert must be called with the write lock held
func (r *customerRepository) insert(c *models.Customer) {
	now := r.s.now()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = models.CustomerStatusActive
	}
	c.CreatedAt = now
	c.UpdatedAt = now
	r.s.customers[c.ID] = cloneCustomer(c)
}

func (r *customerRepository) Create(ctx context.Context, customer *models.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.phoneTaken(customer.OrganizationID, customer.PhoneNumber, "") {
		return models.ErrConflictWithMsg(fmt.Sprintf("customer with phone %s already exists", customer.PhoneNumber))
	}
	r.insert(customer)
	return nil
}

func (r *customerRepository) CreateBatch(ctx context.Context, customers []*models.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	seen := make(map[string]bool, len(customers))
	for _, c := range customers {
		key := c.OrganizationID + "\x00" + c.PhoneNumber
		if seen[key] || r.phoneTaken(c.OrganizationID, c.PhoneNumber, "") {
			return models.ErrConflictWithMsg("one or more phone numbers already exist")
		}
		seen[key] = true
	}

	for _, c := range customers {
		r.insert(c)
	}
	return nil
}

func (r *customerRepository) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.customers[id]
	if !ok {
		return nil, customerNotFound(id)
	}
	return cloneCustomer(c), nil
}

func (r *customerRepository) GetByPhone(ctx context.Context, organizationID, phone string) (*models.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, c := range r.s.customers {
		if c.OrganizationID == organizationID && c.PhoneNumber == phone {
			return cloneCustomer(c), nil
		}
	}
	return nil, models.ErrNotFoundWithMsg(fmt.Sprintf("customer with phone %s not found", phone))
}

func (r *customerRepository) List(ctx context.Context, filter models.CustomerFilter) ([]*models.Customer, int64, error) {
	models.ValidateAndSetDefaults(&filter.Page, &filter.PageSize)

	r.s.mu.RLock()
	matched := []*models.Customer{}
	for _, c := range r.s.customers {
		if filter.Matches(c) {
			matched = append(matched, cloneCustomer(c))
		}
	}
	r.s.mu.RUnlock()

	sortCustomers(matched)
	start, end := models.PageBounds(filter.Page, filter.PageSize, len(matched))
	return matched[start:end], int64(len(matched)), nil
}

func (r *customerRepository) Update(ctx context.Context, customer *models.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.customers[customer.ID]
	if !ok {
		return customerNotFound(customer.ID)
	}
	if r.phoneTaken(existing.OrganizationID, customer.PhoneNumber, customer.ID) {
		return models.ErrConflictWithMsg(fmt.Sprintf("customer with phone %s already exists", customer.PhoneNumber))
	}

	customer.OrganizationID = existing.OrganizationID
	customer.CreatedAt = existing.CreatedAt
	customer.UpdatedAt = r.s.now()
	r.s.customers[customer.ID] = cloneCustomer(customer)
	return nil
}

func (r *customerRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.customers[id]; !ok {
		return customerNotFound(id)
	}
	delete(r.s.customers, id)
	for dropID, d := range r.s.drops {
		if d.CustomerID == id {
			delete(r.s.drops, dropID)
		}
	}
	return nil
}
