package tenant

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"gymdesk/internal/tenant/models"
	id "gymdesk/pkg/domain"
	"gymdesk/pkg/platform/sentinel"
)

// InMemory is a map-backed tenant store. Every read returns a copy.
type InMemory struct {
	mu      sync.RWMutex
	tenants map[id.TenantID]*models.Tenant
}

func NewInMemory() *InMemory {
	return &InMemory{tenants: make(map[id.TenantID]*models.Tenant)}
}

// Create assigns a fresh ID to tenant and stores it.
func (s *InMemory) Create(_ context.Context, tenant *models.Tenant) (id.TenantID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tenant.ID = id.TenantID(uuid.New())
	s.tenants[tenant.ID] = tenant.Clone()
	return tenant.ID, nil
}

func (s *InMemory) FindByID(_ context.Context, tenantID id.TenantID) (*models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tenants[tenantID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return t.Clone(), nil
}

// Execute runs validate then mutate on the stored tenant while holding the write lock.
func (s *InMemory) Execute(_ context.Context, tenantID id.TenantID, validate func(*models.Tenant) error, mutate func(*models.Tenant)) (*models.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tenants[tenantID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	working := t.Clone()
	if err := validate(working); err != nil {
		return nil, err
	}
	mutate(working)
	s.tenants[tenantID] = working
	return working.Clone(), nil
}

func (s *InMemory) Delete(_ context.Context, tenantID id.TenantID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tenants[tenantID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.tenants, tenantID)
	return nil
}

// Count returns the number of stored tenants.
func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tenants), nil
}
