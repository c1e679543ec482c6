package admin

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"gymdesk/internal/tenant/models"
	id "gymdesk/pkg/domain"
	"gymdesk/pkg/platform/sentinel"
)

// InMemory stores admin credentials in a map, indexed by tenant.
type InMemory struct {
	mu       sync.RWMutex
	admins   map[id.AdminID]*models.AdminCredential
	byTenant map[id.TenantID]map[id.AdminID]struct{}
}

func NewInMemory() *InMemory {
	return &InMemory{
		admins:   make(map[id.AdminID]*models.AdminCredential),
		byTenant: make(map[id.TenantID]map[id.AdminID]struct{}),
	}
}

func (s *InMemory) Create(_ context.Context, admin *models.AdminCredential) (id.AdminID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	admin.ID = id.AdminID(uuid.New())
	s.admins[admin.ID] = admin.Clone()
	set, ok := s.byTenant[admin.TenantID]
	if !ok {
		set = make(map[id.AdminID]struct{})
		s.byTenant[admin.TenantID] = set
	}
	set[admin.ID] = struct{}{}
	return admin.ID, nil
}

func (s *InMemory) FindByID(_ context.Context, adminID id.AdminID) (*models.AdminCredential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.admins[adminID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return a.Clone(), nil
}

// ListByTenant returns every credential whose TenantID matches. An unknown tenant yields
// an empty slice.
func (s *InMemory) ListByTenant(_ context.Context, tenantID id.TenantID) ([]*models.AdminCredential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.AdminCredential, 0, len(s.byTenant[tenantID]))
	for adminID := range s.byTenant[tenantID] {
		out = append(out, s.admins[adminID].Clone())
	}
	return out, nil
}

func (s *InMemory) Delete(_ context.Context, adminID id.AdminID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.admins[adminID]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.admins, adminID)
	if set := s.byTenant[a.TenantID]; set != nil {
		delete(set, adminID)
		if len(set) == 0 {
			delete(s.byTenant, a.TenantID)
		}
	}
	return nil
}
