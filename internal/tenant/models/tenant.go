package models

import (
	"time"

	id "gymdesk/pkg/domain"
	dErrors "gymdesk/pkg/domain-errors"
)

// Tenant is one gym on the platform.
//
// Invariants:
//   - Status is either active or inactive
//   - Status transitions: active ↔ inactive only, and only through the lifecycle manager
//   - CreatedAt is immutable after construction
//   - ID is assigned by the store on create
type Tenant struct {
	ID            id.TenantID  `json:"id"`
	Name          string       `json:"name"`
	Location      string       `json:"location"`
	Address       string       `json:"address"`
	Phone         string       `json:"phone"`
	Email         string       `json:"email"`
	ContactPerson string       `json:"contact_person"`
	Status        TenantStatus `json:"status"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// TenantProfile is the descriptive part of a tenant captured at registration.
type TenantProfile struct {
	Name          string
	Location      string
	Address       string
	Phone         string
	Email         string
	ContactPerson string
}

// NewTenant builds an active tenant without an ID; the store assigns one on create.
func NewTenant(profile TenantProfile, now time.Time) *Tenant {
	return &Tenant{
		Name:          profile.Name,
		Location:      profile.Location,
		Address:       profile.Address,
		Phone:         profile.Phone,
		Email:         profile.Email,
		ContactPerson: profile.ContactPerson,
		Status:        TenantStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}

// CanToggle checks that the tenant is in a state a toggle can leave.
// Use with ApplyToggle in Execute callbacks.
func (t *Tenant) CanToggle() error {
	if _, ok := t.Status.Opposite(); !ok {
		return dErrors.New(dErrors.CodeInvariantViolation, "tenant has unknown status "+string(t.Status))
	}
	return nil
}

// ApplyToggle flips the status. No other field changes, UpdatedAt included.
// Call CanToggle first.
func (t *Tenant) ApplyToggle() {
	if next, ok := t.Status.Opposite(); ok {
		t.Status = next
	}
}

// Clone returns a copy safe to hand out of a store.
func (t *Tenant) Clone() *Tenant {
	c := *t
	return &c
}
