package models

import (
	"time"

	id "gymdesk/pkg/domain"
)

// RoleTenantAdmin is the only role issued during onboarding.
const RoleTenantAdmin = "tenant_admin"

// AdminCredential is a tenant administrator's login.
//
// Password is stored and transmitted in plaintext so the initial password can be
// delivered over SMS. It is never serialized in API responses.
type AdminCredential struct {
	ID        id.AdminID  `json:"id"`
	Username  string      `json:"username"`
	Password  string      `json:"-"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Phone     string      `json:"phone"`
	Role      string      `json:"role"`
	TenantID  id.TenantID `json:"tenant_id"`
	CreatedAt time.Time   `json:"created_at"`
}

// AdminProfile is copied verbatim onto an issued credential.
type AdminProfile struct {
	Name  string
	Email string
	Phone string
}

func (a *AdminCredential) Clone() *AdminCredential {
	c := *a
	return &c
}
