package models

// TenantStatus is the activation state of a tenant.
type TenantStatus string

const (
	TenantStatusActive   TenantStatus = "active"
	TenantStatusInactive TenantStatus = "inactive"
)

func (s TenantStatus) IsValid() bool {
	return s == TenantStatusActive || s == TenantStatusInactive
}

// Opposite returns the status a toggle moves to. Unknown statuses have no opposite.
func (s TenantStatus) Opposite() (TenantStatus, bool) {
	switch s {
	case TenantStatusActive:
		return TenantStatusInactive, true
	case TenantStatusInactive:
		return TenantStatusActive, true
	default:
		return "", false
	}
}

func (s TenantStatus) String() string {
	return string(s)
}
