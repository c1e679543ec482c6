// Package domain holds typed identifiers shared across bounded contexts.
//
// Each ID is a distinct named type over uuid.UUID so a tenant identifier can never be
// passed where an admin-credential identifier is expected.
package domain

import (
	"github.com/google/uuid"

	dErrors "gymdesk/pkg/domain-errors"
)

type (
	TenantID uuid.UUID
	AdminID  uuid.UUID
)

func (id TenantID) String() string { return uuid.UUID(id).String() }
func (id TenantID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id AdminID) String() string { return uuid.UUID(id).String() }
func (id AdminID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id TenantID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id AdminID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }

func (id *TenantID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *AdminID) UnmarshalText(b []byte) error  { return (*uuid.UUID)(id).UnmarshalText(b) }

// NewTenantID generates a random tenant identifier.
func NewTenantID() TenantID { return TenantID(uuid.New()) }

// NewAdminID generates a random admin-credential identifier.
func NewAdminID() AdminID { return AdminID(uuid.New()) }

func ParseTenantID(s string) (TenantID, error) {
	u, err := parseUUID(s, "tenant ID")
	return TenantID(u), err
}

func ParseAdminID(s string) (AdminID, error) {
	u, err := parseUUID(s, "admin ID")
	return AdminID(u), err
}

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+label)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return u, nil
}
