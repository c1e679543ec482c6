package service

import (
	"context"
	"errors"
	"fmt"

	"gymdesk/internal/tenant/models"
	id "gymdesk/pkg/domain"
	dErrors "gymdesk/pkg/domain-errors"
	"gymdesk/pkg/platform/sentinel"
	"gymdesk/pkg/requestcontext"
)

// bulkAdminDeleter is implemented by stores that can drop many credentials in one statement.
type bulkAdminDeleter interface {
	DeleteMany(ctx context.Context, adminIDs []id.AdminID) (int, error)
}

// DeleteResult reports what a tenant deletion removed.
type DeleteResult struct {
	TenantID      id.TenantID `json:"tenant_id"`
	AdminsDeleted int         `json:"admins_deleted"`
}

// LifecycleManager handles operations on tenants that already exist.
type LifecycleManager struct {
	tenants TenantStore
	admins  AdminStore
	cfg     *serviceConfig
}

func NewLifecycleManager(tenants TenantStore, admins AdminStore, opts ...Option) (*LifecycleManager, error) {
	if tenants == nil {
		return nil, errors.New("tenant store is required")
	}
	if admins == nil {
		return nil, errors.New("admin store is required")
	}
	return &LifecycleManager{tenants: tenants, admins: admins, cfg: newServiceConfig(opts)}, nil
}

func (m *LifecycleManager) GetTenant(ctx context.Context, tenantID id.TenantID) (*models.Tenant, error) {
	if err := requireTenantID(tenantID); err != nil {
		return nil, err
	}
	tenant, err := m.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return nil, wrapTenantErr(err, "load tenant")
	}
	return tenant, nil
}

// ToggleStatus flips a tenant between active and inactive. Only Status changes.
//
// Uses the Execute callback pattern: the store holds its lock (mutex, FOR UPDATE or WATCH)
// across validation and mutation.
func (m *LifecycleManager) ToggleStatus(ctx context.Context, tenantID id.TenantID) (*models.Tenant, error) {
	if err := requireTenantID(tenantID); err != nil {
		return nil, err
	}

	var previous models.TenantStatus
	tenant, err := m.tenants.Execute(ctx, tenantID,
		func(t *models.Tenant) error {
			previous = t.Status
			return t.CanToggle()
		},
		func(t *models.Tenant) {
			t.ApplyToggle()
		},
	)
	if err != nil {
		return nil, wrapTenantErr(err, "toggle tenant status")
	}

	m.logAudit(ctx, "tenant_status_toggled",
		"tenant_id", tenant.ID.String(),
		"from", previous.String(),
		"to", tenant.Status.String(),
	)
	if m.cfg.metrics != nil {
		m.cfg.metrics.IncrementStatusToggle()
	}
	return tenant, nil
}

// DeleteTenant removes every admin credential of the tenant, then the tenant itself.
//
// Credentials are swept even when the tenant record is already gone, so admins left
// behind by a partial rollback can still be cleared. not_found is returned only when
// neither a tenant nor any credential exists for the id.
//
// The sweep runs inside the configured StoreTx. With a SQL transaction the cascade is atomic.
// Without one, a failure partway returns a store_error saying how many credentials were
// already removed.
func (m *LifecycleManager) DeleteTenant(ctx context.Context, tenantID id.TenantID) (*DeleteResult, error) {
	if err := requireTenantID(tenantID); err != nil {
		return nil, err
	}

	result := &DeleteResult{TenantID: tenantID}
	err := m.cfg.tx.RunInTx(ctx, func(txCtx context.Context) error {
		result.AdminsDeleted = 0
		tenantExists := true
		if _, err := m.tenants.FindByID(txCtx, tenantID); err != nil {
			if !errors.Is(err, sentinel.ErrNotFound) {
				return wrapTenantErr(err, "load tenant")
			}
			tenantExists = false
		}

		admins, err := m.admins.ListByTenant(txCtx, tenantID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeStore, "failed to list admin credentials")
		}
		if !tenantExists && len(admins) == 0 {
			return dErrors.New(dErrors.CodeNotFound, "tenant not found")
		}

		deleted, err := m.deleteAdmins(txCtx, admins)
		result.AdminsDeleted = deleted
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeStore,
				fmt.Sprintf("failed to delete admin credentials (%d of %d removed)", deleted, len(admins)))
		}
		if !tenantExists {
			return nil
		}

		if err := m.tenants.Delete(txCtx, tenantID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeStore,
				fmt.Sprintf("failed to delete tenant (%d admin credentials removed)", deleted))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logAudit(ctx, "tenant_deleted",
		"tenant_id", tenantID.String(),
		"admins_deleted", result.AdminsDeleted,
	)
	if m.cfg.metrics != nil {
		m.cfg.metrics.IncrementTenantDeleted()
	}
	return result, nil
}

// deleteAdmins removes admins and reports how many are gone. A credential that has already
// disappeared counts as removed.
func (m *LifecycleManager) deleteAdmins(ctx context.Context, admins []*models.AdminCredential) (int, error) {
	if len(admins) == 0 {
		return 0, nil
	}
	if bulk, ok := m.admins.(bulkAdminDeleter); ok {
		ids := make([]id.AdminID, len(admins))
		for i, a := range admins {
			ids[i] = a.ID
		}
		if _, err := bulk.DeleteMany(ctx, ids); err != nil {
			return 0, err
		}
		return len(admins), nil
	}

	deleted := 0
	for _, a := range admins {
		if err := m.admins.Delete(ctx, a.ID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

func (m *LifecycleManager) logAudit(ctx context.Context, event string, attributes ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", event, "log_type", "audit")
	m.cfg.logger.InfoContext(ctx, event, args...)
}
