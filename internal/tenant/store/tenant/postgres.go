package tenant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"gymdesk/internal/tenant/models"
	id "gymdesk/pkg/domain"
	"gymdesk/pkg/platform/sentinel"
	txcontext "gymdesk/pkg/platform/tx"
)

// PostgresStore persists tenants in the tenants table. Writes join the transaction
// carried by ctx, if any.
type PostgresStore struct {
	db     *sql.DB
	runner *txcontext.SQLRunner
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, runner: txcontext.NewSQLRunner(db)}
}

const tenantColumns = `id, name, location, address, phone, email, contact_person, status, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, tenant *models.Tenant) (id.TenantID, error) {
	var newID uuid.UUID
	err := txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx, `
		INSERT INTO tenants (name, location, address, phone, email, contact_person, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`,
		tenant.Name, tenant.Location, tenant.Address, tenant.Phone, tenant.Email,
		tenant.ContactPerson, string(tenant.Status), tenant.CreatedAt, tenant.UpdatedAt,
	).Scan(&newID)
	if err != nil {
		return id.TenantID{}, fmt.Errorf("insert tenant: %w", err)
	}
	tenant.ID = id.TenantID(newID)
	return tenant.ID, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, tenantID id.TenantID) (*models.Tenant, error) {
	row := txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, uuid.UUID(tenantID))
	t, err := scanTenant(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find tenant: %w", err)
	}
	return t, nil
}

// Execute locks the row with FOR UPDATE, runs validate then mutate, and writes the result
// back in the same transaction.
func (s *PostgresStore) Execute(ctx context.Context, tenantID id.TenantID, validate func(*models.Tenant) error, mutate func(*models.Tenant)) (*models.Tenant, error) {
	var result *models.Tenant
	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		exec := txcontext.ExecutorFrom(ctx, s.db)
		t, err := scanTenant(exec.QueryRowContext(ctx,
			`SELECT `+tenantColumns+` FROM tenants WHERE id = $1 FOR UPDATE`, uuid.UUID(tenantID)))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return sentinel.ErrNotFound
			}
			return fmt.Errorf("lock tenant: %w", err)
		}
		if err := validate(t); err != nil {
			return err
		}
		mutate(t)
		_, err = exec.ExecContext(ctx, `
			UPDATE tenants
			SET name = $2, location = $3, address = $4, phone = $5, email = $6,
			    contact_person = $7, status = $8, updated_at = $9
			WHERE id = $1
		`,
			uuid.UUID(t.ID), t.Name, t.Location, t.Address, t.Phone, t.Email,
			t.ContactPerson, string(t.Status), t.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("update tenant: %w", err)
		}
		result = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *PostgresStore) Delete(ctx context.Context, tenantID id.TenantID) error {
	res, err := txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx,
		`DELETE FROM tenants WHERE id = $1`, uuid.UUID(tenantID))
	if err != nil {
		return fmt.Errorf("delete tenant: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete tenant: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM tenants`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count tenants: %w", err)
	}
	return n, nil
}

func scanTenant(row *sql.Row) (*models.Tenant, error) {
	var (
		t      models.Tenant
		rawID  uuid.UUID
		status string
	)
	if err := row.Scan(&rawID, &t.Name, &t.Location, &t.Address, &t.Phone, &t.Email,
		&t.ContactPerson, &status, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.ID = id.TenantID(rawID)
	t.Status = models.TenantStatus(status)
	return &t, nil
}
