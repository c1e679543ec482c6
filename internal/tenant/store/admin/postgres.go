package admin

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"gymdesk/internal/tenant/models"
	id "gymdesk/pkg/domain"
	"gymdesk/pkg/platform/sentinel"
	txcontext "gymdesk/pkg/platform/tx"
)

// PostgresStore persists credentials in admin_credentials. Writes join the transaction
// carried by ctx, if any.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const adminColumns = `id, username, password, name, email, phone, role, tenant_id, created_at`

func (s *PostgresStore) Create(ctx context.Context, admin *models.AdminCredential) (id.AdminID, error) {
	var newID uuid.UUID
	err := txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx, `
		INSERT INTO admin_credentials (username, password, name, email, phone, role, tenant_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`,
		admin.Username, admin.Password, admin.Name, admin.Email, admin.Phone,
		admin.Role, uuid.UUID(admin.TenantID), admin.CreatedAt,
	).Scan(&newID)
	if err != nil {
		return id.AdminID{}, fmt.Errorf("insert admin credential: %w", err)
	}
	admin.ID = id.AdminID(newID)
	return admin.ID, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, adminID id.AdminID) (*models.AdminCredential, error) {
	rows, err := txcontext.ExecutorFrom(ctx, s.db).QueryContext(ctx,
		`SELECT `+adminColumns+` FROM admin_credentials WHERE id = $1`, uuid.UUID(adminID))
	if err != nil {
		return nil, fmt.Errorf("find admin credential: %w", err)
	}
	admins, err := scanAdmins(rows)
	if err != nil {
		return nil, err
	}
	if len(admins) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return admins[0], nil
}

func (s *PostgresStore) ListByTenant(ctx context.Context, tenantID id.TenantID) ([]*models.AdminCredential, error) {
	rows, err := txcontext.ExecutorFrom(ctx, s.db).QueryContext(ctx,
		`SELECT `+adminColumns+` FROM admin_credentials WHERE tenant_id = $1 ORDER BY created_at`,
		uuid.UUID(tenantID))
	if err != nil {
		return nil, fmt.Errorf("list admin credentials: %w", err)
	}
	return scanAdmins(rows)
}

func (s *PostgresStore) Delete(ctx context.Context, adminID id.AdminID) error {
	res, err := txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx,
		`DELETE FROM admin_credentials WHERE id = $1`, uuid.UUID(adminID))
	if err != nil {
		return fmt.Errorf("delete admin credential: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete admin credential: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// DeleteMany removes the given credentials in one statement and reports how many rows went.
func (s *PostgresStore) DeleteMany(ctx context.Context, adminIDs []id.AdminID) (int, error) {
	if len(adminIDs) == 0 {
		return 0, nil
	}
	raw := make([]string, len(adminIDs))
	for i, a := range adminIDs {
		raw[i] = a.String()
	}
	res, err := txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx,
		`DELETE FROM admin_credentials WHERE id = ANY($1::uuid[])`, pq.Array(raw))
	if err != nil {
		return 0, fmt.Errorf("delete admin credentials: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete admin credentials: %w", err)
	}
	return int(n), nil
}

func scanAdmins(rows *sql.Rows) ([]*models.AdminCredential, error) {
	defer rows.Close()
	var out []*models.AdminCredential
	for rows.Next() {
		var (
			a        models.AdminCredential
			adminID  uuid.UUID
			tenantID uuid.UUID
		)
		if err := rows.Scan(&adminID, &a.Username, &a.Password, &a.Name, &a.Email, &a.Phone,
			&a.Role, &tenantID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan admin credential: %w", err)
		}
		a.ID = id.AdminID(adminID)
		a.TenantID = id.TenantID(tenantID)
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate admin credentials: %w", err)
	}
	return out, nil
}
