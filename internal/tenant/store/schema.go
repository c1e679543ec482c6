// Package store holds the tenant and admin-credential document stores and the SQL schema
// their Postgres backings share.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schema string

// EnsureSchema creates the tenants and admin_credentials tables when missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply tenant schema: %w", err)
	}
	return nil
}
