// Package tenant wires gym onboarding and lifecycle: stores, services and the admin HTTP handler.
package tenant

import (
	"database/sql"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"gymdesk/internal/tenant/handler"
	"gymdesk/internal/tenant/service"
	adminstore "gymdesk/internal/tenant/store/admin"
	tenantstore "gymdesk/internal/tenant/store/tenant"
	txcontext "gymdesk/pkg/platform/tx"
)

type (
	// Coordinator runs the registration saga.
	Coordinator = service.RegistrationCoordinator
	// Lifecycle toggles and deletes tenants.
	Lifecycle = service.LifecycleManager
	// Handler wires HTTP endpoints to the tenant services.
	Handler = handler.Handler
)

// Stores is one backing for tenants and admin credentials. Tx is nil unless the backing
// supports multi-record transactions.
type Stores struct {
	Backend string
	Tenants service.TenantStore
	Admins  service.AdminStore
	Tx      service.StoreTx
}

func MemoryStores() Stores {
	return Stores{Backend: "memory", Tenants: tenantstore.NewInMemory(), Admins: adminstore.NewInMemory()}
}

func PostgresStores(db *sql.DB) Stores {
	return Stores{
		Backend: "postgres",
		Tenants: tenantstore.NewPostgres(db),
		Admins:  adminstore.NewPostgres(db),
		Tx:      txcontext.NewSQLRunner(db),
	}
}

func RedisStores(client *redis.Client) Stores {
	return Stores{Backend: "redis", Tenants: tenantstore.NewRedis(client), Admins: adminstore.NewRedis(client)}
}

// NewHandler builds both services over stores and returns the HTTP handler for them.
func NewHandler(stores Stores, notifier service.Notifier, logger *slog.Logger, opts ...service.Option) (*Handler, error) {
	if stores.Tx != nil {
		opts = append(opts, service.WithTx(stores.Tx))
	}
	coordinator, err := service.NewRegistrationCoordinator(stores.Tenants, stores.Admins, notifier, opts...)
	if err != nil {
		return nil, err
	}
	lifecycle, err := service.NewLifecycleManager(stores.Tenants, stores.Admins, opts...)
	if err != nil {
		return nil, err
	}
	return handler.New(coordinator, lifecycle, logger), nil
}
