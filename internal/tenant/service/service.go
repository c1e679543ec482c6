// Package service implements tenant onboarding and lifecycle.
//
// RegistrationCoordinator runs the onboarding saga: create the tenant, issue and store its
// administrator credential, then deliver the credential by SMS. Each completed step registers a
// compensating delete; a failure runs them in reverse order and returns the original error.
// LifecycleManager toggles tenant status and deletes a tenant with its credentials.
package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks TenantStore,AdminStore,Notifier

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"gymdesk/internal/notification"
	tenantmetrics "gymdesk/internal/tenant/metrics"
	"gymdesk/internal/tenant/models"
	id "gymdesk/pkg/domain"
)

// TenantStore persists tenants. Create assigns the ID. Missing records surface as
// sentinel.ErrNotFound.
type TenantStore interface {
	Create(ctx context.Context, tenant *models.Tenant) (id.TenantID, error)
	FindByID(ctx context.Context, tenantID id.TenantID) (*models.Tenant, error)
	Execute(ctx context.Context, tenantID id.TenantID, validate func(*models.Tenant) error, mutate func(*models.Tenant)) (*models.Tenant, error)
	Delete(ctx context.Context, tenantID id.TenantID) error
}

// AdminStore persists administrator credentials. Create assigns the ID.
type AdminStore interface {
	Create(ctx context.Context, admin *models.AdminCredential) (id.AdminID, error)
	ListByTenant(ctx context.Context, tenantID id.TenantID) ([]*models.AdminCredential, error)
	Delete(ctx context.Context, adminID id.AdminID) error
}

// Notifier delivers a templated message to a raw phone number.
type Notifier interface {
	Send(ctx context.Context, rawPhone string, kind notification.Kind, data any) error
}

const (
	defaultStepTimeout          = 10 * time.Second
	defaultCompensationAttempts = 3
	defaultCompensationDelay    = 100 * time.Millisecond
	tracerName                  = "gymdesk/internal/tenant/service"
)

type serviceConfig struct {
	logger               *slog.Logger
	metrics              *tenantmetrics.Metrics
	tracer               trace.Tracer
	tx                   StoreTx
	stepTimeout          time.Duration
	compensationAttempts uint
	compensationDelay    time.Duration
}

type Option func(*serviceConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) {
		c.logger = logger
	}
}

func WithMetrics(m *tenantmetrics.Metrics) Option {
	return func(c *serviceConfig) {
		c.metrics = m
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(c *serviceConfig) {
		c.tracer = tracer
	}
}

// WithTx sets the transactional boundary for the delete cascade.
func WithTx(tx StoreTx) Option {
	return func(c *serviceConfig) {
		c.tx = tx
	}
}

// WithStepTimeout bounds each forward saga step and each compensating delete attempt.
func WithStepTimeout(d time.Duration) Option {
	return func(c *serviceConfig) {
		if d > 0 {
			c.stepTimeout = d
		}
	}
}

// WithCompensation sets how many times a compensating delete is tried and the initial
// backoff between tries.
func WithCompensation(attempts uint, delay time.Duration) Option {
	return func(c *serviceConfig) {
		if attempts > 0 {
			c.compensationAttempts = attempts
		}
		if delay >= 0 {
			c.compensationDelay = delay
		}
	}
}

func newServiceConfig(opts []Option) *serviceConfig {
	cfg := &serviceConfig{
		stepTimeout:          defaultStepTimeout,
		compensationAttempts: defaultCompensationAttempts,
		compensationDelay:    defaultCompensationDelay,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.tracer == nil {
		cfg.tracer = otel.Tracer(tracerName)
	}
	if cfg.tx == nil {
		cfg.tx = newInMemoryStoreTx()
	}
	return cfg
}
