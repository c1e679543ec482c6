package service

import (
	"context"
	"errors"
	"time"

	"github.com/avast/retry-go/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"gymdesk/internal/notification"
	tenantmetrics "gymdesk/internal/tenant/metrics"
	"gymdesk/internal/tenant/credentials"
	"gymdesk/internal/tenant/models"
	id "gymdesk/pkg/domain"
	dErrors "gymdesk/pkg/domain-errors"
	"gymdesk/pkg/platform/sentinel"
	"gymdesk/pkg/requestcontext"
)

// Saga step names, used in logs, spans and metrics.
const (
	stepCreateTenant = "create_tenant"
	stepCreateAdmin  = "create_admin"
	stepNotify       = "notify"
	stepDeleteTenant = "delete_tenant"
	stepDeleteAdmin  = "delete_admin"
)

// RegistrationResult identifies the records a successful registration created.
type RegistrationResult struct {
	TenantID id.TenantID `json:"tenant_id"`
	AdminID  id.AdminID  `json:"admin_id"`
}

// compensation undoes one completed forward step.
type compensation struct {
	step     string
	resource string
	id       string
	undo     func(ctx context.Context) error
}

// registrationTx holds what one saga run has created so far. Compensation works only from
// these captured identifiers.
type registrationTx struct {
	tenantID      id.TenantID
	adminID       id.AdminID
	compensations []compensation
}

func (rtx *registrationTx) push(c compensation) {
	rtx.compensations = append(rtx.compensations, c)
}

// RegistrationCoordinator runs the tenant onboarding saga.
//
// Registration is not idempotent: identical requests create distinct tenant/admin pairs.
type RegistrationCoordinator struct {
	tenants  TenantStore
	admins   AdminStore
	notifier Notifier
	cfg      *serviceConfig
}

func NewRegistrationCoordinator(tenants TenantStore, admins AdminStore, notifier Notifier, opts ...Option) (*RegistrationCoordinator, error) {
	if tenants == nil {
		return nil, errors.New("tenant store is required")
	}
	if admins == nil {
		return nil, errors.New("admin store is required")
	}
	if notifier == nil {
		return nil, errors.New("notifier is required")
	}
	return &RegistrationCoordinator{
		tenants:  tenants,
		admins:   admins,
		notifier: notifier,
		cfg:      newServiceConfig(opts),
	}, nil
}

// Register validates req, creates the tenant and its administrator credential, and sends the
// credential to the tenant's phone. On any failure after the tenant exists, the records created
// so far are deleted in reverse order and the original error is returned. If a compensating
// delete fails the error is a *CompensationError wrapping the original.
func (c *RegistrationCoordinator) Register(ctx context.Context, req *models.RegisterTenantRequest) (*RegistrationResult, error) {
	start := time.Now()
	ctx, span := c.cfg.tracer.Start(ctx, "tenant.register")
	defer span.End()

	result, err := c.register(ctx, req)

	c.observeRegistration(start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
		return nil, err
	}
	span.SetAttributes(
		attribute.String("tenant.id", result.TenantID.String()),
		attribute.String("admin.id", result.AdminID.String()),
	)
	return result, nil
}

func (c *RegistrationCoordinator) register(ctx context.Context, req *models.RegisterTenantRequest) (*RegistrationResult, error) {
	if req == nil {
		return nil, c.fail(dErrors.New(dErrors.CodeBadRequest, "registration request is required"))
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, c.fail(err)
	}

	now := requestcontext.Now(ctx)
	rtx := &registrationTx{}

	tenant := models.NewTenant(req.TenantProfile(), now)
	err := c.step(ctx, stepCreateTenant, func(ctx context.Context) error {
		tenantID, err := c.tenants.Create(ctx, tenant)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeStore, "failed to create tenant")
		}
		rtx.tenantID = tenantID
		return nil
	})
	if err != nil {
		return nil, c.fail(err)
	}
	rtx.push(compensation{
		step:     stepDeleteTenant,
		resource: "tenant",
		id:       rtx.tenantID.String(),
		undo:     func(ctx context.Context) error { return c.tenants.Delete(ctx, rtx.tenantID) },
	})

	var admin *models.AdminCredential
	err = c.step(ctx, stepCreateAdmin, func(ctx context.Context) error {
		issued, err := credentials.Issue(req.Username, req.Password, req.AdminProfile())
		if err != nil {
			return err
		}
		issued.TenantID = rtx.tenantID
		issued.CreatedAt = now
		adminID, err := c.admins.Create(ctx, issued)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeStore, "failed to create admin credential")
		}
		rtx.adminID = adminID
		admin = issued
		return nil
	})
	if err != nil {
		return nil, c.abort(ctx, rtx, err)
	}
	rtx.push(compensation{
		step:     stepDeleteAdmin,
		resource: "admin",
		id:       rtx.adminID.String(),
		undo:     func(ctx context.Context) error { return c.admins.Delete(ctx, rtx.adminID) },
	})

	err = c.step(ctx, stepNotify, func(ctx context.Context) error {
		err := c.notifier.Send(ctx, tenant.Phone, notification.KindTenantAdminOnboarding, notification.OnboardingData{
			TenantName: tenant.Name,
			Username:   admin.Username,
			Password:   admin.Password,
		})
		c.observeDispatch(err)
		if err != nil {
			var de *dErrors.Error
			if !errors.As(err, &de) {
				return dErrors.Wrap(err, dErrors.CodeNotificationFailed, "failed to send onboarding message")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, c.abort(ctx, rtx, err)
	}

	c.logAudit(ctx, "tenant_registered",
		"tenant_id", rtx.tenantID.String(),
		"admin_id", rtx.adminID.String(),
		"username", admin.Username,
	)
	c.incrementRegistration(tenantmetrics.OutcomeSuccess)
	return &RegistrationResult{TenantID: rtx.tenantID, AdminID: rtx.adminID}, nil
}

// step runs one forward saga step under its own span and timeout.
func (c *RegistrationCoordinator) step(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := c.cfg.tracer.Start(ctx, "tenant.register."+name)
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, c.cfg.stepTimeout)
	defer cancel()

	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
		c.cfg.logger.WarnContext(ctx, "registration step failed",
			"step", name,
			"code", string(dErrors.CodeOf(err)),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return err
	}
	return nil
}

// abort runs the registered compensations newest first and returns cause, or a
// *CompensationError wrapping cause when one of them could not be completed.
//
// Rollback stops at the first failed delete. Older records are kept so a credential never
// outlives its tenant, and they are reported as orphans with ErrCompensationSkipped.
func (c *RegistrationCoordinator) abort(ctx context.Context, rtx *registrationTx, cause error) error {
	ctx = context.WithoutCancel(ctx)
	ctx, span := c.cfg.tracer.Start(ctx, "tenant.register.compensate",
		trace.WithAttributes(attribute.Int("compensations", len(rtx.compensations))))
	defer span.End()

	var failures []CompensationFailure
	for i := len(rtx.compensations) - 1; i >= 0; i-- {
		comp := rtx.compensations[i]
		err := retry.Do(
			func() error {
				stepCtx, cancel := context.WithTimeout(ctx, c.cfg.stepTimeout)
				defer cancel()
				return comp.undo(stepCtx)
			},
			retry.Context(ctx),
			retry.Attempts(c.cfg.compensationAttempts),
			retry.Delay(c.cfg.compensationDelay),
			retry.DelayType(retry.BackOffDelay),
			retry.LastErrorOnly(true),
			retry.RetryIf(func(err error) bool { return !errors.Is(err, sentinel.ErrNotFound) }),
		)
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			failures = append(failures, CompensationFailure{
				Step:     comp.step,
				Resource: comp.resource,
				ID:       comp.id,
				Err:      err,
			})
			c.incrementCompensationFailure(comp.step)
			for j := i - 1; j >= 0; j-- {
				skipped := rtx.compensations[j]
				failures = append(failures, CompensationFailure{
					Step:     skipped.step,
					Resource: skipped.resource,
					ID:       skipped.id,
					Err:      ErrCompensationSkipped,
				})
			}
			break
		}
		c.incrementCompensation(comp.step)
		c.cfg.logger.InfoContext(ctx, "registration step compensated",
			"step", comp.step,
			comp.resource+"_id", comp.id,
			"request_id", requestcontext.RequestID(ctx),
		)
	}

	if len(failures) == 0 {
		c.incrementRegistration(tenantmetrics.OutcomeCompensated)
		return cause
	}

	compErr := &CompensationError{Cause: cause, Failures: failures}
	span.RecordError(compErr)
	span.SetStatus(codes.Error, string(dErrors.CodeCompensationFailed))
	c.cfg.logger.ErrorContext(ctx, "registration compensation failed, records orphaned",
		"orphans", compErr.Orphans(),
		"cause", cause,
		"tenant_id", rtx.tenantID.String(),
		"event", "tenant_registration_orphaned",
		"log_type", "audit",
		"request_id", requestcontext.RequestID(ctx),
	)
	c.incrementRegistration(tenantmetrics.OutcomeOrphaned)
	return compErr
}

// fail records a registration that ended before any side effect.
func (c *RegistrationCoordinator) fail(err error) error {
	c.incrementRegistration(tenantmetrics.OutcomeFailed)
	return err
}

func (c *RegistrationCoordinator) logAudit(ctx context.Context, event string, attributes ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", event, "log_type", "audit")
	c.cfg.logger.InfoContext(ctx, event, args...)
}

func (c *RegistrationCoordinator) incrementRegistration(outcome string) {
	if c.cfg.metrics != nil {
		c.cfg.metrics.IncrementRegistration(outcome)
	}
}

func (c *RegistrationCoordinator) incrementCompensation(step string) {
	if c.cfg.metrics != nil {
		c.cfg.metrics.IncrementCompensation(step)
	}
}

func (c *RegistrationCoordinator) incrementCompensationFailure(step string) {
	if c.cfg.metrics != nil {
		c.cfg.metrics.IncrementCompensationFailure(step)
	}
}

func (c *RegistrationCoordinator) observeDispatch(err error) {
	if c.cfg.metrics == nil {
		return
	}
	if err != nil {
		c.cfg.metrics.IncrementDispatch(string(dErrors.CodeOf(err)))
		return
	}
	c.cfg.metrics.IncrementDispatch("sent")
}

func (c *RegistrationCoordinator) observeRegistration(start time.Time) {
	if c.cfg.metrics != nil {
		c.cfg.metrics.ObserveRegistration(start)
	}
}
