package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"gymdesk/internal/notification"
	"gymdesk/internal/tenant/models"
	adminstore "gymdesk/internal/tenant/store/admin"
	tenantstore "gymdesk/internal/tenant/store/tenant"
	id "gymdesk/pkg/domain"
	dErrors "gymdesk/pkg/domain-errors"
	"gymdesk/pkg/platform/sentinel"
	"gymdesk/pkg/requestcontext"
)

type notifierFunc func(ctx context.Context, rawPhone string, kind notification.Kind, data any) error

func (f notifierFunc) Send(ctx context.Context, rawPhone string, kind notification.Kind, data any) error {
	return f(ctx, rawPhone, kind, data)
}

// failingAdminStore rejects every Create.
type failingAdminStore struct {
	*adminstore.InMemory
}

func (failingAdminStore) Create(context.Context, *models.AdminCredential) (id.AdminID, error) {
	return id.AdminID{}, errors.New("quota exceeded")
}

// stickyAdminStore rejects Delete until unstuck.
type stickyAdminStore struct {
	*adminstore.InMemory
	stuck bool
}

func (a *stickyAdminStore) Delete(ctx context.Context, adminID id.AdminID) error {
	if a.stuck {
		return errors.New("replica read-only")
	}
	return a.InMemory.Delete(ctx, adminID)
}

// SagaPropertiesSuite runs the coordinator and lifecycle manager against the in-memory stores
// and checks what is left in them afterwards.
type SagaPropertiesSuite struct {
	suite.Suite
	ctx       context.Context
	tenants   *tenantstore.InMemory
	admins    *adminstore.InMemory
	lifecycle *LifecycleManager
	sent      []notification.OnboardingData
}

func TestSagaPropertiesSuite(t *testing.T) {
	suite.Run(t, new(SagaPropertiesSuite))
}

func (s *SagaPropertiesSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	s.tenants = tenantstore.NewInMemory()
	s.admins = adminstore.NewInMemory()
	s.sent = nil

	var err error
	s.lifecycle, err = NewLifecycleManager(s.tenants, s.admins, quietLogger())
	s.Require().NoError(err)
}

func quietLogger() Option {
	return WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func (s *SagaPropertiesSuite) coordinator(admins AdminStore, notifier Notifier) *RegistrationCoordinator {
	c, err := NewRegistrationCoordinator(s.tenants, admins, notifier, quietLogger(), WithCompensation(2, 0))
	s.Require().NoError(err)
	return c
}

func (s *SagaPropertiesSuite) recordingNotifier() Notifier {
	return notifierFunc(func(_ context.Context, _ string, _ notification.Kind, data any) error {
		s.sent = append(s.sent, data.(notification.OnboardingData))
		return nil
	})
}

func (s *SagaPropertiesSuite) tenantCount() int {
	n, err := s.tenants.Count(s.ctx)
	s.Require().NoError(err)
	return n
}

func (s *SagaPropertiesSuite) TestHappyPathLinksTenantAndAdmin() {
	result, err := s.coordinator(s.admins, s.recordingNotifier()).Register(s.ctx, validRequest())
	s.Require().NoError(err)

	s.Equal(1, s.tenantCount())
	tenant, err := s.tenants.FindByID(s.ctx, result.TenantID)
	s.Require().NoError(err)
	s.Equal(models.TenantStatusActive, tenant.Status)
	s.Equal(requestcontext.Now(s.ctx), tenant.CreatedAt)

	admins, err := s.admins.ListByTenant(s.ctx, result.TenantID)
	s.Require().NoError(err)
	s.Require().Len(admins, 1)
	s.Equal(result.AdminID, admins[0].ID)
	s.Equal(result.TenantID, admins[0].TenantID)

	s.Require().Len(s.sent, 1)
	s.Equal("barbell42", s.sent[0].Password)
}

func (s *SagaPropertiesSuite) TestNotificationFailureRollsBackEverything() {
	failing := notifierFunc(func(context.Context, string, notification.Kind, any) error {
		return dErrors.New(dErrors.CodeNotificationFailed, "SMS gateway could not be reached")
	})

	_, err := s.coordinator(s.admins, failing).Register(s.ctx, validRequest())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotificationFailed))

	s.Zero(s.tenantCount())
}

func (s *SagaPropertiesSuite) TestAdminFailureRollsBackTenant() {
	_, err := s.coordinator(failingAdminStore{s.admins}, s.recordingNotifier()).Register(s.ctx, validRequest())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeStore))

	s.Zero(s.tenantCount())
	s.Empty(s.sent)
}

func (s *SagaPropertiesSuite) TestIdenticalRequestsCreateDistinctTenants() {
	c := s.coordinator(s.admins, s.recordingNotifier())
	first, err := c.Register(s.ctx, validRequest())
	s.Require().NoError(err)
	second, err := c.Register(s.ctx, validRequest())
	s.Require().NoError(err)

	s.NotEqual(first.TenantID, second.TenantID)
	s.NotEqual(first.AdminID, second.AdminID)
	s.Equal(2, s.tenantCount())
}

func (s *SagaPropertiesSuite) TestDeleteTenantCascades() {
	c := s.coordinator(s.admins, s.recordingNotifier())
	result, err := c.Register(s.ctx, validRequest())
	s.Require().NoError(err)
	other, err := c.Register(s.ctx, validRequest())
	s.Require().NoError(err)

	// A second credential for the same tenant, as an operator might add later.
	_, err = s.admins.Create(s.ctx, &models.AdminCredential{
		Username: "deputy", Password: "deputy-pass", Role: models.RoleTenantAdmin, TenantID: result.TenantID,
	})
	s.Require().NoError(err)

	deleted, err := s.lifecycle.DeleteTenant(s.ctx, result.TenantID)
	s.Require().NoError(err)
	s.Equal(result.TenantID, deleted.TenantID)
	s.Equal(2, deleted.AdminsDeleted)

	_, err = s.tenants.FindByID(s.ctx, result.TenantID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	admins, err := s.admins.ListByTenant(s.ctx, result.TenantID)
	s.Require().NoError(err)
	s.Empty(admins)

	remaining, err := s.admins.ListByTenant(s.ctx, other.TenantID)
	s.Require().NoError(err)
	s.Len(remaining, 1, "other tenants are untouched")
}

func (s *SagaPropertiesSuite) TestFailedAdminRollbackKeepsPairReconcilable() {
	sticky := &stickyAdminStore{InMemory: s.admins, stuck: true}
	failing := notifierFunc(func(context.Context, string, notification.Kind, any) error {
		return dErrors.New(dErrors.CodeNotificationFailed, "SMS gateway could not be reached")
	})
	c, err := NewRegistrationCoordinator(s.tenants, sticky, failing, quietLogger(), WithCompensation(1, 0))
	s.Require().NoError(err)

	_, err = c.Register(s.ctx, validRequest())
	var compErr *CompensationError
	s.Require().ErrorAs(err, &compErr)
	s.True(dErrors.HasCode(err, dErrors.CodeNotificationFailed))
	s.Require().Len(compErr.Failures, 2)
	s.Equal("admin", compErr.Failures[0].Resource)
	s.Equal("tenant", compErr.Failures[1].Resource)
	s.ErrorIs(compErr.Failures[1].Err, ErrCompensationSkipped)

	tenantID, err := id.ParseTenantID(compErr.Failures[1].ID)
	s.Require().NoError(err)
	admins, err := s.admins.ListByTenant(s.ctx, tenantID)
	s.Require().NoError(err)
	s.Require().Len(admins, 1)
	_, err = s.tenants.FindByID(s.ctx, admins[0].TenantID)
	s.Require().NoError(err, "the orphaned admin still points at a live tenant")

	sticky.stuck = false
	deleted, err := s.lifecycle.DeleteTenant(s.ctx, tenantID)
	s.Require().NoError(err)
	s.Equal(1, deleted.AdminsDeleted)
	s.Zero(s.tenantCount())
	admins, err = s.admins.ListByTenant(s.ctx, tenantID)
	s.Require().NoError(err)
	s.Empty(admins)
}

func (s *SagaPropertiesSuite) TestDeleteTenantSweepsCredentialsOfVanishedTenant() {
	result, err := s.coordinator(s.admins, s.recordingNotifier()).Register(s.ctx, validRequest())
	s.Require().NoError(err)
	s.Require().NoError(s.tenants.Delete(s.ctx, result.TenantID))

	deleted, err := s.lifecycle.DeleteTenant(s.ctx, result.TenantID)
	s.Require().NoError(err)
	s.Equal(1, deleted.AdminsDeleted)

	admins, err := s.admins.ListByTenant(s.ctx, result.TenantID)
	s.Require().NoError(err)
	s.Empty(admins)

	_, err = s.lifecycle.DeleteTenant(s.ctx, result.TenantID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound), "nothing left to delete")
}

func (s *SagaPropertiesSuite) TestToggleChangesOnlyStatus() {
	result, err := s.coordinator(s.admins, s.recordingNotifier()).Register(s.ctx, validRequest())
	s.Require().NoError(err)
	before, err := s.tenants.FindByID(s.ctx, result.TenantID)
	s.Require().NoError(err)

	later := requestcontext.WithTime(s.ctx, time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC))
	toggled, err := s.lifecycle.ToggleStatus(later, result.TenantID)
	s.Require().NoError(err)
	s.Equal(models.TenantStatusInactive, toggled.Status)

	expected := before.Clone()
	expected.Status = models.TenantStatusInactive
	s.Equal(expected, toggled)

	again, err := s.lifecycle.ToggleStatus(later, result.TenantID)
	s.Require().NoError(err)
	s.Equal(before, again)
}
