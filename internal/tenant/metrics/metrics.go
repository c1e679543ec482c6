package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registration outcomes.
const (
	OutcomeSuccess     = "success"
	OutcomeFailed      = "failed"
	OutcomeCompensated = "compensated"
	OutcomeOrphaned    = "orphaned"
)

// Metrics provides observability for tenant onboarding and lifecycle.
type Metrics struct {
	Registrations        *prometheus.CounterVec
	Compensations        *prometheus.CounterVec
	CompensationFailures *prometheus.CounterVec
	Dispatches           *prometheus.CounterVec
	RegistrationDuration prometheus.Histogram
	StatusToggles        prometheus.Counter
	TenantsDeleted       prometheus.Counter
}

// New registers the tenant metrics with reg. Pass prometheus.DefaultRegisterer in main
// and a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Registrations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gymdesk_tenant_registrations_total",
			Help: "Tenant registrations by outcome",
		}, []string{"outcome"}),
		Compensations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gymdesk_tenant_compensations_total",
			Help: "Compensating deletes executed, by saga step",
		}, []string{"step"}),
		CompensationFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gymdesk_tenant_compensation_failures_total",
			Help: "Compensating deletes that failed after retries, by saga step",
		}, []string{"step"}),
		Dispatches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gymdesk_notification_dispatches_total",
			Help: "Onboarding notification dispatches by result code",
		}, []string{"result"}),
		RegistrationDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "gymdesk_tenant_registration_duration_seconds",
			Help:    "Duration of the registration saga including compensation",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		StatusToggles: f.NewCounter(prometheus.CounterOpts{
			Name: "gymdesk_tenant_status_toggles_total",
			Help: "Successful tenant status toggles",
		}),
		TenantsDeleted: f.NewCounter(prometheus.CounterOpts{
			Name: "gymdesk_tenants_deleted_total",
			Help: "Tenants removed with their admin credentials",
		}),
	}
}

func (m *Metrics) IncrementRegistration(outcome string) {
	m.Registrations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementCompensation(step string) {
	m.Compensations.WithLabelValues(step).Inc()
}

func (m *Metrics) IncrementCompensationFailure(step string) {
	m.CompensationFailures.WithLabelValues(step).Inc()
}

// IncrementDispatch records a notification attempt. result is "sent" or an error code.
func (m *Metrics) IncrementDispatch(result string) {
	m.Dispatches.WithLabelValues(result).Inc()
}

// ObserveRegistration records saga duration. Call with time.Now() taken at the start.
func (m *Metrics) ObserveRegistration(start time.Time) {
	m.RegistrationDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementStatusToggle() {
	m.StatusToggles.Inc()
}

func (m *Metrics) IncrementTenantDeleted() {
	m.TenantsDeleted.Inc()
}
