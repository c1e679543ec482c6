package tenant_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	"gymdesk/internal/notification"
	"gymdesk/internal/tenant"
	"gymdesk/internal/tenant/service"
	"gymdesk/pkg/testutil"
)

type countingNotifier struct{ sent int }

func (n *countingNotifier) Send(context.Context, string, notification.Kind, any) error {
	n.sent++
	return nil
}

func TestMemoryBackedOnboarding(t *testing.T) {
	testutil.Given(t, "a handler over memory stores", func(t *testing.T) {
		stores := tenant.MemoryStores()
		notifier := &countingNotifier{}
		h, err := tenant.NewHandler(stores, notifier, slog.New(slog.NewTextHandler(io.Discard, nil)))
		if err != nil {
			t.Fatal(err)
		}
		r := chi.NewRouter()
		h.Register(r)

		var registered service.RegistrationResult
		testutil.When(t, "a gym registers", func(t *testing.T) {
			rec := testutil.DoRequest(r, testutil.NewJSONRequest(t, http.MethodPost, "/admin/tenants", map[string]any{
				"name":           "Core Strength",
				"phone":          "0712345678",
				"email":          "desk@corestrength.lk",
				"contact_person": "Nimal Silva",
				"username":       "nimal",
				"password":       "deadlift1",
			}))

			testutil.Then(t, "the tenant and its admin exist and the welcome SMS went out", func(t *testing.T) {
				testutil.AssertStatus(t, rec, http.StatusCreated)
				registered = *testutil.UnmarshalResponse[service.RegistrationResult](t, rec)
				if _, err := stores.Tenants.FindByID(context.Background(), registered.TenantID); err != nil {
					t.Fatalf("tenant not stored: %v", err)
				}
				if _, err := stores.Admins.FindByID(context.Background(), registered.AdminID); err != nil {
					t.Fatalf("admin not stored: %v", err)
				}
				if notifier.sent != 1 {
					t.Fatalf("expected 1 notification, got %d", notifier.sent)
				}
			})
		})

		testutil.When(t, "the gym is deleted", func(t *testing.T) {
			req := testutil.NewRequest(t, http.MethodDelete, "/admin/tenants/"+registered.TenantID.String())
			rec := testutil.DoRequest(r, req)

			testutil.Then(t, "its admin credentials go with it", func(t *testing.T) {
				testutil.AssertStatus(t, rec, http.StatusOK)
				admins, err := stores.Admins.ListByTenant(context.Background(), registered.TenantID)
				if err != nil {
					t.Fatal(err)
				}
				if len(admins) != 0 {
					t.Fatalf("expected no admins left, got %d", len(admins))
				}
			})
		})
	})
}
