// Package handler exposes tenant onboarding and lifecycle over HTTP for platform operators.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gymdesk/internal/tenant/credentials"
	"gymdesk/internal/tenant/models"
	"gymdesk/internal/tenant/service"
	id "gymdesk/pkg/domain"
	dErrors "gymdesk/pkg/domain-errors"
	"gymdesk/pkg/platform/httputil"
	"gymdesk/pkg/requestcontext"
)

type Registrar interface {
	Register(ctx context.Context, req *models.RegisterTenantRequest) (*service.RegistrationResult, error)
}

type Lifecycle interface {
	GetTenant(ctx context.Context, tenantID id.TenantID) (*models.Tenant, error)
	ToggleStatus(ctx context.Context, tenantID id.TenantID) (*models.Tenant, error)
	DeleteTenant(ctx context.Context, tenantID id.TenantID) (*service.DeleteResult, error)
}

// Handler serves /admin/tenants.
type Handler struct {
	registrar        Registrar
	lifecycle        Lifecycle
	logger           *slog.Logger
	generatePassword func() (string, error)
}

func New(registrar Registrar, lifecycle Lifecycle, logger *slog.Logger) *Handler {
	return &Handler{
		registrar:        registrar,
		lifecycle:        lifecycle,
		logger:           logger,
		generatePassword: credentials.GeneratePassword,
	}
}

// Register mounts the tenant routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Route("/admin/tenants", func(r chi.Router) {
		r.Post("/", h.HandleRegisterTenant)
		r.Get("/{id}", h.HandleGetTenant)
		r.Post("/{id}/toggle-status", h.HandleToggleStatus)
		r.Delete("/{id}", h.HandleDeleteTenant)
	})
}

// RegisterTenantRequest is the POST /admin/tenants body.
type RegisterTenantRequest struct {
	models.RegisterTenantRequest
	GeneratePassword bool `json:"generate_password"`
}

// compensationFailureResponse reports a failed registration that left records behind.
type compensationFailureResponse struct {
	httputil.ErrorResponse
	CompensationFailed bool     `json:"compensation_failed"`
	Orphans            []string `json:"orphans"`
}

func (h *Handler) HandleRegisterTenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var body RegisterTenantRequest
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}

	req := body.RegisterTenantRequest
	if body.GeneratePassword {
		if req.Password != "" {
			h.writeError(w, r, dErrors.New(dErrors.CodeBadRequest, "password and generate_password are mutually exclusive"))
			return
		}
		password, err := h.generatePassword()
		if err != nil {
			h.writeError(w, r, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate password"))
			return
		}
		req.Password = password
	}

	result, err := h.registrar.Register(ctx, &req)
	if err != nil {
		var compErr *service.CompensationError
		if errors.As(err, &compErr) {
			h.writeCompensationFailure(w, r, compErr)
			return
		}
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) HandleGetTenant(w http.ResponseWriter, r *http.Request) {
	tenantID, err := id.ParseTenantID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	tenant, err := h.lifecycle.GetTenant(r.Context(), tenantID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, tenant)
}

func (h *Handler) HandleToggleStatus(w http.ResponseWriter, r *http.Request) {
	tenantID, err := id.ParseTenantID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	tenant, err := h.lifecycle.ToggleStatus(r.Context(), tenantID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, tenant)
}

func (h *Handler) HandleDeleteTenant(w http.ResponseWriter, r *http.Request) {
	tenantID, err := id.ParseTenantID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	result, err := h.lifecycle.DeleteTenant(r.Context(), tenantID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	code := dErrors.CodeOf(err)
	if httputil.StatusFor(code) >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, "tenant request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"code", string(code),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	httputil.WriteError(w, err)
}

// writeCompensationFailure answers 500 with the root cause code and the orphaned records.
func (h *Handler) writeCompensationFailure(w http.ResponseWriter, r *http.Request, compErr *service.CompensationError) {
	code := dErrors.CodeOf(compErr.Cause)
	resp := compensationFailureResponse{
		ErrorResponse:      httputil.ErrorResponse{Error: string(code)},
		CompensationFailed: true,
		Orphans:            compErr.Orphans(),
	}
	if httputil.StatusFor(code) != http.StatusInternalServerError {
		resp.ErrorDescription = compErr.Cause.Error()
	}
	httputil.WriteJSON(w, http.StatusInternalServerError, resp)
}
