package models

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	dErrors "gymdesk/pkg/domain-errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// RegisterTenantRequest is the input to tenant registration.
type RegisterTenantRequest struct {
	Name          string `json:"name" validate:"required"`
	Location      string `json:"location"`
	Address       string `json:"address"`
	Phone         string `json:"phone" validate:"required"`
	Email         string `json:"email" validate:"required"`
	ContactPerson string `json:"contact_person" validate:"required"`
	Username      string `json:"username" validate:"required"`
	Password      string `json:"password" validate:"required"`
}

// Normalize trims surrounding whitespace from every field except the password,
// which is opaque.
func (r *RegisterTenantRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Location = strings.TrimSpace(r.Location)
	r.Address = strings.TrimSpace(r.Address)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Email = strings.TrimSpace(r.Email)
	r.ContactPerson = strings.TrimSpace(r.ContactPerson)
	r.Username = strings.TrimSpace(r.Username)
}

// Validate requires every mandatory field to be present and non-blank.
// Call Normalize first.
func (r *RegisterTenantRequest) Validate() error {
	var problems []string
	if err := validate.Struct(r); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to validate request")
		}
		for _, fe := range fieldErrs {
			problems = append(problems, fe.Field()+" is required")
		}
	}
	if r.Password != "" && strings.TrimSpace(r.Password) == "" {
		problems = append(problems, "password is required")
	}
	if len(problems) > 0 {
		return dErrors.New(dErrors.CodeValidation, strings.Join(problems, "; "))
	}
	return nil
}

func (r *RegisterTenantRequest) TenantProfile() TenantProfile {
	return TenantProfile{
		Name:          r.Name,
		Location:      r.Location,
		Address:       r.Address,
		Phone:         r.Phone,
		Email:         r.Email,
		ContactPerson: r.ContactPerson,
	}
}

// AdminProfile is the profile copied onto the tenant's administrator credential.
// The contact person administers the gym.
func (r *RegisterTenantRequest) AdminProfile() AdminProfile {
	return AdminProfile{
		Name:  r.ContactPerson,
		Email: r.Email,
		Phone: r.Phone,
	}
}
