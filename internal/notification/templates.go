package notification

import (
	"bytes"
	"fmt"
	"text/template"
)

// Kind selects a message template.
type Kind string

const (
	KindTenantAdminOnboarding Kind = "tenant_admin_onboarding"
)

// OnboardingData fills the tenant_admin_onboarding template.
type OnboardingData struct {
	TenantName string
	Username   string
	Password   string
}

var templates = map[Kind]*template.Template{
	KindTenantAdminOnboarding: template.Must(template.New(string(KindTenantAdminOnboarding)).
		Option("missingkey=error").
		Parse(`Welcome to GymDesk, {{.Data.TenantName}}!
Your gym admin account is ready.
Username: {{.Data.Username}}
Password: {{.Data.Password}}
Log in at {{.LoginURL}} and change your password after your first login.`)),
}

type templateInput struct {
	Data     any
	LoginURL string
}

func render(kind Kind, data any, loginURL string) (string, error) {
	tmpl, ok := templates[kind]
	if !ok {
		return "", fmt.Errorf("unknown template %q", kind)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, templateInput{Data: data, LoginURL: loginURL}); err != nil {
		return "", fmt.Errorf("render %s: %w", kind, err)
	}
	return buf.String(), nil
}
