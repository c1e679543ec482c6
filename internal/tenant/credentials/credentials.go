// Package credentials packages a tenant administrator's login before persistence.
//
// Passwords are kept in plaintext: the initial password is delivered to the gym over SMS,
// so it cannot be hashed before the notification is sent.
package credentials

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"unicode/utf8"

	"gymdesk/internal/tenant/models"
	dErrors "gymdesk/pkg/domain-errors"
)

const (
	// MinPasswordLength is counted in characters, not bytes.
	MinPasswordLength = 6

	generatedPasswordLength = 12
	// No 0/O, 1/l/I: the password is read off a phone screen and typed by hand.
	passwordAlphabet = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// Issue validates a username/password pair and packages it with the profile into an
// unsaved tenant_admin credential. It never touches storage.
func Issue(username, password string, profile models.AdminProfile) (*models.AdminCredential, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "username is required")
	}
	if password == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "password is required")
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return nil, dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	return &models.AdminCredential{
		Username: username,
		Password: password,
		Name:     profile.Name,
		Email:    profile.Email,
		Phone:    profile.Phone,
		Role:     models.RoleTenantAdmin,
	}, nil
}

// GeneratePassword returns a random password drawn from an unambiguous alphabet.
func GeneratePassword() (string, error) {
	alphabetLen := big.NewInt(int64(len(passwordAlphabet)))
	buf := make([]byte, generatedPasswordLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("could not generate password: %w", err)
		}
		buf[i] = passwordAlphabet[n.Int64()]
	}
	return string(buf), nil
}
