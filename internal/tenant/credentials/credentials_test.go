package credentials

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gymdesk/internal/tenant/models"
	dErrors "gymdesk/pkg/domain-errors"
)

var profile = models.AdminProfile{
	Name:  "Nimal Perera",
	Email: "owner@irontemple.lk",
	Phone: "071 234 5678",
}

func TestIssue(t *testing.T) {
	t.Run("packages a tenant_admin credential", func(t *testing.T) {
		cred, err := Issue("irontemple", "s3cret!", profile)
		require.NoError(t, err)

		assert.Equal(t, "irontemple", cred.Username)
		assert.Equal(t, "s3cret!", cred.Password, "password is stored as given")
		assert.Equal(t, models.RoleTenantAdmin, cred.Role)
		assert.Equal(t, profile.Name, cred.Name)
		assert.Equal(t, profile.Email, cred.Email)
		assert.Equal(t, profile.Phone, cred.Phone, "profile fields are copied unchanged")
		assert.True(t, cred.ID.IsNil(), "store assigns the ID")
		assert.True(t, cred.TenantID.IsNil(), "tenant is linked by the caller")
	})

	t.Run("rejects blank username", func(t *testing.T) {
		_, err := Issue("  ", "s3cret!", profile)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects empty password", func(t *testing.T) {
		_, err := Issue("irontemple", "", profile)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects short password", func(t *testing.T) {
		_, err := Issue("irontemple", "12345", profile)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 6 characters")
	})

	t.Run("accepts password at minimum length", func(t *testing.T) {
		_, err := Issue("irontemple", "123456", profile)
		assert.NoError(t, err)
	})

	t.Run("counts characters rather than bytes", func(t *testing.T) {
		_, err := Issue("irontemple", "ශ්‍රී", profile)
		require.Error(t, err)
	})
}

func TestGeneratePassword(t *testing.T) {
	seen := make(map[string]struct{})
	for range 20 {
		pw, err := GeneratePassword()
		require.NoError(t, err)
		assert.Len(t, pw, generatedPasswordLength)
		for _, r := range pw {
			assert.True(t, strings.ContainsRune(passwordAlphabet, r), "unexpected rune %q", r)
		}
		_, err = Issue("irontemple", pw, profile)
		assert.NoError(t, err, "generated passwords satisfy Issue")
		seen[pw] = struct{}{}
	}
	assert.Greater(t, len(seen), 1)
}
