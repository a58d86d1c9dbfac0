package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, "@muc.edu.eg", cfg.AllowedEmailDomain)
	assert.Equal(t, 15*time.Minute, cfg.VerificationTTL)
	assert.Equal(t, DriverDynamo, cfg.StoreDriver)
	assert.Equal(t, "code", cfg.QRContent)
}

func TestLoad_AdminEmailsAndDurations(t *testing.T) {
	t.Setenv("ADMIN_EMAILS", " a@muc.edu.eg, ,B@muc.edu.eg ")
	t.Setenv("JWT_EXPIRY", "48")
	t.Setenv("SIGNIN_LINK_TTL", "30m")
	t.Setenv("FRONTEND_URL", "https://library.muc.edu.eg/")

	cfg := Load()
	assert.Equal(t, []string{"a@muc.edu.eg", "B@muc.edu.eg"}, cfg.AdminEmails)
	assert.Equal(t, 48*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 30*time.Minute, cfg.SignInLinkTTL)
	assert.Equal(t, "https://library.muc.edu.eg", cfg.FrontendURL)
}

func TestLoad_EmailDomainGetsAtPrefix(t *testing.T) {
	t.Setenv("ALLOWED_EMAIL_DOMAIN", "MUC.edu.eg")
	assert.Equal(t, "@muc.edu.eg", Load().AllowedEmailDomain)
}

func TestAdminList_MergesPolicyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "admins.yaml")
	require.NoError(t, os.WriteFile(path, []byte("admins:\n  - librarian@muc.edu.eg\n  - dean@muc.edu.eg\n"), 0600))

	cfg := &Config{AdminEmails: []string{"ops@muc.edu.eg"}, AdminPolicyFile: path}
	admins, err := cfg.AdminList()
	require.NoError(t, err)
	assert.Equal(t, []string{"ops@muc.edu.eg", "librarian@muc.edu.eg", "dean@muc.edu.eg"}, admins)
}

func TestAdminList_MissingFile(t *testing.T) {
	cfg := &Config{AdminPolicyFile: filepath.Join(t.TempDir(), "nope.yaml")}
	_, err := cfg.AdminList()
	assert.ErrorContains(t, err, "read admin policy")
}

func TestAdminList_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "admins.yaml")
	require.NoError(t, os.WriteFile(path, []byte("admins: [unterminated"), 0600))
	cfg := &Config{AdminPolicyFile: path}
	_, err := cfg.AdminList()
	assert.ErrorContains(t, err, "parse admin policy")
}
