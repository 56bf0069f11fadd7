package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
aws:
  region: us-west-2
  provision_role: lz-provision
  viewer_role: lz-viewer
zones_url: https://registry.example.com/zones.txt
test_account:
  id: "123456789012"
  name: sandbox
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "us-west-2", cfg.AWS.Region)
	assert.Equal(t, "lz-provision", cfg.AWS.ProvisionRole)
	assert.Equal(t, "lz-viewer", cfg.AWS.ViewerRole)
	assert.Equal(t, "https://registry.example.com/zones.txt", cfg.ZonesURL)
	assert.Equal(t, "123456789012", cfg.TestAccount.ID)
	assert.Equal(t, "sandbox", cfg.TestAccount.Name)
}

func TestLoad_AppliesRegionDefault(t *testing.T) {
	path := writeConfig(t, `
aws:
  provision_role: lz-provision
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultRegion, cfg.AWS.Region)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "aws: [not a mapping")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DefaultRegion, cfg.AWS.Region)
	assert.Empty(t, cfg.ZonesURL)
}

func TestRequireProvisionRole(t *testing.T) {
	cfg := Default()
	_, err := cfg.RequireProvisionRole()
	assert.Error(t, err)

	cfg.AWS.ProvisionRole = "lz-provision"
	role, err := cfg.RequireProvisionRole()
	require.NoError(t, err)
	assert.Equal(t, "lz-provision", role)
}

func TestRequireZonesURL(t *testing.T) {
	cfg := Default()
	_, err := cfg.RequireZonesURL()
	assert.Error(t, err)

	cfg.ZonesURL = "https://registry.example.com/zones.txt"
	url, err := cfg.RequireZonesURL()
	require.NoError(t, err)
	assert.Equal(t, "https://registry.example.com/zones.txt", url)
}

func TestRequireTestAccount(t *testing.T) {
	cfg := Default()
	_, err := cfg.RequireTestAccount()
	assert.Error(t, err)

	cfg.TestAccount = TestAccount{ID: "123456789012"}
	_, err = cfg.RequireTestAccount()
	assert.Error(t, err)

	cfg.TestAccount.Name = "sandbox"
	acct, err := cfg.RequireTestAccount()
	require.NoError(t, err)
	assert.Equal(t, "sandbox", acct.Name)
}
