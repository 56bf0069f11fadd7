// Package config loads the lzops settings file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultRegion is used when the settings file does not name one.
const DefaultRegion = "ap-southeast-2"

// Config represents the settings file.
type Config struct {
	AWS         AWSConfig   `yaml:"aws"`
	ZonesURL    string      `yaml:"zones_url"`
	TestAccount TestAccount `yaml:"test_account,omitempty"`
}

// AWSConfig holds region and role settings.
type AWSConfig struct {
	Region        string `yaml:"region"`
	ProvisionRole string `yaml:"provision_role"`
	ViewerRole    string `yaml:"viewer_role,omitempty"`
}

// TestAccount is an optional single account used instead of the zone
// registry when running with --test.
type TestAccount struct {
	ID   string `yaml:"id,omitempty"`
	Name string `yaml:"name,omitempty"`
}

// Load reads and parses the settings file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is intentional user input
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a config with defaults only, for runs without a settings
// file.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.AWS.Region == "" {
		c.AWS.Region = DefaultRegion
	}
}

// RequireProvisionRole returns the provision role or an error when unset.
func (c *Config) RequireProvisionRole() (string, error) {
	if c.AWS.ProvisionRole == "" {
		return "", fmt.Errorf("aws.provision_role is not configured")
	}
	return c.AWS.ProvisionRole, nil
}

// RequireZonesURL returns the zone registry URL or an error when unset.
func (c *Config) RequireZonesURL() (string, error) {
	if c.ZonesURL == "" {
		return "", fmt.Errorf("zones_url is not configured")
	}
	return c.ZonesURL, nil
}

// RequireTestAccount returns the test account or an error when incomplete.
func (c *Config) RequireTestAccount() (TestAccount, error) {
	if c.TestAccount.ID == "" || c.TestAccount.Name == "" {
		return TestAccount{}, fmt.Errorf("test_account.id and test_account.name must be configured")
	}
	return c.TestAccount, nil
}
