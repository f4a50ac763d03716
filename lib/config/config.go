// Copyright 2026 The Faqbot Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for faqbot binaries.
//
// Configuration is loaded from a single YAML file specified by:
//   - the FAQBOT_CONFIG environment variable, or
//   - the --config flag passed to the command
//
// There are no fallbacks or automatic discovery. This ensures
// deterministic, auditable configuration with no hidden overrides.
// Secrets never appear in the file — it holds paths to secret files,
// which are read into protected memory by lib/secret.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/faqbot-project/faqbot/lib/ref"
)

// EnvConfigPath is the environment variable naming the config file.
const EnvConfigPath = "FAQBOT_CONFIG"

// Config is the configuration shared by the faqbot binaries. The bot
// and the API service read the same file; each validates only the
// fields it needs.
type Config struct {
	// HomeserverURL is the base URL of the Matrix homeserver
	// (e.g., "https://matrix.example.org").
	HomeserverURL string `yaml:"homeserver_url"`

	// AdminUserID is the single identity allowed to invoke the
	// privileged !add command (e.g., "@admin:example.org").
	AdminUserID string `yaml:"admin_user_id"`

	// RulesPath is the JSON file holding the keyword→response mapping.
	// Both binaries must point at the same file.
	RulesPath string `yaml:"rules_path"`

	// TokenPath is the file holding the bot's Matrix access token
	// (written by faqbot-login). Read into an mmap-backed buffer at
	// startup; never logged.
	TokenPath string `yaml:"token_path"`

	// API configures the rules API service.
	API APIConfig `yaml:"api"`
}

// APIConfig configures the faqbot-api binary.
type APIConfig struct {
	// Listen is the TCP listen address (e.g., ":8080").
	Listen string `yaml:"listen"`

	// TokenPath is an optional file holding the shared bearer token
	// that guards POST /qa. When empty, the mutating API path is open
	// and the service must only be reachable on a trusted network.
	TokenPath string `yaml:"token_path,omitempty"`
}

// Load reads and parses the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return &cfg, nil
}

// Locate resolves the config file path from the --config flag value or
// the FAQBOT_CONFIG environment variable, flag taking precedence.
// Returns an error when neither is set — there is no default location.
func Locate(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if fromEnv := os.Getenv(EnvConfigPath); fromEnv != "" {
		return fromEnv, nil
	}
	return "", fmt.Errorf("config: no config file specified (set %s or pass --config)", EnvConfigPath)
}

// Admin parses the configured administrator identity.
func (c *Config) Admin() (ref.UserID, error) {
	if c.AdminUserID == "" {
		return ref.UserID{}, fmt.Errorf("config: admin_user_id is required")
	}
	admin, err := ref.ParseUserID(c.AdminUserID)
	if err != nil {
		return ref.UserID{}, fmt.Errorf("config: admin_user_id: %w", err)
	}
	return admin, nil
}

// ValidateBot checks the fields the chat bot requires. A missing access
// token path is the fatal misconfiguration the bot must refuse to start
// on.
func (c *Config) ValidateBot() error {
	if c.HomeserverURL == "" {
		return fmt.Errorf("config: homeserver_url is required")
	}
	if _, err := c.Admin(); err != nil {
		return err
	}
	if c.RulesPath == "" {
		return fmt.Errorf("config: rules_path is required")
	}
	if c.TokenPath == "" {
		return fmt.Errorf("config: token_path is required")
	}
	return nil
}

// ValidateAPI checks the fields the rules API service requires.
func (c *Config) ValidateAPI() error {
	if c.RulesPath == "" {
		return fmt.Errorf("config: rules_path is required")
	}
	if c.API.Listen == "" {
		return fmt.Errorf("config: api.listen is required")
	}
	return nil
}
