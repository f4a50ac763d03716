// Copyright 2026 The Faqbot Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
)

const validConfig = `
homeserver_url: https://matrix.example.org
admin_user_id: "@admin:example.org"
rules_path: /var/lib/faqbot/rules.json
token_path: /var/lib/faqbot/token
api:
  listen: ":8080"
  token_path: /var/lib/faqbot/api-token
`

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "faqbot.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, validConfig))
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.HomeserverURL != "https://matrix.example.org" {
			t.Errorf("unexpected homeserver: %s", cfg.HomeserverURL)
		}
		if cfg.API.Listen != ":8080" {
			t.Errorf("unexpected listen address: %s", cfg.API.Listen)
		}
		admin, err := cfg.Admin()
		if err != nil {
			t.Fatalf("Admin failed: %v", err)
		}
		if admin.String() != "@admin:example.org" {
			t.Errorf("unexpected admin: %s", admin)
		}
		if err := cfg.ValidateBot(); err != nil {
			t.Errorf("ValidateBot failed: %v", err)
		}
		if err := cfg.ValidateAPI(); err != nil {
			t.Errorf("ValidateAPI failed: %v", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
			t.Fatal("expected error for missing file")
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		if _, err := Load(writeConfig(t, "{{not yaml")); err == nil {
			t.Fatal("expected error for invalid yaml")
		}
	})
}

func TestValidate(t *testing.T) {
	t.Run("bot requires token path", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, `
homeserver_url: https://matrix.example.org
admin_user_id: "@admin:example.org"
rules_path: /var/lib/faqbot/rules.json
`))
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if err := cfg.ValidateBot(); err == nil {
			t.Fatal("expected error for missing token_path")
		}
	})

	t.Run("bot requires parseable admin", func(t *testing.T) {
		cfg := &Config{
			HomeserverURL: "https://matrix.example.org",
			AdminUserID:   "not-a-user-id",
			RulesPath:     "rules.json",
			TokenPath:     "token",
		}
		if err := cfg.ValidateBot(); err == nil {
			t.Fatal("expected error for malformed admin_user_id")
		}
	})

	t.Run("api requires listen address", func(t *testing.T) {
		cfg := &Config{RulesPath: "rules.json"}
		if err := cfg.ValidateAPI(); err == nil {
			t.Fatal("expected error for missing api.listen")
		}
	})
}

func TestLocate(t *testing.T) {
	t.Run("flag wins over environment", func(t *testing.T) {
		t.Setenv(EnvConfigPath, "/from/env.yaml")
		path, err := Locate("/from/flag.yaml")
		if err != nil {
			t.Fatalf("Locate failed: %v", err)
		}
		if path != "/from/flag.yaml" {
			t.Errorf("unexpected path: %s", path)
		}
	})

	t.Run("environment fallback", func(t *testing.T) {
		t.Setenv(EnvConfigPath, "/from/env.yaml")
		path, err := Locate("")
		if err != nil {
			t.Fatalf("Locate failed: %v", err)
		}
		if path != "/from/env.yaml" {
			t.Errorf("unexpected path: %s", path)
		}
	})

	t.Run("neither set", func(t *testing.T) {
		t.Setenv(EnvConfigPath, "")
		if _, err := Locate(""); err == nil {
			t.Fatal("expected error when no config location is given")
		}
	})
}
