// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML loading, env var expansion, defaults, and validation

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, `
server:
  http_addr: "0.0.0.0:4506"

token:
  type: "opaque"
  ttl: "30m"

store:
  kind: "file"
  dir: "./tokens"

backends:
  defaults:
    ldap:
      basedn: "dc=corp,dc=example"

logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPAddr != "0.0.0.0:4506" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.Server.HTTPAddr, "0.0.0.0:4506")
	}
	if cfg.Token.TTL != 30*time.Minute {
		t.Errorf("Token.TTL = %v, want %v", cfg.Token.TTL, 30*time.Minute)
	}
	if cfg.Store.Kind != StoreKindFile {
		t.Errorf("Store.Kind = %q, want %q", cfg.Store.Kind, StoreKindFile)
	}
	if v, ok := cfg.Backends.Default("ldap", "basedn"); !ok || v != "dc=corp,dc=example" {
		t.Errorf("Default(ldap, basedn) = %q, %v", v, ok)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoad_Defaults(t *testing.T) {
	configPath := writeConfig(t, `
server:
  http_addr: ":4506"

store:
  dir: "./tokens"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Token.Type != TokenTypeOpaque {
		t.Errorf("Token.Type = %q, want %q", cfg.Token.Type, TokenTypeOpaque)
	}
	if cfg.Token.TTL != DefaultTokenTTL {
		t.Errorf("Token.TTL = %v, want %v", cfg.Token.TTL, DefaultTokenTTL)
	}
	if cfg.Store.Kind != StoreKindFile {
		t.Errorf("Store.Kind = %q, want %q", cfg.Store.Kind, StoreKindFile)
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("AUTHGATE_TEST_SECRET", "super-secret-value")

	configPath := writeConfig(t, `
server:
  http_addr: ":4506"

token:
  type: "jwt"
  jwt_secret: "${AUTHGATE_TEST_SECRET}"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Token.JWTSecret != "super-secret-value" {
		t.Errorf("JWTSecret = %q, want expanded env value", cfg.Token.JWTSecret)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing http addr",
			content: "store:\n  dir: ./tokens\n",
			wantErr: "server.http_addr",
		},
		{
			name: "jwt without secret",
			content: `
server:
  http_addr: ":4506"
token:
  type: "jwt"
`,
			wantErr: "token.jwt_secret",
		},
		{
			name: "unknown token type",
			content: `
server:
  http_addr: ":4506"
token:
  type: "macaroon"
store:
  dir: ./tokens
`,
			wantErr: "token.type",
		},
		{
			name: "file store without dir",
			content: `
server:
  http_addr: ":4506"
store:
  kind: "file"
`,
			wantErr: "store.dir",
		},
		{
			name: "sqlite store without path",
			content: `
server:
  http_addr: ":4506"
store:
  kind: "sqlite"
`,
			wantErr: "store.path",
		},
		{
			name: "bad ttl",
			content: `
server:
  http_addr: ":4506"
store:
  dir: ./tokens
token:
  ttl: "yesterday"
`,
			wantErr: "token.ttl",
		},
		{
			name: "negative ttl",
			content: `
server:
  http_addr: ":4506"
store:
  dir: ./tokens
token:
  ttl: "-5m"
`,
			wantErr: "token.ttl",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := writeConfig(t, tt.content)
			_, err := Load(configPath)
			if err == nil {
				t.Fatal("Load() should have returned an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Load() should have returned an error for a missing file")
	}
}

func TestBackendsConfig_Default(t *testing.T) {
	b := BackendsConfig{Defaults: map[string]map[string]string{
		"static": {"domain": "corp"},
	}}

	if v, ok := b.Default("static", "domain"); !ok || v != "corp" {
		t.Errorf("Default(static, domain) = %q, %v, want corp, true", v, ok)
	}
	if _, ok := b.Default("static", "realm"); ok {
		t.Error("Default(static, realm) should be absent")
	}
	if _, ok := b.Default("ldap", "domain"); ok {
		t.Error("Default(ldap, domain) should be absent")
	}
}
