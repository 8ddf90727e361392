// ABOUTME: Configuration loading and parsing for authgate
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete authgate configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Token    TokenConfig    `yaml:"token"`
	Store    StoreConfig    `yaml:"store"`
	Backends BackendsConfig `yaml:"backends"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds the gateway listen address and the endpoint remote
// resolvers use to reach it.
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// Token type constants for TokenConfig.Type.
const (
	TokenTypeOpaque = "opaque" // random id persisted in the token store
	TokenTypeJWT    = "jwt"    // stateless HS256, no store entry
)

// TokenConfig holds token issuance configuration
type TokenConfig struct {
	Type      string        `yaml:"type"`
	TTL       time.Duration `yaml:"-"`
	JWTSecret string        `yaml:"jwt_secret"`

	// Raw string value for YAML unmarshaling
	TTLRaw string `yaml:"ttl"`
}

// Store kind constants for StoreConfig.Kind.
const (
	StoreKindFile   = "file"
	StoreKindSQLite = "sqlite"
)

// StoreConfig holds token store configuration
type StoreConfig struct {
	Kind string `yaml:"kind"`
	// Dir is the file-per-token directory (kind: file)
	Dir string `yaml:"dir"`
	// Path is the database file (kind: sqlite)
	Path string `yaml:"path"`
}

// BackendsConfig holds per-backend default parameter values. Values are
// addressable as <backend>.<param>, e.g. defaults["ldap"]["basedn"].
type BackendsConfig struct {
	Defaults map[string]map[string]string `yaml:"defaults"`

	// StaticUsers enables the bundled static backend when non-empty.
	// Keys are usernames, values bcrypt hashes.
	StaticUsers map[string]string `yaml:"static_users"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the value configured for <backend>.<param>, if any.
func (b BackendsConfig) Default(backend, param string) (string, bool) {
	params, ok := b.Defaults[backend]
	if !ok {
		return "", false
	}
	v, ok := params[param]
	return v, ok
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	// Parse duration fields
	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// DefaultTokenTTL is used when token.ttl is not configured (12 hours,
// matching the usual session lifetime of the control plane).
const DefaultTokenTTL = 12 * time.Hour

func (c *Config) applyDefaults() {
	if c.Token.Type == "" {
		c.Token.Type = TokenTypeOpaque
	}
	if c.Store.Kind == "" {
		c.Store.Kind = StoreKindFile
	}
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	// Match ${VAR_NAME} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}

	switch c.Token.Type {
	case TokenTypeOpaque:
	case TokenTypeJWT:
		if c.Token.JWTSecret == "" {
			return fmt.Errorf("token.jwt_secret is required when token.type is %q", TokenTypeJWT)
		}
	default:
		return fmt.Errorf("token.type must be %q or %q, got %q", TokenTypeOpaque, TokenTypeJWT, c.Token.Type)
	}

	switch c.Store.Kind {
	case StoreKindFile:
		if c.Token.Type == TokenTypeOpaque && c.Store.Dir == "" {
			return fmt.Errorf("store.dir is required when store.kind is %q", StoreKindFile)
		}
	case StoreKindSQLite:
		if c.Token.Type == TokenTypeOpaque && c.Store.Path == "" {
			return fmt.Errorf("store.path is required when store.kind is %q", StoreKindSQLite)
		}
	default:
		return fmt.Errorf("store.kind must be %q or %q, got %q", StoreKindFile, StoreKindSQLite, c.Store.Kind)
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	cfg.Token.TTL = DefaultTokenTTL

	if cfg.Token.TTLRaw != "" {
		ttl, err := time.ParseDuration(cfg.Token.TTLRaw)
		if err != nil {
			return fmt.Errorf("parsing token.ttl %q: %w", cfg.Token.TTLRaw, err)
		}
		if ttl <= 0 {
			return fmt.Errorf("token.ttl must be positive, got %q", cfg.Token.TTLRaw)
		}
		cfg.Token.TTL = ttl
	}

	return nil
}
