// Package config handles configuration loading for authgate.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	token:
//	  jwt_secret: "${AUTHGATE_JWT_SECRET}"
//
// Syntax: ${VAR_NAME}
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: "0.0.0.0:4506"   # token request endpoint
//
// Token issuance:
//
//	token:
//	  type: "opaque"              # opaque, jwt
//	  ttl: "12h"
//	  jwt_secret: "${AUTHGATE_JWT_SECRET}"   # required for type: jwt
//
// Token store:
//
//	store:
//	  kind: "file"                # file, sqlite
//	  dir: "/var/lib/authgate/tokens"
//	  path: "/var/lib/authgate/tokens.db"    # for kind: sqlite
//
// Per-backend parameter defaults, addressable as <backend>.<param>:
//
//	backends:
//	  defaults:
//	    ldap:
//	      basedn: "dc=corp,dc=example"
//	    static:
//	      domain: "corp"
//	  static_users:            # enables the bundled static backend
//	    alice: "$2a$10$..."    # bcrypt hash
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax. Supported units:
// ns, us, ms, s, m, h.
package config
