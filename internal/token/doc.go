// Package token mints and validates the session tokens downstream components
// accept in place of re-authentication.
//
// Two managers share one surface. The opaque Manager hashes 512 bytes of
// secure randomness into an identifier, regenerates on the rare store
// collision, and persists a record with the configured TTL; lookups enforce
// expiry lazily and purge dead records. The SignedManager instead mints
// self-contained HS256 tokens for storage-free deployments.
//
// Both fail closed: authentication failures and every lookup problem
// collapse to "no token", with detail only in operator logs.
package token
