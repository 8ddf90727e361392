// Package tokenstore persists issued session tokens.
//
// Two implementations are provided: a file-per-token directory of CBOR
// records (the default) and a SQLite table for deployments that prefer a
// single database file. Both key records by the token id and store the same
// fields: start, expire (Unix seconds), name, eauth, token.
//
// Stores are deliberately dumb: they do not check expiry and hold no
// cross-process locks. Expiration is enforced lazily by the token manager at
// lookup time, and id uniqueness by its regenerate-on-collision issue loop.
package tokenstore
