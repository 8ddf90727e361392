// ABOUTME: Store interface and record type for persisted session tokens
// ABOUTME: Defines the file-per-token record shape shared by all store kinds

package tokenstore

import (
	"context"
	"errors"
	"regexp"
)

// ErrNotFound is returned when a requested token does not exist
var ErrNotFound = errors.New("token not found")

// ErrBadTokenID is returned for token ids that are not well-formed. Store
// implementations reject these before touching the storage medium.
var ErrBadTokenID = errors.New("malformed token id")

// Record is the persisted representation of an issued token. Field names
// match the on-disk serialization: start/expire are Unix seconds, eauth is
// the backend that produced the token, and token doubles as the record key.
type Record struct {
	Start  int64  `cbor:"start" json:"start"`
	Expire int64  `cbor:"expire" json:"expire"`
	Name   string `cbor:"name" json:"name"`
	Eauth  string `cbor:"eauth" json:"eauth"`
	Token  string `cbor:"token" json:"token"`
}

// Store persists token records keyed by token id. Implementations do not
// interpret expiry; lazy expiration is the token manager's job.
type Store interface {
	// Put persists a record keyed by its Token field.
	Put(ctx context.Context, rec Record) error

	// Get returns the record for the given id, or ErrNotFound.
	Get(ctx context.Context, id string) (Record, error)

	// Delete removes the record for the given id. Deleting an absent record
	// is not an error.
	Delete(ctx context.Context, id string) error

	// Exists reports whether a record with the given id is persisted.
	// Used by the issue path's collision-regenerate loop.
	Exists(ctx context.Context, id string) (bool, error)

	// Close releases underlying resources.
	Close() error
}

// Token ids are lowercase hex digests. Anything else is rejected so ids can
// be used directly as filenames without a path traversal risk.
var tokenIDPattern = regexp.MustCompile(`^[0-9a-f]{16,128}$`)

// ValidID reports whether id is a well-formed token identifier.
func ValidID(id string) bool {
	return tokenIDPattern.MatchString(id)
}
