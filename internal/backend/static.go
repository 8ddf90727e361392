// ABOUTME: Static credential backend backed by a fixed user table
// ABOUTME: Verifies passwords against bcrypt hashes, mainly for bootstrap and tests

package backend

import (
	"context"

	"golang.org/x/crypto/bcrypt"
)

// Static authenticates against a fixed in-memory table of bcrypt password
// hashes. It is intended for bootstrap setups and test environments; real
// deployments register directory-backed mechanisms instead.
type Static struct {
	users map[string]string // username -> bcrypt hash
}

// NewStatic creates a static backend from a username -> bcrypt hash table.
func NewStatic(users map[string]string) *Static {
	copied := make(map[string]string, len(users))
	for name, hash := range users {
		copied[name] = hash
	}
	return &Static{users: copied}
}

// ParamSpec declares username (identity) and password as required.
func (s *Static) ParamSpec() ParamSpec {
	return ParamSpec{
		Required: []string{"username", "password"},
	}
}

// Authenticate compares the supplied password against the stored hash.
// Unknown users run a comparison against a dummy hash so the cost is the
// same as a wrong password.
func (s *Static) Authenticate(_ context.Context, params map[string]string) (string, bool, error) {
	username := params["username"]
	password := params["password"]

	hash, exists := s.users[username]
	if !exists {
		hash = dummyHash
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return "", false, nil
	}
	if !exists {
		return "", false, nil
	}
	return username, true, nil
}

// dummyHash is a bcrypt hash of an unguessable throwaway value, compared
// against when the user is unknown to keep the comparison cost constant.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
