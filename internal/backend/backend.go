// ABOUTME: Backend interface and registry for pluggable external authentication
// ABOUTME: Maps backend names to implementations with declared parameter specs

package backend

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrUnknownBackend is returned when a requested backend has not been registered.
var ErrUnknownBackend = errors.New("backend unavailable")

// ParamSpec declares the parameters a backend accepts.
//
// Required parameters are positional and ordered. By contract, Required[0]
// names the principal identity parameter (e.g. "username"): the value bound
// to it is the Identity a successful authentication returns. Every backend
// must declare at least one required parameter for this reason.
//
// Optional parameters carry a default value that is used when the caller
// supplies nothing.
type ParamSpec struct {
	Required []string
	Optional map[string]string
}

// Backend is a pluggable external authentication mechanism.
type Backend interface {
	// ParamSpec returns the parameters this backend expects. See ParamSpec
	// for the identity contract on Required[0].
	ParamSpec() ParamSpec

	// Authenticate verifies the gathered parameters. It returns the
	// authenticated principal name and ok=true on success, or ok=false on
	// bad credentials. err is reserved for backend faults (unreachable
	// directory, misconfiguration) and is never surfaced to callers.
	Authenticate(ctx context.Context, params map[string]string) (identity string, ok bool, err error)
}

// Registry maps backend names to implementations. Backends are registered
// explicitly at startup; there is no runtime discovery.
type Registry struct {
	mu       sync.RWMutex
	backends map[string]Backend
	logger   *slog.Logger
}

// NewRegistry creates an empty backend registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		backends: make(map[string]Backend),
		logger:   logger.With("component", "backend"),
	}
}

// Register adds a backend under the given name. Registering an existing name
// replaces the previous backend (last registration wins).
func (r *Registry) Register(name string, b Backend) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.backends[name]; exists {
		r.logger.Warn("replacing registered backend", "backend", name)
	}
	r.backends[name] = b
}

// Resolve returns the backend registered under name.
func (r *Registry) Resolve(name string) (Backend, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.backends[name]
	return b, ok
}

// Names returns the registered backend names, for startup logging.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	return names
}
