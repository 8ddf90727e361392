// ABOUTME: Timing-normalized invocation of authentication backends
// ABOUTME: Clamps every failure to a randomized delay so causes are indistinguishable

package auth

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/openexec/authgate/internal/backend"
)

// DefaultFailFloor is the initial failure-latency ceiling. Real failures that
// take longer raise the ceiling; it is never lowered.
const DefaultFailFloor = time.Second

// Request is the normalized input to an authentication attempt.
type Request struct {
	// Backend names the requested authentication mechanism.
	Backend string
	// Params are the gathered parameters destined for the backend.
	Params map[string]string
}

// Authenticator invokes backends inside a timing-normalization envelope.
//
// The failure ceiling is process-scoped state shared by all attempts this
// instance handles: it starts at the configured floor, rises monotonically to
// the slowest observed legitimate failure, and is never reset. Every failed
// attempt blocks until a random target within ±25% of the ceiling has
// elapsed, so "unknown backend", "wrong password", and "backend fault" are
// indistinguishable by latency. Successes return immediately: the result
// itself already reveals success.
type Authenticator struct {
	reg     *backend.Registry
	maxFail atomic.Int64 // nanoseconds
	logger  *slog.Logger
}

// New creates an Authenticator over the given registry. A floor <= 0 uses
// DefaultFailFloor.
func New(reg *backend.Registry, floor time.Duration, logger *slog.Logger) *Authenticator {
	if floor <= 0 {
		floor = DefaultFailFloor
	}
	if logger == nil {
		logger = slog.Default()
	}
	a := &Authenticator{
		reg:    reg,
		logger: logger.With("component", "auth"),
	}
	a.maxFail.Store(int64(floor))
	return a
}

// Authenticate runs the request's backend and returns the authenticated
// identity. All failure causes collapse to ok=false after the normalization
// delay; the cause appears only in operator logs.
//
// The delay always runs to completion. It deliberately ignores ctx
// cancellation: aborting it on client disconnect would hand the timing
// signal back to the attacker.
func (a *Authenticator) Authenticate(ctx context.Context, req Request) (identity string, ok bool) {
	start := time.Now()

	identity, ok = a.call(ctx, req)
	if ok && identity != "" {
		return identity, true
	}

	elapsed := time.Since(start)
	a.raiseCeiling(elapsed)

	ceiling := time.Duration(a.maxFail.Load())
	deviation := ceiling / 4
	// Uniform in [ceiling-deviation, ceiling+deviation].
	target := ceiling - deviation + time.Duration(rand.Int64N(int64(2*deviation)+1))

	if remaining := target - time.Since(start); remaining > 0 {
		time.Sleep(remaining)
	}
	return "", false
}

// call resolves and invokes the backend. Malformed requests take the same
// path as credential failures; there is no fast return for them.
func (a *Authenticator) call(ctx context.Context, req Request) (string, bool) {
	if req.Backend == "" {
		a.logger.Warn("authentication request without backend")
		return "", false
	}
	b, found := a.reg.Resolve(req.Backend)
	if !found {
		a.logger.Warn("authentication request for unknown backend", "backend", req.Backend)
		return "", false
	}
	identity, ok, err := b.Authenticate(ctx, req.Params)
	if err != nil {
		a.logger.Error("authentication backend threw an exception",
			"backend", req.Backend, "error", err)
		return "", false
	}
	if !ok || identity == "" {
		a.logger.Info("authentication failed", "backend", req.Backend)
		return "", false
	}
	return identity, true
}

// raiseCeiling lifts the shared ceiling to elapsed if it is higher. A lost
// CAS race only leaves a slightly stale ceiling, which is harmless.
func (a *Authenticator) raiseCeiling(elapsed time.Duration) {
	for {
		cur := a.maxFail.Load()
		if int64(elapsed) <= cur {
			return
		}
		if a.maxFail.CompareAndSwap(cur, int64(elapsed)) {
			return
		}
	}
}

// FailCeiling returns the current failure-latency ceiling.
func (a *Authenticator) FailCeiling() time.Duration {
	return time.Duration(a.maxFail.Load())
}

// LoadName extracts the principal identity from a request without invoking
// the backend: by contract, the backend's first required parameter names the
// identity. Returns "" when the request names no usable backend.
func (a *Authenticator) LoadName(req Request) string {
	b, found := a.reg.Resolve(req.Backend)
	if !found {
		return ""
	}
	spec := b.ParamSpec()
	if len(spec.Required) == 0 {
		return ""
	}
	return req.Params[spec.Required[0]]
}
