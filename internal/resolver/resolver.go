// ABOUTME: Remote resolver client used by callers not colocated with the gateway
// ABOUTME: Gathers credentials, requests tokens over the transport, and caches them locally

package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/openexec/authgate/internal/gather"
	"github.com/openexec/authgate/internal/wire"
)

// Transport delivers an envelope to a remote gateway and returns the decoded
// response.
type Transport interface {
	Send(ctx context.Context, req wire.Request) (map[string]any, error)
}

// Resolver is the client side of the remote path: it gathers credentials for
// a backend, round-trips a token request, and caches the returned token id
// for subsequent invocations.
type Resolver struct {
	gatherer  *gather.Gatherer
	transport Transport
	tokenFile string // "" disables the local cache
	logger    *slog.Logger
}

// New creates a Resolver. tokenFile names the local cache for issued token
// ids; an empty path disables caching.
func New(g *gather.Gatherer, t Transport, tokenFile string, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		gatherer:  g,
		transport: t,
		tokenFile: tokenFile,
		logger:    logger.With("component", "resolver"),
	}
}

// Gather fills the named backend's parameter list. Interactivity is decided
// by how the gatherer was constructed.
func (r *Resolver) Gather(backendName string, supplied map[string]string) (map[string]string, error) {
	return r.gatherer.Gather(backendName, supplied)
}

// RequestToken sends a mk_token envelope and returns the decoded response.
// When the response carries a token it is cached locally best-effort; a
// response without a token field is returned verbatim so backend-specific
// error payloads survive (callers must check for the token key themselves).
func (r *Resolver) RequestToken(ctx context.Context, backendName string, params map[string]string) (map[string]any, error) {
	resp, err := r.transport.Send(ctx, wire.Request{
		Cmd:    wire.CmdMkToken,
		Eauth:  backendName,
		Params: params,
	})
	if err != nil {
		return nil, fmt.Errorf("requesting token: %w", err)
	}

	if _, ok := resp[wire.KeyToken]; !ok {
		return resp, nil
	}

	r.cacheToken(resp)
	return resp, nil
}

// FetchToken sends a get_token envelope and returns the decoded response
// unchanged.
func (r *Resolver) FetchToken(ctx context.Context, id string) (map[string]any, error) {
	resp, err := r.transport.Send(ctx, wire.Request{
		Cmd:   wire.CmdGetToken,
		Token: id,
	})
	if err != nil {
		return nil, fmt.Errorf("fetching token: %w", err)
	}
	return resp, nil
}

// cacheToken writes the token id to the local token file. Failures are
// non-fatal: the token is still usable from the in-memory response.
func (r *Resolver) cacheToken(resp map[string]any) {
	if r.tokenFile == "" {
		return
	}
	id, ok := resp[wire.KeyToken].(string)
	if !ok || id == "" {
		return
	}
	if err := os.WriteFile(r.tokenFile, []byte(id), 0600); err != nil {
		r.logger.Debug("token cache write failed", "path", r.tokenFile, "error", err)
	}
}

// CachedToken reads the locally cached token id, if any.
func (r *Resolver) CachedToken() (string, bool) {
	if r.tokenFile == "" {
		return "", false
	}
	data, err := os.ReadFile(r.tokenFile)
	if err != nil || len(data) == 0 {
		return "", false
	}
	return string(data), true
}
