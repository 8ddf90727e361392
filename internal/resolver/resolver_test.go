// ABOUTME: Tests for the remote resolver client
// ABOUTME: Covers passthrough of empty responses, token caching, and the HTTP transport

package resolver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openexec/authgate/internal/backend"
	"github.com/openexec/authgate/internal/config"
	"github.com/openexec/authgate/internal/gather"
	"github.com/openexec/authgate/internal/wire"
)

// fakeTransport returns a scripted response and records the request.
type fakeTransport struct {
	resp map[string]any
	got  wire.Request
}

func (f *fakeTransport) Send(_ context.Context, req wire.Request) (map[string]any, error) {
	f.got = req
	return f.resp, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testGatherer() *gather.Gatherer {
	reg := backend.NewRegistry(testLogger())
	reg.Register("local", backend.Func{
		Spec: backend.ParamSpec{
			Required: []string{"username"},
			Optional: map[string]string{"domain": "corp"},
		},
		Fn: func(_ context.Context, params map[string]string) (string, bool, error) {
			return params["username"], true, nil
		},
	})
	return gather.New(reg, config.BackendsConfig{}, nil)
}

func sampleResponse(id string) map[string]any {
	return map[string]any{
		wire.KeyToken:  id,
		wire.KeyName:   "alice",
		wire.KeyEauth:  "local",
		wire.KeyStart:  float64(1700000000),
		wire.KeyExpire: float64(1700043200),
	}
}

func TestRequestToken_CachesToken(t *testing.T) {
	id := strings.Repeat("ab", 32)
	transport := &fakeTransport{resp: sampleResponse(id)}
	tokenFile := filepath.Join(t.TempDir(), "token")

	r := New(testGatherer(), transport, tokenFile, testLogger())

	resp, err := r.RequestToken(context.Background(), "local", map[string]string{"username": "alice"})
	require.NoError(t, err)
	assert.Equal(t, id, resp[wire.KeyToken])

	// Envelope was tagged correctly.
	assert.Equal(t, wire.CmdMkToken, transport.got.Cmd)
	assert.Equal(t, "local", transport.got.Eauth)

	// Token id landed in the cache file.
	cached, ok := r.CachedToken()
	require.True(t, ok)
	assert.Equal(t, id, cached)
}

func TestRequestToken_EmptyResponsePassthrough(t *testing.T) {
	transport := &fakeTransport{resp: map[string]any{}}
	tokenFile := filepath.Join(t.TempDir(), "token")

	r := New(testGatherer(), transport, tokenFile, testLogger())

	resp, err := r.RequestToken(context.Background(), "local", map[string]string{"username": "alice"})
	require.NoError(t, err)
	assert.Empty(t, resp, "response without token key must come back unchanged")

	// No cache file is written for a failed request.
	_, statErr := os.Stat(tokenFile)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRequestToken_ErrorPayloadPassthrough(t *testing.T) {
	payload := map[string]any{"error": "ldap: size limit exceeded"}
	transport := &fakeTransport{resp: payload}

	r := New(testGatherer(), transport, "", testLogger())

	resp, err := r.RequestToken(context.Background(), "local", nil)
	require.NoError(t, err)
	assert.Equal(t, payload, resp, "backend-specific payloads are preserved")
}

func TestRequestToken_CacheWriteFailureIgnored(t *testing.T) {
	id := strings.Repeat("cd", 32)
	transport := &fakeTransport{resp: sampleResponse(id)}

	// Point the cache at an unwritable location.
	r := New(testGatherer(), transport, filepath.Join(t.TempDir(), "no", "such", "dir", "token"), testLogger())

	resp, err := r.RequestToken(context.Background(), "local", map[string]string{"username": "alice"})
	require.NoError(t, err)
	assert.Equal(t, id, resp[wire.KeyToken], "token is usable even when caching fails")
}

func TestFetchToken_Passthrough(t *testing.T) {
	id := strings.Repeat("ef", 32)
	transport := &fakeTransport{resp: sampleResponse(id)}

	r := New(testGatherer(), transport, "", testLogger())

	resp, err := r.FetchToken(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "alice", resp[wire.KeyName])
	assert.Equal(t, wire.CmdGetToken, transport.got.Cmd)
	assert.Equal(t, id, transport.got.Token)
}

func TestGather_DelegatesToGatherer(t *testing.T) {
	r := New(testGatherer(), &fakeTransport{resp: map[string]any{}}, "", testLogger())

	params, err := r.Gather("local", map[string]string{"username": "alice"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"username": "alice", "domain": "corp"}, params)
}

func TestHTTPTransport_RoundTrip(t *testing.T) {
	id := strings.Repeat("ab", 32)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/request", r.URL.Path)

		var req wire.Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, wire.CmdMkToken, req.Cmd)

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(sampleResponse(id)))
	}))
	defer server.Close()

	transport := NewHTTPTransport(server.URL)
	resp, err := transport.Send(context.Background(), wire.Request{
		Cmd:    wire.CmdMkToken,
		Eauth:  "local",
		Params: map[string]string{"username": "alice"},
	})
	require.NoError(t, err)
	assert.Equal(t, id, resp[wire.KeyToken])
}
