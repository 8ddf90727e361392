// ABOUTME: Tests for the gateway token endpoint
// ABOUTME: Covers mk_token/get_token dispatch, empty-object failures, and bad envelopes

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openexec/authgate/internal/auth"
	"github.com/openexec/authgate/internal/token"
	"github.com/openexec/authgate/internal/wire"
)

// fakeService scripts Issue/Lookup results.
type fakeService struct {
	issueTok  *token.Token
	issueErr  error
	lookupTok *token.Token

	gotIssue  *auth.Request
	gotLookup string
}

func (f *fakeService) Issue(_ context.Context, req auth.Request) (*token.Token, error) {
	f.gotIssue = &req
	return f.issueTok, f.issueErr
}

func (f *fakeService) Lookup(_ context.Context, id string) *token.Token {
	f.gotLookup = id
	return f.lookupTok
}

func newTestServer(svc Service) *httptest.Server {
	s := NewServer("127.0.0.1:0", svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return httptest.NewServer(s.httpServer.Handler)
}

func post(t *testing.T, url string, req wire.Request) (int, map[string]any) {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)

	resp, err := http.Post(url+"/v1/request", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

func sampleToken() *token.Token {
	now := time.Unix(1700000000, 0)
	return &token.Token{
		Token:     strings.Repeat("ab", 32),
		Name:      "alice",
		Backend:   "static",
		IssuedAt:  now,
		ExpiresAt: now.Add(12 * time.Hour),
	}
}

func TestServer_MkToken(t *testing.T) {
	svc := &fakeService{issueTok: sampleToken()}
	ts := newTestServer(svc)
	defer ts.Close()

	status, body := post(t, ts.URL, wire.Request{
		Cmd:    wire.CmdMkToken,
		Eauth:  "static",
		Params: map[string]string{"username": "alice", "password": "hunter2"},
	})

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alice", body[wire.KeyName])
	assert.Equal(t, "static", body[wire.KeyEauth])
	assert.Equal(t, strings.Repeat("ab", 32), body[wire.KeyToken])
	assert.Equal(t, float64(1700000000), body[wire.KeyStart])

	require.NotNil(t, svc.gotIssue)
	assert.Equal(t, "static", svc.gotIssue.Backend)
	assert.Equal(t, "alice", svc.gotIssue.Params["username"])
}

func TestServer_MkTokenAuthFailure(t *testing.T) {
	svc := &fakeService{} // Issue returns nil token
	ts := newTestServer(svc)
	defer ts.Close()

	status, body := post(t, ts.URL, wire.Request{
		Cmd:    wire.CmdMkToken,
		Eauth:  "static",
		Params: map[string]string{"username": "alice", "password": "wrong"},
	})

	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, body, "failed issuance must answer an empty object")
}

func TestServer_MkTokenStorageFault(t *testing.T) {
	svc := &fakeService{issueErr: errors.New("disk full")}
	ts := newTestServer(svc)
	defer ts.Close()

	status, body := post(t, ts.URL, wire.Request{Cmd: wire.CmdMkToken, Eauth: "static"})

	// Storage faults look exactly like auth failures on the wire.
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, body)
}

func TestServer_GetToken(t *testing.T) {
	svc := &fakeService{lookupTok: sampleToken()}
	ts := newTestServer(svc)
	defer ts.Close()

	id := strings.Repeat("ab", 32)
	status, body := post(t, ts.URL, wire.Request{Cmd: wire.CmdGetToken, Token: id})

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alice", body[wire.KeyName])
	assert.Equal(t, id, svc.gotLookup)
}

func TestServer_GetTokenNotFound(t *testing.T) {
	svc := &fakeService{}
	ts := newTestServer(svc)
	defer ts.Close()

	status, body := post(t, ts.URL, wire.Request{Cmd: wire.CmdGetToken, Token: "whatever"})

	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, body)
}

func TestServer_UnknownCmd(t *testing.T) {
	ts := newTestServer(&fakeService{})
	defer ts.Close()

	status, body := post(t, ts.URL, wire.Request{Cmd: "rm_token"})

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body, "error")
}

func TestServer_MalformedBody(t *testing.T) {
	ts := newTestServer(&fakeService{})
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/v1/request", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_Health(t *testing.T) {
	ts := newTestServer(&fakeService{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
