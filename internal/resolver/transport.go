// ABOUTME: HTTP transport implementation for the resolver
// ABOUTME: Posts JSON envelopes to the gateway's /v1/request route

package resolver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/openexec/authgate/internal/wire"
)

// HTTPTransport sends envelopes to a gateway over HTTP.
type HTTPTransport struct {
	endpoint string
	client   *http.Client
}

// NewHTTPTransport creates a transport for the gateway at baseURL
// (e.g. "http://gateway:4506"). The client timeout leaves room for the
// gateway's failure-normalization delay.
func NewHTTPTransport(baseURL string) *HTTPTransport {
	return &HTTPTransport{
		endpoint: baseURL + "/v1/request",
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

// Send posts the envelope and decodes the JSON response.
func (t *HTTPTransport) Send(ctx context.Context, req wire.Request) (map[string]any, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return decoded, nil
}
