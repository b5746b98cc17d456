// internal/gateway/http.go
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// HTTP posts callbacks to the host's NUI bridge at https://<resource>/<endpoint>.
type HTTP struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a gateway for the resource's callback base URL.
func New(baseURL string, timeout time.Duration) *HTTP {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTP{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ResourceURL returns the callback base URL of a resource.
func ResourceURL(resource string) string {
	return "https://" + strings.Trim(resource, "/")
}

// Post sends payload as JSON and decodes the reply.
func (h *HTTP) Post(ctx context.Context, endpoint string, payload any) (Response, error) {
	if payload == nil {
		payload = struct{}{}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Response{}, fmt.Errorf("failed to encode %s payload: %w", endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/"+endpoint, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %s: %v", ErrUnavailable, endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("failed to read %s reply: %w", endpoint, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Response{}, &StatusError{Endpoint: endpoint, Code: resp.StatusCode}
	}
	return decodeReply(raw), nil
}

// Healthcheck checks that the callback bridge answers at all.
func (h *HTTP) Healthcheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := h.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	resp.Body.Close()
	return nil
}

// decodeReply tolerates empty and non-object bodies, which callbacks often send.
func decodeReply(raw []byte) Response {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return Response{}
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Response{}
	}

	var r Response
	if v, ok := fields["status"]; ok {
		_ = json.Unmarshal(v, &r.Status)
	}
	if v, ok := fields["message"]; ok {
		_ = json.Unmarshal(v, &r.Message)
	}
	if v, ok := fields["data"]; ok {
		r.Data = v
	} else {
		r.Data = json.RawMessage(raw)
	}
	return r
}
