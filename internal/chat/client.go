package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"
)

// Request is the body posted to the chat endpoint.
type Request struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// Reply is a successful answer from the chat service.
type Reply struct {
	Text   string
	Source Source
}

// Client talks to the remote chat service.
type Client interface {
	Chat(ctx context.Context, req Request) (Reply, error)
}

// HTTPClient is the Client for the JSON-over-HTTP chat service.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient builds a client for baseURL. A zero timeout leaves requests
// unbounded.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// BaseURL is the service root without a trailing slash.
func (c *HTTPClient) BaseURL() string { return c.baseURL }

// Chat posts one message to /chat and decodes the reply.
func (c *HTTPClient) Chat(ctx context.Context, req Request) (Reply, error) {
	endpoint := c.baseURL + "/chat"
	buf, err := json.Marshal(req)
	if err != nil {
		return Reply{}, fmt.Errorf("encode chat request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(buf))
	if err != nil {
		return Reply{}, &TransportError{Op: "POST /chat", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	payload, status, err := c.do(httpReq)
	if err != nil {
		return Reply{}, &TransportError{Op: "POST /chat", Err: err}
	}
	if status < 200 || status >= 300 {
		return Reply{}, &ServiceError{StatusCode: status, Detail: serviceDetail(payload)}
	}

	var parsed struct {
		Response     *string `json:"response"`
		URL          *string `json:"url"`
		DocumentName *string `json:"document_name"`
	}
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return Reply{}, &MalformedResponseError{Reason: "body is not a chat reply", Err: err}
	}
	if parsed.Response == nil {
		return Reply{}, &MalformedResponseError{Reason: `missing "response" field`}
	}
	reply := Reply{Text: *parsed.Response}
	if parsed.URL != nil {
		reply.Source.URL = *parsed.URL
	}
	if parsed.DocumentName != nil {
		reply.Source.DocumentName = *parsed.DocumentName
	}
	return reply, nil
}

// Health probes GET /health and reports the service status string.
func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return "", &TransportError{Op: "GET /health", Err: err}
	}
	payload, status, err := c.do(httpReq)
	if err != nil {
		return "", &TransportError{Op: "GET /health", Err: err}
	}
	if status < 200 || status >= 300 {
		return "", &ServiceError{StatusCode: status, Detail: serviceDetail(payload)}
	}
	var parsed struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", &MalformedResponseError{Reason: "health body is not json", Err: err}
	}
	if strings.TrimSpace(parsed.Status) == "" {
		return "", &MalformedResponseError{Reason: `missing "status" field`}
	}
	return parsed.Status, nil
}

func (c *HTTPClient) do(req *http.Request) ([]byte, int, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}
	return payload, resp.StatusCode, nil
}

// serviceDetail extracts a FastAPI style {"detail": "..."} message, falling
// back to a compacted body snippet.
func serviceDetail(payload []byte) string {
	var parsed struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(payload, &parsed); err == nil {
		if detail, ok := parsed.Detail.(string); ok && strings.TrimSpace(detail) != "" {
			return compactSingleLine(detail, 240)
		}
	}
	return compactSingleLine(string(payload), 240)
}

// compactSingleLine collapses whitespace and caps the result at limit runes.
func compactSingleLine(text string, limit int) string {
	compact := strings.Join(strings.Fields(text), " ")
	if limit <= 0 || utf8.RuneCountInString(compact) <= limit {
		return compact
	}
	runes := []rune(compact)
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}
