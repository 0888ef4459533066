// Package microej implements core.Driver by forwarding each command to the
// MicroEJ automation proxy over HTTP.
package microej

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/devicelab-dev/microej-driver/pkg/core"
	"github.com/devicelab-dev/microej-driver/pkg/logger"
)

// DefaultProxyURL is where the MicroEJ proxy listens unless configured otherwise.
const DefaultProxyURL = "http://localhost:4724/"

// Client handles HTTP communication with the MicroEJ proxy.
// Fields are set once in NewClient; a Client is safe for concurrent use.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a new proxy client. An empty baseURL selects
// DefaultProxyURL; timeout 0 means no client-side timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultProxyURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL returns the proxy base URL, always ending in "/".
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get issues GET <baseURL><path>.
func (c *Client) Get(ctx context.Context, path string) (json.RawMessage, error) {
	return c.request(ctx, http.MethodGet, path, nil)
}

// Post issues POST <baseURL><path> with payload as the JSON body, unmodified.
func (c *Client) Post(ctx context.Context, path string, payload json.RawMessage) (json.RawMessage, error) {
	if payload == nil {
		payload = json.RawMessage("null")
	}
	return c.request(ctx, http.MethodPost, path, payload)
}

func (c *Client) request(ctx context.Context, method, path string, body []byte) (json.RawMessage, error) {
	start := time.Now()

	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+escapeStrayPercent(path), reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/plain, */*")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		logger.Error("%s %s [%v] no response: %v", method, path, elapsed, err)
		return nil, core.ErrSessionNotCreated.
			WithMessage("Could not connect to " + c.baseURL).
			WithCause(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Warn("%s %s [%v] ERR:%d", method, path, elapsed, resp.StatusCode)
		details := map[string]interface{}{"path": path, "status": resp.StatusCode}
		if resp.StatusCode == http.StatusBadRequest {
			return nil, core.ErrUnsupportedOperation.WithDetails(details)
		}
		return nil, core.ErrProxyRequest.WithMessage(statusText(resp)).WithDetails(details)
	}

	logger.Debug("%s %s [%v] OK", method, path, elapsed)
	return decodeBody(respBody)
}

// escapeStrayPercent encodes a "%" that does not start a valid escape, so
// references such as "a%zz" reach the proxy instead of failing URL parsing.
// Valid escapes and all other characters pass through unchanged.
func escapeStrayPercent(path string) string {
	if !strings.Contains(path, "%") {
		return path
	}
	var b strings.Builder
	for i := 0; i < len(path); i++ {
		if path[i] == '%' && (i+2 >= len(path) || !isHex(path[i+1]) || !isHex(path[i+2])) {
			b.WriteString("%25")
			continue
		}
		b.WriteByte(path[i])
	}
	return b.String()
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// statusText returns the reason phrase the proxy sent, falling back to the
// standard text for the status code.
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

// decodeBody keeps JSON bodies as-is and turns anything else into a JSON
// string, so callers always receive a valid JSON value.
func decodeBody(body []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return json.RawMessage("null"), nil
	}
	if json.Valid(trimmed) {
		return json.RawMessage(trimmed), nil
	}
	encoded, err := json.Marshal(string(body))
	if err != nil {
		return nil, fmt.Errorf("encode text response: %w", err)
	}
	return encoded, nil
}
