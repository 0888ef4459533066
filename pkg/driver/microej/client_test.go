package microej

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/devicelab-dev/microej-driver/pkg/core"
)

func TestNewClient_BaseURL(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", DefaultProxyURL},
		{"http://localhost:4724/", "http://localhost:4724/"},
		{"http://10.0.0.2:9000", "http://10.0.0.2:9000/"},
	}

	for _, tt := range tests {
		if got := NewClient(tt.input, 0).BaseURL(); got != tt.want {
			t.Errorf("NewClient(%q).BaseURL() = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestClient_GetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/getWindowRect" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"x":0,"y":0,"width":480,"height":272}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	raw, err := client.Get(context.Background(), "getWindowRect")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if string(raw) != `{"x":0,"y":0,"width":480,"height":272}` {
		t.Errorf("unexpected body %s", raw)
	}
}

func TestClient_GetPlainText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		io.WriteString(w, "<Widget id=\"root\"/>")
	}))
	defer server.Close()

	raw, err := NewClient(server.URL, time.Second).Get(context.Background(), "getPageSource")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		t.Fatalf("expected JSON string, got %s: %v", raw, err)
	}
	if s != `<Widget id="root"/>` {
		t.Errorf("got %q", s)
	}
}

func TestClient_GetEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	raw, err := NewClient(server.URL, time.Second).Get(context.Background(), "click/e1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(raw) != "null" {
		t.Errorf("expected null, got %s", raw)
	}
}

func TestClient_PostPayloadVerbatim(t *testing.T) {
	payload := json.RawMessage(`{"actions":[{"type":"pointer","id":"finger1","actions":[{"type":"pointerDown","button":0}]}]}`)
	var received []byte
	var contentType string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/performActions" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		received, _ = io.ReadAll(r.Body)
		contentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, time.Second).Post(context.Background(), "performActions", payload)
	if err != nil {
		t.Fatalf("Post failed: %v", err)
	}

	if string(received) != string(payload) {
		t.Errorf("payload changed:\n got  %s\n want %s", received, payload)
	}
	if contentType != "application/json" {
		t.Errorf("Content-Type = %q", contentType)
	}
}

func TestClient_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(url, time.Second)
	_, err := client.Get(context.Background(), "screenshot")
	if err == nil {
		t.Fatal("expected error")
	}

	if !errors.Is(err, core.ErrSessionNotCreated) {
		t.Fatalf("expected session not created, got %v", err)
	}
	if !strings.Contains(err.Error(), "Could not connect to "+client.BaseURL()) {
		t.Errorf("error should name the proxy URL: %v", err)
	}
}

func TestClient_CanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(server.URL, time.Second).Get(ctx, "screenshot")
	if !errors.Is(err, core.ErrSessionNotCreated) {
		t.Errorf("expected session not created, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected cause context.Canceled, got %v", err)
	}
}

func TestClient_StatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		reason  string
		wantErr *core.ExecutionError
		wantMsg string
	}{
		{"bad request", http.StatusBadRequest, "", core.ErrUnsupportedOperation, ""},
		{"not found", http.StatusNotFound, "", core.ErrProxyRequest, "Not Found"},
		{"server error", http.StatusInternalServerError, "", core.ErrProxyRequest, "Internal Server Error"},
		{"custom reason", http.StatusServiceUnavailable, "Device Busy", core.ErrProxyRequest, "Device Busy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := NewClient(server.URL, time.Second)
			if tt.reason != "" {
				client.client.Transport = reasonTransport{reason: tt.reason}
			}

			_, err := client.Get(context.Background(), "getText/e1")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %s, got %v", tt.wantErr.Code, err)
			}

			var execErr *core.ExecutionError
			if !errors.As(err, &execErr) {
				t.Fatalf("expected ExecutionError, got %T", err)
			}
			if tt.wantMsg != "" && execErr.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", execErr.Message, tt.wantMsg)
			}
			if execErr.Details["status"] != tt.status {
				t.Errorf("Details[status] = %v, want %d", execErr.Details["status"], tt.status)
			}
		})
	}
}

// reasonTransport rewrites the status line reason phrase of every response.
type reasonTransport struct {
	reason string
}

func (rt reasonTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := http.DefaultTransport.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	resp.Status = strconv.Itoa(resp.StatusCode) + " " + rt.reason
	return resp, nil
}

func TestStatusText(t *testing.T) {
	tests := []struct {
		status string
		code   int
		want   string
	}{
		{"500 Internal Server Error", 500, "Internal Server Error"},
		{"503 Device Busy", 503, "Device Busy"},
		{"418", 418, "I'm a teapot"},
	}

	for _, tt := range tests {
		resp := &http.Response{Status: tt.status, StatusCode: tt.code}
		if got := statusText(resp); got != tt.want {
			t.Errorf("statusText(%q) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestDecodeBody(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty", "", "null"},
		{"whitespace", "  \n", "null"},
		{"number", "42", "42"},
		{"boolean", "true", "true"},
		{"array", `["e1","e2"]`, `["e1","e2"]`},
		{"plain text", "iVBORw0KGgo=", `"iVBORw0KGgo="`},
		{"trailing newline", "{\"a\":1}\n", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeBody([]byte(tt.body))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("decodeBody(%q) = %s, want %s", tt.body, got, tt.want)
			}
		})
	}
}

func TestEscapeStrayPercent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"getText/e1", "getText/e1"},
		{"getText/a%zz", "getText/a%25zz"},
		{"getText/a%20b", "getText/a%20b"},
		{"getText/100%", "getText/100%25"},
		{"getText/%4", "getText/%254"},
	}

	for _, tt := range tests {
		if got := escapeStrayPercent(tt.in); got != tt.want {
			t.Errorf("escapeStrayPercent(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClient_StrayPercentReachesProxy(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`"ok"`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	if _, err := client.Get(context.Background(), "getText/a%zz"); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if gotPath != "/getText/a%zz" {
		t.Errorf("proxy saw path %q, want /getText/a%%zz", gotPath)
	}
}
