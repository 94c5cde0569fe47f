package api

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/dgallion1/mdvalidate/internal/config"
)

func newTestServer(apiKey string) *Server {
	cfg := config.Config{
		Port:            "0",
		APIKey:          apiKey,
		MaxRequestBytes: 1 << 20,
	}
	log := slog.New(slog.DiscardHandler)
	return NewServer(log, cfg)
}

func postValidate(t *testing.T, srv *Server, body ValidateRequest, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/validate", bytes.NewReader(b))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHandleValidate_Success(t *testing.T) {
	srv := newTestServer("")

	rec := postValidate(t, srv, ValidateRequest{
		Schema: "# Hi `name:/[A-Za-z]+/`",
		Input:  "# Hi Wolf",
	}, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Valid    bool           `json:"valid"`
		Errors   []any          `json:"errors"`
		Captures map[string]any `json:"captures"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !resp.Valid {
		t.Errorf("expected valid=true, got %s", rec.Body.String())
	}
	if len(resp.Errors) != 0 {
		t.Errorf("expected no errors, got %v", resp.Errors)
	}
	if resp.Captures["name"] != "Wolf" {
		t.Errorf("expected capture name=Wolf, got %v", resp.Captures)
	}
}

func TestHandleValidate_ReportsErrors(t *testing.T) {
	srv := newTestServer("")

	rec := postValidate(t, srv, ValidateRequest{
		Schema: "## Heading",
		Input:  "# Heading",
	}, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Valid  bool             `json:"valid"`
		Errors []map[string]any `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Valid {
		t.Error("expected valid=false")
	}
	if len(resp.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d", len(resp.Errors))
	}
	if resp.Errors[0]["kind"] != "node_mismatch" {
		t.Errorf("expected node_mismatch, got %v", resp.Errors[0]["kind"])
	}
}

func TestHandleValidate_MissingSchema(t *testing.T) {
	srv := newTestServer("")
	rec := postValidate(t, srv, ValidateRequest{Input: "# x"}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandleValidate_AuthRequired(t *testing.T) {
	srv := newTestServer("secret")

	rec := postValidate(t, srv, ValidateRequest{Schema: "# x", Input: "# x"}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}

	rec = postValidate(t, srv, ValidateRequest{Schema: "# x", Input: "# x"},
		map[string]string{"Authorization": "Bearer wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with bad token, got %d", rec.Code)
	}

	rec = postValidate(t, srv, ValidateRequest{Schema: "# x", Input: "# x"},
		map[string]string{"Authorization": "Bearer secret"})
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 with valid token, got %d", rec.Code)
	}

	rec = postValidate(t, srv, ValidateRequest{Schema: "# x", Input: "# x"},
		map[string]string{"X-API-Key": "secret"})
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 with X-API-Key, got %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer("secret")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("health must not require auth, got %d", rec.Code)
	}
}
