package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/janisto/cicd-demo/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:              8080,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ShutdownTimeout:   10 * time.Second,
		MaxRequestBytes:   1 << 20,
	}
}

func serve(t *testing.T, h http.Handler, method, target string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	return resp
}

func TestEndpointsReturnExactBodies(t *testing.T) {
	h := New(testConfig(), "1.0.0").Handler()

	tests := []struct {
		path string
		want string
	}{
		{"/", `{"message":"Hello from CI/CD Pipeline!","status":"running"}`},
		{"/health", `{"status":"healthy"}`},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			for i := range 2 {
				resp := serve(t, h, http.MethodGet, tt.path, nil)
				if resp.Code != http.StatusOK {
					t.Fatalf("request %d: expected 200, got %d", i, resp.Code)
				}
				if ct := resp.Header().Get("Content-Type"); ct != "application/json" {
					t.Fatalf("expected application/json, got %q", ct)
				}
				if got := strings.TrimSpace(resp.Body.String()); got != tt.want {
					t.Fatalf("request %d: expected %s, got %s", i, tt.want, got)
				}
			}
		})
	}
}

func TestMiddlewareHeaders(t *testing.T) {
	h := New(testConfig(), "1.0.0").Handler()

	resp := serve(t, h, http.MethodGet, "/health", map[string]string{
		"Origin":                      "https://app.example.com",
		chimiddleware.RequestIDHeader: "server-test-id",
	})

	if got := resp.Header().Get(chimiddleware.RequestIDHeader); got != "server-test-id" {
		t.Errorf("expected request id echoed, got %q", got)
	}
	if got := resp.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("expected security headers, got X-Content-Type-Options=%q", got)
	}
	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected Access-Control-Allow-Origin *, got %q", got)
	}
	vary := strings.Join(resp.Header().Values("Vary"), ",")
	if !strings.Contains(vary, "Accept") || !strings.Contains(vary, "Origin") {
		t.Errorf("expected Vary to list Accept and Origin, got %q", vary)
	}
}

func TestDocsSkipSecurityHeaders(t *testing.T) {
	h := New(testConfig(), "1.0.0").Handler()

	resp := serve(t, h, http.MethodGet, DocsPath, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if got := resp.Header().Get("Content-Security-Policy"); got != "" {
		t.Fatalf("expected no CSP on docs, got %q", got)
	}
}

func TestUnknownPathReturnsProblem(t *testing.T) {
	h := New(testConfig(), "1.0.0").Handler()

	for _, path := range []string{"/nonexistent", "/api/v1", "/health/live"} {
		resp := serve(t, h, http.MethodGet, path, nil)
		if resp.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", path, resp.Code)
		}
		if ct := resp.Header().Get("Content-Type"); ct != "application/problem+json" {
			t.Fatalf("%s: expected application/problem+json, got %q", path, ct)
		}
	}
}

func TestWrongMethodReturnsProblem(t *testing.T) {
	h := New(testConfig(), "1.0.0").Handler()

	resp := serve(t, h, http.MethodPost, "/health", nil)
	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.Code)
	}
	if allow := resp.Header().Get("Allow"); allow != http.MethodGet {
		t.Fatalf("expected Allow: GET, got %q", allow)
	}
}

func TestTrailingSlashRedirects(t *testing.T) {
	h := New(testConfig(), "1.0.0").Handler()

	resp := serve(t, h, http.MethodGet, "/health/?check=1", nil)
	if resp.Code != http.StatusTemporaryRedirect {
		t.Fatalf("expected 307, got %d", resp.Code)
	}
	if loc := resp.Header().Get("Location"); loc != "/health?check=1" {
		t.Fatalf("expected Location /health?check=1, got %q", loc)
	}
}

func TestOpenAPIDocument(t *testing.T) {
	s := New(testConfig(), "2.3.4")

	resp := serve(t, s.Handler(), http.MethodGet, "/openapi.json", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var doc struct {
		Info struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Version     string `json:"version"`
		} `json:"info"`
		Paths map[string]json.RawMessage `json:"paths"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &doc); err != nil {
		t.Fatalf("failed to decode openapi.json: %v", err)
	}
	if doc.Info.Title != Title || doc.Info.Description != Description || doc.Info.Version != "2.3.4" {
		t.Fatalf("unexpected info: %+v", doc.Info)
	}
	if _, ok := doc.Paths["/"]; !ok {
		t.Error("expected / in paths")
	}
	if _, ok := doc.Paths["/health"]; !ok {
		t.Error("expected /health in paths")
	}
	if _, ok := doc.Paths[MetricsPath]; ok {
		t.Error("expected /metrics to stay out of the OpenAPI document")
	}

	var health struct {
		Get struct {
			Responses map[string]struct {
				Content map[string]json.RawMessage `json:"content"`
			} `json:"responses"`
		} `json:"get"`
	}
	if err := json.Unmarshal(doc.Paths["/health"], &health); err != nil {
		t.Fatalf("failed to decode /health path item: %v", err)
	}
	if _, ok := health.Get.Responses["200"].Content["application/cbor"]; !ok {
		t.Error("expected application/cbor response content for /health")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := New(testConfig(), "1.0.0")
	h := s.Handler()

	serve(t, h, http.MethodGet, "/health", nil)
	serve(t, h, http.MethodGet, "/missing", nil)

	resp := serve(t, h, http.MethodGet, MetricsPath, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	body := resp.Body.String()
	for _, want := range []string{
		`http_requests_total{method="GET",route="/health",status="200"} 1`,
		`http_requests_total{method="GET",route="unmatched",status="404"} 1`,
		`app_build_info{version="1.0.0"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected metrics to contain %q", want)
		}
	}
	if strings.Count(body, "# TYPE http_requests_in_flight gauge") != 1 {
		t.Error("expected in-flight gauge exposed once")
	}
}

func TestRateLimitExemptsProbes(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRPS = 0.001
	cfg.RateLimitBurst = 1
	h := New(cfg, "1.0.0").Handler()

	if resp := serve(t, h, http.MethodGet, "/", nil); resp.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", resp.Code)
	}
	resp := serve(t, h, http.MethodGet, "/", nil)
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.Code)
	}
	if got := resp.Header().Get("Retry-After"); got != "1" {
		t.Fatalf("expected Retry-After: 1, got %q", got)
	}
	for _, path := range []string{"/health", MetricsPath} {
		if resp := serve(t, h, http.MethodGet, path, nil); resp.Code != http.StatusOK {
			t.Fatalf("%s: expected exempt path to pass, got %d", path, resp.Code)
		}
	}

	resp = serve(t, h, http.MethodGet, "/health/", nil)
	if resp.Code != http.StatusTemporaryRedirect {
		t.Fatalf("expected trailing-slash health check to redirect, got %d", resp.Code)
	}
	if loc := resp.Header().Get("Location"); loc != "/health" {
		t.Fatalf("expected Location /health, got %q", loc)
	}
}

func TestHTTPServerUsesConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Port = 9191
	cfg.WriteTimeout = 42 * time.Second
	srv := New(cfg, "1.0.0").HTTPServer()

	if srv.Addr != ":9191" {
		t.Errorf("expected addr :9191, got %q", srv.Addr)
	}
	if srv.WriteTimeout != 42*time.Second {
		t.Errorf("expected write timeout 42s, got %s", srv.WriteTimeout)
	}
	if srv.ReadHeaderTimeout != cfg.ReadHeaderTimeout || srv.IdleTimeout != cfg.IdleTimeout {
		t.Errorf("unexpected timeouts: %+v", srv)
	}
	if srv.MaxHeaderBytes != maxHeaderBytes {
		t.Errorf("expected max header bytes %d, got %d", maxHeaderBytes, srv.MaxHeaderBytes)
	}
	if srv.ErrorLog == nil {
		t.Error("expected an error logger")
	}
}
