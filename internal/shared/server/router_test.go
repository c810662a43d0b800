package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"docanalysis-backend/internal/shared/config"
)

type pingHandler struct{}

func (pingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	rg.POST("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
}

func newTestRouter(cfg config.Config, health HealthFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(RouterDeps{Config: cfg, Handlers: []RouteRegistrar{pingHandler{}, nil}, Health: health})
}

func serve(r *gin.Engine, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestHealthReflectsChecks(t *testing.T) {
	healthy := newTestRouter(config.Config{}, func() map[string]string { return map[string]string{"database": "ok"} })
	if resp := serve(healthy, http.MethodGet, "/api/v1/health", nil); resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	broken := newTestRouter(config.Config{}, func() map[string]string { return map[string]string{"database": "dial tcp: refused"} })
	resp := serve(broken, http.MethodGet, "/api/v1/health", nil)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
	var body struct {
		OK     bool              `json:"ok"`
		Checks map[string]string `json:"checks"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.OK || body.Checks["database"] == "ok" {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
}

func TestMetricsAndNoRoute(t *testing.T) {
	r := newTestRouter(config.Config{}, nil)

	resp := serve(r, http.MethodGet, "/api/v1/metrics", nil)
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "# TYPE") {
		t.Fatalf("expected prometheus exposition, got %d", resp.Code)
	}

	resp = serve(r, http.MethodGet, "/api/v1/nope", nil)
	if resp.Code != http.StatusNotFound || !strings.Contains(resp.Body.String(), `"not_found"`) {
		t.Fatalf("expected JSON 404, got %d %s", resp.Code, resp.Body.String())
	}
	if resp.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected request id on every response")
	}
}

func TestAPIKeyLeavesHealthChecksOpen(t *testing.T) {
	r := newTestRouter(config.Config{APIKeyEnabled: true, APIKey: "s3cret"}, nil)

	if resp := serve(r, http.MethodGet, "/api/v1/ping", nil); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d", resp.Code)
	}
	if resp := serve(r, http.MethodGet, "/api/v1/ping", map[string]string{"X-API-Key": "s3cret"}); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with key, got %d", resp.Code)
	}
	if resp := serve(r, http.MethodGet, "/api/v1/health", nil); resp.Code != http.StatusOK {
		t.Fatalf("expected open health check, got %d", resp.Code)
	}
}

func TestRateLimitExemptsHealthChecks(t *testing.T) {
	r := newTestRouter(config.Config{RateLimitEnabled: true, RateLimitPerMinute: 1}, nil)

	if resp := serve(r, http.MethodPost, "/api/v1/ping", nil); resp.Code != http.StatusOK {
		t.Fatalf("expected first write allowed, got %d", resp.Code)
	}
	if resp := serve(r, http.MethodPost, "/api/v1/ping", nil); resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second write limited, got %d", resp.Code)
	}
	for i := 0; i < 3; i++ {
		if resp := serve(r, http.MethodGet, "/api/v1/health", nil); resp.Code != http.StatusOK {
			t.Fatalf("health check %d limited: %d", i+1, resp.Code)
		}
	}
}

func TestAddr(t *testing.T) {
	for in, want := range map[string]string{"": ":8080", "9000": ":9000", ":7000": ":7000"} {
		if got := Addr(in); got != want {
			t.Fatalf("Addr(%q) = %q, want %q", in, got, want)
		}
	}
}
