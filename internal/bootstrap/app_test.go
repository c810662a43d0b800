package bootstrap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"

	"docanalysis-backend/internal/classification"
	"docanalysis-backend/internal/shared/config"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Env:             "test",
		ObjectStoreType: "local",
		LocalStoreDir:   t.TempDir(),
	}
}

func TestBuildInMemory(t *testing.T) {
	gin.SetMode(gin.TestMode)

	app, err := Build(testConfig(t))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer app.Close()

	if app.DB != nil {
		t.Fatalf("expected no database without DATABASE_URL")
	}
	if _, ok := app.Classifier.(*classification.HeuristicClassifier); !ok {
		t.Fatalf("expected heuristic classifier by default, got %T", app.Classifier)
	}
	if got := app.Evaluator.Rules(); got.MinWords != 2000 || got.RequiredParagraphs != 8 {
		t.Fatalf("unexpected default rules %+v", got)
	}

	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected healthy router, got %d: %s", resp.Code, resp.Body.String())
	}
	var body struct {
		OK     bool              `json:"ok"`
		Checks map[string]string `json:"checks"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if !body.OK || body.Checks["storage"] != "ok" {
		t.Fatalf("unexpected health body %s", resp.Body.String())
	}
}

func TestBuildRequiresDatabaseInProduction(t *testing.T) {
	cfg := testConfig(t)
	cfg.Env = "production"
	if _, err := Build(cfg); err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("expected DATABASE_URL error, got %v", err)
	}
}

func TestBuildRejectsS3WithoutBucket(t *testing.T) {
	cfg := testConfig(t)
	cfg.ObjectStoreType = "s3"
	if _, err := Build(cfg); err == nil || !strings.Contains(err.Error(), "S3_BUCKET") {
		t.Fatalf("expected S3_BUCKET error, got %v", err)
	}
}

func TestBuildCustomRulesAndMissingTemplate(t *testing.T) {
	cfg := testConfig(t)
	cfg.MinWords = 500
	cfg.RequiredParagraphs = 4
	app, err := BuildCore(context.Background(), cfg)
	if err != nil {
		t.Fatalf("BuildCore: %v", err)
	}
	if got := app.Evaluator.Rules(); got.MinWords != 500 || got.RequiredParagraphs != 4 {
		t.Fatalf("unexpected rules %+v", got)
	}

	cfg.ReportTemplatePath = "/does/not/exist.md"
	if _, err := BuildCore(context.Background(), cfg); err == nil {
		t.Fatalf("expected error for missing template")
	}
}

func TestBuildClassifier(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name      string
		provider  string
		cache     bool
		redisURL  string
		wantNil   bool
		wantType  string
		wantRedis bool
	}{
		{name: "disabled", provider: "none", wantNil: true},
		{name: "heuristic", provider: "heuristic", wantType: "*classification.HeuristicClassifier"},
		{name: "redis cache", provider: "heuristic", cache: true, redisURL: "redis://" + mr.Addr() + "/0", wantType: "*classification.CachedClassifier", wantRedis: true},
		{name: "memory cache fallback", provider: "heuristic", cache: true, redisURL: "redis://127.0.0.1:1/0", wantType: "*classification.CachedClassifier"},
		{name: "openai without key", provider: "openai"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.LLMProvider = tt.provider
			cfg.EnableCache = tt.cache
			cfg.RedisURL = tt.redisURL
			app := &App{Config: cfg}
			defer app.Close()

			got, err := buildClassifier(context.Background(), app)
			if tt.provider == "openai" {
				if err == nil {
					t.Fatalf("expected error for missing API key")
				}
				return
			}
			if err != nil {
				t.Fatalf("buildClassifier: %v", err)
			}
			if tt.wantNil {
				if got != nil {
					t.Fatalf("expected nil classifier, got %T", got)
				}
				return
			}
			if typ := typeName(got); typ != tt.wantType {
				t.Fatalf("expected %s, got %s", tt.wantType, typ)
			}
			if (app.Redis != nil) != tt.wantRedis {
				t.Fatalf("redis client presence = %v, want %v", app.Redis != nil, tt.wantRedis)
			}
		})
	}
}

func typeName(v any) string {
	switch v.(type) {
	case *classification.HeuristicClassifier:
		return "*classification.HeuristicClassifier"
	case *classification.CachedClassifier:
		return "*classification.CachedClassifier"
	default:
		return "other"
	}
}

func TestIsDevLike(t *testing.T) {
	for env, want := range map[string]bool{"dev": true, " LOCAL ": true, "test": true, "production": false, "staging": false} {
		if got := isDevLike(env); got != want {
			t.Fatalf("isDevLike(%q) = %v, want %v", env, got, want)
		}
	}
}
