package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestHandlerExposesCollectors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	IncAnalysisStarted()
	IncAnalysisFailed("NO_PARAGRAPHS")
	ObserveVerdict(true)
	ObserveCache("hit")
	ObserveAnalysisDurationMs(120)

	r := gin.New()
	r.GET("/metrics", Handler())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{
		"analysis_started_total",
		`analysis_failed_total{code="NO_PARAGRAPHS"}`,
		`compliance_verdicts_total{verdict="compliant"}`,
		`classification_cache_total{result="hit"}`,
		"analysis_duration_ms_bucket",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics output missing %q", want)
		}
	}
}
