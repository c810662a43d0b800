package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every collector the service exposes.
var Registry = prometheus.NewRegistry()

var (
	factory = promauto.With(Registry)

	analysisStartedTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "analysis_started_total",
		Help: "Total analyses started",
	})
	analysisCompletedTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "analysis_completed_total",
		Help: "Total analyses completed",
	})
	analysisFailedTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "analysis_failed_total",
		Help: "Total analyses failed, by error code",
	}, []string{"code"})
	analysisRejectedTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "analysis_rejected_total",
		Help: "Total documents rejected as non-scientific",
	})
	analysisDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Name:    "analysis_duration_ms",
		Help:    "Analysis duration in milliseconds",
		Buckets: []float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000},
	})
	complianceVerdicts = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "compliance_verdicts_total",
		Help: "Compliance verdicts, by outcome",
	}, []string{"verdict"})
	classificationCache = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "classification_cache_total",
		Help: "Classification cache lookups, by result",
	}, []string{"result"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// IncAnalysisStarted increments the started counter.
func IncAnalysisStarted() {
	analysisStartedTotal.Inc()
}

// IncAnalysisCompleted increments the completed counter.
func IncAnalysisCompleted() {
	analysisCompletedTotal.Inc()
}

// IncAnalysisFailed increments the failed counter for an error code.
func IncAnalysisFailed(code string) {
	analysisFailedTotal.WithLabelValues(code).Inc()
}

func IncAnalysisRejected() {
	analysisRejectedTotal.Inc()
}

// ObserveAnalysisDurationMs records an analysis duration in milliseconds.
func ObserveAnalysisDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	analysisDuration.Observe(value)
}

// ObserveVerdict counts a compliance verdict.
func ObserveVerdict(compliant bool) {
	verdict := "non_compliant"
	if compliant {
		verdict = "compliant"
	}
	complianceVerdicts.WithLabelValues(verdict).Inc()
}

// ObserveCache counts a classification cache lookup: hit, miss or error.
func ObserveCache(result string) {
	classificationCache.WithLabelValues(result).Inc()
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
}

// SinceMillis returns the milliseconds elapsed since start.
func SinceMillis(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}
