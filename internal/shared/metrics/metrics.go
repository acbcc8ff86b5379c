package metrics

import (
	"bytes"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
)

var (
	registry = prometheus.NewRegistry()

	recordOps = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "resume_record_ops_total",
		Help: "Resume store operations by op and outcome",
	}, []string{"op", "outcome"})

	aiCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_calls_total",
		Help: "Assistant calls by feature and outcome",
	}, []string{"feature", "outcome"})

	workerEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "worker_events_total",
		Help: "Record events handled by the worker by kind and outcome",
	}, []string{"kind", "outcome"})

	eventPublishErr = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "record_event_publish_failed_total",
		Help: "Record events that failed to publish",
	})

	recordOpDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "resume_record_op_duration_ms",
		Help:    "Resume store operation duration in milliseconds",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
)

func init() {
	registry.MustRegister(
		recordOps,
		aiCalls,
		workerEvents,
		eventPublishErr,
		recordOpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// IncRecordOp counts a store operation by name and outcome ("ok" or an error class).
func IncRecordOp(op, outcome string) {
	recordOps.WithLabelValues(op, outcome).Inc()
}

// IncAICall counts an assistant call. Outcome is "ok", "error" or "degraded".
func IncAICall(feature, outcome string) {
	aiCalls.WithLabelValues(feature, outcome).Inc()
}

// IncEventPublishFailed counts record events that could not be delivered.
func IncEventPublishFailed() {
	eventPublishErr.Inc()
}

// IncWorkerEvent counts a record event handled by the worker. Outcome is
// "ok", "skipped", "dropped" or "failed".
func IncWorkerEvent(kind, outcome string) {
	workerEvents.WithLabelValues(kind, outcome).Inc()
}

// ObserveRecordOpDurationMs records a store operation duration in milliseconds.
func ObserveRecordOpDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	recordOpDuration.Observe(value)
}

// Since returns the milliseconds elapsed since start.
func Since(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}

// Handler exposes the registry in the Prometheus exposition format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}

// Render renders the registry in Prometheus text format.
func Render() (string, error) {
	families, err := registry.Gather()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(&buf, mf); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}
