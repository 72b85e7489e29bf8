package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewMetrics_RegistersAll(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	m.EventsEnqueuedTotal.WithLabelValues("click").Inc()
	m.EventsMalformedTotal.Inc()
	m.CacheHitsTotal.Inc()
	m.QueueDepth.Set(3)

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}

	names := make(map[string]bool)
	for _, mf := range families {
		names[mf.GetName()] = true
	}

	for _, want := range []string{
		"pulse_events_enqueued_total",
		"pulse_events_malformed_total",
		"pulse_profile_cache_hits_total",
		"pulse_event_queue_depth",
	} {
		if !names[want] {
			t.Errorf("Expected metric %s to be registered and populated", want)
		}
	}
}

func TestNewMetrics_NilRegistry(t *testing.T) {
	m := NewMetrics(nil)
	if m == nil {
		t.Fatal("Expected metrics with internal registry")
	}
	m.EventsMalformedTotal.Inc()
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	handler := HTTPMetricsMiddleware(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	req := httptest.NewRequest("POST", "/api/v1/events", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusAccepted {
		t.Errorf("Expected 202, got %d", rr.Code)
	}

	// The counter should carry the captured status label.
	metricsReq := httptest.NewRequest("GET", "/metrics", nil)
	metricsRR := httptest.NewRecorder()
	m.Handler().ServeHTTP(metricsRR, metricsReq)

	body, _ := io.ReadAll(metricsRR.Body)
	if !strings.Contains(string(body), `pulse_http_requests_total{method="POST",path="/api/v1/events",status="202"} 1`) {
		t.Error("Expected instrumented request in /metrics output")
	}
}
