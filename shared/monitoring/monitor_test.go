package monitoring

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMonitorHealth(t *testing.T) {
	m := NewMonitor()

	if !m.IsHealthy() {
		t.Error("New monitor should be healthy before any run")
	}
	if got := m.GetStatusSummary(); got != "No maintenance runs yet" {
		t.Errorf("GetStatusSummary() = %q, want %q", got, "No maintenance runs yet")
	}

	m.RecordFailure(errors.New("yt-dlp update failed"), time.Second)
	if m.IsHealthy() {
		t.Error("Monitor should be unhealthy after a failed run")
	}
	if got := m.GetStatusSummary(); !strings.Contains(got, "yt-dlp update failed") {
		t.Errorf("GetStatusSummary() = %q, want failure reason", got)
	}

	m.RecordSuccess("yt-dlp is up to date", time.Second)
	if !m.IsHealthy() {
		t.Error("Monitor should be healthy after a successful run")
	}
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		fail       bool
		wantStatus int
		wantPrefix string
	}{
		{"Healthy", false, http.StatusOK, "OK - "},
		{"Unhealthy", true, http.StatusServiceUnavailable, "Service unhealthy - "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMonitor()
			if tt.fail {
				m.RecordFailure(errors.New("boom"), 0)
			}
			h := NewHealthHandler(m)

			rec := httptest.NewRecorder()
			h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if !strings.HasPrefix(rec.Body.String(), tt.wantPrefix) {
				t.Errorf("body = %q, want prefix %q", rec.Body.String(), tt.wantPrefix)
			}
		})
	}
}

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics()
	m.ObserveRequest("/transcript", http.StatusNotFound)
	m.ObserveTranscript("unavailable")
	m.ObserveSummaryStream("completed", 3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	for _, want := range []string{
		`ytsummary_http_requests_total{route="/transcript",status="404"} 1`,
		`ytsummary_transcripts_total{result="unavailable"} 1`,
		`ytsummary_summary_chunks_total 3`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveRequest("/", http.StatusOK)
	m.ObserveTranscript("ok")
	m.ObserveExtraction("metadata", time.Second, nil)
	m.ObserveSummaryStream("failed", 0)
}
