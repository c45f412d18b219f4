package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// TestNewPrometheusHandler tests creating a new handler
func TestNewPrometheusHandler(t *testing.T) {
	collector := NewCollector()
	handler := NewPrometheusHandler(collector)

	if handler == nil {
		t.Fatal("Expected non-nil handler")
	}
}

// TestPrometheusHandler_ServeHTTP tests the HTTP handler
func TestPrometheusHandler_ServeHTTP(t *testing.T) {
	collector := NewCollector()
	handler := NewPrometheusHandler(collector)

	// Add some test data
	collector.SlotProcessed()
	collector.MIBTransmitted()
	collector.SIBTransmitted(1)
	collector.PDUReceived(1024)

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)
	bodyStr := string(body)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	// Check that key metrics are present in output
	expectedMetrics := []string{
		"nrmac_slots_processed_total 1",
		"nrmac_mib_transmitted_total 1",
		"nrmac_sib_transmitted_total{sib=\"1\"} 1",
		"nrmac_pdus_received_total 1",
		"nrmac_bytes_received_total 1024",
	}

	for _, metric := range expectedMetrics {
		if !strings.Contains(bodyStr, metric) {
			t.Errorf("Expected metric %s in output", metric)
		}
	}
}

// TestPrometheusServer_StartDisabled tests that a disabled server returns immediately
func TestPrometheusServer_StartDisabled(t *testing.T) {
	server := NewPrometheusServer(PrometheusConfig{Enabled: false}, NewCollector(), nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := server.Start(ctx); err != nil {
		t.Errorf("Expected nil error for disabled server, got %v", err)
	}
}

// TestPrometheusServer_StartAndShutdown exercises a real listener on port 0
func TestPrometheusServer_StartAndShutdown(t *testing.T) {
	server := NewPrometheusServer(PrometheusConfig{
		Enabled: true,
		Port:    0,
		Path:    "/metrics",
	}, NewCollector(), nil)

	ctx, cancel := context.WithCancel(context.Background())

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(ctx)
	}()

	// Give the listener a moment to bind, then shut down
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-errChan:
		if err != context.Canceled {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Server did not shut down")
	}
}
