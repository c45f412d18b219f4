package metrics

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/ranstack/nrmac/pkg/logger"
)

// PrometheusConfig holds Prometheus server configuration
type PrometheusConfig struct {
	Enabled bool
	Port    int
	Path    string
}

// PrometheusHandler handles Prometheus metrics HTTP requests
type PrometheusHandler struct {
	collector *Collector
}

// NewPrometheusHandler creates a new Prometheus handler
func NewPrometheusHandler(collector *Collector) *PrometheusHandler {
	return &PrometheusHandler{
		collector: collector,
	}
}

// ServeHTTP handles HTTP requests for metrics
func (h *PrometheusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	var output strings.Builder

	// Slot metrics
	output.WriteString("# HELP nrmac_slots_processed_total Total slot indications processed\n")
	output.WriteString("# TYPE nrmac_slots_processed_total counter\n")
	output.WriteString(fmt.Sprintf("nrmac_slots_processed_total %d\n", h.collector.GetSlotsProcessed()))

	// Downlink metrics
	output.WriteString("# HELP nrmac_mib_transmitted_total Total primary broadcast transmissions\n")
	output.WriteString("# TYPE nrmac_mib_transmitted_total counter\n")
	output.WriteString(fmt.Sprintf("nrmac_mib_transmitted_total %d\n", h.collector.GetMIBTransmitted()))

	output.WriteString("# HELP nrmac_sib_transmitted_total Total system information transmissions per SIB\n")
	output.WriteString("# TYPE nrmac_sib_transmitted_total counter\n")
	indexes := h.collector.GetSIBIndexes()
	sort.Ints(indexes)
	for _, idx := range indexes {
		output.WriteString(fmt.Sprintf("nrmac_sib_transmitted_total{sib=\"%d\"} %d\n",
			idx, h.collector.GetSIBTransmitted(idx)))
	}

	output.WriteString("# HELP nrmac_pdus_transmitted_total Total unicast downlink PDUs\n")
	output.WriteString("# TYPE nrmac_pdus_transmitted_total counter\n")
	output.WriteString(fmt.Sprintf("nrmac_pdus_transmitted_total %d\n", h.collector.GetPDUsTransmitted()))

	output.WriteString("# HELP nrmac_bytes_transmitted_total Total unicast downlink bytes\n")
	output.WriteString("# TYPE nrmac_bytes_transmitted_total counter\n")
	output.WriteString(fmt.Sprintf("nrmac_bytes_transmitted_total %d\n", h.collector.GetBytesTransmitted()))

	// Uplink metrics
	output.WriteString("# HELP nrmac_pdus_received_total Total uplink transport blocks received\n")
	output.WriteString("# TYPE nrmac_pdus_received_total counter\n")
	output.WriteString(fmt.Sprintf("nrmac_pdus_received_total %d\n", h.collector.GetPDUsReceived()))

	output.WriteString("# HELP nrmac_bytes_received_total Total uplink bytes received\n")
	output.WriteString("# TYPE nrmac_bytes_received_total counter\n")
	output.WriteString(fmt.Sprintf("nrmac_bytes_received_total %d\n", h.collector.GetBytesReceived()))

	output.WriteString("# HELP nrmac_subpdus_delivered_total Total decoded SDUs forwarded to the upper layer\n")
	output.WriteString("# TYPE nrmac_subpdus_delivered_total counter\n")
	output.WriteString(fmt.Sprintf("nrmac_subpdus_delivered_total %d\n", h.collector.GetSubPDUsDelivered()))

	output.WriteString("# HELP nrmac_malformed_pdus_total Total discarded malformed transport blocks\n")
	output.WriteString("# TYPE nrmac_malformed_pdus_total counter\n")
	output.WriteString(fmt.Sprintf("nrmac_malformed_pdus_total %d\n", h.collector.GetMalformedPDUs()))

	// Queue metrics
	output.WriteString("# HELP nrmac_rx_queue_high_water Receive queue depth high-water mark\n")
	output.WriteString("# TYPE nrmac_rx_queue_high_water gauge\n")
	output.WriteString(fmt.Sprintf("nrmac_rx_queue_high_water %d\n", h.collector.GetQueueHighWater()))

	w.Write([]byte(output.String()))
}

// PrometheusServer is an HTTP server for Prometheus metrics
type PrometheusServer struct {
	config    PrometheusConfig
	collector *Collector
	log       *logger.Logger
	server    *http.Server
}

// NewPrometheusServer creates a new Prometheus metrics server
func NewPrometheusServer(config PrometheusConfig, collector *Collector, log *logger.Logger) *PrometheusServer {
	if log == nil {
		log = logger.New(logger.Config{Level: "info", Format: "text"})
	}

	return &PrometheusServer{
		config:    config,
		collector: collector,
		log:       log.WithComponent("metrics"),
	}
}

// Start starts the Prometheus metrics server
func (s *PrometheusServer) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.log.Info("Prometheus metrics server disabled")
		return nil
	}

	handler := NewPrometheusHandler(s.collector)
	mux := http.NewServeMux()
	mux.Handle(s.config.Path, handler)

	// Use a listener to get the actual port (useful for testing with port 0)
	addr := fmt.Sprintf(":%d", s.config.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	actualPort := listener.Addr().(*net.TCPAddr).Port

	s.server = &http.Server{
		Handler: mux,
	}

	s.log.Info("Starting Prometheus metrics server",
		logger.Int("port", actualPort),
		logger.String("path", s.config.Path))

	// Start server
	errChan := make(chan error, 1)
	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.log.Info("Shutting down Prometheus metrics server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("metrics server shutdown error: %w", err)
		}
		return ctx.Err()
	case err := <-errChan:
		return err
	}
}

// Stop stops the Prometheus metrics server
func (s *PrometheusServer) Stop() {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.server.Shutdown(ctx)
	}
}
