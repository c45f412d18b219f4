package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/ranstack/nrmac/pkg/capture"
	"github.com/ranstack/nrmac/pkg/logger"
	"github.com/ranstack/nrmac/pkg/metrics"
)

const defaultActivityLimit = 50

// ActivityStore provides recent captured PDUs for the activity endpoint
type ActivityStore interface {
	GetRecent(limit int) ([]capture.PDURecord, error)
}

// API handles REST API endpoints
type API struct {
	logger    *logger.Logger
	collector *metrics.Collector
	store     ActivityStore
}

// NewAPI creates a new API instance. Collector and store may be nil when the
// corresponding subsystem is disabled.
func NewAPI(collector *metrics.Collector, store ActivityStore, log *logger.Logger) *API {
	return &API{
		logger:    log,
		collector: collector,
		store:     store,
	}
}

// HandleStatus handles the /api/status endpoint
func (a *API) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	response := map[string]interface{}{
		"status":  "running",
		"service": "nrmac",
		"version": "dev",
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		a.logger.Warn("Failed to encode status response", logger.Error(err))
	}
}

// HandleStats handles the /api/stats endpoint
func (a *API) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	stats := map[string]interface{}{}
	if a.collector != nil {
		sibs := map[string]uint64{}
		for _, index := range a.collector.GetSIBIndexes() {
			sibs[strconv.Itoa(index)] = a.collector.GetSIBTransmitted(index)
		}
		stats = map[string]interface{}{
			"slots_processed":    a.collector.GetSlotsProcessed(),
			"mib_transmitted":    a.collector.GetMIBTransmitted(),
			"sib_transmitted":    sibs,
			"pdus_transmitted":   a.collector.GetPDUsTransmitted(),
			"bytes_transmitted":  a.collector.GetBytesTransmitted(),
			"pdus_received":      a.collector.GetPDUsReceived(),
			"bytes_received":     a.collector.GetBytesReceived(),
			"subpdus_delivered":  a.collector.GetSubPDUsDelivered(),
			"malformed_pdus":     a.collector.GetMalformedPDUs(),
			"rx_queue_high_water": a.collector.GetQueueHighWater(),
		}
	}

	if err := json.NewEncoder(w).Encode(stats); err != nil {
		a.logger.Warn("Failed to encode stats response", logger.Error(err))
	}
}

// HandleActivity handles the /api/activity endpoint
func (a *API) HandleActivity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := defaultActivityLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}

	w.Header().Set("Content-Type", "application/json")

	records := []capture.PDURecord{}
	if a.store != nil {
		var err error
		records, err = a.store.GetRecent(limit)
		if err != nil {
			a.logger.Error("Failed to load activity records", logger.Error(err))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(records); err != nil {
		a.logger.Warn("Failed to encode activity response", logger.Error(err))
	}
}
