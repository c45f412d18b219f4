// Package testhelpers provides shared infrastructure for integration tests.
package testhelpers

import (
	"context"
	"testing"
	"time"

	"github.com/ranstack/nrmac/pkg/config"
	"github.com/ranstack/nrmac/pkg/logger"
	"github.com/ranstack/nrmac/pkg/mac"
)

// IntegrationSuite provides infrastructure for integration tests
type IntegrationSuite struct {
	T      *testing.T
	Logger *logger.Logger
	Ctx    context.Context
	Cancel context.CancelFunc
}

// NewIntegrationSuite creates a new integration test suite
func NewIntegrationSuite(t *testing.T) *IntegrationSuite {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	log := logger.New(logger.Config{
		Level:  "error",
		Format: "text",
	})

	return &IntegrationSuite{
		T:      t,
		Logger: log,
		Ctx:    ctx,
		Cancel: cancel,
	}
}

// Cleanup cleans up resources
func (s *IntegrationSuite) Cleanup() {
	s.Cancel()
}

// WaitFor waits for a condition to be true
func (s *IntegrationSuite) WaitFor(condition func() bool, timeout time.Duration, message string) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	s.T.Logf("WaitFor timeout: %s", message)
	return false
}

// AssertEventually asserts that a condition becomes true within timeout
func (s *IntegrationSuite) AssertEventually(condition func() bool, timeout time.Duration, message string) {
	if !s.WaitFor(condition, timeout, message) {
		s.T.Errorf("Assertion failed: %s", message)
	}
}

// CreateDefaultConfig creates a default test configuration with a fast slot
// clock so integration tests finish quickly.
func CreateDefaultConfig() *config.Config {
	return &config.Config{
		Cell: config.CellConfig{
			RNTI:      0x4601,
			LCID:      4,
			TBSize:    256,
			TxBuffers: 8,
			SIBs: []mac.SIBConfig{
				{Index: 1, Periodicity: 2},
			},
		},
		PHY: config.PHYConfig{
			SlotPeriodUs:   500,
			UplinkInterval: 5,
		},
		Capture: config.CaptureConfig{
			Enabled: false,
		},
		Web: config.WebConfig{
			Enabled: false,
		},
		Logging: config.LoggingConfig{
			Level:  "error",
			Format: "text",
		},
		Metrics: config.MetricsConfig{
			Enabled: false,
		},
	}
}
