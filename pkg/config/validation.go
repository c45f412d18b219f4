package config

import (
	"fmt"
)

// validate validates the configuration
func validate(cfg *Config) error {
	// Validate cell config
	if cfg.Cell.RNTI == 0 {
		return fmt.Errorf("cell.rnti must be non-zero")
	}
	if cfg.Cell.LCID == 0 || cfg.Cell.LCID >= 63 {
		return fmt.Errorf("cell.lcid must be between 1 and 62")
	}
	if cfg.Cell.TBSize <= 2 {
		return fmt.Errorf("cell.tb_size must be greater than 2")
	}
	if cfg.Cell.TxBuffers <= 0 {
		return fmt.Errorf("cell.tx_buffers must be positive")
	}

	// Validate SIB schedule
	seen := make(map[int]bool)
	for _, sib := range cfg.Cell.SIBs {
		if sib.Index <= 0 {
			return fmt.Errorf("sib index must be positive, got %d", sib.Index)
		}
		if sib.Periodicity <= 0 {
			return fmt.Errorf("sib %d: periodicity must be positive", sib.Index)
		}
		if seen[sib.Index] {
			return fmt.Errorf("sib %d: duplicate index", sib.Index)
		}
		seen[sib.Index] = true
	}

	// Validate PHY config
	if cfg.PHY.SlotPeriodUs <= 0 {
		return fmt.Errorf("phy.slot_period_us must be positive")
	}
	if cfg.PHY.UplinkInterval < 0 {
		return fmt.Errorf("phy.uplink_interval must not be negative")
	}
	if cfg.PHY.Slots < 0 {
		return fmt.Errorf("phy.slots must not be negative")
	}

	// Validate capture config
	if cfg.Capture.Enabled && cfg.Capture.Path == "" {
		return fmt.Errorf("capture.path is required when capture is enabled")
	}

	// Validate web config
	if cfg.Web.Enabled {
		if cfg.Web.Port <= 0 || cfg.Web.Port > 65535 {
			return fmt.Errorf("web.port must be between 1 and 65535")
		}
	}

	// Validate metrics config
	if cfg.Metrics.Enabled && cfg.Metrics.Prometheus.Enabled {
		if cfg.Metrics.Prometheus.Port < 0 || cfg.Metrics.Prometheus.Port > 65535 {
			return fmt.Errorf("metrics.prometheus.port must be between 0 and 65535")
		}
		if cfg.Metrics.Prometheus.Path == "" {
			return fmt.Errorf("metrics.prometheus.path is required when prometheus is enabled")
		}
	}

	return nil
}
