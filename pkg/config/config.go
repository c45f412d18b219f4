package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/ranstack/nrmac/pkg/mac"
)

// Config represents the application configuration
type Config struct {
	Cell    CellConfig    `mapstructure:"cell"`
	PHY     PHYConfig     `mapstructure:"phy"`
	Capture CaptureConfig `mapstructure:"capture"`
	Web     WebConfig     `mapstructure:"web"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// CellConfig holds the MAC cell parameters
type CellConfig struct {
	RNTI      uint16          `mapstructure:"rnti"`       // Served terminal identity
	LCID      uint8           `mapstructure:"lcid"`       // Logical channel for unicast fallback
	TBSize    int             `mapstructure:"tb_size"`    // Transport block size in bytes
	TxBuffers int             `mapstructure:"tx_buffers"` // Transmission buffer ring size (HARQ depth)
	SIBs      []mac.SIBConfig `mapstructure:"sibs"`       // System information schedule
}

// PHYConfig holds the PHY emulator parameters
type PHYConfig struct {
	SlotPeriodUs   int `mapstructure:"slot_period_us"`  // Slot cadence in microseconds
	UplinkInterval int `mapstructure:"uplink_interval"` // Synthesize one uplink PDU every N slots (0 = off)
	Slots          int `mapstructure:"slots"`           // Stop after N slots (0 = unlimited)
}

// CaptureConfig holds the diagnostic PDU capture configuration
type CaptureConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"` // SQLite trace store path
}

// WebConfig holds web dashboard configuration
type WebConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	HexLimit int    `mapstructure:"hex_limit"` // Max bytes in PDU hex dumps
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled    bool             `mapstructure:"enabled"`
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
}

// PrometheusConfig holds Prometheus metrics configuration
type PrometheusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Path    string `mapstructure:"path"`
}

// Load loads configuration from file and environment variables
func Load(configFile string) (*Config, error) {
	// Set defaults
	setDefaults()

	// Set config file
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath("/etc/nrmac")
	}

	// Environment variables
	viper.SetEnvPrefix("NRMAC")
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found is OK, use defaults
		} else if os.IsNotExist(err) {
			// File explicitly specified but doesn't exist - that's also OK
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Unmarshal to struct
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Cell defaults
	viper.SetDefault("cell.rnti", 0x4601)
	viper.SetDefault("cell.lcid", 4)
	viper.SetDefault("cell.tb_size", 1520)
	viper.SetDefault("cell.tx_buffers", 8)

	// PHY defaults (1 ms slots)
	viper.SetDefault("phy.slot_period_us", 1000)
	viper.SetDefault("phy.uplink_interval", 0)
	viper.SetDefault("phy.slots", 0)

	// Capture defaults
	viper.SetDefault("capture.enabled", false)
	viper.SetDefault("capture.path", "nrmac-trace.db")

	// Web defaults
	viper.SetDefault("web.enabled", true)
	viper.SetDefault("web.host", "0.0.0.0")
	viper.SetDefault("web.port", 8080)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")
	viper.SetDefault("logging.hex_limit", 32)

	// Metrics defaults
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.prometheus.enabled", true)
	viper.SetDefault("metrics.prometheus.port", 9090)
	viper.SetDefault("metrics.prometheus.path", "/metrics")
}
