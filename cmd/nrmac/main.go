package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/ranstack/nrmac/pkg/capture"
	"github.com/ranstack/nrmac/pkg/config"
	"github.com/ranstack/nrmac/pkg/logger"
	"github.com/ranstack/nrmac/pkg/mac"
	"github.com/ranstack/nrmac/pkg/metrics"
	"github.com/ranstack/nrmac/pkg/phy"
	"github.com/ranstack/nrmac/pkg/web"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	// Parse command line flags
	configFile := flag.String("config", "config.yaml", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version information")
	validate := flag.Bool("validate", false, "Validate configuration and exit")
	flag.Parse()

	// Show version
	if *showVersion {
		fmt.Printf("nrmac %s (built %s)\n", version, buildTime)
		os.Exit(0)
	}

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	log.Info("Starting nrmac",
		logger.String("version", version),
		logger.String("build_time", buildTime))

	// Validate only mode
	if *validate {
		log.Info("Configuration is valid")
		os.Exit(0)
	}

	log.Info("Configuration loaded successfully",
		logger.String("config_file", *configFile))

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	// Initialize metrics collector
	metricsCollector := metrics.NewCollector()

	// Start Prometheus metrics server if enabled
	if cfg.Metrics.Enabled && cfg.Metrics.Prometheus.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			metricsServer := metrics.NewPrometheusServer(
				metrics.PrometheusConfig{
					Enabled: cfg.Metrics.Prometheus.Enabled,
					Port:    cfg.Metrics.Prometheus.Port,
					Path:    cfg.Metrics.Prometheus.Path,
				},
				metricsCollector,
				log.WithComponent("metrics"),
			)
			if err := metricsServer.Start(ctx); err != nil && err != context.Canceled {
				log.Error("Prometheus metrics server error", logger.Error(err))
			}
		}()
		log.Info("Prometheus metrics server started",
			logger.Int("port", cfg.Metrics.Prometheus.Port),
			logger.String("path", cfg.Metrics.Prometheus.Path))
	}

	// Initialize PDU capture if enabled
	var captureStore *capture.Store
	var recorder *capture.Recorder
	if cfg.Capture.Enabled {
		captureStore, err = capture.New(cfg.Capture.Path, log)
		if err != nil {
			log.Error("Failed to initialize capture store", logger.Error(err))
			os.Exit(1)
		}
		recorder = capture.NewRecorder(captureStore, log)
		recorder.Start(ctx)
		log.Info("PDU capture enabled", logger.String("path", cfg.Capture.Path))
	}

	// Demo upper layers: static broadcast payloads, echoing bearer
	sibIndexes := make([]int, 0, len(cfg.Cell.SIBs))
	for _, sib := range cfg.Cell.SIBs {
		sibIndexes = append(sibIndexes, sib.Index)
	}
	rrc := newStaticRRC(sibIndexes)
	rlc := &echoRLC{}

	// PHY emulator implements the radio side of the MAC
	emulator := phy.NewEmulator(cfg.PHY, cfg.Cell.RNTI, cfg.Cell.LCID, log)

	// Build the MAC
	macEngine := mac.New(
		mac.Config{
			RNTI:         cfg.Cell.RNTI,
			LCID:         cfg.Cell.LCID,
			TBSize:       cfg.Cell.TBSize,
			NofTxBuffers: cfg.Cell.TxBuffers,
			HexLimit:     cfg.Logging.HexLimit,
		},
		emulator,
		rrc,
		rlc,
		drainStack{},
		log,
	).WithMetrics(metricsCollector)
	if recorder != nil {
		macEngine = macEngine.WithRecorder(recorder)
	}

	if err := macEngine.ConfigureCell(cfg.Cell.SIBs); err != nil {
		log.Error("Failed to configure cell", logger.Error(err))
		os.Exit(1)
	}
	if err := macEngine.Start(); err != nil {
		log.Error("Failed to start MAC", logger.Error(err))
		os.Exit(1)
	}

	// Start web server if enabled
	var hub *web.WebSocketHub
	if cfg.Web.Enabled {
		var store web.ActivityStore
		if captureStore != nil {
			store = captureStore
		}
		api := web.NewAPI(metricsCollector, store, log.WithComponent("web"))
		webServer := web.NewServer(cfg.Web, api, log.WithComponent("web"))
		hub = webServer.GetHub()

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := webServer.Start(ctx); err != nil && err != context.Canceled {
				log.Error("Web server error", logger.Error(err))
			}
		}()
		log.Info("Web server started",
			logger.String("host", cfg.Web.Host),
			logger.Int("port", cfg.Web.Port))
	}

	// Feed MAC activity into the dashboard
	if hub != nil {
		h := hub
		macEngine.SetEventHandlers(
			func(slot uint32, nofPDUs int) {
				if nofPDUs > 0 {
					h.BroadcastDownlink(slot, nofPDUs)
				}
			},
			func(rnti uint16, lcid uint8, sduLen int) {
				h.BroadcastUplink(rnti, lcid, sduLen)
			},
		)
	}

	// Uplink PDUs are decoded on the stack side, off the radio path
	wg.Add(1)
	go func() {
		defer wg.Done()
		macEngine.ProcessPDUs()
	}()

	// Slot clock drives everything
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := emulator.Run(ctx, macEngine); err != nil && err != context.Canceled {
			log.Error("Slot clock error", logger.Error(err))
		}
	}()

	log.Info("nrmac initialized",
		logger.Uint16("rnti", cfg.Cell.RNTI),
		logger.Int("tb_size", cfg.Cell.TBSize),
		logger.Int("sibs", len(cfg.Cell.SIBs)))

	// Wait for shutdown signal
	sig := <-sigChan
	log.Info("Received shutdown signal",
		logger.String("signal", sig.String()))

	// Cancel context to trigger graceful shutdown
	cancel()

	// Stop the MAC; this releases the PDU drain goroutine
	macEngine.Stop()

	// Flush and close capture last so late records still land
	if recorder != nil {
		recorder.Stop()
	}

	wg.Wait()

	if captureStore != nil {
		if err := captureStore.Close(); err != nil {
			log.Warn("Failed to close capture store", logger.Error(err))
		}
	}

	log.Info("nrmac stopped")
}
