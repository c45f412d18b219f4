// Package phy provides a software stand-in for the physical layer. The
// emulator ticks the slot clock, accepts downlink requests from the MAC and
// periodically synthesizes uplink traffic back into it.
package phy

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ranstack/nrmac/pkg/config"
	"github.com/ranstack/nrmac/pkg/logger"
	"github.com/ranstack/nrmac/pkg/mac"
	"github.com/ranstack/nrmac/pkg/pdu"
)

// Radio is the slot-driven side of the MAC as seen from the emulator
type Radio interface {
	OnSlot(slot uint32) error
	OnUplinkReceived(data []byte, rnti uint16, slot uint32) error
}

// Emulator implements mac.PHY and drives a Radio on a fixed slot cadence
type Emulator struct {
	cfg  config.PHYConfig
	log  *logger.Logger
	rnti uint16
	lcid uint8

	mu          sync.Mutex
	slot        uint32
	txRequests  uint64
	txPDUs      uint64
	lastNofPDUs int
}

// NewEmulator creates a slot emulator. Synthesized uplink PDUs carry the
// given RNTI and logical channel.
func NewEmulator(cfg config.PHYConfig, rnti uint16, lcid uint8, log *logger.Logger) *Emulator {
	return &Emulator{
		cfg:  cfg,
		log:  log.WithComponent("phy"),
		rnti: rnti,
		lcid: lcid,
	}
}

// DLConfigRequest receives the per-slot scheduling descriptor from the MAC
func (e *Emulator) DLConfigRequest(req *mac.DLConfigRequest) error {
	if req == nil {
		return fmt.Errorf("nil downlink config request")
	}
	return nil
}

// TxRequest receives assembled transport blocks for over-the-air transmission.
// The emulator only accounts for them; there is no radio.
func (e *Emulator) TxRequest(req *mac.TxRequest) error {
	if req == nil {
		return fmt.Errorf("nil transmit request")
	}

	e.mu.Lock()
	e.txRequests++
	e.txPDUs += uint64(req.NofPDUs)
	e.lastNofPDUs = req.NofPDUs
	e.mu.Unlock()

	if req.NofPDUs > 0 {
		e.log.Debug("Transmit request",
			logger.Uint32("slot", req.Slot),
			logger.Int("nof_pdus", req.NofPDUs))
	}
	return nil
}

// Run ticks the slot clock until the context is cancelled, or until Slots
// slots have elapsed when a bound is configured. Every slot calls
// radio.OnSlot; every UplinkInterval slots a synthetic uplink PDU is injected.
func (e *Emulator) Run(ctx context.Context, radio Radio) error {
	period := time.Duration(e.cfg.SlotPeriodUs) * time.Microsecond
	if period <= 0 {
		return fmt.Errorf("invalid slot period: %dus", e.cfg.SlotPeriodUs)
	}

	e.log.Info("Slot clock started",
		logger.Int("period_us", e.cfg.SlotPeriodUs),
		logger.Int("uplink_interval", e.cfg.UplinkInterval))

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.mu.Lock()
			if e.cfg.Slots > 0 && e.slot >= uint32(e.cfg.Slots) {
				e.mu.Unlock()
				e.log.Info("Slot bound reached", logger.Int("slots", e.cfg.Slots))
				return nil
			}
			slot := e.slot
			e.slot++
			e.mu.Unlock()

			if err := radio.OnSlot(slot); err != nil {
				e.log.Error("Slot indication failed",
					logger.Uint32("slot", slot),
					logger.Error(err))
				continue
			}

			if e.cfg.UplinkInterval > 0 && slot%uint32(e.cfg.UplinkInterval) == 0 && slot > 0 {
				e.injectUplink(radio, slot)
			}

		case <-ctx.Done():
			e.log.Info("Slot clock stopped", logger.Uint32("slots", e.Slot()))
			return ctx.Err()
		}
	}
}

// injectUplink builds a small uplink MAC PDU and hands it to the radio
func (e *Emulator) injectUplink(radio Radio, slot uint32) {
	sdu := make([]byte, 16)
	for i := range sdu {
		sdu[i] = byte(slot + uint32(i))
	}

	builder := pdu.NewBuilder(make([]byte, 0, 64), 64)
	if err := builder.AddSDU(e.lcid, sdu); err != nil {
		e.log.Error("Failed to build uplink PDU", logger.Error(err))
		return
	}

	if err := radio.OnUplinkReceived(builder.Bytes(), e.rnti, slot); err != nil {
		e.log.Warn("Uplink indication rejected",
			logger.Uint32("slot", slot),
			logger.Error(err))
	}
}

// Slot returns the next slot number to be ticked
func (e *Emulator) Slot() uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.slot
}

// TxStats returns the number of transmit requests and PDUs seen so far
func (e *Emulator) TxStats() (requests uint64, pdus uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.txRequests, e.txPDUs
}
