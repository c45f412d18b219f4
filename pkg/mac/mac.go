// Package mac implements the slot-synchronous MAC layer of a base-station
// stack: once per radio slot it assembles the downlink transport blocks
// (broadcast information first, unicast fallback otherwise) and hands them
// to the PHY driver, and it demultiplexes uplink transport blocks received
// from the PHY into logical-channel SDUs for the upper layers.
//
// Two execution contexts touch a MAC instance: the radio callback context
// calls OnSlot and OnUplinkReceived under a hard per-slot deadline and must
// never block; the stack context runs ProcessPDUs and may block waiting for
// work. The receive queue is the only state shared between them.
package mac

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/ranstack/nrmac/pkg/logger"
	"github.com/ranstack/nrmac/pkg/metrics"
	"github.com/ranstack/nrmac/pkg/pdu"
)

// ErrNotStarted is returned by per-slot operations outside the Started state.
var ErrNotStarted = errors.New("mac not started")

// Config holds the cell parameters the MAC needs at slot time.
type Config struct {
	// RNTI identifies the single served terminal.
	RNTI uint16
	// LCID is the logical channel used for the unicast fallback PDU.
	LCID uint8
	// TBSize is the transport block size in bytes.
	TBSize int
	// NofTxBuffers sizes the transmission buffer ring. It must exceed the
	// in-flight depth of the transport, typically the HARQ window.
	NofTxBuffers int
	// HexLimit bounds hex dumps in log output. 0 disables truncation.
	HexLimit int
}

// MAC is the per-cell MAC subsystem. Lifecycle: New, ConfigureCell, Start,
// then per-slot operation until Stop. A stopped instance cannot be
// restarted.
type MAC struct {
	cfg Config
	log *logger.Logger

	phy   PHY
	rrc   RRC
	rlc   RLC
	stack Stack

	recorder  Recorder
	collector *metrics.Collector

	onDownlink func(slot uint32, nofPDUs int)
	onUplink   func(rnti uint16, lcid uint8, sduLen int)

	started atomic.Bool

	sibs sibScheduler

	// Radio-context state, touched only from OnSlot.
	txPool      *txBufferPool
	bcchPayload []byte
	rlcBuffer   []byte

	rxQueue *rxQueue
}

// New creates a MAC wired to its collaborators. The instance is inert until
// ConfigureCell and Start.
func New(cfg Config, phy PHY, rrc RRC, rlc RLC, stack Stack, log *logger.Logger) *MAC {
	return &MAC{
		cfg:     cfg,
		log:     log.WithComponent("mac"),
		phy:     phy,
		rrc:     rrc,
		rlc:     rlc,
		stack:   stack,
		rxQueue: newRxQueue(),
	}
}

// WithRecorder attaches an optional diagnostic capture observer.
func (m *MAC) WithRecorder(r Recorder) *MAC {
	m.recorder = r
	return m
}

// WithMetrics attaches an optional metrics collector.
func (m *MAC) WithMetrics(c *metrics.Collector) *MAC {
	m.collector = c
	return m
}

// SetEventHandlers sets optional callbacks fired after each assembled
// downlink slot and each delivered uplink SDU. The callbacks run on the
// radio and stack contexts respectively and must be cheap.
func (m *MAC) SetEventHandlers(onDownlink func(slot uint32, nofPDUs int), onUplink func(rnti uint16, lcid uint8, sduLen int)) {
	m.onDownlink = onDownlink
	m.onUplink = onUplink
}

// ConfigureCell caches the broadcast payloads for the given SIB list,
// reading each from RRC. It must be called before Start; payloads are not
// refreshed afterwards. A SIB whose payload RRC cannot supply is kept with
// an empty payload and skipped at slot time.
func (m *MAC) ConfigureCell(sibs []SIBConfig) error {
	if m.started.Load() {
		return fmt.Errorf("cell configuration is only accepted before start")
	}

	for _, cfg := range sibs {
		if cfg.Periodicity <= 0 {
			return fmt.Errorf("sib %d: periodicity must be positive, got %d", cfg.Index, cfg.Periodicity)
		}

		entry := sibEntry{index: cfg.Index, periodicity: cfg.Periodicity}
		payload, err := m.rrc.ReadBCCHDLSCH(cfg.Index)
		if err != nil {
			m.log.Error("Couldn't read SIB from RRC",
				logger.Int("sib", cfg.Index),
				logger.Error(err))
		} else {
			entry.payload = append([]byte(nil), payload...)
		}

		m.log.Info("Including SIB into SI scheduling",
			logger.Int("sib", cfg.Index),
			logger.Int("periodicity", cfg.Periodicity),
			logger.Int("bytes", len(entry.payload)))
		m.sibs.add(entry)
	}

	return nil
}

// Start allocates the transmission buffers and enters the Started state.
// An allocation or configuration failure aborts startup.
func (m *MAC) Start() error {
	if m.started.Load() {
		return fmt.Errorf("mac already started")
	}
	if m.cfg.TBSize <= 2 {
		return fmt.Errorf("tb_size must exceed the 2-byte sub-header reservation, got %d", m.cfg.TBSize)
	}
	if m.cfg.LCID >= pdu.LCIDPadding {
		return fmt.Errorf("lcid %d is reserved", m.cfg.LCID)
	}

	pool, err := newTxBufferPool(m.cfg.NofTxBuffers, m.cfg.TBSize)
	if err != nil {
		return fmt.Errorf("failed to allocate tx buffers: %w", err)
	}
	m.txPool = pool
	m.bcchPayload = make([]byte, 0, m.cfg.TBSize)
	m.rlcBuffer = make([]byte, m.cfg.TBSize)

	m.started.Store(true)
	m.log.Info("Started",
		logger.Uint16("rnti", m.cfg.RNTI),
		logger.Int("tb_size", m.cfg.TBSize),
		logger.Int("tx_buffers", pool.size()))
	return nil
}

// Stop leaves the Started state and closes the receive queue, releasing any
// consumer blocked in ProcessPDUs. Stop is idempotent; there is no way back
// to Started.
func (m *MAC) Stop() {
	if m.started.CompareAndSwap(true, false) {
		m.rxQueue.close()
		m.log.Info("Stopped")
	}
}

// Started reports whether the MAC is processing slots.
func (m *MAC) Started() bool {
	return m.started.Load()
}

// OnSlot is the per-slot entry point, invoked by the radio driver once per
// slot under its real-time deadline. It assembles the downlink content and
// forwards it synchronously to the PHY. No blocking work happens here.
func (m *MAC) OnSlot(slot uint32) error {
	if !m.started.Load() {
		return ErrNotStarted
	}

	var cfgReq DLConfigRequest
	var txReq TxRequest

	m.buildDLConfig(slot, &cfgReq, &txReq)

	if m.collector != nil {
		m.collector.SlotProcessed()
	}
	if m.onDownlink != nil {
		m.onDownlink(slot, txReq.NofPDUs)
	}

	if err := m.phy.DLConfigRequest(&cfgReq); err != nil {
		return fmt.Errorf("dl_config request failed: %w", err)
	}
	if err := m.phy.TxRequest(&txReq); err != nil {
		return fmt.Errorf("tx request failed: %w", err)
	}
	return nil
}

// buildDLConfig fills the control and transmission requests for one slot:
// primary broadcast information first, then due SIBs, then a unicast
// fallback PDU when the slot would otherwise be empty.
func (m *MAC) buildDLConfig(slot uint32, cfgReq *DLConfigRequest, txReq *TxRequest) {
	if mibDue(slot) {
		payload, err := m.rrc.ReadBCCHBCH(slot)
		if err != nil {
			// Non-fatal: the slot proceeds without broadcast content.
			m.log.Error("Couldn't read BCH payload from RRC",
				logger.Uint32("slot", slot),
				logger.Error(err))
		} else {
			m.bcchPayload = append(m.bcchPayload[:0], payload...)
			if txReq.Append(m.bcchPayload, true) {
				m.log.Info("Adding BCH", logger.Uint32("slot", slot))
				if m.recorder != nil {
					m.recorder.RecordDownlink(TraceBCH, 0xFFFF, slot, m.bcchPayload)
				}
				if m.collector != nil {
					m.collector.MIBTransmitted()
				}
			}
		}
	}

	m.sibs.due(slot, func(e *sibEntry) {
		if !txReq.Append(e.payload, false) {
			m.log.Warn("Slot PDU capacity exhausted, dropping SIB",
				logger.Int("sib", e.index),
				logger.Uint32("slot", slot))
			return
		}
		m.log.Info("Adding SIB",
			logger.Int("sib", e.index),
			logger.Uint32("slot", slot))
		if m.recorder != nil {
			m.recorder.RecordDownlink(TraceSI, 0xFFFF, slot, e.payload)
		}
		if m.collector != nil {
			m.collector.SIBTransmitted(e.index)
		}
	})

	// Unicast fallback only when the slot carries no broadcast content.
	if txReq.NofPDUs == 0 {
		buf := m.txPool.get(slot)

		n := m.rlc.ReadPDU(m.cfg.RNTI, m.cfg.LCID, m.rlcBuffer[:m.cfg.TBSize-2])
		if n > 0 {
			b := pdu.NewBuilder(buf, m.cfg.TBSize)
			if err := b.AddSDU(m.cfg.LCID, m.rlcBuffer[:n]); err != nil {
				m.log.Error("Failed to pack MAC PDU",
					logger.Uint16("rnti", m.cfg.RNTI),
					logger.Int("sdu_len", n),
					logger.Error(err))
			} else {
				m.log.Debug("Generated MAC PDU",
					logger.Uint16("rnti", m.cfg.RNTI),
					logger.Int("bytes", b.Len()),
					logger.Hex("pdu", b.Bytes(), m.cfg.HexLimit))
				txReq.Append(b.Bytes(), false)
				if m.recorder != nil {
					m.recorder.RecordDownlink(TraceDLSCH, m.cfg.RNTI, slot, b.Bytes())
				}
				if m.collector != nil {
					m.collector.PDUTransmitted(b.Len())
				}
			}
		}
	}

	cfgReq.Slot = slot
	txReq.Slot = slot
}

// OnUplinkReceived delivers one received transport block from the radio
// driver. Ownership of data transfers to the MAC. The call never blocks:
// the buffer is queued for the stack context and the stack is notified.
func (m *MAC) OnUplinkReceived(data []byte, rnti uint16, slot uint32) error {
	if !m.started.Load() {
		return ErrNotStarted
	}
	if data == nil {
		return nil
	}

	if m.recorder != nil {
		m.recorder.RecordUplink(rnti, slot, data)
	}

	m.rxQueue.push(rxPDU{data: data, rnti: rnti, slot: slot})
	if m.collector != nil {
		m.collector.QueueDepth(m.rxQueue.len())
	}

	m.stack.NotifyPDUs()
	return nil
}

// ProcessPDUs drains the receive queue, decoding each transport block and
// forwarding its SDUs upward. It is meant to run on the stack context and
// blocks while the queue is empty; it returns once Stop closes the queue.
func (m *MAC) ProcessPDUs() {
	for m.started.Load() {
		p, ok := m.rxQueue.waitPop()
		if !ok {
			return
		}
		m.handlePDU(p)
	}
}

// handlePDU decodes one uplink transport block. A malformed block is
// discarded; processing continues with the next queued item.
func (m *MAC) handlePDU(p rxPDU) {
	m.log.Debug("Handling MAC PDU",
		logger.Uint16("rnti", p.rnti),
		logger.Int("bytes", len(p.data)),
		logger.Hex("pdu", p.data, m.cfg.HexLimit))

	if m.collector != nil {
		m.collector.PDUReceived(len(p.data))
	}

	subs, err := pdu.Parse(p.data)
	if err != nil {
		m.log.Warn("Discarding malformed MAC PDU",
			logger.Uint16("rnti", p.rnti),
			logger.Uint32("slot", p.slot),
			logger.Error(err))
		if m.collector != nil {
			m.collector.MalformedPDU()
		}
		return
	}

	for i, sub := range subs {
		if sub.IsPadding() {
			continue
		}
		m.log.Debug("Handling subPDU",
			logger.Int("n", i),
			logger.Int("of", len(subs)),
			logger.Uint8("lcid", sub.LCID),
			logger.Int("sdu_len", len(sub.SDU)))

		m.rlc.WritePDU(p.rnti, sub.LCID, sub.SDU)
		if m.collector != nil {
			m.collector.SubPDUDelivered()
		}
		if m.onUplink != nil {
			m.onUplink(p.rnti, sub.LCID, len(sub.SDU))
		}
	}
}

// GetDLSched returns the downlink scheduling decision for a slot. Resource
// allocation is an external collaborator contract; this surface is a no-op.
func (m *MAC) GetDLSched(slot uint32) (DLSched, error) {
	return DLSched{Slot: slot}, nil
}

// GetULSched returns the uplink scheduling decision for a slot. No-op, as
// with GetDLSched.
func (m *MAC) GetULSched(slot uint32) (ULSched, error) {
	return ULSched{Slot: slot}, nil
}

// PUCCHInfo accepts uplink control feedback from the PHY. No-op.
func (m *MAC) PUCCHInfo(info PUCCHInfo) error {
	return nil
}

// PUSCHInfo accepts uplink shared channel feedback from the PHY. No-op.
func (m *MAC) PUSCHInfo(info PUSCHInfo) error {
	return nil
}
