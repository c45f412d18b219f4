package testhelpers

import (
	"sync"

	"github.com/ranstack/nrmac/pkg/mac"
)

// RecordingPHY implements mac.PHY and keeps a copy of every transmit request
// so tests can inspect exactly what went over the air.
type RecordingPHY struct {
	mu       sync.Mutex
	requests []mac.TxRequest
	configs  []mac.DLConfigRequest
}

// NewRecordingPHY creates an empty recording PHY
func NewRecordingPHY() *RecordingPHY {
	return &RecordingPHY{}
}

// DLConfigRequest records the scheduling descriptor
func (p *RecordingPHY) DLConfigRequest(req *mac.DLConfigRequest) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.configs = append(p.configs, *req)
	return nil
}

// TxRequest deep-copies the request; the MAC reuses its buffers next slot
func (p *RecordingPHY) TxRequest(req *mac.TxRequest) error {
	cp := mac.TxRequest{Slot: req.Slot, NofPDUs: req.NofPDUs}
	for i := 0; i < req.NofPDUs; i++ {
		src := req.PDUs[i]
		data := make([]byte, src.Length)
		copy(data, src.Data[:src.Length])
		cp.PDUs[i] = mac.TxPDU{
			Index:      src.Index,
			MIBPresent: src.MIBPresent,
			Data:       data,
			Length:     src.Length,
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, cp)
	return nil
}

// Requests returns a snapshot of all recorded transmit requests
func (p *RecordingPHY) Requests() []mac.TxRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]mac.TxRequest, len(p.requests))
	copy(out, p.requests)
	return out
}

// RequestCount returns the number of recorded transmit requests
func (p *RecordingPHY) RequestCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}

// PDUCount returns the total number of PDUs across all recorded requests
func (p *RecordingPHY) PDUCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	count := 0
	for _, req := range p.requests {
		count += req.NofPDUs
	}
	return count
}

// MIBSlots returns the slots on which a MIB descriptor was transmitted
func (p *RecordingPHY) MIBSlots() []uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	var slots []uint32
	for _, req := range p.requests {
		for i := 0; i < req.NofPDUs; i++ {
			if req.PDUs[i].MIBPresent {
				slots = append(slots, req.Slot)
			}
		}
	}
	return slots
}
