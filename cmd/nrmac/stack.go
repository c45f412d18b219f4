package main

import (
	"fmt"
	"sync"
)

// staticRRC serves fixed broadcast payloads, the way a real RRC would hand
// down encoded MIB and SIB messages.
type staticRRC struct {
	mib  []byte
	sibs map[int][]byte
}

func newStaticRRC(sibIndexes []int) *staticRRC {
	rrc := &staticRRC{
		// NR MIB is a 3-byte encoded message
		mib:  []byte{0x5C, 0x40, 0x82},
		sibs: make(map[int][]byte),
	}
	for _, index := range sibIndexes {
		payload := make([]byte, 16+index*4)
		for i := range payload {
			payload[i] = byte(index<<4 | i&0x0F)
		}
		rrc.sibs[index] = payload
	}
	return rrc
}

func (r *staticRRC) ReadBCCHBCH(slot uint32) ([]byte, error) {
	mib := make([]byte, len(r.mib))
	copy(mib, r.mib)
	return mib, nil
}

func (r *staticRRC) ReadBCCHDLSCH(index int) ([]byte, error) {
	payload, ok := r.sibs[index]
	if !ok {
		return nil, fmt.Errorf("no system information message for index %d", index)
	}
	sib := make([]byte, len(payload))
	copy(sib, payload)
	return sib, nil
}

// echoRLC queues every uplink SDU for downlink retransmission, giving the
// unicast fallback path something to send without a real bearer behind it.
type echoRLC struct {
	mu      sync.Mutex
	pending [][]byte
}

func (r *echoRLC) ReadPDU(rnti uint16, lcid uint8, buf []byte) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.pending) == 0 {
		return 0
	}
	sdu := r.pending[0]
	if len(sdu) > len(buf) {
		return 0
	}
	r.pending = r.pending[1:]
	return copy(buf, sdu)
}

func (r *echoRLC) WritePDU(rnti uint16, lcid uint8, sdu []byte) {
	buf := make([]byte, len(sdu))
	copy(buf, sdu)

	r.mu.Lock()
	r.pending = append(r.pending, buf)
	r.mu.Unlock()
}

// drainStack relies on the dedicated ProcessPDUs goroutine; the notification
// is not needed to make progress.
type drainStack struct{}

func (drainStack) NotifyPDUs() {}
