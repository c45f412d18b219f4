package metrics

import (
	"sync"
)

// Collector collects MAC layer metrics
type Collector struct {
	mu sync.RWMutex

	// Slot metrics
	slotsProcessed uint64

	// Downlink metrics
	mibTransmitted  uint64
	sibTransmitted  map[int]uint64
	pdusTransmitted uint64
	bytesTransmitted uint64

	// Uplink metrics
	pdusReceived     uint64
	bytesReceived    uint64
	subPDUsDelivered uint64
	malformedPDUs    uint64

	// Receive queue high-water mark
	queueHighWater int
}

// NewCollector creates a new metrics collector
func NewCollector() *Collector {
	return &Collector{
		sibTransmitted: make(map[int]uint64),
	}
}

// SlotProcessed records one completed slot indication
func (c *Collector) SlotProcessed() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.slotsProcessed++
}

// MIBTransmitted records one primary broadcast transmission
func (c *Collector) MIBTransmitted() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mibTransmitted++
}

// SIBTransmitted records one system information transmission
func (c *Collector) SIBTransmitted(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sibTransmitted[index]++
}

// PDUTransmitted records one unicast downlink PDU
func (c *Collector) PDUTransmitted(bytes int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pdusTransmitted++
	c.bytesTransmitted += uint64(bytes)
}

// PDUReceived records one uplink transport block handed to the stack
func (c *Collector) PDUReceived(bytes int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pdusReceived++
	c.bytesReceived += uint64(bytes)
}

// SubPDUDelivered records one decoded SDU forwarded to the upper layer
func (c *Collector) SubPDUDelivered() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.subPDUsDelivered++
}

// MalformedPDU records one discarded uplink transport block
func (c *Collector) MalformedPDU() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.malformedPDUs++
}

// QueueDepth records the receive queue depth, keeping the high-water mark
func (c *Collector) QueueDepth(depth int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if depth > c.queueHighWater {
		c.queueHighWater = depth
	}
}

// Getters for metrics

// GetSlotsProcessed returns the number of processed slots
func (c *Collector) GetSlotsProcessed() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.slotsProcessed
}

// GetMIBTransmitted returns the number of primary broadcast transmissions
func (c *Collector) GetMIBTransmitted() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mibTransmitted
}

// GetSIBTransmitted returns the transmission count for one SIB index
func (c *Collector) GetSIBTransmitted(index int) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sibTransmitted[index]
}

// GetSIBIndexes returns the SIB indexes seen so far
func (c *Collector) GetSIBIndexes() []int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	indexes := make([]int, 0, len(c.sibTransmitted))
	for idx := range c.sibTransmitted {
		indexes = append(indexes, idx)
	}
	return indexes
}

// GetPDUsTransmitted returns the number of unicast downlink PDUs
func (c *Collector) GetPDUsTransmitted() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pdusTransmitted
}

// GetBytesTransmitted returns the unicast downlink byte count
func (c *Collector) GetBytesTransmitted() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bytesTransmitted
}

// GetPDUsReceived returns the number of uplink transport blocks
func (c *Collector) GetPDUsReceived() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pdusReceived
}

// GetBytesReceived returns the uplink byte count
func (c *Collector) GetBytesReceived() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bytesReceived
}

// GetSubPDUsDelivered returns the number of SDUs forwarded upward
func (c *Collector) GetSubPDUsDelivered() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.subPDUsDelivered
}

// GetMalformedPDUs returns the number of discarded transport blocks
func (c *Collector) GetMalformedPDUs() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.malformedPDUs
}

// GetQueueHighWater returns the receive queue high-water mark
func (c *Collector) GetQueueHighWater() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.queueHighWater
}
