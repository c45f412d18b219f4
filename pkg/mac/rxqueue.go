package mac

import "sync"

// rxPDU is one received transport block in flight between the radio context
// and the stack context. The queue holds exclusive ownership of Data from
// Push until WaitPop hands it to the consumer.
type rxPDU struct {
	data []byte
	rnti uint16
	slot uint32
}

// rxQueue is the handoff point between the radio context (producer) and the
// stack context (consumer). Push never blocks; WaitPop blocks cooperatively
// until an item arrives or the queue is closed. It is the only mutable
// state shared between the two contexts.
type rxQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []rxPDU
	closed bool
}

func newRxQueue() *rxQueue {
	q := &rxQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// push appends one PDU and wakes a waiting consumer. It reports false when
// the queue has been closed; the item is dropped in that case.
func (q *rxQueue) push(p rxPDU) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.items = append(q.items, p)
	q.cond.Signal()
	return true
}

// waitPop blocks until an item is available or the queue is closed. The
// second return value is false only when the queue is closed and drained.
func (q *rxQueue) waitPop() (rxPDU, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return rxPDU{}, false
	}

	p := q.items[0]
	q.items[0] = rxPDU{}
	q.items = q.items[1:]
	return p, true
}

// close wakes all blocked consumers; queued items remain poppable.
func (q *rxQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.cond.Broadcast()
}

func (q *rxQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
