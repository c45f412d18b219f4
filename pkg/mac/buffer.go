package mac

import "fmt"

// txBufferPool is a fixed ring of reusable transmission buffers indexed by
// slot modulo pool size. The pool size must exceed the maximum number of
// slots in flight to the radio layer (the retransmission window depth), so
// a buffer is never overwritten before the previous transport block at the
// same index has been consumed.
type txBufferPool struct {
	buffers [][]byte
}

func newTxBufferPool(count, size int) (*txBufferPool, error) {
	if count <= 0 {
		return nil, fmt.Errorf("buffer pool needs at least one buffer, got %d", count)
	}
	if size <= 0 {
		return nil, fmt.Errorf("buffer size must be positive, got %d", size)
	}

	buffers := make([][]byte, count)
	for i := range buffers {
		buffers[i] = make([]byte, size)
	}
	return &txBufferPool{buffers: buffers}, nil
}

// get returns the buffer owned by the given slot, full capacity. The caller
// overwrites it from the start; contents from the previous cycle are stale.
func (p *txBufferPool) get(slot uint32) []byte {
	return p.buffers[int(slot)%len(p.buffers)]
}

func (p *txBufferPool) size() int {
	return len(p.buffers)
}
