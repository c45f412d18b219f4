package mac

import (
	"sync"
	"testing"
	"time"
)

func TestRxQueue_FIFO(t *testing.T) {
	q := newRxQueue()

	for i := 0; i < 5; i++ {
		if !q.push(rxPDU{data: []byte{byte(i)}, slot: uint32(i)}) {
			t.Fatalf("push %d failed", i)
		}
	}

	for i := 0; i < 5; i++ {
		p, ok := q.waitPop()
		if !ok {
			t.Fatalf("waitPop %d returned closed", i)
		}
		if p.data[0] != byte(i) || p.slot != uint32(i) {
			t.Errorf("Expected item %d, got data=%v slot=%d", i, p.data, p.slot)
		}
	}

	if q.len() != 0 {
		t.Errorf("Expected empty queue, got %d items", q.len())
	}
}

func TestRxQueue_ConcurrentPushPop(t *testing.T) {
	q := newRxQueue()
	const n = 1000

	var popped []uint32
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			p, ok := q.waitPop()
			if !ok {
				return
			}
			popped = append(popped, p.slot)
		}
	}()

	for i := 0; i < n; i++ {
		q.push(rxPDU{slot: uint32(i)})
	}
	wg.Wait()

	if len(popped) != n {
		t.Fatalf("Expected %d items, got %d", n, len(popped))
	}
	for i, s := range popped {
		if s != uint32(i) {
			t.Fatalf("Order violated at %d: got %d", i, s)
		}
	}
}

func TestRxQueue_CloseWakesConsumer(t *testing.T) {
	q := newRxQueue()

	done := make(chan bool, 1)
	go func() {
		_, ok := q.waitPop()
		done <- ok
	}()

	// Let the consumer block, then close
	time.Sleep(50 * time.Millisecond)
	q.close()

	select {
	case ok := <-done:
		if ok {
			t.Error("Expected ok=false from a closed empty queue")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Consumer did not wake after close")
	}
}

func TestRxQueue_CloseDrainsRemaining(t *testing.T) {
	q := newRxQueue()
	q.push(rxPDU{slot: 1})
	q.push(rxPDU{slot: 2})
	q.close()

	// Queued items survive the close
	for want := uint32(1); want <= 2; want++ {
		p, ok := q.waitPop()
		if !ok || p.slot != want {
			t.Fatalf("Expected slot %d, got %v ok=%v", want, p.slot, ok)
		}
	}

	if _, ok := q.waitPop(); ok {
		t.Error("Expected ok=false once drained")
	}

	// New pushes are rejected
	if q.push(rxPDU{slot: 3}) {
		t.Error("Expected push to fail after close")
	}
}
