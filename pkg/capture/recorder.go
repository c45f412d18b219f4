package capture

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/ranstack/nrmac/pkg/logger"
)

const recorderQueueSize = 256

// Recorder buffers captured PDUs on a channel and writes them to the store
// from its own goroutine. Record calls never block: when the queue is full
// the record is dropped and counted.
type Recorder struct {
	store   *Store
	log     *logger.Logger
	queue   chan *PDURecord
	dropped atomic.Uint64
	wg      sync.WaitGroup
	cancel  context.CancelFunc
}

// NewRecorder creates a recorder writing to the given store
func NewRecorder(store *Store, log *logger.Logger) *Recorder {
	return &Recorder{
		store: store,
		log:   log.WithComponent("recorder"),
		queue: make(chan *PDURecord, recorderQueueSize),
	}
}

// Start launches the writer goroutine
func (r *Recorder) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)
	r.wg.Add(1)
	go r.writeLoop(ctx)
}

// Stop shuts down the writer goroutine after draining queued records
func (r *Recorder) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
	if n := r.dropped.Load(); n > 0 {
		r.log.Warn("Capture records dropped", logger.Uint64("count", n))
	}
}

// Dropped returns the number of records discarded because the queue was full
func (r *Recorder) Dropped() uint64 {
	return r.dropped.Load()
}

// RecordDownlink captures a transmitted transport block payload
func (r *Recorder) RecordDownlink(channel string, rnti uint16, slot uint32, data []byte) {
	r.enqueue(DirectionDownlink, channel, rnti, slot, data)
}

// RecordUplink captures a received transport block payload
func (r *Recorder) RecordUplink(rnti uint16, slot uint32, data []byte) {
	r.enqueue(DirectionUplink, "ulsch", rnti, slot, data)
}

func (r *Recorder) enqueue(direction, channel string, rnti uint16, slot uint32, data []byte) {
	payload := make([]byte, len(data))
	copy(payload, data)

	record := &PDURecord{
		Direction: direction,
		Channel:   channel,
		RNTI:      rnti,
		Slot:      slot,
		Length:    len(data),
		Payload:   payload,
	}

	select {
	case r.queue <- record:
	default:
		r.dropped.Add(1)
	}
}

func (r *Recorder) writeLoop(ctx context.Context) {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.queue:
			r.write(record)
		case <-ctx.Done():
			// drain whatever is already queued before exiting
			for {
				select {
				case record := <-r.queue:
					r.write(record)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) write(record *PDURecord) {
	if err := r.store.Insert(record); err != nil {
		r.log.Error("Failed to persist capture record",
			logger.String("direction", record.Direction),
			logger.String("channel", record.Channel),
			logger.Error(err))
	}
}
