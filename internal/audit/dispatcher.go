package audit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// DispatcherOptions configures a [Dispatcher].
type DispatcherOptions struct {
	// Buffer is the queue capacity between emitters and the sink.
	Buffer int
	// DropIfFull drops events when the queue is full instead of blocking
	// the emitting goroutine.
	DropIfFull bool
	// DrainTimeout bounds how long Close waits for a slow sink to consume
	// the remaining queue. Zero waits until the queue is empty.
	DrainTimeout time.Duration
}

// Dispatcher decouples event emission from sink latency. Events are queued
// and consumed by a single goroutine; Close stops intake, then waits for the
// queue to drain, up to DrainTimeout.
//
// Drops are counted per event type so a saturated client can tell which
// lifecycle events it is losing.
type Dispatcher struct {
	sink Sink
	opts DispatcherOptions

	// mu orders sends on queue against the close in Close. Emitters hold
	// the read side for the duration of a send; Close takes the write side
	// before closing the channel, so no send can race the close.
	mu     sync.RWMutex
	closed bool
	queue  chan Event

	drained chan struct{}

	dropTotal atomic.Uint64
	dropMu    sync.Mutex
	dropped   map[string]uint64
}

// NewDispatcher starts a dispatcher feeding the given sink. A nil sink
// discards events.
func NewDispatcher(opts DispatcherOptions, sink Sink) *Dispatcher {
	if sink == nil {
		sink = NoOpSink{}
	}
	if opts.Buffer <= 0 {
		opts.Buffer = 1
	}

	d := &Dispatcher{
		sink:    sink,
		opts:    opts,
		queue:   make(chan Event, opts.Buffer),
		drained: make(chan struct{}),
		dropped: make(map[string]uint64),
	}
	go d.consume()
	return d
}

func (d *Dispatcher) consume() {
	defer close(d.drained)
	for event := range d.queue {
		d.sink.Emit(context.Background(), event)
	}
}

// Emit queues an event. After Close, Emit is a no-op. In blocking mode the
// caller's context bounds the wait; a cancelled wait counts as a drop.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil {
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}

	if d.opts.DropIfFull {
		select {
		case d.queue <- event:
		default:
			d.recordDrop(event.EventType)
		}
		return
	}

	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case d.queue <- event:
	case <-ctx.Done():
		d.recordDrop(event.EventType)
	}
}

// Close stops intake and waits for the consumer to drain the queue, up to
// DrainTimeout. Close is idempotent.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	if d.opts.DrainTimeout <= 0 {
		<-d.drained
		return
	}

	timer := time.NewTimer(d.opts.DrainTimeout)
	defer timer.Stop()
	select {
	case <-d.drained:
	case <-timer.C:
	}
}

// Dropped reports the total number of dropped events.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropTotal.Load()
}

// DroppedByType returns a copy of the per-event-type drop counts.
func (d *Dispatcher) DroppedByType() map[string]uint64 {
	if d == nil {
		return nil
	}
	d.dropMu.Lock()
	defer d.dropMu.Unlock()

	out := make(map[string]uint64, len(d.dropped))
	for eventType, n := range d.dropped {
		out[eventType] = n
	}
	return out
}

func (d *Dispatcher) recordDrop(eventType string) {
	d.dropTotal.Add(1)
	d.dropMu.Lock()
	d.dropped[eventType]++
	d.dropMu.Unlock()
}
