package journal

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/randalmurphal/eventtap/pkg/eventtap"
	"github.com/randalmurphal/eventtap/pkg/eventtap/observability"
)

// DefaultBuffer is the number of outcomes a Recorder queues before it
// starts dropping.
const DefaultBuffer = 256

// Recorder journals dispatch outcomes on a background goroutine.
//
// Observe never blocks: when the queue is full the outcome is dropped and
// counted. Plug it into a supervisor with
//
//	rec := journal.NewRecorder(store)
//	sup := eventtap.New(tap, eventtap.WithDispatchObserver(rec.Observe))
type Recorder struct {
	store  Store
	logger *slog.Logger
	queue  chan Record

	written atomic.Uint64
	dropped atomic.Uint64

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithBuffer sets the queue length. Values below one are ignored.
func WithBuffer(n int) RecorderOption {
	return func(r *Recorder) {
		if n > 0 {
			r.queue = make(chan Record, n)
		}
	}
}

// WithLogger sets the logger for write failures. A nil logger disables
// logging.
func WithLogger(logger *slog.Logger) RecorderOption {
	return func(r *Recorder) {
		r.logger = logger
	}
}

// NewRecorder starts a recorder writing to store.
// The caller keeps ownership of store and closes it after the recorder.
func NewRecorder(store Store, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		store:  store,
		logger: slog.Default(),
		queue:  make(chan Record, DefaultBuffer),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	go r.run()
	return r
}

// Observe queues o for writing. It matches the signature expected by
// eventtap.WithDispatchObserver.
func (r *Recorder) Observe(o eventtap.Outcome) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		r.dropped.Add(1)
		return
	}

	select {
	case r.queue <- FromOutcome(o):
	default:
		r.dropped.Add(1)
	}
}

// Written returns the number of records stored so far.
func (r *Recorder) Written() uint64 {
	return r.written.Load()
}

// Dropped returns the number of outcomes discarded because the queue was
// full or the recorder was closed.
func (r *Recorder) Dropped() uint64 {
	return r.dropped.Load()
}

// Close stops accepting outcomes, writes everything already queued, and
// waits for the writer to finish. Safe to call multiple times.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		<-r.done
		return nil
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()

	<-r.done
	observability.LogJournalClosed(r.logger, r.written.Load(), r.dropped.Load())
	return nil
}

func (r *Recorder) run() {
	defer close(r.done)

	for rec := range r.queue {
		if _, err := r.store.Append(rec); err != nil {
			observability.LogJournalWriteFailed(r.logger, rec.ID, err)
			continue
		}
		r.written.Add(1)
	}
}
