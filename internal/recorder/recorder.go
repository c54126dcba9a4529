// Package recorder persists finished-turn records to an analytics sink,
// best-effort: recording never blocks or fails the user-visible reply.
package recorder

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Record is one finished interaction.
type Record struct {
	SessionID string    `json:"session_id"`
	Input     string    `json:"input"`
	Output    string    `json:"output"`
	Modality  string    `json:"modality"`
	LatencyMS int64     `json:"latency_ms"`
	Timestamp time.Time `json:"timestamp"`
}

// Sink accepts interaction records. Implementations own any retry
// policy; the recorder attempts once.
type Sink interface {
	Store(ctx context.Context, rec Record) error
}

// Recorder queues records and writes them from a single worker
// goroutine. A full queue drops the record with a warning.
type Recorder struct {
	sink  Sink
	queue chan Record
	done  chan struct{}

	mu     sync.Mutex
	closed bool
}

// New starts a Recorder over sink. queueSize <= 0 defaults to 256.
func New(sink Sink, queueSize int) *Recorder {
	if queueSize <= 0 {
		queueSize = 256
	}
	r := &Recorder{
		sink:  sink,
		queue: make(chan Record, queueSize),
		done:  make(chan struct{}),
	}
	go r.run()
	return r
}

// Log enqueues rec without blocking. Failures are logged, never
// surfaced and never retried here. Records arriving after Close, such
// as from background tasks still finishing during shutdown, are
// dropped.
func (r *Recorder) Log(rec Record) {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		slog.Warn("recorder closed, dropping record", "session", rec.SessionID, "modality", rec.Modality)
		return
	}
	select {
	case r.queue <- rec:
	default:
		slog.Warn("interaction queue full, dropping record", "session", rec.SessionID, "modality", rec.Modality)
	}
}

func (r *Recorder) run() {
	defer close(r.done)
	for rec := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := r.sink.Store(ctx, rec); err != nil {
			slog.Error("failed to store interaction record", "session", rec.SessionID, "error", err)
		}
		cancel()
	}
}

// Close stops accepting records and drains the queue.
func (r *Recorder) Close() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()
	<-r.done
}
