package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/nerrad567/http2sql/internal/gateway"
	"github.com/nerrad567/http2sql/internal/infrastructure/influxdb"
	"github.com/nerrad567/http2sql/internal/infrastructure/logging"
	"github.com/nerrad567/http2sql/internal/infrastructure/mqtt"
)

// DefaultQueueSize is the number of events buffered ahead of the sinks.
const DefaultQueueSize = 256

// EventPublisher publishes a JSON document to a topic. *mqtt.Client implements it.
type EventPublisher interface {
	PublishJSON(topic string, v any) error
}

// MetricWriter records statement telemetry. *influxdb.Client implements it.
type MetricWriter interface {
	WriteStatementMetric(m influxdb.StatementMetric)
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithPublisher announces successful schema and data changes through p.
func WithPublisher(p EventPublisher) Option {
	return func(r *Recorder) {
		r.publisher = p
	}
}

// WithMetrics writes a point per executed statement through w.
func WithMetrics(w MetricWriter) Option {
	return func(r *Recorder) {
		r.metrics = w
	}
}

// WithQueueSize overrides the event buffer size.
func WithQueueSize(n int) Option {
	return func(r *Recorder) {
		if n > 0 {
			r.queueSize = n
		}
	}
}

// Message is the MQTT payload published for a change event.
type Message struct {
	Kind       string    `json:"kind"`
	Table      string    `json:"table,omitempty"`
	Intent     string    `json:"intent,omitempty"`
	Rows       int64     `json:"rows"`
	DurationMS float64   `json:"duration_ms"`
	At         time.Time `json:"at"`
}

// Recorder implements gateway.Observer.
//
// Thread Safety: Observe is safe for concurrent use. Start and Close must be
// called once each.
type Recorder struct {
	publisher EventPublisher
	metrics   MetricWriter
	logger    *logging.Logger
	queueSize int

	events  chan gateway.Event
	wg      sync.WaitGroup
	mu      sync.RWMutex
	started bool
	closed  bool
}

// NewRecorder creates a recorder. With no sink options it discards events.
func NewRecorder(logger *logging.Logger, opts ...Option) *Recorder {
	if logger == nil {
		logger = logging.Discard()
	}
	r := &Recorder{
		logger:    logger.With("component", "telemetry"),
		queueSize: DefaultQueueSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.events = make(chan gateway.Event, r.queueSize)
	return r
}

// Start launches the delivery worker. Events observed before Start are
// buffered up to the queue size.
func (r *Recorder) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started || r.closed {
		return
	}
	r.started = true

	r.wg.Add(1)
	go r.run(ctx)
}

// Close stops accepting events, delivers what is queued and waits for the
// worker to finish.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.events)
	started := r.started
	r.mu.Unlock()

	if !started {
		// Drain synchronously so buffered events are not lost.
		for ev := range r.events {
			r.deliver(ev)
		}
		return nil
	}
	r.wg.Wait()
	return nil
}

// Observe queues ev for delivery. It never blocks.
func (r *Recorder) Observe(_ context.Context, ev gateway.Event) {
	if r.publisher == nil && r.metrics == nil {
		return
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return
	}

	select {
	case r.events <- ev:
	default:
		r.logger.Warn("telemetry queue full, event dropped",
			"kind", string(ev.Kind),
			"table", ev.Table,
		)
	}
}

// run delivers queued events until the queue is closed. Cancelling ctx
// stops delivery but Close still waits for the worker to exit.
func (r *Recorder) run(ctx context.Context) {
	defer r.wg.Done()
	for {
		select {
		case ev, ok := <-r.events:
			if !ok {
				return
			}
			r.deliver(ev)
		case <-ctx.Done():
			r.logger.Debug("telemetry worker stopped", "reason", ctx.Err())
			return
		}
	}
}

// deliver hands one event to each configured sink.
func (r *Recorder) deliver(ev gateway.Event) {
	if r.metrics != nil {
		r.metrics.WriteStatementMetric(influxdb.StatementMetric{
			Kind:     string(ev.Kind),
			Intent:   ev.Intent,
			Failed:   ev.Err != nil,
			Duration: ev.Duration,
			Rows:     ev.Rows,
			At:       ev.At,
		})
	}

	// Failed statements changed nothing, and reads are not announced.
	if r.publisher == nil || ev.Err != nil || !ev.Kind.Mutates() {
		return
	}
	topic := mqtt.Topics{}.Event(string(ev.Kind))
	if err := r.publisher.PublishJSON(topic, newMessage(ev)); err != nil {
		r.logger.Warn("publishing event failed",
			"topic", topic,
			"error", err,
		)
	}
}

func newMessage(ev gateway.Event) Message {
	return Message{
		Kind:       string(ev.Kind),
		Table:      ev.Table,
		Intent:     ev.Intent,
		Rows:       ev.Rows,
		DurationMS: float64(ev.Duration) / float64(time.Millisecond),
		At:         ev.At.UTC(),
	}
}
