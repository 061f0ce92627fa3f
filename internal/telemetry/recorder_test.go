package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/http2sql/internal/gateway"
	"github.com/nerrad567/http2sql/internal/infrastructure/influxdb"
)

type published struct {
	topic string
	msg   Message
}

type fakePublisher struct {
	mu   sync.Mutex
	got  []published
	fail error
}

func (p *fakePublisher) PublishJSON(topic string, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return p.fail
	}
	msg, _ := v.(Message) //nolint:errcheck // Recorder always publishes a Message
	p.got = append(p.got, published{topic: topic, msg: msg})
	return nil
}

func (p *fakePublisher) messages() []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]published(nil), p.got...)
}

type fakeMetrics struct {
	mu  sync.Mutex
	got []influxdb.StatementMetric
}

func (m *fakeMetrics) WriteStatementMetric(sm influxdb.StatementMetric) {
	m.mu.Lock()
	m.got = append(m.got, sm)
	m.mu.Unlock()
}

func (m *fakeMetrics) points() []influxdb.StatementMetric {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]influxdb.StatementMetric(nil), m.got...)
}

var testEvents = []gateway.Event{
	{Kind: gateway.EventTableCreated, Table: "widgets", Duration: 2 * time.Millisecond},
	{Kind: gateway.EventRowsInserted, Table: "widgets", Rows: 3},
	{Kind: gateway.EventQueryFetched, Intent: "select", Rows: 3},
	{Kind: gateway.EventStatementExecuted, Intent: "delete", Err: errors.New("no such table")},
	{Kind: gateway.EventStatementExecuted, Intent: "update", Rows: 1},
}

func TestRecorder_Fanout(t *testing.T) {
	pub := &fakePublisher{}
	met := &fakeMetrics{}
	rec := NewRecorder(nil, WithPublisher(pub), WithMetrics(met))
	rec.Start(context.Background())

	for _, ev := range testEvents {
		rec.Observe(context.Background(), ev)
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	points := met.points()
	if len(points) != len(testEvents) {
		t.Fatalf("metric points = %d, want %d", len(points), len(testEvents))
	}
	if !points[3].Failed || points[0].Failed {
		t.Errorf("Failed flags = %v/%v, want false/true", points[0].Failed, points[3].Failed)
	}
	if points[0].Duration != 2*time.Millisecond || points[1].Rows != 3 {
		t.Errorf("points = %+v", points)
	}

	// Only successful mutations are announced.
	msgs := pub.messages()
	wantTopics := []string{
		"http2sql/events/table_created",
		"http2sql/events/rows_inserted",
		"http2sql/events/statement_executed",
	}
	if len(msgs) != len(wantTopics) {
		t.Fatalf("published = %d messages, want %d: %+v", len(msgs), len(wantTopics), msgs)
	}
	for i, want := range wantTopics {
		if msgs[i].topic != want {
			t.Errorf("message %d topic = %q, want %q", i, msgs[i].topic, want)
		}
	}
	if msgs[0].msg.Table != "widgets" || msgs[0].msg.DurationMS != 2 {
		t.Errorf("first message = %+v", msgs[0].msg)
	}
	if msgs[2].msg.Intent != "update" {
		t.Errorf("statement message intent = %q, want update", msgs[2].msg.Intent)
	}
}

func TestRecorder_PublishFailureIsSwallowed(t *testing.T) {
	pub := &fakePublisher{fail: errors.New("broker down")}
	met := &fakeMetrics{}
	rec := NewRecorder(nil, WithPublisher(pub), WithMetrics(met))
	rec.Start(context.Background())

	rec.Observe(context.Background(), testEvents[0])
	rec.Close() //nolint:errcheck // Close never fails

	if got := len(met.points()); got != 1 {
		t.Errorf("metric points = %d, want 1 despite publish failure", got)
	}
}

func TestRecorder_NoSinks(t *testing.T) {
	rec := NewRecorder(nil)
	rec.Start(context.Background())
	rec.Observe(context.Background(), testEvents[0])
	if err := rec.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestRecorder_QueueFullDrops(t *testing.T) {
	met := &fakeMetrics{}
	rec := NewRecorder(nil, WithMetrics(met), WithQueueSize(2))

	// Not started: the queue fills and the third event is dropped.
	for i := 0; i < 3; i++ {
		rec.Observe(context.Background(), testEvents[1])
	}
	rec.Close() //nolint:errcheck // Close never fails

	if got := len(met.points()); got != 2 {
		t.Errorf("metric points = %d, want 2", got)
	}
}

func TestRecorder_ObserveAfterClose(t *testing.T) {
	met := &fakeMetrics{}
	rec := NewRecorder(nil, WithMetrics(met))
	rec.Start(context.Background())
	rec.Close() //nolint:errcheck // Close never fails

	rec.Observe(context.Background(), testEvents[0])
	if err := rec.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if got := len(met.points()); got != 0 {
		t.Errorf("metric points = %d, want 0", got)
	}
}

func TestRecorder_ConcurrentObserve(t *testing.T) {
	met := &fakeMetrics{}
	rec := NewRecorder(nil, WithMetrics(met), WithQueueSize(1000))
	rec.Start(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				rec.Observe(context.Background(), testEvents[1])
			}
		}()
	}
	wg.Wait()
	rec.Close() //nolint:errcheck // Close never fails

	if got := len(met.points()); got != 500 {
		t.Errorf("metric points = %d, want 500", got)
	}
}

func TestMessage_JSON(t *testing.T) {
	at := time.Date(2025, 1, 14, 9, 30, 0, 0, time.UTC)
	data, err := json.Marshal(newMessage(gateway.Event{
		Kind:     gateway.EventRowsInserted,
		Table:    "widgets",
		Rows:     2,
		Duration: 1500 * time.Microsecond,
		At:       at,
	}))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"kind":"rows_inserted","table":"widgets","rows":2,"duration_ms":1.5,"at":"2025-01-14T09:30:00Z"}`
	if string(data) != want {
		t.Errorf("message = %s, want %s", data, want)
	}
}

// Recorder must satisfy the gateway's observer contract.
var _ gateway.Observer = (*Recorder)(nil)
