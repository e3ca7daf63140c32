package mq

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"cafeteria-system/internal/common/logger"
)

type fakeMessage struct {
	body    []byte
	acked   bool
	nacked  bool
	requeue bool
}

func (m *fakeMessage) Body() []byte { return m.body }
func (m *fakeMessage) Ack() error   { m.acked = true; return nil }
func (m *fakeMessage) Nack(requeue bool) error {
	m.nacked, m.requeue = true, requeue
	return nil
}

type fakeGetter struct {
	mu    sync.Mutex
	queue []*fakeMessage
	err   error
	asked []string
}

func (g *fakeGetter) Get(queue string) (Message, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.asked = append(g.asked, queue)
	if g.err != nil {
		return nil, false, g.err
	}
	if len(g.queue) == 0 {
		return nil, false, nil
	}
	m := g.queue[0]
	g.queue = g.queue[1:]
	return m, true, nil
}

func quietLogger() *logger.Logger { return logger.NewWithWriter("test", io.Discard) }

func TestStepAcksOnSuccess(t *testing.T) {
	m := &fakeMessage{body: []byte(`{}`)}
	p := NewPuller(&fakeGetter{queue: []*fakeMessage{m}}, KitchenJobs, DefaultRetryPolicy(), 0, quietLogger())

	out, err := p.Step(context.Background(), func(context.Context, []byte) error { return nil })
	if err != nil || out != OutcomeAcked {
		t.Fatalf("out=%v err=%v", out, err)
	}
	if !m.acked || m.nacked {
		t.Fatalf("message = %+v", m)
	}
}

func TestStepRequeuesOnHandlerError(t *testing.T) {
	m := &fakeMessage{body: []byte(`{}`)}
	p := NewPuller(&fakeGetter{queue: []*fakeMessage{m}}, KitchenJobs, DefaultRetryPolicy(), 0, quietLogger())

	out, err := p.Step(context.Background(), func(context.Context, []byte) error { return errors.New("db down") })
	if err == nil || out != OutcomeRequeued {
		t.Fatalf("out=%v err=%v", out, err)
	}
	if m.acked || !m.nacked || !m.requeue {
		t.Fatalf("message = %+v", m)
	}
}

func TestStepEmptyAndPullFailure(t *testing.T) {
	g := &fakeGetter{}
	p := NewPuller(g, OrderStatus, DefaultRetryPolicy(), 0, quietLogger())
	noop := func(context.Context, []byte) error { return nil }

	if out, err := p.Step(context.Background(), noop); out != OutcomeEmpty || err != nil {
		t.Fatalf("empty: out=%v err=%v", out, err)
	}
	g.err = amqp.ErrClosed
	if out, err := p.Step(context.Background(), noop); out != OutcomePullFailed || !errors.Is(err, amqp.ErrClosed) {
		t.Fatalf("pull failure: out=%v err=%v", out, err)
	}
	if g.asked[0] != OrderStatus {
		t.Fatalf("pulled from %q", g.asked[0])
	}
}

func TestRunBacksOffAndRetriesForever(t *testing.T) {
	msgs := make([]*fakeMessage, 5)
	for i := range msgs {
		msgs[i] = &fakeMessage{body: []byte("x")}
	}
	g := &fakeGetter{queue: msgs}
	p := NewPuller(g, KitchenJobs, RetryPolicy{Interval: 10 * time.Millisecond, Backoff: 2, MaxInterval: 40 * time.Millisecond}, time.Millisecond, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	var waits []time.Duration
	p.sleep = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		if len(waits) == 5 {
			cancel()
			return context.Canceled
		}
		return nil
	}
	failures := 0
	p.OnFailure = func(error) { failures++ }

	if err := p.Run(ctx, func(context.Context, []byte) error { return errors.New("broker gone") }); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []time.Duration{10, 20, 40, 40, 40}
	for i, w := range want {
		if waits[i] != w*time.Millisecond {
			t.Fatalf("wait[%d] = %s, want %s", i, waits[i], w*time.Millisecond)
		}
	}
	if failures != 5 {
		t.Fatalf("failures = %d", failures)
	}
	for _, m := range msgs {
		if !m.requeue {
			t.Fatal("every failed message must be requeued")
		}
	}
}

func TestRetryPolicyFixedByDefault(t *testing.T) {
	p := DefaultRetryPolicy()
	for i := 1; i < 10; i++ {
		if p.Delay(i) != time.Second {
			t.Fatalf("Delay(%d) = %s", i, p.Delay(i))
		}
	}
}
