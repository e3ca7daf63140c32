package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"cafeteria-system/internal/common/chaos"
	"cafeteria-system/internal/common/logger"
	"cafeteria-system/internal/common/metrics"
	"cafeteria-system/internal/domain"
)

type order struct {
	status domain.Status
	eta    int
}

type fakeRepo struct {
	orders map[string]*order
	err    error
	calls  int
}

func (r *fakeRepo) AdvanceStatus(_ context.Context, id string, from, to domain.Status, eta int) (bool, error) {
	r.calls++
	if r.err != nil {
		return false, r.err
	}
	o, ok := r.orders[id]
	if !ok || o.status != from {
		return false, nil
	}
	o.status, o.eta = to, eta
	return true, nil
}

func (r *fakeRepo) Ping(context.Context) error { return nil }

type fakePublisher struct {
	events []domain.StatusEvent
	err    error
}

func (p *fakePublisher) PublishJSON(_ context.Context, _ string, v any) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, v.(domain.StatusEvent))
	return nil
}

type fixture struct {
	svc   *KitchenService
	repo  *fakeRepo
	pub   *fakePublisher
	chaos *chaos.Controller
	m     *metrics.Registry
	slept []time.Duration
}

func newFixture() *fixture {
	f := &fixture{
		repo: &fakeRepo{orders: map[string]*order{"o1": {status: domain.StatusQueued, eta: 12}}},
		pub:  &fakePublisher{},
		m:    metrics.New(),
	}
	sleep := func(_ context.Context, d time.Duration) error {
		f.slept = append(f.slept, d)
		return nil
	}
	f.chaos = chaos.New(2*time.Second, chaos.WithSleep(sleep))
	f.svc = NewKitchenService(f.repo, f.pub, Options{InProgressETA: 7, PrepMin: 3 * time.Second, PrepMax: 7 * time.Second},
		f.chaos, f.m, logger.NewWithWriter("kitchen-worker", io.Discard))
	f.svc.sleep = sleep
	f.svc.prepTime = func() time.Duration { return 5 * time.Second }
	return f
}

func job(t *testing.T, id string) []byte {
	t.Helper()
	b, err := json.Marshal(domain.FulfillmentJob{OrderID: id, OwnerID: "s-1", Status: domain.StatusQueued, ETAMinutes: 12})
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestHandleJobAdvancesToReady(t *testing.T) {
	f := newFixture()

	if err := f.svc.HandleJob(context.Background(), job(t, "o1")); err != nil {
		t.Fatal(err)
	}
	if o := f.repo.orders["o1"]; o.status != domain.StatusReady || o.eta != 0 {
		t.Fatalf("order = %+v", o)
	}
	if len(f.pub.events) != 2 {
		t.Fatalf("events = %+v", f.pub.events)
	}
	first, second := f.pub.events[0], f.pub.events[1]
	if first.FromStatus != domain.StatusQueued || first.ToStatus != domain.StatusInProgress || first.ETAMinutes != 7 {
		t.Fatalf("first = %+v", first)
	}
	if second.ToStatus != domain.StatusReady || second.ETAMinutes != 0 || second.Event != domain.EventStatusChanged {
		t.Fatalf("second = %+v", second)
	}
	if len(f.slept) != 1 || f.slept[0] != 5*time.Second {
		t.Fatalf("slept = %v", f.slept)
	}
	if f.m.Value(MetricProcessed) != 1 || f.m.Value(MetricFailures) != 0 {
		t.Fatalf("metrics = %v", f.m.Snapshot())
	}
}

func TestRedeliveryPublishesNothing(t *testing.T) {
	f := newFixture()
	if err := f.svc.HandleJob(context.Background(), job(t, "o1")); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.HandleJob(context.Background(), job(t, "o1")); err != nil {
		t.Fatal(err)
	}
	if len(f.pub.events) != 2 || f.m.Value(MetricProcessed) != 1 {
		t.Fatalf("events=%d processed=%d", len(f.pub.events), f.m.Value(MetricProcessed))
	}
}

func TestUnknownOrderIsAckedSilently(t *testing.T) {
	f := newFixture()
	if err := f.svc.HandleJob(context.Background(), job(t, "ghost")); err != nil {
		t.Fatal(err)
	}
	if len(f.pub.events) != 0 {
		t.Fatalf("events = %+v", f.pub.events)
	}
}

func TestChaosDropsJob(t *testing.T) {
	for _, mode := range []string{"error", "timeout"} {
		f := newFixture()
		f.chaos.Set(true, mode)

		if err := f.svc.HandleJob(context.Background(), job(t, "o1")); err != nil {
			t.Fatalf("%s: chaos must ack, got %v", mode, err)
		}
		if f.repo.orders["o1"].status != domain.StatusQueued || len(f.pub.events) != 0 {
			t.Fatalf("%s: job was processed", mode)
		}
		if f.m.Value(MetricFailures) != 1 {
			t.Fatalf("%s: failures_total = %d", mode, f.m.Value(MetricFailures))
		}
		wantSleeps := 0
		if mode == "timeout" {
			wantSleeps = 1
		}
		if len(f.slept) != wantSleeps {
			t.Fatalf("%s: slept %v", mode, f.slept)
		}
	}
}

func TestHandleJobErrorsRequeue(t *testing.T) {
	f := newFixture()
	if err := f.svc.HandleJob(context.Background(), []byte(`{"order_id":`)); err == nil {
		t.Fatal("malformed body should requeue")
	}

	f.repo.err = errors.New("conn refused")
	if err := f.svc.HandleJob(context.Background(), job(t, "o1")); err == nil {
		t.Fatal("store failure should requeue")
	}

	f = newFixture()
	f.pub.err = errors.New("channel closed")
	if err := f.svc.HandleJob(context.Background(), job(t, "o1")); err == nil {
		t.Fatal("publish failure should requeue")
	}
}

func TestRedeliveryAfterPublishFailure(t *testing.T) {
	f := newFixture()
	f.pub.err = errors.New("channel closed")
	if err := f.svc.HandleJob(context.Background(), job(t, "o1")); err == nil {
		t.Fatal("publish failure should requeue")
	}
	if f.repo.orders["o1"].status != domain.StatusInProgress {
		t.Fatalf("status = %s", f.repo.orders["o1"].status)
	}

	f.pub.err = nil
	if err := f.svc.HandleJob(context.Background(), job(t, "o1")); err != nil {
		t.Fatal(err)
	}
	if len(f.pub.events) != 1 {
		t.Fatalf("events = %+v", f.pub.events)
	}
	if ev := f.pub.events[0]; ev.FromStatus != domain.StatusInProgress || ev.ToStatus != domain.StatusReady {
		t.Fatalf("event = %+v", ev)
	}
	if f.repo.orders["o1"].status != domain.StatusReady || f.m.Value(MetricProcessed) != 1 {
		t.Fatalf("status=%s processed=%d", f.repo.orders["o1"].status, f.m.Value(MetricProcessed))
	}
}

func TestIllegalTransitionRejected(t *testing.T) {
	f := newFixture()
	for _, c := range [][2]domain.Status{
		{domain.StatusQueued, domain.StatusReady},
		{domain.StatusReady, domain.StatusInProgress},
		{domain.StatusInProgress, domain.StatusQueued},
	} {
		changed, err := f.svc.advanceChanged(context.Background(), "o1", c[0], c[1], 0)
		if changed || !errors.Is(err, ErrIllegalTransition) {
			t.Fatalf("%s -> %s: changed=%v err=%v", c[0], c[1], changed, err)
		}
	}
	if f.repo.calls != 0 || len(f.pub.events) != 0 {
		t.Fatalf("store touched: calls=%d events=%d", f.repo.calls, len(f.pub.events))
	}
}

func TestMissingOrderIDCountsFailure(t *testing.T) {
	f := newFixture()
	if err := f.svc.HandleJob(context.Background(), []byte(`{"owner_id":"s-1"}`)); err != nil {
		t.Fatal(err)
	}
	if f.m.Value(MetricFailures) != 1 {
		t.Fatalf("failures_total = %d", f.m.Value(MetricFailures))
	}
}

func TestRandomPrepWithinBounds(t *testing.T) {
	ks := NewKitchenService(&fakeRepo{}, &fakePublisher{}, Options{PrepMin: 3 * time.Second, PrepMax: 7 * time.Second},
		chaos.New(0), metrics.New(), logger.NewWithWriter("kitchen-worker", io.Discard))
	for i := 0; i < 200; i++ {
		if d := ks.randomPrep(); d < 3*time.Second || d > 7*time.Second {
			t.Fatalf("prep %v out of range", d)
		}
	}
}
