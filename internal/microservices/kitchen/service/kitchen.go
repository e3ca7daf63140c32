package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"cafeteria-system/internal/common/apperr"
	"cafeteria-system/internal/common/chaos"
	"cafeteria-system/internal/common/logger"
	"cafeteria-system/internal/common/metrics"
	"cafeteria-system/internal/domain"
	"cafeteria-system/internal/microservices/kitchen/repository"
)

const (
	MetricProcessed = "orders_processed_total"
	MetricFailures  = "failures_total"
)

var ErrIllegalTransition = errors.New("illegal status transition")

type KitchenServiceInterface interface {
	HandleJob(ctx context.Context, body []byte) error
}

// EventPublisher is satisfied by *mq.QueuePublisher bound to order.status.
type EventPublisher interface {
	PublishJSON(ctx context.Context, correlationID string, v any) error
}

type Options struct {
	InProgressETA int
	PrepMin       time.Duration
	PrepMax       time.Duration
}

type KitchenService struct {
	db      repository.KitchenRepositoryInterface
	events  EventPublisher
	opts    Options
	chaos   *chaos.Controller
	metrics *metrics.Registry
	lg      *logger.Logger

	sleep    chaos.SleepFunc
	prepTime func() time.Duration
	now      func() time.Time
}

func NewKitchenService(db repository.KitchenRepositoryInterface, events EventPublisher, opts Options,
	c *chaos.Controller, m *metrics.Registry, lg *logger.Logger) *KitchenService {
	if opts.PrepMax < opts.PrepMin {
		opts.PrepMax = opts.PrepMin
	}
	ks := &KitchenService{
		db: db, events: events, opts: opts, chaos: c, metrics: m, lg: lg,
		sleep: chaos.Sleep,
		now:   func() time.Time { return time.Now().UTC() },
	}
	ks.prepTime = ks.randomPrep
	return ks
}

func (ks *KitchenService) randomPrep() time.Duration {
	span := ks.opts.PrepMax - ks.opts.PrepMin
	if span <= 0 {
		return ks.opts.PrepMin
	}
	return ks.opts.PrepMin + rand.N(span+1)
}

// HandleJob processes one kitchen.jobs message. A nil return acks it; any error requeues it.
func (ks *KitchenService) HandleJob(ctx context.Context, body []byte) error {
	var job domain.FulfillmentJob
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("decode kitchen job: %w", err)
	}
	job.OrderID = strings.TrimSpace(job.OrderID)
	if job.OrderID == "" {
		ks.metrics.Inc(MetricFailures)
		ks.lg.Warn("job_dropped", errors.New("missing order_id"), nil)
		return nil
	}

	if err := ks.chaos.Inject(ctx); err != nil {
		if !apperr.IsKind(err, apperr.KindChaos) {
			return err
		}
		// acked without a status change; the job is lost
		ks.metrics.Inc(MetricFailures)
		ks.lg.Warn("job_dropped_chaos", err, map[string]any{"order_id": job.OrderID})
		return nil
	}

	// 1) QUEUED -> IN_PROGRESS
	if err := ks.advance(ctx, job.OrderID, domain.StatusQueued, domain.StatusInProgress, ks.opts.InProgressETA); err != nil {
		return err
	}

	// 2) prep
	prep := ks.prepTime()
	ks.lg.Debug("prep_started", map[string]any{"order_id": job.OrderID, "prep_ms": prep.Milliseconds()})
	if err := ks.sleep(ctx, prep); err != nil {
		return err
	}

	// 3) IN_PROGRESS -> READY
	changed, err := ks.advanceChanged(ctx, job.OrderID, domain.StatusInProgress, domain.StatusReady, 0)
	if err != nil {
		return err
	}
	if changed {
		ks.metrics.Inc(MetricProcessed)
		ks.lg.Info("order_ready", map[string]any{"order_id": job.OrderID})
	}
	return nil
}

func (ks *KitchenService) advance(ctx context.Context, orderID string, from, to domain.Status, eta int) error {
	_, err := ks.advanceChanged(ctx, orderID, from, to, eta)
	return err
}

// advanceChanged applies the guarded transition and publishes a status event only when the row changed.
func (ks *KitchenService) advanceChanged(ctx context.Context, orderID string, from, to domain.Status, eta int) (bool, error) {
	if !domain.CanTransition(from, to) {
		return false, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}
	changed, err := ks.db.AdvanceStatus(ctx, orderID, from, to, eta)
	if err != nil {
		return false, apperr.Upstream("order store unavailable", err)
	}
	if !changed {
		ks.lg.Debug("transition_skipped", map[string]any{"order_id": orderID, "from": from, "to": to})
		return false, nil
	}

	ev := domain.NewStatusEvent(orderID, from, to, eta, ks.now())
	if err := ks.events.PublishJSON(ctx, orderID, ev); err != nil {
		// the row already moved, so a redelivery will not re-announce this step
		return true, apperr.Upstream("status event not published", err)
	}
	ks.lg.Info("status_changed", map[string]any{"order_id": orderID, "from": from, "to": to, "eta_minutes": eta})
	return true, nil
}
