package service

import (
	"context"
	"encoding/json"
	"fmt"

	"cafeteria-system/internal/common/apperr"
	"cafeteria-system/internal/common/chaos"
	"cafeteria-system/internal/common/logger"
	"cafeteria-system/internal/common/metrics"
	"cafeteria-system/internal/domain"
	"cafeteria-system/internal/microservices/notificator/hub"
)

const MetricEvents = "events_total"

type Broadcaster interface {
	Broadcast(ctx context.Context, payload []byte) (hub.BroadcastResult, error)
}

type NotificatorService struct {
	hub     Broadcaster
	chaos   *chaos.Controller
	metrics *metrics.Registry
	lg      *logger.Logger
}

func NewNotificatorService(b Broadcaster, c *chaos.Controller, m *metrics.Registry, lg *logger.Logger) *NotificatorService {
	return &NotificatorService{hub: b, chaos: c, metrics: m, lg: lg}
}

// HandleEvent pushes one order.status message to every client. Only an undecodable body
// or a stopped hub requeues the message; client failures never do.
func (ns *NotificatorService) HandleEvent(ctx context.Context, body []byte) error {
	var ev domain.StatusEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("decode status event: %w", err)
	}
	ns.metrics.Inc(MetricEvents)

	if err := ns.chaos.Inject(ctx); err != nil {
		if !apperr.IsKind(err, apperr.KindChaos) {
			return err
		}
		ns.lg.Warn("event_dropped_chaos", err, map[string]any{"order_id": ev.OrderID, "event_id": ev.EventID})
		return nil
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	res, err := ns.hub.Broadcast(ctx, payload)
	if err != nil {
		return err
	}
	ns.lg.Debug("event_broadcast", map[string]any{
		"order_id": ev.OrderID, "to_status": ev.ToStatus, "delivered": res.Delivered, "failed": res.Failed,
	})
	return nil
}
