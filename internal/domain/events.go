package domain

import (
	"time"

	"github.com/google/uuid"
)

const EventStatusChanged = "order.status.changed"

// FulfillmentJob is published to kitchen.jobs once per created order.
type FulfillmentJob struct {
	OrderID    string `json:"order_id"`
	OwnerID    string `json:"owner_id"`
	Status     Status `json:"status"`
	ETAMinutes int    `json:"eta_minutes"`
}

// StatusEvent is published to order.status after a guarded transition succeeds.
type StatusEvent struct {
	Event      string    `json:"event"`
	EventID    string    `json:"event_id"`
	OccurredAt time.Time `json:"occurred_at"`
	OrderID    string    `json:"order_id"`
	FromStatus Status    `json:"from_status"`
	ToStatus   Status    `json:"to_status"`
	ETAMinutes int       `json:"eta_minutes"`
}

func NewStatusEvent(orderID string, from, to Status, eta int, at time.Time) StatusEvent {
	return StatusEvent{
		Event:      EventStatusChanged,
		EventID:    uuid.NewString(),
		OccurredAt: at.UTC(),
		OrderID:    orderID,
		FromStatus: from,
		ToStatus:   to,
		ETAMinutes: eta,
	}
}
