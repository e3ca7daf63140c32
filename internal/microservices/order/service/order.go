package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"cafeteria-system/internal/common/apperr"
	"cafeteria-system/internal/common/auth"
	"cafeteria-system/internal/common/logger"
	"cafeteria-system/internal/common/metrics"
	"cafeteria-system/internal/domain"
	dto "cafeteria-system/internal/microservices/order/domain/dto"
	"cafeteria-system/internal/microservices/order/repository"
)

const (
	MetricOrdersCreated = "orders_created_total"
	MetricOrdersFailed  = "orders_failed_total"
)

type OrderServiceInterface interface {
	CreateOrder(ctx context.Context, token string, req dto.CreateOrderRequest) (dto.CreateOrderResponse, error)
}

// JobPublisher is satisfied by *mq.QueuePublisher bound to kitchen.jobs.
type JobPublisher interface {
	PublishJSON(ctx context.Context, correlationID string, v any) error
}

type Options struct {
	QueuedETA      int
	ReserveTimeout time.Duration
	PublishTimeout time.Duration
}

type OrderService struct {
	db       repository.OrderRepositoryInterface
	stock    StockClient
	jobs     JobPublisher
	resolver auth.Resolver
	opts     Options
	metrics  *metrics.Registry
	lg       *logger.Logger
	now      func() time.Time
	newID    func() string
}

func NewOrderService(db repository.OrderRepositoryInterface, stock StockClient, jobs JobPublisher,
	resolver auth.Resolver, opts Options, m *metrics.Registry, lg *logger.Logger) *OrderService {
	if opts.ReserveTimeout <= 0 {
		opts.ReserveTimeout = 1500 * time.Millisecond
	}
	if opts.PublishTimeout <= 0 {
		opts.PublishTimeout = 5 * time.Second
	}
	return &OrderService{
		db: db, stock: stock, jobs: jobs, resolver: resolver, opts: opts, metrics: m, lg: lg,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// ReservationID scopes a reservation to one line of an order, so an order can hold one per item.
func ReservationID(orderID, itemID string) string { return orderID + ":" + itemID }

func (or *OrderService) CreateOrder(ctx context.Context, token string, req dto.CreateOrderRequest) (dto.CreateOrderResponse, error) {
	resp, err := or.createOrder(ctx, token, req)
	if err != nil {
		or.metrics.Inc(MetricOrdersFailed)
		return dto.CreateOrderResponse{}, err
	}
	or.metrics.Inc(MetricOrdersCreated)
	return resp, nil
}

func (or *OrderService) createOrder(ctx context.Context, token string, req dto.CreateOrderRequest) (dto.CreateOrderResponse, error) {
	// 1. Basic validation; a malformed payload is rejected before the token is looked at
	if len(req.Items) == 0 {
		return dto.CreateOrderResponse{}, apperr.Validation("at least one item is required")
	}
	for i, it := range req.Items {
		if strings.TrimSpace(it.ID) == "" {
			return dto.CreateOrderResponse{}, apperr.Validation(fmt.Sprintf("item %d: id is required", i))
		}
		if it.Qty <= 0 {
			return dto.CreateOrderResponse{}, apperr.Validation(fmt.Sprintf("invalid quantity for item %s", it.ID))
		}
	}
	items := dto.MergeItems(req.Items)

	// 2. Resolve the caller
	owner, err := or.resolver.Resolve(ctx, token)
	if err != nil {
		return dto.CreateOrderResponse{}, err
	}

	// 3. Prices come from the menu, never from the client
	menu, err := or.db.MenuItems(ctx, dto.ItemIDs(items))
	if err != nil {
		return dto.CreateOrderResponse{}, apperr.Upstream("order store unavailable", err)
	}
	lines := make([]domain.OrderLine, 0, len(items))
	for _, it := range items {
		m, ok := menu[it.ID]
		if !ok {
			return dto.CreateOrderResponse{}, apperr.Validation(fmt.Sprintf("unknown menu item %s", it.ID))
		}
		lines = append(lines, domain.OrderLine{ItemID: it.ID, Quantity: it.Qty, UnitPrice: m.Price})
	}

	// 4. Reserve every line. A failure leaves earlier reservations in place.
	orderID := or.newID()
	for _, l := range lines {
		if err := or.reserve(ctx, orderID, l); err != nil {
			or.lg.Warn("reservation_failed", err, map[string]any{"order_id": orderID, "item_id": l.ItemID})
			return dto.CreateOrderResponse{}, err
		}
	}

	// 5. Save order in database
	now := or.now()
	for i := range lines {
		lines[i].OrderID = orderID
	}
	order := domain.Order{
		ID:          orderID,
		OwnerID:     owner,
		Status:      domain.StatusQueued,
		ETAMinutes:  or.opts.QueuedETA,
		TotalAmount: domain.Total(lines),
		CreatedAt:   now,
		UpdatedAt:   now,
		Lines:       lines,
	}
	if err := or.db.CreateOrder(ctx, order); err != nil {
		return dto.CreateOrderResponse{}, apperr.Upstream("order store unavailable", err)
	}

	// 6. Hand off to the kitchen
	job := domain.FulfillmentJob{OrderID: orderID, OwnerID: owner, Status: order.Status, ETAMinutes: order.ETAMinutes}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), or.opts.PublishTimeout)
	defer cancel()
	if err := or.jobs.PublishJSON(pctx, orderID, job); err != nil {
		or.lg.Error("order_orphaned", err, map[string]any{"order_id": orderID})
		return dto.CreateOrderResponse{}, apperr.Upstream(
			fmt.Sprintf("order %s stored but could not be queued for the kitchen", orderID), err)
	}

	or.lg.Info("order_created", map[string]any{
		"order_id": orderID, "owner_id": owner, "items": len(lines), "total_amount": order.TotalAmount,
	})
	return dto.CreateOrderResponse{OrderID: orderID, Status: order.Status, ETAMinutes: order.ETAMinutes}, nil
}

// reserve is detached from the caller so a client disconnect cannot abort a half-sent reservation.
func (or *OrderService) reserve(ctx context.Context, orderID string, l domain.OrderLine) error {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), or.opts.ReserveTimeout)
	defer cancel()
	_, err := or.stock.Reserve(rctx, domain.ReserveRequest{
		OrderID: ReservationID(orderID, l.ItemID),
		ItemID:  l.ItemID,
		Qty:     l.Quantity,
	})
	if err == nil {
		return nil
	}
	if _, ok := apperr.As(err); ok {
		return err
	}
	return apperr.Upstream("stock service unavailable", err)
}
