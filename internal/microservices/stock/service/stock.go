package service

import (
	"context"
	"strings"
	"time"

	"cafeteria-system/internal/common/apperr"
	"cafeteria-system/internal/common/chaos"
	"cafeteria-system/internal/common/logger"
	"cafeteria-system/internal/common/metrics"
	"cafeteria-system/internal/domain"
	"cafeteria-system/internal/microservices/stock/repository"
)

const (
	MetricReserveTotal  = "reserve_total"
	MetricReserveFailed = "reserve_failed_total"
)

type StockServiceInterface interface {
	Reserve(ctx context.Context, req domain.ReserveRequest) (domain.ReserveResponse, error)
	Release(ctx context.Context, reservationID string) (domain.ReleaseResponse, error)
	GetStock(ctx context.Context, itemID string) (domain.StockView, error)
}

type StockService struct {
	items        repository.StockRepositoryInterface
	reservations repository.ReservationStore
	ttl          time.Duration

	chaos   *chaos.Controller
	metrics *metrics.Registry
	lg      *logger.Logger
}

func NewStockService(items repository.StockRepositoryInterface, reservations repository.ReservationStore,
	ttl time.Duration, c *chaos.Controller, m *metrics.Registry, lg *logger.Logger) *StockService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &StockService{items: items, reservations: reservations, ttl: ttl, chaos: c, metrics: m, lg: lg}
}

func (s *StockService) fail(err error) error {
	s.metrics.Inc(MetricReserveFailed)
	return err
}

// Reserve claims item for the reservation id. Re-reserving the same pair is a no-op success.
func (s *StockService) Reserve(ctx context.Context, req domain.ReserveRequest) (domain.ReserveResponse, error) {
	if err := s.chaos.Inject(ctx); err != nil {
		return domain.ReserveResponse{}, err
	}
	s.metrics.Inc(MetricReserveTotal)

	req.OrderID = strings.TrimSpace(req.OrderID)
	req.ItemID = strings.TrimSpace(req.ItemID)
	if req.OrderID == "" || req.ItemID == "" {
		return domain.ReserveResponse{}, s.fail(apperr.Unprocessable("order_id and item_id are required"))
	}
	if req.Qty <= 0 {
		return domain.ReserveResponse{}, s.fail(apperr.Unprocessable("qty must be positive"))
	}

	existing, ok, err := s.reservations.Get(ctx, req.OrderID)
	if err != nil {
		return domain.ReserveResponse{}, s.fail(apperr.Upstream("reservation store unavailable", err))
	}
	if ok {
		if existing == req.ItemID {
			return domain.ReserveResponse{Reserved: true, AlreadyReserved: true, OrderID: req.OrderID, ItemID: req.ItemID}, nil
		}
		return domain.ReserveResponse{}, s.fail(apperr.Conflict("order already reserved for another item"))
	}

	flipped, err := s.items.MarkUnavailable(ctx, req.ItemID)
	if err != nil {
		return domain.ReserveResponse{}, s.fail(apperr.Upstream("menu store unavailable", err))
	}
	if !flipped {
		_, found, err := s.items.GetItem(ctx, req.ItemID)
		switch {
		case err != nil:
			return domain.ReserveResponse{}, s.fail(apperr.Upstream("menu store unavailable", err))
		case !found:
			return domain.ReserveResponse{}, s.fail(apperr.NotFound("item not found"))
		default:
			return domain.ReserveResponse{}, s.fail(apperr.Conflict("item unavailable"))
		}
	}

	// Known race: a crash between the flip above and this write leaves the item
	// unavailable with no record to release it by.
	if err := s.reservations.Put(ctx, req.OrderID, req.ItemID, s.ttl); err != nil {
		s.lg.Error("reservation_record_lost", err, map[string]any{"order_id": req.OrderID, "item_id": req.ItemID})
		return domain.ReserveResponse{}, s.fail(apperr.Upstream("reservation store unavailable", err))
	}

	s.lg.Debug("item_reserved", map[string]any{"order_id": req.OrderID, "item_id": req.ItemID})
	return domain.ReserveResponse{Reserved: true, OrderID: req.OrderID, ItemID: req.ItemID}, nil
}

func (s *StockService) Release(ctx context.Context, reservationID string) (domain.ReleaseResponse, error) {
	if err := s.chaos.Inject(ctx); err != nil {
		return domain.ReleaseResponse{}, err
	}
	reservationID = strings.TrimSpace(reservationID)
	if reservationID == "" {
		return domain.ReleaseResponse{}, apperr.Unprocessable("order_id is required")
	}

	itemID, ok, err := s.reservations.Get(ctx, reservationID)
	if err != nil {
		return domain.ReleaseResponse{}, apperr.Upstream("reservation store unavailable", err)
	}
	if !ok {
		return domain.ReleaseResponse{}, apperr.NotFound("reservation not found")
	}
	if err := s.items.MarkAvailable(ctx, itemID); err != nil {
		return domain.ReleaseResponse{}, apperr.Upstream("menu store unavailable", err)
	}
	if err := s.reservations.Delete(ctx, reservationID); err != nil {
		return domain.ReleaseResponse{}, apperr.Upstream("reservation store unavailable", err)
	}

	s.lg.Info("reservation_released", map[string]any{"order_id": reservationID, "item_id": itemID})
	return domain.ReleaseResponse{Released: true, OrderID: reservationID, ItemID: itemID}, nil
}

func (s *StockService) GetStock(ctx context.Context, itemID string) (domain.StockView, error) {
	if err := s.chaos.Inject(ctx); err != nil {
		return domain.StockView{}, err
	}
	it, found, err := s.items.GetItem(ctx, itemID)
	if err != nil {
		return domain.StockView{}, apperr.Upstream("menu store unavailable", err)
	}
	if !found {
		return domain.StockView{}, apperr.NotFound("item not found")
	}
	return domain.StockView{ID: it.ID, Name: it.Name, Available: it.Available}, nil
}
