package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const reservationPrefix = "reserve:"

// ReservationStore keeps reservation id → item id with a TTL. Presence of a record is
// the idempotency guard for reserve.
type ReservationStore interface {
	Get(ctx context.Context, reservationID string) (itemID string, ok bool, err error)
	Put(ctx context.Context, reservationID, itemID string, ttl time.Duration) error
	Delete(ctx context.Context, reservationID string) error
	Ping(ctx context.Context) error
}

type RedisReservations struct {
	rdb *goredis.Client
}

func NewRedisReservations(rdb *goredis.Client) ReservationStore {
	return &RedisReservations{rdb: rdb}
}

func Key(reservationID string) string { return reservationPrefix + reservationID }

func (s *RedisReservations) Get(ctx context.Context, reservationID string) (string, bool, error) {
	v, err := s.rdb.Get(ctx, Key(reservationID)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get reservation %s: %w", reservationID, err)
	}
	return v, true, nil
}

// Put is SET key item EX ttl.
func (s *RedisReservations) Put(ctx context.Context, reservationID, itemID string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, Key(reservationID), itemID, ttl).Err(); err != nil {
		return fmt.Errorf("put reservation %s: %w", reservationID, err)
	}
	return nil
}

func (s *RedisReservations) Delete(ctx context.Context, reservationID string) error {
	if err := s.rdb.Del(ctx, Key(reservationID)).Err(); err != nil {
		return fmt.Errorf("delete reservation %s: %w", reservationID, err)
	}
	return nil
}

func (s *RedisReservations) Ping(ctx context.Context) error { return s.rdb.Ping(ctx).Err() }
