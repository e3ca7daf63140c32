// Package hub keeps the set of connected push clients. A single goroutine owns the
// registry; every other goroutine talks to it over channels.
package hub

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"cafeteria-system/internal/common/logger"
	"cafeteria-system/internal/common/metrics"
)

const (
	MetricPushFailures = "push_failures_total"
	MetricConnected    = "connected_clients"
)

var ErrStopped = errors.New("hub stopped")

type Client interface {
	ID() string
	Send(ctx context.Context, payload []byte) error
	Close() error
}

type BroadcastResult struct {
	Delivered int
	Failed    int
}

type registration struct {
	c    Client
	done chan struct{}
}

type Hub struct {
	register   chan registration
	unregister chan string
	snapshot   chan chan []Client

	sendTimeout time.Duration
	metrics     *metrics.Registry
	lg          *logger.Logger

	stopped  chan struct{}
	stopOnce sync.Once
}

func New(sendTimeout time.Duration, m *metrics.Registry, lg *logger.Logger) *Hub {
	if sendTimeout <= 0 {
		sendTimeout = 5 * time.Second
	}
	return &Hub{
		register:    make(chan registration),
		unregister:  make(chan string),
		snapshot:    make(chan chan []Client),
		sendTimeout: sendTimeout,
		metrics:     m,
		lg:          lg,
		stopped:     make(chan struct{}),
	}
}

// Run owns the registry until ctx is done, then closes every remaining client.
func (h *Hub) Run(ctx context.Context) error {
	clients := make(map[string]Client)
	defer func() {
		h.stopOnce.Do(func() { close(h.stopped) })
		for id, c := range clients {
			_ = c.Close()
			delete(clients, id)
		}
		h.metrics.Set(MetricConnected, 0)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case r := <-h.register:
			clients[r.c.ID()] = r.c
			h.metrics.Set(MetricConnected, int64(len(clients)))
			close(r.done)
		case id := <-h.unregister:
			if c, ok := clients[id]; ok {
				delete(clients, id)
				_ = c.Close()
				h.metrics.Set(MetricConnected, int64(len(clients)))
			}
		case reply := <-h.snapshot:
			list := make([]Client, 0, len(clients))
			for _, c := range clients {
				list = append(list, c)
			}
			reply <- list
		}
	}
}

// Register returns once c is visible to broadcasts.
func (h *Hub) Register(ctx context.Context, c Client) error {
	r := registration{c: c, done: make(chan struct{})}
	select {
	case h.register <- r:
	case <-h.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	<-r.done
	return nil
}

// Unregister removes and closes the client. Unknown ids are ignored.
func (h *Hub) Unregister(id string) {
	select {
	case h.unregister <- id:
	case <-h.stopped:
	}
}

// Broadcast sends payload to every client concurrently. Clients whose send fails or
// times out are dropped; that never fails the broadcast itself.
func (h *Hub) Broadcast(ctx context.Context, payload []byte) (BroadcastResult, error) {
	reply := make(chan []Client, 1)
	select {
	case h.snapshot <- reply:
	case <-h.stopped:
		return BroadcastResult{}, ErrStopped
	case <-ctx.Done():
		return BroadcastResult{}, ctx.Err()
	}
	clients := <-reply

	failed := make([]bool, len(clients))
	var g errgroup.Group
	for i, c := range clients {
		g.Go(func() error {
			sctx, cancel := context.WithTimeout(ctx, h.sendTimeout)
			defer cancel()
			if err := c.Send(sctx, payload); err != nil {
				failed[i] = true
				h.lg.Warn("push_failed", err, map[string]any{"client_id": c.ID()})
			}
			return nil
		})
	}
	_ = g.Wait()

	var res BroadcastResult
	for i, c := range clients {
		if !failed[i] {
			res.Delivered++
			continue
		}
		res.Failed++
		h.metrics.Inc(MetricPushFailures)
		h.Unregister(c.ID())
	}
	return res, nil
}
