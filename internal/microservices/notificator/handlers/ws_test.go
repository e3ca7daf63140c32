package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"cafeteria-system/internal/common/apperr"
	"cafeteria-system/internal/common/logger"
	"cafeteria-system/internal/common/metrics"
	"cafeteria-system/internal/microservices/notificator/hub"
)

type fakeResolver map[string]string

func (f fakeResolver) Resolve(_ context.Context, token string) (string, error) {
	if owner, ok := f[token]; ok {
		return owner, nil
	}
	return "", apperr.Unauthorized("invalid token")
}

func newServer(t *testing.T) (*httptest.Server, *hub.Hub, *metrics.Registry) {
	t.Helper()
	lg := logger.NewWithWriter("notification-hub", io.Discard)
	m := metrics.New()
	h := hub.New(time.Second, m, lg)
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = h.Run(ctx) }()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", New(h, fakeResolver{"tok-1": "s-1"}, lg).WSHandler.Connect)
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return srv, h, m
}

func wsURL(srv *httptest.Server, token string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
}

func TestUnauthorizedHandshakeRejected(t *testing.T) {
	srv, _, m := newServer(t)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "bad"), nil)
	if !errors.Is(err, websocket.ErrBadHandshake) {
		t.Fatalf("err = %v", err)
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("resp = %+v", resp)
	}
	if n := m.Value(hub.MetricConnected); n != 0 {
		t.Fatalf("rejected client registered, connected = %d", n)
	}
}

func TestConnectedClientReceivesBroadcast(t *testing.T) {
	srv, h, m := newServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "tok-1"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	// registration completes before Connect returns, but the dial can win that race
	deadline := time.Now().Add(time.Second)
	for {
		if m.Value(hub.MetricConnected) == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	res, err := h.Broadcast(context.Background(), []byte(`{"order_id":"o1"}`))
	if err != nil || res.Delivered != 1 {
		t.Fatalf("res=%+v err=%v", res, err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil || string(msg) != `{"order_id":"o1"}` {
		t.Fatalf("msg=%s err=%v", msg, err)
	}

	conn.Close()
	deadline = time.Now().Add(time.Second)
	for {
		if m.Value(hub.MetricConnected) == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("disconnected client still registered")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
