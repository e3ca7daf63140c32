package handlers

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"cafeteria-system/internal/common/auth"
	"cafeteria-system/internal/common/httpx"
	"cafeteria-system/internal/common/logger"
	"cafeteria-system/internal/microservices/notificator/hub"
)

const (
	readLimit    = 4 << 10
	closeTimeout = time.Second
)

type Registry interface {
	Register(ctx context.Context, c hub.Client) error
	Unregister(id string)
}

type WSHandler struct {
	hub      Registry
	resolver auth.Resolver
	lg       *logger.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(r Registry, resolver auth.Resolver, lg *logger.Logger) *WSHandler {
	return &WSHandler{
		hub:      r,
		resolver: resolver,
		lg:       lg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Connect authenticates before the upgrade, so a rejected caller never gets a socket.
func (h *WSHandler) Connect(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		token = httpx.BearerToken(r)
	}
	owner, err := h.resolver.Resolve(r.Context(), token)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		h.lg.Warn("ws_upgrade_failed", err, nil)
		return
	}
	c := &wsClient{id: uuid.NewString(), conn: conn}
	if err := h.hub.Register(r.Context(), c); err != nil {
		_ = c.Close()
		return
	}
	h.lg.Info("client_connected", map[string]any{"client_id": c.id, "owner_id": owner})

	go h.readLoop(c)
}

// readLoop discards inbound frames; it exists to notice the peer going away.
func (h *WSHandler) readLoop(c *wsClient) {
	defer func() {
		h.hub.Unregister(c.id)
		h.lg.Info("client_disconnected", map[string]any{"client_id": c.id})
	}()
	c.conn.SetReadLimit(readLimit)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

type wsClient struct {
	id   string
	conn *websocket.Conn

	mu     sync.Mutex
	closed bool
}

func (c *wsClient) ID() string { return c.id }

func (c *wsClient) Send(ctx context.Context, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return websocket.ErrCloseSent
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(5 * time.Second)
	}
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

func (c *wsClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(closeTimeout))
	return c.conn.Close()
}
