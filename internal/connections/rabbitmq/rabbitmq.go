package rabbitmq

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"cafeteria-system/internal/common/mq"
)

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	VHost    string // default "/"
	UseTLS   bool   // amqps, from rabbitmq.tls
}

func (cfg Config) url() string {
	vhost := ""
	if cfg.VHost != "" && cfg.VHost != "/" {
		vhost = url.PathEscape(cfg.VHost)
	}
	scheme := "amqp"
	if cfg.UseTLS {
		scheme = "amqps"
	}
	return fmt.Sprintf("%s://%s:%s@%s:%d/%s", scheme, cfg.User, cfg.Password, cfg.Host, cfg.Port, vhost)
}

// Client owns one connection and one confirm-mode channel. Pulls and publishes are
// serialised by mu; a closed connection or channel is re-dialled on next use.
type Client struct {
	cfg  Config
	conn *amqp.Connection
	ch   *amqp.Channel

	acks <-chan amqp.Confirmation // publisher confirms
	mu   sync.Mutex
}

func Dial(cfg Config) (*Client, error) {
	c := &Client{cfg: cfg}
	if err := c.connect(); err != nil {
		return nil, err
	}
	return c, nil
}

// DialContext retries Dial until it succeeds, attempts run out or ctx is done.
func DialContext(ctx context.Context, cfg Config, attempts int, delay time.Duration) (*Client, error) {
	var err error
	for i := 1; i <= attempts; i++ {
		var c *Client
		if c, err = Dial(cfg); err == nil {
			return c, nil
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("rabbitmq dial canceled: %w", ctx.Err())
		}
	}
	return nil, fmt.Errorf("rabbitmq unreachable after %d attempts: %w", attempts, err)
}

func (c *Client) connect() error {
	var (
		conn *amqp.Connection
		err  error
	)
	if c.cfg.UseTLS {
		conn, err = amqp.DialTLS(c.cfg.url(), &tls.Config{MinVersion: tls.VersionTLS12})
	} else {
		conn, err = amqp.Dial(c.cfg.url())
	}
	if err != nil {
		return err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return err
	}

	// Включаем publisher confirms и подписываемся на подтверждения
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return err
	}
	c.conn, c.ch = conn, ch
	c.acks = ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	return mq.DeclareAll(ch)
}

// ensure must be called with mu held.
func (c *Client) ensure() error {
	if c.conn != nil && !c.conn.IsClosed() && c.ch != nil && !c.ch.IsClosed() {
		return nil
	}
	c.closeLocked()
	return c.connect()
}

func (c *Client) closeLocked() {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.ch, c.conn, c.acks = nil, nil, nil
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

// Лёгкая health-проверка соединения; пробует переподключиться
func (c *Client) Ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensure(); err != nil {
		return fmt.Errorf("rabbitmq connection is closed: %w", err)
	}
	return nil
}

// Publish публикует сообщение и ждёт ack/nack от брокера.
func (c *Client) Publish(ctx context.Context, exchange, key string,
	body []byte, headers amqp.Table, contentType string, persistent bool) error {

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensure(); err != nil {
		return err
	}

	mode := amqp.Transient
	if persistent {
		mode = amqp.Persistent
	}
	pub := amqp.Publishing{
		DeliveryMode: mode,
		ContentType:  contentType,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		Headers:      headers,
		Body:         body,
	}
	if cid, ok := headers["x-correlation-id"].(string); ok {
		pub.CorrelationId = cid
	}

	if err := c.ch.PublishWithContext(ctx, exchange, key, false, false, pub); err != nil {
		return err
	}

	// ждём publisher confirm или отмену контекста
	select {
	case conf, ok := <-c.acks:
		if !ok {
			return amqp.ErrClosed
		}
		if conf.Ack {
			return nil
		}
		return errors.New("publish NACK from broker")
	case <-ctx.Done():
		// the pending confirm would be read by the next Publish
		c.closeLocked()
		return ctx.Err()
	}
}

// Get performs basic.get without auto-ack.
func (c *Client) Get(queue string) (mq.Message, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensure(); err != nil {
		return nil, false, err
	}
	d, ok, err := c.ch.Get(queue, false)
	if err != nil || !ok {
		return nil, ok, err
	}
	return delivery{d}, true, nil
}

type delivery struct{ d amqp.Delivery }

func (m delivery) Body() []byte            { return m.d.Body }
func (m delivery) Ack() error              { return m.d.Ack(false) }
func (m delivery) Nack(requeue bool) error { return m.d.Nack(false, requeue) }
