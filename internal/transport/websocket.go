package transport

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/websocket"

	"github.com/mesh-intelligence/frontdesk/pkg/types"
)

// Reconnect delays.
const (
	DefaultInitialInterval = 500 * time.Millisecond
	DefaultMaxInterval     = 30 * time.Second
)

// Client is the websocket feed. Each connection sends the handshake once
// and then reads text frames until the connection fails, after which the
// client reconnects with exponential backoff.
type Client struct {
	url       string
	origin    string
	handshake string
	initial   time.Duration
	maxWait   time.Duration
	log       logrus.FieldLogger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithOrigin sets the Origin header sent when dialing.
func WithOrigin(origin string) ClientOption {
	return func(c *Client) {
		if origin != "" {
			c.origin = origin
		}
	}
}

// WithHandshakeContent sets the content of the handshake message.
func WithHandshakeContent(content string) ClientOption {
	return func(c *Client) {
		if content != "" {
			c.handshake = content
		}
	}
}

// WithBackoff sets the first and the largest reconnect delay.
func WithBackoff(initial, maxWait time.Duration) ClientOption {
	return func(c *Client) {
		if initial > 0 {
			c.initial = initial
		}
		if maxWait > 0 {
			c.maxWait = maxWait
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(log logrus.FieldLogger) ClientOption {
	return func(c *Client) { c.log = log }
}

// NewClient creates a client for the websocket server at url.
func NewClient(url string, opts ...ClientOption) *Client {
	c := &Client{
		url:       url,
		origin:    types.DefaultOrigin,
		handshake: types.DefaultHandshakeContent,
		initial:   DefaultInitialInterval,
		maxWait:   DefaultMaxInterval,
		log:       logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run connects and delivers messages to h until ctx is done. It always
// returns nil once ctx is done; connection failures are retried.
func (c *Client) Run(ctx context.Context, h Handler) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initial
	b.MaxInterval = c.maxWait

	for {
		log := c.log.WithField("conn_id", newConnID())
		connected, err := c.serve(ctx, h, log)
		if ctx.Err() != nil {
			return nil
		}
		if connected {
			h.HandleDisconnect(ctx)
			b.Reset()
		}

		wait := b.NextBackOff()
		log.WithError(err).WithField("retry_in", wait).Warn("websocket connection failed")
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}
	}
}

// serve runs one connection. connected reports whether the handshake was
// sent, so the caller knows the mirror may have diverged.
func (c *Client) serve(ctx context.Context, h Handler, log logrus.FieldLogger) (connected bool, err error) {
	cfg, err := websocket.NewConfig(c.url, c.origin)
	if err != nil {
		return false, fmt.Errorf("websocket config: %w", err)
	}
	conn, err := cfg.DialContext(ctx)
	if err != nil {
		return false, fmt.Errorf("dialing %s: %w", c.url, err)
	}
	defer func() {
		_ = conn.Close()
	}()
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if err := websocket.JSON.Send(conn, types.NewHandshake(c.handshake)); err != nil {
		return false, fmt.Errorf("sending handshake: %w", err)
	}
	log.WithField("url", c.url).Info("websocket connected")

	for {
		var raw []byte
		if err := websocket.Message.Receive(conn, &raw); err != nil {
			return true, fmt.Errorf("receiving: %w", err)
		}
		if err := h.HandleMessage(ctx, raw); err != nil {
			return true, fmt.Errorf("handling message: %w", err)
		}
	}
}

func newConnID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
