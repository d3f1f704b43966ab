// Package transport delivers backend envelopes to a Handler. Two feeds
// exist: a websocket client that talks to the backend directly and a NATS
// subscriber for deployments that fan the same envelopes out over a bus.
package transport

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/frontdesk/pkg/types"
)

// Handler receives inbound traffic. Messages arrive in connection order.
type Handler interface {
	// HandleMessage is called once per inbound envelope. An error stops the
	// current connection.
	HandleMessage(ctx context.Context, raw []byte) error

	// HandleDisconnect is called when an established connection is lost.
	// A fresh initialize follows once the feed reconnects.
	HandleDisconnect(ctx context.Context)
}

// Feed runs until ctx is done, delivering envelopes to h.
type Feed interface {
	Run(ctx context.Context, h Handler) error
}

// New builds the feed selected by cfg.Feed.
func New(cfg types.Config, log logrus.FieldLogger) (Feed, error) {
	seconds := cfg.ReconnectMaxInterval
	if seconds <= 0 {
		seconds = types.DefaultReconnectMaxInterval
	}
	maxInterval := time.Duration(seconds) * time.Second
	switch cfg.Feed {
	case "", types.FeedWebSocket:
		return NewClient(cfg.ServerURL,
			WithOrigin(cfg.Origin),
			WithHandshakeContent(cfg.HandshakeContent),
			WithBackoff(DefaultInitialInterval, maxInterval),
			WithLogger(log),
		), nil
	case types.FeedNATS:
		return NewNATSFeed(cfg.NATSURL, cfg.NATSSubject,
			WithNATSHandshakeContent(cfg.HandshakeContent),
			WithNATSLogger(log),
		), nil
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrFeedUnknown, cfg.Feed)
	}
}
