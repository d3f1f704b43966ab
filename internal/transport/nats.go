package transport

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/frontdesk/pkg/types"
)

// natsBuffer is the capacity of the subscription channel.
const natsBuffer = 256

// NATSFeed subscribes to a subject carrying backend envelopes. On every
// (re)connect it publishes the handshake to the subject's ".handshake"
// child so a bridge can answer with a fresh initialize.
type NATSFeed struct {
	url       string
	subject   string
	handshake string
	log       logrus.FieldLogger
}

// NATSOption configures a NATSFeed.
type NATSOption func(*NATSFeed)

// WithNATSHandshakeContent sets the content of the handshake message.
func WithNATSHandshakeContent(content string) NATSOption {
	return func(f *NATSFeed) {
		if content != "" {
			f.handshake = content
		}
	}
}

// WithNATSLogger sets the feed logger.
func WithNATSLogger(log logrus.FieldLogger) NATSOption {
	return func(f *NATSFeed) { f.log = log }
}

// NewNATSFeed creates a feed for subject on the NATS server at url.
func NewNATSFeed(url, subject string, opts ...NATSOption) *NATSFeed {
	f := &NATSFeed{
		url:       url,
		subject:   subject,
		handshake: types.DefaultHandshakeContent,
		log:       logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// HandshakeSubject is the subject the handshake is published on.
func (f *NATSFeed) HandshakeSubject() string { return f.subject + ".handshake" }

// Run connects, subscribes and delivers messages to h until ctx is done.
// Reconnects are left to the NATS client.
func (f *NATSFeed) Run(ctx context.Context, h Handler) error {
	handshake, err := json.Marshal(types.NewHandshake(f.handshake))
	if err != nil {
		return fmt.Errorf("encoding handshake: %w", err)
	}
	log := f.log.WithFields(logrus.Fields{"url": f.url, "subject": f.subject})

	nc, err := nats.Connect(f.url,
		nats.Name("frontdesk"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.WithError(err).Warn("nats disconnected")
			h.HandleDisconnect(ctx)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("nats reconnected")
			if err := nc.Publish(f.HandshakeSubject(), handshake); err != nil {
				log.WithError(err).Warn("publishing handshake")
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("connecting to nats %s: %w", f.url, err)
	}
	defer nc.Close()

	msgs := make(chan *nats.Msg, natsBuffer)
	sub, err := nc.ChanSubscribe(f.subject, msgs)
	if err != nil {
		return fmt.Errorf("subscribing to %s: %w", f.subject, err)
	}
	defer func() {
		_ = sub.Unsubscribe()
	}()

	if err := nc.Publish(f.HandshakeSubject(), handshake); err != nil {
		return fmt.Errorf("publishing handshake: %w", err)
	}
	log.Info("nats subscribed")

	return consume(ctx, msgs, h)
}

// consume forwards messages to h until ctx is done or msgs is closed.
func consume(ctx context.Context, msgs <-chan *nats.Msg, h Handler) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-msgs:
			if !ok {
				return nil
			}
			if err := h.HandleMessage(ctx, m.Data); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("handling message: %w", err)
			}
		}
	}
}
