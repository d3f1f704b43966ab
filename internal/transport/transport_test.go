package transport

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"github.com/mesh-intelligence/frontdesk/pkg/types"
)

// recorder is a Handler that collects what it is given.
type recorder struct {
	mu          sync.Mutex
	messages    []string
	disconnects int
	received    chan struct{}
	failWith    error
}

func newRecorder() *recorder {
	return &recorder{received: make(chan struct{}, 16)}
}

func (r *recorder) HandleMessage(_ context.Context, raw []byte) error {
	r.mu.Lock()
	r.messages = append(r.messages, string(raw))
	err := r.failWith
	r.mu.Unlock()
	r.received <- struct{}{}
	return err
}

func (r *recorder) HandleDisconnect(context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disconnects++
}

func (r *recorder) snapshot() ([]string, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...), r.disconnects
}

func (r *recorder) wait(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-r.received:
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for message %d", i+1)
		}
	}
}

func quietLogger() logrus.FieldLogger {
	log, _ := test.NewNullLogger()
	return log
}

// backend serves one scripted batch of frames per connection, then hangs
// up. Handshakes are recorded.
type backend struct {
	mu         sync.Mutex
	handshakes []types.Handshake
	batches    [][]string
	conns      int
}

func (b *backend) handler() websocket.Handler {
	return func(conn *websocket.Conn) {
		defer conn.Close()
		var hs types.Handshake
		if err := websocket.JSON.Receive(conn, &hs); err != nil {
			return
		}
		b.mu.Lock()
		b.handshakes = append(b.handshakes, hs)
		var frames []string
		if b.conns < len(b.batches) {
			frames = b.batches[b.conns]
		}
		b.conns++
		last := b.conns > len(b.batches)
		b.mu.Unlock()

		for _, f := range frames {
			if err := websocket.Message.Send(conn, f); err != nil {
				return
			}
		}
		if last {
			// Hold the final connection open until the client goes away.
			var discard string
			_ = websocket.Message.Receive(conn, &discard)
		}
	}
}

func startBackend(t *testing.T, batches ...[]string) (*backend, string) {
	t.Helper()
	b := &backend{batches: batches}
	srv := httptest.NewServer(b.handler())
	t.Cleanup(srv.Close)
	return b, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestClientDeliversMessagesAndReconnects(t *testing.T) {
	b, url := startBackend(t, []string{"one", "two"}, []string{"three"})
	rec := newRecorder()

	c := NewClient(url,
		WithOrigin("http://localhost/"),
		WithHandshakeContent("hello"),
		WithBackoff(10*time.Millisecond, 20*time.Millisecond),
		WithLogger(quietLogger()),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, rec) }()

	rec.wait(t, 3)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	msgs, disconnects := rec.snapshot()
	assert.Equal(t, []string{"one", "two", "three"}, msgs)
	assert.GreaterOrEqual(t, disconnects, 1, "server hang-up is reported")

	b.mu.Lock()
	defer b.mu.Unlock()
	require.GreaterOrEqual(t, len(b.handshakes), 2)
	for _, hs := range b.handshakes {
		assert.Equal(t, types.NewHandshake("hello"), hs)
	}
}

func TestClientRetriesUnreachableServer(t *testing.T) {
	rec := newRecorder()
	c := NewClient("ws://127.0.0.1:1",
		WithBackoff(5*time.Millisecond, 10*time.Millisecond),
		WithLogger(quietLogger()),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	require.NoError(t, c.Run(ctx, rec))

	msgs, disconnects := rec.snapshot()
	assert.Empty(t, msgs)
	assert.Zero(t, disconnects, "no connection was ever established")
}

func TestClientHandlerErrorDropsConnection(t *testing.T) {
	_, url := startBackend(t, []string{"one", "two"}, []string{"three"})
	rec := newRecorder()
	rec.failWith = errors.New("inbox closed")

	c := NewClient(url,
		WithBackoff(5*time.Millisecond, 10*time.Millisecond),
		WithLogger(quietLogger()),
	)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, rec) }()

	// "two" is never delivered: the first failing message ends connection one.
	rec.wait(t, 2)
	cancel()
	require.NoError(t, <-done)

	msgs, _ := rec.snapshot()
	assert.Equal(t, []string{"one", "three"}, msgs)
}

func TestConsume(t *testing.T) {
	rec := newRecorder()
	msgs := make(chan *nats.Msg, 3)
	msgs <- &nats.Msg{Subject: "frontdesk.sync", Data: []byte("a")}
	msgs <- &nats.Msg{Subject: "frontdesk.sync", Data: []byte("b")}
	close(msgs)

	require.NoError(t, consume(context.Background(), msgs, rec))
	got, _ := rec.snapshot()
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestConsumeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, consume(ctx, make(chan *nats.Msg), newRecorder()))
}

func TestConsumeHandlerError(t *testing.T) {
	rec := newRecorder()
	rec.failWith = errors.New("boom")
	msgs := make(chan *nats.Msg, 1)
	msgs <- &nats.Msg{Data: []byte("a")}

	err := consume(context.Background(), msgs, rec)
	assert.ErrorIs(t, err, rec.failWith)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     types.Config
		want    any
		wantErr error
	}{
		{name: "default is websocket", cfg: types.Config{ServerURL: types.DefaultServerURL}, want: &Client{}},
		{name: "websocket", cfg: types.Config{Feed: types.FeedWebSocket, ServerURL: types.DefaultServerURL}, want: &Client{}},
		{name: "nats", cfg: types.Config{Feed: types.FeedNATS, NATSURL: nats.DefaultURL, NATSSubject: "s"}, want: &NATSFeed{}},
		{name: "unknown", cfg: types.Config{Feed: "carrier-pigeon"}, wantErr: types.ErrFeedUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feed, err := New(tt.cfg, quietLogger())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, feed)
		})
	}
}

func TestNewReconnectInterval(t *testing.T) {
	tests := []struct {
		name    string
		seconds int
		want    time.Duration
	}{
		{"zero means the default", 0, time.Duration(types.DefaultReconnectMaxInterval) * time.Second},
		{"explicit", 5, 5 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feed, err := New(types.Config{ServerURL: types.DefaultServerURL, ReconnectMaxInterval: tt.seconds}, quietLogger())
			require.NoError(t, err)
			c, ok := feed.(*Client)
			require.True(t, ok)
			assert.Equal(t, tt.want, c.maxWait)
		})
	}
}

func TestNATSHandshakeSubject(t *testing.T) {
	f := NewNATSFeed(nats.DefaultURL, "frontdesk.sync")
	assert.Equal(t, "frontdesk.sync.handshake", f.HandshakeSubject())
}
