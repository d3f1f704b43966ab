package frontdesk

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"github.com/mesh-intelligence/frontdesk/internal/nav"
	"github.com/mesh-intelligence/frontdesk/internal/transport"
	"github.com/mesh-intelligence/frontdesk/pkg/types"
)

// TestSessionOverWebSocket drives a session from a websocket backend the
// way the render loop does: the transport queues, Poll drains.
func TestSessionOverWebSocket(t *testing.T) {
	handshakes := make(chan types.Handshake, 1)
	frames := [][]byte{
		[]byte(`garbage`),
		initialize(t),
		relabel(t, 1, "Knee Replacement"),
	}
	srv := httptest.NewServer(websocket.Handler(func(conn *websocket.Conn) {
		defer conn.Close()
		var hs types.Handshake
		if err := websocket.JSON.Receive(conn, &hs); err != nil {
			return
		}
		handshakes <- hs
		for _, f := range frames {
			if err := websocket.Message.Send(conn, string(f)); err != nil {
				return
			}
		}
		var discard string
		_ = websocket.Message.Receive(conn, &discard)
	}))
	t.Cleanup(srv.Close)

	s, _ := newSession(t)
	require.NoError(t, s.Open(nav.PanelPreOperative))

	client := transport.NewClient("ws"+strings.TrimPrefix(srv.URL, "http"),
		transport.WithHandshakeContent("hello"),
		transport.WithLogger(s.log),
	)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- client.Run(ctx, s) }()

	select {
	case hs := <-handshakes:
		assert.Equal(t, types.NewHandshake("hello"), hs)
	case <-time.After(5 * time.Second):
		t.Fatal("no handshake")
	}

	processed := 0
	deadline := time.Now().Add(5 * time.Second)
	for processed < len(frames) && time.Now().Before(deadline) {
		if s.Poll() {
			processed++
			continue
		}
		time.Sleep(5 * time.Millisecond)
	}
	require.Equal(t, len(frames), processed)

	cancel()
	require.NoError(t, <-done)

	v, err := s.Visible(nav.PanelPreOperative)
	require.NoError(t, err)
	rows := defaultRows(t, v)
	require.Len(t, rows, 1)
	assert.Equal(t, "Knee Replacement", rows[0].OpLabel)
	assert.Equal(t, "Ann Lee", rows[0].PatientFullName)
	assert.Equal(t, 50.0, rows[0].OnSitePercentage)
}
