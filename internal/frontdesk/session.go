// Package frontdesk is the facade the display layer and the transport talk
// to. A Session owns the mirror, the applier and the per-panel navigation
// stacks. Inbound messages either go straight through OnMessage or are
// queued by the transport and drained by the render loop through Poll.
package frontdesk

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/frontdesk/internal/metrics"
	"github.com/mesh-intelligence/frontdesk/internal/mirror"
	"github.com/mesh-intelligence/frontdesk/internal/nav"
	"github.com/mesh-intelligence/frontdesk/internal/syncer"
	"github.com/mesh-intelligence/frontdesk/internal/transport"
	"github.com/mesh-intelligence/frontdesk/internal/view"
)

// DefaultInboxSize is the number of inbound events the transport may queue
// ahead of the render loop.
const DefaultInboxSize = 64

// ErrNoView is returned by CurrentView when the panel has not been opened.
var ErrNoView = errors.New("panel has no view")

var _ transport.Handler = (*Session)(nil)

type event struct {
	raw        []byte
	disconnect bool
}

// Session wires the mirror to the panels.
type Session struct {
	store   *mirror.Store
	applier *syncer.Applier
	metrics *metrics.Metrics
	log     logrus.FieldLogger
	inbox   chan event

	mu      sync.Mutex // guards panels and builtAt
	panels  *nav.Registry
	builtAt uint64 // store generation the panel views were built from
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger. It is also handed to the store and
// the applier.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Session) { s.log = log }
}

// WithMetrics records sync and transport metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

// WithInboxSize sets the capacity of the queue drained by Poll.
func WithInboxSize(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.inbox = make(chan event, n)
		}
	}
}

// New creates a session with an empty mirror and every panel closed.
func New(opts ...Option) *Session {
	s := &Session{
		log:    logrus.StandardLogger(),
		inbox:  make(chan event, DefaultInboxSize),
		panels: nav.NewRegistry(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.store = mirror.NewStore(mirror.WithLogger(s.log))
	s.applier = syncer.New(s.store,
		syncer.WithLogger(s.log),
		syncer.WithMetrics(s.metrics),
	)
	return s
}

// Store returns the mirror. Callers read it; writes go through OnMessage.
func (s *Session) Store() *mirror.Store { return s.store }

// OnMessage applies one raw envelope. A malformed message is logged and
// dropped; it never reaches the views. Open panels are rebuilt against the
// new state. It reports whether the message was applied.
func (s *Session) OnMessage(raw []byte) bool {
	if _, err := s.applier.Apply(raw); err != nil {
		return false
	}
	s.Refresh()
	return true
}

// OnDisconnect records that the connection dropped. The mirror stays
// readable but is marked stale until the next initialize arrives.
func (s *Session) OnDisconnect() {
	s.store.MarkStale()
	s.metrics.Disconnected()
	s.log.Info("connection lost, awaiting fresh initialize")
}

// HandleMessage queues raw for the render loop. It blocks while the inbox
// is full, until ctx is done.
func (s *Session) HandleMessage(ctx context.Context, raw []byte) error {
	select {
	case s.inbox <- event{raw: raw}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// HandleDisconnect queues a disconnect notification for the render loop.
func (s *Session) HandleDisconnect(ctx context.Context) {
	select {
	case s.inbox <- event{disconnect: true}:
	case <-ctx.Done():
	}
}

// Poll processes at most one queued event without blocking. It reports
// whether an event was processed.
func (s *Session) Poll() bool {
	select {
	case ev := <-s.inbox:
		if ev.disconnect {
			s.OnDisconnect()
		} else {
			s.OnMessage(ev.raw)
		}
		return true
	default:
		return false
	}
}

// Refresh rebuilds every open panel against the current snapshot when the
// mirror changed since the panels were last built. The navigation path of
// each panel is kept.
func (s *Session) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()

	gen := s.store.Generation()
	if gen == s.builtAt {
		return
	}
	snap := s.store.Snapshot()
	s.panels.Each(func(p nav.Panel, st *nav.State) {
		if err := st.Stack.Rebuild(snap); err != nil {
			s.log.WithFields(logrus.Fields{"panel": p, "path": st.Stack.Path()}).WithError(err).Warn("rebuilding panel")
		}
	})
	s.builtAt = gen
}

// Open shows the panel and sets its root to a freshly built operation list,
// discarding any drill-down.
func (s *Session) Open(p nav.Panel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openLocked(p)
}

func (s *Session) openLocked(p nav.Panel) error {
	st, err := s.panels.Get(p)
	if err != nil {
		return err
	}
	q := view.DefaultQuery()
	v, err := view.Build(s.store.Snapshot(), q)
	if err != nil {
		return err
	}
	st.Shown = true
	st.Stack.SetRoot(nav.Node{Query: q, View: v})
	return nil
}

// Toggle flips the panel's visibility. Showing a panel opens it; hiding it
// drops its navigation path. It returns the new visibility.
func (s *Session) Toggle(p nav.Panel) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.panels.Get(p)
	if err != nil {
		return false, err
	}
	if st.Shown {
		st.Shown = false
		st.Stack.Clear()
		return false, nil
	}
	return true, s.openLocked(p)
}

// Shown reports whether the panel is visible.
func (s *Session) Shown(p nav.Panel) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.panels.Get(p)
	return err == nil && st.Shown
}

// SetSearch sets the panel's search text.
func (s *Session) SetSearch(p nav.Panel, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.panels.Get(p)
	if err != nil {
		return err
	}
	st.Search = text
	return nil
}

// Select drills into an operation: the tool list of operationID is built
// and pushed onto the panel's path. Selecting on a panel that was never
// opened is a no-op.
func (s *Session) Select(p nav.Panel, operationID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.panels.Get(p)
	if err != nil {
		return err
	}
	if st.Stack.Empty() {
		s.log.WithField("panel", p).Debug("select ignored, panel has no root")
		return nil
	}
	q := view.ToolReadyQuery(operationID)
	v, err := view.Build(s.store.Snapshot(), q)
	if err != nil {
		return err
	}
	st.Stack.Push(nav.Node{Query: q, View: v})
	s.log.WithFields(logrus.Fields{"panel": p, "path": st.Stack.Path()}).Debug("drilled into operation")
	return nil
}

// Back returns the panel to the previous view. At the root it is a no-op.
func (s *Session) Back(p nav.Panel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.panels.Get(p)
	if err != nil {
		return err
	}
	if st.Stack.Pop() {
		s.log.WithFields(logrus.Fields{"panel": p, "path": st.Stack.Path()}).Debug("navigated back")
	}
	return nil
}

// Depth returns the length of the panel's navigation path.
func (s *Session) Depth(p nav.Panel) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.panels.Get(p)
	if err != nil {
		return 0
	}
	return st.Stack.Depth()
}

// CurrentView returns the deepest view of the panel as built, without
// presentation filters.
func (s *Session) CurrentView(p nav.Panel) (view.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.panels.Get(p)
	if err != nil {
		return nil, err
	}
	n, ok := st.Stack.Current()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoView, p)
	}
	return n.View, nil
}

// Visible returns the panel's current view with the panel's status and
// search filters applied.
func (s *Session) Visible(p nav.Panel) (view.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.panels.Get(p)
	if err != nil {
		return nil, err
	}
	n, ok := st.Stack.Current()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoView, p)
	}

	return p.Filter(n.View, st.Search), nil
}
