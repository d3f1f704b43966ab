package nav

import (
	"errors"
	"fmt"

	"github.com/mesh-intelligence/frontdesk/internal/view"
	"github.com/mesh-intelligence/frontdesk/pkg/types"
)

// ErrUnknownPanel is returned when a panel name is not recognized.
var ErrUnknownPanel = errors.New("unknown panel")

// Panel names a central-window panel of the front desk.
type Panel string

// Panels.
const (
	PanelPreOperative Panel = "pre-operative"
	PanelInProgress   Panel = "in-progress"
)

// Panels lists every panel in display order.
var Panels = []Panel{PanelPreOperative, PanelInProgress}

// ParsePanel resolves a panel name.
func ParsePanel(s string) (Panel, error) {
	for _, p := range Panels {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPanel, s)
}

// Status returns the operation status whose rows the panel shows.
func (p Panel) Status() types.OperationStatus {
	switch p {
	case PanelInProgress:
		return types.StatusInProgress
	default:
		return types.StatusPreOperative
	}
}

func (p Panel) String() string { return string(p) }

// Filter applies the panel's presentation filters to v: operation lists
// keep only rows in the panel's status that match search. Other views are
// returned as they are.
func (p Panel) Filter(v view.View, search string) view.View {
	dv, ok := v.(view.PreOperativeDefaultView)
	if !ok {
		return v
	}
	rows := view.FilterByStatus(dv.Rows, p.Status())
	return view.PreOperativeDefaultView{Rows: view.Search(rows, search)}
}

// State is everything the display keeps for one panel.
type State struct {
	Shown  bool
	Search string
	Stack  Stack
}

// Registry holds the state of every panel. It is not safe for concurrent use.
type Registry struct {
	states map[Panel]*State
}

// NewRegistry returns a registry with every panel hidden and empty.
func NewRegistry() *Registry {
	r := &Registry{states: make(map[Panel]*State, len(Panels))}
	for _, p := range Panels {
		r.states[p] = &State{}
	}
	return r
}

// Get returns the state of panel p.
func (r *Registry) Get(p Panel) (*State, error) {
	st, ok := r.states[p]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPanel, p)
	}
	return st, nil
}

// Each calls fn for every panel in display order.
func (r *Registry) Each(fn func(Panel, *State)) {
	for _, p := range Panels {
		fn(p, r.states[p])
	}
}
