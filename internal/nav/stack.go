// Package nav keeps the drill-down history of each panel. A Stack is a flat
// path of materialized views: index 0 is the root, the last index is the
// view on screen.
package nav

import (
	"fmt"

	"github.com/mesh-intelligence/frontdesk/internal/view"
	"github.com/mesh-intelligence/frontdesk/pkg/types"
)

// Node is one level of the drill-down path. Query is kept next to the
// materialized View so the path can be rebuilt against a newer snapshot.
type Node struct {
	Query view.Query
	View  view.View
}

// Stack is the per-panel navigation path. The zero value is empty.
// A Stack is not safe for concurrent use.
type Stack struct {
	nodes []Node
}

// SetRoot discards the existing path and makes n the only node.
func (s *Stack) SetRoot(n Node) {
	s.nodes = []Node{n}
}

// Push attaches n below the deepest node. Pushing onto an empty stack is a
// no-op and reports false.
func (s *Stack) Push(n Node) bool {
	if len(s.nodes) == 0 {
		return false
	}
	s.nodes = append(s.nodes, n)
	return true
}

// Pop removes the deepest node. The root is never removed; popping a stack
// of depth 0 or 1 is a no-op and reports false.
func (s *Stack) Pop() bool {
	if len(s.nodes) <= 1 {
		return false
	}
	s.nodes[len(s.nodes)-1] = Node{}
	s.nodes = s.nodes[:len(s.nodes)-1]
	return true
}

// Current returns the deepest node, or false when the stack is empty.
func (s *Stack) Current() (Node, bool) {
	if len(s.nodes) == 0 {
		return Node{}, false
	}
	return s.nodes[len(s.nodes)-1], true
}

// Depth returns the number of nodes on the path.
func (s *Stack) Depth() int { return len(s.nodes) }

// Empty reports whether no root has been set.
func (s *Stack) Empty() bool { return len(s.nodes) == 0 }

// Clear drops every node, returning the stack to its empty state.
func (s *Stack) Clear() { s.nodes = nil }

// Path returns the queries from root to leaf.
func (s *Stack) Path() []view.Query {
	out := make([]view.Query, len(s.nodes))
	for i, n := range s.nodes {
		out[i] = n.Query
	}
	return out
}

// Rebuild re-evaluates every node's query against snap, keeping the path.
// On error the stack is left unchanged.
func (s *Stack) Rebuild(snap *types.Snapshot) error {
	rebuilt := make([]Node, len(s.nodes))
	for i, n := range s.nodes {
		v, err := view.Build(snap, n.Query)
		if err != nil {
			return fmt.Errorf("rebuilding level %d: %w", i, err)
		}
		rebuilt[i] = Node{Query: n.Query, View: v}
	}
	s.nodes = rebuilt
	return nil
}
