package cascade

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Node names one selector in the hierarchy.
type Node string

// Option is one selectable entry of a node.
type Option struct {
	ID    int64
	Label string
}

// Loader fetches a node's options. parentID is the parent's selection, 0 for roots.
type Loader func(ctx context.Context, parentID int64) ([]Option, error)

// Spec declares a node and its dependency edge.
type Spec struct {
	Node   Node
	Parent Node // empty for a root
	Load   Loader
}

type nodeState struct {
	spec     Spec
	children []Node
	selected int64
	has      bool
	options  []Option
	loading  bool
	gen      uint64
}

// Selection 级联选择状态机
// A change to a node invalidates every descendant: selections and option lists
// are cleared, then only the direct children reload against the new value.
// Loads that complete after their node was invalidated are discarded.
type Selection struct {
	mu     sync.Mutex
	order  []Node
	nodes  map[Node]*nodeState
	logger *zap.Logger
}

// New 创建级联选择器；specs 需按父在前的顺序声明
func New(logger *zap.Logger, specs ...Spec) (*Selection, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Selection{nodes: make(map[Node]*nodeState, len(specs)), logger: logger}
	for _, spec := range specs {
		if _, dup := s.nodes[spec.Node]; dup {
			return nil, fmt.Errorf("cascade: duplicate node %q", spec.Node)
		}
		if spec.Load == nil {
			return nil, fmt.Errorf("cascade: node %q has no loader", spec.Node)
		}
		if spec.Parent != "" {
			parent, ok := s.nodes[spec.Parent]
			if !ok {
				return nil, fmt.Errorf("cascade: node %q declared before its parent %q", spec.Node, spec.Parent)
			}
			parent.children = append(parent.children, spec.Node)
		}
		s.nodes[spec.Node] = &nodeState{spec: spec, options: []Option{}}
		s.order = append(s.order, spec.Node)
	}
	return s, nil
}

func (s *Selection) node(n Node) *nodeState {
	st, ok := s.nodes[n]
	if !ok {
		panic(fmt.Sprintf("cascade: unknown node %q", n))
	}
	return st
}

// Start loads the options of every root node.
func (s *Selection) Start(ctx context.Context) error {
	var firstErr error
	for _, n := range s.order {
		s.mu.Lock()
		root := s.node(n).spec.Parent == ""
		s.mu.Unlock()
		if !root {
			continue
		}
		if err := s.load(ctx, n, 0); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Seed installs options for n without calling its loader, for callers that
// fetched them elsewhere. Descendants are invalidated.
func (s *Selection) Seed(n Node, opts []Option) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.node(n)
	if opts == nil {
		opts = []Option{}
	}
	st.gen++
	st.loading = false
	st.options = opts
	st.selected, st.has = 0, false
	s.invalidateDescendants(st)
}

// Select sets n to id, invalidates all descendants and reloads n's direct children.
func (s *Selection) Select(ctx context.Context, n Node, id int64) error {
	s.mu.Lock()
	st := s.node(n)
	st.selected, st.has = id, true
	s.invalidateDescendants(st)
	children := append([]Node(nil), st.children...)
	s.mu.Unlock()

	var firstErr error
	for _, child := range children {
		if err := s.load(ctx, child, id); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Clear unselects n and invalidates all descendants. Nothing is reloaded.
func (s *Selection) Clear(n Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.node(n)
	st.selected, st.has = 0, false
	s.invalidateDescendants(st)
}

// Reset clears every selection and every non-root option list.
func (s *Selection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.order {
		st := s.nodes[n]
		if st.spec.Parent == "" {
			st.selected, st.has = 0, false
			s.invalidateDescendants(st)
		}
	}
}

// invalidateDescendants walks the declared edges. Caller holds the lock.
func (s *Selection) invalidateDescendants(st *nodeState) {
	for _, child := range st.children {
		c := s.nodes[child]
		c.selected, c.has = 0, false
		c.options = []Option{}
		c.loading = false
		c.gen++
		s.invalidateDescendants(c)
	}
}

func (s *Selection) load(ctx context.Context, n Node, parentID int64) error {
	s.mu.Lock()
	st := s.node(n)
	st.gen++
	gen := st.gen
	st.loading = true
	loader := st.spec.Load
	s.mu.Unlock()

	opts, err := loader(ctx, parentID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if st.gen != gen {
		return nil
	}
	st.loading = false
	if err != nil {
		s.logger.Error("Failed to load cascade options",
			zap.String("node", string(n)),
			zap.Int64("parent_id", parentID),
			zap.Error(err),
		)
		return fmt.Errorf("load %s options: %w", n, err)
	}
	if opts == nil {
		opts = []Option{}
	}
	st.options = opts
	return nil
}

// Selected returns n's selection; ok is false when nothing is selected.
func (s *Selection) Selected(n Node) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.node(n)
	return st.selected, st.has
}

func (s *Selection) Options(n Node) []Option {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Option{}, s.node(n).options...)
}

func (s *Selection) Loading(n Node) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.node(n).loading
}

// Disabled reports whether n cannot be interacted with: its options are loading,
// or its parent has no selection.
func (s *Selection) Disabled(n Node) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.node(n)
	if st.loading {
		return true
	}
	if st.spec.Parent == "" {
		return false
	}
	return !s.nodes[st.spec.Parent].has
}

// Label returns the option label of n's current selection.
func (s *Selection) Label(n Node) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.node(n)
	if !st.has {
		return ""
	}
	for _, o := range st.options {
		if o.ID == st.selected {
			return o.Label
		}
	}
	return ""
}
