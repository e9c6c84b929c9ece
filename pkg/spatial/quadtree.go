// Package spatial indexes axis-aligned bounding boxes for range queries.
package spatial

import "github.com/paulmach/orb"

const (
	// DefaultMaxItems is how many entries a node holds before it splits.
	DefaultMaxItems = 16
	// DefaultMaxDepth bounds subdivision.
	DefaultMaxDepth = 10
)

// Option tunes a QuadTree.
type Option func(*config)

type config struct {
	maxItems int
	maxDepth int
}

// WithMaxItems sets the split threshold of a node.
func WithMaxItems(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxItems = n
		}
	}
}

// WithMaxDepth caps how deep the tree subdivides.
func WithMaxDepth(d int) Option {
	return func(c *config) {
		if d >= 0 {
			c.maxDepth = d
		}
	}
}

type item[K comparable] struct {
	key K
	box orb.Bound
}

type node[K comparable] struct {
	bounds orb.Bound
	depth  int
	items  []item[K]
	child  [4]*node[K]
}

// QuadTree maps keys to bounding boxes. Every entry lives in exactly one node:
// the deepest one whose bounds fully contain its box. Entries outside the root
// bounds go into an overflow list that every query scans.
type QuadTree[K comparable] struct {
	cfg      config
	root     *node[K]
	overflow []item[K]
	size     int
}

// New creates an empty tree covering bounds.
func New[K comparable](bounds orb.Bound, opts ...Option) *QuadTree[K] {
	cfg := config{maxItems: DefaultMaxItems, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &QuadTree[K]{
		cfg:  cfg,
		root: &node[K]{bounds: bounds},
	}
}

// Bounds returns the root bounds.
func (q *QuadTree[K]) Bounds() orb.Bound {
	return q.root.bounds
}

// Len is the number of inserted entries.
func (q *QuadTree[K]) Len() int {
	return q.size
}

// Insert adds one entry. Inserting the same key twice yields two entries.
func (q *QuadTree[K]) Insert(key K, box orb.Bound) {
	q.size++
	it := item[K]{key: key, box: box}
	if !containsBound(q.root.bounds, box) {
		q.overflow = append(q.overflow, it)
		return
	}
	q.root.insert(it, &q.cfg)
}

// Query returns every key whose box intersects box. Order is unspecified.
func (q *QuadTree[K]) Query(box orb.Bound) []K {
	var out []K
	q.QueryFunc(box, func(key K, _ orb.Bound) bool {
		out = append(out, key)
		return true
	})
	return out
}

// QueryFunc streams matches to fn until it returns false.
func (q *QuadTree[K]) QueryFunc(box orb.Bound, fn func(key K, box orb.Bound) bool) {
	for _, it := range q.overflow {
		if it.box.Intersects(box) {
			if !fn(it.key, it.box) {
				return
			}
		}
	}
	q.root.query(box, fn)
}

func (n *node[K]) insert(it item[K], cfg *config) {
	if n.child[0] != nil {
		if c := n.childThatContains(it.box); c != nil {
			c.insert(it, cfg)
			return
		}
	}

	n.items = append(n.items, it)

	if len(n.items) > cfg.maxItems && n.depth < cfg.maxDepth && n.child[0] == nil {
		n.subdivide()
		kept := n.items[:0]
		for _, existing := range n.items {
			if c := n.childThatContains(existing.box); c != nil {
				c.insert(existing, cfg)
			} else {
				kept = append(kept, existing)
			}
		}
		n.items = kept
	}
}

// query returns false once fn has asked to stop.
func (n *node[K]) query(box orb.Bound, fn func(K, orb.Bound) bool) bool {
	if !n.bounds.Intersects(box) {
		return true
	}
	for _, it := range n.items {
		if it.box.Intersects(box) {
			if !fn(it.key, it.box) {
				return false
			}
		}
	}
	if n.child[0] == nil {
		return true
	}
	for _, c := range n.child {
		if !c.query(box, fn) {
			return false
		}
	}
	return true
}

func (n *node[K]) subdivide() {
	minX, minY := n.bounds.Min[0], n.bounds.Min[1]
	maxX, maxY := n.bounds.Max[0], n.bounds.Max[1]
	mx := (minX + maxX) * 0.5
	my := (minY + maxY) * 0.5
	quads := [4]orb.Bound{
		{Min: orb.Point{minX, minY}, Max: orb.Point{mx, my}},
		{Min: orb.Point{mx, minY}, Max: orb.Point{maxX, my}},
		{Min: orb.Point{minX, my}, Max: orb.Point{mx, maxY}},
		{Min: orb.Point{mx, my}, Max: orb.Point{maxX, maxY}},
	}
	for i, b := range quads {
		n.child[i] = &node[K]{bounds: b, depth: n.depth + 1}
	}
}

func (n *node[K]) childThatContains(b orb.Bound) *node[K] {
	for _, c := range n.child {
		if c != nil && containsBound(c.bounds, b) {
			return c
		}
	}
	return nil
}

func containsBound(outer, inner orb.Bound) bool {
	return inner.Min[0] >= outer.Min[0] && inner.Max[0] <= outer.Max[0] &&
		inner.Min[1] >= outer.Min[1] && inner.Max[1] <= outer.Max[1]
}
