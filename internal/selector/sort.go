package selector

import (
	"slices"

	"github.com/jacoelho/sift/internal/dom"
)

// UniqueSort returns nodes in document order with duplicates removed. Nodes
// of different trees are grouped by tree, in the order each tree first
// appears in nodes. The input is not modified.
func UniqueSort(nodes []dom.Node) []dom.Node {
	out := slices.Clone(nodes)
	if len(out) < 2 {
		return out
	}

	s := &sorter{
		keys:  make(map[dom.Node]sortKey, len(out)),
		roots: make(map[dom.Node]int),
	}
	// roots are numbered in input order
	for _, n := range out {
		s.key(n)
	}
	slices.SortStableFunc(out, s.compare)
	return slices.Compact(out)
}

// sortKey places a node by the ordinal of its root and the child indexes
// leading to it from that root.
type sortKey struct {
	root int
	path []int
}

type sorter struct {
	keys  map[dom.Node]sortKey
	roots map[dom.Node]int
}

func (s *sorter) compare(a, b dom.Node) int {
	if a == b {
		return 0
	}
	ka, kb := s.key(a), s.key(b)
	if ka.root != kb.root {
		return ka.root - kb.root
	}
	return slices.Compare(ka.path, kb.path)
}

func (s *sorter) key(n dom.Node) sortKey {
	if k, ok := s.keys[n]; ok {
		return k
	}

	var path []int
	cur := n
	for p := cur.Parent(); p != nil; cur, p = p, p.Parent() {
		i := 0
		for c := cur.PrevSibling(); c != nil; c = c.PrevSibling() {
			i++
		}
		path = append(path, i)
	}
	slices.Reverse(path)

	root, ok := s.roots[cur]
	if !ok {
		root = len(s.roots)
		s.roots[cur] = root
	}

	k := sortKey{root: root, path: path}
	s.keys[n] = k
	return k
}
