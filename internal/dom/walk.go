package dom

import (
	"iter"
	"strings"
)

// IsElement reports whether n is a non-nil element.
func IsElement(n Node) bool {
	return n != nil && n.Kind() == ElementNode
}

// Root returns the top-most ancestor of n (n itself when detached).
func Root(n Node) Node {
	if n == nil {
		return nil
	}
	for p := n.Parent(); p != nil; p = p.Parent() {
		n = p
	}
	return n
}

// IsXML reports whether n belongs to an XML document.
func IsXML(n Node) bool {
	if x, ok := n.(XMLDocument); ok {
		return x.IsXML()
	}
	if x, ok := Root(n).(XMLDocument); ok {
		return x.IsXML()
	}
	return false
}

// Contains reports whether b is a strict descendant of a.
func Contains(a, b Node) bool {
	if a == nil || b == nil {
		return false
	}
	for p := b.Parent(); p != nil; p = p.Parent() {
		if p == a {
			return true
		}
	}
	return false
}

// Elements yields the element descendants of root in document order,
// excluding root itself.
func Elements(root Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		if root == nil {
			return
		}
		n := root.FirstChild()
		for n != nil {
			if n.Kind() == ElementNode && !yield(n) {
				return
			}
			if c := n.FirstChild(); c != nil {
				n = c
				continue
			}
			for n != nil && n != root {
				if s := n.NextSibling(); s != nil {
					n = s
					break
				}
				n = n.Parent()
			}
			if n == root {
				return
			}
		}
	}
}

// PrevElement returns the closest preceding element sibling of n.
func PrevElement(n Node) Node {
	for s := n.PrevSibling(); s != nil; s = s.PrevSibling() {
		if s.Kind() == ElementNode {
			return s
		}
	}
	return nil
}

// NextElement returns the closest following element sibling of n.
func NextElement(n Node) Node {
	for s := n.NextSibling(); s != nil; s = s.NextSibling() {
		if s.Kind() == ElementNode {
			return s
		}
	}
	return nil
}

// Text returns the concatenated character data of n and its descendants.
// Comments and processing instructions are skipped.
func Text(n Node) string {
	if n == nil {
		return ""
	}
	switch n.Kind() {
	case TextNode:
		return n.Data()
	case ElementNode, DocumentNode:
	default:
		return ""
	}

	var b strings.Builder
	var collect func(Node)
	collect = func(p Node) {
		for c := p.FirstChild(); c != nil; c = c.NextSibling() {
			switch c.Kind() {
			case TextNode:
				b.WriteString(c.Data())
			case ElementNode:
				collect(c)
			}
		}
	}
	collect(n)
	return b.String()
}
