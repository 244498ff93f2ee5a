// Package tree is an in-memory document tree implementing dom.Node.
// Documents are built by hand or parsed from HTML (golang.org/x/net/html)
// and XML (github.com/beevik/etree).
package tree

import (
	"sync"

	"github.com/jacoelho/sift/internal/dom"
)

// Attr is a single element attribute. Key includes the namespace prefix
// when there is one ("xml:lang", "xlink:href").
type Attr struct {
	Key   string
	Value string
}

// Node is a document, element, text, comment, doctype or processing
// instruction node.
type Node struct {
	kind  dom.Kind
	tag   string
	data  string
	attrs []Attr
	focus bool

	parent      *Node
	firstChild  *Node
	lastChild   *Node
	prevSibling *Node
	nextSibling *Node

	// root only
	xml   bool
	idsMu sync.Mutex
	ids   map[string][]dom.Node
}

var (
	_ dom.Node        = (*Node)(nil)
	_ dom.IDIndexer   = (*Node)(nil)
	_ dom.XMLDocument = (*Node)(nil)
	_ dom.Focuser     = (*Node)(nil)
)

// NewDocument returns an empty HTML document node.
func NewDocument() *Node {
	return &Node{kind: dom.DocumentNode}
}

// NewXMLDocument returns an empty XML document node.
func NewXMLDocument() *Node {
	return &Node{kind: dom.DocumentNode, xml: true}
}

// NewElement returns a detached element.
func NewElement(tag string, attrs ...Attr) *Node {
	return &Node{kind: dom.ElementNode, tag: tag, attrs: attrs}
}

// NewText returns a detached text node.
func NewText(data string) *Node {
	return &Node{kind: dom.TextNode, data: data}
}

// NewComment returns a detached comment node.
func NewComment(data string) *Node {
	return &Node{kind: dom.CommentNode, data: data}
}

func wrap(n *Node) dom.Node {
	if n == nil {
		return nil
	}
	return n
}

func (n *Node) Kind() dom.Kind        { return n.kind }
func (n *Node) Parent() dom.Node      { return wrap(n.parent) }
func (n *Node) FirstChild() dom.Node  { return wrap(n.firstChild) }
func (n *Node) LastChild() dom.Node   { return wrap(n.lastChild) }
func (n *Node) PrevSibling() dom.Node { return wrap(n.prevSibling) }
func (n *Node) NextSibling() dom.Node { return wrap(n.nextSibling) }
func (n *Node) Tag() string           { return n.tag }
func (n *Node) Data() string          { return n.data }
func (n *Node) HasFocus() bool        { return n.focus }

// Attr returns the value of the attribute named key.
func (n *Node) Attr(key string) (string, bool) {
	for _, a := range n.attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// Attrs returns the element attributes in source order.
func (n *Node) Attrs() []Attr {
	return n.attrs
}

// IsXML reports whether the owning document is an XML document.
func (n *Node) IsXML() bool {
	return n.root().xml
}

// Append adds children at the end of n and returns n.
// Children already attached elsewhere are moved.
func (n *Node) Append(children ...*Node) *Node {
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

// AppendChild adds c as the last child of n.
func (n *Node) AppendChild(c *Node) {
	if c.parent != nil {
		c.parent.RemoveChild(c)
	}
	c.dropIndex()
	c.parent = n
	c.prevSibling = n.lastChild
	if n.lastChild != nil {
		n.lastChild.nextSibling = c
	} else {
		n.firstChild = c
	}
	n.lastChild = c
	n.invalidate()
}

// RemoveChild detaches c from n. It is a no-op when c is not a child of n.
func (n *Node) RemoveChild(c *Node) {
	if c.parent != n {
		return
	}
	n.invalidate()
	if c.prevSibling != nil {
		c.prevSibling.nextSibling = c.nextSibling
	} else {
		n.firstChild = c.nextSibling
	}
	if c.nextSibling != nil {
		c.nextSibling.prevSibling = c.prevSibling
	} else {
		n.lastChild = c.prevSibling
	}
	c.parent, c.prevSibling, c.nextSibling = nil, nil, nil
	c.dropIndex()
}

// SetAttr sets or replaces an attribute.
func (n *Node) SetAttr(key, value string) {
	if key == "id" {
		n.invalidate()
	}
	for i := range n.attrs {
		if n.attrs[i].Key == key {
			n.attrs[i].Value = value
			return
		}
	}
	n.attrs = append(n.attrs, Attr{Key: key, Value: value})
}

// RemoveAttr deletes an attribute if present.
func (n *Node) RemoveAttr(key string) {
	if key == "id" {
		n.invalidate()
	}
	for i := range n.attrs {
		if n.attrs[i].Key == key {
			n.attrs = append(n.attrs[:i], n.attrs[i+1:]...)
			return
		}
	}
}

// SetFocus marks n as the focused element.
func (n *Node) SetFocus(focus bool) {
	n.focus = focus
}

// ElementsByID returns the elements of the tree rooted at n's root carrying
// the given id, in document order. The index is rebuilt lazily after
// mutations.
func (n *Node) ElementsByID(id string) []dom.Node {
	r := n.root()
	r.idsMu.Lock()
	defer r.idsMu.Unlock()

	if r.ids == nil {
		r.ids = make(map[string][]dom.Node)
		if v, ok := r.Attr("id"); ok && r.kind == dom.ElementNode {
			r.ids[v] = append(r.ids[v], r)
		}
		for e := range dom.Elements(r) {
			if v, ok := e.Attr("id"); ok {
				r.ids[v] = append(r.ids[v], e)
			}
		}
	}
	return r.ids[id]
}

func (n *Node) root() *Node {
	for n.parent != nil {
		n = n.parent
	}
	return n
}

func (n *Node) invalidate() {
	n.root().dropIndex()
}

// dropIndex clears the id index held by n. Only roots hold one; subtrees
// drop theirs when they are attached or detached.
func (n *Node) dropIndex() {
	n.idsMu.Lock()
	n.ids = nil
	n.idsMu.Unlock()
}
