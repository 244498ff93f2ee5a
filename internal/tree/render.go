package tree

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html"

	"github.com/jacoelho/sift/internal/dom"
)

// Render writes n and its descendants. XML documents are serialized with
// etree, everything else with the HTML renderer.
func Render(w io.Writer, n *Node) error {
	if n.IsXML() {
		return renderXML(w, n)
	}
	return renderHTML(w, n)
}

// OuterHTML returns the serialized form of n.
func OuterHTML(n *Node) (string, error) {
	var b bytes.Buffer
	if err := Render(&b, n); err != nil {
		return "", err
	}
	return b.String(), nil
}

func renderHTML(w io.Writer, n *Node) error {
	h := toHTML(n)
	if h == nil {
		return nil
	}
	if h.Type == html.DocumentNode {
		for c := h.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(w, c); err != nil {
				return fmt.Errorf("render HTML: %w", err)
			}
		}
		return nil
	}
	if err := html.Render(w, h); err != nil {
		return fmt.Errorf("render HTML: %w", err)
	}
	return nil
}

func toHTML(n *Node) *html.Node {
	h := &html.Node{Data: n.data}
	switch n.kind {
	case dom.DocumentNode:
		h.Type = html.DocumentNode
	case dom.ElementNode:
		h.Type = html.ElementNode
		h.Data = n.tag
		for _, a := range n.attrs {
			attr := html.Attribute{Key: a.Key, Val: a.Value}
			if ns, key, ok := strings.Cut(a.Key, ":"); ok {
				attr.Namespace, attr.Key = ns, key
			}
			h.Attr = append(h.Attr, attr)
		}
	case dom.TextNode:
		h.Type = html.TextNode
	case dom.CommentNode:
		h.Type = html.CommentNode
	case dom.DoctypeNode:
		h.Type = html.DoctypeNode
	default:
		return nil
	}

	for c := n.firstChild; c != nil; c = c.nextSibling {
		if hc := toHTML(c); hc != nil {
			h.AppendChild(hc)
		}
	}
	return h
}

func renderXML(w io.Writer, n *Node) error {
	doc := etree.NewDocument()
	if n.kind == dom.DocumentNode {
		for c := n.firstChild; c != nil; c = c.nextSibling {
			toXML(&doc.Element, c)
		}
	} else {
		toXML(&doc.Element, n)
	}
	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("render XML: %w", err)
	}
	return nil
}

func toXML(parent *etree.Element, n *Node) {
	switch n.kind {
	case dom.ElementNode:
		el := parent.CreateElement(n.tag)
		for _, a := range n.attrs {
			el.CreateAttr(a.Key, a.Value)
		}
		for c := n.firstChild; c != nil; c = c.nextSibling {
			toXML(el, c)
		}
	case dom.TextNode:
		parent.CreateText(n.data)
	case dom.CommentNode:
		parent.CreateComment(n.data)
	case dom.DoctypeNode:
		parent.CreateDirective(n.data)
	case dom.ProcessingInstructionNode:
		parent.CreateProcInst(n.tag, n.data)
	}
}
