package tree

import (
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html"

	"github.com/jacoelho/sift/internal/dom"
)

// Parse reads an HTML document. Tag and attribute names are lower case,
// as produced by the HTML5 parsing algorithm.
func Parse(r io.Reader) (*Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	root := NewDocument()
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if n := fromHTML(c); n != nil {
			root.AppendChild(n)
		}
	}
	return root, nil
}

// ParseString is Parse over a string.
func ParseString(s string) (*Node, error) {
	return Parse(strings.NewReader(s))
}

func fromHTML(h *html.Node) *Node {
	var n *Node
	switch h.Type {
	case html.ElementNode:
		attrs := make([]Attr, 0, len(h.Attr))
		for _, a := range h.Attr {
			key := a.Key
			if a.Namespace != "" {
				key = a.Namespace + ":" + a.Key
			}
			attrs = append(attrs, Attr{Key: key, Value: a.Val})
		}
		n = NewElement(h.Data, attrs...)
	case html.TextNode:
		return NewText(h.Data)
	case html.CommentNode:
		return NewComment(h.Data)
	case html.DoctypeNode:
		return &Node{kind: dom.DoctypeNode, data: h.Data}
	default:
		return nil
	}

	for c := h.FirstChild; c != nil; c = c.NextSibling {
		if child := fromHTML(c); child != nil {
			n.AppendChild(child)
		}
	}
	return n
}

// ParseXML reads an XML document. Names keep their case and namespace
// prefix.
func ParseXML(r io.Reader) (*Node, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("parse XML: %w", err)
	}

	root := NewXMLDocument()
	appendXML(root, doc.Child)
	return root, nil
}

// ParseXMLString is ParseXML over a string.
func ParseXMLString(s string) (*Node, error) {
	return ParseXML(strings.NewReader(s))
}

func appendXML(parent *Node, tokens []etree.Token) {
	for _, tok := range tokens {
		switch t := tok.(type) {
		case *etree.Element:
			attrs := make([]Attr, 0, len(t.Attr))
			for _, a := range t.Attr {
				key := a.Key
				if a.Space != "" {
					key = a.Space + ":" + a.Key
				}
				attrs = append(attrs, Attr{Key: key, Value: a.Value})
			}
			el := NewElement(t.FullTag(), attrs...)
			parent.AppendChild(el)
			appendXML(el, t.Child)
		case *etree.CharData:
			parent.AppendChild(NewText(t.Data))
		case *etree.Comment:
			parent.AppendChild(NewComment(t.Data))
		case *etree.Directive:
			parent.AppendChild(&Node{kind: dom.DoctypeNode, data: t.Data})
		case *etree.ProcInst:
			parent.AppendChild(&Node{kind: dom.ProcessingInstructionNode, tag: t.Target, data: t.Inst})
		}
	}
}
