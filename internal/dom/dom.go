// Package dom defines the node contract the selector engine walks.
//
// Implementations must return an untyped nil (not a typed nil pointer) from
// the navigation methods when there is no such node, and must use a
// comparable type (usually a pointer) so that nodes can be used as map keys.
package dom

// Kind identifies the type of a node.
type Kind uint8

const (
	DocumentNode Kind = iota + 1
	ElementNode
	TextNode
	CommentNode
	DoctypeNode
	ProcessingInstructionNode
)

func (k Kind) String() string {
	switch k {
	case DocumentNode:
		return "document"
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case CommentNode:
		return "comment"
	case DoctypeNode:
		return "doctype"
	case ProcessingInstructionNode:
		return "processing-instruction"
	}
	return "unknown"
}

// Node is a read-only view of a tree node.
type Node interface {
	Kind() Kind
	Parent() Node
	FirstChild() Node
	LastChild() Node
	PrevSibling() Node
	NextSibling() Node
	// Tag is the element name as written in the document; empty for non elements.
	Tag() string
	// Attr returns the attribute value and whether the attribute is present.
	Attr(name string) (string, bool)
	// Data is the character data of text, comment and processing instruction nodes.
	Data() string
}

// IDIndexer is implemented by documents that keep an id index.
// ElementsByID returns every element carrying id in document order.
type IDIndexer interface {
	ElementsByID(id string) []Node
}

// XMLDocument is implemented by nodes that know whether their document is XML.
type XMLDocument interface {
	IsXML() bool
}

// Focuser is implemented by nodes that can report focus.
type Focuser interface {
	HasFocus() bool
}

// NativeMatcher is an accelerated selector match primitive.
// An error means the implementation cannot evaluate the selector.
type NativeMatcher interface {
	MatchesSelector(selector string) (bool, error)
}
