package selector

import (
	"slices"
	"strings"

	"github.com/jacoelho/sift/internal/dom"
)

// Kind is the lexical class of a token.
type Kind uint8

const (
	KindID Kind = iota + 1
	KindClass
	KindTag
	KindAttr
	KindPseudo
	KindChild
	KindCombinator
)

func (k Kind) String() string {
	switch k {
	case KindID:
		return "ID"
	case KindClass:
		return "CLASS"
	case KindTag:
		return "TAG"
	case KindAttr:
		return "ATTR"
	case KindPseudo:
		return "PSEUDO"
	case KindChild:
		return "CHILD"
	case KindCombinator:
		return "COMBINATOR"
	}
	return "UNKNOWN"
}

// Token is one lexical unit of a selector. Value is the matched source text.
//
// Captures by kind, after pre-filtering:
//
//	ID, CLASS, TAG  [name]
//	ATTR            [name, operator, value]
//	CHILD           [type, what, argument, a, b]
//	PSEUDO          [name] or [name, argument]
//	COMBINATOR      [" " | ">" | "+" | "~"]
type Token struct {
	Kind     Kind
	Value    string
	Captures []string
}

func (t Token) String() string {
	return t.Kind.String() + "(" + t.Value + ")"
}

func (t Token) combinator() string {
	if t.Kind != KindCombinator || len(t.Captures) == 0 {
		return ""
	}
	return t.Captures[0]
}

// Group is one comma separated alternative of a selector.
type Group []Token

// String rebuilds the selector text of the group.
func (g Group) String() string {
	var b strings.Builder
	for _, t := range g {
		b.WriteString(t.Value)
	}
	return strings.TrimSpace(b.String())
}

// Groups is a tokenized selector.
type Groups []Group

func (gs Groups) clone() Groups {
	out := make(Groups, len(gs))
	for i, g := range gs {
		out[i] = make(Group, len(g))
		for j, t := range g {
			out[i][j] = Token{Kind: t.Kind, Value: t.Value, Captures: slices.Clone(t.Captures)}
		}
	}
	return out
}

// elementMatcher tests a single node.
type elementMatcher func(n dom.Node, mc *matchContext) (bool, error)

// setFilter reduces a candidate set, preserving candidate order.
type setFilter func(candidates []dom.Node, mc *matchContext) ([]dom.Node, error)

// filter is the compiled form of a single non combinator token.
// Exactly one of match and set is set.
type filter struct {
	match elementMatcher
	set   setFilter
}

// compiled is a selector compiled group by group.
type compiled struct {
	selector string
	groups   []*compiledGroup
}

func (c *compiled) elementOnly() bool {
	for _, g := range c.groups {
		if g.set != nil {
			return false
		}
	}
	return true
}

// compiledGroup is either an element matcher (match) or a set plan (set).
type compiledGroup struct {
	tokens  Group
	leading string
	match   elementMatcher
	set     *setPlan

	// find is the right-most ID, CLASS or TAG token used to collect
	// candidates; nil when the group needs its context to pick candidates.
	find *Token
	// idSuffix re-roots "#id <comb> rest" groups at the id element.
	idSuffix *compiledGroup
}

// setPlan runs a group split at its first set filter:
// candidates of outer, reduced by filter, then by post, then expanded by
// finder with every kept node as context.
type setPlan struct {
	outer  *compiledGroup
	filter setFilter
	post   *compiledGroup
	finder *compiledGroup
}
