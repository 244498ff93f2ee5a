package selector

import (
	"github.com/jacoelho/sift/internal/dom"
)

// Selector is a compiled selector bound to the engine that compiled it.
// Pseudo-classes registered after compilation do not affect it.
type Selector struct {
	engine   *Engine
	compiled *compiled
}

// Compile parses and compiles selector.
func (e *Engine) Compile(selector string) (*Selector, error) {
	c, err := e.compile(selector)
	if err != nil {
		return nil, err
	}
	return &Selector{engine: e, compiled: c}, nil
}

// MustCompile is like Compile but panics if the selector is malformed.
func (e *Engine) MustCompile(selector string) *Selector {
	s, err := e.Compile(selector)
	if err != nil {
		panic(err)
	}
	return s
}

// String returns the trimmed selector text.
func (s *Selector) String() string {
	return s.compiled.selector
}

// Select returns the descendants of context matching s, in document order.
func (s *Selector) Select(context dom.Node) ([]dom.Node, error) {
	if context == nil {
		return nil, ErrNoContext
	}
	if !isContainer(context) {
		return nil, nil
	}
	return s.engine.execute(s.compiled, context, nil, dom.IsXML(context))
}

// Filter returns the elements of nodes matching s, in the order of nodes.
func (s *Selector) Filter(nodes []dom.Node) ([]dom.Node, error) {
	if len(nodes) == 0 {
		return nil, nil
	}
	return s.engine.execute(s.compiled, nil, nodes, dom.IsXML(nodes[0]))
}

// Match reports whether n matches s.
func (s *Selector) Match(n dom.Node) (bool, error) {
	if !dom.IsElement(n) {
		return false, nil
	}
	found, err := s.Filter([]dom.Node{n})
	if err != nil {
		return false, err
	}
	return len(found) > 0, nil
}

var defaultEngine = New()

// Query runs selector on the default engine. See Engine.Query.
func Query(selector string, context dom.Node, seed []dom.Node) ([]dom.Node, error) {
	return defaultEngine.Query(selector, context, seed)
}

// Matches filters nodes with the default engine. See Engine.Matches.
func Matches(selector string, nodes []dom.Node) ([]dom.Node, error) {
	return defaultEngine.Matches(selector, nodes)
}

// MatchesSelector tests n with the default engine. See Engine.MatchesSelector.
func MatchesSelector(n dom.Node, selector string) (bool, error) {
	return defaultEngine.MatchesSelector(n, selector)
}

// Compile compiles selector with the default engine.
func Compile(selector string) (*Selector, error) {
	return defaultEngine.Compile(selector)
}

// MustCompile compiles selector with the default engine and panics on error.
func MustCompile(selector string) *Selector {
	return defaultEngine.MustCompile(selector)
}

// RegisterPseudo registers a pseudo-class on the default engine.
func RegisterPseudo(name string, factory PseudoFactory) {
	defaultEngine.RegisterPseudo(name, factory)
}
