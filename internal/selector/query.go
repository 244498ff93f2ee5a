package selector

import (
	"iter"
	"strings"

	"github.com/jacoelho/sift/internal/dom"
)

// Query returns the elements matching selector in document order without
// duplicates.
//
// Elements are searched among the descendants of context, which must be a
// document or an element; any other context yields no result. A non nil seed
// restricts matching to its elements and keeps the seed order; context may
// then be nil. The left-most compound of every group must be a descendant of
// an element context, and a leading combinator ("> p") is relative to it.
func (e *Engine) Query(selector string, context dom.Node, seed []dom.Node) ([]dom.Node, error) {
	if context == nil && seed == nil {
		return nil, ErrNoContext
	}
	if context != nil && !isContainer(context) {
		return nil, nil
	}

	selector = trimSelector(selector)
	if selector == "" {
		return nil, nil
	}

	if seed == nil {
		if found, ok := e.quick(selector, context); ok {
			return found, nil
		}
	}

	c, err := e.compile(selector)
	if err != nil {
		return nil, err
	}

	xmlFrom := context
	if xmlFrom == nil && len(seed) > 0 {
		xmlFrom = seed[0]
	}
	return e.execute(c, context, seed, xmlFrom != nil && dom.IsXML(xmlFrom))
}

// Matches returns the elements of nodes matching selector, in the order of
// nodes.
func (e *Engine) Matches(selector string, nodes []dom.Node) ([]dom.Node, error) {
	if nodes == nil {
		nodes = []dom.Node{}
	}
	return e.Query(selector, nil, nodes)
}

// MatchesSelector reports whether n matches selector. Nodes implementing
// dom.NativeMatcher are asked first; selectors they fail on are remembered
// and evaluated by the engine from then on.
func (e *Engine) MatchesSelector(n dom.Node, selector string) (bool, error) {
	if !dom.IsElement(n) {
		return false, nil
	}

	if nm, ok := n.(dom.NativeMatcher); ok {
		if _, skip := e.nonNative.Get(selector); !skip {
			if matched, ok := tryNative(nm, selector); ok {
				return matched, nil
			}
			e.nonNative.Add(selector, struct{}{})
		}
	}

	found, err := e.Query(selector, nil, []dom.Node{n})
	if err != nil {
		return false, err
	}
	return len(found) > 0, nil
}

// tryNative reports the native answer and whether there was one.
func tryNative(nm dom.NativeMatcher, selector string) (matched, ok bool) {
	matched, err := nm.MatchesSelector(selector)
	if err != nil {
		return false, false
	}
	return matched, true
}

func isContainer(n dom.Node) bool {
	k := n.Kind()
	return k == dom.ElementNode || k == dom.DocumentNode
}

// quick resolves bare "#id", "tag" and ".class" selectors without compiling
// them.
func (e *Engine) quick(selector string, context dom.Node) ([]dom.Node, bool) {
	m := rquickExpr.FindStringSubmatch(selector)
	if m == nil {
		return nil, false
	}

	switch {
	case m[1] != "":
		if el := findByID(context, m[1]); el != nil {
			return []dom.Node{el}, true
		}
		return nil, true
	case m[2] != "":
		return collect(elementsByTag(context, m[2])), true
	default:
		return collect(e.elementsByClass(context, m[3])), true
	}
}

// findByID returns the first element below root carrying id.
func findByID(root dom.Node, id string) dom.Node {
	if idx, ok := root.(dom.IDIndexer); ok {
		for _, el := range idx.ElementsByID(id) {
			if dom.Contains(root, el) {
				return el
			}
		}
		return nil
	}
	for el := range dom.Elements(root) {
		if v, ok := el.Attr("id"); ok && v == id {
			return el
		}
	}
	return nil
}

func elementsByTag(root dom.Node, tag string) iter.Seq[dom.Node] {
	if tag == "*" {
		return dom.Elements(root)
	}
	return func(yield func(dom.Node) bool) {
		for el := range dom.Elements(root) {
			if strings.EqualFold(el.Tag(), tag) && !yield(el) {
				return
			}
		}
	}
}

func (e *Engine) elementsByClass(root dom.Node, name string) iter.Seq[dom.Node] {
	return func(yield func(dom.Node) bool) {
		for el := range dom.Elements(root) {
			if e.hasClass(el, name) && !yield(el) {
				return
			}
		}
	}
}

func collect(seq iter.Seq[dom.Node]) []dom.Node {
	var out []dom.Node
	for n := range seq {
		out = append(out, n)
	}
	return out
}

// execute runs a compiled selector. Without a seed every group collects its
// own candidates below context; results of several groups are merged in
// document order.
func (e *Engine) execute(c *compiled, context dom.Node, seed []dom.Node, xml bool) ([]dom.Node, error) {
	if seed != nil {
		return e.executeSeed(c, context, seed, xml)
	}

	mc := e.newMatchContext(context, nil, xml)

	if len(c.groups) == 1 {
		g := c.groups[0]
		if g.idSuffix != nil {
			el := findByID(context, unescape(g.tokens[0].Captures[0]))
			if el == nil {
				return nil, nil
			}
			return e.runGroup(g.idSuffix, mc.withContext(el))
		}
		return e.runGroup(g, mc)
	}

	var out []dom.Node
	for _, g := range c.groups {
		found, err := e.runGroup(g, mc)
		if err != nil {
			return nil, err
		}
		out = append(out, found...)
	}
	return UniqueSort(out), nil
}

// executeSeed keeps the seed elements matched by any group, in seed order.
func (e *Engine) executeSeed(c *compiled, context dom.Node, seed []dom.Node, xml bool) ([]dom.Node, error) {
	elems := make([]dom.Node, 0, len(seed))
	for _, n := range seed {
		if dom.IsElement(n) {
			elems = append(elems, n)
		}
	}
	if len(elems) == 0 {
		return nil, nil
	}

	root := context
	if root == nil {
		root = dom.Root(elems[0])
	}
	mc := e.newMatchContext(context, root, xml)

	if c.elementOnly() {
		var out []dom.Node
		for _, n := range elems {
			ok, err := matchAny(c.groups, n, mc)
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, n)
			}
		}
		return out, nil
	}

	matched := make(map[dom.Node]struct{})
	for _, g := range c.groups {
		if g.set == nil {
			for _, n := range elems {
				ok, err := g.match(n, mc)
				if err != nil {
					return nil, err
				}
				if ok {
					matched[n] = struct{}{}
				}
			}
			continue
		}

		found, err := e.runSet(g.set, mc, elems)
		if err != nil {
			return nil, err
		}
		for _, n := range found {
			matched[n] = struct{}{}
		}
	}

	var out []dom.Node
	for _, n := range elems {
		if _, ok := matched[n]; ok {
			out = append(out, n)
		}
	}
	return out, nil
}

func matchAny(groups []*compiledGroup, n dom.Node, mc *matchContext) (bool, error) {
	for _, g := range groups {
		ok, err := g.match(n, mc)
		if err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}

// runGroup returns the candidates of mc matched by g, in document order.
func (e *Engine) runGroup(g *compiledGroup, mc *matchContext) ([]dom.Node, error) {
	if g.set != nil {
		return e.runSet(g.set, mc, nil)
	}

	var out []dom.Node
	for n := range e.candidates(g, mc) {
		ok, err := g.match(n, mc)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, n)
		}
	}
	return out, nil
}

// candidates enumerates the elements g is tested on. Groups starting with a
// sibling combinator look below the parent of the context.
func (e *Engine) candidates(g *compiledGroup, mc *matchContext) iter.Seq[dom.Node] {
	root := mc.root
	if (g.leading == "+" || g.leading == "~") && mc.context != nil {
		if p := mc.context.Parent(); p != nil {
			root = p
		}
	}

	if g.find == nil {
		return dom.Elements(root)
	}
	name := unescape(g.find.Captures[0])
	switch g.find.Kind {
	case KindID:
		return func(yield func(dom.Node) bool) {
			if el := findByID(root, name); el != nil {
				yield(el)
			}
		}
	case KindClass:
		return e.elementsByClass(root, name)
	default:
		return elementsByTag(root, name)
	}
}

// runSet evaluates a set plan. With a seed and no finder, the set filter
// applies to the seed elements; otherwise candidates come from the context
// and callers intersect with their seed.
func (e *Engine) runSet(p *setPlan, mc *matchContext, seed []dom.Node) ([]dom.Node, error) {
	var (
		elems []dom.Node
		err   error
	)
	switch {
	case seed != nil && p.finder == nil:
		elems = seed
		if p.outer != nil {
			if elems, err = filterNodes(seed, p.outer.match, mc); err != nil {
				return nil, err
			}
		}
	case p.outer != nil:
		if elems, err = e.runGroup(p.outer, mc); err != nil {
			return nil, err
		}
	default:
		elems = collect(dom.Elements(mc.root))
	}

	kept, err := p.filter(elems, mc)
	if err != nil || len(kept) == 0 {
		return nil, err
	}

	if p.post != nil {
		if p.post.set != nil {
			kept, err = e.runSet(p.post.set, mc, kept)
		} else {
			kept, err = filterNodes(kept, p.post.match, mc)
		}
		if err != nil || len(kept) == 0 {
			return nil, err
		}
	}

	if p.finder == nil {
		return kept, nil
	}

	var out []dom.Node
	for _, k := range kept {
		found, err := e.runGroup(p.finder, mc.withContext(k))
		if err != nil {
			return nil, err
		}
		out = append(out, found...)
	}
	if len(kept) > 1 {
		out = UniqueSort(out)
	}
	return out, nil
}

func filterNodes(nodes []dom.Node, match elementMatcher, mc *matchContext) ([]dom.Node, error) {
	var out []dom.Node
	for _, n := range nodes {
		ok, err := match(n, mc)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, n)
		}
	}
	return out, nil
}
