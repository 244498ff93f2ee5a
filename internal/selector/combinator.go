package selector

import (
	"slices"

	"github.com/jacoelho/sift/internal/dom"
)

func parentOf(n dom.Node) dom.Node      { return n.Parent() }
func prevSiblingOf(n dom.Node) dom.Node { return n.PrevSibling() }

// link wraps next so that it is tested on the nodes reached from a candidate
// through comb. Child and adjacent combinators test only the first element
// reached; descendant and general sibling combinators walk until next
// matches, memoizing each visited node in the run.
//
// Anchored links test the context itself, so ancestor walks also visit the
// document node.
func (e *Engine) link(comb string, next elementMatcher, anchored bool) elementMatcher {
	step := parentOf
	if comb == "+" || comb == "~" {
		step = prevSiblingOf
	}
	visitAll := anchored && (comb == " " || comb == ">")
	accept := func(n dom.Node) bool {
		return visitAll || n.Kind() == dom.ElementNode
	}

	if comb == ">" || comb == "+" {
		return func(n dom.Node, mc *matchContext) (bool, error) {
			for n = step(n); n != nil; n = step(n) {
				if accept(n) {
					return next(n, mc)
				}
			}
			return false, nil
		}
	}

	done := e.done.Add(1)
	return func(n dom.Node, mc *matchContext) (bool, error) {
		// every node visited by this walk shares one entry: the result of
		// the walk from that node on is the result of this walk
		var entry *dirEntry
		for n = step(n); n != nil; n = step(n) {
			if !accept(n) {
				continue
			}
			key := dirKey{node: n, context: mc.context, done: done}
			if cached, ok := mc.run.dirs[key]; ok {
				if entry != nil {
					entry.matched = cached.matched
				}
				return cached.matched, nil
			}
			if entry == nil {
				entry = &dirEntry{}
			}
			mc.run.dirs[key] = entry

			ok, err := next(n, mc)
			if err != nil {
				return false, err
			}
			if ok {
				entry.matched = true
				return true, nil
			}
		}
		return false, nil
	}
}

// and tests matchers from last to first; the right-most tokens of a
// compound are the cheapest to reject.
func and(matchers []elementMatcher) elementMatcher {
	if len(matchers) == 1 {
		return matchers[0]
	}
	ms := slices.Clone(matchers)
	return func(n dom.Node, mc *matchContext) (bool, error) {
		for i := len(ms) - 1; i >= 0; i-- {
			ok, err := ms[i](n, mc)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}
}

// isContext is the anchor of leading combinators. Without a context node
// the anchor is the root of the tree.
func isContext(n dom.Node, mc *matchContext) (bool, error) {
	if mc.context == nil {
		return n.Parent() == nil, nil
	}
	return n == mc.context, nil
}

// inContext keeps the left-most compound of a group inside an element
// context.
func inContext(n dom.Node, mc *matchContext) (bool, error) {
	if !dom.IsElement(mc.context) {
		return true, nil
	}
	return dom.Contains(mc.context, n), nil
}
