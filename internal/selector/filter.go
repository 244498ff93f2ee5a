package selector

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jacoelho/sift/internal/dom"
)

// filterFor compiles a single non combinator token.
func (e *Engine) filterFor(selector string, tok Token) (filter, error) {
	switch tok.Kind {
	case KindTag:
		return filter{match: tagFilter(unescape(tok.Captures[0]))}, nil
	case KindClass:
		return filter{match: e.classFilter(unescape(tok.Captures[0]))}, nil
	case KindID:
		return filter{match: idFilter(unescape(tok.Captures[0]))}, nil
	case KindAttr:
		return filter{match: attrFilter(tok.Captures[0], tok.Captures[1], tok.Captures[2])}, nil
	case KindChild:
		m, err := childFilter(tok.Captures)
		if err != nil {
			return filter{}, syntaxError(selector, "%v", err)
		}
		return filter{match: m}, nil
	case KindPseudo:
		return e.pseudoFilter(selector, tok)
	}
	return filter{}, syntaxError(selector, "unexpected token %s", tok)
}

func matchAll(dom.Node, *matchContext) (bool, error) {
	return true, nil
}

func tagFilter(name string) elementMatcher {
	if name == "*" {
		return matchAll
	}
	return func(n dom.Node, _ *matchContext) (bool, error) {
		return strings.EqualFold(n.Tag(), name), nil
	}
}

func idFilter(id string) elementMatcher {
	return func(n dom.Node, _ *matchContext) (bool, error) {
		v, ok := n.Attr("id")
		return ok && v == id, nil
	}
}

// classPattern returns the cached pattern matching name as a whitespace
// separated word of a class attribute.
func (e *Engine) classPattern(name string) *regexp.Regexp {
	if re, ok := e.classes.Get(name); ok {
		return re
	}
	re := regexp.MustCompile(`(?:^|` + whitespace + `)` + regexp.QuoteMeta(name) + `(?:` + whitespace + `|$)`)
	e.classes.Add(name, re)
	return re
}

func (e *Engine) hasClass(n dom.Node, name string) bool {
	v, ok := n.Attr("class")
	return ok && e.classPattern(name).MatchString(v)
}

func (e *Engine) classFilter(name string) elementMatcher {
	re := e.classPattern(name)
	return func(n dom.Node, _ *matchContext) (bool, error) {
		v, ok := n.Attr("class")
		return ok && re.MatchString(v), nil
	}
}

// attrFilter matches attribute name against check with op. HTML attribute
// names are case insensitive and stored lower case by the parser.
func attrFilter(name, op, check string) elementMatcher {
	lower := strings.ToLower(name)
	return func(n dom.Node, mc *matchContext) (bool, error) {
		key := lower
		if mc.xml {
			key = name
		}
		value, ok := n.Attr(key)
		if !ok {
			return op == "!=", nil
		}
		return compareAttr(op, value, check), nil
	}
}

func compareAttr(op, value, check string) bool {
	switch op {
	case "":
		return true
	case "=":
		return value == check
	case "!=":
		return value != check
	case "^=":
		return check != "" && strings.HasPrefix(value, check)
	case "$=":
		return check != "" && strings.HasSuffix(value, check)
	case "*=":
		return check != "" && strings.Contains(value, check)
	case "~=":
		// check is padded with spaces by the pre-filter
		if strings.TrimSpace(check) == "" {
			return false
		}
		return strings.Contains(" "+rwhitespace.ReplaceAllString(value, " ")+" ", check)
	case "|=":
		return value == check || strings.HasPrefix(value, check+"-")
	}
	return false
}

// childFilter compiles the structural pseudo-classes from their captures
// [type, what, argument, a, b].
func childFilter(captures []string) (elementMatcher, error) {
	typ, what := captures[0], captures[1]
	ofType := what == "of-type"

	switch typ {
	case "first":
		return func(n dom.Node, _ *matchContext) (bool, error) {
			return sibling(n, prevSiblingOf, ofType) == nil, nil
		}, nil
	case "last":
		return func(n dom.Node, _ *matchContext) (bool, error) {
			return sibling(n, nextSiblingOf, ofType) == nil, nil
		}, nil
	case "only":
		return func(n dom.Node, _ *matchContext) (bool, error) {
			return sibling(n, prevSiblingOf, ofType) == nil && sibling(n, nextSiblingOf, ofType) == nil, nil
		}, nil
	}

	a, err := strconv.Atoi(captures[3])
	if err != nil {
		return nil, err
	}
	b, err := strconv.Atoi(captures[4])
	if err != nil {
		return nil, err
	}
	fromEnd := typ == "nth-last"

	return func(n dom.Node, mc *matchContext) (bool, error) {
		entry := mc.run.position(n, ofType)
		pos := entry.pos
		if fromEnd {
			pos = entry.count - entry.pos + 1
		}
		return nthMatch(pos, a, b), nil
	}, nil
}

func nextSiblingOf(n dom.Node) dom.Node { return n.NextSibling() }

// sibling returns the closest element reached by step, restricted to the
// tag of n when ofType is set.
func sibling(n dom.Node, step func(dom.Node) dom.Node, ofType bool) dom.Node {
	for s := step(n); s != nil; s = step(s) {
		if s.Kind() != dom.ElementNode {
			continue
		}
		if !ofType || strings.EqualFold(s.Tag(), n.Tag()) {
			return s
		}
	}
	return nil
}

// nthMatch reports whether the 1-based pos is a*k+b for some k >= 0.
func nthMatch(pos, a, b int) bool {
	diff := pos - b
	if a == 0 {
		return diff == 0
	}
	return diff%a == 0 && diff/a >= 0
}

// position returns the sibling position of n, indexing all element children
// of its parent on the first lookup.
func (r *run) position(n dom.Node, ofType bool) nthEntry {
	key := nthKey{node: n, ofType: ofType}
	if entry, ok := r.nth[key]; ok {
		return entry
	}

	parent := n.Parent()
	if parent == nil {
		return nthEntry{pos: 1, count: 1}
	}

	typeKey := func(c dom.Node) string {
		if ofType {
			return strings.ToLower(c.Tag())
		}
		return ""
	}

	counts := make(map[string]int)
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		if c.Kind() != dom.ElementNode {
			continue
		}
		k := typeKey(c)
		counts[k]++
		r.nth[nthKey{node: c, ofType: ofType}] = nthEntry{pos: counts[k]}
	}
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		if c.Kind() != dom.ElementNode {
			continue
		}
		ck := nthKey{node: c, ofType: ofType}
		entry := r.nth[ck]
		entry.count = counts[typeKey(c)]
		r.nth[ck] = entry
	}
	return r.nth[key]
}
