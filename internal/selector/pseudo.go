package selector

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jacoelho/sift/internal/dom"
)

var (
	rheader = regexp.MustCompile(`(?i)^h\d$`)
	rinputs = regexp.MustCompile(`(?i)^(?:input|select|textarea|button)$`)
)

// simplePseudos take no argument and test a single element.
var simplePseudos = map[string]func(dom.Node) bool{
	"empty":    isEmpty,
	"parent":   func(n dom.Node) bool { return !isEmpty(n) },
	"header":   func(n dom.Node) bool { return rheader.MatchString(n.Tag()) },
	"input":    func(n dom.Node) bool { return rinputs.MatchString(n.Tag()) },
	"button":   isButton,
	"text":     isTextInput,
	"radio":    inputType("radio"),
	"checkbox": inputType("checkbox"),
	"file":     inputType("file"),
	"password": inputType("password"),
	"image":    inputType("image"),
	"submit":   buttonType("submit"),
	"reset":    buttonType("reset"),
	"enabled":  func(n dom.Node) bool { return disableable(n) && !isDisabled(n) },
	"disabled": func(n dom.Node) bool { return disableable(n) && isDisabled(n) },
	"checked":  isChecked,
	"selected": isSelected,
	"root":     isRoot,
	"focus":    hasFocus,
}

// pseudoFilter compiles a pseudo-class token. Registered pseudo-classes
// shadow the built-in ones.
func (e *Engine) pseudoFilter(selector string, tok Token) (filter, error) {
	name := strings.ToLower(unescape(tok.Captures[0]))
	hasArg := len(tok.Captures) > 1
	var arg string
	if hasArg {
		arg = tok.Captures[1]
	}

	if factory, ok := e.customPseudo(name); ok {
		return customFilter(selector, name, arg, factory)
	}

	requireArg := func() error {
		if !hasArg {
			return syntaxError(selector, ":%s requires an argument", name)
		}
		return nil
	}
	noArg := func() error {
		if hasArg {
			return syntaxError(selector, ":%s takes no argument", name)
		}
		return nil
	}

	switch name {
	case "not":
		if err := requireArg(); err != nil {
			return filter{}, err
		}
		return e.notFilter(arg)
	case "has":
		if err := requireArg(); err != nil {
			return filter{}, err
		}
		return e.hasFilter(arg)
	case "contains":
		if err := requireArg(); err != nil {
			return filter{}, err
		}
		text := unescape(arg)
		return filter{match: func(n dom.Node, _ *matchContext) (bool, error) {
			return strings.Contains(dom.Text(n), text), nil
		}}, nil
	case "lang":
		if err := requireArg(); err != nil {
			return filter{}, err
		}
		if !ridentifier.MatchString(arg) {
			return filter{}, syntaxError(selector, "unsupported lang %q", arg)
		}
		return filter{match: langFilter(strings.ToLower(unescape(arg)))}, nil
	case "target":
		if err := noArg(); err != nil {
			return filter{}, err
		}
		target := e.target
		return filter{match: func(n dom.Node, _ *matchContext) (bool, error) {
			id, ok := n.Attr("id")
			return target != "" && ok && id == target, nil
		}}, nil
	case "first", "last", "even", "odd":
		if err := noArg(); err != nil {
			return filter{}, err
		}
		return filter{set: positional(name, 0)}, nil
	case "eq", "nth", "lt", "gt":
		if err := requireArg(); err != nil {
			return filter{}, err
		}
		i, err := strconv.Atoi(strings.TrimSpace(arg))
		if err != nil {
			return filter{}, syntaxError(selector, "invalid :%s index %q", name, arg)
		}
		return filter{set: positional(name, i)}, nil
	}

	if fn, ok := simplePseudos[name]; ok {
		if err := noArg(); err != nil {
			return filter{}, err
		}
		return filter{match: func(n dom.Node, _ *matchContext) (bool, error) {
			return fn(n), nil
		}}, nil
	}
	return filter{}, unsupportedPseudo(name)
}

func customFilter(selector, name, arg string, factory PseudoFactory) (filter, error) {
	pred, err := factory(arg)
	if err != nil {
		return filter{}, fmt.Errorf("%w: :%s: %w in %q", ErrSyntax, name, err, selector)
	}
	if pred == nil {
		return filter{}, syntaxError(selector, ":%s has no predicate", name)
	}
	return filter{match: func(n dom.Node, _ *matchContext) (bool, error) {
		ok, err := pred(n)
		if err != nil {
			return false, predicateError(name, err)
		}
		return ok, nil
	}}, nil
}

// notFilter negates arg. Selectors made of element matchers are negated
// node by node; selectors with positional pseudo-classes are run over the
// candidate set and their result removed from it.
func (e *Engine) notFilter(arg string) (filter, error) {
	inner, err := e.compile(arg)
	if err != nil {
		return filter{}, err
	}

	if inner.elementOnly() {
		return filter{match: func(n dom.Node, mc *matchContext) (bool, error) {
			sub := mc.withContext(nil)
			for _, g := range inner.groups {
				ok, err := g.match(n, sub)
				if err != nil {
					return false, err
				}
				if ok {
					return false, nil
				}
			}
			return true, nil
		}}, nil
	}

	return filter{set: func(candidates []dom.Node, mc *matchContext) ([]dom.Node, error) {
		if len(candidates) == 0 {
			return nil, nil
		}
		matched, err := e.execute(inner, nil, candidates, mc.xml)
		if err != nil {
			return nil, err
		}
		drop := make(map[dom.Node]struct{}, len(matched))
		for _, n := range matched {
			drop[n] = struct{}{}
		}
		kept := make([]dom.Node, 0, len(candidates))
		for _, n := range candidates {
			if _, ok := drop[n]; !ok {
				kept = append(kept, n)
			}
		}
		return kept, nil
	}}, nil
}

// hasFilter runs arg as a query rooted at the candidate.
func (e *Engine) hasFilter(arg string) (filter, error) {
	inner, err := e.compile(arg)
	if err != nil {
		return filter{}, err
	}
	return filter{match: func(n dom.Node, mc *matchContext) (bool, error) {
		found, err := e.execute(inner, n, nil, mc.xml)
		if err != nil {
			return false, err
		}
		return len(found) > 0, nil
	}}, nil
}

// langFilter matches the closest non empty language declaration.
func langFilter(lang string) elementMatcher {
	return func(n dom.Node, mc *matchContext) (bool, error) {
		for ; dom.IsElement(n); n = n.Parent() {
			v := elementLang(n, mc.xml)
			if v == "" {
				continue
			}
			v = strings.ToLower(v)
			return v == lang || strings.HasPrefix(v, lang+"-"), nil
		}
		return false, nil
	}
}

func elementLang(n dom.Node, xml bool) string {
	if xml {
		if v, ok := n.Attr("xml:lang"); ok && v != "" {
			return v
		}
	}
	v, _ := n.Attr("lang")
	return v
}

// positional returns the set filter of the index based pseudo-classes. Kept
// nodes stay in candidate order.
func positional(name string, arg int) setFilter {
	return func(candidates []dom.Node, _ *matchContext) ([]dom.Node, error) {
		keep := make([]bool, len(candidates))
		for _, i := range positions(name, arg, len(candidates)) {
			if i >= 0 && i < len(candidates) {
				keep[i] = true
			}
		}
		var out []dom.Node
		for i, n := range candidates {
			if keep[i] {
				out = append(out, n)
			}
		}
		return out, nil
	}
}

func positions(name string, arg, length int) []int {
	if length == 0 {
		return nil
	}
	switch name {
	case "first":
		return []int{0}
	case "last":
		return []int{length - 1}
	case "eq", "nth":
		if arg < 0 {
			arg += length
		}
		return []int{arg}
	case "even", "odd":
		start := 0
		if name == "odd" {
			start = 1
		}
		var out []int
		for i := start; i < length; i += 2 {
			out = append(out, i)
		}
		return out
	case "lt":
		i := min(arg, length)
		if arg < 0 {
			i = arg + length
		}
		var out []int
		for i--; i >= 0; i-- {
			out = append(out, i)
		}
		return out
	case "gt":
		i := arg
		if arg < 0 {
			i = arg + length
		}
		var out []int
		for i = max(i+1, 0); i < length; i++ {
			out = append(out, i)
		}
		return out
	}
	return nil
}

func isEmpty(n dom.Node) bool {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if k := c.Kind(); k == dom.ElementNode || k == dom.TextNode {
			return false
		}
	}
	return true
}

func tagIs(n dom.Node, tag string) bool {
	return strings.EqualFold(n.Tag(), tag)
}

func typeIs(n dom.Node, typ string) bool {
	v, ok := n.Attr("type")
	return ok && strings.EqualFold(v, typ)
}

func inputType(typ string) func(dom.Node) bool {
	return func(n dom.Node) bool {
		return tagIs(n, "input") && typeIs(n, typ)
	}
}

// buttonType matches inputs and buttons of typ; buttons default to submit.
func buttonType(typ string) func(dom.Node) bool {
	return func(n dom.Node) bool {
		switch {
		case tagIs(n, "input"):
			return typeIs(n, typ)
		case tagIs(n, "button"):
			if _, ok := n.Attr("type"); !ok {
				return typ == "submit"
			}
			return typeIs(n, typ)
		}
		return false
	}
}

func isButton(n dom.Node) bool {
	return tagIs(n, "button") || tagIs(n, "input") && typeIs(n, "button")
}

func isTextInput(n dom.Node) bool {
	if !tagIs(n, "input") {
		return false
	}
	_, ok := n.Attr("type")
	return !ok || typeIs(n, "text")
}

func isChecked(n dom.Node) bool {
	if tagIs(n, "input") {
		_, ok := n.Attr("checked")
		return ok
	}
	return isSelected(n)
}

func isSelected(n dom.Node) bool {
	if !tagIs(n, "option") {
		return false
	}
	_, ok := n.Attr("selected")
	return ok
}

func isRoot(n dom.Node) bool {
	p := n.Parent()
	return p != nil && p.Kind() == dom.DocumentNode
}

func hasFocus(n dom.Node) bool {
	f, ok := n.(dom.Focuser)
	return ok && f.HasFocus()
}

func hasDisabledAttr(n dom.Node) bool {
	_, ok := n.Attr("disabled")
	return ok
}

// disableable reports whether n can be enabled or disabled.
func disableable(n dom.Node) bool {
	switch strings.ToLower(n.Tag()) {
	case "button", "fieldset", "input", "optgroup", "option", "select", "textarea":
		return true
	}
	return false
}

// isDisabled reports whether a disableable element is disabled. Disabled
// fieldsets disable their descendants except those of their first legend.
func isDisabled(n dom.Node) bool {
	if hasDisabledAttr(n) {
		return true
	}
	switch strings.ToLower(n.Tag()) {
	case "option":
		p := n.Parent()
		return p != nil && tagIs(p, "optgroup") && hasDisabledAttr(p)
	case "optgroup":
		return false
	}

	child := n
	for p := n.Parent(); dom.IsElement(p); child, p = p, p.Parent() {
		if !tagIs(p, "fieldset") || !hasDisabledAttr(p) {
			continue
		}
		if !tagIs(child, "legend") || firstLegend(p) != child {
			return true
		}
	}
	return false
}

func firstLegend(fieldset dom.Node) dom.Node {
	for c := fieldset.FirstChild(); c != nil; c = c.NextSibling() {
		if c.Kind() == dom.ElementNode && tagIs(c, "legend") {
			return c
		}
	}
	return nil
}
