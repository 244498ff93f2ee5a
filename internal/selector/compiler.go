package selector

import (
	"slices"
)

// universal stands in for the missing compound after a trailing combinator.
var universal = Token{Kind: KindTag, Value: "*", Captures: []string{"*"}}

// compile tokenizes and compiles selector. The result is cached by the
// trimmed selector text.
func (e *Engine) compile(selector string) (*compiled, error) {
	selector = trimSelector(selector)
	if c, ok := e.compiled.Get(selector); ok {
		return c, nil
	}
	gen := e.gen.Load()

	groups, err := e.tokenize(selector)
	if err != nil {
		return nil, err
	}

	c := &compiled{selector: selector}
	for _, tokens := range groups {
		g, err := e.compileGroup(selector, tokens)
		if err != nil {
			return nil, err
		}
		c.groups = append(c.groups, g)
	}

	if len(c.groups) == 1 {
		tokens := groups[0]
		if len(tokens) > 2 && tokens[0].Kind == KindID && tokens[1].Kind == KindCombinator {
			suffix, err := e.compileGroup(selector, tokens[1:])
			if err != nil {
				return nil, err
			}
			c.groups[0].idSuffix = suffix
		}
	}

	e.cache(selector, c, gen)
	return c, nil
}

// compileGroup compiles one comma separated alternative. Tokens are read
// left to right; each combinator wraps everything accumulated so far. The
// first set filter splits the group into a set plan.
func (e *Engine) compileGroup(selector string, tokens Group) (*compiledGroup, error) {
	g := &compiledGroup{tokens: tokens}

	i := 0
	var matchers []elementMatcher
	if tokens[0].Kind == KindCombinator {
		g.leading = tokens[0].combinator()
		matchers = append(matchers, e.link(g.leading, isContext, true))
		i = 1
	} else {
		matchers = append(matchers, inContext)
	}

	for ; i < len(tokens); i++ {
		tok := tokens[i]
		if tok.Kind == KindCombinator {
			matchers = []elementMatcher{e.link(tok.combinator(), and(matchers), false)}
			continue
		}

		f, err := e.filterFor(selector, tok)
		if err != nil {
			return nil, err
		}
		if f.set != nil {
			plan, err := e.compileSet(selector, tokens, i, f.set)
			if err != nil {
				return nil, err
			}
			g.set = plan
			return g, nil
		}
		matchers = append(matchers, f.match)
	}

	g.match = and(matchers)
	if g.leading == "" {
		g.find = findToken(tokens)
	}
	return g, nil
}

// compileSet splits tokens around the set filter at index i:
//
//	outer   tokens[:i], completed with * after a trailing combinator
//	post    the rest of the compound holding the set filter
//	finder  everything from the next combinator on
func (e *Engine) compileSet(selector string, tokens Group, i int, set setFilter) (*setPlan, error) {
	j := i + 1
	for j < len(tokens) && tokens[j].Kind != KindCombinator {
		j++
	}

	plan := &setPlan{filter: set}
	var err error

	if i > 0 {
		outer := slices.Clone(tokens[:i])
		if outer[i-1].Kind == KindCombinator {
			outer = append(outer, universal)
		}
		if plan.outer, err = e.compileGroup(selector, outer); err != nil {
			return nil, err
		}
	}
	if i+1 < j {
		if plan.post, err = e.compileGroup(selector, tokens[i+1:j]); err != nil {
			return nil, err
		}
	}
	if j < len(tokens) {
		if plan.finder, err = e.compileGroup(selector, tokens[j:]); err != nil {
			return nil, err
		}
	}
	return plan, nil
}

// findToken returns the right-most ID, CLASS or TAG token of the last
// compound, the cheapest way to collect candidates for the group.
func findToken(tokens Group) *Token {
	for i := len(tokens) - 1; i >= 0; i-- {
		switch tokens[i].Kind {
		case KindCombinator:
			return nil
		case KindID, KindClass, KindTag:
			t := tokens[i]
			return &t
		}
	}
	return nil
}
