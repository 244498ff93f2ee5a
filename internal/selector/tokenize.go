package selector

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	whitespace = `[\x20\t\r\n\f]`
	identifier = `(?:\\[\da-fA-F]{1,6}` + whitespace + `?|\\[^\r\n\f]|[\w-]|[^\x00-\x7f])+`
	attributes = `\[` + whitespace + `*(` + identifier + `)(?:` + whitespace +
		`*([*^$|!~]?=)` + whitespace +
		`*(?:'((?:\\.|[^\\'])*)'|"((?:\\.|[^\\"])*)"|(` + identifier + `))|)` + whitespace + `*\]`
	pseudos = `:(` + identifier + `)(?:\((` +
		`('((?:\\.|[^\\'])*)'|"((?:\\.|[^\\"])*)")|` +
		`((?:\\.|[^\\()[\]]|` + attributes + `)*)|` +
		`.*` +
		`)\)|)`
)

var (
	rcomma       = regexp.MustCompile(`^` + whitespace + `*,` + whitespace + `*`)
	rcombinators = regexp.MustCompile(`^` + whitespace + `*([>+~]|` + whitespace + `)` + whitespace + `*`)
	rwhitespace  = regexp.MustCompile(whitespace + `+`)
	rpseudo      = regexp.MustCompile(pseudos)
	ridentifier  = regexp.MustCompile(`^` + identifier + `$`)
	runescape    = regexp.MustCompile(`\\[\da-fA-F]{1,6}` + whitespace + `?|\\[^\r\n\f]`)
	rquickExpr   = regexp.MustCompile(`^(?:#([\w-]+)|(\w+)|\.([\w-]+))$`)
)

// grammar is tried in order at every position; the first match wins.
var grammar = []struct {
	kind Kind
	re   *regexp.Regexp
}{
	{KindTag, regexp.MustCompile(`^(` + identifier + `|[*])`)},
	{KindClass, regexp.MustCompile(`^\.(` + identifier + `)`)},
	{KindAttr, regexp.MustCompile(`^` + attributes)},
	{KindChild, regexp.MustCompile(`(?i)^:(only|first|last|nth|nth-last)-(child|of-type)(?:\(` +
		whitespace + `*(even|odd|(([+-]|)(\d*)n|)` + whitespace + `*(?:([+-]|)` + whitespace +
		`*(\d+)|))` + whitespace + `*\)|)`)},
	{KindPseudo, regexp.MustCompile(`^` + pseudos)},
	{KindID, regexp.MustCompile(`^#(` + identifier + `)`)},
}

// Tokenize splits selector into groups of tokens. The result is cached by
// selector text; callers receive a copy they may modify.
func (e *Engine) Tokenize(selector string) (Groups, error) {
	groups, err := e.tokenize(selector)
	if err != nil {
		return nil, err
	}
	return groups.clone(), nil
}

func (e *Engine) tokenize(selector string) (Groups, error) {
	selector = trimSelector(selector)
	if cached, ok := e.tokens.Get(selector); ok {
		return cached, nil
	}
	if selector == "" {
		return nil, syntaxError(selector, "empty selector")
	}

	groups, rest, err := e.scan(selector)
	if err != nil {
		return nil, err
	}
	if rest != "" {
		return nil, syntaxError(selector, "unexpected %q at offset %d", rest, len(selector)-len(rest))
	}
	if err := validate(selector, groups); err != nil {
		return nil, err
	}

	e.tokens.Add(selector, groups)
	return groups, nil
}

// measure returns how many trailing bytes of selector could not be tokenized.
func (e *Engine) measure(selector string) (int, error) {
	_, rest, err := e.scan(selector)
	if err != nil {
		return 0, err
	}
	return len(rest), nil
}

func (e *Engine) scan(selector string) (Groups, string, error) {
	var (
		groups Groups
		group  Group
		rest   = selector
	)

	for rest != "" {
		if group != nil {
			if m := rcomma.FindString(rest); m != "" {
				// a trailing comma is left unconsumed
				if len(m) == len(rest) {
					break
				}
				groups = append(groups, group)
				group = Group{}
				rest = rest[len(m):]
			}
		} else {
			group = Group{}
		}

		if m := rcombinators.FindStringSubmatch(rest); m != nil {
			comb := m[1]
			if rwhitespace.MatchString(comb) {
				comb = " "
			}
			group = append(group, Token{Kind: KindCombinator, Value: m[0], Captures: []string{comb}})
			rest = rest[len(m[0]):]
			continue
		}

		tok, ok, err := e.next(rest)
		if errors.Is(err, ErrSyntax) {
			return nil, rest, err
		}
		if err != nil {
			return nil, rest, syntaxError(selector, "%v", err)
		}
		if !ok {
			break
		}
		group = append(group, tok)
		rest = rest[len(tok.Value):]
	}

	if group != nil {
		groups = append(groups, group)
	}
	return groups, rest, nil
}

// next recognizes the token at the start of s.
func (e *Engine) next(s string) (Token, bool, error) {
	for _, g := range grammar {
		loc := g.re.FindStringSubmatchIndex(s)
		if loc == nil {
			continue
		}
		tok, ok, err := e.prefilter(g.kind, s, loc)
		if err != nil {
			return Token{}, false, err
		}
		if ok {
			return tok, true, nil
		}
	}
	return Token{}, false, nil
}

func validate(selector string, groups Groups) error {
	for _, g := range groups {
		if len(g) == 0 {
			return syntaxError(selector, "empty group")
		}
		for i, t := range g {
			if t.Kind != KindCombinator {
				continue
			}
			if i == len(g)-1 {
				return syntaxError(selector, "dangling combinator %q", t.combinator())
			}
			if g[i+1].Kind == KindCombinator {
				return syntaxError(selector, "consecutive combinators")
			}
		}
	}
	return nil
}

// trimSelector removes leading whitespace and trailing unescaped whitespace.
func trimSelector(s string) string {
	s = strings.TrimLeft(s, "\x20\t\r\n\f")
	end := len(s)
	for end > 0 && strings.IndexByte("\x20\t\r\n\f", s[end-1]) >= 0 {
		end--
	}
	if end < len(s) {
		// an odd run of backslashes escapes the first trailing space
		slashes := 0
		for i := end - 1; i >= 0 && s[i] == '\\'; i-- {
			slashes++
		}
		if slashes%2 == 1 {
			end++
		}
	}
	return s[:end]
}

// unescape resolves CSS escapes: hex code points and escaped characters.
func unescape(s string) string {
	if strings.IndexByte(s, '\\') < 0 {
		return s
	}
	return runescape.ReplaceAllStringFunc(s, func(esc string) string {
		body := strings.TrimRight(esc[1:], "\x20\t\r\n\f")
		if body == "" {
			// escaped whitespace
			return esc[1:]
		}
		if !isHex(body) {
			return body
		}
		cp, err := strconv.ParseUint(body, 16, 32)
		r := rune(cp)
		if err != nil || cp == 0 || !utf8.ValidRune(r) {
			return string(utf8.RuneError)
		}
		return string(r)
	})
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return false
		}
	}
	return true
}
