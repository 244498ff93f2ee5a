package selector

import (
	"fmt"
	"strconv"
	"strings"
)

// submatches reads the groups of a FindStringSubmatchIndex result.
type submatches struct {
	s   string
	loc []int
}

func (m submatches) has(i int) bool {
	return 2*i < len(m.loc) && m.loc[2*i] >= 0
}

func (m submatches) get(i int) string {
	if !m.has(i) {
		return ""
	}
	return m.s[m.loc[2*i]:m.loc[2*i+1]]
}

// prefilter normalizes a freshly matched token. It returns false when the
// match must be ignored.
func (e *Engine) prefilter(kind Kind, s string, loc []int) (Token, bool, error) {
	m := submatches{s: s, loc: loc}
	tok := Token{Kind: kind, Value: m.get(0)}

	switch kind {
	case KindAttr:
		tok.Captures = prefilterAttr(m)
	case KindChild:
		captures, err := prefilterChild(m)
		if err != nil {
			return Token{}, false, err
		}
		tok.Captures = captures
	case KindPseudo:
		value, captures, err := e.prefilterPseudo(m)
		if err != nil {
			return Token{}, false, err
		}
		tok.Value, tok.Captures = value, captures
	default:
		tok.Captures = []string{m.get(1)}
	}
	return tok, true, nil
}

func prefilterAttr(m submatches) []string {
	name := unescape(m.get(1))
	op := m.get(2)

	var value string
	switch {
	case m.has(3):
		value = m.get(3)
	case m.has(4):
		value = m.get(4)
	default:
		value = m.get(5)
	}
	value = unescape(value)

	if op == "~=" {
		value = " " + value + " "
	}
	return []string{name, op, value}
}

func prefilterChild(m submatches) ([]string, error) {
	typ := strings.ToLower(m.get(1))
	what := strings.ToLower(m.get(2))
	arg := strings.ToLower(m.get(3))

	if !strings.HasPrefix(typ, "nth") {
		if arg != "" {
			return nil, fmt.Errorf(":%s-%s takes no argument", typ, what)
		}
		return []string{typ, what, "", "", ""}, nil
	}

	if arg == "" {
		return nil, fmt.Errorf(":%s-%s requires an argument", typ, what)
	}

	a := 0
	switch {
	case m.get(4) != "":
		digits := m.get(6)
		if digits == "" {
			digits = "1"
		}
		n, err := strconv.Atoi(m.get(5) + digits)
		if err != nil {
			return nil, fmt.Errorf("invalid :%s-%s argument %q", typ, what, arg)
		}
		a = n
	case arg == "even" || arg == "odd":
		a = 2
	}

	b := 0
	switch {
	case m.get(8) != "":
		n, err := strconv.Atoi(m.get(7) + m.get(8))
		if err != nil {
			return nil, fmt.Errorf("invalid :%s-%s argument %q", typ, what, arg)
		}
		b = n
	case arg == "odd":
		b = 1
	}

	return []string{typ, what, arg, strconv.Itoa(a), strconv.Itoa(b)}, nil
}

// prefilterPseudo extracts the pseudo argument. Unquoted arguments holding
// nested pseudos are measured with the tokenizer so the argument ends at its
// own closing parenthesis.
func (e *Engine) prefilterPseudo(m submatches) (string, []string, error) {
	value := m.get(0)
	name := m.get(1)
	if !m.has(2) {
		return value, []string{name}, nil
	}

	arg := m.get(2)
	switch {
	case m.has(3):
		if m.has(4) {
			arg = m.get(4)
		} else {
			arg = m.get(5)
		}
	case !m.has(6) && rpseudo.MatchString(arg):
		excess, err := e.measure(arg)
		if err != nil {
			return "", nil, err
		}
		if excess > 0 {
			start := len(arg) - excess
			if i := strings.IndexByte(arg[start:], ')'); i >= 0 {
				cut := start + i
				value = value[:len(value)-(len(arg)-cut)]
				arg = arg[:cut]
			}
		}
	}
	return value, []string{name, arg}, nil
}
