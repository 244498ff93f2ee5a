package selector

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/jacoelho/sift/internal/dom"
)

func TestRegisterPseudo(t *testing.T) {
	t.Parallel()
	doc := fixture(t)

	e := New()
	if _, err := e.Query("a:host(example.com)", doc, nil); !errors.Is(err, ErrUnsupportedPseudo) {
		t.Fatalf("Query(unregistered) error = %v, want ErrUnsupportedPseudo", err)
	}

	e.RegisterPseudo("Host", func(arg string) (Predicate, error) {
		return func(n dom.Node) (bool, error) {
			href, _ := n.Attr("href")
			return strings.Contains(href, "//"+arg+"/"), nil
		}, nil
	})

	got, err := e.Query("a:host(example.com)", doc, nil)
	if err != nil {
		t.Fatalf("Query(:host) error = %v", err)
	}
	if !slices.Equal(labels(got), []string{"a2"}) {
		t.Errorf("Query(:host) = %v, want [a2]", labels(got))
	}
}

func TestRegisterPseudoShadowsBuiltin(t *testing.T) {
	t.Parallel()
	doc := fixture(t)

	e := New()
	got, err := e.Query("li:empty", doc, nil)
	if err != nil || len(got) != 3 {
		t.Fatalf("Query(li:empty) = %v, %v, want 3 nodes", labels(got), err)
	}

	e.RegisterPseudo("empty", func(string) (Predicate, error) {
		return func(dom.Node) (bool, error) { return false, nil }, nil
	})

	got, err = e.Query("li:empty", doc, nil)
	if err != nil {
		t.Fatalf("Query(li:empty) error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Query(li:empty) after register = %v, want none", labels(got))
	}
}

func TestPseudoErrors(t *testing.T) {
	t.Parallel()
	doc := fixture(t)
	errBoom := errors.New("boom")

	e := New()
	e.RegisterPseudo("boom", func(string) (Predicate, error) {
		return func(dom.Node) (bool, error) { return false, errBoom }, nil
	})
	e.RegisterPseudo("needs-arg", func(arg string) (Predicate, error) {
		if arg == "" {
			return nil, fmt.Errorf("argument required")
		}
		return func(dom.Node) (bool, error) { return true, nil }, nil
	})

	_, err := e.Query("li:boom", doc, nil)
	if !errors.Is(err, ErrPredicate) || !errors.Is(err, errBoom) {
		t.Errorf("Query(:boom) error = %v, want ErrPredicate wrapping boom", err)
	}

	_, err = e.Query("li:needs-arg", doc, nil)
	if !errors.Is(err, ErrSyntax) {
		t.Errorf("Query(:needs-arg) error = %v, want ErrSyntax", err)
	}

	got, err := e.Query("li:needs-arg(x)", doc, nil)
	if err != nil || len(got) != 5 {
		t.Errorf("Query(:needs-arg(x)) = %v, %v, want 5 nodes", labels(got), err)
	}
}

// nativeNode answers MatchesSelector itself and counts the calls.
type nativeNode struct {
	dom.Node
	answer bool
	err    error
	calls  *int
}

func (n nativeNode) MatchesSelector(string) (bool, error) {
	*n.calls++
	return n.answer, n.err
}

func TestMatchesSelector(t *testing.T) {
	t.Parallel()
	doc := fixture(t)
	a3 := byID(t, doc, "a3")

	e := New()
	tests := []struct {
		selector string
		want     bool
	}{
		{"a", true},
		{"li > a", true},
		{"li:first > a", true},
		{"li:last > a", false},
		{"p a", false},
		{"a:not([href^='#'])", false},
	}
	for _, tt := range tests {
		got, err := e.MatchesSelector(a3, tt.selector)
		if err != nil {
			t.Fatalf("MatchesSelector(%q) error = %v", tt.selector, err)
		}
		if got != tt.want {
			t.Errorf("MatchesSelector(%q) = %v, want %v", tt.selector, got, tt.want)
		}
	}

	if _, err := e.MatchesSelector(a3, "a["); !errors.Is(err, ErrSyntax) {
		t.Errorf("MatchesSelector(malformed) error = %v, want ErrSyntax", err)
	}
	if got, err := e.MatchesSelector(a3.FirstChild(), "*"); got || err != nil {
		t.Errorf("MatchesSelector(text) = %v, %v, want false, nil", got, err)
	}
}

func TestMatchesSelectorNative(t *testing.T) {
	t.Parallel()
	doc := fixture(t)
	a3 := byID(t, doc, "a3")

	e := New()

	calls := 0
	native := nativeNode{Node: a3, answer: true, calls: &calls}
	got, err := e.MatchesSelector(native, "p a")
	if err != nil || !got {
		t.Errorf("MatchesSelector(native) = %v, %v, want native answer true", got, err)
	}

	calls = 0
	failing := nativeNode{Node: a3, err: errors.New("unsupported"), calls: &calls}
	for range 2 {
		got, err = e.MatchesSelector(failing, "li > a:first-child")
		if err != nil || !got {
			t.Errorf("MatchesSelector(fallback) = %v, %v, want true, nil", got, err)
		}
	}
	if calls != 1 {
		t.Errorf("native calls = %d, want 1 after the selector is marked non native", calls)
	}
}

func TestMatches(t *testing.T) {
	t.Parallel()
	doc := fixture(t)
	nodes, err := New().Query("li, a", doc, nil)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	got, err := New().Matches(".odd, [href='#x']", nodes)
	if err != nil {
		t.Fatalf("Matches() error = %v", err)
	}
	// nodes are in document order: a1 a2 li1 a3 li2 a4 li3 li4 li5
	if want := []string{"a3", "li2", "li4"}; !slices.Equal(labels(got), want) {
		t.Errorf("Matches() = %v, want %v", labels(got), want)
	}

	got, err = New().Matches("li", nil)
	if err != nil || got != nil {
		t.Errorf("Matches(nil) = %v, %v, want nil, nil", got, err)
	}
}

func TestCompile(t *testing.T) {
	t.Parallel()
	doc := fixture(t)
	e := New()

	s, err := e.Compile("  ul > li:nth-child(odd) ")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if s.String() != "ul > li:nth-child(odd)" {
		t.Errorf("String() = %q", s.String())
	}

	got, err := s.Select(doc)
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if want := []string{"li1", "li3", "li5"}; !slices.Equal(labels(got), want) {
		t.Errorf("Select() = %v, want %v", labels(got), want)
	}

	ok, err := s.Match(byID(t, doc, "li3"))
	if err != nil || !ok {
		t.Errorf("Match(li3) = %v, %v, want true", ok, err)
	}
	ok, err = s.Match(byID(t, doc, "li2"))
	if err != nil || ok {
		t.Errorf("Match(li2) = %v, %v, want false", ok, err)
	}

	if _, err := s.Select(nil); !errors.Is(err, ErrNoContext) {
		t.Errorf("Select(nil) error = %v, want ErrNoContext", err)
	}

	if _, err := e.Compile("li:"); !errors.Is(err, ErrSyntax) {
		t.Errorf("Compile(malformed) error = %v, want ErrSyntax", err)
	}

	defer func() {
		if recover() == nil {
			t.Errorf("MustCompile(malformed) did not panic")
		}
	}()
	e.MustCompile("[")
}

func TestTokenize(t *testing.T) {
	t.Parallel()
	e := New()

	groups, err := e.Tokenize("div.a > p[title~=x], :not(a)")
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}

	var kinds [][]Kind
	for _, g := range groups {
		var ks []Kind
		for _, tok := range g {
			ks = append(ks, tok.Kind)
		}
		kinds = append(kinds, ks)
	}
	want := [][]Kind{
		{KindTag, KindClass, KindCombinator, KindTag, KindAttr},
		{KindPseudo},
	}
	if !slices.EqualFunc(kinds, want, func(a, b []Kind) bool { return slices.Equal(a, b) }) {
		t.Fatalf("Tokenize() kinds = %v, want %v", kinds, want)
	}

	if got := groups[0][2].Captures; !slices.Equal(got, []string{">"}) {
		t.Errorf("combinator captures = %q, want [>]", got)
	}
	if got := groups[0][4].Captures; !slices.Equal(got, []string{"title", "~=", " x "}) {
		t.Errorf("attribute captures = %q", got)
	}
	if got := groups[1][0].Captures; !slices.Equal(got, []string{"not", "a"}) {
		t.Errorf("pseudo captures = %q", got)
	}

	// callers own their copy
	groups[0][0].Captures[0] = "span"
	again, err := e.Tokenize("div.a > p[title~=x], :not(a)")
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}
	if again[0][0].Captures[0] != "div" {
		t.Errorf("cached tokens were modified: %q", again[0][0].Captures[0])
	}
}

func TestTokenizeNested(t *testing.T) {
	t.Parallel()

	tests := []struct {
		selector string
		value    string
		arg      string
	}{
		{":not(:has(a)) > b", ":not(:has(a))", ":has(a)"},
		{":not(:has(a)) > b:eq(1)", ":not(:has(a))", ":has(a)"},
		{`:contains("a)b")`, `:contains("a)b")`, "a)b"},
		{":nth-child(2n+1)", ":nth-child(2n+1)", "2n+1"},
	}

	e := New()
	for _, tt := range tests {
		groups, err := e.Tokenize(tt.selector)
		if err != nil {
			t.Fatalf("Tokenize(%q) error = %v", tt.selector, err)
		}
		tok := groups[0][0]
		if tok.Value != tt.value {
			t.Errorf("Tokenize(%q) first value = %q, want %q", tt.selector, tok.Value, tt.value)
		}
		var arg string
		switch tok.Kind {
		case KindChild:
			arg = tok.Captures[2]
		default:
			arg = tok.Captures[1]
		}
		if arg != tt.arg {
			t.Errorf("Tokenize(%q) argument = %q, want %q", tt.selector, arg, tt.arg)
		}
	}
}

func TestUnescape(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{`plain`, "plain"},
		{`a\.b`, "a.b"},
		{`\31 23`, "123"},
		{`\000041`, "A"},
		{`\0`, "\uFFFD"},
		{`\D800`, "\uFFFD"},
		{`\110000`, "\uFFFD"},
	}
	for _, tt := range tests {
		if got := unescape(tt.in); got != tt.want {
			t.Errorf("unescape(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCacheSize(t *testing.T) {
	t.Parallel()
	doc := fixture(t)

	e := New(WithCacheSize(2))
	for _, sel := range []string{"div p", "ul li", "p a", "li > a"} {
		if _, err := e.Query(sel, doc, nil); err != nil {
			t.Fatalf("Query(%q) error = %v", sel, err)
		}
	}
	tokens, compiled := e.CacheStats()
	if tokens != 2 || compiled != 2 {
		t.Errorf("CacheStats() = %d, %d, want 2, 2", tokens, compiled)
	}
}

func TestConcurrentQueries(t *testing.T) {
	t.Parallel()
	doc := fixture(t)

	e := New()
	selectors := map[string][]string{
		"li:nth-child(2n+1)":     {"li1", "li3", "li5"},
		"div p":                  {"p1", "p2", "p3"},
		"h1 ~ p":                 {"p1", "p2"},
		"li:gt(0):lt(2)":         {"li2", "li3"},
		"a:not(li > a)":          {"a1", "a2"},
		"div:has(> p), #list li": {"main", "inner", "li1", "li2", "li3", "li4", "li5"},
		"p:first-of-type":        {"p1", "p3"},
	}

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 20 {
				for sel, want := range selectors {
					got, err := e.Query(sel, doc, nil)
					if err != nil {
						t.Errorf("worker %d: Query(%q) error = %v", i, sel, err)
						return
					}
					if !slices.Equal(labels(got), want) {
						t.Errorf("worker %d: Query(%q) = %v, want %v", i, sel, labels(got), want)
						return
					}
				}
			}
		}()
	}
	wg.Wait()
}

func TestRegisterPseudoDuringQueries(t *testing.T) {
	t.Parallel()
	doc := fixture(t)

	withID := func(id string) PseudoFactory {
		return func(string) (Predicate, error) {
			return func(n dom.Node) (bool, error) {
				v, _ := n.Attr("id")
				return v == id, nil
			}, nil
		}
	}

	e := New()
	e.RegisterPseudo("picked", withID("p1"))

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				if _, err := e.Query("p:picked", doc, nil); err != nil {
					t.Errorf("worker %d: Query() error = %v", i, err)
					return
				}
			}
		}()
	}

	for range 50 {
		e.RegisterPseudo("picked", withID("p1"))
	}
	e.RegisterPseudo("picked", withID("p2"))
	close(stop)
	wg.Wait()

	got, err := e.Query("p:picked", doc, nil)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if want := []string{"p2"}; !slices.Equal(labels(got), want) {
		t.Errorf("Query() after re-register = %v, want %v", labels(got), want)
	}
}

func TestDefaultEngine(t *testing.T) {
	t.Parallel()
	doc := fixture(t)

	got, err := Query("#list > li:last", doc, nil)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if !slices.Equal(labels(got), []string{"li5"}) {
		t.Errorf("Query() = %v, want [li5]", labels(got))
	}

	ok, err := MatchesSelector(got[0], "ul li")
	if err != nil || !ok {
		t.Errorf("MatchesSelector() = %v, %v, want true", ok, err)
	}

	filtered, err := Matches(".odd", []dom.Node{byID(t, doc, "li4"), got[0]})
	if err != nil || !slices.Equal(labels(filtered), []string{"li4"}) {
		t.Errorf("Matches() = %v, %v, want [li4]", labels(filtered), err)
	}

	s := MustCompile("li:first")
	if s.String() != "li:first" {
		t.Errorf("MustCompile().String() = %q", s.String())
	}
}
