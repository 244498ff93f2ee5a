package selector

import (
	"regexp"
	"strings"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/jacoelho/sift/internal/dom"
)

// DefaultCacheSize is the capacity of each selector cache.
const DefaultCacheSize = 50

// Predicate tests a single element for a custom pseudo-class.
type Predicate func(n dom.Node) (bool, error)

// PseudoFactory builds the predicate of a custom pseudo-class from its
// argument; arg is empty when the pseudo is used without parentheses.
type PseudoFactory func(arg string) (Predicate, error)

// Engine compiles and runs selectors. The zero value is not usable; create
// engines with New. An Engine is safe for concurrent use.
type Engine struct {
	tokens    *lru.Cache[string, Groups]
	compiled  *lru.Cache[string, *compiled]
	classes   *lru.Cache[string, *regexp.Regexp]
	nonNative *lru.Cache[string, struct{}]

	// done numbers compiled combinators
	done atomic.Uint64

	target string

	// mu guards pseudos and orders registry changes against compiled
	// cache inserts; gen counts registry changes.
	mu      sync.RWMutex
	pseudos map[string]PseudoFactory
	gen     atomic.Uint64
}

// Option configures an Engine.
type Option func(*engineOptions)

type engineOptions struct {
	cacheSize int
	target    string
}

// WithCacheSize sets the capacity of the token, compiled matcher, class and
// non-native caches. Non positive sizes select DefaultCacheSize.
func WithCacheSize(size int) Option {
	return func(o *engineOptions) {
		o.cacheSize = size
	}
}

// WithTarget sets the location fragment matched by :target. A leading '#'
// is ignored.
func WithTarget(fragment string) Option {
	return func(o *engineOptions) {
		o.target = strings.TrimPrefix(fragment, "#")
	}
}

// New returns an Engine with empty caches.
func New(opts ...Option) *Engine {
	o := engineOptions{cacheSize: DefaultCacheSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.cacheSize <= 0 {
		o.cacheSize = DefaultCacheSize
	}

	return &Engine{
		tokens:    newCache[string, Groups](o.cacheSize),
		compiled:  newCache[string, *compiled](o.cacheSize),
		classes:   newCache[string, *regexp.Regexp](o.cacheSize),
		nonNative: newCache[string, struct{}](o.cacheSize),
		target:    o.target,
		pseudos:   make(map[string]PseudoFactory),
	}
}

func newCache[K comparable, V any](size int) *lru.Cache[K, V] {
	c, err := lru.New[K, V](size)
	if err != nil {
		// only reachable with a non positive size
		panic("selector: " + err.Error())
	}
	return c
}

// RegisterPseudo adds or replaces a pseudo-class. Names are case
// insensitive and shadow built-in pseudo-classes. Previously compiled
// selectors are discarded.
func (e *Engine) RegisterPseudo(name string, factory PseudoFactory) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.pseudos[strings.ToLower(name)] = factory
	e.gen.Add(1)
	e.compiled.Purge()
}

// cache stores c unless the pseudo registry changed since gen was read.
func (e *Engine) cache(selector string, c *compiled, gen uint64) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.gen.Load() == gen {
		e.compiled.Add(selector, c)
	}
}

func (e *Engine) customPseudo(name string) (PseudoFactory, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	f, ok := e.pseudos[name]
	return f, ok
}

// CacheStats reports the number of entries in the token and compiled
// matcher caches.
func (e *Engine) CacheStats() (tokens, compiled int) {
	return e.tokens.Len(), e.compiled.Len()
}

// run holds the side tables of one top-level query. Entries are valid for
// the lifetime of the run only; the tree may change between runs.
type run struct {
	dirs map[dirKey]*dirEntry
	nth  map[nthKey]nthEntry
}

// dirKey identifies the walk of one compiled combinator from a node.
type dirKey struct {
	node    dom.Node
	context dom.Node
	done    uint64
}

type dirEntry struct {
	matched bool
}

type nthKey struct {
	node   dom.Node
	ofType bool
}

// nthEntry is the 1-based position of an element among its element siblings
// (of the same type when ofType) and the number of such siblings.
type nthEntry struct {
	pos   int
	count int
}

func newRun() *run {
	return &run{
		dirs: make(map[dirKey]*dirEntry),
		nth:  make(map[nthKey]nthEntry),
	}
}

// matchContext is passed to every matcher. context anchors leading
// combinators and scopes the left-most compound; root is where candidates
// are collected.
type matchContext struct {
	engine  *Engine
	context dom.Node
	root    dom.Node
	xml     bool
	run     *run
}

func (e *Engine) newMatchContext(context, root dom.Node, xml bool) *matchContext {
	if root == nil {
		root = context
	}
	return &matchContext{
		engine:  e,
		context: context,
		root:    root,
		xml:     xml,
		run:     newRun(),
	}
}

// withContext shares the run with a different context.
func (mc *matchContext) withContext(context dom.Node) *matchContext {
	sub := *mc
	sub.context = context
	if context != nil {
		sub.root = context
	}
	return &sub
}
