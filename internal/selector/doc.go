// Package selector is a CSS selector engine that matches by walking and
// testing nodes of a dom.Node tree.
//
// A selector string is tokenized into comma separated groups, every group is
// compiled into a matcher, and the matchers run against the descendants of a
// context node. Results are returned in document order without duplicates.
//
// Supported syntax:
//   - type `div`, universal `*`, id `#a`, class `.b`
//   - attributes `[x]`, `[x=v]`, `[x!=v]`, `[x^=v]`, `[x$=v]`, `[x*=v]`, `[x~=v]`, `[x|=v]`
//   - combinators: descendant ` `, child `>`, adjacent `+`, general sibling `~`,
//     including a leading combinator relative to the context (`> p`)
//   - structural: `:first-child`, `:last-child`, `:only-child`, `:nth-child(an+b)`,
//     `:nth-last-child(an+b)` and the `-of-type` variants
//   - `:not(s)`, `:has(s)`, `:contains(text)`, `:lang(l)`, `:empty`, `:parent`,
//     `:root`, `:target`, `:focus`, `:enabled`, `:disabled`, `:checked`, `:selected`,
//     `:header`, `:input`, `:button`, `:text`, `:radio`, `:checkbox`, `:file`,
//     `:password`, `:image`, `:submit`, `:reset`
//   - positional set filters `:first`, `:last`, `:eq(n)`, `:nth(n)`, `:even`, `:odd`,
//     `:lt(n)`, `:gt(n)`; negative n counts from the end of the set
//
// Custom pseudo-classes are added with Engine.RegisterPseudo.
//
// Malformed selectors fail with ErrSyntax before any node is visited.
package selector
