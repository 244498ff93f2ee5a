package selector

import (
	"errors"
	"fmt"
)

var (
	// ErrSyntax indicates a malformed selector.
	ErrSyntax = errors.New("selector: syntax error")

	// ErrUnsupportedPseudo indicates a well-formed pseudo-class that is not
	// registered. Errors wrapping it also wrap ErrSyntax.
	ErrUnsupportedPseudo = errors.New("selector: unsupported pseudo")

	// ErrPredicate wraps errors returned by custom pseudo predicates.
	ErrPredicate = errors.New("selector: predicate failed")

	// ErrNoContext indicates a query without context node and without seed.
	ErrNoContext = errors.New("selector: no context node")
)

func syntaxError(selector string, format string, args ...any) error {
	return fmt.Errorf("%w: %s in %q", ErrSyntax, fmt.Sprintf(format, args...), selector)
}

func unsupportedPseudo(name string) error {
	return fmt.Errorf("%w: %w: %q", ErrSyntax, ErrUnsupportedPseudo, name)
}

func predicateError(name string, err error) error {
	return fmt.Errorf("%w: :%s: %w", ErrPredicate, name, err)
}
