package formatter

import (
	"github.com/jacoelho/sift/internal/results"
)

// Formatter defines the interface for different output formats.
// Implementations are responsible for determining the output device (stdout, file, etc.).
type Formatter interface {
	// Format writes the matches of every summary. Summaries are written in
	// order, one per selector run.
	Format(summaries ...*results.Summary) error
}

// Options controls what a formatter emits.
type Options struct {
	// CountOnly replaces matches with their number.
	CountOnly bool
}
