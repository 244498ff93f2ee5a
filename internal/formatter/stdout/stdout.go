package stdout

import (
	"fmt"
	"io"
	"os"

	"github.com/jacoelho/sift/internal/formatter"
	"github.com/jacoelho/sift/internal/results"
)

// Formatter writes matches as plain text, one serialized element per line.
// With more than one input each line is prefixed with the file name, the
// way grep does.
type Formatter struct {
	writer io.Writer
	opts   formatter.Options
}

// New creates a new stdout formatter that outputs to stdout.
func New(opts formatter.Options) formatter.Formatter {
	return &Formatter{
		writer: os.Stdout,
		opts:   opts,
	}
}

// NewWithWriter creates a new stdout formatter with a custom writer.
func NewWithWriter(writer io.Writer, opts formatter.Options) formatter.Formatter {
	return &Formatter{
		writer: writer,
		opts:   opts,
	}
}

// Format writes every summary in order. Inputs that failed are skipped;
// reporting them is left to the caller.
func (f *Formatter) Format(summaries ...*results.Summary) error {
	for _, s := range summaries {
		if err := f.formatSummary(s); err != nil {
			return err
		}
	}
	return nil
}

func (f *Formatter) formatSummary(s *results.Summary) error {
	prefix := len(s.FileResults) > 1
	for _, r := range s.FileResults {
		if r.Error != nil {
			continue
		}
		if f.opts.CountOnly {
			if err := f.writeCount(r, prefix); err != nil {
				return err
			}
			continue
		}
		for _, m := range r.Matches {
			if err := f.writeMatch(r.Filename, m, prefix); err != nil {
				return err
			}
		}
	}
	return nil
}

func (f *Formatter) writeCount(r results.FileResult, prefix bool) error {
	var err error
	if prefix {
		_, err = fmt.Fprintf(f.writer, "%s:%d\n", r.Filename, len(r.Matches))
	} else {
		_, err = fmt.Fprintf(f.writer, "%d\n", len(r.Matches))
	}
	return err
}

func (f *Formatter) writeMatch(filename string, m results.Match, prefix bool) error {
	var err error
	if prefix {
		_, err = fmt.Fprintf(f.writer, "%s:%s\n", filename, m.HTML)
	} else {
		_, err = fmt.Fprintln(f.writer, m.HTML)
	}
	return err
}
