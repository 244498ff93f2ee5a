// Package structured renders query results as JSON or YAML documents.
package structured

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/jacoelho/sift/internal/formatter"
	"github.com/jacoelho/sift/internal/results"
)

type document struct {
	Selector   string         `json:"selector" yaml:"selector"`
	Files      []fileDocument `json:"files" yaml:"files"`
	Total      int            `json:"total" yaml:"total"`
	DurationMS int64          `json:"duration_ms" yaml:"duration_ms"`
}

type fileDocument struct {
	File    string          `json:"file" yaml:"file"`
	Count   int             `json:"count" yaml:"count"`
	Matches []results.Match `json:"matches,omitempty" yaml:"matches,omitempty"`
	Error   string          `json:"error,omitempty" yaml:"error,omitempty"`
}

func newDocument(s *results.Summary, opts formatter.Options) document {
	doc := document{
		Selector:   s.Selector,
		Files:      make([]fileDocument, 0, len(s.FileResults)),
		Total:      s.TotalMatches,
		DurationMS: s.TotalDuration.Milliseconds(),
	}
	for _, r := range s.FileResults {
		fd := fileDocument{File: r.Filename, Count: len(r.Matches)}
		if !opts.CountOnly {
			fd.Matches = r.Matches
		}
		if r.Error != nil {
			fd.Error = r.Error.Error()
		}
		doc.Files = append(doc.Files, fd)
	}
	return doc
}

type encodeFunc func(w io.Writer, doc document) error

// Formatter writes one document per summary.
type Formatter struct {
	writer io.Writer
	opts   formatter.Options
	encode encodeFunc
}

// NewJSON creates a formatter writing indented JSON to stdout.
func NewJSON(opts formatter.Options) formatter.Formatter {
	return NewJSONWithWriter(os.Stdout, opts)
}

// NewJSONWithWriter creates a JSON formatter with a custom writer.
func NewJSONWithWriter(w io.Writer, opts formatter.Options) formatter.Formatter {
	return &Formatter{writer: w, opts: opts, encode: encodeJSON}
}

// NewYAML creates a formatter writing YAML to stdout.
func NewYAML(opts formatter.Options) formatter.Formatter {
	return NewYAMLWithWriter(os.Stdout, opts)
}

// NewYAMLWithWriter creates a YAML formatter with a custom writer.
func NewYAMLWithWriter(w io.Writer, opts formatter.Options) formatter.Formatter {
	return &Formatter{writer: w, opts: opts, encode: encodeYAML}
}

// Format writes a document for every summary.
func (f *Formatter) Format(summaries ...*results.Summary) error {
	for _, s := range summaries {
		if err := f.encode(f.writer, newDocument(s, f.opts)); err != nil {
			return err
		}
	}
	return nil
}

func encodeJSON(w io.Writer, doc document) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

func encodeYAML(w io.Writer, doc document) error {
	payload, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode YAML: %w", err)
	}
	if _, err := fmt.Fprintf(w, "---\n%s", payload); err != nil {
		return err
	}
	return nil
}
