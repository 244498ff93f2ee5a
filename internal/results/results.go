package results

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/jacoelho/sift/internal/dom"
	"github.com/jacoelho/sift/internal/tree"
)

// Match describes one selected element.
type Match struct {
	Path string `json:"path" yaml:"path"`
	Tag  string `json:"tag" yaml:"tag"`
	Text string `json:"text" yaml:"text"`
	HTML string `json:"html" yaml:"html"`
}

// NewMatch renders n for output.
func NewMatch(n *tree.Node) (Match, error) {
	markup, err := tree.OuterHTML(n)
	if err != nil {
		return Match{}, fmt.Errorf("render %s: %w", n.Tag(), err)
	}
	return Match{
		Path: Path(n),
		Tag:  n.Tag(),
		Text: strings.TrimSpace(dom.Text(n)),
		HTML: markup,
	}, nil
}

// Path returns a selector that locates n from its root, such as
// "html > body > div#main > p:nth-child(2)". Elements with an id stop
// the walk.
func Path(n dom.Node) string {
	var parts []string
	for ; dom.IsElement(n); n = n.Parent() {
		if id, ok := n.Attr("id"); ok && id != "" && !strings.ContainsAny(id, " \t\n") {
			parts = append(parts, n.Tag()+"#"+id)
			break
		}
		part := n.Tag()
		if p := n.Parent(); dom.IsElement(p) {
			part += ":nth-child(" + strconv.Itoa(childIndex(n)) + ")"
		}
		parts = append(parts, part)
	}
	slices.Reverse(parts)
	return strings.Join(parts, " > ")
}

func childIndex(n dom.Node) int {
	i := 1
	for p := dom.PrevElement(n); p != nil; p = dom.PrevElement(p) {
		i++
	}
	return i
}

// FileResult is the outcome of querying one input.
type FileResult struct {
	Filename string
	Matches  []Match
	Duration time.Duration
	Error    error
}

type FileResultBuilder struct {
	filename string
	matches  []Match
	duration time.Duration
	err      error
}

func NewFileResultBuilder(filename string) *FileResultBuilder {
	return &FileResultBuilder{
		filename: filename,
	}
}

func (b *FileResultBuilder) WithMatches(matches []Match) *FileResultBuilder {
	b.matches = matches
	return b
}

func (b *FileResultBuilder) WithDuration(duration time.Duration) *FileResultBuilder {
	b.duration = duration
	return b
}

func (b *FileResultBuilder) WithError(err error) *FileResultBuilder {
	b.err = err
	return b
}

func (b *FileResultBuilder) Build() FileResult {
	return FileResult{
		Filename: b.filename,
		Matches:  b.matches,
		Duration: b.duration,
		Error:    b.err,
	}
}

// Summary collects the results of one sift invocation.
type Summary struct {
	Selector       string
	FileResults    []FileResult
	ExecutedFiles  int
	TotalMatches   int
	SucceededFiles int
	FailedFiles    int
	TotalDuration  time.Duration
}

func NewSummary(selector string, expectedFiles int) *Summary {
	return &Summary{
		Selector:    selector,
		FileResults: make([]FileResult, 0, expectedFiles),
	}
}

func (s *Summary) Add(builder *FileResultBuilder) {
	result := builder.Build()

	s.FileResults = append(s.FileResults, result)
	s.ExecutedFiles++
	s.TotalMatches += len(result.Matches)

	if result.Error != nil {
		s.FailedFiles++
	} else {
		s.SucceededFiles++
	}
}

func (s *Summary) SetTotalDuration(duration time.Duration) {
	s.TotalDuration = duration
}

// MatchedFiles returns the number of inputs with at least one match.
func (s *Summary) MatchedFiles() int {
	n := 0
	for _, r := range s.FileResults {
		if len(r.Matches) > 0 {
			n++
		}
	}
	return n
}

// Err returns the first per-file error.
func (s *Summary) Err() error {
	for _, r := range s.FileResults {
		if r.Error != nil {
			return fmt.Errorf("%s: %w", r.Filename, r.Error)
		}
	}
	return nil
}
