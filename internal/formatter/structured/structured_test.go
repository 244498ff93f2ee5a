package structured

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacoelho/sift/internal/formatter"
	"github.com/jacoelho/sift/internal/results"
)

func testSummary() *results.Summary {
	s := results.NewSummary("li.a", 2)
	s.Add(results.NewFileResultBuilder("a.html").WithMatches([]results.Match{
		{Path: "ul#l > li:nth-child(1)", Tag: "li", Text: "1", HTML: `<li class="a">1</li>`},
	}))
	s.Add(results.NewFileResultBuilder("b.html").WithError(errors.New("read failed")))
	s.SetTotalDuration(1500 * time.Microsecond)
	return s
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONWithWriter(&buf, formatter.Options{}).Format(testSummary()))

	var got document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, "li.a", got.Selector)
	assert.Equal(t, 1, got.Total)
	assert.Equal(t, int64(1), got.DurationMS)
	require.Len(t, got.Files, 2)
	assert.Equal(t, fileDocument{
		File:  "a.html",
		Count: 1,
		Matches: []results.Match{
			{Path: "ul#l > li:nth-child(1)", Tag: "li", Text: "1", HTML: `<li class="a">1</li>`},
		},
	}, got.Files[0])
	assert.Equal(t, fileDocument{File: "b.html", Error: "read failed"}, got.Files[1])
	assert.Contains(t, buf.String(), `"html": "<li class=\"a\">1</li>"`)
}

func TestJSONCountOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONWithWriter(&buf, formatter.Options{CountOnly: true}).Format(testSummary()))

	var got document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	require.Len(t, got.Files, 2)
	assert.Equal(t, 1, got.Files[0].Count)
	assert.Nil(t, got.Files[0].Matches)
	assert.NotContains(t, buf.String(), "matches")
}

func TestYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewYAMLWithWriter(&buf, formatter.Options{}).Format(testSummary()))

	assert.True(t, strings.HasPrefix(buf.String(), "---\n"))

	var got document
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, "li.a", got.Selector)
	require.Len(t, got.Files, 2)
	require.Len(t, got.Files[0].Matches, 1)
	assert.Equal(t, `<li class="a">1</li>`, got.Files[0].Matches[0].HTML)
	assert.Equal(t, "read failed", got.Files[1].Error)
}

func TestYAMLMultipleSummaries(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewYAMLWithWriter(&buf, formatter.Options{CountOnly: true}).Format(testSummary(), testSummary()))

	assert.Equal(t, 2, strings.Count(buf.String(), "---\n"))
	assert.Equal(t, 2, strings.Count(buf.String(), "selector: li.a"))
}
