package config

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacoelho/sift/internal/exit"
	"github.com/jacoelho/sift/internal/selector"
)

func TestParse(t *testing.T) {
	tempDir := t.TempDir()
	page := filepath.Join(tempDir, "page.html")
	feed := filepath.Join(tempDir, "feed.xml")
	require.NoError(t, os.WriteFile(page, []byte("<p>hi</p>"), 0o644))
	require.NoError(t, os.WriteFile(feed, []byte("<feed/>"), 0o644))

	tests := []struct {
		name string
		args []string
		want *Config
	}{
		{
			name: "selector_only_reads_stdin",
			args: []string{"sift", "p"},
			want: &Config{
				Selector:  "p",
				Files:     []string{},
				Format:    FormatText,
				CacheSize: selector.DefaultCacheSize,
			},
		},
		{
			name: "selector_and_files",
			args: []string{"sift", "div > p", page, feed},
			want: &Config{
				Selector:  "div > p",
				Files:     []string{page, feed},
				Format:    FormatText,
				CacheSize: selector.DefaultCacheSize,
			},
		},
		{
			name: "all_options",
			args: []string{"sift", "--xml", "--format", "YAML", "--count", "--target", "#top", "--cache-size", "8", "--debug", "entry", feed},
			want: &Config{
				Selector:  "entry",
				Files:     []string{feed},
				XML:       true,
				Format:    FormatYAML,
				Count:     true,
				Target:    "#top",
				CacheSize: 8,
				Debug:     true,
			},
		},
		{
			name: "stdin_dash",
			args: []string{"sift", "--first", "a", "-"},
			want: &Config{
				Selector:  "a",
				Files:     []string{"-"},
				Format:    FormatText,
				First:     true,
				CacheSize: selector.DefaultCacheSize,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, result := Parse(tt.args)
			require.Nil(t, result)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		message string
	}{
		{"no_arguments", nil, ErrNoArguments.Error()},
		{"no_selector", []string{"sift"}, ErrNoSelector.Error()},
		{"blank_selector", []string{"sift", "  "}, ErrNoSelector.Error()},
		{"unknown_flag", []string{"sift", "--nope", "p"}, "failed to parse arguments"},
		{"bad_format", []string{"sift", "--format", "csv", "p"}, ErrInvalidFormat.Error()},
		{"bad_cache_size", []string{"sift", "--cache-size", "0", "p"}, ErrInvalidCacheSize.Error()},
		{"count_and_first", []string{"sift", "--count", "--first", "p"}, ErrExclusiveCountOne.Error()},
		{"missing_file", []string{"sift", "p", filepath.Join(t.TempDir(), "missing.html")}, "not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, result := Parse(tt.args)
			assert.Nil(t, got)
			require.NotNil(t, result)
			assert.Equal(t, exit.CodeError, result.ExitCode)
			assert.Equal(t, os.Stderr, result.Output)
			assert.Contains(t, result.Message, tt.message)
			assert.Contains(t, result.Message, "Usage: sift")
		})
	}
}

func TestParseHelp(t *testing.T) {
	for _, flag := range []string{"-h", "--help"} {
		got, result := Parse([]string{"sift", flag})
		assert.Nil(t, got)
		require.NotNil(t, result)
		assert.Equal(t, exit.CodeMatch, result.ExitCode)
		assert.Equal(t, Usage(), result.Message)
	}
}

func TestUsageExamples(t *testing.T) {
	usage := Usage()
	assert.Contains(t, usage, "sift 'ul > li:first-child' page.html")
	assert.NotContains(t, usage, "li:first'")

	quoted := regexp.MustCompile(`sift (?:-[^']*)?'([^']+)'`)
	examples := quoted.FindAllStringSubmatch(usage, -1)
	require.NotEmpty(t, examples)

	e := selector.New()
	for _, m := range examples {
		_, err := e.Compile(m[1])
		assert.NoError(t, err, m[1])
	}
}

func TestSources(t *testing.T) {
	assert.Equal(t, []string{"-"}, (&Config{}).Sources())
	assert.Equal(t, []string{"a.html", "b.html"}, (&Config{Files: []string{"a.html", "b.html"}}).Sources())
}

func TestEngineOptions(t *testing.T) {
	assert.Len(t, (&Config{CacheSize: 4}).EngineOptions(), 1)
	assert.Len(t, (&Config{CacheSize: 4, Target: "top"}).EngineOptions(), 2)
}
