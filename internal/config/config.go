package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jacoelho/sift/internal/exit"
	"github.com/jacoelho/sift/internal/selector"
)

const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

var (
	ErrNoArguments       = errors.New("no arguments provided")
	ErrNoSelector        = errors.New("no selector specified")
	ErrInvalidFormat     = errors.New("format must be one of text, json, yaml")
	ErrInvalidCacheSize  = errors.New("cache size must be positive")
	ErrExclusiveCountOne = errors.New("--count and --first cannot be combined")
)

// Config represents the complete configuration for the sift tool.
type Config struct {
	Selector string
	// Files to query; empty means standard input.
	Files []string

	XML       bool
	Format    string
	Count     bool
	First     bool
	Target    string
	CacheSize int
	Debug     bool
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Selector) == "" {
		return ErrNoSelector
	}

	switch c.Format {
	case FormatText, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("%w, got: %s", ErrInvalidFormat, c.Format)
	}

	if c.CacheSize <= 0 {
		return fmt.Errorf("%w, got: %d", ErrInvalidCacheSize, c.CacheSize)
	}

	if c.Count && c.First {
		return ErrExclusiveCountOne
	}

	for _, file := range c.Files {
		if file == "-" {
			continue
		}
		if _, err := os.Stat(file); err != nil {
			return fmt.Errorf("input file %s not found: %w", file, err)
		}
	}

	return nil
}

// Sources returns the inputs to read, using "-" for standard input.
func (c *Config) Sources() []string {
	if len(c.Files) == 0 {
		return []string{"-"}
	}
	return c.Files
}

// EngineOptions returns the selector engine options for this configuration.
func (c *Config) EngineOptions() []selector.Option {
	opts := []selector.Option{selector.WithCacheSize(c.CacheSize)}
	if c.Target != "" {
		opts = append(opts, selector.WithTarget(c.Target))
	}
	return opts
}

// Parse parses command-line arguments and returns a validated Config.
// If parsing fails or help is requested, returns nil config and exit result.
func Parse(args []string) (*Config, *exit.Result) {
	if len(args) == 0 {
		return nil, exit.Errorf("Error: %v\n\n%s", ErrNoArguments, Usage())
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.Usage = func() {}
	fs.SetOutput(io.Discard)

	var (
		xml       = fs.Bool("xml", false, "Parse input as XML")
		format    = fs.String("format", FormatText, "Output format: text, json or yaml")
		count     = fs.Bool("count", false, "Print only the number of matches")
		first     = fs.Bool("first", false, "Print only the first match")
		target    = fs.String("target", "", "Fragment identifier matched by :target")
		cacheSize = fs.Int("cache-size", selector.DefaultCacheSize, "Capacity of the selector caches")
		debug     = fs.Bool("debug", false, "Enable debug logging to stderr")
	)

	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, exit.Success(Usage())
		}
		return nil, exit.Errorf("Error: failed to parse arguments: %v\n\n%s", err, Usage())
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return nil, exit.Errorf("Error: %v\n\n%s", ErrNoSelector, Usage())
	}

	config := &Config{
		Selector:  rest[0],
		Files:     rest[1:],
		XML:       *xml,
		Format:    strings.ToLower(*format),
		Count:     *count,
		First:     *first,
		Target:    *target,
		CacheSize: *cacheSize,
		Debug:     *debug,
	}

	if err := config.Validate(); err != nil {
		return nil, exit.Errorf("Error: %v\n\n%s", err, Usage())
	}

	return config, nil
}

// Usage returns a usage string for the CLI tool.
func Usage() string {
	return `sift - query HTML and XML documents with CSS selectors

Usage: sift [options] <selector> [file ...]

Reads standard input when no file is given.

Options:
  --xml                   Parse input as XML
  --format FORMAT         Output format: text, json or yaml (default: text)
  --count                 Print only the number of matches per file
  --first                 Print only the first match per file
  --target FRAGMENT       Fragment identifier matched by :target
  --cache-size N          Capacity of the selector caches (default: 50)
  --debug                 Enable debug logging to stderr
  -h, --help              Show this help message

Exit status:
  0 at least one match, 1 no match, 2 error

Examples:
  sift 'ul > li:first-child' page.html   # First item of every list
  sift --count 'a[href^=http]' *.html     # Count external links per file
  sift --xml 'book[lang|=en] title' catalog.xml
  curl -s example.com | sift --format json 'h1, h2'`
}
