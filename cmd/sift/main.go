package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jacoelho/sift/internal/config"
	"github.com/jacoelho/sift/internal/exit"
	"github.com/jacoelho/sift/internal/formatter"
	"github.com/jacoelho/sift/internal/formatter/stdout"
	"github.com/jacoelho/sift/internal/formatter/structured"
	"github.com/jacoelho/sift/internal/results"
	"github.com/jacoelho/sift/internal/selector"
)

func main() {
	a := app{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	os.Exit(a.run(os.Args))
}

type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func (a app) run(args []string) int {
	cfg, exitResult := config.Parse(args)
	if exitResult != nil {
		return a.print(exitResult)
	}

	logger := a.logger(cfg.Debug)
	defer func() { _ = logger.Sync() }()

	engine := selector.New(cfg.EngineOptions()...)
	sel, err := engine.Compile(cfg.Selector)
	if err != nil {
		return a.print(exit.Errorf("Error: %v\n", err))
	}
	logger.Debug("compiled selector", zap.String("selector", sel.String()))

	start := time.Now()
	summary := results.NewSummary(sel.String(), len(cfg.Sources()))
	for _, source := range cfg.Sources() {
		summary.Add(a.queryFile(cfg, sel, source, logger))
	}
	summary.SetTotalDuration(time.Since(start))

	tokens, compiled := engine.CacheStats()
	logger.Debug("query finished",
		zap.Int("files", summary.ExecutedFiles),
		zap.Int("matches", summary.TotalMatches),
		zap.Int("failed", summary.FailedFiles),
		zap.Duration("duration", summary.TotalDuration),
		zap.Int("cached_tokens", tokens),
		zap.Int("cached_matchers", compiled),
	)

	if err := a.formatter(cfg).Format(summary); err != nil {
		return a.print(exit.Errorf("Error: failed to write output: %v\n", err))
	}

	if err := summary.Err(); err != nil {
		return a.print(exit.Errorf("Error: %v\n", err))
	}

	return exit.FromMatches(summary.TotalMatches)
}

// print writes r to the app streams and returns its exit code.
func (a app) print(r *exit.Result) int {
	r.Output = a.stdout
	if r.ExitCode == exit.CodeError {
		r.Output = a.stderr
	}
	r.Print()
	return r.ExitCode
}

func (a app) formatter(cfg *config.Config) formatter.Formatter {
	opts := formatter.Options{CountOnly: cfg.Count}
	switch cfg.Format {
	case config.FormatJSON:
		return structured.NewJSONWithWriter(a.stdout, opts)
	case config.FormatYAML:
		return structured.NewYAMLWithWriter(a.stdout, opts)
	default:
		return stdout.NewWithWriter(a.stdout, opts)
	}
}

func (a app) logger(debug bool) *zap.Logger {
	if !debug {
		return zap.NewNop()
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(a.stderr),
		zap.DebugLevel,
	)
	return zap.New(core)
}

func (a app) open(source string) (io.ReadCloser, error) {
	if source == "-" {
		return io.NopCloser(a.stdin), nil
	}
	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	return f, nil
}
