package main

import (
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/jacoelho/sift/internal/config"
	"github.com/jacoelho/sift/internal/results"
	"github.com/jacoelho/sift/internal/selector"
	"github.com/jacoelho/sift/internal/tree"
)

// queryFile parses one input and runs sel against it.
func (a app) queryFile(cfg *config.Config, sel *selector.Selector, source string, logger *zap.Logger) *results.FileResultBuilder {
	name := source
	if source == "-" {
		name = "(standard input)"
	}
	builder := results.NewFileResultBuilder(name)
	start := time.Now()
	defer func() { builder.WithDuration(time.Since(start)) }()

	doc, err := a.parse(source, cfg.XML)
	if err != nil {
		logger.Debug("parse failed", zap.String("file", name), zap.Error(err))
		return builder.WithError(err)
	}

	nodes, err := sel.Select(doc)
	if err != nil {
		return builder.WithError(err)
	}
	if cfg.First && len(nodes) > 1 {
		nodes = nodes[:1]
	}

	matches := make([]results.Match, 0, len(nodes))
	for _, n := range nodes {
		el, ok := n.(*tree.Node)
		if !ok {
			return builder.WithError(fmt.Errorf("unexpected node type %T", n))
		}
		m, err := results.NewMatch(el)
		if err != nil {
			return builder.WithError(err)
		}
		matches = append(matches, m)
	}

	logger.Debug("queried file",
		zap.String("file", name),
		zap.Int("matches", len(matches)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return builder.WithMatches(matches)
}

func (a app) parse(source string, xml bool) (*tree.Node, error) {
	r, err := a.open(source)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var parse func(io.Reader) (*tree.Node, error) = tree.Parse
	if xml {
		parse = tree.ParseXML
	}
	return parse(r)
}
