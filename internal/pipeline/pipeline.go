// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs documents through text extraction, schema
// inference, graph construction, and layout.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/pdiddy/docgraph/internal/extract"
	"github.com/pdiddy/docgraph/internal/graph"
	"github.com/pdiddy/docgraph/internal/layout"
	"github.com/pdiddy/docgraph/internal/logging"
	"github.com/pdiddy/docgraph/internal/nlp"
	"github.com/pdiddy/docgraph/internal/schema"
	"github.com/pdiddy/docgraph/pkg/types"
)

// TextSource returns the plain text of a document. *source.Registry
// satisfies it.
type TextSource interface {
	Extract(ctx context.Context, doc types.Document) (string, error)
}

// ErrUnknownMode reports a schema mode other than entity or statistics.
var ErrUnknownMode = errors.New("unknown schema mode")

// Pipeline holds everything a run needs. Model may be nil when only the
// statistics mode is used.
type Pipeline struct {
	Sources TextSource
	Model   nlp.Model
	Builder *graph.Builder
	Extract extract.Options
	Layout  layout.Options
	Logger  *log.Logger
}

// Result is the outcome of one document run.
type Result struct {
	Document types.Document
	RunID    string
	Model    string
	Text     string
	Schema   types.Schema
	Graph    *graph.Graph
	Layout   types.Layout
	Figure   layout.Figure
	Elapsed  time.Duration
}

// Run extracts text from doc, infers the schema selected by mode, builds
// the graph, and lays it out.
func (p *Pipeline) Run(ctx context.Context, doc types.Document, mode types.SchemaKind) (*Result, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%w %q", ErrUnknownMode, mode)
	}
	if mode == types.SchemaEntityRelation && p.Model == nil {
		return nil, errors.New("entity mode requires an NLP model")
	}

	runID, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("generating run id: %w", err)
	}
	logger := p.logger().With("run", runID, "doc", doc.ID)
	start := time.Now()

	logger.Debug("extracting text", "kind", doc.Kind)
	text, err := p.Sources.Extract(ctx, doc)
	if err != nil {
		return nil, err
	}

	var s types.Schema
	var modelName string
	switch mode {
	case types.SchemaWordStatistics:
		stats, err := schema.InferWordStatistics(text)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", doc.ID, err)
		}
		s = stats
	case types.SchemaEntityRelation:
		modelName = p.Model.Name()
		logger.Debug("extracting entities and relationships", "model", modelName)
		er, err := extract.ExtractDocument(ctx, p.Model, text, p.Extract)
		if err != nil {
			return nil, types.WithDocument(err, doc.ID)
		}
		s = er
	}

	g, err := p.Builder.BuildSchema(doc.ID, s)
	if err != nil {
		return nil, fmt.Errorf("building graph for %s: %w", doc.ID, err)
	}

	lay, fig := layout.LayoutAndRender(g, p.Layout)
	elapsed := time.Since(start)
	logger.Info("built graph", "mode", mode, "triples", g.Len(), "nodes", len(lay.Nodes), "elapsed", elapsed.Round(time.Millisecond))

	return &Result{
		Document: doc,
		RunID:    runID,
		Model:    modelName,
		Text:     text,
		Schema:   s,
		Graph:    g,
		Layout:   lay,
		Figure:   fig,
		Elapsed:  elapsed,
	}, nil
}

func (p *Pipeline) logger() *log.Logger {
	if p.Logger == nil {
		return logging.Discard()
	}
	return p.Logger
}
