// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docgraph/internal/export"
	"github.com/pdiddy/docgraph/internal/extract"
	"github.com/pdiddy/docgraph/internal/graph"
	"github.com/pdiddy/docgraph/internal/layout"
	"github.com/pdiddy/docgraph/internal/nlp"
	"github.com/pdiddy/docgraph/internal/pipeline"
	"github.com/pdiddy/docgraph/internal/source"
	"github.com/pdiddy/docgraph/pkg/types"
)

// addSourceFlags registers flags shared by every command that reads
// documents.
func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().String("kind", "", "document kind: pdf, image, url, docx, text (default: from extension or scheme)")
	cmd.Flags().String("pdf-backend", "", "PDF backend: pdftotext or markitdown")
	cmd.Flags().String("web-mode", "", "HTML reduction: article or fulltext")
}

// addGraphFlags registers flags shared by build and batch.
func addGraphFlags(cmd *cobra.Command) {
	addSourceFlags(cmd)
	cmd.Flags().String("mode", string(types.SchemaEntityRelation), "schema mode: entity or statistics")
	cmd.Flags().String("output-dir", "", "base directory for export folders")
	cmd.Flags().Int64("seed", 0, "layout seed")
	cmd.Flags().Int("iterations", 0, "layout iterations")
	cmd.Flags().String("namespace", "", "identifier namespace IRI")
	cmd.Flags().String("prefix", "", "Turtle prefix bound to the namespace")
	cmd.Flags().String("nlp-backend", "", "NLP backend: spacy or fixture")
	cmd.Flags().String("fixture", "", "fixture file for the fixture NLP backend")
	cmd.Flags().Bool("strict", false, "only accept verb heads (no copular relationships)")
	cmd.Flags().StringSlice("exclude", nil, "entity surfaces to drop before building the graph")
}

func schemaMode(cmd *cobra.Command) (types.SchemaKind, error) {
	m, _ := cmd.Flags().GetString("mode")
	mode := types.SchemaKind(m)
	if !mode.Valid() {
		return "", fmt.Errorf("unknown mode %q (want entity or statistics)", m)
	}
	return mode, nil
}

// newPipeline builds the pipeline from the loaded configuration. The NLP
// model is opened only for entity mode. The closer releases the analysis
// cache.
func newPipeline(cmd *cobra.Command, mode types.SchemaKind) (*pipeline.Pipeline, io.Closer, error) {
	strict, _ := cmd.Flags().GetBool("strict")
	opts := extract.Options{
		Roles:      extract.Roles(cfg.Extraction.Copular && !strict),
		MaxRetries: cfg.Extraction.MaxRetries,
		Exclude:    cfg.Extraction.Exclude,
	}

	p := &pipeline.Pipeline{
		Sources: source.NewRegistry(cfg.Source, source.Tools{}),
		Builder: graph.NewBuilder(cfg.Graph.Namespace),
		Extract: opts,
		Layout:  layout.Options{Seed: cfg.Layout.Seed, Iterations: cfg.Layout.Iterations},
		Logger:  logger,
	}

	var closer io.Closer = nopCloser{}
	if mode == types.SchemaEntityRelation {
		model, c, err := nlp.Open(cfg.NLP)
		if err != nil {
			return nil, nil, fmt.Errorf("opening NLP backend: %w", err)
		}
		p.Model = model
		closer = c
	}
	return p, closer, nil
}

func newExporter() export.Exporter {
	return export.Exporter{
		OutputDir: cfg.Export.OutputDir,
		Prefix:    cfg.Graph.Prefix,
		Namespace: cfg.Graph.Namespace,
	}
}

// documentFor turns a command-line argument into a document. "-" reads
// plain text from stdin.
func documentFor(arg string, kindFlag string, stdin io.Reader) (types.Document, error) {
	if arg == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return types.Document{}, fmt.Errorf("reading stdin: %w", err)
		}
		kind := types.SourceKind(kindFlag)
		if kind == "" {
			kind = types.SourceText
		}
		return types.Document{ID: "stdin", Kind: kind, Payload: data}, nil
	}

	kind := types.SourceKind(kindFlag)
	if kind == "" {
		var ok bool
		if kind, ok = types.KindFromLocation(arg); !ok {
			return types.Document{}, fmt.Errorf("cannot infer kind of %s; use --kind", arg)
		}
	}
	if !kind.Valid() {
		return types.Document{}, fmt.Errorf("unknown kind %q", kind)
	}
	return types.Document{ID: types.DocumentID(arg), Kind: kind, Location: arg}, nil
}

// readList reads one location per line, skipping blanks and # comments.
func readList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, sc.Err()
}

// uniqueIDs disambiguates documents whose derived IDs collide so their
// export folders do not overwrite each other.
func uniqueIDs(docs []types.Document) {
	seen := make(map[string]int, len(docs))
	for i := range docs {
		id := docs[i].ID
		n := seen[id]
		seen[id] = n + 1
		if n > 0 {
			docs[i].ID = fmt.Sprintf("%s-%d", id, n+1)
		}
	}
}

var errFailures = errors.New("some documents failed")

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
