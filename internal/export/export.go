// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes pipeline results to disk: the Turtle graph, the
// layout payload, the rendered figure, and the extraction record.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdiddy/docgraph/internal/extract"
	"github.com/pdiddy/docgraph/internal/fsutil"
	"github.com/pdiddy/docgraph/internal/graph"
	"github.com/pdiddy/docgraph/internal/layout"
	"github.com/pdiddy/docgraph/internal/pipeline"
	"github.com/pdiddy/docgraph/pkg/types"
)

// File names written under <output>/<doc>/.
const (
	GraphFile      = "graph.ttl"
	LayoutFile     = "layout.json"
	FigureHTMLFile = "figure.html"
	FigureJSONFile = "figure.json"
	RecordFile     = "extraction.yaml"

	// MergedFile is written under <output>/ for merged batches.
	MergedFile = "merged.ttl"
)

// Exporter writes results below OutputDir, naming graph identifiers with
// Prefix bound to Namespace.
type Exporter struct {
	OutputDir string
	Prefix    string
	Namespace string
}

// Dir returns the export directory of a document.
func (e Exporter) Dir(docID string) string {
	return filepath.Join(e.OutputDir, docID)
}

// Write exports every artifact of res and returns the paths written.
func (e Exporter) Write(res *pipeline.Result) ([]string, error) {
	dir := e.Dir(res.Document.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating export directory: %w", err)
	}

	var written []string
	recordPath := filepath.Join(dir, RecordFile)
	rec := extract.NewRecord(res.Document, res.Model, res.Schema)
	if err := extract.WriteRecord(recordPath, rec); err != nil {
		return nil, fmt.Errorf("writing %s: %w", recordPath, err)
	}
	written = append(written, recordPath)

	graphPath := filepath.Join(dir, GraphFile)
	if err := e.WriteGraph(graphPath, res.Graph); err != nil {
		return nil, err
	}
	written = append(written, graphPath)

	paths, err := WriteLayout(dir, res.Layout, res.Figure, res.Document.ID)
	if err != nil {
		return nil, err
	}
	return append(written, paths...), nil
}

// WriteGraph writes g as Turtle to path.
func (e Exporter) WriteGraph(path string, g *graph.Graph) error {
	return fsutil.WriteAtomic(path, func(w io.Writer) error {
		return graph.WriteTurtle(w, g, e.Prefix, e.Namespace)
	})
}

// WriteMerged writes the union graph of a batch to <output>/merged.ttl.
func (e Exporter) WriteMerged(g *graph.Graph) (string, error) {
	if err := os.MkdirAll(e.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(e.OutputDir, MergedFile)
	return path, e.WriteGraph(path, g)
}

// WriteLayout writes the layout payload and both figure forms into dir.
func WriteLayout(dir string, l types.Layout, fig layout.Figure, title string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating export directory: %w", err)
	}

	files := []struct {
		name  string
		write func(io.Writer) error
	}{
		{LayoutFile, func(w io.Writer) error { return writeJSON(w, l) }},
		{FigureJSONFile, fig.WriteJSON},
		{FigureHTMLFile, func(w io.Writer) error { return fig.WriteHTML(w, title) }},
	}

	written := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := fsutil.WriteAtomic(path, f.write); err != nil {
			return nil, err
		}
		written = append(written, path)
	}
	return written, nil
}

// UpToDate reports whether the exported graph of doc is newer than its
// local source file. Documents without a local file are never up to date.
func (e Exporter) UpToDate(doc types.Document) (bool, error) {
	if doc.Payload != nil || doc.Location == "" {
		return false, nil
	}
	srcInfo, err := os.Stat(doc.Location)
	if err != nil {
		// Remote locations (URLs, s3://) have nothing to compare.
		return false, nil
	}

	outInfo, err := os.Stat(filepath.Join(e.Dir(doc.ID), GraphFile))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat output for %s: %w", doc.ID, err)
	}
	return !srcInfo.ModTime().After(outInfo.ModTime()), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
