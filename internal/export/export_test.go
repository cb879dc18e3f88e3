// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	jsv "github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docgraph/internal/extract"
	"github.com/pdiddy/docgraph/internal/graph"
	"github.com/pdiddy/docgraph/internal/layout"
	"github.com/pdiddy/docgraph/internal/pipeline"
	"github.com/pdiddy/docgraph/pkg/types"
)

const ex = "http://example.org/"

func parisResult(t *testing.T) *pipeline.Result {
	t.Helper()
	entities := types.NewEntitySet()
	entities.Add(types.EntityLocation, "Paris")
	entities.Add(types.EntityLocation, "France")
	s := types.EntityRelationSchema{
		Entities:      entities,
		Relationships: []types.Relationship{{Subject: "Paris", Predicate: "is", Object: "capital"}},
	}
	g, err := graph.NewBuilder(ex).BuildSchema("paris", s)
	require.NoError(t, err)
	l, fig := layout.LayoutAndRender(g, layout.Options{Seed: 1})
	return &pipeline.Result{
		Document: types.Document{ID: "paris", Kind: types.SourceText, Location: "paris.txt"},
		Model:    "fixture",
		Schema:   s,
		Graph:    g,
		Layout:   l,
		Figure:   fig,
	}
}

func TestWrite(t *testing.T) {
	e := Exporter{OutputDir: t.TempDir(), Prefix: "ex", Namespace: ex}
	res := parisResult(t)

	written, err := e.Write(res)
	require.NoError(t, err)
	assert.Len(t, written, 5)

	dir := e.Dir("paris")
	for _, name := range []string{GraphFile, LayoutFile, FigureHTMLFile, FigureJSONFile, RecordFile} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	ttl, err := os.Open(filepath.Join(dir, GraphFile))
	require.NoError(t, err)
	defer ttl.Close()
	parsed, err := graph.ParseTurtle(ttl)
	require.NoError(t, err)
	assert.True(t, res.Graph.Equal(parsed))

	data, err := os.ReadFile(filepath.Join(dir, LayoutFile))
	require.NoError(t, err)
	var l types.Layout
	require.NoError(t, json.Unmarshal(data, &l))
	assert.Equal(t, res.Layout, l)

	rec, err := extract.ReadRecord(filepath.Join(dir, RecordFile))
	require.NoError(t, err)
	assert.Equal(t, "paris", rec.DocumentID)
	assert.Equal(t, types.SchemaEntityRelation, rec.Mode)
	assert.True(t, rec.Entities.Has(types.EntityLocation, "Paris"))

	html, err := os.ReadFile(filepath.Join(dir, FigureHTMLFile))
	require.NoError(t, err)
	assert.Contains(t, string(html), "<title>paris</title>")
}

func TestWriteMerged(t *testing.T) {
	e := Exporter{OutputDir: filepath.Join(t.TempDir(), "out"), Prefix: "ex", Namespace: ex}
	path, err := e.WriteMerged(parisResult(t).Graph)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(e.OutputDir, MergedFile), path)
	assert.FileExists(t, path)
}

func TestWriteLayout_EmptyGraph(t *testing.T) {
	dir := t.TempDir()
	l, fig := layout.LayoutAndRender(graph.New(), layout.Options{})
	written, err := WriteLayout(dir, l, fig, "empty")
	require.NoError(t, err)
	assert.Len(t, written, 3)

	data, err := os.ReadFile(filepath.Join(dir, LayoutFile))
	require.NoError(t, err)
	assert.JSONEq(t, `{"nodes": [], "edges": []}`, string(data))
}

func TestUpToDate(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "doc.txt")
	require.NoError(t, os.WriteFile(src, []byte("words"), 0o644))

	e := Exporter{OutputDir: filepath.Join(root, "out"), Prefix: "ex", Namespace: ex}
	doc := types.Document{ID: "doc", Kind: types.SourceText, Location: src}

	ok, err := e.UpToDate(doc)
	require.NoError(t, err)
	assert.False(t, ok, "no output yet")

	require.NoError(t, os.MkdirAll(e.Dir("doc"), 0o755))
	out := filepath.Join(e.Dir("doc"), GraphFile)
	require.NoError(t, os.WriteFile(out, nil, 0o644))

	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(src, past, past))
	ok, err = e.UpToDate(doc)
	require.NoError(t, err)
	assert.True(t, ok)

	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(src, future, future))
	ok, err = e.UpToDate(doc)
	require.NoError(t, err)
	assert.False(t, ok, "source modified after export")

	ok, err = e.UpToDate(types.Document{ID: "web", Location: "https://example.org/page"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExportJSONSchema(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportJSONSchema(&buf, "layout"))
	assert.Contains(t, buf.String(), `"nodes"`)
	assert.Contains(t, buf.String(), `"source_id"`)

	buf.Reset()
	require.NoError(t, ExportJSONSchema(&buf, "record"))
	assert.Contains(t, buf.String(), `"document_id"`)

	assert.Error(t, ExportJSONSchema(&buf, "nope"))
	assert.Equal(t, []string{"layout", "record"}, SchemaNames())
}

func compileSchema(t *testing.T, name string) *jsv.Schema {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, ExportJSONSchema(&buf, name))
	doc, err := jsv.UnmarshalJSON(&buf)
	require.NoError(t, err)
	c := jsv.NewCompiler()
	require.NoError(t, c.AddResource(name+".json", doc))
	sch, err := c.Compile(name + ".json")
	require.NoError(t, err)
	return sch
}

func TestRecordSchema_ValidatesMarshaledRecord(t *testing.T) {
	sch := compileSchema(t, "record")

	entities := types.NewEntitySet()
	entities.Add(types.EntityLocation, "Paris")
	entities.Add(types.EntityPerson, "Marie Curie")
	doc := types.Document{ID: "a", Location: "a.txt"}
	rec := extract.NewRecord(doc, "en_core_web_sm", types.EntityRelationSchema{
		Entities:      entities,
		Relationships: []types.Relationship{{Subject: "Curie", Predicate: "visit", Object: "Paris"}},
	})
	data, err := json.Marshal(rec)
	require.NoError(t, err)

	inst, err := jsv.UnmarshalJSON(bytes.NewReader(data))
	require.NoError(t, err)
	assert.NoError(t, sch.Validate(inst))

	stats := extract.NewRecord(doc, "", types.WordStatistics{Count: 2, AvgLen: 3, Sample: "the cat"})
	data, err = json.Marshal(stats)
	require.NoError(t, err)
	inst, err = jsv.UnmarshalJSON(bytes.NewReader(data))
	require.NoError(t, err)
	assert.NoError(t, sch.Validate(inst))
}

func TestRecordSchema_RejectsUnknownEntityType(t *testing.T) {
	sch := compileSchema(t, "record")

	bad := `{"document_id":"a","mode":"entity","extracted_at":"2026-01-01T00:00:00Z",` +
		`"entities":{"Planet":["Mars"]}}`
	inst, err := jsv.UnmarshalJSON(bytes.NewReader([]byte(bad)))
	require.NoError(t, err)
	assert.Error(t, sch.Validate(inst))

	flat := `{"document_id":"a","mode":"entity","extracted_at":"2026-01-01T00:00:00Z",` +
		`"entities":{"Location":{"Paris":{}}}}`
	inst, err = jsv.UnmarshalJSON(bytes.NewReader([]byte(flat)))
	require.NoError(t, err)
	assert.Error(t, sch.Validate(inst))
}
