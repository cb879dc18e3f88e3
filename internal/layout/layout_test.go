// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docgraph/internal/graph"
	"github.com/pdiddy/docgraph/pkg/types"
)

const ex = "http://example.org/"

func iri(local string) graph.Term { return graph.IRI(ex + local) }

func parisGraph() *graph.Graph {
	g := graph.New()
	g.AddTriple(iri("Paris"), graph.IRI(graph.RDFType), iri("Location"))
	g.AddTriple(iri("France"), graph.IRI(graph.RDFType), iri("Location"))
	g.AddTriple(iri("Paris"), iri("is"), iri("capital"))
	g.AddTriple(iri("Paris"), iri("in"), iri("France"))
	g.AddTriple(iri("France"), iri("contains"), iri("Paris"))
	return g
}

func TestCompute_EmptyGraph(t *testing.T) {
	l, fig := LayoutAndRender(graph.New(), Options{Seed: 1})
	assert.Empty(t, l.Nodes)
	assert.Empty(t, l.Edges)
	assert.True(t, fig.Empty())
}

func TestCompute_IsolatedNodes(t *testing.T) {
	for _, n := range []int{1, 2, 5, 12} {
		t.Run(fmt.Sprintf("%d nodes", n), func(t *testing.T) {
			g := graph.New()
			for i := 0; i < n; i++ {
				doc := iri(fmt.Sprintf("doc%d", i))
				g.AddTriple(doc, iri("word_count"), graph.Integer(int64(i)))
			}

			l := Compute(g, Options{Seed: 42})
			assert.Len(t, l.Nodes, n)
			assert.Empty(t, l.Edges)
			for _, node := range l.Nodes {
				assert.Equal(t, fmt.Sprint(strings.TrimPrefix(node.ID, ex)), node.Label)
				assert.Contains(t, node.Attributes, "word_count")
			}
		})
	}
}

func TestCompute_SelfLoopKeepsNode(t *testing.T) {
	g := graph.New()
	g.AddTriple(iri("Narcissus"), iri("loves"), iri("Narcissus"))

	l := Compute(g, Options{})
	require.Len(t, l.Nodes, 1)
	assert.Equal(t, "Narcissus", l.Nodes[0].Label)
	assert.Empty(t, l.Edges)
	assert.Equal(t, 0.0, l.Nodes[0].X)
}

func TestCompute_ParallelEdgesMerge(t *testing.T) {
	l := Compute(parisGraph(), Options{Seed: 7})

	ids := make([]string, len(l.Nodes))
	for i, n := range l.Nodes {
		ids[i] = n.Label
	}
	assert.Equal(t, []string{"France", "Location", "Paris", "capital"}, ids)

	var labels []string
	for _, e := range l.Edges {
		labels = append(labels, e.Label)
	}
	assert.ElementsMatch(t, []string{"type", "type", "is", "contains, in"}, labels)
	assert.Len(t, l.Edges, 4)
}

func TestCompute_DeterministicForSeed(t *testing.T) {
	a := Compute(parisGraph(), Options{Seed: 99, Iterations: 80})
	b := Compute(parisGraph(), Options{Seed: 99, Iterations: 80})
	assert.Equal(t, a, b)

	c := Compute(parisGraph(), Options{Seed: 100, Iterations: 80})
	assert.NotEqual(t, a.Nodes, c.Nodes)
}

func TestCompute_CoordinatesBounded(t *testing.T) {
	l := Compute(parisGraph(), Options{Seed: 3})
	maxAbs := 0.0
	for _, n := range l.Nodes {
		assert.LessOrEqual(t, math.Abs(n.X), 1.0+1e-9)
		assert.LessOrEqual(t, math.Abs(n.Y), 1.0+1e-9)
		maxAbs = math.Max(maxAbs, math.Max(math.Abs(n.X), math.Abs(n.Y)))
	}
	assert.InDelta(t, 1.0, maxAbs, 1e-9)
}

func TestCompute_ConnectedNodesCloser(t *testing.T) {
	// A chain a-b plus far-apart isolated nodes: the linked pair should end
	// up nearer than the average isolated pair.
	g := graph.New()
	g.AddTriple(iri("a"), iri("knows"), iri("b"))
	for i := 0; i < 4; i++ {
		g.AddTriple(iri(fmt.Sprintf("z%d", i)), iri("name"), graph.String("z"))
	}
	l := Compute(g, Options{Seed: 5, Iterations: 200})

	at := map[string]types.NodePosition{}
	for _, n := range l.Nodes {
		at[n.Label] = n
	}
	dist := func(p, q string) float64 {
		return math.Hypot(at[p].X-at[q].X, at[p].Y-at[q].Y)
	}
	linked := dist("a", "b")
	var sum float64
	var pairs int
	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			sum += dist(fmt.Sprintf("z%d", i), fmt.Sprintf("z%d", j))
			pairs++
		}
	}
	assert.Less(t, linked, sum/float64(pairs))
}

func TestRender(t *testing.T) {
	l, fig := LayoutAndRender(parisGraph(), Options{Seed: 1})
	require.Len(t, fig.Data, 3)

	edges, relations, nodes := fig.Data[0], fig.Data[1], fig.Data[2]
	assert.Len(t, edges.X, 3*len(l.Edges))
	assert.Nil(t, edges.X[2], "segments are separated by null")
	assert.Len(t, relations.HoverText, len(l.Edges))
	assert.Equal(t, []string{"France", "Location", "Paris", "capital"}, nodes.Text)
}

func TestFigure_WriteJSON(t *testing.T) {
	_, fig := LayoutAndRender(parisGraph(), Options{Seed: 1})
	var buf bytes.Buffer
	require.NoError(t, fig.WriteJSON(&buf))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Len(t, decoded["data"], 3)
	assert.Contains(t, buf.String(), "null")
}

func TestFigure_WriteHTML(t *testing.T) {
	_, fig := LayoutAndRender(parisGraph(), Options{Seed: 1})
	var buf bytes.Buffer
	require.NoError(t, fig.WriteHTML(&buf, "Paris <demo>"))

	page := buf.String()
	assert.Contains(t, page, "Plotly.newPlot")
	assert.Contains(t, page, "Paris &lt;demo&gt;")
	assert.Contains(t, page, `"nodes"`)
	assert.NotContains(t, page, "The graph is empty.")

	buf.Reset()
	require.NoError(t, Render(types.Layout{}, "").WriteHTML(&buf, ""))
	assert.Contains(t, buf.String(), "The graph is empty.")
}
