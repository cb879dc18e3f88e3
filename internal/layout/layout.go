// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package layout positions graph nodes with a seeded spring layout and
// renders the result as a chart payload.
package layout

import (
	"math"
	"math/rand/v2"
	"sort"
	"strings"

	gograph "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
	gonumlayout "gonum.org/v1/gonum/graph/layout"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/pdiddy/docgraph/internal/graph"
	"github.com/pdiddy/docgraph/internal/identifier"
	"github.com/pdiddy/docgraph/pkg/types"
)

const defaultIterations = 50

// Options controls the spring layout.
type Options struct {
	// Seed fixes the initial positions; equal seeds give equal layouts.
	Seed int64

	// Iterations is the number of simulation steps (default 50).
	Iterations int
}

// LayoutAndRender computes the layout of g and the figure that draws it.
// An empty graph yields an empty layout and an empty figure.
func LayoutAndRender(g *graph.Graph, opts Options) (types.Layout, Figure) {
	l := Compute(g, opts)
	return l, Render(l, "")
}

// view is the undirected simple graph drawn for a triple set. Node i of g
// stands for ids[i].
type view struct {
	ids   []string
	attrs map[string]map[string][]string
	edges []types.LayoutEdge
	g     *simple.UndirectedGraph
}

// buildView collects IRI nodes, folds literal objects into attributes, and
// merges parallel triples into one edge per unordered node pair.
func buildView(g *graph.Graph) view {
	nodes := make(map[string]struct{})
	attrs := make(map[string]map[string][]string)
	type pair struct{ a, b string }
	edgeIndex := make(map[pair]int)
	var edges []types.LayoutEdge
	labels := make([]map[string]struct{}, 0)

	for _, t := range g.Triples() {
		s := t.S.Value
		nodes[s] = struct{}{}

		if t.O.IsLiteral() {
			key := identifier.LocalName(t.P.Value)
			if attrs[s] == nil {
				attrs[s] = make(map[string][]string)
			}
			attrs[s][key] = append(attrs[s][key], t.O.Value)
			continue
		}

		o := t.O.Value
		nodes[o] = struct{}{}
		if s == o {
			continue
		}

		k := pair{s, o}
		if o < s {
			k = pair{o, s}
		}
		idx, ok := edgeIndex[k]
		if !ok {
			idx = len(edges)
			edgeIndex[k] = idx
			edges = append(edges, types.LayoutEdge{SourceID: s, TargetID: o})
			labels = append(labels, make(map[string]struct{}))
		}
		labels[idx][identifier.LocalName(t.P.Value)] = struct{}{}
	}

	for i := range edges {
		names := make([]string, 0, len(labels[i]))
		for n := range labels[i] {
			names = append(names, n)
		}
		sort.Strings(names)
		edges[i].Label = strings.Join(names, ", ")
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].SourceID != edges[j].SourceID {
			return edges[i].SourceID < edges[j].SourceID
		}
		return edges[i].TargetID < edges[j].TargetID
	})

	ids := make([]string, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	ug := simple.NewUndirectedGraph()
	index := make(map[string]int64, len(ids))
	for i, id := range ids {
		index[id] = int64(i)
		ug.AddNode(simple.Node(i))
	}
	for _, e := range edges {
		ug.SetEdge(simple.Edge{F: simple.Node(index[e.SourceID]), T: simple.Node(index[e.TargetID])})
	}

	return view{ids: ids, attrs: attrs, edges: edges, g: ug}
}

// Compute lays out g. Nodes are sorted by identifier; coordinates fall in
// [-1, 1].
func Compute(g *graph.Graph, opts Options) types.Layout {
	v := buildView(g)
	if len(v.ids) == 0 {
		return types.Layout{Nodes: []types.NodePosition{}, Edges: []types.LayoutEdge{}}
	}

	iterations := opts.Iterations
	if iterations <= 0 {
		iterations = defaultIterations
	}
	pos := springLayout(v, opts.Seed, iterations)

	nodes := make([]types.NodePosition, len(v.ids))
	for i, id := range v.ids {
		nodes[i] = types.NodePosition{
			ID:         id,
			Label:      identifier.LocalName(id),
			X:          pos[i][0],
			Y:          pos[i][1],
			Attributes: flattenAttrs(v.attrs[id]),
		}
	}
	edges := v.edges
	if edges == nil {
		edges = []types.LayoutEdge{}
	}
	return types.Layout{Nodes: nodes, Edges: edges}
}

func flattenAttrs(m map[string][]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, vals := range m {
		sorted := append([]string(nil), vals...)
		sort.Strings(sorted)
		out[k] = strings.Join(sorted, ", ")
	}
	return out
}

// springLayout runs the Eades spring embedder: adjacent nodes attract
// logarithmically and every pair repels, with Barnes-Hut approximation.
// Initial positions come from seed.
func springLayout(v view, seed int64, iterations int) [][2]float64 {
	n := len(v.ids)
	pos := make([][2]float64, n)
	if n == 1 {
		return pos
	}

	eades := gonumlayout.EadesR2{
		Updates:   iterations,
		Repulsion: 1,
		Rate:      0.05,
		Theta:     0.2,
		Src:       rand.NewPCG(uint64(seed), uint64(seed)),
	}
	opt := gonumlayout.NewOptimizerR2(orderedGraph{v.g}, eades.Update)
	for opt.Update() {
	}

	for i := range pos {
		c := opt.Coord2(int64(i))
		pos[i] = [2]float64{c.X, c.Y}
	}
	return rescale(pos)
}

// orderedGraph iterates nodes and neighbours by ID. The embedder assigns
// seeded positions in iteration order, so map order would leak into the
// layout.
type orderedGraph struct {
	*simple.UndirectedGraph
}

func (g orderedGraph) Nodes() gograph.Nodes {
	return byID(g.UndirectedGraph.Nodes())
}

func (g orderedGraph) From(id int64) gograph.Nodes {
	return byID(g.UndirectedGraph.From(id))
}

func byID(it gograph.Nodes) gograph.Nodes {
	nodes := gograph.NodesOf(it)
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })
	return iterator.NewOrderedNodes(nodes)
}

// rescale centers positions on the origin and scales the largest absolute
// coordinate to 1.
func rescale(pos [][2]float64) [][2]float64 {
	var cx, cy float64
	for _, p := range pos {
		cx += p[0]
		cy += p[1]
	}
	cx /= float64(len(pos))
	cy /= float64(len(pos))

	limit := 0.0
	for i := range pos {
		pos[i][0] -= cx
		pos[i][1] -= cy
		limit = math.Max(limit, math.Max(math.Abs(pos[i][0]), math.Abs(pos[i][1])))
	}
	if limit == 0 {
		return pos
	}
	for i := range pos {
		pos[i][0] /= limit
		pos[i][1] /= limit
	}
	return pos
}
