// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layout

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"sort"
	"strings"

	"github.com/pdiddy/docgraph/pkg/types"
)

// Figure is a Plotly-compatible figure: a list of traces and a layout.
type Figure struct {
	Data   []Trace      `json:"data"`
	Layout FigureLayout `json:"layout"`
}

// Trace is one Plotly scatter trace. Nil coordinates serialize as null and
// break line segments between edges.
type Trace struct {
	Type         string     `json:"type"`
	Mode         string     `json:"mode"`
	Name         string     `json:"name"`
	X            []*float64 `json:"x"`
	Y            []*float64 `json:"y"`
	Text         []string   `json:"text,omitempty"`
	HoverText    []string   `json:"hovertext,omitempty"`
	HoverInfo    string     `json:"hoverinfo"`
	TextPosition string     `json:"textposition,omitempty"`
	Line         *Line      `json:"line,omitempty"`
	Marker       *Marker    `json:"marker,omitempty"`
}

// Line styles edge segments.
type Line struct {
	Width float64 `json:"width"`
	Color string  `json:"color"`
}

// Marker styles node points.
type Marker struct {
	Size    float64 `json:"size"`
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity"`
}

// Axis hides grid, zero line, and tick labels.
type Axis struct {
	ShowGrid       bool `json:"showgrid"`
	ZeroLine       bool `json:"zeroline"`
	ShowTickLabels bool `json:"showticklabels"`
}

// FigureLayout is the Plotly layout object.
type FigureLayout struct {
	Title      string `json:"title,omitempty"`
	ShowLegend bool   `json:"showlegend"`
	HoverMode  string `json:"hovermode"`
	XAxis      Axis   `json:"xaxis"`
	YAxis      Axis   `json:"yaxis"`
}

// Empty reports whether the figure has nothing to draw.
func (f Figure) Empty() bool { return len(f.Data) == 0 }

func ptr(v float64) *float64 { return &v }

// Render draws l as three traces: edge lines, invisible edge midpoints that
// carry the predicate labels on hover, and labeled nodes.
func Render(l types.Layout, title string) Figure {
	fig := Figure{
		Data: []Trace{},
		Layout: FigureLayout{
			Title:     title,
			HoverMode: "closest",
		},
	}
	if len(l.Nodes) == 0 {
		return fig
	}

	at := make(map[string]types.NodePosition, len(l.Nodes))
	for _, n := range l.Nodes {
		at[n.ID] = n
	}

	edges := Trace{
		Type: "scatter", Mode: "lines", Name: "edges", HoverInfo: "none",
		X: []*float64{}, Y: []*float64{},
		Line: &Line{Width: 0.5, Color: "#888"},
	}
	labels := Trace{
		Type: "scatter", Mode: "markers", Name: "relations", HoverInfo: "text",
		X: []*float64{}, Y: []*float64{},
		Marker: &Marker{Size: 6, Color: "#888", Opacity: 0},
	}
	for _, e := range l.Edges {
		src, dst := at[e.SourceID], at[e.TargetID]
		edges.X = append(edges.X, ptr(src.X), ptr(dst.X), nil)
		edges.Y = append(edges.Y, ptr(src.Y), ptr(dst.Y), nil)
		labels.X = append(labels.X, ptr((src.X+dst.X)/2))
		labels.Y = append(labels.Y, ptr((src.Y+dst.Y)/2))
		labels.HoverText = append(labels.HoverText, e.Label)
	}

	nodes := Trace{
		Type: "scatter", Mode: "markers+text", Name: "nodes", HoverInfo: "text",
		TextPosition: "bottom center",
		X:            make([]*float64, 0, len(l.Nodes)),
		Y:            make([]*float64, 0, len(l.Nodes)),
		Marker:       &Marker{Size: 10, Color: "#1f77b4", Opacity: 1},
	}
	for _, n := range l.Nodes {
		nodes.X = append(nodes.X, ptr(n.X))
		nodes.Y = append(nodes.Y, ptr(n.Y))
		nodes.Text = append(nodes.Text, n.Label)
		nodes.HoverText = append(nodes.HoverText, hover(n))
	}

	fig.Data = append(fig.Data, edges, labels, nodes)
	return fig
}

func hover(n types.NodePosition) string {
	if len(n.Attributes) == 0 {
		return n.ID
	}
	keys := make([]string, 0, len(n.Attributes))
	for k := range n.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := []string{n.ID}
	for _, k := range keys {
		lines = append(lines, k+": "+n.Attributes[k])
	}
	return strings.Join(lines, "<br>")
}

// WriteJSON writes the figure as indented JSON.
func (f Figure) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encoding figure: %w", err)
	}
	return nil
}

var pageTemplate = template.Must(template.New("figure").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="https://cdn.plot.ly/plotly-2.35.2.min.js"></script>
</head>
<body>
<div id="graph" style="width:100%;height:90vh;"></div>
{{if .Empty}}<p>The graph is empty.</p>{{end}}
<script>
var figure = {{.Figure}};
Plotly.newPlot("graph", figure.data, figure.layout);
</script>
</body>
</html>
`))

// WriteHTML writes a standalone page that draws the figure with Plotly.
func (f Figure) WriteHTML(w io.Writer, title string) error {
	if title == "" {
		title = f.Layout.Title
	}
	if title == "" {
		title = "Knowledge graph"
	}
	data := struct {
		Title  string
		Empty  bool
		Figure Figure
	}{title, f.Empty(), f}
	if err := pageTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("rendering figure page: %w", err)
	}
	return nil
}
