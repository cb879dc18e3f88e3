// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/pdiddy/docgraph/internal/pipeline"
)

var (
	colorAccent = lipgloss.AdaptiveColor{Light: "#0087af", Dark: "#5fd7ff"}
	colorPass   = lipgloss.AdaptiveColor{Light: "#008700", Dark: "#87d787"}
	colorFail   = lipgloss.AdaptiveColor{Light: "#af0000", Dark: "#ff5f5f"}
	colorMuted  = lipgloss.AdaptiveColor{Light: "#6c6c6c", Dark: "#8a8a8a"}

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Align(lipgloss.Center)
	passStyle   = lipgloss.NewStyle().Foreground(colorPass).Padding(0, 1)
	failStyle   = lipgloss.NewStyle().Foreground(colorFail).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// renderSummary draws one row per document: built documents with their
// graph size, failures with their kind and reason.
func renderSummary(s pipeline.BatchSummary) string {
	rows := make([][]string, 0, len(s.Results)+len(s.Failures))
	for _, r := range s.Results {
		rows = append(rows, []string{
			r.Document.ID,
			"built",
			fmt.Sprintf("%d", r.Graph.Len()),
			fmt.Sprintf("%d nodes, %d edges", len(r.Layout.Nodes), len(r.Layout.Edges)),
		})
	}
	for _, f := range s.Failures {
		rows = append(rows, []string{f.DocumentID, "failed", "-", fmt.Sprintf("%s: %v", f.Kind, f.Err)})
	}

	t := table.New().
		Headers("Document", "Status", "Triples", "Detail").
		Rows(rows...).
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorMuted)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 1 {
				if rows[row][1] == "failed" {
					return failStyle
				}
				return passStyle
			}
			return cellStyle
		})
	return t.String()
}
