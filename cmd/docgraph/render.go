// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docgraph/internal/export"
	"github.com/pdiddy/docgraph/internal/graph"
	"github.com/pdiddy/docgraph/internal/layout"
)

var renderCmd = &cobra.Command{
	Use:   "render <graph.ttl>",
	Short: "Lay out an existing Turtle graph",
	Long: `Render reads a Turtle file written by build or batch, computes the spring
layout, and writes layout.json, figure.json, and figure.html. Output goes
next to the input unless --output-dir is set.`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().String("output-dir", "", "directory for the layout and figure files")
	renderCmd.Flags().Int64("seed", 0, "layout seed")
	renderCmd.Flags().Int("iterations", 0, "layout iterations")
	renderCmd.Flags().String("title", "", "figure title (default: file name)")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	path := args[0]
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	g, err := graph.ParseTurtle(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	if cmd.Flags().Changed("output-dir") {
		dir = cfg.Export.OutputDir
	}
	title, _ := cmd.Flags().GetString("title")
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	l, fig := layout.LayoutAndRender(g, layout.Options{Seed: cfg.Layout.Seed, Iterations: cfg.Layout.Iterations})
	written, err := export.WriteLayout(dir, l, fig, title)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "rendered %s: %d nodes, %d edges\n", path, len(l.Nodes), len(l.Edges))
	for _, p := range written {
		fmt.Fprintf(out, "  %s\n", p)
	}
	return nil
}
