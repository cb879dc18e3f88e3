// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build <location>",
	Short: "Build the knowledge graph of one document",
	Long: `Build extracts the text of a document, infers its schema (entities and
relationships, or word statistics), builds the triple graph, lays it out,
and writes graph.ttl, layout.json, figure.html, figure.json, and
extraction.yaml under <output-dir>/<document-id>/.`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	addGraphFlags(buildCmd)
	buildCmd.Flags().String("id", "", "document ID (default: derived from the location)")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	mode, err := schemaMode(cmd)
	if err != nil {
		return err
	}
	kind, _ := cmd.Flags().GetString("kind")
	doc, err := documentFor(args[0], kind, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if id, _ := cmd.Flags().GetString("id"); id != "" {
		doc.ID = id
	}

	p, closer, err := newPipeline(cmd, mode)
	if err != nil {
		return err
	}
	defer closer.Close()

	res, err := p.Run(cmd.Context(), doc, mode)
	if err != nil {
		return err
	}

	written, err := newExporter().Write(res)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "built %s: %d triples, %d nodes, %d edges\n",
		doc.ID, res.Graph.Len(), len(res.Layout.Nodes), len(res.Layout.Edges))
	for _, path := range written {
		fmt.Fprintf(out, "  %s\n", path)
	}
	return nil
}
