// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docgraph/internal/source"
)

var extractCmd = &cobra.Command{
	Use:   "extract <location>",
	Short: "Print the plain text of a document",
	Long: `Extract reads a PDF, image, DOCX file, web page, or text file and prints
the cleaned plain text the rest of the pipeline works on. Locations are file
paths, http(s) URLs, or s3://bucket/key URIs; "-" reads text from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	addSourceFlags(extractCmd)
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	kind, _ := cmd.Flags().GetString("kind")
	doc, err := documentFor(args[0], kind, cmd.InOrStdin())
	if err != nil {
		return err
	}

	registry := source.NewRegistry(cfg.Source, source.Tools{})
	text, err := registry.Extract(cmd.Context(), doc)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}
