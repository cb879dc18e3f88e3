// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docgraph/internal/export"
)

var schemaCmd = &cobra.Command{
	Use:   "schema [layout|record]",
	Short: "Print the JSON Schema of an export document",
	Long: `Schema prints the JSON Schema of layout.json (the visualization payload)
or extraction.yaml (the extraction record). The default is layout.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: export.SchemaNames(),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := "layout"
		if len(args) == 1 {
			name = strings.ToLower(args[0])
		}
		if err := export.ExportJSONSchema(cmd.OutOrStdout(), name); err != nil {
			return fmt.Errorf("schema: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
