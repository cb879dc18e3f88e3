// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docgraph/internal/pipeline"
	"github.com/pdiddy/docgraph/pkg/types"
)

var batchCmd = &cobra.Command{
	Use:   "batch [locations...]",
	Short: "Build knowledge graphs for many documents in parallel",
	Long: `Batch runs build over every location with a bounded number of workers.
Documents that fail (unreadable sources, unreachable services, empty text)
are reported and counted; the rest continue. Local files whose export is
newer than the source are skipped unless --force is set. With --merge the
union of all graphs is also written to <output-dir>/merged.ttl.`,
	RunE: runBatch,
}

func init() {
	addGraphFlags(batchCmd)
	batchCmd.Flags().String("list", "", "file with one location per line")
	batchCmd.Flags().Int("workers", 0, "documents processed in parallel")
	batchCmd.Flags().Bool("merge", false, "also write the merged graph of all documents")
	batchCmd.Flags().Bool("force", false, "rebuild documents whose export is up to date")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	mode, err := schemaMode(cmd)
	if err != nil {
		return err
	}

	locations := append([]string(nil), args...)
	if list, _ := cmd.Flags().GetString("list"); list != "" {
		more, err := readList(list)
		if err != nil {
			return fmt.Errorf("reading list: %w", err)
		}
		locations = append(locations, more...)
	}
	if len(locations) == 0 {
		return fmt.Errorf("provide one or more document locations or --list")
	}

	kind, _ := cmd.Flags().GetString("kind")
	docs := make([]types.Document, 0, len(locations))
	for _, loc := range locations {
		doc, err := documentFor(loc, kind, cmd.InOrStdin())
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}
	uniqueIDs(docs)

	p, closer, err := newPipeline(cmd, mode)
	if err != nil {
		return err
	}
	defer closer.Close()

	exp := newExporter()
	force, _ := cmd.Flags().GetBool("force")
	opts := pipeline.BatchOptions{
		Mode:    mode,
		Workers: cfg.Batch.Workers,
		Merge:   cfg.Batch.Merge,
		OnResult: func(_ context.Context, res *pipeline.Result) error {
			_, err := exp.Write(res)
			return err
		},
	}
	if !force {
		opts.Skip = func(doc types.Document) bool {
			upToDate, err := exp.UpToDate(doc)
			if err != nil {
				logger.Warn("could not check export", "doc", doc.ID, "err", err)
				return false
			}
			return upToDate
		}
	}

	out := cmd.OutOrStdout()
	summary, err := p.RunBatch(cmd.Context(), docs, opts, out)
	if err != nil {
		return err
	}

	if summary.Merged != nil {
		path, err := exp.WriteMerged(summary.Merged)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "merged graph: %s (%d triples)\n", path, summary.Merged.Len())
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, renderSummary(summary))

	if summary.HasFailures() {
		return fmt.Errorf("%w: %d of %d", errFailures, summary.Failed, summary.Total())
	}
	return nil
}
