// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/docgraph/internal/graph"
	"github.com/pdiddy/docgraph/pkg/types"
)

const defaultWorkers = 4

// BatchOptions controls RunBatch.
type BatchOptions struct {
	// Mode selects the schema inferred for every document.
	Mode types.SchemaKind

	// Workers bounds the documents processed at once (default 4).
	Workers int

	// Merge also returns the union of every successful graph.
	Merge bool

	// Skip, when set, is consulted before each document. Skipped documents
	// are reported and counted but not run.
	Skip func(types.Document) bool

	// OnResult is called from the worker for each successful document,
	// typically to export it. An error is reported as a per-document
	// failure.
	OnResult func(ctx context.Context, r *Result) error
}

// Failure records why one document of a batch did not produce a graph.
type Failure struct {
	DocumentID string
	Kind       string
	Err        error
}

// BatchSummary holds the outcome of a batch run.
type BatchSummary struct {
	Built   int
	Skipped int
	Failed  int

	// Results holds the successful runs in input order.
	Results  []*Result
	Failures []Failure

	// Merged is nil unless BatchOptions.Merge was set.
	Merged *graph.Graph
}

// Total returns the number of documents processed.
func (s BatchSummary) Total() int {
	return s.Built + s.Skipped + s.Failed
}

// HasFailures reports whether any document failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// RunBatch runs every document with bounded parallelism, printing one
// status line per document to w. Extraction failures and empty documents
// are reported and counted; any other error stops the batch and is
// returned.
func (p *Pipeline) RunBatch(ctx context.Context, docs []types.Document, opts BatchOptions, w io.Writer) (BatchSummary, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	results := make([]*Result, len(docs))
	failures := make([]*Failure, len(docs))
	skipped := make([]bool, len(docs))
	var outMu sync.Mutex
	printf := func(format string, args ...any) {
		outMu.Lock()
		defer outMu.Unlock()
		fmt.Fprintf(w, format, args...)
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, doc := range docs {
		g.Go(func() error {
			if gCtx.Err() != nil {
				return nil
			}
			if opts.Skip != nil && opts.Skip(doc) {
				skipped[i] = true
				printf("skipped %s (up to date)\n", doc.ID)
				return nil
			}

			res, err := p.Run(gCtx, doc, opts.Mode)
			if err == nil && opts.OnResult != nil {
				if cbErr := opts.OnResult(gCtx, res); cbErr != nil {
					err = &types.ExtractionFailure{DocumentID: doc.ID, Kind: types.FailureSource, Err: cbErr}
				}
			}
			if err != nil {
				f, ok := documentFailure(doc.ID, err)
				if !ok {
					return fmt.Errorf("document %s: %w", doc.ID, err)
				}
				failures[i] = &f
				printf("failed  %s: %s: %v\n", doc.ID, f.Kind, f.Err)
				return nil
			}

			results[i] = res
			printf("built   %s (%d triples)\n", doc.ID, res.Graph.Len())
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return BatchSummary{}, err
	}
	if err := ctx.Err(); err != nil {
		return BatchSummary{}, err
	}

	var summary BatchSummary
	if opts.Merge {
		summary.Merged = graph.New()
	}
	for i := range docs {
		switch {
		case results[i] != nil:
			summary.Built++
			summary.Results = append(summary.Results, results[i])
			if summary.Merged != nil {
				summary.Merged.Merge(results[i].Graph)
			}
		case failures[i] != nil:
			summary.Failed++
			summary.Failures = append(summary.Failures, *failures[i])
		case skipped[i]:
			summary.Skipped++
		}
	}

	printf("\nBatch summary: %d built, %d skipped, %d failed (total: %d)\n",
		summary.Built, summary.Skipped, summary.Failed, summary.Total())
	return summary, nil
}

// documentFailure classifies err as a per-document failure. The second
// return is false for errors that must stop the batch.
func documentFailure(docID string, err error) (Failure, bool) {
	var ef *types.ExtractionFailure
	switch {
	case errors.As(err, &ef):
		return Failure{DocumentID: docID, Kind: string(ef.Kind), Err: ef.Err}, true
	case errors.Is(err, types.ErrEmptyInput):
		return Failure{DocumentID: docID, Kind: "empty", Err: err}, true
	}
	return Failure{}, false
}
