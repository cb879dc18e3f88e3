// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docgraph/internal/server"
	"github.com/pdiddy/docgraph/pkg/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the pipeline over HTTP",
	Long: `Serve starts an HTTP API. GET /healthz reports liveness; POST /v1/graphs
accepts a JSON body ({"text"} or {"location"}, optional "kind", "mode",
"id") or a multipart upload in the "file" field, and returns the graph as
Turtle with its layout.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8000)")
	serveCmd.Flags().String("nlp-backend", "", "NLP backend: spacy or fixture")
	serveCmd.Flags().String("fixture", "", "fixture file for the fixture NLP backend")
	serveCmd.Flags().Bool("strict", false, "only accept verb heads (no copular relationships)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	p, closer, err := newPipeline(cmd, types.SchemaEntityRelation)
	if err != nil {
		return err
	}
	defer closer.Close()

	srv := server.New(p, server.Config{
		Prefix:         cfg.Graph.Prefix,
		Namespace:      cfg.Graph.Namespace,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Start(ctx, cfg.Server.Addr)
}
