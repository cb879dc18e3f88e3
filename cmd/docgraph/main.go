// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the docgraph CLI.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/docgraph/internal/config"
	"github.com/pdiddy/docgraph/internal/logging"
	"github.com/pdiddy/docgraph/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// cfg and logger are set by the root pre-run for every subcommand.
	cfg       types.PipelineConfig
	logger    *log.Logger
	logCloser io.Closer
)

// flagKeys binds command flags to config keys. A flag overrides the config
// file and environment only when set on the command line.
var flagKeys = map[string]string{
	"log-level":   "log.level",
	"log-file":    "log.file",
	"output-dir":  "export.output_dir",
	"seed":        "layout.seed",
	"iterations":  "layout.iterations",
	"namespace":   "graph.namespace",
	"prefix":      "graph.prefix",
	"workers":     "batch.workers",
	"merge":       "batch.merge",
	"addr":        "server.addr",
	"pdf-backend": "source.pdf_backend",
	"web-mode":    "source.web_mode",
	"nlp-backend": "nlp.backend",
	"fixture":     "nlp.fixture_path",
	"exclude":     "extraction.exclude",
}

// rootCmd is the base command for the docgraph CLI.
var rootCmd = &cobra.Command{
	Use:   "docgraph",
	Short: "Turn documents into knowledge graphs",
	Long: `docgraph extracts text from PDFs, images, web pages, DOCX files, and plain
text, finds entities and relationships with an NLP service, and builds a
triple graph exported as Turtle with a laid-out figure.

Each pipeline stage is a subcommand: extract prints document text, build
produces the graph of one document, batch processes many documents in
parallel, render lays out an existing Turtle file, and serve exposes the
pipeline over HTTP.`,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logCloser != nil {
			return logCloser.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./docgraph.yaml or ~/.config/docgraph/docgraph.yaml)")
	rootCmd.PersistentFlags().String("env-file", ".env", "dotenv file loaded before reading DOCGRAPH_* variables")
	rootCmd.PersistentFlags().String("secrets-dir", config.DefaultSecretsDir, "directory of secret files (nlp-api-key, aws-access-key-id, ...)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-file", "", "also write logs to this rotating file")
}

func initConfig(cmd *cobra.Command, args []string) error {
	v := viper.GetViper()
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}

	cfgFile, _ := cmd.Flags().GetString("config")
	envFile, _ := cmd.Flags().GetString("env-file")
	secretsDir, _ := cmd.Flags().GetString("secrets-dir")

	loaded, err := config.Load(v, config.Options{
		File:       cfgFile,
		EnvFile:    envFile,
		SecretsDir: secretsDir,
		Warn:       os.Stderr,
	})
	if err != nil {
		return err
	}
	cfg = loaded

	logger, logCloser, err = logging.New(os.Stderr, cfg.Log)
	if err != nil {
		return fmt.Errorf("configuring logging: %w", err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
