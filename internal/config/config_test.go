// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docgraph/pkg/types"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// isolated returns options that point every source into a fresh directory.
func isolated(t *testing.T) (Options, string) {
	t.Helper()
	dir := t.TempDir()
	return Options{
		EnvFile:    filepath.Join(dir, ".env"),
		SecretsDir: filepath.Join(dir, ".secrets"),
	}, dir
}

func TestDefaultsAreValid(t *testing.T) {
	require.NoError(t, Validate(Defaults()))
}

func TestLoad_File(t *testing.T) {
	opts, dir := isolated(t)
	opts.File = writeFile(t, dir, "docgraph.yaml", `
source:
  timeout: 5s
  pdf_backend: markitdown
nlp:
  backend: fixture
  fixture_path: fixtures.yaml
graph:
  namespace: https://kg.example.com/
  prefix: kg
layout:
  seed: 7
extraction:
  max_retries: 0
  exclude: [Acme, Globex]
batch:
  workers: 2
  merge: true
`)

	cfg, err := Load(viper.New(), opts)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Source.Timeout)
	assert.Equal(t, types.PDFMarkitdown, cfg.Source.PDFBackend)
	assert.Equal(t, "eng", cfg.Source.OCRLanguage, "unset keys keep defaults")
	assert.Equal(t, types.NLPFixture, cfg.NLP.Backend)
	assert.Equal(t, "https://kg.example.com/", cfg.Graph.Namespace)
	assert.Equal(t, "kg", cfg.Graph.Prefix)
	assert.Equal(t, int64(7), cfg.Layout.Seed)
	assert.Equal(t, 2, cfg.Batch.Workers)
	assert.True(t, cfg.Batch.Merge)
	assert.True(t, cfg.Extraction.Copular)
	assert.Equal(t, 0, cfg.Extraction.MaxRetries, "zero is kept and disables retries")
	assert.Equal(t, []string{"Acme", "Globex"}, cfg.Extraction.Exclude)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	opts, dir := isolated(t)
	opts.File = writeFile(t, dir, "docgraph.yaml", "batch:\n  workers: 2\n")
	t.Setenv("DOCGRAPH_BATCH_WORKERS", "9")
	t.Setenv("DOCGRAPH_NLP_ENDPOINT", "http://nlp:9000")

	cfg, err := Load(viper.New(), opts)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Batch.Workers)
	assert.Equal(t, "http://nlp:9000", cfg.NLP.Endpoint)
}

func TestLoad_DotEnv(t *testing.T) {
	opts, dir := isolated(t)
	writeFile(t, dir, ".env", "DOCGRAPH_LOG_LEVEL=debug\n")
	t.Setenv("DOCGRAPH_LOG_LEVEL", "")
	os.Unsetenv("DOCGRAPH_LOG_LEVEL")

	cfg, err := Load(viper.New(), opts)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_SecretsFillAPIKey(t *testing.T) {
	opts, _ := isolated(t)
	require.NoError(t, os.Mkdir(opts.SecretsDir, 0o755))
	writeFile(t, opts.SecretsDir, "nlp-api-key", "  sk-test \n")
	var warn bytes.Buffer
	opts.Warn = &warn

	cfg, err := Load(viper.New(), opts)
	require.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.NLP.APIKey)
	assert.Contains(t, warn.String(), "Loaded secrets: [nlp-api-key]")
}

func TestLoad_EnvBeatsSecret(t *testing.T) {
	opts, _ := isolated(t)
	require.NoError(t, os.Mkdir(opts.SecretsDir, 0o755))
	writeFile(t, opts.SecretsDir, "nlp-api-key", "from-secret")
	t.Setenv("DOCGRAPH_NLP_API_KEY", "from-env")

	cfg, err := Load(viper.New(), opts)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.NLP.APIKey)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	opts, dir := isolated(t)
	opts.File = filepath.Join(dir, "missing.yaml")
	_, err := Load(viper.New(), opts)
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	opts, dir := isolated(t)
	opts.File = writeFile(t, dir, "docgraph.yaml", "source:\n  web_mode: reader\n")
	_, err := Load(viper.New(), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WebMode")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*types.PipelineConfig)
	}{
		{"zero workers", func(c *types.PipelineConfig) { c.Batch.Workers = 0 }},
		{"bad namespace", func(c *types.PipelineConfig) { c.Graph.Namespace = "not a url" }},
		{"bad prefix", func(c *types.PipelineConfig) { c.Graph.Prefix = "e x" }},
		{"unknown backend", func(c *types.PipelineConfig) { c.NLP.Backend = "stanza" }},
		{"fixture without path", func(c *types.PipelineConfig) { c.NLP.Backend = types.NLPFixture }},
		{"unknown log level", func(c *types.PipelineConfig) { c.Log.Level = "trace" }},
		{"too many retries", func(c *types.PipelineConfig) { c.Extraction.MaxRetries = 50 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			assert.Error(t, Validate(cfg))
		})
	}
}

func TestLoadSecrets(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  map[string]string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "nlp-api-key", "  sk_abc123  \n")
				writeFile(t, dir, "aws-access-key-id", "AKIA123")
				return dir
			},
			want: map[string]string{
				"nlp-api-key":       "sk_abc123",
				"aws-access-key-id": "AKIA123",
			},
		},
		{
			name: "returns empty map for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: map[string]string{},
		},
		{
			name: "skips empty files, dotfiles, and subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "nlp-api-key", "valid-key")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				writeFile(t, dir, ".hidden-key", "secret")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: map[string]string{
				"nlp-api-key": "valid-key",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadSecrets(tt.setup(t), &bytes.Buffer{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadSecrets_UnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can read any file")
	}
	dir := t.TempDir()
	writeFile(t, dir, "good-key", "value123")
	badPath := filepath.Join(dir, "bad-key")
	require.NoError(t, os.WriteFile(badPath, []byte("secret"), 0o000))
	t.Cleanup(func() { os.Chmod(badPath, 0o644) })

	var warn bytes.Buffer
	got, err := LoadSecrets(dir, &warn)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"good-key": "value123"}, got)
	assert.Contains(t, warn.String(), "bad-key")
}
