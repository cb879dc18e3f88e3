// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config loads the pipeline configuration from defaults, a YAML
// file, a .env file, DOCGRAPH_* environment variables, and the .secrets/
// directory, then validates it.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/pdiddy/docgraph/internal/identifier"
	"github.com/pdiddy/docgraph/pkg/types"
)

const (
	// Name is the config file base name (docgraph.yaml).
	Name = "docgraph"

	// EnvPrefix prefixes environment overrides, e.g. DOCGRAPH_NLP_ENDPOINT.
	EnvPrefix = "DOCGRAPH"
)

// Options locate the configuration sources. Zero values use the defaults.
type Options struct {
	// File is an explicit config file. When empty, docgraph.yaml is looked
	// up in the working directory and ~/.config/docgraph.
	File string

	// EnvFile is loaded into the environment before reading variables
	// (default ".env"). A missing file is ignored.
	EnvFile string

	// SecretsDir holds one secret per file (default ".secrets/").
	SecretsDir string

	// Warn receives non-fatal notices. Nil discards them.
	Warn io.Writer
}

// Defaults returns the built-in configuration.
func Defaults() types.PipelineConfig {
	return types.PipelineConfig{
		Source: types.SourceConfig{
			HTTPConfig:  types.HTTPConfig{Timeout: 30 * time.Second, UserAgent: "docgraph/0.1", MaxRetries: 3},
			PDFBackend:  types.PDFPdftotext,
			OCRLanguage: "eng",
			WebMode:     types.WebFullText,
			MaxBytes:    50 << 20,
		},
		NLP: types.NLPConfig{
			HTTPConfig: types.HTTPConfig{Timeout: 60 * time.Second, UserAgent: "docgraph/0.1", MaxRetries: 3},
			Backend:    types.NLPSpacy,
			Endpoint:   "http://localhost:8080",
			Model:      "en_core_web_sm",
		},
		Extraction: types.ExtractionConfig{Copular: true, MaxRetries: 3},
		Graph:      types.GraphConfig{Namespace: identifier.DefaultNamespace, Prefix: "ex"},
		Layout:     types.LayoutConfig{Seed: 42, Iterations: 50},
		Export:     types.ExportConfig{OutputDir: "output"},
		Batch:      types.BatchConfig{Workers: 4},
		Server:     types.ServerConfig{Addr: ":8000", MaxUploadBytes: 50 << 20},
		Log:        types.LogConfig{Level: "info", MaxSizeMB: 10, MaxBackups: 3},
	}
}

// SetDefaults registers Defaults() with v so every key is known to
// Unmarshal and to AutomaticEnv.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	set := map[string]any{
		"source.timeout":      d.Source.Timeout,
		"source.user_agent":   d.Source.UserAgent,
		"source.max_retries":  d.Source.MaxRetries,
		"source.pdf_backend":  string(d.Source.PDFBackend),
		"source.ocr_language": d.Source.OCRLanguage,
		"source.web_mode":     string(d.Source.WebMode),
		"source.max_bytes":    d.Source.MaxBytes,
		"source.s3_region":    "",
		"source.s3_endpoint":  "",

		"nlp.timeout":      d.NLP.Timeout,
		"nlp.user_agent":   d.NLP.UserAgent,
		"nlp.max_retries":  d.NLP.MaxRetries,
		"nlp.backend":      string(d.NLP.Backend),
		"nlp.endpoint":     d.NLP.Endpoint,
		"nlp.model":        d.NLP.Model,
		"nlp.api_key":      "",
		"nlp.fixture_path": "",
		"nlp.cache_dir":    "",

		"extraction.copular":     d.Extraction.Copular,
		"extraction.max_retries": d.Extraction.MaxRetries,
		"extraction.exclude":     []string{},

		"graph.namespace": d.Graph.Namespace,
		"graph.prefix":    d.Graph.Prefix,

		"layout.seed":       d.Layout.Seed,
		"layout.iterations": d.Layout.Iterations,

		"export.output_dir": d.Export.OutputDir,

		"batch.workers": d.Batch.Workers,
		"batch.merge":   d.Batch.Merge,

		"server.addr":             d.Server.Addr,
		"server.max_upload_bytes": d.Server.MaxUploadBytes,

		"log.level":       d.Log.Level,
		"log.file":        "",
		"log.max_size_mb": d.Log.MaxSizeMB,
		"log.max_backups": d.Log.MaxBackups,
	}
	for k, val := range set {
		v.SetDefault(k, val)
	}
}

// Load reads every configuration source into v and returns the validated
// result. Flags bound to v before the call take precedence over the file and
// the environment.
func Load(v *viper.Viper, opts Options) (types.PipelineConfig, error) {
	warn := opts.Warn
	if warn == nil {
		warn = io.Discard
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return types.PipelineConfig{}, fmt.Errorf("loading %s: %w", envFile, err)
	}

	secretsDir := opts.SecretsDir
	if secretsDir == "" {
		secretsDir = DefaultSecretsDir
	}
	secrets, err := LoadSecrets(secretsDir, warn)
	if err != nil {
		return types.PipelineConfig{}, err
	}
	SetDefaults(v)
	applySecrets(v, secrets, warn)

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.SetConfigName(Name)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", Name))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.File != "" || !errors.As(err, &notFound) {
			return types.PipelineConfig{}, fmt.Errorf("reading config: %w", err)
		}
	} else {
		fmt.Fprintln(warn, "Using config file:", v.ConfigFileUsed())
	}

	var cfg types.PipelineConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return types.PipelineConfig{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return types.PipelineConfig{}, err
	}
	return cfg, nil
}

// applySecrets fills config keys and AWS variables from secret files.
// Secrets rank below every other source.
func applySecrets(v *viper.Viper, secrets map[string]string, warn io.Writer) {
	if len(secrets) == 0 {
		return
	}
	keys := make([]string, 0, len(secrets))
	for k := range secrets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintf(warn, "Loaded secrets: %v\n", keys)

	for name, key := range secretKeys {
		if value, ok := secrets[name]; ok {
			v.SetDefault(key, value)
		}
	}
	for name, env := range secretEnv {
		if value, ok := secrets[name]; ok && os.Getenv(env) == "" {
			os.Setenv(env, value)
		}
	}
}

var validate = validator.New()

// Validate checks cfg against the validate tags of its fields.
func Validate(cfg types.PipelineConfig) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if cfg.NLP.Backend == types.NLPFixture && cfg.NLP.FixturePath == "" {
		return errors.New("invalid config: nlp.fixture_path is required for the fixture backend")
	}
	return nil
}
