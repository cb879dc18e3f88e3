// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "docgraph/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRetries bounds retries on HTTP 429 and 5xx responses (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries" validate:"min=0,max=10"`
}

// PDFBackend identifies the PDF text extraction tool.
type PDFBackend string

const (
	PDFPdftotext  PDFBackend = "pdftotext"
	PDFMarkitdown PDFBackend = "markitdown"
)

// WebMode selects how HTML pages are reduced to text.
type WebMode string

const (
	// WebArticle keeps only the main readable article.
	WebArticle WebMode = "article"
	// WebFullText keeps all visible text except scripts and styles.
	WebFullText WebMode = "fulltext"
)

// SourceConfig holds settings for the text-source adapters.
type SourceConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// PDFBackend selects pdftotext or the markitdown container.
	PDFBackend PDFBackend `json:"pdf_backend" yaml:"pdf_backend" mapstructure:"pdf_backend" validate:"oneof=pdftotext markitdown"`

	// OCRLanguage is passed to tesseract as --lang / -l (default "eng").
	OCRLanguage string `json:"ocr_language" yaml:"ocr_language" mapstructure:"ocr_language"`

	// WebMode selects article or fulltext extraction for HTML.
	WebMode WebMode `json:"web_mode" yaml:"web_mode" mapstructure:"web_mode" validate:"oneof=article fulltext"`

	// MaxBytes caps the payload size read from any location (default 50 MiB).
	MaxBytes int64 `json:"max_bytes" yaml:"max_bytes" mapstructure:"max_bytes" validate:"min=0"`

	// S3Region and S3Endpoint configure s3:// locations. An empty endpoint
	// uses the AWS default resolver.
	S3Region   string `json:"s3_region,omitempty" yaml:"s3_region,omitempty" mapstructure:"s3_region"`
	S3Endpoint string `json:"s3_endpoint,omitempty" yaml:"s3_endpoint,omitempty" mapstructure:"s3_endpoint"`
}

// NLPBackend identifies the NLP capability implementation.
type NLPBackend string

const (
	NLPSpacy   NLPBackend = "spacy"
	NLPFixture NLPBackend = "fixture"
)

// NLPConfig holds settings for the NER and dependency-parse capability.
type NLPConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Backend selects the spaCy service client or the fixture replayer.
	Backend NLPBackend `json:"backend" yaml:"backend" mapstructure:"backend" validate:"oneof=spacy fixture"`

	// Endpoint is the spaCy service base URL (e.g. "http://localhost:8080").
	Endpoint string `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint" validate:"omitempty,url"`

	// Model is the spaCy pipeline name requested from the service.
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is an optional bearer token for the service.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// FixturePath is the YAML file replayed by the fixture backend.
	FixturePath string `json:"fixture_path,omitempty" yaml:"fixture_path,omitempty" mapstructure:"fixture_path"`

	// CacheDir holds the SQLite analysis cache. Empty disables caching.
	CacheDir string `json:"cache_dir,omitempty" yaml:"cache_dir,omitempty" mapstructure:"cache_dir"`
}

// ExtractionConfig holds settings for entity and relationship extraction.
type ExtractionConfig struct {
	// Copular lets copular sentences ("X is the Y") produce relationships
	// by accepting AUX heads and attr complements (default true).
	Copular bool `json:"copular" yaml:"copular" mapstructure:"copular"`

	// MaxRetries is the number of retry attempts for failed NLP calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries" validate:"min=0,max=10"`

	// Exclude lists entity surfaces removed before the graph is built.
	// Relationships naming an excluded surface are dropped with it.
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty" mapstructure:"exclude"`
}

// GraphConfig holds identifier and export naming settings.
type GraphConfig struct {
	// Namespace is the base IRI prepended to every identifier.
	Namespace string `json:"namespace" yaml:"namespace" mapstructure:"namespace" validate:"required,url"`

	// Prefix is the Turtle prefix bound to Namespace (default "ex").
	Prefix string `json:"prefix" yaml:"prefix" mapstructure:"prefix" validate:"required,alphanum"`
}

// LayoutConfig holds spring layout settings.
type LayoutConfig struct {
	// Seed makes the layout reproducible for a fixed graph.
	Seed int64 `json:"seed" yaml:"seed" mapstructure:"seed"`

	// Iterations is the number of force simulation steps (default 50).
	Iterations int `json:"iterations" yaml:"iterations" mapstructure:"iterations" validate:"min=0"`
}

// ExportConfig holds settings for export files.
type ExportConfig struct {
	// OutputDir is the base directory for per-document export folders.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir" validate:"required"`
}

// BatchConfig holds multi-document settings.
type BatchConfig struct {
	// Workers bounds the number of documents processed in parallel.
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers" validate:"min=1"`

	// Merge additionally writes the union of all document graphs.
	Merge bool `json:"merge" yaml:"merge" mapstructure:"merge"`
}

// ServerConfig holds settings for the HTTP API.
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr" validate:"required"`

	// MaxUploadBytes caps multipart uploads.
	MaxUploadBytes int64 `json:"max_upload_bytes" yaml:"max_upload_bytes" mapstructure:"max_upload_bytes" validate:"min=0"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level" validate:"oneof=debug info warn error"`

	// File, when set, also writes logs to a rotating file.
	File string `json:"file,omitempty" yaml:"file,omitempty" mapstructure:"file"`

	// MaxSizeMB and MaxBackups control file rotation.
	MaxSizeMB  int `json:"max_size_mb" yaml:"max_size_mb" mapstructure:"max_size_mb" validate:"min=0"`
	MaxBackups int `json:"max_backups" yaml:"max_backups" mapstructure:"max_backups" validate:"min=0"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Source     SourceConfig     `json:"source" yaml:"source" mapstructure:"source"`
	NLP        NLPConfig        `json:"nlp" yaml:"nlp" mapstructure:"nlp"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction" mapstructure:"extraction"`
	Graph      GraphConfig      `json:"graph" yaml:"graph" mapstructure:"graph"`
	Layout     LayoutConfig     `json:"layout" yaml:"layout" mapstructure:"layout"`
	Export     ExportConfig     `json:"export" yaml:"export" mapstructure:"export"`
	Batch      BatchConfig      `json:"batch" yaml:"batch" mapstructure:"batch"`
	Server     ServerConfig     `json:"server" yaml:"server" mapstructure:"server"`
	Log        LogConfig        `json:"log" yaml:"log" mapstructure:"log"`
}
