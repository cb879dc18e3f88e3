// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source extracts plain text from documents: PDFs, images, DOCX
// files, web pages, and plain text. Payloads come from memory, local files,
// or S3.
package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/docgraph/internal/container"
	"github.com/pdiddy/docgraph/pkg/types"
)

// Source extracts text from one kind of document. Failures are returned as
// *types.ExtractionFailure.
type Source interface {
	Extract(ctx context.Context, doc types.Document) (string, error)
}

// Tools are the external collaborators sources use. Zero fields get
// production defaults.
type Tools struct {
	// Exec runs pdftotext and tesseract.
	Exec container.Executor

	// Runtime runs the markitdown image. When nil it is detected on first use.
	Runtime container.Runtime

	// S3 fetches s3:// locations. When nil a client is built from the
	// default AWS configuration on first use.
	S3 ObjectGetter

	// Client fetches URLs.
	Client *http.Client
}

// Registry dispatches documents to the Source registered for their kind.
type Registry struct {
	sources map[types.SourceKind]Source
}

// NewRegistry builds a registry with every built-in source configured by cfg.
func NewRegistry(cfg types.SourceConfig, tools Tools) *Registry {
	if tools.Exec == nil {
		tools.Exec = container.OSExecutor{}
	}
	loader := NewLoader(cfg, tools.S3)

	r := &Registry{sources: make(map[types.SourceKind]Source)}
	r.Register(types.SourceText, &PlainText{loader: loader})
	r.Register(types.SourceDOCX, &DOCX{loader: loader})
	r.Register(types.SourcePDF, &PDF{
		loader:  loader,
		exec:    tools.Exec,
		backend: cfg.PDFBackend,
		runtime: tools.Runtime,
	})
	r.Register(types.SourceImage, &Image{loader: loader, exec: tools.Exec, lang: cfg.OCRLanguage})

	web := NewWeb(cfg, tools.Client)
	web.fallback = r.extractAs
	r.Register(types.SourceURL, web)
	return r
}

// Register sets the source for kind, replacing any previous one.
func (r *Registry) Register(kind types.SourceKind, s Source) {
	r.sources[kind] = s
}

// Kinds lists the registered kinds, sorted.
func (r *Registry) Kinds() []types.SourceKind {
	out := make([]types.SourceKind, 0, len(r.sources))
	for k := range r.sources {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Extract returns the cleaned text of doc. Empty text is not an error here.
func (r *Registry) Extract(ctx context.Context, doc types.Document) (string, error) {
	s, ok := r.sources[doc.Kind]
	if !ok {
		return "", &types.ExtractionFailure{
			DocumentID: doc.ID,
			Kind:       types.FailureUnsupported,
			Err:        fmt.Errorf("no source for kind %q", doc.Kind),
		}
	}
	text, err := s.Extract(ctx, doc)
	if err != nil {
		return "", types.WithDocument(asFailure(err), doc.ID)
	}
	return Clean(text), nil
}

// extractAs re-dispatches an already fetched payload under another kind.
func (r *Registry) extractAs(ctx context.Context, doc types.Document, kind types.SourceKind) (string, error) {
	doc.Kind = kind
	return r.Extract(ctx, doc)
}

var blankLines = regexp.MustCompile(`\n{3,}`)

// Clean normalizes line endings, collapses runs of three or more newlines
// to a blank line, and trims surrounding whitespace.
func Clean(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = blankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// asFailure wraps errors that are not already ExtractionFailures as
// non-retryable source failures.
func asFailure(err error) error {
	var f *types.ExtractionFailure
	if errors.As(err, &f) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &types.ExtractionFailure{Kind: types.FailureTimeout, Retryable: true, Err: err}
	}
	return &types.ExtractionFailure{Kind: types.FailureSource, Err: err}
}

func sourceFailure(format string, args ...any) error {
	return &types.ExtractionFailure{Kind: types.FailureSource, Err: fmt.Errorf(format, args...)}
}
