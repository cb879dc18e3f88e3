// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pdiddy/docgraph/internal/container"
	"github.com/pdiddy/docgraph/pkg/types"
)

const (
	binPdftotext    = "pdftotext"
	imageMarkitdown = "markitdown:latest"
)

// toolTimeout bounds each pdftotext or tesseract run.
var toolTimeout = 30 * time.Second

// PDF extracts text with pdftotext, or with the markitdown container image
// when the backend is markitdown.
type PDF struct {
	loader  *Loader
	exec    container.Executor
	backend types.PDFBackend

	runtime     container.Runtime
	runtimeOnce sync.Once
	runtimeErr  error
}

func (s *PDF) Extract(ctx context.Context, doc types.Document) (string, error) {
	data, err := s.loader.Load(ctx, doc)
	if err != nil {
		return "", err
	}
	if s.backend == types.PDFMarkitdown {
		return s.markitdown(ctx, data)
	}
	return s.pdftotext(ctx, data)
}

func (s *PDF) pdftotext(ctx context.Context, data []byte) (string, error) {
	if _, err := s.exec.LookPath(binPdftotext); err != nil {
		return "", &types.ExtractionFailure{Kind: types.FailureUnsupported, Err: fmt.Errorf("pdftotext not found in PATH: %w", err)}
	}

	tmpDir, err := os.MkdirTemp("", "docgraph-pdf-")
	if err != nil {
		return "", fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	pdfPath := filepath.Join(tmpDir, "input.pdf")
	if err := os.WriteFile(pdfPath, data, 0o600); err != nil {
		return "", fmt.Errorf("writing temp PDF: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, toolTimeout)
	defer cancel()

	var out bytes.Buffer
	args := []string{"-enc", "UTF-8", "-eol", "unix", "-nopgbrk", "-q", pdfPath, "-"}
	if err := s.exec.RunPiped(ctx, binPdftotext, args, nil, &out); err != nil {
		return "", toolFailure(ctx, binPdftotext, err)
	}
	return out.String(), nil
}

func (s *PDF) markitdown(ctx context.Context, data []byte) (string, error) {
	s.runtimeOnce.Do(func() {
		if s.runtime == nil {
			s.runtime, s.runtimeErr = container.Detect(ctx, s.exec)
		}
		if s.runtimeErr == nil {
			if err := s.runtime.ImageExists(ctx, imageMarkitdown); err != nil {
				s.runtimeErr = fmt.Errorf("markitdown image not available in %s: %w", s.runtime.Name(), err)
			}
		}
	})
	if s.runtimeErr != nil {
		return "", &types.ExtractionFailure{Kind: types.FailureUnsupported, Err: s.runtimeErr}
	}

	var out bytes.Buffer
	if err := s.runtime.Run(ctx, imageMarkitdown, bytes.NewReader(data), &out); err != nil {
		return "", toolFailure(ctx, "markitdown", err)
	}
	return out.String(), nil
}

// toolFailure classifies a failed tool run. Hitting the deadline is a
// retryable timeout; anything else is a permanent source failure.
func toolFailure(ctx context.Context, tool string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &types.ExtractionFailure{Kind: types.FailureTimeout, Retryable: true, Err: fmt.Errorf("%s timed out", tool)}
	}
	return sourceFailure("%s failed: %w", tool, err)
}
