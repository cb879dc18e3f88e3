// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"bytes"
	"context"
	"fmt"

	"github.com/pdiddy/docgraph/internal/container"
	"github.com/pdiddy/docgraph/pkg/types"
)

const binTesseract = "tesseract"

// Image runs tesseract OCR over the image bytes, piped through stdin.
type Image struct {
	loader *Loader
	exec   container.Executor
	lang   string
}

func (s *Image) Extract(ctx context.Context, doc types.Document) (string, error) {
	data, err := s.loader.Load(ctx, doc)
	if err != nil {
		return "", err
	}
	if _, err := s.exec.LookPath(binTesseract); err != nil {
		return "", &types.ExtractionFailure{Kind: types.FailureUnsupported, Err: fmt.Errorf("tesseract not found in PATH: %w", err)}
	}

	lang := s.lang
	if lang == "" {
		lang = "eng"
	}

	ctx, cancel := context.WithTimeout(ctx, toolTimeout)
	defer cancel()

	var out bytes.Buffer
	args := []string{"stdin", "stdout", "-l", lang}
	if err := s.exec.RunPiped(ctx, binTesseract, args, bytes.NewReader(data), &out); err != nil {
		return "", toolFailure(ctx, binTesseract, err)
	}
	return out.String(), nil
}
