// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/docgraph/pkg/types"
)

// PlainText returns the payload as UTF-8 text. Invalid byte sequences are
// replaced with U+FFFD.
type PlainText struct {
	loader *Loader
}

func (s *PlainText) Extract(ctx context.Context, doc types.Document) (string, error) {
	data, err := s.loader.Load(ctx, doc)
	if err != nil {
		return "", err
	}
	text := string(data)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "\uFFFD")
	}
	return strings.TrimPrefix(text, "\uFEFF"), nil
}
