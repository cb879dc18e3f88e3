// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package identifier turns entity, predicate, and document surface strings
// into stable IRIs under a configurable namespace.
package identifier

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/pdiddy/docgraph/pkg/types"
)

// DefaultNamespace is used when a Normalizer has no namespace configured.
const DefaultNamespace = "http://example.org/"

// Normalizer maps surface strings to identifiers. The zero value uses
// DefaultNamespace.
type Normalizer struct {
	Namespace string
}

// New returns a Normalizer for ns. A namespace that does not end in '/' or
// '#' gets a trailing '/'.
func New(ns string) Normalizer {
	return Normalizer{Namespace: ns}
}

// Base returns the effective namespace IRI.
func (n Normalizer) Base() string {
	ns := strings.TrimSpace(n.Namespace)
	if ns == "" {
		return DefaultNamespace
	}
	if !strings.HasSuffix(ns, "/") && !strings.HasSuffix(ns, "#") {
		ns += "/"
	}
	return ns
}

// Normalize returns the identifier for surface. Surrounding whitespace is
// trimmed, interior whitespace runs become a single '_', and characters
// outside the name alphabet are percent-encoded. Input that is already
// validly percent-encoded is decoded first, so normalizing a local name again
// yields the same identifier.
//
// A blank surface returns types.ErrInvalidIdentifierInput.
func (n Normalizer) Normalize(surface string) (types.Identifier, error) {
	local, err := LocalPart(surface)
	if err != nil {
		return "", err
	}
	return types.Identifier(n.Base() + local), nil
}

// MustNormalize is Normalize for surfaces known to be non-blank, such as
// fixed predicate and type names.
func (n Normalizer) MustNormalize(surface string) types.Identifier {
	id, err := n.Normalize(surface)
	if err != nil {
		panic(fmt.Sprintf("identifier: %q: %v", surface, err))
	}
	return id
}

// LocalPart computes the namespace-free part of an identifier. Blankness is
// judged on the raw surface. An escape sequence that decodes to whitespace,
// such as "%20", is kept literally so it still yields a distinct name.
func LocalPart(surface string) (string, error) {
	fields := strings.Fields(surface)
	if len(fields) == 0 {
		return "", fmt.Errorf("normalizing %q: %w", surface, types.ErrInvalidIdentifierInput)
	}
	if strings.Contains(surface, "%") {
		if decoded, err := url.PathUnescape(surface); err == nil {
			if df := strings.Fields(decoded); len(df) > 0 {
				fields = df
			}
		}
	}
	return escapeLocal(strings.Join(fields, "_")), nil
}

// escapeLocal percent-encodes every byte outside [A-Za-z0-9_], except '-'
// and '.' in interior positions. The result is both a URI path segment and a
// Turtle local name.
func escapeLocal(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9', c == '_':
			b.WriteByte(c)
		case c == '-' && i > 0, c == '.' && i > 0 && i < len(s)-1:
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&0x0F])
		}
	}
	return b.String()
}

// LocalName returns the trailing segment of an IRI: the text after the last
// '/' or '#'. It is the display label used for graph nodes.
func LocalName(iri string) string {
	trimmed := strings.TrimRight(iri, "/#")
	if i := strings.LastIndexAny(trimmed, "/#"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}
