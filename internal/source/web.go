// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"codeberg.org/readeck/go-readability/v2"
	"golang.org/x/net/html"

	"github.com/pdiddy/docgraph/internal/httputil"
	"github.com/pdiddy/docgraph/pkg/types"
)

// Web fetches a URL and reduces HTML to text. Article mode keeps the main
// readable content; fulltext mode keeps every visible line. Responses that
// are PDFs, DOCX files, or images are handed to the matching source.
type Web struct {
	client     *http.Client
	mode       types.WebMode
	userAgent  string
	maxRetries int
	maxBytes   int64

	fallback func(ctx context.Context, doc types.Document, kind types.SourceKind) (string, error)
}

// NewWeb returns a web source. A nil client gets one with cfg's timeout and
// an unset WebMode means full text.
func NewWeb(cfg types.SourceConfig, client *http.Client) *Web {
	if client == nil {
		client = httputil.NewClient(cfg.HTTPConfig)
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	mode := cfg.WebMode
	if mode == "" {
		mode = types.WebFullText
	}
	return &Web{
		client:     client,
		mode:       mode,
		userAgent:  cfg.UserAgent,
		maxRetries: cfg.MaxRetries,
		maxBytes:   maxBytes,
	}
}

func (s *Web) Extract(ctx context.Context, doc types.Document) (string, error) {
	pageURL, err := url.Parse(doc.Location)
	if err != nil || (pageURL.Scheme != "http" && pageURL.Scheme != "https") {
		if doc.Payload == nil {
			return "", sourceFailure("invalid url %q", doc.Location)
		}
		pageURL = nil
	}

	// An uploaded page is parsed without fetching.
	if doc.Payload != nil {
		return s.render(doc.Payload, pageURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return "", sourceFailure("creating request: %w", err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, s.client, req, s.maxRetries)
	if err != nil {
		return "", httputil.Failure(err, 0)
	}
	defer resp.Body.Close()

	if err := httputil.Failure(nil, resp.StatusCode); err != nil {
		return "", err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return "", httputil.Failure(err, 0)
	}
	if int64(len(body)) > s.maxBytes {
		return "", sourceFailure("%s exceeds limit of %d bytes", doc.Location, s.maxBytes)
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	switch {
	case mediaType == "text/html" || mediaType == "application/xhtml+xml" || (mediaType == "" && looksLikeHTML(body)):
		return s.render(body, pageURL)
	case strings.HasPrefix(mediaType, "text/") || strings.HasSuffix(mediaType, "json") || strings.HasSuffix(mediaType, "xml"):
		return string(body), nil
	}

	if kind, ok := kindForMedia(mediaType); ok && s.fallback != nil {
		fetched := doc
		fetched.Payload = body
		return s.fallback(ctx, fetched, kind)
	}
	return "", &types.ExtractionFailure{Kind: types.FailureUnsupported, Err: fmt.Errorf("unsupported content type %q", mediaType)}
}

func kindForMedia(mediaType string) (types.SourceKind, bool) {
	switch {
	case mediaType == "application/pdf":
		return types.SourcePDF, true
	case mediaType == "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return types.SourceDOCX, true
	case strings.HasPrefix(mediaType, "image/"):
		return types.SourceImage, true
	}
	return "", false
}

func looksLikeHTML(body []byte) bool {
	head := bytes.ToLower(bytes.TrimSpace(body[:min(len(body), 512)]))
	return bytes.HasPrefix(head, []byte("<!doctype html")) || bytes.HasPrefix(head, []byte("<html"))
}

// render reduces an HTML page to text. Article mode falls back to the full
// text when readability finds nothing.
func (s *Web) render(body []byte, pageURL *url.URL) (string, error) {
	if s.mode == types.WebArticle {
		if text, err := articleText(body, pageURL); err == nil && strings.TrimSpace(text) != "" {
			return text, nil
		}
	}
	return fullText(body)
}

func articleText(body []byte, pageURL *url.URL) (string, error) {
	if pageURL == nil {
		pageURL = &url.URL{Scheme: "https", Host: "localhost"}
	}
	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		return "", fmt.Errorf("parsing html: %w", err)
	}
	var b strings.Builder
	if err := article.RenderText(&b); err != nil {
		return "", fmt.Errorf("rendering article text: %w", err)
	}
	return b.String(), nil
}

var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"head":     true,
}

var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"section": true, "article": true, "header": true, "footer": true,
	"table": true, "ul": true, "ol": true, "blockquote": true, "pre": true,
}

// fullText walks the parsed page, drops script and style content, and joins
// the non-empty trimmed lines.
func fullText(body []byte) (string, error) {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return "", sourceFailure("parsing html: %w", err)
	}

	var raw strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedElements[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			raw.WriteString(n.Data)
		}
		block := n.Type == html.ElementNode && blockElements[n.Data]
		if block {
			raw.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			raw.WriteByte('\n')
		}
	}
	walk(root)

	var lines []string
	for _, line := range strings.Split(raw.String(), "\n") {
		for _, chunk := range strings.Split(line, "  ") {
			if chunk = strings.TrimSpace(chunk); chunk != "" {
				lines = append(lines, chunk)
			}
		}
	}
	return strings.Join(lines, "\n"), nil
}
