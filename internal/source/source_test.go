// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docgraph/internal/config"
	"github.com/pdiddy/docgraph/internal/httputil"
	"github.com/pdiddy/docgraph/pkg/types"
)

func TestMain(m *testing.M) {
	httputil.RetryBaseDelay = time.Millisecond
	os.Exit(m.Run())
}

// fakeExec stands in for pdftotext and tesseract.
type fakeExec struct {
	bins  map[string]bool
	out   string
	err   error
	block bool

	gotName  string
	gotArgs  []string
	gotStdin []byte
}

func (f *fakeExec) LookPath(file string) (string, error) {
	if f.bins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (f *fakeExec) RunSilent(context.Context, string, ...string) error { return nil }

func (f *fakeExec) RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error {
	f.gotName = name
	f.gotArgs = args
	if stdin != nil {
		f.gotStdin, _ = io.ReadAll(stdin)
	}
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if f.err != nil {
		return f.err
	}
	_, err := io.WriteString(stdout, f.out)
	return err
}

type fakeRuntime struct {
	imageErr error
	out      string
	gotImage string
}

func (r *fakeRuntime) Name() string                   { return "docker" }
func (r *fakeRuntime) Available(context.Context) bool { return true }
func (r *fakeRuntime) ImageExists(_ context.Context, image string) error {
	r.gotImage = image
	return r.imageErr
}
func (r *fakeRuntime) Run(_ context.Context, image string, stdin io.Reader, stdout io.Writer) error {
	_, err := io.WriteString(stdout, r.out)
	return err
}

type fakeS3 struct {
	objects map[string]string
	err     error
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func requireFailure(t *testing.T, err error, kind types.FailureKind) *types.ExtractionFailure {
	t.Helper()
	var f *types.ExtractionFailure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, kind, f.Kind)
	return f
}

func TestClean(t *testing.T) {
	assert.Equal(t, "a\n\nb", Clean("  a\r\n\r\n\r\n\r\nb \n"))
	assert.Equal(t, "a\nb", Clean("a\nb"))
	assert.Equal(t, "", Clean(" \n\t "))
}

func TestRegistryKinds(t *testing.T) {
	r := NewRegistry(types.SourceConfig{}, Tools{Exec: &fakeExec{}})
	assert.Equal(t, []types.SourceKind{"docx", "image", "pdf", "text", "url"}, r.Kinds())
}

func TestRegistryUnsupportedKind(t *testing.T) {
	r := NewRegistry(types.SourceConfig{}, Tools{Exec: &fakeExec{}})
	_, err := r.Extract(context.Background(), types.Document{ID: "d1", Kind: "odt", Payload: []byte("x")})
	f := requireFailure(t, err, types.FailureUnsupported)
	assert.Equal(t, "d1", f.DocumentID)
	assert.False(t, f.Retryable)
}

func TestRegistryPlainText(t *testing.T) {
	r := NewRegistry(types.SourceConfig{}, Tools{Exec: &fakeExec{}})
	text, err := r.Extract(context.Background(), types.Document{
		ID:      "d1",
		Kind:    types.SourceText,
		Payload: []byte("\uFEFFParis is the capital of France.\r\n\r\n\r\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Paris is the capital of France.", text)
}

func TestPlainTextInvalidUTF8(t *testing.T) {
	s := &PlainText{loader: NewLoader(types.SourceConfig{}, nil)}
	text, err := s.Extract(context.Background(), types.Document{Payload: []byte{'a', 0xff, 'b'}})
	require.NoError(t, err)
	assert.Equal(t, "a\uFFFDb", text)
}

func TestLoaderFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	l := NewLoader(types.SourceConfig{}, nil)
	data, err := l.Load(context.Background(), types.Document{Location: path})
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	_, err = l.Load(context.Background(), types.Document{Location: filepath.Join(t.TempDir(), "missing.txt")})
	requireFailure(t, err, types.FailureSource)
}

func TestLoaderLimits(t *testing.T) {
	l := NewLoader(types.SourceConfig{MaxBytes: 4}, nil)

	_, err := l.Load(context.Background(), types.Document{Payload: []byte("12345")})
	requireFailure(t, err, types.FailureSource)

	path := filepath.Join(t.TempDir(), "big.txt")
	require.NoError(t, os.WriteFile(path, []byte("12345"), 0o644))
	_, err = l.Load(context.Background(), types.Document{Location: path})
	requireFailure(t, err, types.FailureSource)

	_, err = l.Load(context.Background(), types.Document{ID: "none"})
	requireFailure(t, err, types.FailureSource)
}

func TestLoaderS3(t *testing.T) {
	getter := &fakeS3{objects: map[string]string{"docs/a/b.txt": "from s3"}}
	l := NewLoader(types.SourceConfig{}, getter)

	data, err := l.Load(context.Background(), types.Document{Location: "s3://docs/a/b.txt"})
	require.NoError(t, err)
	assert.Equal(t, "from s3", string(data))

	_, err = l.Load(context.Background(), types.Document{Location: "s3://docs/missing.txt"})
	f := requireFailure(t, err, types.FailureSource)
	assert.False(t, f.Retryable)
}

func TestLoaderS3TransportErrorIsRetryable(t *testing.T) {
	l := NewLoader(types.SourceConfig{}, &fakeS3{err: errors.New("connection reset")})
	_, err := l.Load(context.Background(), types.Document{Location: "s3://docs/a.txt"})
	f := requireFailure(t, err, types.FailureNetwork)
	assert.True(t, f.Retryable)
}

func TestParseS3(t *testing.T) {
	tests := []struct {
		in     string
		bucket string
		key    string
		ok     bool
	}{
		{"s3://bucket/key.pdf", "bucket", "key.pdf", true},
		{"s3://bucket/nested/key.pdf", "bucket", "nested/key.pdf", true},
		{"s3://bucket/", "", "", false},
		{"s3:///key", "", "", false},
		{"/tmp/file.pdf", "", "", false},
		{"https://example.org/x", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			bucket, key, ok := parseS3(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.bucket, bucket)
			assert.Equal(t, tt.key, key)
		})
	}
}

func TestPDFPdftotext(t *testing.T) {
	exec := &fakeExec{bins: map[string]bool{"pdftotext": true}, out: "page one\f"}
	s := &PDF{loader: NewLoader(types.SourceConfig{}, nil), exec: exec, backend: types.PDFPdftotext}

	text, err := s.Extract(context.Background(), types.Document{Payload: []byte("%PDF-1.7")})
	require.NoError(t, err)
	assert.Equal(t, "page one\f", text)
	assert.Equal(t, "pdftotext", exec.gotName)
	assert.Equal(t, []string{"-enc", "UTF-8", "-eol", "unix", "-nopgbrk", "-q"}, exec.gotArgs[:6])
	assert.Equal(t, "-", exec.gotArgs[len(exec.gotArgs)-1])
}

func TestPDFMissingTool(t *testing.T) {
	s := &PDF{loader: NewLoader(types.SourceConfig{}, nil), exec: &fakeExec{}}
	_, err := s.Extract(context.Background(), types.Document{Payload: []byte("%PDF")})
	requireFailure(t, err, types.FailureUnsupported)
}

func TestPDFToolError(t *testing.T) {
	exec := &fakeExec{bins: map[string]bool{"pdftotext": true}, err: errors.New("Syntax Error")}
	s := &PDF{loader: NewLoader(types.SourceConfig{}, nil), exec: exec}
	_, err := s.Extract(context.Background(), types.Document{Payload: []byte("junk")})
	f := requireFailure(t, err, types.FailureSource)
	assert.False(t, f.Retryable)
}

func TestPDFTimeout(t *testing.T) {
	prev := toolTimeout
	toolTimeout = 10 * time.Millisecond
	t.Cleanup(func() { toolTimeout = prev })

	exec := &fakeExec{bins: map[string]bool{"pdftotext": true}, block: true}
	s := &PDF{loader: NewLoader(types.SourceConfig{}, nil), exec: exec}
	_, err := s.Extract(context.Background(), types.Document{Payload: []byte("%PDF")})
	f := requireFailure(t, err, types.FailureTimeout)
	assert.True(t, f.Retryable)
}

func TestPDFMarkitdown(t *testing.T) {
	rt := &fakeRuntime{out: "# Title\n\nBody"}
	s := &PDF{loader: NewLoader(types.SourceConfig{}, nil), backend: types.PDFMarkitdown, runtime: rt}

	text, err := s.Extract(context.Background(), types.Document{Payload: []byte("%PDF")})
	require.NoError(t, err)
	assert.Equal(t, "# Title\n\nBody", text)
	assert.Equal(t, imageMarkitdown, rt.gotImage)
}

func TestPDFMarkitdownMissingImage(t *testing.T) {
	rt := &fakeRuntime{imageErr: errors.New("no such image")}
	s := &PDF{loader: NewLoader(types.SourceConfig{}, nil), backend: types.PDFMarkitdown, runtime: rt}
	_, err := s.Extract(context.Background(), types.Document{Payload: []byte("%PDF")})
	requireFailure(t, err, types.FailureUnsupported)
}

func TestImageOCR(t *testing.T) {
	exec := &fakeExec{bins: map[string]bool{"tesseract": true}, out: "scanned text"}
	s := &Image{loader: NewLoader(types.SourceConfig{}, nil), exec: exec, lang: "deu"}

	text, err := s.Extract(context.Background(), types.Document{Payload: []byte("PNG")})
	require.NoError(t, err)
	assert.Equal(t, "scanned text", text)
	assert.Equal(t, []string{"stdin", "stdout", "-l", "deu"}, exec.gotArgs)
	assert.Equal(t, "PNG", string(exec.gotStdin))
}

func TestImageDefaultLanguage(t *testing.T) {
	exec := &fakeExec{bins: map[string]bool{"tesseract": true}}
	s := &Image{loader: NewLoader(types.SourceConfig{}, nil), exec: exec}
	_, err := s.Extract(context.Background(), types.Document{Payload: []byte("PNG")})
	require.NoError(t, err)
	assert.Equal(t, "eng", exec.gotArgs[3])
}

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = io.WriteString(w, documentXML)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

const docxBody = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>
<w:p><w:r><w:t>Paris is the capital</w:t></w:r><w:del><w:r><w:t> of Spain</w:t></w:r></w:del><w:r><w:t> of France.</w:t></w:r></w:p>
<w:p><w:r><w:t>well</w:t><w:noBreakHyphen/><w:t>known</w:t><w:tab/><w:t>fact</w:t></w:r></w:p>
<w:tbl><w:tr><w:tc><w:p><w:r><w:t>City</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>Country</w:t></w:r></w:p></w:tc></w:tr>
<w:tr><w:tc><w:p><w:r><w:t>Paris</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>France</w:t></w:r></w:p></w:tc></w:tr></w:tbl>
</w:body></w:document>`

func TestDOCX(t *testing.T) {
	r := NewRegistry(types.SourceConfig{}, Tools{Exec: &fakeExec{}})
	text, err := r.Extract(context.Background(), types.Document{
		ID:      "d1",
		Kind:    types.SourceDOCX,
		Payload: buildDocx(t, docxBody),
	})
	require.NoError(t, err)
	assert.Equal(t, "Paris is the capital of France.\nwell-known\tfact\nCity\tCountry\nParis\tFrance", text)
}

func TestDOCXInvalid(t *testing.T) {
	_, err := parseDocx([]byte("not a zip"))
	requireFailure(t, err, types.FailureSource)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, err = zw.Create("word/styles.xml")
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	_, err = parseDocx(buf.Bytes())
	requireFailure(t, err, types.FailureSource)
}

const page = `<!DOCTYPE html>
<html><head><title>Capitals</title><style>body { color: red }</style></head>
<body>
<nav>Home</nav>
<article>
<h1>Capitals of Europe</h1>
<p>Paris is the capital of France. It has been the seat of government for centuries and is the largest city in the country by population.</p>
<p>Berlin is the capital of Germany. The city is known for its history, its museums, and a lively cultural scene that attracts visitors all year.</p>
</article>
<script>var tracking = true;</script>
</body></html>`

func serve(t *testing.T, contentType string, body []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestWebFullText(t *testing.T) {
	srv := serve(t, "text/html; charset=utf-8", []byte(page))
	r := NewRegistry(types.SourceConfig{WebMode: types.WebFullText}, Tools{Exec: &fakeExec{}})

	text, err := r.Extract(context.Background(), types.Document{ID: "w", Kind: types.SourceURL, Location: srv.URL})
	require.NoError(t, err)
	assert.Contains(t, text, "Home")
	assert.Contains(t, text, "Paris is the capital of France.")
	assert.NotContains(t, text, "tracking")
	assert.NotContains(t, text, "color: red")
}

func TestWebArticle(t *testing.T) {
	srv := serve(t, "text/html", []byte(page))
	r := NewRegistry(types.SourceConfig{WebMode: types.WebArticle}, Tools{Exec: &fakeExec{}})

	text, err := r.Extract(context.Background(), types.Document{ID: "w", Kind: types.SourceURL, Location: srv.URL})
	require.NoError(t, err)
	assert.Contains(t, text, "Paris is the capital of France.")
	assert.NotContains(t, text, "tracking")
}

func TestWebDefaultModeIsFullText(t *testing.T) {
	srv := serve(t, "text/html", []byte(page))
	w := NewWeb(types.SourceConfig{}, nil)

	text, err := w.Extract(context.Background(), types.Document{Location: srv.URL})
	require.NoError(t, err)
	assert.Contains(t, text, "Home", "navigation text survives in full-text mode")
	assert.Equal(t, types.WebFullText, config.Defaults().Source.WebMode)
}

func TestWebPayload(t *testing.T) {
	w := NewWeb(types.SourceConfig{WebMode: types.WebFullText}, nil)
	text, err := w.Extract(context.Background(), types.Document{Payload: []byte("<p>Hello</p><p>World</p>")})
	require.NoError(t, err)
	assert.Equal(t, "Hello\nWorld", text)
}

func TestWebPlainBody(t *testing.T) {
	srv := serve(t, "text/plain", []byte("just text"))
	w := NewWeb(types.SourceConfig{}, nil)
	text, err := w.Extract(context.Background(), types.Document{Location: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, "just text", text)
}

func TestWebPDFFallback(t *testing.T) {
	srv := serve(t, "application/pdf", []byte("%PDF-1.7"))
	exec := &fakeExec{bins: map[string]bool{"pdftotext": true}, out: "pdf text"}
	r := NewRegistry(types.SourceConfig{}, Tools{Exec: exec})

	text, err := r.Extract(context.Background(), types.Document{ID: "w", Kind: types.SourceURL, Location: srv.URL + "/paper"})
	require.NoError(t, err)
	assert.Equal(t, "pdf text", text)
	assert.Equal(t, "pdftotext", exec.gotName)
}

func TestWebUnsupportedContentType(t *testing.T) {
	srv := serve(t, "application/zip", []byte("PK"))
	w := NewWeb(types.SourceConfig{}, nil)
	_, err := w.Extract(context.Background(), types.Document{Location: srv.URL})
	requireFailure(t, err, types.FailureUnsupported)
}

func TestWebRetriesThenFails(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	w := NewWeb(types.SourceConfig{HTTPConfig: types.HTTPConfig{MaxRetries: 2}}, nil)
	_, err := w.Extract(context.Background(), types.Document{Location: srv.URL})
	f := requireFailure(t, err, types.FailureNetwork)
	assert.True(t, f.Retryable)
	assert.Equal(t, 3, calls)
}

func TestWebNotFoundIsPermanent(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	w := NewWeb(types.SourceConfig{}, nil)
	_, err := w.Extract(context.Background(), types.Document{Location: srv.URL})
	f := requireFailure(t, err, types.FailureNetwork)
	assert.False(t, f.Retryable)
}

func TestWebInvalidURL(t *testing.T) {
	w := NewWeb(types.SourceConfig{}, nil)
	_, err := w.Extract(context.Background(), types.Document{Location: "ftp://example.org/x"})
	requireFailure(t, err, types.FailureSource)
}

func TestWebSendsUserAgent(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	}))
	t.Cleanup(srv.Close)

	w := NewWeb(types.SourceConfig{HTTPConfig: types.HTTPConfig{UserAgent: "docgraph/test"}}, nil)
	_, err := w.Extract(context.Background(), types.Document{Location: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, "docgraph/test", got)
}
