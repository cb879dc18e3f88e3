// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/pdiddy/docgraph/pkg/types"
)

const defaultMaxBytes = 50 << 20

// Loader reads document payloads from memory, local files, or S3.
type Loader struct {
	maxBytes int64
	cfg      types.SourceConfig

	s3     ObjectGetter
	s3Once sync.Once
	s3Err  error
}

// NewLoader returns a loader. A nil getter is replaced by an S3 client built
// from cfg on the first s3:// location.
func NewLoader(cfg types.SourceConfig, getter ObjectGetter) *Loader {
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	return &Loader{maxBytes: maxBytes, cfg: cfg, s3: getter}
}

// Load returns doc.Payload when set, otherwise the bytes at doc.Location.
func (l *Loader) Load(ctx context.Context, doc types.Document) ([]byte, error) {
	if doc.Payload != nil {
		if int64(len(doc.Payload)) > l.maxBytes {
			return nil, sourceFailure("payload of %d bytes exceeds limit of %d", len(doc.Payload), l.maxBytes)
		}
		return doc.Payload, nil
	}
	if doc.Location == "" {
		return nil, sourceFailure("document %s has neither payload nor location", doc.ID)
	}

	if bucket, key, ok := parseS3(doc.Location); ok {
		return l.loadS3(ctx, bucket, key)
	}
	return l.loadFile(doc.Location)
}

func (l *Loader) loadFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, sourceFailure("opening %s: %w", path, err)
	}
	defer f.Close()
	return l.readLimited(f, path)
}

func (l *Loader) readLimited(r io.Reader, name string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, l.maxBytes+1))
	if err != nil {
		return nil, sourceFailure("reading %s: %w", name, err)
	}
	if int64(len(data)) > l.maxBytes {
		return nil, sourceFailure("%s exceeds limit of %d bytes", name, l.maxBytes)
	}
	return data, nil
}

func (l *Loader) loadS3(ctx context.Context, bucket, key string) ([]byte, error) {
	l.s3Once.Do(func() {
		if l.s3 == nil {
			l.s3, l.s3Err = NewS3Client(ctx, l.cfg)
		}
	})
	if l.s3Err != nil {
		return nil, &types.ExtractionFailure{Kind: types.FailureSource, Err: fmt.Errorf("configuring s3: %w", l.s3Err)}
	}

	body, err := getObject(ctx, l.s3, bucket, key)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return l.readLimited(body, "s3://"+bucket+"/"+key)
}

// parseS3 splits an s3://bucket/key location.
func parseS3(location string) (bucket, key string, ok bool) {
	u, err := url.Parse(location)
	if err != nil || u.Scheme != "s3" || u.Host == "" {
		return "", "", false
	}
	key = strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", "", false
	}
	return u.Host, key, true
}
