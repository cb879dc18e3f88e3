// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract finds typed entities and subject-verb-object
// relationships in plain text using an nlp.Model.
package extract

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/docgraph/internal/fsutil"
	"github.com/pdiddy/docgraph/internal/nlp"
	"github.com/pdiddy/docgraph/pkg/types"
)

// Options controls ExtractDocument.
type Options struct {
	Roles RoleMap

	// MaxRetries bounds retries of retryable model failures. Zero makes a
	// single attempt; a negative value selects DefaultMaxRetries.
	MaxRetries int

	// Exclude lists entity surfaces dropped from the result, together with
	// any relationship that names one as subject or object.
	Exclude []string
}

// DefaultMaxRetries is the retry bound used when Options.MaxRetries is
// negative.
const DefaultMaxRetries = 3

// DefaultOptions returns copular roles and three retries.
func DefaultOptions() Options {
	return Options{Roles: CopularRoles(), MaxRetries: DefaultMaxRetries}
}

// ExtractDocument runs both extractors over text. Retryable model failures
// are retried with exponential backoff; anything else returns at once.
func ExtractDocument(ctx context.Context, m nlp.Model, text string, opts Options) (types.EntityRelationSchema, error) {
	maxRetries := opts.MaxRetries
	if maxRetries < 0 {
		maxRetries = DefaultMaxRetries
	}
	roles := opts.Roles
	if len(roles.Subjects) == 0 {
		roles = CopularRoles()
	}

	entities, err := callWithRetry(ctx, maxRetries, func() (types.EntitySet, error) {
		return ExtractEntities(ctx, m, text)
	})
	if err != nil {
		return types.EntityRelationSchema{}, fmt.Errorf("extracting entities: %w", err)
	}

	relationships, err := callWithRetry(ctx, maxRetries, func() ([]types.Relationship, error) {
		return ExtractRelationships(ctx, m, text, roles)
	})
	if err != nil {
		return types.EntityRelationSchema{}, fmt.Errorf("extracting relationships: %w", err)
	}

	if len(opts.Exclude) > 0 {
		entities.Exclude(opts.Exclude)
		relationships = dropExcluded(relationships, opts.Exclude)
	}
	return types.EntityRelationSchema{Entities: entities, Relationships: relationships}, nil
}

func dropExcluded(rels []types.Relationship, exclude []string) []types.Relationship {
	skip := make(map[string]struct{}, len(exclude))
	for _, s := range exclude {
		skip[s] = struct{}{}
	}
	kept := rels[:0]
	for _, r := range rels {
		_, subj := skip[r.Subject]
		_, obj := skip[r.Object]
		if subj || obj {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

// callWithRetry calls fn, retrying retryable failures with exponential
// backoff up to maxRetries times.
func callWithRetry[T any](ctx context.Context, maxRetries int, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(backoff):
			}
		}

		v, err := fn()
		if err == nil {
			return v, nil
		}
		if !types.IsRetryable(err) {
			return zero, err
		}
		lastErr = err
	}
	return zero, fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}

// modelFailure makes sure a model error reaches callers as an
// ExtractionFailure.
func modelFailure(err error) error {
	var f *types.ExtractionFailure
	if errors.As(err, &f) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &types.ExtractionFailure{Kind: types.FailureTimeout, Retryable: true, Err: err}
	}
	return &types.ExtractionFailure{Kind: types.FailureNLP, Err: err}
}

// Record is the per-document extraction record written next to the graph.
type Record struct {
	DocumentID    string                `yaml:"document_id" json:"document_id"`
	Source        string                `yaml:"source,omitempty" json:"source,omitempty"`
	Model         string                `yaml:"model,omitempty" json:"model,omitempty"`
	Mode          types.SchemaKind      `yaml:"mode" json:"mode"`
	ExtractedAt   string                `yaml:"extracted_at" json:"extracted_at"`
	Entities      types.EntitySet       `yaml:"entities,omitempty" json:"entities,omitempty"`
	Relationships []types.Relationship  `yaml:"relationships,omitempty" json:"relationships,omitempty"`
	Statistics    *types.WordStatistics `yaml:"statistics,omitempty" json:"statistics,omitempty"`
}

// NewRecord builds a Record for whichever schema variant was extracted.
func NewRecord(doc types.Document, model string, s types.Schema) Record {
	rec := Record{
		DocumentID:  doc.ID,
		Source:      doc.Location,
		Model:       model,
		ExtractedAt: time.Now().UTC().Format(time.RFC3339),
	}
	switch v := s.(type) {
	case types.EntityRelationSchema:
		rec.Mode = types.SchemaEntityRelation
		rec.Entities = v.Entities
		rec.Relationships = v.Relationships
	case types.WordStatistics:
		rec.Mode = types.SchemaWordStatistics
		rec.Statistics = &v
	}
	return rec
}

// WriteRecord marshals rec to a YAML file, creating parent directories. The
// file is replaced atomically.
func WriteRecord(path string, rec Record) error {
	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}
	return fsutil.WriteFileAtomic(path, data)
}

// ReadRecord loads a record written by WriteRecord.
func ReadRecord(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, fmt.Errorf("reading record %s: %w", path, err)
	}
	var rec Record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("parsing record %s: %w", path, err)
	}
	return rec, nil
}

// Schema returns the schema variant the record holds.
func (r Record) Schema() (types.Schema, error) {
	switch r.Mode {
	case types.SchemaEntityRelation:
		entities := r.Entities
		if entities == nil {
			entities = types.NewEntitySet()
		}
		return types.EntityRelationSchema{Entities: entities, Relationships: r.Relationships}, nil
	case types.SchemaWordStatistics:
		if r.Statistics == nil {
			return nil, fmt.Errorf("record %s: statistics mode without statistics", r.DocumentID)
		}
		return *r.Statistics, nil
	default:
		return nil, fmt.Errorf("record %s: unknown mode %q", r.DocumentID, r.Mode)
	}
}
