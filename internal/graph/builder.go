// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"fmt"
	"sort"

	"github.com/pdiddy/docgraph/internal/identifier"
	"github.com/pdiddy/docgraph/pkg/types"
)

// Local names of the predicates emitted by BuildStatistics.
const (
	PredWordCount  = "word_count"
	PredHasEntity  = "has_entity"
	PredEntityName = "entity_name"
)

// Builder assembles graphs from extraction results. Every surface string is
// routed through the Normalizer, so the same surface always maps to the same
// node.
type Builder struct {
	Normalizer identifier.Normalizer
}

// NewBuilder returns a Builder whose identifiers live under ns.
func NewBuilder(ns string) *Builder {
	return &Builder{Normalizer: identifier.New(ns)}
}

func (b *Builder) iri(surface string) (Term, error) {
	id, err := b.Normalizer.Normalize(surface)
	if err != nil {
		return Term{}, err
	}
	return IRI(string(id)), nil
}

// Build emits one rdf:type assertion per (type, surface) entity and one edge
// per relationship. A surface recorded under several types gets several type
// assertions. Relationship endpoints need not be typed entities.
//
// A blank surface anywhere fails the whole build and no graph is returned.
func (b *Builder) Build(entities types.EntitySet, relationships []types.Relationship) (*Graph, error) {
	g := New()
	rdfType := IRI(RDFType)

	for _, et := range entities.Types() {
		class, err := b.iri(string(et))
		if err != nil {
			return nil, fmt.Errorf("entity type %q: %w", et, err)
		}
		for _, surface := range entities.Surfaces(et) {
			node, err := b.iri(surface)
			if err != nil {
				return nil, fmt.Errorf("entity %s/%q: %w", et, surface, err)
			}
			g.AddTriple(node, rdfType, class)
		}
	}

	for i, r := range relationships {
		s, err := b.iri(r.Subject)
		if err != nil {
			return nil, fmt.Errorf("relationship %d subject: %w", i, err)
		}
		p, err := b.iri(r.Predicate)
		if err != nil {
			return nil, fmt.Errorf("relationship %d predicate: %w", i, err)
		}
		o, err := b.iri(r.Object)
		if err != nil {
			return nil, fmt.Errorf("relationship %d object: %w", i, err)
		}
		g.AddTriple(s, p, o)
	}

	return g, nil
}

// BuildStatistics links each document to its word count and to every
// distinct token, and labels each token node with its surface text.
func (b *Builder) BuildStatistics(docs map[string]types.WordStatistics) (*Graph, error) {
	g := New()
	wordCount := IRI(string(b.Normalizer.MustNormalize(PredWordCount)))
	hasEntity := IRI(string(b.Normalizer.MustNormalize(PredHasEntity)))
	entityName := IRI(string(b.Normalizer.MustNormalize(PredEntityName)))

	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, docID := range ids {
		stats := docs[docID]
		doc, err := b.iri(docID)
		if err != nil {
			return nil, fmt.Errorf("document %q: %w", docID, err)
		}
		g.AddTriple(doc, wordCount, Integer(int64(stats.Count)))

		for _, token := range stats.Unique {
			node, err := b.iri(token)
			if err != nil {
				return nil, fmt.Errorf("document %q token %q: %w", docID, token, err)
			}
			g.AddTriple(doc, hasEntity, node)
			g.AddTriple(node, entityName, String(token))
		}
	}

	return g, nil
}

// BuildSchema builds the graph for one document from whichever schema
// variant the caller selected.
func (b *Builder) BuildSchema(docID string, s types.Schema) (*Graph, error) {
	switch v := s.(type) {
	case types.WordStatistics:
		return b.BuildStatistics(map[string]types.WordStatistics{docID: v})
	case *types.WordStatistics:
		if v == nil {
			return nil, fmt.Errorf("document %q: %w", docID, types.ErrEmptyInput)
		}
		return b.BuildStatistics(map[string]types.WordStatistics{docID: *v})
	case types.EntityRelationSchema:
		return b.Build(v.Entities, v.Relationships)
	case *types.EntityRelationSchema:
		if v == nil {
			return New(), nil
		}
		return b.Build(v.Entities, v.Relationships)
	default:
		return nil, fmt.Errorf("unsupported schema %T", s)
	}
}
