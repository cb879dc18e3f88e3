// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SchemaKind names a Schema variant. The caller picks one explicitly; the
// pipeline never infers it from data shape.
type SchemaKind string

const (
	SchemaWordStatistics SchemaKind = "statistics"
	SchemaEntityRelation SchemaKind = "entity"
)

// Valid reports whether k names a known variant.
func (k SchemaKind) Valid() bool {
	return k == SchemaWordStatistics || k == SchemaEntityRelation
}

// Schema is the tagged union of the two inputs a graph can be built from:
// WordStatistics or EntityRelationSchema.
type Schema interface {
	Kind() SchemaKind
	isSchema()
}

// WordStatistics summarizes a document's vocabulary. It feeds the simple
// builder mode that links a document to every distinct token.
type WordStatistics struct {
	// Count is the number of whitespace-separated tokens.
	Count int `json:"word_count" yaml:"word_count"`

	// AvgLen is the mean token length in runes.
	AvgLen float64 `json:"avg_len" yaml:"avg_len"`

	// Sample is the first 100 runes of the text.
	Sample string `json:"sample_text" yaml:"sample_text"`

	// Unique lists the distinct tokens, sorted.
	Unique []string `json:"unique_entities" yaml:"unique_entities"`
}

// Kind implements Schema.
func (WordStatistics) Kind() SchemaKind { return SchemaWordStatistics }
func (WordStatistics) isSchema()        {}

// EntityRelationSchema holds NER and dependency-parse findings for a document.
type EntityRelationSchema struct {
	Entities      EntitySet      `json:"entities" yaml:"entities"`
	Relationships []Relationship `json:"relationships" yaml:"relationships"`
}

// Kind implements Schema.
func (EntityRelationSchema) Kind() SchemaKind { return SchemaEntityRelation }
func (EntityRelationSchema) isSchema()        {}
