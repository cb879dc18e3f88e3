// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/invopop/jsonschema"
	"go.yaml.in/yaml/v3"
)

// EntityType is the closed set of entity categories the graph understands.
type EntityType string

const (
	EntityPerson       EntityType = "Person"
	EntityOrganization EntityType = "Organization"
	EntityLocation     EntityType = "Location"
	EntityDate         EntityType = "Date"
	EntityMoney        EntityType = "Money"
	EntityProduct      EntityType = "Product"
)

// EntityTypes lists every EntityType in canonical order.
var EntityTypes = []EntityType{
	EntityPerson,
	EntityOrganization,
	EntityLocation,
	EntityDate,
	EntityMoney,
	EntityProduct,
}

// Valid reports whether t is one of the known entity types.
func (t EntityType) Valid() bool {
	for _, known := range EntityTypes {
		if t == known {
			return true
		}
	}
	return false
}

func (t EntityType) order() int {
	for i, known := range EntityTypes {
		if t == known {
			return i
		}
	}
	return len(EntityTypes)
}

// EntitySet groups entity surface strings by type. Each bucket is a set, so
// repeated mentions of the same surface collapse.
type EntitySet map[EntityType]map[string]struct{}

// NewEntitySet returns an empty EntitySet.
func NewEntitySet() EntitySet {
	return make(EntitySet)
}

// Add records surface under t.
func (s EntitySet) Add(t EntityType, surface string) {
	bucket, ok := s[t]
	if !ok {
		bucket = make(map[string]struct{})
		s[t] = bucket
	}
	bucket[surface] = struct{}{}
}

// Has reports whether surface is recorded under t.
func (s EntitySet) Has(t EntityType, surface string) bool {
	_, ok := s[t][surface]
	return ok
}

// Types returns the non-empty entity types in canonical order.
func (s EntitySet) Types() []EntityType {
	out := make([]EntityType, 0, len(s))
	for t, bucket := range s {
		if len(bucket) > 0 {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].order() != out[j].order() {
			return out[i].order() < out[j].order()
		}
		return out[i] < out[j]
	})
	return out
}

// Surfaces returns the surfaces recorded under t, sorted.
func (s EntitySet) Surfaces(t EntityType) []string {
	bucket := s[t]
	out := make([]string, 0, len(bucket))
	for surface := range bucket {
		out = append(out, surface)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of (type, surface) pairs.
func (s EntitySet) Len() int {
	n := 0
	for _, bucket := range s {
		n += len(bucket)
	}
	return n
}

// Merge adds every entry of other into s. Used to combine findings across
// documents.
func (s EntitySet) Merge(other EntitySet) {
	for t, bucket := range other {
		for surface := range bucket {
			s.Add(t, surface)
		}
	}
}

// Remove drops surface from every type bucket and reports whether anything
// was removed. Buckets left empty are deleted.
func (s EntitySet) Remove(surface string) bool {
	removed := false
	for t, bucket := range s {
		if _, ok := bucket[surface]; !ok {
			continue
		}
		delete(bucket, surface)
		removed = true
		if len(bucket) == 0 {
			delete(s, t)
		}
	}
	return removed
}

// Exclude removes every listed surface and returns how many (type, surface)
// pairs were dropped. Matching is exact.
func (s EntitySet) Exclude(surfaces []string) int {
	before := s.Len()
	for _, surface := range surfaces {
		s.Remove(surface)
	}
	return before - s.Len()
}

// lists returns the set in its serialized shape: type -> sorted surfaces.
func (s EntitySet) lists() map[EntityType][]string {
	out := make(map[EntityType][]string, len(s))
	for _, t := range s.Types() {
		out[t] = s.Surfaces(t)
	}
	return out
}

func (s *EntitySet) fromLists(lists map[EntityType][]string) error {
	set := NewEntitySet()
	for t, surfaces := range lists {
		if !t.Valid() {
			return fmt.Errorf("unknown entity type %q", t)
		}
		for _, surface := range surfaces {
			set.Add(t, surface)
		}
	}
	*s = set
	return nil
}

// MarshalJSON encodes the set as an object of sorted string arrays.
func (s EntitySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.lists())
}

// UnmarshalJSON decodes the shape produced by MarshalJSON.
func (s *EntitySet) UnmarshalJSON(data []byte) error {
	var lists map[EntityType][]string
	if err := json.Unmarshal(data, &lists); err != nil {
		return err
	}
	return s.fromLists(lists)
}

// JSONSchema describes the marshaled form: an object keyed by entity type
// whose values are arrays of surface strings.
func (EntitySet) JSONSchema() *jsonschema.Schema {
	names := make([]any, len(EntityTypes))
	for i, t := range EntityTypes {
		names[i] = string(t)
	}
	return &jsonschema.Schema{
		Type:          "object",
		PropertyNames: &jsonschema.Schema{Type: "string", Enum: names},
		AdditionalProperties: &jsonschema.Schema{
			Type:        "array",
			Items:       &jsonschema.Schema{Type: "string"},
			UniqueItems: true,
		},
	}
}

// MarshalYAML encodes the set as a mapping of sorted sequences.
func (s EntitySet) MarshalYAML() (any, error) {
	return s.lists(), nil
}

// UnmarshalYAML decodes the shape produced by MarshalYAML.
func (s *EntitySet) UnmarshalYAML(node *yaml.Node) error {
	var lists map[EntityType][]string
	if err := node.Decode(&lists); err != nil {
		return err
	}
	return s.fromLists(lists)
}

// Relationship is a directed (subject, predicate, object) statement in
// surface form, before identifiers are assigned. Duplicates are allowed.
type Relationship struct {
	Subject   string `json:"subject" yaml:"subject"`
	Predicate string `json:"predicate" yaml:"predicate"`
	Object    string `json:"object" yaml:"object"`
}

// Identifier is the canonical IRI assigned to an entity, predicate, or
// document. Only the identifier normalizer produces them.
type Identifier string
