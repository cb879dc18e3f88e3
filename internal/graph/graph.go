// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package graph holds the RDF-style triple set built from extracted
// entities and relationships, its builders, and a Turtle codec.
package graph

import (
	"sort"
	"strconv"
	"strings"
)

// Well-known vocabulary IRIs.
const (
	RDFNamespace = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFType      = RDFNamespace + "type"

	XSDNamespace = "http://www.w3.org/2001/XMLSchema#"
	XSDString    = XSDNamespace + "string"
	XSDInteger   = XSDNamespace + "integer"
)

// TermKind distinguishes IRIs from literals.
type TermKind uint8

const (
	KindIRI TermKind = iota
	KindLiteral
)

// Term is a node or value in a triple. Terms are comparable so they can be
// used as map keys.
type Term struct {
	Kind  TermKind
	Value string

	// Datatype is set for literals only.
	Datatype string
}

// IRI returns an IRI term.
func IRI(iri string) Term {
	return Term{Kind: KindIRI, Value: iri}
}

// String returns a string literal term.
func String(s string) Term {
	return Term{Kind: KindLiteral, Value: s, Datatype: XSDString}
}

// Integer returns an integer literal term.
func Integer(n int64) Term {
	return Term{Kind: KindLiteral, Value: strconv.FormatInt(n, 10), Datatype: XSDInteger}
}

// IsIRI reports whether t is an IRI.
func (t Term) IsIRI() bool { return t.Kind == KindIRI }

// IsLiteral reports whether t is a literal.
func (t Term) IsLiteral() bool { return t.Kind == KindLiteral }

// Key renders t in N-Triples form. It is used for ordering and messages.
func (t Term) Key() string {
	if t.IsIRI() {
		return "<" + t.Value + ">"
	}
	lit := `"` + escapeString(t.Value) + `"`
	if t.Datatype == "" || t.Datatype == XSDString {
		return lit
	}
	return lit + "^^<" + t.Datatype + ">"
}

func (t Term) String() string { return t.Key() }

// Triple is one (subject, predicate, object) statement.
type Triple struct {
	S, P, O Term
}

func (t Triple) String() string {
	return t.S.Key() + " " + t.P.Key() + " " + t.O.Key() + " ."
}

func (t Triple) less(o Triple) bool {
	if a, b := t.S.Key(), o.S.Key(); a != b {
		return a < b
	}
	if a, b := t.P.Key(), o.P.Key(); a != b {
		return a < b
	}
	return t.O.Key() < o.O.Key()
}

// Graph is an unordered set of triples. A Graph is not safe for concurrent
// mutation; batch workers each own one and merge afterwards.
type Graph struct {
	triples map[Triple]struct{}
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{triples: make(map[Triple]struct{})}
}

// Add inserts t. Adding a triple already present is a no-op.
func (g *Graph) Add(t Triple) {
	if g.triples == nil {
		g.triples = make(map[Triple]struct{})
	}
	g.triples[t] = struct{}{}
}

// AddTriple inserts (s, p, o).
func (g *Graph) AddTriple(s, p, o Term) {
	g.Add(Triple{S: s, P: p, O: o})
}

// Contains reports whether t is in the graph.
func (g *Graph) Contains(t Triple) bool {
	_, ok := g.triples[t]
	return ok
}

// Len returns the number of distinct triples.
func (g *Graph) Len() int {
	return len(g.triples)
}

// Triples returns every triple in a deterministic order.
func (g *Graph) Triples() []Triple {
	out := make([]Triple, 0, len(g.triples))
	for t := range g.triples {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].less(out[j]) })
	return out
}

// Merge adds every triple of other into g.
func (g *Graph) Merge(other *Graph) {
	if other == nil {
		return
	}
	for t := range other.triples {
		g.Add(t)
	}
}

// Equal reports whether g and other hold the same set of triples.
func (g *Graph) Equal(other *Graph) bool {
	if g.Len() != other.Len() {
		return false
	}
	for t := range g.triples {
		if !other.Contains(t) {
			return false
		}
	}
	return true
}

// Subjects returns the distinct subjects with a triple whose predicate is p,
// sorted.
func (g *Graph) Subjects(p Term) []Term {
	seen := make(map[Term]struct{})
	for t := range g.triples {
		if t.P == p {
			seen[t.S] = struct{}{}
		}
	}
	out := make([]Term, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

func escapeString(s string) string {
	if !strings.ContainsAny(s, "\\\"\n\r\t") {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
