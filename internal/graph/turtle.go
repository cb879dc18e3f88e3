// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/knakk/rdf"
)

const rdfLangString = RDFNamespace + "langString"

// WriteTurtle serializes g as Turtle with prefix bound to ns. Statements are
// encoded in sorted triple order, so equal graphs produce equal output.
func WriteTurtle(w io.Writer, g *Graph, prefix, ns string) error {
	// Declared up front so an empty graph still names its namespace.
	if _, err := fmt.Fprintf(w, "@prefix %s: <%s> .\n", prefix, ns); err != nil {
		return err
	}
	if g.Len() == 0 {
		return nil
	}

	triples := g.Triples()
	out := make([]rdf.Triple, 0, len(triples))
	for _, t := range triples {
		rt, err := toRDF(t)
		if err != nil {
			return err
		}
		out = append(out, rt)
	}

	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}
	enc := rdf.NewTripleEncoder(w, rdf.Turtle)
	enc.Namespaces = map[string]string{ns: prefix}
	if err := enc.EncodeAll(out); err != nil {
		return fmt.Errorf("encoding turtle: %w", err)
	}
	return enc.Close()
}

// MarshalTurtle is WriteTurtle into a string. It returns "" when a term
// cannot be encoded.
func MarshalTurtle(g *Graph, prefix, ns string) string {
	var b strings.Builder
	if err := WriteTurtle(&b, g, prefix, ns); err != nil {
		return ""
	}
	return b.String()
}

// ParseTurtle decodes a Turtle document into a graph. Language-tagged
// strings become plain string literals. Blank nodes are rejected since
// every node in a docgraph graph is named.
func ParseTurtle(r io.Reader) (*Graph, error) {
	dec := rdf.NewTripleDecoder(r, rdf.Turtle)
	g := New()
	for {
		rt, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			return g, nil
		}
		if err != nil {
			return nil, fmt.Errorf("parsing turtle: %w", err)
		}
		t, err := fromRDF(rt)
		if err != nil {
			return nil, fmt.Errorf("parsing turtle: %w", err)
		}
		g.Add(t)
	}
}

func toRDF(t Triple) (rdf.Triple, error) {
	s, err := rdf.NewIRI(t.S.Value)
	if err != nil {
		return rdf.Triple{}, fmt.Errorf("subject %s: %w", t.S, err)
	}
	p, err := rdf.NewIRI(t.P.Value)
	if err != nil {
		return rdf.Triple{}, fmt.Errorf("predicate %s: %w", t.P, err)
	}
	var o rdf.Object
	if t.O.IsIRI() {
		iri, err := rdf.NewIRI(t.O.Value)
		if err != nil {
			return rdf.Triple{}, fmt.Errorf("object %s: %w", t.O, err)
		}
		o = iri
	} else {
		dt := t.O.Datatype
		if dt == "" {
			dt = XSDString
		}
		dtIRI, err := rdf.NewIRI(dt)
		if err != nil {
			return rdf.Triple{}, fmt.Errorf("datatype %s: %w", dt, err)
		}
		o = rdf.NewTypedLiteral(t.O.Value, dtIRI)
	}
	return rdf.Triple{Subj: s, Pred: p, Obj: o}, nil
}

func fromRDF(rt rdf.Triple) (Triple, error) {
	s, err := fromTerm(rt.Subj)
	if err != nil {
		return Triple{}, err
	}
	p, err := fromTerm(rt.Pred)
	if err != nil {
		return Triple{}, err
	}
	o, err := fromTerm(rt.Obj)
	if err != nil {
		return Triple{}, err
	}
	if !s.IsIRI() {
		return Triple{}, fmt.Errorf("literal subject %s", s)
	}
	return Triple{S: s, P: p, O: o}, nil
}

func fromTerm(t rdf.Term) (Term, error) {
	switch t.Type() {
	case rdf.TermIRI:
		return IRI(t.String()), nil
	case rdf.TermLiteral:
		lit, ok := t.(rdf.Literal)
		if !ok {
			return Term{}, fmt.Errorf("unexpected literal %T", t)
		}
		dt := lit.DataType.String()
		if dt == "" || dt == rdfLangString {
			dt = XSDString
		}
		return Term{Kind: KindLiteral, Value: lit.String(), Datatype: dt}, nil
	default:
		return Term{}, fmt.Errorf("blank node %s is not supported", t)
	}
}
