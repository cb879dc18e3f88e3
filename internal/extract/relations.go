// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"slices"
	"strings"

	"github.com/pdiddy/docgraph/internal/nlp"
	"github.com/pdiddy/docgraph/pkg/types"
)

// RoleMap selects which dependency labels and head parts of speech form a
// subject-verb-object pattern.
type RoleMap struct {
	// Subjects are dependency labels of the subject token.
	Subjects []string

	// Objects are dependency labels of the head's object children.
	Objects []string

	// Heads are the accepted parts of speech of the subject's head.
	Heads []string
}

var (
	subjectDeps = []string{"nsubj", "nsubjpass", "nsubj:pass"}
	objectDeps  = []string{"dobj", "pobj", "obj"}
)

// StrictRoles matches only verb heads with direct or prepositional objects.
// Passive subjects are treated the same as active ones.
func StrictRoles() RoleMap {
	return RoleMap{
		Subjects: slices.Clone(subjectDeps),
		Objects:  slices.Clone(objectDeps),
		Heads:    []string{"VERB"},
	}
}

// CopularRoles extends StrictRoles so copular sentences produce a
// relationship: an AUX head ("is") and its attr complement ("capital").
func CopularRoles() RoleMap {
	r := StrictRoles()
	r.Objects = append(r.Objects, "attr")
	r.Heads = append(r.Heads, "AUX")
	return r
}

// Roles returns CopularRoles when copular is set, StrictRoles otherwise.
func Roles(copular bool) RoleMap {
	if copular {
		return CopularRoles()
	}
	return StrictRoles()
}

// ExtractRelationships parses text and emits one relationship per
// (subject, head, object) triple found in each sentence: for every token
// whose label is a subject role and whose head has an accepted part of
// speech, each child of that head with an object role yields
// (subject text, head text, child text). Output follows sentence, then
// subject token, then child order; duplicates are kept.
//
// The pattern is a heuristic and accepts false positives.
func ExtractRelationships(ctx context.Context, m nlp.Model, text string, roles RoleMap) ([]types.Relationship, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	sentences, err := m.ParseDependencies(ctx, text)
	if err != nil {
		return nil, modelFailure(err)
	}

	var out []types.Relationship
	for _, s := range sentences {
		out = append(out, sentenceRelationships(s, roles)...)
	}
	return out, nil
}

func sentenceRelationships(s nlp.Sentence, roles RoleMap) []types.Relationship {
	var out []types.Relationship
	for i, tok := range s.Tokens {
		if !slices.Contains(roles.Subjects, tok.Dep) {
			continue
		}
		h := tok.Head
		if h == i || h < 0 || h >= len(s.Tokens) {
			continue
		}
		head := s.Tokens[h]
		if !slices.Contains(roles.Heads, head.POS) {
			continue
		}
		for j, child := range s.Tokens {
			if j == h || child.Head != h || !slices.Contains(roles.Objects, child.Dep) {
				continue
			}
			r := types.Relationship{Subject: tok.Text, Predicate: head.Text, Object: child.Text}
			if blank(r.Subject) || blank(r.Predicate) || blank(r.Object) {
				continue
			}
			out = append(out, r)
		}
	}
	return out
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }
