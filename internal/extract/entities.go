// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"strings"

	"github.com/pdiddy/docgraph/internal/nlp"
	"github.com/pdiddy/docgraph/pkg/types"
)

// labelTypes maps NER labels to entity types. Labels not listed are ignored.
var labelTypes = map[string]types.EntityType{
	"PERSON":  types.EntityPerson,
	"ORG":     types.EntityOrganization,
	"GPE":     types.EntityLocation,
	"DATE":    types.EntityDate,
	"MONEY":   types.EntityMoney,
	"PRODUCT": types.EntityProduct,
}

// EntityTypeForLabel returns the entity type for an NER label.
func EntityTypeForLabel(label string) (types.EntityType, bool) {
	t, ok := labelTypes[label]
	return t, ok
}

// ExtractEntities tags text once and groups the recognized mentions by
// entity type. Blank or whitespace-only text returns an empty set without
// calling the model. Mentions with unmapped labels or blank surfaces are
// dropped, and repeated mentions collapse.
func ExtractEntities(ctx context.Context, m nlp.Model, text string) (types.EntitySet, error) {
	set := types.NewEntitySet()
	if strings.TrimSpace(text) == "" {
		return set, nil
	}

	spans, err := m.TagEntities(ctx, text)
	if err != nil {
		return nil, modelFailure(err)
	}

	for _, span := range spans {
		t, ok := EntityTypeForLabel(span.Label)
		if !ok || strings.TrimSpace(span.Text) == "" {
			continue
		}
		set.Add(t, span.Text)
	}
	return set, nil
}
