// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"io"
	"sort"

	"github.com/invopop/jsonschema"

	"github.com/pdiddy/docgraph/internal/extract"
	"github.com/pdiddy/docgraph/pkg/types"
)

// schemaTargets are the exported documents that have a published schema.
var schemaTargets = map[string]any{
	"layout": &types.Layout{},
	"record": &extract.Record{},
}

// SchemaNames lists the names accepted by ExportJSONSchema.
func SchemaNames() []string {
	names := make([]string, 0, len(schemaTargets))
	for name := range schemaTargets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ExportJSONSchema writes the JSON Schema of the named export document
// ("layout" or "record") to w.
func ExportJSONSchema(w io.Writer, name string) error {
	target, ok := schemaTargets[name]
	if !ok {
		return fmt.Errorf("no schema named %q (want one of %v)", name, SchemaNames())
	}
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	return writeJSON(w, reflector.Reflect(target))
}
