// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the docgraph pipeline:
// documents, extracted entities and relationships, schemas, layout payloads,
// configuration, and the error taxonomy.
package types
