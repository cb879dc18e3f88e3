// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package nlp

import (
	"fmt"
	"io"

	"github.com/pdiddy/docgraph/pkg/types"
)

// Open builds the Model selected by cfg. When cfg.CacheDir is set the
// backend sits behind a SQLite cache; the returned closer releases it.
func Open(cfg types.NLPConfig) (Model, io.Closer, error) {
	var a Analyzer
	switch cfg.Backend {
	case types.NLPSpacy, "":
		c, err := NewSpacyClient(cfg)
		if err != nil {
			return nil, nil, err
		}
		a = c
	case types.NLPFixture:
		if cfg.FixturePath == "" {
			return nil, nil, fmt.Errorf("fixture backend requires fixture_path")
		}
		f, err := LoadFixture(cfg.FixturePath)
		if err != nil {
			return nil, nil, err
		}
		a = f
	default:
		return nil, nil, fmt.Errorf("unknown nlp backend %q", cfg.Backend)
	}

	var closer io.Closer = nopCloser{}
	if cfg.CacheDir != "" {
		c, err := NewCache(a, cfg.CacheDir)
		if err != nil {
			return nil, nil, err
		}
		a, closer = c, c
	}
	return NewModel(a), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
