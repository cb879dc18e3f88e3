// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package nlp

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"
)

// FixtureEntry is one recorded analysis.
type FixtureEntry struct {
	Text     string `yaml:"text"`
	Analysis `yaml:",inline"`
}

// fixtureFile is the on-disk layout of a fixture.
type fixtureFile struct {
	Name     string         `yaml:"name,omitempty"`
	Analyses []FixtureEntry `yaml:"analyses"`
}

// Fixture replays recorded analyses keyed by text. Text with no recording
// gets an empty analysis. Fixture is read-only after construction and safe
// for concurrent use.
type Fixture struct {
	name     string
	analyses map[string]*Analysis
}

// NewFixture builds a Fixture from entries. Keys are the trimmed text.
func NewFixture(name string, entries ...FixtureEntry) (*Fixture, error) {
	if name == "" {
		name = "fixture"
	}
	f := &Fixture{name: name, analyses: make(map[string]*Analysis, len(entries))}
	for i, e := range entries {
		a := e.Analysis
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("fixture entry %d: %w", i, err)
		}
		f.analyses[strings.TrimSpace(e.Text)] = &a
	}
	return f, nil
}

// LoadFixture reads a YAML fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture %s: %w", path, err)
	}
	var ff fixtureFile
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("parsing fixture %s: %w", path, err)
	}
	return NewFixture(ff.Name, ff.Analyses...)
}

func (f *Fixture) Name() string { return f.name }

// Analyze returns the recorded analysis for text.
func (f *Fixture) Analyze(_ context.Context, text string) (*Analysis, error) {
	if a, ok := f.analyses[strings.TrimSpace(text)]; ok {
		return a, nil
	}
	return &Analysis{}, nil
}
