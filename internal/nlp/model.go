// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package nlp defines the named-entity and dependency-parse capability the
// extractors consume, with a spaCy service client, a fixture replayer for
// offline use, and a SQLite-backed analysis cache.
package nlp

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Span is one tagged entity mention.
type Span struct {
	Text  string `json:"text" yaml:"text"`
	Label string `json:"label" yaml:"label"`
}

// Token is one dependency-parsed token. Head is the index of the token's
// syntactic head within its sentence; a root is its own head.
type Token struct {
	Text string `json:"text" yaml:"text"`
	Head int    `json:"head" yaml:"head"`
	Dep  string `json:"dep" yaml:"dep"`
	POS  string `json:"pos" yaml:"pos"`
}

// Sentence is an ordered token sequence.
type Sentence struct {
	Tokens []Token `json:"tokens" yaml:"tokens"`
}

// Analysis is everything a backend reports for one text.
type Analysis struct {
	Entities  []Span     `json:"ents" yaml:"ents"`
	Sentences []Sentence `json:"sents" yaml:"sents"`
}

// Validate checks that every head index points inside its sentence.
func (a *Analysis) Validate() error {
	for si, s := range a.Sentences {
		for ti, tok := range s.Tokens {
			if tok.Head < 0 || tok.Head >= len(s.Tokens) {
				return fmt.Errorf("sentence %d token %d (%q): head %d out of range", si, ti, tok.Text, tok.Head)
			}
		}
	}
	return nil
}

// Model is the NLP capability used by the extractors. Implementations must
// be safe for concurrent use; batch workers share one Model.
type Model interface {
	// Name identifies the model in logs and cache keys.
	Name() string

	// TagEntities returns the entity mentions in text.
	TagEntities(ctx context.Context, text string) ([]Span, error)

	// ParseDependencies returns one dependency tree per sentence.
	ParseDependencies(ctx context.Context, text string) ([]Sentence, error)
}

// Analyzer produces a full Analysis in one call. Backends implement
// Analyzer; NewModel adapts one to Model.
type Analyzer interface {
	Name() string
	Analyze(ctx context.Context, text string) (*Analysis, error)
}

// memoSize bounds the in-memory analysis memo.
const memoSize = 64

// analyzerModel serves both Model operations from one Analyze call per text.
// Concurrent requests for the same text share a single call.
type analyzerModel struct {
	analyzer Analyzer

	memo   map[string]*Analysis
	order  []string
	memoMu sync.RWMutex
	group  singleflight.Group
}

// NewModel wraps an Analyzer as a Model.
func NewModel(a Analyzer) Model {
	return &analyzerModel{
		analyzer: a,
		memo:     make(map[string]*Analysis),
	}
}

func (m *analyzerModel) Name() string { return m.analyzer.Name() }

func (m *analyzerModel) TagEntities(ctx context.Context, text string) ([]Span, error) {
	a, err := m.analysis(ctx, text)
	if err != nil {
		return nil, err
	}
	return a.Entities, nil
}

func (m *analyzerModel) ParseDependencies(ctx context.Context, text string) ([]Sentence, error) {
	a, err := m.analysis(ctx, text)
	if err != nil {
		return nil, err
	}
	return a.Sentences, nil
}

func (m *analyzerModel) analysis(ctx context.Context, text string) (*Analysis, error) {
	key := CacheKey(m.analyzer.Name(), text)

	m.memoMu.RLock()
	if cached, ok := m.memo[key]; ok {
		m.memoMu.RUnlock()
		return cached, nil
	}
	m.memoMu.RUnlock()

	result, err, _ := m.group.Do(key, func() (any, error) {
		m.memoMu.RLock()
		if cached, ok := m.memo[key]; ok {
			m.memoMu.RUnlock()
			return cached, nil
		}
		m.memoMu.RUnlock()

		a, err := m.analyzer.Analyze(ctx, text)
		if err != nil {
			return nil, err
		}

		m.memoMu.Lock()
		if len(m.order) >= memoSize {
			delete(m.memo, m.order[0])
			m.order = m.order[1:]
		}
		m.memo[key] = a
		m.order = append(m.order, key)
		m.memoMu.Unlock()

		return a, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*Analysis), nil
}

// CacheKey returns the first 16 hex characters of SHA-256(model + text).
func CacheKey(model, text string) string {
	h := sha256.Sum256([]byte(model + text))
	return hex.EncodeToString(h[:])[:16]
}
