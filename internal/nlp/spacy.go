// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package nlp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/docgraph/internal/httputil"
	"github.com/pdiddy/docgraph/pkg/types"
)

const defaultSpacyModel = "en_core_web_sm"

// SpacyClient calls a spaCy HTTP service exposing POST /analyze.
type SpacyClient struct {
	endpoint   string
	model      string
	apiKey     string
	userAgent  string
	maxRetries int
	client     *http.Client
}

// NewSpacyClient returns a client for the service at cfg.Endpoint.
func NewSpacyClient(cfg types.NLPConfig) (*SpacyClient, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("spacy backend requires an endpoint")
	}
	model := cfg.Model
	if model == "" {
		model = defaultSpacyModel
	}
	return &SpacyClient{
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		model:      model,
		apiKey:     cfg.APIKey,
		userAgent:  cfg.UserAgent,
		maxRetries: cfg.MaxRetries,
		client:     httputil.NewClient(cfg.HTTPConfig),
	}, nil
}

// Name returns "spacy/<model>".
func (c *SpacyClient) Name() string { return "spacy/" + c.model }

type analyzeRequest struct {
	Text  string `json:"text"`
	Model string `json:"model"`
}

// Analyze sends text to the service. Transport failures, timeouts, and
// 429/5xx responses come back as retryable ExtractionFailures.
func (c *SpacyClient) Analyze(ctx context.Context, text string) (*Analysis, error) {
	body, err := json.Marshal(analyzeRequest{Text: text, Model: c.model})
	if err != nil {
		return nil, fmt.Errorf("encoding analyze request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating analyze request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := httputil.DoWithRetry(ctx, c.client, req, c.maxRetries)
	if err != nil {
		return nil, nlpFailure(httputil.Failure(err, 0))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &types.ExtractionFailure{
			Kind:      types.FailureNLP,
			Retryable: httputil.Retryable(resp.StatusCode),
			Err:       fmt.Errorf("analyze returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))),
		}
	}

	var a Analysis
	if err := json.NewDecoder(resp.Body).Decode(&a); err != nil {
		return nil, &types.ExtractionFailure{Kind: types.FailureNLP, Err: fmt.Errorf("decoding analyze response: %w", err)}
	}
	if err := a.Validate(); err != nil {
		return nil, &types.ExtractionFailure{Kind: types.FailureNLP, Err: err}
	}
	return &a, nil
}

// nlpFailure relabels a transport failure from the service as an NLP
// failure. Timeouts keep their kind; the retryable flag is preserved.
func nlpFailure(err error) error {
	var f *types.ExtractionFailure
	if !errors.As(err, &f) {
		return &types.ExtractionFailure{Kind: types.FailureNLP, Err: err}
	}
	cp := *f
	if cp.Kind == types.FailureNetwork {
		cp.Kind = types.FailureNLP
	}
	return &cp
}
