// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
)

// ErrInvalidIdentifierInput reports a blank surface string reaching the
// identifier normalizer. Callers must filter blanks first; this is a
// precondition violation, not a recoverable condition.
var ErrInvalidIdentifierInput = errors.New("invalid identifier input: blank surface string")

// ErrEmptyInput reports empty text reaching word-statistics inference, where
// averages are undefined.
var ErrEmptyInput = errors.New("empty input")

// FailureKind classifies an ExtractionFailure for reports.
type FailureKind string

const (
	FailureSource      FailureKind = "source"
	FailureNetwork     FailureKind = "network"
	FailureTimeout     FailureKind = "timeout"
	FailureNLP         FailureKind = "nlp"
	FailureUnsupported FailureKind = "unsupported"
)

// ExtractionFailure is a recoverable text-source or NLP-service problem. A
// batch reports it for the document and moves on.
type ExtractionFailure struct {
	DocumentID string
	Kind       FailureKind
	Retryable  bool
	Err        error
}

func (f *ExtractionFailure) Error() string {
	if f.DocumentID == "" {
		return fmt.Sprintf("extraction failed (%s): %v", f.Kind, f.Err)
	}
	return fmt.Sprintf("extraction failed for %s (%s): %v", f.DocumentID, f.Kind, f.Err)
}

func (f *ExtractionFailure) Unwrap() error { return f.Err }

// IsRetryable reports whether err carries a retryable ExtractionFailure.
func IsRetryable(err error) bool {
	var f *ExtractionFailure
	return errors.As(err, &f) && f.Retryable
}

// WithDocument returns err with the document ID filled in when err is an
// ExtractionFailure that does not yet name one. Other errors pass through.
func WithDocument(err error, documentID string) error {
	var f *ExtractionFailure
	if !errors.As(err, &f) || f.DocumentID != "" {
		return err
	}
	cp := *f
	cp.DocumentID = documentID
	return &cp
}
