package nlp

import (
	"context"
	"errors"
)

var (
	ErrTranslation   = errors.New("translation failed")
	ErrSummarization = errors.New("summarization failed")
)

// TranslationBackend translates text for one fixed language pair.
type TranslationBackend interface {
	Translate(ctx context.Context, text string) (string, error)
}

// BackendFactory builds the translation backend for a language pair.
type BackendFactory func(ctx context.Context, source, target string) (TranslationBackend, error)

// SummaryBackend produces an abstractive summary whose length is bounded by
// maxLength and minLength tokens.
type SummaryBackend interface {
	Summarize(ctx context.Context, text string, maxLength, minLength int) (string, error)
}
