package nlp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lysyi3m/rss-digest/app/metrics"
)

const (
	SummaryWindowSize = 1000
	SummaryMaxLength  = 150
	SummaryMinLength  = 30
)

type Summarizer struct {
	backend   SummaryBackend
	segmenter Segmenter
}

func NewSummarizer(backend SummaryBackend, segmenter Segmenter) *Summarizer {
	return &Summarizer{
		backend:   backend,
		segmenter: segmenter,
	}
}

// Summarize condenses text to at most maxSentences sentences. When the model
// backend fails the first maxSentences sentences of the input are returned.
func (s *Summarizer) Summarize(ctx context.Context, text string, maxSentences int) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	summary, err := s.TrySummarize(ctx, text, maxSentences)
	if err == nil {
		return summary
	}

	slog.Warn("Summarization failed, using leading sentences", "error", err)
	metrics.ModelFallbacks.WithLabelValues("summarization").Inc()

	return s.fallback(text, maxSentences)
}

// TrySummarize is Summarize without the fallback. Errors wrap ErrSummarization.
func (s *Summarizer) TrySummarize(ctx context.Context, text string, maxSentences int) (string, error) {
	windows := chunkRunes(text, SummaryWindowSize)
	if len(windows) == 0 {
		return "", nil
	}

	parts := make([]string, 0, len(windows))
	for _, window := range windows {
		part, err := s.backend.Summarize(ctx, window, SummaryMaxLength, SummaryMinLength)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrSummarization, err)
		}
		parts = append(parts, strings.TrimSpace(part))
	}

	summary, err := FirstSentences(s.segmenter, strings.Join(parts, " "), maxSentences)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSummarization, err)
	}

	return summary, nil
}

func (s *Summarizer) fallback(text string, maxSentences int) string {
	summary, err := FirstSentences(s.segmenter, text, maxSentences)
	if err != nil {
		slog.Warn("Sentence segmentation failed, returning trimmed text", "error", err)
		return strings.TrimSpace(text)
	}
	return summary
}
