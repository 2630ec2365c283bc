package nlp

import (
	"fmt"
	"strings"

	"github.com/jdkato/prose/v2"
)

// Segmenter splits text into sentences.
type Segmenter interface {
	Sentences(text string) ([]string, error)
}

var _ Segmenter = (*ProseSegmenter)(nil)

// ProseSegmenter uses the prose sentence boundary detector with tagging and
// entity extraction disabled.
type ProseSegmenter struct{}

func NewProseSegmenter() *ProseSegmenter {
	return &ProseSegmenter{}
}

func (s *ProseSegmenter) Sentences(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithExtraction(false),
		prose.WithTokenization(false),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to segment text: %w", err)
	}

	sentences := make([]string, 0, len(doc.Sentences()))
	for _, sent := range doc.Sentences() {
		if trimmed := strings.TrimSpace(sent.Text); trimmed != "" {
			sentences = append(sentences, trimmed)
		}
	}

	return sentences, nil
}

// FirstSentences returns the first n sentences of text joined by single spaces.
func FirstSentences(segmenter Segmenter, text string, n int) (string, error) {
	sentences, err := segmenter.Sentences(text)
	if err != nil {
		return "", err
	}

	if n < len(sentences) {
		sentences = sentences[:max(n, 0)]
	}

	return strings.Join(sentences, " "), nil
}

// chunkRunes splits s into consecutive windows of at most size runes.
func chunkRunes(s string, size int) []string {
	runes := []rune(s)
	if len(runes) == 0 {
		return nil
	}
	if size <= 0 || len(runes) <= size {
		return []string{s}
	}

	chunks := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := min(start+size, len(runes))
		chunks = append(chunks, string(runes[start:end]))
	}

	return chunks
}
