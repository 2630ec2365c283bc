package nlp

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

type fakeSummaryBackend struct {
	output  string
	err     error
	windows []int
	lengths [][2]int
}

func (b *fakeSummaryBackend) Summarize(_ context.Context, text string, maxLength, minLength int) (string, error) {
	b.windows = append(b.windows, utf8.RuneCountInString(text))
	b.lengths = append(b.lengths, [2]int{maxLength, minLength})
	if b.err != nil {
		return "", b.err
	}
	return b.output, nil
}

type failingSegmenter struct{}

func (failingSegmenter) Sentences(string) ([]string, error) {
	return nil, errors.New("segmenter unavailable")
}

const councilText = "The council met on Monday. It approved the new budget. Residents protested outside the hall. The vote was close."

func TestSummarizerTruncatesToMaxSentences(t *testing.T) {
	backend := &fakeSummaryBackend{output: "The mayor resigned. A new election was called. Turnout is expected to be high."}
	summarizer := NewSummarizer(backend, NewProseSegmenter())

	got := summarizer.Summarize(context.Background(), councilText, 2)
	if got != "The mayor resigned. A new election was called." {
		t.Errorf("Expected two summary sentences, got '%s'", got)
	}

	if len(backend.lengths) != 1 || backend.lengths[0] != [2]int{SummaryMaxLength, SummaryMinLength} {
		t.Errorf("Expected length targets (150, 30), got %v", backend.lengths)
	}
}

func TestSummarizerWindowsLongInput(t *testing.T) {
	backend := &fakeSummaryBackend{output: "Part."}
	summarizer := NewSummarizer(backend, NewProseSegmenter())

	text := strings.Repeat("a", 2500)
	got := summarizer.Summarize(context.Background(), text, 5)

	expectedWindows := []int{1000, 1000, 500}
	if len(backend.windows) != len(expectedWindows) {
		t.Fatalf("Expected %d windows, got %v", len(expectedWindows), backend.windows)
	}
	for i, size := range expectedWindows {
		if backend.windows[i] != size {
			t.Errorf("Expected window %d of %d runes, got %d", i, size, backend.windows[i])
		}
	}

	if !strings.HasPrefix(got, "Part.") {
		t.Errorf("Expected joined window summaries, got '%s'", got)
	}
}

func TestSummarizerFallbackUsesOriginalText(t *testing.T) {
	backend := &fakeSummaryBackend{err: errors.New("model offline")}
	summarizer := NewSummarizer(backend, NewProseSegmenter())

	got := summarizer.Summarize(context.Background(), councilText, 2)
	if got != "The council met on Monday. It approved the new budget." {
		t.Errorf("Expected first two sentences of the original, got '%s'", got)
	}

	if _, err := summarizer.TrySummarize(context.Background(), councilText, 2); !errors.Is(err, ErrSummarization) {
		t.Errorf("Expected ErrSummarization, got: %v", err)
	}
}

func TestSummarizerFallbackNeverFails(t *testing.T) {
	backend := &fakeSummaryBackend{err: errors.New("model offline")}
	summarizer := NewSummarizer(backend, failingSegmenter{})

	got := summarizer.Summarize(context.Background(), "  Some text.  ", 3)
	if got != "Some text." {
		t.Errorf("Expected trimmed input when segmentation fails, got '%s'", got)
	}
}

func TestSummarizerEmptyInput(t *testing.T) {
	backend := &fakeSummaryBackend{output: "unused"}
	summarizer := NewSummarizer(backend, NewProseSegmenter())

	if got := summarizer.Summarize(context.Background(), "   ", 3); got != "" {
		t.Errorf("Expected empty summary, got '%s'", got)
	}
	if len(backend.windows) != 0 {
		t.Errorf("Expected no backend calls, got %d", len(backend.windows))
	}
}

func TestProseSegmenter(t *testing.T) {
	sentences, err := NewProseSegmenter().Sentences(councilText)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(sentences) != 4 {
		t.Fatalf("Expected 4 sentences, got %d: %v", len(sentences), sentences)
	}
	if sentences[3] != "The vote was close." {
		t.Errorf("Expected last sentence 'The vote was close.', got '%s'", sentences[3])
	}
}

func TestFirstSentences(t *testing.T) {
	segmenter := NewProseSegmenter()

	got, err := FirstSentences(segmenter, councilText, 10)
	if err != nil {
		t.Fatal(err)
	}
	if got != councilText {
		t.Errorf("Expected all sentences when n exceeds count, got '%s'", got)
	}

	got, err = FirstSentences(segmenter, councilText, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got != "" {
		t.Errorf("Expected empty result for n=0, got '%s'", got)
	}
}
