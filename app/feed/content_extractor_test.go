package feed

import (
	"strings"
	"testing"
)

func TestContentExtractor_ValidHTML(t *testing.T) {
	extractor := NewContentExtractor()

	htmlContent := `
	<!DOCTYPE html>
	<html>
	<head>
		<title>Test Article</title>
	</head>
	<body>
		<header>
			<h1>Site Header</h1>
			<nav>Navigation</nav>
		</header>
		<main>
			<article>
				<h1>Main Article Title</h1>
				<p>This is the main content of the article. It contains several paragraphs of meaningful text that should be extracted by the readability algorithm.</p>
				<p>This is another paragraph with more content. The readability algorithm should identify this as the main content area and extract it properly.</p>
				<p>Here is some more substantial content to ensure we meet the character threshold. This paragraph adds more context and information that would be valuable to readers.</p>
			</article>
		</main>
		<footer>
			<p>Copyright 2024</p>
		</footer>
	</body>
	</html>
	`

	result, err := extractor.Run([]byte(htmlContent), "https://example.com/article")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if result.Text == "" {
		t.Errorf("Expected non-empty text")
	}
	if !strings.Contains(result.Text, "main content of the article") {
		t.Errorf("Expected extracted text to contain main article text, got: %s", result.Text)
	}
	if strings.Contains(result.Text, "<p>") {
		t.Errorf("Expected plain text without markup, got: %s", result.Text)
	}
	if result.Title == "" {
		t.Errorf("Expected a title to be extracted")
	}
}

func TestContentExtractor_EmptyData(t *testing.T) {
	extractor := NewContentExtractor()

	result, err := extractor.Run([]byte{}, "")
	if err == nil {
		t.Error("Expected error for empty data")
	}
	if result != nil {
		t.Errorf("Expected nil result, got: %+v", result)
	}
}

func TestContentExtractor_NoContent(t *testing.T) {
	extractor := NewContentExtractor()

	_, err := extractor.Run([]byte(`<html><head><script>var a = 1;</script></head><body></body></html>`), "")
	if err == nil {
		t.Error("Expected error for page without text")
	}
}

func TestContentExtractor_ParagraphFallback(t *testing.T) {
	extractor := NewContentExtractor()

	doc, err := extractor.extractParagraphs([]byte(`<html><head><title>Page</title>
<meta property="og:title" content="Fallback Title"></head>
<body><nav>Menu</nav><p>First   paragraph.</p><script>ignored()</script><p>Second paragraph.</p></body></html>`))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if doc.Title != "Fallback Title" {
		t.Errorf("Expected title 'Fallback Title', got: %s", doc.Title)
	}
	if doc.Text != "First paragraph.\n\nSecond paragraph." {
		t.Errorf("Expected joined paragraphs, got: %q", doc.Text)
	}
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"collapses spaces", "a   b\tc", "a b c"},
		{"keeps one paragraph break", "one\n\n\n\ntwo", "one\n\ntwo"},
		{"trims leading blank lines", "\n\n  one", "one"},
		{"empty", "  \n ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeText(tt.input); got != tt.expected {
				t.Errorf("normalizeText(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
