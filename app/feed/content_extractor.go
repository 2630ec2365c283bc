package feed

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

// Extracted is the readable part of an article page.
type Extracted struct {
	Title string
	Text  string
}

type ContentExtractor struct{}

func NewContentExtractor() *ContentExtractor {
	return &ContentExtractor{}
}

// Run extracts the title and main text of an HTML page. Readability is tried
// first; pages it cannot score fall back to the concatenated paragraph text.
func (e *ContentExtractor) Run(data []byte, pageURL string) (*Extracted, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("HTML data is empty")
	}

	var parsedURL *url.URL
	if pageURL != "" {
		if u, err := url.Parse(pageURL); err == nil {
			parsedURL = u
		}
	}

	article, err := readability.FromReader(bytes.NewReader(data), parsedURL)
	if err == nil {
		text := normalizeText(article.TextContent)
		if text != "" {
			slog.Debug("Content extracted successfully",
				"title", article.Title,
				"content_length", len(text))
			return &Extracted{Title: strings.TrimSpace(article.Title), Text: text}, nil
		}
	} else {
		slog.Debug("Readability extraction failed, falling back to paragraphs", "url", pageURL, "error", err)
	}

	extracted, err := e.extractParagraphs(data)
	if err != nil {
		return nil, err
	}
	if extracted.Text == "" {
		return nil, fmt.Errorf("no content extracted from HTML data")
	}

	return extracted, nil
}

func (e *ContentExtractor) extractParagraphs(data []byte) (*Extracted, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript, nav, header, footer, aside, form").Remove()

	title := strings.TrimSpace(doc.Find(`meta[property="og:title"]`).AttrOr("content", ""))
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	var paragraphs []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		if text := normalizeText(s.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})

	text := strings.Join(paragraphs, "\n\n")
	if text == "" {
		text = normalizeText(doc.Find("body").Text())
	}

	return &Extracted{Title: title, Text: text}, nil
}

// normalizeText collapses runs of spaces inside lines and drops blank lines
// beyond a single paragraph break.
func normalizeText(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			blank = len(out) > 0
			continue
		}
		if blank {
			out = append(out, "")
			blank = false
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
