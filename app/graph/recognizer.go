package graph

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/jdkato/prose/v2"
)

// Recognizer finds named-entity mentions in text, in text order.
type Recognizer interface {
	Recognize(text string) ([]Mention, error)
}

var (
	_ Recognizer = (*ProseRecognizer)(nil)
	_ Recognizer = (*Gazetteer)(nil)
	_ Recognizer = Chain(nil)
)

// ProseRecognizer runs the prose statistical entity extractor.
type ProseRecognizer struct{}

func NewProseRecognizer() *ProseRecognizer {
	return &ProseRecognizer{}
}

func (r *ProseRecognizer) Recognize(text string) ([]Mention, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	doc, err := prose.NewDocument(text, prose.WithSegmentation(false))
	if err != nil {
		return nil, fmt.Errorf("failed to analyze text: %w", err)
	}

	entities := doc.Entities()
	mentions := make([]Mention, 0, len(entities))
	for _, ent := range entities {
		mentions = append(mentions, Mention{Text: strings.TrimSpace(ent.Text), Label: ent.Label})
	}

	return mentions, nil
}

// Gazetteer recognizes a fixed table of surface forms. Longer names win over
// names they contain.
type Gazetteer struct {
	labels  map[string]string
	pattern *regexp.Regexp
}

func NewGazetteer(entries map[string]string) *Gazetteer {
	names := make([]string, 0, len(entries))
	for name := range entries {
		if strings.TrimSpace(name) != "" {
			names = append(names, name)
		}
	}

	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})

	g := &Gazetteer{labels: make(map[string]string, len(names))}
	if len(names) == 0 {
		return g
	}

	quoted := make([]string, len(names))
	for i, name := range names {
		g.labels[name] = entries[name]
		quoted[i] = regexp.QuoteMeta(name)
	}
	g.pattern = regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)

	return g
}

func (g *Gazetteer) Recognize(text string) ([]Mention, error) {
	if g.pattern == nil {
		return nil, nil
	}

	matches := g.pattern.FindAllString(text, -1)
	mentions := make([]Mention, 0, len(matches))
	for _, match := range matches {
		mentions = append(mentions, Mention{Text: match, Label: g.labels[match]})
	}

	return mentions, nil
}

// Chain concatenates the mentions of several recognizers in order.
type Chain []Recognizer

func (c Chain) Recognize(text string) ([]Mention, error) {
	var mentions []Mention
	for _, recognizer := range c {
		found, err := recognizer.Recognize(text)
		if err != nil {
			return nil, err
		}
		mentions = append(mentions, found...)
	}
	return mentions, nil
}
