package graph

import (
	"fmt"
	"regexp"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/lysyi3m/rss-digest/app/metrics"
	"github.com/lysyi3m/rss-digest/app/nlp"
)

var paragraphBreak = regexp.MustCompile(`\n[ \t\r]*\n`)

type Extractor struct {
	recognizer Recognizer
	segmenter  nlp.Segmenter
}

func NewExtractor(recognizer Recognizer, segmenter nlp.Segmenter) *Extractor {
	return &Extractor{
		recognizer: recognizer,
		segmenter:  segmenter,
	}
}

// ExtractEntities groups the person, organization and location mentions of
// text, dropping duplicates.
func (e *Extractor) ExtractEntities(text string) (Entities, error) {
	entities := Entities{
		Person:       []string{},
		Organization: []string{},
		Location:     []string{},
	}

	mentions, err := e.recognizer.Recognize(text)
	if err != nil {
		return entities, fmt.Errorf("failed to recognize entities: %w", err)
	}

	seen := map[Category]mapset.Set[string]{
		CategoryPerson:       mapset.NewThreadUnsafeSet[string](),
		CategoryOrganization: mapset.NewThreadUnsafeSet[string](),
		CategoryLocation:     mapset.NewThreadUnsafeSet[string](),
	}

	for _, mention := range mentions {
		category, ok := CategoryFor(mention.Label)
		if !ok || mention.Text == "" {
			continue
		}
		if !seen[category].Add(mention.Text) {
			continue
		}
		switch category {
		case CategoryPerson:
			entities.Person = append(entities.Person, mention.Text)
		case CategoryOrganization:
			entities.Organization = append(entities.Organization, mention.Text)
		case CategoryLocation:
			entities.Location = append(entities.Location, mention.Text)
		}
	}

	return entities, nil
}

// ExtractRelationships links every pair of distinct entities that appear in
// the same segment. Triples come back in first-seen order without repeats.
func (e *Extractor) ExtractRelationships(text string, scope Scope) ([]Triple, error) {
	segments, err := e.segments(text, scope)
	if err != nil {
		return nil, err
	}

	triples := newTripleSet()
	for _, segment := range segments {
		names, err := e.segmentEntities(segment)
		if err != nil {
			return nil, err
		}
		for i := 0; i < len(names); i++ {
			for j := i + 1; j < len(names); j++ {
				triples.Add(NewTriple(names[i], names[j]))
			}
		}
	}

	metrics.TriplesExtracted.WithLabelValues(string(scope)).Add(float64(triples.Len()))

	return triples.Slice(), nil
}

func (e *Extractor) segments(text string, scope Scope) ([]string, error) {
	switch scope {
	case ScopeSentence:
		sentences, err := e.segmenter.Sentences(text)
		if err != nil {
			return nil, fmt.Errorf("failed to split sentences: %w", err)
		}
		return sentences, nil
	case ScopeParagraph:
		var paragraphs []string
		for _, p := range paragraphBreak.Split(text, -1) {
			if strings.TrimSpace(p) != "" {
				paragraphs = append(paragraphs, p)
			}
		}
		return paragraphs, nil
	default:
		return nil, fmt.Errorf("%w: unsupported scope %q, use 'sentence' or 'paragraph'", ErrInvalidArgument, scope)
	}
}

// segmentEntities returns the distinct in-category entity names of one segment.
func (e *Extractor) segmentEntities(segment string) ([]string, error) {
	mentions, err := e.recognizer.Recognize(segment)
	if err != nil {
		return nil, fmt.Errorf("failed to recognize entities: %w", err)
	}

	seen := mapset.NewThreadUnsafeSet[string]()
	names := make([]string, 0, len(mentions))
	for _, mention := range mentions {
		if _, ok := CategoryFor(mention.Label); !ok || mention.Text == "" {
			continue
		}
		if seen.Add(mention.Text) {
			names = append(names, mention.Text)
		}
	}

	return names, nil
}

// tripleSet keeps insertion order on top of a set.
type tripleSet struct {
	seen  mapset.Set[Triple]
	order []Triple
}

func newTripleSet() *tripleSet {
	return &tripleSet{seen: mapset.NewThreadUnsafeSet[Triple]()}
}

func (s *tripleSet) Add(t Triple) {
	if t.A == t.B {
		return
	}
	if s.seen.Add(t) {
		s.order = append(s.order, t)
	}
}

func (s *tripleSet) Len() int {
	return len(s.order)
}

func (s *tripleSet) Slice() []Triple {
	out := make([]Triple, len(s.order))
	copy(out, s.order)
	return out
}
