package graph

import (
	"errors"
	"fmt"
)

var ErrInvalidArgument = errors.New("invalid argument")

type Category string

const (
	CategoryPerson       Category = "person"
	CategoryOrganization Category = "organization"
	CategoryLocation     Category = "location"
)

// categoryByLabel maps recognizer labels to the categories kept in the graph.
// Any other label is ignored.
var categoryByLabel = map[string]Category{
	"PERSON": CategoryPerson,
	"ORG":    CategoryOrganization,
	"GPE":    CategoryLocation,
	"LOC":    CategoryLocation,
}

// CategoryFor returns the category for a recognizer label.
func CategoryFor(label string) (Category, bool) {
	category, ok := categoryByLabel[label]
	return category, ok
}

// Mention is one recognized span of text with its recognizer label.
type Mention struct {
	Text  string
	Label string
}

// Entities groups the distinct entity names found in a text, each list in
// first-seen order.
type Entities struct {
	Person       []string `json:"person"`
	Organization []string `json:"organization"`
	Location     []string `json:"location"`
}

const RelationCoOccurs = "co_occurs_with"

// Triple is an unordered co-occurrence between A and B, stored with A < B.
type Triple struct {
	A        string
	Relation string
	B        string
}

func NewTriple(x, y string) Triple {
	if y < x {
		x, y = y, x
	}
	return Triple{A: x, Relation: RelationCoOccurs, B: y}
}

type Scope string

const (
	ScopeSentence  Scope = "sentence"
	ScopeParagraph Scope = "paragraph"
)

// ParseScope accepts "sentence" or "paragraph"; an empty string means sentence.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case "", ScopeSentence:
		return ScopeSentence, nil
	case ScopeParagraph:
		return ScopeParagraph, nil
	default:
		return "", fmt.Errorf("%w: unsupported scope %q, use 'sentence' or 'paragraph'", ErrInvalidArgument, s)
	}
}
