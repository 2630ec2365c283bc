package graph

import (
	"fmt"
	"regexp"
	"strings"
)

type VisualNode struct {
	ID string `json:"id"`
}

type VisualLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label"`
}

// VisualView is the node-link document consumed by the graph frontend.
type VisualView struct {
	Nodes []VisualNode `json:"nodes"`
	Links []VisualLink `json:"links"`
}

func ToVisualView(g *Graph) VisualView {
	view := VisualView{
		Nodes: make([]VisualNode, 0, g.NodeCount()),
		Links: make([]VisualLink, 0, g.EdgeCount()),
	}

	for _, name := range g.Nodes() {
		view.Nodes = append(view.Nodes, VisualNode{ID: name})
	}
	for _, edge := range g.Edges() {
		view.Links = append(view.Links, VisualLink{
			Source: edge.Source,
			Target: edge.Target,
			Label:  edge.Label,
		})
	}

	return view
}

var cypherEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

var statementPattern = regexp.MustCompile(
	`^MERGE \(a:Entity \{name: '((?:[^'\\]|\\.)*)'\}\) ` +
		`MERGE \(b:Entity \{name: '((?:[^'\\]|\\.)*)'\}\) ` +
		`MERGE \(a\)-\[:([A-Z0-9_]+)\]->\(b\)$`,
)

var cypherUnescaper = regexp.MustCompile(`\\(.)`)

// ToGraphStatements renders one idempotent MERGE statement per triple.
func ToGraphStatements(triples []Triple) []string {
	statements := make([]string, 0, len(triples))
	for _, t := range triples {
		statements = append(statements, fmt.Sprintf(
			"MERGE (a:Entity {name: '%s'}) MERGE (b:Entity {name: '%s'}) MERGE (a)-[:%s]->(b)",
			cypherEscaper.Replace(t.A),
			cypherEscaper.Replace(t.B),
			relationshipType(t.Relation),
		))
	}
	return statements
}

// ParseStatement reads back a statement produced by ToGraphStatements.
func ParseStatement(statement string) (Triple, error) {
	match := statementPattern.FindStringSubmatch(strings.TrimSpace(statement))
	if match == nil {
		return Triple{}, fmt.Errorf("%w: not a co-occurrence statement", ErrInvalidArgument)
	}

	return Triple{
		A:        cypherUnescaper.ReplaceAllString(match[1], "$1"),
		Relation: strings.ToLower(match[3]),
		B:        cypherUnescaper.ReplaceAllString(match[2], "$1"),
	}, nil
}

func relationshipType(relation string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(relation) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "RELATED_TO"
	}
	return b.String()
}
