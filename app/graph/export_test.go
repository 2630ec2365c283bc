package graph

import (
	"context"
	"errors"
	"testing"
)

func TestToGraphStatements(t *testing.T) {
	statements := ToGraphStatements([]Triple{NewTriple("Alice", "Bob")})

	expected := "MERGE (a:Entity {name: 'Alice'}) MERGE (b:Entity {name: 'Bob'}) MERGE (a)-[:CO_OCCURS_WITH]->(b)"
	if len(statements) != 1 || statements[0] != expected {
		t.Errorf("Expected [%s], got %v", expected, statements)
	}
}

func TestToGraphStatementsEscapesQuotes(t *testing.T) {
	statements := ToGraphStatements([]Triple{NewTriple("O'Brien", "Zed")})

	expected := `MERGE (a:Entity {name: 'O\'Brien'}) MERGE (b:Entity {name: 'Zed'}) MERGE (a)-[:CO_OCCURS_WITH]->(b)`
	if statements[0] != expected {
		t.Errorf("Expected %s, got %s", expected, statements[0])
	}
}

func TestParseStatementRoundTrip(t *testing.T) {
	triples := []Triple{
		NewTriple("Alice", "Bob"),
		NewTriple("O'Brien", "Côte d'Ivoire"),
		NewTriple(`Back\slash`, "Plain"),
	}

	for i, statement := range ToGraphStatements(triples) {
		parsed, err := ParseStatement(statement)
		if err != nil {
			t.Fatalf("Expected %q to parse, got: %v", statement, err)
		}
		if parsed != triples[i] {
			t.Errorf("Expected %v, got %v", triples[i], parsed)
		}
	}
}

func TestParseStatementRejectsOtherCypher(t *testing.T) {
	_, err := ParseStatement("MATCH (n) DETACH DELETE n")
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument, got: %v", err)
	}
}

func TestToGraphStatementsEmpty(t *testing.T) {
	if statements := ToGraphStatements(nil); len(statements) != 0 {
		t.Errorf("Expected no statements, got %v", statements)
	}
}

func TestNewNeo4jSinkRejectsBadURI(t *testing.T) {
	if _, err := NewNeo4jSink("ftp://localhost", "neo4j", "secret"); err == nil {
		t.Error("Expected unsupported scheme to fail")
	}
}

func TestNeo4jSinkSkipsEmptyExport(t *testing.T) {
	sink, err := NewNeo4jSink("bolt://127.0.0.1:1", "neo4j", "secret")
	if err != nil {
		t.Fatalf("Expected driver creation to succeed, got: %v", err)
	}
	defer sink.Close()

	if err := sink.Export(context.Background(), nil); err != nil {
		t.Errorf("Expected empty export to be a no-op, got: %v", err)
	}
}
