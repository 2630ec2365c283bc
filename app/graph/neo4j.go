package graph

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v4/neo4j"
)

// StatementSink applies graph statements to a store.
type StatementSink interface {
	Export(ctx context.Context, statements []string) error
	Close() error
}

var _ StatementSink = (*Neo4jSink)(nil)

// Neo4jSink replays MERGE statements against a Neo4j server in a single write
// transaction.
type Neo4jSink struct {
	driver neo4j.Driver
	uri    string
}

func NewNeo4jSink(uri, username, password string) (*Neo4jSink, error) {
	driver, err := neo4j.NewDriver(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create Neo4j driver: %w", err)
	}

	return &Neo4jSink{driver: driver, uri: uri}, nil
}

func (s *Neo4jSink) Export(ctx context.Context, statements []string) error {
	if len(statements) == 0 {
		return nil
	}

	session := s.driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		for _, statement := range statements {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			result, err := tx.Run(statement, nil)
			if err != nil {
				return nil, err
			}
			if _, err := result.Consume(); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("failed to export graph to %s: %w", s.uri, err)
	}

	slog.Info("Graph exported", "uri", s.uri, "statements", len(statements))
	return nil
}

func (s *Neo4jSink) Close() error {
	return s.driver.Close()
}
