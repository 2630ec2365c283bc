package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/rss-digest/app/digest"
	"github.com/lysyi3m/rss-digest/app/graph"
)

// GraphExport holds what an ExportGraphTask needs to push a digest into the
// graph store.
type GraphExport struct {
	Artifacts digest.ArtifactStore
	Extractor RelationshipExtractor
	Sink      graph.StatementSink
	Scope     graph.Scope
}

type ExportGraphTask struct {
	Task
	Date   time.Time
	export GraphExport
}

func NewExportGraphTask(date time.Time, export GraphExport) *ExportGraphTask {
	if export.Scope == "" {
		export.Scope = graph.ScopeSentence
	}

	return &ExportGraphTask{
		Task:   NewTask(TaskTypeExportGraph),
		Date:   date,
		export: export,
	}
}

func (t *ExportGraphTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	date := t.Date.Format(digest.DateLayout)

	entries, err := t.export.Artifacts.Read(t.Date)
	if errors.Is(err, digest.ErrDigestNotFound) {
		slog.Warn("No digest to export", "date", date)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read digest: %w", err)
	}

	triples, err := t.export.Extractor.ExtractRelationships(digest.JoinSummaries(entries), t.export.Scope)
	if err != nil {
		return fmt.Errorf("failed to extract relationships: %w", err)
	}

	statements := graph.ToGraphStatements(triples)
	if err := t.export.Sink.Export(ctx, statements); err != nil {
		return fmt.Errorf("failed to export graph: %w", err)
	}

	slog.Info("Task completed",
		"type", string(t.Type),
		"date", date,
		"triples", len(triples),
		"duration", t.GetDuration())

	return nil
}
