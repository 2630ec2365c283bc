package digest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/lysyi3m/rss-digest/app/metrics"
)

// Writer persists a day's entries: first the artifact, then the durable
// summary table.
type Writer struct {
	artifacts ArtifactStore
	summaries SummaryStore
	mu        sync.Mutex
}

func NewWriter(artifacts ArtifactStore, summaries SummaryStore) *Writer {
	return &Writer{
		artifacts: artifacts,
		summaries: summaries,
	}
}

// Write replaces the artifact for date and then syncs new summaries into
// storage. Only an artifact failure is returned as an error; a storage
// failure is logged and carried in the report.
func (w *Writer) Write(ctx context.Context, date time.Time, entries []Entry) (SyncReport, error) {
	if err := w.artifacts.Write(date, entries); err != nil {
		return SyncReport{}, &PersistenceError{Op: "write artifact", Err: err}
	}

	slog.Info("Digest artifact written", "date", date.Format(DateLayout), "entries", len(entries))

	report := w.sync(ctx, entries)
	if report.Err != nil {
		slog.Error("Summary storage sync failed, artifact kept",
			"date", date.Format(DateLayout),
			"inserted", report.Inserted,
			"error", report.Err)
	} else {
		slog.Info("Summary storage synced", "inserted", report.Inserted, "skipped", report.Skipped)
	}

	return report, nil
}

func (w *Writer) sync(ctx context.Context, entries []Entry) SyncReport {
	w.mu.Lock()
	defer w.mu.Unlock()

	var report SyncReport

	if w.summaries == nil {
		report.Skipped = len(entries)
		return report
	}

	for _, entry := range entries {
		if strings.TrimSpace(entry.Summary) == "" {
			report.Skipped++
			continue
		}

		exists, err := w.summaries.FindByText(ctx, entry.Summary)
		if err != nil {
			report.Err = &PersistenceError{Op: "find summary", Err: err}
			return report
		}
		if exists {
			report.Skipped++
			continue
		}

		if err := w.summaries.Insert(ctx, entry.Summary); err != nil {
			report.Err = &PersistenceError{Op: "insert summary", Err: fmt.Errorf("%q: %w", truncate(entry.Summary, 40), err)}
			return report
		}

		report.Inserted++
		metrics.SummariesInserted.Inc()
	}

	return report
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
