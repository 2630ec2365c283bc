package digest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

var ErrDigestNotFound = errors.New("digest not found")

// Entry is one summarized article in a daily digest.
type Entry struct {
	Title     string `json:"title"`
	Source    string `json:"source"`
	Summary   string `json:"summary"`
	URL       string `json:"url"`
	Published string `json:"published"`
}

// PersistenceError reports a failed write to the artifact or to durable storage.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// ArtifactStore keeps one digest document per calendar date.
type ArtifactStore interface {
	Write(date time.Time, entries []Entry) error
	Read(date time.Time) ([]Entry, error)
	Latest() (time.Time, error)
}

// SummaryStore is the durable summary table as seen by the Writer.
type SummaryStore interface {
	FindByText(ctx context.Context, summary string) (bool, error)
	Insert(ctx context.Context, summary string) error
}

// SyncReport summarizes one storage sync.
type SyncReport struct {
	Inserted int
	Skipped  int
	// Err is the storage failure, if any. The artifact is still valid when set.
	Err error
}

// JoinSummaries concatenates the non-blank summaries of entries, one paragraph
// per entry.
func JoinSummaries(entries []Entry) string {
	parts := make([]string, 0, len(entries))
	for _, entry := range entries {
		if s := strings.TrimSpace(entry.Summary); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}
