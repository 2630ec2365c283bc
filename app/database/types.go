package database

import (
	"time"
)

// SummaryRecord is one persisted summary text.
type SummaryRecord struct {
	ID        int64
	Summary   string
	CreatedAt time.Time
}
