package logbuf

import (
	"sync"
	"time"
)

const DefaultCapacity = 1000

type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
}

// Ring is a bounded FIFO of log entries. When full, the oldest entry is
// evicted to make room.
type Ring struct {
	mu      sync.Mutex
	entries []Entry
	head    int
	size    int
}

func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ring{entries: make([]Entry, capacity)}
}

func (r *Ring) Push(entry Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tail := (r.head + r.size) % len(r.entries)
	r.entries[tail] = entry
	if r.size < len(r.entries) {
		r.size++
		return
	}
	r.head = (r.head + 1) % len(r.entries)
}

// Snapshot returns up to limit of the oldest entries without removing them.
// hasMore reports whether entries beyond limit remain.
func (r *Ring) Snapshot(limit int) ([]Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := r.peekLocked(limit)
	return out, r.size > len(out)
}

// Drain removes and returns up to limit of the oldest entries.
func (r *Ring) Drain(limit int) ([]Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := r.peekLocked(limit)
	for i := range out {
		r.entries[(r.head+i)%len(r.entries)] = Entry{}
	}
	r.head = (r.head + len(out)) % len(r.entries)
	r.size -= len(out)

	return out, r.size > 0
}

func (r *Ring) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.entries)
	r.head = 0
	r.size = 0
}

func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}

func (r *Ring) Cap() int {
	return len(r.entries)
}

func (r *Ring) peekLocked(limit int) []Entry {
	n := r.size
	if limit >= 0 && limit < n {
		n = limit
	}

	out := make([]Entry, n)
	for i := 0; i < n; i++ {
		out[i] = r.entries[(r.head+i)%len(r.entries)]
	}
	return out
}
