package api

import (
	"sync"

	"github.com/forbiddennorth/hexcrawl/internal/storage/postgres"
)

// Snapshot is one undo point: the campaign state before a mutating
// action and the log watermark at that moment. Undoing restores the
// state and deletes log entries written after the watermark.
type Snapshot struct {
	State        postgres.State
	LogWatermark int64
}

// History is a bounded stack of undo snapshots. When the stack is full,
// pushing discards the oldest snapshot. It is safe for concurrent use.
type History struct {
	mu    sync.Mutex
	depth int
	snaps []Snapshot
}

// NewHistory creates a History holding at most depth snapshots.
//
// Precondition: depth must be > 0.
func NewHistory(depth int) *History {
	return &History{depth: depth}
}

// Push records a snapshot, evicting the oldest when at capacity.
func (h *History) Push(s Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.snaps) == h.depth {
		copy(h.snaps, h.snaps[1:])
		h.snaps = h.snaps[:len(h.snaps)-1]
	}
	h.snaps = append(h.snaps, s)
}

// Pop removes and returns the most recent snapshot.
//
// Postcondition: ok is false when the history is empty.
func (h *History) Pop() (Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.snaps) == 0 {
		return Snapshot{}, false
	}
	s := h.snaps[len(h.snaps)-1]
	h.snaps = h.snaps[:len(h.snaps)-1]
	return s, true
}

// Len returns the number of stored snapshots.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.snaps)
}
