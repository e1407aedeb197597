// Package activity keeps a short in-memory feed of bookmark mutations.
package activity

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/hubmarks/internal/bookmarks"
	"github.com/MrSnakeDoc/hubmarks/internal/domain"
)

// DefaultCapacity is the number of events kept when none is configured.
const DefaultCapacity = 50

// Event is one recorded mutation.
type Event struct {
	ID         string             `json:"id"`
	Action     bookmarks.Action   `json:"action"`
	BookmarkID string             `json:"bookmarkId,omitempty"`
	Title      string             `json:"title,omitempty"`
	Type       domain.ContentType `json:"type,omitempty"`
	Total      int                `json:"total"`
	At         time.Time          `json:"at"`
}

// Recorder is a bookmarks.Observer backed by a fixed-size ring.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	next   int
	full   bool
	now    func() time.Time
}

// NewRecorder keeps the last capacity events.
func NewRecorder(capacity int) *Recorder {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Recorder{
		events: make([]Event, capacity),
		now:    time.Now,
	}
}

// Attach registers the recorder on store.
func (r *Recorder) Attach(store *bookmarks.Store) bookmarks.ObserverID {
	return store.Observe(r.Record)
}

// Record stores one event. Its signature matches bookmarks.Observer.
func (r *Recorder) Record(action bookmarks.Action, b *domain.Bookmark, total int) {
	ev := Event{
		ID:     uuid.NewString(),
		Action: action,
		Total:  total,
		At:     r.now().UTC(),
	}
	if b != nil {
		ev.BookmarkID = b.ID
		ev.Title = b.Title
		ev.Type = b.Type
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.events[r.next] = ev
	r.next = (r.next + 1) % len(r.events)
	if r.next == 0 {
		r.full = true
	}
}

// Recent returns up to limit events, newest first. limit <= 0 returns all.
func (r *Recorder) Recent(limit int) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.next
	if r.full {
		n = len(r.events)
	}
	if limit <= 0 || limit > n {
		limit = n
	}

	out := make([]Event, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (r.next - i + len(r.events)) % len(r.events)
		out = append(out, r.events[idx])
	}
	return out
}
