package bookmarks

import (
	"fmt"

	"github.com/MrSnakeDoc/hubmarks/internal/domain"
	"github.com/MrSnakeDoc/hubmarks/internal/logger"
)

// Action names a collection mutation.
type Action string

const (
	ActionAdded   Action = "added"
	ActionRemoved Action = "removed"
	ActionCleared Action = "cleared"
)

// Observer is called after every mutation with the affected bookmark
// (nil for cleared) and the collection size after the change.
type Observer func(action Action, bookmark *domain.Bookmark, total int)

// ObserverID identifies a registration for Unobserve.
type ObserverID uint64

type registration struct {
	id ObserverID
	fn Observer
}

// Observe registers fn and returns its handle.
func (s *Store) Observe(fn Observer) ObserverID {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextObserver++
	id := s.nextObserver
	s.observers = append(s.observers, registration{id: id, fn: fn})
	return id
}

// Unobserve removes a registration. It reports whether id was registered.
func (s *Store) Unobserve(id ObserverID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range s.observers {
		if r.id == id {
			s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
			return true
		}
	}
	return false
}

// observersLocked copies the registrations so they can run without the lock.
func (s *Store) observersLocked() []registration {
	out := make([]registration, len(s.observers))
	copy(out, s.observers)
	return out
}

// notify runs every observer in registration order.
// A panicking observer is logged and does not stop the others.
func (s *Store) notify(regs []registration, action Action, bookmark *domain.Bookmark, total int) {
	for _, r := range regs {
		s.call(r, action, bookmark, total)
	}
}

func (s *Store) call(r registration, action Action, bookmark *domain.Bookmark, total int) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("bookmark observer panicked",
				logger.Int("observer_id", int(r.id)),
				logger.String("action", string(action)),
				logger.String("panic", fmt.Sprint(rec)))
		}
	}()

	var arg *domain.Bookmark
	if bookmark != nil {
		c := bookmark.Clone()
		arg = &c
	}
	r.fn(action, arg, total)
}
