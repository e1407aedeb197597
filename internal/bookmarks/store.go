// Package bookmarks owns the bookmark collection of one profile: queries,
// mutations, observer notification and JSON export/import, persisted to a
// kv.Backend after every change.
//
// The in-memory collection is authoritative. Persistence is best effort: a
// failed write is logged and returned (wrapping ErrPersistence) but never
// rolls back the change.
package bookmarks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/MrSnakeDoc/hubmarks/internal/domain"
	"github.com/MrSnakeDoc/hubmarks/internal/kv"
	"github.com/MrSnakeDoc/hubmarks/internal/logger"
)

const (
	// DefaultKey is the storage key holding the JSON array of bookmarks.
	DefaultKey = "hubmarks-bookmarks"
	// DefaultSource labels bookmarks whose candidate has no source.
	DefaultSource = "Learning Hub"
)

// Options tunes a Store. Zero values pick the defaults.
type Options struct {
	Key           string           // storage key (default: DefaultKey)
	DefaultURL    string           // url for candidates without one
	DefaultSource string           // source for candidates without one (default: DefaultSource)
	Now           func() time.Time // clock, for tests (default: time.Now)
}

// Candidate is a partial bookmark handed to Add.
// Type is free text; anything unknown becomes "lesson".
type Candidate struct {
	ID          string         `json:"id,omitempty"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	URL         string         `json:"url,omitempty"`
	Type        string         `json:"type,omitempty"`
	Category    string         `json:"category,omitempty"`
	Source      string         `json:"source,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// Store is the bookmark collection. Newest additions come first.
type Store struct {
	mu           sync.RWMutex
	items        []domain.Bookmark
	observers    []registration
	nextObserver ObserverID

	backend kv.Backend
	key     string
	opts    Options
	now     func() time.Time
	logger  logger.Logger
}

// New builds a store and loads the collection from backend.
// A missing, unreadable or corrupt stored value starts an empty collection.
func New(ctx context.Context, backend kv.Backend, opts Options, log logger.Logger) *Store {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if opts.DefaultSource == "" {
		opts.DefaultSource = DefaultSource
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Store{
		backend: backend,
		key:     opts.Key,
		opts:    opts,
		now:     opts.Now,
		logger:  log,
	}
	s.items = s.load(ctx)

	s.logger.Info("bookmarks loaded",
		logger.String("key", s.key),
		logger.Int("count", len(s.items)))

	return s
}

func (s *Store) load(ctx context.Context) []domain.Bookmark {
	raw, ok, err := s.backend.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn("failed to read bookmarks, starting empty",
			logger.String("key", s.key),
			logger.Error(err))
		return []domain.Bookmark{}
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return []domain.Bookmark{}
	}

	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		s.logger.Warn("stored bookmarks are corrupt, starting empty",
			logger.String("key", s.key),
			logger.Error(err))
		return []domain.Bookmark{}
	}

	items := domain.DecodeEntries(entries, func(i int, err error) {
		s.logger.Warn("skipping unreadable stored bookmark",
			logger.String("key", s.key),
			logger.Int("index", i),
			logger.Error(err))
	})
	return slices.DeleteFunc(items, func(b domain.Bookmark) bool { return b.ID == "" })
}

// persistLocked writes the whole collection. Callers hold s.mu.
func (s *Store) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(s.items)
	if err != nil {
		return fmt.Errorf("%w: marshal: %w", ErrPersistence, err)
	}

	if err := s.backend.Set(ctx, s.key, string(data)); err != nil {
		s.logger.Warn("failed to persist bookmarks, keeping in-memory state",
			logger.String("key", s.key),
			logger.Int("count", len(s.items)),
			logger.Error(err))
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}

// build fills the defaults of a candidate.
func (s *Store) build(c Candidate, now time.Time) domain.Bookmark {
	b := domain.Bookmark{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		URL:         c.URL,
		Type:        domain.ParseContentType(c.Type),
		Category:    c.Category,
		DateAdded:   now,
		Source:      c.Source,
		Tags:        slices.Clone(c.Tags),
		Metadata:    domain.CloneMetadata(c.Metadata),
	}

	if b.ID == "" {
		b.ID = domain.GenerateID(c.Title, now)
	}
	if b.URL == "" {
		b.URL = s.opts.DefaultURL
	}
	if b.Category == "" {
		b.Category = domain.DefaultCategory
	}
	if b.Source == "" {
		b.Source = s.opts.DefaultSource
	}
	if b.Tags == nil {
		b.Tags = []string{}
	}
	if b.Metadata == nil {
		b.Metadata = map[string]any{}
	}

	return b
}

// Add inserts a new bookmark at the head of the collection.
//
// It fails with ErrDuplicateID (nothing changed) when the id is taken.
// On a backend failure the bookmark is kept and the error wraps ErrPersistence.
func (s *Store) Add(ctx context.Context, c Candidate) (domain.Bookmark, error) {
	if strings.TrimSpace(c.Title) == "" {
		return domain.Bookmark{}, ErrMissingTitle
	}

	b := s.build(c, s.now().UTC())

	s.mu.Lock()
	if s.indexLocked(b.ID) >= 0 {
		s.mu.Unlock()
		s.logger.Debug("bookmark already exists", logger.String("id", b.ID))
		return domain.Bookmark{}, fmt.Errorf("%w: %s", ErrDuplicateID, b.ID)
	}

	s.items = slices.Insert(s.items, 0, b)
	persistErr := s.persistLocked(ctx)
	total := len(s.items)
	regs := s.observersLocked()
	s.mu.Unlock()

	s.logger.Info("bookmark added",
		logger.String("id", b.ID),
		logger.String("title", b.Title),
		logger.Int("total", total))
	s.notify(regs, ActionAdded, &b, total)

	return b.Clone(), persistErr
}

// AddAll adds candidates one by one so that they end up at the head of the
// collection in the given order. Duplicate ids and untitled candidates are
// skipped. A persistence failure does not stop the batch; the last one is
// returned and the added bookmarks stay in memory.
func (s *Store) AddAll(ctx context.Context, candidates []Candidate) (added, skipped int, err error) {
	for i := len(candidates) - 1; i >= 0; i-- {
		_, addErr := s.Add(ctx, candidates[i])
		switch {
		case addErr == nil:
			added++
		case errors.Is(addErr, ErrDuplicateID), errors.Is(addErr, ErrMissingTitle):
			skipped++
		case errors.Is(addErr, ErrPersistence):
			added++
			err = addErr
		default:
			return added, skipped, addErr
		}
	}
	return added, skipped, err
}

// Remove deletes the bookmark with id and returns it.
// It fails with ErrNotFound when no bookmark matches.
func (s *Store) Remove(ctx context.Context, id string) (domain.Bookmark, error) {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return domain.Bookmark{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	removed := s.items[idx]
	s.items = slices.Delete(s.items, idx, idx+1)
	persistErr := s.persistLocked(ctx)
	total := len(s.items)
	regs := s.observersLocked()
	s.mu.Unlock()

	s.logger.Info("bookmark removed",
		logger.String("id", removed.ID),
		logger.String("title", removed.Title),
		logger.Int("total", total))
	s.notify(regs, ActionRemoved, &removed, total)

	return removed.Clone(), persistErr
}

// Clear empties the collection.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.items = []domain.Bookmark{}
	persistErr := s.persistLocked(ctx)
	regs := s.observersLocked()
	s.mu.Unlock()

	s.logger.Info("bookmarks cleared")
	s.notify(regs, ActionCleared, nil, 0)

	return persistErr
}

// IsBookmarked reports whether id is in the collection.
func (s *Store) IsBookmarked(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.indexLocked(id) >= 0
}

// Get returns a copy of the bookmark with id.
func (s *Store) Get(id string) (domain.Bookmark, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return domain.Bookmark{}, false
	}
	return s.items[idx].Clone(), true
}

// Len returns the collection size.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.items)
}

// Query returns copies of the bookmarks matching f, in collection order.
// The result never aliases the collection.
func (s *Store) Query(f domain.Filter) []domain.Bookmark {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Bookmark, 0, len(s.items))
	for i := range s.items {
		if f.Match(&s.items[i]) {
			out = append(out, s.items[i].Clone())
		}
	}
	return out
}

// Search is Query with only a search term.
func (s *Store) Search(term string) []domain.Bookmark {
	return s.Query(domain.Filter{Search: term})
}

// ByType is Query with only a type.
func (s *Store) ByType(t domain.ContentType) []domain.Bookmark {
	return s.Query(domain.Filter{Type: t})
}

// ByCategory is Query with only a category.
func (s *Store) ByCategory(category string) []domain.Bookmark {
	return s.Query(domain.Filter{Category: category})
}

// Stats summarises the collection. Recomputed on every call.
func (s *Store) Stats() domain.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return domain.ComputeStats(s.items, s.now())
}

// Export returns the whole collection as a snapshot document.
func (s *Store) Export() domain.Snapshot {
	return domain.Snapshot{
		Bookmarks:  s.Query(domain.Filter{}),
		ExportDate: s.now().UTC(),
		Version:    domain.SnapshotVersion,
	}
}

// Import appends, in document order, every bookmark of a snapshot whose id
// is not already present, and returns how many were added.
//
// Entries are taken as-is; entries without an id, and entries whose fields
// cannot be read, are skipped. A document that is not valid JSON fails with
// ErrParse and changes nothing. The collection is persisted once, only if
// something was added.
func (s *Store) Import(ctx context.Context, raw []byte) (int, error) {
	var doc struct {
		Bookmarks []json.RawMessage `json:"bookmarks"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		s.logger.Warn("failed to parse bookmarks import", logger.Error(err))
		return 0, fmt.Errorf("%w: %w", ErrParse, err)
	}

	offered := domain.DecodeEntries(doc.Bookmarks, func(i int, err error) {
		s.logger.Warn("skipping unreadable imported bookmark",
			logger.Int("index", i),
			logger.Error(err))
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(s.items)+len(offered))
	for i := range s.items {
		seen[s.items[i].ID] = struct{}{}
	}

	added := 0
	for _, b := range offered {
		if b.ID == "" {
			continue
		}
		if _, dup := seen[b.ID]; dup {
			continue
		}
		seen[b.ID] = struct{}{}
		s.items = append(s.items, b)
		added++
	}

	s.logger.Info("bookmarks imported",
		logger.Int("offered", len(doc.Bookmarks)),
		logger.Int("added", added),
		logger.Int("total", len(s.items)))

	if added == 0 {
		return 0, nil
	}
	return added, s.persistLocked(ctx)
}

func (s *Store) indexLocked(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}
