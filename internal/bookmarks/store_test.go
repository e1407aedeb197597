package bookmarks

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/MrSnakeDoc/hubmarks/internal/domain"
	"github.com/MrSnakeDoc/hubmarks/internal/kv"
	"github.com/MrSnakeDoc/hubmarks/internal/logger"
)

// failingBackend serves reads from a map and fails every write.
type failingBackend struct {
	data   map[string]string
	getErr error
	setErr error
	writes int
}

func (f *failingBackend) Get(_ context.Context, key string) (string, bool, error) {
	if f.getErr != nil {
		return "", false, f.getErr
	}
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *failingBackend) Set(_ context.Context, _, _ string) error {
	f.writes++
	return f.setErr
}

// fixedClock returns a clock that advances one millisecond per call.
func fixedClock(start time.Time) func() time.Time {
	t := start
	return func() time.Time {
		t = t.Add(time.Millisecond)
		return t
	}
}

var epoch = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T, backend kv.Backend) *Store {
	t.Helper()
	return New(context.Background(), backend, Options{
		DefaultURL: "https://hub.example.com/current",
		Now:        fixedClock(epoch),
	}, logger.NewNop())
}

func ids(bookmarks []domain.Bookmark) []string {
	out := make([]string, 0, len(bookmarks))
	for _, b := range bookmarks {
		out = append(out, b.ID)
	}
	return out
}

func TestAddAppliesDefaults(t *testing.T) {
	s := newTestStore(t, kv.NewMemory(0))

	b, err := s.Add(context.Background(), Candidate{Title: "Boolean String Quick Win", Type: "video"})
	require.NoError(t, err)

	assert.Equal(t, "boolean-string-quick-win-"+strconv.FormatInt(epoch.Add(time.Millisecond).UnixMilli(), 10), b.ID)
	assert.Equal(t, "", b.Description)
	assert.Equal(t, "https://hub.example.com/current", b.URL)
	assert.Equal(t, domain.TypeLesson, b.Type)
	assert.Equal(t, domain.DefaultCategory, b.Category)
	assert.Equal(t, DefaultSource, b.Source)
	assert.Equal(t, []string{}, b.Tags)
	assert.Equal(t, map[string]any{}, b.Metadata)
	assert.True(t, b.DateAdded.Equal(epoch.Add(time.Millisecond)))
}

func TestAddKeepsSuppliedFields(t *testing.T) {
	s := newTestStore(t, kv.NewMemory(0))

	b, err := s.Add(context.Background(), Candidate{
		ID:       "prompt-1",
		Title:    "Prompt: X-Ray",
		URL:      "https://hub.example.com/prompts#prompt-0",
		Type:     "prompt",
		Category: "Prompts",
		Source:   "Prompt Library",
		Tags:     []string{"linkedin"},
		Metadata: map[string]any{"difficulty": "easy"},
	})
	require.NoError(t, err)

	assert.Equal(t, "prompt-1", b.ID)
	assert.Equal(t, domain.TypePrompt, b.Type)
	assert.Equal(t, "Prompts", b.Category)
	assert.Equal(t, "Prompt Library", b.Source)
	assert.Equal(t, []string{"linkedin"}, b.Tags)
	assert.Equal(t, "easy", b.Metadata["difficulty"])
}

func TestAddRequiresTitle(t *testing.T) {
	s := newTestStore(t, kv.NewMemory(0))

	_, err := s.Add(context.Background(), Candidate{ID: "x", Title: "  "})
	assert.ErrorIs(t, err, ErrMissingTitle)
	assert.Equal(t, 0, s.Len())
}

func TestAddDuplicateIsNoop(t *testing.T) {
	backend := kv.NewMemory(0)
	s := newTestStore(t, backend)
	ctx := context.Background()

	_, err := s.Add(ctx, Candidate{ID: "a", Title: "First"})
	require.NoError(t, err)

	var events []Action
	s.Observe(func(action Action, _ *domain.Bookmark, _ int) { events = append(events, action) })

	_, err = s.Add(ctx, Candidate{ID: "a", Title: "Second"})
	assert.ErrorIs(t, err, ErrDuplicateID)
	assert.Equal(t, 1, s.Len())
	assert.Empty(t, events)

	got, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, "First", got.Title)
}

func TestUniquenessAcrossManyAdds(t *testing.T) {
	s := newTestStore(t, kv.NewMemory(0))
	ctx := context.Background()

	for _, id := range []string{"a", "b", "a", "c", "b", "a"} {
		_, _ = s.Add(ctx, Candidate{ID: id, Title: id})
	}

	all := s.Query(domain.Filter{})
	seen := map[string]bool{}
	for _, b := range all {
		assert.False(t, seen[b.ID], "duplicate id %s", b.ID)
		seen[b.ID] = true
	}
	assert.Equal(t, []string{"c", "b", "a"}, ids(all))
}

func TestNewestFirst(t *testing.T) {
	s := newTestStore(t, kv.NewMemory(0))
	ctx := context.Background()

	_, err := s.Add(ctx, Candidate{ID: "A", Title: "A"})
	require.NoError(t, err)
	_, err = s.Add(ctx, Candidate{ID: "B", Title: "B"})
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "A"}, ids(s.Query(domain.Filter{})))
}

func TestSameTitleSameMillisecondIsDuplicate(t *testing.T) {
	s := New(context.Background(), kv.NewMemory(0), Options{
		Now: func() time.Time { return epoch },
	}, logger.NewNop())
	ctx := context.Background()

	_, err := s.Add(ctx, Candidate{Title: "Same"})
	require.NoError(t, err)
	_, err = s.Add(ctx, Candidate{Title: "Same"})
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestRemove(t *testing.T) {
	s := newTestStore(t, kv.NewMemory(0))
	ctx := context.Background()

	_, _ = s.Add(ctx, Candidate{ID: "a", Title: "A"})
	_, _ = s.Add(ctx, Candidate{ID: "b", Title: "B"})

	removed, err := s.Remove(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "A", removed.Title)
	assert.False(t, s.IsBookmarked("a"))
	assert.True(t, s.IsBookmarked("b"))

	_, err = s.Remove(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, s.Len())
}

func TestQueryFilters(t *testing.T) {
	s := newTestStore(t, kv.NewMemory(0))
	ctx := context.Background()

	_, _ = s.Add(ctx, Candidate{ID: "l1", Title: "Session 1.1", Type: "lesson", Category: "Training"})
	_, _ = s.Add(ctx, Candidate{ID: "p1", Title: "Boolean String Quick Win", Type: "prompt", Category: "Prompts"})
	_, _ = s.Add(ctx, Candidate{ID: "l2", Title: "Session 1.2", Type: "lesson", Category: "Training", Tags: []string{"Boolean"}})
	_, _ = s.Add(ctx, Candidate{ID: "p2", Title: "Prompt: Outreach", Type: "prompt", Category: "Prompts", Description: "boolean follow-up"})

	assert.Equal(t, []string{"p2", "p1"}, ids(s.Query(domain.Filter{Type: domain.TypePrompt})))
	assert.Equal(t, []string{"l2", "l1"}, ids(s.ByCategory("Training")))
	assert.Equal(t, []string{"p2", "l2", "p1"}, ids(s.Search("boolean")))
	assert.Equal(t, []string{"p2", "l2", "p1"}, ids(s.Search("BOOLEAN")))
	assert.Equal(t, []string{"p2", "p1"}, ids(s.Query(domain.Filter{Type: domain.TypePrompt, Search: "Boolean"})))
	assert.Equal(t, []string{"l2", "l1"}, ids(s.ByType(domain.TypeLesson)))
	assert.Len(t, s.Query(domain.Filter{}), 4)
}

func TestQueryReturnsCopies(t *testing.T) {
	s := newTestStore(t, kv.NewMemory(0))
	ctx := context.Background()
	_, _ = s.Add(ctx, Candidate{ID: "a", Title: "A", Tags: []string{"t"}})

	got := s.Query(domain.Filter{})
	got[0].Title = "mutated"
	got[0].Tags[0] = "mutated"

	b, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, "A", b.Title)
	assert.Equal(t, []string{"t"}, b.Tags)
	assert.Equal(t, 1, s.Len())
}

func TestQueryCopiesNestedMetadata(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, kv.NewMemory(0))
	_, err := s.Import(ctx, []byte(`{"bookmarks":[{"id":"a","title":"A","metadata":{"nested":{"k":"v"},"list":["x"]}}]}`))
	require.NoError(t, err)

	got := s.Query(domain.Filter{})
	got[0].Metadata["nested"].(map[string]any)["k"] = "mutated"
	got[0].Metadata["list"].([]any)[0] = "mutated"

	b, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"k": "v"}, b.Metadata["nested"])
	assert.Equal(t, []any{"x"}, b.Metadata["list"])

	b.Metadata["nested"].(map[string]any)["k"] = "mutated"
	again, _ := s.Get("a")
	assert.Equal(t, "v", again.Metadata["nested"].(map[string]any)["k"])
}

func TestAddDoesNotKeepCallerMetadata(t *testing.T) {
	s := newTestStore(t, kv.NewMemory(0))
	nested := map[string]any{"k": "v"}
	list := []any{"x"}

	_, err := s.Add(context.Background(), Candidate{
		ID:       "a",
		Title:    "A",
		Metadata: map[string]any{"nested": nested, "list": list},
	})
	require.NoError(t, err)

	nested["k"] = "mutated"
	list[0] = "mutated"

	b, _ := s.Get("a")
	assert.Equal(t, map[string]any{"k": "v"}, b.Metadata["nested"])
	assert.Equal(t, []any{"x"}, b.Metadata["list"])
}

func TestClear(t *testing.T) {
	s := newTestStore(t, kv.NewMemory(0))
	ctx := context.Background()
	_, _ = s.Add(ctx, Candidate{ID: "a", Title: "A"})
	_, _ = s.Add(ctx, Candidate{ID: "b", Title: "B"})

	var cleared int
	s.Observe(func(action Action, b *domain.Bookmark, total int) {
		if action == ActionCleared {
			cleared++
			assert.Nil(t, b)
			assert.Equal(t, 0, total)
		}
	})

	require.NoError(t, s.Clear(ctx))
	assert.Empty(t, s.Query(domain.Filter{}))
	assert.Equal(t, 0, s.Stats().Total)
	assert.Equal(t, 1, cleared)
}

func TestPersistsAfterEveryMutation(t *testing.T) {
	backend := kv.NewMemory(0)
	ctx := context.Background()
	s := newTestStore(t, backend)

	_, _ = s.Add(ctx, Candidate{ID: "a", Title: "A"})
	_, _ = s.Add(ctx, Candidate{ID: "b", Title: "B"})
	_, _ = s.Remove(ctx, "a")

	reloaded := newTestStore(t, backend)
	assert.Equal(t, []string{"b"}, ids(reloaded.Query(domain.Filter{})))

	raw, ok, err := backend.Get(ctx, DefaultKey)
	require.NoError(t, err)
	require.True(t, ok)
	var stored []map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	require.Len(t, stored, 1)
	for _, field := range []string{"id", "title", "description", "url", "type", "category", "dateAdded", "source", "tags", "metadata"} {
		assert.Contains(t, stored[0], field)
	}

	require.NoError(t, s.Clear(ctx))
	raw, _, _ = backend.Get(ctx, DefaultKey)
	assert.Equal(t, "[]", raw)
}

func TestCustomKey(t *testing.T) {
	backend := kv.NewMemory(0)
	ctx := context.Background()
	s := New(ctx, backend, Options{Key: "savedTips"}, logger.NewNop())
	_, _ = s.Add(ctx, Candidate{ID: "a", Title: "A"})

	_, ok, _ := backend.Get(ctx, "savedTips")
	assert.True(t, ok)
	_, ok, _ = backend.Get(ctx, DefaultKey)
	assert.False(t, ok)
}

func TestPersistenceFailureKeepsMemoryState(t *testing.T) {
	backend := &failingBackend{setErr: kv.ErrQuotaExceeded}
	core, logs := observer.New(zapcore.WarnLevel)
	s := New(context.Background(), backend, Options{Now: fixedClock(epoch)}, logger.NewWithCore(core))
	ctx := context.Background()

	var notified []Action
	s.Observe(func(action Action, _ *domain.Bookmark, _ int) { notified = append(notified, action) })

	b, err := s.Add(ctx, Candidate{ID: "a", Title: "A"})
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, kv.ErrQuotaExceeded)
	assert.Equal(t, "a", b.ID)
	assert.True(t, s.IsBookmarked("a"))

	_, err = s.Remove(ctx, "a")
	assert.ErrorIs(t, err, ErrPersistence)
	assert.False(t, s.IsBookmarked("a"))

	assert.ErrorIs(t, s.Clear(ctx), ErrPersistence)

	assert.Equal(t, []Action{ActionAdded, ActionRemoved, ActionCleared}, notified)
	assert.Equal(t, 3, backend.writes)
	assert.Equal(t, 3, logs.FilterMessage("failed to persist bookmarks, keeping in-memory state").Len())
}

func TestCorruptStorageStartsEmpty(t *testing.T) {
	backend := kv.NewMemory(0)
	ctx := context.Background()
	require.NoError(t, backend.Set(ctx, DefaultKey, "{not json at all"))

	s := newTestStore(t, backend)
	assert.Equal(t, 0, s.Len())

	_, err := s.Add(ctx, Candidate{ID: "a", Title: "A"})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())
}

func TestBadStoredEntryKeepsTheRest(t *testing.T) {
	backend := kv.NewMemory(0)
	ctx := context.Background()
	require.NoError(t, backend.Set(ctx, DefaultKey, `[
		{"id":"a","title":"A","dateAdded":""},
		{"id":"b","title":"B","dateAdded":"2025-01-31T12:00:00.000Z"},
		{"id":"c","title":"C","tags":"not-a-list"},
		{"id":"d","title":"D","dateAdded":"2025-01-31"}
	]`))

	core, logs := observer.New(zapcore.WarnLevel)
	s := New(ctx, backend, Options{Now: fixedClock(epoch)}, logger.NewWithCore(core))

	assert.Equal(t, []string{"a", "b", "d"}, ids(s.Query(domain.Filter{})))
	assert.Equal(t, 1, logs.FilterMessage("skipping unreadable stored bookmark").Len())

	a, _ := s.Get("a")
	assert.True(t, a.DateAdded.IsZero())
	d, _ := s.Get("d")
	assert.True(t, d.DateAdded.Equal(time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)))

	_, err := s.Add(ctx, Candidate{ID: "e", Title: "E"})
	require.NoError(t, err)

	raw, _, err := backend.Get(ctx, DefaultKey)
	require.NoError(t, err)
	var stored []map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Len(t, stored, 4, "good records survive the next write")
}

func TestUnreadableStorageStartsEmpty(t *testing.T) {
	s := newTestStore(t, &failingBackend{getErr: errors.New("storage disabled")})
	assert.Equal(t, 0, s.Len())
}

func TestNullStorageStartsEmpty(t *testing.T) {
	backend := kv.NewMemory(0)
	require.NoError(t, backend.Set(context.Background(), DefaultKey, "null"))

	s := newTestStore(t, backend)
	assert.NotNil(t, s.Query(domain.Filter{}))
	assert.Equal(t, 0, s.Len())
}

func TestObserverReceivesEvents(t *testing.T) {
	s := newTestStore(t, kv.NewMemory(0))
	ctx := context.Background()

	type event struct {
		action Action
		id     string
		total  int
	}
	var events []event
	s.Observe(func(action Action, b *domain.Bookmark, total int) {
		e := event{action: action, total: total}
		if b != nil {
			e.id = b.ID
		}
		events = append(events, e)
	})

	_, _ = s.Add(ctx, Candidate{ID: "a", Title: "A"})
	_, _ = s.Add(ctx, Candidate{ID: "b", Title: "B"})
	_, _ = s.Remove(ctx, "a")
	_ = s.Clear(ctx)

	assert.Equal(t, []event{
		{ActionAdded, "a", 1},
		{ActionAdded, "b", 2},
		{ActionRemoved, "a", 1},
		{ActionCleared, "", 0},
	}, events)
}

func TestObserverSeesPersistedState(t *testing.T) {
	backend := kv.NewMemory(0)
	s := newTestStore(t, backend)
	ctx := context.Background()

	var storedAtNotify string
	s.Observe(func(Action, *domain.Bookmark, int) {
		storedAtNotify, _, _ = backend.Get(ctx, DefaultKey)
	})

	_, err := s.Add(ctx, Candidate{ID: "a", Title: "A"})
	require.NoError(t, err)
	assert.Contains(t, storedAtNotify, `"id":"a"`)
}

func TestObserverPanicIsIsolated(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	s := New(context.Background(), kv.NewMemory(0), Options{}, logger.NewWithCore(core))
	ctx := context.Background()

	var before, after int
	s.Observe(func(Action, *domain.Bookmark, int) { before++ })
	s.Observe(func(Action, *domain.Bookmark, int) { panic("observer bug") })
	s.Observe(func(Action, *domain.Bookmark, int) { after++ })

	_, err := s.Add(ctx, Candidate{ID: "a", Title: "A"})
	require.NoError(t, err)

	assert.Equal(t, 1, before)
	assert.Equal(t, 1, after)
	assert.True(t, s.IsBookmarked("a"))
	assert.Equal(t, 1, logs.FilterMessage("bookmark observer panicked").Len())
}

func TestObserverCannotMutateStore(t *testing.T) {
	s := newTestStore(t, kv.NewMemory(0))
	s.Observe(func(_ Action, b *domain.Bookmark, _ int) {
		if b != nil {
			b.Title = "mutated"
		}
	})

	_, _ = s.Add(context.Background(), Candidate{ID: "a", Title: "A"})
	b, _ := s.Get("a")
	assert.Equal(t, "A", b.Title)
}

func TestObserverMayCallStore(t *testing.T) {
	s := newTestStore(t, kv.NewMemory(0))
	var seen bool
	s.Observe(func(_ Action, b *domain.Bookmark, _ int) {
		if b != nil {
			seen = s.IsBookmarked(b.ID)
		}
	})

	_, _ = s.Add(context.Background(), Candidate{ID: "a", Title: "A"})
	assert.True(t, seen)
}

func TestUnobserve(t *testing.T) {
	s := newTestStore(t, kv.NewMemory(0))
	ctx := context.Background()

	var calls int
	id := s.Observe(func(Action, *domain.Bookmark, int) { calls++ })

	_, _ = s.Add(ctx, Candidate{ID: "a", Title: "A"})
	assert.True(t, s.Unobserve(id))
	assert.False(t, s.Unobserve(id))
	_, _ = s.Add(ctx, Candidate{ID: "b", Title: "B"})

	assert.Equal(t, 1, calls)
}

func TestExportShape(t *testing.T) {
	s := newTestStore(t, kv.NewMemory(0))
	_, _ = s.Add(context.Background(), Candidate{ID: "a", Title: "A"})

	snap := s.Export()
	assert.Equal(t, domain.SnapshotVersion, snap.Version)
	assert.Equal(t, []string{"a"}, ids(snap.Bookmarks))
	assert.False(t, snap.ExportDate.IsZero())

	data, err := snap.Encode()
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "1.0", doc["version"])
	assert.Contains(t, doc, "exportDate")
	assert.Contains(t, doc, "bookmarks")
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newTestStore(t, kv.NewMemory(0))
	_, _ = src.Add(ctx, Candidate{ID: "a", Title: "A", Type: "tool", Tags: []string{"x"}, Metadata: map[string]any{"level": "intro"}})
	_, _ = src.Add(ctx, Candidate{ID: "b", Title: "B", Category: "Prompts", Description: "desc"})
	_, _ = src.Add(ctx, Candidate{Title: "Generated Id"})

	data, err := src.Export().Encode()
	require.NoError(t, err)

	dst := newTestStore(t, kv.NewMemory(0))
	added, err := dst.Import(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, 3, added)

	byID := cmpopts.SortSlices(func(a, b domain.Bookmark) bool { return a.ID < b.ID })
	if diff := cmp.Diff(src.Query(domain.Filter{}), dst.Query(domain.Filter{}), byID); diff != "" {
		t.Errorf("round trip mismatch (-src +dst):\n%s", diff)
	}
}

func TestImportAppendsAtTailInSourceOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, kv.NewMemory(0))
	_, _ = s.Add(ctx, Candidate{ID: "existing", Title: "Existing"})

	doc := `{"bookmarks":[
		{"id":"x","title":"X","type":"prompt"},
		{"id":"existing","title":"Other content"},
		{"id":"y","title":"Y"},
		{"id":"x","title":"X again"},
		{"title":"no id"}
	],"exportDate":"2025-01-01T00:00:00.000Z","version":"1.0","extra":true}`

	added, err := s.Import(ctx, []byte(doc))
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.Equal(t, []string{"existing", "x", "y"}, ids(s.Query(domain.Filter{})))

	kept, _ := s.Get("existing")
	assert.Equal(t, "Existing", kept.Title)
	x, _ := s.Get("x")
	assert.Equal(t, "X", x.Title)
}

func TestImportIsIdempotent(t *testing.T) {
	ctx := context.Background()
	backend := &failingBackend{data: map[string]string{}}
	s := newTestStore(t, backend)

	doc := []byte(`{"bookmarks":[{"id":"a","title":"A"},{"id":"b","title":"B"}]}`)

	added, err := s.Import(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.Equal(t, 1, backend.writes)

	added, err = s.Import(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, 0, added)
	assert.Equal(t, 1, backend.writes, "nothing new means no write")
}

func TestImportParseError(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, kv.NewMemory(0))
	_, _ = s.Add(ctx, Candidate{ID: "a", Title: "A"})

	for _, raw := range []string{"", "not json", `{"bookmarks":`, `[{"id":"b"}]`, `{"bookmarks":"nope"}`} {
		added, err := s.Import(ctx, []byte(raw))
		assert.ErrorIs(t, err, ErrParse, "input %q", raw)
		assert.Equal(t, 0, added)
	}
	assert.Equal(t, []string{"a"}, ids(s.Query(domain.Filter{})))
}

func TestImportToleratesDateFormats(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, kv.NewMemory(0))

	doc := `{"bookmarks":[
		{"id":"a","title":"A","dateAdded":"2025-01-31T12:00:00.000Z"},
		{"id":"b","title":"B","dateAdded":"2025-01-31"},
		{"id":"c","title":"C","dateAdded":1738324800000},
		{"id":"d","title":"D","dateAdded":"last tuesday"},
		{"id":"e","title":"E","metadata":"not-an-object"}
	]}`

	added, err := s.Import(ctx, []byte(doc))
	require.NoError(t, err)
	assert.Equal(t, 4, added)
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(s.Query(domain.Filter{})))

	a, _ := s.Get("a")
	assert.True(t, a.DateAdded.Equal(time.Date(2025, 1, 31, 12, 0, 0, 0, time.UTC)))
	b, _ := s.Get("b")
	assert.True(t, b.DateAdded.Equal(time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)))
	c, _ := s.Get("c")
	assert.True(t, c.DateAdded.Equal(time.Date(2025, 1, 31, 12, 0, 0, 0, time.UTC)))
	d, _ := s.Get("d")
	assert.True(t, d.DateAdded.IsZero())
}

func TestImportWithoutBookmarksArray(t *testing.T) {
	s := newTestStore(t, kv.NewMemory(0))

	added, err := s.Import(context.Background(), []byte(`{"version":"1.0"}`))
	require.NoError(t, err)
	assert.Equal(t, 0, added)
}

func TestImportDoesNotNotify(t *testing.T) {
	s := newTestStore(t, kv.NewMemory(0))
	var calls int
	s.Observe(func(Action, *domain.Bookmark, int) { calls++ })

	_, err := s.Import(context.Background(), []byte(`{"bookmarks":[{"id":"a","title":"A"}]}`))
	require.NoError(t, err)
	assert.Equal(t, 0, calls)
}

func TestImportPersistenceFailure(t *testing.T) {
	s := newTestStore(t, &failingBackend{setErr: errors.New("disk full")})

	added, err := s.Import(context.Background(), []byte(`{"bookmarks":[{"id":"a","title":"A"}]}`))
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Equal(t, 1, added)
	assert.True(t, s.IsBookmarked("a"))
}

func TestStatsConsistency(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, kv.NewMemory(0))
	_, _ = s.Add(ctx, Candidate{ID: "a", Title: "A", Type: "prompt", Category: "Prompts"})
	_, _ = s.Add(ctx, Candidate{ID: "b", Title: "B", Type: "lesson"})
	_, _ = s.Add(ctx, Candidate{ID: "c", Title: "C", Type: "prompt", Category: "Prompts"})
	_, _ = s.Import(ctx, []byte(`{"bookmarks":[{"id":"old","title":"Old","type":"tool","category":"Tools","dateAdded":"2020-01-01T00:00:00.000Z"}]}`))

	stats := s.Stats()
	assert.Equal(t, s.Len(), stats.Total)

	sum := 0
	for _, n := range stats.ByType {
		sum += n
	}
	assert.Equal(t, stats.Total, sum)
	assert.Equal(t, 2, stats.ByType[domain.TypePrompt])
	assert.Equal(t, 2, stats.ByCategory["Prompts"])
	assert.Equal(t, 1, stats.ByCategory[domain.DefaultCategory])
	assert.Equal(t, 3, stats.RecentlyAdded)
}

func TestAddAllKeepsOrderAtHead(t *testing.T) {
	s := newTestStore(t, kv.NewMemory(0))
	_, err := s.Add(context.Background(), Candidate{ID: "old", Title: "Old"})
	require.NoError(t, err)

	added, skipped, err := s.AddAll(context.Background(), []Candidate{
		{ID: "a", Title: "A"},
		{ID: "old", Title: "Old again"},
		{ID: "b", Title: "B"},
		{ID: "untitled"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.Equal(t, 2, skipped)
	assert.Equal(t, []string{"a", "b", "old"}, ids(s.Query(domain.Filter{})))
}

func TestAddAllPersistenceFailure(t *testing.T) {
	backend := &failingBackend{data: map[string]string{}, setErr: errors.New("disk full")}
	s := newTestStore(t, backend)

	added, skipped, err := s.AddAll(context.Background(), []Candidate{{ID: "a", Title: "A"}, {ID: "b", Title: "B"}})
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Equal(t, 2, added)
	assert.Zero(t, skipped)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 2, backend.writes)
}
