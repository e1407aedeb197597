package domain

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Bookmark is one saved piece of learning content.
// JSON field names are the persisted layout and the export file format.
type Bookmark struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is unique within a store.
	// Derived from the title and creation time when not supplied.
	ID string `json:"id"`

	// ─────────────────────────────
	// Content description
	// ─────────────────────────────

	Title       string      `json:"title"`
	Description string      `json:"description"`
	URL         string      `json:"url"`
	Type        ContentType `json:"type"`
	Category    string      `json:"category"`

	// ─────────────────────────────
	// Provenance
	// ─────────────────────────────

	// DateAdded is set once at creation and never mutated.
	DateAdded time.Time `json:"dateAdded"`

	// Source is a human readable origin label.
	// Example: "Prompt Library"
	Source string `json:"source"`

	// ─────────────────────────────
	// Search & display metadata
	// ─────────────────────────────

	Tags     []string       `json:"tags"`
	Metadata map[string]any `json:"metadata"`
}

// DefaultCategory is used when a candidate carries no category.
const DefaultCategory = "General"

// Clone returns a copy that shares no slices or maps with b,
// including maps and slices nested inside Metadata.
func (b Bookmark) Clone() Bookmark {
	out := b
	if b.Tags != nil {
		out.Tags = make([]string, len(b.Tags))
		copy(out.Tags, b.Tags)
	}
	out.Metadata = CloneMetadata(b.Metadata)
	return out
}

// CloneMetadata deep-copies m. A nil map stays nil.
func CloneMetadata(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CloneMetadata(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case map[string]string:
		out := make(map[string]string, len(t))
		for k, e := range t {
			out[k] = e
		}
		return out
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	default:
		return v
	}
}

// dateLayouts are tried in order when reading dateAdded.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// UnmarshalJSON reads a bookmark written by any version of the store.
// A dateAdded that is not a recognisable date leaves DateAdded zero
// instead of failing the entry. Numbers are read as Unix milliseconds.
func (b *Bookmark) UnmarshalJSON(data []byte) error {
	type plain Bookmark
	var aux struct {
		plain
		DateAdded json.RawMessage `json:"dateAdded"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*b = Bookmark(aux.plain)
	b.DateAdded = parseDateAdded(aux.DateAdded)
	return nil
}

func parseDateAdded(raw json.RawMessage) time.Time {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t
			}
		}
		return time.Time{}
	}

	var ms int64
	if err := json.Unmarshal(raw, &ms); err == nil {
		return time.UnixMilli(ms).UTC()
	}
	return time.Time{}
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// GenerateID derives an identifier from a title and a creation time.
// Example: ("Boolean String Quick Win", 1700000000000ms) -> "boolean-string-quick-win-1700000000000"
func GenerateID(title string, at time.Time) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(title), "-")
	return slug + "-" + strconv.FormatInt(at.UnixMilli(), 10)
}
