package domain

import (
	"strings"
	"time"
)

// Filter narrows a bookmark listing. Empty fields do not filter.
type Filter struct {
	Type     ContentType
	Category string
	Search   string
}

// IsEmpty reports whether no predicate is set.
func (f Filter) IsEmpty() bool {
	return f.Type == "" && f.Category == "" && f.Search == ""
}

// Match reports whether b satisfies every predicate set on f.
//   - Type and Category are exact matches
//   - Search is a case-insensitive substring of the title, the description or any tag
func (f Filter) Match(b *Bookmark) bool {
	if b == nil {
		return false
	}
	if f.Type != "" && b.Type != f.Type {
		return false
	}
	if f.Category != "" && b.Category != f.Category {
		return false
	}
	if f.Search == "" {
		return true
	}

	needle := strings.ToLower(f.Search)
	if strings.Contains(strings.ToLower(b.Title), needle) ||
		strings.Contains(strings.ToLower(b.Description), needle) {
		return true
	}
	for _, tag := range b.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// RecentWindow is the age under which a bookmark counts as recently added.
const RecentWindow = 7 * 24 * time.Hour

// Stats is a derived summary of a collection.
type Stats struct {
	Total         int                 `json:"total"`
	ByType        map[ContentType]int `json:"byType"`
	ByCategory    map[string]int      `json:"byCategory"`
	RecentlyAdded int                 `json:"recentlyAdded"`
}

// ComputeStats summarises bookmarks relative to now.
func ComputeStats(bookmarks []Bookmark, now time.Time) Stats {
	stats := Stats{
		Total:      len(bookmarks),
		ByType:     make(map[ContentType]int),
		ByCategory: make(map[string]int),
	}

	cutoff := now.Add(-RecentWindow)
	for i := range bookmarks {
		b := &bookmarks[i]
		stats.ByType[b.Type]++
		stats.ByCategory[b.Category]++
		if b.DateAdded.After(cutoff) {
			stats.RecentlyAdded++
		}
	}

	return stats
}
