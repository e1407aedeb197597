package domain

import (
	"encoding/json"
	"time"
)

// SnapshotVersion is written into every export.
const SnapshotVersion = "1.0"

// Snapshot is the export/import document.
// Only Bookmarks is consumed on import.
type Snapshot struct {
	Bookmarks  []Bookmark `json:"bookmarks"`
	ExportDate time.Time  `json:"exportDate"`
	Version    string     `json:"version"`
}

// Encode renders the snapshot as the two-space indented export file.
func (s Snapshot) Encode() ([]byte, error) {
	if s.Bookmarks == nil {
		s.Bookmarks = []Bookmark{}
	}
	return json.MarshalIndent(s, "", "  ")
}

// DecodeEntries decodes each entry on its own so one malformed record
// cannot take the rest of the array down with it. Entries that fail are
// left out and reported to bad with their index.
func DecodeEntries(entries []json.RawMessage, bad func(i int, err error)) []Bookmark {
	out := make([]Bookmark, 0, len(entries))
	for i, raw := range entries {
		var b Bookmark
		if err := json.Unmarshal(raw, &b); err != nil {
			if bad != nil {
				bad(i, err)
			}
			continue
		}
		out = append(out, b)
	}
	return out
}

// ExportFilename is the download name for a snapshot taken at t.
// Example: hubmarks-bookmarks-2025-01-31.json
func ExportFilename(t time.Time) string {
	return "hubmarks-bookmarks-" + t.UTC().Format("2006-01-02") + ".json"
}
