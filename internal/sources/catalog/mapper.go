package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/MrSnakeDoc/hubmarks/internal/bookmarks"
)

// SourceLabel marks bookmarks that came from the catalog file.
const SourceLabel = "catalog"

// Mapper converts catalog entries to bookmark candidates
type Mapper struct{}

// NewMapper creates a new mapper instance
func NewMapper() *Mapper {
	return &Mapper{}
}

// Map converts Config to candidates. Category lists keep file order;
// keys inside one map are sorted.
// Items without a title or url are skipped.
func (m *Mapper) Map(config Config) ([]bookmarks.Candidate, error) {
	var candidates []bookmarks.Candidate

	for _, group := range config {
		for _, category := range sortedKeys(group) {
			for _, entry := range group[category] {
				for _, title := range sortedKeys(entry) {
					item := entry[title]
					title = strings.TrimSpace(title)

					if title == "" || strings.TrimSpace(item.URL) == "" {
						continue
					}

					id := item.ID
					if id == "" {
						id = generateCatalogID(category, title, item.URL)
					}

					source := item.Source
					if source == "" {
						source = SourceLabel
					}

					candidates = append(candidates, bookmarks.Candidate{
						ID:          id,
						Title:       title,
						Description: item.Description,
						URL:         item.URL,
						Type:        item.Type,
						Category:    category,
						Source:      source,
						Tags:        item.Tags,
						Metadata:    item.Metadata,
					})
				}
			}
		}
	}

	if len(candidates) == 0 {
		return nil, fmt.Errorf("no valid items found in catalog")
	}

	return candidates, nil
}

// generateCatalogID creates a stable ID so reseeding the same entry is a no-op.
// Example: ("Prompts", "X-Ray", "https://hub/p") -> "catalog-3f1c9a0b7d2e4f61"
func generateCatalogID(category, title, url string) string {
	hash := sha256.Sum256([]byte(category + "\x00" + title + "\x00" + url))
	return "catalog-" + hex.EncodeToString(hash[:])[:16]
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
