package domain

import (
	"sort"
	"strings"
)

const (
	// Scoring weights
	ScoreExactMatch     = 100.0
	ScorePrefixMatch    = 75.0
	ScoreSubstringMatch = 50.0
	ScoreFuzzyMatch     = 25.0

	// Earlier substring positions score higher
	ScorePositionBonus = 10.0

	// Tag hits count for less than title hits
	ScoreTagWeight = 0.5
)

// Candidate is a bookmark ranked against a jump query.
type Candidate struct {
	Bookmark Bookmark
	Score    float64
}

// ScoreTitle scores how well query matches title.
func ScoreTitle(query, title string) float64 {
	query = strings.ToLower(strings.TrimSpace(query))
	title = strings.ToLower(strings.TrimSpace(title))
	if query == "" || title == "" {
		return 0.0
	}

	if query == title {
		return ScoreExactMatch
	}

	if strings.HasPrefix(title, query) {
		return ScorePrefixMatch
	}

	if idx := strings.Index(title, query); idx >= 0 {
		return ScoreSubstringMatch + ScorePositionBonus*(1.0-float64(idx)/float64(len(title)))
	}

	// Every word present somewhere in the title
	words := strings.Fields(query)
	if len(words) > 1 {
		all := true
		for _, w := range words {
			if !strings.Contains(title, w) {
				all = false
				break
			}
		}
		if all {
			return ScoreFuzzyMatch
		}
	}

	if sim := similarity(query, title); sim > 0.5 {
		return ScoreFuzzyMatch * sim
	}

	return 0.0
}

// Score is the best of the title score and the weighted tag scores.
func Score(query string, b *Bookmark) float64 {
	if b == nil {
		return 0.0
	}
	best := ScoreTitle(query, b.Title)
	for _, tag := range b.Tags {
		if s := ScoreTitle(query, tag) * ScoreTagWeight; s > best {
			best = s
		}
	}
	return best
}

// Rank returns the matching bookmarks, best first.
// Ties keep collection order.
func Rank(query string, bookmarks []Bookmark) []Candidate {
	candidates := make([]Candidate, 0, len(bookmarks))
	for i := range bookmarks {
		s := Score(query, &bookmarks[i])
		if s == 0.0 {
			continue
		}
		candidates = append(candidates, Candidate{Bookmark: bookmarks[i], Score: s})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	return candidates
}

// BestMatch returns the top ranked bookmark, if any.
func BestMatch(query string, bookmarks []Bookmark) (Bookmark, bool) {
	candidates := Rank(query, bookmarks)
	if len(candidates) == 0 {
		return Bookmark{}, false
	}
	return candidates[0].Bookmark, true
}

// similarity is the length of the longest common subsequence of query
// and s, as a ratio of the query length. Runes must appear in order, so
// an anagram of the query does not count as a match.
func similarity(query, s string) float64 {
	q := []rune(query)
	t := []rune(s)
	if len(q) == 0 || len(t) == 0 {
		return 0.0
	}

	prev := make([]int, len(t)+1)
	cur := make([]int, len(t)+1)
	for i := 1; i <= len(q); i++ {
		for j := 1; j <= len(t); j++ {
			switch {
			case q[i-1] == t[j-1]:
				cur[j] = prev[j-1] + 1
			case prev[j] >= cur[j-1]:
				cur[j] = prev[j]
			default:
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return float64(prev[len(t)]) / float64(len(q))
}
