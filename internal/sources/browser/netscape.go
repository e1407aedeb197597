// Package browser reads the Netscape bookmark file that every major browser
// exports ("bookmarks.html").
package browser

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/MrSnakeDoc/hubmarks/internal/bookmarks"
)

// SourceLabel marks bookmarks imported from a browser export.
const SourceLabel = "browser"

// Parse returns one candidate per http(s) link, in document order.
// The innermost folder name becomes the category and the TAGS attribute the tags.
// Links repeated in the file are kept once.
func Parse(r io.Reader) ([]bookmarks.Candidate, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	seen := make(map[string]struct{})
	var out []bookmarks.Candidate

	var walk func(n *html.Node, category string)
	walk = func(n *html.Node, category string) {
		if isElement(n, "dl") {
			if folder := folderName(n); folder != "" {
				category = folder
			}
		}

		if isElement(n, "a") {
			if c, ok := candidate(n, category); ok {
				if _, dup := seen[c.URL]; !dup {
					seen[c.URL] = struct{}{}
					out = append(out, c)
				}
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, category)
		}
	}

	walk(doc, "")

	return out, nil
}

func candidate(a *html.Node, category string) (bookmarks.Candidate, bool) {
	href := strings.TrimSpace(attr(a, "href"))
	if href == "" {
		return bookmarks.Candidate{}, false
	}

	u, err := url.Parse(href)
	if err != nil {
		return bookmarks.Candidate{}, false
	}

	// Skip place:, javascript: and friends
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return bookmarks.Candidate{}, false
	}

	title := strings.TrimSpace(text(a))
	if title == "" {
		title = u.Host
	}

	var tags []string
	for _, t := range strings.Split(attr(a, "tags"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	return bookmarks.Candidate{
		ID:          generateBrowserID(href),
		Title:       title,
		Description: description(a),
		URL:         href,
		Category:    category,
		Source:      SourceLabel,
		Tags:        tags,
	}, true
}

// folderName is the <H3> heading that precedes a folder's <DL>.
func folderName(dl *html.Node) string {
	for s := dl.PrevSibling; s != nil; s = s.PrevSibling {
		if isElement(s, "h3") {
			return strings.TrimSpace(text(s))
		}
		if isElement(s, "dl") {
			return ""
		}
	}
	return ""
}

// description is the text of the <DD> that follows the link's <DT>, if any.
func description(a *html.Node) string {
	dt := a.Parent
	if dt == nil || !isElement(dt, "dt") {
		return ""
	}
	for s := dt.NextSibling; s != nil; s = s.NextSibling {
		if s.Type != html.ElementNode {
			continue
		}
		if isElement(s, "dd") {
			return strings.TrimSpace(text(s))
		}
		return ""
	}
	return ""
}

func isElement(n *html.Node, tag string) bool {
	return n.Type == html.ElementNode && n.Data == tag
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

// text concatenates the text nodes under n, stopping at nested lists.
func text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if isElement(c, "dl") || isElement(c, "dt") {
				continue
			}
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// generateBrowserID derives a stable ID from the link so a second import is a no-op.
func generateBrowserID(href string) string {
	hash := sha256.Sum256([]byte(href))
	return "browser-" + hex.EncodeToString(hash[:])[:16]
}
