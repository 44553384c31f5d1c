package search

import (
	"strings"
)

const snippetRadius = 80

// Snippet returns a bounded excerpt of text centred on the first
// case-insensitive occurrence of query, with ellipsis markers when the
// excerpt is truncated at either end. When the query does not occur, the
// head of the text is returned.
func Snippet(text, query string) string {
	if text == "" || query == "" {
		return ""
	}

	lowerText := strings.ToLower(text)
	lowerQuery := strings.ToLower(query)

	idx := strings.Index(lowerText, lowerQuery)
	if idx == -1 {
		if len(text) <= snippetRadius {
			return strings.TrimSpace(text)
		}
		return strings.TrimSpace(text[:snippetRadius])
	}

	start := idx - snippetRadius/4
	if start < 0 {
		start = 0
	}
	end := idx + len(lowerQuery) + snippetRadius/2
	if end > len(text) {
		end = len(text)
	}

	out := strings.TrimSpace(text[start:end])
	if start > 0 {
		out = "..." + out
	}
	if end < len(text) {
		out = out + "..."
	}
	return out
}
