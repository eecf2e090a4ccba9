package frontend

import (
	"regexp"
	"strings"
)

// matchHighlighter wraps occurrences of a set of search terms in <em> tags
// so the results template can emphasize them.
type matchHighlighter struct {
	termRegex *regexp.Regexp
}

func newMatchHighlighter(searchTerms string) *matchHighlighter {
	var quoted []string
	for _, token := range strings.Fields(strings.Trim(searchTerms, `"`)) {
		quoted = append(quoted, regexp.QuoteMeta(token))
	}
	if len(quoted) == 0 {
		return &matchHighlighter{}
	}

	// A single alternation keeps terms that are substrings of other terms
	// from being highlighted twice.
	re, err := regexp.Compile("(?i)" + strings.Join(quoted, "|"))
	if err != nil {
		return &matchHighlighter{}
	}
	return &matchHighlighter{termRegex: re}
}

// Highlight emphasizes the configured search terms in sentence.
func (h *matchHighlighter) Highlight(sentence string) string {
	if h.termRegex == nil {
		return sentence
	}
	return h.termRegex.ReplaceAllString(sentence, "<em>$0</em>")
}
