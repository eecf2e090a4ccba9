package frontend

import (
	"strings"
)

// matchSummarizer assembles short result summaries out of the sentences of a
// document that mention one of the search terms.
type matchSummarizer struct {
	terms         []string
	maxSummaryLen int
}

func newMatchSummarizer(searchTerms string, maxSummaryLen int) *matchSummarizer {
	return &matchSummarizer{
		terms:         strings.Fields(strings.ToLower(strings.Trim(searchTerms, `"`))),
		maxSummaryLen: maxSummaryLen,
	}
}

// MatchSummary returns a summary of content built out of the sentences that
// contain at least one of the search terms, in document order. Sentences
// that were not adjacent in the document are joined with an ellipsis. When
// no sentence matches, the head of the content is used instead. Summaries
// are truncated to the configured maximum length.
func (s *matchSummarizer) MatchSummary(content string) string {
	sentences := splitSentences(content)

	var (
		sb          strings.Builder
		lastOrdinal = -1
	)
	for ordinal, sentence := range sentences {
		if !s.matches(sentence) {
			continue
		}
		if lastOrdinal != -1 {
			if ordinal-lastOrdinal == 1 {
				sb.WriteByte(' ')
			} else {
				sb.WriteString(" .. ")
			}
		}
		lastOrdinal = ordinal

		sb.WriteString(sentence)
		if sb.Len() >= s.maxSummaryLen {
			break
		}
	}

	summary := sb.String()
	if summary == "" {
		summary = content
	}
	if runes := []rune(summary); len(runes) > s.maxSummaryLen {
		summary = string(runes[:s.maxSummaryLen]) + "..."
	}
	return strings.TrimSpace(summary)
}

func (s *matchSummarizer) matches(sentence string) bool {
	lower := strings.ToLower(sentence)
	for _, term := range s.terms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// splitSentences breaks text into sentences at period, exclamation or
// question marks followed by whitespace. The terminating punctuation is kept
// with its sentence.
func splitSentences(text string) []string {
	var (
		sentences []string
		start     int
	)
	for i := 0; i < len(text)-1; i++ {
		switch text[i] {
		case '.', '!', '?':
			if text[i+1] == ' ' || text[i+1] == '\n' || text[i+1] == '\t' {
				if sentence := strings.TrimSpace(text[start : i+1]); sentence != "" {
					sentences = append(sentences, sentence)
				}
				start = i + 1
			}
		}
	}
	if sentence := strings.TrimSpace(text[start:]); sentence != "" {
		sentences = append(sentences, sentence)
	}
	return sentences
}
