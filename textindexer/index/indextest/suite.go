// Package indextest provides a re-usable set of tests that can be executed
// against any type that implements index.Indexer.
package indextest

import (
	"sort"
	"time"

	"github.com/searchengineplaces/webrank/textindexer/index"
	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

// SuiteBase defines a re-usable set of index-related tests that can be
// executed against any type that implements index.Indexer.
type SuiteBase struct {
	idx index.Indexer
}

// SetIndexer configures the test-suite to run all tests against idx.
func (s *SuiteBase) SetIndexer(idx index.Indexer) {
	s.idx = idx
}

// TestIndexDocument verifies the indexing logic for new and existing
// documents.
func (s *SuiteBase) TestIndexDocument(c *gc.C) {
	doc := &index.Document{
		URL:         "http://example.com",
		Title:       "Illustrious examples",
		Content:     "Lorem ipsum dolor",
		TextContent: "Lorem ipsum dolor",
	}

	err := s.idx.Index(doc)
	c.Assert(err, gc.IsNil)
	c.Assert(doc.IndexedAt.IsZero(), gc.Equals, false)

	// Update the existing document.
	updatedDoc := &index.Document{
		URL:         "http://example.com",
		Title:       "A more exciting title",
		Content:     "Ovidius poeta in terra pontica",
		TextContent: "Ovidius poeta in terra pontica",
	}
	err = s.idx.Index(updatedDoc)
	c.Assert(err, gc.IsNil)

	stored, err := s.idx.FindByURL("http://example.com")
	c.Assert(err, gc.IsNil)
	c.Assert(stored.Title, gc.Equals, "A more exciting title")

	// Documents without a URL are rejected.
	err = s.idx.Index(&index.Document{})
	c.Assert(xerrors.Is(err, index.ErrMissingURL), gc.Equals, true)
}

// TestFindByURL verifies the document lookup logic.
func (s *SuiteBase) TestFindByURL(c *gc.C) {
	doc := &index.Document{
		URL:     "http://example.com",
		Content: "Lorem ipsum dolor",
	}
	c.Assert(s.idx.Index(doc), gc.IsNil)

	stored, err := s.idx.FindByURL(doc.URL)
	c.Assert(err, gc.IsNil)
	c.Assert(stored.Content, gc.Equals, doc.Content)

	_, err = s.idx.FindByURL("http://example.com/unknown")
	c.Assert(xerrors.Is(err, index.ErrNotFound), gc.Equals, true)
}

// TestPostingsPerOccurrence verifies that a URL is recorded once per literal
// token occurrence and that token case and punctuation are preserved.
func (s *SuiteBase) TestPostingsPerOccurrence(c *gc.C) {
	doc := &index.Document{
		URL:     "http://example.com/a",
		Content: "rank rank rank, Rank",
	}
	c.Assert(s.idx.Index(doc), gc.IsNil)

	// Exact token "rank" appears twice; "rank," and "Rank" are distinct
	// keys that still match the substring lookup.
	got := collectPostings(c, s.idx, "rank")
	c.Assert(got, gc.DeepEquals, []string{
		"http://example.com/a",
		"http://example.com/a",
		"http://example.com/a",
		"http://example.com/a",
	})
}

// TestPostingsSubstringMatch verifies the case-insensitive substring
// semantics of the posting lookup.
func (s *SuiteBase) TestPostingsSubstringMatch(c *gc.C) {
	doc := &index.Document{
		URL:     "http://example.com/profile",
		Content: "Oktay123 welcomes you",
	}
	c.Assert(s.idx.Index(doc), gc.IsNil)

	got := collectPostings(c, s.idx, "okt")
	c.Assert(got, gc.DeepEquals, []string{"http://example.com/profile"})

	got = collectPostings(c, s.idx, "OKTAY123")
	c.Assert(got, gc.DeepEquals, []string{"http://example.com/profile"})

	got = collectPostings(c, s.idx, "missing-token")
	c.Assert(got, gc.HasLen, 0)
}

// TestReindexReplacesPostings verifies that re-indexing a page does not
// accumulate postings from its previous content.
func (s *SuiteBase) TestReindexReplacesPostings(c *gc.C) {
	url := "http://example.com/page"
	c.Assert(s.idx.Index(&index.Document{URL: url, Content: "alpha beta"}), gc.IsNil)
	c.Assert(s.idx.Index(&index.Document{URL: url, Content: "beta gamma"}), gc.IsNil)

	c.Assert(collectPostings(c, s.idx, "alpha"), gc.HasLen, 0)
	c.Assert(collectPostings(c, s.idx, "beta"), gc.DeepEquals, []string{url})
	c.Assert(collectPostings(c, s.idx, "gamma"), gc.DeepEquals, []string{url})
}

// TestUpdateScore verifies that rank scores can be updated and survive
// re-indexing.
func (s *SuiteBase) TestUpdateScore(c *gc.C) {
	url := "http://example.com"
	c.Assert(s.idx.Index(&index.Document{URL: url, Content: "Lorem ipsum"}), gc.IsNil)
	c.Assert(s.idx.UpdateScore(url, 0.5), gc.IsNil)

	stored, err := s.idx.FindByURL(url)
	c.Assert(err, gc.IsNil)
	c.Assert(stored.PageRank, gc.Equals, 0.5)

	// Re-indexing the document must not clobber the score.
	c.Assert(s.idx.Index(&index.Document{URL: url, Content: "Lorem ipsum dolor"}), gc.IsNil)
	stored, err = s.idx.FindByURL(url)
	c.Assert(err, gc.IsNil)
	c.Assert(stored.PageRank, gc.Equals, 0.5)
}

// TestUpdateScoreForUnknownDocument verifies that updating the score of an
// unknown document creates a placeholder for it.
func (s *SuiteBase) TestUpdateScoreForUnknownDocument(c *gc.C) {
	c.Assert(s.idx.UpdateScore("http://example.com/phantom", 0.25), gc.IsNil)

	stored, err := s.idx.FindByURL("http://example.com/phantom")
	c.Assert(err, gc.IsNil)
	c.Assert(stored.PageRank, gc.Equals, 0.25)
	c.Assert(stored.Content, gc.Equals, "")
}

// TestPhraseSearch verifies the full-text search path and its rank-aware
// result ordering.
func (s *SuiteBase) TestPhraseSearch(c *gc.C) {
	docs := []struct {
		url   string
		text  string
		score float64
	}{
		{"http://example.com/low", "Ovidius poeta in terra pontica", 0.1},
		{"http://example.com/high", "Ovidius poeta in terra pontica scripsit", 0.9},
		{"http://example.com/other", "completely unrelated content", 0.5},
	}
	for _, d := range docs {
		err := s.idx.Index(&index.Document{
			URL:         d.url,
			Content:     d.text,
			TextContent: d.text,
			IndexedAt:   time.Now(),
		})
		c.Assert(err, gc.IsNil)
		c.Assert(s.idx.UpdateScore(d.url, d.score), gc.IsNil)
	}

	it, err := s.idx.Search(index.Query{
		Type:       index.QueryTypePhrase,
		Expression: "poeta in terra",
	})
	c.Assert(err, gc.IsNil)

	var got []string
	for it.Next() {
		got = append(got, it.Document().URL)
	}
	c.Assert(it.Error(), gc.IsNil)
	c.Assert(it.Close(), gc.IsNil)
	c.Assert(got, gc.DeepEquals, []string{
		"http://example.com/high",
		"http://example.com/low",
	})
}

func collectPostings(c *gc.C, idx index.Indexer, keyword string) []string {
	it, err := idx.Postings(keyword)
	c.Assert(err, gc.IsNil)

	var urls []string
	for it.Next() {
		urls = append(urls, it.URL())
	}
	c.Assert(it.Error(), gc.IsNil)
	c.Assert(it.Close(), gc.IsNil)
	sort.Strings(urls)
	return urls
}
