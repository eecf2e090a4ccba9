// Package index defines the document and keyword-posting contracts for the
// webrank text indexer.
//
// The posting side of the index is intentionally naive: page content is
// split on whitespace, token case is preserved and no punctuation is
// stripped, so a token such as "rank," is a distinct key from "rank". The
// crawler feeds the raw page markup to the tokenizer. The query side
// depends on this behavior; keywords are matched as case-insensitive
// substrings of the stored token keys.
package index

import (
	"strings"
	"time"
)

// Document describes a web-page whose content has been indexed.
type Document struct {
	// The URL where the document was obtained from; the document identity.
	URL string

	// The document title (if available).
	Title string

	// The raw page content. This is what the posting tokenizer consumes.
	Content string

	// The sanitized text content used for snippets and phrase search.
	TextContent string

	// The last time this document was indexed.
	IndexedAt time.Time

	// The rank score assigned to this document.
	PageRank float64
}

// Tokenize splits page content into posting tokens: whitespace-delimited,
// case preserved, punctuation retained.
func Tokenize(content string) []string {
	return strings.Fields(content)
}

// Indexer is implemented by objects that can index and search documents
// discovered by the crawler.
type Indexer interface {
	// Index inserts a new document to the index or updates the entry for
	// an existing document. The document content is tokenized and each
	// token occurrence records the document URL in its posting list.
	Index(doc *Document) error

	// FindByURL looks up a document by its URL.
	FindByURL(url string) (*Document, error)

	// Postings returns an iterator over the URL occurrences recorded
	// under every token key whose lowercased form contains the
	// lowercased keyword. A URL is yielded once per token occurrence.
	Postings(keyword string) (PostingIterator, error)

	// Search runs a full-text query against the indexed documents and
	// returns a result iterator.
	Search(query Query) (Iterator, error)

	// UpdateScore updates the rank score for the document with the
	// specified URL. If no such document exists, a placeholder document
	// with the provided score will be created.
	UpdateScore(url string, score float64) error
}

// PostingIterator is implemented by objects that can iterate keyword posting
// matches.
type PostingIterator interface {
	// Close the iterator and release any allocated resources.
	Close() error

	// Next advances to the next posting. It returns false if no more
	// postings are available.
	Next() bool

	// Error returns the last error encountered by the iterator.
	Error() error

	// URL returns the URL recorded at the current posting.
	URL() string
}

// Iterator is implemented by objects that can paginate search results.
type Iterator interface {
	// Close the iterator and release any allocated resources.
	Close() error

	// Next loads the next document matching the search query. It returns
	// false if no more documents are available.
	Next() bool

	// Error returns the last error encountered by the iterator.
	Error() error

	// Document returns the current document from the result set.
	Document() *Document

	// TotalCount returns the approximate number of search results.
	TotalCount() uint64
}

// QueryType describes the types of full-text queries supported by the
// indexer implementations.
type QueryType uint8

const (
	// QueryTypeMatch requests the indexer to match each expression term.
	QueryTypeMatch QueryType = iota

	// QueryTypePhrase searches for an exact phrase match.
	QueryTypePhrase
)

// Query encapsulates a set of parameters for a full-text search.
type Query struct {
	// The way that the indexer should interpret the search expression.
	Type QueryType

	// The search expression.
	Expression string

	// The number of search results to skip.
	Offset uint64
}
