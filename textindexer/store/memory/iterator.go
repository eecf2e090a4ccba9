package memory

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/searchengineplaces/webrank/textindexer/index"
)

// postingIterator implements index.PostingIterator over a snapshot of the
// matched posting occurrences.
type postingIterator struct {
	urls     []string
	curIndex int
}

// Next implements index.PostingIterator.
func (it *postingIterator) Next() bool {
	if it.curIndex >= len(it.urls) {
		return false
	}
	it.curIndex++
	return true
}

// Error implements index.PostingIterator.
func (it *postingIterator) Error() error { return nil }

// Close implements index.PostingIterator.
func (it *postingIterator) Close() error { return nil }

// URL implements index.PostingIterator.
func (it *postingIterator) URL() string { return it.urls[it.curIndex-1] }

// searchIterator implements index.Iterator on top of a paginated bleve
// search.
type searchIterator struct {
	idx       *InMemoryIndexer
	searchReq *bleve.SearchRequest

	cumIdx uint64
	rsIdx  int
	rs     *bleve.SearchResult

	latchedDoc *index.Document
	lastErr    error
}

// Close the iterator and release any allocated resources.
func (it *searchIterator) Close() error {
	it.idx = nil
	it.searchReq = nil
	if it.rs != nil {
		it.cumIdx = it.rs.Total
	}
	return nil
}

// Next loads the next document matching the search query. It returns false
// if no more documents are available.
func (it *searchIterator) Next() bool {
	if it.lastErr != nil || it.rs == nil || it.cumIdx >= it.rs.Total {
		return false
	}

	// Fetch the next batch when the local page is exhausted.
	if it.rsIdx >= it.rs.Hits.Len() {
		it.searchReq.From += it.searchReq.Size
		if it.rs, it.lastErr = it.idx.idx.Search(it.searchReq); it.lastErr != nil {
			return false
		}

		it.rsIdx = 0
	}

	nextURL := it.rs.Hits[it.rsIdx].ID
	if it.latchedDoc, it.lastErr = it.idx.FindByURL(nextURL); it.lastErr != nil {
		return false
	}

	it.cumIdx++
	it.rsIdx++
	return true
}

// Error returns the last error encountered by the iterator.
func (it *searchIterator) Error() error {
	return it.lastErr
}

// Document returns the current document from the result set.
func (it *searchIterator) Document() *index.Document {
	return it.latchedDoc
}

// TotalCount returns the approximate number of search results.
func (it *searchIterator) TotalCount() uint64 {
	if it.rs == nil {
		return 0
	}
	return it.rs.Total
}
