// Package memory provides an in-memory index.Indexer implementation. Keyword
// postings are kept in plain maps so the naive tokenization contract is
// preserved verbatim, while a memory-only bleve index powers full-text
// (match/phrase) searches for the front-end.
package memory

import (
	"strings"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/searchengineplaces/webrank/textindexer/index"
	"golang.org/x/xerrors"
)

// The size of each page of results that is cached locally by the search
// iterator.
const batchSize = 10

// Compile-time check to ensure InMemoryIndexer implements Indexer.
var _ index.Indexer = (*InMemoryIndexer)(nil)

type bleveDoc struct {
	Title    string
	Content  string
	PageRank float64
}

// InMemoryIndexer is an Indexer implementation that keeps keyword postings
// and documents in memory.
type InMemoryIndexer struct {
	mu sync.RWMutex

	docs map[string]*index.Document

	// postings maps each token to the URL occurrence list recorded for
	// it; docTokens remembers the tokens a URL contributed so re-indexing
	// a page replaces its postings instead of accumulating them.
	postings  map[string][]string
	docTokens map[string][]string

	idx bleve.Index
}

// NewInMemoryIndexer creates a text indexer that indexes documents in memory.
func NewInMemoryIndexer() (*InMemoryIndexer, error) {
	mapping := bleve.NewIndexMapping()
	idx, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return nil, err
	}

	return &InMemoryIndexer{
		docs:      make(map[string]*index.Document),
		postings:  make(map[string][]string),
		docTokens: make(map[string][]string),
		idx:       idx,
	}, nil
}

// Close the indexer and release any allocated resources.
func (i *InMemoryIndexer) Close() error {
	return i.idx.Close()
}

// Index inserts a new document to the index or updates the entry for an
// existing document.
func (i *InMemoryIndexer) Index(doc *index.Document) error {
	if doc.URL == "" {
		return xerrors.Errorf("index: %w", index.ErrMissingURL)
	}

	doc.IndexedAt = time.Now()
	dcopy := copyDoc(doc)

	i.mu.Lock()
	defer i.mu.Unlock()

	// When updating, preserve the existing rank score and drop the
	// postings recorded by the previous version of the page.
	if orig, exists := i.docs[doc.URL]; exists {
		dcopy.PageRank = orig.PageRank
		i.removePostingsOf(doc.URL)
	}

	tokens := index.Tokenize(dcopy.Content)
	for _, token := range tokens {
		i.postings[token] = append(i.postings[token], dcopy.URL)
	}
	i.docTokens[dcopy.URL] = tokens

	if err := i.idx.Index(dcopy.URL, makeBleveDoc(dcopy)); err != nil {
		return xerrors.Errorf("index: %w", err)
	}

	i.docs[dcopy.URL] = dcopy
	return nil
}

// removePostingsOf drops every posting occurrence recorded for url. The
// caller must hold the write lock.
func (i *InMemoryIndexer) removePostingsOf(url string) {
	for _, token := range i.docTokens[url] {
		list := i.postings[token]
		kept := list[:0]
		for _, u := range list {
			if u != url {
				kept = append(kept, u)
			}
		}
		if len(kept) == 0 {
			delete(i.postings, token)
		} else {
			i.postings[token] = kept
		}
	}
	delete(i.docTokens, url)
}

// FindByURL looks up a document by its URL.
func (i *InMemoryIndexer) FindByURL(url string) (*index.Document, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if d, found := i.docs[url]; found {
		return copyDoc(d), nil
	}

	return nil, xerrors.Errorf("find by URL: %w", index.ErrNotFound)
}

// Postings returns an iterator over the URL occurrences stored under every
// token key that contains the keyword as a case-insensitive substring.
func (i *InMemoryIndexer) Postings(keyword string) (index.PostingIterator, error) {
	needle := strings.ToLower(keyword)

	i.mu.RLock()
	var matches []string
	for token, urls := range i.postings {
		if strings.Contains(strings.ToLower(token), needle) {
			matches = append(matches, urls...)
		}
	}
	i.mu.RUnlock()

	return &postingIterator{urls: matches}, nil
}

// Search the index for a particular query and return back a result iterator.
func (i *InMemoryIndexer) Search(q index.Query) (index.Iterator, error) {
	var bq query.Query
	switch q.Type {
	case index.QueryTypePhrase:
		bq = bleve.NewMatchPhraseQuery(q.Expression)
	default:
		bq = bleve.NewMatchQuery(q.Expression)
	}

	searchReq := bleve.NewSearchRequest(bq)
	searchReq.SortBy([]string{"-PageRank", "-_score"})
	searchReq.Size = batchSize
	searchReq.From = int(q.Offset)
	rs, err := i.idx.Search(searchReq)
	if err != nil {
		return nil, xerrors.Errorf("search: %w", err)
	}

	return &searchIterator{idx: i, searchReq: searchReq, rs: rs, cumIdx: q.Offset}, nil
}

// UpdateScore updates the rank score for the document with the specified
// URL. If no such document exists, a placeholder document with the provided
// score will be created.
func (i *InMemoryIndexer) UpdateScore(url string, score float64) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	doc, found := i.docs[url]
	if !found {
		doc = &index.Document{URL: url}
		i.docs[url] = doc
	}

	doc.PageRank = score
	if err := i.idx.Index(url, makeBleveDoc(doc)); err != nil {
		return xerrors.Errorf("update score: %w", err)
	}

	return nil
}

func copyDoc(d *index.Document) *index.Document {
	dcopy := new(index.Document)
	*dcopy = *d
	return dcopy
}

func makeBleveDoc(d *index.Document) bleveDoc {
	return bleveDoc{
		Title:    d.Title,
		Content:  d.TextContent,
		PageRank: d.PageRank,
	}
}
