// Package graph defines the URL-keyed link graph built up by the crawler.
// Every page is identified by its canonical absolute URL; two links are the
// same link iff their URL strings are equal.
package graph

import (
	"time"
)

// Iterator is implemented by graph objects that can be iterated.
type Iterator interface {
	// Next advances the iterator. If no more items are available or an
	// error occurs, calls to Next() return false.
	Next() bool

	// Error returns the last error encountered by the iterator.
	Error() error

	// Close releases any resources associated with an iterator.
	Close() error
}

// LinkIterator is implemented by objects that can iterate the graph links.
type LinkIterator interface {
	Iterator

	// Link returns the currently fetched link object.
	Link() *Link
}

// EdgeIterator is implemented by objects that can iterate the graph edges.
type EdgeIterator interface {
	Iterator

	// Edge returns the currently fetched edge object.
	Edge() *Edge
}

// Link describes a page that the crawler has discovered or retrieved.
type Link struct {
	// The canonical absolute URL of the page; the link identity.
	URL string

	// The timestamp when the page content was last retrieved. A zero
	// value marks a link that has been discovered but not yet crawled.
	RetrievedAt time.Time
}

// Edge describes a directed graph edge: the page at Src contains a link to
// the page at Dst.
type Edge struct {
	// The URL of the page the edge originates from.
	Src string

	// The URL the edge points to. Dst may refer to a link that has not
	// been crawled yet.
	Dst string

	// The timestamp when the edge was last updated.
	UpdatedAt time.Time
}

// Graph is implemented by objects that can mutate or query a link graph.
type Graph interface {
	// UpsertLink creates a new link or updates an existing link. A
	// zero-valued RetrievedAt never overwrites an existing retrieval
	// timestamp so re-discovering an already-crawled page is a no-op.
	UpsertLink(link *Link) error

	// FindLink looks up a link by its URL.
	FindLink(url string) (*Link, error)

	// Links returns an iterator for the set of links that were last
	// retrieved before the provided cut-off. Links that have never been
	// retrieved always satisfy the predicate; this is how the crawl
	// frontier is drained.
	Links(retrievedBefore time.Time) (LinkIterator, error)

	// UpsertEdge creates a new edge or refreshes an existing edge's
	// update timestamp. Both endpoints are upserted as links if needed.
	UpsertEdge(edge *Edge) error

	// Edges returns an iterator for all edges in the graph.
	Edges() (EdgeIterator, error)

	// Outlinks returns the set of destination URLs for the edges that
	// originate from the provided URL, in insertion order.
	Outlinks(url string) ([]string, error)

	// RemoveStaleEdges removes any edge that originates from the
	// specified URL and was updated before the specified timestamp.
	RemoveStaleEdges(fromURL string, updatedBefore time.Time) error
}
