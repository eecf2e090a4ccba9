// Package memory provides an in-memory graph.Graph implementation protected
// by a read-write mutex. It is the only store the single-process crawl run
// needs; the graph is discarded when the process exits.
package memory

import (
	"sync"
	"time"

	"github.com/searchengineplaces/webrank/linkgraph/graph"
	"golang.org/x/xerrors"
)

// Compile-time check for ensuring InMemoryGraph implements Graph.
var _ graph.Graph = (*InMemoryGraph)(nil)

// edgeList holds the outgoing edges of a link in insertion order.
type edgeList []*graph.Edge

// InMemoryGraph implements an in-memory link graph that can be concurrently
// accessed by multiple clients.
type InMemoryGraph struct {
	mu sync.RWMutex

	links map[string]*graph.Link
	edges map[string]edgeList
}

// NewInMemoryGraph creates a new in-memory link graph.
func NewInMemoryGraph() *InMemoryGraph {
	return &InMemoryGraph{
		links: make(map[string]*graph.Link),
		edges: make(map[string]edgeList),
	}
}

// UpsertLink creates a new link or updates an existing link.
func (s *InMemoryGraph) UpsertLink(link *graph.Link) error {
	if link.URL == "" {
		return xerrors.Errorf("upsert link: %w", graph.ErrEmptyURL)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.links[link.URL]; ok {
		// Keep the most recent retrieval timestamp so that
		// re-discovering a crawled page never marks it pending again.
		if link.RetrievedAt.After(existing.RetrievedAt) {
			existing.RetrievedAt = link.RetrievedAt
		}
		*link = *existing
		return nil
	}

	lCopy := new(graph.Link)
	*lCopy = *link
	s.links[lCopy.URL] = lCopy
	return nil
}

// FindLink looks up a link by its URL.
func (s *InMemoryGraph) FindLink(url string) (*graph.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	link, ok := s.links[url]
	if !ok {
		return nil, xerrors.Errorf("find link: %w", graph.ErrNotFound)
	}

	lCopy := new(graph.Link)
	*lCopy = *link
	return lCopy, nil
}

// Links returns an iterator for the set of links that were last retrieved
// before the provided cut-off. Links never retrieved always match.
func (s *InMemoryGraph) Links(retrievedBefore time.Time) (graph.LinkIterator, error) {
	s.mu.RLock()
	var list []*graph.Link
	for _, link := range s.links {
		if link.RetrievedAt.Before(retrievedBefore) {
			list = append(list, link)
		}
	}
	s.mu.RUnlock()

	return &linkIterator{s: s, links: list}, nil
}

// UpsertEdge creates a new edge or refreshes an existing edge.
func (s *InMemoryGraph) UpsertEdge(edge *graph.Edge) error {
	if edge.Src == "" || edge.Dst == "" {
		return xerrors.Errorf("upsert edge: %w", graph.ErrEmptyURL)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, dst := range []string{edge.Src, edge.Dst} {
		if _, ok := s.links[dst]; !ok {
			s.links[dst] = &graph.Link{URL: dst}
		}
	}

	for _, existing := range s.edges[edge.Src] {
		if existing.Dst == edge.Dst {
			existing.UpdatedAt = time.Now()
			*edge = *existing
			return nil
		}
	}

	eCopy := new(graph.Edge)
	*eCopy = *edge
	eCopy.UpdatedAt = time.Now()
	s.edges[eCopy.Src] = append(s.edges[eCopy.Src], eCopy)
	*edge = *eCopy
	return nil
}

// Edges returns an iterator for the full set of edges in the graph.
func (s *InMemoryGraph) Edges() (graph.EdgeIterator, error) {
	s.mu.RLock()
	var list []*graph.Edge
	for _, edges := range s.edges {
		list = append(list, edges...)
	}
	s.mu.RUnlock()

	return &edgeIterator{s: s, edges: list}, nil
}

// Outlinks returns the destinations of the edges originating from url in
// insertion order.
func (s *InMemoryGraph) Outlinks(url string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.links[url]; !ok {
		return nil, xerrors.Errorf("outlinks: %w", graph.ErrNotFound)
	}

	edges := s.edges[url]
	out := make([]string, len(edges))
	for i, edge := range edges {
		out[i] = edge.Dst
	}
	return out, nil
}

// RemoveStaleEdges removes any edge that originates from the specified URL
// and was updated before the specified timestamp.
func (s *InMemoryGraph) RemoveStaleEdges(fromURL string, updatedBefore time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var newEdgeList edgeList
	for _, edge := range s.edges[fromURL] {
		if !edge.UpdatedAt.Before(updatedBefore) {
			newEdgeList = append(newEdgeList, edge)
		}
	}
	if len(newEdgeList) == 0 {
		delete(s.edges, fromURL)
	} else {
		s.edges[fromURL] = newEdgeList
	}
	return nil
}
