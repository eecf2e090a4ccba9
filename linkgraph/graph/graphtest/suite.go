// Package graphtest provides a re-usable set of graph-related tests that can
// be executed against any type that implements graph.Graph.
package graphtest

import (
	"fmt"
	"sort"
	"time"

	"github.com/searchengineplaces/webrank/linkgraph/graph"
	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

// SuiteBase defines a re-usable set of graph-related tests that can be
// executed against any type that implements graph.Graph.
type SuiteBase struct {
	g graph.Graph
}

// SetGraph configures the test-suite to run all tests against g.
func (s *SuiteBase) SetGraph(g graph.Graph) {
	s.g = g
}

// TestUpsertLink verifies the link upsert logic.
func (s *SuiteBase) TestUpsertLink(c *gc.C) {
	original := &graph.Link{
		URL:         "https://example.com",
		RetrievedAt: time.Now().Add(-10 * time.Hour).Truncate(time.Second).UTC(),
	}
	err := s.g.UpsertLink(original)
	c.Assert(err, gc.IsNil)

	// Update the existing link with a newer retrieval timestamp.
	accessedAt := time.Now().Truncate(time.Second).UTC()
	update := &graph.Link{
		URL:         "https://example.com",
		RetrievedAt: accessedAt,
	}
	err = s.g.UpsertLink(update)
	c.Assert(err, gc.IsNil)

	stored, err := s.g.FindLink("https://example.com")
	c.Assert(err, gc.IsNil)
	c.Assert(stored.RetrievedAt, gc.Equals, accessedAt, gc.Commentf("retrieval timestamp was not updated"))

	// Upserting with an older timestamp must not clobber the newer one.
	stale := &graph.Link{
		URL:         "https://example.com",
		RetrievedAt: time.Now().Add(-10 * time.Hour).UTC(),
	}
	err = s.g.UpsertLink(stale)
	c.Assert(err, gc.IsNil)
	c.Assert(stale.RetrievedAt, gc.Equals, accessedAt, gc.Commentf("upsert did not report the stored timestamp"))

	stored, err = s.g.FindLink("https://example.com")
	c.Assert(err, gc.IsNil)
	c.Assert(stored.RetrievedAt, gc.Equals, accessedAt, gc.Commentf("retrieval timestamp was overwritten with an older value"))

	// Links without a URL are rejected.
	err = s.g.UpsertLink(&graph.Link{})
	c.Assert(xerrors.Is(err, graph.ErrEmptyURL), gc.Equals, true)
}

// TestFindLink verifies the link lookup logic.
func (s *SuiteBase) TestFindLink(c *gc.C) {
	link := &graph.Link{URL: "https://example.com"}
	err := s.g.UpsertLink(link)
	c.Assert(err, gc.IsNil)

	found, err := s.g.FindLink(link.URL)
	c.Assert(err, gc.IsNil)
	c.Assert(found, gc.DeepEquals, link, gc.Commentf("lookup by URL returned the wrong link"))

	_, err = s.g.FindLink("https://example.com/unknown")
	c.Assert(xerrors.Is(err, graph.ErrNotFound), gc.Equals, true)
}

// TestPendingLinkSelection verifies that the retrievedBefore predicate
// selects never-retrieved links and excludes freshly-crawled ones.
func (s *SuiteBase) TestPendingLinkSelection(c *gc.C) {
	cutoff := time.Now()

	crawled := &graph.Link{URL: "https://example.com/crawled", RetrievedAt: cutoff.Add(time.Minute)}
	pending1 := &graph.Link{URL: "https://example.com/pending-1"}
	pending2 := &graph.Link{URL: "https://example.com/pending-2"}
	for _, link := range []*graph.Link{crawled, pending1, pending2} {
		c.Assert(s.g.UpsertLink(link), gc.IsNil)
	}

	got := s.collectLinkURLs(c, cutoff)
	c.Assert(got, gc.DeepEquals, []string{pending1.URL, pending2.URL})
}

// TestUpsertEdge verifies the edge upsert logic.
func (s *SuiteBase) TestUpsertEdge(c *gc.C) {
	c.Assert(s.g.UpsertLink(&graph.Link{URL: "https://example.com/a"}), gc.IsNil)

	edge := &graph.Edge{Src: "https://example.com/a", Dst: "https://example.com/b"}
	err := s.g.UpsertEdge(edge)
	c.Assert(err, gc.IsNil)
	c.Assert(edge.UpdatedAt.IsZero(), gc.Equals, false, gc.Commentf("expected UpdatedAt to be set"))

	// The edge destination must be upserted as a (pending) link.
	dst, err := s.g.FindLink("https://example.com/b")
	c.Assert(err, gc.IsNil)
	c.Assert(dst.RetrievedAt.IsZero(), gc.Equals, true)

	// Upserting the same edge again refreshes the timestamp but does not
	// create a duplicate.
	firstUpdate := edge.UpdatedAt
	time.Sleep(5 * time.Millisecond)
	dup := &graph.Edge{Src: edge.Src, Dst: edge.Dst}
	c.Assert(s.g.UpsertEdge(dup), gc.IsNil)
	c.Assert(dup.UpdatedAt.After(firstUpdate), gc.Equals, true, gc.Commentf("edge timestamp was not refreshed"))

	out, err := s.g.Outlinks(edge.Src)
	c.Assert(err, gc.IsNil)
	c.Assert(out, gc.DeepEquals, []string{"https://example.com/b"})

	// Edges without endpoints are rejected.
	err = s.g.UpsertEdge(&graph.Edge{Src: edge.Src})
	c.Assert(xerrors.Is(err, graph.ErrEmptyURL), gc.Equals, true)
}

// TestOutlinks verifies that outlinks preserve insertion order and that
// self-links are representable.
func (s *SuiteBase) TestOutlinks(c *gc.C) {
	src := "https://example.com"
	dsts := []string{
		"https://example.com/1",
		"https://example.com",
		"https://example.com/2",
	}
	c.Assert(s.g.UpsertLink(&graph.Link{URL: src}), gc.IsNil)
	for _, dst := range dsts {
		c.Assert(s.g.UpsertEdge(&graph.Edge{Src: src, Dst: dst}), gc.IsNil)
	}

	out, err := s.g.Outlinks(src)
	c.Assert(err, gc.IsNil)
	c.Assert(out, gc.DeepEquals, dsts)

	_, err = s.g.Outlinks("https://example.com/unknown")
	c.Assert(xerrors.Is(err, graph.ErrNotFound), gc.Equals, true)
}

// TestEdgeIteration verifies that all edges can be iterated.
func (s *SuiteBase) TestEdgeIteration(c *gc.C) {
	var exp []string
	for i := 0; i < 3; i++ {
		src := fmt.Sprintf("https://example.com/%d", i)
		for j := 0; j < 2; j++ {
			dst := fmt.Sprintf("https://example.com/%d/%d", i, j)
			c.Assert(s.g.UpsertEdge(&graph.Edge{Src: src, Dst: dst}), gc.IsNil)
			exp = append(exp, src+"->"+dst)
		}
	}

	it, err := s.g.Edges()
	c.Assert(err, gc.IsNil)

	var got []string
	for it.Next() {
		edge := it.Edge()
		got = append(got, edge.Src+"->"+edge.Dst)
	}
	c.Assert(it.Error(), gc.IsNil)
	c.Assert(it.Close(), gc.IsNil)

	sort.Strings(exp)
	sort.Strings(got)
	c.Assert(got, gc.DeepEquals, exp)
}

// TestRemoveStaleEdges verifies that edges older than a given timestamp can
// be dropped.
func (s *SuiteBase) TestRemoveStaleEdges(c *gc.C) {
	src := "https://example.com"
	c.Assert(s.g.UpsertEdge(&graph.Edge{Src: src, Dst: "https://example.com/stale"}), gc.IsNil)

	time.Sleep(5 * time.Millisecond)
	cutoff := time.Now()
	c.Assert(s.g.UpsertEdge(&graph.Edge{Src: src, Dst: "https://example.com/fresh"}), gc.IsNil)

	c.Assert(s.g.RemoveStaleEdges(src, cutoff), gc.IsNil)

	out, err := s.g.Outlinks(src)
	c.Assert(err, gc.IsNil)
	c.Assert(out, gc.DeepEquals, []string{"https://example.com/fresh"})
}

func (s *SuiteBase) collectLinkURLs(c *gc.C, retrievedBefore time.Time) []string {
	it, err := s.g.Links(retrievedBefore)
	c.Assert(err, gc.IsNil)

	var urls []string
	for it.Next() {
		urls = append(urls, it.Link().URL)
	}
	c.Assert(it.Error(), gc.IsNil)
	c.Assert(it.Close(), gc.IsNil)
	sort.Strings(urls)
	return urls
}
