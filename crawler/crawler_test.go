package crawler_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/searchengineplaces/webrank/crawler"
	"github.com/searchengineplaces/webrank/linkgraph/graph"
	memgraph "github.com/searchengineplaces/webrank/linkgraph/store/memory"
	memidx "github.com/searchengineplaces/webrank/textindexer/store/memory"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(CrawlerIntegrationTestSuite))

func Test(t *testing.T) { gc.TestingT(t) }

type CrawlerIntegrationTestSuite struct{}

func (s *CrawlerIntegrationTestSuite) TestCrawlerPipeline(c *gc.C) {
	linkGraph := memgraph.NewInMemoryGraph()
	searchIndex, err := memidx.NewInMemoryIndexer()
	c.Assert(err, gc.IsNil)
	defer func() { c.Assert(searchIndex.Close(), gc.IsNil) }()

	srv2 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><head><title>Second page</title></head><body>Dolor sit amet</body></html>`)
	}))
	defer srv2.Close()

	privateURL := "http://169.254.169.254/api/credentials"
	srv1 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `
<html>
<head><title>First page</title></head>
<body>
Lorem ipsum
<a href="%s">second</a>
<a href="%s">link-local address</a>
</body>
</html>`, srv2.URL, privateURL)
	}))
	defer srv1.Close()

	fetcher, err := crawler.NewHTTPFetcher(crawler.HTTPFetcherConfig{
		PrivateNetworkDetector: linkLocalOnlyDetector{},
	})
	c.Assert(err, gc.IsNil)

	instance := crawler.NewCrawler(crawler.Config{
		Fetcher:      fetcher,
		Graph:        linkGraph,
		Indexer:      searchIndex,
		FetchWorkers: 5,
	})

	c.Assert(linkGraph.UpsertLink(&graph.Link{URL: srv1.URL}), gc.IsNil)

	// Crawl passes share a fixed cutoff so each page is fetched at most
	// once: pages retrieved during the run no longer match the filter.
	runStart := time.Now()
	for pass, expCount := range []int{1, 2, 0} {
		c.Logf("[pass %d]", pass)
		count, err := instance.Crawl(context.Background(), mustGetLinkIterator(c, linkGraph, runStart))
		c.Assert(err, gc.IsNil)
		c.Assert(count, gc.Equals, expCount)
	}

	s.assertGraphContents(c, linkGraph, srv1.URL, srv2.URL, privateURL)
	s.assertIndexContents(c, searchIndex, srv1.URL, srv2.URL, privateURL)
}

func (s *CrawlerIntegrationTestSuite) assertGraphContents(c *gc.C, g graph.Graph, srv1URL, srv2URL, privateURL string) {
	var got []string
	for it := mustGetLinkIterator(c, g, time.Now().Add(time.Hour)); it.Next(); {
		link := it.Link()
		got = append(got, link.URL)

		// Every page was visited, the blocked one included.
		c.Assert(link.RetrievedAt.IsZero(), gc.Equals, false, gc.Commentf("link %q was not visited", link.URL))
	}
	exp := []string{srv1URL, srv2URL, privateURL}
	sort.Strings(exp)
	sort.Strings(got)
	c.Assert(got, gc.DeepEquals, exp)

	outlinks, err := g.Outlinks(srv1URL)
	c.Assert(err, gc.IsNil)
	c.Assert(outlinks, gc.DeepEquals, []string{srv2URL, privateURL})

	// Pages that failed to fetch contribute no edges.
	outlinks, err = g.Outlinks(privateURL)
	c.Assert(err, gc.IsNil)
	c.Assert(outlinks, gc.HasLen, 0)
}

func (s *CrawlerIntegrationTestSuite) assertIndexContents(c *gc.C, idx *memidx.InMemoryIndexer, srv1URL, srv2URL, privateURL string) {
	doc, err := idx.FindByURL(srv2URL)
	c.Assert(err, gc.IsNil)
	c.Assert(doc.Title, gc.Equals, "Second page")
	c.Assert(doc.TextContent, gc.Equals, "Second page Dolor sit amet")

	// The blocked page was indexed with empty content.
	doc, err = idx.FindByURL(privateURL)
	c.Assert(err, gc.IsNil)
	c.Assert(doc.Content, gc.Equals, "")
	c.Assert(doc.TextContent, gc.Equals, "")

	// Keyword lookups are case-insensitive substring matches over the
	// raw markup tokens.
	var matches []string
	it, err := idx.Postings("olor")
	c.Assert(err, gc.IsNil)
	for it.Next() {
		matches = append(matches, it.URL())
	}
	c.Assert(it.Error(), gc.IsNil)
	c.Assert(it.Close(), gc.IsNil)
	c.Assert(matches, gc.DeepEquals, []string{srv2URL})
}

func mustGetLinkIterator(c *gc.C, g graph.Graph, retrievedBefore time.Time) graph.LinkIterator {
	it, err := g.Links(retrievedBefore)
	c.Assert(err, gc.IsNil)
	return it
}

type linkLocalOnlyDetector struct{}

func (linkLocalOnlyDetector) IsPrivate(host string) (bool, error) {
	return strings.HasPrefix(host, "169.254."), nil
}
