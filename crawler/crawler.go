// Package crawler implements the web-page crawling pipeline: pages are
// fetched, their outgoing links extracted, their text content distilled and
// the results recorded in the link graph and the text index.
package crawler

import (
	"context"
	"time"

	"github.com/searchengineplaces/webrank/linkgraph/graph"
	"github.com/searchengineplaces/webrank/pipeline"
	"github.com/searchengineplaces/webrank/textindexer/index"
)

//go:generate mockgen -package mocks -destination mocks/mocks.go github.com/searchengineplaces/webrank/crawler Fetcher,Graph,Indexer

// Graph is implemented by objects that can record crawled pages and the
// links discovered on them.
type Graph interface {
	// UpsertLink creates a new link or updates an existing link.
	UpsertLink(link *graph.Link) error

	// UpsertEdge creates a new edge or updates an existing edge.
	UpsertEdge(edge *graph.Edge) error

	// RemoveStaleEdges removes any edge that originates from the
	// specified URL and was updated before the specified timestamp.
	RemoveStaleEdges(fromURL string, updatedBefore time.Time) error
}

// Indexer is implemented by objects that can index the content of web-pages
// retrieved by the crawler pipeline.
type Indexer interface {
	// Index inserts a new document to the index or updates the index
	// entry for an existing document.
	Index(doc *index.Document) error
}

// Config encapsulates the configuration options for creating a new Crawler.
type Config struct {
	// A Fetcher instance for retrieving page content.
	Fetcher Fetcher

	// A Graph instance for recording crawled pages and discovered links.
	Graph Graph

	// An Indexer instance for indexing the content of each crawled page.
	Indexer Indexer

	// The number of concurrent workers used for retrieving pages.
	FetchWorkers int
}

// Crawler implements the web-page crawling pipeline consisting of the
// following stages:
//
//   - Given a URL, retrieve the raw page content; any fetch failure is
//     collapsed into empty content so a bad page never aborts a crawl pass.
//   - Extract the absolute outgoing links from the retrieved content.
//   - Extract the page title and a sanitized text rendition of the content.
//   - Update the link graph: stamp the page as retrieved and create edges to
//     the links found on it.
//   - Index the page content.
type Crawler struct {
	p *pipeline.Pipeline
}

// NewCrawler returns a new crawler instance.
func NewCrawler(cfg Config) *Crawler {
	return &Crawler{
		p: assembleCrawlerPipeline(cfg),
	}
}

// assembleCrawlerPipeline creates the stages of a crawler pipeline using the
// options in cfg and assembles them into a pipeline instance.
func assembleCrawlerPipeline(cfg Config) *pipeline.Pipeline {
	return pipeline.New(
		pipeline.FixedWorkerPool(
			newPageFetcher(cfg.Fetcher),
			cfg.FetchWorkers,
		),
		pipeline.FIFO(newLinkExtractor()),
		pipeline.FIFO(newTextExtractor()),
		pipeline.Broadcast(
			newGraphUpdater(cfg.Graph),
			newTextIndexer(cfg.Indexer),
		),
	)
}

// Crawl iterates linkIt and sends each link through the crawler pipeline,
// returning the total number of pages that were processed. Calls to Crawl
// block until the link iterator is exhausted, an error occurs or the context
// is cancelled.
func (c *Crawler) Crawl(ctx context.Context, linkIt graph.LinkIterator) (int, error) {
	sink := new(countingSink)
	err := c.p.Process(ctx, &linkSource{linkIt: linkIt}, sink)
	return sink.getCount(), err
}

type linkSource struct {
	linkIt graph.LinkIterator
}

func (ls *linkSource) Error() error              { return ls.linkIt.Error() }
func (ls *linkSource) Next(context.Context) bool { return ls.linkIt.Next() }
func (ls *linkSource) Payload() pipeline.Payload {
	link := ls.linkIt.Link()
	p := payloadPool.Get().(*crawlerPayload)

	p.URL = link.URL
	p.RetrievedAt = link.RetrievedAt
	return p
}

type countingSink struct {
	count int
}

func (s *countingSink) Consume(_ context.Context, p pipeline.Payload) error {
	s.count++
	return nil
}

func (s *countingSink) getCount() int {
	// The broadcast split-stage emits two payloads for each crawled page
	// so the total needs to be halved.
	return s.count / 2
}
